// Package catalog records segmentation runs in SQLite: one row per run with
// its parameters and final counts, plus one row per completed stage. The
// schema is managed by embedded golang-migrate migrations.
package catalog
