// Package formats reads and writes the files around a segmentation run:
// OFF meshes, curvature caches and per-vertex label files.
package formats

// Note: OFF meshes are implemented in off.go
// Note: curvature caches are implemented in curvature.go
// Note: label files are implemented in labels.go
