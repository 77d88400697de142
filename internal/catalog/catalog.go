package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Faultbox/toothseg/internal/segment"
)

// ErrRunNotFound is returned for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Status is the lifecycle state of a run.
type Status string

// Run statuses.
const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one segmentation of one mesh.
type Run struct {
	ID            string
	MeshPath      string
	ParamsJSON    string
	Status        Status
	Error         string
	StartedAt     time.Time
	FinishedAt    *time.Time
	VertexCount   int
	ToothCount    int
	BoundaryCount int
	CuttingPoints int
	Sections      int
}

// StageRecord is one completed stage of a run.
type StageRecord struct {
	RunID         string
	Seq           int
	Stage         segment.Stage
	Duration      time.Duration
	BoundaryCount int
	ToothCount    int
	CuttingPoints int
	Sections      int
}

// Catalog is the run history database.
type Catalog struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens the catalog at path, creating and migrating it as needed.
func Open(path string, log *zap.Logger) (*Catalog, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %q: %w", path, err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	c := &Catalog{db: db, log: log}
	if err := c.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Begin records a new running run and returns it.
func (c *Catalog) Begin(ctx context.Context, meshPath string, vertexCount int, params segment.Params) (*Run, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}
	run := &Run{
		ID:          uuid.New().String(),
		MeshPath:    meshPath,
		ParamsJSON:  string(raw),
		Status:      StatusRunning,
		StartedAt:   time.Now().UTC(),
		VertexCount: vertexCount,
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, mesh_path, params_json, status, started_at_ns, vertex_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.MeshPath, run.ParamsJSON, string(run.Status), run.StartedAt.UnixNano(), run.VertexCount)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	c.log.Debug("run started", zap.String("run_id", run.ID), zap.String("mesh", meshPath))
	return run, nil
}

// RecordStage appends a completed stage to a run.
func (c *Catalog) RecordStage(ctx context.Context, runID string, r segment.StageResult) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO run_stages (run_id, seq, stage, duration_ns, boundary_count, tooth_count, cutting_points, sections)
		VALUES (?, (SELECT COUNT(*) FROM run_stages WHERE run_id = ?), ?, ?, ?, ?, ?, ?)
	`, runID, runID, string(r.Stage), r.Duration.Nanoseconds(), r.BoundaryCount, r.ToothCount, r.CuttingPoints, r.Sections)
	if err != nil {
		return fmt.Errorf("insert stage %s: %w", r.Stage, err)
	}
	return nil
}

// Finish closes a run with the final state. A non-nil runErr marks it
// failed.
func (c *Catalog) Finish(ctx context.Context, runID string, st segment.State, runErr error) error {
	status, msg := StatusSucceeded, sql.NullString{}
	if runErr != nil {
		status = StatusFailed
		msg = sql.NullString{String: runErr.Error(), Valid: true}
	}
	res, err := c.db.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, error = ?, finished_at_ns = ?,
		    tooth_count = ?, boundary_count = ?, cutting_points = ?, sections = ?
		WHERE run_id = ?
	`, string(status), msg, time.Now().UTC().UnixNano(),
		st.ToothCount, st.BoundaryCount, len(st.CuttingPoints), len(st.Sections), runID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

const runColumns = `run_id, mesh_path, params_json, status, error, started_at_ns, finished_at_ns,
	vertex_count, tooth_count, boundary_count, cutting_points, sections`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var status string
	var msg sql.NullString
	var started int64
	var finished sql.NullInt64
	err := row.Scan(&run.ID, &run.MeshPath, &run.ParamsJSON, &status, &msg, &started, &finished,
		&run.VertexCount, &run.ToothCount, &run.BoundaryCount, &run.CuttingPoints, &run.Sections)
	if err != nil {
		return nil, err
	}
	run.Status = Status(status)
	run.Error = msg.String
	run.StartedAt = time.Unix(0, started).UTC()
	if finished.Valid {
		t := time.Unix(0, finished.Int64).UTC()
		run.FinishedAt = &t
	}
	return &run, nil
}

// Get returns one run.
func (c *Catalog) Get(ctx context.Context, runID string) (*Run, error) {
	run, err := scanRun(c.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first. A limit of zero or less
// returns every run.
func (c *Catalog) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := c.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at_ns DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Stages returns the recorded stages of a run in execution order.
func (c *Catalog) Stages(ctx context.Context, runID string) ([]StageRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT seq, stage, duration_ns, boundary_count, tooth_count, cutting_points, sections
		FROM run_stages WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	var out []StageRecord
	for rows.Next() {
		rec := StageRecord{RunID: runID}
		var stage string
		var ns int64
		if err := rows.Scan(&rec.Seq, &stage, &ns, &rec.BoundaryCount, &rec.ToothCount, &rec.CuttingPoints, &rec.Sections); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		rec.Stage = segment.Stage(stage)
		rec.Duration = time.Duration(ns)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Recorder returns a pipeline OnStage hook that records stages of runID.
func (c *Catalog) Recorder(runID string) func(context.Context, segment.StageResult) error {
	return func(ctx context.Context, r segment.StageResult) error {
		return c.RecordStage(ctx, runID, r)
	}
}
