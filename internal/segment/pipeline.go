package segment

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Stage names one step of the pipeline. Names double as snapshot keys.
type Stage string

// Pipeline stages in execution order.
const (
	StageBoundary Stage = "boundary"
	StageGingiva  Stage = "gingiva"
	StageRegions  Stage = "regions"
	StageSkeleton Stage = "skeleton"
	StageCutting  Stage = "cutting"
	StageContours Stage = "contours"
	StageRefined  Stage = "refined"
)

// Stages lists every stage in execution order.
var Stages = []Stage{
	StageBoundary,
	StageGingiva,
	StageRegions,
	StageSkeleton,
	StageCutting,
	StageContours,
	StageRefined,
}

// ErrUnknownStage is returned for a stage name outside Stages.
var ErrUnknownStage = errors.New("unknown stage")

func (st Stage) String() string {
	return string(st)
}

// ParseStage validates a stage name.
func ParseStage(name string) (Stage, error) {
	for _, st := range Stages {
		if string(st) == name {
			return st, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownStage, "%q", name)
}

func stageIndex(st Stage) int {
	for i, s := range Stages {
		if s == st {
			return i
		}
	}
	return -1
}

// Checkpointer persists stage snapshots. Load returns an error wrapping
// ErrNotStored when the stage was never saved.
type Checkpointer interface {
	Save(ctx context.Context, stage Stage, snap *Snapshot) error
	Load(ctx context.Context, stage Stage) (*Snapshot, error)
}

// StageResult summarizes one finished stage.
type StageResult struct {
	Stage         Stage
	Duration      time.Duration
	BoundaryCount int
	ToothCount    int
	CuttingPoints int
	Sections      int
}

// Pipeline runs the stages in order on one Segmenter.
type Pipeline struct {
	Segmenter *Segmenter
	// Store, when set, receives a snapshot after every stage and provides
	// the starting point for RunFrom.
	Store Checkpointer
	// OnStage, when set, is called after every stage. An error aborts the
	// run.
	OnStage func(ctx context.Context, r StageResult) error

	log *zap.Logger
}

// NewPipeline creates a pipeline. A nil logger discards output.
func NewPipeline(s *Segmenter, store Checkpointer, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{Segmenter: s, Store: store, log: log}
}

// Run executes every stage.
func (p *Pipeline) Run(ctx context.Context) error {
	return p.RunFrom(ctx, StageBoundary)
}

// RunFrom restores the snapshot of the stage before from and executes from
// onward.
func (p *Pipeline) RunFrom(ctx context.Context, from Stage) error {
	idx := stageIndex(from)
	if idx < 0 {
		return errors.Wrapf(ErrUnknownStage, "%q", from)
	}
	if idx > 0 {
		if p.Store == nil {
			return errors.Errorf("resuming at %s needs a snapshot store", from)
		}
		prev := Stages[idx-1]
		snap, err := p.Store.Load(ctx, prev)
		if err != nil {
			return errors.Wrapf(err, "loading %s snapshot", prev)
		}
		if err := p.Segmenter.Restore(snap); err != nil {
			return err
		}
		p.log.Info("restored snapshot", zap.Stringer("stage", prev))
	}

	for _, st := range Stages[idx:] {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.runStage(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// Resume continues after the latest stage found in the store and returns
// the stage it started at. Without any stored stage it runs from the start.
// A stored snapshot that fails to load stops the resume with a StageError
// naming that stage; nothing is recomputed or overwritten.
func (p *Pipeline) Resume(ctx context.Context) (Stage, error) {
	if p.Store == nil {
		return StageBoundary, p.Run(ctx)
	}
	for i := len(Stages) - 1; i >= 0; i-- {
		snap, err := p.Store.Load(ctx, Stages[i])
		if errors.Is(err, ErrNotStored) {
			continue
		}
		if err != nil {
			return Stages[i], &StageError{Stage: Stages[i], Err: errors.Wrap(err, "loading snapshot")}
		}
		if i == len(Stages)-1 {
			return Stages[i], p.Segmenter.Restore(snap)
		}
		return Stages[i+1], p.RunFrom(ctx, Stages[i+1])
	}
	return StageBoundary, p.Run(ctx)
}

func (p *Pipeline) runStage(ctx context.Context, st Stage) error {
	s := p.Segmenter
	var run func() error
	switch st {
	case StageBoundary:
		run = s.DetectBoundary
	case StageGingiva:
		run = s.CutGingiva
	case StageRegions:
		run = s.ClassifyRegions
	case StageSkeleton:
		run = s.ExtractSkeleton
	case StageCutting:
		run = s.FindCuttingPoints
	case StageContours:
		run = s.IndexContours
	case StageRefined:
		run = s.RefineContours
	}

	start := time.Now()
	if err := run(); err != nil {
		return &StageError{Stage: st, Err: err}
	}
	res := StageResult{
		Stage:         st,
		Duration:      time.Since(start),
		BoundaryCount: s.State.BoundaryCount,
		ToothCount:    s.State.ToothCount,
		CuttingPoints: len(s.State.CuttingPoints),
		Sections:      len(s.State.Sections),
	}
	p.log.Info("stage done",
		zap.Stringer("stage", st),
		zap.Duration("duration", res.Duration),
		zap.Int("boundary", res.BoundaryCount),
		zap.Int("teeth", res.ToothCount),
	)

	if p.Store != nil {
		if err := p.Store.Save(ctx, st, s.Snapshot(st)); err != nil {
			return &StageError{Stage: st, Err: errors.Wrap(err, "saving snapshot")}
		}
	}
	if p.OnStage != nil {
		if err := p.OnStage(ctx, res); err != nil {
			return &StageError{Stage: st, Err: err}
		}
	}
	return nil
}
