package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/toothseg/internal/catalog"
	"github.com/Faultbox/toothseg/internal/logger"
	"github.com/Faultbox/toothseg/internal/report"
	"github.com/Faultbox/toothseg/internal/segment"
	"github.com/Faultbox/toothseg/internal/store"
	"github.com/Faultbox/toothseg/pkg/formats"
)

func cmdSegment(args []string) {
	c := newCommand("segment", "segment [options] <mesh.off>")
	labelsPath := c.fs.String("labels", "", "Label output file (default <mesh>.labels)")
	outMesh := c.fs.String("o", "", "Write the mesh with smoothed boundary positions to this OFF file")
	from := c.fs.String("from", "", "Restart at this stage from stored snapshots")
	resume := c.fs.Bool("resume", false, "Continue after the latest stored stage")
	c.parse(args)
	defer logger.Sync()

	meshPath := c.meshArg()
	if *labelsPath == "" {
		*labelsPath = meshPath + ".labels"
	}
	if (*from != "" || *resume) && !c.cfg.Store.Enabled {
		fatal(errors.New("-from and -resume need -snapshots or store.enabled"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := runSegment(ctx, c, meshPath, *from, *resume)
	if err != nil {
		fatal(err)
	}

	if err := formats.WriteLabelsFile(*labelsPath, s.Labels()); err != nil {
		fatal(err)
	}
	logger.Info("labels written", zap.String("path", *labelsPath))
	if *outMesh != "" {
		off := &formats.OFF{Positions: s.Mesh.Positions, Faces: s.Mesh.Faces}
		if err := off.WriteFile(*outMesh); err != nil {
			fatal(err)
		}
		logger.Info("mesh written", zap.String("path", *outMesh))
	}

	if err := report.WriteSegmentation(os.Stdout, report.Summarize(s)); err != nil {
		fatal(err)
	}
}

func runSegment(ctx context.Context, c *command, meshPath, from string, resume bool) (*segment.Segmenter, error) {
	start := time.Now()
	m, err := loadMesh(meshPath)
	if err != nil {
		return nil, err
	}
	if _, err := c.estimateCurvature(ctx, m, meshPath); err != nil {
		return nil, err
	}

	s, err := segment.New(m, c.cfg.Params(), logger.Named("segment"))
	if err != nil {
		return nil, err
	}
	p := segment.NewPipeline(s, nil, logger.Named("pipeline"))

	if c.cfg.Store.Enabled {
		db, err := store.Open(store.Options{
			Dir:        c.cfg.StoreDir(),
			SyncWrites: c.cfg.Store.SyncWrites,
			Log:        logger.Named("store"),
		})
		if err != nil {
			return nil, err
		}
		defer db.Close()
		p.Store = db.Snapshots(meshKey(meshPath))
	}

	var runs *catalog.Catalog
	var run *catalog.Run
	if c.cfg.Catalog.Enabled {
		runs, err = catalog.Open(c.cfg.CatalogPath(), logger.Named("catalog"))
		if err != nil {
			return nil, err
		}
		defer runs.Close()
		run, err = runs.Begin(ctx, meshKey(meshPath), m.NumVertices(), s.Params)
		if err != nil {
			return nil, err
		}
		p.OnStage = runs.Recorder(run.ID)
	}

	switch {
	case resume:
		var started segment.Stage
		started, err = p.Resume(ctx)
		logger.Info("resumed", zap.Stringer("stage", started))
	case from != "":
		var st segment.Stage
		if st, err = segment.ParseStage(from); err == nil {
			err = p.RunFrom(ctx, st)
		}
	default:
		err = p.Run(ctx)
	}

	if run != nil {
		// The run outcome is recorded even when ctx was cancelled.
		if ferr := runs.Finish(context.Background(), run.ID, s.State, err); ferr != nil {
			logger.Warn("recording run", zap.Error(ferr))
		}
	}
	if err != nil {
		return nil, err
	}
	logger.Info("segmentation done",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("teeth", s.State.ToothCount),
		zap.Int("cutting_points", len(s.State.CuttingPoints)),
	)
	return s, nil
}
