package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Faultbox/toothseg/internal/catalog"
	"github.com/Faultbox/toothseg/internal/logger"
	"github.com/Faultbox/toothseg/internal/store"
)

func cmdRuns(args []string) {
	c := newCommand("runs", "runs [options] [run-id]")
	limit := c.fs.Int("n", 20, "Show at most N runs (0 = all)")
	c.parse(args)
	defer logger.Sync()

	ctx := context.Background()
	runs, err := catalog.Open(c.cfg.CatalogPath(), logger.Named("catalog"))
	if err != nil {
		fatal(err)
	}
	defer runs.Close()

	if c.fs.NArg() == 1 {
		printRun(ctx, runs, c.fs.Arg(0))
		return
	}

	list, err := runs.List(ctx, *limit)
	if err != nil {
		fatal(err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tSTATUS\tTEETH\tCUTS\tMESH")
	for _, r := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Status, r.ToothCount, r.CuttingPoints, r.MeshPath)
	}
	w.Flush()
}

func printRun(ctx context.Context, runs *catalog.Catalog, id string) {
	r, err := runs.Get(ctx, id)
	if err != nil {
		fatal(err)
	}
	stages, err := runs.Stages(ctx, id)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Run:      %s\n", r.ID)
	fmt.Printf("Mesh:     %s (%d vertices)\n", r.MeshPath, r.VertexCount)
	fmt.Printf("Status:   %s\n", r.Status)
	if r.Error != "" {
		fmt.Printf("Error:    %s\n", r.Error)
	}
	fmt.Printf("Params:   %s\n", r.ParamsJSON)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STAGE\tDURATION\tBOUNDARY\tTEETH\tCUTS\tSECTIONS")
	for _, s := range stages {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n",
			s.Stage, s.Duration.Round(time.Microsecond), s.BoundaryCount, s.ToothCount, s.CuttingPoints, s.Sections)
	}
	w.Flush()
}

func cmdSnapshots(args []string) {
	c := newCommand("snapshots", "snapshots [options] [mesh.off]")
	clearAll := c.fs.Bool("clear", false, "Delete the snapshots of the given mesh")
	c.parse(args)
	defer logger.Sync()

	ctx := context.Background()
	db, err := store.Open(store.Options{Dir: c.cfg.StoreDir(), Log: logger.Named("store")})
	if err != nil {
		fatal(err)
	}
	defer db.Close()

	var keys []string
	if c.fs.NArg() == 1 {
		keys = []string{meshKey(c.fs.Arg(0))}
	} else if keys, err = db.Meshes(ctx); err != nil {
		fatal(err)
	}

	for _, k := range keys {
		snaps := db.Snapshots(k)
		if *clearAll {
			if err := snaps.Clear(ctx); err != nil {
				fatal(err)
			}
			fmt.Printf("%s: cleared\n", k)
			continue
		}
		stages, err := snaps.Stages(ctx)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("%s: %v\n", k, stages)
	}
}
