// toothseg is a CLI for segmenting dental scan meshes into teeth and gingiva.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "segment", "seg":
		cmdSegment(args)
	case "curvature", "curv":
		cmdCurvature(args)
	case "inspect", "info":
		cmdInspect(args)
	case "histogram", "hist":
		cmdHistogram(args)
	case "runs":
		cmdRuns(args)
	case "snapshots":
		cmdSnapshots(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`toothseg - dental mesh tooth/gingiva segmentation

Usage:
  toothseg <command> [options]

Commands:
  segment <mesh.off>       Run the segmentation pipeline and write vertex labels
  curvature <mesh.off>     Compute (or load cached) curvature and print statistics
  inspect <mesh.off>       Show mesh and curvature information
  histogram <mesh.off>     Plot the curvature distribution
  runs                     List recorded runs from the run catalog
  snapshots                List stored stage snapshots
  config                   Print the effective configuration (-o file, -save)

Shared options:
  -config <file>           Config file (default ./toothseg.yaml or user config dir)
  -debug                   Debug logging
  -no-cache                Ignore the <mesh>.curvature cache

Examples:
  toothseg segment -labels lower.labels lower.off
  toothseg segment -snapshots -from cutting lower.off
  toothseg histogram -o curvature.png -bins 80 lower.off
  toothseg runs -n 10
  toothseg config -dilate 4 -o lower.yaml`)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
