// Command mastplanner processes a TRIX measurement file and reports the
// optimal met mast placement for a wind-turbine layout.
//
// It parses the measurement table, assigns stable turbine and mast IDs,
// computes the adjusted RSS uncertainty per measurement, and selects the
// single mast or pair of masts minimizing aggregate uncertainty. Results
// are written as CSV tables (and optionally an Excel workbook) into a
// timestamped directory under the configured output root.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"mastplanner/internal/config"
	"mastplanner/internal/exporter"
	"mastplanner/internal/infrastructure"
	"mastplanner/internal/selector"
	"mastplanner/internal/trix"
	"mastplanner/internal/uncertainty"
)

func main() {
	trixPath := flag.String("trix", "", "path to the TRIX measurement file (required)")
	outDir := flag.String("out", "", "output directory (overrides config)")
	mode := flag.String("mode", "", "selection mode: single or pair (overrides config)")
	configPath := flag.String("config", "", "path to YAML config file")
	noWorkbook := flag.Bool("no-workbook", false, "skip the Excel workbook output")
	flag.Parse()

	if *trixPath == "" {
		fmt.Fprintln(os.Stderr, "usage: mastplanner -trix <file> [-out <dir>] [-mode single|pair]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mastplanner: %v\n", err)
		os.Exit(1)
	}
	if *outDir != "" {
		cfg.Output.BaseDir = *outDir
	}
	if *mode != "" {
		cfg.Selection.Mode = *mode
	}
	if *noWorkbook {
		cfg.Output.Workbook = false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "mastplanner: %v\n", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mastplanner: initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *trixPath, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// run executes one full pipeline pass over the TRIX file.
func run(cfg *config.Config, trixPath string, logger *slog.Logger) error {
	selMode, err := selector.ParseMode(cfg.Selection.Mode)
	if err != nil {
		return err
	}

	runID := infrastructure.NewRunID()
	ctx := infrastructure.WithRunID(context.Background(), runID)
	startedAt := time.Now()

	logger.InfoContext(ctx, "starting mast planner run",
		"trix_file", trixPath,
		"mode", selMode.String())

	table, err := trix.NewParser(logger).Parse(trixPath)
	if err != nil {
		return err
	}

	ds, err := uncertainty.NewAggregator(logger).Aggregate(ctx, table.Rows)
	if err != nil {
		return err
	}

	runDir := exporter.RunDir(cfg.Output.BaseDir, startedAt)
	csvWriter := exporter.NewCSVWriter(runDir, logger)
	if err := csvWriter.WriteDataset(ds); err != nil {
		return err
	}

	manifest := exporter.Manifest{
		RunID:        runID,
		InputFile:    trixPath,
		Mode:         selMode.String(),
		StartedAt:    startedAt.UTC(),
		Rows:         len(ds.Rows),
		TurbineCount: len(ds.Turbines),
		MastCount:    len(ds.Masts),
	}

	sel := selector.NewSelector(logger)
	var bestSingle *uncertainty.GroupedMast
	var pairResult *selector.PairResult

	switch selMode {
	case selector.ModeSingle:
		best, err := sel.SelectSingle(ctx, ds.Grouped)
		if err != nil {
			return err
		}
		bestSingle = &best
		manifest.BestMasts = []string{best.ID}
		manifest.BestScore = best.MeanAdjRSS
		if err := csvWriter.WriteSingleSelection(best); err != nil {
			return err
		}
	case selector.ModePair:
		result, err := sel.SelectPair(ctx, ds)
		if err != nil {
			return err
		}
		pairResult = result
		manifest.BestMasts = []string{result.Best.Mast1.ID, result.Best.Mast2.ID}
		manifest.BestScore = result.Best.TotalRSS
		if err := csvWriter.WritePairSelection(result); err != nil {
			return err
		}
	}

	if cfg.Output.Workbook {
		if err := exporter.NewExcelWriter(runDir, logger).WriteWorkbook(ds, bestSingle, pairResult); err != nil {
			return err
		}
	}

	if err := exporter.WriteManifest(runDir, manifest); err != nil {
		return err
	}

	logger.InfoContext(ctx, "mast planner run complete",
		"results_dir", runDir,
		"duration", time.Since(startedAt))

	printSummary(ds, bestSingle, pairResult, runDir)
	return nil
}

// printSummary prints a short console report after a successful run.
func printSummary(ds *uncertainty.Dataset, best *uncertainty.GroupedMast, pairResult *selector.PairResult, runDir string) {
	fmt.Printf("\n=== MAST PLANNER RESULTS ===\n")
	fmt.Printf("Measurements: %d   Turbines: %d   Masts: %d\n",
		len(ds.Rows), len(ds.Turbines), len(ds.Masts))

	if best != nil {
		fmt.Printf("Optimal single mast: %s (mean adj RSS %.4f, %d turbines)\n",
			best.ID, best.MeanAdjRSS, best.TurbineCount)
	}
	if pairResult != nil {
		b := pairResult.Best
		fmt.Printf("Optimal mast pair: %s + %s (total %.4f, avg %.4f over %d pairs)\n",
			b.Mast1.ID, b.Mast2.ID, b.TotalRSS, b.AvgRSS, len(pairResult.AllPairs))
	}
	fmt.Printf("Results written to %s\n", runDir)
}
