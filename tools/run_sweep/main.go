// Package main runs hyperparameter sweeps of the ACO planner over instance files and
// reports per-parameter statistics across seeds.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/mapf-aco/internal/config"
	"github.com/elektrokombinacija/mapf-aco/internal/core"
	"github.com/elektrokombinacija/mapf-aco/internal/store"
)

var log = logrus.WithField("module", "run_sweep")

func main() {
	configPath := flag.String("config", "", "YAML config with planner defaults and the sweep grid")
	inputDir := flag.String("input", "testdata", "Directory containing instance JSON files")
	outputFile := flag.String("output", "evidence/sweep_results.csv", "Output CSV file")
	baseline := flag.Bool("baseline", true, "Also run the prioritized baseline once per instance")
	logLevel := flag.String("log.level", "", "Log level, overrides the config (trace debug info warn error)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logrus.Fatal(err)
		}
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := config.SetupLogging(cfg.LogLevel); err != nil {
		logrus.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	files, err := filepath.Glob(filepath.Join(*inputDir, "*.json"))
	if err != nil {
		log.Fatalf("find instance files: %v", err)
	}
	if cfg.Instance != "" {
		files = append(files, cfg.Instance)
	}
	if len(files) == 0 {
		log.Fatalf("no instance files found in %s; run gen_instances first", *inputDir)
	}

	s := &sweeper{baseline: *baseline}
	var rs *store.RunStore
	if cfg.Mongo.Enabled() {
		if rs, err = store.NewRunStore(ctx, cfg.Mongo); err != nil {
			log.Fatal(err)
		}
		defer rs.Close(context.Background())
		s.store = rs
	}

	grid := expandGrid(cfg.Planner, cfg.Sweep)
	seeds := sweepSeeds(cfg.Planner, cfg.Sweep)
	log.Infof("sweep: %d instances x %d parameter sets x %d seeds", len(files), len(grid), len(seeds))

	var rows []Row
	var swept []string
	for _, file := range files {
		inst, err := core.LoadInstance(file)
		if err != nil {
			log.Errorf("load %s: %v", file, err)
			continue
		}
		got, err := s.runInstance(ctx, inst.Name, inst, grid, seeds)
		rows = append(rows, got...)
		swept = append(swept, inst.Name)
		if err != nil {
			if isSkippable(err) {
				log.Warnf("skipping: %v", err)
				continue
			}
			log.Errorf("stopping: %v", err)
			break
		}
	}

	if err := os.MkdirAll(filepath.Dir(*outputFile), 0755); err != nil {
		log.Fatalf("create output directory: %v", err)
	}
	out, err := os.Create(*outputFile)
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()
	if err := writeCSV(out, rows); err != nil {
		log.Fatalf("write results: %v", err)
	}
	log.Infof("results written to %s", *outputFile)

	printSummary(os.Stdout, rows)
	if rs != nil {
		printBest(context.Background(), os.Stdout, rs, swept)
	}
}
