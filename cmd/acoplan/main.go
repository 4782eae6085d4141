// Command acoplan plans collision-aware pickup/drop routes for an instance file.
package main

import (
	"context"
	"encoding/base64"
	"flag"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/mapf-aco/internal/config"
	"github.com/elektrokombinacija/mapf-aco/internal/core"
	"github.com/elektrokombinacija/mapf-aco/internal/store"
)

var (
	configPath = flag.String("config", "", "config file path")
	configData = flag.String("config-data", "", "config file base64 encoded data")
	instance   = flag.String("instance", "", "instance JSON path, overrides the config")
	output     = flag.String("output", "", "result JSON path, overrides the config (empty writes to stdout)")
	solver     = flag.String("solver", "aco", "solver: aco or prioritized")
	seed       = flag.Uint64("seed", 0, "random seed, overrides the config when non-zero")
	snap       = flag.Int("snap", 0, "snap endpoints on obstacles to the nearest free cell within this radius (0 disables)")
	simulate   = flag.Bool("simulate", false, "play the plan back and include execution metrics in the result")
	logLevel   = flag.String("log.level", "", "log level, overrides the config (trace debug info warn error critical off)")

	log = logrus.WithField("module", "acoplan")
)

func loadConfig() (config.Config, error) {
	switch {
	case *configPath != "":
		return config.Load(*configPath)
	case *configData != "":
		data, err := base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			return config.Config{}, err
		}
		return config.Parse(data)
	}
	return config.Default(), nil
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		logrus.Fatalf("config load err: %v", err)
	}
	if *instance != "" {
		cfg.Instance = *instance
	}
	if *output != "" {
		cfg.Output = *output
	}
	if *seed != 0 {
		cfg.Planner.Seed = *seed
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := config.SetupLogging(cfg.LogLevel); err != nil {
		log.Fatal(err)
	}
	if cfg.Instance == "" {
		log.Fatal("instance must be given in the config or with -instance")
	}

	f, err := core.ReadInstanceFile(cfg.Instance)
	if err != nil {
		log.Fatal(err)
	}
	if *snap > 0 {
		if err := snapAgents(f, *snap); err != nil {
			log.Fatal(err)
		}
	}
	if f.Connectivity == "" {
		f.Connectivity = cfg.Planner.Connectivity
	}
	cfg.Planner.Connectivity = f.Connectivity
	inst, err := f.ToInstance()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, planRes, err := plan(ctx, cfg, *solver, inst)
	if err != nil {
		if res == nil {
			log.Fatal(err)
		}
		log.Warnf("%s, writing the best plan so far: %v", partialReason(err), err)
	}

	if *simulate {
		// ctx may already be cancelled; the plan is final at this point
		if err := replay(context.Background(), cfg, inst, res); err != nil {
			log.Errorf("playback: %v", err)
		}
	}

	w := os.Stdout
	if cfg.Output != "" {
		if w, err = os.Create(cfg.Output); err != nil {
			log.Fatal(err)
		}
		defer w.Close()
	}
	if err := writeResult(w, res); err != nil {
		log.Fatal(err)
	}

	if planRes != nil && cfg.Mongo.Enabled() {
		rs, err := store.NewRunStore(ctx, cfg.Mongo)
		if err != nil {
			log.Errorf("run store: %v", err)
			return
		}
		defer rs.Close(context.Background())
		if err := rs.Record(ctx, store.NewRunRecord(inst.Name, cfg.Planner, planRes)); err != nil {
			log.Errorf("record run: %v", err)
		}
	}
}
