package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/mapf-aco/internal/algo"
	"github.com/elektrokombinacija/mapf-aco/internal/config"
	"github.com/elektrokombinacija/mapf-aco/internal/core"
	"github.com/elektrokombinacija/mapf-aco/internal/store"
)

// Row is one solver run.
type Row struct {
	RunID         string
	Instance      string
	Solver        string
	Params        algo.Config
	Seed          uint64
	Score         float64
	Distance      float64
	Conflicts     int
	MinSeparation float64
	Feasible      bool
	Seconds       float64
}

// runRecorder persists runs; *store.RunStore implements it.
type runRecorder interface {
	Record(ctx context.Context, r store.RunRecord) error
}

// bestFinder looks up the best stored run of an instance; *store.RunStore implements it.
type bestFinder interface {
	Best(ctx context.Context, instance string) (*store.RunRecord, error)
}

// expandGrid crosses every sweep list, keeping the base value where a list is empty.
func expandGrid(base algo.Config, sw config.Sweep) []algo.Config {
	orF := func(v []float64, def float64) []float64 { return lo.Ternary(len(v) > 0, v, []float64{def}) }
	orI := func(v []int, def int) []int { return lo.Ternary(len(v) > 0, v, []int{def}) }

	var out []algo.Config
	for _, alpha := range orF(sw.Alpha, base.Alpha) {
		for _, beta := range orF(sw.Beta, base.Beta) {
			for _, rho := range orF(sw.Rho, base.Rho) {
				for _, q := range orF(sw.Q, base.Q) {
					for _, ants := range orI(sw.NumAnts, base.NumAnts) {
						for _, iters := range orI(sw.Iterations, base.Iterations) {
							c := base
							c.Alpha, c.Beta, c.Rho, c.Q = alpha, beta, rho, q
							c.NumAnts, c.Iterations = ants, iters
							out = append(out, c)
						}
					}
				}
			}
		}
	}
	return out
}

func sweepSeeds(base algo.Config, sw config.Sweep) []uint64 {
	if len(sw.Seeds) > 0 {
		return sw.Seeds
	}
	return []uint64{base.Seed}
}

// paramKey identifies a parameter set independent of the seed.
func paramKey(c algo.Config) string {
	return fmt.Sprintf("alpha=%g beta=%g rho=%g q=%g ants=%d iters=%d",
		c.Alpha, c.Beta, c.Rho, c.Q, c.NumAnts, c.Iterations)
}

type sweeper struct {
	store    runRecorder // nil disables recording
	baseline bool
}

// runInstance runs every parameter set with every seed on inst, plus the prioritized
// baseline when enabled. Structurally infeasible instances stop early with the error.
func (s *sweeper) runInstance(ctx context.Context, name string, inst *core.Instance, grid []algo.Config, seeds []uint64) ([]Row, error) {
	entry := log.WithField("instance", name)
	var rows []Row

	if s.baseline && len(grid) > 0 {
		p := algo.NewPrioritized(grid[0].Scorer(), 0)
		start := time.Now()
		sol, err := p.Solve(ctx, inst)
		if err != nil {
			return rows, fmt.Errorf("%s %s: %w", name, p.Name(), err)
		}
		rows = append(rows, Row{
			Instance:      name,
			Solver:        p.Name(),
			Params:        grid[0],
			Score:         sol.Score,
			Distance:      sol.Distance,
			Conflicts:     sol.Conflicts,
			MinSeparation: sol.MinSeparation,
			Feasible:      sol.Feasible,
			Seconds:       time.Since(start).Seconds(),
		})
	}

	for _, cfg := range grid {
		for _, seed := range seeds {
			cfg.Seed = seed
			cfg.Connectivity = inst.Conn.String()
			res, err := algo.Plan(ctx, inst.Env, inst.Agents, cfg)
			if err != nil {
				return rows, fmt.Errorf("%s seed %d: %w", name, seed, err)
			}
			row := Row{
				RunID:         res.RunID.String(),
				Instance:      name,
				Solver:        "ACO",
				Params:        cfg,
				Seed:          seed,
				Score:         res.Score,
				Distance:      res.Distance,
				Conflicts:     res.Conflicts,
				MinSeparation: res.MinSeparation,
				Feasible:      res.Conflicts == 0,
				Seconds:       res.Elapsed.Seconds(),
			}
			rows = append(rows, row)
			entry.WithFields(logrus.Fields{
				"params":    paramKey(cfg),
				"seed":      seed,
				"score":     row.Score,
				"conflicts": row.Conflicts,
			}).Debug("run done")

			if s.store != nil {
				if err := s.store.Record(ctx, store.NewRunRecord(name, cfg, res)); err != nil {
					entry.Warnf("record run: %v", err)
				}
			}
		}
	}
	return rows, nil
}

var csvHeader = []string{
	"run_id", "instance", "solver", "alpha", "beta", "rho", "q", "num_ants", "iterations",
	"seed", "score", "distance", "conflicts", "min_separation", "feasible", "time_sec",
}

func writeCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, r := range rows {
		rec := []string{
			r.RunID, r.Instance, r.Solver,
			f(r.Params.Alpha), f(r.Params.Beta), f(r.Params.Rho), f(r.Params.Q),
			strconv.Itoa(r.Params.NumAnts), strconv.Itoa(r.Params.Iterations),
			strconv.FormatUint(r.Seed, 10),
			fmt.Sprintf("%.4f", r.Score), fmt.Sprintf("%.4f", r.Distance),
			strconv.Itoa(r.Conflicts), formatSeparation(r.MinSeparation),
			strconv.FormatBool(r.Feasible), fmt.Sprintf("%.3f", r.Seconds),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatSeparation writes an undefined separation as -1, as the run store does.
func formatSeparation(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "-1"
	}
	return fmt.Sprintf("%.4f", v)
}

// groupSummary is the per-parameter-set summary line.
type groupSummary struct {
	Instance string
	Key      string
	Summary
	BestSeed uint64
	Feasible int
}

func summarizeRows(rows []Row) []groupSummary {
	aco := lo.Filter(rows, func(r Row, _ int) bool { return r.Solver == "ACO" })
	groups := lo.GroupBy(aco, func(r Row) string { return r.Instance + "\x00" + paramKey(r.Params) })

	keys := lo.Keys(groups)
	sort.Strings(keys)
	return lo.Map(keys, func(k string, _ int) groupSummary {
		g := groups[k]
		best := lo.MinBy(g, func(a, b Row) bool { return a.Score < b.Score })
		return groupSummary{
			Instance: g[0].Instance,
			Key:      paramKey(g[0].Params),
			Summary:  summarize(lo.Map(g, func(r Row, _ int) float64 { return r.Score })),
			BestSeed: best.Seed,
			Feasible: lo.CountBy(g, func(r Row) bool { return r.Feasible }),
		}
	})
}

func printSummary(w io.Writer, rows []Row) {
	fmt.Fprintln(w, "\n=== SWEEP SUMMARY ===")
	fmt.Fprintf(w, "%-16s %-48s %4s %10s %10s %8s %12s %10s %6s %5s\n",
		"Instance", "Params", "N", "Mean", "Std", "CV(%)", "95% CI", "Best", "Seed", "Feas")
	fmt.Fprintln(w, strings.Repeat("-", 140))
	for _, s := range summarizeRows(rows) {
		fmt.Fprintf(w, "%-16s %-48s %4d %10.2f %10.2f %8.2f +/- %8.2f %10.2f %6d %5d\n",
			s.Instance, s.Key, s.N, s.Mean, s.Std, s.CV, s.Margin, s.Best, s.BestSeed, s.Feasible)
	}
	for _, r := range rows {
		if r.Solver != "ACO" {
			fmt.Fprintf(w, "%-16s %-48s %4s %10.2f (conflicts %d)\n", r.Instance, r.Solver, "-", r.Score, r.Conflicts)
		}
	}
}

// printBest prints the best feasible run on record for every instance, across all
// sweeps stored so far.
func printBest(ctx context.Context, w io.Writer, finder bestFinder, instances []string) {
	fmt.Fprintln(w, "\n=== BEST STORED RUNS ===")
	for _, name := range instances {
		r, err := finder.Best(ctx, name)
		switch {
		case err != nil:
			log.WithField("instance", name).Warnf("best run: %v", err)
		case r == nil:
			fmt.Fprintf(w, "%-16s no feasible run\n", name)
		default:
			fmt.Fprintf(w, "%-16s score %10.2f  seed %d  alpha=%g beta=%g rho=%g q=%g ants=%d iters=%d  run %s\n",
				name, r.Score, uint64(r.Seed), r.Params.Alpha, r.Params.Beta, r.Params.Rho, r.Params.Q,
				r.Params.NumAnts, r.Params.Iterations, r.RunID)
		}
	}
}

// isSkippable reports errors that only affect one instance.
func isSkippable(err error) bool {
	return errors.Is(err, algo.ErrStructuralInfeasibility) || errors.Is(err, algo.ErrAllAntsFailed)
}
