package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/mapf-aco/internal/algo"
	"github.com/elektrokombinacija/mapf-aco/internal/config"
	"github.com/elektrokombinacija/mapf-aco/internal/core"
	"github.com/elektrokombinacija/mapf-aco/internal/observer"
	"github.com/elektrokombinacija/mapf-aco/internal/sim"
)

// Result is the JSON document written by the planner.
type Result struct {
	RunID         string        `json:"run_id"`
	Instance      string        `json:"instance"`
	Solver        string        `json:"solver"`
	Routes        [][]core.Cell `json:"routes"`
	Score         float64       `json:"score"`
	Distance      float64       `json:"distance"`
	Conflicts     int           `json:"conflicts"`
	MinSeparation *float64      `json:"min_separation"` // null with a single agent
	Feasible      bool          `json:"feasible"`
	Iterations    int           `json:"iterations,omitempty"`
	Convergence   []float64     `json:"convergence,omitempty"`
	ElapsedMs     float64       `json:"elapsed_ms"`
	Playback      *sim.Metrics  `json:"playback,omitempty"`

	sol *core.Solution
}

// snapAgents moves every endpoint that is not a free cell to the nearest free cell
// within radius, as a UI would when validating picked points.
func snapAgents(f *core.InstanceFile, radius int) error {
	env, err := core.ParseGrid(f.Grid)
	if err != nil {
		return err
	}
	for i := range f.Agents {
		a := &f.Agents[i]
		for _, p := range []*core.Cell{&a.Start, &a.Pickup, &a.Drop} {
			c, ok := core.SnapToFreeCell(env, p.Row, p.Col, radius)
			if !ok {
				return fmt.Errorf("agent %d: no free cell within %d of %v", i, radius, *p)
			}
			if c != *p {
				log.WithFields(logrus.Fields{"agent": i, "from": *p, "to": c}).Info("snapped endpoint")
				*p = c
			}
		}
	}
	return nil
}

func newResult(name, solver string, inst *core.Instance, sol *core.Solution) *Result {
	r := &Result{
		Instance:  name,
		Solver:    solver,
		Routes:    lo.Map(sol.Routes, func(rt core.Route, i int) []core.Cell { return rt.Cells(inst.Agents[i].Start) }),
		Score:     sol.Score,
		Distance:  sol.Distance,
		Conflicts: sol.Conflicts,
		Feasible:  sol.Conflicts == 0,
		sol:       sol,
	}
	if !math.IsInf(sol.MinSeparation, 0) {
		r.MinSeparation = lo.ToPtr(sol.MinSeparation)
	}
	return r
}

// plan runs the selected solver on inst. The returned PlanResult is nil for the baseline.
func plan(ctx context.Context, cfg config.Config, solver string, inst *core.Instance) (*Result, *algo.PlanResult, error) {
	switch solver {
	case "aco":
		rec := observer.NewRecorder()
		logObs := observer.NewLogObserver(cfg.LogEvery, logrus.Fields{"instance": inst.Name})
		res, err := algo.Plan(ctx, inst.Env, inst.Agents, cfg.Planner, algo.WithObserver(observer.Multi{rec, logObs}))
		if res == nil {
			return nil, nil, err
		}
		out := newResult(inst.Name, "ACO", inst, res.Solution)
		out.RunID = res.RunID.String()
		out.Iterations = res.Iterations
		out.Convergence = rec.Convergence()
		out.ElapsedMs = float64(res.Elapsed.Microseconds()) / 1000
		return out, res, err

	case "prioritized":
		p := algo.NewPrioritized(cfg.Planner.Scorer(), 0)
		start := time.Now()
		sol, err := p.Solve(ctx, inst)
		if err != nil {
			return nil, nil, err
		}
		out := newResult(inst.Name, p.Name(), inst, sol)
		out.RunID = uuid.NewString()
		out.ElapsedMs = float64(time.Since(start).Microseconds()) / 1000
		return out, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown solver %q (aco or prioritized)", solver)
}

// replay plays r's routes back and attaches the execution metrics.
func replay(ctx context.Context, cfg config.Config, inst *core.Instance, r *Result) error {
	m, err := sim.Simulate(ctx, inst, r.sol, sim.Config{MinSeparation: cfg.Planner.MinSeparation})
	if err != nil {
		return err
	}
	if !m.Complete(len(inst.Agents)) {
		log.Warnf("playback delivered %d of %d agents", m.Drops, len(inst.Agents))
	}
	r.Playback = m
	return nil
}

// partialReason names why a plan came back together with an error.
func partialReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "interrupted"
	case errors.Is(err, algo.ErrAllAntsFailed):
		return "every ant failed in a later iteration"
	}
	return "planning stopped early"
}

func writeResult(w io.Writer, r *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
