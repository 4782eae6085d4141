package algo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/mapf-aco/internal/core"
)

// PlanResult is the outcome of Plan in the form consumed by rendering collaborators.
type PlanResult struct {
	RunID uuid.UUID
	// Routes holds, per agent, the start cell followed by the cell at every timestep,
	// as (row, col) in grid orientation.
	Routes        [][]core.Cell
	Solution      *core.Solution
	Score         float64
	Distance      float64
	Conflicts     int
	MinSeparation float64
	Iterations    int
	Elapsed       time.Duration
}

// Plan validates its inputs, builds the grid graph and runs the ant colony. On
// cancellation the incumbent is returned together with ctx.Err() when one exists.
func Plan(ctx context.Context, env core.Environment, agents []*core.Agent, cfg Config, opts ...Option) (*PlanResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	inst := core.NewInstance(env, cfg.Conn(), agents)
	if err := inst.Validate(); err != nil {
		if errors.Is(err, core.ErrCellOutOfBounds) || errors.Is(err, core.ErrCellBlocked) {
			return nil, fmt.Errorf("%w: %w", ErrStructuralInfeasibility, err)
		}
		return nil, err
	}

	runID := uuid.New()
	entry := log.WithFields(logrus.Fields{
		"run":    runID,
		"agents": len(agents),
		"seed":   cfg.Seed,
	})
	entry.Info("planning")

	start := time.Now()
	col, err := NewColony(inst.Graph(), inst.Agents, cfg, opts...)
	if err != nil {
		return nil, err
	}
	sol, err := col.Run(ctx)
	if sol == nil {
		return nil, err
	}

	res := &PlanResult{
		RunID:         runID,
		Routes:        lo.Map(sol.Routes, func(r core.Route, i int) []core.Cell { return r.Cells(agents[i].Start) }),
		Solution:      sol,
		Score:         sol.Score,
		Distance:      sol.Distance,
		Conflicts:     sol.Conflicts,
		MinSeparation: sol.MinSeparation,
		Iterations:    col.Iterations(),
		Elapsed:       time.Since(start),
	}
	entry.WithFields(logrus.Fields{
		"score":     res.Score,
		"conflicts": res.Conflicts,
		"elapsed":   res.Elapsed,
	}).Info("planned")
	return res, err
}
