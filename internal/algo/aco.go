package algo

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/elektrokombinacija/mapf-aco/internal/core"
	"github.com/elektrokombinacija/mapf-aco/internal/randengine"
)

// IterationStats is reported to observers after every iteration.
type IterationStats struct {
	Iteration     int     // 0-based
	IterationBest float64 // best score among this iteration's ants
	Best          float64 // incumbent score after the update
	Conflicts     int     // conflicts of the iteration-best
	Distance      float64 // distance of the iteration-best
	FailedAnts    int
	Improved      bool // the incumbent was replaced
}

// Observer receives iteration diagnostics. Calls come from the goroutine running the
// colony, between iterations. The search does not depend on observers.
type Observer interface {
	OnIteration(IterationStats)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(IterationStats)

// OnIteration calls f(s).
func (f ObserverFunc) OnIteration(s IterationStats) { f(s) }

// Option customizes a Colony.
type Option func(*Colony)

// WithObserver subscribes o to iteration diagnostics.
func WithObserver(o Observer) Option {
	return func(c *Colony) { c.observers = append(c.observers, o) }
}

// WithEngine replaces the engine seeded from Config.Seed.
func WithEngine(e *randengine.Engine) Option {
	return func(c *Colony) { c.rng = e }
}

// Colony is the mutable state of one ACO run: the trail table and the incumbent.
// It is created per run and discarded afterwards.
type Colony struct {
	graph  *core.GridGraph
	agents []*core.Agent
	starts []core.Cell
	cfg    Config
	scorer Scorer

	trail     *PheromoneTable
	rng       *randengine.Engine
	observers []Observer

	best      *core.Solution
	completed int
}

// NewColony validates cfg and initializes the trail table over g.
func NewColony(g *core.GridGraph, agents []*core.Agent, cfg Config, opts ...Option) (*Colony, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return nil, core.ErrNoAgents
	}
	c := &Colony{
		graph:  g,
		agents: agents,
		starts: lo.Map(agents, func(a *core.Agent, _ int) core.Cell { return a.Start }),
		cfg:    cfg,
		scorer: cfg.Scorer(),
		trail:  NewPheromoneTable(g, cfg.InitialTrail),
		rng:    randengine.New(cfg.Seed),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Trail returns the colony's trail table.
func (c *Colony) Trail() *PheromoneTable { return c.trail }

// Best returns the incumbent, or nil before the first iteration.
func (c *Colony) Best() *core.Solution { return c.best }

// Iterations returns the number of completed iterations.
func (c *Colony) Iterations() int { return c.completed }

// Run checks feasibility, then runs the configured number of iterations and returns the
// incumbent. ctx is checked between iterations only; on cancellation the incumbent found
// so far is returned together with ctx.Err().
func (c *Colony) Run(ctx context.Context) (*core.Solution, error) {
	if err := CheckFeasible(c.graph, c.agents); err != nil {
		return nil, err
	}
	for it := c.completed; it < c.cfg.Iterations; it++ {
		if err := ctx.Err(); err != nil {
			log.WithField("iteration", it).Info("run cancelled")
			return c.best, err
		}
		if _, err := c.Iterate(); err != nil {
			return c.best, err
		}
	}
	return c.best, nil
}

// Iterate runs one iteration: construct every ant, pick the iteration-best, evaporate,
// reinforce and update the incumbent.
func (c *Colony) Iterate() (IterationStats, error) {
	it := c.completed
	sols, errs := c.construct()

	var ib *core.Solution
	for _, s := range sols {
		if s != nil && (ib == nil || s.Score < ib.Score) {
			ib = s
		}
	}
	failed := lo.CountBy(sols, func(s *core.Solution) bool { return s == nil })
	if ib == nil {
		errs = lo.Compact(errs)
		return IterationStats{}, fmt.Errorf("%w: iteration %d: %w", ErrAllAntsFailed, it, errs[len(errs)-1])
	}
	if failed > 0 {
		log.WithFields(logrus.Fields{
			"iteration": it,
			"failed":    failed,
			"error":     lo.Compact(errs)[0],
		}).Debug("ants discarded")
	}

	c.trail.Evaporate(c.cfg.Rho)
	c.trail.Reinforce(c.starts, ib, c.cfg.Q)

	improved := c.best == nil || ib.Score < c.best.Score
	if improved {
		c.best = ib
	}
	c.completed++

	stats := IterationStats{
		Iteration:     it,
		IterationBest: ib.Score,
		Best:          c.best.Score,
		Conflicts:     ib.Conflicts,
		Distance:      ib.Distance,
		FailedAnts:    failed,
		Improved:      improved,
	}
	log.WithFields(logrus.Fields{
		"iteration": it,
		"iter_best": ib.Score,
		"best":      c.best.Score,
		"conflicts": ib.Conflicts,
	}).Trace("iteration done")
	for _, o := range c.observers {
		o.OnIteration(stats)
	}
	return stats, nil
}

// construct builds and scores NumAnts candidate solutions in parallel. Each ant gets an
// engine forked in ant order, so results do not depend on the worker count. A failed ant
// leaves a nil solution and its error at its index.
func (c *Colony) construct() ([]*core.Solution, []error) {
	n := c.cfg.NumAnts
	engines := make([]*randengine.Engine, n)
	for i := range engines {
		engines[i] = c.rng.Fork()
	}
	sols := make([]*core.Solution, n)
	errs := make([]error, n)

	var g errgroup.Group
	g.SetLimit(c.cfg.workers())
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			b := NewRouteBuilder(c.graph, c.trail, engines[i], c.cfg)
			sol, err := b.BuildSolution(c.agents)
			if err != nil {
				errs[i] = fmt.Errorf("ant %d: %w", i, err)
				return nil
			}
			c.scorer.Score(c.starts, sol)
			sols[i] = sol
			return nil
		})
	}
	_ = g.Wait()
	return sols, errs
}

// CheckFeasible rejects agents whose legs cannot be completed on g: an endpoint that is
// not a node, an isolated leg endpoint, or a target in another connected region.
func CheckFeasible(g *core.GridGraph, agents []*core.Agent) error {
	for _, a := range agents {
		for _, c := range a.Endpoints() {
			if !g.Contains(c) {
				return fmt.Errorf("%w: agent %d endpoint %v is not a free cell", ErrStructuralInfeasibility, a.ID, c)
			}
		}
		for _, leg := range a.Legs() {
			if leg.From == leg.To {
				continue
			}
			for _, c := range []core.Cell{leg.From, leg.To} {
				if len(g.Neighbors(c)) == 0 {
					return fmt.Errorf("%w: agent %d %s leg: cell %v has no free neighbors",
						ErrStructuralInfeasibility, a.ID, leg.Kind, c)
				}
			}
			if !g.Reachable(leg.From, leg.To) {
				return fmt.Errorf("%w: agent %d %s leg: %v unreachable from %v",
					ErrStructuralInfeasibility, a.ID, leg.Kind, leg.To, leg.From)
			}
		}
	}
	return nil
}

// ACO is the ant colony planner as a Solver. Each Solve runs a fresh Colony.
type ACO struct {
	cfg  Config
	opts []Option
}

// NewACO creates an ACO solver.
func NewACO(cfg Config, opts ...Option) *ACO {
	return &ACO{cfg: cfg, opts: opts}
}

func (a *ACO) Name() string { return "ACO" }

// Solve runs a colony over the instance graph.
func (a *ACO) Solve(ctx context.Context, inst *core.Instance) (*core.Solution, error) {
	col, err := NewColony(inst.Graph(), inst.Agents, a.cfg, a.opts...)
	if err != nil {
		return nil, err
	}
	return col.Run(ctx)
}
