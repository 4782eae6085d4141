package algo

import (
	"fmt"
	"math"

	"github.com/elektrokombinacija/mapf-aco/internal/core"
)

// DepositEpsilon guards the reinforcement amount against a zero score.
const DepositEpsilon = 1e-9

// PheromoneTable holds a positive trail intensity for every directed edge of a GridGraph.
// It is created once per run and updated only between iterations, by a single writer.
// Concurrent reads are safe while no update is in progress.
type PheromoneTable struct {
	trail map[core.Edge]float64
}

// NewPheromoneTable initializes every edge of g to initial.
func NewPheromoneTable(g *core.GridGraph, initial float64) *PheromoneTable {
	p := &PheromoneTable{trail: make(map[core.Edge]float64, g.EdgeCount())}
	for _, e := range g.Edges() {
		p.trail[e] = initial
	}
	return p
}

// Trail returns the intensity of e. Reading an edge that is not in the graph panics.
func (p *PheromoneTable) Trail(e core.Edge) float64 {
	v, ok := p.trail[e]
	if !ok {
		panic(fmt.Sprintf("algo: no pheromone entry for edge %v->%v", e.From, e.To))
	}
	return v
}

// Len returns the number of edges tracked.
func (p *PheromoneTable) Len() int { return len(p.trail) }

// Evaporate scales every trail by (1 - rho).
func (p *PheromoneTable) Evaporate(rho float64) {
	keep := 1 - rho
	for e, v := range p.trail {
		p.trail[e] = v * keep
	}
}

// Deposit adds amount to every traversal of the given edges. An edge walked twice is
// reinforced twice.
func (p *PheromoneTable) Deposit(edges []core.Edge, amount float64) {
	for _, e := range edges {
		if _, ok := p.trail[e]; !ok {
			panic(fmt.Sprintf("algo: deposit on unknown edge %v->%v", e.From, e.To))
		}
		p.trail[e] += amount
	}
}

// Reinforce deposits q/(score+DepositEpsilon) on every edge walked by the solution.
func (p *PheromoneTable) Reinforce(starts []core.Cell, sol *core.Solution, q float64) float64 {
	dep := q / (sol.Score + DepositEpsilon)
	for i, r := range sol.Routes {
		p.Deposit(r.Edges(starts[i]), dep)
	}
	return dep
}

// Bounds returns the smallest and largest trail values.
func (p *PheromoneTable) Bounds() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range p.trail {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
