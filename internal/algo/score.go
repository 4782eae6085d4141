package algo

import (
	"math"

	"github.com/elektrokombinacija/mapf-aco/internal/core"
)

// Scorer turns a set of routes into the penalized objective minimized by the planners.
// It is a pure function of the routes and is symmetric under agent reordering.
type Scorer struct {
	DistanceWeight   float64
	ConflictWeight   float64
	MinSeparation    float64
	SeparationWeight float64
}

// Score fills the metrics of sol and returns its score:
//
//	DistanceWeight*distance + ConflictWeight*conflicts + SeparationWeight*closePairs
//
// closePairs counts pair-timesteps strictly closer than MinSeparation without colliding.
func (s Scorer) Score(starts []core.Cell, sol *core.Solution) float64 {
	dist := 0.0
	for i, r := range sol.Routes {
		dist += r.Length(starts[i])
	}

	conflicts, near := 0, 0
	minSep := math.Inf(1)
	h := horizon(sol.Routes)
	pairwise(starts, sol.Routes, 1, func(t, _, _ int, a, b core.Cell) {
		d := a.Dist(b)
		if d < minSep {
			minSep = d
		}
		// the t = 0 pass over empty routes only feeds minSep
		if t >= h {
			return
		}
		switch {
		case d == 0:
			conflicts++
		case d < s.MinSeparation:
			near++
		}
	})

	sol.Distance = dist
	sol.Conflicts = conflicts
	sol.MinSeparation = minSep
	sol.Score = s.DistanceWeight*dist + s.ConflictWeight*float64(conflicts)
	if s.SeparationWeight > 0 {
		sol.Score += s.SeparationWeight * float64(near)
	}
	sol.Feasible = conflicts == 0
	return sol.Score
}
