package core

// Step is the cell an agent enters at timestep T.
type Step struct {
	T    int
	Cell Cell
}

// Route is a sequence of steps with contiguous timesteps. The agent's start cell is
// implicit and precedes the first step.
type Route []Step

// Last returns the final cell of the route, or start when the route is empty.
func (r Route) Last(start Cell) Cell {
	if len(r) == 0 {
		return start
	}
	return r[len(r)-1].Cell
}

// At returns the agent's cell at timestep t. Before the first step it is start; after
// the last step the agent stays parked at its final cell.
func (r Route) At(start Cell, t int) Cell {
	if len(r) == 0 || t < r[0].T {
		return start
	}
	i := t - r[0].T
	if i >= len(r) {
		return r[len(r)-1].Cell
	}
	return r[i].Cell
}

// Cells returns start followed by every stepped cell, for rendering.
func (r Route) Cells(start Cell) []Cell {
	out := make([]Cell, 0, len(r)+1)
	out = append(out, start)
	for _, s := range r {
		out = append(out, s.Cell)
	}
	return out
}

// Edges returns the directed edges walked from start along the route.
func (r Route) Edges(start Cell) []Edge {
	out := make([]Edge, 0, len(r))
	prev := start
	for _, s := range r {
		out = append(out, Edge{From: prev, To: s.Cell})
		prev = s.Cell
	}
	return out
}

// Length returns the summed move cost from start along the route.
func (r Route) Length(start Cell) float64 {
	total := 0.0
	prev := start
	for _, s := range r {
		total += MoveCost(prev, s.Cell)
		prev = s.Cell
	}
	return total
}

// Solution is one candidate plan for every agent of an instance.
type Solution struct {
	Routes        []Route // indexed by AgentID
	Distance      float64
	Conflicts     int
	MinSeparation float64
	Score         float64
	Feasible      bool // no conflicts
}

// NewSolution creates an empty solution for n agents.
func NewSolution(n int) *Solution {
	return &Solution{
		Routes: make([]Route, n),
	}
}

// Makespan returns the length in steps of the longest route.
func (s *Solution) Makespan() int {
	m := 0
	for _, r := range s.Routes {
		if len(r) > m {
			m = len(r)
		}
	}
	return m
}
