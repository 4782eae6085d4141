package algo

import "github.com/elektrokombinacija/mapf-aco/internal/core"

type occKey struct {
	T    int
	Cell core.Cell
}

// TemporalOccupancy records which (timestep, cell) pairs earlier agents of the same
// candidate solution already claimed. It lives for one solution's construction only.
type TemporalOccupancy struct {
	claimed map[occKey]struct{}
}

// NewTemporalOccupancy creates an empty ledger.
func NewTemporalOccupancy() *TemporalOccupancy {
	return &TemporalOccupancy{claimed: make(map[occKey]struct{})}
}

// Occupied reports whether c is claimed at timestep t.
func (o *TemporalOccupancy) Occupied(t int, c core.Cell) bool {
	_, ok := o.claimed[occKey{T: t, Cell: c}]
	return ok
}

// Claim marks c as occupied at timestep t.
func (o *TemporalOccupancy) Claim(t int, c core.Cell) {
	o.claimed[occKey{T: t, Cell: c}] = struct{}{}
}

// ClaimRoute claims every step of r.
func (o *TemporalOccupancy) ClaimRoute(r core.Route) {
	for _, s := range r {
		o.Claim(s.T, s.Cell)
	}
}

// Len returns the number of claimed pairs.
func (o *TemporalOccupancy) Len() int { return len(o.claimed) }
