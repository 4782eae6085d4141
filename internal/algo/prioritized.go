package algo

import (
	"context"
	"fmt"
	"sort"

	"github.com/elektrokombinacija/mapf-aco/internal/core"
)

// DefaultSlack is the number of extra timesteps a leg may take to dodge reserved cells.
const DefaultSlack = 32

// Prioritized implements prioritized planning: agents are routed one at a time with
// space-time A*, each avoiding the cells reserved by the agents planned before it.
// It is deterministic and serves as a baseline for the colony.
type Prioritized struct {
	Scorer Scorer
	Slack  int
}

// NewPrioritized creates a prioritized planning solver.
func NewPrioritized(scorer Scorer, slack int) *Prioritized {
	if slack <= 0 {
		slack = DefaultSlack
	}
	return &Prioritized{Scorer: scorer, Slack: slack}
}

func (p *Prioritized) Name() string { return "Prioritized" }

// Solve implements prioritized planning.
func (p *Prioritized) Solve(ctx context.Context, inst *core.Instance) (*core.Solution, error) {
	g := inst.Graph()
	if err := CheckFeasible(g, inst.Agents); err != nil {
		return nil, err
	}

	occ := NewTemporalOccupancy()
	// cells where already planned agents rest after their route ends
	parked := make(map[core.Cell]int)
	blocked := func(t int, c core.Cell) bool {
		if occ.Occupied(t, c) {
			return true
		}
		from, ok := parked[c]
		return ok && t >= from
	}

	sol := core.NewSolution(len(inst.Agents))
	for _, a := range p.computePriority(inst.Agents) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var route core.Route
		for _, leg := range a.Legs() {
			t0 := len(route)
			short, ok := ShortestPath(g, leg.From, leg.To, t0)
			if !ok {
				return nil, fmt.Errorf("%w: agent %d %s leg: %v unreachable from %v",
					ErrStructuralInfeasibility, a.ID, leg.Kind, leg.To, leg.From)
			}
			r, ok := SpaceTimeAStar(g, leg.From, leg.To, t0, t0+len(short)+p.Slack, blocked)
			if !ok {
				log.WithField("agent", a.ID).WithField("leg", leg.Kind).
					Debug("no reservation-free route, using shortest path")
				r = short
			}
			route = append(route, r...)
		}
		occ.ClaimRoute(route)
		parked[route.Last(a.Start)] = len(route)
		sol.Routes[a.ID] = route
	}

	p.Scorer.Score(inst.Starts(), sol)
	return sol, nil
}

// computePriority orders agents for planning: longest lower-bound trip first, ties by ID.
func (p *Prioritized) computePriority(agents []*core.Agent) []*core.Agent {
	bound := func(a *core.Agent) float64 {
		return a.Start.Octile(a.Pickup) + a.Pickup.Octile(a.Drop)
	}
	out := make([]*core.Agent, len(agents))
	copy(out, agents)
	sort.SliceStable(out, func(i, j int) bool {
		bi, bj := bound(out[i]), bound(out[j])
		if bi != bj {
			return bi > bj
		}
		return out[i].ID < out[j].ID
	})
	return out
}
