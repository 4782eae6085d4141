package algo

import "errors"

var (
	// ErrStructuralInfeasibility means an agent cannot complete a leg: an endpoint is not on
	// the graph or has no neighbors, the target is unreachable, or the leg hit its step bound.
	ErrStructuralInfeasibility = errors.New("algo: structurally infeasible")
	// ErrAllAntsFailed means every ant of an iteration was structurally infeasible.
	ErrAllAntsFailed = errors.New("algo: every ant failed in iteration")
	// ErrConfiguration reports an invalid parameter.
	ErrConfiguration = errors.New("algo: invalid configuration")
)
