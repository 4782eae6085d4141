// Package randengine wraps golang.org/x/exp/rand with the sampling helpers used by the planners.
package randengine

import (
	"math"

	"golang.org/x/exp/rand"
)

// Engine is a seeded pseudo-random generator. It is not safe for concurrent use; give
// each goroutine its own Engine via Fork.
type Engine struct {
	*rand.Rand
}

// New creates an engine from seed.
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed))}
}

// Fork derives an independent engine seeded from e's stream.
func (e *Engine) Fork() *Engine {
	return New(e.Uint64())
}

// DiscreteDistribution draws an index with probability proportional to weight using a
// uniform draw from e. See Pick for the selection rule.
func (e *Engine) DiscreteDistribution(weight []float64) (idx int, ok bool) {
	return Pick(weight, e.Float64())
}

// Pick selects an index for the draw r in [0, 1): the first index whose cumulative
// normalized weight reaches r wins. If rounding leaves r above every cumulative value the
// last index is returned. ok is false when the weights do not sum to a positive finite
// value; nothing is selected and the caller picks its own fallback.
func Pick(weight []float64, r float64) (idx int, ok bool) {
	total := 0.
	for _, w := range weight {
		total += w
	}
	if len(weight) == 0 || !(total > 0) || math.IsInf(total, 1) {
		return -1, false
	}
	acc := 0.
	for i, w := range weight {
		acc += w / total
		if r <= acc {
			return i, true
		}
	}
	return len(weight) - 1, true
}

// Choose draws an index proportional to weight and falls back to a uniform pick when the
// weights are degenerate. weight must be non-empty. degenerate reports whether the fallback was taken.
func (e *Engine) Choose(weight []float64) (idx int, degenerate bool) {
	if i, ok := e.DiscreteDistribution(weight); ok {
		return i, false
	}
	return e.Intn(len(weight)), true
}

// PTrue returns true with probability p.
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}
