package observer

import (
	"math"
	"sync"

	"github.com/samber/lo"

	"github.com/elektrokombinacija/mapf-aco/internal/algo"
)

// Recorder keeps the iteration history of a run. It is safe to read while the colony
// is running.
type Recorder struct {
	mu      sync.Mutex
	history []algo.IterationStats
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// OnIteration implements algo.Observer.
func (r *Recorder) OnIteration(s algo.IterationStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, s)
}

// History returns a copy of the recorded iterations.
func (r *Recorder) History() []algo.IterationStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]algo.IterationStats, len(r.history))
	copy(out, r.history)
	return out
}

// Best returns the latest incumbent score, or +Inf before the first iteration.
func (r *Recorder) Best() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return math.Inf(1)
	}
	return r.history[len(r.history)-1].Best
}

// Improvements returns the iterations at which the incumbent was replaced.
func (r *Recorder) Improvements() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.FilterMap(r.history, func(s algo.IterationStats, _ int) (int, bool) {
		return s.Iteration, s.Improved
	})
}

// Convergence returns the incumbent score after every iteration.
func (r *Recorder) Convergence() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.Map(r.history, func(s algo.IterationStats, _ int) float64 { return s.Best })
}
