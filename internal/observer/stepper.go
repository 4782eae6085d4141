package observer

import (
	"context"
	"sync"

	"github.com/elektrokombinacija/mapf-aco/internal/algo"
)

// Stepper lets an interactive caller pause the colony between iterations and advance it
// one iteration at a time. While paused, OnIteration blocks the colony goroutine.
type Stepper struct {
	mu     sync.Mutex
	paused bool

	stepChan  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewStepper creates a running (unpaused) stepper.
func NewStepper() *Stepper {
	return &Stepper{
		stepChan: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Close releases a blocked iteration and lets every later one through. Call it when the
// run is cancelled while paused.
func (s *Stepper) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// CloseOnDone calls Close once ctx is done.
func (s *Stepper) CloseOnDone(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()
}

// Pause makes the next OnIteration block.
func (s *Stepper) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	// drop a release left over from an earlier Resume
	select {
	case <-s.stepChan:
	default:
	}
}

// Resume resumes execution.
func (s *Stepper) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	// Signal step channel in case waiting
	select {
	case s.stepChan <- struct{}{}:
	default:
	}
}

// Step releases exactly one blocked iteration and stays paused.
func (s *Stepper) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	select {
	case s.stepChan <- struct{}{}:
	default:
	}
}

// Paused reports whether the stepper is paused.
func (s *Stepper) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// OnIteration implements algo.Observer.
func (s *Stepper) OnIteration(algo.IterationStats) {
	if !s.Paused() {
		return
	}
	select {
	case <-s.stepChan:
	case <-s.done:
	}
}
