// Package sim plays a planned solution back one timestep at a time.
//
// The simulator moves every agent along its route, records pickup and drop
// events as they happen, and collects execution metrics: collisions, close
// approaches, completion times. It is independent of the planner that produced
// the routes, so it doubles as a check on the planners' own scoring.
package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/mapf-aco/internal/core"
)

var log = logrus.WithField("module", "sim")

// Phase is where an agent is in its pickup/drop journey.
type Phase int

const (
	PhaseToPickup Phase = iota
	PhaseToDrop
	PhaseDone
)

func (p Phase) String() string {
	return [...]string{"to_pickup", "to_drop", "done"}[p]
}

// EventKind labels an Event.
type EventKind string

const (
	EventPickup    EventKind = "pickup"
	EventDrop      EventKind = "drop"
	EventCollision EventKind = "collision"
)

// Event is something that happened during playback. Tick 0 is the start
// configuration; tick k is the state after move k.
type Event struct {
	Kind  EventKind    `json:"kind"`
	Tick  int          `json:"tick"`
	Agent core.AgentID `json:"agent"`
	Other core.AgentID `json:"other,omitempty"` // second agent of a collision
	Cell  core.Cell    `json:"cell"`
}

// Config configures a playback run.
type Config struct {
	// MinSeparation is the distance below which a non-colliding pair counts as a close
	// approach. Zero disables close-approach counting.
	MinSeparation float64
	// KeepEvents stores every event in Metrics.Events.
	KeepEvents bool
}

// Metrics collects execution statistics.
type Metrics struct {
	Ticks           int     `json:"ticks"`
	Pickups         int     `json:"pickups"`
	Drops           int     `json:"drops"`
	Collisions      int     `json:"collisions"`
	CloseApproaches int     `json:"close_approaches"`
	MinSeparation   float64 `json:"-"`
	AvgCompletion   float64 `json:"avg_completion"` // mean drop tick
	LastCompletion  int     `json:"last_completion"`
	Distance        float64 `json:"distance"`
	Events          []Event `json:"events,omitempty"`
}

// MarshalJSON writes MinSeparation as null when no pair was ever compared.
func (m Metrics) MarshalJSON() ([]byte, error) {
	type plain Metrics
	var sep *float64
	if !math.IsInf(m.MinSeparation, 1) {
		v := m.MinSeparation
		sep = &v
	}
	return json.Marshal(struct {
		plain
		MinSeparation *float64 `json:"min_separation"`
	}{plain(m), sep})
}

// Complete reports whether every agent delivered.
func (m *Metrics) Complete(agents int) bool {
	return m.Drops == agents
}

// Simulator replays a solution against its instance.
type Simulator struct {
	mu sync.Mutex

	config Config
	inst   *core.Instance
	sol    *core.Solution

	tick      int
	horizon   int
	positions []core.Cell
	phases    []Phase

	metrics   Metrics
	completed int
}

// NewSimulator creates a simulator positioned at the start configuration.
func NewSimulator(inst *core.Instance, sol *core.Solution, config Config) (*Simulator, error) {
	if sol == nil || len(sol.Routes) != len(inst.Agents) {
		return nil, fmt.Errorf("sim: solution does not match instance %q", inst.Name)
	}
	s := &Simulator{
		config:    config,
		inst:      inst,
		sol:       sol,
		horizon:   sol.Makespan(),
		positions: inst.Starts(),
		phases:    make([]Phase, len(inst.Agents)),
		metrics:   Metrics{MinSeparation: math.Inf(1)},
	}
	s.advancePhases()
	return s, nil
}

// Done reports whether every route has been played out.
func (s *Simulator) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick >= s.horizon
}

// Tick returns the number of moves played so far.
func (s *Simulator) Tick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Positions returns a copy of the current agent cells.
func (s *Simulator) Positions() []core.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Cell, len(s.positions))
	copy(out, s.positions)
	return out
}

// Phase returns the current phase of agent id.
func (s *Simulator) Phase(id core.AgentID) Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phases[id]
}

// Step plays one move for every agent. It returns false once the horizon is reached.
func (s *Simulator) Step() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tick >= s.horizon {
		return false
	}
	t := s.tick
	s.tick++
	for i, r := range s.sol.Routes {
		next := r.At(s.inst.Agents[i].Start, t)
		if next != s.positions[i] {
			s.metrics.Distance += core.MoveCost(s.positions[i], next)
			s.positions[i] = next
		}
	}
	s.advancePhases()
	s.checkPairs()
	return true
}

// advancePhases records pickups and drops reached at the current tick. An agent whose
// pickup and drop coincide completes both in one tick.
func (s *Simulator) advancePhases() {
	for i, a := range s.inst.Agents {
		pos := s.positions[i]
		if s.phases[i] == PhaseToPickup && pos == a.Pickup {
			s.phases[i] = PhaseToDrop
			s.metrics.Pickups++
			s.emit(Event{Kind: EventPickup, Tick: s.tick, Agent: a.ID, Cell: pos})
		}
		if s.phases[i] == PhaseToDrop && pos == a.Drop {
			s.phases[i] = PhaseDone
			s.metrics.Drops++
			s.completed += s.tick
			s.metrics.AvgCompletion = float64(s.completed) / float64(s.metrics.Drops)
			s.metrics.LastCompletion = s.tick
			s.emit(Event{Kind: EventDrop, Tick: s.tick, Agent: a.ID, Cell: pos})
		}
	}
}

func (s *Simulator) checkPairs() {
	for i := 0; i < len(s.positions); i++ {
		for j := i + 1; j < len(s.positions); j++ {
			d := s.positions[i].Dist(s.positions[j])
			if d < s.metrics.MinSeparation {
				s.metrics.MinSeparation = d
			}
			switch {
			case d == 0:
				s.metrics.Collisions++
				s.emit(Event{
					Kind:  EventCollision,
					Tick:  s.tick,
					Agent: core.AgentID(i),
					Other: core.AgentID(j),
					Cell:  s.positions[i],
				})
			case d < s.config.MinSeparation:
				s.metrics.CloseApproaches++
			}
		}
	}
}

func (s *Simulator) emit(e Event) {
	if e.Kind == EventCollision {
		log.WithFields(logrus.Fields{
			"tick":   e.Tick,
			"agents": []core.AgentID{e.Agent, e.Other},
			"cell":   e.Cell,
		}).Debug("collision")
	}
	if s.config.KeepEvents {
		s.metrics.Events = append(s.metrics.Events, e)
	}
}

// Run plays the solution to the end, checking ctx between ticks.
func (s *Simulator) Run(ctx context.Context) (*Metrics, error) {
	for s.Step() {
		if err := ctx.Err(); err != nil {
			m := s.Metrics()
			return &m, err
		}
	}
	m := s.Metrics()
	log.WithFields(logrus.Fields{
		"instance":   s.inst.Name,
		"ticks":      m.Ticks,
		"drops":      m.Drops,
		"collisions": m.Collisions,
	}).Info("playback finished")
	return &m, nil
}

// Metrics returns a snapshot of the metrics collected so far.
func (s *Simulator) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.metrics
	m.Ticks = s.tick
	m.Events = append([]Event(nil), s.metrics.Events...)
	return m
}

// ExportMetrics writes the current metrics to path as indented JSON.
func (s *Simulator) ExportMetrics(path string) error {
	data, err := json.MarshalIndent(s.Metrics(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Simulate is a convenience wrapper that plays sol to the end.
func Simulate(ctx context.Context, inst *core.Instance, sol *core.Solution, config Config) (*Metrics, error) {
	s, err := NewSimulator(inst, sol, config)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}
