package algo

import (
	"fmt"
	"math/bits"
	"runtime"

	"github.com/elektrokombinacija/mapf-aco/internal/core"
)

// Config holds the ACO run parameters. It is treated as immutable once a run starts.
type Config struct {
	Alpha float64 `yaml:"alpha"` // pheromone exponent
	Beta  float64 `yaml:"beta"`  // inverse-distance exponent
	Rho   float64 `yaml:"rho"`   // evaporation rate, in (0, 1)
	Q     float64 `yaml:"q"`     // reinforcement constant

	NumAnts    int `yaml:"num_ants"`
	Iterations int `yaml:"iterations"`

	ConflictWeight   float64 `yaml:"conflict_weight"`
	DistanceWeight   float64 `yaml:"distance_weight"`
	MinSeparation    float64 `yaml:"min_separation"`
	SeparationWeight float64 `yaml:"separation_weight"` // 0 disables the separation penalty

	InitialTrail    float64 `yaml:"initial_trail"`
	OccupiedPenalty float64 `yaml:"occupied_penalty"`
	MaxLegSteps     int     `yaml:"max_leg_steps"` // 0 derives the bound from graph size

	Workers      int    `yaml:"workers"` // 0 uses GOMAXPROCS
	Seed         uint64 `yaml:"seed"`
	Connectivity string `yaml:"connectivity"`
}

// DefaultConfig returns the reference parameter set.
func DefaultConfig() Config {
	return Config{
		Alpha:            1.0,
		Beta:             3.0,
		Rho:              0.1,
		Q:                10.0,
		NumAnts:          30,
		Iterations:       80,
		ConflictWeight:   1000.0,
		DistanceWeight:   1.0,
		MinSeparation:    6.0,
		SeparationWeight: 0,
		InitialTrail:     0.01,
		OccupiedPenalty:  1e-4,
		MaxLegSteps:      0,
		Workers:          0,
		Seed:             0,
		Connectivity:     "8",
	}
}

// Validate rejects parameters the loop cannot run with.
func (c Config) Validate() error {
	switch {
	case !(c.Rho > 0 && c.Rho < 1):
		return fmt.Errorf("%w: rho must be in (0, 1), got %v", ErrConfiguration, c.Rho)
	case !(c.Q > 0):
		return fmt.Errorf("%w: q must be positive, got %v", ErrConfiguration, c.Q)
	case c.NumAnts <= 0:
		return fmt.Errorf("%w: num_ants must be positive, got %d", ErrConfiguration, c.NumAnts)
	case c.Iterations <= 0:
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrConfiguration, c.Iterations)
	case c.Alpha < 0 || c.Beta < 0:
		return fmt.Errorf("%w: alpha and beta must be non-negative", ErrConfiguration)
	case c.ConflictWeight < 0 || c.DistanceWeight < 0 || c.SeparationWeight < 0 || c.MinSeparation < 0:
		return fmt.Errorf("%w: weights and min_separation must be non-negative", ErrConfiguration)
	case !(c.InitialTrail > 0):
		return fmt.Errorf("%w: initial_trail must be positive, got %v", ErrConfiguration, c.InitialTrail)
	case !(c.OccupiedPenalty > 0 && c.OccupiedPenalty <= 1):
		return fmt.Errorf("%w: occupied_penalty must be in (0, 1], got %v", ErrConfiguration, c.OccupiedPenalty)
	case c.MaxLegSteps < 0 || c.Workers < 0:
		return fmt.Errorf("%w: max_leg_steps and workers must be non-negative", ErrConfiguration)
	}
	if _, err := core.ParseConnectivity(c.Connectivity); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}

// Conn returns the parsed connectivity. Call Validate first.
func (c Config) Conn() core.Connectivity {
	conn, _ := core.ParseConnectivity(c.Connectivity)
	return conn
}

// legStepBound returns the per-leg step limit for a graph of n nodes. The default grows
// as n log n, the order of an unbiased walk's hitting time on a grid.
func (c Config) legStepBound(n int) int {
	if c.MaxLegSteps > 0 {
		return c.MaxLegSteps
	}
	return 8*n*bits.Len(uint(n)) + 1024
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Scorer returns the scorer configured by c.
func (c Config) Scorer() Scorer {
	return Scorer{
		DistanceWeight:   c.DistanceWeight,
		ConflictWeight:   c.ConflictWeight,
		MinSeparation:    c.MinSeparation,
		SeparationWeight: c.SeparationWeight,
	}
}
