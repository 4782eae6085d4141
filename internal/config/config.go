// Package config holds the YAML configuration shared by the planner CLI and the tools.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/elektrokombinacija/mapf-aco/internal/algo"
)

// Mongo selects where run records are stored. An empty URI disables the store.
type Mongo struct {
	URI        string `yaml:"uri"`
	DB         string `yaml:"db"`
	Collection string `yaml:"col"`
}

// Enabled reports whether a store is configured.
func (m Mongo) Enabled() bool { return m.URI != "" }

// Sweep lists the parameter values crossed by the sweep tool. An empty list keeps the
// planner value.
type Sweep struct {
	Alpha      []float64 `yaml:"alpha,omitempty"`
	Beta       []float64 `yaml:"beta,omitempty"`
	Rho        []float64 `yaml:"rho,omitempty"`
	Q          []float64 `yaml:"q,omitempty"`
	NumAnts    []int     `yaml:"num_ants,omitempty"`
	Iterations []int     `yaml:"iterations,omitempty"`
	Seeds      []uint64  `yaml:"seeds,omitempty"`
}

// Config is the root of the YAML configuration file.
type Config struct {
	Planner  algo.Config `yaml:"planner"`
	Instance string      `yaml:"instance,omitempty"` // instance JSON path
	Output   string      `yaml:"output,omitempty"`   // result path, empty writes to stdout
	LogLevel string      `yaml:"log_level,omitempty"`
	LogEvery int         `yaml:"log_every,omitempty"` // iteration log period, 0 logs improvements only
	Mongo    Mongo       `yaml:"mongo,omitempty"`
	Sweep    Sweep       `yaml:"sweep,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Planner:  algo.DefaultConfig(),
		LogLevel: "info",
		LogEvery: 10,
		Mongo: Mongo{
			DB:         "mapf_aco",
			Collection: "runs",
		},
	}
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Validate checks the planner section and the log level.
func (c Config) Validate() error {
	if err := c.Planner.Validate(); err != nil {
		return err
	}
	if _, ok := LogLevels[c.LogLevel]; !ok {
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	if c.LogEvery < 0 {
		return fmt.Errorf("config: log_every must be non-negative, got %d", c.LogEvery)
	}
	return nil
}
