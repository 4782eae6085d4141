package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Grid characters used by the ASCII map format.
const (
	FreeChar     = '.'
	ObstacleChar = '#'
)

// MarshalJSON encodes a cell as [row, col].
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.Row, c.Col})
}

// UnmarshalJSON decodes a cell from [row, col].
func (c *Cell) UnmarshalJSON(data []byte) error {
	var rc [2]int
	if err := json.Unmarshal(data, &rc); err != nil {
		return fmt.Errorf("core: cell must be [row, col]: %w", err)
	}
	c.Row, c.Col = rc[0], rc[1]
	return nil
}

// GeneratorParams records how a generated instance was produced.
type GeneratorParams struct {
	Seed            uint64  `json:"seed"`
	NumAgents       int     `json:"num_agents"`
	Rows            int     `json:"rows"`
	Cols            int     `json:"cols"`
	ObstacleDensity float64 `json:"obstacle_density"`
}

// AgentFile is the serialized form of an Agent.
type AgentFile struct {
	Start  Cell `json:"start"`
	Pickup Cell `json:"pickup"`
	Drop   Cell `json:"drop"`
}

// InstanceFile is the JSON instance format shared by the CLI and tools.
type InstanceFile struct {
	Name         string           `json:"name"`
	Params       *GeneratorParams `json:"params,omitempty"`
	Connectivity string           `json:"connectivity,omitempty"`
	Grid         []string         `json:"grid"`
	Agents       []AgentFile      `json:"agents"`
	Generated    string           `json:"generated,omitempty"`
}

// ParseGrid converts ASCII rows into an Environment. '.', '0' and ' ' are free; every
// other character is an obstacle.
func ParseGrid(rows []string) (Environment, error) {
	env := make(Environment, 0, len(rows))
	for _, line := range rows {
		line = strings.TrimRight(line, "\r")
		row := make([]int, len(line))
		for i := 0; i < len(line); i++ {
			switch line[i] {
			case FreeChar, '0', ' ':
				row[i] = 0
			default:
				row[i] = 1
			}
		}
		env = append(env, row)
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return env, nil
}

// FormatGrid renders env with FreeChar and ObstacleChar.
func FormatGrid(env Environment) []string {
	out := make([]string, len(env))
	var b strings.Builder
	for r, row := range env {
		b.Reset()
		for _, v := range row {
			if v == 0 {
				b.WriteByte(FreeChar)
			} else {
				b.WriteByte(ObstacleChar)
			}
		}
		out[r] = b.String()
	}
	return out
}

// ToInstance converts the file into a validated Instance.
func (f *InstanceFile) ToInstance() (*Instance, error) {
	env, err := ParseGrid(f.Grid)
	if err != nil {
		return nil, err
	}
	conn, err := ParseConnectivity(f.Connectivity)
	if err != nil {
		return nil, err
	}
	agents := make([]*Agent, len(f.Agents))
	for i, a := range f.Agents {
		agents[i] = &Agent{Start: a.Start, Pickup: a.Pickup, Drop: a.Drop}
	}
	inst := NewInstance(env, conn, agents)
	inst.Name = f.Name
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

// NewInstanceFile serializes an instance.
func NewInstanceFile(inst *Instance) *InstanceFile {
	f := &InstanceFile{
		Name:         inst.Name,
		Connectivity: inst.Conn.String(),
		Grid:         FormatGrid(inst.Env),
		Agents:       make([]AgentFile, len(inst.Agents)),
	}
	for i, a := range inst.Agents {
		f.Agents[i] = AgentFile{Start: a.Start, Pickup: a.Pickup, Drop: a.Drop}
	}
	return f
}

// ReadInstanceFile reads a JSON instance file without validating it. The name defaults
// to the file path without its extension.
func ReadInstanceFile(path string) (*InstanceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f InstanceFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("core: parse %s: %w", path, err)
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	return &f, nil
}

// LoadInstance reads a JSON instance file and converts it into a validated Instance.
func LoadInstance(path string) (*Instance, error) {
	f, err := ReadInstanceFile(path)
	if err != nil {
		return nil, err
	}
	return f.ToInstance()
}

// SaveInstanceFile writes f as indented JSON.
func SaveInstanceFile(path string, f *InstanceFile) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
