package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAgents indicates an instance without agents.
	ErrNoAgents = errors.New("core: instance has no agents")
	// ErrCellOutOfBounds indicates an agent endpoint outside the grid.
	ErrCellOutOfBounds = errors.New("core: cell out of bounds")
	// ErrCellBlocked indicates an agent endpoint on an obstacle.
	ErrCellBlocked = errors.New("core: cell is an obstacle")
)

// Instance is a planning problem: an environment and the agents to route on it.
type Instance struct {
	Name   string
	Env    Environment
	Conn   Connectivity
	Agents []*Agent

	graph *GridGraph
}

// NewInstance creates an instance and assigns agent IDs by position.
func NewInstance(env Environment, conn Connectivity, agents []*Agent) *Instance {
	for i, a := range agents {
		a.ID = AgentID(i)
	}
	return &Instance{
		Env:    env,
		Conn:   conn,
		Agents: agents,
	}
}

// Graph lazily builds and caches the instance's GridGraph.
func (inst *Instance) Graph() *GridGraph {
	if inst.graph == nil {
		inst.graph = Build(inst.Env, inst.Conn)
	}
	return inst.graph
}

// Validate checks grid shape and that every agent endpoint is an in-bounds free cell.
// Graph-level feasibility (isolated cells, reachability) is left to the planners.
func (inst *Instance) Validate() error {
	if err := inst.Env.Validate(); err != nil {
		return err
	}
	if len(inst.Agents) == 0 {
		return ErrNoAgents
	}
	for _, a := range inst.Agents {
		for i, c := range a.Endpoints() {
			name := [...]string{"start", "pickup", "drop"}[i]
			if !inst.Env.InBounds(c) {
				return fmt.Errorf("agent %d %s %v: %w", a.ID, name, c, ErrCellOutOfBounds)
			}
			if !inst.Env.Free(c) {
				return fmt.Errorf("agent %d %s %v: %w", a.ID, name, c, ErrCellBlocked)
			}
		}
	}
	return nil
}

// Starts returns each agent's start cell, indexed by AgentID.
func (inst *Instance) Starts() []Cell {
	out := make([]Cell, len(inst.Agents))
	for i, a := range inst.Agents {
		out[i] = a.Start
	}
	return out
}
