package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteAt_ParksAtLastCell(t *testing.T) {
	start := Cell{0, 0}
	r := Route{{T: 0, Cell: Cell{0, 1}}, {T: 1, Cell: Cell{1, 1}}}

	tests := []struct {
		t    int
		want Cell
	}{
		{-1, start},
		{0, Cell{0, 1}},
		{1, Cell{1, 1}},
		{5, Cell{1, 1}},
	}
	for _, tt := range tests {
		if got := r.At(start, tt.t); got != tt.want {
			t.Errorf("At(%d) = %v, want %v", tt.t, got, tt.want)
		}
	}

	assert.Equal(t, start, Route(nil).At(start, 3))
	assert.Equal(t, start, Route(nil).Last(start))
}

func TestRouteLengthAndEdges(t *testing.T) {
	start := Cell{0, 0}
	r := Route{{T: 0, Cell: Cell{1, 1}}, {T: 1, Cell: Cell{1, 2}}}

	assert.InDelta(t, MoveDiag+MoveOrth, r.Length(start), 1e-12)
	assert.Equal(t, []Edge{
		{From: Cell{0, 0}, To: Cell{1, 1}},
		{From: Cell{1, 1}, To: Cell{1, 2}},
	}, r.Edges(start))
	assert.Equal(t, []Cell{{0, 0}, {1, 1}, {1, 2}}, r.Cells(start))
}

func TestSnapToFreeCell(t *testing.T) {
	env := mustParse(t,
		"#####",
		"#####",
		"##..#",
		"#####",
	)

	c, ok := SnapToFreeCell(env, 2, 2, DefaultSnapRadius)
	require.True(t, ok)
	assert.Equal(t, Cell{2, 2}, c, "free point snaps to itself")

	c, ok = SnapToFreeCell(env, 0, 3, DefaultSnapRadius)
	require.True(t, ok)
	assert.Equal(t, Cell{2, 3}, c)

	c, ok = SnapToFreeCell(env, 2, 1, 1)
	require.True(t, ok)
	assert.Equal(t, Cell{2, 2}, c)

	c, ok = SnapToFreeCell(env, -3, 2, DefaultSnapRadius)
	require.True(t, ok, "out-of-bounds point still snaps")
	assert.Equal(t, Cell{2, 2}, c)

	_, ok = SnapToFreeCell(env, 0, 0, 1)
	assert.False(t, ok)

	_, ok = SnapToFreeCell(mustParse(t, "##", "##"), 0, 0, DefaultSnapRadius)
	assert.False(t, ok)
}

func TestInstanceValidate(t *testing.T) {
	env := mustParse(t,
		"...",
		".#.",
		"...",
	)

	inst := NewInstance(env, Conn8, []*Agent{{Start: Cell{0, 0}, Pickup: Cell{2, 2}, Drop: Cell{0, 2}}})
	require.NoError(t, inst.Validate())
	assert.Equal(t, AgentID(0), inst.Agents[0].ID)

	inst = NewInstance(env, Conn8, []*Agent{{Start: Cell{0, 0}, Pickup: Cell{1, 1}, Drop: Cell{0, 2}}})
	assert.ErrorIs(t, inst.Validate(), ErrCellBlocked)

	inst = NewInstance(env, Conn8, []*Agent{{Start: Cell{0, 0}, Pickup: Cell{0, 1}, Drop: Cell{3, 2}}})
	assert.ErrorIs(t, inst.Validate(), ErrCellOutOfBounds)

	inst = NewInstance(env, Conn8, nil)
	assert.ErrorIs(t, inst.Validate(), ErrNoAgents)
}

func TestInstanceFile_SaveLoad(t *testing.T) {
	env := mustParse(t,
		"....",
		".##.",
		"....",
	)
	inst := NewInstance(env, Conn4, []*Agent{
		{Start: Cell{0, 0}, Pickup: Cell{2, 3}, Drop: Cell{0, 3}},
		{Start: Cell{2, 0}, Pickup: Cell{0, 2}, Drop: Cell{2, 2}},
	})
	inst.Name = "corridor"

	path := filepath.Join(t.TempDir(), "corridor.json")
	require.NoError(t, SaveInstanceFile(path, NewInstanceFile(inst)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var f map[string]any
	require.NoError(t, json.Unmarshal(raw, &f))
	assert.Equal(t, "4", f["connectivity"])

	loaded, err := LoadInstance(path)
	require.NoError(t, err)
	assert.Equal(t, "corridor", loaded.Name)
	assert.Equal(t, Conn4, loaded.Conn)
	assert.Equal(t, inst.Env, loaded.Env)
	require.Len(t, loaded.Agents, 2)
	assert.Equal(t, *inst.Agents[1], *loaded.Agents[1])
}

func TestAgentLegs(t *testing.T) {
	a := &Agent{Start: Cell{0, 0}, Pickup: Cell{1, 1}, Drop: Cell{2, 2}}
	legs := a.Legs()
	require.Len(t, legs, 2)
	assert.Equal(t, Leg{Kind: LegPickup, From: Cell{0, 0}, To: Cell{1, 1}}, legs[0])
	assert.Equal(t, Leg{Kind: LegDrop, From: Cell{1, 1}, To: Cell{2, 2}}, legs[1])
	assert.Equal(t, "drop", LegDrop.String())
}
