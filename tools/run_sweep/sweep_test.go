package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapf-aco/internal/algo"
	"github.com/elektrokombinacija/mapf-aco/internal/config"
	"github.com/elektrokombinacija/mapf-aco/internal/core"
	"github.com/elektrokombinacija/mapf-aco/internal/store"
)

var (
	_ runRecorder = (*store.RunStore)(nil)
	_ bestFinder  = (*store.RunStore)(nil)
)

type fakeRecorder struct {
	records []store.RunRecord
}

func (f *fakeRecorder) Record(_ context.Context, r store.RunRecord) error {
	f.records = append(f.records, r)
	return nil
}

type fakeFinder map[string]*store.RunRecord

func (f fakeFinder) Best(_ context.Context, instance string) (*store.RunRecord, error) {
	if instance == "broken" {
		return nil, errors.New("connection reset")
	}
	return f[instance], nil
}

func smallInstance(t *testing.T, rows ...string) *core.Instance {
	t.Helper()
	f := &core.InstanceFile{
		Name: "small",
		Grid: rows,
		Agents: []core.AgentFile{
			{Start: core.Cell{Row: 0, Col: 0}, Pickup: core.Cell{Row: 2, Col: 2}, Drop: core.Cell{Row: 4, Col: 4}},
			{Start: core.Cell{Row: 4, Col: 0}, Pickup: core.Cell{Row: 2, Col: 1}, Drop: core.Cell{Row: 0, Col: 4}},
		},
	}
	inst, err := f.ToInstance()
	require.NoError(t, err)
	return inst
}

func TestExpandGrid(t *testing.T) {
	base := algo.DefaultConfig()
	grid := expandGrid(base, config.Sweep{Rho: []float64{0.05, 0.2}, NumAnts: []int{2, 4, 8}})
	require.Len(t, grid, 6)
	for _, c := range grid {
		assert.Equal(t, base.Alpha, c.Alpha)
		assert.Equal(t, base.Iterations, c.Iterations)
	}
	assert.Equal(t, 0.05, grid[0].Rho)
	assert.Equal(t, 2, grid[0].NumAnts)
	assert.Equal(t, 0.2, grid[5].Rho)
	assert.Equal(t, 8, grid[5].NumAnts)

	assert.Len(t, expandGrid(base, config.Sweep{}), 1)
	assert.Equal(t, []uint64{base.Seed}, sweepSeeds(base, config.Sweep{}))
}

func TestRunInstance(t *testing.T) {
	inst := smallInstance(t, ".....", ".....", ".....", ".....", ".....")
	base := algo.DefaultConfig()
	base.NumAnts = 3
	base.Iterations = 3
	grid := expandGrid(base, config.Sweep{Alpha: []float64{1, 2}})

	rec := &fakeRecorder{}
	s := &sweeper{store: rec, baseline: true}
	rows, err := s.runInstance(context.Background(), inst.Name, inst, grid, []uint64{1, 2})
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "Prioritized", rows[0].Solver)
	assert.Len(t, rec.records, 4)
	for _, r := range rows[1:] {
		assert.Equal(t, "ACO", r.Solver)
		assert.NotEmpty(t, r.RunID)
	}

	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, rows))
	lines, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 6)
	assert.Equal(t, csvHeader, lines[0])

	sums := summarizeRows(rows)
	require.Len(t, sums, 2)
	for _, g := range sums {
		assert.Equal(t, 2, g.N)
		assert.Contains(t, []uint64{1, 2}, g.BestSeed)
	}

	var out bytes.Buffer
	printSummary(&out, rows)
	assert.Contains(t, out.String(), "SWEEP SUMMARY")
}

func TestRunInstance_Infeasible(t *testing.T) {
	// the first agent's start is walled in
	inst := smallInstance(t, ".#...", "##...", ".....", ".....", ".....")
	s := &sweeper{}
	_, err := s.runInstance(context.Background(), inst.Name, inst, []algo.Config{algo.DefaultConfig()}, []uint64{1})
	require.Error(t, err)
	assert.True(t, isSkippable(err))
}

func TestPrintBest(t *testing.T) {
	finder := fakeFinder{
		"maze": {
			RunID:  "run-7",
			Seed:   7,
			Score:  41.25,
			Params: store.Params{Alpha: 1, Beta: 3, Rho: 0.1, Q: 10, NumAnts: 30, Iterations: 80},
		},
	}
	var out bytes.Buffer
	printBest(context.Background(), &out, finder, []string{"maze", "empty", "broken"})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "maze")
	assert.Contains(t, lines[1], "41.25")
	assert.Contains(t, lines[1], "seed 7")
	assert.Contains(t, lines[1], "run-7")
	assert.Contains(t, lines[2], "empty")
	assert.Contains(t, lines[2], "no feasible run")
}

func TestWriteCSV_SingleAgentSeparation(t *testing.T) {
	rows := []Row{{Instance: "solo", Solver: "ACO", Params: algo.DefaultConfig(), MinSeparation: math.Inf(1)}}
	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, rows))
	lines, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "-1", lines[1][13])
	assert.NotContains(t, buf.String(), "Inf")
}
