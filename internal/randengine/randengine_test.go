package randengine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPick(t *testing.T) {
	w := []float64{1, 2, 1}
	tests := []struct {
		r    float64
		want int
	}{
		{0, 0},
		{0.25, 0}, // exactly on the first boundary: first index reaching r wins
		{0.2500001, 1},
		{0.75, 1},
		{0.99, 2},
	}
	for _, tt := range tests {
		got, ok := Pick(w, tt.r)
		if !ok || got != tt.want {
			t.Errorf("Pick(%v, %v) = %d, %v; want %d, true", w, tt.r, got, ok, tt.want)
		}
	}
}

func TestPick_RoundingFallsBackToLast(t *testing.T) {
	// A draw above the final cumulative value selects the last index.
	got, ok := Pick([]float64{0.1, 0.1, 0.1}, math.Nextafter(1, 2))
	assert.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestPick_Degenerate(t *testing.T) {
	for _, w := range [][]float64{nil, {0, 0}, {math.NaN(), 1}, {math.Inf(1), 1}} {
		_, ok := Pick(w, 0.5)
		assert.False(t, ok, "weights %v", w)
	}
}

func TestChoose_UniformFallback(t *testing.T) {
	e := New(7)
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		idx, degenerate := e.Choose([]float64{0, 0, 0})
		assert.True(t, degenerate)
		seen[idx] = true
	}
	assert.Len(t, seen, 3)
}

func TestChoose_Proportional(t *testing.T) {
	e := New(11)
	counts := make([]int, 2)
	const n = 20000
	for i := 0; i < n; i++ {
		idx, degenerate := e.Choose([]float64{1, 3})
		assert.False(t, degenerate)
		counts[idx]++
	}
	assert.InDelta(t, 0.75, float64(counts[1])/n, 0.02)
}

func TestSameSeedSameStream(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
	fa, fb := New(42).Fork(), New(42).Fork()
	assert.Equal(t, fa.Float64(), fb.Float64())
}
