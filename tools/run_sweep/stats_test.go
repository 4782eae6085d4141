package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Summary
	}{
		{"empty", nil, Summary{}},
		{"single", []float64{4}, Summary{N: 1, Mean: 4, Best: 4}},
		{
			name:   "four values",
			values: []float64{2, 4, 4, 6},
			want: Summary{
				N:      4,
				Mean:   4,
				Std:    math.Sqrt(8.0 / 3),
				CV:     math.Sqrt(8.0/3) / 4 * 100,
				Margin: 3.1824463 * math.Sqrt(8.0/3) / 2,
				Best:   2,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summarize(tt.values)
			assert.Equal(t, tt.want.N, got.N)
			assert.InDelta(t, tt.want.Mean, got.Mean, 1e-9)
			assert.InDelta(t, tt.want.Std, got.Std, 1e-9)
			assert.InDelta(t, tt.want.CV, got.CV, 1e-9)
			assert.InDelta(t, tt.want.Margin, got.Margin, 1e-6)
			assert.InDelta(t, tt.want.Best, got.Best, 1e-9)
		})
	}
}

func TestSummarize_LargeSample(t *testing.T) {
	// 200 alternating values: mean 1, sample std sqrt(200/199)
	values := make([]float64, 200)
	for i := range values {
		values[i] = float64(2 * (i % 2))
	}
	got := summarize(values)
	assert.InDelta(t, 1.0, got.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(200.0/199), got.Std, 1e-12)

	// t(0.975, 199) = 1.97196, above the normal 1.95996
	crit := got.Margin * math.Sqrt(200) / got.Std
	assert.InDelta(t, 1.97196, crit, 1e-4)
}
