package main

import (
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Summary describes the score distribution of one parameter set across seeds.
type Summary struct {
	N      int
	Mean   float64
	Std    float64 // sample standard deviation
	CV     float64 // percent
	Margin float64 // half-width of the 95% confidence interval
	Best   float64
}

// summarize computes the statistics of values. Std, CV and Margin stay zero with fewer
// than two values.
func summarize(values []float64) Summary {
	s := Summary{N: len(values)}
	if s.N == 0 {
		return s
	}
	s.Best = lo.Min(values)
	if s.N < 2 {
		s.Mean = values[0]
		return s
	}
	s.Mean, s.Std = stat.MeanStdDev(values, nil)
	if s.Mean != 0 {
		s.CV = s.Std / s.Mean * 100
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(s.N - 1)}.Quantile(0.975)
	s.Margin = t * s.Std / math.Sqrt(float64(s.N))
	return s
}
