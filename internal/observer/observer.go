// Package observer provides subscribers for colony iteration diagnostics.
package observer

import (
	"github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/mapf-aco/internal/algo"
)

var log = logrus.WithField("module", "observer")

// LogObserver logs every Every-th iteration, and every improvement, through logrus.
type LogObserver struct {
	Every int
	entry *logrus.Entry
}

// NewLogObserver creates a log observer. every <= 0 logs improvements only.
func NewLogObserver(every int, fields logrus.Fields) *LogObserver {
	return &LogObserver{Every: every, entry: log.WithFields(fields)}
}

// OnIteration implements algo.Observer.
func (o *LogObserver) OnIteration(s algo.IterationStats) {
	periodic := o.Every > 0 && s.Iteration%o.Every == 0
	if !periodic && !s.Improved {
		return
	}
	e := o.entry.WithFields(logrus.Fields{
		"iteration": s.Iteration,
		"iter_best": s.IterationBest,
		"best":      s.Best,
		"conflicts": s.Conflicts,
	})
	if s.FailedAnts > 0 {
		e = e.WithField("failed_ants", s.FailedAnts)
	}
	if s.Improved {
		e.Info("new incumbent")
		return
	}
	e.Info("iteration")
}

// Multi fans one iteration out to several observers, in order.
type Multi []algo.Observer

// OnIteration implements algo.Observer.
func (m Multi) OnIteration(s algo.IterationStats) {
	for _, o := range m {
		o.OnIteration(s)
	}
}
