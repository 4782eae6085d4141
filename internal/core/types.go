// Package core defines domain models for collision-aware pickup/drop planning.
package core

import (
	"fmt"
	"math"
)

// Move costs between neighboring cells.
const (
	MoveOrth = 1.0
	MoveDiag = math.Sqrt2
)

// Cell is a grid location in grid-native (row, col) orientation.
type Cell struct {
	Row, Col int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Dist returns the Euclidean distance between two cells.
func (c Cell) Dist(o Cell) float64 {
	dr := float64(c.Row - o.Row)
	dc := float64(c.Col - o.Col)
	return math.Hypot(dr, dc)
}

// Octile returns the 8-connected lower-bound travel cost between two cells.
func (c Cell) Octile(o Cell) float64 {
	dr := absInt(c.Row - o.Row)
	dc := absInt(c.Col - o.Col)
	lo, hi := dr, dc
	if lo > hi {
		lo, hi = hi, lo
	}
	return float64(hi-lo)*MoveOrth + float64(lo)*MoveDiag
}

// Connectivity selects the neighbor set used when building a GridGraph.
type Connectivity int

const (
	Conn8 Connectivity = iota // N, NE, E, SE, S, SW, W, NW
	Conn4                     // N, E, S, W
)

func (c Connectivity) String() string {
	return [...]string{"8", "4"}[c]
}

// ParseConnectivity accepts "8" or "4"; empty means Conn8.
func ParseConnectivity(s string) (Connectivity, error) {
	switch s {
	case "", "8":
		return Conn8, nil
	case "4":
		return Conn4, nil
	default:
		return Conn8, fmt.Errorf("core: unknown connectivity %q (want \"8\" or \"4\")", s)
	}
}

// offsets returns (dRow, dCol) neighbor offsets in a fixed clockwise order from north.
func (c Connectivity) offsets() [][2]int {
	if c == Conn4 {
		return [][2]int{{-1, 0}, {0, 1}, {1, 0}, {0, -1}}
	}
	return [][2]int{{-1, 0}, {-1, 1}, {0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}}
}

// MoveCost returns MoveDiag for diagonal neighbors and MoveOrth otherwise.
func MoveCost(a, b Cell) float64 {
	if absInt(a.Row-b.Row)+absInt(a.Col-b.Col) == 2 {
		return MoveDiag
	}
	return MoveOrth
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
