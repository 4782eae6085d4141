package core

import "math"

// DefaultSnapRadius bounds the search of SnapToFreeCell.
const DefaultSnapRadius = 10

// SnapToFreeCell returns the free cell nearest to (row, col), searching square rings of
// growing Chebyshev radius up to radius. Within the first ring that holds a free cell the
// Euclidean-closest wins, ties broken in row-major order. The point itself may lie out of
// bounds. Returns false when no free cell is found.
func SnapToFreeCell(env Environment, row, col, radius int) (Cell, bool) {
	origin := Cell{Row: row, Col: col}
	if env.Free(origin) {
		return origin, true
	}
	if radius < 0 {
		radius = DefaultSnapRadius
	}

	for r := 1; r <= radius; r++ {
		best := Cell{}
		bestDist := math.Inf(1)
		found := false
		for dr := -r; dr <= r; dr++ {
			for dc := -r; dc <= r; dc++ {
				// only the ring at Chebyshev distance r
				if absInt(dr) != r && absInt(dc) != r {
					continue
				}
				c := Cell{Row: row + dr, Col: col + dc}
				if !env.Free(c) {
					continue
				}
				if d := origin.Dist(c); d < bestDist {
					best, bestDist, found = c, d, true
				}
			}
		}
		if found {
			return best, true
		}
	}
	return Cell{}, false
}
