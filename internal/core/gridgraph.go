package core

import (
	"errors"
	"sort"
)

var (
	// ErrEmptyGrid indicates the grid has no rows or no columns.
	ErrEmptyGrid = errors.New("core: grid must have at least one row and one column")
	// ErrNonRectangular indicates rows of differing lengths.
	ErrNonRectangular = errors.New("core: all grid rows must have the same length")
)

// Environment is an occupancy grid: 0 is free, anything else is an obstacle.
type Environment [][]int

// Rows returns the number of rows.
func (e Environment) Rows() int { return len(e) }

// Cols returns the number of columns of the first row.
func (e Environment) Cols() int {
	if len(e) == 0 {
		return 0
	}
	return len(e[0])
}

// InBounds reports whether c lies inside the grid.
func (e Environment) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < len(e) && c.Col >= 0 && c.Col < len(e[c.Row])
}

// Free reports whether c is in bounds and not an obstacle.
func (e Environment) Free(c Cell) bool {
	return e.InBounds(c) && e[c.Row][c.Col] == 0
}

// Validate checks the grid is non-empty and rectangular.
func (e Environment) Validate() error {
	if len(e) == 0 || len(e[0]) == 0 {
		return ErrEmptyGrid
	}
	w := len(e[0])
	for _, row := range e {
		if len(row) != w {
			return ErrNonRectangular
		}
	}
	return nil
}

// Clone returns a deep copy.
func (e Environment) Clone() Environment {
	out := make(Environment, len(e))
	for i, row := range e {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// Edge is a directed move between neighboring free cells.
type Edge struct {
	From, To Cell
}

// Neighbor is an adjacent free cell and the cost of moving there.
type Neighbor struct {
	Cell Cell
	Cost float64
}

// GridGraph is the traversable graph over the free cells of an Environment.
// It is read-only once built.
type GridGraph struct {
	Conn  Connectivity
	adj   map[Cell][]Neighbor
	nodes []Cell
	edges int
}

// Build converts env into a GridGraph. Out-of-bounds and obstacle cells are skipped;
// an environment without free cells yields an empty graph.
func Build(env Environment, conn Connectivity) *GridGraph {
	g := &GridGraph{
		Conn: conn,
		adj:  make(map[Cell][]Neighbor),
	}
	offsets := conn.offsets()

	for r, row := range env {
		for c := range row {
			u := Cell{Row: r, Col: c}
			if !env.Free(u) {
				continue
			}
			g.nodes = append(g.nodes, u)
			nbrs := make([]Neighbor, 0, len(offsets))
			for _, d := range offsets {
				v := Cell{Row: r + d[0], Col: c + d[1]}
				if !env.Free(v) {
					continue
				}
				nbrs = append(nbrs, Neighbor{Cell: v, Cost: MoveCost(u, v)})
			}
			g.adj[u] = nbrs
			g.edges += len(nbrs)
		}
	}

	return g
}

// Len returns the number of nodes.
func (g *GridGraph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of directed edges.
func (g *GridGraph) EdgeCount() int { return g.edges }

// Nodes returns the free cells in row-major order.
func (g *GridGraph) Nodes() []Cell { return g.nodes }

// Contains reports whether c is a node.
func (g *GridGraph) Contains(c Cell) bool {
	_, ok := g.adj[c]
	return ok
}

// Neighbors returns the neighbors of c in fixed clockwise order. The slice must not be modified.
func (g *GridGraph) Neighbors(c Cell) []Neighbor {
	return g.adj[c]
}

// HasEdge reports whether u→v is an edge.
func (g *GridGraph) HasEdge(u, v Cell) bool {
	for _, n := range g.adj[u] {
		if n.Cell == v {
			return true
		}
	}
	return false
}

// Cost returns the move cost of u→v and whether the edge exists.
func (g *GridGraph) Cost(u, v Cell) (float64, bool) {
	for _, n := range g.adj[u] {
		if n.Cell == v {
			return n.Cost, true
		}
	}
	return 0, false
}

// Edges returns every directed edge, ordered by source node then neighbor order.
func (g *GridGraph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for _, u := range g.nodes {
		for _, n := range g.adj[u] {
			out = append(out, Edge{From: u, To: n.Cell})
		}
	}
	return out
}

// ConnectedComponents groups nodes into connected regions via BFS.
// Components are ordered by their first node in row-major order.
func (g *GridGraph) ConnectedComponents() [][]Cell {
	seen := make(map[Cell]bool, len(g.nodes))
	var comps [][]Cell

	for _, start := range g.nodes {
		if seen[start] {
			continue
		}
		seen[start] = true
		queue := []Cell{start}
		for qi := 0; qi < len(queue); qi++ {
			for _, n := range g.adj[queue[qi]] {
				if !seen[n.Cell] {
					seen[n.Cell] = true
					queue = append(queue, n.Cell)
				}
			}
		}
		sort.Slice(queue, func(i, j int) bool {
			if queue[i].Row != queue[j].Row {
				return queue[i].Row < queue[j].Row
			}
			return queue[i].Col < queue[j].Col
		})
		comps = append(comps, queue)
	}
	return comps
}

// Reachable reports whether b can be reached from a.
func (g *GridGraph) Reachable(a, b Cell) bool {
	if !g.Contains(a) || !g.Contains(b) {
		return false
	}
	if a == b {
		return true
	}
	seen := map[Cell]bool{a: true}
	queue := []Cell{a}
	for qi := 0; qi < len(queue); qi++ {
		for _, n := range g.adj[queue[qi]] {
			if n.Cell == b {
				return true
			}
			if !seen[n.Cell] {
				seen[n.Cell] = true
				queue = append(queue, n.Cell)
			}
		}
	}
	return false
}
