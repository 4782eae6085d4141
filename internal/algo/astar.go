package algo

import (
	"container/heap"

	"github.com/elektrokombinacija/mapf-aco/internal/core"
)

// SpaceTimeState is a cell entered at timestep T.
type SpaceTimeState struct {
	Cell core.Cell
	T    int
}

// astarNode for priority queue.
type astarNode struct {
	state  SpaceTimeState
	g      float64 // Cost so far
	f      float64 // g + h
	parent *astarNode
	index  int // heap index
}

// astarHeap implements heap.Interface.
type astarHeap []*astarNode

func (h astarHeap) Len() int           { return len(h) }
func (h astarHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h astarHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *astarHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *astarHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// ShortestPath finds a minimum-cost route from `from` to `to`, ignoring time. The first
// step carries timestep t0. Returns false when `to` is unreachable.
func ShortestPath(g *core.GridGraph, from, to core.Cell, t0 int) (core.Route, bool) {
	if from == to {
		return nil, true
	}
	open := &astarHeap{}
	heap.Push(open, &astarNode{
		state: SpaceTimeState{Cell: from, T: t0 - 1},
		f:     from.Octile(to),
	})
	closed := make(map[core.Cell]bool)

	for open.Len() > 0 {
		cur := heap.Pop(open).(*astarNode)
		if cur.state.Cell == to {
			return reconstructRoute(cur), true
		}
		if closed[cur.state.Cell] {
			continue
		}
		closed[cur.state.Cell] = true

		for _, n := range g.Neighbors(cur.state.Cell) {
			if closed[n.Cell] {
				continue
			}
			gc := cur.g + n.Cost
			heap.Push(open, &astarNode{
				state:  SpaceTimeState{Cell: n.Cell, T: cur.state.T + 1},
				g:      gc,
				f:      gc + n.Cell.Octile(to),
				parent: cur,
			})
		}
	}
	return nil, false
}

// SpaceTimeAStar finds a minimum-cost route from `from` to `to` that never enters a cell
// at a timestep for which blocked reports true. The agent moves on every timestep; the
// first step carries t0 and no step may reach maxT.
func SpaceTimeAStar(g *core.GridGraph, from, to core.Cell, t0, maxT int, blocked func(t int, c core.Cell) bool) (core.Route, bool) {
	if from == to {
		return nil, true
	}
	open := &astarHeap{}
	heap.Push(open, &astarNode{
		state: SpaceTimeState{Cell: from, T: t0 - 1},
		f:     from.Octile(to),
	})
	visited := make(map[SpaceTimeState]bool)

	for open.Len() > 0 {
		cur := heap.Pop(open).(*astarNode)
		if cur.state.Cell == to && cur.parent != nil {
			return reconstructRoute(cur), true
		}
		if visited[cur.state] {
			continue
		}
		visited[cur.state] = true

		nextT := cur.state.T + 1
		if nextT >= maxT {
			continue
		}
		for _, n := range g.Neighbors(cur.state.Cell) {
			if blocked(nextT, n.Cell) {
				continue
			}
			next := SpaceTimeState{Cell: n.Cell, T: nextT}
			if visited[next] {
				continue
			}
			gc := cur.g + n.Cost
			heap.Push(open, &astarNode{
				state:  next,
				g:      gc,
				f:      gc + n.Cell.Octile(to),
				parent: cur,
			})
		}
	}
	return nil, false
}

// reconstructRoute walks parents back to the search root, which is not part of the route.
func reconstructRoute(node *astarNode) core.Route {
	var r core.Route
	for n := node; n.parent != nil; n = n.parent {
		r = append(r, core.Step{T: n.state.T, Cell: n.state.Cell})
	}
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return r
}
