package graph

import (
	"container/heap"
	"slices"

	"github.com/safepath/safepath/schema"
)

type queueItem struct {
	id    int64
	dist  float64
	order int // node insertion index
}

// hop is the edge used to reach a node.
type hop struct {
	from int64
	edge Edge
}

// distQueue is a min-heap on distance, then insertion order.
type distQueue []queueItem

func (q distQueue) Len() int { return len(q) }

func (q distQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].order < q[j].order
}

func (q distQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *distQueue) Push(x any) { *q = append(*q, x.(queueItem)) }

func (q *distQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// ShortestPath finds the minimum-weight path from start to end.
//
// Works on any graph with non-negative weights. For equal inputs the result
// is always the same: neighbours are relaxed in insertion order, only a
// strictly shorter distance replaces a known one, and queue ties go to the
// node inserted first.
func ShortestPath(g *RouteGraph, start, end int64) (schema.PathResult, error) {
	startNode, ok := g.Node(start)
	if !ok {
		return schema.PathResult{}, &schema.NodeNotFoundError{ID: start}
	}
	if _, ok := g.Node(end); !ok {
		return schema.PathResult{}, &schema.NodeNotFoundError{ID: end}
	}
	if start == end {
		return schema.PathResult{IDs: []int64{start}}, nil
	}

	dist := map[int64]float64{start: 0}
	via := make(map[int64]hop)
	done := make(map[int64]bool)

	q := &distQueue{{id: start, dist: 0, order: startNode.index}}
	for q.Len() > 0 {
		cur := heap.Pop(q).(queueItem)
		if done[cur.id] {
			continue
		}
		done[cur.id] = true
		if cur.id == end {
			break
		}

		for _, e := range g.Neighbors(cur.id) {
			if done[e.To] {
				continue
			}
			candidate := cur.dist + e.Weight
			if known, seen := dist[e.To]; seen && candidate >= known {
				continue
			}
			dist[e.To] = candidate
			via[e.To] = hop{from: cur.id, edge: e}
			next, _ := g.Node(e.To)
			heap.Push(q, queueItem{id: e.To, dist: candidate, order: next.index})
		}
	}

	if !done[end] {
		return schema.PathResult{}, &schema.NoPathError{Start: start, End: end}
	}

	var result schema.PathResult
	ids := []int64{end}
	for at := end; at != start; {
		h := via[at]
		result.TotalWeight += h.edge.Weight
		result.PlanarDistance += h.edge.Distance
		at = h.from
		ids = append(ids, at)
	}
	slices.Reverse(ids)
	result.IDs = ids
	return result, nil
}
