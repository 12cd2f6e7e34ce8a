// Package graph builds the weighted segment graph and finds the safest path through it.
package graph

import (
	"fmt"
	"math"

	"github.com/safepath/safepath/schema"
)

// Node is a segment placed in the graph.
type Node struct {
	ID          int64
	Latitude    float64
	Longitude   float64
	SafetyScore float64
	index       int // insertion order, used to break heap ties
}

// Edge is one direction of an undirected link.
type Edge struct {
	To       int64
	Distance float64 // planar Euclidean distance on raw lat/lon
	Weight   float64
}

// RouteGraph is an undirected weighted graph keyed by segment id.
// Adjacency lists keep insertion order so traversal is reproducible.
type RouteGraph struct {
	nodes []*Node
	byID  map[int64]*Node
	adj   map[int64][]Edge
	edges int
}

// NewRouteGraph returns an empty graph.
func NewRouteGraph() *RouteGraph {
	return &RouteGraph{
		byID: make(map[int64]*Node),
		adj:  make(map[int64][]Edge),
	}
}

// AddNode inserts a node. Ids must be unique.
func (g *RouteGraph) AddNode(id int64, lat, lon, score float64) error {
	if _, ok := g.byID[id]; ok {
		return schema.NewConfigurationError("route_id", "duplicate segment id %d", id)
	}
	n := &Node{ID: id, Latitude: lat, Longitude: lon, SafetyScore: score, index: len(g.nodes)}
	g.nodes = append(g.nodes, n)
	g.byID[id] = n
	return nil
}

// AddEdge links a and b in both directions. Both nodes must exist and the
// weight must be a finite non-negative number.
func (g *RouteGraph) AddEdge(a, b int64, distance, weight float64) error {
	if _, ok := g.byID[a]; !ok {
		return &schema.NodeNotFoundError{ID: a}
	}
	if _, ok := g.byID[b]; !ok {
		return &schema.NodeNotFoundError{ID: b}
	}
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return fmt.Errorf("edge %d-%d: %w", a, b,
			schema.NewConfigurationError("weight", "must be finite and >= 0 (got %g)", weight))
	}
	g.adj[a] = append(g.adj[a], Edge{To: b, Distance: distance, Weight: weight})
	if a != b {
		g.adj[b] = append(g.adj[b], Edge{To: a, Distance: distance, Weight: weight})
	}
	g.edges++
	return nil
}

// Node returns the node with the given id.
func (g *RouteGraph) Node(id int64) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *RouteGraph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Neighbors returns the edges leaving id in insertion order.
func (g *RouteGraph) Neighbors(id int64) []Edge {
	return g.adj[id]
}

// NodeCount returns the number of nodes.
func (g *RouteGraph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of undirected edges.
func (g *RouteGraph) EdgeCount() int { return g.edges }
