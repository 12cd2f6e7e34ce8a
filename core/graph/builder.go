package graph

import (
	"math"

	"github.com/safepath/safepath/schema"
)

// Builder turns scored segments into a RouteGraph using row-order adjacency:
// segment i is linked to segment i+1 of the input.
type Builder struct {
	alpha float64
	beta  float64
}

// NewBuilder validates the distance and safety coefficients.
func NewBuilder(alpha, beta float64) (*Builder, error) {
	if alpha < 0 || math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return nil, schema.NewConfigurationError("alpha", "must be a finite number >= 0 (got %g)", alpha)
	}
	if beta < 0 || math.IsNaN(beta) || math.IsInf(beta, 0) {
		return nil, schema.NewConfigurationError("beta", "must be a finite number >= 0 (got %g)", beta)
	}
	return &Builder{alpha: alpha, beta: beta}, nil
}

// Policy reports the adjacency policy of the builder.
func (b *Builder) Policy() schema.AdjacencyPolicy { return schema.RowOrderAdjacency }

// Build returns a graph with one node per segment and one edge per pair of
// consecutive segments.
func (b *Builder) Build(segments []schema.ScoredSegment) (*RouteGraph, error) {
	g := NewRouteGraph()
	for _, s := range segments {
		if err := g.AddNode(s.ID, s.Latitude, s.Longitude, s.SafetyScore); err != nil {
			return nil, err
		}
	}

	for i := 0; i+1 < len(segments); i++ {
		from, to := segments[i], segments[i+1]
		distance := PlanarDistance(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
		weight, err := b.EdgeWeight(distance, from, to)
		if err != nil {
			return nil, err
		}
		if err := g.AddEdge(from.ID, to.ID, distance, weight); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// EdgeWeight computes alpha*distance + beta/min(score_a, score_b).
// A zero score on either endpoint is rejected before the reciprocal.
func (b *Builder) EdgeWeight(distance float64, from, to schema.ScoredSegment) (float64, error) {
	if from.SafetyScore == 0 {
		return 0, &schema.ZeroSafetyScoreError{SegmentID: from.ID}
	}
	if to.SafetyScore == 0 {
		return 0, &schema.ZeroSafetyScoreError{SegmentID: to.ID}
	}
	minScore := math.Min(from.SafetyScore, to.SafetyScore)
	return b.alpha*distance + b.beta*(1/minScore), nil
}

// PlanarDistance is the Euclidean distance between two raw lat/lon pairs.
func PlanarDistance(lat1, lon1, lat2, lon2 float64) float64 {
	return math.Hypot(lat2-lat1, lon2-lon1)
}
