// Package schema has models, constants and typed errors for all parts of safepath.
package schema

import "time"

// Segment is one geo-located route segment as read from the input table.
type Segment struct {
	ID        int64                   `json:"route_id"`
	Latitude  float64                 `json:"latitude"`
	Longitude float64                 `json:"longitude"`
	Raw       map[FeatureName]float64 `json:"raw"`
}

// Coordinate returns the segment position.
func (s Segment) Coordinate() Coordinate {
	return Coordinate{Lat: s.Latitude, Lon: s.Longitude}
}

// ScoredSegment is a Segment with its normalized features and composite safety score.
type ScoredSegment struct {
	Segment
	Normalized  map[FeatureName]float64 `json:"normalized"`
	SafetyScore float64                 `json:"safety_score"`
	Breakdown   map[FeatureName]float64 `json:"breakdown,omitempty"` // weight * normalized, per feature
}

// Coordinate is a latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PathResult is the outcome of a shortest-path search.
type PathResult struct {
	IDs            []int64 `json:"ids"`             // start to end inclusive
	TotalWeight    float64 `json:"total_weight"`    // sum of traversed edge weights
	PlanarDistance float64 `json:"planar_distance"` // sum of traversed edge distances
}

// RouteSummary is the informational answer of an external route provider.
// It is passed through unchanged and never influences the computed path.
type RouteSummary struct {
	Provider        string       `json:"provider"`
	DistanceKm      float64      `json:"distance_km"`
	DurationMinutes int          `json:"duration_minutes"`
	Geometry        []Coordinate `json:"geometry"`
	StatusMessage   string       `json:"status_message,omitempty"`
}

// RouteReport bundles everything a single safest-route run produced.
type RouteReport struct {
	RunID         string          `json:"run_id,omitempty"`
	Start         int64           `json:"start"`
	End           int64           `json:"end"`
	Alpha         float64         `json:"alpha"`
	Beta          float64         `json:"beta"`
	Path          PathResult      `json:"path"`
	Route         []ScoredSegment `json:"route"` // segments along the path, in path order
	MinRouteScore float64         `json:"min_route_score"`
	GeodesicKm    float64         `json:"geodesic_km"`
	TravelMinutes float64         `json:"travel_minutes"`
	Provider      *RouteSummary   `json:"provider_route,omitempty"`
	ComputedAt    time.Time       `json:"computed_at"`
}

// ScoresReport is the scored segment set of a single run, ranked by safety score.
type ScoresReport struct {
	RunID      string          `json:"run_id,omitempty"`
	Segments   []ScoredSegment `json:"segments"`
	Total      int             `json:"total"`
	ComputedAt time.Time       `json:"computed_at"`
}
