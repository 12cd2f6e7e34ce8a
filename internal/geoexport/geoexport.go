// Package geoexport converts scored segments and computed routes into GeoJSON.
package geoexport

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/safepath/safepath/schema"
)

// Feature kinds, stored in the "kind" property.
const (
	KindSegment       = "segment"
	KindRoute         = "route"
	KindProviderRoute = "provider_route"
)

// Point returns the orb point of a segment. orb points are (lon, lat).
func Point(s schema.Segment) orb.Point {
	return orb.Point{s.Longitude, s.Latitude}
}

// RouteLineString returns the route as a line through its segments in path order.
func RouteLineString(route []schema.ScoredSegment) orb.LineString {
	ls := make(orb.LineString, len(route))
	for i, s := range route {
		ls[i] = Point(s.Segment)
	}
	return ls
}

// RouteLength returns the geodesic length of the route in kilometres.
func RouteLength(route []schema.ScoredSegment) float64 {
	if len(route) < 2 {
		return 0
	}
	return geo.LengthHaversine(RouteLineString(route)) / 1000
}

// PlanarLength returns the route length in raw coordinate units.
func PlanarLength(route []schema.ScoredSegment) float64 {
	if len(route) < 2 {
		return 0
	}
	return planar.Length(RouteLineString(route))
}

// TravelMinutes converts a distance to a travel time at the given speed in km/h.
// A non-positive speed gives 0.
func TravelMinutes(km, speedKmh float64) float64 {
	if speedKmh <= 0 {
		return 0
	}
	return km / speedKmh * 60
}

// BuildFeatureCollection turns every scored segment into a Point feature. When
// report is not nil, the route and the provider geometry are added as LineStrings
// and segments on the route carry their step number.
func BuildFeatureCollection(segments []schema.ScoredSegment, report *schema.RouteReport) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	steps := make(map[int64]int)
	if report != nil {
		for i, id := range report.Path.IDs {
			steps[id] = i + 1
		}
	}

	for _, s := range segments {
		f := geojson.NewFeature(Point(s.Segment))
		f.ID = s.ID
		f.Properties["kind"] = KindSegment
		f.Properties["route_id"] = s.ID
		f.Properties["safety_score"] = s.SafetyScore
		f.Properties["label"] = schema.GetPlainLabel(s.SafetyScore)
		for name, v := range s.Raw {
			f.Properties[string(name)] = v
		}
		for name, v := range s.Normalized {
			f.Properties["n_"+string(name)] = v
		}
		step, onRoute := steps[s.ID]
		f.Properties["on_route"] = onRoute
		if onRoute {
			f.Properties["step"] = step
		}
		fc.Append(f)
	}

	if report == nil {
		return fc
	}

	if len(report.Route) > 1 {
		f := geojson.NewFeature(RouteLineString(report.Route))
		f.Properties["kind"] = KindRoute
		f.Properties["start"] = report.Start
		f.Properties["end"] = report.End
		f.Properties["total_weight"] = report.Path.TotalWeight
		f.Properties["planar_distance"] = report.Path.PlanarDistance
		f.Properties["geodesic_km"] = report.GeodesicKm
		f.Properties["travel_minutes"] = report.TravelMinutes
		f.Properties["min_route_score"] = report.MinRouteScore
		fc.Append(f)
	}

	if p := report.Provider; p != nil && len(p.Geometry) > 1 {
		ls := make(orb.LineString, len(p.Geometry))
		for i, c := range p.Geometry {
			ls[i] = orb.Point{c.Lon, c.Lat}
		}
		f := geojson.NewFeature(ls)
		f.Properties["kind"] = KindProviderRoute
		f.Properties["provider"] = p.Provider
		f.Properties["distance_km"] = p.DistanceKm
		f.Properties["duration_minutes"] = p.DurationMinutes
		fc.Append(f)
	}

	return fc
}

// WriteGeoJSON encodes the collection to w.
func WriteGeoJSON(w io.Writer, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write GeoJSON: %w", err)
	}
	return nil
}
