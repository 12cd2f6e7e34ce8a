// Package algo has ranking helpers shared by the command and server surfaces.
package algo

import (
	"sort"

	"github.com/safepath/safepath/schema"
)

// RankSegments sorts a copy of segments by safety score in descending order
// and returns the top 'limit' segments. Equal scores keep the lower id first.
// A limit of zero or less returns every segment.
func RankSegments(segments []schema.ScoredSegment, limit int) []schema.ScoredSegment {
	ranked := make([]schema.ScoredSegment, len(segments))
	copy(ranked, segments)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].SafetyScore != ranked[j].SafetyScore {
			return ranked[i].SafetyScore > ranked[j].SafetyScore
		}
		return ranked[i].ID < ranked[j].ID
	})
	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}

// UnsafeOffRoute returns the segments outside the route whose safety score is
// strictly below the lowest score found on the route, in input order.
func UnsafeOffRoute(all []schema.ScoredSegment, route []int64, minRouteScore float64) []schema.ScoredSegment {
	onRoute := make(map[int64]struct{}, len(route))
	for _, id := range route {
		onRoute[id] = struct{}{}
	}
	var out []schema.ScoredSegment
	for _, s := range all {
		if _, ok := onRoute[s.ID]; ok {
			continue
		}
		if s.SafetyScore < minRouteScore {
			out = append(out, s)
		}
	}
	return out
}
