package schema

// Safety label values.
const (
	SafeLabel     = "Safe"
	ModerateLabel = "Moderate"
	CautionLabel  = "Caution"
	UnsafeLabel   = "Unsafe"
)

// EnrichedSegment adds presentation data to a ScoredSegment.
type EnrichedSegment struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	ScoredSegment
}

// GetPlainLabel returns a plain text label for a safety score in [0,1].
func GetPlainLabel(score float64) string {
	switch {
	case score >= 0.75:
		return SafeLabel
	case score >= 0.5:
		return ModerateLabel
	case score >= 0.25:
		return CautionLabel
	default:
		return UnsafeLabel
	}
}

// EnrichSegments adds rank and label to a list of scored segments, keeping their order.
func EnrichSegments(segments []ScoredSegment) []EnrichedSegment {
	output := make([]EnrichedSegment, len(segments))
	for i, s := range segments {
		output[i] = EnrichedSegment{
			Rank:          i + 1,
			Label:         GetPlainLabel(s.SafetyScore),
			ScoredSegment: s,
		}
	}
	return output
}
