package outwriter

import (
	"cmp"
	"os"
	"slices"
	"strings"

	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/schema"
	"golang.org/x/term"
)

const (
	topNFeatures = 3
	minExplain   = 20
	maxExplain   = 60
)

// featureContribution is one feature's share of a safety score.
type featureContribution struct {
	Feature schema.FeatureName
	Value   float64 // weight * normalized
}

// formatTopFeatureBreakdown lists the features that contribute most to the safety score.
func formatTopFeatureBreakdown(s *schema.ScoredSegment) string {
	var parts []featureContribution
	for f, v := range s.Breakdown {
		if v > 0 {
			parts = append(parts, featureContribution{Feature: f, Value: v})
		}
	}
	if len(parts) == 0 {
		return "No contributors"
	}

	slices.SortFunc(parts, func(a, b featureContribution) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Feature, b.Feature)
	})

	names := make([]string, 0, topNFeatures)
	for _, p := range parts[:min(len(parts), topNFeatures)] {
		names = append(names, string(p.Feature))
	}
	return strings.Join(names, " > ")
}

// getMaxExplainWidth calculates the width of the explain column based on the
// terminal width and the columns shown next to it.
func getMaxExplainWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Step/Rank + ID + Score + Label with borders
	baseWidth := 40
	if cfg.Detail {
		baseWidth += 30 // Latitude + Longitude
	}
	baseWidth += 10

	return max(minExplain, min(termWidth-baseWidth, maxExplain))
}

// featureColumns returns the CSV column names of the active features.
func featureColumns(features []schema.FeatureName) []string {
	cols := make([]string, len(features))
	for i, f := range features {
		cols[i] = "n_" + string(f)
	}
	return cols
}

// featureValues returns the normalized values of s in feature order.
func featureValues(s *schema.ScoredSegment, features []schema.FeatureName, fmtFloat func(float64) string) []string {
	values := make([]string, len(features))
	for i, f := range features {
		values[i] = fmtFloat(s.Normalized[f])
	}
	return values
}
