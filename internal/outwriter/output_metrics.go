package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/schema"
)

// WriteMetricsDefinitions displays the active safety score and edge weight definitions.
// This is a static display that does not read any input.
func WriteMetricsDefinitions(cfg *contract.Config) error {
	model := buildMetricsRenderModel(cfg)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, model)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsCSV(w, model)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for metrics")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsText(w, model)
		}, "Wrote text")
	}
}

// buildMetricsRenderModel constructs the render model from the active configuration.
func buildMetricsRenderModel(cfg *contract.Config) *schema.MetricsRenderModel {
	factors := make([]schema.MetricsFactor, 0, len(cfg.Features))
	terms := make([]string, 0, len(cfg.Features))
	for _, f := range cfg.Features {
		w := cfg.Weights[f]
		factors = append(factors, schema.MetricsFactor{Feature: string(f), Weight: w})
		if w > 0 {
			terms = append(terms, fmt.Sprintf("%.2f*%s", w, f))
		}
	}

	return &schema.MetricsRenderModel{
		Title:         "Safepath Scoring Model",
		Description:   "Features are min-max normalized over the loaded segments, then weighted",
		Factors:       factors,
		ScoreFormula:  "safety_score = " + strings.Join(terms, " + "),
		WeightFormula: fmt.Sprintf("edge_weight = %.2f*distance + %.2f/min(score_a, score_b)", cfg.Alpha, cfg.Beta),
		Alpha:         cfg.Alpha,
		Beta:          cfg.Beta,
		Adjacency:     string(schema.RowOrderAdjacency),
	}
}

// writeMetricsText displays metrics in human-readable text format.
func writeMetricsText(w io.Writer, model *schema.MetricsRenderModel) error {
	lines := []string{
		"🧭 " + model.Title,
		strings.Repeat("=", len(model.Title)+3),
		"",
		model.Description,
		"",
		"🛡️  Safety score",
		"   " + model.ScoreFormula,
		"",
		"🔗 Edge weight (" + model.Adjacency + " adjacency)",
		"   " + model.WeightFormula,
		"",
		"🏷️  Labels",
		fmt.Sprintf("   %s >= 0.75 > %s >= 0.50 > %s >= 0.25 > %s",
			schema.SafeLabel, schema.ModerateLabel, schema.CautionLabel, schema.UnsafeLabel),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// writeMetricsCSV writes one row per weighted feature plus the edge terms.
func writeMetricsCSV(w io.Writer, model *schema.MetricsRenderModel) error {
	return writeCSVWithHeader(w, []string{"component", "term", "weight"}, func(cw *csv.Writer) error {
		for _, f := range model.Factors {
			if err := cw.Write([]string{"safety_score", f.Feature, fmt.Sprintf("%.4f", f.Weight)}); err != nil {
				return err
			}
		}
		if err := cw.Write([]string{"edge_weight", "distance", fmt.Sprintf("%.4f", model.Alpha)}); err != nil {
			return err
		}
		return cw.Write([]string{"edge_weight", "inverse_min_score", fmt.Sprintf("%.4f", model.Beta)})
	})
}
