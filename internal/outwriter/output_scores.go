package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/internal/parquet"
	"github.com/safepath/safepath/schema"
)

// WriteScoresReport outputs ranked segment scores, dispatching based on the output format configured.
func WriteScoresReport(report schema.ScoresReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)
	enriched := schema.EnrichSegments(report.Segments)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, enriched)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScoresCSV(w, enriched, cfg.Features, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteScoredSegmentsParquet(enriched, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScoresTable(w, enriched, report.Total, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// writeScoresTable generates and writes the human-readable ranking.
func writeScoresTable(w io.Writer, segments []schema.EnrichedSegment, total int, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Rank", "Route ID", "Score", "Label"}
	if cfg.Detail {
		headers = append(headers, "Latitude", "Longitude")
	}
	if cfg.Explain {
		headers = append(headers, "Explain")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	explainWidth := getMaxExplainWidth(cfg)
	var data [][]string
	for _, s := range segments {
		row := []string{
			strconv.Itoa(s.Rank),
			strconv.FormatInt(s.ID, 10),
			fmtFloat(s.SafetyScore),
			contract.GetColorLabel(s.SafetyScore),
		}
		if cfg.Detail {
			row = append(row, strconv.FormatFloat(s.Latitude, 'f', 6, 64), strconv.FormatFloat(s.Longitude, 'f', 6, 64))
		}
		if cfg.Explain {
			row = append(row, contract.TruncateText(formatTopFeatureBreakdown(&s.ScoredSegment), explainWidth))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	counts := make(map[string]int)
	for _, s := range segments {
		counts[s.Label]++
	}
	if _, err := fmt.Fprintf(w, "Showing top %d of %d segments (safe: %d, moderate: %d, caution: %d, unsafe: %d)\n",
		len(segments), total, counts[schema.SafeLabel], counts[schema.ModerateLabel],
		counts[schema.CautionLabel], counts[schema.UnsafeLabel]); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Scored in %v\n", duration); err != nil {
		return err
	}
	return nil
}

// writeScoresCSV writes ranked segments with their normalized features.
func writeScoresCSV(w io.Writer, segments []schema.EnrichedSegment, features []schema.FeatureName, fmtFloat func(float64) string) error {
	header := append([]string{"rank", "route_id", "latitude", "longitude", "safety_score", "label"}, featureColumns(features)...)
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range segments {
			rec := []string{
				strconv.Itoa(s.Rank),
				strconv.FormatInt(s.ID, 10),
				strconv.FormatFloat(s.Latitude, 'f', -1, 64),
				strconv.FormatFloat(s.Longitude, 'f', -1, 64),
				fmtFloat(s.SafetyScore),
				s.Label,
			}
			rec = append(rec, featureValues(&s.ScoredSegment, features, fmtFloat)...)
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
