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

// WriteRouteReport outputs a route report, dispatching based on the output format configured.
func WriteRouteReport(report schema.RouteReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRouteCSV(w, report, cfg.Features, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteScoredSegmentsParquet(schema.EnrichSegments(report.Route), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRouteTable(w, report, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// writeRouteTable generates and writes the human-readable route table.
func writeRouteTable(w io.Writer, report schema.RouteReport, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Step", "Route ID", "Score", "Label"}
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
	for i, s := range report.Route {
		row := []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(s.ID, 10),
			fmtFloat(s.SafetyScore),
			contract.GetColorLabel(s.SafetyScore),
		}
		if cfg.Detail {
			row = append(row, strconv.FormatFloat(s.Latitude, 'f', 6, 64), strconv.FormatFloat(s.Longitude, 'f', 6, 64))
		}
		if cfg.Explain {
			row = append(row, contract.TruncateText(formatTopFeatureBreakdown(&s), explainWidth))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Safest route %d → %d over %d segments (alpha %s, beta %s)\n",
		report.Start, report.End, len(report.Path.IDs), fmtFloat(report.Alpha), fmtFloat(report.Beta)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Total weight: %s | Planar distance: %s | Geodesic length: %s km | Travel time: %s min | Lowest score: %s\n",
		fmtFloat(report.Path.TotalWeight), fmtFloat(report.Path.PlanarDistance), fmtFloat(report.GeodesicKm),
		fmtFloat(report.TravelMinutes), fmtFloat(report.MinRouteScore)); err != nil {
		return err
	}
	if p := report.Provider; p != nil {
		if _, err := fmt.Fprintf(w, "Provider %s (informational): %s km, %d min, %d geometry points\n",
			p.Provider, fmtFloat(p.DistanceKm), p.DurationMinutes, len(p.Geometry)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Computed in %v. Cache backend: %s\n", duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeRouteCSV writes the route segments in path order.
func writeRouteCSV(w io.Writer, report schema.RouteReport, features []schema.FeatureName, fmtFloat func(float64) string) error {
	header := append([]string{"step", "route_id", "latitude", "longitude", "safety_score", "label"}, featureColumns(features)...)
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, s := range report.Route {
			rec := []string{
				strconv.Itoa(i + 1),
				strconv.FormatInt(s.ID, 10),
				strconv.FormatFloat(s.Latitude, 'f', -1, 64),
				strconv.FormatFloat(s.Longitude, 'f', -1, 64),
				fmtFloat(s.SafetyScore),
				schema.GetPlainLabel(s.SafetyScore),
			}
			rec = append(rec, featureValues(&s, features, fmtFloat)...)
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
