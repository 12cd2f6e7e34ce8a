// Package loader reads route segments from CSV tables.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/safepath/safepath/schema"
)

// Options controls which columns and rows are accepted.
type Options struct {
	Features      []schema.FeatureName // active features, all required
	IgnoreColumns []string             // extra columns to skip instead of rejecting
	MinID         int64
	MaxID         int64 // 0 = no upper bound
}

// header maps every column we read to its index.
type header struct {
	id, lat, lon int
	features     map[schema.FeatureName]int
}

// LoadSegments reads the CSV file at path.
func LoadSegments(path string, opts Options) ([]schema.Segment, error) {
	if path == "" {
		return nil, schema.NewConfigurationError("input", "no input file given")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadSegments(f, opts)
}

// ReadSegments parses a CSV table with a header row. Rows whose route_id is
// outside [MinID, MaxID] are skipped. Row order is preserved.
func ReadSegments(r io.Reader, opts Options) ([]schema.Segment, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	columns, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, schema.NewConfigurationError("input", "empty CSV, header row missing")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	h, err := parseHeader(columns, opts)
	if err != nil {
		return nil, err
	}

	var segments []schema.Segment
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		id, err := strconv.ParseInt(strings.TrimSpace(record[h.id]), 10, 64)
		if err != nil {
			return nil, schema.NewConfigurationError(schema.ColumnRouteID, "line %d: %q is not an integer", line, record[h.id])
		}
		if id < opts.MinID || (opts.MaxID > 0 && id > opts.MaxID) {
			continue
		}

		seg := schema.Segment{ID: id, Raw: make(map[schema.FeatureName]float64, len(h.features))}
		if seg.Latitude, err = parseNumber(record[h.lat], schema.ColumnLatitude, line); err != nil {
			return nil, err
		}
		if seg.Longitude, err = parseNumber(record[h.lon], schema.ColumnLongitude, line); err != nil {
			return nil, err
		}
		for _, f := range opts.Features {
			v, err := parseNumber(record[h.features[f]], string(f), line)
			if err != nil {
				return nil, err
			}
			seg.Raw[f] = v
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func parseHeader(columns []string, opts Options) (header, error) {
	h := header{id: -1, lat: -1, lon: -1, features: make(map[schema.FeatureName]int, len(opts.Features))}

	active := make(map[schema.FeatureName]bool, len(opts.Features))
	for _, f := range opts.Features {
		active[f] = true
	}
	ignored := make(map[string]bool, len(opts.IgnoreColumns))
	for _, c := range opts.IgnoreColumns {
		ignored[strings.ToLower(strings.TrimSpace(c))] = true
	}

	for i, raw := range columns {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff")))
		switch {
		case name == schema.ColumnRouteID:
			h.id = i
		case name == schema.ColumnLatitude:
			h.lat = i
		case name == schema.ColumnLongitude:
			h.lon = i
		case active[schema.FeatureName(name)]:
			h.features[schema.FeatureName(name)] = i
		case ignored[name]:
			continue
		default:
			if _, known := schema.ValidFeatures[schema.FeatureName(name)]; known {
				// Known but inactive feature.
				continue
			}
			return h, schema.NewConfigurationError("columns", "unrecognized column %q (add it to ignore-columns to skip it)", raw)
		}
	}

	required := []struct {
		name string
		idx  int
	}{
		{schema.ColumnRouteID, h.id},
		{schema.ColumnLatitude, h.lat},
		{schema.ColumnLongitude, h.lon},
	}
	for _, col := range required {
		if col.idx < 0 {
			return h, schema.NewConfigurationError("columns", "required column %q missing", col.name)
		}
	}
	for _, f := range opts.Features {
		if _, ok := h.features[f]; !ok {
			return h, schema.NewConfigurationError("columns", "feature column %q missing", f)
		}
	}
	return h, nil
}

func parseNumber(s, column string, line int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, schema.NewConfigurationError(column, "line %d: %q is not a number", line, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, schema.NewConfigurationError(column, "line %d: %q is not a finite number", line, s)
	}
	return v, nil
}
