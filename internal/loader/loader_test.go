package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/safepath/safepath/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullHeader = "route_id,latitude,longitude,crime_density,lighting_density,surveillance_score," +
	"police_proximity,emergency_services,population_density,user_feedback,public_transport_nearby,weather_conditions"

func allFeatures() Options {
	return Options{Features: schema.AllFeatures, MaxID: 100}
}

func TestReadSegments(t *testing.T) {
	csvData := fullHeader + "\n" +
		"1,28.6139,77.2090,5,3,2,1,4,6,7,2,3\n" +
		"2,28.6200,77.2150,8,1,1,2,3,5,4,1,2\n" +
		"101,28.7000,77.3000,1,1,1,1,1,1,1,1,1\n" +
		"3,28.6250,77.2200,2,5,4,3,2,7,8,3,1\n"

	segments, err := ReadSegments(strings.NewReader(csvData), allFeatures())
	require.NoError(t, err)
	require.Len(t, segments, 3, "route 101 is above max-id")

	assert.Equal(t, int64(1), segments[0].ID)
	assert.Equal(t, int64(2), segments[1].ID)
	assert.Equal(t, int64(3), segments[2].ID)
	assert.Equal(t, 28.6139, segments[0].Latitude)
	assert.Equal(t, 77.2090, segments[0].Longitude)
	assert.Equal(t, 5.0, segments[0].Raw[schema.CrimeDensity])
	assert.Equal(t, 3.0, segments[0].Raw[schema.WeatherConditions])
	assert.Len(t, segments[0].Raw, len(schema.AllFeatures))
}

func TestReadSegmentsIDRange(t *testing.T) {
	csvData := "route_id,latitude,longitude,crime_density\n" +
		"1,0,0,1\n5,0,0,2\n10,0,0,3\n500,0,0,4\n"

	tests := []struct {
		name       string
		minID      int64
		maxID      int64
		expectedID []int64
	}{
		{"default window", 0, 100, []int64{1, 5, 10}},
		{"lower bound", 5, 100, []int64{5, 10}},
		{"unbounded", 0, 0, []int64{1, 5, 10, 500}},
		{"inclusive", 5, 5, []int64{5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Features: []schema.FeatureName{schema.CrimeDensity}, MinID: tt.minID, MaxID: tt.maxID}
			segments, err := ReadSegments(strings.NewReader(csvData), opts)
			require.NoError(t, err)
			ids := make([]int64, len(segments))
			for i, s := range segments {
				ids[i] = s.ID
			}
			assert.Equal(t, tt.expectedID, ids)
		})
	}
}

func TestReadSegmentsColumns(t *testing.T) {
	crimeOnly := Options{Features: []schema.FeatureName{schema.CrimeDensity}}

	tests := []struct {
		name    string
		csvData string
		opts    Options
		field   string
		reason  string
	}{
		{
			name:    "unknown column rejected",
			csvData: "route_id,latitude,longitude,crime_density,notes\n1,0,0,1,x\n",
			opts:    crimeOnly,
			field:   "columns",
			reason:  "unrecognized column",
		},
		{
			name:    "missing feature column",
			csvData: "route_id,latitude,longitude\n1,0,0\n",
			opts:    crimeOnly,
			field:   "columns",
			reason:  "crime_density",
		},
		{
			name:    "missing route id",
			csvData: "latitude,longitude,crime_density\n0,0,1\n",
			opts:    crimeOnly,
			field:   "columns",
			reason:  "route_id",
		},
		{
			name:    "bad id",
			csvData: "route_id,latitude,longitude,crime_density\nabc,0,0,1\n",
			opts:    crimeOnly,
			field:   schema.ColumnRouteID,
			reason:  "not an integer",
		},
		{
			name:    "bad number",
			csvData: "route_id,latitude,longitude,crime_density\n1,0,0,high\n",
			opts:    crimeOnly,
			field:   string(schema.CrimeDensity),
			reason:  "not a number",
		},
		{
			name:    "nan rejected",
			csvData: "route_id,latitude,longitude,crime_density\n1,NaN,0,1\n",
			opts:    crimeOnly,
			field:   schema.ColumnLatitude,
			reason:  "finite",
		},
		{
			name:    "empty file",
			csvData: "",
			opts:    crimeOnly,
			field:   "input",
			reason:  "header row missing",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSegments(strings.NewReader(tt.csvData), tt.opts)
			var cfgErr *schema.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Contains(t, cfgErr.Reason, tt.reason)
		})
	}
}

func TestReadSegmentsTolerantHeader(t *testing.T) {
	t.Run("ignored and inactive columns", func(t *testing.T) {
		csvData := "route_id,latitude,longitude,crime_density,lighting_density,notes\n1,0,0,1,9,x\n"
		opts := Options{
			Features:      []schema.FeatureName{schema.CrimeDensity},
			IgnoreColumns: []string{"Notes"},
		}
		segments, err := ReadSegments(strings.NewReader(csvData), opts)
		require.NoError(t, err)
		require.Len(t, segments, 1)
		assert.Len(t, segments[0].Raw, 1, "inactive feature not loaded")
	})

	t.Run("byte order mark and case", func(t *testing.T) {
		csvData := "\ufeffRoute_ID, Latitude, Longitude, Crime_Density\n7, 1.5, 2.5, 3\n"
		opts := Options{Features: []schema.FeatureName{schema.CrimeDensity}}
		segments, err := ReadSegments(strings.NewReader(csvData), opts)
		require.NoError(t, err)
		require.Len(t, segments, 1)
		assert.Equal(t, int64(7), segments[0].ID)
		assert.Equal(t, 2.5, segments[0].Longitude)
	})
}

func TestLoadSegments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segments.csv")
	require.NoError(t, os.WriteFile(path, []byte("route_id,latitude,longitude,crime_density\n1,0,0,1\n2,0,1,2\n"), 0o600))

	segments, err := LoadSegments(path, Options{Features: []schema.FeatureName{schema.CrimeDensity}})
	require.NoError(t, err)
	assert.Len(t, segments, 2)

	_, err = LoadSegments(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadSegments("", Options{})
	var cfgErr *schema.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}
