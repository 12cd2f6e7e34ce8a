package contract

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

func TestGetColorLabel(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		label string
	}{
		{"unsafe", 0.1, schema.UnsafeLabel},
		{"caution", 0.3, schema.CautionLabel},
		{"moderate", 0.6, schema.ModerateLabel},
		{"safe", 0.9, schema.SafeLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetColorLabel(tt.score)
			// Should contain the plain label
			assert.Contains(t, result, tt.label)
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "route.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestDBFilePaths(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	cache := GetCacheDBFilePath()
	history := GetHistoryDBFilePath()

	assert.Contains(t, cache, ".safepath_cache.db")
	assert.Contains(t, history, ".safepath_history.db")
	assert.NotEqual(t, cache, history)
	assert.True(t, strings.HasPrefix(cache, homeDir), "path %s should start with home dir %s", cache, homeDir)
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		width    int
		expected string
	}{
		{"short", "route", 10, "route"},
		{"exact", "route", 5, "route"},
		{"truncated", "provider unavailable", 10, "provide..."},
		{"tiny width untouched", "provider", 3, "provider"},
		{"multibyte", "ruta más segura", 8, "ruta ..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateText(tt.text, tt.width))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"yes", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"no", false, false},
		{"False", false, false},
		{"0", false, false},
		{"", false, true},
		{"maybe", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBoolString(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSegmentID(t *testing.T) {
	id, err := ParseSegmentID("start", " 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = ParseSegmentID("end", "12abc")
	var cfgErr *schema.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "end", cfgErr.Field)
}
