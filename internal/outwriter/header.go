package outwriter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/safepath/safepath/internal/contract"
)

// LogRouteHeader prints a concise, 2-line header for a route run.
func LogRouteHeader(cfg *contract.Config, start, end int64) {
	_, _ = fmt.Fprintf(os.Stderr, "🧭 Input: %s (%d features)\n", inputName(cfg), len(cfg.Features))
	_, _ = fmt.Fprintf(os.Stderr, "📍 Route: %d → %d (alpha %.2f, beta %.2f)\n", start, end, cfg.Alpha, cfg.Beta)
}

// LogScoresHeader prints a concise, 2-line header for a scoring run.
func LogScoresHeader(cfg *contract.Config) {
	_, _ = fmt.Fprintf(os.Stderr, "🧭 Input: %s (%d features)\n", inputName(cfg), len(cfg.Features))
	_, _ = fmt.Fprintf(os.Stderr, "🔢 Segments: id %d → %s\n", cfg.MinID, maxIDText(cfg.MaxID))
}

func inputName(cfg *contract.Config) string {
	if cfg.InputPath == "" {
		return "none"
	}
	return filepath.Base(cfg.InputPath)
}

func maxIDText(maxID int64) string {
	if maxID == 0 {
		return "any"
	}
	return fmt.Sprint(maxID)
}
