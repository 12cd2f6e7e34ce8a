package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/internal/parquet"
)

// ExportHistory writes stored runs, segment scores and paths to three Parquet
// files named after outputFile. An empty runID exports every run.
func ExportHistory(w io.Writer, store contract.HistoryStore, outputFile, runID string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not configured")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)

	runs, err := store.ListRuns(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	if runID != "" {
		filtered := runs[:0]
		for _, r := range runs {
			if r.RunID == runID {
				filtered = append(filtered, r)
			}
		}
		if len(filtered) == 0 {
			return fmt.Errorf("run %s not found", runID)
		}
		runs = filtered
	}

	scores, err := store.ListSegmentScores(runID)
	if err != nil {
		return fmt.Errorf("failed to retrieve segment scores: %w", err)
	}
	paths, err := store.ListPaths(runID)
	if err != nil {
		return fmt.Errorf("failed to retrieve paths: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)

	scoresFile := outputFile + ".segment_scores.parquet"
	if err := parquet.WriteSegmentScoresParquet(parquet.ConvertSegmentScoreRecords(scores), scoresFile); err != nil {
		return fmt.Errorf("failed to write segment scores: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d segment scores to: %s\n", len(scores), scoresFile)

	pathsFile := outputFile + ".paths.parquet"
	if err := parquet.WritePathsParquet(parquet.ConvertPathRecords(paths), pathsFile); err != nil {
		return fmt.Errorf("failed to write paths: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d paths to: %s\n", len(paths), pathsFile)

	return nil
}
