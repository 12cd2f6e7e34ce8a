package core

import (
	"time"

	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/schema"
)

// recordHistory stores a finished run and returns its id, or "" when history
// is disabled or the run could not be started. A non-nil report gets the run id.
func recordHistory(mgr contract.StoreManager, cfg *contract.Config, startTime time.Time, scored []schema.ScoredSegment, report *schema.RouteReport) string {
	store := historyStore(mgr)
	if store == nil {
		return ""
	}

	params := cfg.ConfigParams()
	if report != nil {
		params["start"] = report.Start
		params["end"] = report.End
	}

	runID, err := store.BeginRun(startTime, params)
	if err != nil {
		contract.LogWarn("Run history initialization failed", err)
		return ""
	}

	if err := store.RecordSegments(runID, scored); err != nil {
		logHistoryError("RecordSegments", runID, err)
	}
	if report != nil {
		report.RunID = runID
		if err := store.RecordPath(runID, *report); err != nil {
			logHistoryError("RecordPath", runID, err)
		}
	}
	if err := store.EndRun(runID, time.Now(), len(scored)); err != nil {
		contract.LogWarn("Failed to finalize run history", err)
	}
	return runID
}

// logHistoryError logs history failures to stderr without disrupting the run.
func logHistoryError(operation, runID string, err error) {
	contract.LogWarn("Run history failed for "+operation+" on run "+runID, err)
}
