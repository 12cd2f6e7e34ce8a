package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/schema"
)

// Table names for run history.
const (
	runsTable          = "safepath_runs"
	segmentScoresTable = "safepath_segment_scores"
	pathsTable         = "safepath_paths"
)

// historyTables lists the history tables in creation order.
var historyTables = []string{runsTable, segmentScoresTable, pathsTable}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables creates the run history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	for _, table := range historyTables {
		if _, err := db.Exec(getCreateHistoryQuery(table, backend)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// getCreateHistoryQuery returns the CREATE TABLE query of a history table.
func getCreateHistoryQuery(table string, backend schema.DatabaseBackend) string {
	quoted := quoteTableName(table, backend)

	// Column types per backend.
	var id, text, real, ts, autoID string
	switch backend {
	case schema.MySQLBackend:
		id, text, real, ts, autoID = "VARCHAR(36)", "TEXT", "DOUBLE", "DATETIME(6)", "BIGINT AUTO_INCREMENT PRIMARY KEY"
	case schema.PostgreSQLBackend:
		id, text, real, ts, autoID = "TEXT", "TEXT", "DOUBLE PRECISION", "TIMESTAMPTZ", "BIGSERIAL PRIMARY KEY"
	default: // SQLite
		id, text, real, ts, autoID = "TEXT", "TEXT", "REAL", "TEXT", "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	switch table {
	case runsTable:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id %s PRIMARY KEY,
				start_time %s NOT NULL,
				end_time %s,
				run_duration_ms INTEGER,
				total_segments INTEGER NOT NULL DEFAULT 0,
				config_params %s
			);
		`, quoted, id, ts, ts, text)

	case segmentScoresTable:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id %s NOT NULL,
				segment_id BIGINT NOT NULL,
				latitude %s NOT NULL,
				longitude %s NOT NULL,
				safety_score %s NOT NULL,
				normalized %s NOT NULL,
				recorded_at %s NOT NULL,
				PRIMARY KEY (run_id, segment_id)
			);
		`, quoted, id, real, real, real, text, ts)

	default: // pathsTable
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				path_id %s,
				run_id %s NOT NULL,
				start_id BIGINT NOT NULL,
				end_id BIGINT NOT NULL,
				path_ids %s NOT NULL,
				total_weight %s NOT NULL,
				planar_distance %s NOT NULL,
				geodesic_km %s NOT NULL,
				recorded_at %s NOT NULL
			);
		`, quoted, autoID, id, text, real, real, real, ts)
	}
}

func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// BeginRun creates a new run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (string, error) {
	if hs.disabled() {
		return "", nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config params: %w", err)
	}

	runID := uuid.NewString()
	query := rebind(hs.backend, fmt.Sprintf(`INSERT INTO %s (run_id, start_time, config_params) VALUES (?, ?, ?)`,
		quoteTableName(runsTable, hs.backend)))
	if _, err := hs.db.Exec(query, runID, formatTime(startTime, hs.backend), string(configJSON)); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID string, endTime time.Time, totalSegments int) error {
	if hs.disabled() {
		return nil
	}

	quoted := quoteTableName(runsTable, hs.backend)
	start := timeScanner{backend: hs.backend}
	query := rebind(hs.backend, fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quoted))
	if err := hs.db.QueryRow(query, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	if startTime == nil {
		return fmt.Errorf("run %s has no start_time", runID)
	}

	durationMs := endTime.Sub(*startTime).Milliseconds()
	update := rebind(hs.backend, fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_segments = ? WHERE run_id = ?`, quoted))
	if _, err := hs.db.Exec(update, formatTime(endTime, hs.backend), durationMs, totalSegments, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordSegments stores the scored segments of a run in one transaction.
func (hs *HistoryStoreImpl) RecordSegments(runID string, segments []schema.ScoredSegment) error {
	if hs.disabled() || len(segments) == 0 {
		return nil
	}

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := rebind(hs.backend, fmt.Sprintf(`
		INSERT INTO %s (run_id, segment_id, latitude, longitude, safety_score, normalized, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, quoteTableName(segmentScoresTable, hs.backend)))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare segment insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	recordedAt := formatTime(time.Now(), hs.backend)
	for _, s := range segments {
		normalized, err := json.Marshal(s.Normalized)
		if err != nil {
			return fmt.Errorf("failed to marshal normalized features of segment %d: %w", s.ID, err)
		}
		if _, err := stmt.Exec(runID, s.ID, s.Latitude, s.Longitude, s.SafetyScore, string(normalized), recordedAt); err != nil {
			return fmt.Errorf("failed to insert segment %d: %w", s.ID, err)
		}
	}
	return tx.Commit()
}

// RecordPath stores a computed path of a run.
func (hs *HistoryStoreImpl) RecordPath(runID string, report schema.RouteReport) error {
	if hs.disabled() {
		return nil
	}

	ids := make([]string, len(report.Path.IDs))
	for i, id := range report.Path.IDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	query := rebind(hs.backend, fmt.Sprintf(`
		INSERT INTO %s (run_id, start_id, end_id, path_ids, total_weight, planar_distance, geodesic_km, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, quoteTableName(pathsTable, hs.backend)))
	_, err := hs.db.Exec(query, runID, report.Start, report.End, strings.Join(ids, ","),
		report.Path.TotalWeight, report.Path.PlanarDistance, report.GeodesicKm, formatTime(time.Now(), hs.backend))
	if err != nil {
		return fmt.Errorf("failed to insert path: %w", err)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first.
func (hs *HistoryStoreImpl) ListRuns(limit int) ([]schema.RunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, total_segments, config_params
		FROM %s ORDER BY start_time DESC`, quoteTableName(runsTable, hs.backend))
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		start := timeScanner{backend: hs.backend}
		end := timeScanner{backend: hs.backend}
		if err := rows.Scan(&record.RunID, start.dest(), end.dest(), &record.RunDurationMs, &record.TotalSegments, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// ListSegmentScores returns stored segment scores ordered by run and segment.
func (hs *HistoryStoreImpl) ListSegmentScores(runID string) ([]schema.SegmentScoreRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, segment_id, latitude, longitude, safety_score, normalized, recorded_at FROM %s`,
		quoteTableName(segmentScoresTable, hs.backend))
	var args []any
	if runID != "" {
		query += " WHERE run_id = ?"
		args = append(args, runID)
	}
	query = rebind(hs.backend, query+" ORDER BY run_id, segment_id")

	rows, err := hs.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query segment scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SegmentScoreRecord
	for rows.Next() {
		var record schema.SegmentScoreRecord
		recorded := timeScanner{backend: hs.backend}
		if err := rows.Scan(&record.RunID, &record.SegmentID, &record.Latitude, &record.Longitude,
			&record.SafetyScore, &record.Normalized, recorded.dest()); err != nil {
			return nil, fmt.Errorf("failed to scan segment score: %w", err)
		}
		t, err := recorded.value()
		if err != nil {
			return nil, err
		}
		if t != nil {
			record.RecordedAt = *t
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating segment scores: %w", err)
	}
	return results, nil
}

// ListPaths returns stored paths in insertion order.
func (hs *HistoryStoreImpl) ListPaths(runID string) ([]schema.PathRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_id, end_id, path_ids, total_weight, planar_distance, geodesic_km, recorded_at FROM %s`,
		quoteTableName(pathsTable, hs.backend))
	var args []any
	if runID != "" {
		query += " WHERE run_id = ?"
		args = append(args, runID)
	}
	query = rebind(hs.backend, query+" ORDER BY path_id")

	rows, err := hs.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query paths: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.PathRecord
	for rows.Next() {
		var record schema.PathRecord
		recorded := timeScanner{backend: hs.backend}
		if err := rows.Scan(&record.RunID, &record.StartID, &record.EndID, &record.PathIDs,
			&record.TotalWeight, &record.PlanarDistance, &record.GeodesicKm, recorded.dest()); err != nil {
			return nil, fmt.Errorf("failed to scan path: %w", err)
		}
		t, err := recorded.value()
		if err != nil {
			return nil, err
		}
		if t != nil {
			record.RecordedAt = *t
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating paths: %w", err)
	}
	return results, nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.disabled() {
		return status, nil
	}

	runs := quoteTableName(runsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := timeScanner{backend: hs.backend}
		lastQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY start_time DESC LIMIT 1", runs)
		if err := hs.db.QueryRow(lastQuery).Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		if t, err := last.value(); err != nil {
			return status, err
		} else if t != nil {
			status.LastRunTime = *t
		}

		oldest := timeScanner{backend: hs.backend}
		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time ASC LIMIT 1", runs)
		if err := hs.db.QueryRow(oldestQuery).Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		if t, err := oldest.value(); err != nil {
			return status, err
		} else if t != nil {
			status.OldestRunTime = *t
		}

		totalQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_segments), 0) FROM %s", runs)
		if err := hs.db.QueryRow(totalQuery).Scan(&status.TotalSegments); err != nil {
			return status, fmt.Errorf("failed to get total segments: %w", err)
		}
	}

	for _, table := range historyTables {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}
