package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/prodscore/internal/contract"
	"github.com/huangsam/prodscore/schema"
)

// Table names for run history.
const (
	runsTable      = "prodscore_runs"
	rowScoresTable = "prodscore_row_scores"
)

// historyTables lists the history tables in creation order.
var historyTables = []string{runsTable, rowScoresTable}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables applies the table-creating migrations. The statements
// use IF NOT EXISTS, so a later migrate run over the same database is a no-op for them.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	for _, name := range historyTableMigrations {
		query, err := readMigration(backend, name)
		if err != nil {
			return err
		}
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to apply %s: %w", name, err)
		}
	}
	return nil
}

// BeginRun creates a new scoring run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, sourcePath string, configParams map[string]any) (int64, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quoted := quoteTableName(runsTable, hs.backend)
	args := []any{formatTime(startTime, hs.backend), sourcePath, string(configJSON)}

	var runID int64
	if hs.backend == schema.PostgreSQLBackend {
		query := fmt.Sprintf(`INSERT INTO %s (start_time, source_path, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quoted)
		err = hs.db.QueryRow(query, args...).Scan(&runID)
	} else {
		query := fmt.Sprintf(`INSERT INTO %s (start_time, source_path, config_params) VALUES (?, ?, ?)`, quoted)
		var result sql.Result
		result, err = hs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert scoring run: %w", err)
	}
	return runID, nil
}

// EndRun updates the scoring run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalRows int) error {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	quoted := quoteTableName(runsTable, hs.backend)

	var startTime nullableTime
	selectQuery := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quoted, placeholder(hs.backend, 1))
	if err := hs.db.QueryRow(selectQuery, runID).Scan(&startTime); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	durationMs := endTime.Sub(startTime.Time).Milliseconds()

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_rows = %s WHERE run_id = %s`,
		quoted,
		placeholder(hs.backend, 1), placeholder(hs.backend, 2), placeholder(hs.backend, 3), placeholder(hs.backend, 4))
	if _, err := hs.db.Exec(updateQuery, formatTime(endTime, hs.backend), durationMs, totalRows, runID); err != nil {
		return fmt.Errorf("failed to update scoring run: %w", err)
	}
	return nil
}

// RecordRowScores stores every row of a run inside one transaction.
func (hs *HistoryStoreImpl) RecordRowScores(runID int64, runTime time.Time, rows []schema.RowScore) error {
	if hs.backend == schema.NoneBackend || hs.db == nil || len(rows) == 0 {
		return nil
	}

	columns := []string{"run_id", "row_index", "run_time", "cost", "margin", "cac", "return_rate", "stock_status", "score", "score_label"}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteTableName(rowScoresTable, hs.backend),
		strings.Join(columns, ", "),
		placeholders(hs.backend, len(columns)))

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare row score insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	ts := formatTime(runTime, hs.backend)
	for _, r := range rows {
		_, err := stmt.Exec(
			runID, r.RowIndex, ts,
			schema.NullableValue(r.Values, schema.CostFactor),
			schema.NullableValue(r.Values, schema.MarginFactor),
			schema.NullableValue(r.Values, schema.CACFactor),
			schema.NullableValue(r.Values, schema.ReturnRateFactor),
			schema.NullableValue(r.Values, schema.StockStatusFactor),
			schema.NullableScore(r.Score), r.Label,
		)
		if err != nil {
			return fmt.Errorf("failed to insert score of row %d: %w", r.RowIndex+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit row scores: %w", err)
	}
	return nil
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
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, hs.backend)

	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var lastRunTime, oldestRunTime nullableTime
		lastQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns)
		if err := hs.db.QueryRow(lastQuery).Scan(&status.LastRunID, &lastRunTime); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = lastRunTime.Time

		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns)
		if err := hs.db.QueryRow(oldestQuery).Scan(&oldestRunTime); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime.Time

		rowsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_rows), 0) FROM %s", quotedRuns)
		if err := hs.db.QueryRow(rowsQuery).Scan(&status.TotalRowsScored); err != nil {
			return status, fmt.Errorf("failed to get total rows scored: %w", err)
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

// GetAllRuns retrieves all scoring runs from the store.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, source_path, total_rows, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query scoring runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var startTime, endTime nullableTime
		if err := rows.Scan(&record.RunID, &startTime, &endTime, &record.RunDurationMs,
			&record.SourcePath, &record.TotalRows, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan scoring run: %w", err)
		}
		record.StartTime = startTime.Time
		record.EndTime = endTime.Ptr()
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scoring runs: %w", err)
	}
	return results, nil
}

// GetAllRowScores retrieves all recorded row scores from the store.
func (hs *HistoryStoreImpl) GetAllRowScores() ([]schema.RowScoreRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, row_index, run_time, cost, margin, cac, return_rate, stock_status, score, score_label
		FROM %s ORDER BY run_id, row_index`, quoteTableName(rowScoresTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query row scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RowScoreRecord
	for rows.Next() {
		var record schema.RowScoreRecord
		var runTime nullableTime
		if err := rows.Scan(&record.RunID, &record.RowIndex, &runTime,
			&record.Cost, &record.Margin, &record.CAC, &record.ReturnRate, &record.StockStatus,
			&record.Score, &record.ScoreLabel); err != nil {
			return nil, fmt.Errorf("failed to scan row score: %w", err)
		}
		record.RunTime = runTime.Time
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating row scores: %w", err)
	}
	return results, nil
}
