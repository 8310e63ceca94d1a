// Package parquet provides data structures and functions for exporting scored
// products and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/prodscore/schema"
	"github.com/parquet-go/parquet-go"
)

// ScoredProduct is one row of a scored table.
// Input columns that are not factors travel in Fields as a JSON object.
type ScoredProduct struct {
	// RowIndex is the zero-based position in the input table
	RowIndex int32 `parquet:"row_index,snappy"`

	// Factor measurements are null when the cell was empty
	Cost        *float64 `parquet:"cost,optional,snappy"`
	Margin      *float64 `parquet:"margin,optional,snappy"`
	CAC         *float64 `parquet:"cac,optional,snappy"`
	ReturnRate  *float64 `parquet:"return_rate,optional,snappy"`
	StockStatus *float64 `parquet:"stock_status,optional,snappy"`

	Score      float64 `parquet:"score,snappy"`
	ScoreLabel string  `parquet:"score_label,snappy"`

	// Fields holds every input column keyed by header
	Fields string `parquet:"fields,snappy"`
}

// ScoringRun represents a single scoring run with metadata.
// This struct maps to the prodscore_runs database table.
type ScoringRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// SourcePath is the CSV file that was scored
	SourcePath string `parquet:"source_path,snappy"`

	// TotalRows is the number of rows scored in this run
	TotalRows int32 `parquet:"total_rows,snappy"`

	// ConfigParams contains the JSON-encoded weights and bands (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RowScore represents the measurements and score of one row in a run.
// This struct maps to the prodscore_row_scores database table.
type RowScore struct {
	RunID       int64     `parquet:"run_id,snappy"`
	RowIndex    int32     `parquet:"row_index,snappy"`
	RunTime     time.Time `parquet:"run_time,snappy"`
	Cost        *float64  `parquet:"cost,optional,snappy"`
	Margin      *float64  `parquet:"margin,optional,snappy"`
	CAC         *float64  `parquet:"cac,optional,snappy"`
	ReturnRate  *float64  `parquet:"return_rate,optional,snappy"`
	StockStatus *float64  `parquet:"stock_status,optional,snappy"`
	Score       *float64  `parquet:"score,optional,snappy"`
	ScoreLabel  string    `parquet:"score_label,snappy"`
}

// writeRows writes records of any struct type using schema inference from its tags.
func writeRows[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// writeFile creates outputPath and writes the records to it.
func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return writeRows(file, data)
}

// WriteScoredProducts writes scored products to w.
func WriteScoredProducts(w io.Writer, data []ScoredProduct) error {
	return writeRows(w, data)
}

// WriteScoringRunsParquet writes a slice of ScoringRun structs to a Parquet file.
func WriteScoringRunsParquet(data []ScoringRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteRowScoresParquet writes a slice of RowScore structs to a Parquet file.
func WriteRowScoresParquet(data []RowScore, outputPath string) error {
	return writeFile(data, outputPath)
}

// ConvertScoredTable converts every row of a scored table for Parquet export.
func ConvertScoredTable(st *schema.ScoredTable) ([]ScoredProduct, error) {
	result := make([]ScoredProduct, len(st.Rows))
	for i, row := range st.Rows {
		fields, err := json.Marshal(row.Fields)
		if err != nil {
			return nil, fmt.Errorf("failed to encode fields of row %d: %w", row.Index+1, err)
		}
		result[i] = ScoredProduct{
			RowIndex:    int32(row.Index),
			Cost:        schema.NullableValue(row.Values, schema.CostFactor),
			Margin:      schema.NullableValue(row.Values, schema.MarginFactor),
			CAC:         schema.NullableValue(row.Values, schema.CACFactor),
			ReturnRate:  schema.NullableValue(row.Values, schema.ReturnRateFactor),
			StockStatus: schema.NullableValue(row.Values, schema.StockStatusFactor),
			Score:       row.Score,
			ScoreLabel:  schema.GetPlainLabel(row.Score),
			Fields:      string(fields),
		}
	}
	return result, nil
}

// ConvertRunRecords converts schema.RunRecord to ScoringRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []ScoringRun {
	result := make([]ScoringRun, len(records))
	for i, record := range records {
		result[i] = ScoringRun{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			SourcePath:    record.SourcePath,
			TotalRows:     record.TotalRows,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertRowScoreRecords converts schema.RowScoreRecord to RowScore for Parquet export.
func ConvertRowScoreRecords(records []schema.RowScoreRecord) []RowScore {
	result := make([]RowScore, len(records))
	for i, record := range records {
		result[i] = RowScore{
			RunID:       record.RunID,
			RowIndex:    record.RowIndex,
			RunTime:     record.RunTime,
			Cost:        record.Cost,
			Margin:      record.Margin,
			CAC:         record.CAC,
			ReturnRate:  record.ReturnRate,
			StockStatus: record.StockStatus,
			Score:       record.Score,
			ScoreLabel:  record.ScoreLabel,
		}
	}
	return result
}
