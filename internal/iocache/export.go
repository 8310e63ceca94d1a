package iocache

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/prodscore/internal/contract"
	"github.com/huangsam/prodscore/internal/parquet"
)

// ExecuteHistoryExport exports the global history store to Parquet files.
func ExecuteHistoryExport(outputFile string) error {
	return ExportHistory(Manager.GetHistoryStore(), outputFile, os.Stdout)
}

// ExportHistory writes every run and row score of a store to two Parquet
// files named after outputFile, reporting progress to w.
func ExportHistory(store contract.HistoryStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history tracking is disabled. Set --history-backend to enable it")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total row records: %d\n", status.TableSizes[rowScoresTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve scoring runs: %w", err)
	}
	rowScores, err := store.GetAllRowScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve row scores: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteScoringRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write scoring runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)

	rowsFile := outputFile + ".row_scores.parquet"
	if err := parquet.WriteRowScoresParquet(parquet.ConvertRowScoreRecords(rowScores), rowsFile); err != nil {
		return fmt.Errorf("failed to write row scores: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d row scores to: %s\n", len(rowScores), rowsFile)

	return nil
}
