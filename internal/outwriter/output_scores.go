package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/prodscore/core/algo"
	"github.com/huangsam/prodscore/internal/contract"
	"github.com/huangsam/prodscore/internal/parquet"
	"github.com/huangsam/prodscore/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const topNContributions = 3

// WriteScoredTable outputs the scored table, dispatching based on the output format configured.
// CSV and Parquet always carry every row in input order; text and JSON honor --sort.
func WriteScoredTable(st *schema.ScoredTable, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtExact := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScoresJSON(w, displayRows(st, cfg))
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScoresCSV(w, st, fmtExact)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScoresParquet(w, st)
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScoresTable(w, st, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// displayRows returns the rows in display order.
func displayRows(st *schema.ScoredTable, cfg *contract.Config) []schema.ScoredRow {
	if cfg.Sort {
		return algo.RankRows(st.Rows, 0)
	}
	return st.Rows
}

// previewColumns returns the input columns shown next to the computed score.
// An input Score column would only repeat the computed one, so it is hidden.
func previewColumns(header []string) []string {
	columns := make([]string, 0, len(header))
	for _, h := range header {
		if h != schema.ScoreColumn {
			columns = append(columns, h)
		}
	}
	return columns
}

// writeScoresTable renders the first ResultLimit rows as a human-readable table.
func writeScoresTable(w io.Writer, st *schema.ScoredTable, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	rows := displayRows(st, cfg)
	shown := rows
	if cfg.ResultLimit > 0 && len(shown) > cfg.ResultLimit {
		shown = shown[:cfg.ResultLimit]
	}

	columns := previewColumns(st.Header)
	cellWidth := getMaxCellWidth(cfg, len(columns))

	table := tablewriter.NewWriter(w)

	headers := make([]string, 0, len(columns)+4)
	headers = append(headers, "Row")
	headers = append(headers, columns...)
	headers = append(headers, "Score", "Label")
	if cfg.Explain {
		headers = append(headers, "Explain")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(shown))
	for _, r := range shown {
		row := make([]string, 0, len(headers))
		row = append(row, strconv.Itoa(r.Index+1))
		for _, c := range columns {
			row = append(row, contract.TruncateText(r.Fields[c], cellWidth))
		}
		row = append(row, fmtFloat(r.Score), contract.GetColorLabel(r.Score))
		if cfg.Explain {
			row = append(row, formatTopContributions(r.Breakdown, fmtFloat))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d of %d rows\n", len(shown), len(rows)); err != nil {
		return err
	}
	if len(rows) > len(shown) {
		if _, err := fmt.Fprintf(w, "Export all %d rows with --output csv --output-file <path>\n", len(rows)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Scored in %v. Cache backend: %s\n", duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// formatTopContributions lists the factors that added the most to a score.
func formatTopContributions(breakdown map[schema.Factor]float64, fmtFloat func(float64) string) string {
	top := algo.TopContributions(breakdown, topNContributions)
	if len(top) == 0 {
		return "No matching bands"
	}
	parts := make([]string, len(top))
	for i, c := range top {
		parts[i] = fmt.Sprintf("%s %s", c.Factor, fmtFloat(c.Value))
	}
	return strings.Join(parts, " > ")
}

// writeScoresCSV writes the full input table with the Score column at full precision.
func writeScoresCSV(w io.Writer, st *schema.ScoredTable, fmtExact func(float64) string) error {
	return writeCSVWithHeader(w, st.OutputHeader(), func(csvWriter *csv.Writer) error {
		for _, r := range st.Rows {
			if err := csvWriter.Write(st.Record(r, fmtExact)); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeScoresJSON writes the scored rows with rank and label added.
func writeScoresJSON(w io.Writer, rows []schema.ScoredRow) error {
	return writeJSON(w, schema.EnrichRows(rows))
}

// writeScoresParquet writes the scored rows as Parquet records.
func writeScoresParquet(w io.Writer, st *schema.ScoredTable) error {
	records, err := parquet.ConvertScoredTable(st)
	if err != nil {
		return err
	}
	return parquet.WriteScoredProducts(w, records)
}
