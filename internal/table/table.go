// Package table loads product tables from comma-separated text.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/huangsam/prodscore/schema"
)

// ErrEmptyTable is returned when the input has no header row.
var ErrEmptyTable = errors.New("table has no header row")

// ParseError describes a cell or row that could not be loaded.
type ParseError struct {
	Line   int    // 1-based line in the input, header is line 1
	Column string // Header of the offending column, empty for row-level errors
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d, column %q: invalid value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads a table from a CSV file on disk.
func Load(path string) (*schema.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Read parses comma-separated text with a header row. Columns whose header
// matches a factor name exactly are parsed as float64, with empty cells kept
// as NaN. Every column is also kept verbatim in ProductRow.Fields.
func Read(r io.Reader) (*schema.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, wrapCSVError(err)
	}

	header, err = normalizeHeader(header)
	if err != nil {
		return nil, err
	}

	factorCols := make(map[int]schema.Factor)
	for i, h := range header {
		for _, f := range schema.AllFactors {
			if h == string(f) {
				factorCols[i] = f
			}
		}
	}

	table := &schema.Table{Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrapCSVError(err)
		}
		line, _ := reader.FieldPos(0)

		row := schema.ProductRow{
			Fields: make(map[string]string, len(header)),
			Values: make(map[schema.Factor]float64, len(factorCols)),
		}
		for i, cell := range record {
			cell = strings.TrimSpace(cell)
			row.Fields[header[i]] = cell

			f, ok := factorCols[i]
			if !ok {
				continue
			}
			v, err := parseCell(cell)
			if err != nil {
				return nil, &ParseError{Line: line, Column: header[i], Value: cell, Err: err}
			}
			row.Values[f] = v
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// ReadString parses a table held in memory.
func ReadString(s string) (*schema.Table, error) {
	return Read(strings.NewReader(s))
}

// normalizeHeader trims header names and strips a UTF-8 byte order mark.
func normalizeHeader(header []string) ([]string, error) {
	out := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, &ParseError{Line: 1, Err: fmt.Errorf("column %d has an empty header", i+1)}
		}
		if _, dup := seen[h]; dup {
			return nil, &ParseError{Line: 1, Err: fmt.Errorf("duplicate column %q", h)}
		}
		seen[h] = struct{}{}
		out[i] = h
	}
	return out, nil
}

func parseCell(cell string) (float64, error) {
	if cell == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, errors.New("not a number")
	}
	return v, nil
}

// wrapCSVError converts csv.ParseError (including ragged rows) into a ParseError.
func wrapCSVError(err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Line: csvErr.Line, Err: csvErr.Err}
	}
	return fmt.Errorf("failed to read table: %w", err)
}
