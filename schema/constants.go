package schema

import "strings"

// Custom string types for type safety.
type (
	// Factor names a scorable product attribute. It doubles as the CSV column header.
	Factor string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string

	// BandField names one of the three fields of a band.
	BandField string
)

// Factors known to the scoring engine.
const (
	CostFactor        Factor = "Cost"
	MarginFactor      Factor = "Margin"
	CACFactor         Factor = "CAC"
	ReturnRateFactor  Factor = "Return Rate"
	StockStatusFactor Factor = "Stock Status"
)

// Band fields in parse order.
const (
	BandMin   BandField = "min"
	BandMax   BandField = "max"
	BandScore BandField = "score"
)

// ScoreColumn is the column appended to a scored table.
const ScoreColumn = "Score"

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllFactors is the fixed factor set in declared order.
// Weight sums and default band iteration follow this order.
var AllFactors = []Factor{CostFactor, MarginFactor, CACFactor, ReturnRateFactor, StockStatusFactor}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// Key returns the config-file key for the factor (e.g. "return_rate").
func (f Factor) Key() string {
	return strings.ReplaceAll(strings.ToLower(string(f)), " ", "_")
}

// ParseFactor resolves a user-supplied factor name to a known Factor.
// Case, spaces, underscores and hyphens are ignored, so "Return Rate",
// "return_rate" and "return-rate" all resolve to ReturnRateFactor.
func ParseFactor(name string) (Factor, bool) {
	want := normalizeFactorName(name)
	if want == "" {
		return "", false
	}
	for _, f := range AllFactors {
		if normalizeFactorName(string(f)) == want {
			return f, true
		}
	}
	return "", false
}

func normalizeFactorName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}
