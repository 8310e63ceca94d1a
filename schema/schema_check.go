package schema

// CheckResult holds the results of a minimum score check.
type CheckResult struct {
	Passed     bool             `json:"passed"`
	SourcePath string           `json:"source_path"`
	MinScore   float64          `json:"min_score"`
	TotalRows  int              `json:"total_rows"`
	FailedRows []CheckFailedRow `json:"failed_rows"`
	MaxScore   float64          `json:"max_score"`
	LowScore   float64          `json:"low_score"`
	AvgScore   float64          `json:"avg_score"`
}

// CheckFailedRow represents a row scoring below the minimum.
type CheckFailedRow struct {
	Index  int               `json:"index"` // Zero-based position in the input table
	Name   string            `json:"name"`  // Value of the first input column
	Score  float64           `json:"score"`
	Fields map[string]string `json:"fields"`
}
