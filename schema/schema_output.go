package schema

// Score labels from highest to lowest.
const (
	TopLabel    = "Top"
	StrongLabel = "Strong"
	FairLabel   = "Fair"
	WeakLabel   = "Weak"
)

// EnrichedRow adds presentation data to a ScoredRow.
type EnrichedRow struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	ScoredRow
}

// GetPlainLabel returns a plain text label for a composite score
// on the usual 0-100 band score scale.
func GetPlainLabel(score float64) string {
	switch {
	case score >= 80:
		return TopLabel
	case score >= 60:
		return StrongLabel
	case score >= 40:
		return FairLabel
	default:
		return WeakLabel
	}
}

// EnrichRows adds rank and label to a list of scored rows.
// Rank follows the given order, so callers sort first when ranking matters.
func EnrichRows(rows []ScoredRow) []EnrichedRow {
	output := make([]EnrichedRow, len(rows))
	for i, r := range rows {
		output[i] = EnrichedRow{
			Rank:      i + 1,
			Label:     GetPlainLabel(r.Score),
			ScoredRow: r,
		}
	}
	return output
}

// ValidationReport is the outcome of validating weights and bands.
type ValidationReport struct {
	WeightsValid bool               `json:"weights_valid"`
	WeightSum    float64            `json:"weight_sum"`
	Tolerance    float64            `json:"tolerance"`
	Weights      map[Factor]float64 `json:"weights"`
	BandsValid   bool               `json:"bands_valid"`
	BandsMessage string             `json:"bands_message,omitempty"`
	BandCounts   map[Factor]int     `json:"band_counts"`
}

// Valid reports whether both weights and bands passed.
func (r ValidationReport) Valid() bool {
	return r.WeightsValid && r.BandsValid
}

// FactorDefinition describes one factor for the factors command.
type FactorDefinition struct {
	Factor Factor  `json:"factor"`
	Key    string  `json:"key"`
	Weight float64 `json:"weight"`
	Bands  []Band  `json:"bands"`
}

// FactorsRenderModel is the data shown by the factors command.
type FactorsRenderModel struct {
	Formula   string             `json:"formula"`
	Factors   []FactorDefinition `json:"factors"`
	WeightSum float64            `json:"weight_sum"`
}
