package algo

import (
	"math"
	"sort"

	"github.com/huangsam/prodscore/schema"
)

// RankRows returns a copy of the rows sorted by score in descending order,
// keeping input order among equal scores. NaN scores sort after every other
// score and keep their input order. The first 'limit' rows are
// returned; a limit of 0 or less returns all of them. The input is not modified.
func RankRows(rows []schema.ScoredRow, limit int) []schema.ScoredRow {
	ranked := make([]schema.ScoredRow, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scoreBefore(ranked[i].Score, ranked[j].Score)
	})
	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}

func scoreBefore(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	return math.IsNaN(b) || a > b
}

// FactorContribution is one entry of a score breakdown.
type FactorContribution struct {
	Factor schema.Factor
	Value  float64
}

// TopContributions returns up to n breakdown entries with the largest
// positive contributions. Ties are broken by declared factor order.
func TopContributions(breakdown map[schema.Factor]float64, n int) []FactorContribution {
	var contributions []FactorContribution
	for _, f := range schema.AllFactors {
		if v, ok := breakdown[f]; ok && v > 0 {
			contributions = append(contributions, FactorContribution{Factor: f, Value: v})
		}
	}
	sort.SliceStable(contributions, func(i, j int) bool {
		return contributions[i].Value > contributions[j].Value
	})
	if len(contributions) > n {
		return contributions[:n]
	}
	return contributions
}
