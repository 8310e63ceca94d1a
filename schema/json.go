package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// JSONFloat is a float64 that survives JSON encoding when it is not finite.
// NaN and ±Inf are written as the strings "NaN", "+Inf" and "-Inf".
type JSONFloat float64

// MarshalJSON implements json.Marshaler.
func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return json.Marshal(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return json.Marshal(v)
}

// UnmarshalJSON accepts a JSON number or one of the non-finite strings.
func (f *JSONFloat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", s, err)
		}
		*f = JSONFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = JSONFloat(v)
	return nil
}

func jsonFloats[K comparable](m map[K]float64) map[K]JSONFloat {
	if m == nil {
		return nil
	}
	out := make(map[K]JSONFloat, len(m))
	for k, v := range m {
		out[k] = JSONFloat(v)
	}
	return out
}

// MarshalJSON encodes non-finite band bounds and scores as strings.
func (b Band) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Min   JSONFloat `json:"min"`
		Max   JSONFloat `json:"max"`
		Score JSONFloat `json:"score"`
	}{JSONFloat(b.Min), JSONFloat(b.Max), JSONFloat(b.Score)})
}

// UnmarshalJSON reads bands written by MarshalJSON.
func (b *Band) UnmarshalJSON(data []byte) error {
	var raw struct {
		Min   JSONFloat `json:"min"`
		Max   JSONFloat `json:"max"`
		Score JSONFloat `json:"score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Band{Min: float64(raw.Min), Max: float64(raw.Max), Score: float64(raw.Score)}
	return nil
}

type scoredRowAlias ScoredRow

// scoredRowJSON shadows the float fields of a ScoredRow with JSONFloat ones.
type scoredRowJSON struct {
	scoredRowAlias
	Score     JSONFloat            `json:"score"`
	Breakdown map[Factor]JSONFloat `json:"breakdown,omitempty"`
}

func (r ScoredRow) jsonView() scoredRowJSON {
	return scoredRowJSON{
		scoredRowAlias: scoredRowAlias(r),
		Score:          JSONFloat(r.Score),
		Breakdown:      jsonFloats(r.Breakdown),
	}
}

// MarshalJSON encodes a non-finite score or contribution as a string.
func (r ScoredRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.jsonView())
}

// MarshalJSON keeps rank and label next to the row fields. It is needed
// because the embedded ScoredRow would otherwise promote its own marshaler.
func (r EnrichedRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Rank  int    `json:"rank"`
		Label string `json:"label"`
		scoredRowJSON
	}{r.Rank, r.Label, r.ScoredRow.jsonView()})
}

type checkFailedRowAlias CheckFailedRow

// MarshalJSON encodes a NaN score as a string.
func (r CheckFailedRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		checkFailedRowAlias
		Score JSONFloat `json:"score"`
	}{checkFailedRowAlias(r), JSONFloat(r.Score)})
}

type checkResultAlias CheckResult

// MarshalJSON encodes the minimum and non-finite score statistics as strings.
func (r CheckResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		checkResultAlias
		MinScore JSONFloat `json:"min_score"`
		MaxScore JSONFloat `json:"max_score"`
		LowScore JSONFloat `json:"low_score"`
		AvgScore JSONFloat `json:"avg_score"`
	}{checkResultAlias(r), JSONFloat(r.MinScore), JSONFloat(r.MaxScore), JSONFloat(r.LowScore), JSONFloat(r.AvgScore)})
}

type factorDefinitionAlias FactorDefinition

// MarshalJSON encodes a non-finite weight as a string.
func (d FactorDefinition) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		factorDefinitionAlias
		Weight JSONFloat `json:"weight"`
	}{factorDefinitionAlias(d), JSONFloat(d.Weight)})
}

type factorsRenderModelAlias FactorsRenderModel

// MarshalJSON encodes a non-finite weight sum as a string.
func (m FactorsRenderModel) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		factorsRenderModelAlias
		WeightSum JSONFloat `json:"weight_sum"`
	}{factorsRenderModelAlias(m), JSONFloat(m.WeightSum)})
}

type validationReportAlias ValidationReport

// MarshalJSON adds the overall verdict and encodes non-finite weights
// and sums as strings.
func (r ValidationReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Valid bool `json:"valid"`
		validationReportAlias
		WeightSum JSONFloat            `json:"weight_sum"`
		Weights   map[Factor]JSONFloat `json:"weights"`
	}{r.Valid(), validationReportAlias(r), JSONFloat(r.WeightSum), jsonFloats(r.Weights)})
}
