package core

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/prodscore/internal/contract"
	"github.com/huangsam/prodscore/internal/iocache"
	"github.com/huangsam/prodscore/internal/table"
	"github.com/huangsam/prodscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Name,Cost,Margin,CAC,Return Rate,Stock Status
Widget,50,20,1,0.1,1
Gadget,150,60,2,0.2,0
`

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func rawBands(entries map[schema.Factor][]schema.RawBand) schema.RawSubValueMap {
	raw := make(schema.RawSubValueMap, 0, len(schema.AllFactors))
	for _, f := range schema.AllFactors {
		bands := entries[f]
		if bands == nil {
			bands = []schema.RawBand{}
		}
		raw = append(raw, schema.RawFactorBands{Factor: f, Bands: bands})
	}
	return raw
}

// testConfig scores Cost and Margin at half weight each and writes JSON to a temp file.
func testConfig(t *testing.T, tablePath string) *contract.Config {
	t.Helper()
	return &contract.Config{
		TablePath: tablePath,
		Weights: schema.WeightSet{
			schema.CostFactor:   0.5,
			schema.MarginFactor: 0.5,
		},
		Bands: rawBands(map[schema.Factor][]schema.RawBand{
			schema.CostFactor:   {{Min: "0", Max: "100", Score: "50"}},
			schema.MarginFactor: {{Min: "0", Max: "50", Score: "80"}},
		}),
		WeightTolerance: 1e-6,
		ResultLimit:     contract.DefaultResultLimit,
		Precision:       contract.DefaultPrecision,
		Output:          schema.JSONOut,
		OutputFile:      filepath.Join(t.TempDir(), "out.json"),
		CacheBackend:    schema.NoneBackend,
		HistoryBackend:  schema.NoneBackend,
	}
}

func disabledManager() *iocache.MockCacheManager {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetScoreStore").Return(nil)
	mgr.On("GetHistoryStore").Return(nil)
	return mgr
}

type jsonScoredRow struct {
	Rank      int                `json:"rank"`
	Label     string             `json:"label"`
	Index     int                `json:"index"`
	Score     float64            `json:"score"`
	Fields    map[string]string  `json:"fields"`
	Breakdown map[string]float64 `json:"breakdown"`
}

func readScoredJSON(t *testing.T, path string) []jsonScoredRow {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rows []jsonScoredRow
	require.NoError(t, json.Unmarshal(data, &rows))
	return rows
}

func TestExecuteScore(t *testing.T) {
	cfg := testConfig(t, writeTable(t, sampleCSV))

	require.NoError(t, ExecuteScore(context.Background(), cfg, disabledManager()))

	rows := readScoredJSON(t, cfg.OutputFile)
	require.Len(t, rows, 2)
	assert.Equal(t, "Widget", rows[0].Fields["Name"])
	assert.InDelta(t, 65.0, rows[0].Score, 1e-9)
	assert.Equal(t, schema.StrongLabel, rows[0].Label)
	assert.Equal(t, 0.0, rows[1].Score)
	assert.Equal(t, schema.WeakLabel, rows[1].Label)
}

func TestExecuteScoreNilManager(t *testing.T) {
	cfg := testConfig(t, writeTable(t, sampleCSV))
	require.NoError(t, ExecuteScore(context.Background(), cfg, nil))
	assert.Len(t, readScoredJSON(t, cfg.OutputFile), 2)
}

func TestExecuteScoreSortAndExplain(t *testing.T) {
	cfg := testConfig(t, writeTable(t, "Name,Cost,Margin,CAC,Return Rate,Stock Status\nLow,150,60,0,0,0\nHigh,50,20,0,0,0\n"))
	cfg.Sort = true
	cfg.Explain = true

	require.NoError(t, ExecuteScore(context.Background(), cfg, disabledManager()))

	rows := readScoredJSON(t, cfg.OutputFile)
	require.Len(t, rows, 2)
	assert.Equal(t, "High", rows[0].Fields["Name"])
	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, 1, rows[0].Rank)
	assert.InDelta(t, 25.0, rows[0].Breakdown["Cost"], 1e-9)
	assert.InDelta(t, 40.0, rows[0].Breakdown["Margin"], 1e-9)
}

func TestExecuteScoreCSVKeepsInputOrder(t *testing.T) {
	cfg := testConfig(t, writeTable(t, "Name,Cost,Margin,CAC,Return Rate,Stock Status\nLow,150,60,0,0,0\nHigh,50,20,0,0,0\n"))
	cfg.Output = schema.CSVOut
	cfg.Sort = true
	cfg.OutputFile = filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, ExecuteScore(context.Background(), cfg, disabledManager()))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, "Name,Cost,Margin,CAC,Return Rate,Stock Status,Score\nLow,150,60,0,0,0,0\nHigh,50,20,0,0,0,65\n", string(data))
}

func TestExecuteScoreErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("weights do not sum to one", func(t *testing.T) {
		cfg := testConfig(t, writeTable(t, sampleCSV))
		cfg.Weights[schema.CostFactor] = 0.4
		err := ExecuteScore(ctx, cfg, nil)
		var sumErr *schema.WeightSumError
		require.ErrorAs(t, err, &sumErr)
		assert.InDelta(t, 0.9, sumErr.Sum, 1e-9)
	})

	t.Run("exact tolerance rejects float drift", func(t *testing.T) {
		cfg := testConfig(t, writeTable(t, sampleCSV))
		cfg.Weights = schema.WeightSet{
			schema.CostFactor:   0.1,
			schema.MarginFactor: 0.2,
			schema.CACFactor:    0.7000000001,
		}
		cfg.WeightTolerance = 0
		err := ExecuteScore(ctx, cfg, nil)
		var sumErr *schema.WeightSumError
		assert.ErrorAs(t, err, &sumErr)
	})

	t.Run("non numeric band", func(t *testing.T) {
		cfg := testConfig(t, writeTable(t, sampleCSV))
		cfg.Bands = rawBands(map[schema.Factor][]schema.RawBand{
			schema.MarginFactor: {{Min: "low", Max: "50", Score: "80"}},
		})
		err := ExecuteScore(ctx, cfg, nil)
		var bandErr *schema.NonNumericBandError
		require.ErrorAs(t, err, &bandErr)
		assert.Equal(t, "Invalid value in factor Margin. Min, Max, and Score must all be numeric.", err.Error())
	})

	t.Run("missing table path", func(t *testing.T) {
		cfg := testConfig(t, "")
		assert.ErrorIs(t, ExecuteScore(ctx, cfg, nil), ErrNoTable)
	})

	t.Run("missing factor column", func(t *testing.T) {
		cfg := testConfig(t, writeTable(t, "Name,Cost,Margin\nWidget,1,2\n"))
		err := ExecuteScore(ctx, cfg, nil)
		var missing *schema.MissingFactorError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, schema.CACFactor, missing.Factor)
		assert.Equal(t, 0, missing.Row)
	})

	t.Run("canceled context", func(t *testing.T) {
		cfg := testConfig(t, writeTable(t, sampleCSV))
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, ExecuteScore(canceled, cfg, nil), context.Canceled)
	})
}

func TestExecuteScoreRecordsHistory(t *testing.T) {
	cfg := testConfig(t, writeTable(t, sampleCSV))

	history := &iocache.MockHistoryStore{}
	history.On("BeginRun", mock.Anything, cfg.TablePath, mock.Anything).Return(int64(5), nil)
	history.On("RecordRowScores", int64(5), mock.Anything, mock.MatchedBy(func(rows []schema.RowScore) bool {
		return len(rows) == 2 && rows[0].Label == schema.StrongLabel && rows[1].RowIndex == 1
	})).Return(nil)
	history.On("EndRun", int64(5), mock.Anything, 2).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetScoreStore").Return(nil)
	mgr.On("GetHistoryStore").Return(history)

	require.NoError(t, ExecuteScore(context.Background(), cfg, mgr))
	history.AssertExpectations(t)
}

func TestRecordRunBeginFailure(t *testing.T) {
	history := &iocache.MockHistoryStore{}
	history.On("BeginRun", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetHistoryStore").Return(history)

	st := &schema.ScoredTable{Rows: []schema.ScoredRow{{Score: 10}}}
	assert.NotPanics(t, func() {
		recordRun(mgr, &contract.Config{}, st, time.Now())
	})
	history.AssertNotCalled(t, "RecordRowScores", mock.Anything, mock.Anything, mock.Anything)
	history.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordRunRowScoresFailure(t *testing.T) {
	history := &iocache.MockHistoryStore{}
	history.On("BeginRun", mock.Anything, mock.Anything, mock.Anything).Return(int64(3), nil)
	history.On("RecordRowScores", int64(3), mock.Anything, mock.Anything).Return(errors.New("constraint failed"))

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetHistoryStore").Return(history)

	st := &schema.ScoredTable{Rows: []schema.ScoredRow{{Score: 10}, {Index: 1, Score: 20}}}
	recordRun(mgr, &contract.Config{}, st, time.Now())

	history.AssertExpectations(t)
	history.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := testConfig(t, "")
		require.NoError(t, ExecuteValidate(context.Background(), cfg))

		data, err := os.ReadFile(cfg.OutputFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"valid": true`)
	})

	t.Run("invalid weights still print the report", func(t *testing.T) {
		cfg := testConfig(t, "")
		cfg.Weights = schema.WeightSet{schema.CostFactor: 0.3}
		err := ExecuteValidate(context.Background(), cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig)

		data, readErr := os.ReadFile(cfg.OutputFile)
		require.NoError(t, readErr)
		assert.Contains(t, string(data), `"weights_valid": false`)
	})
}

func TestBuildValidationReport(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Bands = rawBands(map[schema.Factor][]schema.RawBand{
		schema.CostFactor:        {{Min: "0", Max: "1", Score: "1"}, {Min: "1", Max: "2", Score: "2"}},
		schema.ReturnRateFactor:  {{Min: "x", Max: "1", Score: "1"}},
		schema.StockStatusFactor: {{Min: "y", Max: "1", Score: "1"}},
	})

	report := buildValidationReport(cfg)
	assert.True(t, report.WeightsValid)
	assert.InDelta(t, 1.0, report.WeightSum, 1e-12)
	assert.Equal(t, 0.0, report.Weights[schema.CACFactor])
	assert.False(t, report.BandsValid)
	assert.Equal(t, "Invalid value in factor Return Rate. Min, Max, and Score must all be numeric.", report.BandsMessage)
	assert.Equal(t, 2, report.BandCounts[schema.CostFactor])
	assert.Equal(t, 0, report.BandCounts[schema.MarginFactor])
	assert.False(t, report.Valid())
}

func TestExecuteFactors(t *testing.T) {
	cfg := testConfig(t, "")
	require.NoError(t, ExecuteFactors(context.Background(), cfg))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var model schema.FactorsRenderModel
	require.NoError(t, json.Unmarshal(data, &model))
	require.Len(t, model.Factors, len(schema.AllFactors))
	assert.Equal(t, schema.CostFactor, model.Factors[0].Factor)
	assert.Equal(t, []schema.Band{{Min: 0, Max: 100, Score: 50}}, model.Factors[0].Bands)

	cfg.Bands = rawBands(map[schema.Factor][]schema.RawBand{
		schema.CACFactor: {{Min: "1", Max: "2", Score: "many"}},
	})
	var bandErr *schema.NonNumericBandError
	assert.ErrorAs(t, ExecuteFactors(context.Background(), cfg), &bandErr)
}

func TestGetScoreResultsWithTable(t *testing.T) {
	tbl, err := table.ReadString(sampleCSV)
	require.NoError(t, err)
	cfg := testConfig(t, "")

	st, _, err := GetScoreResults(context.Background(), cfg, nil, tbl)
	require.NoError(t, err)
	assert.Equal(t, []float64{65, 0}, st.Scores())

	_, statErr := os.Stat(cfg.OutputFile)
	assert.True(t, os.IsNotExist(statErr), "nothing is printed")
}

func TestGetFactorDefinitions(t *testing.T) {
	defs, err := GetFactorDefinitions(testConfig(t, ""))
	require.NoError(t, err)
	require.Len(t, defs, 5)
	assert.Equal(t, "return_rate", defs[3].Key)
	assert.Equal(t, 0.5, defs[1].Weight)
	assert.Equal(t, []schema.Band{{Min: 0, Max: 50, Score: 80}}, defs[1].Bands)
	assert.Empty(t, defs[4].Bands)
}
