//go:build basic

package integration

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreCSVOutput(t *testing.T) {
	ws := newWorkspace(t)

	stdout, _, err := ws.run(t, "score", ws.table, "--output", "csv")
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(stdout)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Name", "Cost", "Margin", "CAC", "Return Rate", "Stock Status", "Score"}, records[0])
	assert.Equal(t, []string{"Widget", "65"}, []string{records[1][0], records[1][6]})
	assert.Equal(t, []string{"Gadget", "0"}, []string{records[2][0], records[2][6]})
	assert.Equal(t, []string{"Gizmo", "65"}, []string{records[3][0], records[3][6]})
}

func TestScoreSortedJSON(t *testing.T) {
	ws := newWorkspace(t)

	stdout, _, err := ws.run(t, "score", ws.table, "--output", "json", "--sort")
	require.NoError(t, err)

	var rows []struct {
		Rank  int     `json:"rank"`
		Score float64 `json:"score"`
		Label string  `json:"label"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].Rank)
	assert.InDelta(t, 65.0, rows[0].Score, 1e-9)
	assert.InDelta(t, 0.0, rows[2].Score, 1e-9)
	assert.Equal(t, "Strong", rows[0].Label)
}

func TestScoreOutputFile(t *testing.T) {
	ws := newWorkspace(t)
	out := filepath.Join(ws.dir, "scored.csv")

	_, _, err := ws.run(t, "score", ws.table, "--output", "csv", "--output-file", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Widget,50,20,1,0.1,1,65")
}

func TestScoreWeightOverride(t *testing.T) {
	ws := newWorkspace(t)

	// All weight on Cost: Widget and Gizmo score 50
	stdout, _, err := ws.run(t, "score", ws.table, "--output", "csv", "--weights", "cost:1,margin:0")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Widget,50,20,1,0.1,1,50")
}

func TestScoreRejectsBadWeights(t *testing.T) {
	ws := newWorkspace(t)

	_, stderr, err := ws.run(t, "score", ws.table, "--weights", "cost:0.9")
	require.Error(t, err)
	assert.Contains(t, stderr, "must equal 1")
}

func TestScoreMissingTable(t *testing.T) {
	ws := newWorkspace(t)

	_, _, err := ws.run(t, "score", filepath.Join(ws.dir, "missing.csv"))
	require.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	ws := newWorkspace(t)

	stdout, _, err := ws.run(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✅ Weights")

	_, _, err = ws.run(t, "validate", "--band", "cost:abc:100:50")
	require.Error(t, err)
}

func TestFactorsCommand(t *testing.T) {
	ws := newWorkspace(t)

	stdout, _, err := ws.run(t, "factors", "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Return Rate")
	assert.Contains(t, stdout, "Stock Status")
}

func TestCheckCommand(t *testing.T) {
	ws := newWorkspace(t)

	stdout, _, err := ws.run(t, "check", ws.table, "--min-score", "40")
	require.Error(t, err)
	assert.Contains(t, stdout, "Gadget")

	stdout, _, err = ws.run(t, "check", ws.table, "--min-score", "0")
	require.NoError(t, err)
	assert.Contains(t, stdout, "All rows scored at least")
}

func TestInitCommand(t *testing.T) {
	ws := newWorkspace(t)
	target := filepath.Join(ws.dir, "new.yaml")

	_, _, err := ws.run(t, "init", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "weights:")

	_, stderr, err := ws.run(t, "init", target)
	require.Error(t, err)
	assert.Contains(t, stderr, "already exists")

	_, _, err = ws.run(t, "init", target, "--force")
	require.NoError(t, err)
}

func TestHistoryRoundTrip(t *testing.T) {
	ws := newWorkspace(t)
	historyDB := filepath.Join(ws.dir, "history.db")
	history := []string{"--history-backend", "sqlite", "--history-db-connect", historyDB}

	_, _, err := ws.run(t, append([]string{"score", ws.table, "--cache-backend", "none"}, history...)...)
	require.NoError(t, err)

	stdout, _, err := ws.run(t, append([]string{"history", "status"}, history...)...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Total Runs: 1")
	assert.Contains(t, stdout, "Total Rows Scored: 3")

	prefix := filepath.Join(ws.dir, "export")
	_, _, err = ws.run(t, append([]string{"history", "export", "--output-file", prefix}, history...)...)
	require.NoError(t, err)
	assert.FileExists(t, prefix+".runs.parquet")
	assert.FileExists(t, prefix+".row_scores.parquet")

	_, _, err = ws.run(t, append([]string{"history", "clear"}, history...)...)
	require.NoError(t, err)
	assert.NoFileExists(t, historyDB)
}

func TestCacheCommands(t *testing.T) {
	ws := newWorkspace(t)
	cacheDB := filepath.Join(ws.dir, "cache.db")
	cache := []string{"--cache-backend", "sqlite", "--cache-db-connect", cacheDB}

	_, _, err := ws.run(t, append([]string{"score", ws.table}, cache...)...)
	require.NoError(t, err)

	stdout, _, err := ws.run(t, append([]string{"cache", "status"}, cache...)...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Total Entries: 1")

	_, _, err = ws.run(t, append([]string{"cache", "clear"}, cache...)...)
	require.NoError(t, err)
	assert.NoFileExists(t, cacheDB)
}

func TestVersionCommand(t *testing.T) {
	ws := newWorkspace(t)

	_, stderr, err := ws.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stderr, "prodscore CLI")
}
