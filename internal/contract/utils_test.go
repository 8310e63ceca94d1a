package contract

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestGetColorLabel(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	assert.Equal(t, "Top", GetColorLabel(95))
	assert.Equal(t, "Strong", GetColorLabel(60))
	assert.Equal(t, "Fair", GetColorLabel(45))
	assert.Equal(t, "Weak", GetColorLabel(0))
	assert.Equal(t, "Fair", GetPlainLabel(40))
}

func TestSelectOutputFile(t *testing.T) {
	f, err := SelectOutputFile("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, f)

	path := filepath.Join(t.TempDir(), "out.csv")
	f, err = SelectOutputFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.FileExists(t, path)
}

func TestDBFilePaths(t *testing.T) {
	assert.True(t, strings.HasSuffix(GetCacheDBFilePath(), ".prodscore_cache.db"))
	assert.True(t, strings.HasSuffix(GetHistoryDBFilePath(), ".prodscore_history.db"))
	assert.NotEqual(t, GetCacheDBFilePath(), GetHistoryDBFilePath())
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "abcdefg...", TruncateText("abcdefghijklmnop", 10))
	assert.Equal(t, "abcdef", TruncateText("abcdef", 3))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1", " true "} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("")
	require.NoError(t, err)
	assert.Equal(t, log.WarnLevel, level)

	level, err = ParseLogLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, level)

	_, err = ParseLogLevel("chatty")
	assert.Error(t, err)
}

func TestLogWarn(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stderr)

	LogWarn("cache unavailable", errors.New("boom"))
	assert.Contains(t, buf.String(), "cache unavailable")
	assert.Contains(t, buf.String(), "boom")

	buf.Reset()
	SetLogLevel(log.ErrorLevel)
	defer SetLogLevel(log.WarnLevel)
	LogWarn("hidden", errors.New("quiet"))
	assert.Empty(t, buf.String())
}

func TestLogFatal(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stderr)

	code := -1
	Logger.ExitFunc = func(c int) { code = c }
	defer func() { Logger.ExitFunc = os.Exit }()

	LogFatal("cannot score", errors.New("bad input"))
	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "cannot score")
}

func TestRenderTemplateConfig(t *testing.T) {
	data, err := RenderTemplateConfig()
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "# prodscore configuration")
	assert.Contains(t, text, "return_rate: 0.2")

	var parsed struct {
		Table           string                         `yaml:"table"`
		Weights         map[string]float64             `yaml:"weights"`
		Bands           map[string][]map[string]string `yaml:"bands"`
		WeightTolerance float64                        `yaml:"weight-tolerance"`
		Limit           int                            `yaml:"limit"`
	}
	require.NoError(t, yaml.Unmarshal(data, &parsed))

	assert.Equal(t, "products.csv", parsed.Table)
	assert.Len(t, parsed.Weights, 5)
	assert.Equal(t, 1e-6, parsed.WeightTolerance)
	assert.Equal(t, DefaultResultLimit, parsed.Limit)

	require.Len(t, parsed.Bands["cost"], DefaultBandSlots)
	assert.Equal(t, map[string]string{"min": "0", "max": "100", "score": "50"}, parsed.Bands["cost"][0])
	assert.Equal(t, "", parsed.Bands["cost"][1]["min"])

	// The template weights validate as a set
	ws, err := CollectWeights(parsed.Weights, "")
	require.NoError(t, err)
	assert.Len(t, ws, 5)
}
