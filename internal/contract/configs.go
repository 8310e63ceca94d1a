package contract

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/prodscore/schema"
	log "github.com/sirupsen/logrus"
)

// Default values for configuration.
const (
	DefaultResultLimit = 20
	MaxResultLimit     = 10000
	DefaultPrecision   = 1
	DefaultBandSlots   = 3 // Band rows offered per factor by the template config
)

// validate checks struct tags on raw input. Field names in errors use the
// mapstructure key so messages match the flag and config names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a scoring run.
// This struct is the "final, validated" config and is not modified after setup.
type Config struct {
	TablePath       string
	Weights         schema.WeightSet
	Bands           schema.RawSubValueMap // Every factor in declared order; incomplete bands removed
	WeightTolerance float64
	ResultLimit     int
	Precision       int
	Output          schema.OutputMode
	OutputFile      string
	Sort            bool
	Explain         bool
	Width           int // Terminal width override (0 = auto-detect)
	MinScore        float64

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	LogLevel  log.Level
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Table path from config file or positional arg ---
	TablePathStr string `mapstructure:"table"`

	// --- Fields from rootCmd.PersistentFlags() ---
	Limit            int     `mapstructure:"limit" validate:"min=1,max=10000"`
	Precision        int     `mapstructure:"precision" validate:"min=0,max=6"`
	Output           string  `mapstructure:"output"`
	OutputFile       string  `mapstructure:"output-file"`
	Width            int     `mapstructure:"width" validate:"min=0"`
	WeightTolerance  float64 `mapstructure:"weight-tolerance" validate:"min=0,max=1"`
	Color            string  `mapstructure:"color"`
	LogLevel         string  `mapstructure:"log-level"`
	CacheBackend     string  `mapstructure:"cache-backend"`
	CacheDBConnect   string  `mapstructure:"cache-db-connect"`
	HistoryBackend   string  `mapstructure:"history-backend"`
	HistoryDBConnect string  `mapstructure:"history-db-connect"`

	// --- Overrides from the --weights and --band flags ---
	WeightsStr string   `mapstructure:"weights-override"`
	BandStrs   []string `mapstructure:"band-override"`

	// --- Fields from scoreCmd.Flags() ---
	Sort    bool `mapstructure:"sort"`
	Explain bool `mapstructure:"explain"`

	// --- Fields from checkCmd.Flags() ---
	MinScore float64 `mapstructure:"min-score"`

	// --- Weights and bands from config file ---
	Weights map[string]float64          `mapstructure:"weights"`
	Bands   map[string][]schema.RawBand `mapstructure:"bands"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Weights != nil {
		clone.Weights = c.Weights.Clone()
	}
	if c.Bands != nil {
		clone.Bands = make(schema.RawSubValueMap, len(c.Bands))
		for i, fb := range c.Bands {
			clone.Bands[i] = schema.RawFactorBands{Factor: fb.Factor, Bands: append([]schema.RawBand(nil), fb.Bands...)}
		}
	}
	return &clone
}

// RunParams returns the scoring parameters recorded with a history run.
func (c *Config) RunParams() map[string]any {
	weights := make(map[string]float64, len(c.Weights))
	for f, w := range c.Weights {
		weights[string(f)] = w
	}
	bands := make(map[string][]schema.RawBand, len(c.Bands))
	for _, fb := range c.Bands {
		bands[string(fb.Factor)] = fb.Bands
	}
	return map[string]any{
		"weights":          weights,
		"bands":            bands,
		"weight_tolerance": c.WeightTolerance,
		"min_score":        c.MinScore,
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processWeights(cfg, input); err != nil {
		return err
	}
	if err := processBands(cfg, input); err != nil {
		return err
	}
	cfg.TablePath = strings.TrimSpace(input.TablePathStr)
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseHistoryBackend maps the history-backend setting to a backend, where empty means disabled.
func ParseHistoryBackend(s string) schema.DatabaseBackend {
	if strings.TrimSpace(s) == "" {
		return schema.NoneBackend
	}
	return schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(s)))
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = ParseHistoryBackend(input.HistoryBackend)
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// Cache and history must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	if err := validate.Struct(input); err != nil {
		return formatValidationError(err)
	}

	// --- Transfer simple fields from input -> cfg ---
	cfg.ResultLimit = input.Limit
	cfg.Precision = input.Precision
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.WeightTolerance = input.WeightTolerance
	cfg.Sort = input.Sort
	cfg.Explain = input.Explain
	cfg.MinScore = input.MinScore

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	level, err := ParseLogLevel(input.LogLevel)
	if err != nil {
		return err
	}
	cfg.LogLevel = level

	if math.IsNaN(input.MinScore) {
		return fmt.Errorf("min-score must be a number")
	}

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	return validateBackendConfigs(cfg, input)
}

// processWeights merges the config file weights with the --weights override
// and checks that every weight lies in [0,1]. The sum is not checked here.
func processWeights(cfg *Config, input *ConfigRawInput) error {
	weights, err := CollectWeights(input.Weights, input.WeightsStr)
	if err != nil {
		return err
	}
	cfg.Weights = weights
	return nil
}

// processBands merges the config file bands with the --band overrides.
func processBands(cfg *Config, input *ConfigRawInput) error {
	bands, err := CollectBands(input.Bands, input.BandStrs)
	if err != nil {
		return err
	}
	cfg.Bands = bands
	return nil
}

// weightRanges is validated to keep every weight within [0,1].
type weightRanges struct {
	Weights map[string]float64 `mapstructure:"weights" validate:"dive,min=0,max=1"`
}

// CollectWeights builds a WeightSet from config file entries keyed by factor name,
// then applies the "factor:value,..." override string on top, factor by factor.
// Factors that appear in neither source are left unset and read as 0.
func CollectWeights(fileWeights map[string]float64, override string) (schema.WeightSet, error) {
	ws := make(schema.WeightSet, len(schema.AllFactors))
	for key, value := range fileWeights {
		f, ok := schema.ParseFactor(key)
		if !ok {
			return nil, fmt.Errorf("unknown factor '%s' in weights. must be one of %s", key, factorList())
		}
		ws[f] = value
	}

	if override != "" {
		parsed, err := ParseWeightsString(override)
		if err != nil {
			return nil, fmt.Errorf("invalid --weights format: %w", err)
		}
		maps.Copy(ws, parsed)
	}

	ranges := weightRanges{Weights: make(map[string]float64, len(ws))}
	for f, w := range ws {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("weight for %s must be a finite number", f)
		}
		ranges.Weights[string(f)] = w
	}
	if err := validate.Struct(ranges); err != nil {
		return nil, formatValidationError(err)
	}

	return ws, nil
}

// ParseWeightsString parses a string like "cost:0.3,margin:0.2" into a WeightSet.
func ParseWeightsString(s string) (schema.WeightSet, error) {
	weights := make(schema.WeightSet)

	parts := strings.SplitSeq(s, ",")
	for part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		keyValue := strings.Split(part, ":")
		if len(keyValue) != 2 {
			return nil, fmt.Errorf("invalid weight format '%s', expected 'factor:value'", part)
		}

		factorStr := strings.TrimSpace(keyValue[0])
		valueStr := strings.TrimSpace(keyValue[1])

		f, ok := schema.ParseFactor(factorStr)
		if !ok {
			return nil, fmt.Errorf("invalid factor '%s', must be one of %s", factorStr, factorList())
		}

		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight value '%s' for factor %s: %w", valueStr, f, err)
		}

		weights[f] = value
	}

	return weights, nil
}

// CollectBands builds the raw band map from config file entries keyed by factor
// name and the "factor:min:max:score" override strings. Overrides replace the
// config file bands of their factor and keep their given order. The result
// holds every factor in declared order, and bands with a blank field are dropped.
func CollectBands(fileBands map[string][]schema.RawBand, overrides []string) (schema.RawSubValueMap, error) {
	byFactor := make(map[schema.Factor][]schema.RawBand, len(schema.AllFactors))
	for key, bands := range fileBands {
		f, ok := schema.ParseFactor(key)
		if !ok {
			return nil, fmt.Errorf("unknown factor '%s' in bands. must be one of %s", key, factorList())
		}
		byFactor[f] = bands
	}

	flagBands := make(map[schema.Factor][]schema.RawBand)
	for _, s := range overrides {
		if strings.TrimSpace(s) == "" {
			continue
		}
		f, band, err := ParseBandString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid --band format: %w", err)
		}
		flagBands[f] = append(flagBands[f], band)
	}
	maps.Copy(byFactor, flagBands)

	raw := make(schema.RawSubValueMap, 0, len(schema.AllFactors))
	for _, f := range schema.AllFactors {
		raw = append(raw, schema.RawFactorBands{Factor: f, Bands: FilterCompleteBands(byFactor[f])})
	}
	return raw, nil
}

// ParseBandString parses a string like "cost:0:100:50" into a factor and a raw band.
// Field values are kept as text for the band validator.
func ParseBandString(s string) (schema.Factor, schema.RawBand, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 4 {
		return "", schema.RawBand{}, fmt.Errorf("invalid band '%s', expected 'factor:min:max:score'", s)
	}

	factorStr := strings.TrimSpace(parts[0])
	f, ok := schema.ParseFactor(factorStr)
	if !ok {
		return "", schema.RawBand{}, fmt.Errorf("invalid factor '%s', must be one of %s", factorStr, factorList())
	}

	return f, schema.RawBand{Min: parts[1], Max: parts[2], Score: parts[3]}, nil
}

// FilterCompleteBands trims every field and drops bands with any blank field.
// The result is never nil.
func FilterCompleteBands(bands []schema.RawBand) []schema.RawBand {
	out := make([]schema.RawBand, 0, len(bands))
	for _, b := range bands {
		b.Min = strings.TrimSpace(b.Min)
		b.Max = strings.TrimSpace(b.Max)
		b.Score = strings.TrimSpace(b.Score)
		if b.Complete() {
			out = append(out, b)
		}
	}
	return out
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// formatValidationError turns the first validator failure into a flag-style message.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "min":
		return fmt.Errorf("%s must be at least %s (received %v)", fe.Field(), fe.Param(), fe.Value())
	case "max":
		return fmt.Errorf("%s cannot exceed %s (received %v)", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Errorf("%s failed '%s' validation (received %v)", fe.Field(), fe.Tag(), fe.Value())
	}
}

func factorList() string {
	names := make([]string, len(schema.AllFactors))
	for i, f := range schema.AllFactors {
		names[i] = f.Key()
	}
	return strings.Join(names, ", ")
}
