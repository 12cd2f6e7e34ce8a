package contract

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/safepath/safepath/core/safety"
	"github.com/safepath/safepath/schema"
)

// Default values for configuration.
const (
	DefaultMinID            = 0
	DefaultMaxID            = 100
	DefaultResultLimit      = 25
	MaxResultLimit          = 1000
	DefaultPrecision        = 2
	DefaultProviderLatency  = 1500 * time.Millisecond
	DefaultProviderTimeout  = 10 * time.Second
	DefaultMQTTPrefix       = "safepath"
	DefaultMQTTClientID     = "safepath"
	DefaultServeAddr        = ":8080"
	DefaultMapWidth         = 800
	DefaultMapHeight        = 600
	DefaultCacheTTL         = 24 * time.Hour
	DefaultHistoryListLimit = 20
)

// Config holds the runtime configuration of a run.
// This struct is the "final, validated" config.
type Config struct {
	InputPath     string
	MinID         int64
	MaxID         int64 // 0 = no upper bound
	IgnoreColumns []string

	Features     []schema.FeatureName
	Weights      map[schema.FeatureName]float64
	Alpha        float64
	Beta         float64
	AverageSpeed float64 // km/h, used for travel time only

	ResultLimit int
	Detail      bool
	Explain     bool
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	Provider        schema.ProviderKind
	ProviderURL     string
	ProviderKey     string // Please use env var as this is plaintext
	ProviderLatency time.Duration
	ProviderTimeout time.Duration
	ProviderSeed    int64 // 0 = random

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	MQTTBroker   string
	MQTTPrefix   string
	MQTTClientID string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Input            string   `mapstructure:"input"`
	MinID            int64    `mapstructure:"min-id"`
	MaxID            int64    `mapstructure:"max-id"`
	IgnoreColumns    string   `mapstructure:"ignore-columns"`
	Features         []string `mapstructure:"features"`
	Alpha            float64  `mapstructure:"alpha"`
	Beta             float64  `mapstructure:"beta"`
	AverageSpeed     float64  `mapstructure:"average-speed"`
	OutputFile       string   `mapstructure:"output-file"`
	Limit            int      `mapstructure:"limit"`
	Precision        int      `mapstructure:"precision"`
	Output           string   `mapstructure:"output"`
	Detail           bool     `mapstructure:"detail"`
	Width            int      `mapstructure:"width"`
	Color            string   `mapstructure:"color"`
	Provider         string   `mapstructure:"provider"`
	ProviderURL      string   `mapstructure:"provider-url"`
	ProviderKey      string   `mapstructure:"provider-key"`
	ProviderLatency  string   `mapstructure:"provider-latency"`
	ProviderTimeout  string   `mapstructure:"provider-timeout"`
	ProviderSeed     int64    `mapstructure:"provider-seed"`
	CacheBackend     string   `mapstructure:"cache-backend"`
	CacheDBConnect   string   `mapstructure:"cache-db-connect"`
	HistoryBackend   string   `mapstructure:"history-backend"`
	HistoryDBConnect string   `mapstructure:"history-db-connect"`
	MQTTBroker       string   `mapstructure:"mqtt-broker"`
	MQTTPrefix       string   `mapstructure:"mqtt-prefix"`
	MQTTClientID     string   `mapstructure:"mqtt-client-id"`

	// --- Fields from scoresCmd.Flags() ---
	Explain bool `mapstructure:"explain"`

	// --- Custom weights from config file ---
	Weights map[string]float64 `mapstructure:"weights"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.IgnoreColumns != nil {
		clone.IgnoreColumns = slices.Clone(c.IgnoreColumns)
	}
	if c.Features != nil {
		clone.Features = slices.Clone(c.Features)
	}
	if c.Weights != nil {
		clone.Weights = maps.Clone(c.Weights)
	}
	return &clone
}

// ConfigParams returns the subset of the config that shapes results, for run history.
func (c *Config) ConfigParams() map[string]any {
	features := make([]string, len(c.Features))
	for i, f := range c.Features {
		features[i] = string(f)
	}
	weights := make(map[string]float64, len(c.Weights))
	for f, w := range c.Weights {
		weights[string(f)] = w
	}
	return map[string]any{
		"input":    c.InputPath,
		"min_id":   c.MinID,
		"max_id":   c.MaxID,
		"features": features,
		"weights":  weights,
		"alpha":    c.Alpha,
		"beta":     c.Beta,
		"provider": string(c.Provider),
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processModel(cfg, input); err != nil {
		return err
	}
	if err := processProvider(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	processMQTT(cfg, input)
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

// validateSimpleInputs processes and validates the presentation fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.InputPath = strings.TrimSpace(input.Input)
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Explain = input.Explain
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	if input.MinID < 0 {
		return schema.NewConfigurationError("min-id", "must be >= 0 (got %d)", input.MinID)
	}
	if input.MaxID < 0 {
		return schema.NewConfigurationError("max-id", "must be >= 0 (got %d)", input.MaxID)
	}
	if input.MaxID != 0 && input.MaxID < input.MinID {
		return schema.NewConfigurationError("max-id", "must not be below min-id (%d < %d)", input.MaxID, input.MinID)
	}
	cfg.MinID = input.MinID
	cfg.MaxID = input.MaxID

	cfg.IgnoreColumns = nil
	for p := range strings.SplitSeq(input.IgnoreColumns, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			cfg.IgnoreColumns = append(cfg.IgnoreColumns, trimmed)
		}
	}
	return nil
}

// processModel resolves features, weights and the routing trade-off.
func processModel(cfg *Config, input *ConfigRawInput) error {
	cfg.Features = nil
	if len(input.Features) == 0 {
		cfg.Features = slices.Clone(schema.AllFeatures)
	}
	for _, raw := range input.Features {
		for p := range strings.SplitSeq(raw, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cfg.Features = append(cfg.Features, schema.FeatureName(strings.ToLower(trimmed)))
			}
		}
	}
	if err := safety.ValidateFeatures(cfg.Features); err != nil {
		return err
	}

	weights, err := ProcessWeightsRawInput(input.Weights, cfg.Features)
	if err != nil {
		return err
	}
	cfg.Weights = weights

	if input.Alpha < 0 || math.IsNaN(input.Alpha) {
		return schema.NewConfigurationError("alpha", "must be >= 0 (got %g)", input.Alpha)
	}
	if input.Beta < 0 || math.IsNaN(input.Beta) {
		return schema.NewConfigurationError("beta", "must be >= 0 (got %g)", input.Beta)
	}
	cfg.Alpha = input.Alpha
	cfg.Beta = input.Beta

	if input.AverageSpeed < 0 {
		return schema.NewConfigurationError("average-speed", "must be >= 0 (got %g)", input.AverageSpeed)
	}
	cfg.AverageSpeed = input.AverageSpeed
	return nil
}

// ProcessWeightsRawInput turns the weights section of the config file into the
// weight table for the given features.
//
// Without a weights section the defaults are used; when only some features are
// active the defaults are rescaled to sum to 1. A weights section, when given,
// must name exactly the active features.
func ProcessWeightsRawInput(raw map[string]float64, features []schema.FeatureName) (map[schema.FeatureName]float64, error) {
	weights := make(map[schema.FeatureName]float64, len(features))

	if len(raw) == 0 {
		defaults := schema.GetDefaultWeights()
		sum := 0.0
		for _, f := range features {
			sum += defaults[f]
		}
		for _, f := range features {
			weights[f] = defaults[f]
			if math.Abs(sum-1) > 1e-9 {
				weights[f] /= sum
			}
		}
		return weights, nil
	}

	for k, w := range raw {
		weights[schema.FeatureName(strings.ToLower(strings.TrimSpace(k)))] = w
	}
	if err := safety.ValidateWeights(features, weights); err != nil {
		return nil, err
	}
	return weights, nil
}

// processProvider validates the route provider settings.
func processProvider(cfg *Config, input *ConfigRawInput) error {
	cfg.Provider = schema.ProviderKind(strings.ToLower(strings.TrimSpace(input.Provider)))
	if cfg.Provider == "" {
		cfg.Provider = schema.NoProvider
	}
	if _, ok := schema.ValidProviders[cfg.Provider]; !ok {
		return fmt.Errorf("invalid provider '%s'. must be none, mock, http", input.Provider)
	}
	cfg.ProviderURL = strings.TrimSpace(input.ProviderURL)
	cfg.ProviderKey = input.ProviderKey
	cfg.ProviderSeed = input.ProviderSeed

	if cfg.Provider == schema.HTTPProvider && cfg.ProviderURL == "" {
		return fmt.Errorf("provider-url is required when using the %s provider", cfg.Provider)
	}

	var err error
	if cfg.ProviderLatency, err = parseDurationOr(input.ProviderLatency, DefaultProviderLatency); err != nil {
		return fmt.Errorf("invalid provider-latency: %w", err)
	}
	if cfg.ProviderTimeout, err = parseDurationOr(input.ProviderTimeout, DefaultProviderTimeout); err != nil {
		return fmt.Errorf("invalid provider-timeout: %w", err)
	}
	if cfg.ProviderTimeout <= 0 {
		return fmt.Errorf("provider-timeout must be greater than 0 (received %s)", cfg.ProviderTimeout)
	}
	return nil
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
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history-db-connect: %w", err)
	}

	// Cache and history must not share one SQLite file.
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

// processMQTT fills the MQTT settings, falling back to defaults.
func processMQTT(cfg *Config, input *ConfigRawInput) {
	cfg.MQTTBroker = strings.TrimSpace(input.MQTTBroker)
	cfg.MQTTPrefix = strings.Trim(strings.TrimSpace(input.MQTTPrefix), "/")
	if cfg.MQTTPrefix == "" {
		cfg.MQTTPrefix = DefaultMQTTPrefix
	}
	cfg.MQTTClientID = strings.TrimSpace(input.MQTTClientID)
	if cfg.MQTTClientID == "" {
		cfg.MQTTClientID = DefaultMQTTClientID
	}
}

func parseDurationOr(s string, fallback time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative (received %s)", d)
	}
	return d, nil
}
