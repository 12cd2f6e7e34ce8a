package contract

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

const maskedSecret = "********"

// configDump mirrors the config file keys so a dump can be read back as .safepath.yaml.
type configDump struct {
	Input            string             `yaml:"input,omitempty"`
	MinID            int64              `yaml:"min-id"`
	MaxID            int64              `yaml:"max-id"`
	IgnoreColumns    []string           `yaml:"ignore-columns,omitempty"`
	Features         []string           `yaml:"features"`
	Weights          map[string]float64 `yaml:"weights"`
	Alpha            float64            `yaml:"alpha"`
	Beta             float64            `yaml:"beta"`
	AverageSpeed     float64            `yaml:"average-speed"`
	Limit            int                `yaml:"limit"`
	Precision        int                `yaml:"precision"`
	Output           string             `yaml:"output"`
	OutputFile       string             `yaml:"output-file,omitempty"`
	Detail           bool               `yaml:"detail"`
	Width            int                `yaml:"width,omitempty"`
	Provider         string             `yaml:"provider"`
	ProviderURL      string             `yaml:"provider-url,omitempty"`
	ProviderKey      string             `yaml:"provider-key,omitempty"`
	ProviderLatency  string             `yaml:"provider-latency"`
	ProviderTimeout  string             `yaml:"provider-timeout"`
	ProviderSeed     int64              `yaml:"provider-seed,omitempty"`
	CacheBackend     string             `yaml:"cache-backend"`
	CacheDBConnect   string             `yaml:"cache-db-connect,omitempty"`
	HistoryBackend   string             `yaml:"history-backend,omitempty"`
	HistoryDBConnect string             `yaml:"history-db-connect,omitempty"`
	MQTTBroker       string             `yaml:"mqtt-broker,omitempty"`
	MQTTPrefix       string             `yaml:"mqtt-prefix,omitempty"`
	MQTTClientID     string             `yaml:"mqtt-client-id,omitempty"`
}

// DumpConfig writes the effective configuration as YAML. Credentials are masked.
func DumpConfig(w io.Writer, cfg *Config) error {
	dump := configDump{
		Input:            cfg.InputPath,
		MinID:            cfg.MinID,
		MaxID:            cfg.MaxID,
		IgnoreColumns:    cfg.IgnoreColumns,
		Features:         make([]string, len(cfg.Features)),
		Weights:          make(map[string]float64, len(cfg.Weights)),
		Alpha:            cfg.Alpha,
		Beta:             cfg.Beta,
		AverageSpeed:     cfg.AverageSpeed,
		Limit:            cfg.ResultLimit,
		Precision:        cfg.Precision,
		Output:           string(cfg.Output),
		OutputFile:       cfg.OutputFile,
		Detail:           cfg.Detail,
		Width:            cfg.Width,
		Provider:         string(cfg.Provider),
		ProviderURL:      cfg.ProviderURL,
		ProviderKey:      mask(cfg.ProviderKey),
		ProviderLatency:  durationString(cfg.ProviderLatency),
		ProviderTimeout:  durationString(cfg.ProviderTimeout),
		ProviderSeed:     cfg.ProviderSeed,
		CacheBackend:     string(cfg.CacheBackend),
		CacheDBConnect:   mask(cfg.CacheDBConnect),
		HistoryBackend:   string(cfg.HistoryBackend),
		HistoryDBConnect: mask(cfg.HistoryDBConnect),
		MQTTBroker:       cfg.MQTTBroker,
		MQTTPrefix:       cfg.MQTTPrefix,
		MQTTClientID:     cfg.MQTTClientID,
	}
	for i, f := range cfg.Features {
		dump.Features[i] = string(f)
	}
	for f, weight := range cfg.Weights {
		dump.Weights[string(f)] = weight
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(dump); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return maskedSecret
}

func durationString(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}
