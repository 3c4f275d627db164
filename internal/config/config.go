package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name written by init.
const FileName = "riskledger.yaml"

// Amount band policies.
const (
	PolicyCumulative = "cumulative"
	PolicyBanded     = "banded"
)

// Config represents the top-level riskledger.yaml configuration.
type Config struct {
	Ingest  IngestConfig  `yaml:"ingest"`
	Scoring ScoringConfig `yaml:"scoring"`
	Alerts  AlertsConfig  `yaml:"alerts"`
	Anomaly AnomalyConfig `yaml:"anomaly"`
	Report  ReportConfig  `yaml:"report"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// IngestConfig controls how input files are read.
type IngestConfig struct {
	BatchSize int    `yaml:"batch_size"`
	Workers   int    `yaml:"workers"`
	Profile   string `yaml:"profile"`
	TwoSided  *bool  `yaml:"two_sided,omitempty"` // nil = profile decides
}

// AmountBand adds Points when an amount is strictly greater than Over.
type AmountBand struct {
	Over   float64 `yaml:"over"`
	Points int     `yaml:"points"`
}

// DeviationConfig controls the per-account behavioral deviation rule.
type DeviationConfig struct {
	K       float64 `yaml:"k"`
	Penalty int     `yaml:"penalty"`
}

// LevelBands are the inclusive upper edges of the Low and Medium levels.
type LevelBands struct {
	LowMax    int `yaml:"low_max"`
	MediumMax int `yaml:"medium_max"`
}

// ScoringConfig holds the table-driven risk heuristics.
type ScoringConfig struct {
	AmountPolicy      string          `yaml:"amount_policy"`
	AmountBands       []AmountBand    `yaml:"amount_bands"`
	PaymentFormats    map[string]int  `yaml:"payment_formats"`
	LaunderingPenalty int             `yaml:"laundering_penalty"`
	Deviation         DeviationConfig `yaml:"deviation"`
	AnomalyPenalty    int             `yaml:"anomaly_penalty"`
	Levels            LevelBands      `yaml:"levels"`
}

// AlertsConfig controls alert selection.
type AlertsConfig struct {
	Threshold int `yaml:"threshold"`
	TopK      int `yaml:"top_k"`
}

// AnomalyConfig controls the per-batch isolation forest.
type AnomalyConfig struct {
	Enabled    bool  `yaml:"enabled"`
	Trees      int   `yaml:"trees"`
	SampleSize int   `yaml:"sample_size"`
	Seed       int64 `yaml:"seed"`
}

// ReportConfig controls report shaping.
type ReportConfig struct {
	TopBanks      int `yaml:"top_banks"`
	MaxRejections int `yaml:"max_rejections"`
}

// ServerConfig controls the HTTP upload server.
type ServerConfig struct {
	Port        int    `yaml:"port"`
	UploadDir   string `yaml:"upload_dir"` // empty = os.TempDir()
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Load reads a riskledger.yaml file from disk. Keys missing from the file keep
// their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, or returns Default when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config matching the reference heuristics.
func Default() *Config {
	return &Config{
		Ingest: IngestConfig{
			BatchSize: 10000,
			Workers:   1,
			Profile:   "generic",
		},
		Scoring: ScoringConfig{
			AmountPolicy: PolicyCumulative,
			AmountBands: []AmountBand{
				{Over: 10000, Points: 20},
				{Over: 50000, Points: 30},
			},
			PaymentFormats: map[string]int{
				"cash":   30,
				"wire":   20,
				"credit": 10,
				"debit":  5,
			},
			LaunderingPenalty: 50,
			Deviation:         DeviationConfig{K: 2, Penalty: 25},
			AnomalyPenalty:    30,
			Levels:            LevelBands{LowMax: 40, MediumMax: 70},
		},
		Alerts: AlertsConfig{
			Threshold: 60,
			TopK:      20,
		},
		Anomaly: AnomalyConfig{
			Enabled:    true,
			Trees:      100,
			SampleSize: 256,
			Seed:       42,
		},
		Report: ReportConfig{
			TopBanks:      5,
			MaxRejections: 20,
		},
		Server: ServerConfig{
			Port:        8080,
			MaxUploadMB: 256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks that the config is internally consistent.
func (c *Config) Validate() error {
	var errs []error
	if c.Ingest.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("ingest.batch_size must be positive, got %d", c.Ingest.BatchSize))
	}
	if c.Ingest.Workers <= 0 {
		errs = append(errs, fmt.Errorf("ingest.workers must be positive, got %d", c.Ingest.Workers))
	}
	switch c.Scoring.AmountPolicy {
	case PolicyCumulative, PolicyBanded:
	default:
		errs = append(errs, fmt.Errorf("scoring.amount_policy must be %q or %q, got %q",
			PolicyCumulative, PolicyBanded, c.Scoring.AmountPolicy))
	}
	if c.Scoring.Levels.LowMax > c.Scoring.Levels.MediumMax {
		errs = append(errs, fmt.Errorf("scoring.levels.low_max (%d) exceeds medium_max (%d)",
			c.Scoring.Levels.LowMax, c.Scoring.Levels.MediumMax))
	}
	if c.Scoring.Deviation.K < 0 {
		errs = append(errs, fmt.Errorf("scoring.deviation.k must not be negative, got %g", c.Scoring.Deviation.K))
	}
	if c.Alerts.TopK <= 0 {
		errs = append(errs, fmt.Errorf("alerts.top_k must be positive, got %d", c.Alerts.TopK))
	}
	if c.Anomaly.Enabled && (c.Anomaly.Trees <= 0 || c.Anomaly.SampleSize < 2) {
		errs = append(errs, fmt.Errorf("anomaly needs trees > 0 and sample_size >= 2"))
	}
	if c.Report.TopBanks <= 0 {
		errs = append(errs, fmt.Errorf("report.top_banks must be positive, got %d", c.Report.TopBanks))
	}
	return errors.Join(errs...)
}

// SortedBands returns the amount bands ordered by ascending threshold.
func (s ScoringConfig) SortedBands() []AmountBand {
	out := make([]AmountBand, len(s.AmountBands))
	copy(out, s.AmountBands)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Over < out[j].Over })
	return out
}
