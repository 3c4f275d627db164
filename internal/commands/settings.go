package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/riskledger/riskledger/internal/config"
	"github.com/riskledger/riskledger/internal/logging"
)

const envPrefix = "RISKLEDGER"

// loadSettings reads the YAML config named by --config (or RISKLEDGER_CONFIG)
// and layers explicitly set flags and RISKLEDGER_* variables on top.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	cfg, err := config.LoadOrDefault(v.GetString("config"))
	if err != nil {
		return nil, err
	}

	if v.IsSet("profile") {
		cfg.Ingest.Profile = v.GetString("profile")
	}
	if v.IsSet("two-sided") {
		b := v.GetBool("two-sided")
		cfg.Ingest.TwoSided = &b
	}
	if v.IsSet("batch-size") {
		cfg.Ingest.BatchSize = v.GetInt("batch-size")
	}
	if v.IsSet("workers") {
		cfg.Ingest.Workers = v.GetInt("workers")
	}
	if v.IsSet("port") {
		cfg.Server.Port = v.GetInt("port")
	}
	if v.IsSet("upload-dir") {
		cfg.Server.UploadDir = v.GetString("upload-dir")
	}
	if v.IsSet("log-level") {
		cfg.Logging.Level = v.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating settings: %w", err)
	}
	return cfg, nil
}

// newLogger builds the CLI logger. Logs go to stderr so stdout stays clean
// for reports.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Logging, os.Stderr)
}
