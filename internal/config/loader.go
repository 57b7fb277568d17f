package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
)

// Environment variables read before koanf runs.
const (
	EnvPrefix = "MATCHLOAD_"
	EnvConfig = EnvPrefix + "CONFIG"
	EnvDotenv = EnvPrefix + "DOTENV"
)

// Load builds a Config by layering, low to high precedence:
//  1. defaults (New)
//  2. YAML file named by MATCHLOAD_CONFIG
//  3. environment (prefix MATCHLOAD_)
//
// A .env file (MATCHLOAD_DOTENV, default ".env") is loaded into the process
// environment first. Variables already set win over the file.
func Load(_ context.Context) (*Config, error) {
	dotenv := os.Getenv(EnvDotenv)
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, dotenv, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// MATCHLOAD_NEWS_API_KEY -> news_api_key. Keys are flat so underscores stay.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Validate reports every invalid field, each wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}
	if c.Addr == "" {
		invalid("addr must not be empty")
	}
	if c.DataDir == "" {
		invalid("data_dir must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		invalid("log_level %q", c.LogLevel)
	}
	if c.CacheTTL < 0 {
		invalid("cache_ttl must not be negative")
	}
	if c.CacheMaxEntries < 1 {
		invalid("cache_max_entries must be positive")
	}
	if c.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.RefreshSchedule); err != nil {
			invalid("refresh_schedule %q: %v", c.RefreshSchedule, err)
		}
	}
	if c.HTTPTimeout <= 0 {
		invalid("http_timeout must be positive")
	}
	if c.AnalysisWorkers < 1 {
		invalid("analysis_workers must be positive")
	}
	if c.AnalysisQueueSize < 1 {
		invalid("analysis_queue_size must be positive")
	}
	if c.AnalysisMemoSize < 1 {
		invalid("analysis_memo_size must be positive")
	}
	if _, err := c.RecoverySince(); err != nil {
		invalid("recovery_ai_since %q: want YYYY-MM-DD", c.RecoveryAISince)
	}
	if c.MaxCycleLength < 1 {
		invalid("max_cycle_length must be positive")
	}
	if !metricName.MatchString(c.MetricsNamespace) {
		invalid("metrics_namespace %q", c.MetricsNamespace)
	}
	if c.MetricsSubsystem != "" && !metricName.MatchString(c.MetricsSubsystem) {
		invalid("metrics_subsystem %q", c.MetricsSubsystem)
	}
	return errors.Join(errs...)
}
