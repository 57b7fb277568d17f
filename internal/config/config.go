// Package config defines service configuration and its loading.
package config

import (
	"time"

	"github.com/okian/matchload/internal/adapters/external"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataDir holds the CSV exports.
	DataDir string `koanf:"data_dir"`

	// PlayerID is the squad member used when a request names none.
	PlayerID string `koanf:"player_id"`

	// CacheTTL and CacheMaxEntries bound the dataset cache.
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	CacheMaxEntries int           `koanf:"cache_max_entries"`

	// RefreshSchedule is a cron expression for dataset warm-up. Empty disables it.
	RefreshSchedule string `koanf:"refresh_schedule"`

	HTTPTimeout time.Duration `koanf:"http_timeout"`
	UserAgent   string        `koanf:"user_agent"`

	WikipediaSquadURL string        `koanf:"wikipedia_squad_url"`
	BioTTL            time.Duration `koanf:"bio_ttl"`
	InjuryTTL         time.Duration `koanf:"injury_ttl"`

	NewsAPIKey  string        `koanf:"news_api_key"`
	NewsBaseURL string        `koanf:"news_base_url"`
	NewsTTL     time.Duration `koanf:"news_ttl"`

	MistralAPIKey  string `koanf:"mistral_api_key"`
	MistralBaseURL string `koanf:"mistral_base_url"`
	MistralModel   string `koanf:"mistral_model"`

	// AnalysisWorkers and AnalysisQueueSize size the analysis pool.
	AnalysisWorkers   int `koanf:"analysis_workers"`
	AnalysisQueueSize int `koanf:"analysis_queue_size"`
	// AnalysisMemoSize bounds memoized answers.
	AnalysisMemoSize int `koanf:"analysis_memo_size"`

	// RecoveryAISince is the first session date (YYYY-MM-DD) sent for
	// recovery analysis.
	RecoveryAISince string `koanf:"recovery_ai_since"`

	// MaxCycleLength caps the cycle length accepted by the API.
	MaxCycleLength int `koanf:"max_cycle_length"`

	// Metrics naming. Every series also carries the player as a const label.
	MetricsEnabled   bool   `koanf:"metrics_enabled"`
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		DataDir:           "data",
		PlayerID:          "Reece James",
		CacheTTL:          time.Hour,
		CacheMaxEntries:   16,
		RefreshSchedule:   "@every 30m",
		HTTPTimeout:       15 * time.Second,
		UserAgent:         "matchload/1.0",
		WikipediaSquadURL: external.DefaultSquadURL,
		BioTTL:            5 * time.Minute,
		InjuryTTL:         10 * time.Minute,
		NewsBaseURL:       external.DefaultNewsURL,
		NewsTTL:           5 * time.Minute,
		MistralBaseURL:    external.DefaultMistralURL,
		MistralModel:      external.DefaultMistralModel,
		AnalysisWorkers:   2,
		AnalysisQueueSize: 64,
		AnalysisMemoSize:  100,
		RecoveryAISince:   "2024-08-01",
		MaxCycleLength:    14,
		MetricsEnabled:    true,
		MetricsNamespace:  "matchload",
	}
}

// RecoverySince parses RecoveryAISince.
func (c *Config) RecoverySince() (time.Time, error) {
	return time.Parse(time.DateOnly, c.RecoveryAISince)
}
