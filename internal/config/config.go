package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cliplens/match-cli/internal/scoring"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Vision   VisionConfig   `yaml:"vision" mapstructure:"vision"`
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
	Scoring  scoring.Config `yaml:"scoring" mapstructure:"scoring"`
	Tiebreak TiebreakConfig `yaml:"tiebreak" mapstructure:"tiebreak"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Rubrics  RubricsConfig  `yaml:"rubrics" mapstructure:"rubrics"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// VisionConfig holds vision model API settings.
type VisionConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SearchConfig holds shopping search API settings.
type SearchConfig struct {
	Key        string  `yaml:"key" mapstructure:"key"`
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	Engine     string  `yaml:"engine" mapstructure:"engine"`
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// TiebreakConfig configures the visual tiebreak pass.
type TiebreakConfig struct {
	Enabled  bool    `yaml:"enabled" mapstructure:"enabled"`
	MinScore float64 `yaml:"min_score" mapstructure:"min_score"`
	MaxGap   float64 `yaml:"max_gap" mapstructure:"max_gap"`
}

// PipelineConfig configures candidate search and extraction behavior.
type PipelineConfig struct {
	MaxCandidates      int `yaml:"max_candidates" mapstructure:"max_candidates"`
	ExtractConcurrency int `yaml:"extract_concurrency" mapstructure:"extract_concurrency"`
	SearchTimeoutSecs  int `yaml:"search_timeout_secs" mapstructure:"search_timeout_secs"`
	ExtractTimeoutSecs int `yaml:"extract_timeout_secs" mapstructure:"extract_timeout_secs"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentItems int `yaml:"max_concurrent_items" mapstructure:"max_concurrent_items"`
}

// RubricsConfig configures rubric catalog loading. An empty path uses the
// embedded catalog.
type RubricsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CLIPLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	def := scoring.DefaultConfig()
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "cliplens.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("vision.model", "claude-haiku-4-5-20251001")
	v.SetDefault("vision.max_tokens", 1024)
	v.SetDefault("search.base_url", "https://serpapi.com")
	v.SetDefault("search.engine", "google_shopping")
	v.SetDefault("search.rate_per_sec", 2.0)
	v.SetDefault("scoring.critical_cap", def.CriticalCap)
	v.SetDefault("scoring.missing_reference_credit", def.MissingReferenceCredit)
	v.SetDefault("scoring.missing_candidate_credit", def.MissingCandidateCredit)
	v.SetDefault("scoring.auto_high_threshold", def.AutoHighThreshold)
	v.SetDefault("tiebreak.enabled", true)
	v.SetDefault("tiebreak.min_score", 75.0)
	v.SetDefault("tiebreak.max_gap", 5.0)
	v.SetDefault("pipeline.max_candidates", 10)
	v.SetDefault("pipeline.extract_concurrency", 4)
	v.SetDefault("pipeline.search_timeout_secs", 30)
	v.SetDefault("pipeline.extract_timeout_secs", 60)
	v.SetDefault("batch.max_concurrent_items", 3)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := scoring.Validate(cfg.Scoring); err != nil {
		return nil, eris.Wrap(err, "config: scoring")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
