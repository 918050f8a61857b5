package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"adpulse/internal/errors"
)

// Config represents the complete pipeline configuration. It is assembled
// once per run from compiled defaults, an optional YAML file, and
// environment overrides, in that order, and never mutated afterwards.
// Stages receive their own section by value.
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Evaluator EvaluatorConfig `yaml:"evaluator"`
	CHS       CHSConfig       `yaml:"chs"`
	Generator GeneratorConfig `yaml:"generator"`
	Planner   PlannerConfig   `yaml:"planner"`
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
}

// DataConfig holds dataset ingestion settings
type DataConfig struct {
	Path    string `yaml:"path"`
	DateCol string `yaml:"date_col"`
}

// AnalysisConfig holds window and threshold settings shared by the
// insight generator and the creative scorer.
type AnalysisConfig struct {
	RecentWindowDays       int     `yaml:"recent_window_days"`
	PreviousWindowDays     int     `yaml:"previous_window_days"`
	ROASDropThresholdPct   float64 `yaml:"roas_drop_threshold_pct"`
	LowCTRThreshold        float64 `yaml:"low_ctr_threshold"`
	MinImpressionsForStats int64   `yaml:"min_impressions_for_stats"`
}

// EvaluatorConfig holds significance-testing settings.
type EvaluatorConfig struct {
	PValueThreshold float64 `yaml:"p_value_threshold"`
	BootstrapIters  int     `yaml:"bootstrap_iters"`
	Seed            int64   `yaml:"seed"`
}

// CHSConfig holds Creative Health Score component weights.
type CHSConfig struct {
	BehaviorWeight float64 `yaml:"behavior_weight"`
	TextWeight     float64 `yaml:"text_weight"`
	FatigueWeight  float64 `yaml:"fatigue_weight"`
}

// GeneratorConfig holds creative copy generation settings.
type GeneratorConfig struct {
	VariantsPerStyle          int     `yaml:"variants_per_style"`
	CHSThreshold              float64 `yaml:"chs_threshold"`
	MaxCampaigns              int     `yaml:"max_campaigns"`
	MaxSuggestionsPerCampaign int     `yaml:"max_suggestions_per_campaign"`
	OverlapThreshold          float64 `yaml:"overlap_threshold"`
	Seed                      int64   `yaml:"seed"`
}

// PlannerConfig holds plan and reflection settings.
type PlannerConfig struct {
	MaxRetries                 int     `yaml:"max_retries"`
	ReflectionConfidenceThresh float64 `yaml:"reflection_confidence_thresh"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// DatabaseConfig holds optional result persistence settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			DateCol: "date",
		},
		Analysis: AnalysisConfig{
			RecentWindowDays:       14,
			PreviousWindowDays:     14,
			ROASDropThresholdPct:   -20.0,
			LowCTRThreshold:        0.02,
			MinImpressionsForStats: 1000,
		},
		Evaluator: EvaluatorConfig{
			PValueThreshold: 0.05,
			BootstrapIters:  2000,
			Seed:            42,
		},
		CHS: CHSConfig{
			BehaviorWeight: 0.5,
			TextWeight:     0.3,
			FatigueWeight:  0.2,
		},
		Generator: GeneratorConfig{
			VariantsPerStyle:          3,
			CHSThreshold:              60.0,
			MaxCampaigns:              10,
			MaxSuggestionsPerCampaign: 18,
			OverlapThreshold:          0.7,
			Seed:                      2025,
		},
		Planner: PlannerConfig{
			MaxRetries:                 2,
			ReflectionConfidenceThresh: 0.4,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "logs",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path if
// given, then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Data.Path = getEnvOrDefault("DATA_PATH", cfg.Data.Path)
	cfg.Database.URL = getEnvOrDefault("DATABASE_URL", cfg.Database.URL)
	cfg.Logging.Level = getEnvOrDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Dir = getEnvOrDefault("LOG_DIR", cfg.Logging.Dir)
	cfg.Evaluator.Seed = getEnvInt64OrDefault("BOOTSTRAP_SEED", cfg.Evaluator.Seed)
	cfg.Evaluator.BootstrapIters = getEnvIntOrDefault("BOOTSTRAP_ITERS", cfg.Evaluator.BootstrapIters)
}

func validate(cfg *Config) error {
	if cfg.Analysis.RecentWindowDays <= 0 || cfg.Analysis.PreviousWindowDays <= 0 {
		return errors.ConfigInvalid("window lengths must be positive")
	}
	if cfg.Evaluator.BootstrapIters <= 0 {
		return errors.ConfigInvalid("bootstrap_iters must be positive")
	}
	if cfg.Evaluator.PValueThreshold <= 0 || cfg.Evaluator.PValueThreshold >= 1 {
		return errors.ConfigInvalid("p_value_threshold must be in (0,1)")
	}
	if cfg.Analysis.MinImpressionsForStats < 0 {
		return errors.ConfigInvalid("min_impressions_for_stats cannot be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
