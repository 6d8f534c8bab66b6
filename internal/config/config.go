// Package config provides configuration management for the market desk.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	AI         AIConfig         `mapstructure:"ai"`
	Portfolio  PortfolioConfig  `mapstructure:"portfolio"`
	Reports    ReportsConfig    `mapstructure:"reports"`
	UI         UIConfig         `mapstructure:"ui"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// SimulationConfig holds market simulation configuration.
type SimulationConfig struct {
	Seed            int64         `mapstructure:"seed"`
	UniverseFile    string        `mapstructure:"universe_file"` // optional CSV, built-in universe when empty
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	HistoryDays     int           `mapstructure:"history_days"`
	SessionOpen     string        `mapstructure:"session_open"`  // HH:MM local
	SessionClose    string        `mapstructure:"session_close"` // HH:MM local
}

// AnalysisConfig holds signal scoring configuration.
type AnalysisConfig struct {
	Workers int                `mapstructure:"workers"`
	Weights map[string]float64 `mapstructure:"weights"` // component -> weight
}

// AIConfig holds model ensemble configuration.
type AIConfig struct {
	ModelWeights  map[string]float64 `mapstructure:"model_weights"`
	OpenAIKey     string             `mapstructure:"openai_key"`
	OpenAIModel   string             `mapstructure:"openai_model"`
	Narrative     bool               `mapstructure:"narrative"`
	MinConfidence float64            `mapstructure:"min_confidence"`
}

// PortfolioConfig holds simulated portfolio configuration.
type PortfolioConfig struct {
	InitialCash float64 `mapstructure:"initial_cash"`
}

// ReportsConfig holds report scheduler configuration.
type ReportsConfig struct {
	DailyAt  string        `mapstructure:"daily_at"` // HH:MM local, empty disables
	Interval time.Duration `mapstructure:"interval"` // optional fixed interval, 0 disables
	TopN     int           `mapstructure:"top_n"`    // movers per report
}

// UIConfig holds terminal output configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	TimeFormat   string `mapstructure:"time_format"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/marketdesk"
	}
	return filepath.Join(home, ".config", "marketdesk")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		// First run: write the template so the user has something to edit.
		if werr := writeTemplateConfig(configDir); werr != nil {
			return nil, fmt.Errorf("writing config template: %w", werr)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("simulation.seed", 42)
	v.SetDefault("simulation.refresh_interval", 2*time.Second)
	v.SetDefault("simulation.history_days", 250)
	v.SetDefault("simulation.session_open", "09:30")
	v.SetDefault("simulation.session_close", "16:00")

	v.SetDefault("analysis.workers", 4)

	v.SetDefault("ai.openai_model", "gpt-4o-mini")
	v.SetDefault("ai.narrative", false)
	v.SetDefault("ai.min_confidence", 0.0)

	v.SetDefault("portfolio.initial_cash", 100000.0)

	v.SetDefault("reports.daily_at", "16:30")
	v.SetDefault("reports.top_n", 5)

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.time_format", "15:04:05")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAIKey = v
	}
	if v := os.Getenv("MARKETDESK_SEED"); v != "" {
		var seed int64
		if _, err := fmt.Sscanf(v, "%d", &seed); err == nil {
			cfg.Simulation.Seed = seed
		}
	}
	if v := os.Getenv("MARKETDESK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Simulation.HistoryDays <= 0 {
		return fmt.Errorf("simulation history_days must be positive")
	}
	if c.Simulation.RefreshInterval < 100*time.Millisecond {
		return fmt.Errorf("simulation refresh_interval must be at least 100ms")
	}
	if _, err := ParseClock(c.Simulation.SessionOpen); err != nil {
		return fmt.Errorf("invalid session_open: %w", err)
	}
	if _, err := ParseClock(c.Simulation.SessionClose); err != nil {
		return fmt.Errorf("invalid session_close: %w", err)
	}
	for name, w := range c.Analysis.Weights {
		if w < 0 {
			return fmt.Errorf("analysis weight %s must be non-negative", name)
		}
	}
	for name, w := range c.AI.ModelWeights {
		if w < 0 || w > 1 {
			return fmt.Errorf("ai model weight %s must be in [0, 1]", name)
		}
	}
	if c.AI.MinConfidence < 0 || c.AI.MinConfidence > 100 {
		return fmt.Errorf("ai min_confidence must be between 0 and 100")
	}
	if c.Portfolio.InitialCash < 0 {
		return fmt.Errorf("portfolio initial_cash must be non-negative")
	}
	if c.Reports.DailyAt != "" {
		if _, err := ParseClock(c.Reports.DailyAt); err != nil {
			return fmt.Errorf("invalid reports daily_at: %w", err)
		}
	}
	if c.Reports.Interval != 0 && c.Reports.Interval < time.Minute {
		return fmt.Errorf("reports interval must be at least one minute")
	}
	if c.Reports.TopN <= 0 {
		return fmt.Errorf("reports top_n must be positive")
	}
	return nil
}

// Clock is a time of day without a date.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses a "HH:MM" string.
func ParseClock(s string) (Clock, error) {
	var c Clock
	if _, err := fmt.Sscanf(s, "%d:%d", &c.Hour, &c.Minute); err != nil {
		return c, fmt.Errorf("expected HH:MM, got %q", s)
	}
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
		return c, fmt.Errorf("out of range: %q", s)
	}
	return c, nil
}

// Next returns the next occurrence of the clock time strictly after now.
func (c Clock) Next(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), c.Hour, c.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
