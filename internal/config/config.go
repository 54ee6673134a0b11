// Package config provides configuration management for the simulation engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration. It is an explicit object
// passed into constructors; no package holds process-wide settings.
type Config struct {
	Engine    EngineConfig    `mapstructure:"engine"`
	Risk      RiskConfig      `mapstructure:"risk"`
	Guardrail GuardrailConfig `mapstructure:"guardrail"`
	Wargame   WargameConfig   `mapstructure:"wargame"`
	Store     StoreConfig     `mapstructure:"store"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// EngineConfig holds signal detection parameters.
type EngineConfig struct {
	Timeframe      string  `mapstructure:"timeframe"`
	LookbackWindow int     `mapstructure:"lookback_window"`
	RallyThreshold float64 `mapstructure:"rally_threshold"` // fractional, e.g. 0.02 = 2%
	MinConfidence  float64 `mapstructure:"min_confidence"`  // 0-100 score floor for entries
}

// RiskConfig holds position sizing and protective-level parameters.
type RiskConfig struct {
	RiskPerTradePct float64 `mapstructure:"risk_per_trade_pct"`
	StopLossPct     float64 `mapstructure:"stop_loss_pct"`
	TakeProfitPct   float64 `mapstructure:"take_profit_pct"`
	MinNotional     float64 `mapstructure:"min_notional"`
	CommissionRate  float64 `mapstructure:"commission_rate"`
}

// GuardrailConfig holds the policy gate limits and the location of the
// offline intelligence profiles.
type GuardrailConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxOpenPositions int     `mapstructure:"max_open_positions"`
	MinAffinityScore float64 `mapstructure:"min_affinity_score"`
	DataDir          string  `mapstructure:"data_dir"`
}

// WargameConfig holds replay simulation defaults.
type WargameConfig struct {
	InitialCapital float64 `mapstructure:"initial_capital"`
	Timeframe      string  `mapstructure:"timeframe"`
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/tezaver"
	}
	return filepath.Join(home, ".config", "tezaver")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
// A missing config file yields the defaults, not an error.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.yaml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("engine.timeframe", "1h")
	v.SetDefault("engine.lookback_window", 50)
	v.SetDefault("engine.rally_threshold", 0.02)
	v.SetDefault("engine.min_confidence", 50.0)

	v.SetDefault("risk.risk_per_trade_pct", 0.10)
	v.SetDefault("risk.stop_loss_pct", 0.05)
	v.SetDefault("risk.take_profit_pct", 0.15)
	v.SetDefault("risk.min_notional", 10.0)
	v.SetDefault("risk.commission_rate", 0.001)

	v.SetDefault("guardrail.enabled", true)
	v.SetDefault("guardrail.max_open_positions", 5)
	v.SetDefault("guardrail.min_affinity_score", 60.0)
	v.SetDefault("guardrail.data_dir", filepath.Join(configDir, "data"))

	v.SetDefault("wargame.initial_capital", 10000.0)
	v.SetDefault("wargame.timeframe", "1h")

	v.SetDefault("store.db_path", filepath.Join(configDir, "tezaver.db"))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "tezaver.log"))
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age", 30)
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Engine.LookbackWindow < 2 {
		return fmt.Errorf("engine.lookback_window must be at least 2, got %d", c.Engine.LookbackWindow)
	}
	if c.Engine.RallyThreshold <= 0 {
		return fmt.Errorf("engine.rally_threshold must be positive, got %f", c.Engine.RallyThreshold)
	}
	if c.Engine.MinConfidence < 0 || c.Engine.MinConfidence > 100 {
		return fmt.Errorf("engine.min_confidence must be in [0, 100], got %f", c.Engine.MinConfidence)
	}
	if c.Risk.RiskPerTradePct <= 0 || c.Risk.RiskPerTradePct > 1 {
		return fmt.Errorf("risk.risk_per_trade_pct must be in (0, 1], got %f", c.Risk.RiskPerTradePct)
	}
	if c.Risk.StopLossPct < 0 || c.Risk.TakeProfitPct < 0 {
		return fmt.Errorf("risk stop/take percentages must be non-negative")
	}
	if c.Guardrail.MaxOpenPositions < 1 {
		return fmt.Errorf("guardrail.max_open_positions must be at least 1, got %d", c.Guardrail.MaxOpenPositions)
	}
	if c.Wargame.InitialCapital <= 0 {
		return fmt.Errorf("wargame.initial_capital must be positive, got %f", c.Wargame.InitialCapital)
	}
	return nil
}
