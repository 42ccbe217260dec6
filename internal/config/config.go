package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/change-maker/internal/change"
	"github.com/eugenenazirov/change-maker/internal/drawer"
	"github.com/eugenenazirov/change-maker/internal/logging"
	"github.com/eugenenazirov/change-maker/internal/money"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultMetricsPath    = "/metrics"
	defaultLogLevel       = "info"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	Denominations        []change.Slot
	Strategy             change.Strategy
	MinorUnitExponent    int32
	MaxAmount            int64
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	LogLevel             string
	MetricsEnabled       bool
	MetricsPath          string
	RateLimitRPS         float64
	RateLimitBurst       int
	TrustForwardedFor    bool
}

// yamlConfig represents the YAML configuration file structure.
// Pointer fields distinguish "absent" from an explicit zero value.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	Denominations        []change.Slot `yaml:"denominations"`
	Strategy             string        `yaml:"strategy"`
	MinorUnitExponent    *int32        `yaml:"minor_unit_exponent"`
	MaxAmount            *int64        `yaml:"max_amount"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	LogLevel             string        `yaml:"log_level"`
	Metrics              yamlMetrics   `yaml:"metrics"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

type yamlMetrics struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type yamlRateLimit struct {
	RPS               *float64 `yaml:"rps"`
	Burst             *int     `yaml:"burst"`
	TrustForwardedFor *bool    `yaml:"trust_forwarded_for"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile       string
	Port             *string
	DenominationsStr *string
	Strategy         *string
	LogLevel         *string
	RateLimitRPS     *float64
	RateLimitBurst   *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		Denominations:        drawer.DefaultSlots(),
		Strategy:             change.StrategyBounded,
		MaxAmount:            change.DefaultMaxAmount,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		LogLevel:             defaultLogLevel,
		MetricsEnabled:       true,
		MetricsPath:          defaultMetricsPath,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if len(yamlCfg.Denominations) > 0 {
		cfg.Denominations = yamlCfg.Denominations
	}

	if yamlCfg.Strategy != "" {
		strategy, err := change.ParseStrategy(yamlCfg.Strategy)
		if err != nil {
			return err
		}
		cfg.Strategy = strategy
	}

	if yamlCfg.MinorUnitExponent != nil {
		cfg.MinorUnitExponent = *yamlCfg.MinorUnitExponent
	}
	if yamlCfg.MaxAmount != nil {
		cfg.MaxAmount = *yamlCfg.MaxAmount
	}

	durations := []struct {
		raw    string
		target *time.Duration
		key    string
	}{
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod, "shutdown_grace_period"},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout, "read_header_timeout"},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout, "write_timeout"},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout, "idle_timeout"},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.target = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.Metrics.Enabled != nil {
		cfg.MetricsEnabled = *yamlCfg.Metrics.Enabled
	}
	if yamlCfg.Metrics.Path != "" {
		cfg.MetricsPath = yamlCfg.Metrics.Path
	}
	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}
	if yamlCfg.RateLimit.TrustForwardedFor != nil {
		cfg.TrustForwardedFor = *yamlCfg.RateLimit.TrustForwardedFor
	}

	return nil
}

func applyEnvConfig(cfg *Config) error {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if raw := strings.TrimSpace(os.Getenv("DENOMINATIONS")); raw != "" {
		slots, err := parseDenominations(raw)
		if err != nil {
			return fmt.Errorf("DENOMINATIONS: %w", err)
		}
		cfg.Denominations = slots
	}

	if raw := strings.TrimSpace(os.Getenv("CHANGE_STRATEGY")); raw != "" {
		strategy, err := change.ParseStrategy(raw)
		if err != nil {
			return fmt.Errorf("CHANGE_STRATEGY: %w", err)
		}
		cfg.Strategy = strategy
	}

	if raw := strings.TrimSpace(os.Getenv("MINOR_UNIT_EXPONENT")); raw != "" {
		value, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return fmt.Errorf("MINOR_UNIT_EXPONENT: %w", err)
		}
		cfg.MinorUnitExponent = int32(value)
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("RATE_LIMIT_TRUST_FORWARDED_FOR")); raw != "" {
		trust, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_TRUST_FORWARDED_FOR: %w", err)
		}
		cfg.TrustForwardedFor = trust
	}

	return nil
}

func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.DenominationsStr != nil && *overrides.DenominationsStr != "" {
		slots, err := parseDenominations(*overrides.DenominationsStr)
		if err != nil {
			return fmt.Errorf("parse denominations: %w", err)
		}
		cfg.Denominations = slots
	}

	if overrides.Strategy != nil && *overrides.Strategy != "" {
		strategy, err := change.ParseStrategy(*overrides.Strategy)
		if err != nil {
			return err
		}
		cfg.Strategy = strategy
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	return nil
}

func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if _, err := change.NormalizeSlots(cfg.Denominations); err != nil {
		return fmt.Errorf("denominations: %w", err)
	}
	if _, err := money.NewConverter(cfg.MinorUnitExponent); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.MaxAmount <= 0 {
		return fmt.Errorf("max_amount must be positive")
	}
	if cfg.MetricsEnabled && !strings.HasPrefix(cfg.MetricsPath, "/") {
		return fmt.Errorf("metrics path must start with '/', got %q", cfg.MetricsPath)
	}
	return nil
}

// parseDenominations parses "value:count" pairs separated by commas, e.g. "2000:10,500:4".
// A bare value means zero pieces on hand.
func parseDenominations(raw string) ([]change.Slot, error) {
	parts := strings.Split(raw, ",")
	slots := make([]change.Slot, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		rawValue, rawCount, hasCount := strings.Cut(part, ":")
		value, err := strconv.ParseInt(strings.TrimSpace(rawValue), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid denomination %q", part)
		}
		var count int64
		if hasCount {
			count, err = strconv.ParseInt(strings.TrimSpace(rawCount), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid count in %q", part)
			}
		}
		if value <= 0 {
			return nil, fmt.Errorf("denomination must be positive, got %d", value)
		}
		if count < 0 {
			return nil, fmt.Errorf("count must not be negative, got %d", count)
		}
		slots = append(slots, change.Slot{Value: value, Count: count})
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("no denominations provided")
	}
	return slots, nil
}
