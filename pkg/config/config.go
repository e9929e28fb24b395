package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for pwds-expect
type Config struct {
	// Program under test
	Executable string   `yaml:"executable" env:"PWDS_EXPECT_EXECUTABLE"`
	Env        []string `yaml:"env"`

	// Timing
	PromptTimeout  time.Duration `yaml:"prompt_timeout" env:"PWDS_EXPECT_PROMPT_TIMEOUT"`
	SessionTimeout time.Duration `yaml:"session_timeout" env:"PWDS_EXPECT_SESSION_TIMEOUT"`
	ExitGrace      time.Duration `yaml:"exit_grace"`

	// Terminal size
	Cols uint16 `yaml:"cols"`
	Rows uint16 `yaml:"rows"`

	Debug bool `yaml:"debug" env:"PWDS_EXPECT_DEBUG"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Executable:    "pwds",
		PromptTimeout: 1 * time.Second,
		ExitGrace:     2 * time.Second,
		Cols:          200,
		Rows:          24,
	}
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Try to load from config file
	configPath := getConfigPath()
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// getConfigPath returns the config file path
func getConfigPath() string {
	// Check for explicit config path
	if path := os.Getenv("PWDS_EXPECT_CONFIG"); path != "" {
		return path
	}

	// Check XDG config directory
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "pwds-expect", "config.yaml")
	}

	// Fall back to home directory
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "pwds-expect", "config.yaml")
	}

	return ""
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - The config file path comes from trusted sources (env var or standard locations)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	if exe := os.Getenv("PWDS_EXPECT_EXECUTABLE"); exe != "" {
		cfg.Executable = exe
	}

	if timeout := os.Getenv("PWDS_EXPECT_PROMPT_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid PWDS_EXPECT_PROMPT_TIMEOUT: %w", err)
		}
		cfg.PromptTimeout = d
	}

	if timeout := os.Getenv("PWDS_EXPECT_SESSION_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid PWDS_EXPECT_SESSION_TIMEOUT: %w", err)
		}
		cfg.SessionTimeout = d
	}

	if debug := os.Getenv("PWDS_EXPECT_DEBUG"); debug != "" {
		switch debug {
		case "true", "1", "yes":
			cfg.Debug = true
		case "false", "0", "no":
			cfg.Debug = false
		default:
			return fmt.Errorf("invalid PWDS_EXPECT_DEBUG value: %q (use true/false)", debug)
		}
	}

	return nil
}

// Validate validates the configuration
func Validate(cfg *Config) error {
	if cfg.Executable == "" {
		return fmt.Errorf("executable is required")
	}

	if cfg.PromptTimeout <= 0 {
		return fmt.Errorf("prompt_timeout must be positive")
	}

	if cfg.SessionTimeout < 0 {
		return fmt.Errorf("session_timeout must be non-negative")
	}

	if cfg.ExitGrace < 0 {
		return fmt.Errorf("exit_grace must be non-negative")
	}

	if cfg.Cols == 0 || cfg.Rows == 0 {
		return fmt.Errorf("cols and rows must be positive")
	}

	for _, kv := range cfg.Env {
		if !strings.Contains(kv, "=") {
			return fmt.Errorf("env entry %q is not KEY=VALUE", kv)
		}
	}

	return nil
}
