// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml), with ${VAR} references expanded
//  2. Environment variables (fallback when the file does not exist)
//
// Example usage:
//
//	cfg, err := config.LoadOrEnv("config.yaml")
//	engine, err := usecase.NewEngine(cfg.Rules, log)
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"txn-classifier/internal/domain"
)

// Config represents the entire application configuration
type Config struct {
	Rules     domain.Rules    `yaml:"rules"`
	Logging   LoggingConfig   `yaml:"logging"`
	Server    ServerConfig    `yaml:"server"`
	Sources   SourcesConfig   `yaml:"sources"`
	Overrides OverridesConfig `yaml:"overrides"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// SourcesConfig says where transactions are read from. CSV files take
// precedence over a spreadsheet when both are set.
type SourcesConfig struct {
	CSVPaths []string     `yaml:"csv_paths"`
	Sheets   SheetsConfig `yaml:"sheets"`
}

// SheetsConfig holds Google Sheets settings
type SheetsConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	Range           string `yaml:"range"`
	OverridesRange  string `yaml:"overrides_range"`
	CredentialsFile string `yaml:"credentials_file"`
}

// OverridesConfig holds the manual override store settings
type OverridesConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML configuration, expanding environment variables
// first. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Rules: domain.Rules{
			TransferWindow: getEnvDuration("TXN_TRANSFER_WINDOW", 0),
			Timezone:       os.Getenv("TXN_TIMEZONE"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Server: ServerConfig{
			Addr:           getEnv("TXN_ADDR", ""),
			AllowedOrigins: getEnvList("TXN_ALLOWED_ORIGINS"),
		},
		Sources: SourcesConfig{
			CSVPaths: getEnvList("TXN_CSV_PATHS"),
			Sheets: SheetsConfig{
				SpreadsheetID:   os.Getenv("TXN_SHEET_ID"),
				Range:           os.Getenv("TXN_SHEET_RANGE"),
				OverridesRange:  os.Getenv("TXN_OVERRIDES_RANGE"),
				CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
			},
		},
		Overrides: OverridesConfig{
			DatabasePath: os.Getenv("TXN_OVERRIDES_DB"),
		},
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrEnv loads path when it exists and falls back to environment
// variables otherwise. A file that exists but can't be parsed is an error.
func LoadOrEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return LoadFromEnv()
	}
	return cfg, err
}

// Validate checks settings that can't be defaulted.
func (c *Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: server timeouts must not be negative", domain.ErrInvalidArgument)
	}
	return nil
}

// HasSource reports whether a transaction source is configured.
func (c *Config) HasSource() bool {
	return len(c.Sources.CSVPaths) > 0 || c.Sources.Sheets.SpreadsheetID != ""
}

func (c *Config) applyDefaults() {
	c.Rules = c.Rules.WithDefaults()
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Sources.Sheets.Range == "" {
		c.Sources.Sheets.Range = "Transactions!A:J"
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvList splits a comma separated environment variable
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvDuration reads a duration such as "10m", ignoring malformed values
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
