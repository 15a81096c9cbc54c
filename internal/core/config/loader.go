package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/drivingschool/internal/core/report"
	"github.com/vietddude/drivingschool/internal/core/resilient"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML content after expanding environment variables.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Reporter.BufferSize <= 0 {
		cfg.Reporter.BufferSize = report.DefaultConfig.BufferSize
	}
	if cfg.Reporter.WriteTimeout <= 0 {
		cfg.Reporter.WriteTimeout = report.DefaultConfig.WriteTimeout
	}
	if cfg.Retry.MaxRetries <= 0 {
		cfg.Retry.MaxRetries = resilient.DefaultConfig.MaxRetries
	}
	if cfg.Retry.BaseDelay <= 0 {
		cfg.Retry.BaseDelay = resilient.DefaultConfig.BaseDelay
	}
	if cfg.Redis.Stream == "" {
		cfg.Redis.Stream = "error_reports"
	}
	if cfg.Redis.MaxLen <= 0 {
		cfg.Redis.MaxLen = 10000
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "pgx"
	}
}
