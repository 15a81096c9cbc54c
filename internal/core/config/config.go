package config

import (
	"github.com/vietddude/drivingschool/internal/core/report"
	"github.com/vietddude/drivingschool/internal/core/resilient"
	redisclient "github.com/vietddude/drivingschool/internal/infra/redis"
	"github.com/vietddude/drivingschool/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Logging  LoggingConfig      `yaml:"logging"`
	Reporter report.Config      `yaml:"reporter"`
	Retry    resilient.Config   `yaml:"retry"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}
