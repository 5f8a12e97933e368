// Package config provides unified configuration for the respipe server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (RESPIPE_ prefix)
//  4. Validation
package config

import "time"

// Config holds all configuration for the respipe server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Pipeline      PipelineConfig      `yaml:"pipeline"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 30s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 60s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 15s
}

// PipelineConfig selects the response transformers. Enabled transformers
// are always registered in the order suppress_negotiation, chunked, buffer,
// gzip.
type PipelineConfig struct {
	SuppressNegotiation bool       `yaml:"suppress_negotiation"` // default: true
	Chunked             bool       `yaml:"chunked"`              // default: true
	Buffer              bool       `yaml:"buffer"`               // default: true
	Gzip                GzipConfig `yaml:"gzip"`
}

// GzipConfig holds compression settings.
type GzipConfig struct {
	Enabled bool `yaml:"enabled"` // default: true
	Level   int  `yaml:"level"`   // default: 1 (best speed)
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // TRACE, DEBUG, INFO, WARN, ERROR; default: INFO
	Format string `yaml:"format"` // "text" or "json"; default: "text"
	Debug  string `yaml:"debug"`  // comma-separated debug categories
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Pipeline: PipelineConfig{
			SuppressNegotiation: true,
			Chunked:             true,
			Buffer:              true,
			Gzip: GzipConfig{
				Enabled: true,
				Level:   1,
			},
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
