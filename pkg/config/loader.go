package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, RESPIPE_CONFIG env, ./config.yaml, /etc/respipe/config.yaml)
//  3. Environment variable overrides
//  4. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. RESPIPE_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/respipe/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("RESPIPE_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/respipe/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
// Unknown fields are rejected so that typos do not silently fall back to
// defaults.
func loadYAMLFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		// An empty file decodes to io.EOF; keep the defaults.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// applyEnvOverrides maps RESPIPE_* environment variables to config fields.
// Malformed numbers and booleans are reported instead of ignored.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("RESPIPE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RESPIPE_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("RESPIPE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RESPIPE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("RESPIPE_DEBUG"); v != "" {
		cfg.Logging.Debug = v
	}
	if v := os.Getenv("RESPIPE_GZIP_LEVEL"); v != "" {
		level, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RESPIPE_GZIP_LEVEL: %w", err)
		}
		cfg.Pipeline.Gzip.Level = level
	}

	bools := []struct {
		env string
		dst *bool
	}{
		{"RESPIPE_SUPPRESS_NEGOTIATION", &cfg.Pipeline.SuppressNegotiation},
		{"RESPIPE_CHUNKED", &cfg.Pipeline.Chunked},
		{"RESPIPE_BUFFER", &cfg.Pipeline.Buffer},
		{"RESPIPE_GZIP", &cfg.Pipeline.Gzip.Enabled},
		{"RESPIPE_METRICS", &cfg.Observability.Metrics.Enabled},
	}
	for _, b := range bools {
		v := os.Getenv(b.env)
		if v == "" {
			continue
		}
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", b.env, err)
		}
		*b.dst = on
	}

	return nil
}
