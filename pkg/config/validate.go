package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rhuss/respipe/pkg/debug"
)

// Validate checks the configuration for valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must not be negative, got %v", c.Server.ShutdownTimeout))
	}

	// pipeline.gzip.level spans HuffmanOnly (-2) to BestCompression (9).
	if c.Pipeline.Gzip.Level < -2 || c.Pipeline.Gzip.Level > 9 {
		errs = append(errs, fmt.Errorf("pipeline.gzip.level must be in -2..9, got %d", c.Pipeline.Gzip.Level))
	}

	if !debug.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of TRACE, DEBUG, INFO, WARN, ERROR, got %q", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json", "":
		// valid
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}

	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", c.Observability.Metrics.Path))
	}

	return errors.Join(errs...)
}
