// Command server runs the response pipeline demo server.
//
// Configuration is read from a YAML file and environment variables:
//
//	RESPIPE_CONFIG     - Path to the config file (default: ./config.yaml, /etc/respipe/config.yaml)
//	RESPIPE_PORT       - Listen port (default: 8080)
//	RESPIPE_LOG_LEVEL  - ERROR, WARN, INFO, DEBUG or TRACE (default: INFO)
//	RESPIPE_DEBUG      - Debug categories: pipeline, transport, config, all
//	RESPIPE_GZIP_LEVEL - Compression level (default: 1)
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/rhuss/respipe/pkg/config"
	"github.com/rhuss/respipe/pkg/debug"
	"github.com/rhuss/respipe/pkg/demo"
	"github.com/rhuss/respipe/pkg/observability"
	"github.com/rhuss/respipe/pkg/pipeline"
	transporthttp "github.com/rhuss/respipe/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := debug.Init(cfg.Logging.Debug, cfg.Logging.Level, cfg.Logging.Format)
	debug.Log("config", "loaded", "pipeline", fmt.Sprintf("%+v", cfg.Pipeline))

	srv := transporthttp.NewServer(demo.Routes(cfg.Observability.Metrics),
		transporthttp.WithAddr(":"+strconv.Itoa(cfg.Server.Port)),
		transporthttp.WithReadTimeout(cfg.Server.ReadTimeout),
		transporthttp.WithWriteTimeout(cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithLogger(logger),
		transporthttp.WithMiddleware(
			observability.Middleware(),
			pipeline.FromConfig(cfg.Pipeline),
		),
	)

	slog.Info("pipeline configured",
		"suppress_negotiation", cfg.Pipeline.SuppressNegotiation,
		"chunked", cfg.Pipeline.Chunked,
		"buffer", cfg.Pipeline.Buffer,
		"gzip", cfg.Pipeline.Gzip.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	return srv.ListenAndServe()
}
