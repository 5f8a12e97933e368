package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rhuss/respipe/pkg/transport"
)

// Server wraps an http.Server with the transport adapter and manages
// the full lifecycle including startup and graceful shutdown.
type Server struct {
	httpServer *http.Server
	adapter    *Adapter
	config     ServerConfig
	logger     *slog.Logger
}

// ServerConfig holds configuration for the transport server.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Middleware      []transport.Middleware
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) ServerOption {
	return func(s *Server) { s.config.Addr = addr }
}

// WithReadTimeout sets the deadline for reading a request.
func WithReadTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.config.ReadTimeout = d }
}

// WithWriteTimeout sets the deadline for writing a response.
func WithWriteTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.config.WriteTimeout = d }
}

// WithShutdownTimeout sets the graceful shutdown deadline.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.config.ShutdownTimeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// WithMiddleware appends stage middleware after the defaults. The response
// transformers go here.
func WithMiddleware(mws ...transport.Middleware) ServerOption {
	return func(s *Server) { s.config.Middleware = append(s.config.Middleware, mws...) }
}

// Routes builds the server's HTTP handler. Stages are mounted through the
// adapter; plain handlers such as a metrics endpoint can sit beside them.
type Routes func(a *Adapter) http.Handler

// NewServer creates a new transport server with the given routes and options.
// Default middleware (recovery, request ID, logging) is applied automatically
// ahead of any middleware passed with WithMiddleware.
func NewServer(routes Routes, opts ...ServerOption) *Server {
	s := &Server{
		config: DefaultServerConfig(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	mws := []transport.Middleware{
		transport.Recovery(s.logger),
		transport.RequestID(),
		transport.Logging(s.logger),
	}
	mws = append(mws, s.config.Middleware...)

	s.adapter = NewAdapter(Config{WriteTimeout: s.config.WriteTimeout}, s.logger, mws...)

	s.httpServer = &http.Server{
		Addr:        s.config.Addr,
		Handler:     routes(s.adapter),
		ReadTimeout: s.config.ReadTimeout,
	}

	return s
}

// ListenAndServe starts the server and blocks until a shutdown signal
// (SIGINT or SIGTERM) is received. It then gracefully shuts down,
// waiting for in-flight requests to complete within the configured timeout.
func (s *Server) ListenAndServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln)
}

// ServeOn starts the server on the given listener and blocks until ctx is
// done, then shuts down gracefully.
func (s *Server) ServeOn(ctx context.Context, ln net.Listener) error {
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("server starting", slog.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down gracefully", slog.Duration("timeout", s.config.ShutdownTimeout))
	if err := s.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
// Requests still running when ctx is done are cancelled.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if waitErr := s.adapter.inflight.Wait(ctx); waitErr != nil {
		n := s.adapter.inflight.CancelAll()
		s.logger.Warn("cancelled in-flight requests", slog.Int("count", n))
		if err == nil {
			err = waitErr
		}
	}
	return err
}

// Adapter returns the server's adapter.
func (s *Server) Adapter() *Adapter { return s.adapter }
