package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rhuss/respipe/pkg/debug"
	"github.com/rhuss/respipe/pkg/transport"
)

// Adapter hosts transport stages on a net/http server. Each request's
// connection is hijacked so the pipeline alone decides the framing of the
// response: net/http would otherwise apply its own chunked coding on top.
// Every response is sent with "Connection: close".
//
// Request bodies are not available to stages; the demo routes never read
// them.
type Adapter struct {
	middleware transport.Middleware
	inflight   *transport.InFlightRegistry
	config     Config
	logger     *slog.Logger
	seq        atomic.Uint64
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	// WriteTimeout bounds the time a response may take to write. Zero
	// disables the deadline.
	WriteTimeout time.Duration
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 60 * time.Second,
	}
}

// NewAdapter creates an HTTP adapter. Middleware is applied to every stage
// passed to Handle, in the given order.
func NewAdapter(cfg Config, logger *slog.Logger, middlewares ...transport.Middleware) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		middleware: transport.Chain(middlewares...),
		inflight:   transport.NewInFlightRegistry(),
		config:     cfg,
		logger:     logger,
	}
}

// Handle returns an http.Handler that serves s behind the adapter's
// middleware.
func (a *Adapter) Handle(s transport.Stage) http.Handler {
	stage := a.middleware(s)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.serve(stage, w, r)
	})
}

// HandleFunc is Handle for an ordinary function.
func (a *Adapter) HandleFunc(f func(ctx context.Context, x *transport.Exchange) error) http.Handler {
	return a.Handle(transport.StageFunc(f))
}

// InFlight returns the registry of requests currently being served.
func (a *Adapter) InFlight() *transport.InFlightRegistry { return a.inflight }

func (a *Adapter) serve(stage transport.Stage, w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Registration happens before the hijack, while http.Server still
	// tracks the connection, so a concurrent shutdown cannot miss it.
	key := strconv.FormatUint(a.seq.Add(1), 10)
	a.inflight.Register(key, cancel)
	defer a.inflight.Remove(key)

	conn, brw, err := http.NewResponseController(w).Hijack()
	if err != nil {
		a.logger.Error("connection cannot be hijacked", "error", err, "proto", r.Proto)
		http.Error(w, "response pipeline requires an HTTP/1.x connection", http.StatusHTTPVersionNotSupported)
		return
	}
	defer conn.Close()

	a.setWriteDeadline(conn)

	if id := r.Header.Get(transport.RequestIDHeader); id != "" {
		ctx = transport.ContextWithRequestID(ctx, id)
	}

	sink := newConnSink(ctx, conn, brw.Writer, r.Method == http.MethodHead)
	x := transport.NewExchange(r, sink)
	sink.resp = x.Response
	debug.Log("transport", "request", "key", key, "method", r.Method, "path", r.URL.Path)

	serveErr := stage.Serve(ctx, x)
	a.complete(sink, x, serveErr)
}

// complete finishes the wire response once the stage chain has returned.
// setWriteDeadline bounds the whole response write. A connection that
// refuses the deadline is still served, without the bound.
func (a *Adapter) setWriteDeadline(conn net.Conn) {
	if a.config.WriteTimeout <= 0 {
		return
	}
	if err := conn.SetWriteDeadline(time.Now().Add(a.config.WriteTimeout)); err != nil {
		a.logger.Debug("setting write deadline failed", "error", err)
	}
}

func (a *Adapter) complete(sink *connSink, x *transport.Exchange, serveErr error) {
	var err error
	switch {
	case serveErr == nil:
		err = sink.finish()
	case x.Response.HeadersSent():
		// The status is on the wire; closing the connection early is the
		// only signal left.
		a.logger.Debug("response aborted after commit", "error", serveErr)
		err = sink.bw.Flush()
	case errors.Is(serveErr, context.Canceled):
		err = sink.writeError(http.StatusServiceUnavailable, x.Response.Header().Get(transport.RequestIDHeader))
	default:
		err = sink.writeError(http.StatusInternalServerError, x.Response.Header().Get(transport.RequestIDHeader))
	}
	if err != nil {
		a.logger.Debug("writing response", "error", err)
	}
}
