package pipeline

import (
	"context"
	"net/http"
	"sync"

	"github.com/klauspost/compress/gzip"

	"github.com/rhuss/respipe/pkg/transport"
)

// GzipOption configures the Gzip middleware.
type GzipOption func(*gzipConfig)

type gzipConfig struct {
	level int
}

// WithGzipLevel sets the compression level. Levels outside what the codec
// accepts fall back to gzip.BestSpeed.
func WithGzipLevel(level int) GzipOption {
	return func(c *gzipConfig) { c.level = level }
}

// Gzip returns middleware that compresses the response when the client
// negotiated gzip. A "gzip" token in TE selects the transfer-coding;
// otherwise a "gzip" token in Accept-Encoding selects the content-coding.
// Tokens are matched exactly; quality values are not interpreted.
//
// The handler takes part in the settle chain: once settled before its first
// write it never starts compressing.
func Gzip(opts ...GzipOption) transport.Middleware {
	cfg := gzipConfig{level: gzip.BestSpeed}
	for _, opt := range opts {
		opt(&cfg)
	}
	pool := newWriterPool(cfg.level)

	return func(next transport.Stage) transport.Stage {
		return transport.StageFunc(func(ctx context.Context, x *transport.Exchange) error {
			sc := enter(x.Response)
			defer sc.exit()

			h := newGzipHandler(x.Request, x.Response, sc.priorBody, sc.priorSettler, pool)
			defer h.release()
			sc.install(h)
			sc.register(h)
			return serveThenFinish(ctx, next, x, h.finish)
		})
	}
}

// newWriterPool returns a pool of compressors at level. Pooled writers are
// Reset onto the next body before use.
func newWriterPool(level int) *sync.Pool {
	if _, err := gzip.NewWriterLevel(nil, level); err != nil {
		level = gzip.BestSpeed
	}
	return &sync.Pool{
		New: func() any {
			zw, _ := gzip.NewWriterLevel(nil, level)
			return zw
		},
	}
}

type gzipHandler struct {
	req          *http.Request
	resp         *transport.Response
	prior        transport.Body
	priorSettler transport.Settler
	pool         *sync.Pool
	zw           *gzip.Writer
	state        state
}

func newGzipHandler(req *http.Request, resp *transport.Response, prior transport.Body, priorSettler transport.Settler, pool *sync.Pool) *gzipHandler {
	return &gzipHandler{
		req:          req,
		resp:         resp,
		prior:        prior,
		priorSettler: priorSettler,
		pool:         pool,
	}
}

func (h *gzipHandler) Name() string     { return "gzip" }
func (h *gzipHandler) FullBuffer() bool { return false }

func (h *gzipHandler) checkWorking() bool {
	if h.state == stateUninitialized {
		var key string
		h.state, key = decideGzip(h.req.Header)
		if h.state == stateWorking {
			header := h.resp.Header()
			appendToken(header, key, "gzip")
			// A declared length describes the uncompressed bytes.
			header.Del("Content-Length")
			h.zw = h.pool.Get().(*gzip.Writer)
			h.zw.Reset(h.prior)
		}
		recordDecision(h.Name(), h.state)
	}
	return h.state == stateWorking
}

func (h *gzipHandler) Write(p []byte) (int, error) {
	if h.checkWorking() {
		return h.zw.Write(p)
	}
	return h.prior.Write(p)
}

func (h *gzipHandler) Flush() error {
	if h.checkWorking() {
		if err := h.zw.Flush(); err != nil {
			return err
		}
	}
	return h.prior.Flush()
}

// EnsureSettled implements transport.Settler.
func (h *gzipHandler) EnsureSettled() {
	if h.state == stateUninitialized {
		h.state = stateNotWorking
		recordSettled(h.Name())
	}
	if h.priorSettler != nil {
		h.priorSettler.EnsureSettled()
	}
}

func (h *gzipHandler) Restart() error {
	h.state = stateUninitialized
	h.release()
	return nil
}

// finish closes the compressor, which writes the remaining compressed
// bytes and the gzip trailer. The displaced body stays open.
func (h *gzipHandler) finish() error {
	if h.state != stateWorking {
		return nil
	}
	err := h.zw.Close()
	h.release()
	return err
}

func (h *gzipHandler) release() {
	if h.zw != nil {
		h.pool.Put(h.zw)
		h.zw = nil
	}
}
