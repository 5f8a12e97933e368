package pipeline

import (
	"bytes"
	"context"
	"strconv"

	"github.com/rhuss/respipe/pkg/observability"
	"github.com/rhuss/respipe/pkg/transport"
)

// Buffer returns middleware that holds the whole response in memory until
// the later stages return, then declares its Content-Length and releases
// it. An explicit flush releases the content early and ends buffering for
// the request.
//
// While buffering, the installed body reports that it can seek, so
// Response.CanRestart holds even over a streaming sink and an error page
// can replace the partial output. When the current body can already seek,
// no buffer is installed.
//
// The handler takes part in the settle chain: once settled before its first
// write it passes everything straight through.
func Buffer() transport.Middleware {
	return func(next transport.Stage) transport.Stage {
		return transport.StageFunc(func(ctx context.Context, x *transport.Exchange) error {
			if x.Response.Body().CanSeek() {
				observability.TransformerDecisionsTotal.WithLabelValues("buffer", observability.DecisionSkipped).Inc()
				return next.Serve(ctx, x)
			}

			sc := enter(x.Response)
			defer sc.exit()

			h := newBufferHandler(x.Response, sc.priorBody, sc.priorSettler)
			sc.install(h)
			sc.register(h)
			return serveThenFinish(ctx, next, x, h.finish)
		})
	}
}

type bufferHandler struct {
	resp         *transport.Response
	prior        transport.Body
	priorSettler transport.Settler
	buf          *bytes.Buffer
	state        state
}

func newBufferHandler(resp *transport.Response, prior transport.Body, priorSettler transport.Settler) *bufferHandler {
	return &bufferHandler{resp: resp, prior: prior, priorSettler: priorSettler}
}

func (h *bufferHandler) Name() string     { return "buffer" }
func (h *bufferHandler) FullBuffer() bool { return true }

func (h *bufferHandler) checkWorking() bool {
	if h.state == stateUninitialized {
		h.state = decideBuffer(h.resp.Header())
		if h.state == stateWorking {
			h.buf = new(bytes.Buffer)
		}
		recordDecision(h.Name(), h.state)
	}
	return h.state == stateWorking
}

func (h *bufferHandler) Write(p []byte) (int, error) {
	if h.checkWorking() {
		return h.buf.Write(p)
	}
	return h.prior.Write(p)
}

// Flush releases the buffered bytes and moves to the terminal flushed
// state. Nothing can be rolled back after this point.
func (h *bufferHandler) Flush() error {
	if h.checkWorking() {
		h.state = stateFlushed
		if err := h.release(); err != nil {
			return err
		}
	}
	return h.prior.Flush()
}

// EnsureSettled implements transport.Settler.
func (h *bufferHandler) EnsureSettled() {
	if h.state == stateUninitialized {
		h.state = stateNotWorking
		recordSettled(h.Name())
	}
	if h.priorSettler != nil {
		h.priorSettler.EnsureSettled()
	}
}

// Restart discards the buffer. Once flushed the released bytes are gone
// and the restart is refused.
func (h *bufferHandler) Restart() error {
	if h.state == stateFlushed {
		return transport.ErrRestartNotPermitted
	}
	h.state = stateUninitialized
	h.buf = nil
	return nil
}

func (h *bufferHandler) finish() error {
	if h.state != stateWorking {
		return nil
	}
	h.resp.Header().Set("Content-Length", strconv.Itoa(h.buf.Len()))
	return h.release()
}

// release copies the buffer to the displaced body and empties it.
func (h *bufferHandler) release() error {
	observability.BufferedBytes.Observe(float64(h.buf.Len()))
	_, err := h.buf.WriteTo(h.prior)
	return err
}
