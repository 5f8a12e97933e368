package pipeline

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rhuss/respipe/pkg/debug"
	"github.com/rhuss/respipe/pkg/transport"
)

var (
	crlf      = []byte("\r\n")
	lastChunk = []byte("0\r\n\r\n")
)

// Chunked returns middleware that frames the response with the chunked
// transfer-coding whenever nothing else delimits it. Each non-empty write
// becomes one chunk; the terminating zero-length chunk is written once the
// later stages have returned successfully.
func Chunked() transport.Middleware {
	return func(next transport.Stage) transport.Stage {
		return transport.StageFunc(func(ctx context.Context, x *transport.Exchange) error {
			sc := enter(x.Response)
			defer sc.exit()

			h := newChunkedHandler(x.Request, x.Response, sc.priorBody)
			sc.install(h)
			return serveThenFinish(ctx, next, x, h.finish)
		})
	}
}

type chunkedHandler struct {
	req   *http.Request
	resp  *transport.Response
	prior transport.Body
	state state
}

func newChunkedHandler(req *http.Request, resp *transport.Response, prior transport.Body) *chunkedHandler {
	return &chunkedHandler{req: req, resp: resp, prior: prior}
}

func (h *chunkedHandler) Name() string     { return "chunked" }
func (h *chunkedHandler) FullBuffer() bool { return false }

func (h *chunkedHandler) checkWorking() bool {
	if h.state == stateUninitialized {
		h.state = decideChunked(h.req, h.resp.Header())
		if h.state == stateWorking {
			appendToken(h.resp.Header(), "Transfer-Encoding", "chunked")
		}
		recordDecision(h.Name(), h.state)
	}
	return h.state == stateWorking
}

func (h *chunkedHandler) Write(p []byte) (int, error) {
	if !h.checkWorking() {
		return h.prior.Write(p)
	}
	// A zero-length chunk would read as the end of the body.
	if len(p) == 0 {
		return 0, nil
	}
	if err := h.writeChunk(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (h *chunkedHandler) writeChunk(p []byte) error {
	var buf [18]byte
	size := strconv.AppendInt(buf[:0], int64(len(p)), 16)
	size = append(size, crlf...)
	if _, err := h.prior.Write(size); err != nil {
		return err
	}
	if _, err := h.prior.Write(p); err != nil {
		return err
	}
	if _, err := h.prior.Write(crlf); err != nil {
		return err
	}
	debug.Bytes("pipeline", "chunk", p)
	return nil
}

func (h *chunkedHandler) Flush() error {
	h.checkWorking()
	return h.prior.Flush()
}

func (h *chunkedHandler) Restart() error {
	h.state = stateUninitialized
	return nil
}

func (h *chunkedHandler) finish() error {
	if h.state != stateWorking {
		return nil
	}
	_, err := h.prior.Write(lastChunk)
	return err
}
