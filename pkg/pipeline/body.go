package pipeline

import (
	"io"

	"github.com/rhuss/respipe/pkg/debug"
	"github.com/rhuss/respipe/pkg/observability"
	"github.com/rhuss/respipe/pkg/transport"
)

// DelegatingBody is the transport.Body a transformer installs in place of
// the current body. It owns no bytes: every write, flush and reset goes to
// its Handler, and the handler decides what reaches the displaced body.
//
// Len and the position both report the bytes written since the last reset.
// Seek and Truncate accept only zero, which restarts the body: a seekable
// inner body is truncated, the handler restarts, and the count drops to 0.
type DelegatingBody struct {
	inner      transport.Body
	handler    Handler
	fullBuffer bool
	written    int64
}

// NewDelegatingBody returns a body that forwards to h and wraps inner, the
// body h displaced.
func NewDelegatingBody(inner transport.Body, h Handler) *DelegatingBody {
	return &DelegatingBody{
		inner:      inner,
		handler:    h,
		fullBuffer: h.FullBuffer(),
	}
}

// Write counts p and hands it to the handler unchanged.
func (b *DelegatingBody) Write(p []byte) (int, error) {
	b.written += int64(len(p))
	return b.handler.Write(p)
}

// Flush asks the handler to flush.
func (b *DelegatingBody) Flush() error {
	return b.handler.Flush()
}

// Len reports the bytes written since the last reset.
func (b *DelegatingBody) Len() int64 { return b.written }

// Seek restarts the body when the target position is zero. Seek(0,
// io.SeekCurrent) only reports the position; any other non-zero target
// fails with transport.ErrOutOfRange.
func (b *DelegatingBody) Seek(offset int64, whence int) (int64, error) {
	if whence == io.SeekCurrent && offset == 0 {
		return b.written, nil
	}
	if transport.SeekTarget(b.written, b.written, offset, whence) != 0 {
		return b.written, transport.ErrOutOfRange
	}
	if err := b.restart(); err != nil {
		return b.written, err
	}
	return 0, nil
}

// Truncate restarts the body. Only zero is accepted.
func (b *DelegatingBody) Truncate(size int64) error {
	if size != 0 {
		return transport.ErrOutOfRange
	}
	return b.restart()
}

// CanSeek reports true when the handler buffers fully or the wrapped body
// can seek itself.
func (b *DelegatingBody) CanSeek() bool {
	return b.fullBuffer || b.inner.CanSeek()
}

// Close is a no-op. The real sink belongs to whoever installed the body.
func (b *DelegatingBody) Close() error { return nil }

func (b *DelegatingBody) restart() error {
	if b.inner.CanSeek() {
		if err := b.inner.Truncate(0); err != nil {
			return err
		}
	}
	if err := b.handler.Restart(); err != nil {
		return err
	}
	b.written = 0
	observability.BodyRestartsTotal.WithLabelValues(b.handler.Name()).Inc()
	debug.Log("pipeline", "restart", "handler", b.handler.Name())
	return nil
}
