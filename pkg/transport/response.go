package transport

import (
	"io"
	"net/http"
)

// Response is the response half of an Exchange. Its Body is replaced by
// each transformer that activates and restored when the transformer's stage
// returns; writes always go to the body that is current at the time.
type Response struct {
	// StatusCode is sent with the headers on commit. Defaults to 200.
	StatusCode int

	header  http.Header
	body    Body
	settler Settler
	sent    bool
}

// NewResponse returns a Response with status 200 and an empty header that
// writes to sink.
func NewResponse(sink Body) *Response {
	return &Response{
		StatusCode: http.StatusOK,
		header:     make(http.Header),
		body:       sink,
	}
}

// Header returns the response header map. Changes after the headers were
// sent have no effect on the wire.
func (r *Response) Header() http.Header { return r.header }

// Body returns the currently installed body.
func (r *Response) Body() Body { return r.body }

// SetBody installs b as the current body.
func (r *Response) SetBody(b Body) { r.body = b }

// Write writes p to the current body.
func (r *Response) Write(p []byte) (int, error) { return r.body.Write(p) }

// WriteString writes s to the current body.
func (r *Response) WriteString(s string) (int, error) {
	return io.WriteString(r.body, s)
}

// Flush flushes the current body.
func (r *Response) Flush() error { return r.body.Flush() }

// HeadersSent reports whether the status line and headers have been
// committed to the transport.
func (r *Response) HeadersSent() bool { return r.sent }

// Commit marks the headers as sent. On the first call it returns the status
// code and a copy of the header for the sink to serialize; later calls
// return ok == false.
func (r *Response) Commit() (status int, header http.Header, ok bool) {
	if r.sent {
		return 0, nil, false
	}
	r.sent = true
	return r.StatusCode, r.header.Clone(), true
}

// CanRestart reports whether the response can still be discarded and
// rewritten: no headers sent yet, and the current body can seek. A
// buffering transformer in the chain makes the body seekable even over a
// streaming transport.
func (r *Response) CanRestart() bool {
	return !r.sent && r.body.CanSeek()
}

// Restart discards unflushed output and all header state so a different
// response can be written from scratch. It returns ErrRestartNotPermitted
// when CanRestart is false.
func (r *Response) Restart() error {
	if !r.CanRestart() {
		return ErrRestartNotPermitted
	}
	if err := r.body.Truncate(0); err != nil {
		return err
	}
	clear(r.header)
	r.StatusCode = http.StatusOK
	return nil
}

// Settler returns the currently registered settle participant, or nil.
func (r *Response) Settler() Settler { return r.settler }

// SetSettler registers s as the current settle participant.
func (r *Response) SetSettler(s Settler) { r.settler = s }

// EnsureSettled notifies the current settle participant, if any. After it
// returns, every participating transformer that had not yet decided has
// committed to pass-through.
func (r *Response) EnsureSettled() {
	if r.settler != nil {
		r.settler.EnsureSettled()
	}
}
