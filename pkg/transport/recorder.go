package transport

import (
	"bytes"
	"io"
	"net/http"
)

// Recorder is an in-memory sink. A streaming recorder behaves like a network
// connection: the first write or flush commits the headers and bytes can
// never be taken back. A seekable recorder behaves like a file: nothing is
// committed until Finish, and Truncate(0) discards everything written.
type Recorder struct {
	// Status and Header hold what was committed, valid once Committed is true.
	Status    int
	Header    http.Header
	Committed bool

	// Flushes counts Flush calls that reached the sink.
	Flushes int

	// Err, when set, is returned by every Write and Flush.
	Err error

	resp     *Response
	seekable bool
	buf      bytes.Buffer
}

// NewRecorder returns an Exchange for req whose response writes into the
// returned Recorder.
func NewRecorder(req *http.Request, seekable bool) (*Exchange, *Recorder) {
	rec := &Recorder{seekable: seekable}
	x := NewExchange(req, rec)
	rec.resp = x.Response
	return x, rec
}

func (rec *Recorder) commit() {
	if status, header, ok := rec.resp.Commit(); ok {
		rec.Status = status
		rec.Header = header
		rec.Committed = true
	}
}

// Write implements Body.
func (rec *Recorder) Write(p []byte) (int, error) {
	if rec.Err != nil {
		return 0, rec.Err
	}
	if !rec.seekable {
		rec.commit()
	}
	return rec.buf.Write(p)
}

// Flush implements Body.
func (rec *Recorder) Flush() error {
	if rec.Err != nil {
		return rec.Err
	}
	if !rec.seekable {
		rec.commit()
	}
	rec.Flushes++
	return nil
}

// Len implements Body.
func (rec *Recorder) Len() int64 { return int64(rec.buf.Len()) }

// Seek implements Body.
func (rec *Recorder) Seek(offset int64, whence int) (int64, error) {
	pos := rec.Len()
	if whence == io.SeekCurrent && offset == 0 {
		return pos, nil
	}
	target := SeekTarget(pos, pos, offset, whence)
	if target != 0 {
		return pos, ErrOutOfRange
	}
	if err := rec.Truncate(0); err != nil {
		return pos, err
	}
	return 0, nil
}

// Truncate implements Body.
func (rec *Recorder) Truncate(size int64) error {
	if size != 0 {
		return ErrOutOfRange
	}
	if !rec.seekable {
		return ErrNotSeekable
	}
	rec.buf.Reset()
	return nil
}

// CanSeek implements Body.
func (rec *Recorder) CanSeek() bool { return rec.seekable }

// Finish commits the headers if nothing did so yet. The host calls it once
// the stage chain has returned.
func (rec *Recorder) Finish() {
	rec.commit()
}

// Bytes returns everything written so far.
func (rec *Recorder) Bytes() []byte { return rec.buf.Bytes() }

// String returns everything written so far as a string.
func (rec *Recorder) String() string { return rec.buf.String() }
