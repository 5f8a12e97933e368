package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rhuss/respipe/pkg/debug"
	"github.com/rhuss/respipe/pkg/transport"
)

// connSink is the transport.Body at the bottom of every pipeline. It writes
// straight to a hijacked HTTP/1.1 connection, serializing the status line
// and headers on the first write or flush. Bytes handed to it are gone:
// it cannot seek, and a reset fails with transport.ErrNotSeekable.
type connSink struct {
	ctx  context.Context
	conn net.Conn
	bw   *bufio.Writer
	resp *transport.Response

	// head discards body bytes while still counting them.
	head    bool
	written int64
}

func newConnSink(ctx context.Context, conn net.Conn, bw *bufio.Writer, head bool) *connSink {
	return &connSink{ctx: ctx, conn: conn, bw: bw, head: head}
}

// commit writes the status line and headers once. The connection is closed
// after every response, which delimits bodies that carry neither a length
// nor a transfer-coding.
func (s *connSink) commit() error {
	status, header, ok := s.resp.Commit()
	if !ok {
		return nil
	}
	header.Set("Connection", "close")
	if _, ok := header["Date"]; !ok {
		header.Set("Date", time.Now().UTC().Format(http.TimeFormat))
	}

	if _, err := fmt.Fprintf(s.bw, "HTTP/1.1 %03d %s\r\n", status, statusText(status)); err != nil {
		return err
	}
	if err := header.Write(s.bw); err != nil {
		return err
	}
	_, err := io.WriteString(s.bw, "\r\n")
	debug.Log("transport", "headers committed", "status", status)
	return err
}

func (s *connSink) Write(p []byte) (int, error) {
	if err := s.ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.commit(); err != nil {
		return 0, err
	}
	s.written += int64(len(p))
	if s.head {
		return len(p), nil
	}
	return s.bw.Write(p)
}

func (s *connSink) Flush() error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	if err := s.commit(); err != nil {
		return err
	}
	return s.bw.Flush()
}

func (s *connSink) Len() int64 { return s.written }

func (s *connSink) Seek(offset int64, whence int) (int64, error) {
	if whence == io.SeekCurrent && offset == 0 {
		return s.written, nil
	}
	return s.written, transport.ErrNotSeekable
}

func (s *connSink) Truncate(size int64) error {
	if size != 0 {
		return transport.ErrOutOfRange
	}
	return transport.ErrNotSeekable
}

func (s *connSink) CanSeek() bool { return false }

// finish commits the headers if no byte was written and pushes everything
// buffered onto the wire. It runs even after cancellation so a committed
// response is not left half in memory.
func (s *connSink) finish() error {
	if err := s.commit(); err != nil {
		return err
	}
	return s.bw.Flush()
}

// writeError replaces a response that failed before anything was sent.
func (s *connSink) writeError(status int, requestID string) error {
	s.resp.StatusCode = status
	header := s.resp.Header()
	clear(header)
	if requestID != "" {
		header.Set(transport.RequestIDHeader, requestID)
	}
	body := statusText(status) + "\n"
	header.Set("Content-Type", "text/plain; charset=utf-8")
	header.Set("Content-Length", strconv.Itoa(len(body)))
	if err := s.commit(); err != nil {
		return err
	}
	if !s.head {
		if _, err := io.WriteString(s.bw, body); err != nil {
			return err
		}
	}
	return s.bw.Flush()
}

func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "status code " + strconv.Itoa(code)
}
