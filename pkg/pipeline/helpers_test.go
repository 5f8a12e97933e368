package pipeline

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/http/httputil"
	"strconv"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/rhuss/respipe/pkg/transport"
)

// serve runs app behind mw for req and finishes the recorder the way a host
// would once the chain returns.
func serve(mw transport.Middleware, req *http.Request, seekable bool, app transport.StageFunc) (*transport.Exchange, *transport.Recorder, error) {
	x, rec := transport.NewRecorder(req, seekable)
	err := mw(app).Serve(context.Background(), x)
	rec.Finish()
	return x, rec, err
}

func newRequest(header ...string) *http.Request {
	req := httptest.NewRequest("GET", "/", nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Add(header[i], header[i+1])
	}
	return req
}

func writeAll(parts ...string) transport.StageFunc {
	return func(_ context.Context, x *transport.Exchange) error {
		for _, p := range parts {
			if _, err := x.Response.WriteString(p); err != nil {
				return err
			}
		}
		return nil
	}
}

func textLines(n int) string {
	var sb strings.Builder
	for i := 1; i <= n; i++ {
		sb.WriteString("This is text for line ")
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString("\r\n")
	}
	return sb.String()
}

func dechunk(t *testing.T, p []byte) string {
	t.Helper()
	out, err := io.ReadAll(httputil.NewChunkedReader(bytes.NewReader(p)))
	if err != nil {
		t.Fatalf("decoding chunked body: %v", err)
	}
	return string(out)
}

func gunzip(t *testing.T, p []byte) string {
	t.Helper()
	zr, err := gzip.NewReader(bytes.NewReader(p))
	if err != nil {
		t.Fatalf("opening gzip stream: %v", err)
	}
	out, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("decompressing: %v", err)
	}
	return string(out)
}
