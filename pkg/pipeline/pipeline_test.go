package pipeline

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/rhuss/respipe/pkg/config"
	"github.com/rhuss/respipe/pkg/transport"
)

func standardChain() transport.Middleware {
	return transport.Chain(SuppressNegotiation(), Chunked(), Buffer(), Gzip())
}

func TestStandardChainBuffersCompressedText(t *testing.T) {
	text := textLines(500)
	_, rec, err := serve(standardChain(), newRequest("Accept-Encoding", "gzip"), false, writeAll(text))
	if err != nil {
		t.Fatalf("Serve() error: %v", err)
	}

	if rec.Header.Get("Content-Encoding") != "gzip" {
		t.Errorf("Content-Encoding = %q, want gzip", rec.Header.Get("Content-Encoding"))
	}
	if rec.Header.Get("Transfer-Encoding") != "" {
		t.Errorf("Transfer-Encoding = %q, want none with a declared length", rec.Header.Get("Transfer-Encoding"))
	}
	if got := rec.Header.Get("Content-Length"); got != strconv.FormatInt(rec.Len(), 10) {
		t.Errorf("Content-Length = %q, want %d", got, rec.Len())
	}
	if got := gunzip(t, rec.Bytes()); got != text {
		t.Errorf("decompressed %d bytes, want %d", len(got), len(text))
	}
}

func TestStandardChainPlainText(t *testing.T) {
	text := textLines(500)
	_, rec, err := serve(standardChain(), newRequest(), false, writeAll(text))
	if err != nil {
		t.Fatalf("Serve() error: %v", err)
	}
	if got := rec.Header.Get("Content-Length"); got != strconv.Itoa(len(text)) {
		t.Errorf("Content-Length = %q, want %d", got, len(text))
	}
	if rec.String() != text {
		t.Error("body differs from the written text")
	}
}

func TestStandardChainRestartReplacesOutput(t *testing.T) {
	app := transport.StageFunc(func(_ context.Context, x *transport.Exchange) error {
		x.Response.StatusCode = http.StatusOK
		x.Response.Header().Set("Content-Type", "text/plain")
		x.Response.WriteString(textLines(10))

		if !x.Response.CanRestart() {
			t.Fatal("CanRestart() = false with a buffer in the chain")
		}
		if err := x.Response.Restart(); err != nil {
			return err
		}
		x.Response.StatusCode = http.StatusInternalServerError
		_, err := x.Response.WriteString("Error page")
		return err
	})
	_, rec, err := serve(standardChain(), newRequest("Accept-Encoding", "gzip"), false, app)
	if err != nil {
		t.Fatalf("Serve() error: %v", err)
	}

	if rec.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Status, http.StatusInternalServerError)
	}
	if rec.Header.Get("Content-Type") != "" {
		t.Error("Content-Type survived the restart")
	}
	if got := gunzip(t, rec.Bytes()); got != "Error page" {
		t.Errorf("decompressed = %q, want %q", got, "Error page")
	}
}

func TestStandardChainFlushPreventsRestart(t *testing.T) {
	text := textLines(10)
	app := transport.StageFunc(func(_ context.Context, x *transport.Exchange) error {
		x.Response.WriteString(text)
		if err := x.Response.Flush(); err != nil {
			return err
		}
		if x.Response.CanRestart() {
			t.Fatal("CanRestart() = true after flush")
		}
		_, err := x.Response.WriteString("More text")
		return err
	})
	_, rec, err := serve(standardChain(), newRequest(), false, app)
	if err != nil {
		t.Fatalf("Serve() error: %v", err)
	}

	if rec.Header.Get("Transfer-Encoding") != "chunked" {
		t.Errorf("Transfer-Encoding = %q, want chunked after an early flush", rec.Header.Get("Transfer-Encoding"))
	}
	if rec.Header.Get("Content-Length") != "" {
		t.Error("Content-Length and chunked both present")
	}
	if got := dechunk(t, rec.Bytes()); got != text+"More text" {
		t.Errorf("decoded body = %q", got)
	}
}

func TestStandardChainSeekableSink(t *testing.T) {
	text := textLines(3)
	_, rec, err := serve(standardChain(), newRequest(), true, writeAll(text))
	if err != nil {
		t.Fatalf("Serve() error: %v", err)
	}
	// The buffer steps aside over a seekable sink, so chunking frames it.
	if got := dechunk(t, rec.Bytes()); got != text {
		t.Errorf("decoded body = %q, want %q", got, text)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Defaults().Pipeline
	cfg.Chunked = false
	cfg.Gzip.Enabled = false

	text := "config driven"
	_, rec, err := serve(FromConfig(cfg), newRequest("Accept-Encoding", "gzip"), false, writeAll(text))
	if err != nil {
		t.Fatalf("Serve() error: %v", err)
	}
	if rec.String() != text {
		t.Errorf("body = %q, want %q", rec.String(), text)
	}
	if rec.Header.Get("Content-Length") != strconv.Itoa(len(text)) {
		t.Errorf("Content-Length = %q, want %d", rec.Header.Get("Content-Length"), len(text))
	}
}

func TestFromConfigNothingEnabled(t *testing.T) {
	var cfg config.PipelineConfig
	_, rec, err := serve(FromConfig(cfg), newRequest("Accept-Encoding", "gzip"), false, writeAll("raw"))
	if err != nil {
		t.Fatalf("Serve() error: %v", err)
	}
	if rec.String() != "raw" || len(rec.Header) != 0 {
		t.Errorf("empty pipeline changed the response: %q %v", rec.String(), rec.Header)
	}
}
