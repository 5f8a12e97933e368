// Command demo walks through the response pipeline in-process and prints
// what each demo route would put on the wire.
package main

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"

	"github.com/rhuss/respipe/pkg/demo"
	"github.com/rhuss/respipe/pkg/pipeline"
	"github.com/rhuss/respipe/pkg/transport"
)

type scenario struct {
	title   string
	header  []string
	stage   transport.Stage
	summary bool
}

func main() {
	fmt.Println("=== respipe pipeline demo ===")

	chain := transport.Chain(
		pipeline.SuppressNegotiation(),
		pipeline.Chunked(),
		pipeline.Buffer(),
		pipeline.Gzip(),
	)
	page := transport.StageFunc(demo.PageOfText)
	short := transport.StageFunc(func(_ context.Context, x *transport.Exchange) error {
		x.Response.Header().Set("Content-Type", "text/plain")
		x.Response.WriteString("first line\r\n")
		_, err := x.Response.WriteString("second line\r\n")
		return err
	})

	scenarios := []scenario{
		{title: "Page of text, no negotiation", stage: chain(page), summary: true},
		{title: "Page of text, Accept-Encoding: gzip", header: []string{"Accept-Encoding", "gzip"}, stage: chain(page), summary: true},
		{title: "Settled before writing", header: []string{"Accept-Encoding", "gzip"}, stage: chain(demo.EnsureSettled()(short))},
		{title: "Error page after restart", stage: chain(demo.RestartErrorPage()(short))},
		{title: "Flush, then no restart", stage: chain(transport.Chain(demo.RestartErrorPage(), demo.FlushAndAddMoreText())(short))},
	}

	for i, sc := range scenarios {
		req := httptest.NewRequest("GET", "/", nil)
		for j := 0; j+1 < len(sc.header); j += 2 {
			req.Header.Set(sc.header[j], sc.header[j+1])
		}
		x, rec := transport.NewRecorder(req, false)
		err := sc.stage.Serve(context.Background(), x)
		rec.Finish()

		fmt.Printf("\n[%d] %s\n", i+1, sc.title)
		if err != nil {
			fmt.Printf("    FAILED: %v\n", err)
			continue
		}
		fmt.Printf("    Status: %d\n", rec.Status)
		for _, key := range []string{"Content-Type", "Content-Length", "Content-Encoding", "Transfer-Encoding"} {
			if v := rec.Header.Get(key); v != "" {
				fmt.Printf("    %s: %s\n", key, v)
			}
		}
		if sc.summary {
			fmt.Printf("    Body: %d bytes on the wire\n", rec.Len())
			continue
		}
		fmt.Println("    Body:")
		for _, line := range strings.SplitAfter(rec.String(), "\n") {
			if line != "" {
				fmt.Printf("      %q\n", line)
			}
		}
	}

	fmt.Println("\n=== demo complete ===")
}
