// Package demo holds the application stages that exercise the response
// pipeline: a page of text, and middleware that settles, flushes, and
// substitutes an error page.
package demo

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/respipe/pkg/config"
	"github.com/rhuss/respipe/pkg/observability"
	"github.com/rhuss/respipe/pkg/transport"
	transporthttp "github.com/rhuss/respipe/pkg/transport/http"
)

// DefaultLines is the length of the page served by PageOfText.
const DefaultLines = 500

// Error page texts.
const (
	ErrorPageText      = "This is an error page\r\n"
	AddedErrorPageText = "This is an added-on error page\r\n"
	MoreText           = "This is more text after flushing\r\n"
	SlightlyMoreText   = "And slightly more text after flushing\r\n"
)

// PageOfText writes DefaultLines lines of plain text, one write per line.
func PageOfText(ctx context.Context, x *transport.Exchange) error {
	return writeLines(x, DefaultLines)
}

// Lines writes the number of lines named by the {count} route variable.
func Lines(ctx context.Context, x *transport.Exchange) error {
	n, err := strconv.Atoi(mux.Vars(x.Request)["count"])
	if err != nil || n < 0 {
		x.Response.StatusCode = http.StatusBadRequest
		x.Response.Header().Set("Content-Type", "text/plain")
		_, err := x.Response.WriteString("count must be a non-negative integer\r\n")
		return err
	}
	return writeLines(x, n)
}

func writeLines(x *transport.Exchange, n int) error {
	x.Response.Header().Set("Content-Type", "text/plain")
	for i := 0; i < n; i++ {
		if _, err := x.Response.WriteString("This is text for line " + strconv.Itoa(i) + "\r\n"); err != nil {
			return err
		}
	}
	return nil
}

// EnsureSettled settles the response before the next stage writes, so no
// transformer that has not decided yet will transform it.
func EnsureSettled() transport.Middleware {
	return func(next transport.Stage) transport.Stage {
		return transport.StageFunc(func(ctx context.Context, x *transport.Exchange) error {
			x.Response.EnsureSettled()
			return next.Serve(ctx, x)
		})
	}
}

// RestartErrorPage runs the next stage and then replaces its output with an
// error page. When the response can no longer restart, the error text is
// appended after what was already written.
func RestartErrorPage() transport.Middleware {
	return func(next transport.Stage) transport.Stage {
		return transport.StageFunc(func(ctx context.Context, x *transport.Exchange) error {
			if err := next.Serve(ctx, x); err != nil {
				return err
			}
			resp := x.Response
			if resp.CanRestart() {
				if err := resp.Restart(); err != nil {
					return err
				}
				observability.ErrorPagesTotal.WithLabelValues("replaced").Inc()
				resp.StatusCode = http.StatusInternalServerError
				resp.Header().Set("Content-Type", "text/plain")
				_, err := resp.WriteString(ErrorPageText)
				return err
			}
			observability.ErrorPagesTotal.WithLabelValues("appended").Inc()
			_, err := resp.WriteString(AddedErrorPageText)
			return err
		})
	}
}

// FlushAndAddMoreText runs the next stage, flushes, and writes two more
// lines.
func FlushAndAddMoreText() transport.Middleware {
	return func(next transport.Stage) transport.Stage {
		return transport.StageFunc(func(ctx context.Context, x *transport.Exchange) error {
			if err := next.Serve(ctx, x); err != nil {
				return err
			}
			if err := x.Response.Flush(); err != nil {
				return err
			}
			if _, err := x.Response.WriteString(MoreText); err != nil {
				return err
			}
			_, err := x.Response.WriteString(SlightlyMoreText)
			return err
		})
	}
}

// Mount registers the demo routes on r. The catch-all page of text is
// registered last, so routes added to r beforehand take precedence.
func Mount(r *mux.Router, a *transporthttp.Adapter) {
	page := transport.StageFunc(PageOfText)

	r.PathPrefix("/settle").Handler(a.Handle(EnsureSettled()(page)))
	r.PathPrefix("/restart").Handler(a.Handle(RestartErrorPage()(page)))
	r.PathPrefix("/norestart").Handler(a.Handle(transport.Chain(RestartErrorPage(), FlushAndAddMoreText())(page)))
	r.PathPrefix("/flush").Handler(a.Handle(FlushAndAddMoreText()(page)))
	r.Handle("/lines/{count}", a.HandleFunc(Lines)).Methods(http.MethodGet, http.MethodHead)
	r.PathPrefix("/").Handler(a.Handle(page))
}

// Routes returns the server routes: a health check, the metrics endpoint
// when enabled, and the demo routes.
func Routes(metrics config.MetricsConfig) transporthttp.Routes {
	return func(a *transporthttp.Adapter) http.Handler {
		r := mux.NewRouter()
		r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok\n"))
		}).Methods(http.MethodGet)
		if metrics.Enabled {
			r.Handle(metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		}
		Mount(r, a)
		return r
	}
}
