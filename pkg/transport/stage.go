package transport

import (
	"context"
	"net/http"
)

// Exchange is the per-request state shared by every stage: the inbound
// request and the response being produced for it.
type Exchange struct {
	Request  *http.Request
	Response *Response
}

// NewExchange creates an Exchange whose response writes to sink.
func NewExchange(req *http.Request, sink Body) *Exchange {
	return &Exchange{
		Request:  req,
		Response: NewResponse(sink),
	}
}

// Stage processes one request. The host invokes the outermost stage once
// per request; every middleware wraps the stage after it.
type Stage interface {
	Serve(ctx context.Context, x *Exchange) error
}

// StageFunc is an adapter that allows using an ordinary function as a Stage.
type StageFunc func(ctx context.Context, x *Exchange) error

// Serve calls f(ctx, x).
func (f StageFunc) Serve(ctx context.Context, x *Exchange) error {
	return f(ctx, x)
}
