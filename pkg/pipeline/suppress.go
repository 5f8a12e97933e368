package pipeline

import (
	"context"
	"net/http"

	"github.com/rhuss/respipe/pkg/debug"
	"github.com/rhuss/respipe/pkg/transport"
)

// SuppressNegotiation returns middleware whose settle participant strips
// the Accept-Encoding and TE request headers when the response is settled,
// after every participant registered later has settled itself. Anything
// that inspects the request afterwards sees no negotiation at all.
//
// Register it before the transformers it should outlive, typically first.
func SuppressNegotiation() transport.Middleware {
	return func(next transport.Stage) transport.Stage {
		return transport.StageFunc(func(ctx context.Context, x *transport.Exchange) error {
			sc := enter(x.Response)
			defer sc.exit()

			sc.register(&negotiationSuppressor{req: x.Request, prior: sc.priorSettler})
			return next.Serve(ctx, x)
		})
	}
}

type negotiationSuppressor struct {
	req   *http.Request
	prior transport.Settler
}

func (s *negotiationSuppressor) EnsureSettled() {
	s.req.Header.Del("Accept-Encoding")
	s.req.Header.Del("TE")
	debug.Log("pipeline", "negotiation suppressed")
	if s.prior != nil {
		s.prior.EnsureSettled()
	}
}
