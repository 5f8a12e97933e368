package pipeline

import (
	"context"

	"github.com/rhuss/respipe/pkg/transport"
)

// scope remembers the body and settle participant that were current when a
// transformer's stage started, so both can be put back when it ends.
type scope struct {
	resp         *transport.Response
	priorBody    transport.Body
	priorSettler transport.Settler
}

func enter(resp *transport.Response) scope {
	return scope{
		resp:         resp,
		priorBody:    resp.Body(),
		priorSettler: resp.Settler(),
	}
}

// install makes h the target of every write to the response.
func (s scope) install(h Handler) {
	s.resp.SetBody(NewDelegatingBody(s.priorBody, h))
}

// register makes st the current settle participant.
func (s scope) register(st transport.Settler) {
	s.resp.SetSettler(st)
}

// exit restores the displaced body and settle participant.
func (s scope) exit() {
	s.resp.SetBody(s.priorBody)
	s.resp.SetSettler(s.priorSettler)
}

// serveThenFinish runs next and, only if it succeeded and the request was
// not cancelled, the transformer's finishing step.
func serveThenFinish(ctx context.Context, next transport.Stage, x *transport.Exchange, finish func() error) error {
	if err := next.Serve(ctx, x); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return finish()
}
