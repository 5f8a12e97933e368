package pipeline

import (
	"github.com/rhuss/respipe/pkg/debug"
	"github.com/rhuss/respipe/pkg/observability"
)

// Handler is the per-request state machine behind a DelegatingBody.
type Handler interface {
	// Name identifies the transformer in logs and metrics.
	Name() string

	// FullBuffer reports whether the handler holds the entire response in
	// memory, which lets its body accept a reset over a streaming sink.
	FullBuffer() bool

	Write(p []byte) (int, error)
	Flush() error

	// Restart discards the decision taken for the current generation. It
	// fails when bytes already left the handler and cannot be taken back.
	Restart() error
}

// state is the decision of one handler for one generation.
type state int

const (
	stateUninitialized state = iota
	stateWorking
	stateNotWorking
	// stateFlushed is terminal and only reached by the buffer handler.
	stateFlushed
)

func (s state) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateWorking:
		return "working"
	case stateNotWorking:
		return "not_working"
	case stateFlushed:
		return "flushed"
	}
	return "unknown"
}

// recordDecision reports the outcome of a transition out of
// stateUninitialized.
func recordDecision(handler string, s state) {
	decision := observability.DecisionNotWorking
	if s == stateWorking {
		decision = observability.DecisionWorking
	}
	observability.TransformerDecisionsTotal.WithLabelValues(handler, decision).Inc()
	debug.Log("pipeline", "decision", "handler", handler, "state", s.String())
}

// recordSettled reports a decision forced by the settle chain.
func recordSettled(handler string) {
	observability.TransformerDecisionsTotal.WithLabelValues(handler, observability.DecisionSettled).Inc()
	debug.Log("pipeline", "settled", "handler", handler)
}
