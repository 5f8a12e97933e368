// Package transport defines the request/response object model and the stage
// chain that response transformers plug into.
//
// The host (see pkg/transport/http) creates one Exchange per request. The
// Exchange carries the inbound *http.Request and a Response whose Body is the
// raw sink supplied by the host. Stages run in a chain built from Middleware:
// each middleware receives the next Stage and returns a replacement Stage,
// so Chain(a, b, c) produces a(b(c(stage))).
//
// # Bodies
//
// Body is the write/flush/seek contract shared by host sinks and by the
// delegating bodies that transformers install. A transformer displaces the
// current body for the duration of its stage and restores it on every exit
// path. Seeking and truncation only accept zero; a zero reset discards
// unflushed output (see Response.Restart).
//
// # Settling
//
// A Settler is a pre-commit notification participant. Response.EnsureSettled
// calls the current participant, which settles its own pending decision and
// then notifies the participant it displaced, so every not-yet-decided
// transformer commits to pass-through before an irrevocable flush.
//
// # Middleware
//
// Built-in middleware provides panic recovery, request ID assignment
// (X-Request-ID) and structured logging via log/slog.
package transport
