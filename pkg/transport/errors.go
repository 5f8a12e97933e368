package transport

import "errors"

var (
	// ErrOutOfRange is returned when a body is asked to seek or truncate to
	// anything other than zero.
	ErrOutOfRange = errors.New("transport: position out of range, only zero is supported")

	// ErrNotSeekable is returned by sinks that cannot discard written bytes.
	ErrNotSeekable = errors.New("transport: body is not seekable")

	// ErrRestartNotPermitted is returned by Response.Restart when headers
	// were already sent or the body cannot be reset. Callers check
	// Response.CanRestart first.
	ErrRestartNotPermitted = errors.New("transport: response cannot be restarted")

	// ErrPanic wraps a panic recovered while serving a request.
	ErrPanic = errors.New("transport: panic while serving request")
)
