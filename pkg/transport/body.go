package transport

import "io"

// Body is the writable response stream. Host sinks and the delegating bodies
// installed by transformers both implement it, so a transformer never knows
// whether it wraps the raw transport or another transformer.
type Body interface {
	io.Writer

	// Flush pushes any pending bytes toward the transport.
	Flush() error

	// Len reports the number of bytes accepted since the last reset.
	Len() int64

	// Seek only accepts a resulting position of zero, which resets the
	// body. Seek(0, io.SeekCurrent) reports the position without side
	// effects.
	Seek(offset int64, whence int) (int64, error)

	// Truncate only accepts zero; any other size fails with ErrOutOfRange.
	Truncate(size int64) error

	// CanSeek reports whether the body can be reset to zero.
	CanSeek() bool
}

// Settler is a pre-commit notification participant. EnsureSettled forces
// any undecided transformation into pass-through and then notifies the
// participant that was registered before this one.
type Settler interface {
	EnsureSettled()
}

// SettlerFunc adapts an ordinary function to the Settler interface.
type SettlerFunc func()

// EnsureSettled calls f().
func (f SettlerFunc) EnsureSettled() { f() }

// SeekTarget resolves the absolute position a Seek call asks for, given the
// current position and length of the body.
func SeekTarget(pos, length, offset int64, whence int) int64 {
	switch whence {
	case io.SeekCurrent:
		return pos + offset
	case io.SeekEnd:
		return length + offset
	default:
		return offset
	}
}
