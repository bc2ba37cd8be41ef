package gl

import (
	"errors"
	"fmt"
)

// Errors shared by context implementations.
var (
	// ErrUnsupported reports that a context cannot express the requested
	// state. Tests hitting it are reported as not supported, not failed.
	ErrUnsupported = errors.New("gl: unsupported by context")

	// ErrInvalidOperation reports a call made in the wrong state, such as
	// drawing without a program.
	ErrInvalidOperation = errors.New("gl: invalid operation")

	// ErrOutOfBounds reports a vertex or index fetch past the end of its
	// source.
	ErrOutOfBounds = errors.New("gl: fetch out of bounds")
)

// UnsupportedError describes which state a context could not express.
// It matches ErrUnsupported with errors.Is.
type UnsupportedError struct {
	Op     string
	Reason string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("gl: %s unsupported: %s", e.Op, e.Reason)
}

// Is reports whether target is ErrUnsupported.
func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

// Unsupported returns an *UnsupportedError for op.
func Unsupported(op, format string, args ...any) error {
	return &UnsupportedError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
