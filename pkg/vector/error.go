package vector

import "errors"

var (
	// ErrUnavailable is returned when the vector store backend is
	// unreachable. Callers may retry; an empty result is never substituted.
	ErrUnavailable = errors.New("vector store unavailable")

	// ErrDimensionMismatch is returned when an entry's vector length does
	// not match the collection dimension. This is a fatal configuration
	// error, not a retry case.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
