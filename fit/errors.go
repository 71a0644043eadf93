package fit

import "errors"

var (
	// ErrFit is returned when a fit fails to converge or yields an
	// unphysical parameter.
	ErrFit = errors.New("fit: fit failed")

	// ErrRank is returned when the processing buffer is not
	// one-dimensional.
	ErrRank = errors.New("fit: buffer must be one-dimensional")

	// ErrKind is returned for an unknown fit kind.
	ErrKind = errors.New("fit: unknown fit kind")

	// ErrInput is returned for inconsistent or empty input series.
	ErrInput = errors.New("fit: invalid input series")
)
