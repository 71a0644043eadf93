package proc

import "errors"

var (
	// ErrDimTooShort is returned when a step needs more samples along the
	// processing dimension than the buffer holds.
	ErrDimTooShort = errors.New("proc: dimension has too few points")

	// ErrMissingAttr is returned when a step needs an array attribute
	// (such as nmr_frequency) that is not present.
	ErrMissingAttr = errors.New("proc: required attribute missing")

	// ErrEmptySelection is returned when an integration window selects no
	// points.
	ErrEmptySelection = errors.New("proc: selection contains no points")

	// ErrPhaseMethod is returned for an unknown autophase method.
	ErrPhaseMethod = errors.New("proc: unknown autophase method")

	// ErrOrder is returned for a negative polynomial order.
	ErrOrder = errors.New("proc: polynomial order must be >= 0")
)
