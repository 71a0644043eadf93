package nd

import (
	"errors"
	"fmt"
)

var (
	// ErrAxisName indicates an empty or otherwise invalid dimension name.
	ErrAxisName = errors.New("nd: axis name must be a non-empty string")
	// ErrNonUniform indicates axis values that cannot be reduced to a
	// (start, stop, step) progression.
	ErrNonUniform = errors.New("nd: axis values must be evenly spaced to reduce")
	// ErrNoSpan indicates span arithmetic on an axis that only exists as an
	// irregular sample sequence.
	ErrNoSpan = errors.New("nd: axis has no (start, stop, step) form")
	// ErrNilAxis indicates a nil axis passed to a collection.
	ErrNilAxis = errors.New("nd: axis must not be nil")
	// ErrAxisNotFound indicates a collection lookup for an unknown name.
	ErrAxisNotFound = errors.New("nd: axis not found")
	// ErrDimNotFound indicates an operation referencing a dimension the
	// array does not have.
	ErrDimNotFound = errors.New("nd: dimension not found")
	// ErrDimExists indicates an attempt to add a dimension name twice.
	ErrDimExists = errors.New("nd: dimension already exists")
	// ErrIndexPairs indicates an odd number of label/selector tokens.
	ErrIndexPairs = errors.New("nd: index selectors must be label/selector pairs")
	// ErrIndexSelector indicates a selector that is neither an int nor a Range.
	ErrIndexSelector = errors.New("nd: index selector not understood")
	// ErrIndexRange indicates a selector resolving outside the dimension.
	ErrIndexRange = errors.New("nd: index out of range")
	// ErrDimsMismatch indicates concatenation operands whose dimension
	// sets differ.
	ErrDimsMismatch = errors.New("nd: dims do not match")
	// ErrOperand indicates an arithmetic operand of unsupported type.
	// In lenient mode the operation reports a diagnostic instead.
	ErrOperand = errors.New("nd: operand type not supported")
	// ErrBroadcast indicates an operand whose shape does not broadcast to
	// the receiver's shape.
	ErrBroadcast = errors.New("nd: operand shape does not broadcast to array shape")
	// ErrBufferSize indicates a flat buffer whose length disagrees with
	// the product of the coordinate vector lengths.
	ErrBufferSize = errors.New("nd: buffer length does not match coordinate lengths")
)

// ShapeError reports a construction-time disagreement between buffer
// shape, dimension labels, and coordinate vectors.
type ShapeError struct {
	Dim   string // offending dimension name, empty for rank-level mismatches
	Index int    // position of the dimension, -1 for rank-level mismatches
	Want  int
	Got   int
}

func (e *ShapeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("nd: rank mismatch: %d dims for %d coordinate vectors", e.Want, e.Got)
	}
	return fmt.Sprintf("nd: dimension %q (axis %d): coordinate length %d does not match buffer length %d",
		e.Dim, e.Index, e.Got, e.Want)
}
