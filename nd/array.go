package nd

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ProcStep records one named processing step and the parameter set it ran
// with. The history is append-only.
type ProcStep struct {
	Name   string
	Params map[string]any
}

// Array binds an n-dimensional complex buffer to named, ordered axes.
//
// The buffer is stored flat in row-major order; shape is derived from the
// coordinate vector lengths and kept consistent with dims and coords by
// every operation. Attrs carries free-form metadata (acquisition
// parameters such as "nmr_frequency") that travels with the data through
// the processing chain.
type Array struct {
	values []complex128
	shape  []int
	dims   []string
	coords [][]float64

	// Attrs holds free-form named metadata.
	Attrs map[string]any

	history []ProcStep

	strict bool
	diag   io.Writer
}

// Option configures Array construction.
type Option func(*Array)

// WithAttrs sets the initial metadata map. The map is copied shallowly.
func WithAttrs(attrs map[string]any) Option {
	return func(a *Array) {
		for k, v := range attrs {
			a.Attrs[k] = v
		}
	}
}

// WithStrict makes unsupported arithmetic operands return ErrOperand
// instead of the lenient diagnostic-and-nil contract.
func WithStrict() Option {
	return func(a *Array) {
		a.strict = true
	}
}

// New constructs an Array from a flat row-major buffer, dimension names,
// and per-dimension coordinate vectors. The buffer and every coordinate
// vector are copied; the result shares no state with its inputs.
//
// len(dims) must equal len(coords), dimension names must be unique and
// non-empty, and the product of the coordinate lengths must equal
// len(values). Violations fail with a *ShapeError or wrapped sentinel
// identifying the mismatch; an inconsistent Array is never returned.
func New(values []complex128, dims []string, coords [][]float64, opts ...Option) (*Array, error) {
	if len(dims) != len(coords) {
		return nil, &ShapeError{Index: -1, Want: len(dims), Got: len(coords)}
	}

	seen := make(map[string]struct{}, len(dims))
	for _, d := range dims {
		if d == "" {
			return nil, ErrAxisName
		}
		if _, ok := seen[d]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDimExists, d)
		}
		seen[d] = struct{}{}
	}

	shape := make([]int, len(coords))
	for i, c := range coords {
		shape[i] = len(c)
	}
	if shapeSize(shape) != len(values) {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrBufferSize, len(values), shape)
	}

	a := &Array{
		values: append([]complex128(nil), values...),
		shape:  shape,
		dims:   append([]string(nil), dims...),
		coords: copyCoords(coords),
		Attrs:  make(map[string]any),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a, nil
}

// NewReal constructs an Array from a real-valued buffer.
func NewReal(values []float64, dims []string, coords [][]float64, opts ...Option) (*Array, error) {
	cv := make([]complex128, len(values))
	for i, v := range values {
		cv[i] = complex(v, 0)
	}
	return New(cv, dims, coords, opts...)
}

// FromAxes constructs an Array whose dims and coords come from a
// Collection, in collection order.
func FromAxes(values []complex128, axes *Collection, opts ...Option) (*Array, error) {
	return New(values, axes.Names(), axes.Coords(), opts...)
}

func copyCoords(coords [][]float64) [][]float64 {
	out := make([][]float64, len(coords))
	for i, c := range coords {
		out[i] = append([]float64(nil), c...)
	}
	return out
}

// Values returns the backing buffer in row-major order. The slice is live:
// element writes are visible to the array, but callers must not grow or
// replace it. Structural changes go through the Array operations.
func (a *Array) Values() []complex128 { return a.values }

// Shape returns a copy of the buffer shape.
func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.dims) }

// Size returns the total element count.
func (a *Array) Size() int { return len(a.values) }

// Dims returns a copy of the ordered dimension names.
func (a *Array) Dims() []string { return append([]string(nil), a.dims...) }

// IndexOf returns the ordinal position of dim.
func (a *Array) IndexOf(dim string) (int, error) {
	for i, d := range a.dims {
		if d == dim {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrDimNotFound, dim)
}

// Len returns the length of the named dimension.
func (a *Array) Len(dim string) (int, error) {
	i, err := a.IndexOf(dim)
	if err != nil {
		return 0, err
	}
	return a.shape[i], nil
}

// CoordsOf returns the coordinate vector of the named dimension. The slice
// is live; callers must treat it as read-only.
func (a *Array) CoordsOf(dim string) ([]float64, error) {
	i, err := a.IndexOf(dim)
	if err != nil {
		return nil, err
	}
	return a.coords[i], nil
}

// Coords returns the coordinate vectors in dimension order. The inner
// slices are live; callers must treat them as read-only.
func (a *Array) Coords() [][]float64 {
	return append([][]float64(nil), a.coords...)
}

// AddProcStep appends a named processing step with its parameter set to
// the processing history.
func (a *Array) AddProcStep(name string, params map[string]any) {
	p := make(map[string]any, len(params))
	for k, v := range params {
		p[k] = v
	}
	a.history = append(a.history, ProcStep{Name: name, Params: p})
}

// History returns the ordered processing history.
func (a *Array) History() []ProcStep {
	return append([]ProcStep(nil), a.history...)
}

// SetDiagnostics redirects lenient-mode arithmetic diagnostics. The
// default writer is os.Stderr.
func (a *Array) SetDiagnostics(w io.Writer) { a.diag = w }

// SetStrict toggles the arithmetic failure mode at runtime.
func (a *Array) SetStrict(strict bool) { a.strict = strict }

// Strict reports whether unsupported operands fail with ErrOperand.
func (a *Array) Strict() bool { return a.strict }

func (a *Array) diagnostics() io.Writer {
	if a.diag != nil {
		return a.diag
	}
	return os.Stderr
}

// Copy returns a deep copy: independent buffer, dims, coordinate vectors,
// history, and a shallow copy of the Attrs map entries.
func (a *Array) Copy() *Array {
	out := &Array{
		values: append([]complex128(nil), a.values...),
		shape:  append([]int(nil), a.shape...),
		dims:   append([]string(nil), a.dims...),
		coords: copyCoords(a.coords),
		Attrs:  make(map[string]any, len(a.Attrs)),
		strict: a.strict,
		diag:   a.diag,
	}
	for k, v := range a.Attrs {
		out.Attrs[k] = v
	}
	for _, h := range a.history {
		p := make(map[string]any, len(h.Params))
		for k, v := range h.Params {
			p[k] = v
		}
		out.history = append(out.history, ProcStep{Name: h.Name, Params: p})
	}
	return out
}

// consistent reports whether shape, dims, and coords agree. Every
// operation maintains this; it is exercised directly by the test suite.
func (a *Array) consistent() bool {
	if len(a.dims) != len(a.coords) || len(a.dims) != len(a.shape) {
		return false
	}
	for i, c := range a.coords {
		if len(c) != a.shape[i] {
			return false
		}
	}
	return shapeSize(a.shape) == len(a.values)
}

// String returns a compact summary of shape, dims, and metadata.
func (a *Array) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "nd.Array(shape=%v, dims=%v", a.shape, a.dims)
	if len(a.Attrs) > 0 {
		fmt.Fprintf(&b, ", attrs=%d", len(a.Attrs))
	}
	if len(a.history) > 0 {
		fmt.Fprintf(&b, ", steps=%d", len(a.history))
	}
	b.WriteString(")")
	return b.String()
}
