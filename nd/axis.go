package nd

import "math"

// spacing tolerance used when reducing a sample sequence to a span.
const reduceEpsilon = 1e-9

// Span describes an arithmetic coordinate progression [Start, Stop) with
// the given Step. A zero Step is treated as 1 on materialization.
type Span struct {
	Start float64
	Stop  float64
	Step  float64
}

func (s Span) step() float64 {
	if s.Step == 0 {
		return 1
	}
	return s.Step
}

// count returns the number of samples the span materializes to.
func (s Span) count() int {
	step := s.step()
	n := int(math.Ceil((s.Stop - s.Start) / step))
	if n < 0 {
		return 0
	}
	return n
}

// values materializes the progression.
func (s Span) values() []float64 {
	step := s.step()
	n := s.count()
	out := make([]float64, n)
	for i := range out {
		out[i] = s.Start + float64(i)*step
	}
	return out
}

// Axis is a single named coordinate dimension. It exists in one of two
// states: span-backed (a (start, stop, step) descriptor, materialized
// lazily and cached) or sequence-backed (an explicit, possibly irregular
// sample vector). The dimension name is immutable after construction.
type Axis struct {
	name string
	span *Span     // non-nil when span-backed
	seq  []float64 // explicit samples when sequence-backed
	mat  []float64 // cached materialization of span
}

// NewAxis builds a sequence-backed axis from explicit samples. The values
// are copied. If the samples form a uniform progression the axis silently
// gains a span form, so Reduce and span arithmetic work on it.
func NewAxis(name string, values []float64) (*Axis, error) {
	if name == "" {
		return nil, ErrAxisName
	}

	seq := append([]float64(nil), values...)
	ax := &Axis{name: name, seq: seq}
	if sp, ok := reduceSeq(seq); ok {
		ax.span = &sp
		ax.mat = seq
		ax.seq = nil
	}
	return ax, nil
}

// NewAxisRange builds a span-backed axis covering [start, stop) with the
// given step. A zero step means 1.
func NewAxisRange(name string, start, stop, step float64) (*Axis, error) {
	if name == "" {
		return nil, ErrAxisName
	}
	return &Axis{name: name, span: &Span{Start: start, Stop: stop, Step: step}}, nil
}

// NewAxisSpan builds a span-backed axis covering [start, stop) with step 1.
func NewAxisSpan(name string, start, stop float64) (*Axis, error) {
	return NewAxisRange(name, start, stop, 1)
}

// NewAxisStop builds a span-backed axis covering [0, stop) with step 1.
func NewAxisStop(name string, stop float64) (*Axis, error) {
	return NewAxisRange(name, 0, stop, 1)
}

// Name returns the dimension name.
func (a *Axis) Name() string { return a.name }

// Values returns the materialized coordinate samples. For span-backed axes
// the result is computed on first call and cached. The returned slice is
// shared with the axis; callers must treat it as read-only.
func (a *Axis) Values() []float64 {
	if a.span == nil {
		return a.seq
	}
	if a.mat == nil {
		a.mat = a.span.values()
	}
	return a.mat
}

// Len returns the number of materialized samples.
func (a *Axis) Len() int {
	if a.span != nil && a.mat == nil {
		return a.span.count()
	}
	return len(a.Values())
}

// At returns the i-th materialized sample. Negative indices count from the
// end, matching sequence indexing.
func (a *Axis) At(i int) (float64, error) {
	v := a.Values()
	if i < 0 {
		i += len(v)
	}
	if i < 0 || i >= len(v) {
		return 0, ErrIndexRange
	}
	return v[i], nil
}

// Slice returns a copy of the materialized samples in [r.Start, r.Stop).
// Negative bounds count from the end.
func (a *Axis) Slice(r Range) ([]float64, error) {
	v := a.Values()
	lo, hi, err := r.resolve(len(v))
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), v[lo:hi]...), nil
}

// Reduce returns the (start, stop, step) form of the axis. Sequence-backed
// axes must be evenly spaced; otherwise ErrNonUniform is returned. For an
// axis that already has a span form this is the identity.
func (a *Axis) Reduce() (Span, error) {
	if a.span != nil {
		return *a.span, nil
	}
	sp, ok := reduceSeq(a.seq)
	if !ok {
		return Span{}, ErrNonUniform
	}
	return sp, nil
}

// Copy returns an independent axis with copied sample vectors.
func (a *Axis) Copy() *Axis {
	out := &Axis{name: a.name}
	if a.span != nil {
		sp := *a.span
		out.span = &sp
	}
	out.seq = append([]float64(nil), a.seq...)
	if len(out.seq) == 0 {
		out.seq = nil
	}
	return out
}

// Add returns a new axis with the span shifted by b. The result carries no
// materialized cache.
func (a *Axis) Add(b float64) (*Axis, error) {
	sp, err := a.spanForDerive()
	if err != nil {
		return nil, err
	}
	return &Axis{name: a.name, span: &Span{Start: sp.Start + b, Stop: sp.Stop + b, Step: sp.Step}}, nil
}

// Sub returns a new axis with the span shifted by -b.
func (a *Axis) Sub(b float64) (*Axis, error) {
	return a.Add(-b)
}

// SubFrom returns the axis for b - a: start and stop swap roles while the
// step is carried over unchanged.
func (a *Axis) SubFrom(b float64) (*Axis, error) {
	sp, err := a.spanForDerive()
	if err != nil {
		return nil, err
	}
	return &Axis{name: a.name, span: &Span{Start: b - sp.Stop, Stop: b - sp.Start, Step: sp.Step}}, nil
}

// Mul returns a new axis with start, stop, and step scaled by b.
func (a *Axis) Mul(b float64) (*Axis, error) {
	sp, err := a.spanForDerive()
	if err != nil {
		return nil, err
	}
	return &Axis{name: a.name, span: &Span{Start: b * sp.Start, Stop: b * sp.Stop, Step: b * sp.step()}}, nil
}

// Div returns a new axis with start, stop, and step divided by b. Division
// by zero follows float64 semantics and is not intercepted.
func (a *Axis) Div(b float64) (*Axis, error) {
	sp, err := a.spanForDerive()
	if err != nil {
		return nil, err
	}
	return &Axis{name: a.name, span: &Span{Start: sp.Start / b, Stop: sp.Stop / b, Step: sp.step() / b}}, nil
}

// DivInto returns the axis for b / a, dividing b by start, stop, and step
// elementwise on the span.
func (a *Axis) DivInto(b float64) (*Axis, error) {
	sp, err := a.spanForDerive()
	if err != nil {
		return nil, err
	}
	return &Axis{name: a.name, span: &Span{Start: b / sp.Start, Stop: b / sp.Stop, Step: b / sp.step()}}, nil
}

func (a *Axis) spanForDerive() (Span, error) {
	if a.span == nil {
		return Span{}, ErrNoSpan
	}
	return *a.span, nil
}

// reduceSeq attempts to express seq as a uniform progression, verifying the
// reconstruction elementwise within floating tolerance.
func reduceSeq(seq []float64) (Span, bool) {
	if len(seq) < 2 {
		return Span{}, false
	}

	start := seq[0]
	step := seq[1] - seq[0]
	if step == 0 {
		return Span{}, false
	}
	stop := seq[len(seq)-1] + step

	sp := Span{Start: start, Stop: stop, Step: step}
	if sp.count() != len(seq) {
		return Span{}, false
	}
	scale := math.Max(math.Abs(start), math.Abs(stop))
	if scale == 0 {
		scale = 1
	}
	for i, v := range seq {
		want := start + float64(i)*step
		if math.Abs(v-want) > reduceEpsilon*scale {
			return Span{}, false
		}
	}
	return sp, true
}
