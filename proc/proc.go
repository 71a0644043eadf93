// Package proc implements the NMR processing pipeline for ODNP workups.
//
// Every step reads the workspace's active processing buffer, transforms it
// in place (or replaces it for shape-changing steps such as Integrate),
// and appends a record of the parameters used to the array's processing
// history. A typical free-induction-decay workup:
//
//	proc.RemoveOffset(ws)
//	proc.Window(ws, proc.WithWindowKind(apod.LorentzGauss),
//		proc.WithLinewidth(5), proc.WithGaussLinewidth(10))
//	proc.FourierTransform(ws, proc.WithZeroFill(2))
//	proc.Autophase(ws)
//	proc.Baseline(ws, proc.WithOrder(2))
//	proc.Integrate(ws, proc.WithCenter(0), proc.WithWidth(50))
package proc

import (
	"github.com/cwbudde/algo-odnp/apod"
	"github.com/cwbudde/algo-odnp/nd"
	"github.com/cwbudde/algo-odnp/workspace"
)

// PhaseMethod selects the zeroth-order autophase strategy.
type PhaseMethod int

const (
	// PhaseSearch scans candidate phases and keeps the one maximizing the
	// ratio of real to imaginary signal power.
	PhaseSearch PhaseMethod = iota
	// PhaseArctan estimates the phase as arctan of the ratio of summed
	// imaginary to summed real parts.
	PhaseArctan
)

// Option configures a processing step. Options not relevant to a step are
// ignored by it.
type Option func(*config)

type config struct {
	dim            string
	offsetPoints   int
	kind           apod.Kind
	linewidth      float64
	gaussLinewidth float64
	zeroFillFactor int
	shift          bool
	convertToPpm   bool
	method         PhaseMethod
	order          int
	center         float64
	width          float64
}

func defaultConfig() config {
	return config{
		dim:            "t2",
		offsetPoints:   10,
		kind:           apod.Exponential,
		linewidth:      10,
		gaussLinewidth: 10,
		zeroFillFactor: 2,
		shift:          true,
		convertToPpm:   true,
		method:         PhaseSearch,
		order:          2,
		center:         0,
		width:          100,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithDim sets the dimension a step operates along. Defaults to "t2", the
// direct acquisition dimension.
func WithDim(dim string) Option {
	return func(c *config) { c.dim = dim }
}

// WithOffsetPoints sets how many trailing FID points estimate the DC
// offset.
func WithOffsetPoints(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.offsetPoints = n
		}
	}
}

// WithWindowKind selects the apodization window for Window.
func WithWindowKind(k apod.Kind) Option {
	return func(c *config) { c.kind = k }
}

// WithLinewidth sets the (lorentzian) linewidth in Hz for Window.
func WithLinewidth(hz float64) Option {
	return func(c *config) { c.linewidth = hz }
}

// WithGaussLinewidth sets the gaussian linewidth in Hz for Window.
func WithGaussLinewidth(hz float64) Option {
	return func(c *config) { c.gaussLinewidth = hz }
}

// WithZeroFill sets the zero-fill factor for FourierTransform. The
// transform length is the factor times the input length, rounded up to
// the next power of two.
func WithZeroFill(factor int) Option {
	return func(c *config) {
		if factor > 0 {
			c.zeroFillFactor = factor
		}
	}
}

// WithoutShift disables centering the zero-frequency bin.
func WithoutShift() Option {
	return func(c *config) { c.shift = false }
}

// WithoutPpm keeps the frequency axis in Hz instead of converting to ppm.
func WithoutPpm() Option {
	return func(c *config) { c.convertToPpm = false }
}

// WithPhaseMethod selects the Autophase strategy.
func WithPhaseMethod(m PhaseMethod) Option {
	return func(c *config) { c.method = m }
}

// WithOrder sets the polynomial order for Baseline.
func WithOrder(order int) Option {
	return func(c *config) { c.order = order }
}

// WithCenter sets the center of the integration window, in the coordinate
// units of the integration dimension.
func WithCenter(center float64) Option {
	return func(c *config) { c.center = center }
}

// WithWidth sets the full width of the integration window.
func WithWidth(width float64) Option {
	return func(c *config) { c.width = width }
}

// dimLast returns dims with dim moved to the final position.
func dimLast(dims []string, dim string) []string {
	out := make([]string, 0, len(dims))
	for _, d := range dims {
		if d != dim {
			out = append(out, d)
		}
	}
	return append(out, dim)
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// RemoveOffset subtracts the DC offset of the FID, estimated as the mean
// of the trailing points along the acquisition dimension where the signal
// has fully decayed.
func RemoveOffset(ws *workspace.Workspace, opts ...Option) error {
	cfg := applyOptions(opts)
	arr, err := ws.Proc()
	if err != nil {
		return err
	}
	n, err := arr.Len(cfg.dim)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDimTooShort
	}

	points := cfg.offsetPoints
	if points > n {
		points = n
	}
	tail, err := arr.Index(cfg.dim, nd.Range{Start: -points, Stop: nd.End})
	if err != nil {
		return err
	}

	var sum complex128
	for _, v := range tail.Values() {
		sum += v
	}
	offset := sum / complex(float64(tail.Size()), 0)

	vals := arr.Values()
	for i := range vals {
		vals[i] -= offset
	}

	arr.AddProcStep("remove_offset", map[string]any{
		"dim":           cfg.dim,
		"offset_points": cfg.offsetPoints,
	})
	return nil
}

// Window apodizes the buffer along a dimension with an apod window
// evaluated on that dimension's coordinate axis.
func Window(ws *workspace.Workspace, opts ...Option) error {
	cfg := applyOptions(opts)
	arr, err := ws.Proc()
	if err != nil {
		return err
	}
	t, err := arr.CoordsOf(cfg.dim)
	if err != nil {
		return err
	}

	coeffs, err := apod.Generate(cfg.kind, t,
		apod.WithLinewidth(cfg.linewidth),
		apod.WithGaussLinewidth(cfg.gaussLinewidth))
	if err != nil {
		return err
	}

	orig := arr.Dims()
	if err := arr.Reorder(dimLast(orig, cfg.dim)...); err != nil {
		return err
	}

	n := len(coeffs)
	vals := arr.Values()
	for r := 0; r+n <= len(vals); r += n {
		row := vals[r : r+n]
		for i := range row {
			row[i] *= complex(coeffs[i], 0)
		}
	}

	if err := arr.Reorder(orig...); err != nil {
		return err
	}
	arr.AddProcStep("window", map[string]any{
		"dim":             cfg.dim,
		"window":          apod.Info(cfg.kind).Name,
		"linewidth":       cfg.linewidth,
		"gauss_linewidth": cfg.gaussLinewidth,
	})
	return nil
}

// Integrate replaces the buffer with the sum over a coordinate window of
// width around center along a dimension, collapsing that dimension. The
// window bounds are exclusive, matching RangeSelect.
func Integrate(ws *workspace.Workspace, opts ...Option) error {
	cfg := applyOptions(opts)
	arr, err := ws.Proc()
	if err != nil {
		return err
	}

	out, err := arr.RangeSelect(cfg.dim, cfg.center-cfg.width/2, cfg.center+cfg.width/2)
	if err != nil {
		return err
	}
	if n, err := out.Len(cfg.dim); err != nil {
		return err
	} else if n == 0 {
		return ErrEmptySelection
	}

	if err := out.SumOver(cfg.dim); err != nil {
		return err
	}
	out.AddProcStep("integrate", map[string]any{
		"dim":    cfg.dim,
		"center": cfg.center,
		"width":  cfg.width,
	})
	return ws.Set(ws.ProcessingBuffer(), out)
}
