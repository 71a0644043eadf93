package proc

import (
	"fmt"

	algofft "github.com/cwbudde/algo-fft"

	"github.com/cwbudde/algo-odnp/workspace"
)

// FourierTransform transforms the buffer along a dimension into the
// frequency domain.
//
// The transform length is the zero-fill factor times the input length,
// rounded up to the next power of two. With shifting enabled (the
// default) the zero-frequency bin is centered. When converting to ppm the
// array must carry an "nmr_frequency" attribute holding the spectrometer
// frequency in Hz; otherwise the axis stays in Hz. The transformed
// dimension keeps its name with the new frequency coordinates.
func FourierTransform(ws *workspace.Workspace, opts ...Option) error {
	cfg := applyOptions(opts)
	arr, err := ws.Proc()
	if err != nil {
		return err
	}
	t, err := arr.CoordsOf(cfg.dim)
	if err != nil {
		return err
	}
	n := len(t)
	if n < 2 {
		return fmt.Errorf("%w: %q has %d", ErrDimTooShort, cfg.dim, n)
	}
	dwell := t[1] - t[0]
	if dwell <= 0 {
		return fmt.Errorf("proc: non-increasing coordinates on %q", cfg.dim)
	}

	var nmrFrequency float64
	if cfg.convertToPpm {
		f, ok := arr.Attrs["nmr_frequency"].(float64)
		if !ok {
			return fmt.Errorf("%w: nmr_frequency", ErrMissingAttr)
		}
		nmrFrequency = f
	}

	npts := nextPowerOf2(cfg.zeroFillFactor * n)
	plan, err := algofft.NewPlan64(npts)
	if err != nil {
		return fmt.Errorf("proc: failed to create FFT plan: %w", err)
	}

	orig := arr.Dims()
	if err := arr.Reorder(dimLast(orig, cfg.dim)...); err != nil {
		return err
	}

	vals := arr.Values()
	rows := len(vals) / n
	out := make([]complex128, rows*npts)
	in := make([]complex128, npts)
	for r := 0; r < rows; r++ {
		copy(in, vals[r*n:(r+1)*n])
		for i := n; i < npts; i++ {
			in[i] = 0
		}
		dst := out[r*npts : (r+1)*npts]
		if err := plan.Forward(dst, in); err != nil {
			return err
		}
		if cfg.shift {
			fftshift(dst)
		}
	}

	f := make([]float64, npts)
	for k := range f {
		f[k] = float64(k) / (float64(npts) * dwell)
	}
	if cfg.shift {
		nyquist := 1 / (2 * dwell)
		for k := range f {
			f[k] -= nyquist
		}
	}
	if cfg.convertToPpm {
		scale := nmrFrequency / 1e6
		for k := range f {
			f[k] /= scale
		}
	}

	if err := arr.ReplaceDim(cfg.dim, f, out); err != nil {
		return err
	}
	if err := arr.Reorder(orig...); err != nil {
		return err
	}
	arr.AddProcStep("fourier_transform", map[string]any{
		"dim":              cfg.dim,
		"zero_fill_factor": cfg.zeroFillFactor,
		"shift":            cfg.shift,
		"convert_to_ppm":   cfg.convertToPpm,
	})
	return nil
}

// fftshift swaps the two halves of an even-length spectrum so the
// zero-frequency bin lands in the center.
func fftshift(x []complex128) {
	h := len(x) / 2
	for i := 0; i < h; i++ {
		x[i], x[i+h] = x[i+h], x[i]
	}
}
