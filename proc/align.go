package proc

import (
	"fmt"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"

	"github.com/cwbudde/algo-odnp/workspace"
)

// Align circularly shifts every trace along a dimension so that it lines
// up with the first trace, using the peak of the FFT-based
// cross-correlation to find the lag. Spectra drifting between scans of a
// 2-D experiment are brought back on top of each other before
// integration.
func Align(ws *workspace.Workspace, opts ...Option) error {
	cfg := applyOptions(opts)
	arr, err := ws.Proc()
	if err != nil {
		return err
	}
	n, err := arr.Len(cfg.dim)
	if err != nil {
		return err
	}
	if n < 2 {
		return fmt.Errorf("%w: %q has %d", ErrDimTooShort, cfg.dim, n)
	}

	orig := arr.Dims()
	if err := arr.Reorder(dimLast(orig, cfg.dim)...); err != nil {
		return err
	}

	vals := arr.Values()
	rows := len(vals) / n
	if rows > 1 {
		if err := alignRows(vals, rows, n); err != nil {
			return err
		}
	}

	if err := arr.Reorder(orig...); err != nil {
		return err
	}
	arr.AddProcStep("align", map[string]any{"dim": cfg.dim})
	return nil
}

func alignRows(vals []complex128, rows, n int) error {
	m := nextPowerOf2(n)
	plan, err := algofft.NewPlan64(m)
	if err != nil {
		return fmt.Errorf("proc: failed to create FFT plan: %w", err)
	}

	in := make([]complex128, m)
	refFreq := make([]complex128, m)
	rowFreq := make([]complex128, m)
	corr := make([]complex128, m)

	copy(in, vals[:n])
	for i := n; i < m; i++ {
		in[i] = 0
	}
	if err := plan.Forward(refFreq, in); err != nil {
		return err
	}

	shifted := make([]complex128, n)
	for r := 1; r < rows; r++ {
		row := vals[r*n : (r+1)*n]

		copy(in, row)
		for i := n; i < m; i++ {
			in[i] = 0
		}
		if err := plan.Forward(rowFreq, in); err != nil {
			return err
		}
		for i := range rowFreq {
			rowFreq[i] *= cmplx.Conj(refFreq[i])
		}
		if err := plan.Inverse(corr, rowFreq); err != nil {
			return err
		}

		lag := peakLag(corr)
		for i := range shifted {
			shifted[i] = row[((i+lag)%n+n)%n]
		}
		copy(row, shifted)
	}
	return nil
}

// peakLag returns the signed lag of the cross-correlation maximum,
// mapping bins past the midpoint to negative lags.
func peakLag(corr []complex128) int {
	best := 0
	bestMag := 0.0
	for i, c := range corr {
		if mag := cmplx.Abs(c); mag > bestMag {
			bestMag = mag
			best = i
		}
	}
	if best > len(corr)/2 {
		return best - len(corr)
	}
	return best
}
