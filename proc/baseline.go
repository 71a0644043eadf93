package proc

import (
	"github.com/cwbudde/algo-odnp/internal/lsq"
	"github.com/cwbudde/algo-odnp/workspace"
)

// Baseline fits a polynomial of the configured order to each trace along
// a dimension and subtracts it. Real and imaginary parts are corrected
// independently.
func Baseline(ws *workspace.Workspace, opts ...Option) error {
	cfg := applyOptions(opts)
	if cfg.order < 0 {
		return ErrOrder
	}
	arr, err := ws.Proc()
	if err != nil {
		return err
	}
	x, err := arr.CoordsOf(cfg.dim)
	if err != nil {
		return err
	}
	n := len(x)
	if n <= cfg.order {
		return ErrDimTooShort
	}

	orig := arr.Dims()
	if err := arr.Reorder(dimLast(orig, cfg.dim)...); err != nil {
		return err
	}

	vals := arr.Values()
	re := make([]float64, n)
	im := make([]float64, n)
	for r := 0; r+n <= len(vals); r += n {
		row := vals[r : r+n]
		for i, v := range row {
			re[i] = real(v)
			im[i] = imag(v)
		}
		cre, err := lsq.PolyFit(x, re, cfg.order)
		if err != nil {
			return err
		}
		cim, err := lsq.PolyFit(x, im, cfg.order)
		if err != nil {
			return err
		}
		for i := range row {
			row[i] -= complex(lsq.PolyVal(cre, x[i]), lsq.PolyVal(cim, x[i]))
		}
	}

	if err := arr.Reorder(orig...); err != nil {
		return err
	}
	arr.AddProcStep("baseline", map[string]any{
		"dim":   cfg.dim,
		"order": cfg.order,
	})
	return nil
}
