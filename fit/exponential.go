package fit

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-odnp/internal/lsq"
	"github.com/cwbudde/algo-odnp/nd"
	"github.com/cwbudde/algo-odnp/workspace"
)

// Kind selects the exponential model fitted by Exponential.
type Kind int

const (
	// T1 fits the inversion-recovery curve M_0 - M_2*exp(-t/T1).
	T1 Kind = iota
	// T2 fits the decay M_0*exp(-2*(t/T2)).
	T2
	// StretchedT2 fits M_0*exp(-2*(t/T2)^p) with the stretch exponent p
	// free.
	StretchedT2
	// Mono fits C1 + C2*exp(-t/tau).
	Mono
	// Bi fits C1 + C2*exp(-t/tau1) + C3*exp(-t/tau2).
	Bi
)

// String returns the model name.
func (k Kind) String() string {
	switch k {
	case T1:
		return "T1"
	case T2:
		return "T2"
	case StretchedT2:
		return "stretched_T2"
	case Mono:
		return "mono"
	case Bi:
		return "bi"
	default:
		return "unknown"
	}
}

// Option configures a fit.
type Option func(*config)

type config struct {
	key string
}

// WithKey sets the workspace key the fitted curve is stored under.
// Defaults to "fit".
func WithKey(key string) Option {
	return func(c *config) { c.key = key }
}

// Exponential fits the chosen relaxation model to the real part of the
// one-dimensional processing buffer and stores the fitted curve under the
// fit key, with the fitted parameters (and their standard deviations,
// suffixed _stdd) in the result's Attrs.
func Exponential(ws *workspace.Workspace, kind Kind, opts ...Option) error {
	cfg := config{key: "fit"}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	arr, err := ws.Proc()
	if err != nil {
		return err
	}
	if arr.Rank() != 1 {
		return fmt.Errorf("%w: rank %d", ErrRank, arr.Rank())
	}
	dim := arr.Dims()[0]
	x, err := arr.CoordsOf(dim)
	if err != nil {
		return err
	}
	if len(x) < 2 {
		return fmt.Errorf("%w: %d points", ErrInput, len(x))
	}

	y := make([]float64, len(x))
	for i, v := range arr.Values() {
		y[i] = real(v)
	}

	model, p0, names, err := buildModel(kind, x, y)
	if err != nil {
		return err
	}
	params, cov, err := lsq.CurveFit(model, x, y, p0)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFit, err)
	}

	fitted := make([]complex128, len(x))
	for i, xv := range x {
		fitted[i] = complex(model(xv, params), 0)
	}

	attrs := make(map[string]any, 2*len(names))
	for i, name := range names {
		attrs[name] = params[i]
		if cov != nil {
			attrs[name+"_stdd"] = math.Sqrt(cov[i][i])
		}
	}
	out, err := nd.New(fitted, []string{dim}, [][]float64{x}, nd.WithAttrs(attrs))
	if err != nil {
		return err
	}
	out.AddProcStep("exponential_fit", map[string]any{"kind": kind.String()})
	return ws.Set(cfg.key, out)
}

func buildModel(kind Kind, x, y []float64) (model lsq.Model, p0 []float64, names []string, err error) {
	xMax := x[len(x)-1]
	yFirst, yLast := y[0], y[len(y)-1]
	yAbsMax := 0.0
	for _, v := range y {
		if a := math.Abs(v); a > yAbsMax {
			yAbsMax = a
		}
	}

	switch kind {
	case T1:
		model = func(t float64, p []float64) float64 {
			return p[1] - p[2]*math.Exp(-t/p[0])
		}
		p0 = []float64{1, yAbsMax, yAbsMax}
		names = []string{"T1", "M_0", "M_2"}
	case T2:
		model = func(t float64, p []float64) float64 {
			return p[0] * math.Exp(-2*(t/p[1]))
		}
		p0 = []float64{yFirst, xMax / 2}
		names = []string{"M_0", "T2"}
	case StretchedT2:
		model = func(t float64, p []float64) float64 {
			return p[0] * math.Exp(-2*math.Pow(t/p[1], p[2]))
		}
		p0 = []float64{yFirst, xMax / 2, 1}
		names = []string{"M_0", "T2", "p"}
	case Mono:
		model = func(t float64, p []float64) float64 {
			return p[0] + p[1]*math.Exp(-t/p[2])
		}
		p0 = []float64{yLast, yFirst - yLast, xMax / 5}
		names = []string{"C1", "C2", "tau"}
	case Bi:
		model = func(t float64, p []float64) float64 {
			return p[0] + p[1]*math.Exp(-t/p[2]) + p[3]*math.Exp(-t/p[4])
		}
		p0 = []float64{yLast, (yFirst - yLast) / 2, xMax / 5, (yFirst - yLast) / 2, xMax}
		names = []string{"C1", "C2", "tau1", "C3", "tau2"}
	default:
		return nil, nil, nil, fmt.Errorf("%w: %d", ErrKind, kind)
	}
	return model, p0, names, nil
}
