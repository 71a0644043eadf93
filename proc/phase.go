package proc

import (
	"math"

	"github.com/cwbudde/algo-odnp/workspace"
)

const phaseSearchSteps = 100

// Autophase applies a zeroth-order phase correction to the buffer.
//
// PhaseSearch scans candidate phases over [-pi/2, pi/2] and keeps the one
// maximizing the ratio of real to imaginary signal power. PhaseArctan
// estimates the phase directly as arctan(sum(imag)/sum(real)). Either
// way the spectrum is flipped afterwards if the total real signal is
// negative, so the main peak points up.
func Autophase(ws *workspace.Workspace, opts ...Option) error {
	cfg := applyOptions(opts)
	arr, err := ws.Proc()
	if err != nil {
		return err
	}
	vals := arr.Values()

	var phase float64
	switch cfg.method {
	case PhaseArctan:
		phase = arr.Phase()
	case PhaseSearch:
		best := math.Inf(-1)
		for i := 0; i < phaseSearchSteps; i++ {
			phi := -math.Pi/2 + math.Pi*float64(i)/float64(phaseSearchSteps-1)
			rot := complex(math.Cos(phi), -math.Sin(phi))
			var reSq, imSq float64
			for _, v := range vals {
				w := v * rot
				reSq += real(w) * real(w)
				imSq += imag(w) * imag(w)
			}
			score := reSq / imSq
			if score > best {
				best = score
				phase = phi
			}
		}
	default:
		return ErrPhaseMethod
	}

	rot := complex(math.Cos(phase), -math.Sin(phase))
	var sumRe float64
	for i := range vals {
		vals[i] *= rot
		sumRe += real(vals[i])
	}
	if sumRe < 0 {
		for i := range vals {
			vals[i] = -vals[i]
		}
	}

	arr.AddProcStep("autophase", map[string]any{
		"method": cfg.method,
		"phase":  phase,
	})
	return nil
}
