package fit

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-odnp/internal/lsq"
	"github.com/cwbudde/algo-odnp/internal/rootfind"
)

// SmaxModel selects how the maximal saturation factor is determined.
type SmaxModel int

const (
	// SmaxTethered fixes smax at 1 for tethered spin labels.
	SmaxTethered SmaxModel = iota
	// SmaxFree computes smax from the spin concentration for free spin
	// probes.
	SmaxFree
)

// T1InterpMethod selects how T1 is interpolated onto the enhancement
// power series.
type T1InterpMethod int

const (
	// InterpSecondOrder uses the second-order relaxivity expansion.
	InterpSecondOrder T1InterpMethod = iota
	// InterpLinear uses the linear leakage-corrected interpolation.
	InterpLinear
)

// Gyromagnetic ratios in 1/(ps*T), matching the picosecond tcorr unit.
const (
	gammaE = 1.76085963023e-1
	gammaH = 2.6752218744e-4
)

// tcorr root bracket in picoseconds.
const (
	tcorrMin = 1
	tcorrMax = 1e5
)

// Parameters holds the inputs of the hydration calculation beyond the
// measured series. The zero value is not usable; start from
// DefaultParameters.
type Parameters struct {
	// Field is the static magnetic field in mT.
	Field float64
	// SpinC is the spin label concentration in uM.
	SpinC float64
	// Smax selects the maximal saturation factor model.
	Smax SmaxModel
	// T10 is T1 with spin label at zero microwave power, in s.
	T10 float64
	// T100 is T1 without spin label and without power, in s.
	T100 float64
	// KsigmaBulk is the bulk water ksigma in 1/(s*M).
	KsigmaBulk float64
	// TcorrBulk is the bulk water correlation time in ps.
	TcorrBulk float64
	// DH2O is the bulk water diffusivity in m^2/s.
	DH2O float64
	// DSL is the spin label diffusivity in m^2/s.
	DSL float64
	// KlowBulk is the bulk water klow in 1/(s*M).
	KlowBulk float64
	// T1Interp selects the T1 interpolation method.
	T1Interp T1InterpMethod
}

// DefaultParameters returns the literature values for aqueous nitroxide
// samples at X band.
func DefaultParameters() Parameters {
	return Parameters{
		Field:      348.5,
		SpinC:      100,
		Smax:       SmaxTethered,
		T10:        1.5,
		T100:       2.5,
		KsigmaBulk: 95.4,
		TcorrBulk:  54,
		DH2O:       2.3e-9,
		DSL:        4.1e-10,
		KlowBulk:   366,
		T1Interp:   InterpSecondOrder,
	}
}

// Results holds all quantities of the hydration calculation.
type Results struct {
	// UncorrectedEp is the enhancement curve predicted by the
	// uncorrected model, evaluated on the enhancement power series.
	UncorrectedEp []float64
	// InterpolatedT1 is T1 interpolated onto the enhancement powers, in s.
	InterpolatedT1 []float64
	// KsigmaArray is ksigma*s(p) computed per power point.
	KsigmaArray []float64
	// KsigmaFit is the fitted saturation curve over the same powers.
	KsigmaFit []float64
	// Ksigma is the cross-relaxivity in 1/(s*M).
	Ksigma float64
	// KsigmaError is the standard deviation of Ksigma.
	KsigmaError float64
	// KsigmaBulkRatio is Ksigma over the bulk value.
	KsigmaBulkRatio float64
	// Krho is the self-relaxivity in 1/(s*M).
	Krho float64
	// Klow is the slow-water relaxivity in 1/(s*M).
	Klow float64
	// KlowBulkRatio is Klow over the bulk value.
	KlowBulkRatio float64
	// CouplingFactor is Ksigma/Krho.
	CouplingFactor float64
	// Tcorr is the water correlation time in ps.
	Tcorr float64
	// TcorrBulkRatio is Tcorr over the bulk value.
	TcorrBulkRatio float64
	// DLocal is the local water diffusivity in m^2/s.
	DLocal float64
}

// Calculator runs the hydration analysis for one sample: a T1 power
// series and an enhancement power series measured on the same spin
// system.
type Calculator struct {
	t1      []float64
	t1Power []float64
	e       []float64
	ePower  []float64
	params  Parameters
}

// NewCalculator validates the measured series and pairs them with the
// calculation parameters. T1 values are in seconds, powers in Watts.
func NewCalculator(t1, t1Power, e, ePower []float64, params Parameters) (*Calculator, error) {
	if len(t1) == 0 || len(t1) != len(t1Power) {
		return nil, fmt.Errorf("%w: T1 series has %d values for %d powers", ErrInput, len(t1), len(t1Power))
	}
	if len(e) == 0 || len(e) != len(ePower) {
		return nil, fmt.Errorf("%w: enhancement series has %d values for %d powers", ErrInput, len(e), len(ePower))
	}
	return &Calculator{
		t1:      append([]float64(nil), t1...),
		t1Power: append([]float64(nil), t1Power...),
		e:       append([]float64(nil), e...),
		ePower:  append([]float64(nil), ePower...),
		params:  params,
	}, nil
}

// Run performs the full calculation.
func (c *Calculator) Run() (*Results, error) {
	t1Interp, err := c.interpolateT1()
	if err != nil {
		return nil, err
	}
	return c.calculate(t1Interp)
}

// interpolateT1 maps the measured T1 power series onto the enhancement
// powers.
func (c *Calculator) interpolateT1() ([]float64, error) {
	t10, t100 := c.params.T10, c.params.T100
	spinC := c.params.SpinC / 1e6

	switch c.params.T1Interp {
	case InterpSecondOrder:
		// second-order relaxivity expansion, with the water T1 drifting
		// linearly in power
		delT1w := c.t1[len(c.t1)-1] - c.t1[0]
		kHH := (1/t10 - 1/t100) / spinC

		krp := make([]float64, len(c.t1))
		for i, t1p := range c.t1 {
			krp[i] = (1/t1p - 1/(t100+delT1w*c.t1Power[i]) - kHH*spinC) / spinC
		}
		p, err := lsq.PolyFit(c.t1Power, krp, 2)
		if err != nil {
			return nil, fmt.Errorf("%w: T1 interpolation: %v", ErrFit, err)
		}

		out := make([]float64, len(c.ePower))
		for i, pw := range c.ePower {
			out[i] = 1 / (spinC*lsq.PolyVal(p, pw) + 1/(t100+delT1w*pw) + kHH*spinC)
		}
		return out, nil

	case InterpLinear:
		// leakage-corrected linear interpolation
		linear := make([]float64, len(c.t1))
		for i, t1p := range c.t1 {
			linear[i] = 1 / (1/t1p - 1/t10 + 1/t100)
		}
		p, err := lsq.PolyFit(c.t1Power, linear, 1)
		if err != nil {
			return nil, fmt.Errorf("%w: T1 interpolation: %v", ErrFit, err)
		}

		out := make([]float64, len(c.ePower))
		for i, pw := range c.ePower {
			f := lsq.PolyVal(p, pw)
			out[i] = f / (1 + f/t10 - f/t100)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: T1 interpolation method %d", ErrKind, c.params.T1Interp)
	}
}

func (c *Calculator) calculate(t1p []float64) (*Results, error) {
	spinC := c.params.SpinC / 1e6
	t10, t100 := c.params.T10, c.params.T100

	var smax float64
	switch c.params.Smax {
	case SmaxTethered:
		smax = 1
	case SmaxFree:
		smax = 1 - 2/(3+3*spinC*198.7)
	default:
		return nil, fmt.Errorf("%w: smax model %d", ErrKind, c.params.Smax)
	}

	omegaE := gammaE * c.params.Field / 1000
	omegaH := gammaH * c.params.Field / 1000
	wRatio := omegaE / omegaH

	power := c.ePower
	maxPower := 0.0
	for _, p := range power {
		if p > maxPower {
			maxPower = p
		}
	}

	ksigArray := make([]float64, len(power))
	for i, ep := range c.e {
		ksigArray[i] = (1 - ep) / (spinC * wRatio * t1p[i])
	}

	// saturation fit: ksigma*smax and the power at half saturation
	satModel := func(p float64, prm []float64) float64 {
		return prm[0] * p / (prm[1] + p)
	}
	popt, pcov, err := lsq.CurveFit(satModel, power, ksigArray, []float64{50, maxPower / 2})
	if err != nil {
		return nil, fmt.Errorf("%w: ksigma: %v", ErrFit, err)
	}
	ksigmaSmax, p12 := popt[0], popt[1]
	if ksigmaSmax <= 0 {
		return nil, fmt.Errorf("%w: ksigma %g <= 0", ErrFit, ksigmaSmax)
	}
	ksigma := ksigmaSmax / smax
	ksigmaError := 0.0
	if pcov != nil {
		ksigmaError = math.Sqrt(pcov[0][0]) / smax
	}

	ksigFit := make([]float64, len(power))
	for i, p := range power {
		ksigFit[i] = ksigmaSmax * p / (p12 + p)
	}

	krho := (1/t10 - 1/t100) / spinC
	coupling := ksigma / krho

	tcorr, err := solveTcorr(coupling, omegaE, omegaH)
	if err != nil {
		return nil, err
	}

	dLocal := (c.params.TcorrBulk / tcorr) * (c.params.DH2O + c.params.DSL)
	klow := (5*krho - 7*ksigma) / 3

	// uncorrected model: fit coupling factor and half-saturation power
	// directly to the enhancement curve, using T10 instead of the
	// interpolated T1
	residual := func(x []float64) []float64 {
		r := make([]float64, len(power))
		for i, p := range power {
			epFit := 1 - x[0]*(1-t10/t100)*wRatio*(p*smax/(x[1]+p))
			r[i] = c.e[i] - epFit
		}
		return r
	}
	xunc, _, err := lsq.LeastSquares(residual, []float64{0.5, maxPower / 2})
	if err != nil {
		return nil, fmt.Errorf("%w: uncorrected Ep: %v", ErrFit, err)
	}
	if xunc[0] <= 0 {
		return nil, fmt.Errorf("%w: uncorrected coupling factor %g <= 0", ErrFit, xunc[0])
	}

	uncorrectedEp := make([]float64, len(power))
	for i, p := range power {
		uncorrectedEp[i] = 1 - xunc[0]*(1-t10/t100)*wRatio*(p*smax/(xunc[1]+p))
	}

	return &Results{
		UncorrectedEp:   uncorrectedEp,
		InterpolatedT1:  t1p,
		KsigmaArray:     ksigArray,
		KsigmaFit:       ksigFit,
		Ksigma:          ksigma,
		KsigmaError:     ksigmaError,
		KsigmaBulkRatio: ksigma / c.params.KsigmaBulk,
		Krho:            krho,
		Klow:            klow,
		KlowBulkRatio:   klow / c.params.KlowBulk,
		CouplingFactor:  coupling,
		Tcorr:           tcorr,
		TcorrBulkRatio:  tcorr / c.params.TcorrBulk,
		DLocal:          dLocal,
	}, nil
}

// solveTcorr inverts the spectral-density coupling factor for the
// correlation time, bracketed between 1 ps and 100 ns.
func solveTcorr(coupling, omegaE, omegaH float64) (float64, error) {
	root, err := rootfind.Brent(func(tcorr float64) float64 {
		return couplingFromTcorr(tcorr, omegaE, omegaH) - coupling
	}, tcorrMin, tcorrMax)
	if err != nil {
		return 0, fmt.Errorf("%w: tcorr: %v", ErrFit, err)
	}
	return root, nil
}

// couplingFromTcorr evaluates the coupling factor predicted by the
// force-free hard-sphere spectral density functions at a correlation
// time in ps.
func couplingFromTcorr(tcorr, omegaE, omegaH float64) float64 {
	jDiff := spectralDensity((omegaE - omegaH) * tcorr)
	jSum := spectralDensity((omegaE + omegaH) * tcorr)
	jH := spectralDensity(omegaH * tcorr)

	return (6*jDiff - jSum) / (6*jDiff + 3*jH + jSum)
}

// spectralDensity returns the real part of J(z) with z = sqrt(i*w*tcorr).
func spectralDensity(wt float64) float64 {
	z := cmplx.Sqrt(complex(0, wt))
	j := (1 + z/4) / (1 + z + 4*z*z/9 + z*z*z/9)
	return real(j)
}
