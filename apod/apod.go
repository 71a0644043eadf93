// Package apod generates apodization windows for NMR free-induction
// decays. Unlike sample-count windows, these are parameterized by the
// acquisition time axis and linewidths in Hz, so the same window type
// adapts to any dwell time.
package apod

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Kind identifies an apodization window function.
type Kind int

const (
	// Exponential multiplies by exp(-pi*lw*t), a lorentzian line broadening
	// of lw Hz.
	Exponential Kind = iota
	// Gauss multiplies by exp(-(pi*lw*t)^2/(4 ln 2)), a gaussian broadening
	// of lw Hz.
	Gauss
	// LorentzGauss applies the lorentz-to-gauss transformation
	// exp(pi*lw*t - (pi*lwGauss*t)^2/(4 ln 2)).
	LorentzGauss
	// TRAF is the Traficante window E*(E+e)/(E^2+e^2) with
	// E = exp(-pi*lw*t) and e = exp(-pi*lw*(T-t)).
	TRAF
	// SineBell multiplies by sin(pi*t/T).
	SineBell
	// Hann is the raised-cosine window over the acquisition time.
	Hann
	// Hamming is the 25/46 raised-cosine window over the acquisition time.
	Hamming
)

var (
	errEmptyAxis        = errors.New("apod: time axis must not be empty")
	errMismatchedLength = errors.New("apod: buffer and coefficients must have same length")
)

// Metadata holds descriptive properties of a window kind.
type Metadata struct {
	Name       string
	Parametric bool // takes a linewidth parameter
}

var metadataByKind = map[Kind]Metadata{
	Exponential:  {Name: "Exponential", Parametric: true},
	Gauss:        {Name: "Gauss", Parametric: true},
	LorentzGauss: {Name: "LorentzGauss", Parametric: true},
	TRAF:         {Name: "TRAF", Parametric: true},
	SineBell:     {Name: "SineBell", Parametric: false},
	Hann:         {Name: "Hann", Parametric: false},
	Hamming:      {Name: "Hamming", Parametric: false},
}

// Info returns static metadata for a window kind.
func Info(k Kind) Metadata {
	if m, ok := metadataByKind[k]; ok {
		return m
	}
	return Metadata{}
}

// Option configures window generation.
type Option func(*config)

type config struct {
	linewidth      float64
	gaussLinewidth float64
}

func defaultConfig() config {
	return config{
		linewidth:      1,
		gaussLinewidth: 10,
	}
}

// WithLinewidth sets the (lorentzian) linewidth in Hz.
func WithLinewidth(hz float64) Option {
	return func(c *config) {
		if hz > 0 {
			c.linewidth = hz
		}
	}
}

// WithGaussLinewidth sets the gaussian linewidth in Hz for LorentzGauss.
func WithGaussLinewidth(hz float64) Option {
	return func(c *config) {
		if hz > 0 {
			c.gaussLinewidth = hz
		}
	}
}

// Generate returns window coefficients evaluated on the time axis t
// (seconds, typically the acquisition axis of the FID).
func Generate(k Kind, t []float64, opts ...Option) ([]float64, error) {
	if len(t) == 0 {
		return nil, errEmptyAxis
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	tMax := t[len(t)-1]
	out := make([]float64, len(t))
	for i, tv := range t {
		out[i] = eval(k, tv, tMax, cfg)
	}
	return out, nil
}

// Apply multiplies the complex buffer in place by the window evaluated on
// t. The buffer and the time axis must have the same length.
func Apply(k Kind, buf []complex128, t []float64, opts ...Option) error {
	if len(buf) != len(t) {
		return fmt.Errorf("%w: %d and %d", errMismatchedLength, len(buf), len(t))
	}
	coeffs, err := Generate(k, t, opts...)
	if err != nil {
		return err
	}
	for i := range buf {
		buf[i] *= complex(coeffs[i], 0)
	}
	return nil
}

// ApplyCoefficients multiplies real samples with coefficients and returns
// a new slice.
func ApplyCoefficients(samples, coeffs []float64) ([]float64, error) {
	if len(samples) != len(coeffs) {
		return nil, fmt.Errorf("%w: %d and %d", errMismatchedLength, len(samples), len(coeffs))
	}
	out := make([]float64, len(samples))
	vecmath.MulBlock(out, samples, coeffs)
	return out, nil
}

// ApplyCoefficientsInPlace multiplies real samples with coefficients in
// place.
func ApplyCoefficientsInPlace(samples, coeffs []float64) error {
	if len(samples) != len(coeffs) {
		return fmt.Errorf("%w: %d and %d", errMismatchedLength, len(samples), len(coeffs))
	}
	vecmath.MulBlockInPlace(samples, coeffs)
	return nil
}

const fourLn2 = 4 * math.Ln2

func eval(k Kind, t, tMax float64, cfg config) float64 {
	switch k {
	case Exponential:
		return math.Exp(-math.Pi * cfg.linewidth * t)
	case Gauss:
		v := math.Pi * cfg.linewidth * t
		return math.Exp(-v * v / fourLn2)
	case LorentzGauss:
		g := math.Pi * cfg.gaussLinewidth * t
		return math.Exp(math.Pi*cfg.linewidth*t - g*g/fourLn2)
	case TRAF:
		e1 := math.Exp(-math.Pi * cfg.linewidth * t)
		e2 := math.Exp(-math.Pi * cfg.linewidth * (tMax - t))
		return e1 * (e1 + e2) / (e1*e1 + e2*e2)
	case SineBell:
		if tMax == 0 {
			return 1
		}
		return math.Sin(math.Pi * t / tMax)
	case Hann:
		if tMax == 0 {
			return 1
		}
		return 0.5 + 0.5*math.Cos(math.Pi*t/tMax)
	case Hamming:
		if tMax == 0 {
			return 1
		}
		return 25.0/46.0 + (21.0/46.0)*math.Cos(math.Pi*t/tMax)
	default:
		return 1
	}
}
