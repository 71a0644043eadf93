package apod

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timeAxis(n int, dwell float64) []float64 {
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) * dwell
	}
	return t
}

func TestGenerateExponential(t *testing.T) {
	ax := timeAxis(64, 1e-3)
	w, err := Generate(Exponential, ax, WithLinewidth(5))
	require.NoError(t, err)
	require.Len(t, w, 64)

	assert.InDelta(t, 1.0, w[0], 1e-12)
	for i := 1; i < len(w); i++ {
		assert.Less(t, w[i], w[i-1], "exponential window must decay monotonically")
	}
	assert.InDelta(t, math.Exp(-math.Pi*5*ax[10]), w[10], 1e-12)
}

func TestGenerateGauss(t *testing.T) {
	ax := timeAxis(32, 1e-3)
	w, err := Generate(Gauss, ax, WithLinewidth(10))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, w[0], 1e-12)
	v := math.Pi * 10 * ax[7]
	assert.InDelta(t, math.Exp(-v*v/(4*math.Ln2)), w[7], 1e-12)
}

func TestGenerateLorentzGauss(t *testing.T) {
	ax := timeAxis(32, 1e-3)
	w, err := Generate(LorentzGauss, ax, WithLinewidth(5), WithGaussLinewidth(10))
	require.NoError(t, err)

	g := math.Pi * 10 * ax[9]
	want := math.Exp(math.Pi*5*ax[9] - g*g/(4*math.Ln2))
	assert.InDelta(t, want, w[9], 1e-12)
}

func TestGenerateTRAF(t *testing.T) {
	ax := timeAxis(128, 1e-3)
	w, err := Generate(TRAF, ax, WithLinewidth(5))
	require.NoError(t, err)

	tMax := ax[len(ax)-1]
	e1 := math.Exp(-math.Pi * 5 * ax[40])
	e2 := math.Exp(-math.Pi * 5 * (tMax - ax[40]))
	want := e1 * (e1 + e2) / (e1*e1 + e2*e2)
	assert.InDelta(t, want, w[40], 1e-12)
}

func TestGenerateSineBell(t *testing.T) {
	ax := timeAxis(16, 1.0/15)
	w, err := Generate(SineBell, ax)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, w[0], 1e-12)
	assert.InDelta(t, 0.0, w[len(w)-1], 1e-12)
	assert.InDelta(t, math.Sin(math.Pi*ax[4]/ax[15]), w[4], 1e-12)
}

func TestGenerateRaisedCosine(t *testing.T) {
	ax := timeAxis(16, 1.0/15)

	hann, err := Generate(Hann, ax)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, hann[0], 1e-12)
	assert.InDelta(t, 0.0, hann[len(hann)-1], 1e-12)

	hamming, err := Generate(Hamming, ax)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, hamming[0], 1e-12)
	assert.InDelta(t, 25.0/46.0-21.0/46.0, hamming[len(hamming)-1], 1e-12)
}

func TestGenerateEmptyAxis(t *testing.T) {
	_, err := Generate(Exponential, nil)
	assert.ErrorIs(t, err, errEmptyAxis)
}

func TestApply(t *testing.T) {
	ax := timeAxis(8, 1e-3)
	buf := make([]complex128, 8)
	for i := range buf {
		buf[i] = complex(1, 2)
	}

	require.NoError(t, Apply(Exponential, buf, ax, WithLinewidth(5)))

	for i := range buf {
		c := math.Exp(-math.Pi * 5 * ax[i])
		assert.InDelta(t, c, real(buf[i]), 1e-12)
		assert.InDelta(t, 2*c, imag(buf[i]), 1e-12)
	}
}

func TestApplyLengthMismatch(t *testing.T) {
	err := Apply(Exponential, make([]complex128, 4), timeAxis(8, 1e-3))
	assert.ErrorIs(t, err, errMismatchedLength)
}

func TestApplyCoefficients(t *testing.T) {
	samples := []float64{1, 2, 3, 4}
	coeffs := []float64{1, 0.5, 0.25, 0}

	out, err := ApplyCoefficients(samples, coeffs)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 0.75, 0}, out)
	assert.Equal(t, []float64{1, 2, 3, 4}, samples, "input must not be mutated")

	require.NoError(t, ApplyCoefficientsInPlace(samples, coeffs))
	assert.Equal(t, []float64{1, 1, 0.75, 0}, samples)

	_, err = ApplyCoefficients(samples, coeffs[:2])
	assert.ErrorIs(t, err, errMismatchedLength)
}

func TestInfo(t *testing.T) {
	assert.Equal(t, "LorentzGauss", Info(LorentzGauss).Name)
	assert.True(t, Info(Exponential).Parametric)
	assert.False(t, Info(SineBell).Parametric)
	assert.Equal(t, Metadata{}, Info(Kind(99)))
}
