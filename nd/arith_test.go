package nd

import (
	"bytes"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarArithmeticIdentity(t *testing.T) {
	a := fixture32(t)

	scalars := []any{3, 2.5, 1 + 2i}
	for _, s := range scalars {
		sum, err := a.Add(s)
		require.NoError(t, err)
		require.NotNil(t, sum)

		var sc complex128
		switch v := s.(type) {
		case int:
			sc = complex(float64(v), 0)
		case float64:
			sc = complex(v, 0)
		case complex128:
			sc = v
		}
		for i, v := range a.Values() {
			assert.Equal(t, v+sc, sum.Values()[i])
		}
		require.True(t, sum.consistent())

		// (A + s) - s == A within floating tolerance
		back, err := sum.Sub(s)
		require.NoError(t, err)
		for i, v := range a.Values() {
			assert.InDelta(t, real(v), real(back.Values()[i]), 1e-12)
			assert.InDelta(t, imag(v), imag(back.Values()[i]), 1e-12)
		}
	}
}

func TestScalarCommutativity(t *testing.T) {
	a := fixture32(t)

	left, err := a.Add(2.0)
	require.NoError(t, err)
	right, err := a.RAdd(2.0)
	require.NoError(t, err)
	assert.Equal(t, left.Values(), right.Values())

	lm, err := a.Mul(3.0)
	require.NoError(t, err)
	rm, err := a.RMul(3.0)
	require.NoError(t, err)
	assert.Equal(t, lm.Values(), rm.Values())

	// (s - A) == -(A - s)
	rs, err := a.RSub(2.0)
	require.NoError(t, err)
	ls, err := a.Sub(2.0)
	require.NoError(t, err)
	for i := range rs.Values() {
		assert.Equal(t, -ls.Values()[i], rs.Values()[i])
	}
}

func TestBufferOperandSameShape(t *testing.T) {
	// A flat buffer covering the whole (3,2) array is read row-major with
	// the array's shape, not as a length-6 trailing dimension.
	a := fixture32(t)
	buf := []float64{1, 1, 2, 2, 3, 3}

	got, err := a.Add(buf)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []complex128{2, 3, 5, 6, 8, 9}, got.Values())
	assert.True(t, got.consistent())

	cbuf := []complex128{1i, 1i, 1i, 1i, 1i, 1i}
	got, err = a.Add(cbuf)
	require.NoError(t, err)
	require.NotNil(t, got)
	for i, v := range a.Values() {
		assert.Equal(t, v+1i, got.Values()[i])
	}
}

func TestBufferOperandBroadcastTrailing(t *testing.T) {
	// length-2 buffer broadcasts along the trailing y dimension of (3,2)
	a := fixture32(t)

	got, err := a.Mul([]float64{10, 100})
	require.NoError(t, err)
	assert.Equal(t, []complex128{10, 200, 30, 400, 50, 600}, got.Values())
}

func TestArrayOperandPositional(t *testing.T) {
	a := fixture32(t)
	b := mustArray(t,
		[]complex128{10, 20, 30, 40, 50, 60},
		[]string{"p", "q"}, // names are not reconciled, broadcasting is positional
		[][]float64{{0, 1, 2}, {0, 1}},
	)

	got, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, []complex128{11, 22, 33, 44, 55, 66}, got.Values())
	assert.Equal(t, []string{"x", "y"}, got.Dims())
}

func TestDiv(t *testing.T) {
	a := fixture32(t)

	got, err := a.Div(2.0)
	require.NoError(t, err)
	for i, v := range a.Values() {
		assert.Equal(t, v/2, got.Values()[i])
	}

	// (s / A) == s * (1 / A)
	rd, err := a.RDiv(6.0)
	require.NoError(t, err)
	for i, v := range a.Values() {
		assert.InDelta(t, real(6/v), real(rd.Values()[i]), 1e-12)
	}
}

func TestPow(t *testing.T) {
	a := mustArray(t, []complex128{1, 2, 3}, []string{"x"}, [][]float64{{0, 1, 2}})
	got, err := a.Pow(2)
	require.NoError(t, err)
	for i, v := range a.Values() {
		want := cmplx.Pow(v, 2)
		assert.InDelta(t, real(want), real(got.Values()[i]), 1e-12)
	}
}

func TestLenientSoftFailure(t *testing.T) {
	a := fixture32(t)
	var diag bytes.Buffer
	a.SetDiagnostics(&diag)

	got, err := a.Add("not a number")
	assert.Nil(t, got)
	assert.NoError(t, err)
	assert.Contains(t, diag.String(), "operand type not supported")
}

func TestStrictModeRaises(t *testing.T) {
	a := fixture32(t)
	a.SetStrict(true)

	_, err := a.Add("not a number")
	assert.ErrorIs(t, err, ErrOperand)
}

func TestBroadcastMismatch(t *testing.T) {
	a := fixture32(t)
	a.SetStrict(true)

	_, err := a.Add([]float64{1, 2, 3, 4, 5})
	assert.ErrorIs(t, err, ErrBroadcast)

	var diag bytes.Buffer
	a.SetStrict(false)
	a.SetDiagnostics(&diag)
	got, err := a.Add([]float64{1, 2, 3, 4, 5})
	assert.Nil(t, got)
	assert.NoError(t, err)
	assert.Contains(t, diag.String(), "does not broadcast")
}

func TestArithmeticDoesNotAliasReceiver(t *testing.T) {
	a := fixture32(t)
	got, err := a.Add(1.0)
	require.NoError(t, err)

	got.Values()[0] = 99
	assert.Equal(t, complex128(1), a.Values()[0])
}

func TestPhaseAndAutophase(t *testing.T) {
	rot := cmplx.Exp(complex(0, 0.3))
	values := []complex128{1 * rot, 2 * rot, 3 * rot}
	a := mustArray(t, values, []string{"x"}, [][]float64{{0, 1, 2}})

	assert.InDelta(t, 0.3, a.Phase(), 1e-9)

	a.Autophase()
	var sumIm, sumRe float64
	for _, v := range a.Values() {
		sumRe += real(v)
		sumIm += imag(v)
	}
	assert.InDelta(t, 0, sumIm, 1e-9)
	assert.Greater(t, sumRe, 0.0)
}

func TestAutophaseFlipsNegativeReal(t *testing.T) {
	a := mustArray(t, []complex128{-1, -2, -3}, []string{"x"}, [][]float64{{0, 1, 2}})
	a.Autophase()
	var sumRe float64
	for _, v := range a.Values() {
		sumRe += real(v)
	}
	assert.Greater(t, sumRe, 0.0)
}

func TestAbsRealImag(t *testing.T) {
	a := mustArray(t, []complex128{3 + 4i, -1 - 1i}, []string{"x"}, [][]float64{{0, 1}})

	abs := a.Abs()
	assert.InDelta(t, 5, real(abs.Values()[0]), 1e-12)
	assert.InDelta(t, math.Sqrt2, real(abs.Values()[1]), 1e-12)

	re := a.Real()
	assert.Equal(t, complex128(3), re.Values()[0])

	im := a.Imag()
	assert.Equal(t, complex128(4), im.Values()[0])

	// all of them are deep copies
	abs.Values()[0] = 0
	re.Values()[0] = 0
	im.Values()[0] = 0
	assert.Equal(t, 3+4i, a.Values()[0])
}
