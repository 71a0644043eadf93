package proc

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-odnp/apod"
	"github.com/cwbudde/algo-odnp/nd"
	"github.com/cwbudde/algo-odnp/workspace"
)

func newWorkspace(t *testing.T, arr *nd.Array) *workspace.Workspace {
	t.Helper()
	ws := workspace.New()
	require.NoError(t, ws.Set(ws.ProcessingBuffer(), arr))
	return ws
}

func fid1D(t *testing.T, n int, dwell float64, gen func(tv float64) complex128) *nd.Array {
	t.Helper()
	values := make([]complex128, n)
	coords := make([]float64, n)
	for i := range values {
		tv := float64(i) * dwell
		coords[i] = tv
		values[i] = gen(tv)
	}
	arr, err := nd.New(values, []string{"t2"}, [][]float64{coords})
	require.NoError(t, err)
	return arr
}

func lastStep(t *testing.T, arr *nd.Array) nd.ProcStep {
	t.Helper()
	hist := arr.History()
	require.NotEmpty(t, hist)
	return hist[len(hist)-1]
}

func TestRemoveOffset(t *testing.T) {
	arr := fid1D(t, 64, 1e-3, func(tv float64) complex128 {
		return complex(math.Exp(-tv/5e-3), 0) + complex(0.25, -0.5)
	})
	ws := newWorkspace(t, arr)

	require.NoError(t, RemoveOffset(ws, WithOffsetPoints(10)))

	vals := arr.Values()
	var tail complex128
	for _, v := range vals[54:] {
		tail += v
	}
	tail /= 10
	assert.InDelta(t, 0, real(tail), 1e-3)
	assert.InDelta(t, 0, imag(tail), 1e-3)

	step := lastStep(t, arr)
	assert.Equal(t, "remove_offset", step.Name)
	assert.Equal(t, 10, step.Params["offset_points"])
}

func TestRemoveOffsetMissingDim(t *testing.T) {
	arr := fid1D(t, 8, 1e-3, func(float64) complex128 { return 1 })
	ws := newWorkspace(t, arr)
	assert.ErrorIs(t, RemoveOffset(ws, WithDim("t1")), nd.ErrDimNotFound)
}

func TestWindow(t *testing.T) {
	arr := fid1D(t, 32, 1e-3, func(float64) complex128 { return complex(1, 1) })
	ws := newWorkspace(t, arr)

	require.NoError(t, Window(ws, WithWindowKind(apod.Exponential), WithLinewidth(5)))

	coords, err := arr.CoordsOf("t2")
	require.NoError(t, err)
	vals := arr.Values()
	for i, v := range vals {
		c := math.Exp(-math.Pi * 5 * coords[i])
		assert.InDelta(t, c, real(v), 1e-12)
		assert.InDelta(t, c, imag(v), 1e-12)
	}

	step := lastStep(t, arr)
	assert.Equal(t, "window", step.Name)
	assert.Equal(t, "Exponential", step.Params["window"])
}

func TestWindowAppliesAlongInnerDim(t *testing.T) {
	// dims ordered so the windowed dim is NOT last
	values := make([]complex128, 8)
	for i := range values {
		values[i] = 1
	}
	arr, err := nd.New(values, []string{"t2", "power"},
		[][]float64{{0, 0.001, 0.002, 0.003}, {1, 2}})
	require.NoError(t, err)
	ws := newWorkspace(t, arr)

	require.NoError(t, Window(ws, WithWindowKind(apod.Exponential), WithLinewidth(100)))

	assert.Equal(t, []string{"t2", "power"}, arr.Dims(), "dim order restored")
	coords, err := arr.CoordsOf("t2")
	require.NoError(t, err)
	vals := arr.Values()
	for i, v := range vals {
		c := math.Exp(-math.Pi * 100 * coords[i/2])
		assert.InDelta(t, c, real(v), 1e-12)
	}
}

func TestFourierTransformPeakBin(t *testing.T) {
	// single complex tone at 3 cycles over 16 samples, dwell 1 s
	arr := fid1D(t, 16, 1, func(tv float64) complex128 {
		return cmplx.Exp(complex(0, 2*math.Pi*3*tv/16))
	})
	ws := newWorkspace(t, arr)

	require.NoError(t, FourierTransform(ws, WithZeroFill(1), WithoutShift(), WithoutPpm()))

	n, err := arr.Len("t2")
	require.NoError(t, err)
	assert.Equal(t, 16, n)

	vals := arr.Values()
	peak := 0
	for i := range vals {
		if cmplx.Abs(vals[i]) > cmplx.Abs(vals[peak]) {
			peak = i
		}
	}
	assert.Equal(t, 3, peak)

	coords, err := arr.CoordsOf("t2")
	require.NoError(t, err)
	assert.InDelta(t, 3.0/16, coords[3], 1e-12)
}

func TestFourierTransformShiftCentersZero(t *testing.T) {
	arr := fid1D(t, 16, 1, func(tv float64) complex128 {
		return cmplx.Exp(complex(0, 2*math.Pi*3*tv/16))
	})
	ws := newWorkspace(t, arr)

	require.NoError(t, FourierTransform(ws, WithZeroFill(1), WithoutPpm()))

	coords, err := arr.CoordsOf("t2")
	require.NoError(t, err)
	assert.InDelta(t, -0.5, coords[0], 1e-12)
	assert.InDelta(t, 0, coords[8], 1e-12)

	vals := arr.Values()
	peak := 0
	for i := range vals {
		if cmplx.Abs(vals[i]) > cmplx.Abs(vals[peak]) {
			peak = i
		}
	}
	assert.Equal(t, 11, peak, "tone lands at center + 3 bins after shifting")
}

func TestFourierTransformZeroFillAndPpm(t *testing.T) {
	arr := fid1D(t, 10, 1e-3, func(tv float64) complex128 {
		return complex(math.Exp(-tv/3e-3), 0)
	})
	arr.Attrs["nmr_frequency"] = 14.5e6
	ws := newWorkspace(t, arr)

	require.NoError(t, FourierTransform(ws, WithZeroFill(2)))

	// 2*10 rounded up to the next power of two
	n, err := arr.Len("t2")
	require.NoError(t, err)
	assert.Equal(t, 32, n)

	coords, err := arr.CoordsOf("t2")
	require.NoError(t, err)
	hzSpan := 1.0 / 1e-3
	ppmSpan := hzSpan / (14.5e6 / 1e6)
	assert.InDelta(t, -ppmSpan/2, coords[0], 1e-9)

	step := lastStep(t, arr)
	assert.Equal(t, "fourier_transform", step.Name)
	assert.Equal(t, 2, step.Params["zero_fill_factor"])
}

func TestFourierTransformMissingFrequencyAttr(t *testing.T) {
	arr := fid1D(t, 8, 1e-3, func(float64) complex128 { return 1 })
	ws := newWorkspace(t, arr)
	assert.ErrorIs(t, FourierTransform(ws), ErrMissingAttr)
}

func TestFourierTransformPreservesOuterDims(t *testing.T) {
	values := make([]complex128, 2*8)
	for i := range values {
		values[i] = 1
	}
	arr, err := nd.New(values, []string{"power", "t2"},
		[][]float64{{1, 2}, {0, 1, 2, 3, 4, 5, 6, 7}})
	require.NoError(t, err)
	ws := newWorkspace(t, arr)

	require.NoError(t, FourierTransform(ws, WithZeroFill(2), WithoutPpm()))

	assert.Equal(t, []string{"power", "t2"}, arr.Dims())
	assert.Equal(t, []int{2, 16}, arr.Shape())
}

func TestAutophaseArctan(t *testing.T) {
	// uniform-phase data rotated by 0.3 rad comes back purely real
	arr := fid1D(t, 32, 1e-3, func(tv float64) complex128 {
		return complex(math.Exp(-tv/5e-3), 0) * cmplx.Exp(complex(0, 0.3))
	})
	ws := newWorkspace(t, arr)

	require.NoError(t, Autophase(ws, WithPhaseMethod(PhaseArctan)))

	for _, v := range arr.Values() {
		assert.InDelta(t, 0, imag(v), 1e-9)
		assert.GreaterOrEqual(t, real(v), 0.0)
	}
	step := lastStep(t, arr)
	assert.Equal(t, "autophase", step.Name)
	assert.InDelta(t, 0.3, step.Params["phase"].(float64), 1e-9)
}

func TestAutophaseSearch(t *testing.T) {
	arr := fid1D(t, 64, 1e-3, func(tv float64) complex128 {
		return complex(math.Exp(-tv/5e-3), 0) * cmplx.Exp(complex(0, -0.8))
	})
	ws := newWorkspace(t, arr)

	require.NoError(t, Autophase(ws))

	var reSum, imSum float64
	for _, v := range arr.Values() {
		reSum += math.Abs(real(v))
		imSum += math.Abs(imag(v))
	}
	assert.Greater(t, reSum, 0.0)
	assert.Less(t, imSum, 0.05*reSum, "imaginary residual after phasing")
}

func TestAutophaseUnknownMethod(t *testing.T) {
	arr := fid1D(t, 8, 1e-3, func(float64) complex128 { return 1 })
	ws := newWorkspace(t, arr)
	assert.ErrorIs(t, Autophase(ws, WithPhaseMethod(PhaseMethod(42))), ErrPhaseMethod)
}

func TestBaseline(t *testing.T) {
	// pure quadratic baseline, no signal: correction removes everything
	arr := fid1D(t, 32, 1, func(tv float64) complex128 {
		return complex(2+0.5*tv+0.01*tv*tv, -1+0.2*tv)
	})
	ws := newWorkspace(t, arr)

	require.NoError(t, Baseline(ws, WithOrder(2)))

	for _, v := range arr.Values() {
		assert.InDelta(t, 0, real(v), 1e-8)
		assert.InDelta(t, 0, imag(v), 1e-8)
	}
	step := lastStep(t, arr)
	assert.Equal(t, "baseline", step.Name)
	assert.Equal(t, 2, step.Params["order"])
}

func TestBaselineOrderTooHigh(t *testing.T) {
	arr := fid1D(t, 3, 1, func(float64) complex128 { return 1 })
	ws := newWorkspace(t, arr)
	assert.ErrorIs(t, Baseline(ws, WithOrder(5)), ErrDimTooShort)
}

func TestIntegrate(t *testing.T) {
	n := 101
	values := make([]complex128, n)
	coords := make([]float64, n)
	for i := range values {
		coords[i] = float64(i - 50)
		values[i] = 1
	}
	arr, err := nd.New(values, []string{"t2"}, [][]float64{coords})
	require.NoError(t, err)
	ws := newWorkspace(t, arr)

	require.NoError(t, Integrate(ws, WithCenter(0), WithWidth(10)))

	out, err := ws.Proc()
	require.NoError(t, err)
	assert.Equal(t, 0, out.Rank())
	// strict bounds keep coordinates -4..4
	assert.Equal(t, complex(9, 0), out.Values()[0])

	step := lastStep(t, out)
	assert.Equal(t, "integrate", step.Name)
	assert.Equal(t, 10.0, step.Params["width"])
}

func TestIntegratePerScan(t *testing.T) {
	values := []complex128{1, 2, 3, 10, 20, 30}
	arr, err := nd.New(values, []string{"power", "t2"},
		[][]float64{{0.1, 0.2}, {-1, 0, 1}})
	require.NoError(t, err)
	ws := newWorkspace(t, arr)

	require.NoError(t, Integrate(ws, WithCenter(0), WithWidth(10)))

	out, err := ws.Proc()
	require.NoError(t, err)
	assert.Equal(t, []string{"power"}, out.Dims())
	assert.Equal(t, []complex128{6, 60}, out.Values())
}

func TestIntegrateEmptyWindow(t *testing.T) {
	arr := fid1D(t, 8, 1, func(float64) complex128 { return 1 })
	ws := newWorkspace(t, arr)
	assert.ErrorIs(t, Integrate(ws, WithCenter(1000), WithWidth(1)), ErrEmptySelection)
}

func TestAlign(t *testing.T) {
	n := 16
	ref := make([]complex128, n)
	for i := range ref {
		d := float64(i - 5)
		ref[i] = complex(math.Exp(-d*d/4), 0)
	}
	shiftBy := 3
	values := make([]complex128, 2*n)
	copy(values[:n], ref)
	for i := 0; i < n; i++ {
		values[n+i] = ref[((i-shiftBy)%n+n)%n]
	}
	coords := make([]float64, n)
	for i := range coords {
		coords[i] = float64(i)
	}
	arr, err := nd.New(values, []string{"power", "t2"},
		[][]float64{{1, 2}, coords})
	require.NoError(t, err)
	ws := newWorkspace(t, arr)

	require.NoError(t, Align(ws))

	vals := arr.Values()
	for i := 0; i < n; i++ {
		assert.InDelta(t, real(ref[i]), real(vals[n+i]), 1e-9)
	}
	assert.Equal(t, "align", lastStep(t, arr).Name)
}

func TestAlignSingleTraceIsNoop(t *testing.T) {
	arr := fid1D(t, 8, 1, func(tv float64) complex128 { return complex(tv, 0) })
	before := append([]complex128(nil), arr.Values()...)
	ws := newWorkspace(t, arr)

	require.NoError(t, Align(ws))
	assert.Equal(t, before, arr.Values())
}

func TestWorkupChainHistory(t *testing.T) {
	arr := fid1D(t, 64, 5e-4, func(tv float64) complex128 {
		return cmplx.Exp(complex(-tv/5e-3, 2*math.Pi*200*tv))
	})
	arr.Attrs["nmr_frequency"] = 14.5e6
	ws := newWorkspace(t, arr)

	require.NoError(t, RemoveOffset(ws))
	require.NoError(t, Window(ws, WithWindowKind(apod.LorentzGauss),
		WithLinewidth(5), WithGaussLinewidth(10)))
	require.NoError(t, FourierTransform(ws))
	require.NoError(t, Autophase(ws))
	require.NoError(t, Baseline(ws))
	require.NoError(t, Integrate(ws, WithWidth(1000)))

	out, err := ws.Proc()
	require.NoError(t, err)
	names := make([]string, 0)
	for _, st := range out.History() {
		names = append(names, st.Name)
	}
	assert.Equal(t, []string{
		"remove_offset", "window", "fourier_transform",
		"autophase", "baseline", "integrate",
	}, names)
}
