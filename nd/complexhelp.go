package nd

import (
	"math"
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n:need], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

// Abs returns a deep copy whose values are the elementwise magnitudes.
func (a *Array) Abs() *Array {
	out := a.Copy()
	if len(out.values) == 0 {
		return out
	}

	re, im, buf := getScratch(len(out.values))
	for i, c := range out.values {
		re[i] = real(c)
		im[i] = imag(c)
	}
	vecmath.Magnitude(re, re, im)
	for i := range out.values {
		out.values[i] = complex(re[i], 0)
	}
	putScratch(buf)
	return out
}

// Real returns a deep copy holding only the real parts.
func (a *Array) Real() *Array {
	out := a.Copy()
	for i, c := range out.values {
		out.values[i] = complex(real(c), 0)
	}
	return out
}

// Imag returns a deep copy holding the imaginary parts as real values.
func (a *Array) Imag() *Array {
	out := a.Copy()
	for i, c := range out.values {
		out.values[i] = complex(imag(c), 0)
	}
	return out
}

// Phase returns arctan of the summed imaginary part over the summed real
// part of the whole buffer. There is no per-dimension variant.
func (a *Array) Phase() float64 {
	var sumRe, sumIm float64
	for _, c := range a.values {
		sumRe += real(c)
		sumIm += imag(c)
	}
	return math.Atan(sumIm / sumRe)
}

// Autophase rotates the buffer in place by the negative of Phase and flips
// the sign if the rotated real part sums negative, enforcing a dominant
// positive-real convention.
func (a *Array) Autophase() {
	rot := cmplxExp(-a.Phase())
	var sumRe float64
	for i, c := range a.values {
		v := c * rot
		a.values[i] = v
		sumRe += real(v)
	}
	if sumRe < 0 {
		for i := range a.values {
			a.values[i] = -a.values[i]
		}
	}
}

// cmplxExp returns e^(i*phi).
func cmplxExp(phi float64) complex128 {
	return complex(math.Cos(phi), math.Sin(phi))
}
