// Package rootfind provides bracketed scalar root finding for the
// spectral-density inversions in the hydration solver.
package rootfind

import (
	"errors"
	"math"
)

// ErrNoBracket is returned when f(a) and f(b) do not straddle zero.
var ErrNoBracket = errors.New("rootfind: interval does not bracket a root")

// ErrNoConvergence is returned when the iteration budget is exhausted.
var ErrNoConvergence = errors.New("rootfind: no convergence")

const (
	maxIterations = 100
	tolerance     = 1e-12
)

// Brent finds a root of f in [a, b] using Brent's method: bisection
// interleaved with secant and inverse quadratic interpolation steps.
// f(a) and f(b) must have opposite signs.
func Brent(f func(float64) float64, a, b float64) (float64, error) {
	fa := f(a)
	fb := f(b)
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if fa*fb > 0 {
		return 0, ErrNoBracket
	}

	if math.Abs(fa) < math.Abs(fb) {
		a, b = b, a
		fa, fb = fb, fa
	}

	c, fc := a, fa
	d := b - a
	mflag := true

	for i := 0; i < maxIterations; i++ {
		tol := 2*math.SmallestNonzeroFloat64*math.Abs(b) + tolerance
		if fb == 0 || math.Abs(b-a) < tol {
			return b, nil
		}

		var s float64
		if fa != fc && fb != fc {
			// inverse quadratic interpolation
			s = a*fb*fc/((fa-fb)*(fa-fc)) +
				b*fa*fc/((fb-fa)*(fb-fc)) +
				c*fa*fb/((fc-fa)*(fc-fb))
		} else {
			// secant step
			s = b - fb*(b-a)/(fb-fa)
		}

		lo := (3*a + b) / 4
		hi := b
		if lo > hi {
			lo, hi = hi, lo
		}
		bisect := s < lo || s > hi ||
			(mflag && math.Abs(s-b) >= math.Abs(b-c)/2) ||
			(!mflag && math.Abs(s-b) >= math.Abs(c-d)/2) ||
			(mflag && math.Abs(b-c) < tol) ||
			(!mflag && math.Abs(c-d) < tol)
		if bisect {
			s = (a + b) / 2
			mflag = true
		} else {
			mflag = false
		}

		fs := f(s)
		d = c
		c, fc = b, fb

		if fa*fs < 0 {
			b, fb = s, fs
		} else {
			a, fa = s, fs
		}
		if math.Abs(fa) < math.Abs(fb) {
			a, b = b, a
			fa, fb = fb, fa
		}
	}
	return b, ErrNoConvergence
}
