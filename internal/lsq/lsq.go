// Package lsq provides the small least-squares toolbox shared by the
// fitting packages: polynomial fits via normal equations and a
// Levenberg-Marquardt minimizer with a forward-difference Jacobian.
package lsq

import (
	"errors"
	"math"
)

// ErrSingular is returned when a normal-equation system has no unique
// solution (degenerate abscissae, too few points, rank deficiency).
var ErrSingular = errors.New("lsq: singular system")

// ErrNoConvergence is returned when the minimizer exhausts its iteration
// budget without meeting the step tolerance.
var ErrNoConvergence = errors.New("lsq: no convergence")

// ErrDimension is returned for mismatched input lengths.
var ErrDimension = errors.New("lsq: input lengths do not match")

const (
	maxIterations = 200
	stepTolerance = 1e-10
	lambdaInit    = 1e-3
	lambdaUp      = 10
	lambdaDown    = 0.1
	diffEpsilon   = 1e-8
)

// PolyFit fits a polynomial of the given degree to (x, y) in the
// least-squares sense. Coefficients are returned in descending power
// order, so PolyVal(p, x) evaluates the fit.
func PolyFit(x, y []float64, degree int) ([]float64, error) {
	if len(x) != len(y) {
		return nil, ErrDimension
	}
	n := degree + 1
	if degree < 0 || len(x) < n {
		return nil, ErrSingular
	}

	// normal equations for the Vandermonde system, accumulated directly
	ata := make([][]float64, n)
	atb := make([]float64, n)
	for i := range ata {
		ata[i] = make([]float64, n)
	}
	for k, xv := range x {
		pow := make([]float64, n)
		pow[n-1] = 1
		for i := n - 2; i >= 0; i-- {
			pow[i] = pow[i+1] * xv
		}
		for i := range ata {
			for j := range ata[i] {
				ata[i][j] += pow[i] * pow[j]
			}
			atb[i] += pow[i] * y[k]
		}
	}
	return solve(ata, atb)
}

// PolyVal evaluates a descending-order polynomial at x using Horner's
// scheme.
func PolyVal(p []float64, x float64) float64 {
	var v float64
	for _, c := range p {
		v = v*x + c
	}
	return v
}

// Model maps one abscissa and a parameter vector to a model value.
type Model func(x float64, p []float64) float64

// CurveFit fits model parameters to (x, y) starting from p0 using
// Levenberg-Marquardt. It returns the fitted parameters and the parameter
// covariance matrix estimated from the Jacobian at the solution.
func CurveFit(f Model, x, y, p0 []float64) (params []float64, cov [][]float64, err error) {
	if len(x) != len(y) {
		return nil, nil, ErrDimension
	}
	residual := func(p []float64) []float64 {
		r := make([]float64, len(x))
		for i := range x {
			r[i] = y[i] - f(x[i], p)
		}
		return r
	}
	return LeastSquares(residual, p0)
}

// LeastSquares minimizes the sum of squared residuals over the parameter
// vector, starting from p0, using Levenberg-Marquardt with a numeric
// Jacobian. It returns the parameters and the covariance matrix
// inv(JᵀJ)·s² with s² the residual variance at the solution.
func LeastSquares(residual func(p []float64) []float64, p0 []float64) (params []float64, cov [][]float64, err error) {
	n := len(p0)
	if n == 0 {
		return nil, nil, ErrDimension
	}

	p := append([]float64(nil), p0...)
	r := residual(p)
	m := len(r)
	if m == 0 {
		return nil, nil, ErrDimension
	}
	cost := dot(r, r)
	lambda := lambdaInit

	for iter := 0; iter < maxIterations; iter++ {
		jac := jacobian(residual, p, r)

		jtj := make([][]float64, n)
		jtr := make([]float64, n)
		for i := range jtj {
			jtj[i] = make([]float64, n)
		}
		for k := 0; k < m; k++ {
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					jtj[i][j] += jac[k][i] * jac[k][j]
				}
				jtr[i] += jac[k][i] * r[k]
			}
		}

		var step []float64
		improved := false
		for try := 0; try < 12; try++ {
			damped := make([][]float64, n)
			for i := range damped {
				damped[i] = append([]float64(nil), jtj[i]...)
				damped[i][i] += lambda * jtj[i][i]
				if damped[i][i] == 0 {
					damped[i][i] = lambda
				}
			}
			s, serr := solve(damped, jtr)
			if serr != nil {
				lambda *= lambdaUp
				continue
			}

			trial := make([]float64, n)
			for i := range trial {
				trial[i] = p[i] - s[i]
			}
			tr := residual(trial)
			tcost := dot(tr, tr)
			if tcost < cost {
				p = trial
				r = tr
				cost = tcost
				lambda *= lambdaDown
				step = s
				improved = true
				break
			}
			lambda *= lambdaUp
		}

		if !improved {
			break
		}
		if norm(step) <= stepTolerance*(1+norm(p)) {
			break
		}
		if iter == maxIterations-1 {
			return nil, nil, ErrNoConvergence
		}
	}

	// covariance is best-effort: a rank-deficient Jacobian at the solution
	// yields parameters with a nil covariance
	cov, err = covariance(residual, p, r, m, n)
	if err != nil {
		return p, nil, nil
	}
	return p, cov, nil
}

func covariance(residual func(p []float64) []float64, p, r []float64, m, n int) ([][]float64, error) {
	jac := jacobian(residual, p, r)
	jtj := make([][]float64, n)
	for i := range jtj {
		jtj[i] = make([]float64, n)
	}
	for k := 0; k < m; k++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				jtj[i][j] += jac[k][i] * jac[k][j]
			}
		}
	}

	inv, err := invert(jtj)
	if err != nil {
		return nil, err
	}
	s2 := 1.0
	if m > n {
		s2 = dot(r, r) / float64(m-n)
	}
	for i := range inv {
		for j := range inv[i] {
			inv[i][j] *= s2
		}
	}
	return inv, nil
}

// jacobian computes the forward-difference Jacobian of the residual at p.
func jacobian(residual func(p []float64) []float64, p, r0 []float64) [][]float64 {
	m := len(r0)
	n := len(p)
	jac := make([][]float64, m)
	for k := range jac {
		jac[k] = make([]float64, n)
	}

	for j := 0; j < n; j++ {
		h := diffEpsilon * math.Max(math.Abs(p[j]), 1)
		pj := append([]float64(nil), p...)
		pj[j] += h
		rj := residual(pj)
		for k := 0; k < m; k++ {
			jac[k][j] = (rj[k] - r0[k]) / h
		}
	}
	return jac
}

// solve performs Gaussian elimination with partial pivoting on a copy of
// the system.
func solve(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	m := make([][]float64, n)
	for i := range m {
		m[i] = append(append([]float64(nil), a[i]...), b[i])
	}

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if m[pivot][col] == 0 {
			return nil, ErrSingular
		}
		m[col], m[pivot] = m[pivot], m[col]

		for row := col + 1; row < n; row++ {
			f := m[row][col] / m[col][col]
			for k := col; k <= n; k++ {
				m[row][k] -= f * m[col][k]
			}
		}
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := m[i][n]
		for j := i + 1; j < n; j++ {
			sum -= m[i][j] * x[j]
		}
		x[i] = sum / m[i][i]
	}
	return x, nil
}

// invert inverts a square matrix by solving against the identity columns.
func invert(a [][]float64) ([][]float64, error) {
	n := len(a)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
	}
	for col := 0; col < n; col++ {
		e := make([]float64, n)
		e[col] = 1
		x, err := solve(a, e)
		if err != nil {
			return nil, err
		}
		for row := range x {
			out[row][col] = x[row]
		}
	}
	return out, nil
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func norm(a []float64) float64 {
	return math.Sqrt(dot(a, a))
}
