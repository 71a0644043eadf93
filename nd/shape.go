package nd

import "math"

// rowStrides returns row-major strides for shape.
func rowStrides(shape []int) []int {
	s := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= shape[i]
	}
	return s
}

// shapeSize returns the element count for shape. The empty shape (rank 0)
// holds a single element.
func shapeSize(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// decompose writes the multi-index of flat (row-major, for shape) into idx.
func decompose(flat int, shape, idx []int) {
	for i := len(shape) - 1; i >= 0; i-- {
		if shape[i] == 0 {
			idx[i] = 0
			continue
		}
		idx[i] = flat % shape[i]
		flat /= shape[i]
	}
}

const defaultEpsilon = 1e-12

// nearlyEqual reports whether a and b agree within eps, absolutely for
// small magnitudes and relatively otherwise.
func nearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}
	return diff/largest <= eps
}
