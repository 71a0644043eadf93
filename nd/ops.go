package nd

import (
	"fmt"
	"sort"
)

// Reorder permutes the dimensions in place. Dimensions not mentioned are
// appended after the named ones in their original relative order, so no
// axis is ever dropped. Naming a dimension the array does not have fails
// with ErrDimNotFound and leaves the array untouched.
func (a *Array) Reorder(dims ...string) error {
	order := make([]string, 0, len(a.dims))
	seen := make(map[string]struct{}, len(dims))
	for _, d := range dims {
		if _, err := a.IndexOf(d); err != nil {
			return err
		}
		if _, ok := seen[d]; ok {
			return fmt.Errorf("%w: %q listed twice", ErrDimExists, d)
		}
		seen[d] = struct{}{}
		order = append(order, d)
	}
	for _, d := range a.dims {
		if _, ok := seen[d]; !ok {
			order = append(order, d)
		}
	}

	perm := make([]int, len(order))
	for i, d := range order {
		ix, _ := a.IndexOf(d)
		perm[i] = ix
	}
	a.transpose(perm)
	return nil
}

// Sort reorders the dimensions lexicographically by name, the canonical
// ordering used before structural comparisons such as concatenation.
func (a *Array) Sort() {
	order := a.Dims()
	sort.Strings(order)
	// every dim is present, Reorder cannot fail
	_ = a.Reorder(order...)
}

// Rename relabels a dimension in place.
func (a *Array) Rename(oldName, newName string) error {
	if newName == "" {
		return ErrAxisName
	}
	ix, err := a.IndexOf(oldName)
	if err != nil {
		return err
	}
	if oldName != newName {
		if _, err := a.IndexOf(newName); err == nil {
			return fmt.Errorf("%w: %q", ErrDimExists, newName)
		}
	}
	a.dims[ix] = newName
	return nil
}

// Squeeze removes every dimension of length 1 in place. The coordinate
// values of the removed axes are discarded; this information loss is
// deliberate and irreversible.
func (a *Array) Squeeze() {
	dims := a.dims[:0]
	coords := a.coords[:0]
	shape := a.shape[:0]
	for i, n := range a.shape {
		if n == 1 {
			continue
		}
		dims = append(dims, a.dims[i])
		coords = append(coords, a.coords[i])
		shape = append(shape, n)
	}
	a.dims = dims
	a.coords = coords
	a.shape = shape
	// the flat row-major buffer is unchanged by dropping unit axes
}

// SumOver sums along the named dimension in place, removing it from dims
// and coords. The axis coordinate values are lost. Reducing the last
// dimension leaves a rank-0 array holding a single value.
func (a *Array) SumOver(dim string) error {
	return a.reduce(dim, func(acc, v complex128, first bool) complex128 {
		if first {
			return v
		}
		return acc + v
	})
}

// MaxOver takes the maximum along the named dimension in place, removing
// it from dims and coords. Complex values compare by real part, then by
// imaginary part.
func (a *Array) MaxOver(dim string) error {
	return a.reduce(dim, func(acc, v complex128, first bool) complex128 {
		if first || complexLess(acc, v) {
			return v
		}
		return acc
	})
}

// Max returns the maximum of the whole buffer, comparing by real part and
// then imaginary part.
func (a *Array) Max() complex128 {
	var m complex128
	for i, v := range a.values {
		if i == 0 || complexLess(m, v) {
			m = v
		}
	}
	return m
}

func complexLess(a, b complex128) bool {
	if real(a) != real(b) {
		return real(a) < real(b)
	}
	return imag(a) < imag(b)
}

func (a *Array) reduce(dim string, combine func(acc, v complex128, first bool) complex128) error {
	ix, err := a.IndexOf(dim)
	if err != nil {
		return err
	}

	newShape := make([]int, 0, len(a.shape)-1)
	newShape = append(newShape, a.shape[:ix]...)
	newShape = append(newShape, a.shape[ix+1:]...)

	out := make([]complex128, shapeSize(newShape))
	touched := make([]bool, len(out))
	outStrides := rowStrides(newShape)
	idx := make([]int, len(a.shape))

	for flat, v := range a.values {
		decompose(flat, a.shape, idx)
		p := 0
		o := 0
		for k := range idx {
			if k == ix {
				continue
			}
			p += idx[k] * outStrides[o]
			o++
		}
		out[p] = combine(out[p], v, !touched[p])
		touched[p] = true
	}

	a.values = out
	a.shape = newShape
	a.dims = append(a.dims[:ix], a.dims[ix+1:]...)
	a.coords = append(a.coords[:ix], a.coords[ix+1:]...)
	return nil
}

// AddDim appends a new length-1 dimension with a single coordinate value,
// raising the rank by one.
func (a *Array) AddDim(name string, value float64) error {
	if name == "" {
		return ErrAxisName
	}
	if _, err := a.IndexOf(name); err == nil {
		return fmt.Errorf("%w: %q", ErrDimExists, name)
	}
	a.dims = append(a.dims, name)
	a.coords = append(a.coords, []float64{value})
	a.shape = append(a.shape, 1)
	return nil
}

// ReplaceDim replaces the coordinate axis of dim and the full value
// buffer in one step, for operations that change the length of a single
// dimension (zero filling, transforms). The new buffer must match the
// shape obtained by resizing dim to len(coords); anything else fails with
// a *ShapeError naming the resized dimension and leaves the array
// untouched.
func (a *Array) ReplaceDim(dim string, coords []float64, values []complex128) error {
	ix, err := a.IndexOf(dim)
	if err != nil {
		return err
	}

	newShape := append([]int(nil), a.shape...)
	newShape[ix] = len(coords)
	if len(values) != shapeSize(newShape) {
		return &ShapeError{Dim: dim, Index: ix, Want: len(values), Got: len(coords)}
	}

	a.shape = newShape
	a.coords[ix] = append([]float64(nil), coords...)
	a.values = append([]complex128(nil), values...)
	return nil
}

// ConcatenateAlong joins other onto a along the named dimension, in place.
//
// Both operands are first brought to the canonical (sorted) dimension
// order; their dims lists must then be identical or the operation fails
// with ErrDimsMismatch. The values are joined along dim, other's
// coordinate vector for dim is appended to a's, and the pre-sort
// dimension order of a is restored on the result. other is restored to
// its own original order before returning.
func (a *Array) ConcatenateAlong(other *Array, dim string) error {
	if _, err := a.IndexOf(dim); err != nil {
		return err
	}

	origOrder := a.Dims()
	otherOrder := other.Dims()
	a.Sort()
	other.Sort()
	defer func() { _ = other.Reorder(otherOrder...) }()

	if len(a.dims) != len(other.dims) {
		_ = a.Reorder(origOrder...)
		return ErrDimsMismatch
	}
	for i, d := range a.dims {
		if other.dims[i] != d {
			_ = a.Reorder(origOrder...)
			return ErrDimsMismatch
		}
	}
	// all other dimensions must agree in length for the join to be valid
	ix, _ := a.IndexOf(dim)
	for i := range a.shape {
		if i != ix && a.shape[i] != other.shape[i] {
			_ = a.Reorder(origOrder...)
			return fmt.Errorf("%w: dimension %q has lengths %d and %d",
				ErrDimsMismatch, a.dims[i], a.shape[i], other.shape[i])
		}
	}

	n1 := a.shape[ix]
	newShape := append([]int(nil), a.shape...)
	newShape[ix] += other.shape[ix]

	joined := make([]complex128, shapeSize(newShape))
	idx := make([]int, len(newShape))
	aStrides := rowStrides(a.shape)
	bStrides := rowStrides(other.shape)
	for flat := range joined {
		decompose(flat, newShape, idx)
		if idx[ix] < n1 {
			p := 0
			for k := range idx {
				p += idx[k] * aStrides[k]
			}
			joined[flat] = a.values[p]
		} else {
			p := 0
			for k := range idx {
				j := idx[k]
				if k == ix {
					j -= n1
				}
				p += j * bStrides[k]
			}
			joined[flat] = other.values[p]
		}
	}

	a.values = joined
	a.shape = newShape
	a.coords[ix] = append(append([]float64(nil), a.coords[ix]...), other.coords[ix]...)

	return a.Reorder(origOrder...)
}

// transpose permutes the buffer so that new dimension k is old dimension
// perm[k].
func (a *Array) transpose(perm []int) {
	rank := len(a.shape)
	newShape := make([]int, rank)
	newDims := make([]string, rank)
	newCoords := make([][]float64, rank)
	for k, p := range perm {
		newShape[k] = a.shape[p]
		newDims[k] = a.dims[p]
		newCoords[k] = a.coords[p]
	}

	oldStrides := rowStrides(a.shape)
	out := make([]complex128, len(a.values))
	idx := make([]int, rank)
	for flat := range out {
		decompose(flat, newShape, idx)
		p := 0
		for k := range idx {
			p += idx[k] * oldStrides[perm[k]]
		}
		out[flat] = a.values[p]
	}

	a.values = out
	a.shape = newShape
	a.dims = newDims
	a.coords = newCoords
}
