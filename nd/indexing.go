package nd

import (
	"fmt"
	"math"
)

// End marks "to the end of the dimension" in a Range stop position.
const End = math.MaxInt32

// Range selects the half-open coordinate index interval [Start, Stop).
// Negative bounds count from the end of the dimension; Stop may be End.
type Range struct {
	Start int
	Stop  int
}

// All selects a full dimension.
var All = Range{Start: 0, Stop: End}

func (r Range) resolve(n int) (lo, hi int, err error) {
	lo, hi = r.Start, r.Stop
	if lo < 0 {
		lo += n
	}
	if hi == End {
		hi = n
	} else if hi < 0 {
		hi += n
	}
	if lo < 0 || lo > n || hi < lo || hi > n {
		return 0, 0, fmt.Errorf("%w: [%d, %d) in dimension of length %d", ErrIndexRange, r.Start, r.Stop, n)
	}
	return lo, hi, nil
}

// resolveSelector maps one selector token onto an explicit range for a
// dimension of length n. An int k selects the length-1 slice [k, k+1)
// with negative indices resolved from the end, so -1 selects the final
// sample through the end of the dimension.
func resolveSelector(sel any, n int) (Range, error) {
	switch s := sel.(type) {
	case int:
		k := s
		if k < 0 {
			k += n
		}
		if k < 0 || k >= n {
			return Range{}, fmt.Errorf("%w: %d in dimension of length %d", ErrIndexRange, s, n)
		}
		return Range{Start: k, Stop: k + 1}, nil
	case Range:
		return s, nil
	default:
		return Range{}, fmt.Errorf("%w: %T", ErrIndexSelector, sel)
	}
}

// Index selects along named dimensions and returns a deep copy.
//
// The selector list alternates dimension label and selector, e.g.
//
//	sub, err := a.Index("x", 3, "y", nd.Range{Start: 0, Stop: 8})
//
// Dimensions not named keep their full extent. All dimensions are resolved
// to explicit ranges first and applied simultaneously, so no intermediate
// array with a stale shape ever exists. An odd token count fails with
// ErrIndexPairs; an unknown label fails with ErrDimNotFound.
func (a *Array) Index(sel ...any) (*Array, error) {
	if len(sel)%2 != 0 {
		return nil, ErrIndexPairs
	}

	ranges := make([]Range, len(a.dims))
	for i := range ranges {
		ranges[i] = All
	}
	for i := 0; i < len(sel); i += 2 {
		label, ok := sel[i].(string)
		if !ok {
			return nil, fmt.Errorf("%w: label %v is not a string", ErrIndexSelector, sel[i])
		}
		ix, err := a.IndexOf(label)
		if err != nil {
			return nil, err
		}
		r, err := resolveSelector(sel[i+1], a.shape[ix])
		if err != nil {
			return nil, err
		}
		ranges[ix] = r
	}

	return a.slice(ranges)
}

// RangeSelect keeps only samples of dim whose coordinate value lies
// strictly between min and max, returning a deep copy. An empty selection
// yields a zero-length dimension; downstream consumers must handle the
// empty array explicitly.
func (a *Array) RangeSelect(dim string, min, max float64) (*Array, error) {
	ix, err := a.IndexOf(dim)
	if err != nil {
		return nil, err
	}

	keep := make([]int, 0, a.shape[ix])
	for i, v := range a.coords[ix] {
		if v > min && v < max {
			keep = append(keep, i)
		}
	}
	return a.take(ix, keep)
}

// slice applies one resolved range per dimension simultaneously.
func (a *Array) slice(ranges []Range) (*Array, error) {
	rank := len(a.dims)
	lo := make([]int, rank)
	newShape := make([]int, rank)
	for i, r := range ranges {
		l, h, err := r.resolve(a.shape[i])
		if err != nil {
			return nil, err
		}
		lo[i] = l
		newShape[i] = h - l
	}

	newCoords := make([][]float64, rank)
	for i := range newCoords {
		newCoords[i] = append([]float64(nil), a.coords[i][lo[i]:lo[i]+newShape[i]]...)
	}

	out := a.Copy()
	out.shape = newShape
	out.coords = newCoords
	out.values = gather(a.values, a.shape, newShape, func(dst, src []int) {
		for k := range src {
			src[k] = dst[k] + lo[k]
		}
	})
	return out, nil
}

// take keeps the listed positions of axis ix, in order.
func (a *Array) take(ix int, keep []int) (*Array, error) {
	newShape := append([]int(nil), a.shape...)
	newShape[ix] = len(keep)

	newCoords := copyCoords(a.coords)
	kept := make([]float64, len(keep))
	for i, k := range keep {
		kept[i] = a.coords[ix][k]
	}
	newCoords[ix] = kept

	out := a.Copy()
	out.shape = newShape
	out.coords = newCoords
	out.values = gather(a.values, a.shape, newShape, func(dst, src []int) {
		copy(src, dst)
		src[ix] = keep[dst[ix]]
	})
	return out, nil
}

// gather builds a buffer of dstShape where each destination multi-index is
// mapped onto a source multi-index by mapIdx(dst, src).
func gather(src []complex128, srcShape, dstShape []int, mapIdx func(dst, src []int)) []complex128 {
	rank := len(dstShape)
	srcStrides := rowStrides(srcShape)
	out := make([]complex128, shapeSize(dstShape))
	dstIdx := make([]int, rank)
	srcIdx := make([]int, rank)

	for flat := range out {
		decompose(flat, dstShape, dstIdx)
		mapIdx(dstIdx, srcIdx)
		p := 0
		for k := range srcIdx {
			p += srcIdx[k] * srcStrides[k]
		}
		out[flat] = src[p]
	}
	return out
}
