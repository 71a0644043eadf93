// Package nd provides the labeled multidimensional array at the heart of
// ODNP NMR processing: an n-dimensional complex buffer bound to named,
// ordered axes with coordinate vectors.
//
// The central type is [Array], which keeps buffer shape, dimension labels,
// and coordinate vectors mutually consistent through every operation.
// [Axis] models a single coordinate dimension either as an explicit sample
// sequence or as a lazily materialized (start, stop, step) progression,
// and [Collection] is an insertion-ordered registry of axes.
//
// Structural operations (Reorder, Sort, Rename, Squeeze, SumOver, MaxOver,
// ConcatenateAlong) mutate the receiver in place. Value-producing
// operations (Index, RangeSelect, arithmetic, Abs/Real/Imag) return deep
// copies and never alias the receiver's buffer or coordinate vectors.
package nd
