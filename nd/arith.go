package nd

import (
	"fmt"
	"math/cmplx"
)

// operand is the tagged union the binary operators dispatch over once per
// call: a scalar, a raw numeric buffer with a shape, or another Array's
// buffer. Dimension names of an Array operand are not reconciled; its
// buffer participates purely positionally.
type operand struct {
	scalar   complex128
	isScalar bool
	buf      []complex128
	shape    []int
	raw      bool // buffer came in flat, with no shape of its own
}

// resolveOperand classifies v. ok is false for unsupported operand types.
func resolveOperand(v any) (operand, bool) {
	switch o := v.(type) {
	case int:
		return operand{scalar: complex(float64(o), 0), isScalar: true}, true
	case float64:
		return operand{scalar: complex(o, 0), isScalar: true}, true
	case complex128:
		return operand{scalar: o, isScalar: true}, true
	case []float64:
		buf := make([]complex128, len(o))
		for i, x := range o {
			buf[i] = complex(x, 0)
		}
		return operand{buf: buf, shape: []int{len(o)}, raw: true}, true
	case []complex128:
		return operand{buf: o, shape: []int{len(o)}, raw: true}, true
	case *Array:
		if o == nil {
			return operand{}, false
		}
		return operand{buf: o.values, shape: o.shape}, true
	default:
		return operand{}, false
	}
}

// Add returns a deep copy with v added elementwise.
//
// v may be a scalar (int, float64, complex128), a raw buffer ([]float64,
// []complex128), or another Array used purely by buffer. A raw buffer whose
// length equals the array size is read with the array's row-major shape;
// shorter buffers broadcast positionally against the trailing dimensions.
// Any other type is a soft failure in
// the default lenient mode: a diagnostic is written and (nil, nil) is
// returned, so the caller must check the result. In strict mode the same
// condition returns ErrOperand.
func (a *Array) Add(v any) (*Array, error) {
	return a.binary(v, "add", false, func(x, y complex128) complex128 { return x + y })
}

// Sub returns a deep copy with v subtracted elementwise.
func (a *Array) Sub(v any) (*Array, error) {
	return a.binary(v, "subtract", false, func(x, y complex128) complex128 { return x - y })
}

// Mul returns a deep copy multiplied elementwise by v.
func (a *Array) Mul(v any) (*Array, error) {
	return a.binary(v, "multiply", false, func(x, y complex128) complex128 { return x * y })
}

// Div returns a deep copy divided elementwise by v.
func (a *Array) Div(v any) (*Array, error) {
	return a.binary(v, "divide", false, func(x, y complex128) complex128 { return x / y })
}

// Pow returns a deep copy raised elementwise to the power v.
func (a *Array) Pow(v any) (*Array, error) {
	return a.binary(v, "raise", false, cmplx.Pow)
}

// RAdd is the reflected addition v + a; it defers to Add.
func (a *Array) RAdd(v any) (*Array, error) { return a.Add(v) }

// RMul is the reflected multiplication v * a; it defers to Mul.
func (a *Array) RMul(v any) (*Array, error) { return a.Mul(v) }

// RSub computes the reflected subtraction v - a.
func (a *Array) RSub(v any) (*Array, error) {
	return a.binary(v, "subtract", true, func(x, y complex128) complex128 { return x - y })
}

// RDiv computes the reflected division v / a.
func (a *Array) RDiv(v any) (*Array, error) {
	return a.binary(v, "divide", true, func(x, y complex128) complex128 { return x / y })
}

func (a *Array) binary(v any, verb string, reflected bool, op func(x, y complex128) complex128) (*Array, error) {
	o, ok := resolveOperand(v)
	if !ok {
		if a.strict {
			return nil, fmt.Errorf("%w: %T", ErrOperand, v)
		}
		fmt.Fprintf(a.diagnostics(), "nd: cannot %s, operand type not supported: %T\n", verb, v)
		return nil, nil
	}

	out := a.Copy()

	if o.isScalar {
		for i, x := range out.values {
			if reflected {
				out.values[i] = op(o.scalar, x)
			} else {
				out.values[i] = op(x, o.scalar)
			}
		}
		return out, nil
	}

	// A flat buffer covering the whole array is read with the array's own
	// row-major shape; shorter raw buffers broadcast against the trailing
	// dimensions.
	if o.raw && len(o.buf) == len(a.values) {
		o.shape = a.shape
	}

	bStrides, err := broadcastStrides(a.shape, o.shape)
	if err != nil {
		if a.strict {
			return nil, err
		}
		fmt.Fprintf(a.diagnostics(), "nd: cannot %s, operand shape %v does not broadcast to %v\n", verb, o.shape, a.shape)
		return nil, nil
	}

	idx := make([]int, len(a.shape))
	for flat, x := range out.values {
		decompose(flat, a.shape, idx)
		p := 0
		for k := range idx {
			p += idx[k] * bStrides[k]
		}
		y := o.buf[p]
		if reflected {
			out.values[flat] = op(y, x)
		} else {
			out.values[flat] = op(x, y)
		}
	}
	return out, nil
}

// broadcastStrides aligns the operand shape against the trailing
// dimensions of shape, standard positional broadcasting: each aligned
// operand dimension must equal the array dimension or be 1 (stride 0).
// The operand may not exceed the array's rank or stretch it, because the
// result must keep the receiver's shape for its coordinate vectors to
// stay consistent.
func broadcastStrides(shape, opShape []int) ([]int, error) {
	if len(opShape) > len(shape) {
		return nil, fmt.Errorf("%w: operand rank %d exceeds array rank %d", ErrBroadcast, len(opShape), len(shape))
	}

	opStrides := rowStrides(opShape)
	out := make([]int, len(shape))
	offset := len(shape) - len(opShape)
	for k := range shape {
		if k < offset {
			out[k] = 0
			continue
		}
		od := opShape[k-offset]
		switch od {
		case shape[k]:
			out[k] = opStrides[k-offset]
		case 1:
			out[k] = 0
		default:
			return nil, fmt.Errorf("%w: operand length %d against dimension length %d", ErrBroadcast, od, shape[k])
		}
	}
	return out, nil
}
