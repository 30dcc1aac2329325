package nnrtree

import (
	"fmt"
	"math"
	"reflect"

	"golang.org/x/exp/constraints"
)

// Scalar is the coordinate type of points and boxes. Both signed and
// unsigned integers are supported, as well as floating point types.
type Scalar interface {
	constraints.Integer | constraints.Float
}

// maxScalar gives the largest value representable by S. For floating point
// types this is positive infinity.
func maxScalar[S Scalar]() S {
	var zero S
	typ := reflect.TypeOf(zero)
	switch typ.Kind() {
	case reflect.Float32, reflect.Float64:
		return S(math.Inf(+1))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return S(uint64(1)<<(typ.Bits()-1) - 1)
	default:
		return S(uint64(math.MaxUint64) >> (64 - typ.Bits()))
	}
}

// absDiff gives |a - b| without ever producing a negative intermediate, so
// that unsigned scalars don't wrap.
func absDiff[S Scalar](a, b S) S {
	if a > b {
		return a - b
	}
	return b - a
}

// saturatingSq gives d*d, or limit if that doesn't fit. A negative d can only
// come from a signed difference that already wrapped.
func saturatingSq[S Scalar](d, limit S) S {
	if d < 0 || (d != 0 && d > limit/d) {
		return limit
	}
	return d * d
}

// saturatingAdd gives a+b for non-negative a and b, or limit if the sum
// doesn't fit.
func saturatingAdd[S Scalar](a, b, limit S) S {
	if b > limit-a {
		return limit
	}
	return a + b
}

func minScalar[S Scalar](a, b S) S {
	if b < a {
		return b
	}
	return a
}

// checkDistance panics if d isn't an ordered number. Comparisons against NaN
// are always false, which would silently corrupt the nearest neighbour
// ordering.
func checkDistance[S Scalar](d S) S {
	if d != d {
		panic(fmt.Errorf("%w: %v", ErrUnorderedDistance, d))
	}
	return d
}
