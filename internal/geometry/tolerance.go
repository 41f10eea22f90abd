package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// DefaultTolerance is the absolute tolerance used for models authored in metres.
const DefaultTolerance = 1e-6

// maxPrecision bounds the number of decimal places used for hash keys.
const maxPrecision = 12

// EqualTol reports whether |a-b| <= tol.
func EqualTol(a, b, tol float64) bool {
	return scalar.EqualWithinAbs(a, b, tol)
}

// MustTolerance panics if tol is NaN, infinite or negative. A bad tolerance is
// a programming error, never a data error.
func MustTolerance(tol float64) float64 {
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol < 0 {
		panic(fmt.Sprintf("geometry: invalid tolerance %v", tol))
	}
	return tol
}

// Precision returns the number of decimal places matching tol, e.g. 6 for 1e-6.
func Precision(tol float64) int32 {
	MustTolerance(tol)
	if tol == 0 {
		return maxPrecision
	}
	p := math.Ceil(-math.Log10(tol) - 1e-9)
	if p < 0 {
		return 0
	}
	if p > maxPrecision {
		return maxPrecision
	}
	return int32(p)
}
