package geometry

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrZeroVector is returned when a direction is requested from a vector whose
// length is within tolerance of zero.
var ErrZeroVector = errors.New("zero-length vector")

// Vector3D is a displacement in model space.
type Vector3D struct {
	X, Y, Z float64
}

// NewVector3D returns the vector (x, y, z).
func NewVector3D(x, y, z float64) Vector3D {
	return Vector3D{X: x, Y: y, Z: z}
}

// VectorFromVec converts a gonum vector.
func VectorFromVec(v r3.Vec) Vector3D {
	return Vector3D{X: v.X, Y: v.Y, Z: v.Z}
}

// Vec returns v as a gonum vector.
func (v Vector3D) Vec() r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func (v Vector3D) Add(w Vector3D) Vector3D { return VectorFromVec(r3.Add(v.Vec(), w.Vec())) }
func (v Vector3D) Sub(w Vector3D) Vector3D { return VectorFromVec(r3.Sub(v.Vec(), w.Vec())) }
func (v Vector3D) Scale(f float64) Vector3D { return VectorFromVec(r3.Scale(f, v.Vec())) }
func (v Vector3D) Dot(w Vector3D) float64  { return r3.Dot(v.Vec(), w.Vec()) }
func (v Vector3D) Cross(w Vector3D) Vector3D {
	return VectorFromVec(r3.Cross(v.Vec(), w.Vec()))
}

// Norm returns the Euclidean length of v.
func (v Vector3D) Norm() float64 { return r3.Norm(v.Vec()) }

// Unit returns v scaled to length one. Vectors shorter than tol have no
// direction and yield ErrZeroVector.
func (v Vector3D) Unit(tol float64) (Vector3D, error) {
	n := v.Norm()
	if n <= tol || n == 0 {
		return Vector3D{}, ErrZeroVector
	}
	return v.Scale(1 / n), nil
}

// Equal reports whether every component of v and w differs by at most tol.
func (v Vector3D) Equal(w Vector3D, tol float64) bool {
	return EqualTol(v.X, w.X, tol) && EqualTol(v.Y, w.Y, tol) && EqualTol(v.Z, w.Z, tol)
}

// Key rounds v to the decimal precision implied by tol.
func (v Vector3D) Key(tol float64) PointKey {
	places := Precision(tol)
	return PointKey{X: roundKey(v.X, places), Y: roundKey(v.Y, places), Z: roundKey(v.Z, places)}
}

// IsParallel reports whether v and w point along the same line. Both vectors
// are expected to be unit length.
func (v Vector3D) IsParallel(w Vector3D, tol float64) bool {
	return v.Cross(w).Norm() <= tol
}

func (v Vector3D) String() string {
	return fmt.Sprintf("<%g, %g, %g>", v.X, v.Y, v.Z)
}
