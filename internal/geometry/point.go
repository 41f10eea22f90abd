package geometry

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/spatial/r3"
)

// Point3D is an immutable location in model space.
type Point3D struct {
	X, Y, Z float64
}

// PointKey is a tolerance-rounded representation of a point or vector, usable
// as a map key. Two values that compare equal under the tolerance almost
// always share a key; values straddling a rounding boundary may not. Each
// component is the canonical decimal string of the rounded coordinate, so keys
// stay exact for any magnitude.
type PointKey struct {
	X, Y, Z string
}

// NewPoint3D returns the point (x, y, z).
func NewPoint3D(x, y, z float64) Point3D {
	return Point3D{X: x, Y: y, Z: z}
}

// PointFromVec converts a gonum vector to a point.
func PointFromVec(v r3.Vec) Point3D {
	return Point3D{X: v.X, Y: v.Y, Z: v.Z}
}

// Vec returns p as a gonum vector.
func (p Point3D) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// Sub returns the vector from q to p.
func (p Point3D) Sub(q Point3D) Vector3D {
	return VectorFromVec(r3.Sub(p.Vec(), q.Vec()))
}

// Add translates p by v.
func (p Point3D) Add(v Vector3D) Point3D {
	return PointFromVec(r3.Add(p.Vec(), v.Vec()))
}

// DistanceTo returns the Euclidean distance between p and q.
func (p Point3D) DistanceTo(q Point3D) float64 {
	return r3.Norm(r3.Sub(p.Vec(), q.Vec()))
}

// Equal reports whether every component of p and q differs by at most tol.
func (p Point3D) Equal(q Point3D, tol float64) bool {
	return EqualTol(p.X, q.X, tol) && EqualTol(p.Y, q.Y, tol) && EqualTol(p.Z, q.Z, tol)
}

// Key rounds p to the decimal precision implied by tol.
func (p Point3D) Key(tol float64) PointKey {
	places := Precision(tol)
	return PointKey{X: roundKey(p.X, places), Y: roundKey(p.Y, places), Z: roundKey(p.Z, places)}
}

// Midpoint returns the point halfway between p and q.
func (p Point3D) Midpoint(q Point3D) Point3D {
	return PointFromVec(r3.Scale(0.5, r3.Add(p.Vec(), q.Vec())))
}

func (p Point3D) String() string {
	return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z)
}

func roundKey(v float64, places int32) string {
	return decimal.NewFromFloat(v).Round(places).String()
}
