package geometry

import (
	"errors"
	"math"
)

// ErrDegenerate is returned when a primitive cannot form a valid plane,
// direction or volume, e.g. a zero-area face or a zero-length segment.
var ErrDegenerate = errors.New("degenerate geometry")

// Side classifies a point against a plane.
type Side int

const (
	Below Side = iota - 1
	On
	Above
)

// Plane is given by a point on it and a unit normal.
type Plane struct {
	Point  Point3D
	Normal Vector3D
}

// NewPlane normalises normal. A normal shorter than tol yields ErrDegenerate.
func NewPlane(p Point3D, normal Vector3D, tol float64) (Plane, error) {
	n, err := normal.Unit(tol)
	if err != nil {
		return Plane{}, ErrDegenerate
	}
	return Plane{Point: p, Normal: n}, nil
}

// SignedDistance is positive on the side the normal points to.
func (pl Plane) SignedDistance(p Point3D) float64 {
	return pl.Normal.Dot(p.Sub(pl.Point))
}

// Side classifies p as On when within tol of the plane.
func (pl Plane) Side(p Point3D, tol float64) Side {
	d := pl.SignedDistance(p)
	switch {
	case d > tol:
		return Above
	case d < -tol:
		return Below
	default:
		return On
	}
}

// Project returns the orthogonal projection of p onto the plane.
func (pl Plane) Project(p Point3D) Point3D {
	return p.Add(pl.Normal.Scale(-pl.SignedDistance(p)))
}

// IntersectSegment returns where s meets the plane. A segment lying in the
// plane reports Overlap and its start point.
func (pl Plane) IntersectSegment(s LineSegment3D, tol float64) (Point3D, Outcome) {
	d0 := pl.SignedDistance(s.Start)
	d1 := pl.SignedDistance(s.End)
	on0, on1 := math.Abs(d0) <= tol, math.Abs(d1) <= tol
	switch {
	case on0 && on1:
		return s.Start, Overlap
	case on0:
		return s.Start, IntersectedWithinSegments
	case on1:
		return s.End, IntersectedWithinSegments
	case (d0 > 0) == (d1 > 0):
		return Point3D{}, NotIntersected
	}
	t := d0 / (d0 - d1)
	return s.PointAt(t), IntersectedWithinSegments
}

// dominantAxis returns the axis along which n has its largest magnitude.
func dominantAxis(n Vector3D) int {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case ax >= ay && ax >= az:
		return 0
	case ay >= az:
		return 1
	default:
		return 2
	}
}
