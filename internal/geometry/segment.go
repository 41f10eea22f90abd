package geometry

import (
	"math"
)

// LineSegment3D is the straight segment from Start to End.
type LineSegment3D struct {
	Start Point3D
	End   Point3D
}

// SegmentIntersection describes how two segments meet.
type SegmentIntersection struct {
	Outcome Outcome
	// Point is the meeting point for IntersectedWithinSegments and
	// IntersectedOutsideSegments, or the start of the shared part for Overlap.
	Point Point3D
}

// NewLineSegment3D rejects segments whose endpoints coincide within tol.
func NewLineSegment3D(start, end Point3D, tol float64) (LineSegment3D, error) {
	if start.Equal(end, tol) {
		return LineSegment3D{}, ErrDegenerate
	}
	return LineSegment3D{Start: start, End: end}, nil
}

// Kind implements Shape.
func (s LineSegment3D) Kind() Kind { return KindLineSegment }

// BoundingBox implements Shape.
func (s LineSegment3D) BoundingBox() BoundingBox { return NewBoundingBox(s.Start, s.End) }

// Vector returns End-Start.
func (s LineSegment3D) Vector() Vector3D { return s.End.Sub(s.Start) }

// Length returns the segment length.
func (s LineSegment3D) Length() float64 { return s.Vector().Norm() }

// Direction returns the unit direction from Start to End.
func (s LineSegment3D) Direction(tol float64) (Vector3D, error) {
	return s.Vector().Unit(tol)
}

// PointAt returns Start + t·(End-Start).
func (s LineSegment3D) PointAt(t float64) Point3D {
	return s.Start.Add(s.Vector().Scale(t))
}

// Extend lengthens the segment by atStart before Start and atEnd past End.
// Negative values shorten it.
func (s LineSegment3D) Extend(atStart, atEnd, tol float64) (LineSegment3D, error) {
	dir, err := s.Direction(tol)
	if err != nil {
		return LineSegment3D{}, ErrDegenerate
	}
	return NewLineSegment3D(s.Start.Add(dir.Scale(-atStart)), s.End.Add(dir.Scale(atEnd)), tol)
}

// ClosestPoint returns the point on s nearest to p.
func (s LineSegment3D) ClosestPoint(p Point3D) Point3D {
	v := s.Vector()
	l2 := v.Dot(v)
	if l2 == 0 {
		return s.Start
	}
	t := p.Sub(s.Start).Dot(v) / l2
	return s.PointAt(clamp(t, 0, 1))
}

// DistanceToPoint returns the shortest distance from p to the segment.
func (s LineSegment3D) DistanceToPoint(p Point3D) float64 {
	return p.DistanceTo(s.ClosestPoint(p))
}

// ContainsPoint reports whether p lies on the segment within tol.
func (s LineSegment3D) ContainsPoint(p Point3D, tol float64) bool {
	return s.DistanceToPoint(p) <= tol
}

// Intersect classifies how s and o meet.
func (s LineSegment3D) Intersect(o LineSegment3D, tol float64) SegmentIntersection {
	d1, d2 := s.Vector(), o.Vector()
	n := d1.Cross(d2)
	if n.Norm() <= tol*math.Max(1, d1.Norm()*d2.Norm()) {
		return s.intersectParallel(o, tol)
	}

	// Solve Start + t·d1 + w·n = o.Start + u·d2 for (t, u, w).
	m := NewMatrix3x3FromColumns(d1, d2.Scale(-1), n)
	x, err := m.Solve(o.Start.Sub(s.Start))
	if err != nil {
		return SegmentIntersection{Outcome: NotIntersected}
	}
	t, u, w := x.X, x.Y, x.Z
	if math.Abs(w)*n.Norm() > tol {
		return SegmentIntersection{Outcome: NotIntersected}
	}
	p := s.PointAt(t)
	ts := tol / d1.Norm()
	us := tol / d2.Norm()
	if t >= -ts && t <= 1+ts && u >= -us && u <= 1+us {
		return SegmentIntersection{Outcome: IntersectedWithinSegments, Point: p}
	}
	return SegmentIntersection{Outcome: IntersectedOutsideSegments, Point: p}
}

func (s LineSegment3D) intersectParallel(o LineSegment3D, tol float64) SegmentIntersection {
	v := s.Vector()
	l2 := v.Dot(v)
	if l2 == 0 {
		if o.ContainsPoint(s.Start, tol) {
			return SegmentIntersection{Outcome: IntersectedWithinSegments, Point: s.Start}
		}
		return SegmentIntersection{Outcome: NotIntersected}
	}
	// Distance between the supporting lines.
	off := o.Start.Sub(s.Start)
	perp := off.Sub(v.Scale(off.Dot(v) / l2))
	if perp.Norm() > tol {
		return SegmentIntersection{Outcome: NotIntersected}
	}
	t0 := o.Start.Sub(s.Start).Dot(v) / l2
	t1 := o.End.Sub(s.Start).Dot(v) / l2
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	lo, hi := math.Max(0, t0), math.Min(1, t1)
	ts := tol / math.Sqrt(l2)
	switch {
	case hi < lo-ts:
		return SegmentIntersection{Outcome: NotIntersected}
	case (hi-lo)*math.Sqrt(l2) <= tol:
		return SegmentIntersection{Outcome: IntersectedWithinSegments, Point: s.PointAt(lo)}
	default:
		return SegmentIntersection{Outcome: Overlap, Point: s.PointAt(lo)}
	}
}

// IntersectsBox reports whether the segment touches the closed box b. It uses
// the slab method restricted to t in [0, 1].
func (s LineSegment3D) IntersectsBox(b BoundingBox) bool {
	tmin, tmax := 0.0, 1.0
	d := s.Vector()
	origin := [3]float64{s.Start.X, s.Start.Y, s.Start.Z}
	dir := [3]float64{d.X, d.Y, d.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}
	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return false
			}
			continue
		}
		t1 := (lo[axis] - origin[axis]) / dir[axis]
		t2 := (hi[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return false
		}
	}
	return true
}
