package geometry

import (
	"fmt"
	"math"
)

// Face3D is a planar polygon: one outer loop and zero or more hole loops.
// Faces are immutable once built; the plane, bounding box and centroid are
// derived at construction.
type Face3D struct {
	outer    []Point3D
	inner    [][]Point3D
	plane    Plane
	bbox     BoundingBox
	centroid Point3D

	// 2D projections of the loops onto the plane obtained by dropping axis.
	axis    int
	outer2D [][2]float64
	inner2D [][][2]float64
}

// NewFace3D validates and builds a face. Consecutive duplicate vertices and a
// repeated closing vertex are dropped. The normal follows the winding of the
// outer loop (right-hand rule). Loops with fewer than three distinct vertices,
// zero area or vertices off the plane by more than tol (scaled by the face
// extent when larger than one unit) yield ErrDegenerate.
func NewFace3D(outer []Point3D, inner [][]Point3D, tol float64) (*Face3D, error) {
	MustTolerance(tol)
	f := &Face3D{outer: cleanLoop(outer, tol)}
	if len(f.outer) < 3 {
		return nil, fmt.Errorf("outer loop has %d distinct vertices: %w", len(f.outer), ErrDegenerate)
	}
	for i, loop := range inner {
		c := cleanLoop(loop, tol)
		if len(c) < 3 {
			return nil, fmt.Errorf("inner loop %d has %d distinct vertices: %w", i, len(c), ErrDegenerate)
		}
		f.inner = append(f.inner, c)
	}

	f.bbox = NewBoundingBox(f.outer...)
	var sum Vector3D
	for _, p := range f.outer {
		sum = sum.Add(Vector3D{p.X, p.Y, p.Z})
	}
	avg := sum.Scale(1 / float64(len(f.outer)))
	f.centroid = Point3D{avg.X, avg.Y, avg.Z}

	pl, err := NewPlane(f.centroid, newellNormal(f.outer), tol*tol)
	if err != nil {
		return nil, fmt.Errorf("face normal: %w", err)
	}
	f.plane = pl

	planarTol := tol * math.Max(1, f.bbox.LargestEdge())
	for _, loop := range f.loops() {
		for _, p := range loop {
			if d := math.Abs(pl.SignedDistance(p)); d > planarTol {
				return nil, fmt.Errorf("vertex %v is %g off the face plane: %w", p, d, ErrDegenerate)
			}
		}
	}

	f.axis = dominantAxis(pl.Normal)
	f.outer2D = project2D(f.outer, f.axis)
	for _, loop := range f.inner {
		f.inner2D = append(f.inner2D, project2D(loop, f.axis))
	}
	return f, nil
}

// Kind implements Shape.
func (f *Face3D) Kind() Kind { return KindFace }

// BoundingBox implements Shape.
func (f *Face3D) BoundingBox() BoundingBox { return f.bbox }

// Plane returns the supporting plane through the centroid.
func (f *Face3D) Plane() Plane { return f.plane }

// Normal returns the unit normal.
func (f *Face3D) Normal() Vector3D { return f.plane.Normal }

// Centroid returns the vertex average of the outer loop.
func (f *Face3D) Centroid() Point3D { return f.centroid }

// Outer returns a copy of the outer loop.
func (f *Face3D) Outer() []Point3D { return append([]Point3D(nil), f.outer...) }

// InnerCount returns the number of hole loops.
func (f *Face3D) InnerCount() int { return len(f.inner) }

// Edges returns every loop edge, outer loop first.
func (f *Face3D) Edges() []LineSegment3D {
	var out []LineSegment3D
	for _, loop := range f.loops() {
		for i := range loop {
			out = append(out, LineSegment3D{Start: loop[i], End: loop[(i+1)%len(loop)]})
		}
	}
	return out
}

func (f *Face3D) loops() [][]Point3D {
	return append([][]Point3D{f.outer}, f.inner...)
}

// ContainsPoint reports whether p lies on the face (boundary included).
func (f *Face3D) ContainsPoint(p Point3D, tol float64) bool {
	if math.Abs(f.plane.SignedDistance(p)) > tol {
		return false
	}
	return f.containsOnPlane(p, tol)
}

// containsOnPlane assumes p is on the plane and tests it against the loops.
func (f *Face3D) containsOnPlane(p Point3D, tol float64) bool {
	if f.onBoundary(p, tol) {
		return true
	}
	u, v := projectPoint(p, f.axis)
	if !inLoop2D(u, v, f.outer2D) {
		return false
	}
	for _, hole := range f.inner2D {
		if inLoop2D(u, v, hole) {
			return false
		}
	}
	return true
}

func (f *Face3D) onBoundary(p Point3D, tol float64) bool {
	for _, loop := range f.loops() {
		for i := range loop {
			e := LineSegment3D{Start: loop[i], End: loop[(i+1)%len(loop)]}
			if e.DistanceToPoint(p) <= tol {
				return true
			}
		}
	}
	return false
}

// IntersectsBox reports whether the face shares at least one point with the
// closed box b. The face meets the box when one of its edges enters the box
// or, failing that, when a box edge pierces the face interior.
func (f *Face3D) IntersectsBox(b BoundingBox, tol float64) bool {
	if !f.bbox.Overlaps(b) {
		return false
	}
	var above, below bool
	for _, v := range b.Vertices() {
		switch f.plane.Side(v, tol) {
		case Above:
			above = true
		case Below:
			below = true
		default:
			above, below = true, true
		}
	}
	if !above || !below {
		return false
	}
	for _, e := range f.Edges() {
		if e.IntersectsBox(b) {
			return true
		}
	}
	for _, e := range b.Edges() {
		pt, o := f.plane.IntersectSegment(e, tol)
		switch o {
		case Overlap:
			if f.containsOnPlane(e.Start, tol) || f.containsOnPlane(e.End, tol) {
				return true
			}
		case IntersectedWithinSegments:
			if f.containsOnPlane(pt, tol) {
				return true
			}
		}
	}
	return false
}

// IntersectSegment reports Intersect when s touches the face and Disjoint
// otherwise.
func (f *Face3D) IntersectSegment(s LineSegment3D, tol float64) Outcome {
	if !f.bbox.Expand(tol).Overlaps(s.BoundingBox()) {
		return Disjoint
	}
	pt, o := f.plane.IntersectSegment(s, tol)
	switch o {
	case IntersectedWithinSegments:
		if f.containsOnPlane(pt, tol) {
			return Intersect
		}
	case Overlap:
		if f.containsOnPlane(s.Start, tol) || f.containsOnPlane(s.End, tol) {
			return Intersect
		}
		for _, e := range f.Edges() {
			if e.Intersect(s, tol).Outcome.Intersects() {
				return Intersect
			}
		}
	}
	return Disjoint
}

// IntersectFace classifies f against o. Coplanar faces sharing area report
// Overlap; faces crossing along a line report Intersect.
func (f *Face3D) IntersectFace(o *Face3D, tol float64) Outcome {
	if !f.bbox.Expand(tol).Overlaps(o.bbox) {
		return Disjoint
	}
	if f.plane.Normal.IsParallel(o.plane.Normal, tol) && f.plane.Side(o.plane.Point, tol) == On {
		for _, e := range f.Edges() {
			for _, g := range o.Edges() {
				if e.Intersect(g, tol).Outcome.Intersects() {
					return Overlap
				}
			}
		}
		if f.containsOnPlane(o.outer[0], tol) || o.containsOnPlane(f.outer[0], tol) {
			return Overlap
		}
		return Disjoint
	}
	for _, e := range f.Edges() {
		if o.IntersectSegment(e, tol) == Intersect {
			return Intersect
		}
	}
	for _, e := range o.Edges() {
		if f.IntersectSegment(e, tol) == Intersect {
			return Intersect
		}
	}
	return Disjoint
}

// newellNormal returns the area-weighted normal of a closed loop; its length
// is twice the loop area.
func newellNormal(loop []Point3D) Vector3D {
	var n Vector3D
	for i := range loop {
		a, b := loop[i], loop[(i+1)%len(loop)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

func cleanLoop(loop []Point3D, tol float64) []Point3D {
	out := make([]Point3D, 0, len(loop))
	for _, p := range loop {
		if len(out) > 0 && out[len(out)-1].Equal(p, tol) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0].Equal(out[len(out)-1], tol) {
		out = out[:len(out)-1]
	}
	return out
}

func projectPoint(p Point3D, axis int) (float64, float64) {
	switch axis {
	case 0:
		return p.Y, p.Z
	case 1:
		return p.Z, p.X
	default:
		return p.X, p.Y
	}
}

func project2D(loop []Point3D, axis int) [][2]float64 {
	out := make([][2]float64, len(loop))
	for i, p := range loop {
		u, v := projectPoint(p, axis)
		out[i] = [2]float64{u, v}
	}
	return out
}

// inLoop2D is the even-odd crossing test.
func inLoop2D(u, v float64, loop [][2]float64) bool {
	in := false
	for i, j := 0, len(loop)-1; i < len(loop); j, i = i, i+1 {
		ui, vi := loop[i][0], loop[i][1]
		uj, vj := loop[j][0], loop[j][1]
		if (vi > v) != (vj > v) && u < (uj-ui)*(v-vi)/(vj-vi)+ui {
			in = !in
		}
	}
	return in
}
