package geometry

import (
	"fmt"
	"math"
)

// BoundingBox is an axis-aligned box given by its lower-left-bottom (Min) and
// upper-right-top (Max) corners.
type BoundingBox struct {
	Min Point3D
	Max Point3D
}

// NewBoundingBox returns the smallest box enclosing pts. It returns the zero
// box when pts is empty.
func NewBoundingBox(pts ...Point3D) BoundingBox {
	if len(pts) == 0 {
		return BoundingBox{}
	}
	b := BoundingBox{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		b = b.ExtendPoint(p)
	}
	return b
}

// ExtendPoint returns the box grown to include p.
func (b BoundingBox) ExtendPoint(p Point3D) BoundingBox {
	return BoundingBox{
		Min: Point3D{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)},
		Max: Point3D{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)},
	}
}

// Union returns the smallest box containing b and o.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return b.ExtendPoint(o.Min).ExtendPoint(o.Max)
}

// Size returns the edge lengths along each axis.
func (b BoundingBox) Size() Vector3D { return b.Max.Sub(b.Min) }

// Center returns the box centre.
func (b BoundingBox) Center() Point3D { return b.Min.Midpoint(b.Max) }

// LargestEdge returns the longest of the three edge lengths.
func (b BoundingBox) LargestEdge() float64 {
	s := b.Size()
	return math.Max(s.X, math.Max(s.Y, s.Z))
}

// Expand grows the box by d on every side. Negative d shrinks it; a box shrunk
// past its centre collapses onto the centre along that axis.
func (b BoundingBox) Expand(d float64) BoundingBox {
	out := BoundingBox{
		Min: Point3D{b.Min.X - d, b.Min.Y - d, b.Min.Z - d},
		Max: Point3D{b.Max.X + d, b.Max.Y + d, b.Max.Z + d},
	}
	c := b.Center()
	if out.Min.X > out.Max.X {
		out.Min.X, out.Max.X = c.X, c.X
	}
	if out.Min.Y > out.Max.Y {
		out.Min.Y, out.Max.Y = c.Y, c.Y
	}
	if out.Min.Z > out.Max.Z {
		out.Min.Z, out.Max.Z = c.Z, c.Z
	}
	return out
}

// Clamp restricts b to lie inside o.
func (b BoundingBox) Clamp(o BoundingBox) BoundingBox {
	return BoundingBox{
		Min: Point3D{clamp(b.Min.X, o.Min.X, o.Max.X), clamp(b.Min.Y, o.Min.Y, o.Max.Y), clamp(b.Min.Z, o.Min.Z, o.Max.Z)},
		Max: Point3D{clamp(b.Max.X, o.Min.X, o.Max.X), clamp(b.Max.Y, o.Min.Y, o.Max.Y), clamp(b.Max.Z, o.Min.Z, o.Max.Z)},
	}
}

// IsDegenerate reports whether any edge is shorter than tol.
func (b BoundingBox) IsDegenerate(tol float64) bool {
	s := b.Size()
	return s.X <= tol || s.Y <= tol || s.Z <= tol
}

// ContainsPoint reports whether p lies inside the closed box grown by tol.
func (b BoundingBox) ContainsPoint(p Point3D, tol float64) bool {
	return p.X >= b.Min.X-tol && p.X <= b.Max.X+tol &&
		p.Y >= b.Min.Y-tol && p.Y <= b.Max.Y+tol &&
		p.Z >= b.Min.Z-tol && p.Z <= b.Max.Z+tol
}

// ContainsBox reports whether o lies inside b grown by tol.
func (b BoundingBox) ContainsBox(o BoundingBox, tol float64) bool {
	return b.ContainsPoint(o.Min, tol) && b.ContainsPoint(o.Max, tol)
}

// Overlaps reports whether the closed boxes share at least one point. The
// comparison is exact; callers grow or shrink a box to pick the semantics.
func (b BoundingBox) Overlaps(o BoundingBox) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// Vertices returns the eight corners. Corner i takes Max along X when bit 2 is
// set, along Y when bit 1 is set and along Z when bit 0 is set, matching the
// octant ordering used by cell codes.
func (b BoundingBox) Vertices() [8]Point3D {
	var out [8]Point3D
	for i := 0; i < 8; i++ {
		out[i] = b.corner(i)
	}
	return out
}

func (b BoundingBox) corner(i int) Point3D {
	p := b.Min
	if i&4 != 0 {
		p.X = b.Max.X
	}
	if i&2 != 0 {
		p.Y = b.Max.Y
	}
	if i&1 != 0 {
		p.Z = b.Max.Z
	}
	return p
}

// boxEdges lists corner index pairs for the 12 box edges.
var boxEdges = [12][2]int{
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // along X
	{0, 2}, {1, 3}, {4, 6}, {5, 7}, // along Y
	{0, 1}, {2, 3}, {4, 5}, {6, 7}, // along Z
}

// Edges returns the 12 edges of the box.
func (b BoundingBox) Edges() [12]LineSegment3D {
	v := b.Vertices()
	var out [12]LineSegment3D
	for i, e := range boxEdges {
		out[i] = LineSegment3D{Start: v[e[0]], End: v[e[1]]}
	}
	return out
}

// Octant returns the child box selected by i using the corner bit convention
// of Vertices.
func (b BoundingBox) Octant(i int) BoundingBox {
	c := b.Center()
	out := BoundingBox{Min: b.Min, Max: c}
	if i&4 != 0 {
		out.Min.X, out.Max.X = c.X, b.Max.X
	}
	if i&2 != 0 {
		out.Min.Y, out.Max.Y = c.Y, b.Max.Y
	}
	if i&1 != 0 {
		out.Min.Z, out.Max.Z = c.Z, b.Max.Z
	}
	return out
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[%v-%v]", b.Min, b.Max)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
