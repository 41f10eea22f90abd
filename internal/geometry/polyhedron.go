package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/jdimyadi/bimrl/internal/monitoring"
)

// ErrAmbiguousContainment is reported when every ray cast from a point grazes
// the boundary of the solid.
var ErrAmbiguousContainment = errors.New("point containment undecided")

// rayDirs are the skewed directions tried, in order, by the point-in-solid
// ray cast. A cast whose ray grazes an edge or slides along a face is
// ambiguous and the next direction is tried.
var rayDirs = [...]Vector3D{
	{X: 0.7236067977499789, Y: 0.5257311121191336, Z: 0.4472135954999579},
	{X: -0.3090169943749474, Y: 0.8090169943749474, Z: 0.5000000000000001},
	{X: 0.1830127018922193, Y: -0.6830127018922193, Z: 0.7071067811865476},
	{X: -0.5877852522924731, Y: -0.4253254041760200, Z: -0.6881909602355868},
}

// Polyhedron is a closed solid bounded by planar faces.
type Polyhedron struct {
	faces []*Face3D
	bbox  BoundingBox
}

// NewPolyhedron builds a solid from its boundary faces. At least four faces
// spanning a non-flat box are required.
func NewPolyhedron(faces []*Face3D, tol float64) (*Polyhedron, error) {
	MustTolerance(tol)
	if len(faces) < 4 {
		return nil, fmt.Errorf("polyhedron has %d faces: %w", len(faces), ErrDegenerate)
	}
	ph := &Polyhedron{faces: faces, bbox: faces[0].BoundingBox()}
	for _, f := range faces[1:] {
		ph.bbox = ph.bbox.Union(f.BoundingBox())
	}
	if ph.bbox.IsDegenerate(tol) {
		return nil, fmt.Errorf("polyhedron bounding box %v is flat: %w", ph.bbox, ErrDegenerate)
	}
	return ph, nil
}

// NewPolyhedronFromBuffers builds a solid from a flat xyz coordinate buffer
// and a face index buffer. counts gives the vertex count of each face in
// order; a nil counts treats the index buffer as triangles. No face is
// dropped, so a closed input stays closed.
func NewPolyhedronFromBuffers(coords []float64, indices []int, counts []int, tol float64) (*Polyhedron, error) {
	if len(coords)%3 != 0 {
		return nil, fmt.Errorf("coordinate buffer length %d is not a multiple of 3", len(coords))
	}
	nverts := len(coords) / 3
	if counts == nil {
		if len(indices)%3 != 0 {
			return nil, fmt.Errorf("triangle index buffer length %d is not a multiple of 3", len(indices))
		}
		counts = make([]int, len(indices)/3)
		for i := range counts {
			counts[i] = 3
		}
	}

	faces := make([]*Face3D, 0, len(counts))
	next := 0
	for fi, c := range counts {
		if c < 3 || next+c > len(indices) {
			return nil, fmt.Errorf("face %d: vertex count %d does not fit index buffer", fi, c)
		}
		loop := make([]Point3D, c)
		for k := 0; k < c; k++ {
			vi := indices[next+k]
			if vi < 0 || vi >= nverts {
				return nil, fmt.Errorf("face %d: vertex index %d out of range [0,%d)", fi, vi, nverts)
			}
			loop[k] = Point3D{coords[3*vi], coords[3*vi+1], coords[3*vi+2]}
		}
		next += c
		f, err := NewFace3D(loop, nil, tol)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", fi, err)
		}
		faces = append(faces, f)
	}
	if next != len(indices) {
		return nil, fmt.Errorf("index buffer has %d unused entries", len(indices)-next)
	}
	return NewPolyhedron(faces, tol)
}

// cuboidFaces lists outward-wound corner indices (see BoundingBox.Vertices).
var cuboidFaces = [6][4]int{
	{0, 1, 3, 2}, // -X
	{4, 6, 7, 5}, // +X
	{0, 4, 5, 1}, // -Y
	{2, 3, 7, 6}, // +Y
	{0, 2, 6, 4}, // -Z
	{1, 5, 7, 3}, // +Z
}

// NewCuboid returns the box b as a six-faced solid with outward normals.
func NewCuboid(b BoundingBox, tol float64) (*Polyhedron, error) {
	v := b.Vertices()
	faces := make([]*Face3D, 0, 6)
	for _, idx := range cuboidFaces {
		f, err := NewFace3D([]Point3D{v[idx[0]], v[idx[1]], v[idx[2]], v[idx[3]]}, nil, tol)
		if err != nil {
			return nil, fmt.Errorf("cuboid %v: %w", b, err)
		}
		faces = append(faces, f)
	}
	return NewPolyhedron(faces, tol)
}

// Kind implements Shape.
func (ph *Polyhedron) Kind() Kind { return KindPolyhedron }

// BoundingBox implements Shape.
func (ph *Polyhedron) BoundingBox() BoundingBox { return ph.bbox }

// Faces returns the boundary faces. The slice must not be modified.
func (ph *Polyhedron) Faces() []*Face3D { return ph.faces }

// IsClosed reports whether every edge, with vertices welded by tolerance key,
// is shared by an even number of faces.
func (ph *Polyhedron) IsClosed(tol float64) bool {
	type edgeKey struct{ a, b PointKey }
	counts := make(map[edgeKey]int)
	for _, f := range ph.faces {
		for _, e := range f.Edges() {
			a, b := e.Start.Key(tol), e.End.Key(tol)
			if a == b {
				continue
			}
			if keyLess(b, a) {
				a, b = b, a
			}
			counts[edgeKey{a, b}]++
		}
	}
	for _, c := range counts {
		if c%2 != 0 {
			return false
		}
	}
	return len(counts) > 0
}

// ContainsPoint reports whether p is inside the solid or on its boundary. An
// undecided point is logged and treated as outside.
func (ph *Polyhedron) ContainsPoint(p Point3D, tol float64) bool {
	return ph.containsLogged(p, tol, rayDirs[:])
}

// Contains is ContainsPoint with the undecided case returned as an error
// wrapping ErrAmbiguousContainment instead of logged.
func (ph *Polyhedron) Contains(p Point3D, tol float64) (bool, error) {
	return ph.containsAlong(p, tol, rayDirs[:])
}

func (ph *Polyhedron) containsLogged(p Point3D, tol float64, dirs []Vector3D) bool {
	inside, err := ph.containsAlong(p, tol, dirs)
	if err != nil {
		monitoring.Logf("geometry: %v, treating it as outside", err)
	}
	return inside
}

func (ph *Polyhedron) containsAlong(p Point3D, tol float64, dirs []Vector3D) (bool, error) {
	if !ph.bbox.ContainsPoint(p, tol) {
		return false, nil
	}
	for _, f := range ph.faces {
		if f.ContainsPoint(p, tol) {
			return true, nil
		}
	}
	for _, dir := range dirs {
		if hits, ok := ph.castRay(p, dir, tol); ok {
			return hits%2 == 1, nil
		}
	}
	return false, fmt.Errorf("%w: %v grazes the boundary along %d rays", ErrAmbiguousContainment, p, len(dirs))
}

// castRay counts face crossings of the ray from p along dir. ok is false when
// the ray grazes a face boundary and the parity cannot be trusted.
func (ph *Polyhedron) castRay(p Point3D, dir Vector3D, tol float64) (hits int, ok bool) {
	reach := ph.bbox.Size().Norm() + p.DistanceTo(ph.bbox.Center()) + 1
	ray := LineSegment3D{Start: p, End: p.Add(dir.Scale(reach))}
	for _, f := range ph.faces {
		if !ray.IntersectsBox(f.bbox.Expand(tol)) {
			continue
		}
		dist := f.plane.SignedDistance(p)
		denom := f.plane.Normal.Dot(dir)
		if math.Abs(denom) < 1e-12 {
			if math.Abs(dist) <= tol {
				return hits, false
			}
			continue
		}
		t := -dist / denom
		if t <= 0 {
			continue
		}
		hit := p.Add(dir.Scale(t))
		if f.onBoundary(hit, tol) {
			return hits, false
		}
		if f.containsOnPlane(hit, tol) {
			hits++
		}
	}
	return hits, true
}

// IntersectsBox reports whether any boundary face touches the closed box b.
func (ph *Polyhedron) IntersectsBox(b BoundingBox, tol float64) bool {
	if !ph.bbox.Overlaps(b) {
		return false
	}
	for _, f := range ph.faces {
		if f.IntersectsBox(b, tol) {
			return true
		}
	}
	return false
}

// IntersectFace classifies face f against the solid. Once no boundary face
// meets f, one vertex of f decides between FullyContains and Disjoint.
func (ph *Polyhedron) IntersectFace(f *Face3D, tol float64) Outcome {
	if !ph.bbox.Expand(tol).Overlaps(f.bbox) {
		return Disjoint
	}
	for _, g := range ph.faces {
		if g.IntersectFace(f, tol) != Disjoint {
			return Intersect
		}
	}
	if ph.ContainsPoint(f.outer[0], tol) {
		return FullyContains
	}
	return Disjoint
}

// IntersectSegment classifies s against the solid.
func (ph *Polyhedron) IntersectSegment(s LineSegment3D, tol float64) Outcome {
	if !ph.bbox.Expand(tol).Overlaps(s.BoundingBox()) {
		return Disjoint
	}
	for _, f := range ph.faces {
		if f.IntersectSegment(s, tol) == Intersect {
			return Intersect
		}
	}
	if ph.ContainsPoint(s.Start, tol) {
		return FullyContains
	}
	return Disjoint
}

// IntersectPolyhedron classifies o against ph. When no pair of faces meets,
// a single vertex of each solid is enough to tell containment from
// disjointness.
func (ph *Polyhedron) IntersectPolyhedron(o *Polyhedron, tol float64) Outcome {
	if !ph.bbox.Expand(tol).Overlaps(o.bbox) {
		return Disjoint
	}
	for _, f := range ph.faces {
		if !f.bbox.Expand(tol).Overlaps(o.bbox) {
			continue
		}
		for _, g := range o.faces {
			if f.IntersectFace(g, tol) != Disjoint {
				return Intersect
			}
		}
	}
	if ph.ContainsPoint(o.faces[0].outer[0], tol) {
		return FullyContains
	}
	if o.ContainsPoint(ph.faces[0].outer[0], tol) {
		return FullyContainedBy
	}
	return Disjoint
}

func keyLess(a, b PointKey) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}
