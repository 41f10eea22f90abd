package octree

import (
	"fmt"

	"github.com/jdimyadi/bimrl/internal/geometry"
	"github.com/jdimyadi/bimrl/internal/monitoring"
)

// classifier decides the state of a child cell for one kind of geometry.
//
// work is the subset of the geometry's primitives (faces of a solid, or the
// single face or segment) still relevant to the parent cell. classify returns
// the pruned subset for the child's own subtree. Implementations must not
// modify work.
type classifier interface {
	// extent is the geometry's bounding box adjusted by the tolerance the same
	// way cells are, before clamping to the world. Geometry whose extent misses
	// the world cannot reach any cell.
	extent() geometry.BoundingBox
	// startBox bounds the geometry for locating the start cell and for the
	// bounding-box prefilter.
	startBox() geometry.BoundingBox
	// cellBox turns a cell's bounds into the box the geometry is tested
	// against.
	cellBox(cell geometry.BoundingBox) geometry.BoundingBox
	initial() []int
	classify(box geometry.BoundingBox, work []int) (State, []int)
}

type classifierFactory func(shape geometry.Shape, ictx IndexingContext) (classifier, error)

// classifiers maps each indexable shape kind to its classifier constructor.
var classifiers = map[geometry.Kind]classifierFactory{
	geometry.KindPolyhedron:  newPolyhedronClassifier,
	geometry.KindFace:        newFaceClassifier,
	geometry.KindLineSegment: newSegmentClassifier,
}

// polyhedronClassifier tests cells against a closed solid. Cells are tested by
// their interior, so a solid face lying on a cell wall does not touch the
// neighbouring cell.
type polyhedronClassifier struct {
	ph    *geometry.Polyhedron
	faces []*geometry.Face3D
	ext   geometry.BoundingBox
	start geometry.BoundingBox
	tol   float64
}

func newPolyhedronClassifier(shape geometry.Shape, ictx IndexingContext) (classifier, error) {
	ph, ok := shape.(*geometry.Polyhedron)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a polyhedron", ErrUnsupportedGeometry, shape)
	}
	if !ph.IsClosed(ictx.Tolerance) {
		monitoring.Logf("octree: polyhedron with %d faces is not closed, inside tests may be unreliable", len(ph.Faces()))
	}
	ext := ph.BoundingBox().Expand(-ictx.Tolerance)
	return &polyhedronClassifier{
		ph:    ph,
		faces: ph.Faces(),
		ext:   ext,
		start: ext.Clamp(ictx.World),
		tol:   ictx.Tolerance,
	}, nil
}

func (c *polyhedronClassifier) extent() geometry.BoundingBox { return c.ext }
func (c *polyhedronClassifier) startBox() geometry.BoundingBox { return c.start }

func (c *polyhedronClassifier) cellBox(cell geometry.BoundingBox) geometry.BoundingBox {
	return cell.Expand(-c.tol)
}

func (c *polyhedronClassifier) initial() []int { return seq(len(c.faces)) }

func (c *polyhedronClassifier) classify(box geometry.BoundingBox, work []int) (State, []int) {
	var pruned []int
	for _, i := range work {
		if c.faces[i].BoundingBox().Overlaps(box) {
			pruned = append(pruned, i)
		}
	}
	if len(pruned) == 0 {
		return c.inside(box), nil
	}
	if box.ContainsBox(c.start, 0) {
		return FullyContains, pruned
	}
	for _, i := range pruned {
		if c.faces[i].IntersectsBox(box, 0) {
			return Intersect, pruned
		}
	}
	return c.inside(box), nil
}

// inside decides a cell no face crosses with one sample at its centre.
func (c *polyhedronClassifier) inside(box geometry.BoundingBox) State {
	if c.ph.ContainsPoint(box.Center(), c.tol) {
		return Inside
	}
	return Disjoint
}

// faceClassifier tests cells, grown by the tolerance, against a planar face.
type faceClassifier struct {
	face  *geometry.Face3D
	ext   geometry.BoundingBox
	start geometry.BoundingBox
	tol   float64
}

func newFaceClassifier(shape geometry.Shape, ictx IndexingContext) (classifier, error) {
	f, ok := shape.(*geometry.Face3D)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a face", ErrUnsupportedGeometry, shape)
	}
	ext := f.BoundingBox().Expand(ictx.Tolerance)
	return &faceClassifier{
		face:  f,
		ext:   ext,
		start: ext.Clamp(ictx.World),
		tol:   ictx.Tolerance,
	}, nil
}

func (c *faceClassifier) extent() geometry.BoundingBox { return c.ext }
func (c *faceClassifier) startBox() geometry.BoundingBox { return c.start }

func (c *faceClassifier) cellBox(cell geometry.BoundingBox) geometry.BoundingBox {
	return cell.Expand(c.tol)
}

func (c *faceClassifier) initial() []int { return seq(1) }

func (c *faceClassifier) classify(box geometry.BoundingBox, work []int) (State, []int) {
	if len(work) == 0 || !c.face.BoundingBox().Overlaps(box) {
		return Disjoint, nil
	}
	if box.ContainsBox(c.face.BoundingBox(), 0) {
		return FullyContains, work
	}
	if c.face.IntersectsBox(box, 0) {
		return Intersect, work
	}
	return Disjoint, nil
}

// segmentClassifier tests cells, grown by the tolerance, against a segment.
type segmentClassifier struct {
	seg   geometry.LineSegment3D
	ext   geometry.BoundingBox
	start geometry.BoundingBox
	tol   float64
}

func newSegmentClassifier(shape geometry.Shape, ictx IndexingContext) (classifier, error) {
	var s geometry.LineSegment3D
	switch v := shape.(type) {
	case geometry.LineSegment3D:
		s = v
	case *geometry.LineSegment3D:
		s = *v
	default:
		return nil, fmt.Errorf("%w: %T is not a line segment", ErrUnsupportedGeometry, shape)
	}
	ext := s.BoundingBox().Expand(ictx.Tolerance)
	return &segmentClassifier{
		seg:   s,
		ext:   ext,
		start: ext.Clamp(ictx.World),
		tol:   ictx.Tolerance,
	}, nil
}

func (c *segmentClassifier) extent() geometry.BoundingBox { return c.ext }
func (c *segmentClassifier) startBox() geometry.BoundingBox { return c.start }

func (c *segmentClassifier) cellBox(cell geometry.BoundingBox) geometry.BoundingBox {
	return cell.Expand(c.tol)
}

func (c *segmentClassifier) initial() []int { return seq(1) }

func (c *segmentClassifier) classify(box geometry.BoundingBox, work []int) (State, []int) {
	if len(work) == 0 {
		return Disjoint, nil
	}
	if box.ContainsPoint(c.seg.Start, 0) && box.ContainsPoint(c.seg.End, 0) {
		return FullyContains, work
	}
	if c.seg.IntersectsBox(box) {
		return Intersect, work
	}
	return Disjoint, nil
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
