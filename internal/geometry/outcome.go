package geometry

// Outcome is the result of an intersection predicate. Callers prune on the
// exact case, so predicates never collapse it to a bool.
type Outcome int

const (
	// NotIntersected: lines or segments with no common point.
	NotIntersected Outcome = iota
	// IntersectedWithinSegments: the supporting lines meet at a point that lies
	// on both segments.
	IntersectedWithinSegments
	// IntersectedOutsideSegments: the supporting lines meet, but not on both segments.
	IntersectedOutsideSegments
	// Overlap: collinear segments or coplanar faces sharing a region.
	Overlap
	// Intersect: boundaries cross or touch.
	Intersect
	// FullyContains: the receiver fully contains the argument.
	FullyContains
	// FullyContainedBy: the receiver lies fully inside the argument.
	FullyContainedBy
	// Disjoint: no common point.
	Disjoint
)

func (o Outcome) String() string {
	switch o {
	case NotIntersected:
		return "NotIntersected"
	case IntersectedWithinSegments:
		return "IntersectedWithinSegments"
	case IntersectedOutsideSegments:
		return "IntersectedOutsideSegments"
	case Overlap:
		return "Overlap"
	case Intersect:
		return "Intersect"
	case FullyContains:
		return "FullyContains"
	case FullyContainedBy:
		return "FullyContainedBy"
	case Disjoint:
		return "Disjoint"
	default:
		return "Unknown"
	}
}

// Intersects reports whether the outcome implies at least one common point.
func (o Outcome) Intersects() bool {
	switch o {
	case IntersectedWithinSegments, Overlap, Intersect, FullyContains, FullyContainedBy:
		return true
	}
	return false
}

// Kind tags the shape families the octree can index.
type Kind int

const (
	KindPolyhedron Kind = iota + 1
	KindFace
	KindLineSegment
)

func (k Kind) String() string {
	switch k {
	case KindPolyhedron:
		return "polyhedron"
	case KindFace:
		return "face"
	case KindLineSegment:
		return "segment"
	default:
		return "unknown"
	}
}

// Shape is any geometry accepted by the octree.
type Shape interface {
	Kind() Kind
	BoundingBox() BoundingBox
}
