package octree

// State is the classification of a cell against the indexed geometry.
type State uint8

const (
	// Disjoint cells share no point with the geometry. They are never emitted.
	Disjoint State = iota
	// Intersect cells are crossed by the geometry's boundary.
	Intersect
	// Inside cells lie entirely within a solid.
	Inside
	// FullyContains cells hold the whole geometry. The start cell of every
	// traversal begins in this state.
	FullyContains
	// IntersectOrInside marks a cell whose children were all either Inside or
	// collapsed border cells, so the children were dropped.
	IntersectOrInside
)

func (s State) String() string {
	switch s {
	case Disjoint:
		return "Disjoint"
	case Intersect:
		return "Intersect"
	case Inside:
		return "Inside"
	case FullyContains:
		return "FullyContains"
	case IntersectOrInside:
		return "IntersectOrInside"
	default:
		return "Unknown"
	}
}

// IsBorder reports whether a leaf in this state is stored as a border cell.
func (s State) IsBorder() bool {
	return s == Intersect || s == FullyContains || s == IntersectOrInside
}

// needsDescent reports whether a child in this state is subdivided further.
func (s State) needsDescent() bool {
	return s == Intersect || s == FullyContains
}
