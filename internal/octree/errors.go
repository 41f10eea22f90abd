package octree

import (
	"context"
	"errors"
	"fmt"

	"github.com/jdimyadi/bimrl/internal/geometry"
)

var (
	// ErrOutsideWorld is returned for geometry whose bounding box does not
	// touch the world box.
	ErrOutsideWorld = errors.New("geometry outside world box")
	// ErrUnsupportedGeometry is returned for shapes without a classifier.
	ErrUnsupportedGeometry = errors.New("unsupported geometry")
)

// OutsideWorldError identifies the element rejected with ErrOutsideWorld.
type OutsideWorldError struct {
	ElementID string
	Box       geometry.BoundingBox
	World     geometry.BoundingBox
}

func (e *OutsideWorldError) Error() string {
	return fmt.Sprintf("element %s: bounding box %v outside world %v", e.ElementID, e.Box, e.World)
}

func (e *OutsideWorldError) Unwrap() error { return ErrOutsideWorld }

// errorType labels an indexing error for metrics.
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrOutsideWorld):
		return "outside_world"
	case errors.Is(err, ErrUnsupportedGeometry):
		return "unsupported_geometry"
	case errors.Is(err, geometry.ErrDegenerate):
		return "degenerate_geometry"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
