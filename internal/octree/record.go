package octree

import (
	"cmp"
	"context"
	"slices"

	"github.com/jdimyadi/bimrl/internal/cellid"
	"github.com/jdimyadi/bimrl/internal/geometry"
)

// Record is one indexed cell of one element, in the shape handed to storage.
type Record struct {
	ElementID string
	Cell      cellid.ID // without the border flag
	Depth     int
	Bounds    geometry.BoundingBox
	Border    bool
}

// NewRecord derives the stored fields of cell c (border flag included) for
// an element indexed in world.
func NewRecord(elementID string, c cellid.ID, world geometry.BoundingBox) Record {
	return Record{
		ElementID: elementID,
		Cell:      c.Key(),
		Depth:     c.Depth(),
		Bounds:    c.Bounds(world),
		Border:    c.IsBorder(),
	}
}

// BatchWriter persists index records. Flush first removes the previous cells
// of every element it is about to write and then hands over the new records
// in batches.
type BatchWriter interface {
	DeleteElements(ctx context.Context, elementIDs []string) error
	WriteBatch(ctx context.Context, records []Record) error
}

func sortCells(cells []cellid.ID) {
	slices.SortFunc(cells, func(a, b cellid.ID) int {
		return cmp.Compare(a.Key(), b.Key())
	})
}
