package octree

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jdimyadi/bimrl/internal/cellid"
	"github.com/jdimyadi/bimrl/internal/geometry"
	"github.com/jdimyadi/bimrl/internal/monitoring"
)

// Octree indexes the elements of one model. It is safe for concurrent use;
// concurrent ComputeOctree calls share the worker budget.
type Octree struct {
	ictx IndexingContext
	sem  *semaphore.Weighted

	mu       sync.RWMutex
	elements map[string][]Record
	dirty    map[string]struct{}
}

// New returns an empty index for the model described by ictx.
func New(ictx IndexingContext) (*Octree, error) {
	if err := ictx.Validate(); err != nil {
		return nil, fmt.Errorf("indexing context: %w", err)
	}
	o := &Octree{
		ictx:     ictx,
		elements: make(map[string][]Record),
		dirty:    make(map[string]struct{}),
	}
	if w := ictx.workers(); w > 1 {
		o.sem = semaphore.NewWeighted(int64(w))
	}
	return o, nil
}

// Context returns the configuration the index was built with.
func (o *Octree) Context() IndexingContext { return o.ictx }

// ComputeOctree indexes one element and returns its cells sorted by key, with
// the border flag set on border cells. Re-indexing an element replaces its
// previous cells.
func (o *Octree) ComputeOctree(ctx context.Context, elementID string, shape geometry.Shape) (_ []cellid.ID, err error) {
	start := time.Now()
	kind := "unknown"
	if shape != nil {
		kind = shape.Kind().String()
	}
	defer func() {
		if err != nil {
			instrumentIndexError(kind, err)
		}
	}()

	if shape == nil {
		return nil, fmt.Errorf("element %s: %w: nil shape", elementID, ErrUnsupportedGeometry)
	}
	factory, ok := classifiers[shape.Kind()]
	if !ok {
		return nil, fmt.Errorf("element %s: %w: kind %v", elementID, ErrUnsupportedGeometry, shape.Kind())
	}
	box := shape.BoundingBox()
	if !box.Overlaps(o.ictx.World) {
		return nil, &OutsideWorldError{ElementID: elementID, Box: box, World: o.ictx.World}
	}
	cls, err := factory(shape, o.ictx)
	if err != nil {
		return nil, fmt.Errorf("element %s: %w", elementID, err)
	}
	// Solids are tested by their interior, so one that only shares a wall
	// with the world reaches no cell.
	if !cls.extent().Overlaps(o.ictx.World) {
		return nil, &OutsideWorldError{ElementID: elementID, Box: box, World: o.ictx.World}
	}

	e := newEngine(o.ictx, cls, o.sem)
	startCell := cellid.Root
	if o.ictx.StartFromEnclosing {
		startCell = cellid.Enclosing(o.ictx.World, cls.startBox(), o.ictx.MaxDepth)
	}
	cells, _, err := e.run(ctx, startCell)
	if err != nil {
		return nil, fmt.Errorf("element %s: %w", elementID, err)
	}

	records := make([]Record, len(cells))
	border := 0
	for i, c := range cells {
		records[i] = NewRecord(elementID, c, o.ictx.World)
		if c.IsBorder() {
			border++
		}
	}
	o.mu.Lock()
	o.elements[elementID] = records
	o.dirty[elementID] = struct{}{}
	o.mu.Unlock()

	instrumentNodesExpanded(kind, e.expanded.Load())
	instrumentCellsEmitted(kind, true, border)
	instrumentCellsEmitted(kind, false, len(cells)-border)
	instrumentIndexLatency(kind, start)
	monitoring.Debugf("octree: element %s (%s) start %v: %d cells, %d border, %d expanded in %v",
		elementID, kind, startCell, len(cells), border, e.expanded.Load(), time.Since(start))
	return cells, nil
}

// Records returns the cells of one element, or nil when it was never indexed.
func (o *Octree) Records(elementID string) []Record {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.elements[elementID])
}

// CollectCellIDs returns the records of every indexed element ordered by
// element id and cell key.
func (o *Octree) CollectCellIDs() []Record {
	o.mu.RLock()
	defer o.mu.RUnlock()
	var out []Record
	for _, id := range slices.Sorted(maps.Keys(o.elements)) {
		out = append(out, o.elements[id]...)
	}
	return out
}

// Query returns the records whose cell overlaps region by more than the
// tolerance, ordered like CollectCellIDs.
func (o *Octree) Query(region geometry.BoundingBox) []Record {
	inner := region.Expand(-o.ictx.Tolerance)
	var out []Record
	for _, r := range o.CollectCellIDs() {
		if r.Bounds.Overlaps(inner) {
			out = append(out, r)
		}
	}
	return out
}

// Remove drops an element from the index.
func (o *Octree) Remove(elementID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.elements, elementID)
	delete(o.dirty, elementID)
}

// Flush writes the records of every element indexed since the last
// successful flush and returns how many were written. Elements stay pending
// when the writer fails.
func (o *Octree) Flush(ctx context.Context, w BatchWriter) (int, error) {
	o.mu.RLock()
	ids := slices.Sorted(maps.Keys(o.dirty))
	var pending []Record
	for _, id := range ids {
		pending = append(pending, o.elements[id]...)
	}
	o.mu.RUnlock()
	if len(ids) == 0 {
		return 0, nil
	}

	if err := w.DeleteElements(ctx, ids); err != nil {
		return 0, fmt.Errorf("delete previous cells: %w", err)
	}
	size := o.ictx.batchSize()
	written := 0
	for batch := range slices.Chunk(pending, size) {
		if err := w.WriteBatch(ctx, batch); err != nil {
			return written, fmt.Errorf("write batch at record %d: %w", written, err)
		}
		written += len(batch)
	}

	o.mu.Lock()
	for _, id := range ids {
		delete(o.dirty, id)
	}
	o.mu.Unlock()
	monitoring.Debugf("octree: flushed %d records for %d elements", written, len(ids))
	return written, nil
}
