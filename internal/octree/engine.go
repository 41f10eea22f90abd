package octree

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/jdimyadi/bimrl/internal/cellid"
	"github.com/jdimyadi/bimrl/internal/geometry"
)

// engine runs one traversal for one element.
type engine struct {
	world     geometry.BoundingBox
	maxDepth  int
	prefilter bool
	cls       classifier
	start     geometry.BoundingBox
	// sem bounds the goroutines spawned for sibling subtrees. A nil sem
	// traverses serially.
	sem *semaphore.Weighted

	expanded atomic.Int64
}

func newEngine(ictx IndexingContext, cls classifier, sem *semaphore.Weighted) *engine {
	return &engine{
		world:     ictx.World,
		maxDepth:  ictx.MaxDepth,
		prefilter: ictx.Prefilter,
		cls:       cls,
		start:     cls.startBox(),
		sem:       sem,
	}
}

// run traverses from startCell and returns the emitted leaves sorted by key,
// together with the final arena.
func (e *engine) run(ctx context.Context, startCell cellid.ID) ([]cellid.ID, *arena, error) {
	a := newArena(Node{Cell: startCell, State: FullyContains})
	if err := e.process(ctx, a, 0, e.cls.initial()); err != nil {
		return nil, nil, err
	}
	cells := a.collect(nil, 0)
	sortCells(cells)
	return cells, a, nil
}

// process expands node idx: classify its eight children, prune when they all
// agree, recurse into the children the geometry crosses, and collapse the
// node when the recursion left nothing worth keeping.
func (e *engine) process(ctx context.Context, a *arena, idx int, work []int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cell := a.nodes[idx].Cell
	depth := cell.Depth()
	if depth > e.maxDepth {
		panic(fmt.Sprintf("octree: node %v below max depth %d", cell, e.maxDepth))
	}
	if depth == e.maxDepth {
		return nil
	}
	e.expanded.Add(1)

	var (
		states           [8]State
		works            [8][]int
		disjoint, inside int
	)
	for i := 0; i < 8; i++ {
		box := e.cls.cellBox(cell.Child(i).Bounds(e.world))
		if e.prefilter && !e.start.Overlaps(box) {
			states[i] = Disjoint
		} else {
			states[i], works[i] = e.cls.classify(box, work)
		}
		switch states[i] {
		case Disjoint:
			disjoint++
		case Inside:
			inside++
		}
	}

	first := a.addChildren(idx, states)
	switch {
	case disjoint == 8:
		a.collapse(idx, Disjoint)
		return nil
	case inside == 8:
		a.collapse(idx, Inside)
		return nil
	}

	var descend []int
	for i, s := range states {
		if s.needsDescent() {
			descend = append(descend, i)
		}
	}
	if err := e.descend(ctx, a, first, descend, &works); err != nil {
		return err
	}

	for i := 0; i < 8; i++ {
		child := a.nodes[first+i]
		if child.State == Disjoint {
			return nil
		}
		if states[i].needsDescent() && !child.Pruned {
			return nil
		}
	}
	if len(descend) > 0 {
		a.collapse(idx, IntersectOrInside)
	}
	return nil
}

// descend processes the listed children of the node whose first child is at
// index first. Siblings run on their own goroutine and arena while the
// semaphore has room; the last sibling, and any that find it full, run on the
// calling goroutine. The caller blocks until every sibling is done.
func (e *engine) descend(ctx context.Context, a *arena, first int, octants []int, works *[8][]int) error {
	var (
		wg   sync.WaitGroup
		subs = make([]*arena, len(octants))
		errs = make([]error, len(octants))
	)
	for k, i := range octants {
		if k < len(octants)-1 && e.sem != nil && e.sem.TryAcquire(1) {
			sub := a.detach(first + i)
			subs[k] = sub
			wg.Add(1)
			go func(k int, work []int) {
				defer wg.Done()
				defer e.sem.Release(1)
				errs[k] = e.process(ctx, sub, 0, work)
			}(k, works[i])
			continue
		}
		if err := e.process(ctx, a, first+i, works[i]); err != nil {
			errs[k] = err
			break
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	for k, i := range octants {
		if subs[k] != nil {
			a.graft(first+i, subs[k])
		}
	}
	return nil
}
