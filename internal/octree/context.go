package octree

import (
	"errors"
	"fmt"
	"math"

	"github.com/jdimyadi/bimrl/internal/cellid"
	"github.com/jdimyadi/bimrl/internal/geometry"
)

const (
	// DefaultWorkers caps concurrent subtree traversals, one per octant.
	DefaultWorkers = 8
	// DefaultDepthThreshold is the target leaf edge length in metres.
	DefaultDepthThreshold = 0.2
	// DefaultBatchSize is the number of records handed to a BatchWriter at once.
	DefaultBatchSize = 10000
)

// IndexingContext carries everything a traversal depends on. It replaces
// process-wide settings so several models can be indexed side by side.
type IndexingContext struct {
	ModelID   string
	World     geometry.BoundingBox
	MaxDepth  int
	Tolerance float64
	// Workers bounds concurrent subtree traversals. 0 selects DefaultWorkers
	// and 1 runs serially.
	Workers int
	// Prefilter marks children Disjoint by bounding-box test before any exact
	// geometry test.
	Prefilter bool
	// StartFromEnclosing begins traversal at the smallest cell enclosing the
	// geometry instead of the world root.
	StartFromEnclosing bool
	BatchSize          int
}

// NewIndexingContext returns a context with the recommended depth for world
// and the default tolerance, worker count and batch size.
func NewIndexingContext(world geometry.BoundingBox) IndexingContext {
	return IndexingContext{
		World:              world,
		MaxDepth:           RecommendedDepth(world, DefaultDepthThreshold),
		Tolerance:          geometry.DefaultTolerance,
		Workers:            DefaultWorkers,
		Prefilter:          true,
		StartFromEnclosing: true,
		BatchSize:          DefaultBatchSize,
	}
}

// Validate checks that the context can drive a traversal.
func (c IndexingContext) Validate() error {
	if c.MaxDepth < 0 || c.MaxDepth > cellid.MaxDepth {
		return fmt.Errorf("max depth %d outside [0,%d]", c.MaxDepth, cellid.MaxDepth)
	}
	if math.IsNaN(c.Tolerance) || math.IsInf(c.Tolerance, 0) || c.Tolerance < 0 {
		return fmt.Errorf("invalid tolerance %v", c.Tolerance)
	}
	s := c.World.Size()
	if !(s.X > 0 && s.Y > 0 && s.Z > 0) {
		return errors.New("world box must have positive extent on every axis")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch size must be non-negative, got %d", c.BatchSize)
	}
	return nil
}

func (c IndexingContext) workers() int {
	if c.Workers == 0 {
		return DefaultWorkers
	}
	return c.Workers
}

func (c IndexingContext) batchSize() int {
	if c.BatchSize == 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}

// RecommendedDepth returns the smallest depth at which the largest world edge,
// halved once per level, is no longer than threshold. The result is capped at
// cellid.MaxDepth.
func RecommendedDepth(world geometry.BoundingBox, threshold float64) int {
	if !(threshold > 0) {
		return cellid.MaxDepth
	}
	edge := world.LargestEdge()
	d := 0
	for edge > threshold && d < cellid.MaxDepth {
		edge /= 2
		d++
	}
	return d
}
