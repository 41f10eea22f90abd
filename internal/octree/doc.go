// Package octree builds the spatial cell index of building elements.
//
// An Octree is configured once per model with an IndexingContext (world box,
// maximum depth, tolerance) and is then fed elements one at a time through
// ComputeOctree. Each call subdivides the world top-down, classifies the eight
// children of every expanded cell against the element geometry, recurses into
// the cells the geometry crosses and prunes subtrees whose children all agree.
// The surviving leaves become Records: a cell code, its bounds and whether the
// element's surface crosses it (border) or the cell lies fully inside the solid.
//
// Sibling subtrees are independent and may be traversed concurrently; the
// result does not depend on the worker count.
package octree
