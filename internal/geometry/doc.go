// Package geometry holds the 3D primitives consumed by the octree index:
// points, vectors, bounding boxes, planes, line segments, planar faces with
// holes and closed polyhedra.
//
// All predicates take an explicit tolerance instead of reading a global
// setting. Intersection predicates report an Outcome rather than a bool
// wherever callers need to know which case occurred.
//
// No SQL or octree code is allowed in this package.
package geometry
