// Package testutil provides shared test fixtures and helpers for the
// indexing packages.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/jdimyadi/bimrl/internal/geometry"
	"github.com/jdimyadi/bimrl/internal/monitoring"
)

// Tol is the tolerance used by fixtures.
const Tol = 1e-6

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// MuteLogs silences monitoring output for the rest of the test.
func MuteLogs(t testing.TB) {
	t.Helper()
	orig := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(orig) })
}

// TempDBPath returns a database path inside a per-test directory.
func TempDBPath(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "bimrl.db")
}

// Box returns the axis-aligned box [min, max] as a closed solid.
func Box(t testing.TB, x0, y0, z0, x1, y1, z1 float64) *geometry.Polyhedron {
	t.Helper()
	ph, err := geometry.NewCuboid(geometry.BoundingBox{
		Min: geometry.NewPoint3D(x0, y0, z0),
		Max: geometry.NewPoint3D(x1, y1, z1),
	}, Tol)
	AssertNoError(t, err)
	return ph
}

// Tetrahedron returns the solid with corners o, o+(s,0,0), o+(0,s,0) and
// o+(0,0,s).
func Tetrahedron(t testing.TB, o geometry.Point3D, s float64) *geometry.Polyhedron {
	t.Helper()
	coords := []float64{
		o.X, o.Y, o.Z,
		o.X + s, o.Y, o.Z,
		o.X, o.Y + s, o.Z,
		o.X, o.Y, o.Z + s,
	}
	ph, err := geometry.NewPolyhedronFromBuffers(coords, []int{0, 2, 1, 0, 1, 3, 0, 3, 2, 1, 2, 3}, nil, Tol)
	AssertNoError(t, err)
	return ph
}

// HorizontalFace returns the rectangle [x0,x1]x[y0,y1] at height z.
func HorizontalFace(t testing.TB, x0, y0, x1, y1, z float64) *geometry.Face3D {
	t.Helper()
	f, err := geometry.NewFace3D([]geometry.Point3D{
		geometry.NewPoint3D(x0, y0, z),
		geometry.NewPoint3D(x1, y0, z),
		geometry.NewPoint3D(x1, y1, z),
		geometry.NewPoint3D(x0, y1, z),
	}, nil, Tol)
	AssertNoError(t, err)
	return f
}

// Segment returns the segment between the two points.
func Segment(t testing.TB, x0, y0, z0, x1, y1, z1 float64) geometry.LineSegment3D {
	t.Helper()
	s, err := geometry.NewLineSegment3D(geometry.NewPoint3D(x0, y0, z0), geometry.NewPoint3D(x1, y1, z1), Tol)
	AssertNoError(t, err)
	return s
}
