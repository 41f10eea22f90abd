package cellid

import (
	"testing"

	"github.com/jdimyadi/bimrl/internal/geometry"
)

var world = geometry.BoundingBox{
	Min: geometry.NewPoint3D(0, 0, 0),
	Max: geometry.NewPoint3D(100, 100, 100),
}

func path(octants ...int) ID {
	c := Root
	for _, o := range octants {
		c = c.Child(o)
	}
	return c
}

func TestChildAncestorRoundTrip(t *testing.T) {
	// Walk a deterministic path to every depth and check each octant.
	c := Root
	for d := 0; d < MaxDepth; d++ {
		for i := 0; i < 8; i++ {
			child := c.Child(i)
			if got := child.Depth(); got != d+1 {
				t.Fatalf("depth %d octant %d: child depth = %d", d, i, got)
			}
			if got := child.Ancestor(d); got != c {
				t.Fatalf("depth %d octant %d: Ancestor = %v, want %v", d, i, got, c)
			}
			if got := child.Parent(); got != c {
				t.Fatalf("depth %d octant %d: Parent = %v, want %v", d, i, got, c)
			}
			if got := child.Octant(d + 1); got != i {
				t.Fatalf("depth %d: Octant = %d, want %d", d, got, i)
			}
		}
		c = c.Child((d*5 + 3) % 8)
	}
}

func TestChild_Distinct(t *testing.T) {
	seen := make(map[ID]int)
	parent := path(1, 6, 2)
	for i := 0; i < 8; i++ {
		c := parent.Child(i)
		if j, ok := seen[c]; ok {
			t.Fatalf("octants %d and %d share code %v", i, j, c)
		}
		seen[c] = i
	}
}

func TestChild_Panics(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"negative octant", func() { Root.Child(-1) }},
		{"octant 8", func() { Root.Child(8) }},
		{"max depth", func() {
			c := Root
			for d := 0; d <= MaxDepth; d++ {
				c = c.Child(0)
			}
		}},
		{"ancestor deeper than cell", func() { path(1).Ancestor(2) }},
		{"locate negative depth", func() { Locate(world, geometry.Point3D{}, -1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestBorderFlag(t *testing.T) {
	c := path(0, 7, 3)
	b := c.WithBorder(true)
	if !b.IsBorder() || c.IsBorder() {
		t.Fatalf("border flag: c=%v b=%v", c.IsBorder(), b.IsBorder())
	}
	if b.Key() != c {
		t.Errorf("Key() = %v, want %v", b.Key(), c)
	}
	if b.Depth() != 3 || b.Octant(2) != 7 {
		t.Errorf("border flag disturbed spatial fields: %v", b)
	}
	if b.Ancestor(3) != c {
		t.Errorf("Ancestor at own depth should drop the flag")
	}
	if b.WithBorder(false) != c {
		t.Errorf("WithBorder(false) = %v", b.WithBorder(false))
	}
	if got := b.String(); got != "d3:0.7.3*" {
		t.Errorf("String() = %q", got)
	}
}

func TestLocate(t *testing.T) {
	tests := []struct {
		name  string
		p     geometry.Point3D
		depth int
		want  ID
	}{
		{"root", geometry.NewPoint3D(42, 1, 99), 0, Root},
		{"lower corner", geometry.NewPoint3D(0, 0, 0), 2, path(0, 0)},
		{"upper corner", geometry.NewPoint3D(100, 100, 100), 2, path(7, 7)},
		{"x upper half", geometry.NewPoint3D(60, 10, 10), 1, path(4)},
		{"y upper half", geometry.NewPoint3D(10, 60, 10), 1, path(2)},
		{"z upper half", geometry.NewPoint3D(10, 10, 60), 1, path(1)},
		{"mixed", geometry.NewPoint3D(30, 80, 10), 2, path(2, 6)},
		{"wall belongs to upper cell", geometry.NewPoint3D(50, 0, 0), 1, path(4)},
		{"outside snaps", geometry.NewPoint3D(-10, 150, 50), 1, path(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Locate(world, tt.p, tt.depth); got != tt.want {
				t.Errorf("Locate(%v, %d) = %v, want %v", tt.p, tt.depth, got, tt.want)
			}
		})
	}
}

func TestLocate_BoundsContainPoint(t *testing.T) {
	pts := []geometry.Point3D{
		geometry.NewPoint3D(12.5, 37.2, 99.9),
		geometry.NewPoint3D(0.001, 50, 74.99),
		geometry.NewPoint3D(33.3333, 66.6666, 1e-9),
	}
	for _, p := range pts {
		for d := 0; d <= MaxDepth; d++ {
			c := Locate(world, p, d)
			if !c.Bounds(world).ContainsPoint(p, 1e-9) {
				t.Fatalf("depth %d: %v bounds %v miss %v", d, c, c.Bounds(world), p)
			}
		}
	}
}

func TestBounds(t *testing.T) {
	tests := []struct {
		id       ID
		min, max geometry.Point3D
	}{
		{Root, world.Min, world.Max},
		{path(0), geometry.NewPoint3D(0, 0, 0), geometry.NewPoint3D(50, 50, 50)},
		{path(7), geometry.NewPoint3D(50, 50, 50), geometry.NewPoint3D(100, 100, 100)},
		{path(4, 1), geometry.NewPoint3D(50, 0, 25), geometry.NewPoint3D(75, 25, 50)},
		{path(0, 0, 3), geometry.NewPoint3D(0, 12.5, 12.5), geometry.NewPoint3D(12.5, 25, 25)},
	}
	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			b := tt.id.Bounds(world)
			if !b.Min.Equal(tt.min, 1e-12) || !b.Max.Equal(tt.max, 1e-12) {
				t.Errorf("Bounds() = %v, want [%v-%v]", b, tt.min, tt.max)
			}
		})
	}

	// Children tile the parent with shared walls.
	parent := path(5, 2)
	pb := parent.Bounds(world)
	for i := 0; i < 8; i++ {
		cb := parent.Child(i).Bounds(world)
		if want := pb.Octant(i); !cb.Min.Equal(want.Min, 1e-9) || !cb.Max.Equal(want.Max, 1e-9) {
			t.Errorf("child %d bounds %v, want %v", i, cb, want)
		}
	}
	lo := parent.Child(0).Bounds(world)
	hi := parent.Child(4).Bounds(world)
	if lo.Max.X != hi.Min.X {
		t.Errorf("shared wall differs: %v vs %v", lo.Max.X, hi.Min.X)
	}
}

func TestSmallestEnclosing(t *testing.T) {
	tests := []struct {
		name string
		ids  []ID
		want ID
	}{
		{"none", nil, Root},
		{"single", []ID{path(1, 2, 3)}, path(1, 2, 3)},
		{"siblings", []ID{path(1, 2, 3), path(1, 2, 5)}, path(1, 2)},
		{"cousins", []ID{path(1, 2, 3), path(1, 6, 3), path(1, 2, 0)}, path(1)},
		{"different roots", []ID{path(0, 0), path(7, 7)}, Root},
		{"ancestor in list", []ID{path(3, 3, 3, 3), path(3, 3)}, path(3, 3)},
		{"deep common prefix", []ID{path(2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 0), path(2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 1)}, path(2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2)},
		{"border flags ignored", []ID{path(4, 4).WithBorder(true), path(4, 5)}, path(4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SmallestEnclosing(tt.ids...); got != tt.want {
				t.Errorf("SmallestEnclosing = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnclosing(t *testing.T) {
	box := geometry.BoundingBox{Min: geometry.NewPoint3D(10, 10, 10), Max: geometry.NewPoint3D(20, 20, 20)}
	if got := Enclosing(world, box, 3); got != path(0, 0) {
		t.Errorf("Enclosing(small box) = %v, want %v", got, path(0, 0))
	}
	if got := Enclosing(world, world, MaxDepth); got != Root {
		t.Errorf("Enclosing(world) = %v, want root", got)
	}
}

func TestContainsAndCoords(t *testing.T) {
	a := path(3, 1)
	if !a.Contains(path(3, 1, 7, 7)) || !a.Contains(a) {
		t.Error("Contains should accept descendants and itself")
	}
	if a.Contains(path(3)) || a.Contains(path(3, 2, 0)) {
		t.Error("Contains should reject ancestors and cousins")
	}
	for _, c := range []ID{Root, path(6), path(1, 2, 4, 7, 0), path(5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5)} {
		x, y, z := c.Coords()
		if got := FromCoords(x, y, z, c.Depth()); got != c {
			t.Errorf("FromCoords(Coords(%v)) = %v", c, got)
		}
		if FromInt64(c.WithBorder(true).Int64()) != c.WithBorder(true) {
			t.Errorf("Int64 round trip failed for %v", c)
		}
	}
}

func TestOrderingParentsFirst(t *testing.T) {
	// Sorting by key places an ancestor before its descendants.
	if !(path(2) < path(2, 0)) || !(path(2, 0) < path(2, 0, 0)) || !(path(2, 7, 7) < path(3)) {
		t.Error("key order is not depth-first pre-order")
	}
}
