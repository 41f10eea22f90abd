package geometry

import "testing"

func box(x0, y0, z0, x1, y1, z1 float64) BoundingBox {
	return BoundingBox{Min: NewPoint3D(x0, y0, z0), Max: NewPoint3D(x1, y1, z1)}
}

func TestNewBoundingBox(t *testing.T) {
	got := NewBoundingBox(NewPoint3D(3, -1, 2), NewPoint3D(0, 4, 2), NewPoint3D(1, 1, 7))
	if want := box(0, -1, 2, 3, 4, 7); got != want {
		t.Errorf("NewBoundingBox = %v, want %v", got, want)
	}
	if got := NewBoundingBox(); got != (BoundingBox{}) {
		t.Errorf("empty NewBoundingBox = %v", got)
	}
	if got := box(0, 0, 0, 1, 1, 1).Union(box(2, -1, 0, 3, 0, 4)); got != box(0, -1, 0, 3, 1, 4) {
		t.Errorf("Union = %v", got)
	}
}

func TestBoundingBox_Measures(t *testing.T) {
	b := box(0, 0, 0, 4, 2, 8)
	if got := b.LargestEdge(); got != 8 {
		t.Errorf("LargestEdge = %v, want 8", got)
	}
	if got := b.Center(); got != NewPoint3D(2, 1, 4) {
		t.Errorf("Center = %v", got)
	}
	if b.IsDegenerate(1e-9) {
		t.Error("box should not be degenerate")
	}
	if !box(0, 0, 0, 4, 0, 8).IsDegenerate(1e-9) {
		t.Error("flat box should be degenerate")
	}
}

func TestBoundingBox_Expand(t *testing.T) {
	tests := []struct {
		name string
		in   BoundingBox
		d    float64
		want BoundingBox
	}{
		{"grow", box(0, 0, 0, 1, 1, 1), 0.5, box(-0.5, -0.5, -0.5, 1.5, 1.5, 1.5)},
		{"shrink", box(0, 0, 0, 2, 2, 2), -0.5, box(0.5, 0.5, 0.5, 1.5, 1.5, 1.5)},
		{"shrink flat axis onto centre", box(0, 0, 3, 2, 2, 3), -0.5, box(0.5, 0.5, 3, 1.5, 1.5, 3)},
		{"shrink past centre", box(0, 0, 0, 1, 4, 4), -1, box(0.5, 1, 1, 0.5, 3, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Expand(tt.d); got != tt.want {
				t.Errorf("Expand(%v) = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}

func TestBoundingBox_Clamp(t *testing.T) {
	world := box(0, 0, 0, 100, 100, 100)
	if got := box(-5, 10, 90, 20, 120, 110).Clamp(world); got != box(0, 10, 90, 20, 100, 100) {
		t.Errorf("Clamp = %v", got)
	}
	inside := box(1, 2, 3, 4, 5, 6)
	if got := inside.Clamp(world); got != inside {
		t.Errorf("Clamp of inside box = %v", got)
	}
}

func TestBoundingBox_Predicates(t *testing.T) {
	b := box(0, 0, 0, 10, 10, 10)
	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"contains interior point", b.ContainsPoint(NewPoint3D(5, 5, 5), 0), true},
		{"contains corner", b.ContainsPoint(NewPoint3D(10, 10, 10), 0), true},
		{"outside point", b.ContainsPoint(NewPoint3D(10.1, 5, 5), 0), false},
		{"outside point within tol", b.ContainsPoint(NewPoint3D(10.1, 5, 5), 0.2), true},
		{"contains box", b.ContainsBox(box(1, 1, 1, 9, 9, 9), 0), true},
		{"contains itself", b.ContainsBox(b, 0), true},
		{"box poking out", b.ContainsBox(box(1, 1, 1, 11, 9, 9), 0), false},
		{"overlaps", b.Overlaps(box(5, 5, 5, 15, 15, 15)), true},
		{"touching faces overlap", b.Overlaps(box(10, 0, 0, 20, 10, 10)), true},
		{"separated on one axis", b.Overlaps(box(0, 0, 11, 10, 10, 20)), false},
		{"shrunk neighbour does not overlap", b.Overlaps(box(10, 0, 0, 20, 10, 10).Expand(-1e-6)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestBoundingBox_OctantsMatchVertices(t *testing.T) {
	b := box(0, 0, 0, 2, 4, 8)
	v := b.Vertices()
	for i := 0; i < 8; i++ {
		o := b.Octant(i)
		if !o.ContainsPoint(v[i], 0) {
			t.Errorf("octant %d %v does not hold corner %v", i, o, v[i])
		}
		if s := o.Size(); s.X != 1 || s.Y != 2 || s.Z != 4 {
			t.Errorf("octant %d size %v", i, s)
		}
		if !o.ContainsPoint(b.Center(), 0) {
			t.Errorf("octant %d misses the centre", i)
		}
	}
	if v[0] != b.Min || v[7] != b.Max {
		t.Errorf("corners 0 and 7 = %v %v", v[0], v[7])
	}
	if v[4] != NewPoint3D(2, 0, 0) || v[2] != NewPoint3D(0, 4, 0) || v[1] != NewPoint3D(0, 0, 8) {
		t.Errorf("axis corners = %v %v %v", v[4], v[2], v[1])
	}
}

func TestBoundingBox_Edges(t *testing.T) {
	b := box(0, 0, 0, 1, 2, 3)
	var total float64
	for _, e := range b.Edges() {
		total += e.Start.DistanceTo(e.End)
	}
	if total != 4*(1+2+3) {
		t.Errorf("total edge length = %v, want 24", total)
	}
}
