package geometry

import (
	"errors"
	"testing"
)

func seg(x0, y0, z0, x1, y1, z1 float64) LineSegment3D {
	return LineSegment3D{Start: NewPoint3D(x0, y0, z0), End: NewPoint3D(x1, y1, z1)}
}

func TestLineSegmentIntersect(t *testing.T) {
	const tol = 1e-9
	tests := []struct {
		name  string
		a, b  LineSegment3D
		want  Outcome
		point Point3D
	}{
		{"crossing", seg(0, 0, 0, 2, 0, 0), seg(1, -1, 0, 1, 1, 0), IntersectedWithinSegments, NewPoint3D(1, 0, 0)},
		{"lines meet beyond segment", seg(0, 0, 0, 1, 0, 0), seg(2, -1, 0, 2, 1, 0), IntersectedOutsideSegments, NewPoint3D(2, 0, 0)},
		{"skew", seg(0, 0, 0, 1, 0, 0), seg(0, 1, 1, 0, 2, 1), NotIntersected, Point3D{}},
		{"parallel apart", seg(0, 0, 0, 1, 0, 0), seg(0, 1, 0, 1, 1, 0), NotIntersected, Point3D{}},
		{"collinear overlap", seg(0, 0, 0, 2, 0, 0), seg(1, 0, 0, 3, 0, 0), Overlap, NewPoint3D(1, 0, 0)},
		{"collinear touching", seg(0, 0, 0, 1, 0, 0), seg(1, 0, 0, 2, 0, 0), IntersectedWithinSegments, NewPoint3D(1, 0, 0)},
		{"collinear apart", seg(0, 0, 0, 1, 0, 0), seg(2, 0, 0, 3, 0, 0), NotIntersected, Point3D{}},
		{"endpoint touch", seg(0, 0, 0, 1, 1, 1), seg(1, 1, 1, 2, 0, 0), IntersectedWithinSegments, NewPoint3D(1, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Intersect(tt.b, tol)
			if got.Outcome != tt.want {
				t.Fatalf("Outcome = %v, want %v", got.Outcome, tt.want)
			}
			if tt.want != NotIntersected && !got.Point.Equal(tt.point, 1e-9) {
				t.Errorf("Point = %v, want %v", got.Point, tt.point)
			}
		})
	}
}

func TestLineSegmentIntersectsBox(t *testing.T) {
	box := BoundingBox{Min: NewPoint3D(0, 0, 0), Max: NewPoint3D(1, 1, 1)}
	tests := []struct {
		name string
		s    LineSegment3D
		want bool
	}{
		{"inside", seg(0.2, 0.2, 0.2, 0.8, 0.8, 0.8), true},
		{"through", seg(-1, 0.5, 0.5, 2, 0.5, 0.5), true},
		{"on face", seg(-1, 0, 0.5, 2, 0, 0.5), true},
		{"misses", seg(-1, 2, 0.5, 2, 2, 0.5), false},
		{"stops short", seg(-2, 0.5, 0.5, -0.1, 0.5, 0.5), false},
		{"diagonal miss", seg(1.5, -0.5, 0.5, 2.5, 0.5, 0.5), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.IntersectsBox(box); got != tt.want {
				t.Errorf("IntersectsBox = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLineSegmentExtendAndDistance(t *testing.T) {
	s := seg(0, 0, 0, 1, 0, 0)
	ext, err := s.Extend(0.5, 1, 1e-9)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if !ext.Start.Equal(NewPoint3D(-0.5, 0, 0), 1e-12) || !ext.End.Equal(NewPoint3D(2, 0, 0), 1e-12) {
		t.Errorf("Extend = %v..%v", ext.Start, ext.End)
	}
	if got := s.DistanceToPoint(NewPoint3D(0.5, 2, 0)); got != 2 {
		t.Errorf("distance = %v, want 2", got)
	}
	if got := s.DistanceToPoint(NewPoint3D(-3, 4, 0)); got != 5 {
		t.Errorf("distance past start = %v, want 5", got)
	}
	if _, err := NewLineSegment3D(NewPoint3D(1, 1, 1), NewPoint3D(1, 1, 1+1e-10), 1e-9); !errors.Is(err, ErrDegenerate) {
		t.Errorf("expected ErrDegenerate, got %v", err)
	}
	dir, err := s.Direction(1e-9)
	if err != nil || dir != NewVector3D(1, 0, 0) {
		t.Errorf("Direction = %v, %v", dir, err)
	}
}

func TestPlaneSide(t *testing.T) {
	pl, err := NewPlane(NewPoint3D(0, 0, 1), NewVector3D(0, 0, 5), 1e-9)
	if err != nil {
		t.Fatal(err)
	}
	if pl.Side(NewPoint3D(3, 3, 2), 1e-6) != Above {
		t.Error("expected Above")
	}
	if pl.Side(NewPoint3D(3, 3, 0), 1e-6) != Below {
		t.Error("expected Below")
	}
	if pl.Side(NewPoint3D(3, 3, 1+1e-7), 1e-6) != On {
		t.Error("expected On")
	}
	if _, err := NewPlane(NewPoint3D(0, 0, 0), Vector3D{}, 1e-9); !errors.Is(err, ErrDegenerate) {
		t.Errorf("expected ErrDegenerate, got %v", err)
	}
	p, o := pl.IntersectSegment(seg(0, 0, 0, 0, 0, 4), 1e-9)
	if o != IntersectedWithinSegments || !p.Equal(NewPoint3D(0, 0, 1), 1e-12) {
		t.Errorf("IntersectSegment = %v, %v", p, o)
	}
	if _, o := pl.IntersectSegment(seg(0, 0, 2, 0, 0, 4), 1e-9); o != NotIntersected {
		t.Errorf("IntersectSegment above = %v", o)
	}
}
