package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/jdimyadi/bimrl/internal/geometry"
)

const tol = 1e-6

func TestDecodeElements(t *testing.T) {
	batch := `{"elements": [
		{"id": "tet", "polyhedron": {"vertices": [0,0,0, 4,0,0, 0,4,0, 0,0,4], "indices": [0,2,1, 0,1,3, 0,3,2, 1,2,3]}},
		{"id": "column", "box": {"min": [10,10,10], "max": [20,20,20]}},
		{"id": "slab", "face": {"outer": [[0,0,3],[10,0,3],[10,10,3],[0,10,3]], "inner": [[[4,4,3],[6,4,3],[6,6,3],[4,6,3]]]}},
		{"id": "beam", "segment": {"start": [0,0,0], "end": [10,0,0]}}
	]}`

	elements, err := decodeElements(strings.NewReader(batch), tol)
	if err != nil {
		t.Fatalf("decodeElements: %v", err)
	}
	want := []struct {
		id   string
		kind geometry.Kind
	}{
		{"tet", geometry.KindPolyhedron},
		{"column", geometry.KindPolyhedron},
		{"slab", geometry.KindFace},
		{"beam", geometry.KindLineSegment},
	}
	if len(elements) != len(want) {
		t.Fatalf("got %d elements, want %d", len(elements), len(want))
	}
	for i, w := range want {
		if elements[i].ID != w.id || elements[i].Shape.Kind() != w.kind {
			t.Errorf("element %d = %s/%v, want %s/%v", i, elements[i].ID, elements[i].Shape.Kind(), w.id, w.kind)
		}
	}
	if got := elements[1].Shape.BoundingBox().Max; got != geometry.NewPoint3D(20, 20, 20) {
		t.Errorf("column bbox max = %v", got)
	}
}

func TestDecodeElementsErrors(t *testing.T) {
	tests := []struct {
		name  string
		batch string
		want  string
	}{
		{"not json", `{"elements": [`, "parse element batch"},
		{"unknown field", `{"elements": [{"id": "a", "sphere": {}}]}`, "unknown field"},
		{"empty id", `{"elements": [{"segment": {"start": [0,0,0], "end": [1,0,0]}}]}`, "empty id"},
		{"duplicate id", `{"elements": [
			{"id": "a", "segment": {"start": [0,0,0], "end": [1,0,0]}},
			{"id": "a", "segment": {"start": [0,0,0], "end": [2,0,0]}}]}`, "duplicate id"},
		{"no geometry", `{"elements": [{"id": "a"}]}`, "exactly one"},
		{"two geometries", `{"elements": [{"id": "a",
			"segment": {"start": [0,0,0], "end": [1,0,0]},
			"box": {"min": [0,0,0], "max": [1,1,1]}}]}`, "exactly one"},
		{"degenerate segment", `{"elements": [{"id": "a", "segment": {"start": [1,1,1], "end": [1,1,1]}}]}`, "element a"},
		{"short face", `{"elements": [{"id": "a", "face": {"outer": [[0,0,0],[1,0,0]]}}]}`, "element a"},
		{"bad buffers", `{"elements": [{"id": "a", "polyhedron": {"vertices": [0,0], "indices": [0,1,2]}}]}`, "element a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeElements(strings.NewReader(tt.batch), tol)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("decodeElements() error = %v, want containing %q", err, tt.want)
			}
		})
	}

	_, err := decodeElements(strings.NewReader(`{"elements": [{"id": "a"}]}`), tol)
	if !errors.Is(err, errNoGeometry) {
		t.Errorf("error %v does not wrap errNoGeometry", err)
	}
}

func TestParseRegion(t *testing.T) {
	got, err := parseRegion("10, 0,0,0,5 ,3")
	if err != nil {
		t.Fatalf("parseRegion: %v", err)
	}
	want := geometry.NewBoundingBox(geometry.NewPoint3D(0, 0, 0), geometry.NewPoint3D(10, 5, 3))
	if got != want {
		t.Errorf("parseRegion() = %v, want %v", got, want)
	}

	for _, s := range []string{"", "1,2,3", "1,2,3,4,5,x", "1,2,3,4,5,6,7"} {
		if _, err := parseRegion(s); err == nil {
			t.Errorf("parseRegion(%q) succeeded", s)
		}
	}
}
