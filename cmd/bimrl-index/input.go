package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jdimyadi/bimrl/internal/geometry"
)

// elementBatch is the JSON document accepted by -input.
type elementBatch struct {
	Elements []elementJSON `json:"elements"`
}

// elementJSON carries exactly one geometry field.
type elementJSON struct {
	ID         string          `json:"id"`
	Polyhedron *polyhedronJSON `json:"polyhedron,omitempty"`
	Box        *boxJSON        `json:"box,omitempty"`
	Face       *faceJSON       `json:"face,omitempty"`
	Segment    *segmentJSON    `json:"segment,omitempty"`
}

type polyhedronJSON struct {
	Vertices []float64 `json:"vertices"` // flat x,y,z triples
	Indices  []int     `json:"indices"`
	Counts   []int     `json:"counts"`
}

type boxJSON struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

type faceJSON struct {
	Outer [][3]float64   `json:"outer"`
	Inner [][][3]float64 `json:"inner,omitempty"`
}

type segmentJSON struct {
	Start [3]float64 `json:"start"`
	End   [3]float64 `json:"end"`
}

type element struct {
	ID    string
	Shape geometry.Shape
}

var errNoGeometry = errors.New("element must carry exactly one of polyhedron, box, face or segment")

func point(c [3]float64) geometry.Point3D {
	return geometry.NewPoint3D(c[0], c[1], c[2])
}

func loop(cs [][3]float64) []geometry.Point3D {
	pts := make([]geometry.Point3D, len(cs))
	for i, c := range cs {
		pts[i] = point(c)
	}
	return pts
}

func (e elementJSON) shape(tol float64) (geometry.Shape, error) {
	n := 0
	for _, set := range []bool{e.Polyhedron != nil, e.Box != nil, e.Face != nil, e.Segment != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		return nil, errNoGeometry
	}

	switch {
	case e.Polyhedron != nil:
		p := e.Polyhedron
		return geometry.NewPolyhedronFromBuffers(p.Vertices, p.Indices, p.Counts, tol)
	case e.Box != nil:
		return geometry.NewCuboid(geometry.NewBoundingBox(point(e.Box.Min), point(e.Box.Max)), tol)
	case e.Face != nil:
		inner := make([][]geometry.Point3D, len(e.Face.Inner))
		for i, l := range e.Face.Inner {
			inner[i] = loop(l)
		}
		return geometry.NewFace3D(loop(e.Face.Outer), inner, tol)
	default:
		return geometry.NewLineSegment3D(point(e.Segment.Start), point(e.Segment.End), tol)
	}
}

// decodeElements parses an element batch and builds the shapes. Elements
// with an empty or duplicate id are rejected.
func decodeElements(r io.Reader, tol float64) ([]element, error) {
	var batch elementBatch
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&batch); err != nil {
		return nil, fmt.Errorf("parse element batch: %w", err)
	}

	seen := make(map[string]bool, len(batch.Elements))
	out := make([]element, 0, len(batch.Elements))
	for i, e := range batch.Elements {
		if e.ID == "" {
			return nil, fmt.Errorf("element %d: empty id", i)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("element %s: duplicate id", e.ID)
		}
		seen[e.ID] = true
		s, err := e.shape(tol)
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", e.ID, err)
		}
		out = append(out, element{ID: e.ID, Shape: s})
	}
	return out, nil
}

func loadElements(path string, tol float64) ([]element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return decodeElements(f, tol)
}
