// Package meshcheck inspects a triangle mesh before it is filled. Errors make
// the mesh unusable; warnings flag geometry for which inside/outside answers
// may be unreliable.
package meshcheck

import (
	"fmt"
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/meshfill/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const (
	ErrTypeEmptyMesh       = "empty-mesh"
	ErrTypeNonFiniteVertex = "non-finite-vertex"
)

// DegenerateArea is the area below which a triangle is reported as degenerate.
const DegenerateArea = 1e-12

// Severity tells whether an issue blocks filling.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue is a single finding. Triangle is -1 for mesh-wide findings.
type Issue struct {
	Triangle int
	Type     string
	Message  string
	Severity Severity
}

// Result holds the findings of Check.
type Result struct {
	Triangles int
	OpenEdges int
	Errors    []Issue
	Warnings  []Issue
}

// OK reports whether the mesh can be filled.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// Err returns the first error as a typed error, or nil.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	first := r.Errors[0]
	return errors.New(first.Message).
		WithType(first.Type).
		WithTag("triangle", first.Triangle).
		WithTag("errors", len(r.Errors))
}

// Check runs every mesh check.
func Check(triangles []geom.Triangle) Result {
	r := Result{Triangles: len(triangles)}

	if len(triangles) == 0 {
		r.Errors = append(r.Errors, Issue{
			Triangle: -1,
			Type:     ErrTypeEmptyMesh,
			Message:  "mesh has no triangles",
			Severity: SeverityError,
		})
		return r
	}

	r.Errors = append(r.Errors, checkFinite(triangles)...)
	if !r.OK() {
		return r
	}

	r.Warnings = append(r.Warnings, checkDegenerate(triangles)...)

	open := openEdges(triangles)
	r.OpenEdges = open
	if open > 0 {
		r.Warnings = append(r.Warnings, Issue{
			Triangle: -1,
			Message:  fmt.Sprintf("mesh has %d open edges; it may not be closed", open),
			Severity: SeverityWarning,
		})
	}
	return r
}

// checkFinite reports triangles with NaN or infinite coordinates.
func checkFinite(triangles []geom.Triangle) []Issue {
	var issues []Issue
	for i, t := range triangles {
		if finite(t.A) && finite(t.B) && finite(t.C) {
			continue
		}
		issues = append(issues, Issue{
			Triangle: i,
			Type:     ErrTypeNonFiniteVertex,
			Message:  fmt.Sprintf("triangle %d has a non-finite vertex", i),
			Severity: SeverityError,
		})
	}
	return issues
}

func finite(v v3.Vec) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// checkDegenerate reports triangles with (almost) no area.
func checkDegenerate(triangles []geom.Triangle) []Issue {
	var issues []Issue
	for i, t := range triangles {
		if area := t.Area(); area < DegenerateArea {
			issues = append(issues, Issue{
				Triangle: i,
				Message:  fmt.Sprintf("triangle %d is degenerate (area %.3g)", i, area),
				Severity: SeverityWarning,
			})
		}
	}
	return issues
}

// edgeKey identifies an undirected edge by its endpoints so that (a,b) and
// (b,a) are treated as the same edge.
type edgeKey struct {
	lo, hi v3.Vec
}

func makeEdgeKey(a, b v3.Vec) edgeKey {
	if less(b, a) {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

func less(a, b v3.Vec) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

// openEdges counts edges shared by an odd number of triangles. Vertices are
// matched by position, so indexed meshes and triangle soups are treated alike.
func openEdges(triangles []geom.Triangle) int {
	uses := make(map[edgeKey]int, len(triangles)*3/2)
	for _, t := range triangles {
		if t.A == t.B || t.B == t.C || t.C == t.A {
			continue
		}
		uses[makeEdgeKey(t.A, t.B)]++
		uses[makeEdgeKey(t.B, t.C)]++
		uses[makeEdgeKey(t.C, t.A)]++
	}

	open := 0
	for _, n := range uses {
		if n%2 != 0 {
			open++
		}
	}
	return open
}
