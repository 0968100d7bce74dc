// Package spatial indexes mesh triangles by the 2D bounds of their
// projection onto a plane. The index is built once per mesh and only
// queried afterwards; rebuilding means calling Build again.
package spatial

import (
	"fmt"
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/meshfill/pkg/geom"
	"github.com/dhconnelly/rtreego"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/paulmach/orb"
)

const (
	// DegenerateExtent is added to the max side of any bound axis with zero
	// extent. rtreego rejects rectangles with a zero length side.
	DegenerateExtent = 1.0

	// QueryExtent is the side length of the box a point query searches with.
	QueryExtent = 1.0

	// ErrTypeIndexBuild is the error type for triangles whose projected
	// bounds cannot be stored, e.g. NaN coordinates.
	ErrTypeIndexBuild = "index-build"

	minBranch = 25
	maxBranch = 50
)

// Entry maps one projected triangle bound to its triangle in the index
// arena.
type Entry struct {
	Bound    orb.Bound
	Triangle int
}

// Bounds implements rtreego.Spatial.
func (e *Entry) Bounds() rtreego.Rect {
	r, _ := rectFromBound(e.Bound)
	return r
}

func rectFromBound(b orb.Bound) (rtreego.Rect, error) {
	for _, c := range []float64{b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y()} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return rtreego.Rect{}, fmt.Errorf("non-finite bound coordinate %v", c)
		}
	}
	return rtreego.NewRect(
		rtreego.Point{b.Min.X(), b.Min.Y()},
		[]float64{b.Max.X() - b.Min.X(), b.Max.Y() - b.Min.Y()},
	)
}

// Index is a read-only R-tree over projected triangle bounds. It owns the
// triangles it was built from.
type Index struct {
	tree      *rtreego.Rtree
	triangles []geom.Triangle
	entries   []Entry
	projector *geom.Projector
}

// Build projects every triangle with p and bulk loads their bounds into a
// new index. Triangle orientation is not validated.
func Build(triangles []geom.Triangle, p *geom.Projector) (*Index, error) {
	idx := &Index{
		triangles: triangles,
		entries:   make([]Entry, len(triangles)),
		projector: p,
	}

	objs := make([]rtreego.Spatial, len(triangles))
	for i, t := range triangles {
		b := ProjectedBound(t, p)
		if _, err := rectFromBound(b); err != nil {
			return nil, errors.New("triangle bound is not indexable").
				WithType(ErrTypeIndexBuild).
				WithTag("triangle", i).
				Wrap(err)
		}
		idx.entries[i] = Entry{Bound: b, Triangle: i}
		objs[i] = &idx.entries[i]
	}

	idx.tree = rtreego.NewTree(2, minBranch, maxBranch, objs...)
	return idx, nil
}

// ProjectedBound returns the 2D bound of a triangle's projection, widened
// by DegenerateExtent on any axis where it has no extent.
func ProjectedBound(t geom.Triangle, p *geom.Projector) orb.Bound {
	a := p.Coords(t.A)
	b := p.Coords(t.B)
	c := p.Coords(t.C)

	bound := point(a).Bound().Extend(point(b)).Extend(point(c))
	if bound.Max[0] == bound.Min[0] {
		bound.Max[0] = bound.Min[0] + DegenerateExtent
	}
	if bound.Max[1] == bound.Min[1] {
		bound.Max[1] = bound.Min[1] + DegenerateExtent
	}
	return bound
}

func point(v v2.Vec) orb.Point {
	return orb.Point{v.X, v.Y}
}

// Query returns the entries whose bounds intersect a QueryExtent wide box
// centred on pt.
func (idx *Index) Query(pt v2.Vec) []Entry {
	half := QueryExtent / 2
	rect, err := rtreego.NewRect(rtreego.Point{pt.X - half, pt.Y - half}, []float64{QueryExtent, QueryExtent})
	if err != nil {
		return nil
	}

	hits := idx.tree.SearchIntersect(rect)
	if len(hits) == 0 {
		return nil
	}
	out := make([]Entry, len(hits))
	for i, h := range hits {
		out[i] = *h.(*Entry)
	}
	return out
}

// Len returns the number of indexed triangles.
func (idx *Index) Len() int {
	return len(idx.triangles)
}

// Triangle returns the i-th triangle of the arena.
func (idx *Index) Triangle(i int) geom.Triangle {
	return idx.triangles[i]
}

// Entries returns the index entries in triangle order.
func (idx *Index) Entries() []Entry {
	return idx.entries
}

// Projector returns the projector the index was built with.
func (idx *Index) Projector() *geom.Projector {
	return idx.projector
}
