// Package membership decides whether a point lies inside a closed mesh by
// counting ray crossings against the triangles a spatial index returns for
// the point's projection. An odd count means inside.
package membership

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/meshfill/pkg/clock"
	"github.com/chazu/meshfill/pkg/geom"
	"github.com/chazu/meshfill/pkg/kernel"
	"github.com/chazu/meshfill/pkg/spatial"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const (
	// MinHitDistance ignores hits this close to the ray origin so a point
	// on a face does not count that face.
	MinHitDistance = 1e-9

	// MaxRayLength bounds how far along the ray hits are counted.
	MaxRayLength = 1e9
)

// Counters accumulates the cost of membership tests. They never influence
// a test's result.
type Counters struct {
	Projection time.Duration
	Query      time.Duration
	RayCast    time.Duration

	Tests    int // points classified
	Misses   int // points whose projection hit no bound
	RayCasts int // points that needed a ray cast
	Hits     int // ray/triangle crossings counted
}

// Add merges o into c.
func (c *Counters) Add(o Counters) {
	c.Projection += o.Projection
	c.Query += o.Query
	c.RayCast += o.RayCast
	c.Tests += o.Tests
	c.Misses += o.Misses
	c.RayCasts += o.RayCasts
	c.Hits += o.Hits
}

// Tester classifies points against one mesh snapshot.
type Tester struct {
	index  *spatial.Index
	bounds sdf.Box3
	ray    v3.Vec
	clock  clock.Clock

	buildTime time.Duration
}

// NewTester returns a tester over an already built index. bounds must come
// from the same mesh the index was built from.
func NewTester(idx *spatial.Index, bounds sdf.Box3) *Tester {
	return &Tester{
		index:  idx,
		bounds: bounds,
		ray:    idx.Projector().Direction().Normalize().MulScalar(-1),
		clock:  clock.NewSystem(),
	}
}

// Prepare extracts the mesh's triangles, indexes them and computes the
// mesh bounds, all from the same buffers. Any extraction or indexing error
// leaves the mesh unusable for filling.
func Prepare(m *kernel.Mesh, p *geom.Projector) (*Tester, error) {
	c := clock.NewSystem()
	start := c.Now()

	tris, err := geom.ExtractMesh(m)
	if err != nil {
		return nil, errors.New("extracting mesh triangles failed").
			WithType(errors.Type(err)).
			WithTag("part", m.PartName).
			Wrap(err)
	}
	idx, err := spatial.Build(tris, p)
	if err != nil {
		return nil, errors.New("building spatial index failed").
			WithType(errors.Type(err)).
			WithTag("part", m.PartName).
			Wrap(err)
	}

	t := NewTester(idx, geom.Bounds(m.Vertices))
	t.buildTime = c.Now() - start
	return t, nil
}

// Bounds returns the bounding box of the mesh under test.
func (t *Tester) Bounds() sdf.Box3 {
	return t.bounds
}

// Index returns the spatial index the tester queries.
func (t *Tester) Index() *spatial.Index {
	return t.index
}

// BuildTime returns how long Prepare spent extracting and indexing.
func (t *Tester) BuildTime() time.Duration {
	return t.buildTime
}

// Contains reports whether p is inside the mesh. When c is not nil the
// time spent per phase is added to it.
func (t *Tester) Contains(p v3.Vec, c *Counters) bool {
	if c == nil {
		return t.contains(p, &Counters{})
	}
	return t.contains(p, c)
}

func (t *Tester) contains(p v3.Vec, c *Counters) bool {
	c.Tests++

	start := t.clock.Now()
	pt := t.index.Projector().Coords(p)
	projected := t.clock.Now()
	c.Projection += projected - start

	entries := t.index.Query(pt)
	queried := t.clock.Now()
	c.Query += queried - projected

	if len(entries) == 0 {
		c.Misses++
		return false
	}

	c.RayCasts++
	proj := t.index.Projector()
	crossings := 0
	for _, e := range entries {
		tri := t.index.Triangle(e.Triangle)
		if !covers(pt, proj.Coords(tri.A), proj.Coords(tri.B), proj.Coords(tri.C)) {
			continue
		}
		if d, ok := hitDistance(p, t.ray, tri); ok && d > MinHitDistance && d <= MaxRayLength {
			crossings++
		}
	}
	c.Hits += crossings
	c.RayCast += t.clock.Now() - queried

	return crossings%2 == 1
}

// covers reports whether the projected triangle abc contains p. Points on
// an edge belong to exactly one of the two triangles sharing it, as if p
// were nudged by an infinitesimal (-1, -δ). Zero area projections (faces
// seen edge-on) cover nothing.
func covers(p, a, b, c v2.Vec) bool {
	area := edge(a, b, c)
	if area == 0 {
		return false
	}
	if area < 0 {
		b, c = c, b
	}
	return owns(a, b, p) && owns(b, c, p) && owns(c, a, p)
}

func owns(a, b, p v2.Vec) bool {
	if e := edge(a, b, p); e != 0 {
		return e > 0
	}
	d := v2.Vec{X: b.X - a.X, Y: b.Y - a.Y}
	return d.Y > 0 || (d.Y == 0 && d.X < 0)
}

// edge is the signed area of (a, b, p), positive when p is left of a->b.
// It is evaluated from the lexicographically smaller endpoint so that
// edge(a, b, p) == -edge(b, a, p) holds exactly.
func edge(a, b, p v2.Vec) float64 {
	if b.X < a.X || (b.X == a.X && b.Y < a.Y) {
		return -edge(b, a, p)
	}
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// hitDistance returns the distance along dir from origin to the plane of
// tri.
func hitDistance(origin, dir v3.Vec, tri geom.Triangle) (float64, bool) {
	n := tri.B.Sub(tri.A).Cross(tri.C.Sub(tri.A))
	denom := dir.Dot(n)
	if denom == 0 {
		return 0, false
	}
	return tri.A.Sub(origin).Dot(n) / denom, true
}
