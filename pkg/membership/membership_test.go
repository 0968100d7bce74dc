package membership

import (
	"testing"

	"cogentcore.org/core/base/randx"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/meshfill/pkg/geom"
	"github.com/chazu/meshfill/pkg/kernel"
	"github.com/chazu/meshfill/pkg/kernel/sdfx"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/require"
)

func prepare(t *testing.T, m *kernel.Mesh, plane geom.Plane) *Tester {
	t.Helper()
	p, err := geom.NewProjector(plane, v3.Vec{})
	require.NoError(t, err)
	tester, err := Prepare(m, p)
	require.NoError(t, err)
	return tester
}

func TestCubeParity(t *testing.T) {
	planes := map[string]geom.Plane{
		"xy plane":        geom.DefaultPlane,
		"yz plane":        {Normal: v3.Vec{X: 1}},
		"offset xz plane": {Normal: v3.Vec{Y: -1}, Distance: 30},
	}
	inside := []v3.Vec{
		{},
		{X: 5, Y: 5},         // over a face diagonal
		{X: -3, Y: -3, Z: 2}, // over the other diagonal
		{X: 9.5, Y: -9.5, Z: 9.5},
		{X: 1, Y: 2, Z: 3},
	}
	outside := []v3.Vec{
		{X: 10.5},
		{Y: -11},
		{Z: 10.01},
		{X: 15, Y: 15, Z: 15},
		{X: 5, Y: 5, Z: 50}, // above the footprint
		{X: 40, Y: -40},     // outside the footprint
	}

	for name, plane := range planes {
		t.Run(name, func(t *testing.T) {
			for _, encoding := range []bool{true, false} {
				tester := prepare(t, kernel.CubeMesh(10, encoding), plane)
				for _, p := range inside {
					require.True(t, tester.Contains(p, nil), "expected %v inside", p)
				}
				for _, p := range outside {
					require.False(t, tester.Contains(p, nil), "expected %v outside", p)
				}
			}
		})
	}
}

func TestCubeVolumeRatio(t *testing.T) {
	tester := prepare(t, kernel.CubeMesh(10, true), geom.DefaultPlane)
	rnd := randx.NewSysRand(42)

	const samples = 10000
	var in int
	for i := 0; i < samples; i++ {
		p := v3.Vec{
			X: rnd.Float64()*40 - 20,
			Y: rnd.Float64()*40 - 20,
			Z: rnd.Float64()*40 - 20,
		}
		if tester.Contains(p, nil) {
			in++
		}
	}
	require.InDelta(t, 0.125, float64(in)/samples, 0.02)
}

func TestOctahedron(t *testing.T) {
	tester := prepare(t, kernel.OctahedronMesh(20), geom.DefaultPlane)

	require.True(t, tester.Contains(v3.Vec{}, nil))
	require.True(t, tester.Contains(v3.Vec{X: 5, Y: 5, Z: 5}, nil))
	require.True(t, tester.Contains(v3.Vec{X: -9, Y: 0, Z: 10}, nil))
	require.False(t, tester.Contains(v3.Vec{X: 10, Y: 10, Z: 1}, nil))
	require.False(t, tester.Contains(v3.Vec{X: 15, Y: -15, Z: 0}, nil))
}

func TestCountersDoNotChangeResult(t *testing.T) {
	tester := prepare(t, kernel.CubeMesh(10, true), geom.DefaultPlane)

	var c Counters
	points := []v3.Vec{{}, {X: 30}, {Z: 30}, {X: 4, Y: -2, Z: 1}}
	for _, p := range points {
		require.Equal(t, tester.Contains(p, nil), tester.Contains(p, &c))
	}

	require.Equal(t, 4, c.Tests)
	require.Equal(t, 1, c.Misses, "only the point beside the footprint skips the ray cast")
	require.Equal(t, 3, c.RayCasts)
	require.Equal(t, 4, c.Hits, "the point above the cube crosses both caps")
}

func TestCountersAdd(t *testing.T) {
	a := Counters{Tests: 1, Misses: 1, Projection: 3}
	a.Add(Counters{Tests: 2, RayCasts: 2, Hits: 3, Projection: 4})
	require.Equal(t, Counters{Tests: 3, Misses: 1, RayCasts: 2, Hits: 3, Projection: 7}, a)
}

func TestPrepareMalformed(t *testing.T) {
	p, err := geom.NewProjector(geom.DefaultPlane, v3.Vec{})
	require.NoError(t, err)

	tester, err := Prepare(&kernel.Mesh{Vertices: make([]float32, 9), Indices: []uint32{0, 1, 7}}, p)
	require.Error(t, err)
	require.Nil(t, tester)
	require.Equal(t, geom.ErrTypeMalformedGeometry, errors.Type(err))
}

func TestPrepareBounds(t *testing.T) {
	tester := prepare(t, kernel.OctahedronMesh(20), geom.DefaultPlane)
	require.Equal(t, v3.Vec{X: -20, Y: -20, Z: -20}, tester.Bounds().Min)
	require.Equal(t, v3.Vec{X: 20, Y: 20, Z: 20}, tester.Bounds().Max)
	require.Equal(t, 8, tester.Index().Len())
	require.GreaterOrEqual(t, tester.BuildTime().Nanoseconds(), int64(0))
}

func TestEmptyMeshIsAlwaysOutside(t *testing.T) {
	tester := prepare(t, &kernel.Mesh{}, geom.DefaultPlane)
	require.False(t, tester.Contains(v3.Vec{}, nil))
}

func TestMatchesSignedDistance(t *testing.T) {
	k := sdfx.NewWithCells(48)
	solid := k.Difference(k.Sphere(10), k.Box(4, 4, 30))
	mesh, err := k.ToMesh(solid)
	require.NoError(t, err)

	tester := prepare(t, mesh, geom.DefaultPlane)
	field := sdfx.SDF(solid)
	rnd := randx.NewSysRand(7)

	var checked int
	for checked < 500 {
		p := v3.Vec{
			X: rnd.Float64()*24 - 12,
			Y: rnd.Float64()*24 - 12,
			Z: rnd.Float64()*24 - 12,
		}
		d := field.Evaluate(p)
		if d > -1 && d < 1 {
			continue // too close to the tessellated surface to judge
		}
		require.Equal(t, d < 0, tester.Contains(p, nil), "point %v at distance %.3f", p, d)
		checked++
	}
}

// --- Edge ownership ---

func TestSharedEdgeOwnedOnce(t *testing.T) {
	a := v2.Vec{X: 0, Y: 0}
	b := v2.Vec{X: 4, Y: 4}
	left := v2.Vec{X: 0, Y: 4}
	right := v2.Vec{X: 4, Y: 0}

	for _, p := range []v2.Vec{{X: 1, Y: 1}, {X: 2, Y: 2}, a, b} {
		n := 0
		if covers(p, a, b, left) {
			n++
		}
		if covers(p, b, a, right) {
			n++
		}
		if p == a || p == b {
			require.LessOrEqual(t, n, 1, "vertex %v", p)
			continue
		}
		require.Equal(t, 1, n, "edge point %v", p)
	}
}

func TestEdgeIsAntisymmetric(t *testing.T) {
	a := v2.Vec{X: 0.1, Y: 0.7}
	b := v2.Vec{X: 3.3, Y: -1.9}
	p := v2.Vec{X: 1.7, Y: -0.6}
	require.Equal(t, edge(a, b, p), -edge(b, a, p))
}

func TestEdgeOnTriangleCoversNothing(t *testing.T) {
	a := v2.Vec{X: 0, Y: 0}
	require.False(t, covers(a, a, v2.Vec{X: 1}, v2.Vec{X: 2}))
}
