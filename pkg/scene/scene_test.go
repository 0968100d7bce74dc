package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/meshfill/pkg/kernel"
	"github.com/chazu/meshfill/pkg/kernel/sdfx"
	"github.com/stretchr/testify/require"
)

// exprSolid records how a solid was built.
type exprSolid string

func (s exprSolid) BoundingBox() (min, max [3]float64) {
	return [3]float64{-1, -1, -1}, [3]float64{1, 1, 1}
}

// exprKernel builds solids as expressions so tests can assert the tree.
type exprKernel struct{}

func (exprKernel) Box(x, y, z float64) kernel.Solid {
	return exprSolid(fmt.Sprintf("box(%g,%g,%g)", x, y, z))
}

func (exprKernel) Sphere(r float64) kernel.Solid {
	return exprSolid(fmt.Sprintf("sphere(%g)", r))
}

func (exprKernel) Cylinder(h, r float64) kernel.Solid {
	return exprSolid(fmt.Sprintf("cylinder(%g,%g)", h, r))
}

func (exprKernel) Union(a, b kernel.Solid) kernel.Solid {
	return exprSolid(fmt.Sprintf("union(%s,%s)", a, b))
}

func (exprKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return exprSolid(fmt.Sprintf("difference(%s,%s)", a, b))
}

func (exprKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return exprSolid(fmt.Sprintf("intersection(%s,%s)", a, b))
}

func (exprKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return exprSolid(fmt.Sprintf("translate(%s,%g,%g,%g)", s, x, y, z))
}

func (exprKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return exprSolid(fmt.Sprintf("rotate(%s,%g,%g,%g)", s, x, y, z))
}

func (exprKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	return kernel.CubeMesh(1, true), nil
}

const bracket = `
name = "bracket"

[[part]]
name = "plate"
kind = "box"
size = [20, 10, 2]

[[part]]
name = "hole"
kind = "cylinder"
op = "difference"
height = 4
radius = 1.5
translate = [5, 0, 0]

[[part]]
name = "boss"
kind = "group"
rotate = [0, 0, 90]

  [[part.part]]
  kind = "sphere"
  radius = 3

  [[part.part]]
  kind = "box"
  op = "intersection"
  size = [4, 4, 4]
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(bracket))
	require.NoError(t, err)
	require.Equal(t, "bracket", s.Name)
	require.Equal(t, []string{"plate", "hole", "boss"}, s.PartNames())
	require.Len(t, s.Parts[2].Parts, 2)
	require.Equal(t, [3]float64{5, 0, 0}, s.Parts[1].Translate)
}

func TestBuild(t *testing.T) {
	s, err := Parse([]byte(bracket))
	require.NoError(t, err)

	solid, err := Build(s, exprKernel{})
	require.NoError(t, err)
	require.Equal(t, exprSolid(
		"union("+
			"difference(box(20,10,2),translate(cylinder(4,1.5),5,0,0)),"+
			"rotate(intersection(sphere(3),box(4,4,4)),0,0,90))",
	), solid)
}

func TestTessellateNamesMesh(t *testing.T) {
	s, err := Parse([]byte(bracket))
	require.NoError(t, err)

	m, err := Tessellate(s, exprKernel{})
	require.NoError(t, err)
	require.Equal(t, "bracket", m.PartName)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "syntax error",
			doc:  `name = `,
		},
		{
			name: "unknown key",
			doc:  "[[part]]\nkind = \"box\"\nsize = [1, 1, 1]\ncolor = \"red\"\n",
		},
		{
			name: "no parts",
			doc:  `name = "empty"`,
		},
		{
			name: "unknown kind",
			doc:  "[[part]]\nkind = \"torus\"\n",
		},
		{
			name: "flat box",
			doc:  "[[part]]\nkind = \"box\"\nsize = [1, 0, 1]\n",
		},
		{
			name: "sphere without radius",
			doc:  "[[part]]\nkind = \"sphere\"\n",
		},
		{
			name: "negative cylinder",
			doc:  "[[part]]\nkind = \"cylinder\"\nradius = 1\nheight = -2\n",
		},
		{
			name: "unknown op",
			doc:  "[[part]]\nkind = \"sphere\"\nradius = 1\nop = \"xor\"\n",
		},
		{
			name: "empty group",
			doc:  "[[part]]\nkind = \"group\"\n",
		},
		{
			name: "primitive with children",
			doc:  "[[part]]\nkind = \"sphere\"\nradius = 1\n[[part.part]]\nkind = \"sphere\"\nradius = 1\n",
		},
		{
			name: "invalid nested part",
			doc:  "[[part]]\nkind = \"group\"\n[[part.part]]\nkind = \"box\"\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(test.doc))
			require.Error(t, err)
			require.Equal(t, ErrTypeSceneInvalid, errors.Type(err))
		})
	}
}

func TestBuildValidates(t *testing.T) {
	_, err := Build(Scene{}, exprKernel{})
	require.Error(t, err)
	require.Equal(t, ErrTypeSceneInvalid, errors.Type(err))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "widget.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[part]]\nkind = \"sphere\"\nradius = 2\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "widget", s.Name, "unnamed scenes take the file name")
	require.Equal(t, []string{"sphere#0"}, s.PartNames())

	_, err = Load(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[[part]]\nkind = \"cone\"\n"), 0o644))
	_, err = Load(bad)
	require.Equal(t, ErrTypeSceneInvalid, errors.Type(err))
}

func TestTessellateWithSdfx(t *testing.T) {
	s, err := Parse([]byte(`
name = "cored"

[[part]]
kind = "box"
size = [10, 10, 10]

[[part]]
kind = "cylinder"
op = "difference"
height = 12
radius = 2
`))
	require.NoError(t, err)

	m, err := Tessellate(s, sdfx.NewWithCells(40))
	require.NoError(t, err)
	require.False(t, m.IsEmpty())
	require.Equal(t, "cored", m.PartName)

	min, max := m.BoundingBox()
	for i := 0; i < 3; i++ {
		require.InDelta(t, -5, min[i], 0.5)
		require.InDelta(t, 5, max[i], 0.5)
	}
}

func TestLoadExampleScene(t *testing.T) {
	s, err := Load(filepath.Join("..", "..", "examples", "bracket.toml"))
	require.NoError(t, err)
	require.Equal(t, "bracket", s.Name)
	require.Equal(t, []string{"plate", "bore", "lug"}, s.PartNames())

	solid, err := Build(s, exprKernel{})
	require.NoError(t, err)
	require.Equal(t, exprSolid(
		"union("+
			"difference(box(40,20,6),translate(cylinder(10,4),10,0,0)),"+
			"translate(intersection(box(8,12,12),sphere(8)),-14,0,6))",
	), solid)
}
