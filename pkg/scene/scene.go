// Package scene describes a solid as a small tree of primitives, boolean
// operations and transforms, decoded from TOML and tessellated through a
// geometry kernel into the single mesh the filler consumes.
package scene

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/meshfill/pkg/kernel"
	"github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"
)

// ErrTypeSceneInvalid is returned for scenes that cannot be decoded or built.
const ErrTypeSceneInvalid = "scene-invalid"

// Part kinds.
const (
	KindBox      = "box"
	KindSphere   = "sphere"
	KindCylinder = "cylinder"
	KindGroup    = "group"
)

// Boolean operations combining a part with the parts before it.
const (
	OpUnion        = "union"
	OpDifference   = "difference"
	OpIntersection = "intersection"
)

var ops = []string{OpUnion, OpDifference, OpIntersection}

// Scene is a named list of parts combined in order.
type Scene struct {
	Name  string `toml:"name"`
	Parts []Part `toml:"part"`
}

// Part is a primitive or a group of parts. Rotation, in degrees, is applied
// before translation.
type Part struct {
	Name string `toml:"name"`
	Kind string `toml:"kind"`

	// Op combines this part with the ones before it. The first part of a
	// list is never combined and ignores Op.
	Op string `toml:"op"`

	Size   [3]float64 `toml:"size"`
	Radius float64    `toml:"radius"`
	Height float64    `toml:"height"`

	Rotate    [3]float64 `toml:"rotate"`
	Translate [3]float64 `toml:"translate"`

	Parts []Part `toml:"part"`
}

// Parse decodes and validates a TOML scene. Unknown keys are rejected.
func Parse(data []byte) (Scene, error) {
	var s Scene
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Scene{}, errors.New("decoding scene failed").
			WithType(ErrTypeSceneInvalid).
			Wrap(err)
	}
	if err := s.Validate(); err != nil {
		return Scene{}, err
	}
	return s, nil
}

// Load reads and parses a scene file.
func Load(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, errors.New("reading scene file failed").
			WithTag("path", path).
			Wrap(err)
	}

	s, err := Parse(data)
	if err != nil {
		return Scene{}, errors.New("loading scene failed").
			WithType(errors.Type(err)).
			WithTag("path", path).
			Wrap(err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), ".toml")
	}
	return s, nil
}

// Validate checks that every part can be built.
func (s Scene) Validate() error {
	if len(s.Parts) == 0 {
		return errors.New("scene has no parts").
			WithType(ErrTypeSceneInvalid).
			WithTag("scene", s.Name)
	}
	return validateParts(s.Parts, s.Name)
}

func validateParts(parts []Part, parent string) error {
	for i, p := range parts {
		path := partPath(parent, p, i)

		if p.Op != "" && !lo.Contains(ops, p.Op) {
			return errors.New("unknown boolean operation").
				WithType(ErrTypeSceneInvalid).
				WithTag("part", path).
				WithTag("op", p.Op).
				WithTag("ops", strings.Join(ops, ","))
		}

		switch p.Kind {
		case KindBox:
			if p.Size[0] <= 0 || p.Size[1] <= 0 || p.Size[2] <= 0 {
				return errors.New("box size must be positive").
					WithType(ErrTypeSceneInvalid).
					WithTag("part", path).
					WithTag("size", p.Size)
			}
		case KindSphere:
			if p.Radius <= 0 {
				return errors.New("sphere radius must be positive").
					WithType(ErrTypeSceneInvalid).
					WithTag("part", path).
					WithTag("radius", p.Radius)
			}
		case KindCylinder:
			if p.Radius <= 0 || p.Height <= 0 {
				return errors.New("cylinder radius and height must be positive").
					WithType(ErrTypeSceneInvalid).
					WithTag("part", path).
					WithTag("radius", p.Radius).
					WithTag("height", p.Height)
			}
		case KindGroup:
			if len(p.Parts) == 0 {
				return errors.New("group has no parts").
					WithType(ErrTypeSceneInvalid).
					WithTag("part", path)
			}
			if err := validateParts(p.Parts, path); err != nil {
				return err
			}
			continue
		default:
			kinds := lo.Keys(primitives)
			slices.Sort(kinds)
			return errors.New("unknown part kind").
				WithType(ErrTypeSceneInvalid).
				WithTag("part", path).
				WithTag("kind", p.Kind).
				WithTag("kinds", strings.Join(append(kinds, KindGroup), ","))
		}

		if len(p.Parts) > 0 {
			return errors.New("only groups may contain parts").
				WithType(ErrTypeSceneInvalid).
				WithTag("part", path)
		}
	}
	return nil
}

// primitives builds the solid of each primitive kind.
var primitives = map[string]func(k kernel.Kernel, p Part) kernel.Solid{
	KindBox: func(k kernel.Kernel, p Part) kernel.Solid {
		return k.Box(p.Size[0], p.Size[1], p.Size[2])
	},
	KindSphere: func(k kernel.Kernel, p Part) kernel.Solid {
		return k.Sphere(p.Radius)
	},
	KindCylinder: func(k kernel.Kernel, p Part) kernel.Solid {
		return k.Cylinder(p.Height, p.Radius)
	},
}

// Build validates s and returns its solid.
func Build(s Scene, k kernel.Kernel) (kernel.Solid, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return combine(k, s.Parts), nil
}

// Tessellate builds s and meshes it. The mesh is named after the scene.
func Tessellate(s Scene, k kernel.Kernel) (*kernel.Mesh, error) {
	solid, err := Build(s, k)
	if err != nil {
		return nil, err
	}

	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, errors.New("tessellating scene failed").
			WithType(ErrTypeSceneInvalid).
			WithTag("scene", s.Name).
			Wrap(err)
	}
	mesh.PartName = s.Name
	return mesh, nil
}

// PartNames returns the names of the top level parts, in order.
func (s Scene) PartNames() []string {
	return lo.Map(s.Parts, func(p Part, i int) string {
		return partPath("", p, i)
	})
}

func combine(k kernel.Kernel, parts []Part) kernel.Solid {
	var acc kernel.Solid
	for i, p := range parts {
		solid := build(k, p)
		if i == 0 {
			acc = solid
			continue
		}

		switch p.Op {
		case OpDifference:
			acc = k.Difference(acc, solid)
		case OpIntersection:
			acc = k.Intersection(acc, solid)
		default:
			acc = k.Union(acc, solid)
		}
	}
	return acc
}

func build(k kernel.Kernel, p Part) kernel.Solid {
	var solid kernel.Solid
	if p.Kind == KindGroup {
		solid = combine(k, p.Parts)
	} else {
		solid = primitives[p.Kind](k, p)
	}

	if r := p.Rotate; r != [3]float64{} {
		solid = k.Rotate(solid, r[0], r[1], r[2])
	}
	if t := p.Translate; t != [3]float64{} {
		solid = k.Translate(solid, t[0], t[1], t[2])
	}
	return solid
}

func partPath(parent string, p Part, i int) string {
	name := p.Name
	if name == "" {
		name = p.Kind + "#" + strconv.Itoa(i)
	}
	if parent == "" {
		return name
	}
	return parent + "/" + name
}
