package geom

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Plane is the set of points p where p·Normal == Distance.
type Plane struct {
	Normal   v3.Vec
	Distance float64
}

// DefaultPlane is the z = 0 plane. Projecting onto it keeps x and y.
var DefaultPlane = Plane{Normal: v3.Vec{Z: 1}}

// Projector maps 3D points onto a plane along a fixed direction. It is
// immutable and safe to share.
type Projector struct {
	normal    v3.Vec
	distance  float64
	direction v3.Vec
	dirDotN   float64

	// u and v span the plane; Coords reports positions in this basis.
	u, v v3.Vec
}

// NewProjector configures an orthographic projection onto the plane along
// direction. A zero direction projects along the plane normal. A direction
// parallel to the plane is rejected here so that Project never divides by
// zero.
func NewProjector(plane Plane, direction v3.Vec) (*Projector, error) {
	if plane.Normal.Length() == 0 {
		return nil, errors.New("plane normal is zero").
			WithType(ErrTypeDegenerateProjection)
	}
	n := plane.Normal.Normalize()

	if direction.Length() == 0 {
		direction = n
	}
	dot := direction.Dot(n)
	if dot == 0 || math.IsNaN(dot) {
		return nil, errors.New("projection direction is parallel to the plane").
			WithType(ErrTypeDegenerateProjection).
			WithTag("direction", direction).
			WithTag("normal", n)
	}

	u, v := planeBasis(n)
	return &Projector{
		normal:    n,
		distance:  plane.Distance,
		direction: direction,
		dirDotN:   dot,
		u:         u,
		v:         v,
	}, nil
}

// planeBasis returns two orthonormal vectors spanning the plane with normal
// n. For n = +Z the basis is (+X, +Y).
func planeBasis(n v3.Vec) (v3.Vec, v3.Vec) {
	helper := v3.Vec{X: 1}
	if math.Abs(n.X) > 0.9 {
		helper = v3.Vec{Y: 1}
	}
	u := helper.Sub(n.MulScalar(helper.Dot(n))).Normalize()
	return u, n.Cross(u)
}

// Normal returns the unit plane normal.
func (p *Projector) Normal() v3.Vec {
	return p.normal
}

// Direction returns the projection direction as configured.
func (p *Projector) Direction() v3.Vec {
	return p.direction
}

// Project returns the point where the line through pt along the
// projection direction meets the plane.
func (p *Projector) Project(pt v3.Vec) v3.Vec {
	t := (pt.Dot(p.normal) - p.distance) / p.dirDotN
	return pt.Sub(p.direction.MulScalar(t))
}

// Coords returns the 2D position of pt's projection in the plane basis.
func (p *Projector) Coords(pt v3.Vec) v2.Vec {
	q := p.Project(pt)
	return v2.Vec{X: q.Dot(p.u), Y: q.Dot(p.v)}
}
