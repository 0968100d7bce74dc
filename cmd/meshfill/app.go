package main

import (
	"context"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/chazu/meshfill/pkg/fill"
	"github.com/chazu/meshfill/pkg/geom"
	"github.com/chazu/meshfill/pkg/host"
	"github.com/chazu/meshfill/pkg/kernel"
	"github.com/chazu/meshfill/pkg/kernel/sdfx"
	"github.com/chazu/meshfill/pkg/membership"
	"github.com/chazu/meshfill/pkg/meshcheck"
	"github.com/chazu/meshfill/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Built-in shapes.
const (
	ShapeCube       = "cube"
	ShapeOctahedron = "octahedron"
	ShapeSphere     = "sphere"
	ShapeScene      = "scene"
)

// ErrTypeInvalidConfig is returned for options that cannot be honored.
const ErrTypeInvalidConfig = "invalid-config"

// App loads a mesh and fills it. It holds the geometry kernel used for
// generated shapes and scenes.
type App struct {
	kernel kernel.Kernel
}

// IssueData is a JSON-serializable mesh check finding.
type IssueData struct {
	Triangle int    `json:"triangle"`
	Message  string `json:"message"`
}

// MeshData summarizes the filled mesh.
type MeshData struct {
	Name      string     `json:"name"`
	Triangles int        `json:"triangles"`
	OpenEdges int        `json:"openEdges"`
	Min       [3]float64 `json:"min"`
	Max       [3]float64 `json:"max"`
}

// Result is the full outcome of a fill run.
type Result struct {
	SessionID      string      `json:"sessionId,omitempty"`
	Mesh           MeshData    `json:"mesh"`
	Target         int         `json:"target"`
	Particles      int         `json:"particles"`
	Steps          int         `json:"steps"`
	Candidates     int         `json:"candidates"`
	RayCasts       int         `json:"rayCasts"`
	AcceptanceRate float64     `json:"acceptanceRate"`
	MinBatchSize   int         `json:"minBatchSize"`
	MaxBatchSize   int         `json:"maxBatchSize"`
	IndexBuild     string      `json:"indexBuild"`
	Elapsed        string      `json:"elapsed"`
	Errors         []IssueData `json:"errors"`
	Warnings       []IssueData `json:"warnings"`

	// Positions holds x,y,z triples. It is left out of the printed summary.
	Positions []float32 `json:"-"`
}

// NewApp creates an App backed by the sdfx kernel.
func NewApp(cells int) *App {
	return &App{kernel: sdfx.NewWithCells(cells)}
}

// Mesh builds the mesh the configuration asks for.
func (a *App) Mesh(conf config) (*kernel.Mesh, error) {
	if conf.Scene != "" {
		s, err := scene.Load(conf.Scene)
		if err != nil {
			return nil, err
		}
		return scene.Tessellate(s, a.kernel)
	}

	switch conf.Shape {
	case ShapeCube:
		return kernel.CubeMesh(float32(conf.Size), true), nil
	case ShapeOctahedron:
		return kernel.OctahedronMesh(float32(conf.Size)), nil
	case ShapeSphere:
		m, err := a.kernel.ToMesh(a.kernel.Sphere(conf.Size))
		if err != nil {
			return nil, errors.New("meshing sphere failed").Wrap(err)
		}
		m.PartName = ShapeSphere
		return m, nil
	default:
		return nil, errors.New("unknown shape").
			WithType(ErrTypeInvalidConfig).
			WithTag("shape", conf.Shape)
	}
}

// Fill loads the configured mesh and fills it with conf.Target particles.
// The returned result is populated as far as the run got, even on error.
func (a *App) Fill(ctx context.Context, conf config) (Result, error) {
	result := Result{
		Target:   conf.Target,
		Errors:   []IssueData{},
		Warnings: []IssueData{},
	}
	shape := conf.shapeLabel()

	mesh, err := a.Mesh(conf)
	if err != nil {
		observeFailure(shape, err)
		return result, err
	}

	// Step 1: check the mesh.
	tris, err := geom.ExtractMesh(mesh)
	if err != nil {
		observeFailure(shape, err)
		return result, err
	}
	check := meshcheck.Check(tris)
	min, max := mesh.BoundingBox()
	result.Mesh = MeshData{
		Name:      mesh.PartName,
		Triangles: check.Triangles,
		OpenEdges: check.OpenEdges,
		Min:       min,
		Max:       max,
	}
	for _, e := range check.Errors {
		result.Errors = append(result.Errors, IssueData{Triangle: e.Triangle, Message: e.Message})
	}
	for _, w := range check.Warnings {
		result.Warnings = append(result.Warnings, IssueData{Triangle: w.Triangle, Message: w.Message})
		logs.WithTag("mesh", mesh.PartName).
			WithTag("triangle", w.Triangle).
			Warn(errors.New(w.Message))
	}
	if err := check.Err(); err != nil {
		observeFailure(shape, err)
		return result, err
	}

	// Step 2: index the mesh.
	plane, err := conf.plane()
	if err != nil {
		observeFailure(shape, err)
		return result, err
	}
	projector, err := geom.NewProjector(plane, v3.Vec{})
	if err != nil {
		observeFailure(shape, err)
		return result, err
	}
	tester, err := membership.Prepare(mesh, projector)
	if err != nil {
		observeFailure(shape, err)
		return result, err
	}
	logs.WithTag("mesh", mesh.PartName).
		WithTag("triangles", check.Triangles).
		WithTag("index_build", tester.BuildTime()).
		Info("mesh indexed")

	// Step 3: fill it one frame at a time.
	filler := fill.New(tester, conf.fillOptions()...)
	if err := filler.Start(conf.Target); err != nil {
		observeFailure(shape, err)
		return result, err
	}
	result.SessionID = filler.SessionID().String()

	scheduler := host.Scheduler{
		Frame:   conf.Frame,
		Timeout: conf.Timeout,
		OnStep: func(r fill.Report) {
			observeStep(shape, r)
		},
	}
	err = scheduler.Run(ctx, filler, func(c fill.Completion) {
		observeCompletion(shape, c)
		result.apply(c)
	})
	if err != nil {
		observeFailure(shape, err)
		result.Particles = filler.Store().Len()
		return result, err
	}
	return result, nil
}

func (r *Result) apply(c fill.Completion) {
	m := c.Metrics
	r.SessionID = c.SessionID.String()
	r.Particles = len(c.Positions) / 3
	r.Steps = m.Steps
	r.Candidates = m.Candidates
	r.RayCasts = m.RayCasts
	r.AcceptanceRate = m.AcceptanceRate()
	r.MinBatchSize = m.MinBatchSize
	r.MaxBatchSize = m.MaxBatchSize
	r.IndexBuild = m.IndexBuild.Round(time.Microsecond).String()
	r.Elapsed = m.Elapsed.Round(time.Microsecond).String()
	r.Positions = c.Positions
}
