package main

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/chazu/meshfill/pkg/fill"
	"github.com/chazu/meshfill/pkg/geom"
	"github.com/chazu/meshfill/pkg/host"
	"github.com/chazu/meshfill/pkg/kernel/sdfx"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/segmentio/encoding/json"
)

// The meshfill version number. Set at build.
var version = "v0.1.0"

var _ = reflect.TypeOf(config{})

type config struct {
	Shape         string        `cli:""        env:"MESHFILL_SHAPE"          help:"Built-in shape to fill (cube|octahedron|sphere)."`
	Scene         string        `cli:""        env:"MESHFILL_SCENE"          help:"TOML scene file to fill instead of a built-in shape."`
	Size          float64       `cli:""        env:"MESHFILL_SIZE"           help:"Half extent of the built-in shape."`
	Target        int           `cli:""        env:"MESHFILL_TARGET"         help:"Number of particles to place."`
	Seed          int           `cli:""        env:"MESHFILL_SEED"           help:"Random seed. Zero picks one."`
	Axis          string        `cli:""        env:"MESHFILL_AXIS"           help:"Normal of the projection plane (x|y|z)."`
	Output        string        `cli:""        env:"MESHFILL_OUTPUT"         help:"File the particle positions are written to as JSON."`
	MetricsAddr   string        `cli:""        env:"MESHFILL_METRICS_ADDR"   help:"Listening address for Prometheus metrics. The process keeps serving until interrupted."`
	LogLevel      string        `cli:""        env:"MESHFILL_LOG_LEVEL"      help:"Log level (debug|info|warning|error)."`
	LogIndent     bool          `cli:""        env:"MESHFILL_LOG_INDENT"     help:"Indent logs."`
	Frame         time.Duration `cli:",hidden" env:"MESHFILL_FRAME"          help:"Interval between fill steps. Zero runs them back to back."`
	Timeout       time.Duration `cli:",hidden" env:"MESHFILL_TIMEOUT"        help:"Maximum duration of the fill."`
	MinBudget     time.Duration `cli:",hidden" env:"MESHFILL_MIN_BUDGET"     help:"Step duration under which the batch grows."`
	MaxBudget     time.Duration `cli:",hidden" env:"MESHFILL_MAX_BUDGET"     help:"Step duration over which the batch shrinks."`
	InitialBatch  int           `cli:",hidden" env:"MESHFILL_INITIAL_BATCH"  help:"Candidates drawn by the first step."`
	MaxRejections int           `cli:",hidden" env:"MESHFILL_MAX_REJECTIONS" help:"Consecutive rejections after which the fill gives up."`
	MeshCells     int           `cli:",hidden" env:"MESHFILL_MESH_CELLS"     help:"Marching cubes resolution for generated solids."`
	Version       bool          `cli:""        env:"-"                       help:"Show version."`
	Help          bool          `cli:""        env:"-"                       help:"Show help."`
}

func defaultConfig() config {
	return config{
		Shape:         ShapeOctahedron,
		Size:          10,
		Target:        10000,
		Axis:          "z",
		LogLevel:      logs.InfoLevel.String(),
		Frame:         host.DefaultFrame,
		Timeout:       time.Minute,
		MinBudget:     fill.DefaultMinBudget,
		MaxBudget:     fill.DefaultMaxBudget,
		InitialBatch:  fill.DefaultInitialBatch,
		MaxRejections: fill.DefaultMaxRejections,
		MeshCells:     sdfx.DefaultMeshCells,
	}
}

func main() {
	conf := defaultConfig()

	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Fills a closed mesh with uniformly scattered particles.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	if conf.MetricsAddr != "" {
		serveMetrics(ctx, conf.MetricsAddr)
	}

	logs.WithTag("version", version).
		WithTag("shape", conf.shapeLabel()).
		WithTag("target", conf.Target).
		WithTag("seed", conf.Seed).
		Info("starting meshfill")

	result, err := NewApp(conf.MeshCells).Fill(ctx, conf)
	if err != nil {
		logs.Fatal(errors.New("fill failed").
			WithType(errors.Type(err)).
			WithTag("particles", result.Particles).
			Wrap(err))
	}

	if conf.Output != "" {
		if err := writePositions(conf.Output, result.Positions); err != nil {
			logs.Fatal(err)
		}
	}

	summary, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logs.Fatal(errors.New("encoding summary failed").Wrap(err))
	}
	fmt.Println(string(summary))

	if conf.MetricsAddr != "" {
		<-ctx.Done()
	}
}

func validateConfig(conf config) error {
	if conf.Target <= 0 {
		return errors.New("target must be positive").
			WithType(ErrTypeInvalidConfig).
			WithTag("target", conf.Target)
	}
	if conf.Scene == "" && conf.Size <= 0 {
		return errors.New("size must be positive").
			WithType(ErrTypeInvalidConfig).
			WithTag("size", conf.Size)
	}
	if conf.MinBudget > conf.MaxBudget {
		return errors.New("min budget exceeds max budget").
			WithType(ErrTypeInvalidConfig).
			WithTag("min_budget", conf.MinBudget).
			WithTag("max_budget", conf.MaxBudget)
	}
	if _, err := conf.plane(); err != nil {
		return err
	}
	return nil
}

func (c config) shapeLabel() string {
	if c.Scene != "" {
		return ShapeScene
	}
	return c.Shape
}

func (c config) plane() (geom.Plane, error) {
	switch c.Axis {
	case "x":
		return geom.Plane{Normal: v3.Vec{X: 1}}, nil
	case "y":
		return geom.Plane{Normal: v3.Vec{Y: 1}}, nil
	case "z", "":
		return geom.DefaultPlane, nil
	default:
		return geom.Plane{}, errors.New("unknown projection axis").
			WithType(ErrTypeInvalidConfig).
			WithTag("axis", c.Axis)
	}
}

func (c config) fillOptions() []fill.Option {
	opts := []fill.Option{
		fill.WithBudget(c.MinBudget, c.MaxBudget),
		fill.WithInitialBatch(c.InitialBatch),
		fill.WithMaxRejections(c.MaxRejections),
	}
	if c.Seed != 0 {
		opts = append(opts, fill.WithSeed(int64(c.Seed)))
	}
	return opts
}

func writePositions(path string, positions []float32) error {
	data, err := json.Marshal(positions)
	if err != nil {
		return errors.New("encoding positions failed").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("writing positions failed").
			WithTag("path", path).
			Wrap(err)
	}
	return nil
}
