// Package fill scatters particles uniformly through the interior of a closed
// mesh. Work is split into steps so a frame loop can drive it, and the number
// of candidates per step adapts to a time budget.
package fill

import (
	"math"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/chazu/meshfill/pkg/clock"
	"github.com/chazu/meshfill/pkg/membership"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Classifier decides whether a point lies inside the mesh being filled.
type Classifier interface {
	Contains(p v3.Vec, c *membership.Counters) bool
	Bounds() sdf.Box3
}

// Report describes the outcome of a single step.
type Report struct {
	SessionID uuid.UUID
	State     State
	Generated int
	Accepted  int
	Total     int
	Target    int
	Elapsed   time.Duration

	// BatchSize is the number of candidates the next step will draw.
	BatchSize int

	// Completion is set on the step that reaches the target, and only then.
	Completion *Completion
}

// Completion is the result of a finished session.
type Completion struct {
	SessionID uuid.UUID
	Target    int
	Positions []float32
	Metrics   Metrics
}

// Filler runs fill sessions against a classifier. A Filler is not safe for
// concurrent use.
type Filler struct {
	classifier Classifier
	rand       Rand
	clock      clock.Clock

	minBudget     time.Duration
	maxBudget     time.Duration
	initialBatch  int
	minBatch      int
	maxBatch      int
	maxRejections int

	state     State
	sessionID uuid.UUID
	target    int
	batch     int
	rejected  int
	center    v3.Vec
	half      v3.Vec
	store     Store
	metrics   Metrics
}

// New returns an idle Filler sampling inside the bounds of c.
func New(c Classifier, opts ...Option) *Filler {
	f := &Filler{classifier: c}
	for _, opt := range opts {
		opt(f)
	}
	f.normalize()
	return f
}

// State returns the current lifecycle state.
func (f *Filler) State() State {
	return f.state
}

// SessionID returns the id of the current or last session.
func (f *Filler) SessionID() uuid.UUID {
	return f.sessionID
}

// Store returns the particles accepted so far.
func (f *Filler) Store() *Store {
	return &f.store
}

// Metrics returns a snapshot of the current session metrics.
func (f *Filler) Metrics() Metrics {
	return f.metrics
}

// Start begins a session that fills target particles. Particles from a
// previous session are discarded.
func (f *Filler) Start(target int) error {
	if f.state == Filling {
		return errors.New("a fill session is already in progress").
			WithType(ErrTypeSessionAlreadyActive).
			WithTag("session_id", f.sessionID).
			WithTag("target", f.target)
	}
	if target <= 0 {
		return errors.New("fill target must be positive").
			WithType(ErrTypeInvalidTarget).
			WithTag("target", target)
	}

	bounds := f.classifier.Bounds()
	f.center = bounds.Center()
	f.half = bounds.Size().MulScalar(0.5)

	f.store.Reset()
	f.sessionID = uuid.New()
	f.target = target
	f.batch = lo.Clamp(f.initialBatch, f.minBatch, f.maxBatch)
	f.rejected = 0
	f.metrics = Metrics{}
	if b, ok := f.classifier.(interface{ BuildTime() time.Duration }); ok {
		f.metrics.IndexBuild = b.BuildTime()
	}
	f.metrics.observeBatch(f.batch)
	f.state = Filling

	logs.WithTag("session_id", f.sessionID).
		WithTag("target", target).
		WithTag("batch", f.batch).
		Info("fill session started")
	return nil
}

// Abandon drops the current session and returns to idle.
func (f *Filler) Abandon() {
	if f.state == Filling {
		logs.WithTag("session_id", f.sessionID).
			WithTag("accepted", f.store.Len()).
			Info("fill session abandoned")
	}
	f.state = Idle
}

// Step draws up to one batch of candidates and keeps those inside the mesh.
func (f *Filler) Step() (Report, error) {
	if f.state != Filling {
		return Report{SessionID: f.sessionID, State: f.state}, errors.New("no fill session in progress").
			WithType(ErrTypeNoActiveSession).
			WithTag("state", f.state)
	}

	start := f.clock.Now()
	var generated, accepted int
	exhausted := false
	for generated < f.batch && f.store.Len() < f.target {
		p := f.candidate()
		generated++
		if f.classifier.Contains(p, &f.metrics.Counters) {
			f.store.Append(p)
			accepted++
			f.rejected = 0
			continue
		}
		f.rejected++
		if f.rejected >= f.maxRejections {
			exhausted = true
			break
		}
	}
	elapsed := f.clock.Now() - start

	f.metrics.Steps++
	f.metrics.Candidates += generated
	f.metrics.Accepted += accepted
	f.metrics.Elapsed += elapsed

	report := Report{
		SessionID: f.sessionID,
		Generated: generated,
		Accepted:  accepted,
		Total:     f.store.Len(),
		Target:    f.target,
		Elapsed:   elapsed,
	}

	if exhausted {
		f.state = Idle
		report.State = f.state
		report.BatchSize = f.batch
		logs.WithTag("session_id", f.sessionID).
			WithTag("accepted", f.store.Len()).
			WithTag("rejected", f.rejected).
			Warn("fill session gave up")
		return report, errors.New("too many consecutive candidates rejected").
			WithType(ErrTypeAttemptsExhausted).
			WithTag("session_id", f.sessionID).
			WithTag("rejected", f.rejected).
			WithTag("accepted", f.store.Len())
	}

	f.resize(elapsed)
	report.BatchSize = f.batch

	if f.store.Len() >= f.target {
		f.state = Complete
		report.Completion = &Completion{
			SessionID: f.sessionID,
			Target:    f.target,
			Positions: f.store.Positions(),
			Metrics:   f.metrics,
		}
		logs.WithTag("session_id", f.sessionID).
			WithTag("steps", f.metrics.Steps).
			WithTag("candidates", f.metrics.Candidates).
			WithTag("elapsed", f.metrics.Elapsed).
			Info("fill session complete")
	}
	report.State = f.state
	return report, nil
}

// candidate draws a point uniformly inside the sampling box, x then y then z.
func (f *Filler) candidate() v3.Vec {
	x := f.rand.Float64()
	y := f.rand.Float64()
	z := f.rand.Float64()
	return v3.Vec{
		X: f.center.X + (2*x-1)*f.half.X,
		Y: f.center.Y + (2*y-1)*f.half.Y,
		Z: f.center.Z + (2*z-1)*f.half.Z,
	}
}

// resize scales the batch so the next step takes about maxBudget.
func (f *Filler) resize(elapsed time.Duration) {
	if elapsed >= f.minBudget && elapsed <= f.maxBudget {
		return
	}
	elapsed = max(elapsed, time.Microsecond)
	scaled := float64(f.batch) * float64(f.maxBudget) / float64(elapsed)
	scaled = math.Min(scaled, float64(f.maxBatch))
	f.batch = lo.Clamp(int(scaled), f.minBatch, f.maxBatch)
	f.metrics.observeBatch(f.batch)
}
