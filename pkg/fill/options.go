package fill

import (
	"time"

	"cogentcore.org/core/base/randx"
	"github.com/chazu/meshfill/pkg/clock"
)

const (
	DefaultMinBudget     = 12 * time.Millisecond
	DefaultMaxBudget     = 16 * time.Millisecond
	DefaultInitialBatch  = 1000
	DefaultMinBatch      = 1
	DefaultMaxBatch      = 1 << 22
	DefaultMaxRejections = 1_000_000
)

// Rand is the uniform source candidates are drawn from.
type Rand interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// Option configures a Filler.
type Option func(*Filler)

// WithRand sets the random source.
func WithRand(r Rand) Option {
	return func(f *Filler) {
		f.rand = r
	}
}

// WithSeed uses a deterministic random source seeded with seed.
func WithSeed(seed int64) Option {
	return func(f *Filler) {
		f.rand = randx.NewSysRand(seed)
	}
}

// WithClock sets the clock steps are timed with.
func WithClock(c clock.Clock) Option {
	return func(f *Filler) {
		f.clock = c
	}
}

// WithBudget sets the per-step time window. The batch size is left alone
// while a step takes between min and max, and rescaled toward max otherwise.
func WithBudget(min, max time.Duration) Option {
	return func(f *Filler) {
		f.minBudget = min
		f.maxBudget = max
	}
}

// WithInitialBatch sets the batch size of the first step of every session.
func WithInitialBatch(n int) Option {
	return func(f *Filler) {
		f.initialBatch = n
	}
}

// WithBatchLimits bounds the adapted batch size.
func WithBatchLimits(min, max int) Option {
	return func(f *Filler) {
		f.minBatch = min
		f.maxBatch = max
	}
}

// WithMaxRejections sets how many candidates in a row may be rejected before
// the session is abandoned.
func WithMaxRejections(n int) Option {
	return func(f *Filler) {
		f.maxRejections = n
	}
}

func (f *Filler) normalize() {
	if f.rand == nil {
		f.rand = randx.NewGlobalRand()
	}
	if f.clock == nil {
		f.clock = clock.NewSystem()
	}
	if f.maxBudget <= 0 {
		f.maxBudget = DefaultMaxBudget
	}
	if f.minBudget <= 0 || f.minBudget > f.maxBudget {
		f.minBudget = f.maxBudget * 3 / 4
	}
	if f.minBatch <= 0 {
		f.minBatch = DefaultMinBatch
	}
	if f.maxBatch < f.minBatch {
		f.maxBatch = max(DefaultMaxBatch, f.minBatch)
	}
	if f.initialBatch <= 0 {
		f.initialBatch = DefaultInitialBatch
	}
	if f.maxRejections <= 0 {
		f.maxRejections = DefaultMaxRejections
	}
}
