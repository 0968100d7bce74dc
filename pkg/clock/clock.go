// Package clock provides the monotonic time source the filler budgets its
// steps with, plus a fake for deterministic tests.
package clock

import (
	"sync"
	"time"
)

// Clock returns the time elapsed since some fixed origin. Only differences
// between two readings are meaningful.
type Clock interface {
	Now() time.Duration
}

// System reads the process monotonic clock.
type System struct {
	origin time.Time
}

// NewSystem returns a System clock whose origin is the moment of the call.
func NewSystem() *System {
	return &System{origin: time.Now()}
}

// Now returns the monotonic time elapsed since the clock was created.
func (s *System) Now() time.Duration {
	return time.Since(s.origin)
}

// Fake is a clock that advances by Step on every reading, so two
// consecutive readings are always exactly Step apart. A nil Steps uses
// Step for every reading; otherwise readings advance through Steps in
// order and repeat the last value once exhausted.
type Fake struct {
	Step  time.Duration
	Steps []time.Duration

	mu      sync.Mutex
	now     time.Duration
	reading int
}

// Now returns the current fake time and advances it.
func (f *Fake) Now() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now
	step := f.Step
	if len(f.Steps) > 0 {
		i := f.reading
		if i >= len(f.Steps) {
			i = len(f.Steps) - 1
		}
		step = f.Steps[i]
	}
	f.reading++
	f.now += step
	return now
}

// Readings returns how many times Now was called.
func (f *Fake) Readings() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reading
}
