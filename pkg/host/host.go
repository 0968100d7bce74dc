// Package host drives a fill session from a frame loop and hands the result
// to a sink.
package host

import (
	"context"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/meshfill/pkg/fill"
)

// DefaultFrame is the frame interval of a 60Hz loop.
const DefaultFrame = 16 * time.Millisecond

const (
	ErrTypeTimeout  = "fill-timeout"
	ErrTypeCanceled = "fill-canceled"
)

// Stepper is the part of fill.Filler the scheduler drives.
type Stepper interface {
	Step() (fill.Report, error)
	Abandon()
}

// Sink receives the completion of a session.
type Sink func(fill.Completion)

// Scheduler calls Step once per frame until the session completes.
type Scheduler struct {
	// Frame is the interval between steps. Zero runs steps back to back.
	Frame time.Duration

	// Timeout bounds the whole run. Zero means no limit.
	Timeout time.Duration

	// OnStep, when set, is called with every step report.
	OnStep func(fill.Report)
}

// NewScheduler returns a scheduler stepping once per DefaultFrame.
func NewScheduler() Scheduler {
	return Scheduler{Frame: DefaultFrame}
}

// Run steps s until it completes, then calls sink exactly once. When ctx is
// done or the timeout expires first, the session is abandoned and the sink is
// never called.
func (s Scheduler) Run(ctx context.Context, stepper Stepper, sink Sink) error {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	var tick <-chan time.Time
	if s.Frame > 0 {
		ticker := time.NewTicker(s.Frame)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if err := ctx.Err(); err != nil {
			return s.interrupt(stepper, err)
		}

		report, err := stepper.Step()
		if err != nil {
			return err
		}
		if s.OnStep != nil {
			s.OnStep(report)
		}
		if report.Completion != nil {
			sink(*report.Completion)
			return nil
		}

		if tick == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return s.interrupt(stepper, ctx.Err())
		case <-tick:
		}
	}
}

func (s Scheduler) interrupt(stepper Stepper, err error) error {
	stepper.Abandon()
	if err == context.DeadlineExceeded {
		return errors.New("fill timed out").
			WithType(ErrTypeTimeout).
			WithTag("timeout", s.Timeout).
			Wrap(err)
	}
	return errors.New("fill canceled").
		WithType(ErrTypeCanceled).
		Wrap(err)
}
