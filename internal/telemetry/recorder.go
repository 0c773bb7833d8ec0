// Package telemetry provides optional structured diagnostics for the
// scheduling engine's propagation loop: which propagator ran, whether it
// pushed a bound, and what conflict (if any) it reported. Built on
// joeycumines/logiface with its stumpy JSON backend.
package telemetry

import (
	"io"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Recorder wraps a *logiface.Logger[*stumpy.Event] behind a small nil-safe
// API: every method is a no-op on a nil *Recorder, so the engine's
// propagators can log unconditionally without the caller ever being forced
// to configure logging.
type Recorder struct {
	logger *logiface.Logger[*stumpy.Event]
}

// New builds a Recorder writing JSON lines to w at the given level. A nil
// writer is equivalent to calling NewDisabled.
func New(w io.Writer, level logiface.Level) *Recorder {
	if w == nil {
		return nil
	}
	logger := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		logiface.WithLevel[*stumpy.Event](level),
	)
	return &Recorder{logger: logger}
}

// NewDisabled returns a Recorder whose every call is a no-op, for callers
// that want telemetry wired in code but silent by default.
func NewDisabled() *Recorder { return nil }

// PropagatorRun logs one Propagate() call's outcome: the propagator's name,
// whether it pushed a bound, and the conflict message if propagation
// failed. Safe to call on a nil Recorder.
func (r *Recorder) PropagatorRun(name string, pushed bool, conflict error) {
	if r == nil || r.logger == nil {
		return
	}
	if conflict != nil {
		r.logger.Err().
			Str(`propagator`, name).
			Bool(`pushed`, pushed).
			Err(conflict).
			Log(`propagation conflict`)
		return
	}
	r.logger.Debug().
		Str(`propagator`, name).
		Bool(`pushed`, pushed).
		Log(`propagate`)
}

// FixedPointRound logs one round of Watcher.RunToFixedPoint: how many
// propagators ran and whether any pushed a bound (another round follows
// only if so). Safe to call on a nil Recorder.
func (r *Recorder) FixedPointRound(ran int, anyPushed bool) {
	if r == nil || r.logger == nil {
		return
	}
	r.logger.Debug().
		Int(`ran`, ran).
		Bool(`any_pushed`, anyPushed).
		Log(`fixed-point round`)
}
