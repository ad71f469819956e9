package ecs

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// runtimeState is rebuilt on every Start.
type runtimeState struct {
	running bool
	paused  bool

	lastUpdate  time.Time
	accumulator time.Duration

	lastDraw   time.Time
	drawSeeded bool

	updateHandle Handle
	drawHandle   Handle

	slots   []*Slot
	lastErr error
}

// slot returns the slot for instance i, growing the slot list when the
// configuration list was extended after Start.
func (rt *runtimeState) slot(i int) *Slot {
	for len(rt.slots) <= i {
		rt.slots = append(rt.slots, &Slot{})
	}
	return rt.slots[i]
}

// Running reports whether the scheduler is started.
func (w *World) Running() bool {
	return w.rt.running
}

// Paused reports whether dispatch is suspended.
func (w *World) Paused() bool {
	return w.rt.paused
}

// LastError returns the failure that last stopped the scheduler from a loop
// tick, if any.
func (w *World) LastError() error {
	return w.rt.lastErr
}

// Start starts every configured instance in order and arms the update timer
// and draw callback. Calling Start while running does nothing.
//
// A failing Start hook under the stop policy rolls back the instances
// already started and returns the error.
func (w *World) Start() error {
	if w.rt.running {
		return nil
	}
	if w.opts.Host == nil {
		return ErrNoHost
	}

	w.rt = &runtimeState{
		running: true,
		slots:   make([]*Slot, len(w.entries)),
	}
	for i := range w.rt.slots {
		w.rt.slots[i] = &Slot{}
	}
	w.log.Debug("starting scheduler", zap.Int("systems", len(w.entries)))

	for i := range w.entries {
		cfg, kind, ok := w.lookup(i)
		if !ok {
			w.log.Warn("system kind not installed", zap.String("system", cfg.Name()), zap.Int("instance", i))
			continue
		}
		err := w.invoke(i, cfg, kind, PassLifecycle, PhaseStart, 0)
		if err == nil {
			continue
		}
		if w.opts.UpdatePolicy == PolicyStop {
			w.log.Error("system start failed, rolling back", zap.Error(err))
			w.rt.running = false
			return multierr.Append(err, w.stopInstances(i))
		}
		w.log.Error("system start failed", zap.Error(err))
	}

	now := w.opts.Host.Now()
	w.rt.lastUpdate = now
	w.armUpdate(w.rt)
	w.armDraw(w.rt)
	return nil
}

// Stop cancels the loops and stops every configured instance in order. It
// is safe to call when the scheduler is not running. Stop hook failures are
// contained and returned together.
func (w *World) Stop() error {
	rt := w.rt
	if !rt.running {
		return nil
	}
	rt.running = false

	if rt.updateHandle != nil {
		rt.updateHandle.Cancel()
		rt.updateHandle = nil
	}
	if rt.drawHandle != nil {
		rt.drawHandle.Cancel()
		rt.drawHandle = nil
	}

	w.log.Debug("stopping scheduler", zap.Int("systems", len(w.entries)))
	err := w.stopInstances(len(w.entries))
	rt.slots = nil
	return err
}

func (w *World) stopInstances(n int) error {
	var errs error
	for i := 0; i < n && i < len(w.entries); i++ {
		cfg, kind, ok := w.lookup(i)
		if !ok {
			continue
		}
		if err := w.invoke(i, cfg, kind, PassLifecycle, PhaseStop, 0); err != nil {
			w.log.Error("system stop failed", zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Restart stops and starts the scheduler, typically after installing new
// system code.
func (w *World) Restart() error {
	stopErr := w.Stop()
	return multierr.Append(stopErr, w.Start())
}

// Pause suspends update and draw dispatch. The loops keep ticking.
func (w *World) Pause() {
	w.rt.paused = true
}

// Resume re-enables dispatch after Pause.
func (w *World) Resume() {
	w.rt.paused = false
}

func (w *World) armUpdate(rt *runtimeState) {
	rt.updateHandle = w.opts.Host.AfterFunc(w.opts.Step, func() {
		if w.rt != rt || !rt.running {
			return
		}
		rt.updateHandle = nil
		if err := w.UpdateLoop(w.opts.Host.Now()); err != nil {
			w.report(err)
		}
		if w.rt == rt && rt.running {
			w.armUpdate(rt)
		}
	})
}

func (w *World) armDraw(rt *runtimeState) {
	rt.drawHandle = w.opts.Host.RequestFrame(func(ts time.Time) {
		if w.rt != rt || !rt.running {
			return
		}
		rt.drawHandle = nil
		if err := w.DrawLoop(ts); err != nil {
			w.report(err)
		}
		if w.rt == rt && rt.running {
			w.armDraw(rt)
		}
	})
}

func (w *World) report(err error) {
	w.rt.lastErr = err
	w.log.Error("scheduler halted", zap.Error(err))
	if w.opts.OnError != nil {
		w.opts.OnError(err)
	}
}

// UpdateLoop is the body of the fixed step update loop. It feeds the time
// elapsed since the previous call, clamped to MaxCatchUp steps, into the
// accumulator and runs one update step per whole Step accumulated. Time
// beyond the clamp is dropped. It does nothing unless the scheduler is
// running.
func (w *World) UpdateLoop(now time.Time) error {
	rt := w.rt
	if !rt.running {
		return nil
	}

	step := w.opts.Step
	delta := now.Sub(rt.lastUpdate)
	if limit := step * time.Duration(w.opts.MaxCatchUp); delta > limit {
		delta = limit
	}
	if delta < 0 {
		delta = 0
	}
	rt.lastUpdate = now

	if rt.paused {
		return nil
	}

	_, span := w.opts.Tracer.Start(context.Background(), "ecs.update_loop")
	defer span.End()

	rt.accumulator += delta
	steps := 0
	var err error
	for rt.accumulator >= step && rt.running {
		if err = w.Update(step.Seconds()); err != nil {
			break
		}
		rt.accumulator -= step
		steps++
	}

	span.SetAttributes(
		attribute.Int("steps", steps),
		attribute.Float64("delta_ms", float64(delta)/float64(time.Millisecond)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update halted")
	}
	return err
}

// DrawLoop is the body of the draw loop. It runs one draw pass with the time
// since the previous frame. The first frame after Start draws with a zero
// delta.
func (w *World) DrawLoop(ts time.Time) error {
	rt := w.rt
	if !rt.running {
		return nil
	}

	if !rt.drawSeeded {
		rt.lastDraw = ts
		rt.drawSeeded = true
	}
	delta := ts.Sub(rt.lastDraw)
	rt.lastDraw = ts

	if rt.paused {
		return nil
	}

	_, span := w.opts.Tracer.Start(context.Background(), "ecs.draw_loop")
	defer span.End()
	span.SetAttributes(attribute.Float64("delta_ms", float64(delta)/float64(time.Millisecond)))

	err := w.Draw(delta.Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "draw halted")
	}
	return err
}

// Update runs one update step with dt seconds: every instance's UpdateBefore,
// then every Update, then every UpdateAfter. Deferred commands are flushed
// afterwards.
func (w *World) Update(dt float64) error {
	err := w.runPass(PassUpdate, w.opts.UpdatePolicy, dt)
	w.stats.updateSteps++
	return err
}

// Draw runs one draw pass with dt seconds, in the same phase order as Update.
func (w *World) Draw(dt float64) error {
	err := w.runPass(PassDraw, w.opts.DrawPolicy, dt)
	w.stats.drawPasses++
	return err
}

func (w *World) runPass(pass Pass, policy Policy, dt float64) error {
	defer w.commands.Flush(w)

	for _, phase := range tickPhases {
		// the list may be replaced by a phase call
		for i := 0; i < len(w.entries); i++ {
			cfg, kind, ok := w.lookup(i)
			if !ok {
				continue
			}

			err := w.invoke(i, cfg, kind, pass, phase, dt)
			if err == nil {
				continue
			}

			if policy == PolicyStop {
				w.log.Error("system failed, stopping scheduler", zap.Error(err))
				return multierr.Append(err, w.Stop())
			}
			w.log.Error("system failed", zap.Error(err))
		}
	}
	return nil
}

// invoke runs one phase of one instance, converting panics into errors and
// recording timing.
func (w *World) invoke(i int, cfg Config, kind SystemKind, pass Pass, phase Phase, dt float64) error {
	fn := lookupPhase(kind, pass, phase)
	slot := w.rt.slot(i)

	start := time.Now()
	err := protect(func() error {
		return fn(w, cfg, slot, dt)
	})
	w.stats.record(i, time.Since(start), err != nil)

	if err == nil {
		return nil
	}
	return &PhaseError{
		Index:  i,
		System: cfg.Name(),
		Pass:   pass,
		Phase:  phase,
		Err:    err,
	}
}

// IsPhaseError reports whether err carries a *PhaseError and returns it.
func IsPhaseError(err error) (*PhaseError, bool) {
	var pe *PhaseError
	ok := errors.As(err, &pe)
	return pe, ok
}
