package ecs_test

import (
	"errors"
	"fmt"
	"time"

	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/ecs/clock"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Common test component kinds
var (
	positionKind = ecs.NewComponent(func() ecs.Attrs {
		return ecs.Attrs{"x": 0.0, "y": 0.0}
	})
	velocityKind = ecs.NewComponent(func() ecs.Attrs {
		return ecs.Attrs{"dx": 0.0, "dy": 0.0}
	})
	healthKind = ecs.NewComponent(func() ecs.Attrs {
		return ecs.Attrs{"current": 100, "max": 100}
	}).WithCreate(func(merged ecs.Attrs) ecs.Attrs {
		if merged.Int("current", 0) > merged.Int("max", 0) {
			merged["current"] = merged["max"]
		}
		return merged
	})
)

func testComponents() ecs.Module {
	return ecs.Module{
		Components: map[string]ecs.ComponentKind{
			"Position": positionKind,
			"Velocity": velocityKind,
			"Health":   healthKind,
		},
	}
}

var errBoom = errors.New("boom")

// recorder is a system kind that logs every call into a shared slice and can
// be told to fail or panic in a given phase.
type recorder struct {
	ecs.BaseSystem
	log     *[]string
	failIn  string
	panicIn string
}

func (r *recorder) Configure(opts ecs.Config) ecs.Config {
	return ecs.ConfigureDefaults(ecs.Attrs{"label": opts.Name(), "speed": 1}, opts)
}

func (r *recorder) note(cfg ecs.Config, call string) error {
	*r.log = append(*r.log, fmt.Sprintf("%s.%s", cfg.String("label", "?"), call))
	if call == r.panicIn {
		panic("recorder panic")
	}
	if call == r.failIn {
		return errBoom
	}
	return nil
}

func (r *recorder) Start(w *ecs.World, cfg ecs.Config, slot *ecs.Slot) error {
	ecs.SlotState[recorderState](slot).started = true
	return r.note(cfg, "start")
}

func (r *recorder) Stop(w *ecs.World, cfg ecs.Config, slot *ecs.Slot) error {
	return r.note(cfg, "stop")
}

func (r *recorder) UpdateBefore(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	return r.note(cfg, "updateBefore")
}

func (r *recorder) Update(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	st := ecs.SlotState[recorderState](slot)
	st.steps++
	st.elapsed += dt
	return r.note(cfg, "update")
}

func (r *recorder) UpdateAfter(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	return r.note(cfg, "updateAfter")
}

func (r *recorder) DrawBefore(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	return r.note(cfg, "drawBefore")
}

func (r *recorder) Draw(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	ecs.SlotState[recorderState](slot).drawDeltas = append(ecs.SlotState[recorderState](slot).drawDeltas, dt)
	return r.note(cfg, "draw")
}

func (r *recorder) DrawAfter(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	return r.note(cfg, "drawAfter")
}

// Foo is reached through CallSystem by name.
func (r *recorder) Foo(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, arg string) (string, error) {
	return cfg.String("label", "?") + ":" + arg, nil
}

// Scale exercises numeric argument conversion and variadic calls.
func (r *recorder) Scale(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, factor float64, values ...int) float64 {
	sum := 0.0
	for _, v := range values {
		sum += float64(v)
	}
	return sum * factor * cfg.Float("speed", 1)
}

type recorderState struct {
	started    bool
	steps      int
	elapsed    float64
	drawDeltas []float64
}

// newTestWorld builds a world on a manual clock with the recorder installed
// as kinds S1 and S2.
func newTestWorld(opts ecs.Options) (*ecs.World, *clock.Manual, *[]string, map[string]*recorder) {
	var log []string
	m := clock.NewManual(epoch)
	opts.Host = m
	w := ecs.NewWorld(opts)

	kinds := map[string]*recorder{
		"S1": {log: &log},
		"S2": {log: &log},
	}
	w.Install(testComponents(), ecs.Module{
		Systems: map[string]ecs.SystemKind{
			"S1": kinds["S1"],
			"S2": kinds["S2"],
		},
	})
	return w, m, &log, kinds
}
