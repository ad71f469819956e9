package ecs_test

import (
	"errors"
	"fmt"
	"time"

	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/ecs/clock"
)

// MoveSystem integrates Transform by Speed every update step. Entities
// without a Transform are skipped.
type MoveSystem struct {
	ecs.BaseSystem
}

func (MoveSystem) Update(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	for id, speed := range w.Table("Speed").All() {
		tr, ok := w.Get("Transform", id)
		if !ok {
			continue
		}
		tr["x"] = tr.Float("x", 0) + speed.Float("dx", 0)*dt
		tr["y"] = tr.Float("y", 0) + speed.Float("dy", 0)*dt
	}
	return nil
}

// RegenSystem heals Hitpoints at a configurable rate.
type RegenSystem struct {
	ecs.BaseSystem
}

func (RegenSystem) Configure(opts ecs.Config) ecs.Config {
	return ecs.ConfigureDefaults(ecs.Attrs{"rate": 1.0}, opts)
}

func (RegenSystem) Update(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	rate := cfg.Float("rate", 0)
	for _, hp := range w.Table("Hitpoints").All() {
		hp["current"] = min(hp.Float("current", 0)+rate*dt, hp.Float("max", 0))
	}
	return nil
}

// Rate is exposed to other systems through CallSystem.
func (RegenSystem) Rate(w *ecs.World, cfg ecs.Config, slot *ecs.Slot) float64 {
	return cfg.Float("rate", 0)
}

// ExampleWorld demonstrates a world driven by a host clock. Start arms a
// fixed step update timer; every Step of host time runs one update step over
// every configured system instance in order.
func ExampleWorld() {
	host := clock.NewManual(time.Unix(0, 0))
	w := ecs.NewWorld(ecs.Options{Host: host, Step: 100 * time.Millisecond})

	w.Install(ecs.Module{
		Components: map[string]ecs.ComponentKind{
			"Transform": ecs.NewComponent(func() ecs.Attrs { return ecs.Attrs{"x": 0.0, "y": 0.0} }),
			"Speed":     ecs.NewComponent(func() ecs.Attrs { return ecs.Attrs{"dx": 0.0, "dy": 0.0} }),
			"Hitpoints": ecs.NewComponent(func() ecs.Attrs { return ecs.Attrs{"current": 100.0, "max": 100.0} }),
		},
		Systems: map[string]ecs.SystemKind{
			"Move":  MoveSystem{},
			"Regen": RegenSystem{},
		},
	})
	w.Configure(ecs.Use("Move"), ecs.UseWith("Regen", ecs.Attrs{"rate": 10.0}))

	ship := w.InsertOne(ecs.Bag{
		"Transform": {},
		"Speed":     {"dx": 10.0, "dy": 5.0},
		"Hitpoints": {"current": 80.0},
	})

	if err := w.Start(); err != nil {
		panic(err)
	}
	defer w.Stop()

	host.Advance(time.Second)

	tr, _ := w.Get("Transform", ship)
	hp, _ := w.Get("Hitpoints", ship)
	fmt.Printf("Ship at (%.0f, %.0f)\n", tr.Float("x", 0), tr.Float("y", 0))
	fmt.Printf("Ship hitpoints: %.0f/%.0f\n", hp.Float("current", 0), hp.Float("max", 0))
	fmt.Printf("Update steps: %d\n", w.Stats().UpdateSteps)

	// Output:
	// Ship at (10, 5)
	// Ship hitpoints: 90/100
	// Update steps: 10
}

// ExampleWorld_CallSystem shows one system asking another for a capability
// by name, without a reference to its implementation.
func ExampleWorld_CallSystem() {
	w := ecs.NewWorld(ecs.Options{})
	w.Install(ecs.Module{
		Systems: map[string]ecs.SystemKind{"Regen": RegenSystem{}},
	})
	w.Configure(ecs.UseWith("Regen", ecs.Attrs{"rate": 4.0, "instance": "fast-regen"}))

	rate, err := w.CallSystem("fast-regen", "rate")
	fmt.Println("rate:", rate, err)

	_, err = w.CallSystem("fast-regen", "boost")
	fmt.Println(errors.Is(err, ecs.ErrUnknownMethod))

	// Output:
	// rate: 4 <nil>
	// true
}

// ExampleWorld_Pause shows that a paused world keeps its timers armed but
// skips dispatch.
func ExampleWorld_Pause() {
	host := clock.NewManual(time.Unix(0, 0))
	w := ecs.NewWorld(ecs.Options{Host: host})
	w.Install(ecs.Module{Systems: map[string]ecs.SystemKind{"Move": MoveSystem{}}})
	w.Configure(ecs.Use("Move"))
	_ = w.Start()

	w.Pause()
	host.Advance(time.Second)
	fmt.Println("paused steps:", w.Stats().UpdateSteps)

	w.Resume()
	host.Advance(time.Second)
	fmt.Println("resumed steps:", w.Stats().UpdateSteps)

	_ = w.Stop()
	fmt.Println("running:", w.Running())

	// Output:
	// paused steps: 0
	// resumed steps: 60
	// running: false
}
