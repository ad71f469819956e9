// Package spawn manages entity lifetimes: ages entities with a ttl, destroys
// them on expiry or request, and optionally leaves a tombstone entity behind.
package spawn

import (
	"go.uber.org/zap"

	"github.com/plus3/tickloop/ecs"
)

const Kind = "Spawn"

// Tombstone builds the bag inserted when an entity is despawned.
type Tombstone func(spawn ecs.Attrs, id ecs.EntityId) ecs.Bag

// Component fields: ttl in seconds (nil or negative never expires), age,
// destroy, and tombstone, which may be an ecs.Bag, a decoded
// map[string]any of component bags, or a Tombstone.
var Component = ecs.NewComponent(func() ecs.Attrs {
	return ecs.Attrs{
		"ttl":       nil,
		"age":       0.0,
		"destroy":   false,
		"tombstone": nil,
		"spawned":   false,
	}
})

// System despawns through the world's command buffer, so removals land after
// the update pass and never disturb other systems mid-step.
type System struct {
	ecs.BaseSystem
}

type counts struct {
	spawned   int
	despawned int
}

func (System) Update(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	n := ecs.SlotState[counts](slot)
	cmd := w.Commands()
	debug := cfg.Bool("debug", false)

	for id, s := range w.Table(Kind).All() {
		if !s.Bool("spawned", false) {
			s["spawned"] = true
			n.spawned++
			if debug {
				w.Logger().Debug("spawned", zap.Uint64("entity", uint64(id)))
			}
		}

		if ttl := s.Float("ttl", -1); ttl >= 0 {
			age := s.Float("age", 0) + dt
			s["age"] = age
			if age >= ttl {
				s["destroy"] = true
			}
		}

		if !s.Bool("destroy", false) {
			continue
		}
		if bag, ok := tombstone(s, id); ok {
			cmd.Insert(bag)
		}
		cmd.Destroy(id)
		n.despawned++
		if debug {
			w.Logger().Debug("despawned", zap.Uint64("entity", uint64(id)), zap.Float64("age", s.Float("age", 0)))
		}
	}
	return nil
}

// Destroy flags id for despawn on the next update. It reports whether id has
// a Spawn component.
func (System) Destroy(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, id ecs.EntityId) bool {
	s, ok := w.Get(Kind, id)
	if ok {
		s["destroy"] = true
	}
	return ok
}

// Counts returns how many entities this instance has seen spawn and despawn
// since the scheduler started.
func (System) Counts(w *ecs.World, cfg ecs.Config, slot *ecs.Slot) map[string]int {
	n := ecs.SlotState[counts](slot)
	return map[string]int{"spawned": n.spawned, "despawned": n.despawned}
}

func tombstone(s ecs.Attrs, id ecs.EntityId) (ecs.Bag, bool) {
	switch t := s["tombstone"].(type) {
	case nil:
		return nil, false
	case Tombstone:
		return t(s, id), true
	case func(ecs.Attrs, ecs.EntityId) ecs.Bag:
		return t(s, id), true
	case ecs.Bag:
		return t, true
	case map[string]ecs.Attrs:
		return ecs.Bag(t), true
	case map[string]any:
		bag := make(ecs.Bag, len(t))
		for kind, v := range t {
			switch attrs := v.(type) {
			case ecs.Attrs:
				bag[kind] = attrs
			case map[string]any:
				bag[kind] = ecs.Attrs(attrs)
			case nil:
				bag[kind] = nil
			}
		}
		return bag, true
	}
	return nil, false
}

// Module installs the Spawn component and system.
func Module() ecs.Module {
	return ecs.Module{
		Components: map[string]ecs.ComponentKind{Kind: Component},
		Systems:    map[string]ecs.SystemKind{Kind: System{}},
	}
}
