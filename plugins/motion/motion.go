// Package motion integrates per-entity velocities into Position.
package motion

import (
	"math"

	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/plugins/position"
)

const Kind = "Motion"

// Component holds velocities in units per second: dx, dy and drotation in
// radians per second.
var Component = ecs.NewComponent(func() ecs.Attrs {
	return ecs.Attrs{"dx": 0.0, "dy": 0.0, "drotation": 0.0}
})

// System moves every entity that has both Motion and Position. Entities with
// Motion only are left alone.
type System struct {
	ecs.BaseSystem
}

func (System) Update(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	for _, c := range w.Query(Kind, position.Kind).Iter() {
		m, pos := c[0], c[1]

		pos["x"] = pos.Float("x", 0) + m.Float("dx", 0)*dt
		pos["y"] = pos.Float("y", 0) + m.Float("dy", 0)*dt

		if dr := m.Float("drotation", 0); dr != 0 {
			pos["rotation"] = normalize(pos.Float("rotation", 0) + dr*dt)
		}
	}
	return nil
}

// normalize wraps an angle into [0, 2π).
func normalize(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// Module installs the Motion component and system.
func Module() ecs.Module {
	return ecs.Module{
		Components: map[string]ecs.ComponentKind{Kind: Component},
		Systems:    map[string]ecs.SystemKind{Kind: System{}},
	}
}
