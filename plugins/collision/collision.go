// Package collision flags overlapping circles among Collidable entities.
// Candidate pairs come from the position system's grid through CallSystem, so
// collision never imports the grid itself.
package collision

import (
	"fmt"

	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/plugins/position"
)

const Kind = "Collidable"

// SystemKind is the name the Collision system is installed under.
const SystemKind = "Collision"

// Component records the result of the last update: in_collision and the set
// of entity ids this one overlaps, keyed in in_collision_with.
var Component = ecs.NewComponent(func() ecs.Attrs {
	return ecs.Attrs{"in_collision": false, "in_collision_with": map[ecs.EntityId]bool{}}
}).WithCreate(func(merged ecs.Attrs) ecs.Attrs {
	// decoded scenes carry a generic map here
	if _, ok := merged["in_collision_with"].(map[ecs.EntityId]bool); !ok {
		merged["in_collision_with"] = map[ecs.EntityId]bool{}
	}
	return merged
})

// System resets every Collidable and then marks each overlapping pair. An
// entity's circle has diameter Position "width"; entities without Position
// never collide.
type System struct {
	ecs.BaseSystem
}

func (System) Configure(opts ecs.Config) ecs.Config {
	return ecs.ConfigureDefaults(ecs.Attrs{
		"position_system": position.Kind,
		"reach":           64.0,
	}, opts)
}

func (System) Update(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	for _, c := range w.Table(Kind).All() {
		c["in_collision"] = false
		clear(with(c))
	}

	positions := cfg.String("position_system", position.Kind)
	reach := cfg.Float("reach", 64)

	for a, c := range w.Query(Kind, position.Kind).Iter() {
		aPos := c[1]
		found, err := w.CallSystem(positions, "search", aPos.Float("x", 0), aPos.Float("y", 0), reach)
		if err != nil {
			return fmt.Errorf("search %s: %w", positions, err)
		}
		candidates, _ := found.([]ecs.EntityId)

		for _, b := range candidates {
			if a == b {
				continue
			}
			check(w, a, aPos, b)
		}
	}
	return nil
}

// Colliding returns the ids overlapping id as of the last update.
func (System) Colliding(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, id ecs.EntityId) []ecs.EntityId {
	c, ok := w.Get(Kind, id)
	if !ok {
		return nil
	}
	var out []ecs.EntityId
	for other := range with(c) {
		out = append(out, other)
	}
	return out
}

func check(w *ecs.World, a ecs.EntityId, aPos ecs.Attrs, b ecs.EntityId) {
	aCol, ok := w.Get(Kind, a)
	if !ok {
		return
	}
	bCol, ok := w.Get(Kind, b)
	if !ok {
		return
	}
	bPos, ok := w.Get(position.Kind, b)
	if !ok {
		return
	}

	dx := aPos.Float("x", 0) - bPos.Float("x", 0)
	dy := aPos.Float("y", 0) - bPos.Float("y", 0)
	radii := (aPos.Float("width", 0) + bPos.Float("width", 0)) / 2
	if dx*dx+dy*dy > radii*radii {
		return
	}

	aCol["in_collision"] = true
	with(aCol)[b] = true
	bCol["in_collision"] = true
	with(bCol)[a] = true
}

func with(c ecs.Attrs) map[ecs.EntityId]bool {
	set, ok := c["in_collision_with"].(map[ecs.EntityId]bool)
	if !ok {
		set = map[ecs.EntityId]bool{}
		c["in_collision_with"] = set
	}
	return set
}

// Module installs the Collidable component and the Collision system.
func Module() ecs.Module {
	return ecs.Module{
		Components: map[string]ecs.ComponentKind{Kind: Component},
		Systems:    map[string]ecs.SystemKind{SystemKind: System{}},
	}
}
