package main

import (
	"fmt"
	"math/rand"

	"github.com/plus3/tickloop/ecs"
)

func kindName(i int) string {
	return fmt.Sprintf("C%03d", i)
}

// syntheticModule installs n component kinds, each a small numeric bag, and
// the Churn system kind.
func syntheticModule(n int) ecs.Module {
	mod := ecs.Module{
		Components: make(map[string]ecs.ComponentKind, n),
		Systems:    map[string]ecs.SystemKind{"Churn": churnSystem{}},
	}
	for i := range n {
		mod.Components[kindName(i)] = ecs.NewComponent(func() ecs.Attrs {
			return ecs.Attrs{"value": 0.0, "rate": 1.0}
		})
	}
	return mod
}

// syntheticSpecs configures systems Churn instances, each walking a pair of
// kinds. Every instance is addressed by its "instance" alias.
func syntheticSpecs(systems, kinds int, churn float64) []ecs.SystemSpec {
	specs := make([]ecs.SystemSpec, systems)
	for i := range systems {
		specs[i] = ecs.UseWith("Churn", ecs.Attrs{
			"instance": fmt.Sprintf("S%03d", i),
			"primary":  kindName(i % kinds),
			"partner":  kindName((i*7 + 1) % kinds),
			"churn":    churn,
			"kinds":    kinds,
		})
	}
	return specs
}

func randomBag(kinds, n int) ecs.Bag {
	bag := make(ecs.Bag, n)
	for range n {
		bag[kindName(rand.Intn(kinds))] = ecs.Attrs{"rate": rand.Float64()}
	}
	return bag
}

type churnSystem struct {
	ecs.BaseSystem
}

func (churnSystem) Configure(opts ecs.Config) ecs.Config {
	return ecs.ConfigureDefaults(ecs.Attrs{"churn": 0.0, "kinds": 1}, opts)
}

// Update advances every primary value, mirrors it into the partner kind when
// the entity has both, and replaces a fraction of the primary's entities
// through the command buffer.
func (churnSystem) Update(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	primary := cfg.String("primary", kindName(0))
	partner := cfg.String("partner", kindName(0))
	churn := cfg.Float("churn", 0)
	kinds := cfg.Int("kinds", 1)

	for id, c := range w.Query(primary, partner+"?").Iter() {
		v := c[0].Float("value", 0) + c[0].Float("rate", 1)*dt
		c[0]["value"] = v
		if c[1] != nil {
			c[1]["value"] = v
		}

		if churn > 0 && rand.Float64() < churn {
			w.Commands().Destroy(id)
			w.Commands().Insert(randomBag(kinds, rand.Intn(5)+1))
		}
	}
	return nil
}
