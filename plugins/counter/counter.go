// Package counter is the smallest useful plugin: a Counter component that
// accumulates simulated time and a Play system that advances and shows it.
package counter

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/plus3/tickloop/ecs"
)

const (
	Kind       = "Counter"
	SystemKind = "Play"
)

var Component = ecs.NewComponent(func() ecs.Attrs {
	return ecs.Attrs{"count": 0.0, "factor": 1.0}
})

type System struct {
	ecs.BaseSystem
}

type play struct {
	label string
	lines []string
}

func (System) Start(w *ecs.World, cfg ecs.Config, slot *ecs.Slot) error {
	ecs.SlotState[play](slot).label = "count"
	return nil
}

func (System) Update(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	for _, c := range w.Table(Kind).All() {
		c["count"] = c.Float("count", 0) + dt*c.Float("factor", 1)
	}
	return nil
}

// Draw renders one line per counter. The lines are kept in the slot for Read
// and logged at debug level.
func (System) Draw(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	p := ecs.SlotState[play](slot)
	p.lines = p.lines[:0]

	for id, c := range w.Table(Kind).All() {
		line := fmt.Sprintf("* %s %d = %d %.1f", p.label, id,
			int64(math.Floor(c.Float("count", 0))), math.Floor(dt*10000)/10)
		p.lines = append(p.lines, line)
		w.Logger().Debug(line)
	}
	if len(p.lines) > 0 {
		w.Logger().Debug("counters drawn", zap.Int("count", len(p.lines)))
	}
	return nil
}

// Read returns the lines of the last draw.
func (System) Read(w *ecs.World, cfg ecs.Config, slot *ecs.Slot) []string {
	return append([]string(nil), ecs.SlotState[play](slot).lines...)
}

func Module() ecs.Module {
	return ecs.Module{
		Components: map[string]ecs.ComponentKind{Kind: Component},
		Systems:    map[string]ecs.SystemKind{SystemKind: System{}},
	}
}
