// Package stats provides DrawStats, a system that times whole update steps
// and draw passes, logs a periodic summary and publishes the last one in the
// TickStats singleton.
//
// Every before phase of a pass runs ahead of every main phase, so the
// measured span always covers the main phases of all instances.
package stats

import (
	"time"

	"go.uber.org/zap"

	"github.com/plus3/tickloop/ecs"
)

const (
	SystemKind = "DrawStats"
	Kind       = "TickStats"
)

// Component holds the last logged summary, durations in milliseconds.
var Component = ecs.NewComponent(func() ecs.Attrs {
	return ecs.Attrs{
		"updates":       0,
		"draws":         0,
		"update_avg_ms": 0.0,
		"update_max_ms": 0.0,
		"draw_avg_ms":   0.0,
		"draw_max_ms":   0.0,
		"summaries":     0,
	}
})

// System measures with Now, or time.Now when Now is nil.
type System struct {
	ecs.BaseSystem
	Now func() time.Time
}

// Summary is the measurement window reported by the "summary" method.
type Summary struct {
	Updates   int
	Draws     int
	UpdateAvg time.Duration
	UpdateMax time.Duration
	DrawAvg   time.Duration
	DrawMax   time.Duration
	Simulated time.Duration
	Summaries int
}

type meter struct {
	began time.Time
	count int
	total time.Duration
	max   time.Duration
}

func (m *meter) begin(now time.Time) { m.began = now }

func (m *meter) end(now time.Time) {
	if m.began.IsZero() {
		return
	}
	d := now.Sub(m.began)
	m.began = time.Time{}
	m.count++
	m.total += d
	m.max = max(m.max, d)
}

func (m *meter) avg() time.Duration {
	if m.count == 0 {
		return 0
	}
	return m.total / time.Duration(m.count)
}

type window struct {
	update    meter
	draw      meter
	simulated float64
	summaries int
}

func (System) Configure(opts ecs.Config) ecs.Config {
	return ecs.ConfigureDefaults(ecs.Attrs{
		"update":   true,
		"draw":     true,
		"interval": 5.0,
	}, opts)
}

func (s System) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s System) Start(w *ecs.World, cfg ecs.Config, slot *ecs.Slot) error {
	*ecs.SlotState[window](slot) = window{}
	return nil
}

func (s System) Stop(w *ecs.World, cfg ecs.Config, slot *ecs.Slot) error {
	s.flush(w, cfg, ecs.SlotState[window](slot))
	return nil
}

func (s System) UpdateBefore(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	if cfg.Bool("update", true) {
		ecs.SlotState[window](slot).update.begin(s.now())
	}
	return nil
}

func (s System) UpdateAfter(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	win := ecs.SlotState[window](slot)
	if cfg.Bool("update", true) {
		win.update.end(s.now())
	}

	win.simulated += dt
	if interval := cfg.Float("interval", 5); interval > 0 && win.simulated >= interval {
		s.flush(w, cfg, win)
	}
	return nil
}

func (s System) DrawBefore(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	if cfg.Bool("draw", true) {
		ecs.SlotState[window](slot).draw.begin(s.now())
	}
	return nil
}

func (s System) DrawAfter(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	if cfg.Bool("draw", true) {
		ecs.SlotState[window](slot).draw.end(s.now())
	}
	return nil
}

// Summary returns the current, not yet logged, window.
func (s System) Summary(w *ecs.World, cfg ecs.Config, slot *ecs.Slot) Summary {
	win := ecs.SlotState[window](slot)
	return Summary{
		Updates:   win.update.count,
		Draws:     win.draw.count,
		UpdateAvg: win.update.avg(),
		UpdateMax: win.update.max,
		DrawAvg:   win.draw.avg(),
		DrawMax:   win.draw.max,
		Simulated: time.Duration(win.simulated * float64(time.Second)),
		Summaries: win.summaries,
	}
}

func (s System) flush(w *ecs.World, cfg ecs.Config, win *window) {
	if win.update.count == 0 && win.draw.count == 0 {
		return
	}
	w.Logger().Info("tick stats",
		zap.String("system", cfg.Name()),
		zap.Int("updates", win.update.count),
		zap.Duration("update_avg", win.update.avg()),
		zap.Duration("update_max", win.update.max),
		zap.Int("draws", win.draw.count),
		zap.Duration("draw_avg", win.draw.avg()),
		zap.Duration("draw_max", win.draw.max),
		zap.Float64("simulated_s", win.simulated),
	)

	if published, ok := ecs.NewSingleton(w, Kind).Get(); ok {
		published["updates"] = win.update.count
		published["draws"] = win.draw.count
		published["update_avg_ms"] = ms(win.update.avg())
		published["update_max_ms"] = ms(win.update.max)
		published["draw_avg_ms"] = ms(win.draw.avg())
		published["draw_max_ms"] = ms(win.draw.max)
		published["summaries"] = win.summaries + 1
	}
	*win = window{summaries: win.summaries + 1}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func Module() ecs.Module {
	return ecs.Module{
		Components: map[string]ecs.ComponentKind{Kind: Component},
		Systems:    map[string]ecs.SystemKind{SystemKind: System{}},
	}
}
