// Package debugui provides a Dear ImGui inspector for a running world. The
// Inspector system kind draws its windows during the draw pass, so the host
// must wrap draw passes in an ImGui frame (see package debugui/ebiten).
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/tickloop/ecs"
)

const (
	SystemKind = "DebugUI"
	ItemKind   = "ImguiItem"
)

// ImguiItem is a component holding a render function under "render". The
// inspector calls every item's render function once per draw pass.
var ImguiItem = ecs.NewComponent(func() ecs.Attrs {
	return ecs.Attrs{"render": nil}
})

// InputState reports whether ImGui is consuming mouse or keyboard input as
// of the last draw pass. Read it through CallSystem(SystemKind, "inputState").
type InputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// Inspector is the system kind drawing the debug windows.
type Inspector struct {
	ecs.BaseSystem
}

type windows struct {
	browser   *EntityBrowser
	inspector *ComponentInspector
	kinds     *KindViewer
	perf      *PerformanceStats
	query     *QueryDebugger
	systems   *SystemList
	input     InputState
}

func (Inspector) Configure(opts ecs.Config) ecs.Config {
	return ecs.ConfigureDefaults(ecs.Attrs{
		"page_size":      100,
		"history_frames": 120,
	}, opts)
}

func (Inspector) Start(w *ecs.World, cfg ecs.Config, slot *ecs.Slot) error {
	*ecs.SlotState[windows](slot) = newWindows(cfg)
	return nil
}

func newWindows(cfg ecs.Config) windows {
	return windows{
		browser:   NewEntityBrowser(cfg.Int("page_size", 100)),
		inspector: NewComponentInspector(),
		kinds:     NewKindViewer(),
		perf:      NewPerformanceStats(cfg.Int("history_frames", 120)),
		query:     NewQueryDebugger(),
		systems:   NewSystemList(),
	}
}

func (Inspector) state(cfg ecs.Config, slot *ecs.Slot) *windows {
	win := ecs.SlotState[windows](slot)
	if win.browser == nil {
		*win = newWindows(cfg)
	}
	return win
}

func (i Inspector) Draw(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	win := i.state(cfg, slot)

	io := imgui.CurrentIO()
	win.input = InputState{
		WantCaptureMouse:    io.WantCaptureMouse(),
		WantCaptureKeyboard: io.WantCaptureKeyboard(),
	}

	for _, item := range w.Table(ItemKind).All() {
		if render, ok := item["render"].(func()); ok {
			render()
		}
	}

	storage := w.Storage()
	win.browser.Render(storage)
	win.inspector.Render(storage, win.browser.Selected())
	if kind := win.kinds.Render(storage); kind != "" {
		win.browser.SetKindFilter(kind)
	}
	win.perf.Render(w, float32(dt))
	win.query.Render(w)
	win.systems.Render(w)
	return nil
}

// InputState returns the capture flags of the last draw pass.
func (i Inspector) InputState(w *ecs.World, cfg ecs.Config, slot *ecs.Slot) InputState {
	return i.state(cfg, slot).input
}

// Select points the entity browser and component inspector at id.
func (i Inspector) Select(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, id ecs.EntityId) {
	i.state(cfg, slot).browser.selected = id
}

func Module() ecs.Module {
	return ecs.Module{
		Components: map[string]ecs.ComponentKind{ItemKind: ImguiItem},
		Systems:    map[string]ecs.SystemKind{SystemKind: Inspector{}},
	}
}
