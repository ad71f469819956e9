package debugui

import (
	"fmt"
	"slices"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/tickloop/ecs"
)

const queryPreview = 20

type QueryDebugger struct {
	selected map[string]bool
}

func NewQueryDebugger() *QueryDebugger {
	return &QueryDebugger{selected: make(map[string]bool)}
}

func (qd *QueryDebugger) Render(w *ecs.World) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.Text("Select Component Kinds:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		qd.selected = make(map[string]bool)
	}

	for _, kind := range w.Storage().Kinds() {
		selected := qd.selected[kind]
		if imgui.Checkbox(kind, &selected) {
			qd.Toggle(kind, selected)
		}
	}

	imgui.Separator()

	kinds := qd.Kinds()
	if len(kinds) == 0 {
		imgui.Text("No component kinds selected")
		imgui.End()
		return
	}

	count, preview := qd.Run(w)
	imgui.Text(fmt.Sprintf("Matching Entities: %d", count))

	if imgui.TreeNodeStr("Entities") {
		for _, id := range preview {
			imgui.BulletText(fmt.Sprintf("%d", id))
		}
		if count > len(preview) {
			imgui.Text(fmt.Sprintf("... and %d more", count-len(preview)))
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (qd *QueryDebugger) Toggle(kind string, on bool) {
	if on {
		qd.selected[kind] = true
	} else {
		delete(qd.selected, kind)
	}
}

// Kinds returns the selected kinds, sorted.
func (qd *QueryDebugger) Kinds() []string {
	kinds := make([]string, 0, len(qd.selected))
	for kind := range qd.selected {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

// Run counts the entities holding every selected kind and returns up to
// queryPreview of their ids.
func (qd *QueryDebugger) Run(w *ecs.World) (int, []ecs.EntityId) {
	kinds := qd.Kinds()
	if len(kinds) == 0 {
		return 0, nil
	}

	count := 0
	var preview []ecs.EntityId
	for id := range w.Query(kinds...).Iter() {
		if len(preview) < queryPreview {
			preview = append(preview, id)
		}
		count++
	}
	return count, preview
}
