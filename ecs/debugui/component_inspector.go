package debugui

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/tickloop/ecs"
)

type ComponentInspector struct {
	selected ecs.EntityId
}

func NewComponentInspector() *ComponentInspector {
	return &ComponentInspector{}
}

func (ci *ComponentInspector) Render(storage *ecs.Storage, selected ecs.EntityId) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ci.selected = selected

	if ci.selected == 0 {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	kinds := storage.KindsOf(ci.selected)
	if len(kinds) == 0 {
		imgui.Text(fmt.Sprintf("Entity %d not found", ci.selected))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity ID: %d", ci.selected))
	imgui.Separator()

	for _, kind := range kinds {
		attrs, ok := storage.Get(kind, ci.selected)
		if !ok {
			continue
		}

		if imgui.TreeNodeStr(kind) {
			ci.renderAttrs(kind, attrs)
			imgui.TreePop()
		}
	}

	imgui.End()
}

func (ci *ComponentInspector) renderAttrs(path string, attrs ecs.Attrs) {
	for _, key := range Fields(attrs) {
		ci.renderField(path+"."+key, key, attrs)
	}
}

// renderField draws one attribute. Edits are written straight back into the
// stored bag, keeping the value's Go type.
func (ci *ComponentInspector) renderField(id, name string, attrs ecs.Attrs) {
	label := "##" + id

	switch v := attrs[name].(type) {
	case nil:
		imgui.Text(fmt.Sprintf("%s: nil", name))

	case float64:
		f := float32(v)
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(label, &f) {
			attrs[name] = float64(f)
		}

	case int:
		n := int32(v)
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(label, &n) {
			attrs[name] = int(n)
		}

	case bool:
		if imgui.Checkbox(name, &v) {
			attrs[name] = v
		}

	case string:
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(label, "", &v, imgui.InputTextFlagsNone, nil) {
			attrs[name] = v
		}

	case ecs.Attrs:
		if imgui.TreeNodeStr(name) {
			ci.renderAttrs(id, v)
			imgui.TreePop()
		}

	case map[string]any:
		if imgui.TreeNodeStr(name) {
			ci.renderAttrs(id, ecs.Attrs(v))
			imgui.TreePop()
		}

	default:
		imgui.Text(fmt.Sprintf("%s: %s", name, Summarize(v)))
	}
}

// Fields returns the keys of attrs in display order.
func Fields(attrs ecs.Attrs) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Summarize renders values the inspector cannot edit.
func Summarize(v any) string {
	val := reflect.ValueOf(v)
	switch val.Kind() {
	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("[%d items]", val.Len())
	case reflect.Map:
		return fmt.Sprintf("map[%d items]", val.Len())
	case reflect.Func:
		return "func"
	}
	return fmt.Sprintf("%v", v)
}
