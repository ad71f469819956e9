package debugui

import (
	"fmt"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/tickloop/ecs"
)

type KindInfo struct {
	Name  string
	Count int
}

type KindViewerCache struct {
	kinds         []KindInfo
	sortColumn    int
	sortAscending bool
}

// KindViewer lists component kinds with their value counts. Selecting a
// row filters the entity browser by that kind.
type KindViewer struct {
	cache    *KindViewerCache
	selected string
}

func NewKindViewer() *KindViewer {
	return &KindViewer{
		cache: &KindViewerCache{
			sortColumn:    1,
			sortAscending: false,
		},
	}
}

// Render draws the window and returns the kind clicked this frame, if any.
func (kv *KindViewer) Render(storage *ecs.Storage) string {
	if !imgui.BeginV("Component Kinds", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return ""
	}

	kv.Refresh(storage)

	maxCount := 0
	for _, k := range kv.cache.kinds {
		maxCount = max(maxCount, k.Count)
	}

	var clicked string

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("KindTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Kind")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			kv.SortBy(int(spec.ColumnIndex()), spec.SortDirection() == imgui.SortDirectionAscending)
			sortSpecs.SetSpecsDirty(false)
		}

		for _, k := range kv.cache.kinds {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			if imgui.SelectableBoolV(k.Name, kv.selected == k.Name, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				kv.selected = k.Name
				clicked = k.Name
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", k.Count))

			if maxCount > 0 {
				barWidth := float32(k.Count) / float32(maxCount) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}
		}

		imgui.EndTable()
	}

	imgui.End()
	return clicked
}

// Refresh reloads the counts from storage, keeping the current order.
func (kv *KindViewer) Refresh(storage *ecs.Storage) {
	stats := storage.CollectStats()
	kv.cache.kinds = kv.cache.kinds[:0]
	for _, k := range stats.Kinds {
		kv.cache.kinds = append(kv.cache.kinds, KindInfo{Name: k.Name, Count: k.Count})
	}
	kv.sortKinds()
}

// SortBy orders by column: 0 name, 1 count.
func (kv *KindViewer) SortBy(column int, ascending bool) {
	kv.cache.sortColumn = column
	kv.cache.sortAscending = ascending
	kv.sortKinds()
}

func (kv *KindViewer) sortKinds() {
	sort.SliceStable(kv.cache.kinds, func(i, j int) bool {
		a, b := kv.cache.kinds[i], kv.cache.kinds[j]
		var less bool

		switch kv.cache.sortColumn {
		case 0:
			less = a.Name < b.Name
		default:
			less = a.Count < b.Count
		}

		if !kv.cache.sortAscending {
			return !less
		}
		return less
	})
}

func (kv *KindViewer) Kinds() []KindInfo {
	return kv.cache.kinds
}
