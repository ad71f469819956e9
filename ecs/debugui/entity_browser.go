package debugui

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/tickloop/ecs"
)

type EntityInfo struct {
	ID        ecs.EntityId
	Kinds     []string
	Signature string
	KindCount int
}

type EntityBrowserCache struct {
	entities      []EntityInfo
	fingerprint   storageFingerprint
	age           int
	sortColumn    int
	sortAscending bool
}

// storageFingerprint changes when entities or components are added or
// removed. Swaps that keep every count equal are caught by the periodic
// rebuild.
type storageFingerprint struct {
	kinds, entities, values int
}

func fingerprint(stats *ecs.StorageStats) storageFingerprint {
	return storageFingerprint{stats.KindCount, stats.TotalEntityCount, stats.TotalValueCount}
}

type EntityBrowser struct {
	cache      *EntityBrowserCache
	selected   ecs.EntityId
	filterText string
	filterKind string
	pageSize   int
	page       int
}

func NewEntityBrowser(pageSize int) *EntityBrowser {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &EntityBrowser{
		cache: &EntityBrowserCache{
			sortColumn:    0,
			sortAscending: true,
			fingerprint:   storageFingerprint{-1, -1, -1},
		},
		pageSize: pageSize,
	}
}

func (eb *EntityBrowser) Render(storage *ecs.Storage) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.Refresh(storage)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
		eb.filterKind = ""
	}
	if eb.filterKind != "" {
		imgui.Text(fmt.Sprintf("Kind: %s", eb.filterKind))
	}

	filtered := eb.Filtered()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity ID")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.SortBy(int(spec.ColumnIndex()), spec.SortDirection() == imgui.SortDirectionAscending)
			sortSpecs.SetSpecsDirty(false)
			filtered = eb.Filtered()
		}

		start := min(eb.page*eb.pageSize, len(filtered))
		end := min(start+eb.pageSize, len(filtered))

		for _, entity := range filtered[start:end] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := eb.selected == entity.ID
			if imgui.SelectableBoolV(fmt.Sprintf("%d", entity.ID), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selected = entity.ID
			}

			imgui.TableNextColumn()
			imgui.Text(entity.Signature)

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", entity.KindCount))
		}

		imgui.EndTable()
	}

	if len(filtered) > eb.pageSize {
		totalPages := (len(filtered) + eb.pageSize - 1) / eb.pageSize
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.page+1, totalPages, len(filtered)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.page > 0 {
			eb.page--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.page < totalPages-1 {
			eb.page++
		}
	} else {
		eb.page = 0
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filtered)))
	}

	imgui.End()
}

const rebuildEvery = 60

// Refresh rebuilds the entity list when the store changed shape, and every
// rebuildEvery calls regardless.
func (eb *EntityBrowser) Refresh(storage *ecs.Storage) {
	fp := fingerprint(storage.CollectStats())
	eb.cache.age++
	if eb.cache.entities != nil && eb.cache.fingerprint == fp && eb.cache.age < rebuildEvery {
		return
	}
	eb.cache.fingerprint = fp
	eb.cache.age = 0
	eb.rebuildCache(storage)
}

func (eb *EntityBrowser) rebuildCache(storage *ecs.Storage) {
	seen := map[ecs.EntityId]bool{}
	var ids []ecs.EntityId
	for _, kind := range storage.Kinds() {
		for _, id := range storage.Table(kind).Ids() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	eb.cache.entities = make([]EntityInfo, 0, len(ids))
	for _, id := range ids {
		kinds := storage.KindsOf(id)
		eb.cache.entities = append(eb.cache.entities, EntityInfo{
			ID:        id,
			Kinds:     kinds,
			Signature: strings.Join(kinds, ", "),
			KindCount: len(kinds),
		})
	}

	eb.sortEntities()
}

// SortBy orders the list by column: 0 id, 1 components, 2 component count.
func (eb *EntityBrowser) SortBy(column int, ascending bool) {
	eb.cache.sortColumn = column
	eb.cache.sortAscending = ascending
	eb.sortEntities()
}

func (eb *EntityBrowser) sortEntities() {
	sort.SliceStable(eb.cache.entities, func(i, j int) bool {
		a, b := eb.cache.entities[i], eb.cache.entities[j]
		var less bool

		switch eb.cache.sortColumn {
		case 1:
			less = a.Signature < b.Signature
		case 2:
			less = a.KindCount < b.KindCount
		default:
			less = a.ID < b.ID
		}

		if !eb.cache.sortAscending {
			return !less
		}
		return less
	})
}

// Filtered returns the cached entities matching the search text (id or
// component names) and the kind filter.
func (eb *EntityBrowser) Filtered() []EntityInfo {
	if eb.filterText == "" && eb.filterKind == "" {
		return eb.cache.entities
	}

	filtered := make([]EntityInfo, 0, len(eb.cache.entities))
	filterLower := strings.ToLower(eb.filterText)

	for _, entity := range eb.cache.entities {
		if eb.filterKind != "" && !slices.Contains(entity.Kinds, eb.filterKind) {
			continue
		}

		if eb.filterText != "" {
			idStr := fmt.Sprintf("%d", entity.ID)
			kindsStr := strings.ToLower(entity.Signature)

			if !strings.Contains(idStr, filterLower) && !strings.Contains(kindsStr, filterLower) {
				continue
			}
		}

		filtered = append(filtered, entity)
	}

	return filtered
}

func (eb *EntityBrowser) SetFilter(text string) {
	eb.filterText = text
	eb.page = 0
}

func (eb *EntityBrowser) SetKindFilter(kind string) {
	eb.filterKind = kind
	eb.page = 0
}

func (eb *EntityBrowser) Selected() ecs.EntityId {
	return eb.selected
}
