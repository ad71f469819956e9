// Package position provides the Position component and a system that keeps
// a uniform spatial grid of positioned entities for proximity searches.
package position

import (
	"fmt"
	"math"

	"github.com/kamstrup/intmap"

	"github.com/plus3/tickloop/ecs"
)

const Kind = "Position"

// Component is x, y and a rotation in radians. Collision reads an optional
// "width" as the entity's diameter.
var Component = ecs.NewComponent(func() ecs.Attrs {
	return ecs.Attrs{"x": 0.0, "y": 0.0, "rotation": 0.0}
})

// System rebuilds the grid at the start of every update step and answers
// "search" calls from other systems.
type System struct {
	ecs.BaseSystem
}

type grid struct {
	cellSize float64
	cells    *intmap.Map[int64, []ecs.EntityId]
}

func (System) Configure(opts ecs.Config) ecs.Config {
	return ecs.ConfigureDefaults(ecs.Attrs{"cell_size": 64.0}, opts)
}

func (s System) Start(w *ecs.World, cfg ecs.Config, slot *ecs.Slot) error {
	g, err := newGrid(cfg)
	if err != nil {
		return err
	}
	*ecs.SlotState[grid](slot) = *g
	return nil
}

func (s System) UpdateBefore(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	g, err := s.grid(cfg, slot)
	if err != nil {
		return err
	}
	g.cells.Clear()

	for id, pos := range w.Table(Kind).All() {
		key := g.key(g.cell(pos.Float("x", 0)), g.cell(pos.Float("y", 0)))
		ids, _ := g.cells.Get(key)
		g.cells.Put(key, append(ids, id))
	}
	return nil
}

// Search returns the entities in every grid cell touched by the square of
// half-size radius around (x, y), as of the last rebuild. Callers filter by
// exact distance.
func (s System) Search(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, x, y, radius float64) ([]ecs.EntityId, error) {
	g, err := s.grid(cfg, slot)
	if err != nil {
		return nil, err
	}
	radius = math.Abs(radius)
	x0, x1 := g.cell(x-radius), g.cell(x+radius)
	y0, y1 := g.cell(y-radius), g.cell(y+radius)

	var out []ecs.EntityId

	// Walk the occupied cells when the square covers more cells than that.
	if span := float64(x1-x0+1) * float64(y1-y0+1); span > float64(g.cells.Len()) {
		for key, ids := range g.cells.All() {
			cx, cy := int64(int32(key>>32)), int64(int32(uint32(key)))
			if cx >= x0 && cx <= x1 && cy >= y0 && cy <= y1 {
				out = append(out, ids...)
			}
		}
		return out, nil
	}

	for cx := x0; cx <= x1; cx++ {
		for cy := y0; cy <= y1; cy++ {
			ids, _ := g.cells.Get(g.key(cx, cy))
			out = append(out, ids...)
		}
	}
	return out, nil
}

// CellCount returns the number of occupied cells.
func (s System) CellCount(w *ecs.World, cfg ecs.Config, slot *ecs.Slot) (int, error) {
	g, err := s.grid(cfg, slot)
	if err != nil {
		return 0, err
	}
	return g.cells.Len(), nil
}

// grid returns the slot's grid, creating it when the system is used without
// Start having run.
func (System) grid(cfg ecs.Config, slot *ecs.Slot) (*grid, error) {
	g := ecs.SlotState[grid](slot)
	if g.cells == nil {
		fresh, err := newGrid(cfg)
		if err != nil {
			return nil, err
		}
		*g = *fresh
	}
	return g, nil
}

func newGrid(cfg ecs.Config) (*grid, error) {
	size := cfg.Float("cell_size", 64)
	if !(size > 0) || math.IsInf(size, 1) {
		return nil, fmt.Errorf("cell_size must be a positive number, got %v", cfg["cell_size"])
	}
	return &grid{
		cellSize: size,
		cells:    intmap.New[int64, []ecs.EntityId](256),
	}, nil
}

// cell maps a coordinate to its cell index, clamped to the int32 range the
// keys hold. NaN maps to cell 0.
func (g *grid) cell(v float64) int64 {
	c := math.Floor(v / g.cellSize)
	switch {
	case math.IsNaN(c):
		return 0
	case c <= math.MinInt32:
		return math.MinInt32
	case c >= math.MaxInt32:
		return math.MaxInt32
	}
	return int64(c)
}

func (g *grid) key(cx, cy int64) int64 {
	return cx<<32 | int64(uint32(cy))
}

// Module installs the Position component and system.
func Module() ecs.Module {
	return ecs.Module{
		Components: map[string]ecs.ComponentKind{Kind: Component},
		Systems:    map[string]ecs.SystemKind{Kind: System{}},
	}
}
