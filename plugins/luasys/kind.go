package luasys

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/plus3/tickloop/ecs"
)

// Kind is a system kind backed by a script table. It implements ecs.Caller,
// so every function field of the script is a CallSystem method.
type Kind struct {
	name       string
	engine     *Engine
	script     *lua.LTable
	defaults   ecs.Attrs
	components map[string]ecs.ComponentKind
}

var (
	_ ecs.SystemKind = (*Kind)(nil)
	_ ecs.Caller     = (*Kind)(nil)
)

func newKind(e *Engine, name string, script *lua.LTable) (*Kind, error) {
	k := &Kind{
		name:       name,
		engine:     e,
		script:     script,
		defaults:   ecs.Attrs{},
		components: map[string]ecs.ComponentKind{},
	}

	switch d := script.RawGetString("defaults").(type) {
	case *lua.LNilType:
	case *lua.LTable:
		k.defaults = ecs.Attrs(tableMap(d))
	default:
		return nil, fmt.Errorf("script %s: defaults is a %s, want table", name, d.Type())
	}

	switch c := script.RawGetString("components").(type) {
	case *lua.LNilType:
	case *lua.LTable:
		var err error
		c.ForEach(func(key, value lua.LValue) {
			t, ok := value.(*lua.LTable)
			if !ok {
				err = fmt.Errorf("script %s: component %s is a %s, want table", name, key, value.Type())
				return
			}
			defaults := ecs.Attrs(tableMap(t))
			k.components[key.String()] = ecs.NewComponent(func() ecs.Attrs { return defaults })
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("script %s: components is a %s, want table", name, c.Type())
	}

	return k, nil
}

// Name is the kind's registry name.
func (k *Kind) Name() string {
	return k.name
}

// Module returns the kind and the component kinds its script declares.
func (k *Kind) Module() ecs.Module {
	return ecs.Module{
		Systems:    map[string]ecs.SystemKind{k.name: k},
		Components: k.components,
	}
}

func (k *Kind) Configure(opts ecs.Config) ecs.Config {
	return ecs.ConfigureDefaults(k.defaults, opts)
}

// slotTable is the Lua table a script sees as its slot.
type slotTable struct {
	table *lua.LTable
}

func (k *Kind) slot(slot *ecs.Slot) *lua.LTable {
	s := ecs.SlotState[slotTable](slot)
	if s.table == nil {
		s.table = k.engine.vm.NewTable()
	}
	return s.table
}

func (k *Kind) fn(field string) *lua.LFunction {
	fn, _ := k.script.RawGetString(field).(*lua.LFunction)
	return fn
}

func (k *Kind) lifecycle(field string, w *ecs.World, cfg ecs.Config, slot *ecs.Slot) error {
	fn := k.fn(field)
	if fn == nil {
		return nil
	}
	e := k.engine
	_, err := e.call(fn, 0, e.worldValue(w), e.toLua(cfg), k.slot(slot))
	return err
}

func (k *Kind) phase(field string, w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	fn := k.fn(field)
	if fn == nil {
		return nil
	}
	e := k.engine
	_, err := e.call(fn, 0, e.worldValue(w), e.toLua(cfg), k.slot(slot), lua.LNumber(dt))
	return err
}

func (k *Kind) Start(w *ecs.World, cfg ecs.Config, slot *ecs.Slot) error {
	return k.lifecycle("start", w, cfg, slot)
}

func (k *Kind) Stop(w *ecs.World, cfg ecs.Config, slot *ecs.Slot) error {
	return k.lifecycle("stop", w, cfg, slot)
}

func (k *Kind) UpdateBefore(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	return k.phase("update_before", w, cfg, slot, dt)
}

func (k *Kind) Update(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	return k.phase("update", w, cfg, slot, dt)
}

func (k *Kind) UpdateAfter(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	return k.phase("update_after", w, cfg, slot, dt)
}

func (k *Kind) DrawBefore(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	return k.phase("draw_before", w, cfg, slot, dt)
}

func (k *Kind) Draw(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	return k.phase("draw", w, cfg, slot, dt)
}

func (k *Kind) DrawAfter(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	return k.phase("draw_after", w, cfg, slot, dt)
}

// Call runs the script function named method with the world, the instance
// configuration, the slot table and args, returning its first result.
func (k *Kind) Call(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, method string, args ...any) (any, error) {
	fn := k.fn(method)
	if fn == nil {
		return nil, fmt.Errorf("%w: %s has no method %q", ecs.ErrUnknownMethod, k.name, method)
	}

	e := k.engine
	in := make([]lua.LValue, 0, len(args)+3)
	in = append(in, e.worldValue(w), e.toLua(cfg), k.slot(slot))
	for _, arg := range args {
		in = append(in, e.toLua(arg))
	}

	ret, err := e.call(fn, 1, in...)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", k.name, method, err)
	}
	return fromLua(ret), nil
}
