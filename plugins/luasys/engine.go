// Package luasys lets system kinds be written in Lua.
//
// A script is a chunk returning a table:
//
//	return {
//	  defaults = { speed = 2 },
//	  components = { Heat = { value = 0 } },
//	  start = function(world, config, slot) end,
//	  update = function(world, config, slot, dt)
//	    world:each("Heat", function(id, heat) heat.value = heat.value + dt end)
//	  end,
//	  ping = function(world, config, slot, msg) return "pong " .. msg end,
//	}
//
// Phase fields are start, stop, update_before, update, update_after,
// draw_before, draw and draw_after. Any other function field is reachable
// through World.CallSystem. A phase fails by raising a Lua error.
//
// All scripts share one Lua VM, so an Engine and every World it serves must
// be used from a single goroutine.
package luasys

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/plus3/tickloop/ecs"
)

// Engine wraps the Lua VM shared by every script kind it loads.
type Engine struct {
	vm     *lua.LState
	log    *zap.Logger
	worlds map[*ecs.World]*lua.LUserData
}

// NewEngine creates a VM with the standard libraries and the world and
// attribute bindings registered.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState()
	e := &Engine{vm: vm, log: log, worlds: map[*ecs.World]*lua.LUserData{}}
	e.registerWorld()
	e.registerAttrs()
	return e
}

// Close releases the VM. Kinds loaded by the engine must not be used
// afterwards.
func (e *Engine) Close() {
	e.vm.Close()
}

// Load compiles source and builds a system kind named name from the table it
// returns.
func (e *Engine) Load(name, source string) (*Kind, error) {
	fn, err := e.vm.Load(strings.NewReader(source), name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}); err != nil {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)

	script, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("script %s returned %s, want table", name, ret.Type())
	}
	return newKind(e, name, script)
}

// LoadFile loads a script file. The kind is named after the file without its
// extension.
func (e *Engine) LoadFile(path string) (*Kind, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	kind, err := e.Load(name, string(src))
	if err != nil {
		return nil, err
	}
	e.log.Debug("loaded lua script", zap.String("file", path), zap.String("system", name))
	return kind, nil
}

// LoadDir loads every .lua file in dir, in name order, into one module. A
// missing directory yields an empty module.
func (e *Engine) LoadDir(dir string) (ecs.Module, error) {
	mod := ecs.Module{
		Systems:    map[string]ecs.SystemKind{},
		Components: map[string]ecs.ComponentKind{},
	}

	paths, err := scripts(dir)
	if err != nil {
		return mod, err
	}
	for _, path := range paths {
		kind, err := e.LoadFile(path)
		if err != nil {
			return mod, err
		}
		sub := kind.Module()
		maps.Copy(mod.Systems, sub.Systems)
		maps.Copy(mod.Components, sub.Components)
	}
	return mod, nil
}

func scripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}

// call invokes fn with args and returns its first result.
func (e *Engine) call(fn *lua.LFunction, nret int, args ...lua.LValue) (lua.LValue, error) {
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    nret,
		Protect: true,
	}, args...); err != nil {
		return lua.LNil, err
	}
	if nret == 0 {
		return lua.LNil, nil
	}
	ret := e.vm.Get(-nret)
	e.vm.Pop(nret)
	return ret, nil
}
