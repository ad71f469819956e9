package luasys_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/ecs/clock"
	"github.com/plus3/tickloop/plugins/luasys"
	"github.com/plus3/tickloop/plugins/position"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const heater = `
return {
  defaults = { rate = 2 },
  components = { Heat = { value = 0 } },

  start = function(world, config, slot)
    slot.ticks = 0
  end,

  update = function(world, config, slot, dt)
    slot.ticks = slot.ticks + 1
    world:each("Heat", function(id, heat)
      heat.value = heat.value + dt * config.rate
    end)
  end,

  ticks = function(world, config, slot)
    return slot.ticks
  end,

  ping = function(world, config, slot, msg)
    return "pong " .. msg
  end,
}
`

func newEngine(t *testing.T) *luasys.Engine {
	t.Helper()
	e := luasys.NewEngine(nil)
	t.Cleanup(e.Close)
	return e
}

func TestScriptKind(t *testing.T) {
	e := newEngine(t)
	kind, err := e.Load("Heater", heater)
	require.NoError(t, err)

	host := clock.NewManual(time.Unix(0, 0))
	w := ecs.NewWorld(ecs.Options{Host: host})
	w.Install(kind.Module())
	w.Configure(ecs.Use("Heater"))

	assert.Equal(t, 2.0, w.Configs()[0].Float("rate", 0))

	id := w.InsertOne(ecs.Bag{"Heat": {}})
	require.NoError(t, w.Start())
	host.Advance(time.Second)

	heat, ok := w.Get("Heat", id)
	require.True(t, ok)
	assert.InDelta(t, 2.0, heat.Float("value", 0), 1e-6)

	ticks, err := w.CallSystem("Heater", "ticks")
	require.NoError(t, err)
	assert.Equal(t, 60.0, ticks)

	pong, err := w.CallSystem("Heater", "ping", "bar")
	require.NoError(t, err)
	assert.Equal(t, "pong bar", pong)

	_, err = w.CallSystem("Heater", "missing")
	assert.ErrorIs(t, err, ecs.ErrUnknownMethod)
}

func TestScriptErrors(t *testing.T) {
	e := newEngine(t)

	_, err := e.Load("Broken", `return {`)
	assert.Error(t, err)

	_, err = e.Load("NotATable", `return 3`)
	assert.ErrorContains(t, err, "want table")

	_, err = e.Load("BadDefaults", `return { defaults = 1 }`)
	assert.ErrorContains(t, err, "defaults")

	kind, err := e.Load("Failing", `
return {
  update = function(world, config, slot, dt) error("overheated") end,
}`)
	require.NoError(t, err)

	w := ecs.NewWorld(ecs.Options{UpdatePolicy: ecs.PolicyContain})
	w.Install(kind.Module())
	w.Configure(ecs.Use("Failing"))

	require.NoError(t, w.Update(0.1))
	stats := w.Stats()
	assert.Equal(t, int64(1), stats.TotalFailures)
}

func TestWorldBindings(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	w := ecs.NewWorld(ecs.Options{Logger: zap.New(core)})
	w.Install(position.Module())

	e := newEngine(t)
	kind, err := e.Load("Script", `
return {
  spawn = function(world, config, slot, x)
    return world:insert({ Position = { x = x, y = 1 }, Tag = { name = "a" } })
  end,

  move = function(world, config, slot, id)
    local pos = world:get("Position", id)
    pos.x = pos.x + 10
    return pos.x
  end,

  tagged = function(world, config, slot)
    local out = {}
    world:query({ "Position", "Tag?" }, function(id, pos, tag)
      if tag ~= nil then out[#out + 1] = tag.name end
    end)
    return out
  end,

  untag = function(world, config, slot, id)
    return world:remove(id, "Tag")
  end,

  search = function(world, config, slot, x, y)
    world:log("searching")
    return world:call("Position", "search", x, y, 10)
  end,

  kill = function(world, config, slot, id)
    world:destroy(id)
    return world:count("Position")
  end,
}`)
	require.NoError(t, err)
	w.Install(kind.Module(), ecs.Module{Components: map[string]ecs.ComponentKind{
		"Tag": ecs.NewComponent(nil),
	}})
	w.Configure(ecs.Use(position.Kind), ecs.Use("Script"))

	ret, err := w.CallSystem("Script", "spawn", 5)
	require.NoError(t, err)
	id := ecs.EntityId(ret.(float64))

	pos, ok := w.Get(position.Kind, id)
	require.True(t, ok)
	assert.Equal(t, 5.0, pos.Float("x", 0))
	assert.Equal(t, 0.0, pos.Float("rotation", -1), "component defaults apply to script inserts")

	ret, err = w.CallSystem("Script", "move", id)
	require.NoError(t, err)
	assert.Equal(t, 15.0, ret)
	assert.Equal(t, 15.0, pos.Float("x", 0))

	ret, err = w.CallSystem("Script", "tagged")
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, ret)

	ret, err = w.CallSystem("Script", "untag", id)
	require.NoError(t, err)
	assert.Equal(t, true, ret)

	ret, err = w.CallSystem("Script", "tagged")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, ret)

	require.NoError(t, w.Update(0.1))
	ret, err = w.CallSystem("Script", "search", 15, 1)
	require.NoError(t, err)
	assert.Equal(t, []any{float64(id)}, ret)
	assert.Equal(t, 1, logs.FilterMessage("searching").Len())

	ret, err = w.CallSystem("Script", "kill", id)
	require.NoError(t, err)
	assert.Equal(t, 0.0, ret)
}

func TestLoadDirAndWatch(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}

	write("Greeter.lua", `return { hello = function() return "v1" end }`)
	write("notes.txt", `ignored`)

	e := newEngine(t)
	mod, err := e.LoadDir(dir)
	require.NoError(t, err)
	require.Contains(t, mod.Systems, "Greeter")
	assert.Len(t, mod.Systems, 1)

	host := clock.NewManual(time.Unix(0, 0))
	w := ecs.NewWorld(ecs.Options{Host: host})
	w.Install(mod)
	w.Configure(ecs.Use("Greeter"))
	require.NoError(t, w.Start())

	watcher, err := e.Watch(w, dir, true)
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloads := make(chan func(), 16)
	go watcher.Run(ctx, func(fn func()) {
		select {
		case reloads <- fn:
		case <-ctx.Done():
		}
	})

	// reloads run here, on the world's goroutine
	hello := func() any {
		got, err := w.CallSystem("Greeter", "hello")
		require.NoError(t, err)
		return got
	}
	waitFor := func(want string) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for hello() != want {
			select {
			case fn := <-reloads:
				fn()
			case <-deadline:
				t.Fatalf("no reload to %q", want)
			}
		}
	}

	write("Greeter.lua", `return { hello = function() return "v2" end }`)
	waitFor("v2")
	assert.True(t, w.Running())

	write("notes.txt", `still ignored`)
	write("Greeter.lua", `return {`)
	name, err := watcher.Reload(filepath.Join(dir, "Greeter.lua"))
	assert.Error(t, err)
	assert.Empty(t, name)
	assert.Equal(t, "v2", hello(), "a broken script keeps the previous kind")

	write("Greeter.lua", `return { hello = function() return "v3" end }`)
	waitFor("v3")
}

func TestMissingDir(t *testing.T) {
	e := newEngine(t)
	mod, err := e.LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, mod.Systems)
}
