package ebiten_test

import (
	"errors"
	"testing"
	"time"

	"github.com/plus3/tickloop/ecs"
	debugui_ebiten "github.com/plus3/tickloop/ecs/debugui/ebiten"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTime struct {
	t time.Time
}

func (f *fakeTime) now() time.Time { return f.t }

func TestHostTimers(t *testing.T) {
	clock := &fakeTime{t: time.Unix(0, 0)}
	host := debugui_ebiten.NewHost(clock.now)

	var fired []string
	host.AfterFunc(20*time.Millisecond, func() { fired = append(fired, "b") })
	host.AfterFunc(10*time.Millisecond, func() { fired = append(fired, "a") })
	cancelled := host.AfterFunc(5*time.Millisecond, func() { fired = append(fired, "x") })
	cancelled.Cancel()

	assert.Zero(t, host.Fire())

	clock.t = clock.t.Add(30 * time.Millisecond)
	assert.Equal(t, 2, host.Fire())
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Zero(t, host.Fire())
}

func TestHostFrames(t *testing.T) {
	clock := &fakeTime{t: time.Unix(5, 0)}
	host := debugui_ebiten.NewHost(clock.now)

	var got []time.Time
	var rearm func(time.Time)
	rearm = func(ts time.Time) {
		got = append(got, ts)
		host.RequestFrame(rearm)
	}
	host.RequestFrame(rearm)

	assert.Equal(t, 1, host.FireFrames())
	clock.t = clock.t.Add(time.Second)
	assert.Equal(t, 1, host.FireFrames())
	assert.Equal(t, []time.Time{time.Unix(5, 0), time.Unix(6, 0)}, got)
}

type ticker struct {
	ecs.BaseSystem
}

func (ticker) Update(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	*ecs.SlotState[int](slot)++
	return nil
}

func (ticker) Count(w *ecs.World, cfg ecs.Config, slot *ecs.Slot) int {
	return *ecs.SlotState[int](slot)
}

func TestHostDrivesWorld(t *testing.T) {
	clock := &fakeTime{t: time.Unix(0, 0)}
	host := debugui_ebiten.NewHost(clock.now)

	w := ecs.NewWorld(ecs.Options{Host: host})
	w.Install(ecs.Module{Systems: map[string]ecs.SystemKind{"Ticker": ticker{}}})
	w.Configure(ecs.Use("Ticker"))
	require.NoError(t, w.Start())

	for range 10 {
		clock.t = clock.t.Add(ecs.DefaultStep)
		host.Fire()
		host.FireFrames()
	}

	n, err := w.CallSystem("Ticker", "count")
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

type failing struct {
	ecs.BaseSystem
}

func (failing) Update(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	return errors.New("boom")
}

func TestGameOutlivesHaltedWorld(t *testing.T) {
	clock := &fakeTime{t: time.Unix(0, 0)}
	host := debugui_ebiten.NewHost(clock.now)

	w := ecs.NewWorld(ecs.Options{Host: host})
	w.Install(ecs.Module{Systems: map[string]ecs.SystemKind{"Failing": failing{}}})
	w.Configure(ecs.Use("Failing"))
	require.NoError(t, w.Start())

	game := &debugui_ebiten.Game{World: w, Host: host}
	assert.False(t, game.Halted())

	clock.t = clock.t.Add(ecs.DefaultStep)
	host.Fire()
	assert.True(t, game.Halted())
	assert.Error(t, w.LastError())

	require.NoError(t, w.Restart())
	assert.False(t, game.Halted())
}
