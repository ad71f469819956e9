package termview_test

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/plugins/collision"
	"github.com/plus3/tickloop/plugins/position"
	"github.com/plus3/tickloop/plugins/termview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(20, 5)
	t.Cleanup(screen.Fini)
	return screen
}

func newWorld(view *termview.View, opts ecs.Attrs) *ecs.World {
	w := ecs.NewWorld(ecs.Options{})
	w.Install(position.Module(), collision.Module(), view.Module())
	w.Configure(ecs.UseWith(termview.SystemKind, opts))
	return w
}

func cell(s tcell.SimulationScreen, x, y int) (rune, tcell.Style) {
	r, _, style, _ := s.GetContent(x, y)
	return r, style
}

func row(s tcell.SimulationScreen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := range w {
		r, _ := cell(s, x, y)
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func TestDraw(t *testing.T) {
	screen := newScreen(t)
	view := termview.New(screen)
	w := newWorld(view, ecs.Attrs{"scale": 10.0})

	w.Insert(
		ecs.Bag{position.Kind: {"x": 25.0, "y": 15.0}, termview.SpriteKind: {"glyph": "@", "color": "red"}},
		ecs.Bag{position.Kind: {"x": 0.0, "y": 0.0}},
		ecs.Bag{position.Kind: {"x": -5.0, "y": 0.0}},
		ecs.Bag{position.Kind: {"x": 0.0, "y": 40.0}},
	)

	require.NoError(t, w.Draw(0.5))

	r, style := cell(screen, 2, 1)
	assert.Equal(t, '@', r)
	fg, _, _ := style.Decompose()
	assert.Equal(t, tcell.ColorRed, fg)

	r, _ = cell(screen, 0, 0)
	assert.Equal(t, '*', r)

	assert.Equal(t, "entities 2  steps 0", row(screen, 4)[:len("entities 2  steps 0")])
	assert.Contains(t, row(screen, 4), "fps 2")
}

func TestCollisionHighlight(t *testing.T) {
	screen := newScreen(t)
	view := termview.New(screen)
	w := newWorld(view, ecs.Attrs{"status": false})

	id := w.InsertOne(ecs.Bag{position.Kind: {"x": 8.0}, collision.Kind: {}})
	c, _ := w.Get(collision.Kind, id)
	c["in_collision"] = true

	require.NoError(t, w.Draw(0))

	_, style := cell(screen, 1, 0)
	_, _, attrs := style.Decompose()
	assert.NotZero(t, attrs&tcell.AttrReverse)
	assert.Equal(t, "", row(screen, 4))
}

func TestHandleEvent(t *testing.T) {
	screen := newScreen(t)
	view := termview.New(screen)
	w := newWorld(view, nil)

	quit, err := view.HandleEvent(w, tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	require.NoError(t, err)
	assert.False(t, quit)
	assert.True(t, w.Paused())

	quit, _ = view.HandleEvent(w, tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	assert.False(t, quit)
	assert.False(t, w.Paused())

	quit, _ = view.HandleEvent(w, tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone))
	assert.True(t, quit)

	quit, _ = view.HandleEvent(w, tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	assert.True(t, quit)
}
