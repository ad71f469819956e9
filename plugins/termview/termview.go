// Package termview renders positioned entities into a tcell screen.
package termview

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/plugins/collision"
	"github.com/plus3/tickloop/plugins/position"
)

const (
	SystemKind = "TermView"
	SpriteKind = "Sprite"
)

// Sprite is how an entity looks on the terminal: a single glyph and a color
// name understood by tcell.GetColor.
var Sprite = ecs.NewComponent(func() ecs.Attrs {
	return ecs.Attrs{"glyph": "*", "color": "white"}
})

// View is a system kind drawing every Position entity as one cell. World
// coordinates are divided by the "scale" option (units per cell) after
// subtracting origin_x and origin_y. The bottom row holds a status line.
type View struct {
	ecs.BaseSystem
	screen tcell.Screen
}

func New(screen tcell.Screen) *View {
	return &View{screen: screen}
}

func (v *View) Configure(opts ecs.Config) ecs.Config {
	return ecs.ConfigureDefaults(ecs.Attrs{
		"scale":    8.0,
		"origin_x": 0.0,
		"origin_y": 0.0,
		"status":   true,
	}, opts)
}

func (v *View) Draw(w *ecs.World, cfg ecs.Config, slot *ecs.Slot, dt float64) error {
	s := v.screen
	s.Clear()
	width, height := s.Size()

	rows := height
	if cfg.Bool("status", true) {
		rows--
	}

	scale := cfg.Float("scale", 8)
	if scale <= 0 {
		scale = 1
	}
	ox, oy := cfg.Float("origin_x", 0), cfg.Float("origin_y", 0)

	drawn := 0
	for id, c := range w.Query(position.Kind, SpriteKind+"?").Iter() {
		col := int(math.Floor((c[0].Float("x", 0) - ox) / scale))
		row := int(math.Floor((c[0].Float("y", 0) - oy) / scale))
		if col < 0 || col >= width || row < 0 || row >= rows {
			continue
		}

		glyph, style := look(c[1])
		if hit, ok := w.Get(collision.Kind, id); ok && hit.Bool("in_collision", false) {
			style = style.Reverse(true)
		}
		s.SetContent(col, row, glyph, nil, style)
		drawn++
	}

	if cfg.Bool("status", true) && height > 0 {
		putString(s, 0, height-1, status(w, drawn, dt), tcell.StyleDefault.Foreground(tcell.ColorYellow))
	}

	s.Show()
	return nil
}

func look(sprite ecs.Attrs) (rune, tcell.Style) {
	style := tcell.StyleDefault
	if sprite == nil {
		return '*', style
	}

	glyph := '*'
	for _, r := range sprite.String("glyph", "*") {
		glyph = r
		break
	}
	if c := tcell.GetColor(sprite.String("color", "white")); c != tcell.ColorDefault {
		style = style.Foreground(c)
	}
	return glyph, style
}

func status(w *ecs.World, drawn int, dt float64) string {
	st := w.Stats()
	line := fmt.Sprintf("entities %d  steps %d  draws %d  failures %d",
		drawn, st.UpdateSteps, st.DrawPasses, st.TotalFailures)
	if dt > 0 {
		line += fmt.Sprintf("  fps %.0f", 1/dt)
	}
	if w.Paused() {
		line += "  [paused]"
	}
	return line
}

func putString(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// HandleEvent applies a terminal event to w: space toggles pause, r restarts
// the scheduler and a resize resyncs the screen. It reports whether the event
// asks to quit (Escape, Ctrl-C or q).
func (v *View) HandleEvent(w *ecs.World, ev tcell.Event) (quit bool, err error) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return true, nil
		case ev.Key() != tcell.KeyRune:
		case ev.Rune() == 'q':
			return true, nil
		case ev.Rune() == ' ':
			if w.Paused() {
				w.Resume()
			} else {
				w.Pause()
			}
		case ev.Rune() == 'r':
			return false, w.Restart()
		}
	}
	return false, nil
}

// Module installs the view under SystemKind together with the Sprite
// component.
func (v *View) Module() ecs.Module {
	return ecs.Module{
		Components: map[string]ecs.ComponentKind{SpriteKind: Sprite},
		Systems:    map[string]ecs.SystemKind{SystemKind: v},
	}
}
