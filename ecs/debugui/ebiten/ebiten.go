// Package ebiten runs a world inside an Ebiten game loop with a Dear ImGui
// overlay.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/ecs/debugui"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// Game implements ebiten.Game. Each tick opens an ImGui frame, fires the
// world's update timers and its draw callback, and closes the frame, so the
// draw pass may issue ImGui calls. Draw paints Background (if set) and then
// the ImGui overlay.
//
// A halted world does not end the game. While the scheduler is stopped the
// system list is drawn directly, showing the last error and a restart button.
type Game struct {
	World      *ecs.World
	Host       *Host
	Backend    ImguiBackend
	Background func(screen *ebiten.Image)

	systems *debugui.SystemList
}

func (g *Game) Update() error {
	g.Backend.BeginFrame()
	g.Tick()
	g.Backend.EndFrame()
	return nil
}

// Tick fires due timers and frame callbacks, then renders the system list if
// the world is stopped. It must run inside an ImGui frame.
func (g *Game) Tick() {
	g.Host.Fire()
	g.Host.FireFrames()
	if !g.Halted() {
		return
	}
	if g.systems == nil {
		g.systems = debugui.NewSystemList()
	}
	g.systems.Render(g.World)
}

// Halted reports whether the scheduler is stopped, so the fallback system
// list is shown.
func (g *Game) Halted() bool {
	return !g.World.Running()
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.Background != nil {
		g.Background(screen)
	}
	g.Backend.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.Backend.Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}
