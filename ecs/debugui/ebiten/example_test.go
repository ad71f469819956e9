package ebiten_test

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/ecs/debugui"
	debugui_ebiten "github.com/plus3/tickloop/ecs/debugui/ebiten"
)

func Example() {
	// Create Ebiten window and ImGui backend
	imguiBackend := ebitenbackend.NewEbitenBackend()
	imguiBackend.CreateWindow("ECS ImGui Example", 1280, 720)
	imgui.CurrentIO().SetIniFilename("") // Disable imgui.ini

	host := debugui_ebiten.NewHost(nil)
	world := ecs.NewWorld(ecs.Options{Host: host})
	world.Install(debugui.Module())
	world.Configure(ecs.Use(debugui.SystemKind))

	// Entities can carry their own ImGui windows
	world.InsertOne(ecs.Bag{debugui.ItemKind: {
		"render": func() {
			imgui.Begin("Debug Window")
			imgui.Text("Hello from ECS!")
			imgui.End()
		},
	}})

	if err := world.Start(); err != nil {
		panic(err)
	}

	game := &debugui_ebiten.Game{
		World:   world,
		Host:    host,
		Backend: debugui_ebiten.ImguiBackend{EbitenBackend: imguiBackend},
	}

	// Run the game
	if err := ebiten.RunGame(game); err != nil {
		panic(err)
	}
}
