// tickloop-gui runs a world inside an Ebiten window with the ImGui
// inspector on top. Entities with a Position and an optional Sprite color
// are drawn as squares.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"

	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/ecs/debugui"
	debugui_ebiten "github.com/plus3/tickloop/ecs/debugui/ebiten"
	"github.com/plus3/tickloop/internal/config"
	"github.com/plus3/tickloop/internal/logging"
	"github.com/plus3/tickloop/plugins/collision"
	"github.com/plus3/tickloop/plugins/counter"
	"github.com/plus3/tickloop/plugins/luasys"
	"github.com/plus3/tickloop/plugins/motion"
	"github.com/plus3/tickloop/plugins/position"
	"github.com/plus3/tickloop/plugins/spawn"
	"github.com/plus3/tickloop/plugins/stats"
	"github.com/plus3/tickloop/plugins/termview"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "tickloop.toml", "Path to the TOML configuration. Empty uses defaults.")
	width := flag.Int("width", 1280, "Window width.")
	height := flag.Int("height", 720, "Window height.")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Create Ebiten window and ImGui backend
	imguiBackend := ebitenbackend.NewEbitenBackend()
	imguiBackend.CreateWindow("tickloop", *width, *height)
	imgui.CurrentIO().SetIniFilename("") // Disable imgui.ini

	host := debugui_ebiten.NewHost(nil)
	opts := cfg.Options()
	opts.Host = host
	opts.Logger = log
	w := ecs.NewWorld(opts)

	w.Install(
		position.Module(),
		motion.Module(),
		collision.Module(),
		spawn.Module(),
		counter.Module(),
		stats.Module(),
		debugui.Module(),
		// Sprite colors are shared with the terminal view.
		ecs.Module{Components: map[string]ecs.ComponentKind{termview.SpriteKind: termview.Sprite}},
	)

	engine := luasys.NewEngine(log)
	defer engine.Close()
	if cfg.Scripts.Dir != "" {
		mod, err := engine.LoadDir(cfg.Scripts.Dir)
		if err != nil {
			return err
		}
		w.Install(mod)
	}

	w.Configure(append(cfg.Specs(), ecs.Use(debugui.SystemKind))...)

	if cfg.Scene != "" {
		scene, err := config.LoadScene(cfg.Scene)
		if err != nil {
			return err
		}
		w.Insert(scene.Bags()...)
	}

	if err := w.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	log.Info("world started", zap.Int("systems", len(w.Configs())))

	game := &debugui_ebiten.Game{
		World:      w,
		Host:       host,
		Backend:    debugui_ebiten.ImguiBackend{EbitenBackend: imguiBackend},
		Background: background(w),
	}
	if err := ebiten.RunGame(game); err != nil {
		return err
	}
	return w.Stop()
}

// background paints every positioned entity as a square sized by its width.
func background(w *ecs.World) func(*ebiten.Image) {
	return func(screen *ebiten.Image) {
		screen.Fill(color.RGBA{R: 0x10, G: 0x12, B: 0x18, A: 0xff})
		for _, c := range w.Query(position.Kind, termview.SpriteKind+"?").Iter() {
			size := float32(c[0].Float("width", 8))
			x := float32(c[0].Float("x", 0)) - size/2
			y := float32(c[0].Float("y", 0)) - size/2
			vector.DrawFilledRect(screen, x, y, size, size, spriteColor(c[1]), false)
		}
	}
}

var palette = map[string]color.RGBA{
	"white":  {0xff, 0xff, 0xff, 0xff},
	"red":    {0xe0, 0x40, 0x40, 0xff},
	"yellow": {0xf0, 0xd0, 0x40, 0xff},
	"aqua":   {0x40, 0xd0, 0xe0, 0xff},
	"green":  {0x40, 0xc0, 0x60, 0xff},
}

func spriteColor(sprite ecs.Attrs) color.RGBA {
	if c, ok := palette[sprite.String("color", "white")]; ok {
		return c
	}
	return palette["white"]
}
