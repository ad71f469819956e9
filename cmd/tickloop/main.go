// tickloop runs a world from a TOML configuration: the built-in plugin
// kinds, Lua script kinds from the scripts directory and an optional YAML
// scene, driven in real time until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/ecs/clock"
	"github.com/plus3/tickloop/internal/config"
	"github.com/plus3/tickloop/internal/logging"
	"github.com/plus3/tickloop/internal/telemetry"
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
	logPath := flag.String("log-file", "tickloop.log", "Log file used while the terminal view owns the screen.")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	var log *zap.Logger
	if cfg.View.Terminal {
		log, err = logging.ToFile(cfg.Logging, *logPath)
	} else {
		log, err = logging.New(cfg.Logging)
	}
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "tickloop", cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := clock.NewLoop(cfg.Runtime.FrameRate)
	opts := cfg.Options()
	opts.Host = loop
	opts.Logger = log
	opts.OnError = func(err error) {
		log.Error("scheduler stopped", zap.Error(err))
		cancel()
	}
	w := ecs.NewWorld(opts)

	w.Install(
		position.Module(),
		motion.Module(),
		collision.Module(),
		spawn.Module(),
		counter.Module(),
		stats.Module(),
	)

	engine := luasys.NewEngine(log)
	defer engine.Close()
	if cfg.Scripts.Dir != "" {
		mod, err := engine.LoadDir(cfg.Scripts.Dir)
		if err != nil {
			return err
		}
		w.Install(mod)
		log.Info("scripts loaded", zap.String("dir", cfg.Scripts.Dir), zap.Int("systems", len(mod.Systems)))
	}

	specs := cfg.Specs()

	if cfg.View.Terminal {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		defer screen.Fini()

		view := termview.New(screen)
		w.Install(view.Module())
		if !slices.ContainsFunc(specs, func(s ecs.SystemSpec) bool { return s.Name == termview.SystemKind }) {
			specs = append(specs, ecs.Use(termview.SystemKind))
		}
		go pollEvents(loop, screen, view, w, log, cancel)
	}

	w.Configure(specs...)

	if cfg.Scene != "" {
		scene, err := config.LoadScene(cfg.Scene)
		if err != nil {
			return err
		}
		ids := w.Insert(scene.Bags()...)
		log.Info("scene loaded", zap.String("scene", cfg.Scene), zap.Int("entities", len(ids)))
	}

	if cfg.Scripts.Dir != "" && cfg.Scripts.Watch {
		watcher, err := engine.Watch(w, cfg.Scripts.Dir, cfg.Scripts.RestartOnReload)
		if err != nil {
			return err
		}
		defer func() { _ = watcher.Close() }()
		go watcher.Run(ctx, loop.Post)
	}

	if err := w.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	log.Info("world started",
		zap.Int("systems", len(specs)),
		zap.Duration("step", opts.Step),
		zap.Int("frame_rate", cfg.Runtime.FrameRate),
	)

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if w.Running() {
		if err := w.Stop(); err != nil {
			log.Warn("stop", zap.Error(err))
		}
	}
	st := w.Stats()
	log.Info("world stopped",
		zap.Int64("update_steps", st.UpdateSteps),
		zap.Int64("draw_passes", st.DrawPasses),
		zap.Int64("failures", st.TotalFailures),
	)
	return w.LastError()
}

// pollEvents forwards terminal events onto the loop goroutine until the
// screen is finalized.
func pollEvents(loop *clock.Loop, screen tcell.Screen, view *termview.View, w *ecs.World, log *zap.Logger, quit func()) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		loop.Post(func() {
			done, err := view.HandleEvent(w, ev)
			if err != nil {
				log.Error("terminal event", zap.Error(err))
			}
			if done {
				quit()
			}
		})
	}
}
