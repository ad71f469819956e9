package luasys

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/plus3/tickloop/ecs"
)

// Watcher hot-reloads a script directory into a world. Written or created
// .lua files are reloaded and re-installed under the same name. The
// configuration list and the component store are left alone, so instances
// pick up the new code on their next call. With restart set, a running
// scheduler is restarted after a reload so start hooks run against the new
// code.
//
// Run receives file events on its own goroutine and hands each reload to
// post, which must run it on the world's goroutine.
type Watcher struct {
	engine  *Engine
	world   *ecs.World
	dir     string
	restart bool
	events  *fsnotify.Watcher
}

// Watch starts watching dir. Only changes after this call are reported.
func (e *Engine) Watch(w *ecs.World, dir string, restart bool) (*Watcher, error) {
	events, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if err := events.Add(dir); err != nil {
		_ = events.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{
		engine:  e,
		world:   w,
		dir:     dir,
		restart: restart,
		events:  events,
	}, nil
}

// Run forwards script changes to post until ctx is done or Close is called.
func (wt *Watcher) Run(ctx context.Context, post func(func())) {
	log := wt.engine.log
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-wt.events.Events:
			if !ok {
				return
			}
			if filepath.Ext(ev.Name) != ".lua" || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			path := ev.Name
			post(func() {
				_, _ = wt.Reload(path)
			})
		case err, ok := <-wt.events.Errors:
			if !ok {
				return
			}
			log.Warn("script watcher", zap.String("dir", wt.dir), zap.Error(err))
		}
	}
}

// Close stops watching. A running Run returns.
func (wt *Watcher) Close() error {
	return wt.events.Close()
}

// Reload loads path and installs the kind it defines, returning the kind's
// name. A script that fails to load keeps its previous kind installed and is
// retried on its next change.
func (wt *Watcher) Reload(path string) (string, error) {
	log := wt.engine.log
	kind, err := wt.engine.LoadFile(path)
	if err != nil {
		log.Warn("lua reload failed", zap.String("file", path), zap.Error(err))
		return "", err
	}
	wt.world.Install(kind.Module())
	log.Info("lua system reloaded", zap.String("system", kind.Name()))

	if wt.restart && wt.world.Running() {
		err = multierr.Append(err, wt.world.Restart())
	}
	return kind.Name(), err
}
