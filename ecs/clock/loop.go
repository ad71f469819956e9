package clock

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/plus3/tickloop/ecs"
)

// Loop is a real-time ecs.Host. Timer and frame callbacks are queued onto a
// single goroutine, the one calling Run, so a World driven by a Loop never
// sees concurrent calls.
type Loop struct {
	frameInterval time.Duration
	events        chan func()
	done          chan struct{}
}

type loopHandle struct {
	timer     *time.Timer
	cancelled atomic.Bool
}

var _ ecs.Host = (*Loop)(nil)

// NewLoop creates a loop presenting frameRate frames per second. A
// non-positive frameRate means 60.
func NewLoop(frameRate int) *Loop {
	if frameRate <= 0 {
		frameRate = 60
	}
	return &Loop{
		frameInterval: time.Second / time.Duration(frameRate),
		events:        make(chan func(), 256),
		done:          make(chan struct{}),
	}
}

// Now returns the wall clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc runs fn on the loop goroutine after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) ecs.Handle {
	h := &loopHandle{}
	h.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if !h.cancelled.Load() {
				fn()
			}
		})
	})
	return h
}

// RequestFrame runs fn on the loop goroutine at the next frame boundary.
func (l *Loop) RequestFrame(fn func(time.Time)) ecs.Handle {
	now := time.Now()
	wait := l.frameInterval - time.Duration(now.UnixNano()%int64(l.frameInterval))
	return l.AfterFunc(wait, func() {
		fn(time.Now())
	})
}

func (h *loopHandle) Cancel() {
	h.cancelled.Store(true)
	h.timer.Stop()
}

// Post queues fn to run on the loop goroutine. It is safe to call from any
// goroutine. Once Run has returned, fn is dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.events <- fn:
	case <-l.done:
	}
}

// Run executes queued callbacks until ctx is cancelled. A Loop runs once.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.events:
			fn()
		}
	}
}
