package clock_test

import (
	"context"
	"testing"
	"time"

	"github.com/plus3/tickloop/ecs/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop(t *testing.T) {
	t.Run("callbacks run on the loop goroutine", func(t *testing.T) {
		loop := clock.NewLoop(120)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		done := make(chan struct{})
		var timerFired, frameFired bool
		loop.AfterFunc(time.Millisecond, func() {
			timerFired = true
			loop.RequestFrame(func(time.Time) {
				frameFired = true
				close(done)
			})
		})

		errc := make(chan error, 1)
		go func() { errc <- loop.Run(ctx) }()

		select {
		case <-done:
		case <-ctx.Done():
			t.Fatal("loop did not deliver callbacks")
		}
		cancel()
		require.ErrorIs(t, <-errc, context.Canceled)
		assert.True(t, timerFired)
		assert.True(t, frameFired)
	})

	t.Run("cancelled callbacks are dropped", func(t *testing.T) {
		loop := clock.NewLoop(0)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		h := loop.AfterFunc(time.Millisecond, func() { t.Error("cancelled timer fired") })
		h.Cancel()

		done := make(chan struct{})
		loop.AfterFunc(20*time.Millisecond, func() { close(done) })

		go loop.Run(ctx)
		select {
		case <-done:
		case <-ctx.Done():
			t.Fatal("loop stalled")
		}
	})

	t.Run("post after run returns does not block", func(t *testing.T) {
		loop := clock.NewLoop(0)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorIs(t, loop.Run(ctx), context.Canceled)

		posted := make(chan struct{})
		go func() {
			// more than the queue holds
			for range 1000 {
				loop.Post(func() { t.Error("posted callback ran after Run returned") })
			}
			close(posted)
		}()

		select {
		case <-posted:
		case <-time.After(5 * time.Second):
			t.Fatal("Post blocked after Run returned")
		}
	})
}
