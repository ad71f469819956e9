package ecs

import "time"

// Host supplies the scheduler's notion of time. AfterFunc drives the fixed
// step update loop and RequestFrame drives the draw loop. Both are one-shot;
// the scheduler re-arms them after every tick.
//
// Callbacks must be delivered on the goroutine that owns the World.
type Host interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Handle
	RequestFrame(fn func(ts time.Time)) Handle
}

// Handle cancels a pending host callback. Cancelling a callback that already
// fired is a no-op.
type Handle interface {
	Cancel()
}
