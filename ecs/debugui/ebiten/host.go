package ebiten

import (
	"slices"
	"time"

	"github.com/plus3/tickloop/ecs"
)

// Host is an ecs.Host driven by a game loop instead of real timers. Fire
// runs due timers and FireFrames runs pending frame callbacks; Game calls
// both once per ebiten tick.
type Host struct {
	now    func() time.Time
	seq    uint64
	timers []*hostTimer
	frames []*hostFrame
}

type hostTimer struct {
	host *Host
	at   time.Time
	seq  uint64
	fn   func()
}

type hostFrame struct {
	host *Host
	fn   func(time.Time)
}

var _ ecs.Host = (*Host)(nil)

// NewHost creates a host reading the time from now, or time.Now when nil.
func NewHost(now func() time.Time) *Host {
	if now == nil {
		now = time.Now
	}
	return &Host{now: now}
}

func (h *Host) Now() time.Time {
	return h.now()
}

func (h *Host) AfterFunc(d time.Duration, fn func()) ecs.Handle {
	h.seq++
	t := &hostTimer{host: h, at: h.now().Add(d), seq: h.seq, fn: fn}
	h.timers = append(h.timers, t)
	return t
}

func (h *Host) RequestFrame(fn func(time.Time)) ecs.Handle {
	f := &hostFrame{host: h, fn: fn}
	h.frames = append(h.frames, f)
	return f
}

func (t *hostTimer) Cancel() {
	h := t.host
	h.timers = slices.DeleteFunc(h.timers, func(o *hostTimer) bool { return o == t })
}

func (f *hostFrame) Cancel() {
	h := f.host
	h.frames = slices.DeleteFunc(h.frames, func(o *hostFrame) bool { return o == f })
}

// Fire runs every timer due by now in deadline order and returns how many
// ran. Timers armed while firing wait for the next call.
func (h *Host) Fire() int {
	now := h.now()

	var due []*hostTimer
	h.timers = slices.DeleteFunc(h.timers, func(t *hostTimer) bool {
		if t.at.After(now) {
			return false
		}
		due = append(due, t)
		return true
	})
	slices.SortFunc(due, func(a, b *hostTimer) int {
		if c := a.at.Compare(b.at); c != 0 {
			return c
		}
		return int(a.seq) - int(b.seq)
	})

	for _, t := range due {
		t.fn()
	}
	return len(due)
}

// FireFrames runs the pending frame callbacks with the current time.
func (h *Host) FireFrames() int {
	frames := h.frames
	h.frames = nil
	now := h.now()
	for _, f := range frames {
		f.fn(now)
	}
	return len(frames)
}
