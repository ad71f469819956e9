package clock

import (
	"slices"
	"sync"
	"time"

	"github.com/plus3/tickloop/ecs"
)

// Manual is a controllable ecs.Host for tests. Time only moves when Advance
// is called, and frame callbacks only fire on Frame.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
	frames []*manualFrame
	armed  int
}

type manualTimer struct {
	clock *Manual
	at    time.Time
	seq   uint64
	fn    func()
}

type manualFrame struct {
	clock *Manual
	fn    func(time.Time)
}

var _ ecs.Host = (*Manual)(nil)

// NewManual creates a manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the current simulated time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc schedules fn to fire once the clock has advanced by d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) ecs.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.armed++
	t := &manualTimer{clock: m, at: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// RequestFrame schedules fn for the next call to Frame.
func (m *Manual) RequestFrame(fn func(time.Time)) ecs.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := &manualFrame{clock: m, fn: fn}
	m.frames = append(m.frames, f)
	return f
}

func (t *manualTimer) Cancel() {
	m := t.clock
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timers = slices.DeleteFunc(m.timers, func(o *manualTimer) bool { return o == t })
}

func (f *manualFrame) Cancel() {
	m := f.clock
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = slices.DeleteFunc(m.frames, func(o *manualFrame) bool { return o == f })
}

// Advance moves the clock forward by d, firing due timers in deadline order.
// The clock reads each timer's deadline while its callback runs.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		t := m.popDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

func (m *Manual) popDue(target time.Time) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := -1
	for i, t := range m.timers {
		if t.at.After(target) {
			continue
		}
		if next < 0 || t.at.Before(m.timers[next].at) ||
			(t.at.Equal(m.timers[next].at) && t.seq < m.timers[next].seq) {
			next = i
		}
	}
	if next < 0 {
		return nil
	}

	t := m.timers[next]
	m.timers = slices.Delete(m.timers, next, next+1)
	if t.at.After(m.now) {
		m.now = t.at
	}
	return t
}

// Frame fires every pending frame callback with the current time. Callbacks
// requested while firing wait for the next Frame. It returns how many fired.
func (m *Manual) Frame() int {
	m.mu.Lock()
	frames := m.frames
	m.frames = nil
	now := m.now
	m.mu.Unlock()

	for _, f := range frames {
		f.fn(now)
	}
	return len(frames)
}

// Tick advances the clock by d and then presents one frame.
func (m *Manual) Tick(d time.Duration) {
	m.Advance(d)
	m.Frame()
}

// PendingTimers returns the number of armed, unfired timers.
func (m *Manual) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// PendingFrames returns the number of frame callbacks waiting for Frame.
func (m *Manual) PendingFrames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

// ArmedTimers returns how many timers were ever scheduled.
func (m *Manual) ArmedTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armed
}
