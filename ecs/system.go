package ecs

// SystemKind is a named, stateless behavior blueprint. Every instance of a
// kind in the configuration list shares the same SystemKind value; per
// instance state lives in the Slot handed to each call.
//
// Embed BaseSystem to get no-op implementations and override only the phases
// the kind needs.
type SystemKind interface {
	// Configure merges the kind's option defaults under opts. opts always
	// carries "name"; the result must as well.
	Configure(opts Config) Config

	Start(w *World, cfg Config, slot *Slot) error
	Stop(w *World, cfg Config, slot *Slot) error

	UpdateBefore(w *World, cfg Config, slot *Slot, dt float64) error
	Update(w *World, cfg Config, slot *Slot, dt float64) error
	UpdateAfter(w *World, cfg Config, slot *Slot, dt float64) error

	DrawBefore(w *World, cfg Config, slot *Slot, dt float64) error
	Draw(w *World, cfg Config, slot *Slot, dt float64) error
	DrawAfter(w *World, cfg Config, slot *Slot, dt float64) error
}

// Caller is implemented by system kinds that dispatch CallSystem requests
// themselves instead of exposing Go methods.
type Caller interface {
	Call(w *World, cfg Config, slot *Slot, method string, args ...any) (any, error)
}

// BaseSystem provides no-op phases and a Configure that only adds the
// "debug" option.
type BaseSystem struct{}

var baseDefaults = Attrs{"debug": false}

func (BaseSystem) Configure(opts Config) Config {
	return ConfigureDefaults(baseDefaults, opts)
}

func (BaseSystem) Start(*World, Config, *Slot) error { return nil }
func (BaseSystem) Stop(*World, Config, *Slot) error  { return nil }

func (BaseSystem) UpdateBefore(*World, Config, *Slot, float64) error { return nil }
func (BaseSystem) Update(*World, Config, *Slot, float64) error       { return nil }
func (BaseSystem) UpdateAfter(*World, Config, *Slot, float64) error  { return nil }

func (BaseSystem) DrawBefore(*World, Config, *Slot, float64) error { return nil }
func (BaseSystem) Draw(*World, Config, *Slot, float64) error       { return nil }
func (BaseSystem) DrawAfter(*World, Config, *Slot, float64) error  { return nil }

// ConfigureDefaults returns defaults overlaid with opts, on top of the
// BaseSystem defaults. Kinds declaring their own options call it from
// Configure.
func ConfigureDefaults(defaults Attrs, opts Config) Config {
	merged := Merge(baseDefaults, defaults)
	return Config(Merge(merged, Attrs(opts)))
}

// Slot is the private scratch space of one system instance. It is created
// when the scheduler starts and dropped when it stops.
type Slot struct {
	State any
}

// SlotState returns the slot's state as *T, allocating a zero T on first use
// or when the slot holds a different type (for example after a hot swap).
func SlotState[T any](slot *Slot) *T {
	if s, ok := slot.State.(*T); ok {
		return s
	}
	s := new(T)
	slot.State = s
	return s
}

// SystemSpec is one entry of a configuration list before resolution.
type SystemSpec struct {
	Name    string
	Options Attrs
}

// Use configures an instance of the named kind with its default options.
func Use(name string) SystemSpec {
	return SystemSpec{Name: name}
}

// UseWith configures an instance of the named kind with options.
func UseWith(name string, opts Attrs) SystemSpec {
	return SystemSpec{Name: name, Options: opts}
}

// Policy selects what the scheduler does when a system call fails.
type Policy int

const (
	// PolicyDefault resolves to PolicyStop for the update pass and
	// PolicyContain for the draw pass.
	PolicyDefault Policy = iota
	// PolicyContain logs the failure and keeps running the remaining calls.
	PolicyContain
	// PolicyStop stops the scheduler and returns the failure.
	PolicyStop
)

func (p Policy) String() string {
	switch p {
	case PolicyContain:
		return "contain"
	case PolicyStop:
		return "stop"
	default:
		return "default"
	}
}

// Pass identifies the loop a call belongs to.
type Pass int

const (
	PassLifecycle Pass = iota
	PassUpdate
	PassDraw
)

func (p Pass) String() string {
	switch p {
	case PassUpdate:
		return "update"
	case PassDraw:
		return "draw"
	default:
		return "lifecycle"
	}
}

// Phase identifies the call within a pass.
type Phase int

const (
	PhaseBefore Phase = iota
	PhaseMain
	PhaseAfter
	PhaseStart
	PhaseStop
)

// tickPhases is the order phases run within an update step or draw pass.
var tickPhases = [...]Phase{PhaseBefore, PhaseMain, PhaseAfter}

func (p Phase) String() string {
	switch p {
	case PhaseBefore:
		return "before"
	case PhaseMain:
		return "main"
	case PhaseAfter:
		return "after"
	case PhaseStart:
		return "start"
	case PhaseStop:
		return "stop"
	}
	return "unknown"
}

type phaseFunc func(w *World, cfg Config, slot *Slot, dt float64) error

func lookupPhase(kind SystemKind, pass Pass, phase Phase) phaseFunc {
	switch pass {
	case PassUpdate:
		switch phase {
		case PhaseBefore:
			return kind.UpdateBefore
		case PhaseMain:
			return kind.Update
		case PhaseAfter:
			return kind.UpdateAfter
		}
	case PassDraw:
		switch phase {
		case PhaseBefore:
			return kind.DrawBefore
		case PhaseMain:
			return kind.Draw
		case PhaseAfter:
			return kind.DrawAfter
		}
	}
	switch phase {
	case PhaseStart:
		return func(w *World, cfg Config, slot *Slot, _ float64) error { return kind.Start(w, cfg, slot) }
	case PhaseStop:
		return func(w *World, cfg Config, slot *Slot, _ float64) error { return kind.Stop(w, cfg, slot) }
	}
	return nil
}
