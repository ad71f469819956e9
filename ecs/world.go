package ecs

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// DefaultStep is the fixed simulation step, 60 updates per second.
	DefaultStep = time.Second / 60
	// DefaultMaxCatchUp bounds the number of steps a single update tick may run.
	DefaultMaxCatchUp = 5
)

const tracerName = "github.com/plus3/tickloop/ecs"

// Options configures a World. The zero value is usable apart from Host,
// which Start requires.
type Options struct {
	Host   Host
	Logger *zap.Logger
	Tracer trace.Tracer

	// Step is the fixed update step. Zero means DefaultStep.
	Step time.Duration
	// MaxCatchUp is the most steps one update tick may run. Zero means
	// DefaultMaxCatchUp.
	MaxCatchUp int

	UpdatePolicy Policy
	DrawPolicy   Policy

	// OnError receives failures raised by loop ticks that have no caller to
	// return them to.
	OnError func(error)
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Tracer == nil {
		o.Tracer = otel.Tracer(tracerName)
	}
	if o.Step <= 0 {
		o.Step = DefaultStep
	}
	if o.MaxCatchUp <= 0 {
		o.MaxCatchUp = DefaultMaxCatchUp
	}
	if o.UpdatePolicy == PolicyDefault {
		o.UpdatePolicy = PolicyStop
	}
	if o.DrawPolicy == PolicyDefault {
		o.DrawPolicy = PolicyContain
	}
	return o
}

type entry struct {
	spec     SystemSpec
	cfg      Config
	resolved bool
}

// World aggregates the component store, the entity allocator, the registry,
// the configuration list and the scheduler runtime.
//
// A World is not safe for concurrent use. Every call, including host
// callbacks, must happen on one goroutine.
type World struct {
	opts     Options
	log      *zap.Logger
	ids      Allocator
	storage  *Storage
	registry *Registry
	entries  []entry
	commands *Commands
	rt       *runtimeState
	stats    schedulerStats
}

// NewWorld creates an empty, stopped world.
func NewWorld(opts Options) *World {
	opts = opts.withDefaults()
	return &World{
		opts:     opts,
		log:      opts.Logger,
		storage:  NewStorage(),
		registry: NewRegistry(),
		commands: newCommands(),
		rt:       &runtimeState{},
	}
}

// Logger returns the world's logger.
func (w *World) Logger() *zap.Logger {
	return w.log
}

// Storage exposes the component store.
func (w *World) Storage() *Storage {
	return w.storage
}

// Registry exposes the installed kinds.
func (w *World) Registry() *Registry {
	return w.registry
}

// Commands returns the deferred command buffer.
func (w *World) Commands() *Commands {
	return w.commands
}

// GenerateId allocates a fresh entity id.
func (w *World) GenerateId() EntityId {
	return w.ids.Next()
}

// Insert creates one entity per bag and returns their ids in input order.
// Kinds that are not installed are skipped.
func (w *World) Insert(bags ...Bag) []EntityId {
	ids := make([]EntityId, len(bags))
	for i, bag := range bags {
		id := w.GenerateId()
		for kind, attrs := range bag {
			w.AddComponent(id, kind, attrs)
		}
		ids[i] = id
	}
	return ids
}

// InsertOne creates a single entity from bag.
func (w *World) InsertOne(bag Bag) EntityId {
	return w.Insert(bag)[0]
}

// Destroy removes every component of id. Unknown ids are ignored.
func (w *World) Destroy(id EntityId) {
	w.storage.Delete(id)
}

// Get returns the value of kind for id.
func (w *World) Get(kind string, id EntityId) (Attrs, bool) {
	return w.storage.Get(kind, id)
}

// Table returns every value of kind. Unknown kinds yield an empty table.
func (w *World) Table(kind string) *Table {
	return w.storage.Table(kind)
}

// AddComponent creates a value of kind from attrs and stores it for id,
// replacing any earlier value. It reports false when kind is not installed.
func (w *World) AddComponent(id EntityId, kind string, attrs Attrs) bool {
	ck, ok := w.registry.Component(kind)
	if !ok {
		w.log.Warn("unknown component kind", zap.String("component", kind), zap.Uint64("entity", uint64(id)))
		return false
	}
	w.storage.Set(kind, id, ck.Create(attrs))
	return true
}

// RemoveComponent removes the value of kind for id.
func (w *World) RemoveComponent(id EntityId, kind string) bool {
	return w.storage.Remove(kind, id)
}

// HasComponent reports whether id holds a value of kind.
func (w *World) HasComponent(id EntityId, kind string) bool {
	return w.storage.Has(kind, id)
}

// Install makes the modules' kinds available. It never starts or configures
// anything.
func (w *World) Install(modules ...Module) {
	w.registry.Install(modules...)
}

// Configure replaces the configuration list. Specs naming an installed kind
// are resolved through its Configure; others are kept unresolved and are
// resolved on their first use after the kind is installed.
func (w *World) Configure(specs ...SystemSpec) {
	entries := make([]entry, len(specs))
	for i, spec := range specs {
		entries[i] = w.resolve(spec)
	}
	w.entries = entries
	w.stats.reset(len(entries))
}

// Reconfigure resolves the current specs again, picking up kinds installed
// since the last Configure.
func (w *World) Reconfigure() {
	specs := make([]SystemSpec, len(w.entries))
	for i, e := range w.entries {
		specs[i] = e.spec
	}
	w.Configure(specs...)
}

func (w *World) resolve(spec SystemSpec) entry {
	opts := Config(Merge(spec.Options, Attrs{"name": spec.Name}))

	kind, ok := w.registry.System(spec.Name)
	if !ok {
		return entry{spec: spec, cfg: opts}
	}

	cfg := kind.Configure(opts)
	if cfg == nil {
		cfg = opts
	}
	if cfg.Name() == "" {
		cfg["name"] = spec.Name
	}
	return entry{spec: spec, cfg: cfg, resolved: true}
}

// lookup returns instance i's configuration and kind, resolving an entry
// whose kind was installed after Configure.
func (w *World) lookup(i int) (Config, SystemKind, bool) {
	e := &w.entries[i]
	kind, ok := w.registry.System(e.spec.Name)
	if !ok {
		return e.cfg, nil, false
	}
	if !e.resolved {
		*e = w.resolve(e.spec)
	}
	return e.cfg, kind, true
}

// Configs returns the configuration list in dispatch order.
func (w *World) Configs() []Config {
	out := make([]Config, len(w.entries))
	for i, e := range w.entries {
		out[i] = e.cfg
	}
	return out
}

// Instance is one position of the configuration list together with the kind
// it currently resolves to and its runtime slot.
type Instance struct {
	Index    int
	Config   Config
	Kind     SystemKind
	Slot     *Slot
	Resolved bool
}

// Instances returns every configured instance in dispatch order. Kind is nil
// for instances whose kind is not installed.
func (w *World) Instances() []Instance {
	out := make([]Instance, len(w.entries))
	for i := range w.entries {
		cfg, kind, _ := w.lookup(i)
		out[i] = Instance{
			Index:    i,
			Config:   cfg,
			Kind:     kind,
			Slot:     w.rt.slot(i),
			Resolved: w.entries[i].resolved,
		}
	}
	return out
}

// find returns the index of the first instance whose name or instance alias
// matches name.
func (w *World) find(name string) int {
	for i, e := range w.entries {
		if e.cfg.Name() == name || e.cfg.Instance() == name {
			return i
		}
	}
	return -1
}
