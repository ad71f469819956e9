package ecs

// Singleton provides access to the one entity holding a kind. Use this for
// world-wide state such as settings or published statistics that systems
// and tools read by kind name rather than by id.
type Singleton struct {
	world *World
	kind  string
	id    EntityId
}

// NewSingleton returns an accessor for kind. If no entity holds kind yet,
// one is inserted from initializer (or the kind's defaults). Otherwise the
// earliest entity holding kind is used and initializer is ignored. The kind
// must be installed for the entity to be created.
func NewSingleton(w *World, kind string, initializer ...Attrs) *Singleton {
	s := &Singleton{world: w, kind: kind}
	if s.resolve() {
		return s
	}

	var attrs Attrs
	if len(initializer) > 0 {
		attrs = initializer[0]
	}
	id := w.GenerateId()
	if w.AddComponent(id, kind, attrs) {
		s.id = id
	}
	return s
}

// Get returns the singleton value. If the entity was destroyed, Get falls
// back to any other entity holding kind.
func (s *Singleton) Get() (Attrs, bool) {
	if !s.resolve() {
		return nil, false
	}
	return s.world.Get(s.kind, s.id)
}

// Id returns the entity holding the value, or zero when none does.
func (s *Singleton) Id() EntityId {
	if !s.resolve() {
		return 0
	}
	return s.id
}

// Exists reports whether some entity holds kind.
func (s *Singleton) Exists() bool {
	return s.resolve()
}

func (s *Singleton) resolve() bool {
	if s.id != 0 && s.world.HasComponent(s.id, s.kind) {
		return true
	}
	ids := s.world.Table(s.kind).Ids()
	if len(ids) == 0 {
		s.id = 0
		return false
	}
	s.id = ids[0]
	return true
}
