package ecs

import (
	"maps"
	"slices"
)

// Module is a plugin's contribution: system kinds and component kinds keyed
// by name. Either map may be nil.
type Module struct {
	Systems    map[string]SystemKind
	Components map[string]ComponentKind
}

// Registry holds the installed kinds. Installing a name that already exists
// replaces its implementation in place; configuration and component data are
// untouched, which is what makes live reloading possible.
type Registry struct {
	systems    map[string]SystemKind
	components map[string]ComponentKind
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		systems:    make(map[string]SystemKind),
		components: make(map[string]ComponentKind),
	}
}

// Install merges the modules into the registry, in order.
func (r *Registry) Install(modules ...Module) {
	for _, m := range modules {
		maps.Copy(r.systems, m.Systems)
		maps.Copy(r.components, m.Components)
	}
}

// System looks up a system kind by name.
func (r *Registry) System(name string) (SystemKind, bool) {
	k, ok := r.systems[name]
	return k, ok
}

// Component looks up a component kind by name.
func (r *Registry) Component(name string) (ComponentKind, bool) {
	k, ok := r.components[name]
	return k, ok
}

// SystemNames returns the installed system kind names, sorted.
func (r *Registry) SystemNames() []string {
	return slices.Sorted(maps.Keys(r.systems))
}

// ComponentNames returns the installed component kind names, sorted.
func (r *Registry) ComponentNames() []string {
	return slices.Sorted(maps.Keys(r.components))
}
