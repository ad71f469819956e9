package ecs

import (
	"slices"

	"github.com/kamstrup/intmap"
)

// Storage is the component store: component kind name to a Table of values
// keyed by entity id.
type Storage struct {
	tables map[string]*Table
}

// NewStorage creates an empty component store.
func NewStorage() *Storage {
	return &Storage{
		tables: make(map[string]*Table),
	}
}

// Table returns every value of the given kind. Unknown kinds yield an empty
// table, never nil.
func (s *Storage) Table(kind string) *Table {
	if t, ok := s.tables[kind]; ok {
		return t
	}
	return emptyTable
}

// Get returns the value of kind stored for id.
func (s *Storage) Get(kind string, id EntityId) (Attrs, bool) {
	t, ok := s.tables[kind]
	if !ok {
		return nil, false
	}
	return t.Get(id)
}

// Has reports whether id holds a value of kind.
func (s *Storage) Has(kind string, id EntityId) bool {
	t, ok := s.tables[kind]
	return ok && t.Has(id)
}

// Set stores value under (kind, id), replacing any earlier value.
func (s *Storage) Set(kind string, id EntityId, value Attrs) {
	t, ok := s.tables[kind]
	if !ok {
		t = newTable()
		s.tables[kind] = t
	}
	t.set(id, value)
}

// Remove deletes the value under (kind, id) and reports whether one existed.
func (s *Storage) Remove(kind string, id EntityId) bool {
	t, ok := s.tables[kind]
	if !ok {
		return false
	}
	return t.remove(id)
}

// Delete removes every value stored for id and returns how many were removed.
// Deleting an unknown id is a no-op.
func (s *Storage) Delete(id EntityId) int {
	removed := 0
	for _, t := range s.tables {
		if t.remove(id) {
			removed++
		}
	}
	return removed
}

// Kinds returns the names of all kinds that have ever held a value, sorted.
func (s *Storage) Kinds() []string {
	kinds := make([]string, 0, len(s.tables))
	for kind := range s.tables {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

// KindsOf returns the sorted kinds currently stored for id.
func (s *Storage) KindsOf(id EntityId) []string {
	var kinds []string
	for kind, t := range s.tables {
		if t.Has(id) {
			kinds = append(kinds, kind)
		}
	}
	slices.Sort(kinds)
	return kinds
}

// StorageStats summarises the contents of a Storage.
type StorageStats struct {
	KindCount        int
	TotalEntityCount int
	TotalValueCount  int
	Kinds            []KindStats
}

// KindStats describes a single component kind.
type KindStats struct {
	Name  string
	Count int
}

// CollectStats walks every table and counts values and distinct entities.
func (s *Storage) CollectStats() *StorageStats {
	stats := &StorageStats{
		KindCount: len(s.tables),
		Kinds:     make([]KindStats, 0, len(s.tables)),
	}

	seen := intmap.New[EntityId, struct{}](256)
	for _, kind := range s.Kinds() {
		t := s.tables[kind]
		stats.Kinds = append(stats.Kinds, KindStats{Name: kind, Count: t.Len()})
		stats.TotalValueCount += t.Len()
		for id := range t.All() {
			seen.Put(id, struct{}{})
		}
	}
	stats.TotalEntityCount = seen.Len()

	return stats
}
