package ecs

import (
	"iter"
	"strings"
)

// Query joins component kinds by entity id. Kinds suffixed with "?" are
// optional: entities lacking them still match and see a nil value in that
// position.
type Query struct {
	storage  *Storage
	kinds    []string
	optional []bool
	buf      []Attrs
}

// NewQuery creates a query over storage. At least one kind must be required.
func NewQuery(storage *Storage, kinds ...string) *Query {
	q := &Query{
		storage:  storage,
		kinds:    make([]string, len(kinds)),
		optional: make([]bool, len(kinds)),
		buf:      make([]Attrs, len(kinds)),
	}
	required := 0
	for i, kind := range kinds {
		name, opt := strings.CutSuffix(kind, "?")
		q.kinds[i] = name
		q.optional[i] = opt
		if !opt {
			required++
		}
	}
	if required == 0 {
		panic("ecs: query needs at least one required kind")
	}
	return q
}

// Query is shorthand for NewQuery over the world's storage.
func (w *World) Query(kinds ...string) *Query {
	return NewQuery(w.storage, kinds...)
}

// driver picks the smallest required table to iterate.
func (q *Query) driver() *Table {
	var best *Table
	for i, kind := range q.kinds {
		if q.optional[i] {
			continue
		}
		t := q.storage.Table(kind)
		if best == nil || t.Len() < best.Len() {
			best = t
		}
	}
	return best
}

// Iter yields each matching entity with its values in the order the kinds
// were given. The slice is reused between iterations; copy it to keep it.
func (q *Query) Iter() iter.Seq2[EntityId, []Attrs] {
	return func(yield func(EntityId, []Attrs) bool) {
		for id := range q.driver().All() {
			if !q.fill(id) {
				continue
			}
			if !yield(id, q.buf) {
				return
			}
		}
	}
}

func (q *Query) fill(id EntityId) bool {
	for i, kind := range q.kinds {
		v, ok := q.storage.Get(kind, id)
		if !ok && !q.optional[i] {
			return false
		}
		q.buf[i] = v
	}
	return true
}

// Count returns the number of matching entities.
func (q *Query) Count() int {
	n := 0
	for range q.Iter() {
		n++
	}
	return n
}
