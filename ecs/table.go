package ecs

import (
	"iter"

	"github.com/kamstrup/intmap"
)

const (
	// compactMinDead is the number of dead slots tolerated before a table is
	// considered for compaction.
	compactMinDead = 32
)

// Table holds every value of one component kind, keyed by entity id.
// Values live in a dense slot array in insertion order; removal tombstones a
// slot and the array is compacted (order preserved) once dead slots outnumber
// live ones and no iteration is in progress.
type Table struct {
	ids       []EntityId
	values    []Attrs
	filled    []bool
	index     *intmap.Map[EntityId, int]
	live      int
	iterating int
}

func newTable() *Table {
	return &Table{
		index: intmap.New[EntityId, int](64),
	}
}

// emptyTable is returned for unknown kinds. It is never mutated.
var emptyTable = newTable()

// Len returns the number of entities holding this component.
func (t *Table) Len() int {
	return t.live
}

// Get returns the value stored for id.
func (t *Table) Get(id EntityId) (Attrs, bool) {
	slot, ok := t.index.Get(id)
	if !ok {
		return nil, false
	}
	return t.values[slot], true
}

// Has reports whether id holds this component.
func (t *Table) Has(id EntityId) bool {
	_, ok := t.index.Get(id)
	return ok
}

// All iterates the table in insertion order. Values removed during iteration
// are skipped; values added during iteration are not visited.
func (t *Table) All() iter.Seq2[EntityId, Attrs] {
	return func(yield func(EntityId, Attrs) bool) {
		if t.live == 0 {
			return
		}

		t.iterating++
		defer t.endIteration()

		n := len(t.ids)
		for i := 0; i < n; i++ {
			if !t.filled[i] {
				continue
			}
			if !yield(t.ids[i], t.values[i]) {
				return
			}
		}
	}
}

// Ids returns a snapshot of the ids in insertion order.
func (t *Table) Ids() []EntityId {
	out := make([]EntityId, 0, t.live)
	for i, id := range t.ids {
		if t.filled[i] {
			out = append(out, id)
		}
	}
	return out
}

// set stores value for id, overwriting any earlier value in place.
func (t *Table) set(id EntityId, value Attrs) {
	if slot, ok := t.index.Get(id); ok {
		t.values[slot] = value
		return
	}

	t.ids = append(t.ids, id)
	t.values = append(t.values, value)
	t.filled = append(t.filled, true)
	t.index.Put(id, len(t.ids)-1)
	t.live++
}

// remove deletes the value for id and reports whether one existed.
func (t *Table) remove(id EntityId) bool {
	slot, ok := t.index.Get(id)
	if !ok {
		return false
	}

	t.filled[slot] = false
	t.values[slot] = nil
	t.index.Del(id)
	t.live--

	if t.iterating == 0 {
		t.maybeCompact()
	}
	return true
}

func (t *Table) endIteration() {
	t.iterating--
	if t.iterating == 0 {
		t.maybeCompact()
	}
}

func (t *Table) maybeCompact() {
	dead := len(t.ids) - t.live
	if dead < compactMinDead || dead <= t.live {
		return
	}
	t.compact()
}

// compact drops dead slots, keeping live values in their relative order.
func (t *Table) compact() {
	write := 0
	for read := range t.ids {
		if !t.filled[read] {
			continue
		}
		t.ids[write] = t.ids[read]
		t.values[write] = t.values[read]
		t.filled[write] = true
		t.index.Put(t.ids[write], write)
		write++
	}

	clear(t.values[write:])
	t.ids = t.ids[:write]
	t.values = t.values[:write]
	t.filled = t.filled[:write]
}
