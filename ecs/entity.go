package ecs

// EntityId is an opaque entity identifier. An entity has no data of its own;
// it exists for as long as at least one component is stored under its id.
type EntityId uint64

// Allocator hands out strictly increasing entity ids. Ids are never recycled,
// so a stale id held by a system can never alias a newer entity.
type Allocator struct {
	last EntityId
}

// Next returns a fresh id. The first id issued by a zero Allocator is 1.
func (a *Allocator) Next() EntityId {
	a.last++
	return a.last
}

// Last returns the most recently issued id, or 0 if none was issued.
func (a *Allocator) Last() EntityId {
	return a.last
}
