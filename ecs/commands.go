package ecs

// Commands buffers structural changes made by systems while tables are being
// iterated. The scheduler flushes it after every update step and draw pass.
type Commands struct {
	inserts []Bag
	deletes []EntityId
	adds    []addComponentCommand
	removes []removeComponentCommand
	defers  []func()
}

func newCommands() *Commands {
	return &Commands{}
}

type addComponentCommand struct {
	entity EntityId
	kind   string
	attrs  Attrs
}

type removeComponentCommand struct {
	entity EntityId
	kind   string
}

// Defer queues a function to run after the other commands are applied.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Insert queues one entity per bag.
func (c *Commands) Insert(bags ...Bag) {
	c.inserts = append(c.inserts, bags...)
}

// Destroy queues the removal of every component of entity.
func (c *Commands) Destroy(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues a component addition.
func (c *Commands) AddComponent(entity EntityId, kind string, attrs Attrs) {
	c.adds = append(c.adds, addComponentCommand{
		entity: entity,
		kind:   kind,
		attrs:  attrs,
	})
}

// RemoveComponent queues a component removal.
func (c *Commands) RemoveComponent(entity EntityId, kind string) {
	c.removes = append(c.removes, removeComponentCommand{
		entity: entity,
		kind:   kind,
	})
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	return len(c.inserts) + len(c.deletes) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush applies all queued commands to w and resets the buffer. Destroys run
// first and suppress adds and removes for the same entity.
func (c *Commands) Flush(w *World) {
	if c.Len() == 0 {
		return
	}

	deleted := make(map[EntityId]bool, len(c.deletes))
	for _, id := range c.deletes {
		w.Destroy(id)
		deleted[id] = true
	}

	for _, cmd := range c.removes {
		if !deleted[cmd.entity] {
			w.RemoveComponent(cmd.entity, cmd.kind)
		}
	}

	for _, cmd := range c.adds {
		if !deleted[cmd.entity] {
			w.AddComponent(cmd.entity, cmd.kind, cmd.attrs)
		}
	}

	if len(c.inserts) > 0 {
		w.Insert(c.inserts...)
	}

	// Deferred functions may queue further commands; they land in the next flush.
	defers := c.defers
	c.defers = nil

	clear(c.inserts)
	c.inserts = c.inserts[:0]
	c.deletes = c.deletes[:0]
	clear(c.adds)
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]

	for _, fn := range defers {
		fn()
	}
}
