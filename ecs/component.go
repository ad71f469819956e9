package ecs

// ComponentKind describes one facet of an entity. Defaults produces the
// baseline value and Create merges caller supplied attributes over it.
type ComponentKind interface {
	Defaults() Attrs
	Create(attrs Attrs) Attrs
}

// Component is the stock ComponentKind: a defaults function plus an optional
// hook run on the merged value for validation or derived fields.
type Component struct {
	defaults func() Attrs
	hook     func(Attrs) Attrs
}

// NewComponent creates a component kind with the given defaults. A nil
// defaults function yields an empty baseline.
func NewComponent(defaults func() Attrs) *Component {
	return &Component{defaults: defaults}
}

// WithCreate installs a hook that receives the merged value and returns the
// value to store.
func (c *Component) WithCreate(hook func(merged Attrs) Attrs) *Component {
	c.hook = hook
	return c
}

// Defaults returns a fresh baseline value.
func (c *Component) Defaults() Attrs {
	if c.defaults == nil {
		return Attrs{}
	}
	return c.defaults().Clone()
}

// Create returns the defaults overlaid with attrs. Create(nil) equals Defaults().
func (c *Component) Create(attrs Attrs) Attrs {
	merged := Merge(c.Defaults(), attrs)
	if c.hook != nil {
		return c.hook(merged)
	}
	return merged
}
