package ecs

import "maps"

// Attrs is a loosely typed attribute bag. Component values, system options and
// insert payloads are all expressed as Attrs so plugins (including scripted
// ones) can exchange data without sharing Go types.
type Attrs map[string]any

// Merge returns a new bag holding base overlaid with over. Keys present in over
// win; keys only present in base fall back to base. The merge is shallow.
func Merge(base, over Attrs) Attrs {
	out := make(Attrs, len(base)+len(over))
	maps.Copy(out, base)
	maps.Copy(out, over)
	return out
}

// Clone returns a shallow copy of the bag. A nil bag clones to an empty one.
func (a Attrs) Clone() Attrs {
	out := make(Attrs, len(a))
	maps.Copy(out, a)
	return out
}

// Float returns the value at key as a float64, or def when absent or non-numeric.
func (a Attrs) Float(key string, def float64) float64 {
	if f, ok := toFloat(a[key]); ok {
		return f
	}
	return def
}

// Int returns the value at key as an int, or def when absent or non-numeric.
func (a Attrs) Int(key string, def int) int {
	if f, ok := toFloat(a[key]); ok {
		return int(f)
	}
	return def
}

// String returns the value at key as a string, or def when absent.
func (a Attrs) String(key string, def string) string {
	if s, ok := a[key].(string); ok {
		return s
	}
	return def
}

// Bool returns the value at key as a bool, or def when absent.
func (a Attrs) Bool(key string, def bool) bool {
	if b, ok := a[key].(bool); ok {
		return b
	}
	return def
}

// Bag returns the nested bag at key. Both Attrs and map[string]any values are
// accepted, since decoders (TOML, YAML, Lua) produce the latter.
func (a Attrs) Bag(key string) (Attrs, bool) {
	switch v := a[key].(type) {
	case Attrs:
		return v, true
	case map[string]any:
		return Attrs(v), true
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// Config is the resolved configuration of one system instance. It always
// carries the system kind under "name".
type Config map[string]any

// Name returns the system kind name this instance resolves against.
func (c Config) Name() string {
	s, _ := c["name"].(string)
	return s
}

// Instance returns the optional instance alias, used to address one of
// several instances of the same kind through CallSystem.
func (c Config) Instance() string {
	s, _ := c["instance"].(string)
	return s
}

// Attrs views the configuration as an attribute bag for typed reads.
func (c Config) Attrs() Attrs {
	return Attrs(c)
}

func (c Config) Float(key string, def float64) float64 { return Attrs(c).Float(key, def) }
func (c Config) Int(key string, def int) int           { return Attrs(c).Int(key, def) }
func (c Config) String(key string, def string) string  { return Attrs(c).String(key, def) }
func (c Config) Bool(key string, def bool) bool        { return Attrs(c).Bool(key, def) }

// Bag is the component payload for one entity: component kind name to the
// attributes passed to that kind's Create.
type Bag map[string]Attrs
