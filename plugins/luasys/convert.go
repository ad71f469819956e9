package luasys

import (
	"reflect"

	lua "github.com/yuin/gopher-lua"

	"github.com/plus3/tickloop/ecs"
)

// toLua converts a Go value for a script. Attribute bags become live proxies,
// so writes from Lua land in the stored component. Other maps and slices are
// copied into tables. Anything else travels as opaque userdata.
func (e *Engine) toLua(v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return x
	case bool:
		return lua.LBool(x)
	case string:
		return lua.LString(x)
	case ecs.EntityId:
		return lua.LNumber(x)
	case ecs.Attrs:
		return e.attrsValue(x)
	case map[string]any:
		return e.attrsValue(ecs.Attrs(x))
	case error:
		return lua.LString(x.Error())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())
	case reflect.String:
		return lua.LString(rv.String())
	case reflect.Bool:
		return lua.LBool(rv.Bool())
	case reflect.Slice, reflect.Array:
		t := e.vm.NewTable()
		for i := range rv.Len() {
			t.Append(e.toLua(rv.Index(i).Interface()))
		}
		return t
	case reflect.Map:
		t := e.vm.NewTable()
		iter := rv.MapRange()
		for iter.Next() {
			t.RawSet(e.toLua(iter.Key().Interface()), e.toLua(iter.Value().Interface()))
		}
		return t
	}

	ud := e.vm.NewUserData()
	ud.Value = v
	return ud
}

// fromLua converts a script value to Go. Numbers become float64, tables
// become []any when they are pure arrays and map[string]any otherwise, and
// userdata yields the Go value it wraps.
func fromLua(v lua.LValue) any {
	switch x := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(x)
	case lua.LNumber:
		return float64(x)
	case lua.LString:
		return string(x)
	case *lua.LUserData:
		return x.Value
	case *lua.LTable:
		if n := x.Len(); n > 0 && countKeys(x) == n {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, fromLua(x.RawGetInt(i)))
			}
			return out
		}
		return tableMap(x)
	}
	return v
}

func tableMap(t *lua.LTable) map[string]any {
	out := map[string]any{}
	t.ForEach(func(k, v lua.LValue) {
		out[k.String()] = fromLua(v)
	})
	return out
}

func countKeys(t *lua.LTable) int {
	n := 0
	t.ForEach(func(lua.LValue, lua.LValue) { n++ })
	return n
}

// toBag reads an insert payload: a table of component kind to attributes.
func toBag(v lua.LValue) (ecs.Bag, bool) {
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil, false
	}
	bag := ecs.Bag{}
	t.ForEach(func(k, v lua.LValue) {
		switch attrs := fromLua(v).(type) {
		case ecs.Attrs:
			bag[k.String()] = attrs.Clone()
		case map[string]any:
			bag[k.String()] = ecs.Attrs(attrs)
		default:
			bag[k.String()] = nil
		}
	})
	return bag, true
}
