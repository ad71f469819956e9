package luasys

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/plus3/tickloop/ecs"
)

const (
	worldType = "tickloop.world"
	attrsType = "tickloop.attrs"
)

func (e *Engine) registerWorld() {
	mt := e.vm.NewTypeMetatable(worldType)
	e.vm.SetField(mt, "__index", e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"get":           e.worldGet,
		"has":           e.worldHas,
		"count":         e.worldCount,
		"each":          e.worldEach,
		"query":         e.worldQuery,
		"insert":        e.worldInsert,
		"destroy":       e.worldDestroy,
		"defer_destroy": e.worldDeferDestroy,
		"add":           e.worldAdd,
		"remove":        e.worldRemove,
		"call":          e.worldCall,
		"log":           e.worldLog,
	}))
}

func (e *Engine) registerAttrs() {
	mt := e.vm.NewTypeMetatable(attrsType)
	e.vm.SetField(mt, "__index", e.vm.NewFunction(e.attrsIndex))
	e.vm.SetField(mt, "__newindex", e.vm.NewFunction(e.attrsNewIndex))
}

// worldValue returns the userdata standing for w, creating it on first use.
func (e *Engine) worldValue(w *ecs.World) *lua.LUserData {
	if ud, ok := e.worlds[w]; ok {
		return ud
	}
	ud := e.vm.NewUserData()
	ud.Value = w
	e.vm.SetMetatable(ud, e.vm.GetTypeMetatable(worldType))
	e.worlds[w] = ud
	return ud
}

// Forget drops the binding for w so it can be garbage collected.
func (e *Engine) Forget(w *ecs.World) {
	delete(e.worlds, w)
}

func (e *Engine) attrsValue(a ecs.Attrs) *lua.LUserData {
	ud := e.vm.NewUserData()
	ud.Value = a
	e.vm.SetMetatable(ud, e.vm.GetTypeMetatable(attrsType))
	return ud
}

func checkWorld(L *lua.LState) *ecs.World {
	ud := L.CheckUserData(1)
	w, ok := ud.Value.(*ecs.World)
	if !ok {
		L.ArgError(1, "world expected")
	}
	return w
}

func checkAttrs(L *lua.LState, n int) ecs.Attrs {
	ud := L.CheckUserData(n)
	a, ok := ud.Value.(ecs.Attrs)
	if !ok {
		L.ArgError(n, "attrs expected")
	}
	return a
}

func checkId(L *lua.LState, n int) ecs.EntityId {
	return ecs.EntityId(L.CheckNumber(n))
}

func (e *Engine) attrsIndex(L *lua.LState) int {
	a := checkAttrs(L, 1)
	L.Push(e.toLua(a[L.CheckString(2)]))
	return 1
}

func (e *Engine) attrsNewIndex(L *lua.LState) int {
	a := checkAttrs(L, 1)
	a[L.CheckString(2)] = fromLua(L.Get(3))
	return 0
}

// world:get(kind, id) returns the component or nil.
func (e *Engine) worldGet(L *lua.LState) int {
	w := checkWorld(L)
	a, ok := w.Get(L.CheckString(2), checkId(L, 3))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(e.attrsValue(a))
	return 1
}

func (e *Engine) worldHas(L *lua.LState) int {
	w := checkWorld(L)
	L.Push(lua.LBool(w.HasComponent(checkId(L, 3), L.CheckString(2))))
	return 1
}

func (e *Engine) worldCount(L *lua.LState) int {
	w := checkWorld(L)
	L.Push(lua.LNumber(w.Table(L.CheckString(2)).Len()))
	return 1
}

// world:each(kind, fn) calls fn(id, component) for every component of kind.
// Returning false from fn stops the walk.
func (e *Engine) worldEach(L *lua.LState) int {
	w := checkWorld(L)
	kind := L.CheckString(2)
	fn := L.CheckFunction(3)

	for id, a := range w.Table(kind).All() {
		L.Push(fn)
		L.Push(lua.LNumber(id))
		L.Push(e.attrsValue(a))
		L.Call(2, 1)
		ret := L.Get(-1)
		L.Pop(1)
		if ret == lua.LFalse {
			break
		}
	}
	return 0
}

// world:query({kinds...}, fn) calls fn(id, c1, c2, ...) for every entity
// holding the required kinds. Kinds ending in "?" are optional and arrive as
// nil when absent.
func (e *Engine) worldQuery(L *lua.LState) int {
	w := checkWorld(L)
	kindsTable := L.CheckTable(2)
	fn := L.CheckFunction(3)

	var kinds []string
	for i := 1; i <= kindsTable.Len(); i++ {
		kinds = append(kinds, kindsTable.RawGetInt(i).String())
	}
	if len(kinds) == 0 {
		L.ArgError(2, "at least one kind expected")
	}

	for id, cs := range w.Query(kinds...).Iter() {
		L.Push(fn)
		L.Push(lua.LNumber(id))
		for _, c := range cs {
			if c == nil {
				L.Push(lua.LNil)
				continue
			}
			L.Push(e.attrsValue(c))
		}
		L.Call(1+len(cs), 1)
		ret := L.Get(-1)
		L.Pop(1)
		if ret == lua.LFalse {
			break
		}
	}
	return 0
}

// world:insert(bag) creates an entity immediately and returns its id.
func (e *Engine) worldInsert(L *lua.LState) int {
	w := checkWorld(L)
	bag, ok := toBag(L.Get(2))
	if !ok {
		L.ArgError(2, "component table expected")
	}
	L.Push(lua.LNumber(w.InsertOne(bag)))
	return 1
}

func (e *Engine) worldDestroy(L *lua.LState) int {
	checkWorld(L).Destroy(checkId(L, 2))
	return 0
}

// world:defer_destroy(id) destroys the entity once the current pass ends.
func (e *Engine) worldDeferDestroy(L *lua.LState) int {
	checkWorld(L).Commands().Destroy(checkId(L, 2))
	return 0
}

func (e *Engine) worldAdd(L *lua.LState) int {
	w := checkWorld(L)
	id := checkId(L, 2)
	kind := L.CheckString(3)

	var attrs ecs.Attrs
	switch v := fromLua(L.Get(4)).(type) {
	case ecs.Attrs:
		attrs = v.Clone()
	case map[string]any:
		attrs = v
	}
	L.Push(lua.LBool(w.AddComponent(id, kind, attrs)))
	return 1
}

func (e *Engine) worldRemove(L *lua.LState) int {
	w := checkWorld(L)
	L.Push(lua.LBool(w.RemoveComponent(checkId(L, 2), L.CheckString(3))))
	return 1
}

// world:call(system, method, ...) is World.CallSystem. Failures are raised
// as Lua errors.
func (e *Engine) worldCall(L *lua.LState) int {
	w := checkWorld(L)
	name := L.CheckString(2)
	method := L.CheckString(3)

	var args []any
	for i := 4; i <= L.GetTop(); i++ {
		args = append(args, fromLua(L.Get(i)))
	}

	ret, err := w.CallSystem(name, method, args...)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(e.toLua(ret))
	return 1
}

// world:log(msg) writes an info entry to the world's logger.
func (e *Engine) worldLog(L *lua.LState) int {
	w := checkWorld(L)
	w.Logger().Info(L.CheckString(2), zap.String("source", "lua"))
	return 0
}
