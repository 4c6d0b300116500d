package scripting

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/wograld/server/internal/object"
	"github.com/wograld/server/internal/world"
)

const objectTypeName = "wograld.object"

// objRef is what a script holds: the handle and the tag it had when it
// was handed out, so a recycled record is never mistaken for the old one.
type objRef struct {
	id  world.ObjectID
	tag uint32
}

func (e *Engine) registerObjectType() {
	mt := e.vm.NewTypeMetatable(objectTypeName)
	e.vm.SetField(mt, "__index", e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"valid":       e.objValid,
		"tag":         e.objTag,
		"get":         e.objGet,
		"set":         e.objSet,
		"flag":        e.objFlag,
		"set_flag":    e.objSetFlag,
		"read_key":    e.objReadKey,
		"write_key":   e.objWriteKey,
		"remove":      e.objRemove,
		"free":        e.objFree,
		"move":        e.objMove,
		"apply":       e.objApply,
		"pickup":      e.objPickup,
		"drop":        e.objDrop,
		"teleport":    e.objTeleport,
		"insert_map":  e.objInsertMap,
		"insert_into": e.objInsertInto,
		"head":        e.objHead,
		"enemy":       e.objEnemy,
		"more":        e.objMore,
		"tell":        e.objTell,
	}))
	e.vm.SetField(mt, "__eq", e.vm.NewFunction(func(L *lua.LState) int {
		a, _ := L.CheckUserData(1).Value.(objRef)
		b, _ := L.CheckUserData(2).Value.(objRef)
		L.Push(lua.LBool(a == b))
		return 1
	}))
	e.vm.SetField(mt, "__tostring", e.vm.NewFunction(func(L *lua.LState) int {
		ref, _ := L.CheckUserData(1).Value.(objRef)
		if o := e.resolve(ref); o != nil {
			L.Push(lua.LString(fmt.Sprintf("object %d (%s)", o.Tag, o.Name.String())))
		} else {
			L.Push(lua.LString(fmt.Sprintf("object %d (gone)", ref.tag)))
		}
		return 1
	}))
}

func (e *Engine) registerModule() {
	mod := e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"find":       e.modFind,
		"find_named": e.modFindNamed,
		"create":     e.modCreate,
		"tell_all":   e.modTellAll,
		"log":        e.modLog,
	})
	e.vm.SetGlobal("wograld", mod)
}

// pushObject wraps o for Lua; nil becomes nil.
func (e *Engine) pushObject(o *world.Object) lua.LValue {
	if o == nil {
		return lua.LNil
	}
	ud := e.vm.NewUserData()
	ud.Value = objRef{id: o.ID(), tag: o.Tag}
	e.vm.SetMetatable(ud, e.vm.GetTypeMetatable(objectTypeName))
	return ud
}

func (e *Engine) resolve(ref objRef) *world.Object {
	o := e.w.Obj(ref.id)
	if world.WasDestroyed(o, ref.tag) {
		return nil
	}
	return o
}

// checkObject returns the live object at stack position n or raises.
func (e *Engine) checkObject(L *lua.LState, n int) *world.Object {
	ud := L.CheckUserData(n)
	ref, ok := ud.Value.(objRef)
	if !ok {
		L.ArgError(n, "object expected")
		return nil
	}
	o := e.resolve(ref)
	if o == nil {
		L.ArgError(n, "object no longer exists")
		return nil
	}
	return o
}

func (e *Engine) optObject(L *lua.LState, n int) *world.Object {
	if L.Get(n) == lua.LNil {
		return nil
	}
	return e.checkObject(L, n)
}

func (e *Engine) checkProperty(L *lua.LState, n int) world.Property {
	name := L.CheckString(n)
	p, ok := world.PropertyByName(name)
	if !ok {
		L.ArgError(n, "unknown property "+name)
	}
	return p
}

func (e *Engine) checkFlag(L *lua.LState, n int) object.Flag {
	name := L.CheckString(n)
	fl, ok := object.FlagByName(name)
	if !ok {
		L.ArgError(n, "unknown flag "+name)
	}
	return fl
}

// toLua converts a property value.
func (e *Engine) toLua(v world.Value) lua.LValue {
	switch v.Kind {
	case world.KindInt:
		return lua.LNumber(v.Int)
	case world.KindFloat:
		return lua.LNumber(v.Float)
	case world.KindString:
		return lua.LString(v.Str)
	default:
		return e.pushObject(v.Obj)
	}
}

// fromLua converts argument n into a property value. Whole numbers come
// through as integers; the world accepts them for float properties.
func (e *Engine) fromLua(L *lua.LState, n int) world.Value {
	switch lv := L.Get(n).(type) {
	case lua.LNumber:
		f := float64(lv)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return world.IntValue(int64(f))
		}
		return world.FloatValue(f)
	case lua.LString:
		return world.StringValue(string(lv))
	case *lua.LUserData:
		return world.ObjectValue(e.checkObject(L, n))
	case *lua.LNilType:
		return world.ObjectValue(nil)
	default:
		L.ArgError(n, "number, string or object expected")
		return world.Value{}
	}
}

// pushResult pushes o, or nil and a message when err is set.
func (e *Engine) pushResult(L *lua.LState, o *world.Object, err error) int {
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(e.pushObject(o))
	return 1
}

// raiseInternal turns an engine fault into a Lua error. Other failures are
// left for the caller to return to the script.
func raiseInternal(L *lua.LState, op string, err error) bool {
	if !world.IsInternal(err) {
		return false
	}
	L.RaiseError("%s: %v", op, err)
	return true
}

func (e *Engine) objValid(L *lua.LState) int {
	ref, _ := L.CheckUserData(1).Value.(objRef)
	L.Push(lua.LBool(e.resolve(ref) != nil))
	return 1
}

func (e *Engine) objTag(L *lua.LState) int {
	ref, _ := L.CheckUserData(1).Value.(objRef)
	L.Push(lua.LNumber(ref.tag))
	return 1
}

func (e *Engine) objGet(L *lua.LState) int {
	o := e.checkObject(L, 1)
	v, err := e.w.GetProperty(o, e.checkProperty(L, 2))
	if err != nil {
		L.RaiseError("get: %v", err)
		return 0
	}
	L.Push(e.toLua(v))
	return 1
}

func (e *Engine) objSet(L *lua.LState) int {
	o := e.checkObject(L, 1)
	p := e.checkProperty(L, 2)
	if err := e.w.SetProperty(o, p, e.fromLua(L, 3)); err != nil {
		L.RaiseError("set %s: %v", p, err)
	}
	return 0
}

func (e *Engine) objFlag(L *lua.LState) int {
	o := e.checkObject(L, 1)
	L.Push(lua.LBool(e.w.GetFlag(o, e.checkFlag(L, 2))))
	return 1
}

func (e *Engine) objSetFlag(L *lua.LState) int {
	o := e.checkObject(L, 1)
	e.w.SetFlag(o, e.checkFlag(L, 2), L.ToBool(3))
	return 0
}

func (e *Engine) objReadKey(L *lua.LState) int {
	o := e.checkObject(L, 1)
	v, ok := e.w.ReadKey(o, L.CheckString(2))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(v))
	return 1
}

func (e *Engine) objWriteKey(L *lua.LState) int {
	o := e.checkObject(L, 1)
	L.Push(lua.LBool(e.w.WriteKey(o, L.CheckString(2), L.OptString(3, ""), L.ToBool(4))))
	return 1
}

func (e *Engine) objRemove(L *lua.LState) int {
	o := e.checkObject(L, 1)
	if o.Removed() {
		return 0
	}
	raiseInternal(L, "remove", e.w.Remove(o))
	return 0
}

func (e *Engine) objFree(L *lua.LState) int {
	o := e.w.Head(e.checkObject(L, 1))
	if !o.Removed() {
		if raiseInternal(L, "free", e.w.Remove(o)) {
			return 0
		}
	}
	raiseInternal(L, "free", e.w.FreeTree(o))
	return 0
}

func (e *Engine) objMove(L *lua.LState) int {
	o := e.checkObject(L, 1)
	L.Push(lua.LBool(e.w.MoveOb(o, L.CheckInt(2), e.optObject(L, 3))))
	return 1
}

// item:apply(who)
func (e *Engine) objApply(L *lua.LState) int {
	item := e.checkObject(L, 1)
	L.Push(lua.LBool(e.w.Apply(item, e.checkObject(L, 2))))
	return 1
}

// who:pickup(item [, nrof])
func (e *Engine) objPickup(L *lua.LState) int {
	who := e.checkObject(L, 1)
	got, err := e.w.Pickup(who, e.checkObject(L, 2), uint32(L.OptInt(3, 0)))
	if raiseInternal(L, "pickup", err) {
		return 0
	}
	return e.pushResult(L, got, err)
}

// who:drop(item [, nrof])
func (e *Engine) objDrop(L *lua.LState) int {
	who := e.checkObject(L, 1)
	got, err := e.w.Drop(who, e.checkObject(L, 2), uint32(L.OptInt(3, 0)))
	if raiseInternal(L, "drop", err) {
		return 0
	}
	return e.pushResult(L, got, err)
}

// o:teleport(map, x, y) puts o on another map.
func (e *Engine) objTeleport(L *lua.LState) int {
	o := e.checkObject(L, 1)
	if err := e.w.EnterMap(o, L.CheckString(2), L.CheckInt(3), L.CheckInt(4)); err != nil {
		if raiseInternal(L, "teleport", err) {
			return 0
		}
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

// o:insert_map(map, x, y) places a removed object. It returns the object
// that ended up on the map, which is nil if a trigger destroyed it.
func (e *Engine) objInsertMap(L *lua.LState) int {
	o := e.checkObject(L, 1)
	path := L.CheckString(2)
	m := e.w.Map(path)
	if m == nil {
		L.ArgError(2, "unknown map "+path)
		return 0
	}
	got, err := e.w.InsertInMapAt(o, m, nil, 0, L.CheckInt(3), L.CheckInt(4))
	if raiseInternal(L, "insert_map", err) {
		return 0
	}
	return e.pushResult(L, got, err)
}

func (e *Engine) objInsertInto(L *lua.LState) int {
	o := e.checkObject(L, 1)
	got, err := e.w.InsertInto(o, e.checkObject(L, 2))
	if raiseInternal(L, "insert_into", err) {
		return 0
	}
	return e.pushResult(L, got, err)
}

func (e *Engine) objHead(L *lua.LState) int {
	L.Push(e.pushObject(e.w.Head(e.checkObject(L, 1))))
	return 1
}

func (e *Engine) objEnemy(L *lua.LState) int {
	L.Push(e.pushObject(e.w.Enemy(e.checkObject(L, 1))))
	return 1
}

func (e *Engine) objMore(L *lua.LState) int {
	L.Push(e.pushObject(e.w.More(e.checkObject(L, 1))))
	return 1
}

func (e *Engine) objTell(L *lua.LState) int {
	e.w.Tell(e.checkObject(L, 1), "%s", L.CheckString(2))
	return 0
}

func (e *Engine) modFind(L *lua.LState) int {
	L.Push(e.pushObject(e.w.FindObject(uint32(L.CheckInt(1)))))
	return 1
}

func (e *Engine) modFindNamed(L *lua.LState) int {
	L.Push(e.pushObject(e.w.FindObjectByName(L.CheckString(1))))
	return 1
}

func (e *Engine) modCreate(L *lua.LState) int {
	o, err := e.w.NewObject(L.CheckString(1))
	return e.pushResult(L, o, err)
}

func (e *Engine) modTellAll(L *lua.LState) int {
	e.w.TellAll("%s", L.CheckString(1))
	return 0
}

func (e *Engine) modLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}
