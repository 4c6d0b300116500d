package world

import (
	"github.com/wograld/server/internal/object"
)

// Remove unlinks o from its container or map cell. The whole body of a
// multipart object goes with it. The object keeps its last coordinates and
// map, so it can be put back; walking off a cell fires move-off triggers.
func (w *World) Remove(o *Object) error {
	if w.fault != nil {
		return w.fault
	}
	if o == nil {
		return w.violation("remove", nil, "nil object")
	}
	if o.Freed() {
		return w.violation("remove", o, "object is freed")
	}
	if o.Removed() {
		return w.violation("remove", o, "object already removed")
	}
	if more := w.Obj(o.more); more != nil && !more.Removed() {
		if err := w.Remove(more); err != nil {
			return err
		}
	}
	o.Set(object.FlagRemoved)

	if env := w.Obj(o.env); env != nil {
		return w.removeFromEnv(o, env)
	}
	if o.m == nil {
		return nil
	}
	return w.removeFromMap(o)
}

func (w *World) removeFromEnv(o, env *Object) error {
	w.SubWeight(env, o.Total())
	if above := w.Obj(o.above); above != nil {
		above.below = o.below
	} else {
		env.inv = o.below
	}
	if below := w.Obj(o.below); below != nil {
		below.above = o.above
	}
	outer := w.Outermost(env)
	o.X, o.Y = outer.X, outer.Y
	o.m = outer.m
	o.above, o.below, o.env = 0, 0, 0
	w.notifyItem(env, o, true)
	if pl := w.OpenedBy(o); pl != nil {
		pl.container = 0
	}
	return nil
}

func (w *World) removeFromMap(o *Object) error {
	m, x, y, ok := o.m.Resolve(o.X, o.Y)
	if !ok {
		return w.violation("remove", o, "object on map but outside valid coordinates")
	}
	if m != o.m {
		w.debugObj("object was not on the map it claimed", o)
	}
	o.m, o.X, o.Y = m, x, y
	c := m.cell(x, y)

	if above := w.Obj(o.above); above != nil {
		above.below = o.below
	} else {
		c.top = o.below
	}
	if below := w.Obj(o.below); below != nil {
		below.above = o.above
	} else {
		if c.bottom != o.id {
			return w.violation("remove", o, "cell bottom is not the object being removed")
		}
		c.bottom = o.above
	}
	o.above, o.below = 0, 0
	c.dirty = true

	if m.State == MapSaving {
		return nil
	}

	tag := o.Tag
	walkOff := !o.Has(object.FlagNoApply)
	mt := o.MoveType.Effective()
	for tmp := w.Obj(c.bottom); tmp != nil; {
		next := tmp.above
		if tmp.Type == object.TypePlayer && tmp.container == o.id {
			tmp.container = 0
		}
		if walkOff && mt&tmp.MoveOff != 0 && mt&^tmp.MoveOff&^tmp.MoveBlock == 0 {
			w.moveApply(tmp, o, nil)
			if WasDestroyed(o, tag) {
				w.log.Error("object destroyed while leaving a cell")
				return w.fault
			}
		}
		tmp = w.Obj(next)
	}
	return w.fault
}
