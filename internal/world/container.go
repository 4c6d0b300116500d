package world

import (
	"github.com/wograld/server/internal/core/event"
	"github.com/wograld/server/internal/object"
)

// scaleWeight applies a container's weight reduction.
func scaleWeight(c *Object, weight int64) int64 {
	if c.Type == object.TypeContainer {
		return weight * int64(100-int(c.Stats.Str)) / 100
	}
	return weight
}

// AddWeight adds weight to o's carried load and to every container above
// it, each container reducing what it passes on.
func (w *World) AddWeight(o *Object, weight int32) {
	wt := int64(weight)
	for ; o != nil; o = w.Obj(o.env) {
		wt = scaleWeight(o, wt)
		o.Carrying += int32(wt)
	}
}

// SubWeight undoes AddWeight with the same amount.
func (w *World) SubWeight(o *Object, weight int32) {
	wt := int64(weight)
	for ; o != nil; o = w.Obj(o.env) {
		wt = scaleWeight(o, wt)
		o.Carrying -= int32(wt)
	}
}

// SumWeight recomputes o.Carrying from its inventory, recursively, and
// returns it.
func (w *World) SumWeight(o *Object) int32 {
	var sum int64
	for it := w.Obj(o.inv); it != nil; it = w.Obj(it.below) {
		if it.Nrof > 0 {
			sum += int64(it.Weight) * int64(it.Nrof)
		} else {
			sum += int64(it.Weight) + int64(w.SumWeight(it))
		}
	}
	if o.Type == object.TypeContainer && o.Stats.Str != 0 {
		sum = sum * int64(100-int(o.Stats.Str)) / 100
	}
	o.Carrying = int32(sum)
	return o.Carrying
}

// InsertInto puts removed object o into where's inventory. A stack that
// merges into an existing one is freed and the existing stack returned.
func (w *World) InsertInto(o, where *Object) (*Object, error) {
	if w.fault != nil {
		return nil, w.fault
	}
	if o == nil {
		return nil, w.violation("insert into object", nil, "nil object")
	}
	if where == nil {
		return nil, w.violation("insert into object", o, "nil container")
	}
	if o.Freed() {
		return nil, w.violation("insert into object", o, "object is freed")
	}
	if !o.Removed() {
		return nil, w.violation("insert into object", o, "object is already in play")
	}
	if o.Multipart() {
		return nil, w.violation("insert into object", o, "multipart object cannot be contained")
	}
	if !where.head.IsZero() {
		w.debugObj("insert into body part, using head", where)
		where = w.Head(where)
	}
	if o == where {
		return nil, w.violation("insert into object", o, "object inserted into itself")
	}

	o.Clear(object.FlagRemoved)
	if o.Nrof > 0 {
		for tmp := w.Obj(where.inv); tmp != nil; tmp = w.Obj(tmp.below) {
			if !w.CanMerge(tmp, o) {
				continue
			}
			tmp.Nrof += o.Nrof
			w.AddWeight(where, o.Weight*int32(o.Nrof))
			o.Set(object.FlagRemoved)
			if err := w.free(o, true); err != nil {
				return nil, err
			}
			w.notifyItem(where, tmp, false)
			return tmp, nil
		}
		w.AddWeight(where, o.Weight*int32(o.Nrof))
	} else {
		w.AddWeight(where, o.Weight+o.Carrying)
	}

	o.m = nil
	o.env = where.id
	o.X, o.Y = 0, 0
	o.above = 0
	o.below = where.inv
	if below := w.Obj(o.below); below != nil {
		below.above = o.id
	}
	where.inv = o.id
	w.notifyItem(where, o, false)
	return o, nil
}

// notifyItem tells the player who can see into env about a change to item.
func (w *World) notifyItem(env, item *Object, deleted bool) {
	pl := w.PlayerInv(env)
	if pl == nil {
		pl = w.OpenedBy(env)
	}
	if pl != nil {
		w.notifyPlayer(pl, item, deleted)
	}
}

func (w *World) notifyPlayer(pl, item *Object, deleted bool) {
	event.Emit(w.bus, event.ItemChanged{
		Player:  pl.id,
		Item:    item.id,
		ItemTag: item.Tag,
		Nrof:    item.Nrof,
		Deleted: deleted,
	})
}
