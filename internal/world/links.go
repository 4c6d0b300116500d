package world

import "github.com/wograld/server/internal/object"

func (w *World) Above(o *Object) *Object { return w.Obj(o.above) }
func (w *World) Below(o *Object) *Object { return w.Obj(o.below) }
func (w *World) Env(o *Object) *Object   { return w.Obj(o.env) }
func (w *World) Inv(o *Object) *Object   { return w.Obj(o.inv) }
func (w *World) More(o *Object) *Object  { return w.Obj(o.more) }

// Head returns the head of o's body, or o itself.
func (w *World) Head(o *Object) *Object {
	if h := w.Obj(o.head); h != nil {
		return h
	}
	return o
}

// Container returns the container a player has open.
func (w *World) Container(o *Object) *Object { return w.Obj(o.container) }

// Parts returns o's body from the head down.
func (w *World) Parts(o *Object) []*Object {
	var parts []*Object
	for p := w.Head(o); p != nil; p = w.Obj(p.more) {
		parts = append(parts, p)
	}
	return parts
}

// Inventory returns the direct contents of o, most recently added first.
func (w *World) Inventory(o *Object) []*Object {
	var items []*Object
	for it := w.Obj(o.inv); it != nil; it = w.Obj(it.below) {
		items = append(items, it)
	}
	return items
}

// Outermost walks up the containment chain to the top-level object.
func (w *World) Outermost(o *Object) *Object {
	for env := w.Obj(o.env); env != nil; env = w.Obj(o.env) {
		o = env
	}
	return o
}

// PlayerInv returns the player whose inventory (at any depth) holds o,
// or o itself when o is a player.
func (w *World) PlayerInv(o *Object) *Object {
	for ; o != nil; o = w.Obj(o.env) {
		if o.Type == object.TypePlayer {
			return o
		}
	}
	return nil
}

// OpenedBy returns a player that has container open, if any.
func (w *World) OpenedBy(container *Object) *Object {
	var who *Object
	w.EachPlayer(func(pl *Object, _ *Player) {
		if who == nil && pl.container == container.id {
			who = pl
		}
	})
	return who
}

// Stack returns the cell stack at (x, y) from bottom to top.
func (w *World) Stack(m *Map, x, y int) []*Object {
	var objs []*Object
	for o := w.MapBottom(m, x, y); o != nil; o = w.Obj(o.above) {
		objs = append(objs, o)
	}
	return objs
}

// SetEnemy records e as o's enemy; the link goes stale when e is freed.
func (w *World) SetEnemy(o, e *Object) {
	if e == nil {
		o.enemy, o.enemyTag = 0, 0
		return
	}
	o.enemy, o.enemyTag = e.id, e.Tag
}

func (w *World) Enemy(o *Object) *Object {
	e := w.Obj(o.enemy)
	if e == nil || e.Tag != o.enemyTag {
		o.enemy, o.enemyTag = 0, 0
		return nil
	}
	return e
}
