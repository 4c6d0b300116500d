package world

import (
	"go.uber.org/zap"

	"github.com/wograld/server/internal/object"
)

// PoolStats is a snapshot of the arena counters.
type PoolStats struct {
	Allocated uint64 // records handed out over the World's lifetime
	Released  uint64 // records returned
	Live      int
	Free      int
	Capacity  int
}

// Stats reports arena usage. Allocated-Released always equals Live.
func (w *World) Stats() PoolStats {
	return PoolStats{
		Allocated: w.pool.Allocated(),
		Released:  w.pool.Released(),
		Live:      w.pool.Live(),
		Free:      w.pool.Free(),
		Capacity:  w.pool.Capacity(),
	}
}

func (w *World) slot(id ObjectID) *Object {
	idx := int(id.Index())
	return &w.chunks[idx/w.opts.PoolBatch][idx%w.opts.PoolBatch]
}

// Allocate returns a cleared, removed record with a fresh tag. It never
// fails; the arena grows one batch at a time.
func (w *World) Allocate() *Object {
	id := w.pool.Create()
	for int(id.Index()) >= len(w.chunks)*w.opts.PoolBatch {
		w.chunks = append(w.chunks, make([]Object, w.opts.PoolBatch))
	}
	o := w.slot(id)
	*o = Object{}
	o.id = id
	w.count++
	if w.count == 0 {
		w.log.Warn("object tag counter wrapped")
		w.count = 1
	}
	o.Tag = w.count
	o.Set(object.FlagRemoved)
	return o
}

// Obj resolves a handle. Stale or zero handles resolve to nil.
func (w *World) Obj(id ObjectID) *Object {
	if !w.pool.Alive(id) {
		return nil
	}
	return w.slot(id)
}

// WasDestroyed reports whether the record o pointed at when its tag was
// tag has since been freed or recycled.
func WasDestroyed(o *Object, tag uint32) bool {
	return o == nil || o.Tag != tag || o.Freed()
}

// Free releases o (and its other body parts) back to the pool. Its
// inventory is dropped where o lies, unless the space blocks everything,
// the map is not resident or the item must not survive its owner.
func (w *World) Free(o *Object) error {
	return w.free(o, false)
}

// FreeTree releases o together with everything it contains.
func (w *World) FreeTree(o *Object) error {
	return w.free(o, true)
}

func (w *World) free(o *Object, freeInventory bool) error {
	if w.fault != nil {
		return w.fault
	}
	if o == nil {
		return w.violation("free", nil, "free of nil object")
	}
	if o.Freed() {
		return w.violation("free", o, "object freed twice")
	}
	if !o.Removed() {
		return w.violation("free", o, "free of object still in play")
	}
	if o.Has(object.FlagFriendly) {
		w.log.Debug("freeing friendly object", w.objFields(o)...)
	}

	if more := w.Obj(o.more); more != nil {
		if err := w.free(more, freeInventory); err != nil {
			return err
		}
		o.more = 0
	}

	if !o.inv.IsZero() {
		if err := w.disposeInventory(o, freeInventory); err != nil {
			return err
		}
	}

	o.Speed = 0
	w.UpdateSpeed(o)

	w.clearOwnerLink(o)
	w.releaseAttrs(&o.Attrs)
	w.registry.RemoveAll(o.id)

	o.Set(object.FlagFreed)
	o.Tag = 0
	o.m = nil
	o.above, o.below, o.env, o.inv, o.head = 0, 0, 0, 0, 0
	o.container, o.enemy = 0, 0
	if !w.pool.Destroy(o.id) {
		return w.violation("free", o, "arena refused release of slot %d", o.id.Index())
	}
	return nil
}

func (w *World) disposeInventory(o *Object, freeAll bool) error {
	m := o.m
	drop := !freeAll && m != nil && m.Resident() && m.inBounds(o.X, o.Y) &&
		w.MoveBlock(m, o.X, o.Y) != object.MoveAll

	for item := w.Obj(o.inv); item != nil; {
		next := w.Obj(item.below)
		if err := w.Remove(item); err != nil {
			return err
		}
		keep := drop && !item.Has(object.FlagStartEquip) && !item.Has(object.FlagNoDrop) &&
			item.Type != object.TypeRune && item.Type != object.TypeTrap && !item.Has(object.FlagIsTemplate)
		if keep {
			item.X, item.Y = o.X, o.Y
			if _, err := w.InsertInMap(item, m, nil, 0); err != nil {
				return err
			}
		} else if err := w.free(item, freeAll); err != nil {
			return err
		}
		item = next
	}
	return nil
}

// releaseAttrs drops every string reference held by a.
func (w *World) releaseAttrs(a *Attrs) {
	for _, h := range a.strings() {
		w.strs.Release(*h)
		*h = zeroHandle
	}
	for _, kv := range a.KeyValues {
		w.strs.Release(kv.Key)
		w.strs.Release(kv.Value)
	}
	a.KeyValues = nil
}

// retainAttrs takes a reference on every string a points at and gives a a
// private copy of its key/value list.
func (w *World) retainAttrs(a *Attrs) {
	for _, h := range a.strings() {
		w.strs.AddRef(*h)
	}
	if len(a.KeyValues) > 0 {
		kv := make(object.KeyValues, len(a.KeyValues))
		for i, e := range a.KeyValues {
			kv[i] = object.KeyValue{Key: w.strs.AddRef(e.Key), Value: w.strs.AddRef(e.Value)}
		}
		a.KeyValues = kv
	}
}

// FreeCount is the number of records waiting for reuse.
func (w *World) FreeCount() int { return w.pool.Free() }

// LiveCount is the number of records in use.
func (w *World) LiveCount() int { return w.pool.Live() }

// EachObject visits every live object in arena order.
func (w *World) EachObject(fn func(*Object) bool) {
	for _, chunk := range w.chunks {
		for i := range chunk {
			o := &chunk[i]
			if o.Tag == 0 || o.Freed() {
				continue
			}
			if !fn(o) {
				return
			}
		}
	}
}

// FindObject returns the live object with the given tag.
func (w *World) FindObject(tag uint32) *Object {
	var found *Object
	if tag == 0 {
		return nil
	}
	w.EachObject(func(o *Object) bool {
		if o.Tag == tag {
			found = o
			return false
		}
		return true
	})
	return found
}

// FindObjectByName returns the first live object named name.
func (w *World) FindObjectByName(name string) *Object {
	h, ok := w.strs.Find(name)
	if !ok {
		return nil
	}
	var found *Object
	w.EachObject(func(o *Object) bool {
		if o.Name == h {
			found = o
			return false
		}
		return true
	})
	return found
}

func (w *World) debugObj(msg string, o *Object, extra ...zap.Field) {
	w.log.Debug(msg, append(w.objFields(o), extra...)...)
}
