package world

import "github.com/wograld/server/internal/object"

// CopyObject overwrites dst's attributes with src's. dst keeps its links
// and its removed and freed state; string references are taken anew. A
// negative-speed object gets a random head start so copies drift apart.
func (w *World) CopyObject(src, dst *Object) {
	freed, removed := dst.Freed(), dst.Removed()

	w.releaseAttrs(&dst.Attrs)
	dst.Attrs = src.Attrs
	w.retainAttrs(&dst.Attrs)
	dst.Arch = src.Arch
	dst.Flags.Put(object.FlagFreed, freed)
	dst.Flags.Put(object.FlagRemoved, removed)
	dst.owner, dst.ownerTag = src.owner, src.ownerTag

	if src.Speed < 0 {
		dst.SpeedLeft = src.SpeedLeft - float32(w.rng.Intn(200))/100
	}
	w.UpdateSpeed(dst)
}

// Clone makes a removed copy of o's whole body, inventory included. Part
// coordinates come out relative to the head, which sits at (0, 0).
func (w *World) Clone(o *Object) (*Object, error) {
	if w.fault != nil {
		return nil, w.fault
	}
	src := w.Head(o)
	var head, prev *Object
	for part := src; part != nil; part = w.Obj(part.more) {
		tmp := w.Allocate()
		w.CopyObject(part, tmp)
		tmp.X -= src.X
		tmp.Y -= src.Y
		if head == nil {
			head = tmp
		} else {
			tmp.head = head.id
			prev.more = tmp.id
		}
		prev = tmp
	}

	// insert bottom first so the clone's inventory keeps the same order
	items := w.Inventory(src)
	for i := len(items) - 1; i >= 0; i-- {
		c, err := w.Clone(items[i])
		if err != nil {
			return nil, err
		}
		if _, err := w.InsertInto(c, head); err != nil {
			return nil, err
		}
	}
	return head, nil
}

// ArchToObject instantiates one part of an archetype as a removed object.
func (w *World) ArchToObject(at *Archetype) (*Object, error) {
	if w.fault != nil {
		return nil, w.fault
	}
	if at == nil {
		return nil, ErrUnknownArchetype
	}
	o := w.Allocate()
	o.Attrs = at.Clone
	w.retainAttrs(&o.Attrs)
	o.Arch = at
	o.Set(object.FlagRemoved)
	if o.Speed < 0 {
		o.SpeedLeft -= float32(w.rng.Intn(200)) / 100
	}
	w.UpdateSpeed(o)
	return o, nil
}

// CreateArch instantiates every part of at's body, linked head first.
// Parts carry their offset from the head as coordinates.
func (w *World) CreateArch(at *Archetype) (*Object, error) {
	if at == nil {
		return nil, ErrUnknownArchetype
	}
	if at.Head != nil {
		at = at.Head
	}
	var head, prev *Object
	for a := at; a != nil; a = a.More {
		o, err := w.ArchToObject(a)
		if err != nil {
			return nil, err
		}
		if head == nil {
			head = o
		} else {
			o.head = head.id
			prev.more = o.id
		}
		prev = o
	}
	return head, nil
}
