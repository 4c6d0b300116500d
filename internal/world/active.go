package world

import (
	"math"

	"github.com/wograld/server/internal/object"
)

// MinActiveSpeed is the slowest speed that still gets an object ticked.
const MinActiveSpeed = 0.00001

type activeRef struct {
	id  ObjectID
	tag uint32
}

// UpdateSpeed puts o on the active list when it moves fast enough to act,
// and takes it off otherwise.
func (w *World) UpdateSpeed(o *Object) {
	if o.Freed() && o.Speed != 0 {
		w.log.Error("freed object has speed", w.objFields(o)...)
		o.Speed = 0
	}
	if math.Abs(float64(o.Speed)) > MinActiveSpeed {
		if o.onActive {
			return
		}
		o.activePrev = 0
		o.activeNext = w.active
		if next := w.Obj(w.active); next != nil {
			next.activePrev = o.id
		}
		w.active = o.id
		o.onActive = true
		return
	}
	w.RemoveFromActive(o)
}

// RemoveFromActive takes o off the active list without touching its speed.
func (w *World) RemoveFromActive(o *Object) {
	if !o.onActive {
		return
	}
	if prev := w.Obj(o.activePrev); prev != nil {
		prev.activeNext = o.activeNext
	} else {
		w.active = o.activeNext
	}
	if next := w.Obj(o.activeNext); next != nil {
		next.activePrev = o.activePrev
	}
	o.activeNext, o.activePrev = 0, 0
	o.onActive = false
}

// ActiveCount is the length of the active list.
func (w *World) ActiveCount() int {
	n := 0
	for o := w.Obj(w.active); o != nil; o = w.Obj(o.activeNext) {
		n++
	}
	return n
}

// ProcessActive gives every active object its share of one tick: an
// object acts each time its accumulated speed passes one. Objects added
// while the tick runs wait for the next one.
func (w *World) ProcessActive() error {
	if w.fault != nil {
		return w.fault
	}
	var refs []activeRef
	for o := w.Obj(w.active); o != nil; o = w.Obj(o.activeNext) {
		refs = append(refs, activeRef{id: o.id, tag: o.Tag})
	}
	for _, r := range refs {
		o := w.Obj(r.id)
		if o == nil || WasDestroyed(o, r.tag) || !o.onActive {
			continue
		}
		if o.Removed() {
			w.debugObj("removed object on the active list", o)
			w.RemoveFromActive(o)
			continue
		}
		if o.env.IsZero() && o.m != nil && !o.m.Resident() {
			continue
		}
		if o.SpeedLeft > 0 {
			o.SpeedLeft--
			w.process(o)
			if WasDestroyed(o, r.tag) {
				continue
			}
		}
		o.SpeedLeft += float32(math.Abs(float64(o.Speed)))
		if w.fault != nil {
			return w.fault
		}
	}
	return w.fault
}

func (w *World) process(o *Object) {
	if w.hooks.Process != nil && w.hooks.Process.Process(w, o) {
		return
	}
	switch o.Type {
	case object.TypeDeepSwamp:
		w.moveDeepSwamp(o)
	}
}
