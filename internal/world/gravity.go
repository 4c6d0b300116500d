package world

import "github.com/wograld/server/internal/object"

// A map can have one map stacked above and one below it, sharing the same
// coordinate grid. Things that can fall (players, transports, creatures
// and rollable objects that are not flying) drop to the map below when
// their square has no floor, as long as the square below can take them.

func gravityCandidate(o *Object) bool {
	if o.MoveType.Flying() {
		return false
	}
	return o.Type == object.TypePlayer || o.Type == object.TypeTransport ||
		o.Has(object.FlagAlive) || o.Has(object.FlagCanRoll)
}

// hasFloor reports whether o's square holds a floor that is not part of o.
func (w *World) hasFloor(o *Object) bool {
	head := w.Head(o)
	for t := w.MapBottom(o.m, o.X, o.Y); t != nil; t = w.Obj(t.above) {
		if w.Head(t) == head {
			continue
		}
		if t.Has(object.FlagIsFloor) || t.Has(object.FlagOverlayFloor) {
			return true
		}
	}
	return false
}

// ApplyGravity lets o fall through floorless squares, one map at a time,
// until it lands on a floor or the way down is closed. It reports whether
// o fell at all.
func (w *World) ApplyGravity(o *Object) bool {
	if o == nil {
		return false
	}
	o = w.Head(o)
	if !gravityCandidate(o) || !o.env.IsZero() || o.Removed() || o.m == nil {
		return false
	}
	fell := false
	for i := 0; i < w.opts.MaxFallDepth; i++ {
		if w.hasFloor(o) || !w.dropLevel(o) {
			break
		}
		fell = true
		if o.Removed() || o.m == nil {
			break
		}
	}
	return fell
}

// fallThrough drops o one level whatever is under its feet, then lets
// gravity carry on from there.
func (w *World) fallThrough(o *Object) {
	o = w.Head(o)
	if w.dropLevel(o) && !o.Removed() {
		w.ApplyGravity(o)
	}
}

// dropLevel moves o to the same square of the map below, if it can go.
func (w *World) dropLevel(o *Object) bool {
	lower := o.m.Lower()
	if !lower.Resident() || !lower.inBounds(o.X, o.Y) {
		return false
	}
	if w.ObBlocked(o, lower, o.X, o.Y) != BlockNone {
		return false
	}
	tag := o.Tag
	survived, err := w.relocate(o, lower, o.X, o.Y, nil)
	if err != nil {
		return false
	}
	return survived && !WasDestroyed(o, tag)
}

// TryElevate lifts o to the same square of the map above. The square must
// show nothing on any drawing layer and let o's body in.
func (w *World) TryElevate(o *Object) bool {
	o = w.Head(o)
	if !gravityCandidate(o) || o.m == nil || !o.env.IsZero() {
		return false
	}
	upper := o.m.Upper()
	if !upper.Resident() || !upper.inBounds(o.X, o.Y) {
		return false
	}
	if w.OccupiedLayers(upper, o.X, o.Y) > 0 || w.ObBlocked(o, upper, o.X, o.Y) != BlockNone {
		return false
	}
	survived, err := w.relocate(o, upper, o.X, o.Y, nil)
	return err == nil && survived
}

// CheckAboveForGravity drops whatever stands without a floor on the square
// above (x, y) of m, typically after m's square changed.
func (w *World) CheckAboveForGravity(m *Map, x, y int) {
	upper := m.Upper()
	if !upper.Resident() || !upper.inBounds(x, y) {
		return
	}
	for _, o := range w.Stack(upper, x, y) {
		if o.Freed() || o.Removed() || !o.IsHead() || o.m != upper {
			continue
		}
		if gravityCandidate(o) {
			w.ApplyGravity(o)
		}
	}
}
