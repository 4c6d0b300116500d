package world

import (
	"go.uber.org/zap"

	"github.com/wograld/server/internal/object"
)

// InsertFlags modify how InsertInMap places an object.
type InsertFlags uint8

const (
	InsNoMerge         InsertFlags = 1 << iota // never fold into an existing stack
	InsAboveFloorOnly                          // place directly above the floor
	InsNoWalkOn                                // skip move-on triggers
	InsOnTop                                   // place on the very top
	InsBelowOriginator                         // place just below the originator
	InsMapLoad                                 // map load; keep file order
)

// maxApplyDepth bounds trigger recursion (a teleporter landing on a
// teleporter landing on ...).
const maxApplyDepth = 500

// InsertInMap links removed object o into the cell at its coordinates on
// m. Parts of a multipart object are placed first, from their own
// coordinates. The returned object is o, the stack o merged into, or nil
// with a nil error when a trigger destroyed it.
func (w *World) InsertInMap(o *Object, m *Map, originator *Object, flags InsertFlags) (*Object, error) {
	if w.fault != nil {
		return nil, w.fault
	}
	if o == nil {
		return nil, w.violation("insert in map", nil, "nil object")
	}
	if o.Freed() {
		return nil, w.violation("insert in map", o, "object is freed")
	}
	if m == nil {
		return nil, w.violation("insert in map", o, "nil map")
	}
	nm, x, y, ok := m.Resolve(o.X, o.Y)
	if !ok {
		return nil, w.violation("insert in map", o, "(%d, %d) is outside %s", o.X, o.Y, m.Path)
	}
	if !o.Removed() {
		return nil, w.violation("insert in map", o, "object is already in play")
	}
	if flags&InsBelowOriginator != 0 {
		if originator == nil || originator.m != nm || originator.X != x || originator.Y != y {
			return nil, w.violation("insert in map", o, "originator is not on the target cell")
		}
	}

	if more := w.Obj(o.more); more != nil {
		pm := more.m
		if pm == nil || (!pm.Resident() && pm.State != MapLoading) {
			pm = m
		}
		placed, err := w.InsertInMap(more, pm, originator, flags)
		if err != nil {
			return nil, err
		}
		if placed == nil {
			if o.IsHead() {
				w.log.Error("inserting a body part destroyed the object", w.objFields(o)...)
			}
			return nil, nil
		}
	}

	o.Clear(object.FlagRemoved)
	o.m, o.X, o.Y = nm, x, y
	o.Clear(object.FlagApplied)
	o.Clear(object.FlagInvLocked)
	if !o.Has(object.FlagAlive) {
		o.Clear(object.FlagNoSteal)
	}

	if o.Nrof > 0 && flags&InsNoMerge == 0 && !o.Multipart() {
		for tmp := w.MapBottom(nm, x, y); tmp != nil; tmp = w.Obj(tmp.above) {
			if w.CanMerge(tmp, o) {
				return w.mergeOnCell(tmp, o, originator, flags)
			}
		}
	}

	c := nm.cell(x, y)
	if flags&InsBelowOriginator != 0 {
		w.linkBelow(c, o, originator)
	} else {
		w.linkAbove(c, o, w.placement(nm, x, y, o, flags))
	}
	c.dirty = true

	if flags&InsNoWalkOn != 0 || !o.IsHead() {
		return o, nil
	}
	for p := o; p != nil; p = w.Obj(p.more) {
		if w.CheckMoveOn(p, originator) {
			return nil, w.fault
		}
	}
	return o, w.fault
}

// InsertInMapAt places o with its head at (x, y), laying the other parts
// out at their offsets from the head.
func (w *World) InsertInMapAt(o *Object, m *Map, originator *Object, flags InsertFlags, x, y int) (*Object, error) {
	o = w.Head(o)
	offs := w.partOffsets(o)
	i := 0
	for p := o; p != nil; p = w.Obj(p.more) {
		var off [2]int
		if i < len(offs) {
			off = offs[i]
		}
		p.X, p.Y = x+off[0], y+off[1]
		p.m = m
		i++
	}
	return w.InsertInMap(o, m, originator, flags)
}

// mergeOnCell folds the newcomer o into stack tmp already on the cell.
func (w *World) mergeOnCell(tmp, o, originator *Object, flags InsertFlags) (*Object, error) {
	tmp.Nrof += o.Nrof
	o.Set(object.FlagRemoved)
	if err := w.free(o, true); err != nil {
		return nil, err
	}
	w.touch(tmp.m, tmp.X, tmp.Y)
	if flags&InsNoWalkOn == 0 && w.CheckMoveOn(tmp, originator) {
		return nil, w.fault
	}
	return tmp, w.fault
}

// placement finds the object o should go directly above, or nil for the
// bottom of the stack.
func (w *World) placement(m *Map, x, y int, o *Object, flags InsertFlags) *Object {
	c := m.cell(x, y)
	if flags&(InsMapLoad|InsOnTop) != 0 {
		return w.Obj(c.top)
	}
	bottom := w.Obj(c.bottom)
	if bottom == nil {
		return nil
	}

	var top, floor *Object
	for t := bottom; t != nil; t = w.Obj(t.above) {
		if t.Has(object.FlagIsFloor) || t.Has(object.FlagOverlayFloor) {
			floor = t
		}
		// spell effects and the like float above everything placed later
		if t.Has(object.FlagNoPick) && t.MoveType.Flying() && !t.Has(object.FlagIsFloor) {
			break
		}
		top = t
	}
	if flags&InsAboveFloorOnly != 0 {
		return floor
	}

	// an object that would be hidden anyway sinks below whatever blocks
	// the view, so the blocking face stays on top
	if w.refresh(m, x, y).flags&CellBlocksView != 0 && o.Visibility == 0 {
		for l := top; l != nil && l != floor; l = w.Obj(l.below) {
			if l.Has(object.FlagBlocksView) && l.Type != object.TypeExit {
				if below := w.Obj(l.below); below != nil {
					top = below
				}
				break
			}
		}
	}
	return top
}

func (w *World) linkAbove(c *Cell, o, top *Object) {
	if top == nil {
		o.below = 0
		o.above = c.bottom
		if above := w.Obj(o.above); above != nil {
			above.below = o.id
		}
		c.bottom = o.id
	} else {
		o.below = top.id
		o.above = top.above
		if above := w.Obj(o.above); above != nil {
			above.below = o.id
		}
		top.above = o.id
	}
	if o.above.IsZero() {
		c.top = o.id
	}
}

func (w *World) linkBelow(c *Cell, o, ref *Object) {
	o.above = ref.id
	o.below = ref.below
	if below := w.Obj(o.below); below != nil {
		below.above = o.id
	} else {
		c.bottom = o.id
	}
	ref.below = o.id
}

// ReplaceInsert removes every object of archetype name from o's cell and
// puts a fresh instance of it there.
func (w *World) ReplaceInsert(name string, o *Object) (*Object, error) {
	at, ok := w.archetypes[name]
	if !ok {
		return nil, ErrUnknownArchetype
	}
	m, x, y := o.m, o.X, o.Y
	for tmp := w.MapBottom(m, x, y); tmp != nil; {
		next := w.Obj(tmp.above)
		if tmp.Arch == at {
			if err := w.Remove(tmp); err != nil {
				return nil, err
			}
			if err := w.FreeTree(tmp); err != nil {
				return nil, err
			}
		}
		tmp = next
	}
	fresh, err := w.ArchToObject(at)
	if err != nil {
		return nil, err
	}
	fresh.X, fresh.Y = x, y
	return w.InsertInMap(fresh, m, o, InsBelowOriginator)
}

// CheckMoveOn fires the move-on triggers of o's cell and applies its slow
// penalties. It reports whether o was destroyed.
func (w *World) CheckMoveOn(o, originator *Object) bool {
	if o.Has(object.FlagNoApply) || o.m == nil {
		return false
	}
	m, x, y := o.m, o.X, o.Y
	c := w.refresh(m, x, y)
	mt := o.MoveType.Effective()

	if mt&(c.moveOn|c.moveSlow) == 0 {
		return false
	}
	// if some other way of moving avoids both the trigger and the slowdown,
	// the mover takes it
	if mt&^c.moveOn&^c.moveBlock != 0 && mt&^c.moveSlow&^c.moveBlock != 0 {
		return false
	}

	tmp := w.Obj(c.bottom)
	for tmp != nil && !tmp.above.IsZero() {
		if tmp.Has(object.FlagNoPick) && tmp.MoveType&object.MoveFlyLow != 0 {
			break
		}
		tmp = w.Obj(tmp.above)
	}

	tag := o.Tag
	for tmp != nil {
		if tmp == o {
			tmp = w.Obj(tmp.below)
			continue
		}
		if !o.Has(object.FlagWizPass) && mt&tmp.MoveSlow != 0 && mt&^tmp.MoveSlow&^tmp.MoveBlock == 0 {
			speed := o.Speed
			if speed < 0 {
				speed = -speed
			}
			o.SpeedLeft -= tmp.MoveSlowPenalty * speed
		}

		next, nextTag := tmp.below, uint32(0)
		if n := w.Obj(next); n != nil {
			nextTag = n.Tag
		}
		if mt&tmp.MoveOn != 0 && mt&^tmp.MoveOn&^tmp.MoveBlock == 0 {
			trapTag := tmp.Tag
			w.moveApply(tmp, o, originator)
			if WasDestroyed(o, tag) {
				return true
			}
			if o.m != m || o.X != x || o.Y != y {
				return false
			}
			if !WasDestroyed(tmp, trapTag) && !tmp.Removed() {
				next = tmp.below
			} else if n := w.Obj(next); n == nil || n.Tag != nextTag || n.m != m || n.X != x || n.Y != y {
				return false
			}
		}
		tmp = w.Obj(next)
	}
	return false
}

// moveApply runs the trigger trap for victim stepping on (or off) it.
func (w *World) moveApply(trap, victim, originator *Object) {
	if w.applyDepth >= maxApplyDepth {
		w.log.Warn("trigger recursion too deep", w.objFields(trap)...)
		return
	}
	w.applyDepth++
	defer func() { w.applyDepth-- }()

	trap = w.Head(trap)
	if w.hooks.Move != nil && w.hooks.Move.MoveApply(w, trap, victim, originator) {
		return
	}

	switch trap.Type {
	case object.TypeTeleporter:
		if !trap.Slaying.IsZero() {
			w.enterExit(victim, trap)
		} else {
			w.teleportVia(trap, object.TypeTeleporter, victim)
		}
	case object.TypeExit:
		if victim.Type == object.TypePlayer {
			w.enterExit(victim, trap)
		}
	case object.TypeShopMat:
		if victim.Type == object.TypePlayer {
			w.teleportVia(trap, object.TypeShopMat, victim)
		}
	case object.TypeDeepSwamp:
		w.walkOnDeepSwamp(trap, victim)
	case object.TypeSpinner:
		if victim.Direction != 0 {
			victim.Direction = int8(AbsDir(int(victim.Direction) + int(trap.Stats.Sp)))
		}
	case object.TypeDirector:
		if victim.Direction != 0 {
			victim.Direction = int8(AbsDir(int(trap.Stats.Sp)))
		}
	case object.TypePlayerMover:
		if victim.Has(object.FlagAlive) && !victim.Has(object.FlagStandStill) && trap.Direction != 0 {
			w.MoveOb(victim, int(trap.Direction), trap)
		}
	case object.TypeHole, object.TypeTrapdoor:
		if trap.Type == object.TypeHole && trap.Value == 0 {
			return
		}
		if victim.Has(object.FlagAlive) && !victim.MoveType.Flying() {
			w.Tell(victim, "You fall through the %s!", trap.Name.String())
			w.fallThrough(victim)
		}
	}
}

func (w *World) teleportVia(trap *Object, typ object.Type, victim *Object) {
	if _, err := w.Teleport(trap, typ, victim); err != nil {
		w.log.Warn("teleport failed", append(w.objFields(victim),
			zap.String("via", trap.Name.String()), zap.Error(err))...)
	}
}
