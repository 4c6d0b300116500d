package world

import (
	"github.com/wograld/server/internal/core/event"
	"github.com/wograld/server/internal/object"
)

// RecursiveRoll has pusher roll op one step in dir and follow it.
func (w *World) RecursiveRoll(op *Object, dir int, pusher *Object) bool {
	if !w.rollOb(op, dir, pusher) {
		w.Tell(pusher, "You fail to push the %s.", op.Name.String())
		return false
	}
	w.MoveOb(pusher, dir, pusher)
	w.Tell(pusher, "You move the %s.", op.Name.String())
	return true
}

// rollOb rolls a rollable object one step, first rolling whatever stands
// in its way. Heavy objects need a strong pusher.
func (w *World) rollOb(op *Object, dir int, pusher *Object) bool {
	op = w.Head(op)
	if !op.Has(object.FlagCanRoll) || op.m == nil {
		return false
	}
	if op.Weight != 0 && w.RandomRoll(0, int(op.Weight)/50000-1, pusher, false) > int(pusher.Stats.Str) {
		return false
	}

	dx, dy := DirOffset(dir)
	flags, m, x, y := w.MapFlags(op.m, op.X+dx, op.Y+dy)
	if flags&(CellOutOfMap|CellAlive) != 0 {
		return false
	}

	mt := op.MoveType.Effective()
	if mt.BlockedBy(w.MoveBlock(m, x, y)) {
		for tmp := w.MapBottom(m, x, y); tmp != nil; {
			next := w.Obj(tmp.above)
			if w.Head(tmp) != op && mt.BlockedBy(tmp.MoveBlock) && !w.rollOb(tmp, dir, pusher) {
				return false
			}
			tmp = next
		}
	}
	if !w.tryFit(op, m, x, y) {
		return false
	}

	if err := w.Remove(op); err != nil {
		return false
	}
	w.shift(op, dx, dy)
	if placed, err := w.InsertInMap(op, op.m, pusher, 0); err != nil || placed == nil {
		return err == nil
	}
	w.ApplyGravity(op)
	return true
}

// tryFit reports whether op's body fits with its head at (x, y) of m.
func (w *World) tryFit(op *Object, m *Map, x, y int) bool {
	op = w.Head(op)
	mt := op.MoveType.Effective()
	for part := op; part != nil; part = w.Obj(part.more) {
		flags, pm, tx, ty := w.MapFlags(m, x+part.X-op.X, y+part.Y-op.Y)
		if flags&CellOutOfMap != 0 {
			return false
		}
		for tmp := w.MapBottom(pm, tx, ty); tmp != nil; tmp = w.Obj(tmp.above) {
			if tmp == op || w.Head(tmp) == op {
				continue
			}
			if tmp.Has(object.FlagAlive) && tmp.Type != object.TypeDoor {
				return false
			}
			if mt.BlockedBy(tmp.MoveBlock) {
				return false
			}
		}
	}
	return true
}

// PushOb has pusher shove who one step in dir. A pet swaps places with its
// owner; a hostile creature is attacked when the pusher runs into it;
// anything else resists with a strength roll. It reports whether the push
// (or the attack) happened.
func (w *World) PushOb(who *Object, dir int, pusher *Object) bool {
	who = w.Head(who)
	owner := w.Owner(who)
	who.Clear(object.FlagSleep)

	if who.more.IsZero() && owner == pusher {
		w.swapPlaces(who, pusher, dir)
		return false
	}

	if owner != pusher && pusher.Type == object.TypePlayer && who.Type != object.TypePlayer &&
		!who.Has(object.FlagFriendly) && !who.Has(object.FlagNeutral) {
		if p := w.Player(pusher); p != nil && p.RunOn {
			w.Tell(pusher, "You start to attack %s !!", who.Name.String())
			who.Clear(object.FlagUnaggressive)
			w.SetEnemy(who, pusher)
			return true
		}
		w.Tell(pusher, "You avoid attacking %s .", who.Name.String())
	}

	if who.Has(object.FlagStandStill) {
		w.Tell(pusher, "You can't push %s.", who.Name.String())
		return false
	}

	str1 := strengthOrLevel(who)
	str2 := strengthOrLevel(pusher)
	if who.Has(object.FlagWiz) ||
		w.RandomRoll(str1, str1/2+str1*2, who, true) >= w.RandomRoll(str2, str2/2+str2*2, pusher, true) ||
		!w.MoveObject(who, dir) {
		if who.Type == object.TypePlayer {
			w.Tell(who, "%s tried to push you.", pusher.Name.String())
		}
		return false
	}

	if who.Type == object.TypePlayer {
		w.Tell(who, "%s pushed you.", pusher.Name.String())
	}
	if pusher.Type == object.TypePlayer {
		w.Tell(pusher, "You pushed %s back.", who.Name.String())
	}
	return true
}

func strengthOrLevel(o *Object) int {
	if o.Stats.Str > 0 {
		return int(o.Stats.Str)
	}
	return int(o.Level)
}

func (w *World) swapPlaces(pet, pusher *Object, dir int) {
	if err := w.Remove(pet); err != nil {
		return
	}
	if err := w.Remove(pusher); err != nil {
		return
	}
	pet.X, pusher.X = pusher.X, pet.X
	pet.Y, pusher.Y = pusher.Y, pet.Y
	pet.m, pusher.m = pusher.m, pet.m
	if _, err := w.InsertInMap(pet, pet.m, pusher, 0); err != nil {
		return
	}
	if _, err := w.InsertInMap(pusher, pusher.m, pusher, 0); err != nil {
		return
	}
	if pusher.Type == object.TypePlayer {
		dx, dy := DirOffset(dir)
		event.Emit(w.bus, event.MapScrolled{Player: pusher.id, Tag: pusher.Tag, DX: dx, DY: dy})
	}
}
