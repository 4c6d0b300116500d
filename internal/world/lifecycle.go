package world

import (
	"fmt"

	"github.com/wograld/server/internal/core/event"
	"github.com/wograld/server/internal/object"
)

// Tell sends a line of text to o if o is a player.
func (w *World) Tell(o *Object, format string, args ...any) {
	if o == nil || o.Type != object.TypePlayer {
		return
	}
	event.Emit(w.bus, event.Message{To: o.id, Tag: o.Tag, Text: fmt.Sprintf(format, args...)})
}

// TellAll sends a line of text to every player.
func (w *World) TellAll(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	w.EachPlayer(func(pl *Object, _ *Player) {
		event.Emit(w.bus, event.Message{To: pl.id, Tag: pl.Tag, Text: text})
	})
}

var equipTypes = map[object.Type]bool{
	object.TypeWeapon: true, object.TypeArmour: true, object.TypeShield: true,
	object.TypeHelmet: true, object.TypeBoots: true, object.TypeGloves: true,
	object.TypeRing: true, object.TypeAmulet: true, object.TypeCloak: true,
	object.TypeBow: true, object.TypeLamp: true,
}

// Apply has who use item. Scripts get the first say; the built-in rules
// handle containers, equipment and readables. It reports whether anything
// happened.
func (w *World) Apply(item, who *Object) bool {
	if w.fault != nil || item == nil || who == nil {
		return false
	}
	item = w.Head(item)
	if item.Has(object.FlagNoApply) {
		return false
	}
	if w.hooks.Apply != nil && w.hooks.Apply.Apply(w, item, who) {
		item.Set(object.FlagBeenApplied)
		return true
	}

	switch {
	case item.Type == object.TypeContainer:
		w.applyContainer(item, who)
	case equipTypes[item.Type]:
		if !w.applyEquipment(item, who) {
			return false
		}
	case item.Type == object.TypeSign || item.Type == object.TypeBook:
		if item.Msg.IsZero() {
			w.Tell(who, "Nothing is written on it.")
		} else {
			w.Tell(who, "%s", item.Msg.String())
		}
	default:
		w.Tell(who, "I don't know how to apply the %s.", item.Name.String())
		return false
	}
	item.Set(object.FlagBeenApplied)
	return true
}

func (w *World) applyContainer(item, who *Object) {
	if who.container == item.id {
		who.container = 0
		item.Clear(object.FlagApplied)
		w.Tell(who, "You close %s.", item.Name.String())
		return
	}
	if prev := w.Obj(who.container); prev != nil {
		prev.Clear(object.FlagApplied)
	}
	who.container = item.id
	item.Set(object.FlagApplied)
	w.Tell(who, "You open %s.", item.Name.String())
}

func (w *World) applyEquipment(item, who *Object) bool {
	if item.env != who.id {
		w.Tell(who, "You must get it first!")
		return false
	}
	if item.Has(object.FlagApplied) {
		if item.Has(object.FlagCursed) || item.Has(object.FlagDamned) {
			w.Tell(who, "No matter how hard you try, you just can't remove %s.", item.Name.String())
			return false
		}
		item.Clear(object.FlagApplied)
		w.Tell(who, "You unready %s.", item.Name.String())
	} else {
		item.Set(object.FlagApplied)
		w.Tell(who, "You ready %s.", item.Name.String())
	}
	w.notifyItem(who, item, false)
	return true
}

// Pickup moves nrof of item (0 for all) into who's inventory and returns
// the stack it ended up in.
func (w *World) Pickup(who, item *Object, nrof uint32) (*Object, error) {
	if w.fault != nil {
		return nil, w.fault
	}
	if !CanPick(who, item) || !item.env.IsZero() || item.Removed() {
		return nil, &ActionError{Msg: fmt.Sprintf("You can't pick up the %s.", item.Name.String()), Err: ErrCannotPick}
	}
	if nrof == 0 || nrof > item.Count() {
		nrof = item.Count()
	}
	weight := int64(item.Weight) * int64(nrof)
	if item.Nrof == 0 {
		weight = int64(item.Total())
	}
	if who.WeightLimit > 0 && int64(who.Carrying)+weight > int64(who.WeightLimit) {
		return nil, &ActionError{Msg: "That item is too heavy for you to pick up.", Err: ErrTooHeavy}
	}

	taken := item
	if item.Nrof > 0 && nrof < item.Nrof {
		var err error
		if taken, err = w.Split(item, nrof); err != nil {
			return nil, err
		}
	} else if err := w.Remove(item); err != nil {
		return nil, err
	}
	name := taken.Name.String()
	got, err := w.InsertInto(taken, who)
	if err != nil {
		return nil, err
	}
	w.Tell(who, "You pick up the %s.", name)
	return got, nil
}

// Drop puts nrof of item (0 for all) from who's inventory on the floor
// under who. It returns the stack on the floor, or nil if a trigger there
// destroyed it.
func (w *World) Drop(who, item *Object, nrof uint32) (*Object, error) {
	if w.fault != nil {
		return nil, w.fault
	}
	if item.env != who.id {
		return nil, ErrNotContained
	}
	if item.Has(object.FlagNoDrop) {
		return nil, actionf("You can't drop the %s.", item.Name.String())
	}
	if who.m == nil {
		return nil, ErrMapNotLoaded
	}
	if nrof == 0 || nrof > item.Count() {
		nrof = item.Count()
	}
	if item.Has(object.FlagApplied) {
		item.Clear(object.FlagApplied)
	}
	if w.Obj(who.container) == item {
		who.container = 0
	}

	dropped := item
	if item.Nrof > 0 && nrof < item.Nrof {
		var err error
		if dropped, err = w.Split(item, nrof); err != nil {
			return nil, err
		}
	} else if err := w.Remove(item); err != nil {
		return nil, err
	}
	name := dropped.Name.String()
	dropped.X, dropped.Y = who.X, who.Y
	res, err := w.InsertInMap(dropped, who.m, who, InsBelowOriginator)
	if err != nil {
		return nil, err
	}
	w.Tell(who, "You drop the %s.", name)
	return res, nil
}
