package world

import (
	"math"

	"github.com/wograld/server/internal/object"
)

// CanMerge reports whether two objects are interchangeable copies that
// may share one stack. The test is symmetric.
func (w *World) CanMerge(a, b *Object) bool {
	return w.canMerge(a, b, 0)
}

func (w *World) canMerge(a, b *Object, depth int) bool {
	if a == nil || b == nil || a == b {
		return false
	}
	if a.Arch != b.Arch || a.Type != b.Type || a.Speed != b.Speed {
		return false
	}
	// moving objects only stack when the motion is their animation
	if !a.Has(object.FlagIsAnimated) && math.Abs(float64(a.Speed)) > MinActiveSpeed {
		return false
	}
	if uint64(a.Nrof)+uint64(b.Nrof) >= 1<<31 {
		return false
	}
	if a.Has(object.FlagApplied) || b.Has(object.FlagApplied) {
		return false
	}

	if a.inv.IsZero() != b.inv.IsZero() {
		return false
	}
	if !a.inv.IsZero() {
		// containers merge only when their first items would
		if depth > 8 || !w.canMerge(w.Obj(a.inv), w.Obj(b.inv), depth+1) {
			return false
		}
	}

	fa, fb := a.Flags.Masked(object.MergeIgnored), b.Flags.Masked(object.MergeIgnored)
	// identified items count as applied once, so a freshly identified item
	// still stacks with ones that have been used
	if fa.Has(object.FlagIdentified) {
		fa.Set(object.FlagBeenApplied)
	}
	if fb.Has(object.FlagIdentified) {
		fb.Set(object.FlagBeenApplied)
	}
	if fa != fb {
		return false
	}

	if a.Name != b.Name || a.Title != b.Title || a.Msg != b.Msg ||
		a.Slaying != b.Slaying || a.Skill != b.Skill || a.Lore != b.Lore ||
		a.Material != b.Material || a.CustomName != b.CustomName {
		return false
	}
	if a.Weight != b.Weight || a.Value != b.Value || a.Magic != b.Magic ||
		a.AttackType != b.AttackType || a.Stats != b.Stats || a.Resist != b.Resist ||
		a.Animation != b.Animation || a.ClientType != b.ClientType || a.Subtype != b.Subtype {
		return false
	}
	if a.MoveType != b.MoveType || a.MoveBlock != b.MoveBlock || a.MoveAllow != b.MoveAllow ||
		a.MoveOn != b.MoveOn || a.MoveOff != b.MoveOff || a.MoveSlow != b.MoveSlow ||
		a.MoveSlowPenalty != b.MoveSlowPenalty || a.MapLayer != b.MapLayer {
		return false
	}

	if !a.KeyValues.Equal(b.KeyValues) {
		return false
	}
	// scrolls of different spell level are different scrolls
	if a.Type == object.TypeScroll && a.Level != b.Level {
		return false
	}
	return true
}

// MergeOb tries to fold op into a matching stack among top and the
// objects below it (op's own surroundings when top is nil). It returns
// the surviving stack, or nil when nothing matched.
func (w *World) MergeOb(op, top *Object) (*Object, error) {
	if op.Nrof == 0 {
		return nil, nil
	}
	if top == nil {
		top = op
		for a := w.Obj(top.above); a != nil; a = w.Obj(a.above) {
			top = a
		}
	}
	for ; top != nil; top = w.Obj(top.below) {
		if top == op || !w.CanMerge(op, top) {
			continue
		}
		top.Nrof += op.Nrof
		if !op.Removed() {
			if err := w.Remove(op); err != nil {
				return nil, err
			}
		}
		if env := w.Obj(top.env); env != nil {
			// the removal subtracted op's weight; put it back on the stack
			w.AddWeight(env, op.Weight*int32(op.Nrof))
			w.notifyItem(env, top, false)
		}
		if err := w.FreeTree(op); err != nil {
			return nil, err
		}
		return top, nil
	}
	return nil, nil
}
