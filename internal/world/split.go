package world

import "github.com/wograld/server/internal/object"

// Split takes nr items off orig and returns them as a new removed stack.
// When nr is the whole stack, orig is freed. Asking for more items than
// the stack has is an ActionError.
func (w *World) Split(orig *Object, nr uint32) (*Object, error) {
	if w.fault != nil {
		return nil, w.fault
	}
	if orig.Nrof < nr {
		return nil, actionf("There are only %d %ss.", orig.Count(), orig.Name.String())
	}
	removed := orig.Removed()
	if !removed && orig.env.IsZero() && !orig.m.Resident() {
		w.log.Error("split of object on a map not in memory", w.objFields(orig)...)
		return nil, actionf("Tried to split object whose map is not in memory.")
	}

	newob, err := w.Clone(orig)
	if err != nil {
		return nil, err
	}
	if nr == orig.Nrof {
		// remove while Nrof still holds the full count so the carrier
		// loses the whole stack's weight
		if !removed {
			if err := w.Remove(orig); err != nil {
				return nil, err
			}
		}
		orig.Nrof = 0
		if err := w.FreeTree(orig); err != nil {
			return nil, err
		}
		newob.Nrof = nr
		return newob, nil
	}
	orig.Nrof -= nr
	if !removed {
		if env := w.Obj(orig.env); env != nil {
			w.SubWeight(env, orig.Weight*int32(nr))
			w.notifyItem(env, orig, false)
		} else {
			w.touch(orig.m, orig.X, orig.Y)
		}
	}
	newob.Nrof = nr
	return newob, nil
}

// DecreaseNrof takes i items off op, freeing it when nothing is left. It
// returns op, or nil when op was freed.
func (w *World) DecreaseNrof(op *Object, i uint32) (*Object, error) {
	if w.fault != nil {
		return nil, w.fault
	}
	if i == 0 {
		return op, nil
	}
	if i > op.Nrof {
		i = op.Nrof
	}

	switch env := w.Obj(op.env); {
	case op.Removed():
		op.Nrof -= i
	case env != nil:
		if i < op.Nrof {
			w.SubWeight(env, op.Weight*int32(i))
			op.Nrof -= i
			w.notifyItem(env, op, false)
		} else {
			if err := w.Remove(op); err != nil {
				return nil, err
			}
			op.Nrof = 0
		}
	default:
		above := w.Obj(op.above)
		if i < op.Nrof {
			op.Nrof -= i
		} else {
			if err := w.Remove(op); err != nil {
				return nil, err
			}
			op.Nrof = 0
		}
		for tmp := above; tmp != nil; tmp = w.Obj(tmp.above) {
			if tmp.Type == object.TypePlayer {
				w.notifyPlayer(tmp, op, op.Nrof == 0)
			}
		}
	}

	if op.Nrof > 0 {
		return op, nil
	}
	if err := w.free(op, true); err != nil {
		return nil, err
	}
	return nil, nil
}
