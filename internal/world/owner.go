package world

import (
	"go.uber.org/zap"

	"github.com/wograld/server/internal/object"
)

// Owner returns o's owner if it is still the same live, in-play object
// that was recorded. A stale owner is cleared.
func (w *World) Owner(o *Object) *Object {
	if o.owner.IsZero() {
		return nil
	}
	own := w.Obj(o.owner)
	if own != nil && !own.Freed() && !own.Removed() && own.Tag == o.ownerTag {
		return own
	}
	w.log.Debug("cleared stale owner", zap.Uint32("tag", o.Tag), zap.Uint32("owner_tag", o.ownerTag))
	o.owner, o.ownerTag = 0, 0
	return nil
}

// SetOwner makes owner (or the object at the end of owner's chain) own o.
func (w *World) SetOwner(o, owner *Object) {
	if o == nil || owner == nil {
		return
	}
	for {
		next := w.Obj(owner.owner)
		if next == nil || next == owner || next.Tag != owner.ownerTag {
			break
		}
		owner = next
	}
	if !owner.owner.IsZero() && w.Obj(owner.owner) != owner {
		w.log.Error("owner chain could not be resolved",
			zap.Uint32("tag", o.Tag), zap.Uint32("owner_tag", owner.Tag), zap.Uint32("stale_tag", owner.ownerTag))
		return
	}
	o.owner, o.ownerTag = owner.id, owner.Tag
}

// ClearOwner drops o's owner link.
func (w *World) ClearOwner(o *Object) {
	if o == nil {
		return
	}
	w.clearOwnerLink(o)
}

func (w *World) clearOwnerLink(o *Object) {
	o.owner, o.ownerTag = 0, 0
}

// CopyOwner gives o the owner of clone. Players own what they create.
func (w *World) CopyOwner(o, clone *Object) {
	owner := w.Owner(clone)
	if owner == nil {
		if clone.Type != object.TypePlayer {
			return
		}
		owner = clone
	}
	w.SetOwner(o, owner)
}
