package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wograld/server/internal/core/event"
	"github.com/wograld/server/internal/object"
)

// MoveObject moves op one step in dir on its own behalf.
func (w *World) MoveObject(op *Object, dir int) bool {
	return w.MoveOb(op, dir, op)
}

// MoveOb moves op one step in dir. The whole body must fit; a wizard with
// wizpass walks through anything that is on the map. It reports whether
// the move happened.
func (w *World) MoveOb(op *Object, dir int, originator *Object) bool {
	if op == nil {
		w.log.Error("move of nil object")
		return false
	}
	if dir < 1 || dir > SizeOfFree1 || op.m == nil || w.fault != nil {
		return false
	}
	dx, dy := DirOffset(dir)
	flags, m, nx, ny := w.MapFlags(op.m, op.X+dx, op.Y+dy)
	if flags&CellOutOfMap != 0 {
		return false
	}
	if w.Blocked(op, m, nx, ny) && !op.Has(object.FlagWizPass) {
		return false
	}
	if more := w.Obj(op.more); more != nil && !w.MoveOb(more, dir, w.Head(more)) {
		return false
	}
	op.Direction = int8(dir)

	if op.Removed() {
		w.debugObj("moved object was removed on the way", op)
		return true
	}
	// body parts only vouch for their square; the head does the move
	if !op.IsHead() {
		return true
	}

	if err := w.Remove(op); err != nil {
		return false
	}
	w.shift(op, dx, dy)
	if placed, err := w.InsertInMap(op, op.m, originator, 0); err != nil || placed == nil {
		return err == nil
	}

	switch op.Type {
	case object.TypePlayer:
		event.Emit(w.bus, event.MapScrolled{Player: op.id, Tag: op.Tag, DX: dx, DY: dy})
		w.changeMusic(op, op.m.Track)
		w.ApplyGravity(op)
	case object.TypeTransport:
		for pl := w.Obj(op.inv); pl != nil; pl = w.Obj(pl.below) {
			if pl.Type != object.TypePlayer {
				continue
			}
			pl.m, pl.X, pl.Y = op.m, op.X, op.Y
			event.Emit(w.bus, event.MapScrolled{Player: pl.id, Tag: pl.Tag, DX: dx, DY: dy})
		}
	}
	return true
}

// shift moves every part of a removed body by (dx, dy), following map
// tiling per part.
func (w *World) shift(op *Object, dx, dy int) {
	for p := op; p != nil; p = w.Obj(p.more) {
		p.X += dx
		p.Y += dy
		if p.m == nil {
			p.m = op.m
		}
		if pm, px, py, ok := p.m.Resolve(p.X, p.Y); ok {
			p.m, p.X, p.Y = pm, px, py
		}
	}
}

// place puts a removed body on m with its head at (x, y) and sends the
// map-change notifications for players. It reports whether op survived.
func (w *World) place(op *Object, m *Map, x, y int, originator *Object) (bool, error) {
	placed, err := w.InsertInMapAt(op, m, originator, 0, x, y)
	if err != nil {
		return false, err
	}
	if placed == nil {
		return false, nil
	}
	w.enteredMap(placed)
	return true, nil
}

// relocate takes op off wherever it is and places it on m at (x, y).
func (w *World) relocate(op *Object, m *Map, x, y int, originator *Object) (bool, error) {
	op = w.Head(op)
	if !op.Removed() {
		if err := w.Remove(op); err != nil {
			return false, err
		}
	}
	return w.place(op, m, x, y, originator)
}

func (w *World) enteredMap(o *Object) {
	if o.Type != object.TypePlayer || o.m == nil {
		return
	}
	event.Emit(w.bus, event.MapEntered{Player: o.id, Tag: o.Tag, Map: o.m.Path, X: o.X, Y: o.Y})
	w.changeMusic(o, o.m.Track)
}

// changeMusic tells a player about a new music track. Zero means the map
// has no music of its own and whatever plays keeps playing.
func (w *World) changeMusic(o *Object, track int) {
	p := w.Player(o)
	if p == nil || track <= 0 || track == p.Track {
		return
	}
	p.Track = track
	event.Emit(w.bus, event.MusicChanged{Player: o.id, Tag: o.Tag, Track: track})
}

// TransferOb moves op to a free spot around (x, y) on its current map,
// chosen at random or as the closest. It reports whether op was destroyed
// on arrival; no free spot leaves op where it was.
func (w *World) TransferOb(op *Object, x, y int, randomly bool, originator *Object) (bool, error) {
	var i int
	if randomly {
		i = w.FindFreeSpot(op, op.m, x, y, 0, SizeOfFree)
	} else {
		i = w.FindFirstFreeSpot(op, op.m, x, y)
	}
	if i == -1 {
		return false, nil
	}
	survived, err := w.relocate(op, w.Head(op).m, x+freeArrX[i], y+freeArrY[i], originator)
	return !survived && err == nil, err
}

// Teleport sends user from tele to another object of teleType within five
// squares, picked at random. Shop mats never leave a player stuck: when
// every spot around the destination is taken, any walkable one will do.
// It reports whether user was destroyed on arrival.
func (w *World) Teleport(tele *Object, teleType object.Type, user *Object) (bool, error) {
	if user == nil || tele.m == nil {
		return false, nil
	}
	user = w.Head(user)

	var altern []*Object
	for i := -5; i <= 5; i++ {
		for j := -5; j <= 5; j++ {
			if i == 0 && j == 0 {
				continue
			}
			x, y := tele.X+i, tele.Y+j
			if !tele.m.inBounds(x, y) {
				continue
			}
			for o := w.MapBottom(tele.m, x, y); o != nil; o = w.Obj(o.above) {
				if o.Type == teleType {
					altern = append(altern, o)
					break
				}
			}
		}
	}
	if len(altern) == 0 {
		w.log.Error("no alternative teleporters around", w.objFields(tele)...)
		return false, ErrNoFreeSpot
	}

	dest := altern[w.rng.Intn(len(altern))]
	k := w.FindFreeSpot(user, dest.m, dest.X, dest.Y, 1, SizeOfFree1+1)
	if k == -1 {
		if teleType != object.TypeShopMat || user.Type != object.TypePlayer {
			return false, ErrNoFreeSpot
		}
		k = w.walkableSpot(user, dest)
		if k == -1 {
			w.log.Error(fmt.Sprintf("shop mat %s (%d, %d) is in solid rock", dest.Name, dest.X, dest.Y))
			return false, ErrNoFreeSpot
		}
	}
	survived, err := w.relocate(user, dest.m, dest.X+freeArrX[k], dest.Y+freeArrY[k], nil)
	return !survived && err == nil, err
}

func (w *World) walkableSpot(user, dest *Object) int {
	for k := 1; k <= SizeOfFree1; k++ {
		f, m, x, y := w.MapFlags(dest.m, dest.X+freeArrX[k], dest.Y+freeArrY[k])
		if f&CellOutOfMap != 0 {
			continue
		}
		if !user.MoveType.Effective().BlockedBy(w.MoveBlock(m, x, y)) {
			return k
		}
	}
	return -1
}

// EnterMap puts op on the map at path, as close to (x, y) as its body fits.
func (w *World) EnterMap(op *Object, path string, x, y int) error {
	m := w.maps[path]
	if m == nil {
		return fmt.Errorf("enter map %s: %w", path, ErrUnknownMap)
	}
	if !m.Resident() {
		return fmt.Errorf("enter map %s: %w", path, ErrMapNotLoaded)
	}
	if !m.inBounds(x, y) {
		return fmt.Errorf("enter map %s at (%d, %d): %w", path, x, y, ErrOutOfMap)
	}
	op = w.Head(op)
	i := w.FindFirstFreeSpot(op, m, x, y)
	if i == -1 {
		i = 0
	}
	_, err := w.relocate(op, m, x+freeArrX[i], y+freeArrY[i], nil)
	return err
}

// enterExit follows an exit or teleporter whose slaying names the target
// map and whose hp/sp give the target square.
func (w *World) enterExit(victim, exit *Object) {
	path := exit.Slaying.String()
	if err := w.EnterMap(victim, path, int(exit.Stats.Hp), int(exit.Stats.Sp)); err != nil {
		w.log.Warn("exit leads nowhere", zap.String("exit", exit.Name.String()), zap.Error(err))
		w.Tell(victim, "The %s is closed.", exit.Name.String())
	}
}

// RandomRoll returns a number in [lo, hi]. For players, luck sometimes
// nudges the result: up when preferHigh, down otherwise.
func (w *World) RandomRoll(lo, hi int, op *Object, preferHigh bool) int {
	diff := hi - lo + 1
	base := diff
	if diff > 2 {
		base = 20
	}
	if hi < 1 || diff < 1 {
		w.log.Error("random roll with an empty range", zap.Int("min", lo), zap.Int("max", hi))
		return lo
	}
	ran := w.rng.Int()
	if op.Type != object.TypePlayer {
		return ran%diff + lo
	}
	luck := int(op.Stats.Luck)
	if w.rng.Intn(base) < min(10, abs(luck)) {
		if luck > 0 {
			luck = 1
		} else {
			luck = -1
		}
		diff -= luck
		if diff < 1 {
			return lo
		}
		start := lo
		if preferHigh {
			start += luck
		}
		return max(lo, min(hi, ran%diff+start))
	}
	return ran%diff + lo
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
