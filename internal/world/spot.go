package world

import (
	"github.com/wograld/server/internal/object"
)

// The free-spot search area: index 0 is the centre, 1..8 the ring at
// distance one (north first, clockwise), 9..24 the ring at two and 25..48
// the ring at three.
const (
	SizeOfFree1 = 8
	SizeOfFree2 = 24
	SizeOfFree  = 49
)

var freeArrX = [SizeOfFree]int{0, 0, 1, 1, 1, 0, -1, -1, -1, 0, 1, 2, 2, 2, 2, 2, 1, 0, -1, -2, -2, -2, -2, -2, -1,
	0, 1, 2, 3, 3, 3, 3, 3, 3, 3, 2, 1, 0, -1, -2, -3, -3, -3, -3, -3, -3, -3, -2, -1}

var freeArrY = [SizeOfFree]int{0, -1, -1, 0, 1, 1, 1, 0, -1, -2, -2, -2, -1, 0, 1, 2, 2, 2, 2, 2, 1, 0, -1, -2, -2,
	-3, -3, -3, -3, -2, -1, 0, 1, 2, 3, 3, 3, 3, 3, 3, 3, 2, 1, 0, -1, -2, -3, -3, -3}

// maxFree[i] is where a search may stop once spot i is found to be a wall:
// the spots beyond it lie behind that wall.
var maxFree = [SizeOfFree]int{0, 9, 10, 13, 14, 17, 18, 21, 22, 25, 26, 27, 30, 31, 32, 33, 36, 37, 39, 39, 42, 43, 44, 45,
	48, 49, 49, 49, 49, 49, 49, 49, 49, 49, 49, 49, 49, 49, 49, 49, 49, 49, 49, 49, 49, 49, 49, 49, 49}

// freeDir[i] is the direction that leads towards spot i.
var freeDir = [SizeOfFree]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 1, 2, 2, 2, 3, 4, 4, 4, 5, 6, 6, 6, 7, 8, 8, 8,
	1, 2, 2, 2, 2, 2, 3, 4, 4, 4, 4, 4, 5, 6, 6, 6, 6, 6, 7, 8, 8, 8, 8, 8}

// reductionDir lists, for each spot, the spots one step closer to the
// centre. -1 ends a list.
var reductionDir = [SizeOfFree][3]int{
	{0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0},
	{8, 1, 2}, {1, 2, -1}, {2, 10, 12}, {2, 3, -1}, {2, 3, 4}, {3, 4, -1}, {4, 14, 16}, {5, 4, -1},
	{4, 5, 6}, {6, 5, -1}, {6, 20, 18}, {7, 6, -1}, {6, 7, 8}, {7, 8, -1}, {8, 22, 24}, {8, 1, -1},
	{24, 9, 10}, {9, 10, -1}, {10, 11, -1}, {27, 11, 29}, {11, 12, -1}, {12, 13, -1}, {12, 13, 14},
	{13, 14, -1}, {14, 15, -1}, {33, 15, 35}, {16, 15, -1}, {17, 16, -1}, {18, 17, 16}, {18, 17, -1},
	{18, 19, -1}, {41, 19, 39}, {19, 20, -1}, {20, 21, -1}, {20, 21, 22}, {21, 22, -1}, {23, 22, -1},
	{45, 47, 23}, {23, 24, -1}, {24, 9, -1},
}

// DirOffset returns the unit step of direction dir, or of search spot dir
// for values above 8.
func DirOffset(dir int) (int, int) {
	if dir < 0 || dir >= SizeOfFree {
		return 0, 0
	}
	return freeArrX[dir], freeArrY[dir]
}

// SpotDir returns the direction leading towards search spot i.
func SpotDir(i int) int {
	if i < 0 || i >= SizeOfFree {
		return 0
	}
	return freeDir[i]
}

// Blocking is the outcome of a placement check.
type Blocking uint8

const (
	BlockNone Blocking = iota
	BlockOutOfMap
	BlockAlive
	BlockNoPass
)

// ObBlocked checks whether ob could be placed with its head at (x, y) of
// m, testing every part of its archetype. A nil ob only asks about terrain.
func (w *World) ObBlocked(ob *Object, m *Map, x, y int) Blocking {
	if ob == nil {
		f, nm, nx, ny := w.MapFlags(m, x, y)
		if f&CellOutOfMap != 0 {
			return BlockOutOfMap
		}
		if w.MoveBlock(nm, nx, ny) != 0 {
			return BlockNoPass
		}
		return BlockNone
	}
	offsets := w.partOffsets(ob)
	for _, off := range offsets {
		f, nm, nx, ny := w.MapFlags(m, x+off[0], y+off[1])
		if f&CellOutOfMap != 0 {
			return BlockOutOfMap
		}
		if f&CellAlive != 0 {
			return BlockAlive
		}
		block := w.MoveBlock(nm, nx, ny)
		// objects without a move type are usually exits being placed;
		// only solid rock stops them
		if ob.MoveType == 0 && block != object.MoveAll {
			continue
		}
		if ob.MoveType.BlockedBy(block) {
			return BlockNoPass
		}
	}
	return BlockNone
}

// partOffsets returns each body part's offset from the head, taken from
// the archetype when there is one.
func (w *World) partOffsets(ob *Object) [][2]int {
	head := w.Head(ob)
	if head.Arch != nil {
		var offs [][2]int
		for a := head.Arch; a != nil; a = a.More {
			offs = append(offs, [2]int{a.Clone.X, a.Clone.Y})
		}
		return offs
	}
	var offs [][2]int
	for p := head; p != nil; p = w.Obj(p.more) {
		offs = append(offs, [2]int{p.X - head.X, p.Y - head.Y})
	}
	return offs
}

// Blocked reports whether mover ob is stopped by something on (x, y) of m.
// The coordinates must already be resolved onto m.
func (w *World) Blocked(ob *Object, m *Map, x, y int) bool {
	if m == nil || !m.inBounds(x, y) {
		w.log.Error("blocked check outside map", w.objFields(ob)...)
		return true
	}
	c := w.refresh(m, x, y)
	if ob.Type != object.TypePlayer && c.flags&CellAlive == 0 && c.moveBlock == 0 {
		return false
	}
	if c.flags&CellAlive == 0 && !ob.MoveType.BlockedBy(c.moveBlock) {
		return false
	}
	ob = w.Head(ob)
	for tmp := w.Obj(c.bottom); tmp != nil; tmp = w.Obj(tmp.above) {
		if tmp.Type == object.TypeCheckInv && ob.MoveType.BlockedBy(tmp.MoveBlock) {
			carried := w.checkInvRecursive(ob, tmp) != nil
			if tmp.LastSp != 0 && !carried {
				return true
			}
			if tmp.LastSp == 0 && carried {
				return true
			}
			continue
		}
		if ob.MoveType.BlockedBy(tmp.MoveBlock &^ c.moveAllow) {
			return true
		}
		if tmp.Has(object.FlagAlive) && w.Head(tmp) != ob && tmp.Type != object.TypeDoor && !w.hiddenWizard(tmp) {
			return true
		}
	}
	return false
}

func (w *World) hiddenWizard(o *Object) bool {
	if !o.Has(object.FlagWiz) {
		return false
	}
	p := w.Player(o)
	return p != nil && p.Hidden
}

// checkInvRecursive finds something in op (or op itself) that an
// inventory checker is looking for.
func (w *World) checkInvRecursive(op, trig *Object) *Object {
	matches := func(o *Object) bool {
		return (trig.Stats.Hp != 0 && o.Type == object.Type(trig.Stats.Hp)) ||
			(!trig.Slaying.IsZero() && o.Slaying == trig.Slaying) ||
			(!trig.Race.IsZero() && o.Arch != nil && o.Arch.Name == trig.Race)
	}
	if matches(op) {
		return op
	}
	for tmp := w.Obj(op.inv); tmp != nil; tmp = w.Obj(tmp.below) {
		if !tmp.inv.IsZero() {
			if found := w.checkInvRecursive(tmp, trig); found != nil {
				return found
			}
		} else if matches(tmp) {
			return tmp
		}
	}
	return nil
}

// FindFreeSpot picks a random spot in [start, stop) around (x, y) where ob
// fits, or -1. A wall cuts the search down to the spots in front of it.
func (w *World) FindFreeSpot(ob *Object, m *Map, x, y, start, stop int) int {
	if stop > SizeOfFree {
		stop = SizeOfFree
	}
	var altern [SizeOfFree]int
	n := 0
	for i := start; i < stop; i++ {
		b := w.ObBlocked(ob, m, x+freeArrX[i], y+freeArrY[i])
		if b == BlockNone {
			altern[n] = i
			n++
		} else if b == BlockNoPass && maxFree[i] < stop {
			stop = maxFree[i]
		}
	}
	if n == 0 {
		return -1
	}
	return altern[w.rng.Intn(n)]
}

// FindFirstFreeSpot returns the closest spot around (x, y) where ob fits,
// or -1.
func (w *World) FindFirstFreeSpot(ob *Object, m *Map, x, y int) int {
	for i := 0; i < SizeOfFree; i++ {
		if w.ObBlocked(ob, m, x+freeArrX[i], y+freeArrY[i]) == BlockNone {
			return i
		}
	}
	return -1
}

// SearchOrder returns every spot index with each ring shuffled, so that
// searches do not always favour the north.
func (w *World) SearchOrder() [SizeOfFree]int {
	var arr [SizeOfFree]int
	for i := range arr {
		arr[i] = i
	}
	w.permute(arr[:], 1, SizeOfFree1+1)
	w.permute(arr[:], SizeOfFree1+1, SizeOfFree2+1)
	w.permute(arr[:], SizeOfFree2+1, SizeOfFree)
	return arr
}

func (w *World) permute(arr []int, begin, end int) {
	n := end - begin
	for i := begin; i < end; i++ {
		j := begin + w.rng.Intn(n)
		arr[i], arr[j] = arr[j], arr[i]
	}
}

// FindDir looks around (x, y) for the closest monster or player other than
// exclude and returns the direction to it, or 0.
func (w *World) FindDir(m *Map, x, y int, exclude *Object) int {
	moveType := object.MoveAll
	if exclude != nil {
		exclude = w.Head(exclude)
		moveType = exclude.MoveType.Effective()
	}
	limit := SizeOfFree
	for i := 1; i < limit; i++ {
		f, nm, nx, ny := w.MapFlags(m, x+freeArrX[i], y+freeArrY[i])
		if f&CellOutOfMap != 0 {
			limit = maxFree[i]
			continue
		}
		if moveType.BlockedBy(w.MoveBlock(nm, nx, ny)) {
			limit = maxFree[i]
			continue
		}
		if f&CellAlive == 0 {
			continue
		}
		for tmp := w.MapBottom(nm, nx, ny); tmp != nil; tmp = w.Obj(tmp.above) {
			if (tmp.Has(object.FlagMonster) || tmp.Type == object.TypePlayer) && w.Head(tmp) != exclude {
				return freeDir[i]
			}
		}
	}
	return 0
}

// FindDir2 returns the direction that points along the vector (x, y).
func FindDir2(x, y int) int {
	var q int
	if y == 0 {
		q = -300 * x
	} else {
		q = x * 100 / y
	}
	if y > 0 {
		switch {
		case q < -242:
			return 3
		case q < -41:
			return 2
		case q < 41:
			return 1
		case q < 242:
			return 8
		}
		return 7
	}
	switch {
	case q < -242:
		return 7
	case q < -41:
		return 6
	case q < 41:
		return 5
	case q < 242:
		return 4
	}
	return 3
}

// AbsDir folds any integer onto the directions 1..8.
func AbsDir(d int) int {
	for d < 1 {
		d += 8
	}
	for d > 8 {
		d -= 8
	}
	return d
}

// DirDiff counts the 45 degree steps between two absolute directions.
func DirDiff(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if d > 4 {
		d = 8 - d
	}
	return d
}

// Distance is the squared distance between two objects on the same map.
func Distance(a, b *Object) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// CanSeeMonster reports whether spot dir around (x, y) is visible from
// the centre, stepping back through the nearer spots.
func (w *World) CanSeeMonster(m *Map, x, y, dir int) bool {
	if dir < 0 || dir >= SizeOfFree {
		return false
	}
	f, _, _, _ := w.MapFlags(m, x+freeArrX[dir], y+freeArrY[dir])
	if f&(CellOutOfMap|CellBlocksView) != 0 {
		return false
	}
	if dir < 9 {
		return true
	}
	r := reductionDir[dir]
	return w.CanSeeMonster(m, x, y, r[0]) || w.CanSeeMonster(m, x, y, r[1]) || w.CanSeeMonster(m, x, y, r[2])
}

// CanPick reports whether who is able to pick item up.
func CanPick(who, item *Object) bool {
	return item.Weight > 0 && !item.Has(object.FlagNoPick) && !item.Has(object.FlagAlive) &&
		item.Invisible == 0 && (who.Type == object.TypePlayer || item.Weight < who.Weight/3)
}
