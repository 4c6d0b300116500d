package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wograld/server/internal/object"
)

// MapLayers is the number of drawing layers a cell keeps a face for.
const MapLayers = 10

// MapState tracks whether a map's cells may be touched.
type MapState uint8

const (
	MapSwapped  MapState = iota // not in memory
	MapLoading                  // objects being placed from the definition
	MapInMemory                 // live
	MapSaving                   // being written out; triggers are suppressed
)

// CellFlags is the cached summary of a cell stack.
type CellFlags uint16

const (
	CellAlive      CellFlags = 1 << iota // something alive stands here
	CellBlocksView                       // line of sight stops here
	CellNoMagic                          // spells fail
	CellNoCleric                         // prayers fail
	CellPlayer                           // a player stands here
	CellSafe                             // no fighting
	CellOutOfMap                         // coordinates resolve nowhere
	CellNewMap                           // coordinates crossed onto a tiled map
)

// Cell is one map square: a doubly linked stack of objects plus a cache
// of flags derived from it. The cache is rebuilt lazily after a change.
type Cell struct {
	bottom ObjectID
	top    ObjectID

	dirty     bool
	flags     CellFlags
	moveBlock object.MoveType
	moveAllow object.MoveType
	moveOn    object.MoveType
	moveOff   object.MoveType
	moveSlow  object.MoveType
	light     int
	layers    [MapLayers]ObjectID // topmost visible object per drawing layer
}

// Map is a rectangular grid of cells. Edges may tile onto neighbouring maps
// in eight directions, and maps may stack vertically.
type Map struct {
	Path     string
	Name     string
	Width    int
	Height   int
	State    MapState
	Track    int // music track; 0 keeps whatever is playing
	Darkness int
	Safe     bool

	TilePaths [8]string // indexed by direction-1, north first, clockwise
	UpperPath string
	LowerPath string

	tiles [8]*Map
	upper *Map
	lower *Map

	cells []Cell
}

// NewMap allocates an empty swapped-out map.
func NewMap(path string, width, height int) *Map {
	return &Map{
		Path:   path,
		Name:   path,
		Width:  width,
		Height: height,
		cells:  make([]Cell, width*height),
	}
}

func (m *Map) String() string { return m.Path }

// Resident reports whether the map is loaded and live.
func (m *Map) Resident() bool { return m != nil && m.State == MapInMemory }

func (m *Map) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

func (m *Map) cell(x, y int) *Cell {
	return &m.cells[y*m.Width+x]
}

// Tile returns the neighbour in direction dir (1..8), if linked.
func (m *Map) Tile(dir int) *Map {
	if dir < 1 || dir > 8 {
		return nil
	}
	return m.tiles[dir-1]
}

func (m *Map) Upper() *Map { return m.upper }
func (m *Map) Lower() *Map { return m.lower }

// Resolve translates coordinates that fall off the edge of m onto the
// tiled neighbour that holds them. It follows at most a few hops and fails
// when a needed neighbour is missing or not resident.
func (m *Map) Resolve(x, y int) (*Map, int, int, bool) {
	if m == nil {
		return nil, x, y, false
	}
	for hop := 0; hop < 8; hop++ {
		if !m.Resident() && m.State != MapLoading {
			return nil, x, y, false
		}
		dx, dy := 0, 0
		switch {
		case x < 0:
			dx = -1
		case x >= m.Width:
			dx = 1
		}
		switch {
		case y < 0:
			dy = -1
		case y >= m.Height:
			dy = 1
		}
		if dx == 0 && dy == 0 {
			return m, x, y, true
		}
		next := m.tiles[deltaDir(dx, dy)-1]
		if next == nil && dx != 0 && dy != 0 {
			// no diagonal link; go sideways first and let the next hop
			// take care of the vertical part
			dy = 0
			next = m.tiles[deltaDir(dx, 0)-1]
		}
		if next == nil {
			return nil, x, y, false
		}
		switch dx {
		case -1:
			x += next.Width
		case 1:
			x -= m.Width
		}
		switch dy {
		case -1:
			y += next.Height
		case 1:
			y -= m.Height
		}
		m = next
	}
	return nil, x, y, false
}

// deltaDir maps a unit step to its direction number.
func deltaDir(dx, dy int) int {
	for d := 1; d <= 8; d++ {
		if freeArrX[d] == dx && freeArrY[d] == dy {
			return d
		}
	}
	return 0
}

// AddMap registers m. Call LinkMaps once all maps of a batch are added.
func (w *World) AddMap(m *Map) error {
	if _, ok := w.maps[m.Path]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateMap, m.Path)
	}
	if len(m.cells) != m.Width*m.Height {
		m.cells = make([]Cell, m.Width*m.Height)
	}
	w.maps[m.Path] = m
	return nil
}

// Map returns the registered map at path.
func (w *World) Map(path string) *Map { return w.maps[path] }

// Maps returns every registered map.
func (w *World) Maps() []*Map {
	out := make([]*Map, 0, len(w.maps))
	for _, m := range w.maps {
		out = append(out, m)
	}
	return out
}

// LinkMaps resolves tile, upper and lower paths into map references.
// Unknown paths are logged and left unlinked.
func (w *World) LinkMaps() {
	for _, m := range w.maps {
		for i, p := range m.TilePaths {
			m.tiles[i] = w.linkPath(m, p)
		}
		m.upper = w.linkPath(m, m.UpperPath)
		m.lower = w.linkPath(m, m.LowerPath)
	}
}

func (w *World) linkPath(from *Map, path string) *Map {
	if path == "" {
		return nil
	}
	to, ok := w.maps[path]
	if !ok {
		w.log.Warn("map link to unknown map", zap.String("map", from.Path), zap.String("target", path))
		return nil
	}
	return to
}

// SetMapState changes m's residency. Swapping a map out makes it
// unreachable for movement and gravity until it is back in memory.
func (w *World) SetMapState(m *Map, s MapState) {
	m.State = s
}

func (w *World) cellAt(m *Map, x, y int) (*Cell, bool) {
	if m == nil || !m.inBounds(x, y) {
		return nil, false
	}
	return m.cell(x, y), true
}

// MapBottom returns the lowest object on (x, y).
func (w *World) MapBottom(m *Map, x, y int) *Object {
	c, ok := w.cellAt(m, x, y)
	if !ok {
		return nil
	}
	return w.Obj(c.bottom)
}

// MapTop returns the highest object on (x, y).
func (w *World) MapTop(m *Map, x, y int) *Object {
	c, ok := w.cellAt(m, x, y)
	if !ok {
		return nil
	}
	return w.Obj(c.top)
}

// touch marks a cell's cached flags stale.
func (w *World) touch(m *Map, x, y int) {
	if c, ok := w.cellAt(m, x, y); ok {
		c.dirty = true
	}
}

// refresh rebuilds the cached flags of a stale cell.
func (w *World) refresh(m *Map, x, y int) *Cell {
	c := m.cell(x, y)
	if !c.dirty {
		return c
	}
	var (
		flags                       CellFlags
		block, allow, on, off, slow object.MoveType
		light                       int
		layers                      [MapLayers]ObjectID
	)
	if m.Safe {
		flags |= CellSafe
	}
	for o := w.Obj(c.bottom); o != nil; o = w.Obj(o.above) {
		if o.Has(object.FlagAlive) {
			flags |= CellAlive
		}
		if o.Type == object.TypePlayer {
			flags |= CellPlayer
		}
		if o.Has(object.FlagBlocksView) {
			flags |= CellBlocksView
		}
		if o.Has(object.FlagNoMagic) {
			flags |= CellNoMagic
		}
		if o.Has(object.FlagNoCleric) {
			flags |= CellNoCleric
		}
		block |= o.MoveBlock
		allow |= o.MoveAllow
		on |= o.MoveOn
		off |= o.MoveOff
		slow |= o.MoveSlow
		light += int(o.GlowRadius)
		if o.Invisible == 0 && int(o.MapLayer) < MapLayers {
			layers[o.MapLayer] = o.id
		}
	}
	c.flags = flags
	c.moveBlock = block &^ allow
	c.moveAllow = allow
	c.moveOn = on
	c.moveOff = off
	c.moveSlow = slow
	c.light = light
	c.layers = layers
	c.dirty = false
	return c
}

// MapFlags resolves (x, y) against m's tiling and returns the cell flags
// with the map and coordinates the cell really lives at.
func (w *World) MapFlags(m *Map, x, y int) (CellFlags, *Map, int, int) {
	nm, nx, ny, ok := m.Resolve(x, y)
	if !ok {
		return CellOutOfMap, nil, x, y
	}
	c := w.refresh(nm, nx, ny)
	f := c.flags
	if nm != m {
		f |= CellNewMap
	}
	return f, nm, nx, ny
}

// MoveBlock returns the movement types blocked on (x, y) of m, after
// subtracting whatever the stack explicitly allows.
func (w *World) MoveBlock(m *Map, x, y int) object.MoveType {
	if _, ok := w.cellAt(m, x, y); !ok {
		return object.MoveAll
	}
	return w.refresh(m, x, y).moveBlock
}

func (w *World) MoveOn(m *Map, x, y int) object.MoveType   { return w.refresh(m, x, y).moveOn }
func (w *World) MoveOff(m *Map, x, y int) object.MoveType  { return w.refresh(m, x, y).moveOff }
func (w *World) MoveSlow(m *Map, x, y int) object.MoveType { return w.refresh(m, x, y).moveSlow }

// Light is the summed glow of everything on (x, y).
func (w *World) Light(m *Map, x, y int) int { return w.refresh(m, x, y).light }

// LayerObject returns the topmost visible object on a drawing layer.
func (w *World) LayerObject(m *Map, x, y, layer int) *Object {
	if layer < 0 || layer >= MapLayers {
		return nil
	}
	if _, ok := w.cellAt(m, x, y); !ok {
		return nil
	}
	return w.Obj(w.refresh(m, x, y).layers[layer])
}

// OccupiedLayers counts the drawing layers of (x, y) that show something.
func (w *World) OccupiedLayers(m *Map, x, y int) int {
	if _, ok := w.cellAt(m, x, y); !ok {
		return 0
	}
	c := w.refresh(m, x, y)
	n := 0
	for _, id := range c.layers {
		if w.Obj(id) != nil {
			n++
		}
	}
	return n
}
