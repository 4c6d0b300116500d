package ecs

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on destroy to invalidate stale refs.
// Generations start at 1, so the zero EntityID never names a live slot.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// DefaultBatch is the number of slots added each time the pool runs dry.
const DefaultBatch = 500

// EntityPool manages entity allocation with generational indices and a free list.
// The free list is LIFO: the most recently destroyed slot is handed out first.
type EntityPool struct {
	generations []uint32
	freeList    []uint32
	batch       int

	allocated uint64
	released  uint64
}

func NewEntityPool(batch int) *EntityPool {
	if batch <= 0 {
		batch = DefaultBatch
	}
	return &EntityPool{
		generations: make([]uint32, 0, batch),
		freeList:    make([]uint32, 0, batch),
		batch:       batch,
	}
}

// grow appends one batch of fresh slots. They are pushed in reverse so the
// lowest new index is popped first.
func (p *EntityPool) grow() {
	base := uint32(len(p.generations))
	for i := 0; i < p.batch; i++ {
		p.generations = append(p.generations, 1)
	}
	for i := p.batch - 1; i >= 0; i-- {
		p.freeList = append(p.freeList, base+uint32(i))
	}
}

func (p *EntityPool) Create() EntityID {
	if len(p.freeList) == 0 {
		p.grow()
	}
	idx := p.freeList[len(p.freeList)-1]
	p.freeList = p.freeList[:len(p.freeList)-1]
	p.allocated++
	return NewEntityID(idx, p.generations[idx])
}

func (p *EntityPool) Alive(id EntityID) bool {
	if id.IsZero() {
		return false
	}
	idx := id.Index()
	if int(idx) >= len(p.generations) {
		return false
	}
	return p.generations[idx] == id.Generation()
}

// Destroy invalidates id and returns its slot to the front of the free list.
// It reports false for a stale or unknown id, which callers treat as a
// double free.
func (p *EntityPool) Destroy(id EntityID) bool {
	if !p.Alive(id) {
		return false
	}
	idx := id.Index()
	p.generations[idx]++
	if p.generations[idx] == 0 {
		p.generations[idx] = 1
	}
	p.freeList = append(p.freeList, idx)
	p.released++
	return true
}

// Allocated is the number of Create calls over the pool's lifetime.
func (p *EntityPool) Allocated() uint64 { return p.allocated }

// Released is the number of successful Destroy calls.
func (p *EntityPool) Released() uint64 { return p.released }

// Live is the number of entities currently alive.
func (p *EntityPool) Live() int { return len(p.generations) - len(p.freeList) }

// Capacity is the number of slots backing the pool.
func (p *EntityPool) Capacity() int { return len(p.generations) }

// Free is the number of slots waiting on the free list.
func (p *EntityPool) Free() int { return len(p.freeList) }
