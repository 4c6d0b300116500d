package world

import (
	"github.com/wograld/server/internal/object"
	"github.com/wograld/server/internal/shstr"
)

// Attrs are the copyable attributes of an object. CopyObject and archetype
// instantiation copy this block wholesale and then fix up string refcounts.
type Attrs struct {
	Name       shstr.Handle
	NamePl     shstr.Handle
	Title      shstr.Handle
	Race       shstr.Handle
	Slaying    shstr.Handle
	Skill      shstr.Handle
	Msg        shstr.Handle
	Lore       shstr.Handle
	Material   shstr.Handle
	CustomName shstr.Handle

	Type       object.Type
	Subtype    uint8
	ClientType uint16

	X, Y int // map coordinates; for archetype parts, the offset from the head

	Nrof        uint32 // stack count; 0 means a single unstackable object
	Weight      int32  // weight of one item
	WeightLimit int32
	Value       int32
	Level       int16
	Magic       int8
	Stats       object.Stats
	Resist      object.Resist
	AttackType  uint32
	Flags       object.Flags

	Speed     float32
	SpeedLeft float32

	Face       uint16
	Visibility uint8 // 0 means the face is drawn only when nothing covers it
	Animation  uint16
	Invisible  int16
	GlowRadius int8

	MoveType        object.MoveType
	MoveBlock       object.MoveType
	MoveAllow       object.MoveType
	MoveOn          object.MoveType
	MoveOff         object.MoveType
	MoveSlow        object.MoveType
	MoveSlowPenalty float32
	MapLayer        uint8

	Direction int8
	Facing    int8
	LastSp    int16
	LastGrace int16

	KeyValues object.KeyValues
}

// Object is the universal game entity. Records live in the World's arena;
// pointers to them stay valid until the record is freed, after which Tag is
// zero and FlagFreed is set.
type Object struct {
	id   ObjectID
	Tag  uint32 // unique for the life of the process; 0 when free
	Arch *Archetype
	Attrs

	Carrying int32 // weight-adjusted sum of the inventory

	m     *Map
	above ObjectID
	below ObjectID
	env   ObjectID
	inv   ObjectID
	head  ObjectID
	more  ObjectID

	container ObjectID // open container, for players
	owner     ObjectID
	ownerTag  uint32
	enemy     ObjectID
	enemyTag  uint32

	activeNext ObjectID
	activePrev ObjectID
	onActive   bool
}

func (o *Object) ID() ObjectID           { return o.id }
func (o *Object) Map() *Map              { return o.m }
func (o *Object) Has(f object.Flag) bool { return o.Flags.Has(f) }
func (o *Object) Set(f object.Flag)      { o.Flags.Set(f) }
func (o *Object) Clear(f object.Flag)    { o.Flags.Clear(f) }

// Removed reports whether o is linked into neither a map nor a container.
func (o *Object) Removed() bool { return o.Flags.Has(object.FlagRemoved) }

// Freed reports whether o has been returned to the pool.
func (o *Object) Freed() bool { return o.Flags.Has(object.FlagFreed) }

// IsHead reports whether o is a single-part object or the head of a body.
func (o *Object) IsHead() bool { return o.head.IsZero() }

// Multipart reports whether o's body spans more than one part.
func (o *Object) Multipart() bool { return !o.more.IsZero() || !o.head.IsZero() }

// Total is the weight o adds to whatever holds it. Stacks are assumed to
// have no inventory.
func (o *Object) Total() int32 {
	if o.Nrof > 0 {
		return o.Weight * int32(o.Nrof)
	}
	return o.Weight + o.Carrying
}

// Count is the stack size, counting an unstackable object as one.
func (o *Object) Count() uint32 {
	if o.Nrof == 0 {
		return 1
	}
	return o.Nrof
}

// Archetype is a named template. Multi-part archetypes chain their parts
// through More; each part's Clone.X/Y is its offset from the head.
type Archetype struct {
	Name  shstr.Handle
	Clone Attrs
	Head  *Archetype
	More  *Archetype
}

// Parts reports the number of parts in the archetype's body.
func (a *Archetype) Parts() int {
	n := 0
	for p := a; p != nil; p = p.More {
		n++
	}
	return n
}

var zeroHandle shstr.Handle

func (a *Attrs) strings() []*shstr.Handle {
	return []*shstr.Handle{
		&a.Name, &a.NamePl, &a.Title, &a.Race, &a.Slaying,
		&a.Skill, &a.Msg, &a.Lore, &a.Material, &a.CustomName,
	}
}
