package world

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wograld/server/internal/object"
)

func arrowWorld(t *testing.T) (*World, *Map) {
	t.Helper()
	w := newTestWorld(t)
	addArch(t, w, "arrow", object.TypeArrow, func(a *Attrs) {
		a.Weight = 10
		a.Nrof = 1
	})
	addArch(t, w, "floor", object.TypeFloor, func(a *Attrs) {
		a.Flags.Set(object.FlagIsFloor)
		a.Flags.Set(object.FlagNoPick)
	})
	return w, addMap(t, w, "field", 5, 5)
}

func newArrows(t *testing.T, w *World, n uint32) *Object {
	t.Helper()
	o, err := w.NewObject("arrow")
	require.NoError(t, err)
	o.Nrof = n
	return o
}

func TestCanMerge(t *testing.T) {
	w, _ := arrowWorld(t)

	tests := []struct {
		name string
		edit func(a, b *Object)
		want bool
	}{
		{"identical stacks", func(a, b *Object) {}, true},
		{"different name", func(a, b *Object) { b.Name = w.Intern("bolt") }, false},
		{"different weight", func(a, b *Object) { b.Weight = 11 }, false},
		{"applied", func(a, b *Object) { a.Set(object.FlagApplied) }, false},
		{"inventory lock ignored", func(a, b *Object) { a.Set(object.FlagInvLocked) }, true},
		{"client-sent ignored", func(a, b *Object) { b.Set(object.FlagClientSent) }, true},
		{"cursed differs", func(a, b *Object) { b.Set(object.FlagCursed) }, false},
		{"identified counts as used", func(a, b *Object) {
			a.Set(object.FlagIdentified)
			b.Set(object.FlagIdentified)
			b.Set(object.FlagBeenApplied)
		}, true},
		{"count overflow", func(a, b *Object) { a.Nrof = 1 << 30; b.Nrof = 1 << 30 }, false},
		{"count just fits", func(a, b *Object) { a.Nrof = 1<<30 - 1; b.Nrof = 1 << 30 }, true},
		{"moving and not animated", func(a, b *Object) { a.Speed = 0.5; b.Speed = 0.5 }, false},
		{"animated", func(a, b *Object) {
			a.Speed, b.Speed = 0.5, 0.5
			a.Set(object.FlagIsAnimated)
			b.Set(object.FlagIsAnimated)
		}, true},
		{"key values differ", func(a, b *Object) { w.WriteKey(a, "owner", "kell", true) }, false},
		{"key values match", func(a, b *Object) {
			w.WriteKey(a, "owner", "kell", true)
			w.WriteKey(b, "owner", "kell", true)
		}, true},
		{"custom name differs", func(a, b *Object) { a.CustomName = w.Intern("Sting") }, false},
		{"move type differs", func(a, b *Object) { a.MoveType = object.MoveFlyLow }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := newArrows(t, w, 5), newArrows(t, w, 3)
			tt.edit(a, b)
			assert.Equal(t, tt.want, w.CanMerge(a, b))
			assert.Equal(t, tt.want, w.CanMerge(b, a), "merge must be symmetric")
		})
	}
}

func TestCanMerge_SymmetricOverRandomPairs(t *testing.T) {
	w, _ := arrowWorld(t)
	mutations := []func(o *Object){
		func(o *Object) { o.Set(object.FlagApplied) },
		func(o *Object) { o.Set(object.FlagCursed) },
		func(o *Object) { o.Set(object.FlagIdentified) },
		func(o *Object) { o.Set(object.FlagBeenApplied) },
		func(o *Object) { o.Set(object.FlagInvLocked) },
		func(o *Object) { o.Set(object.FlagIsAnimated) },
		func(o *Object) { o.Weight = 11 },
		func(o *Object) { o.Speed = 0.5 },
		func(o *Object) { o.Nrof = 1 << 30 },
		func(o *Object) { o.Name = w.Intern("bolt") },
		func(o *Object) { w.WriteKey(o, "owner", "kell", true) },
		func(o *Object) { o.MoveType = object.MoveFlyLow },
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		a, b := newArrows(t, w, uint32(rng.Intn(50)+1)), newArrows(t, w, uint32(rng.Intn(50)+1))
		for _, o := range []*Object{a, b} {
			for n := rng.Intn(4); n > 0; n-- {
				mutations[rng.Intn(len(mutations))](o)
			}
		}
		fa, fb := a.Flags, b.Flags

		ab, ba := w.CanMerge(a, b), w.CanMerge(b, a)
		require.Equal(t, ab, ba, "case %d: merge must be symmetric", i)
		require.Equal(t, fa, a.Flags, "case %d", i)
		require.Equal(t, fb, b.Flags, "case %d", i)
	}
}

func TestCanMerge_LeavesFlagsAlone(t *testing.T) {
	w, _ := arrowWorld(t)
	a, b := newArrows(t, w, 1), newArrows(t, w, 1)
	a.Set(object.FlagIdentified)
	b.Set(object.FlagIdentified)
	b.Set(object.FlagBeenApplied)

	require.True(t, w.CanMerge(a, b))
	assert.False(t, a.Has(object.FlagBeenApplied))
}

func TestCanMerge_SelfAndNil(t *testing.T) {
	w, _ := arrowWorld(t)
	a := newArrows(t, w, 2)
	assert.False(t, w.CanMerge(a, a))
	assert.False(t, w.CanMerge(a, nil))
}

func TestCanMerge_Inventories(t *testing.T) {
	w, _ := arrowWorld(t)
	addArch(t, w, "spellbook", object.TypeSpellbook, func(a *Attrs) { a.Nrof = 1 })
	addArch(t, w, "spell", object.TypeSpell, nil)

	book := func(spell string) *Object {
		b, err := w.NewObject("spellbook")
		require.NoError(t, err)
		if spell != "" {
			s, err := w.NewObject("spell")
			require.NoError(t, err)
			s.Name = w.Intern(spell)
			_, err = w.InsertInto(s, b)
			require.NoError(t, err)
		}
		return b
	}

	assert.True(t, w.CanMerge(book("fireball"), book("fireball")))
	assert.False(t, w.CanMerge(book("fireball"), book("frostbolt")))
	assert.False(t, w.CanMerge(book("fireball"), book("")))
}

func TestInsertInMap_MergesIntoExistingStack(t *testing.T) {
	w, m := arrowWorld(t)
	a := newArrows(t, w, 5)
	a.X, a.Y = 2, 2
	placed, err := w.InsertInMap(a, m, nil, 0)
	require.NoError(t, err)
	require.Same(t, a, placed)

	b := newArrows(t, w, 3)
	b.X, b.Y = 2, 2
	bTag := b.Tag
	got, err := w.InsertInMap(b, m, nil, 0)
	require.NoError(t, err)

	assert.Same(t, a, got, "the stack already on the cell survives")
	assert.Equal(t, uint32(8), a.Nrof)
	assert.True(t, WasDestroyed(b, bTag))
	assert.Len(t, w.Stack(m, 2, 2), 1)
}

func TestInsertInMap_NoMergeFlag(t *testing.T) {
	w, m := arrowWorld(t)
	a := newArrows(t, w, 5)
	_, err := w.InsertInMapAt(a, m, nil, 0, 1, 1)
	require.NoError(t, err)
	b := newArrows(t, w, 3)
	got, err := w.InsertInMapAt(b, m, nil, InsNoMerge, 1, 1)
	require.NoError(t, err)

	assert.Same(t, b, got)
	assert.Len(t, w.Stack(m, 1, 1), 2)
}

func TestMergeOb(t *testing.T) {
	w, m := arrowWorld(t)
	a := newArrows(t, w, 4)
	_, err := w.InsertInMapAt(a, m, nil, InsNoMerge, 0, 0)
	require.NoError(t, err)
	b := newArrows(t, w, 6)
	_, err = w.InsertInMapAt(b, m, nil, InsNoMerge, 0, 0)
	require.NoError(t, err)

	got, err := w.MergeOb(b, nil)
	require.NoError(t, err)
	assert.Same(t, a, got)
	assert.Equal(t, uint32(10), a.Nrof)
	assert.True(t, b.Freed())
	assert.Len(t, w.Stack(m, 0, 0), 1)

	single, err := w.NewObject("floor")
	require.NoError(t, err)
	got, err = w.MergeOb(single, nil)
	require.NoError(t, err)
	assert.Nil(t, got, "unstackable objects never merge")
}
