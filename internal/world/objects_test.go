package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wograld/server/internal/object"
)

func TestOwner_StaleAfterRecycle(t *testing.T) {
	w := newTestWorld(t)
	owner := w.Allocate()
	owner.Clear(object.FlagRemoved)
	pet := w.Allocate()

	w.SetOwner(pet, owner)
	require.Same(t, owner, w.Owner(pet))

	owner.Set(object.FlagRemoved)
	require.NoError(t, w.Free(owner))
	// the record comes back with a new identity
	reused := w.Allocate()
	reused.Clear(object.FlagRemoved)
	require.Same(t, owner, reused)

	assert.Nil(t, w.Owner(pet))
	assert.True(t, pet.owner.IsZero())
}

func TestSetOwner_FollowsChain(t *testing.T) {
	w := newTestWorld(t)
	pl := w.Allocate()
	pl.Clear(object.FlagRemoved)
	golem := w.Allocate()
	golem.Clear(object.FlagRemoved)
	bolt := w.Allocate()

	w.SetOwner(golem, pl)
	w.SetOwner(bolt, golem)
	assert.Same(t, pl, w.Owner(bolt))

	w.ClearOwner(bolt)
	assert.Nil(t, w.Owner(bolt))
}

func TestKeyValues(t *testing.T) {
	w := newTestWorld(t)
	addArch(t, w, "lever", object.TypeButton, func(a *Attrs) {
		a.KeyValues = object.KeyValues{{Key: w.Intern("connected"), Value: w.Intern("7")}}
	})

	t.Run("archetype default", func(t *testing.T) {
		o, err := w.NewObject("lever")
		require.NoError(t, err)
		v, ok := w.ReadKey(o, "connected")
		require.True(t, ok)
		assert.Equal(t, "7", v)

		// clearing keeps the key so the default stays hidden
		assert.True(t, w.WriteKey(o, "connected", "", false))
		v, ok = w.ReadKey(o, "connected")
		assert.True(t, ok)
		assert.Empty(t, v)

		// and the archetype is untouched
		at := w.Archetype("lever")
		assert.Equal(t, "7", at.Clone.KeyValues[0].Value.String())
	})

	t.Run("add, overwrite and remove", func(t *testing.T) {
		o, err := w.NewObject("lever")
		require.NoError(t, err)

		assert.False(t, w.WriteKey(o, "on_apply", "open_gate", false))
		assert.True(t, w.WriteKey(o, "on_apply", "open_gate", true))
		v, ok := w.ReadKey(o, "on_apply")
		require.True(t, ok)
		assert.Equal(t, "open_gate", v)
		assert.Equal(t, "on_apply", o.KeyValues[0].Key.String())

		assert.True(t, w.WriteKey(o, "on_apply", "close_gate", false))
		v, _ = w.ReadKey(o, "on_apply")
		assert.Equal(t, "close_gate", v)

		assert.True(t, w.WriteKey(o, "on_apply", "", false))
		_, ok = w.ReadKey(o, "on_apply")
		assert.False(t, ok)
		assert.Len(t, o.KeyValues, 1)
	})

	t.Run("missing", func(t *testing.T) {
		o, err := w.NewObject("lever")
		require.NoError(t, err)
		_, ok := w.ReadKey(o, "never-interned-key")
		assert.False(t, ok)
		assert.True(t, w.WriteKey(o, "blank", "", true))
		_, ok = w.ReadKey(o, "blank")
		assert.False(t, ok)
		assert.False(t, w.WriteKey(o, "", "x", true))
	})

	t.Run("clear", func(t *testing.T) {
		o, err := w.NewObject("lever")
		require.NoError(t, err)
		h := w.Intern("connected")
		refs := w.Strings().Refs(h)
		w.ClearKeys(o)
		assert.Empty(t, o.KeyValues)
		assert.Equal(t, refs-1, w.Strings().Refs(h))
		w.Strings().Release(h)
	})
}

func TestClone(t *testing.T) {
	w, m := arrowWorld(t)
	addArch(t, w, "chest", object.TypeContainer, nil)
	chest := spawn(t, w, "chest", m, 3, 4)
	for _, n := range []uint32{1, 2, 3} {
		a := newArrows(t, w, n)
		a.Weight = int32(n) // keep the stacks apart
		_, err := w.InsertInto(a, chest)
		require.NoError(t, err)
	}
	w.SetOwner(chest, newPlayer(t, w, "kim"))

	c, err := w.Clone(chest)
	require.NoError(t, err)
	assert.True(t, c.Removed())
	assert.NotEqual(t, chest.Tag, c.Tag)
	assert.Zero(t, c.X)
	assert.Zero(t, c.Y)
	assert.Equal(t, chest.Carrying, c.Carrying)

	var want, got []uint32
	for _, it := range w.Inventory(chest) {
		want = append(want, it.Nrof)
	}
	for _, it := range w.Inventory(c) {
		got = append(got, it.Nrof)
		assert.Same(t, c, w.Env(it))
	}
	assert.Equal(t, want, got)
}

func TestClone_MultipartOffsets(t *testing.T) {
	w, m := arrowWorld(t)
	addBigArch(t, w, "dragon")
	d, err := w.NewObject("dragon")
	require.NoError(t, err)
	_, err = w.InsertInMapAt(d, m, nil, 0, 2, 1)
	require.NoError(t, err)

	c, err := w.Clone(w.More(d))
	require.NoError(t, err)
	parts := w.Parts(c)
	require.Len(t, parts, 4)
	var offs [][2]int
	for _, p := range parts {
		offs = append(offs, [2]int{p.X, p.Y})
		assert.Same(t, c, w.Head(p))
	}
	assert.Equal(t, [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}, offs)
}

// addBigArch registers a 2x2 creature.
func addBigArch(t *testing.T, w *World, name string) *Archetype {
	t.Helper()
	var head, prev *Archetype
	for _, off := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		at := &Archetype{Name: w.Intern(name)}
		at.Clone.Name = w.Intern(name)
		at.Clone.Type = object.TypeMiscObject
		at.Clone.Flags.Set(object.FlagAlive)
		at.Clone.MoveType = object.MoveWalk
		at.Clone.X, at.Clone.Y = off[0], off[1]
		if head == nil {
			head = at
		} else {
			prev.More = at
		}
		prev = at
	}
	require.NoError(t, w.AddArchetype(head))
	return head
}

func TestPresent(t *testing.T) {
	w, m := arrowWorld(t)
	floor := spawn(t, w, "floor", m, 1, 1)
	arrows := spawn(t, w, "arrow", m, 1, 1)

	assert.Same(t, floor, w.Present(object.TypeFloor, m, 1, 1))
	assert.Same(t, arrows, w.PresentArch(w.Archetype("arrow"), m, 1, 1))
	assert.Nil(t, w.Present(object.TypeArrow, m, 0, 0))
	assert.Nil(t, w.Present(object.TypeArrow, m, -1, 0))

	addArch(t, w, "pouch", object.TypeContainer, nil)
	pouch, err := w.NewObject("pouch")
	require.NoError(t, err)
	outer, err := w.NewObject("pouch")
	require.NoError(t, err)
	inner := newArrows(t, w, 1)
	_, err = w.InsertInto(inner, pouch)
	require.NoError(t, err)
	_, err = w.InsertInto(pouch, outer)
	require.NoError(t, err)

	assert.Same(t, pouch, w.PresentInInventory(object.TypeContainer, outer))
	assert.Same(t, pouch, w.PresentInInventoryByName(object.TypeNone, "pouch", outer))
	assert.Nil(t, w.PresentArchInInventory(w.Archetype("arrow"), outer))
	assert.Same(t, inner, w.PresentArchDeep(w.Archetype("arrow"), outer))

	w.SetCheat(outer)
	assert.True(t, outer.Has(object.FlagWasWiz))
	assert.True(t, inner.Has(object.FlagWasWiz))
	w.UnflagInventory(outer, object.FlagWasWiz)
	assert.False(t, inner.Has(object.FlagWasWiz))
	assert.True(t, outer.Has(object.FlagWasWiz))
}

func TestMatchName(t *testing.T) {
	w := newTestWorld(t)
	addArch(t, w, "sword", object.TypeWeapon, func(a *Attrs) {
		a.Name = w.Intern("long sword")
		a.NamePl = w.Intern("long swords")
	})
	o, err := w.NewObject("sword")
	require.NoError(t, err)
	o.CustomName = w.Intern("Stinger")

	for _, name := range []string{"LONG SWORD", "long swords", "stinger", "Sword"} {
		assert.True(t, w.MatchName(name, o), name)
	}
	assert.False(t, w.MatchName("dagger", o))
}

type tickCounter map[uint32]int

func (c tickCounter) Process(_ *World, o *Object) bool {
	c[o.Tag]++
	return true
}

func TestProcessActive(t *testing.T) {
	w, m := arrowWorld(t)
	addArch(t, w, "slow", object.TypeMiscObject, func(a *Attrs) { a.Speed = 0.5 })
	addArch(t, w, "fast", object.TypeMiscObject, func(a *Attrs) { a.Speed = 1 })
	counts := tickCounter{}
	w.SetHooks(Hooks{Process: counts})

	slow := spawn(t, w, "slow", m, 0, 0)
	fast := spawn(t, w, "fast", m, 1, 0)
	idle := spawn(t, w, "floor", m, 2, 0)
	assert.Equal(t, 2, w.ActiveCount())

	for i := 0; i < 4; i++ {
		require.NoError(t, w.ProcessActive())
	}
	assert.Equal(t, 2, counts[slow.Tag])
	assert.Equal(t, 3, counts[fast.Tag])
	assert.Zero(t, counts[idle.Tag])

	fast.Speed = 0
	w.UpdateSpeed(fast)
	assert.Equal(t, 1, w.ActiveCount())

	// nothing on a swapped map gets ticked
	w.SetMapState(m, MapSwapped)
	before := counts[slow.Tag]
	for i := 0; i < 4; i++ {
		require.NoError(t, w.ProcessActive())
	}
	assert.Equal(t, before, counts[slow.Tag])
}

func TestProcessActive_DropsRemovedObjects(t *testing.T) {
	w, m := arrowWorld(t)
	addArch(t, w, "slow", object.TypeMiscObject, func(a *Attrs) { a.Speed = 0.5 })
	o := spawn(t, w, "slow", m, 0, 0)
	require.NoError(t, w.Remove(o))

	require.NoError(t, w.ProcessActive())
	assert.Zero(t, w.ActiveCount())
	assert.Nil(t, w.Fault())
}
