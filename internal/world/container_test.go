package world

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wograld/server/internal/core/event"
	"github.com/wograld/server/internal/object"
)

// carrierWorld gives a player holding a bag that halves the weight of what
// it carries.
func carrierWorld(t *testing.T) (w *World, m *Map, pl, bag *Object) {
	t.Helper()
	w, m = arrowWorld(t)
	addArch(t, w, "sack", object.TypeContainer, func(a *Attrs) {
		a.Weight = 100
		a.Stats.Str = 50
		a.WeightLimit = 100000
	})
	pl = newPlayer(t, w, "aria")
	_, err := w.InsertInMapAt(pl, m, nil, 0, 2, 2)
	require.NoError(t, err)

	bag, err = w.NewObject("sack")
	require.NoError(t, err)
	_, err = w.InsertInto(bag, pl)
	require.NoError(t, err)
	return w, m, pl, bag
}

func TestInsertInto_WeightThroughContainers(t *testing.T) {
	w, _, pl, bag := carrierWorld(t)
	require.Equal(t, int32(100), pl.Carrying)

	arrows := newArrows(t, w, 10)
	got, err := w.InsertInto(arrows, bag)
	require.NoError(t, err)
	require.Same(t, arrows, got)

	assert.Equal(t, int32(50), bag.Carrying)
	assert.Equal(t, int32(150), pl.Carrying)
	assert.Same(t, bag, w.Env(arrows))
	assert.Same(t, pl, w.Outermost(arrows))
	assert.Same(t, pl, w.PlayerInv(arrows))
	assert.Nil(t, arrows.Map())

	// the incremental sums match a full recount
	assert.Equal(t, int32(150), w.SumWeight(pl))
	assert.Equal(t, int32(50), bag.Carrying)
}

func TestInsertInto_MergesAndOrders(t *testing.T) {
	w, _, pl, bag := carrierWorld(t)
	first := newArrows(t, w, 4)
	_, err := w.InsertInto(first, pl)
	require.NoError(t, err)
	// newest goes first
	assert.Equal(t, []*Object{first, bag}, w.Inventory(pl))

	more := newArrows(t, w, 6)
	tag := more.Tag
	got, err := w.InsertInto(more, pl)
	require.NoError(t, err)
	assert.Same(t, first, got)
	assert.Equal(t, uint32(10), first.Nrof)
	assert.True(t, WasDestroyed(more, tag))
	assert.Len(t, w.Inventory(pl), 2)
	assert.Equal(t, int32(200), pl.Carrying)
	assert.Equal(t, pl.Carrying, w.SumWeight(pl))
}

func TestInsertInto_NotifiesCarrier(t *testing.T) {
	w, _, pl, bag := carrierWorld(t)
	w.Bus().SwapBuffers()
	var got []event.ItemChanged
	event.Subscribe(w.Bus(), func(e event.ItemChanged) { got = append(got, e) })

	arrows := newArrows(t, w, 2)
	_, err := w.InsertInto(arrows, bag)
	require.NoError(t, err)
	require.NoError(t, w.Remove(arrows))
	w.Bus().SwapBuffers()
	w.Bus().DispatchAll()

	require.Len(t, got, 2)
	assert.Equal(t, pl.ID(), got[0].Player)
	assert.False(t, got[0].Deleted)
	assert.Equal(t, arrows.Tag, got[1].ItemTag)
	assert.True(t, got[1].Deleted)
}

func TestRemove_FromContainerKeepsPosition(t *testing.T) {
	w, _, pl, bag := carrierWorld(t)
	arrows := newArrows(t, w, 10)
	_, err := w.InsertInto(arrows, bag)
	require.NoError(t, err)

	require.NoError(t, w.Remove(arrows))
	assert.Nil(t, w.Env(arrows))
	assert.Same(t, pl.Map(), arrows.Map())
	assert.Equal(t, pl.X, arrows.X)
	assert.Equal(t, pl.Y, arrows.Y)
	assert.Zero(t, bag.Carrying)
	assert.Equal(t, int32(100), pl.Carrying)
}

func TestInsertInto_Violations(t *testing.T) {
	w, _, pl, _ := carrierWorld(t)
	head := &Archetype{Name: w.Intern("ogre")}
	head.Clone.Name = head.Name
	tail := &Archetype{Name: w.Intern("ogre")}
	tail.Clone.Name = tail.Name
	tail.Clone.X = 1
	head.More = tail
	require.NoError(t, w.AddArchetype(head))

	t.Run("multipart", func(t *testing.T) {
		ogre, err := w.NewObject("ogre")
		require.NoError(t, err)
		_, err = w.InsertInto(ogre, pl)
		assert.True(t, IsInternal(err))
	})

	t.Run("into itself", func(t *testing.T) {
		w, _, _, bag := carrierWorld(t)
		require.NoError(t, w.Remove(bag))
		_, err := w.InsertInto(bag, bag)
		assert.True(t, IsInternal(err))
	})

	t.Run("not removed", func(t *testing.T) {
		w, m, _, _ := carrierWorld(t)
		rock := spawn(t, w, "arrow", m, 0, 0)
		other := newArrows(t, w, 1)
		_, err := w.InsertInto(rock, other)
		assert.True(t, IsInternal(err))
	})
}

func TestInsertInto_NestedWeightRoundTrip(t *testing.T) {
	w, _, pl, sack := carrierWorld(t)
	addArch(t, w, "pouch", object.TypeContainer, func(a *Attrs) {
		a.Weight = 40
		a.Stats.Str = 50
		a.WeightLimit = 100000
	})
	addArch(t, w, "stone", object.TypeMiscObject, func(a *Attrs) {
		a.Weight = 100
		a.Nrof = 1
	})
	pouch, err := w.NewObject("pouch")
	require.NoError(t, err)
	_, err = w.InsertInto(pouch, sack)
	require.NoError(t, err)
	empty := map[*Object]int32{pl: pl.Carrying, sack: sack.Carrying, pouch: pouch.Carrying}
	require.Equal(t, int32(120), pl.Carrying)

	rng := rand.New(rand.NewSource(3))
	holders := []*Object{sack, pouch}
	for step := 0; step < 300; step++ {
		where := holders[rng.Intn(len(holders))]
		items := w.Inventory(where)
		var loose []*Object
		for _, it := range items {
			if it != pouch {
				loose = append(loose, it)
			}
		}
		if len(loose) > 0 && rng.Intn(2) == 0 {
			it := loose[rng.Intn(len(loose))]
			require.NoError(t, w.Remove(it))
			if rng.Intn(2) == 0 {
				_, err := w.InsertInto(it, holders[rng.Intn(len(holders))])
				require.NoError(t, err)
			} else {
				require.NoError(t, w.FreeTree(it))
			}
		} else {
			name := "stone"
			if rng.Intn(2) == 0 {
				name = "arrow"
			}
			o, err := w.NewObject(name)
			require.NoError(t, err)
			o.Nrof = uint32(rng.Intn(9) + 1)
			// arrows weigh 10; keep scaling exact through both halvings
			if name == "arrow" {
				o.Weight = 20
			}
			_, err = w.InsertInto(o, where)
			require.NoError(t, err)
		}
		requireCarrying(t, w, pl, "step %d", step)
	}

	for _, where := range []*Object{pouch, sack} {
		for _, it := range w.Inventory(where) {
			if it == pouch {
				continue
			}
			require.NoError(t, w.Remove(it))
			require.NoError(t, w.FreeTree(it))
		}
	}
	for o, want := range empty {
		assert.Equal(t, want, o.Carrying, o.Name.String())
	}
}
