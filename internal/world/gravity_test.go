package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wograld/server/internal/object"
)

// towerWorld stacks a floorless 3x3 "sky" above a paved 3x3 "ground".
// The sky has a floor only along its west column.
func towerWorld(t *testing.T) (w *World, sky, ground *Map) {
	t.Helper()
	w, _ = pushWorld(t)
	sky = NewMap("sky", 3, 3)
	sky.LowerPath = "ground"
	ground = NewMap("ground", 3, 3)
	ground.UpperPath = "sky"
	for _, m := range []*Map{sky, ground} {
		require.NoError(t, w.AddMap(m))
		w.SetMapState(m, MapInMemory)
	}
	w.LinkMaps()
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			spawn(t, w, "floor", ground, x, y)
		}
	}
	for y := 0; y < 3; y++ {
		spawn(t, w, "floor", sky, 0, y)
	}
	return w, sky, ground
}

func TestApplyGravity_FallOnMove(t *testing.T) {
	w, sky, ground := towerWorld(t)
	pl := placePlayer(t, w, "aria", sky, 0, 1)
	assert.False(t, w.ApplyGravity(pl))

	require.True(t, w.MoveObject(pl, dirEast))
	assert.Same(t, ground, pl.Map())
	assert.Equal(t, [2]int{1, 1}, [2]int{pl.X, pl.Y})
	assert.Empty(t, w.Stack(sky, 1, 1))
}

func TestApplyGravity_BlockedBelow(t *testing.T) {
	w, sky, ground := towerWorld(t)
	spawn(t, w, "wall", ground, 2, 2)
	gob, err := w.NewObject("goblin")
	require.NoError(t, err)
	_, err = w.InsertInMapAt(gob, sky, nil, 0, 2, 2)
	require.NoError(t, err)

	assert.False(t, w.ApplyGravity(gob))
	assert.Same(t, sky, gob.Map())

	// flying things never fall
	gob.MoveType = object.MoveFlyLow
	require.NoError(t, w.Remove(gob))
	_, err = w.InsertInMapAt(gob, sky, nil, 0, 1, 0)
	require.NoError(t, err)
	assert.False(t, w.ApplyGravity(gob))
	assert.Same(t, sky, gob.Map())

	// a lower map out of memory holds everything up
	gob.MoveType = object.MoveWalk
	w.SetMapState(ground, MapSwapped)
	assert.False(t, w.ApplyGravity(gob))
	assert.Same(t, sky, gob.Map())
}

func TestApplyGravity_MaxFallDepth(t *testing.T) {
	w := New(nil, nil, Options{PoolBatch: 8, Seed: 1, MaxFallDepth: 2})
	addArch(t, w, "rock", object.TypeMiscObject, func(a *Attrs) { a.Flags.Set(object.FlagCanRoll) })
	var levels []*Map
	for i, path := range []string{"l0", "l1", "l2", "l3"} {
		m := NewMap(path, 2, 2)
		if i > 0 {
			m.UpperPath = levels[i-1].Path
			levels[i-1].LowerPath = path
		}
		levels = append(levels, m)
	}
	for _, m := range levels {
		require.NoError(t, w.AddMap(m))
		w.SetMapState(m, MapInMemory)
	}
	w.LinkMaps()

	r, err := w.NewObject("rock")
	require.NoError(t, err)
	_, err = w.InsertInMapAt(r, levels[0], nil, 0, 1, 1)
	require.NoError(t, err)

	assert.True(t, w.ApplyGravity(r))
	assert.Same(t, levels[2], r.Map())
}

func TestTryElevate(t *testing.T) {
	w, sky, ground := towerWorld(t)
	pl := placePlayer(t, w, "aria", ground, 1, 1)
	require.True(t, w.TryElevate(pl))
	assert.Same(t, sky, pl.Map())

	// the square above the west column is paved over
	other := placePlayer(t, w, "kim", ground, 0, 2)
	assert.False(t, w.TryElevate(other))
	assert.Same(t, ground, other.Map())

	// nothing above the top map
	assert.False(t, w.TryElevate(pl))
}

func TestCheckAboveForGravity(t *testing.T) {
	w, sky, ground := towerWorld(t)
	b, err := w.NewObject("boulder")
	require.NoError(t, err)
	_, err = w.InsertInMapAt(b, sky, nil, 0, 2, 0)
	require.NoError(t, err)
	stays := spawn(t, w, "rock", sky, 2, 0)

	w.CheckAboveForGravity(ground, 2, 0)
	assert.Same(t, ground, b.Map())
	assert.Same(t, sky, stays.Map())
}

func TestHole(t *testing.T) {
	w, sky, ground := towerWorld(t)
	addArch(t, w, "trapdoor", object.TypeTrapdoor, func(a *Attrs) {
		a.Flags.Set(object.FlagNoPick)
		a.MoveOn = object.MoveWalk
	})
	spawn(t, w, "trapdoor", sky, 0, 0)
	pl := placePlayer(t, w, "aria", sky, 0, 0)
	ms := watchMessages(w, pl)

	assert.Same(t, ground, pl.Map())
	assert.Equal(t, [2]int{0, 0}, [2]int{pl.X, pl.Y})
	assert.Equal(t, []string{"You fall through the trapdoor!"}, ms.flush())
}
