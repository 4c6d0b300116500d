package world

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wograld/server/internal/core/event"
	"github.com/wograld/server/internal/object"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	return New(zap.NewNop(), event.NewBus(), Options{PoolBatch: 8, Seed: 1})
}

// addArch registers a single-part archetype. edit may tweak the template.
func addArch(t *testing.T, w *World, name string, typ object.Type, edit func(a *Attrs)) *Archetype {
	t.Helper()
	at := &Archetype{Name: w.Intern(name)}
	at.Clone.Name = w.Intern(name)
	at.Clone.Type = typ
	if edit != nil {
		edit(&at.Clone)
	}
	require.NoError(t, w.AddArchetype(at))
	return at
}

func addMap(t *testing.T, w *World, path string, width, height int) *Map {
	t.Helper()
	m := NewMap(path, width, height)
	require.NoError(t, w.AddMap(m))
	w.SetMapState(m, MapInMemory)
	return m
}

func spawn(t *testing.T, w *World, arch string, m *Map, x, y int) *Object {
	t.Helper()
	o, err := w.NewObject(arch)
	require.NoError(t, err)
	placed, err := w.InsertInMapAt(o, m, nil, 0, x, y)
	require.NoError(t, err)
	require.NotNil(t, placed)
	return placed
}

func newPlayer(t *testing.T, w *World, name string) *Object {
	t.Helper()
	if w.Archetype("human") == nil {
		addArch(t, w, "human", object.TypePlayer, func(a *Attrs) {
			a.Flags.Set(object.FlagAlive)
			a.MoveType = object.MoveWalk
			a.Stats.Hp = 10
			a.Stats.Str = 10
			a.Level = 1
		})
	}
	o, err := w.NewObject("human")
	require.NoError(t, err)
	w.MakePlayer(o, name)
	w.strs.Release(o.Name)
	o.Name = w.Intern(name)
	return o
}

// messages collects the text sent to a player since the last call.
type messages struct {
	bus *event.Bus
	got []string
	to  ObjectID
}

func watchMessages(w *World, to *Object) *messages {
	ms := &messages{bus: w.bus, to: to.id}
	event.Subscribe(w.bus, func(m event.Message) {
		if m.To == ms.to {
			ms.got = append(ms.got, m.Text)
		}
	})
	return ms
}

func (ms *messages) flush() []string {
	ms.bus.SwapBuffers()
	ms.bus.DispatchAll()
	out := ms.got
	ms.got = nil
	return out
}

func stackIDs(w *World, m *Map, x, y int) []ObjectID {
	var ids []ObjectID
	for _, o := range w.Stack(m, x, y) {
		ids = append(ids, o.id)
	}
	return ids
}

// requireCarrying checks the cached Carrying of o and every container
// inside it against a full recount.
func requireCarrying(t *testing.T, w *World, o *Object, msgAndArgs ...any) {
	t.Helper()
	cached := map[*Object]int32{}
	var walk func(o *Object)
	walk = func(o *Object) {
		cached[o] = o.Carrying
		for it := w.Obj(o.inv); it != nil; it = w.Obj(it.below) {
			if it.Nrof == 0 {
				walk(it)
			}
		}
	}
	walk(o)
	w.SumWeight(o)
	for c, got := range cached {
		require.Equal(t, c.Carrying, got, msgAndArgs...)
	}
}
