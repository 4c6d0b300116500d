package scripting

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/wograld/server/internal/core/event"
	"github.com/wograld/server/internal/object"
	"github.com/wograld/server/internal/world"
)

type fixture struct {
	w   *world.World
	bus *event.Bus
	m   *world.Map
	e   *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bus := event.NewBus()
	w := world.New(zap.NewNop(), bus, world.Options{PoolBatch: 8, Seed: 1})

	arch := func(name string, typ object.Type, edit func(a *world.Attrs)) {
		at := &world.Archetype{Name: w.Intern(name)}
		at.Clone.Name = w.Intern(name)
		at.Clone.Type = typ
		if edit != nil {
			edit(&at.Clone)
		}
		require.NoError(t, w.AddArchetype(at))
	}
	arch("human", object.TypePlayer, func(a *world.Attrs) {
		a.Flags.Set(object.FlagAlive)
		a.MoveType = object.MoveWalk
		a.Stats.Str = 10
	})
	arch("lever", object.TypeMiscObject, nil)
	arch("pit", object.TypeTrigger, func(a *world.Attrs) {
		a.Flags.Set(object.FlagNoPick)
		a.MoveOn = object.MoveWalk
	})
	arch("rock", object.TypeMiscObject, func(a *world.Attrs) { a.Weight = 100 })
	arch("clock", object.TypeMiscObject, func(a *world.Attrs) { a.Speed = 1 })

	m := world.NewMap("town", 5, 5)
	require.NoError(t, w.AddMap(m))
	w.SetMapState(m, world.MapInMemory)

	e, err := NewEngine("", w, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	w.SetHooks(e.Hooks())
	return &fixture{w: w, bus: bus, m: m, e: e}
}

func (f *fixture) spawn(t *testing.T, arch string, x, y int) *world.Object {
	t.Helper()
	o, err := f.w.NewObject(arch)
	require.NoError(t, err)
	placed, err := f.w.InsertInMapAt(o, f.m, nil, 0, x, y)
	require.NoError(t, err)
	require.NotNil(t, placed)
	return placed
}

func (f *fixture) player(t *testing.T, name string, x, y int) *world.Object {
	t.Helper()
	o, err := f.w.NewObject("human")
	require.NoError(t, err)
	f.w.MakePlayer(o, name)
	require.NoError(t, f.w.SetProperty(o, world.PropName, world.StringValue(name)))
	placed, err := f.w.InsertInMapAt(o, f.m, nil, 0, x, y)
	require.NoError(t, err)
	return placed
}

// said collects everything told to anyone until the next flush.
func (f *fixture) said() func() []string {
	var got []string
	f.bus.SwapBuffers()
	f.bus.DispatchAll()
	event.Subscribe(f.bus, func(m event.Message) { got = append(got, m.Text) })
	return func() []string {
		f.bus.SwapBuffers()
		f.bus.DispatchAll()
		out := got
		got = nil
		return out
	}
}

func (f *fixture) global(name string) lua.LValue {
	return f.e.vm.GetGlobal(name)
}

func TestApply_ArchetypeHandler(t *testing.T) {
	f := newFixture(t)
	pl := f.player(t, "aria", 1, 1)
	lever := f.spawn(t, "lever", 1, 2)
	flush := f.said()

	require.NoError(t, f.e.LoadString(`
		function apply_lever(item, who)
			who:tell("The " .. item:get("name") .. " clicks.")
			return true
		end`))

	assert.True(t, f.w.Apply(lever, pl))
	assert.True(t, lever.Has(object.FlagBeenApplied))
	assert.Equal(t, []string{"The lever clicks."}, flush())
}

func TestApply_KeyValueHandlerWins(t *testing.T) {
	f := newFixture(t)
	pl := f.player(t, "aria", 1, 1)
	lever := f.spawn(t, "lever", 1, 2)
	require.True(t, f.w.WriteKey(lever, "on_apply", "secret_lever", true))

	require.NoError(t, f.e.LoadString(`
		used = ""
		function apply_lever() used = "plain" return true end
		function secret_lever() used = "secret" return true end`))

	assert.True(t, f.w.Apply(lever, pl))
	assert.Equal(t, lua.LString("secret"), f.global("used"))
}

func TestApply_FallsBackWhenScriptDeclines(t *testing.T) {
	f := newFixture(t)
	pl := f.player(t, "aria", 1, 1)
	lever := f.spawn(t, "lever", 1, 2)
	flush := f.said()

	tests := []struct {
		name string
		src  string
	}{
		{"returns false", `function apply_lever() return false end`},
		{"raises", `function apply_lever() error("boom") end`},
		{"missing named handler", `function apply_lever() return true end`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, f.e.LoadString(tt.src))
			if tt.name == "missing named handler" {
				require.True(t, f.w.WriteKey(lever, "on_apply", "nobody_defined_this", true))
			}
			assert.False(t, f.w.Apply(lever, pl))
			assert.Equal(t, []string{"I don't know how to apply the lever."}, flush())
		})
	}
}

func TestMoveTrigger_FreesVictim(t *testing.T) {
	f := newFixture(t)
	f.spawn(t, "pit", 2, 2)
	require.NoError(t, f.e.LoadString(`
		function move_pit(trap, victim)
			victim:free()
			return true
		end`))

	rock, err := f.w.NewObject("rock")
	require.NoError(t, err)
	tag := rock.Tag
	got, err := f.w.InsertInMapAt(rock, f.m, nil, 0, 2, 2)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.True(t, world.WasDestroyed(rock, tag))
	assert.Len(t, f.w.Stack(f.m, 2, 2), 1)
	assert.NoError(t, f.w.Fault())
}

func TestMoveTrigger_Teleports(t *testing.T) {
	f := newFixture(t)
	f.spawn(t, "pit", 2, 2)
	pl := f.player(t, "aria", 1, 2)
	require.NoError(t, f.e.LoadString(`
		function move_pit(trap, victim)
			local ok, err = victim:teleport("town", 4, 4)
			assert(ok, err)
			return true
		end`))

	require.True(t, f.w.MoveOb(pl, 3, nil))
	assert.Equal(t, 4, pl.X)
	assert.Equal(t, 4, pl.Y)
}

func TestProcess_TimeHandler(t *testing.T) {
	f := newFixture(t)
	clock := f.spawn(t, "clock", 0, 0)
	require.NoError(t, f.e.LoadString(`
		function time_clock(o)
			o:set("food", o:get("food") + 1)
			return true
		end`))

	// the first tick only charges speed_left
	for i := 0; i < 4; i++ {
		require.NoError(t, f.w.ProcessActive())
	}
	assert.EqualValues(t, 3, clock.Stats.Food)
}

func TestObjectAPI(t *testing.T) {
	f := newFixture(t)
	pl := f.player(t, "aria", 1, 1)
	rock := f.spawn(t, "rock", 1, 1)
	f.e.vm.SetGlobal("pl", f.e.pushObject(pl))
	f.e.vm.SetGlobal("rock", f.e.pushObject(rock))

	t.Run("properties", func(t *testing.T) {
		require.NoError(t, f.e.LoadString(`
			rock:set("name", "pebble")
			rock:set("speed", 0.5)
			assert(rock:get("speed") == 0.5)
			assert(rock:get("map") == "town")
			assert(rock:get("env") == nil)`))
		assert.Equal(t, "pebble", rock.Name.String())
		assert.InDelta(t, 0.5, rock.Speed, 1e-6)
	})

	t.Run("flags and keys", func(t *testing.T) {
		require.NoError(t, f.e.LoadString(`
			rock:set_flag("no_pick", true)
			assert(rock:flag("no_pick"))
			assert(rock:write_key("owner_note", "mine", true))
			assert(rock:read_key("owner_note") == "mine")
			assert(rock:read_key("missing") == nil)`))
		assert.True(t, rock.Has(object.FlagNoPick))
		require.NoError(t, f.e.LoadString(`rock:set_flag("no_pick", false)`))
	})

	t.Run("pickup and drop", func(t *testing.T) {
		require.NoError(t, f.e.LoadString(`
			local got = assert(pl:pickup(rock))
			assert(got:get("env") == pl)
			local dropped = assert(pl:drop(got))
			assert(dropped:get("env") == nil)`))
		assert.Nil(t, f.w.Env(rock))
	})

	t.Run("refused pickup returns the message", func(t *testing.T) {
		require.NoError(t, f.e.LoadString(`
			rock:set_flag("no_pick", true)
			local got, msg = pl:pickup(rock)
			assert(got == nil)
			last_msg = msg
			rock:set_flag("no_pick", false)`))
		assert.Equal(t, lua.LString("You can't pick up the pebble."), f.global("last_msg"))
	})

	t.Run("head and enemy", func(t *testing.T) {
		require.NoError(t, f.e.LoadString(`
			assert(rock:head() == rock)
			assert(rock:more() == nil)
			assert(pl:enemy() == nil)`))
		f.w.SetEnemy(pl, rock)
		require.NoError(t, f.e.LoadString(`assert(pl:enemy() == rock)`))
		f.w.SetEnemy(pl, nil)
	})

	t.Run("errors raise", func(t *testing.T) {
		assert.Error(t, f.e.LoadString(`rock:get("no_such_property")`))
		assert.Error(t, f.e.LoadString(`rock:set("tag", 7)`))
		assert.Error(t, f.e.LoadString(`rock:flag("no_such_flag")`))
		assert.Error(t, f.e.LoadString(`rock:insert_map("nowhere", 0, 0)`))
	})
}

func TestObjectHandle_GoesStale(t *testing.T) {
	f := newFixture(t)
	rock := f.spawn(t, "rock", 3, 3)
	require.NoError(t, f.e.LoadString(`saved = wograld.find(` + strconv.FormatUint(uint64(rock.Tag), 10) + `)`))
	require.NoError(t, f.e.LoadString(`assert(saved:valid())`))

	require.NoError(t, f.w.Remove(rock))
	require.NoError(t, f.w.FreeTree(rock))
	// the freed record is reused by the next allocation
	_, err := f.w.NewObject("rock")
	require.NoError(t, err)

	require.NoError(t, f.e.LoadString(`assert(not saved:valid())`))
	assert.Error(t, f.e.LoadString(`saved:get("name")`))
}

func TestModule(t *testing.T) {
	f := newFixture(t)
	f.player(t, "aria", 0, 0)
	flush := f.said()

	require.NoError(t, f.e.LoadString(`
		local r = assert(wograld.create("rock"))
		placed = assert(r:insert_map("town", 4, 0))
		assert(wograld.find_named("aria"):get("name") == "aria")
		assert(wograld.find(placed:tag()) == placed)
		local none, msg = wograld.create("dragon")
		assert(none == nil and msg ~= nil)
		wograld.tell_all("Hear ye.")
		wograld.log("module ready")`))

	assert.Len(t, f.w.Stack(f.m, 4, 0), 1)
	assert.Equal(t, []string{"Hear ye."}, flush())
}

func TestNewEngine_LoadsScriptDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "core"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "triggers"), 0o755))
	write := func(rel, src string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, rel), []byte(src), 0o644))
	}
	write("core/util.lua", `function greet(n) return "hello " .. n end`)
	write("triggers/pit.lua", `function move_pit() return greet("pit") == "hello pit" end`)
	write("main.lua", `loaded_root = true`)
	write("README.txt", `not lua`)

	f := newFixture(t)
	e, err := NewEngine(dir, f.w, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, lua.LTrue, e.vm.GetGlobal("loaded_root"))
	pit := f.spawn(t, "pit", 0, 0)
	rock, err := f.w.NewObject("rock")
	require.NoError(t, err)
	assert.True(t, e.MoveApply(f.w, pit, rock, nil))
}

func TestNewEngine_BadScript(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.lua"), []byte(`function (`), 0o644))
	_, err := NewEngine(dir, nil, zap.NewNop())
	assert.Error(t, err)
}
