package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/wograld/server/internal/world"
)

// Event names a trigger a script can handle.
type Event string

const (
	EventMove  Event = "move"  // something stepped on or off the object
	EventApply Event = "apply" // a player used the object
	EventTime  Event = "time"  // the object's turn on the active list
)

// keyFor is the key/value an object uses to name its own handler.
func (ev Event) keyFor() string { return "on_" + string(ev) }

// Engine wraps a single gopher-lua VM running trigger scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
	w   *world.World
}

// NewEngine creates a Lua engine bound to w and loads all scripts from the
// given directory. An empty directory name loads nothing.
func NewEngine(scriptsDir string, w *world.World, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, w: w}
	e.registerObjectType()
	e.registerModule()

	if scriptsDir == "" {
		return e, nil
	}
	// Shared helpers first, then per-feature directories
	for _, sub := range []string{"core", "triggers", "items", "maps"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs a chunk of Lua source, typically to define handlers.
func (e *Engine) LoadString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("load lua chunk: %w", err)
	}
	return nil
}

// Hooks returns the world hooks backed by this engine.
func (e *Engine) Hooks() world.Hooks {
	return world.Hooks{Move: e, Apply: e, Process: e}
}

// handler finds the Lua function handling ev for o: the global named by
// o's on_<event> key, or else the global <event>_<archetype>.
func (e *Engine) handler(o *world.Object, ev Event) (*lua.LFunction, string) {
	if name, ok := e.w.ReadKey(o, ev.keyFor()); ok && name != "" {
		if fn, ok := e.vm.GetGlobal(name).(*lua.LFunction); ok {
			return fn, name
		}
		e.log.Warn("lua handler not found",
			zap.String("name", name), zap.Uint32("tag", o.Tag), zap.String("event", string(ev)))
		return nil, ""
	}
	if o.Arch == nil {
		return nil, ""
	}
	name := string(ev) + "_" + o.Arch.Name.String()
	if fn, ok := e.vm.GetGlobal(name).(*lua.LFunction); ok {
		return fn, name
	}
	return nil, ""
}

// fire runs the handler for ev on o with the given arguments. It reports
// whether a handler ran and returned a true value.
func (e *Engine) fire(o *world.Object, ev Event, args ...*world.Object) bool {
	fn, name := e.handler(o, ev)
	if fn == nil {
		return false
	}
	lArgs := make([]lua.LValue, 0, len(args)+1)
	lArgs = append(lArgs, e.pushObject(o))
	for _, a := range args {
		lArgs = append(lArgs, e.pushObject(a))
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.log.Error("lua handler error",
			zap.String("func", name), zap.Uint32("tag", o.Tag), zap.Error(err))
		return false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return lua.LVAsBool(result)
}

// MoveApply runs the move handler of trap as fn(trap, victim, originator).
func (e *Engine) MoveApply(_ *world.World, trap, victim, originator *world.Object) bool {
	return e.fire(trap, EventMove, victim, originator)
}

// Apply runs the apply handler of item as fn(item, who).
func (e *Engine) Apply(_ *world.World, item, who *world.Object) bool {
	return e.fire(item, EventApply, who)
}

// Process runs the time handler of o as fn(o).
func (e *Engine) Process(_ *world.World, o *world.Object) bool {
	return e.fire(o, EventTime)
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
