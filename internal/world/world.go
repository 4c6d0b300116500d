package world

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/wograld/server/internal/core/ecs"
	"github.com/wograld/server/internal/core/event"
	"github.com/wograld/server/internal/object"
	"github.com/wograld/server/internal/shstr"
)

// ObjectID is a generation-checked handle into the object arena. Every
// cross reference between objects is stored as an ObjectID, so a link to a
// recycled slot resolves to nil instead of aliasing the new occupant.
type ObjectID = ecs.EntityID

// Options tune a World. Zero values fall back to defaults.
type Options struct {
	PoolBatch        int   // slots added whenever the arena runs dry
	Seed             int64 // RNG seed; 0 picks a fixed default
	AbortOnInvariant bool  // panic on the first internal error
	MaxFallDepth     int   // floors a single gravity step may drop
}

const (
	defaultSeed      = 20050101
	defaultFallDepth = 16
)

// Player is the per-player state the engine needs. It is a sparse
// component: only player objects carry one.
type Player struct {
	Name   string
	RunOn  bool // running; pushing a hostile creature attacks it
	Hidden bool // hidden wizard, does not block movement
	Track  int  // last music track sent
	Killer string
}

// World owns every live object, map and archetype of one simulation.
// Accessed only from the game loop goroutine. No locks needed.
type World struct {
	log  *zap.Logger
	opts Options
	rng  *rand.Rand
	bus  *event.Bus

	strs     *shstr.Table
	pool     *ecs.EntityPool
	chunks   [][]Object
	registry *ecs.Registry
	players  *ecs.PtrComponentStore[Player]
	count    uint32 // last tag handed out; never reused

	archetypes map[string]*Archetype
	maps       map[string]*Map

	hooks      Hooks
	active     ObjectID // head of the active list
	applyDepth int

	fault error
}

// New creates an empty World. bus may be nil when nobody listens for
// notifications.
func New(log *zap.Logger, bus *event.Bus, opts Options) *World {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.PoolBatch <= 0 {
		opts.PoolBatch = ecs.DefaultBatch
	}
	if opts.Seed == 0 {
		opts.Seed = defaultSeed
	}
	if opts.MaxFallDepth <= 0 {
		opts.MaxFallDepth = defaultFallDepth
	}
	w := &World{
		log:        log,
		opts:       opts,
		rng:        rand.New(rand.NewSource(opts.Seed)),
		bus:        bus,
		strs:       shstr.NewTable(),
		pool:       ecs.NewEntityPool(opts.PoolBatch),
		registry:   ecs.NewRegistry(),
		players:    ecs.NewPtrComponentStore[Player](),
		archetypes: make(map[string]*Archetype, 256),
		maps:       make(map[string]*Map, 16),
	}
	w.registry.Register(w.players)
	return w
}

func (w *World) Strings() *shstr.Table        { return w.strs }
func (w *World) Bus() *event.Bus              { return w.bus }
func (w *World) Rand() *rand.Rand             { return w.rng }
func (w *World) SetHooks(h Hooks)             { w.hooks = h }
func (w *World) Hooks() Hooks                 { return w.hooks }
func (w *World) Intern(s string) shstr.Handle { return w.strs.Intern(s) }

// Player returns the player component of o, if o is a player.
func (w *World) Player(o *Object) *Player {
	if o == nil {
		return nil
	}
	p, _ := w.players.Get(o.id)
	return p
}

// MakePlayer attaches player state to o and marks it as a player.
func (w *World) MakePlayer(o *Object, name string) *Player {
	p := &Player{Name: name}
	w.players.Set(o.id, p)
	o.Type = object.TypePlayer
	return p
}

// EachPlayer visits every player object.
func (w *World) EachPlayer(fn func(*Object, *Player)) {
	w.players.Each(func(id ObjectID, p *Player) {
		if o := w.Obj(id); o != nil {
			fn(o, p)
		}
	})
}

// PlayerCount is the number of live player objects.
func (w *World) PlayerCount() int { return w.players.Len() }
