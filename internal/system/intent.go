package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/wograld/server/internal/core/system"
	"github.com/wograld/server/internal/world"
)

// MoveRequest asks for one step of the object with the given tag.
type MoveRequest struct {
	Tag uint32
	Dir int
}

// MoveIntentSystem drains queued move requests and walks the objects
// through the world. Phase 0 (Input). Queue may be called from any
// goroutine; Update runs on the game loop.
type MoveIntentSystem struct {
	w          *world.World
	queue      chan MoveRequest
	maxPerTick int
	log        *zap.Logger
}

func NewMoveIntentSystem(w *world.World, queueSize, maxPerTick int, log *zap.Logger) *MoveIntentSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &MoveIntentSystem{
		w:          w,
		queue:      make(chan MoveRequest, queueSize),
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *MoveIntentSystem) Phase() coresys.Phase { return coresys.PhaseInput }

// Queue adds a request without blocking. It reports false when the queue
// is full and the request was dropped.
func (s *MoveIntentSystem) Queue(req MoveRequest) bool {
	select {
	case s.queue <- req:
		return true
	default:
		return false
	}
}

// Pending reports how many requests wait for the next tick.
func (s *MoveIntentSystem) Pending() int { return len(s.queue) }

func (s *MoveIntentSystem) Update(_ time.Duration) {
	for n := 0; s.maxPerTick <= 0 || n < s.maxPerTick; n++ {
		select {
		case req := <-s.queue:
			s.apply(req)
		default:
			return
		}
	}
}

func (s *MoveIntentSystem) apply(req MoveRequest) {
	if s.w.Fault() != nil {
		return
	}
	o := s.w.FindObject(req.Tag)
	if o == nil {
		s.log.Debug("move for a vanished object", zap.Uint32("tag", req.Tag))
		return
	}
	if req.Dir < 1 || req.Dir > 8 {
		s.log.Warn("move with a bad direction", zap.Uint32("tag", req.Tag), zap.Int("dir", req.Dir))
		return
	}
	if !s.w.MoveOb(o, req.Dir, nil) {
		s.log.Debug("move refused", zap.Uint32("tag", req.Tag), zap.Int("dir", req.Dir))
	}
}
