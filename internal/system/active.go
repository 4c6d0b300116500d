package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/wograld/server/internal/core/system"
	"github.com/wograld/server/internal/world"
)

// ActiveSystem gives every active object its turn. Phase 2 (Update).
// Once the world faults it stops ticking and reports the fault once.
type ActiveSystem struct {
	w       *world.World
	log     *zap.Logger
	faulted bool
	onFault func(error)
}

func NewActiveSystem(w *world.World, log *zap.Logger, onFault func(error)) *ActiveSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &ActiveSystem{w: w, log: log, onFault: onFault}
}

func (s *ActiveSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ActiveSystem) Update(_ time.Duration) {
	if s.faulted {
		return
	}
	if err := s.w.ProcessActive(); err != nil {
		s.faulted = true
		s.log.Error("world faulted, active objects stopped", zap.Error(err))
		if s.onFault != nil {
			s.onFault(err)
		}
	}
}
