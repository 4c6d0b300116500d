package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput     Phase = iota // 0: drain queued move intents
	PhasePreUpdate              // 1: deliver last tick's events
	PhaseUpdate                 // 2: active objects take their turn
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
