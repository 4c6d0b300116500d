package world

// MoveApplier handles an object stepping on (or off) a trigger. It reports
// true when it fully handled the event.
type MoveApplier interface {
	MoveApply(w *World, trap, victim, originator *Object) bool
}

// Applier handles an explicit apply. Returning false falls back to the
// built-in behaviour.
type Applier interface {
	Apply(w *World, item, who *Object) bool
}

// Processor runs one tick of an active object's behaviour. Returning
// false falls back to the built-in behaviour.
type Processor interface {
	Process(w *World, o *Object) bool
}

// Hooks connects the engine to scripted behaviour. Nil members are skipped.
type Hooks struct {
	Move    MoveApplier
	Apply   Applier
	Process Processor
}
