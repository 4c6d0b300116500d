package world

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// InternalError reports a broken engine invariant: removing a removed
// object, freeing a freed one, inserting into nothing. The World that
// raised it is faulted and refuses further mutation.
type InternalError struct {
	Op     string
	Tag    uint32
	Name   string
	Detail string
}

func (e *InternalError) Error() string {
	if e.Tag == 0 && e.Name == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	}
	return fmt.Sprintf("%s: %s (tag %d, %q)", e.Op, e.Detail, e.Tag, e.Name)
}

// IsInternal reports whether err carries an InternalError.
func IsInternal(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}

// ActionError is a recoverable failure with text meant for the player.
// Err, when set, classifies the failure for callers.
type ActionError struct {
	Msg string
	Err error
}

func (e *ActionError) Error() string { return e.Msg }
func (e *ActionError) Unwrap() error { return e.Err }

func actionf(format string, args ...any) *ActionError {
	return &ActionError{Msg: fmt.Sprintf(format, args...)}
}

var (
	ErrMapNotLoaded       = errors.New("map not in memory")
	ErrOutOfMap           = errors.New("coordinates outside the map")
	ErrBlocked            = errors.New("destination blocked")
	ErrNoFreeSpot         = errors.New("no free spot")
	ErrUnknownArchetype   = errors.New("unknown archetype")
	ErrUnknownMap         = errors.New("unknown map")
	ErrUnknownProperty    = errors.New("unknown property")
	ErrReadOnlyProperty   = errors.New("property is read-only")
	ErrPropertyKind       = errors.New("wrong value kind for property")
	ErrCannotPick         = errors.New("cannot pick up")
	ErrNotContained       = errors.New("object is not in a container")
	ErrTooHeavy           = errors.New("too heavy")
	ErrDuplicateMap       = errors.New("map already registered")
	ErrDuplicateArchetype = errors.New("archetype already registered")
)

// Fault returns the internal error that stopped this World, if any.
func (w *World) Fault() error { return w.fault }

// violation logs a broken invariant, faults the World and returns the
// error. With AbortOnInvariant set it panics instead.
func (w *World) violation(op string, o *Object, format string, args ...any) error {
	err := &InternalError{Op: op, Detail: fmt.Sprintf(format, args...)}
	fields := []zap.Field{zap.String("op", op), zap.String("detail", err.Detail)}
	if o != nil {
		err.Tag = o.Tag
		err.Name = o.Name.String()
		fields = append(fields, w.objFields(o)...)
	}
	w.log.Error("object invariant violated", fields...)
	if w.fault == nil {
		w.fault = err
	}
	if w.opts.AbortOnInvariant {
		panic(err)
	}
	return err
}

func (w *World) objFields(o *Object) []zap.Field {
	f := []zap.Field{
		zap.Uint32("tag", o.Tag),
		zap.String("name", o.Name.String()),
		zap.Int("x", o.X),
		zap.Int("y", o.Y),
	}
	if o.Arch != nil {
		f = append(f, zap.String("arch", o.Arch.Name.String()))
	}
	if o.m != nil {
		f = append(f, zap.String("map", o.m.Path))
	}
	return f
}
