package world

import (
	"fmt"
	"sort"
)

// AddArchetype registers at (and the parts chained from it) under its name.
// Parts are not registered separately.
func (w *World) AddArchetype(at *Archetype) error {
	name := at.Name.String()
	if name == "" {
		return fmt.Errorf("add archetype: empty name")
	}
	if _, dup := w.archetypes[name]; dup {
		return fmt.Errorf("add archetype %s: %w", name, ErrDuplicateArchetype)
	}
	for p := at.More; p != nil; p = p.More {
		p.Head = at
	}
	w.archetypes[name] = at
	return nil
}

// Archetype returns the archetype registered as name, or nil.
func (w *World) Archetype(name string) *Archetype {
	return w.archetypes[name]
}

// ArchetypeNames lists every registered archetype, sorted.
func (w *World) ArchetypeNames() []string {
	names := make([]string, 0, len(w.archetypes))
	for n := range w.archetypes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewObject instantiates the full body of the named archetype.
func (w *World) NewObject(name string) (*Object, error) {
	at, ok := w.archetypes[name]
	if !ok {
		return nil, fmt.Errorf("new object %s: %w", name, ErrUnknownArchetype)
	}
	return w.CreateArch(at)
}
