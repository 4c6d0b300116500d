package world

import (
	"golang.org/x/text/cases"

	"github.com/wograld/server/internal/object"
)

// Present returns the first object of type typ on (x, y) of m.
func (w *World) Present(typ object.Type, m *Map, x, y int) *Object {
	nm, nx, ny, ok := m.Resolve(x, y)
	if !ok {
		return nil
	}
	for o := w.MapBottom(nm, nx, ny); o != nil; o = w.Obj(o.above) {
		if o.Type == typ {
			return o
		}
	}
	return nil
}

// PresentArch returns the first instance of at on (x, y) of m.
func (w *World) PresentArch(at *Archetype, m *Map, x, y int) *Object {
	nm, nx, ny, ok := m.Resolve(x, y)
	if !ok {
		return nil
	}
	for o := w.MapBottom(nm, nx, ny); o != nil; o = w.Obj(o.above) {
		if o.Arch == at {
			return o
		}
	}
	return nil
}

// PresentInInventory returns the first direct content of o of type typ.
func (w *World) PresentInInventory(typ object.Type, o *Object) *Object {
	for it := w.Obj(o.inv); it != nil; it = w.Obj(it.below) {
		if it.Type == typ {
			return it
		}
	}
	return nil
}

// PresentInInventoryByName matches type and exact name among o's direct
// contents. A zero type matches any type.
func (w *World) PresentInInventoryByName(typ object.Type, name string, o *Object) *Object {
	for it := w.Obj(o.inv); it != nil; it = w.Obj(it.below) {
		if (typ == object.TypeNone || it.Type == typ) && it.Name.String() == name {
			return it
		}
	}
	return nil
}

// PresentArchInInventory returns the first direct content of o made from at.
func (w *World) PresentArchInInventory(at *Archetype, o *Object) *Object {
	for it := w.Obj(o.inv); it != nil; it = w.Obj(it.below) {
		if it.Arch == at {
			return it
		}
	}
	return nil
}

// PresentArchDeep searches o's inventory at any depth for an instance of at.
func (w *World) PresentArchDeep(at *Archetype, o *Object) *Object {
	for it := w.Obj(o.inv); it != nil; it = w.Obj(it.below) {
		if it.Arch == at {
			return it
		}
		if found := w.PresentArchDeep(at, it); found != nil {
			return found
		}
	}
	return nil
}

// FindByTypeSubtype returns the first direct content of o with the given
// type and subtype.
func (w *World) FindByTypeSubtype(o *Object, typ object.Type, subtype uint8) *Object {
	for it := w.Obj(o.inv); it != nil; it = w.Obj(it.below) {
		if it.Type == typ && it.Subtype == subtype {
			return it
		}
	}
	return nil
}

// FlagInventory sets fl on everything o contains, at any depth.
func (w *World) FlagInventory(o *Object, fl object.Flag) {
	for it := w.Obj(o.inv); it != nil; it = w.Obj(it.below) {
		it.Set(fl)
		w.FlagInventory(it, fl)
	}
}

// UnflagInventory clears fl on everything o contains, at any depth.
func (w *World) UnflagInventory(o *Object, fl object.Flag) {
	for it := w.Obj(o.inv); it != nil; it = w.Obj(it.below) {
		it.Clear(fl)
		w.UnflagInventory(it, fl)
	}
}

// SetCheat marks o and its inventory as tainted by wizard intervention.
func (w *World) SetCheat(o *Object) {
	o.Set(object.FlagWasWiz)
	w.FlagInventory(o, object.FlagWasWiz)
}

// MatchName reports whether a player-typed name refers to o: its name,
// plural name, custom name or archetype name, ignoring case.
func (w *World) MatchName(name string, o *Object) bool {
	fold := cases.Fold()
	want := fold.String(name)
	for _, h := range []string{o.Name.String(), o.NamePl.String(), o.CustomName.String()} {
		if h != "" && fold.String(h) == want {
			return true
		}
	}
	return o.Arch != nil && fold.String(o.Arch.Name.String()) == want
}
