// Package shstr interns attribute strings with reference counts. Two handles
// carry the same text exactly when they are the same handle, so callers
// compare strings with == and never look at their contents.
package shstr

// Handle is an interned string. The zero Handle means "no string".
type Handle struct {
	e *entry
}

type entry struct {
	text string
	refs int
}

// String returns the interned text, or "" for the zero Handle.
func (h Handle) String() string {
	if h.e == nil {
		return ""
	}
	return h.e.text
}

// IsZero reports whether h names no string.
func (h Handle) IsZero() bool { return h.e == nil }

// Table owns the interned strings. Single-goroutine access only.
type Table struct {
	entries map[string]*entry
}

func NewTable() *Table {
	return &Table{entries: make(map[string]*entry, 1024)}
}

// Intern returns the canonical handle for text and takes one reference.
// The empty string interns to the zero Handle.
func (t *Table) Intern(text string) Handle {
	if text == "" {
		return Handle{}
	}
	e, ok := t.entries[text]
	if !ok {
		e = &entry{text: text}
		t.entries[text] = e
	}
	e.refs++
	return Handle{e: e}
}

// Find returns the handle for text without taking a reference.
func (t *Table) Find(text string) (Handle, bool) {
	e, ok := t.entries[text]
	if !ok {
		return Handle{}, false
	}
	return Handle{e: e}, true
}

// AddRef takes one more reference on h and returns it.
func (t *Table) AddRef(h Handle) Handle {
	if h.e != nil {
		h.e.refs++
	}
	return h
}

// Release drops one reference. The string leaves the table when the last
// reference goes.
func (t *Table) Release(h Handle) {
	if h.e == nil || h.e.refs == 0 {
		return
	}
	h.e.refs--
	if h.e.refs == 0 {
		if cur, ok := t.entries[h.e.text]; ok && cur == h.e {
			delete(t.entries, h.e.text)
		}
	}
}

// Refs reports the reference count of h.
func (t *Table) Refs(h Handle) int {
	if h.e == nil {
		return 0
	}
	return h.e.refs
}

// Len is the number of distinct live strings.
func (t *Table) Len() int { return len(t.entries) }
