package object

import "github.com/wograld/server/internal/shstr"

// KeyValue is one custom attribute. Both sides are interned.
type KeyValue struct {
	Key   shstr.Handle
	Value shstr.Handle
}

// KeyValues is a sparse association list. Most objects have none, so a
// slice scanned linearly is the right shape.
type KeyValues []KeyValue

// Get returns the value stored under key.
func (kv KeyValues) Get(key shstr.Handle) (shstr.Handle, bool) {
	for _, e := range kv {
		if e.Key == key {
			return e.Value, true
		}
	}
	return shstr.Handle{}, false
}

// Index returns the position of key, or -1.
func (kv KeyValues) Index(key shstr.Handle) int {
	for i, e := range kv {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// Equal reports whether both lists hold the same pairs, regardless of order.
func (kv KeyValues) Equal(other KeyValues) bool {
	return kv.subsetOf(other) && other.subsetOf(kv)
}

func (kv KeyValues) subsetOf(other KeyValues) bool {
	for _, e := range kv {
		v, ok := other.Get(e.Key)
		if !ok || v != e.Value {
			return false
		}
	}
	return true
}
