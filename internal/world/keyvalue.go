package world

import (
	"github.com/wograld/server/internal/object"
)

// ReadKey returns the value stored under key on o.
func (w *World) ReadKey(o *Object, key string) (string, bool) {
	h, ok := w.strs.Find(key)
	if !ok {
		return "", false
	}
	v, ok := o.KeyValues.Get(h)
	if !ok {
		return "", false
	}
	return v.String(), true
}

// WriteKey stores value under key on o. An empty value clears the key,
// except that a key the archetype defines is kept with an empty value so
// the archetype's default does not come back. A missing key is only
// created when addKey is set. It reports whether anything was stored.
func (w *World) WriteKey(o *Object, key, value string, addKey bool) bool {
	if key == "" {
		return false
	}
	if h, ok := w.strs.Find(key); ok {
		if i := o.KeyValues.Index(h); i >= 0 {
			kv := &o.KeyValues[i]
			w.strs.Release(kv.Value)
			kv.Value = zeroHandle
			if value != "" {
				kv.Value = w.strs.Intern(value)
				return true
			}
			if o.Arch != nil && o.Arch.Clone.KeyValues.Index(h) >= 0 {
				return true
			}
			w.strs.Release(kv.Key)
			o.KeyValues = append(o.KeyValues[:i], o.KeyValues[i+1:]...)
			return true
		}
	}
	if !addKey {
		return false
	}
	if value == "" {
		return true
	}
	kv := object.KeyValue{Key: w.strs.Intern(key), Value: w.strs.Intern(value)}
	o.KeyValues = append(object.KeyValues{kv}, o.KeyValues...)
	return true
}

// ClearKeys drops every key/value pair on o.
func (w *World) ClearKeys(o *Object) {
	for _, kv := range o.KeyValues {
		w.strs.Release(kv.Key)
		w.strs.Release(kv.Value)
	}
	o.KeyValues = nil
}
