// Package tweak implements named, runtime-settable word-sized parameters
// referenced from hot paths. Reads are a single relaxed atomic load;
// writes go through Set, called by the configuration protocol (package
// config) or directly by code that already validated its input.
package tweak

import (
	"sync/atomic"
)

// Tweak is a named integer parameter. The zero value is not usable;
// construct with New.
type Tweak struct {
	name        string
	description string
	value       atomic.Int64
	next        atomic.Pointer[Tweak]
}

var head atomic.Pointer[Tweak]

// New registers a new Tweak under name with the given description and
// initial value, and links it into the process-wide registry with a
// CAS-prepend loop so registration is race-free across concurrently
// initializing packages.
func New(name, description string, initial int64) *Tweak {
	t := &Tweak{name: name, description: description}
	t.value.Store(initial)
	for {
		old := head.Load()
		t.next.Store(old)
		if head.CompareAndSwap(old, t) {
			return t
		}
	}
}

// Name returns the tweak's registered name.
func (t *Tweak) Name() string { return t.name }

// Description returns the tweak's human-readable description.
func (t *Tweak) Description() string { return t.description }

// Value is the hot-path read: a single relaxed atomic load.
func (t *Tweak) Value() int64 {
	return t.value.Load()
}

// set is the single store behind Set; package config writes through the
// exported Set.
func (t *Tweak) set(v int64) {
	t.value.Store(v)
}

// Set is exported for direct programmatic use outside the configuration
// protocol (e.g. tests, or a caller that already validated its own input).
func (t *Tweak) Set(v int64) {
	t.set(v)
}

// All returns every registered Tweak, in most-recently-registered-first
// order (the order the CAS-prepend registry naturally yields).
func All() []*Tweak {
	var out []*Tweak
	for t := head.Load(); t != nil; t = t.next.Load() {
		out = append(out, t)
	}
	return out
}

// Find returns the first registered Tweak with the given exact name, or
// nil if none is registered.
func Find(name string) *Tweak {
	for _, t := range All() {
		if t.name == name {
			return t
		}
	}
	return nil
}
