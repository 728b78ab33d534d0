package abi

import "sync"

// internTable canonicalizes selector names to a single *string per unique
// name, process-wide. Dispatch caches and the method hash table compare
// selectors by identity first and fall back to string equality only for
// names that reached the runtime without going through InternSelectorName
// (e.g. a selector decoded fresh off a not-yet-merged load descriptor).
var internTable sync.Map // map[string]*string

// InternSelectorName returns the canonical pointer for name, registering it
// on first sight. Safe for concurrent use from any number of loader or
// message-send goroutines.
func InternSelectorName(name string) *string {
	if v, ok := internTable.Load(name); ok {
		return v.(*string)
	}
	s := name
	actual, _ := internTable.LoadOrStore(name, &s)
	return actual.(*string)
}

// Selector is an immutable {name, type-encoding?} pair. Matching during
// dispatch is by name only; Types is carried for introspection and never
// participates in cache or hash lookups.
type Selector struct {
	name  *string
	Types string
}

// MakeSelector interns name and pairs it with an optional type encoding.
func MakeSelector(name, types string) Selector {
	return Selector{name: InternSelectorName(name), Types: types}
}

// Name returns the selector's name. The zero Selector has an empty name.
func (s Selector) Name() string {
	if s.name == nil {
		return ""
	}
	return *s.name
}

// NamePtr returns the interned name pointer, used as the identity key by
// the dispatch cache.
func (s Selector) NamePtr() *string { return s.name }

// IsZero reports whether s was never assigned a name.
func (s Selector) IsZero() bool { return s.name == nil }

// SameName reports whether two selectors share a name, comparing by
// identity first (the common case once both have been interned) and by
// string equality only as a fallback.
func SameName(a, b Selector) bool {
	if a.name == b.name {
		return true
	}
	if a.name == nil || b.name == nil {
		return false
	}
	return *a.name == *b.name
}
