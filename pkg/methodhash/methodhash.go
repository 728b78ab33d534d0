// Package methodhash implements the global open-addressed method hash
// table every class shares (§4.3), grounded on
// original_source/objc/src/hash.c. It is the system of record for "does
// this class (or one of its ancestors) implement this selector" — the
// per-class dispatch cache in pkg/dtable exists purely to avoid walking
// here on every send.
package methodhash

import (
	"sync"

	"github.com/appsworld/objzrt/abi"
)

// Table is a fixed-size linear-probed hash table keyed by
// (class, method name, type encoding). Two entries are registered per
// method — one with its type encoding, one without — so a lookup that
// doesn't care about types (the common dispatch path) and one that does
// (introspection) both hit directly, the double-insert original_source
// performs in __objc_class_register_method_list.
type Table struct {
	mu    sync.RWMutex
	slots []slot
	size  int
}

type slot struct {
	occupied bool
	class    abi.ClassID
	isMeta   bool
	method   string
	types    string // "" means "registered without a type encoding"
	hasTypes bool
	imp      abi.IMP
}

// New allocates a table with the given slot count. size should be a
// sizable prime or at least not a power of two sharing factors with
// typical string hash distributions; original_source uses 512.
func New(size int) *Table {
	if size <= 0 {
		size = 1
	}
	return &Table{slots: make([]slot, size), size: size}
}

// compute mirrors __objc_hash_compute: a 31-multiply rolling hash over the
// class name, bumped by 0x10000 for a metaclass, then folded over the
// method name and (if present) the type encoding.
func compute(className string, isMeta bool, method, types string, hasTypes bool, size int) int {
	var h uint64
	for i := 0; i < len(className); i++ {
		h = h*31 + uint64(className[i])
	}
	if isMeta {
		h += 0x10000
	}
	for i := 0; i < len(method); i++ {
		h = h*31 + uint64(method[i])
	}
	if hasTypes {
		for i := 0; i < len(types); i++ {
			h = h*31 + uint64(types[i])
		}
	}
	return int(h % uint64(size))
}

func match(s *slot, class abi.ClassID, isMeta bool, method string, types string, hasTypes bool) bool {
	if !s.occupied || s.class != class || s.isMeta != isMeta || s.method != method {
		return false
	}
	if hasTypes {
		return s.hasTypes && s.types == types
	}
	return true
}

// registerOne inserts a single (class, method[, types]) -> imp entry,
// replacing an exact match in place and probing linearly past a
// collision. Returns false if the table is full and wrapped all the way
// back to the starting slot without finding room or a match
// (__objc_hash_register's `if (hash == index) return NULL`).
func (t *Table) registerOne(classID abi.ClassID, className string, isMeta bool, method, types string, hasTypes bool, imp abi.IMP) bool {
	index := compute(className, isMeta, method, types, hasTypes, t.size)
	i := index
	for t.slots[i].occupied {
		if match(&t.slots[i], classID, isMeta, method, types, hasTypes) {
			t.slots[i].imp = imp
			return true
		}
		i = (i + 1) % t.size
		if i == index {
			return false
		}
	}
	t.slots[i] = slot{
		occupied: true,
		class:    classID,
		isMeta:   isMeta,
		method:   method,
		types:    types,
		hasTypes: hasTypes,
		imp:      imp,
	}
	return true
}

// Register installs sel/imp for classID under both keys (with and
// without the type encoding). className and isMeta identify the class
// the way the hash function needs them; classID is the identity the
// match step compares against. It reports whether both inserts
// succeeded — a full table drops the second (or first) silently after
// logging is the caller's responsibility, since this package has no
// logger of its own (it's a pure data structure, like the teacher's
// pkg/trie).
func (t *Table) Register(classID abi.ClassID, className string, isMeta bool, sel abi.Selector, imp abi.IMP) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	okWithTypes := true
	if sel.Types != "" {
		okWithTypes = t.registerOne(classID, className, isMeta, sel.Name(), sel.Types, true, imp)
	}
	okBare := t.registerOne(classID, className, isMeta, sel.Name(), "", false, imp)
	return okWithTypes && okBare
}

// Lookup finds the IMP registered for (classID, className, isMeta,
// method), ignoring type encoding — the dispatch path never has one to
// match against.
func (t *Table) Lookup(classID abi.ClassID, className string, isMeta bool, method string) (abi.IMP, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	index := compute(className, isMeta, method, "", false, t.size)
	i := index
	for t.slots[i].occupied {
		if match(&t.slots[i], classID, isMeta, method, "", false) {
			return t.slots[i].imp, true
		}
		i = (i + 1) % t.size
		if i == index {
			return nil, false
		}
	}
	return nil, false
}

// LookupTyped finds the IMP registered for (classID, className, isMeta,
// method, types), used by introspection paths that need to distinguish
// overloads by type encoding.
func (t *Table) LookupTyped(classID abi.ClassID, className string, isMeta bool, method, types string) (abi.IMP, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	index := compute(className, isMeta, method, types, true, t.size)
	i := index
	for t.slots[i].occupied {
		if match(&t.slots[i], classID, isMeta, method, types, true) {
			return t.slots[i].imp, true
		}
		i = (i + 1) % t.size
		if i == index {
			return nil, false
		}
	}
	return nil, false
}
