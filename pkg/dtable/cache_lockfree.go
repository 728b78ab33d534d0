//go:build !objzrt_mutex_dtable

package dtable

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/appsworld/objzrt/abi"
)

// entry is published as a whole, immutable node: building it fully before
// the single atomic.Pointer.Store replaces dtable.c's two-step "write imp,
// memory barrier, write sel_name" publication order with one release
// store that carries both fields at once.
type entry struct {
	selName *string
	imp     abi.IMP
}

// Cache is one class's dispatch cache: a fixed power-of-two array of
// atomically published slots, probed linearly on both hash collision and
// lookup, exactly like __objc_dtable_lookup/__objc_dtable_insert.
type Cache struct {
	mask  int
	slots []atomic.Pointer[entry]
}

func newCache(size int) *Cache {
	size = nextPow2(size)
	return &Cache{mask: size - 1, slots: make([]atomic.Pointer[entry], size)}
}

// hashSelector is __objc_dtable_hash: ((p>>2)^(p>>11)), masked to the
// table size. p is the interned selector name's pointer value, used for
// its bit-spread rather than its numeric meaning.
func hashSelector(namePtr *string) uintptr {
	p := uintptr(unsafe.Pointer(namePtr))
	return (p >> 2) ^ (p >> 11)
}

// Lookup probes for sel, matching by pointer identity first (the
// overwhelmingly common case for interned selectors) and falling back to
// string equality for one that reached the cache without interning.
func (c *Cache) Lookup(sel abi.Selector) (abi.IMP, bool) {
	namePtr := sel.NamePtr()
	idx := int(hashSelector(namePtr)) & c.mask
	start := idx
	for {
		e := c.slots[idx].Load()
		if e == nil {
			return nil, false
		}
		if sameSelName(e.selName, namePtr) {
			return e.imp, true
		}
		idx = (idx + 1) & c.mask
		if idx == start {
			return nil, false
		}
	}
}

// Insert publishes imp for sel, replacing an existing entry for the same
// selector in place. A full table silently drops the insert — the cache
// is advisory, so a miss just means the next send pays the hash-table
// lookup again.
func (c *Cache) Insert(sel abi.Selector, imp abi.IMP) {
	namePtr := sel.NamePtr()
	idx := int(hashSelector(namePtr)) & c.mask
	start := idx
	for {
		e := c.slots[idx].Load()
		if e == nil || sameSelName(e.selName, namePtr) {
			c.slots[idx].Store(&entry{selName: namePtr, imp: imp})
			return
		}
		idx = (idx + 1) & c.mask
		if idx == start {
			return
		}
	}
}

// Flush clears every slot, used on category load (§4.5) when a method
// this cache may have memoized could now resolve differently.
func (c *Cache) Flush() {
	for i := range c.slots {
		c.slots[i].Store(nil)
	}
}

func sameSelName(a, b *string) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// Registry owns one Cache per class, created lazily on first Insert and
// published with the same atomic-pointer handshake a single Cache uses
// for its own entries.
type Registry struct {
	mu     sync.Mutex
	size   int
	caches map[abi.ClassID]*atomic.Pointer[Cache]
}

// NewRegistry allocates a dtable registry. size is the starting
// power-of-two slot count for every class's cache (rounded up if not
// already one).
func NewRegistry(size int) *Registry {
	return &Registry{size: size, caches: make(map[abi.ClassID]*atomic.Pointer[Cache])}
}

func (r *Registry) slotFor(id abi.ClassID) *atomic.Pointer[Cache] {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.caches[id]
	if !ok {
		slot = &atomic.Pointer[Cache]{}
		r.caches[id] = slot
	}
	return slot
}

func (r *Registry) existingSlot(id abi.ClassID) *atomic.Pointer[Cache] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.caches[id]
}

// Lookup returns the cached IMP for (id, sel), or false if id has no
// cache yet or the selector isn't in it.
func (r *Registry) Lookup(id abi.ClassID, sel abi.Selector) (abi.IMP, bool) {
	slot := r.existingSlot(id)
	if slot == nil {
		return nil, false
	}
	c := slot.Load()
	if c == nil {
		return nil, false
	}
	return c.Lookup(sel)
}

// Insert memoizes imp for (id, sel), allocating id's cache on first use.
func (r *Registry) Insert(id abi.ClassID, sel abi.Selector, imp abi.IMP) {
	slot := r.slotFor(id)
	c := slot.Load()
	if c == nil {
		c = newCache(r.size)
		slot.Store(c)
	}
	c.Insert(sel, imp)
}

// Flush empties id's cache, if it has one.
func (r *Registry) Flush(id abi.ClassID) {
	slot := r.existingSlot(id)
	if slot == nil {
		return
	}
	if c := slot.Load(); c != nil {
		c.Flush()
	}
}

// FlushAll empties every class's cache, used once after a batch of
// categories is applied (original_source/objc/src/dtable.c:
// __objc_dtable_flush_all).
func (r *Registry) FlushAll() {
	r.mu.Lock()
	slots := make([]*atomic.Pointer[Cache], 0, len(r.caches))
	for _, s := range r.caches {
		slots = append(slots, s)
	}
	r.mu.Unlock()
	for _, s := range slots {
		if c := s.Load(); c != nil {
			c.Flush()
		}
	}
}
