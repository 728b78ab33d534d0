//go:build objzrt_mutex_dtable

package dtable

import (
	"sync"
	"unsafe"

	"github.com/appsworld/objzrt/abi"
)

// entry is one occupied dispatch-cache slot.
type entry struct {
	selName *string
	imp     abi.IMP
}

// Cache is the mutex-guarded counterpart to cache_lockfree.go's Cache:
// same hash, same linear probe, same semantics, traded for simplicity
// over lock-free reads. Selected with -tags objzrt_mutex_dtable.
type Cache struct {
	mu    sync.RWMutex
	mask  int
	slots []*entry
}

func newCache(size int) *Cache {
	size = nextPow2(size)
	return &Cache{mask: size - 1, slots: make([]*entry, size)}
}

func hashSelectorIndex(namePtr *string, mask int) int {
	p := uintptr(unsafe.Pointer(namePtr))
	return int((p>>2)^(p>>11)) & mask
}

func (c *Cache) Lookup(sel abi.Selector) (abi.IMP, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	namePtr := sel.NamePtr()
	idx := hashSelectorIndex(namePtr, c.mask)
	start := idx
	for {
		e := c.slots[idx]
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

func (c *Cache) Insert(sel abi.Selector, imp abi.IMP) {
	c.mu.Lock()
	defer c.mu.Unlock()
	namePtr := sel.NamePtr()
	idx := hashSelectorIndex(namePtr, c.mask)
	start := idx
	for {
		e := c.slots[idx]
		if e == nil || sameSelName(e.selName, namePtr) {
			c.slots[idx] = &entry{selName: namePtr, imp: imp}
			return
		}
		idx = (idx + 1) & c.mask
		if idx == start {
			return
		}
	}
}

func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.slots {
		c.slots[i] = nil
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

// Registry is the mutex-guarded counterpart to cache_lockfree.go's
// Registry.
type Registry struct {
	mu     sync.Mutex
	size   int
	caches map[abi.ClassID]*Cache
}

func NewRegistry(size int) *Registry {
	return &Registry{size: size, caches: make(map[abi.ClassID]*Cache)}
}

func (r *Registry) Lookup(id abi.ClassID, sel abi.Selector) (abi.IMP, bool) {
	r.mu.Lock()
	c := r.caches[id]
	r.mu.Unlock()
	if c == nil {
		return nil, false
	}
	return c.Lookup(sel)
}

func (r *Registry) Insert(id abi.ClassID, sel abi.Selector, imp abi.IMP) {
	r.mu.Lock()
	c, ok := r.caches[id]
	if !ok {
		c = newCache(r.size)
		r.caches[id] = c
	}
	r.mu.Unlock()
	c.Insert(sel, imp)
}

func (r *Registry) Flush(id abi.ClassID) {
	r.mu.Lock()
	c := r.caches[id]
	r.mu.Unlock()
	if c != nil {
		c.Flush()
	}
}

func (r *Registry) FlushAll() {
	r.mu.Lock()
	caches := make([]*Cache, 0, len(r.caches))
	for _, c := range r.caches {
		caches = append(caches, c)
	}
	r.mu.Unlock()
	for _, c := range caches {
		c.Flush()
	}
}
