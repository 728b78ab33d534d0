package objzrt

import "sync"

// autoreleasePool is one pushed scope: a bounded LIFO buffer of objects
// due for Release when the scope pops, linked to its parent scope for
// nested-pool isolation (§3, grounded on
// original_source/objc/include/objc/OZAutoreleasePool.h's
// `{id _objects[CAPACITY]; unsigned int _count; OZAutoreleasePool *_parent;}`).
type autoreleasePool struct {
	objects []*Object
	parent  *autoreleasePool
}

// PoolToken is returned by PushAutoreleasePool and must be passed back to
// PopAutoreleasePool to drain that exact scope. Popping anything other
// than the current top returns ErrPoolUnderflow rather than silently
// draining the wrong scope.
type PoolToken struct{ pool *autoreleasePool }

// autoreleaseStack is the pool stack a Runtime owns. It is process-wide
// rather than per-OS-thread: Go exposes no public goroutine-local
// storage to key a true per-thread stack on, and original_source's own
// stack only ever has one execution context actively pushing/popping at
// a time (the registry lock already serializes everything else this
// runtime does). A single mutex-guarded stack reproduces the same
// observable nesting behavior; true concurrent isolation across
// goroutines is the one piece of §3 this port does not attempt.
type autoreleaseStack struct {
	mu       sync.Mutex
	top      *autoreleasePool
	capacity int
}

func newAutoreleaseStack(capacity int) *autoreleaseStack {
	return &autoreleaseStack{capacity: capacity}
}

func (s *autoreleaseStack) push() PoolToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &autoreleasePool{parent: s.top}
	s.top = p
	return PoolToken{pool: p}
}

func (s *autoreleaseStack) addObject(obj *Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.top == nil {
		return ErrPoolUnderflow
	}
	if len(s.top.objects) >= s.capacity {
		return ErrPoolUnderflow
	}
	s.top.objects = append(s.top.objects, obj)
	return nil
}

func (s *autoreleaseStack) pop(tok PoolToken) ([]*Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.pool == nil || s.top != tok.pool {
		return nil, ErrPoolUnderflow
	}
	objs := s.top.objects
	s.top = s.top.parent
	return objs, nil
}

// claimTop removes the most recently added occurrence of obj from the
// current scope without releasing it, used by the return-value-ownership
// handshake (refcount.go) to skip an otherwise-redundant retain/release
// round trip.
func (s *autoreleaseStack) claimTop(obj *Object) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.top == nil {
		return false
	}
	objs := s.top.objects
	for i := len(objs) - 1; i >= 0; i-- {
		if objs[i] == obj {
			s.top.objects = append(objs[:i], objs[i+1:]...)
			return true
		}
	}
	return false
}

// PushAutoreleasePool opens a new scope nested inside whatever is
// currently on top, returning a token that must be passed to
// PopAutoreleasePool exactly once
// (original_source: __objc_autoreleasepool_push).
func (rt *Runtime) PushAutoreleasePool() PoolToken {
	return rt.pools.push()
}

// PopAutoreleasePool drains tok's scope, releasing every object it
// accumulated, most recently added first, and restores its parent as the current scope
// (original_source: __objc_autoreleasepool_pop). Popping out of order —
// any token other than the current top — reports ErrPoolUnderflow and
// leaves the stack untouched.
func (rt *Runtime) PopAutoreleasePool(tok PoolToken) error {
	objs, err := rt.pools.pop(tok)
	if err != nil {
		return err
	}
	for i := len(objs) - 1; i >= 0; i-- {
		rt.Release(objs[i])
	}
	return nil
}

// Autorelease adds obj to the current scope, to be released when it
// pops, and returns obj unchanged for chaining. Calling this with no
// scope pushed logs and leaks obj rather than panicking — the same
// fail-safe original_source's bounded-capacity pool takes when full.
func (rt *Runtime) Autorelease(obj *Object) *Object {
	if obj == nil {
		return nil
	}
	if err := rt.pools.addObject(obj); err != nil {
		rt.log.Printf("objzrt: no autorelease pool pushed, or the current pool is full; leaking object")
	}
	return obj
}
