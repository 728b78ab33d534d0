package objzrt

import "sync/atomic"

// isImmortal reports whether obj's class is flagged immortal (§3),
// short-circuiting every retain/release operation to a no-op —
// original_source/objc/src/refcount.c checks this before touching the
// atomic counter at all.
func (rt *Runtime) isImmortal(obj *Object) bool {
	cls := rt.classes.Class(obj.isa)
	return cls != nil && cls.Flags.IsImmortal()
}

// Retain increments obj's reference count and returns it, or does
// nothing for a nil or immortal object.
func (rt *Runtime) Retain(obj *Object) *Object {
	if obj == nil || rt.isImmortal(obj) {
		return obj
	}
	atomic.AddInt32(&obj.refcount, 1)
	return obj
}

// Release decrements obj's reference count, deallocating it once the
// count reaches zero (sending it -dealloc first, if its class or an
// ancestor implements one). A nil or immortal object is left untouched.
func (rt *Runtime) Release(obj *Object) {
	if obj == nil || rt.isImmortal(obj) {
		return
	}
	if atomic.AddInt32(&obj.refcount, -1) == 0 {
		rt.dealloc(obj)
	}
}

// RefCount returns obj's current reference count (0 for a nil object).
func (rt *Runtime) RefCount(obj *Object) int32 {
	if obj == nil {
		return 0
	}
	return atomic.LoadInt32(&obj.refcount)
}

// StoreStrong implements the compiler-emitted strong-assignment helper:
// retain the new value before releasing the old one (so a shared old==new
// doesn't transiently drop to zero), short-circuiting entirely when the
// two are already identical — original_source/objc/src/arc.c:
// objc_storeStrong's `if (val == old) return;`.
func (rt *Runtime) StoreStrong(slot **Object, value *Object) {
	old := *slot
	if old == value {
		return
	}
	if value != nil {
		rt.Retain(value)
	}
	*slot = value
	if old != nil {
		rt.Release(old)
	}
}

// RetainAutorelease retains obj and adds it to the current autorelease
// scope in one call, used when returning a value the caller doesn't (or
// might not) own a reference to yet.
func (rt *Runtime) RetainAutorelease(obj *Object) *Object {
	rt.Retain(obj)
	return rt.Autorelease(obj)
}

// ReturnToken models the return-value-ownership handshake
// (original_source/objc/src/arc.c's RV_MARKER/`__thread bool _rv_flag`
// pair, which inspects the caller's return address to detect whether it
// immediately consumes an autoreleased value). Go has no equivalent to
// inspecting the caller's PC, so this runtime makes the handshake
// explicit instead: AutoreleaseReturnValue hands back a token,
// RetainAutoreleasedReturnValue consumes it. The optimization this
// preserves is real: if the token's object is still sitting in the
// current autorelease scope, claiming it there skips a redundant
// retain+autorelease+release round trip.
type ReturnToken struct{ obj *Object }

// AutoreleaseReturnValue autoreleases obj and returns a token the
// immediate caller can redeem via RetainAutoreleasedReturnValue.
func (rt *Runtime) AutoreleaseReturnValue(obj *Object) ReturnToken {
	rt.Autorelease(obj)
	return ReturnToken{obj: obj}
}

// RetainAutoreleaseReturnValue retains obj, then defers to
// AutoreleaseReturnValue for the token half of the handshake.
func (rt *Runtime) RetainAutoreleaseReturnValue(obj *Object) ReturnToken {
	rt.Retain(obj)
	return rt.AutoreleaseReturnValue(obj)
}

// RetainAutoreleasedReturnValue redeems tok: if its object is still
// sitting unclaimed in the current autorelease scope, it's removed from
// there directly (ownership transfers to the caller for free); otherwise
// this falls back to a normal retain, exactly as if the handshake had
// never fired.
func (rt *Runtime) RetainAutoreleasedReturnValue(tok ReturnToken) *Object {
	if tok.obj == nil {
		return nil
	}
	if rt.pools.claimTop(tok.obj) {
		return tok.obj
	}
	return rt.Retain(tok.obj)
}
