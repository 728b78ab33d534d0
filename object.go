package objzrt

import "github.com/appsworld/objzrt/abi"

// Object is the concrete refcounted instance every message send operates
// on (§3): an isa class reference, an atomic reference count, and the
// ivar storage the non-fragile ivar offsets (abi.IvarRO.Offset) index
// into. The header shape is deliberately just these two fields — no
// magic number, no lock — matching original_source's
// `struct objc_object { objc_class_t *isa; atomic_t retain_count; }`.
type Object struct {
	isa      abi.ClassID
	refcount int32
	Ivars    []byte
}

// Class returns the object's class.
func (o *Object) Class() abi.ClassID { return o.isa }

// Ivar slices out size bytes at offset from the object's ivar storage —
// the non-fragile ivar access pattern: *ivar.Offset is resolved once by
// classtab.Resolve, then every access reads through it instead of a
// compiled-in literal.
func (o *Object) Ivar(offset, size int64) []byte {
	return o.Ivars[offset : offset+size]
}
