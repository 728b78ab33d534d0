package objzrt

import "github.com/appsworld/objzrt/abi"

// ClassRef stands in for "the class itself" as a message receiver: class
// methods and +initialize dispatch against one of these rather than an
// Object, since classes in this runtime are arena entries, not heap
// objects (Design Notes: "Class as cyclic graph" — there is no boxed
// Class instance to point a receiver at). IMP's receiver parameter
// accepts either an *Object or a ClassRef.
type ClassRef struct{ ID abi.ClassID }

// nilIMP is returned for a send to a nil receiver
// (original_source/objc/src/message.c: __objc_nil_method) — it answers
// every message with nil rather than panicking.
func nilIMP(receiver any, sel abi.Selector, args ...any) any { return nil }

var initializeSel = abi.MakeSelector("initialize", "")

// SendMessage dispatches sel to receiver with args, returning whatever
// the resolved IMP returns. A nil receiver is answered by nilIMP without
// ever consulting the class tables. An unresolved selector logs and
// returns nil rather than panicking — original_source logs "cannot send
// message" and returns a nil IMP too.
func (rt *Runtime) SendMessage(receiver *Object, sel abi.Selector, args ...any) any {
	if receiver == nil {
		return nilIMP(receiver, sel, args...)
	}
	imp := rt.LookupIMP(receiver.isa, sel)
	rt.sendInitializeIfNeeded(receiver.isa)
	if imp == nil {
		rt.log.Printf("objzrt: cannot send message %q to class id %d", sel.Name(), receiver.isa)
		return nil
	}
	return imp(receiver, sel, args...)
}

// SendMessageToClass dispatches a class-side (+) message: ref identifies
// the class, sel is looked up starting at its metaclass.
func (rt *Runtime) SendMessageToClass(ref ClassRef, sel abi.Selector, args ...any) any {
	cls := rt.classes.Class(ref.ID)
	if cls == nil {
		return nil
	}
	metaID := ref.ID
	if !cls.Flags.IsMeta() {
		metaID = cls.Meta
	}
	imp := rt.LookupIMP(metaID, sel)
	rt.sendInitializeIfNeeded(ref.ID)
	if imp == nil {
		rt.log.Printf("objzrt: cannot send class message %q to %q", sel.Name(), cls.Name)
		return nil
	}
	return imp(ref, sel, args...)
}

// SendSuper dispatches sel starting at superID (the caller's static
// compile-time superclass) rather than receiver's dynamic class —
// original_source/objc/src/message.c: objc_msg_lookup_super.
func (rt *Runtime) SendSuper(receiver *Object, superID abi.ClassID, sel abi.Selector, args ...any) any {
	if receiver == nil {
		return nilIMP(receiver, sel, args...)
	}
	imp := rt.resolveAndSearch(superID, sel)
	if imp == nil {
		rt.log.Printf("objzrt: cannot send message %q via super starting at class id %d", sel.Name(), superID)
		return nil
	}
	return imp(receiver, sel, args...)
}

// LookupIMP resolves sel starting at class id, consulting id's own
// dispatch cache first (§4.4) and falling back to a full superclass-chain
// hash-table walk on a miss, memoizing whatever it finds into id's own
// cache — not the ancestor's where the method actually lives, so the
// fast path is always "this exact class, one probe" after the first
// send. It triggers the one-time category load on the very first call
// ever made to any Runtime method that sends a message.
func (rt *Runtime) LookupIMP(id abi.ClassID, sel abi.Selector) abi.IMP {
	rt.ensureCategoriesLoaded()
	if id == abi.NoClassID || sel.IsZero() {
		return nil
	}
	if imp, ok := rt.caches.Lookup(id, sel); ok {
		return imp
	}
	imp := rt.resolveAndSearch(id, sel)
	if imp != nil {
		rt.caches.Insert(id, sel, imp)
	}
	return imp
}

// resolveAndSearch walks from id up the superclass chain, resolving each
// class the first time it's visited (lazy ivar fixup / method-hash
// registration, §4.2) and returning the first hash-table hit.
func (rt *Runtime) resolveAndSearch(id abi.ClassID, sel abi.Selector) abi.IMP {
	for cur := id; cur != abi.NoClassID; {
		cls := rt.classes.Class(cur)
		if cls == nil {
			return nil
		}
		if !cls.Flags.IsResolved() {
			rt.classes.Resolve(cur, rt.registerMethodList)
			cls = rt.classes.Class(cur)
		}
		if imp, ok := rt.hash.Lookup(cur, cls.Name, cls.Flags.IsMeta(), sel.Name()); ok {
			return imp
		}
		cur = cls.Super
	}
	return nil
}

// sendInitializeIfNeeded finds id's metaclass and, if it hasn't been
// initialized yet, walks up to the root first before sending +initialize
// to id's own class — original_source/objc/src/message.c:
// __objc_send_initialize.
func (rt *Runtime) sendInitializeIfNeeded(id abi.ClassID) {
	cls := rt.classes.Class(id)
	if cls == nil {
		return
	}
	metaID := id
	if !cls.Flags.IsMeta() {
		metaID = cls.Meta
	}
	rt.sendInitialize(metaID)
}

func (rt *Runtime) sendInitialize(metaID abi.ClassID) {
	if metaID == abi.NoClassID {
		return
	}
	meta := rt.classes.Class(metaID)
	if meta == nil {
		return
	}
	// Mark initialized before recursing to the superclass's metaclass:
	// this is what breaks a cycle if a root class's own +initialize (or
	// a category on it) sends a message that re-enters here before the
	// mark would otherwise have been made.
	if !rt.classes.MarkInitialized(metaID) {
		return
	}
	rt.sendInitialize(meta.Super)

	imp := rt.resolveAndSearch(metaID, initializeSel)
	if imp == nil {
		return
	}
	// +initialize receives the instance class object as self, not the
	// metaclass — look the instance class back up by name.
	var receiver any = ClassRef{ID: metaID}
	if instanceID, ok := rt.classes.LookupClassID(meta.Name); ok {
		receiver = ClassRef{ID: instanceID}
	}
	imp(receiver, initializeSel)
}

// RespondsToSelector reports whether id (or an ancestor) implements sel,
// without triggering +initialize — original_source's
// class_respondsToSelector / object_respondsToSelector only ever call
// the raw lookup.
func (rt *Runtime) RespondsToSelector(id abi.ClassID, sel abi.Selector) bool {
	return rt.resolveAndSearch(id, sel) != nil
}
