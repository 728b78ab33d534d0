package objzrt

import "github.com/appsworld/objzrt/abi"

// LookupClass returns the ClassRef for name, or a ClassRef with ID ==
// abi.NoClassID if no class by that name (or alias) has been loaded.
func (rt *Runtime) LookupClass(name string) (ClassRef, bool) {
	id, ok := rt.classes.LookupClassID(name)
	if !ok {
		return ClassRef{ID: abi.NoClassID}, false
	}
	return ClassRef{ID: id}, true
}

// ClassName returns id's compiler-emitted name, or "" for an unknown id.
func (rt *Runtime) ClassName(id abi.ClassID) string {
	cls := rt.classes.Class(id)
	if cls == nil {
		return ""
	}
	return cls.Name
}

// ClassOf returns obj's class.
func (rt *Runtime) ClassOf(obj *Object) abi.ClassID {
	if obj == nil {
		return abi.NoClassID
	}
	return obj.isa
}

// SetClassOf overwrites obj's isa, the primitive behind object_setClass /
// class-swizzling. Callers are responsible for ensuring the new class's
// instance layout is compatible with obj's existing ivar storage.
func (rt *Runtime) SetClassOf(obj *Object, id abi.ClassID) {
	if obj == nil {
		return
	}
	obj.isa = id
}

// IsKindOfClass reports whether obj's class is target or inherits from
// it (original_source: object_isKindOfClass), resolving obj's class first
// so its superclass links are set.
func (rt *Runtime) IsKindOfClass(obj *Object, target abi.ClassID) bool {
	if obj == nil {
		return false
	}
	rt.classes.Resolve(obj.isa, rt.registerMethodList)
	return rt.classes.IsKindOf(obj.isa, target)
}

// InstanceSize returns id's resolved instance size, resolving the class
// first if it hasn't been sent a message yet.
func (rt *Runtime) InstanceSize(id abi.ClassID) int64 {
	rt.classes.Resolve(id, rt.registerMethodList)
	cls := rt.classes.Class(id)
	if cls == nil {
		return 0
	}
	return cls.InstanceSize
}

// Superclass returns id's resolved superclass, or abi.NoClassID for a
// root class or unknown id.
func (rt *Runtime) Superclass(id abi.ClassID) abi.ClassID {
	rt.classes.Resolve(id, rt.registerMethodList)
	cls := rt.classes.Class(id)
	if cls == nil {
		return abi.NoClassID
	}
	return cls.Super
}

// RespondsToSelectorObject reports whether obj's class implements sel.
func (rt *Runtime) RespondsToSelectorObject(obj *Object, sel abi.Selector) bool {
	if obj == nil {
		return false
	}
	return rt.RespondsToSelector(obj.isa, sel)
}

// MetaclassRespondsToSelector reports whether id's metaclass (or id
// itself, if it already is one) implements sel — original_source:
// class_metaclassRespondsToSelector.
func (rt *Runtime) MetaclassRespondsToSelector(id abi.ClassID, sel abi.Selector) bool {
	cls := rt.classes.Class(id)
	if cls == nil {
		return false
	}
	metaID := id
	if !cls.Flags.IsMeta() {
		metaID = cls.Meta
	}
	return rt.RespondsToSelector(metaID, sel)
}

// SelectorName returns sel's name, mirroring sel_getName's triviality —
// kept as a Runtime method purely for API parity with the rest of this
// file; abi.Selector.Name does the same thing with no Runtime needed.
func (rt *Runtime) SelectorName(sel abi.Selector) string { return sel.Name() }

// LookupProtocol returns the ProtocolID for name, if registered.
func (rt *Runtime) LookupProtocol(name string) (abi.ProtocolID, bool) {
	return rt.classes.LookupProtocolID(name)
}

// ClassConformsToProtocol reports whether id (or an ancestor) adopts
// protocol, directly or transitively (§4.10), resolving id first so its
// superclass links are set.
func (rt *Runtime) ClassConformsToProtocol(id abi.ClassID, protocol abi.ProtocolID) bool {
	rt.classes.Resolve(id, rt.registerMethodList)
	return rt.classes.ClassConformsTo(id, protocol)
}

// ProtocolConformsToProtocol reports whether protocol adopts target,
// directly or transitively.
func (rt *Runtime) ProtocolConformsToProtocol(protocol, target abi.ProtocolID) bool {
	return rt.classes.ProtocolConformsTo(protocol, target)
}
