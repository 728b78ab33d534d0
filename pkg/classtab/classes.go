package classtab

import "github.com/appsworld/objzrt/abi"

// registerClassLocked registers ro and, if present, its compiler-emitted
// metaclass. Duplicate names among *instance* classes warn and keep the
// first registration (original_source/objc/src/class.c:
// __objc_class_register); a metaclass never occupies the name index, so
// the legal "instance class and its own metaclass share a name" case
// never reaches the duplicate check at all.
func (r *Registry) registerClassLocked(ro *abi.ClassRO) abi.ClassID {
	if ro == nil || ro.Name == "" {
		return abi.NoClassID
	}
	if existing, ok := r.byName[ro.Name]; ok {
		r.log.Printf("classtab: duplicate class registration for %q, keeping first", ro.Name)
		return existing
	}
	id, ok := r.appendClassLocked(ro, false)
	if !ok {
		return abi.NoClassID
	}
	cls := r.classes[id]
	r.byName[ro.Name] = id

	if ro.Meta != nil {
		metaID, ok := r.appendClassLocked(ro.Meta, true)
		if ok {
			metaCls := r.classes[metaID]
			metaCls.Name = ro.Name
			cls.Meta = metaID
		}
	}
	return id
}

// appendClassLocked copies ro into a fresh arena slot. isMeta forces the
// meta flag. ro.Meta is not followed here; registerClassLocked appends it
// with a separate call.
func (r *Registry) appendClassLocked(ro *abi.ClassRO, isMeta bool) (abi.ClassID, bool) {
	if len(r.classes) >= r.capClasses {
		r.log.Printf("classtab: class table full (%d entries), dropping %q", r.capClasses, ro.Name)
		return abi.NoClassID, false
	}
	size := ro.InstanceSize
	if size < 0 {
		size = -size
	}
	ivars := append([]abi.IvarRO(nil), r.ivarsOf(ro.Ivars)...)
	protoNames := append([]string(nil), ro.ProtocolNames...)
	flags := ro.Flags
	if isMeta {
		flags |= abi.ClassFlagMeta
	}
	cls := &Class{
		Name:          ro.Name,
		SuperName:     ro.SuperName,
		Super:         abi.NoClassID,
		Meta:          abi.NoClassID,
		Methods:       ro.Methods,
		Ivars:         ivars,
		Properties:    ro.Properties,
		ProtocolNames: protoNames,
		InstanceSize:  size,
		Flags:         flags,
		CxxConstruct:  ro.CxxConstruct,
		CxxDestruct:   ro.CxxDestruct,
	}
	id := abi.ClassID(len(r.classes))
	r.classes = append(r.classes, cls)
	return id, true
}

func (r *Registry) ivarsOf(ro *abi.IvarListRO) []abi.IvarRO {
	if ro == nil {
		return nil
	}
	return ro.Ivars
}

// LookupClassID returns the arena index registered for name, if any. It
// never returns a metaclass — those are reached only via Class.Meta.
func (r *Registry) LookupClassID(name string) (abi.ClassID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byName[name]
	return id, ok
}

// Class returns the arena entry for id, or nil if id is out of range.
// Callers must treat the returned pointer as read-only except through
// Resolve, which holds the registry lock for the duration of any
// mutation.
func (r *Registry) Class(id abi.ClassID) *Class {
	if id < 0 || int(id) >= len(r.classes) {
		return nil
	}
	return r.classes[id]
}

// NumClasses returns the current arena length, including metaclasses.
func (r *Registry) NumClasses() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.classes)
}

// AllClassIDs returns every registered class and metaclass ID.
func (r *Registry) AllClassIDs() []abi.ClassID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]abi.ClassID, len(r.classes))
	for i := range r.classes {
		ids[i] = abi.ClassID(i)
	}
	return ids
}

// Resolve performs the non-fragile ivar fixup and superclass/metaclass
// linking for id and (recursively) its unresolved ancestors, calling
// registerMethods for each class whose method list is grafted into the
// hash table for the first time. It mirrors objc_lookup_class's order in
// original_source/objc/src/class.c: register methods (marking resolved
// first, to break cycles through a class that inherits from itself
// indirectly via a not-yet-loaded superclass), wire the metaclass's
// superclass to the superclass's metaclass, register the metaclass's
// methods, then fix up instance ivars.
func (r *Registry) Resolve(id abi.ClassID, registerMethods MethodRegisterFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolveLocked(id, registerMethods)
}

func (r *Registry) resolveLocked(id abi.ClassID, registerMethods MethodRegisterFunc) {
	if id == abi.NoClassID || int(id) >= len(r.classes) {
		return
	}
	cls := r.classes[id]
	r.registerOwnMethodsLocked(id, cls, registerMethods)

	if cls.Flags.IsMeta() {
		return
	}
	if cls.SuperName != "" && cls.Super == abi.NoClassID {
		if sid, ok := r.byName[cls.SuperName]; ok {
			cls.Super = sid
		}
	}
	if cls.Super != abi.NoClassID {
		super := r.classes[cls.Super]
		if !super.Flags.IsResolved() {
			r.resolveLocked(cls.Super, registerMethods)
		}
		if cls.Meta != abi.NoClassID && super.Meta != abi.NoClassID {
			r.classes[cls.Meta].Super = super.Meta
		}
	}
	if cls.Meta != abi.NoClassID {
		r.resolveLocked(cls.Meta, registerMethods)
	}
	r.fixupIvarsLocked(cls)
}

func (r *Registry) registerOwnMethodsLocked(id abi.ClassID, cls *Class, registerMethods MethodRegisterFunc) {
	if cls.Flags.IsResolved() {
		return
	}
	cls.Flags |= abi.ClassFlagResolved
	if registerMethods != nil && cls.Methods != nil {
		registerMethods(id, cls, cls.Methods)
	}
}

// fixupIvarsLocked implements §4.2's three-step non-fragile ivar
// algorithm: start from the superclass's instance size (or the object
// header size for a root/immortal class), align each ivar to
// min(ivar.Size, PointerWidth), write the resolved offset through
// ivar.Offset, and accumulate. Metaclasses never reach here.
func (r *Registry) fixupIvarsLocked(cls *Class) {
	var offset int64
	if cls.Super != abi.NoClassID && !cls.Flags.IsImmortal() {
		offset = r.classes[cls.Super].InstanceSize
	} else {
		offset = HeaderSize
	}
	for i := range cls.Ivars {
		iv := &cls.Ivars[i]
		align := iv.Size
		if align > PointerWidth {
			align = PointerWidth
		}
		if align <= 0 {
			align = 1
		}
		offset = (offset + align - 1) &^ (align - 1)
		if iv.Offset != nil {
			*iv.Offset = offset
		}
		offset += iv.Size
	}
	cls.InstanceSize = offset
}

// MarkInitialized sets id's Initialized flag and reports true, unless it
// was already set, in which case it reports false and leaves state
// untouched. Used to make +initialize's one-shot, mark-before-recursing
// semantics race-safe across concurrent first sends (§4.5).
func (r *Registry) MarkInitialized(id abi.ClassID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == abi.NoClassID || int(id) >= len(r.classes) {
		return false
	}
	cls := r.classes[id]
	if cls.Flags.IsInitialized() {
		return false
	}
	cls.Flags |= abi.ClassFlagInitialized
	return true
}

// IsKindOf walks id's superclass chain looking for target, per §6's
// isKindOfClass (original_source/objc/src/class.c: object_isKindOfClass).
func (r *Registry) IsKindOf(id, target abi.ClassID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id != abi.NoClassID {
		if id == target {
			return true
		}
		cls := r.classes[id]
		id = cls.Super
	}
	return false
}
