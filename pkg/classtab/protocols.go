package classtab

import "github.com/appsworld/objzrt/abi"

// registerProtocolLocked registers ro, warning on (and keeping the first
// of) a duplicate name — original_source/objc/src/protocol.c:
// __objc_protocol_register. Adopted protocols named but not yet seen get
// a placeholder stub so AdoptedNames can be resolved to IDs immediately;
// a later real registration under the same name fills the stub's fields
// in place rather than adding a second entry.
func (r *Registry) registerProtocolLocked(ro *abi.ProtocolRO) abi.ProtocolID {
	if ro == nil || ro.Name == "" {
		return abi.NoProtocolID
	}
	id, existed := r.ensureProtocolStubLocked(ro.Name)
	proto := r.protocols[id]
	if existed && proto.populated {
		r.log.Printf("classtab: duplicate protocol registration for %q, keeping first", ro.Name)
		return id
	}
	proto.populated = true
	proto.RequiredInstanceMethods = ro.RequiredInstanceMethods
	proto.RequiredClassMethods = ro.RequiredClassMethods
	proto.OptionalInstanceMethods = ro.OptionalInstanceMethods
	proto.OptionalClassMethods = ro.OptionalClassMethods
	for _, name := range ro.AdoptedNames {
		adoptedID, _ := r.ensureProtocolStubLocked(name)
		proto.Adopted = append(proto.Adopted, adoptedID)
	}
	return id
}

// ensureProtocolStubLocked returns the ID for name, creating an empty,
// unpopulated entry if this is the first time it's been referenced
// (whether by a direct registration or as someone else's adopted
// protocol).
func (r *Registry) ensureProtocolStubLocked(name string) (abi.ProtocolID, bool) {
	if id, ok := r.protoByName[name]; ok {
		return id, true
	}
	if len(r.protocols) >= r.capProtocols {
		r.log.Printf("classtab: protocol table full (%d entries), dropping %q", r.capProtocols, name)
		return abi.NoProtocolID, false
	}
	id := abi.ProtocolID(len(r.protocols))
	r.protocols = append(r.protocols, &Protocol{Name: name})
	r.protoByName[name] = id
	return id, false
}

// Protocol returns the arena entry for id, or nil if out of range.
func (r *Registry) Protocol(id abi.ProtocolID) *Protocol {
	if id < 0 || int(id) >= len(r.protocols) {
		return nil
	}
	return r.protocols[id]
}

// LookupProtocolID returns the arena index registered for name, if any.
func (r *Registry) LookupProtocolID(name string) (abi.ProtocolID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.protoByName[name]
	return id, ok
}

// ProtocolConformsTo reports whether proto conforms to target: proto
// itself, or (recursively) any protocol it adopts
// (original_source/objc/src/protocol.c: proto_conformsTo).
func (r *Registry) ProtocolConformsTo(proto, target abi.ProtocolID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.protocolConformsLocked(proto, target, make(map[abi.ProtocolID]bool))
}

func (r *Registry) protocolConformsLocked(proto, target abi.ProtocolID, seen map[abi.ProtocolID]bool) bool {
	if proto == target {
		return true
	}
	if proto == abi.NoProtocolID || seen[proto] {
		return false
	}
	seen[proto] = true
	p := r.protocols[proto]
	for _, adopted := range p.Adopted {
		if r.protocolConformsLocked(adopted, target, seen) {
			return true
		}
	}
	return false
}

// ClassConformsTo walks id's own adopted-protocol list and then its
// superclass chain looking for target
// (original_source/objc/src/protocol.c: class_conformsTo).
func (r *Registry) ClassConformsTo(id abi.ClassID, target abi.ProtocolID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id != abi.NoClassID {
		cls := r.classes[id]
		for _, protoID := range cls.protocolIDsLocked(r) {
			if r.protocolConformsLocked(protoID, target, make(map[abi.ProtocolID]bool)) {
				return true
			}
		}
		id = cls.Super
	}
	return false
}

// protocolIDsLocked lazily resolves a class's ProtocolNames to IDs the
// first time they're needed, caching the result on the class record.
func (c *Class) protocolIDsLocked(r *Registry) []abi.ProtocolID {
	if len(c.ProtocolIDs) == len(c.ProtocolNames) {
		return c.ProtocolIDs
	}
	c.ProtocolIDs = c.ProtocolIDs[:0]
	for _, name := range c.ProtocolNames {
		id, _ := r.ensureProtocolStubLocked(name)
		c.ProtocolIDs = append(c.ProtocolIDs, id)
	}
	return c.ProtocolIDs
}

// registerAliasLocked adds an alternate name resolving to the same class
// as target, e.g. from a source-level @compatibility_alias. Logged and
// ignored if target isn't registered or alias is already taken by a
// different class (original_source/objc/src/load.c treats most aliases
// as resolved entirely at compile time; this runtime implements one
// anyway per the full specification).
func (r *Registry) registerAliasLocked(alias abi.ClassAliasRO) {
	targetID, ok := r.byName[alias.TargetName]
	if !ok {
		r.log.Printf("classtab: alias %q targets unknown class %q", alias.AliasName, alias.TargetName)
		return
	}
	if existing, ok := r.byName[alias.AliasName]; ok {
		if existing != targetID {
			r.log.Printf("classtab: alias %q already bound to a different class", alias.AliasName)
		}
		return
	}
	r.byName[alias.AliasName] = targetID
}
