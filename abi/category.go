package abi

// CategoryRO is a deferred additive patch to a class: it grafts methods
// (and may override existing ones, since its method list is prepended
// ahead of the target's own) without subclassing. Held in the category
// registry until TargetClassName is resolved.
type CategoryRO struct {
	Name             string
	TargetClassName  string
	InstanceMethods  *MethodListRO
	ClassMethods     *MethodListRO
	ProtocolNames    []string
	InstanceProperty []PropertyRO
}
