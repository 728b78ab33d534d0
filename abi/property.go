package abi

// PropertyRO is an opaque pass-through record: the runtime never reads a
// property's attribute encoding, it only stores and returns it for
// introspection (properties are ordinary clients of the core, per
// spec.md's scope note).
type PropertyRO struct {
	Name       string
	Attributes string
}
