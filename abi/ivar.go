package abi

// IvarFlags carries compiler-emitted ivar attributes. The runtime does not
// interpret them beyond passing them through to introspection.
type IvarFlags uint8

// IvarRO is the compiler-emitted instance variable record. Offset is a
// pointer to the module-global integer the runtime fills during class
// resolution (§4.2) — this indirection is the non-fragile-ivar mechanism:
// client code reads *Offset after the class's first lookup instead of
// baking a literal offset into the call site.
type IvarRO struct {
	Name   string
	Type   string
	Offset *int64
	Size   int64
	Flags  IvarFlags
}

// IvarListRO is a compiler-emitted ivar list in declaration order; offsets
// are assigned to Ivars[i].Offset in this order during resolution.
type IvarListRO struct {
	Ivars []IvarRO
}
