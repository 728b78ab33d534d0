package abi

// IMP is a method implementation. The receiver is opaque here (the
// concrete refcounted object type lives in the root package, which would
// otherwise import abi and abi would import it back); arguments and the
// return value are boxed since this runtime has no compiled call-site ABI
// to match against — dispatch always goes through this uniform shape.
type IMP func(receiver any, sel Selector, args ...any) any

// MethodRO is the compiler-emitted method record: a selector (whose Types
// is its own type encoding, carried for introspection only) and the
// implementation pointer.
type MethodRO struct {
	Sel Selector
	Imp IMP
}

// MethodListRO is one compiler-emitted method list. Method lists form a
// singly linked chain (via Next) so a category can prepend a whole list
// without copying the class's existing one.
type MethodListRO struct {
	Methods []MethodRO
	Next    *MethodListRO
}

// Walk calls fn for every method in the chain starting at ml, in order.
func (ml *MethodListRO) Walk(fn func(MethodRO)) {
	for l := ml; l != nil; l = l.Next {
		for _, m := range l.Methods {
			fn(m)
		}
	}
}
