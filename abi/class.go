package abi

// ClassFlags is the class flag bitset from spec.md §3: {meta, resolved,
// initialized, immortal}. The compiler only ever sets Meta and Immortal;
// Resolved and Initialized are set exactly once each by the runtime.
type ClassFlags uint8

const (
	ClassFlagMeta ClassFlags = 1 << iota
	ClassFlagResolved
	ClassFlagInitialized
	ClassFlagImmortal
)

func (f ClassFlags) IsMeta() bool        { return f&ClassFlagMeta != 0 }
func (f ClassFlags) IsResolved() bool    { return f&ClassFlagResolved != 0 }
func (f ClassFlags) IsInitialized() bool { return f&ClassFlagInitialized != 0 }
func (f ClassFlags) IsImmortal() bool    { return f&ClassFlagImmortal != 0 }

func (f ClassFlags) String() string {
	var out []byte
	if f.IsMeta() {
		out = append(out, "META "...)
	}
	if f.IsResolved() {
		out = append(out, "RESOLVED "...)
	}
	if f.IsInitialized() {
		out = append(out, "INITIALIZED "...)
	}
	if f.IsImmortal() {
		out = append(out, "IMMORTAL "...)
	}
	if len(out) == 0 {
		return ""
	}
	return string(out[:len(out)-1])
}

// ClassRO is the compiler-emitted, read-only class record: everything the
// metadata loader can know before the resolver runs. SuperName identifies
// the superclass by name — the resolver replaces that indirection with a
// resolved ClassID once the superclass is itself registered. InstanceSize
// negative means "compute me" (§4.2); the resolver overwrites it with the
// final positive size.
//
// Meta, when non-nil, is the compiler-emitted metaclass record for this
// class: its own method list is the class-side (+) methods. The loader
// registers both Class and Class.Meta as distinct entries in the class
// registry.
type ClassRO struct {
	Name          string
	SuperName     string
	Methods       *MethodListRO
	Ivars         *IvarListRO
	Properties    []PropertyRO
	ProtocolNames []string
	InstanceSize  int64
	Flags         ClassFlags
	CxxConstruct  func(ivars []byte)
	CxxDestruct   func(ivars []byte)
	Meta          *ClassRO
}
