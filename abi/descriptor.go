package abi

// CurrentDescriptorVersion is the only load-descriptor layout this runtime
// accepts (Design Notes / Open Questions: the source ABI has two
// overlapping layouts; this implementation commits to the gnustep-2.0
// non-fragile-ivar one and treats the other as unsupported).
const CurrentDescriptorVersion uint64 = 2

// LoadedSentinelVersion is written into Version once a descriptor has been
// processed, making Load idempotent (§4.1): a repeated call is a no-op.
const LoadedSentinelVersion uint64 = ^uint64(0)

// ClassAliasRO is a compiler-emitted class alias (e.g. NSString ->
// OZString via @compatibility_alias). TargetName is resolved to a ClassID
// by the registry at load time.
type ClassAliasRO struct {
	AliasName  string
	TargetName string
}

// LoadDescriptor holds the half-open ranges the compiler deposits per
// translation unit (§6): selectors, class definitions, category
// definitions, protocol definitions, class aliases, constant strings.
// There is no class-reference or protocol-reference range. Any range may
// be empty. Version is checked against
// CurrentDescriptorVersion on entry and set to LoadedSentinelVersion once
// processed.
type LoadDescriptor struct {
	Version    uint64
	Selectors  []Selector
	Classes    []*ClassRO
	Categories []*CategoryRO
	Protocols  []*ProtocolRO
	Aliases    []ClassAliasRO
	Strings    []*ConstantStringRO
}
