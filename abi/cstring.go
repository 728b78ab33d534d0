package abi

// ConstantStringRO is the compiler-emitted constant-string literal record
// (§3, §6). ClassName names the class the compiler assumed but could not
// address directly. Class is patched at load time to the registry's
// constant-string class if that class is already registered when the
// string's descriptor is loaded; a string loaded before it keeps its
// Class unchanged. CachedHash is filled lazily by the
// first hash computation the embedding string class performs — the
// runtime itself never computes it.
type ConstantStringRO struct {
	ClassName  string
	Class      ClassID // NoClassID until the loader patches it
	Flags      uint32
	ByteLength int
	Capacity   int
	CachedHash uint64
	Data       []byte
}
