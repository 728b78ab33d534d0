package abi

// BlockClassTag distinguishes the three concrete block storage classes
// (§3, §4.9). Unlike a real isa pointer these are just unique tag values —
// the runtime never dispatches a message through them.
type BlockClassTag uint8

const (
	BlockClassStack BlockClassTag = iota
	BlockClassGlobal
	BlockClassHeap
)

// Block flag bits, matching the LLVM Block ABI layout clang emits. The
// refcount lives in bits 1..15; bit 0 is "deallocating", bit 24 is
// "heap-allocated" (BlockNeedsFree), bit 25 is "has copy/dispose helpers",
// bit 28 is "global".
const (
	BlockDeallocating  uint32 = 1 << 0
	BlockRefcountMask  uint32 = 0xFFFE
	BlockNeedsFree     uint32 = 1 << 24
	BlockHasCopyDispose uint32 = 1 << 25
	BlockIsGlobal      uint32 = 1 << 28
)

// BlockFieldKind tags a single captured field for the copy/dispose
// helpers (§4.9 table).
type BlockFieldKind uint8

const (
	BlockFieldIsObject BlockFieldKind = iota
	BlockFieldIsBlock
	BlockFieldIsByref
	BlockFieldIsWeak
)

// BlockDescriptor is the compiler-emitted per-block-literal descriptor:
// its size (used to size the heap copy) and, if the block captures
// anything needing non-trivial copy/dispose, the two helper functions.
type BlockDescriptor struct {
	Size   int
	Copy   func(dst, src *BlockLayout)
	Dispose func(b *BlockLayout)
}

// BlockLayout is the ABI-fixed block object: {class-tag, flags, reserved,
// invoke, descriptor, captures...}; the ABI's reserved word has no field
// here. Captures are opaque to the runtime —
// it only ever copies/disposes them through Descriptor's helpers.
type BlockLayout struct {
	Class      BlockClassTag
	Flags      uint32
	Invoke     func(b *BlockLayout, args ...any) any
	Descriptor *BlockDescriptor
	Captures   []any
}

// ByrefFlags mirror BlockFlags for a by-reference (__block) capture box:
// bit 0 deallocating, bits 1..15 refcount, bit 25 has copy/dispose.
const (
	ByrefNeedsFree     uint32 = 1 << 24
	ByrefHasCopyDispose uint32 = 1 << 25
	ByrefRefcountMask  uint32 = 0xFFFE
)

// ByrefLayout is the indirection object the compiler creates for a
// variable captured by reference into one or more blocks. Forwarding
// points at itself until the first copy, after which both the stack and
// heap instances' Forwarding point at the heap instance.
type ByrefLayout struct {
	Forwarding *ByrefLayout
	Flags      uint32
	Size       int
	Keep       func(dst, src *ByrefLayout)
	Destroy    func(b *ByrefLayout)
	Value      any
}
