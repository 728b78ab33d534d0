// Package blockrt implements the block (closure) and by-reference
// capture runtime (§4.9), grounded on
// original_source/objc/src/blocks.c. It reproduces the LLVM Block ABI's
// _Block_copy/_Block_release/_Block_object_assign/_Block_object_dispose
// entry points against abi.BlockLayout/abi.ByrefLayout.
//
// Captured object retain/release goes through message dispatch rather
// than a direct refcount call, exactly as blocks.c does — this is what
// lets a captured object's retain/release be overridden by a subclass or
// a category and still be honored from inside a block, under both manual
// and (if ever added) automatic reference counting.
package blockrt

import (
	"sync/atomic"

	"github.com/appsworld/objzrt/abi"
)

// Dispatcher sends sel to receiver and ignores any return value — the
// shape blocks.c's __block_retain_object/__block_release_object need.
type Dispatcher func(receiver any, sel abi.Selector)

// Runtime is the block copy/release/assign/dispose engine. It holds no
// state of its own beyond the retain/release selectors and the
// dispatcher; block and byref lifetime state lives entirely on the
// abi.BlockLayout/abi.ByrefLayout values it's handed.
type Runtime struct {
	retainSel  abi.Selector
	releaseSel abi.Selector
	dispatch   Dispatcher
}

// New builds a Runtime that sends retain/release through dispatch. A nil
// dispatch makes object-field capture a no-op copy, which is only
// correct for blocks that never capture an object — callers wiring this
// up for real should always supply the root runtime's message lookup.
func New(dispatch Dispatcher) *Runtime {
	return &Runtime{
		retainSel:  abi.MakeSelector("retain", ""),
		releaseSel: abi.MakeSelector("release", ""),
		dispatch:   dispatch,
	}
}

func (rt *Runtime) retainObject(obj any) {
	if obj == nil || rt.dispatch == nil {
		return
	}
	rt.dispatch(obj, rt.retainSel)
}

func (rt *Runtime) releaseObject(obj any) {
	if obj == nil || rt.dispatch == nil {
		return
	}
	rt.dispatch(obj, rt.releaseSel)
}

// CopyBlock implements _Block_copy: a global block is immortal and
// returned as-is, an existing heap block just gets its refcount bumped,
// and a stack block is copied to the heap (running its copy helper over
// the captures, if any).
func (rt *Runtime) CopyBlock(src *abi.BlockLayout) *abi.BlockLayout {
	if src == nil {
		return nil
	}
	if src.Class == abi.BlockClassGlobal || src.Flags&abi.BlockIsGlobal != 0 {
		return src
	}
	if src.Flags&abi.BlockNeedsFree != 0 {
		atomic.AddUint32(&src.Flags, 2)
		return src
	}

	heap := &abi.BlockLayout{
		Class:      abi.BlockClassHeap,
		Invoke:     src.Invoke,
		Descriptor: src.Descriptor,
		Captures:   append([]any(nil), src.Captures...),
		Flags:      (src.Flags &^ abi.BlockRefcountMask) | abi.BlockNeedsFree | 2,
	}
	if src.Flags&abi.BlockHasCopyDispose != 0 && src.Descriptor != nil && src.Descriptor.Copy != nil {
		src.Descriptor.Copy(heap, src)
	}
	return heap
}

// ReleaseBlock implements _Block_release: global and stack blocks are
// untouched, a heap block's refcount is decremented atomically, and
// hitting zero runs the dispose helper. Go's garbage collector reclaims
// the struct itself once nothing references it — there is no explicit
// free step to mirror objc_free here.
func (rt *Runtime) ReleaseBlock(b *abi.BlockLayout) {
	if b == nil || b.Class == abi.BlockClassGlobal || b.Flags&abi.BlockIsGlobal != 0 {
		return
	}
	if b.Flags&abi.BlockNeedsFree == 0 {
		return
	}
	newFlags := atomic.AddUint32(&b.Flags, ^uint32(1)) // subtract 2
	oldFlags := newFlags + 2
	if oldFlags&abi.BlockRefcountMask == 2 {
		if oldFlags&abi.BlockHasCopyDispose != 0 && b.Descriptor != nil && b.Descriptor.Dispose != nil {
			b.Descriptor.Dispose(b)
		}
	}
}

// CopyByref implements __block_byref_copy: a box already forwarded to the
// heap just gets a refcount bump; a still-stack box is copied to the
// heap, with both the original's and the copy's Forwarding pointer
// updated to point at the copy.
func (rt *Runtime) CopyByref(src *abi.ByrefLayout) *abi.ByrefLayout {
	if src == nil {
		return nil
	}
	if src.Forwarding != nil && src.Forwarding != src {
		heap := src.Forwarding
		heap.Flags += 2
		return heap
	}

	heap := &abi.ByrefLayout{
		Size:    src.Size,
		Keep:    src.Keep,
		Destroy: src.Destroy,
		Value:   src.Value,
		Flags:   (src.Flags &^ abi.ByrefRefcountMask) | abi.ByrefNeedsFree | 4,
	}
	heap.Forwarding = heap
	src.Forwarding = heap

	if src.Flags&abi.ByrefHasCopyDispose != 0 && src.Keep != nil {
		src.Keep(heap, src)
	}
	return heap
}

// ReleaseByref implements __block_byref_release: always operates on the
// shared (forwarded-to) box; a non-heap box is a no-op, a refcount above
// one just decrements, and reaching one runs the dispose helper.
func (rt *Runtime) ReleaseByref(b *abi.ByrefLayout) {
	if b == nil {
		return
	}
	shared := b
	if b.Forwarding != nil {
		shared = b.Forwarding
	}
	if shared.Flags&abi.ByrefNeedsFree == 0 {
		return
	}
	oldFlags := shared.Flags
	oldRC := oldFlags & abi.ByrefRefcountMask
	if oldRC > 2 {
		shared.Flags = oldFlags - 2
		return
	}
	if oldFlags&abi.ByrefHasCopyDispose != 0 && shared.Destroy != nil {
		shared.Destroy(shared)
	}
}

// ObjectAssign implements _Block_object_assign: copies src into *dest,
// retaining/copying it first according to kind.
func (rt *Runtime) ObjectAssign(dest *any, src any, kind abi.BlockFieldKind) {
	switch kind {
	case abi.BlockFieldIsObject:
		rt.retainObject(src)
		*dest = src
	case abi.BlockFieldIsBlock:
		if bl, ok := src.(*abi.BlockLayout); ok {
			*dest = rt.CopyBlock(bl)
			return
		}
		*dest = src
	case abi.BlockFieldIsByref:
		if br, ok := src.(*abi.ByrefLayout); ok {
			*dest = rt.CopyByref(br)
			return
		}
		*dest = src
	default:
		// BlockFieldIsWeak and anything else: weak capture is
		// unsupported by this runtime (§4.8), copy the pointer as-is.
		*dest = src
	}
}

// ObjectDispose implements _Block_object_dispose: releases obj according
// to kind.
func (rt *Runtime) ObjectDispose(obj any, kind abi.BlockFieldKind) {
	if obj == nil {
		return
	}
	switch kind {
	case abi.BlockFieldIsObject:
		rt.releaseObject(obj)
	case abi.BlockFieldIsBlock:
		if bl, ok := obj.(*abi.BlockLayout); ok {
			rt.ReleaseBlock(bl)
		}
	case abi.BlockFieldIsByref:
		if br, ok := obj.(*abi.ByrefLayout); ok {
			rt.ReleaseByref(br)
		}
	}
}
