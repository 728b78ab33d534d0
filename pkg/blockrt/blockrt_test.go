package blockrt

import (
	"testing"

	"github.com/appsworld/objzrt/abi"
)

func TestCopyGlobalBlockReturnsSameValue(t *testing.T) {
	rt := New(nil)
	b := &abi.BlockLayout{Class: abi.BlockClassGlobal}
	if got := rt.CopyBlock(b); got != b {
		t.Fatalf("global block copy should be identity")
	}
}

func TestCopyStackBlockProducesHeapBlockWithRefcountTwo(t *testing.T) {
	rt := New(nil)
	src := &abi.BlockLayout{Class: abi.BlockClassStack, Captures: []any{"x"}}
	heap := rt.CopyBlock(src)
	if heap == src {
		t.Fatalf("stack copy should not alias the original")
	}
	if heap.Class != abi.BlockClassHeap {
		t.Fatalf("copy should be tagged heap")
	}
	if heap.Flags&abi.BlockNeedsFree == 0 {
		t.Fatalf("copy should be marked needs-free")
	}
	if heap.Flags&abi.BlockRefcountMask != 2 {
		t.Fatalf("copy refcount = %d, want 2", heap.Flags&abi.BlockRefcountMask)
	}
}

func TestCopyHeapBlockBumpsRefcountInPlace(t *testing.T) {
	rt := New(nil)
	b := &abi.BlockLayout{Class: abi.BlockClassHeap, Flags: abi.BlockNeedsFree | 2}
	got := rt.CopyBlock(b)
	if got != b {
		t.Fatalf("copying an existing heap block should return the same pointer")
	}
	if b.Flags&abi.BlockRefcountMask != 4 {
		t.Fatalf("refcount after second copy = %d, want 4", b.Flags&abi.BlockRefcountMask)
	}
}

func TestReleaseBlockRunsDisposeAtZero(t *testing.T) {
	rt := New(nil)
	disposed := false
	b := &abi.BlockLayout{
		Class: abi.BlockClassHeap,
		Flags: abi.BlockNeedsFree | abi.BlockHasCopyDispose | 2,
		Descriptor: &abi.BlockDescriptor{
			Dispose: func(*abi.BlockLayout) { disposed = true },
		},
	}
	rt.ReleaseBlock(b)
	if !disposed {
		t.Fatalf("expected dispose helper to run when refcount reaches zero")
	}
}

func TestReleaseBlockDoesNotDisposeAboveZero(t *testing.T) {
	rt := New(nil)
	disposed := false
	b := &abi.BlockLayout{
		Class: abi.BlockClassHeap,
		Flags: abi.BlockNeedsFree | abi.BlockHasCopyDispose | 4,
		Descriptor: &abi.BlockDescriptor{
			Dispose: func(*abi.BlockLayout) { disposed = true },
		},
	}
	rt.ReleaseBlock(b)
	if disposed {
		t.Fatalf("dispose should not run while refcount remains above zero")
	}
}

func TestCopyByrefForwardsBothInstances(t *testing.T) {
	rt := New(nil)
	src := &abi.ByrefLayout{Value: 1}
	src.Forwarding = src

	heap := rt.CopyByref(src)
	if src.Forwarding != heap {
		t.Fatalf("source forwarding pointer should point at the heap copy")
	}
	if heap.Forwarding != heap {
		t.Fatalf("heap copy forwarding pointer should point at itself")
	}

	again := rt.CopyByref(src)
	if again != heap {
		t.Fatalf("copying an already-forwarded byref should return the same heap box")
	}
}

func TestObjectAssignObjectKindRetainsViaDispatch(t *testing.T) {
	var sentSel string
	rt := New(func(recv any, sel abi.Selector) { sentSel = sel.Name() })
	var dest any
	rt.ObjectAssign(&dest, "captured", abi.BlockFieldIsObject)
	if sentSel != "retain" {
		t.Fatalf("expected a retain dispatch, got %q", sentSel)
	}
	if dest != "captured" {
		t.Fatalf("dest not assigned")
	}
}

func TestObjectDisposeObjectKindReleasesViaDispatch(t *testing.T) {
	var sentSel string
	rt := New(func(recv any, sel abi.Selector) { sentSel = sel.Name() })
	rt.ObjectDispose("captured", abi.BlockFieldIsObject)
	if sentSel != "release" {
		t.Fatalf("expected a release dispatch, got %q", sentSel)
	}
}
