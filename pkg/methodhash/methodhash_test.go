package methodhash

import (
	"testing"

	"github.com/appsworld/objzrt/abi"
)

func TestRegisterAndLookupBareAndTyped(t *testing.T) {
	tbl := New(64)
	sel := abi.MakeSelector("area", "f@:")
	imp := abi.IMP(func(recv any, s abi.Selector, args ...any) any { return 3.14 })

	if !tbl.Register(7, "Shape", false, sel, imp) {
		t.Fatalf("Register reported failure")
	}
	if got, ok := tbl.Lookup(7, "Shape", false, "area"); !ok || got == nil {
		t.Fatalf("bare lookup failed: ok=%v", ok)
	}
	if _, ok := tbl.LookupTyped(7, "Shape", false, "area", "f@:"); !ok {
		t.Fatalf("typed lookup failed")
	}
	if _, ok := tbl.LookupTyped(7, "Shape", false, "area", "v@:"); ok {
		t.Fatalf("typed lookup matched on wrong type encoding")
	}
}

func TestLookupDistinguishesClassAndMetaclass(t *testing.T) {
	tbl := New(64)
	instSel := abi.MakeSelector("describe", "")
	classSel := abi.MakeSelector("describe", "")
	tbl.Register(1, "Shape", false, instSel, abi.IMP(func(any, abi.Selector, ...any) any { return "instance" }))
	tbl.Register(1, "Shape", true, classSel, abi.IMP(func(any, abi.Selector, ...any) any { return "class" }))

	instImp, ok := tbl.Lookup(1, "Shape", false, "describe")
	if !ok {
		t.Fatalf("instance lookup failed")
	}
	classImp, ok := tbl.Lookup(1, "Shape", true, "describe")
	if !ok {
		t.Fatalf("class lookup failed")
	}
	if instImp(nil, instSel) != "instance" {
		t.Fatalf("wrong instance imp resolved")
	}
	if classImp(nil, classSel) != "class" {
		t.Fatalf("wrong class imp resolved")
	}
}

func TestRegisterReplacesExactMatch(t *testing.T) {
	tbl := New(64)
	sel := abi.MakeSelector("area", "")
	tbl.Register(1, "Shape", false, sel, abi.IMP(func(any, abi.Selector, ...any) any { return "v1" }))
	tbl.Register(1, "Shape", false, sel, abi.IMP(func(any, abi.Selector, ...any) any { return "v2" }))

	imp, ok := tbl.Lookup(1, "Shape", false, "area")
	if !ok {
		t.Fatalf("lookup failed")
	}
	if imp(nil, sel) != "v2" {
		t.Fatalf("expected replaced implementation to win")
	}
}

func TestLookupMissingSelectorReturnsFalse(t *testing.T) {
	tbl := New(8)
	if _, ok := tbl.Lookup(42, "Nowhere", false, "nope"); ok {
		t.Fatalf("expected miss")
	}
}

func TestCollisionsProbeLinearly(t *testing.T) {
	tbl := New(2)
	selA := abi.MakeSelector("a", "")
	selB := abi.MakeSelector("b", "")
	tbl.Register(1, "X", false, selA, abi.IMP(func(any, abi.Selector, ...any) any { return "a" }))
	tbl.Register(1, "X", false, selB, abi.IMP(func(any, abi.Selector, ...any) any { return "b" }))

	impA, okA := tbl.Lookup(1, "X", false, "a")
	impB, okB := tbl.Lookup(1, "X", false, "b")
	if !okA || !okB {
		t.Fatalf("expected both entries to survive a collision: okA=%v okB=%v", okA, okB)
	}
	if impA(nil, selA) != "a" || impB(nil, selB) != "b" {
		t.Fatalf("collision resolution returned wrong implementations")
	}
}
