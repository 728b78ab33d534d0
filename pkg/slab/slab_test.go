package slab

import "testing"

type logBuf struct{ lines []string }

func (l *logBuf) Printf(format string, args ...any) { l.lines = append(l.lines, format) }

func TestAllocZeroesAndReuseAfterFree(t *testing.T) {
	r := NewRegistry(4, &logBuf{})
	if err := r.Register("Shape", 32, 2); err != nil {
		t.Fatalf("Register: %v", err)
	}
	b1 := r.Alloc("Shape")
	if b1 == nil {
		t.Fatalf("expected a block")
	}
	for i := range b1 {
		b1[i] = 0xFF
	}
	if !r.Free(b1) {
		t.Fatalf("Free should have recognised b1")
	}
	b2 := r.Alloc("Shape")
	if b2 == nil {
		t.Fatalf("expected a reused block")
	}
	for _, v := range b2 {
		if v != 0 {
			t.Fatalf("reused block not zeroed")
		}
	}
}

func TestAllocExhaustionReturnsNil(t *testing.T) {
	r := NewRegistry(4, &logBuf{})
	r.Register("Shape", 16, 1)
	if r.Alloc("Shape") == nil {
		t.Fatalf("expected first alloc to succeed")
	}
	if r.Alloc("Shape") != nil {
		t.Fatalf("expected exhaustion on second alloc")
	}
}

func TestAllocUnknownClassReturnsNil(t *testing.T) {
	r := NewRegistry(4, &logBuf{})
	if r.Alloc("Nope") != nil {
		t.Fatalf("expected nil for unregistered class")
	}
}

func TestFreeForeignPointerReportsFalse(t *testing.T) {
	r := NewRegistry(4, &logBuf{})
	r.Register("Shape", 16, 1)
	foreign := make([]byte, 16)
	if r.Free(foreign) {
		t.Fatalf("expected Free to reject a pointer from outside any arena")
	}
}

func TestRegisterIsIdempotentPerName(t *testing.T) {
	r := NewRegistry(4, &logBuf{})
	r.Register("Shape", 16, 1)
	r.Register("Shape", 64, 10) // should be ignored, first registration wins
	b := r.Alloc("Shape")
	if len(b) != 16 {
		t.Fatalf("second Register call overwrote the first: block size = %d", len(b))
	}
}

func TestRegistryRespectsCapacity(t *testing.T) {
	r := NewRegistry(1, &logBuf{})
	if err := r.Register("A", 8, 1); err != nil {
		t.Fatalf("Register A: %v", err)
	}
	if err := r.Register("B", 8, 1); err != nil {
		t.Fatalf("Register B: %v", err)
	}
	if r.Alloc("B") != nil {
		t.Fatalf("expected B to be dropped once the table was full")
	}
}
