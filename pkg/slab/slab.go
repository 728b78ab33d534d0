// Package slab implements the static per-class block allocator (§4.7),
// grounded on original_source/objc/src/pool.c: a fixed-capacity table
// mapping a class name to a slab of same-sized blocks, with an address
// range ownership check standing in for the original's "which slab's
// buffer does this pointer fall inside" scan on free.
//
// Backing storage comes from one of two build-tag-selected sources
// (alloc_unix.go / alloc_generic.go), mirroring the teacher's
// pkg/swift cgo/purego split: an anonymous mmap on unix targets (so a
// slab's address range is a single contiguous, page-backed region even
// for large block counts) and a plain make([]byte, n) everywhere else.
package slab

import (
	"sync"
	"unsafe"

	"github.com/appsworld/objzrt/abi"
)

// Arena is one class's fixed-capacity block pool: numBlocks blocks of
// blockSize bytes each, carved out of a single contiguous buffer so
// ownership can be decided by address range alone.
type Arena struct {
	mu         sync.Mutex
	className  string
	blockSize  int
	numBlocks  int
	buf        []byte
	release    func()
	free       []bool // free[i] is true when block i is available
	base       uintptr
	end        uintptr
}

func newArena(className string, blockSize, numBlocks int) (*Arena, error) {
	total := blockSize * numBlocks
	buf, release, err := newBuffer(total)
	if err != nil {
		return nil, err
	}
	free := make([]bool, numBlocks)
	for i := range free {
		free[i] = true
	}
	var base uintptr
	if len(buf) > 0 {
		base = uintptr(unsafe.Pointer(&buf[0]))
	}
	return &Arena{
		className: className,
		blockSize: blockSize,
		numBlocks: numBlocks,
		buf:       buf,
		release:   release,
		free:      free,
		base:      base,
		end:       base + uintptr(total),
	}, nil
}

// alloc returns a zeroed block, or nil if the arena is exhausted
// (original_source's k_mem_slab_alloc with K_NO_WAIT: no blocking, just
// fail over to the caller's heap fallback).
func (a *Arena) alloc() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, isFree := range a.free {
		if isFree {
			a.free[i] = false
			block := a.buf[i*a.blockSize : (i+1)*a.blockSize]
			for j := range block {
				block[j] = 0
			}
			return block
		}
	}
	return nil
}

// owns reports whether ptr's backing array falls within this arena's
// address range.
func (a *Arena) owns(ptr []byte) bool {
	if len(ptr) == 0 || len(a.buf) == 0 {
		return false
	}
	p := uintptr(unsafe.Pointer(&ptr[0]))
	return p >= a.base && p < a.end
}

// freeBlock releases ptr back to its slot. Caller must have already confirmed
// ownership via owns.
func (a *Arena) freeBlock(ptr []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p := uintptr(unsafe.Pointer(&ptr[0]))
	index := int((p - a.base) / uintptr(a.blockSize))
	if index >= 0 && index < a.numBlocks {
		a.free[index] = true
	}
}

// Registry is the static pool table: a fixed-capacity, insert-only set of
// named arenas (original_source/objc/src/pool.c: _pool_table).
type Registry struct {
	mu       sync.Mutex
	capacity int
	arenas   []*Arena
	byName   map[string]*Arena
	log      abi.Logger
}

// NewRegistry creates an empty registry that will refuse to register more
// than capacity arenas.
func NewRegistry(capacity int, logger abi.Logger) *Registry {
	if logger == nil {
		logger = abi.DefaultLogger()
	}
	return &Registry{capacity: capacity, byName: make(map[string]*Arena), log: logger}
}

// Register creates a className -> arena binding with numBlocks blocks of
// blockSize bytes. Re-registering an existing class name is a no-op (the
// first registration wins), matching pool.c never overwriting an
// existing _pool_table slot.
func (r *Registry) Register(className string, blockSize, numBlocks int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[className]; ok {
		return nil
	}
	if len(r.arenas) >= r.capacity {
		r.log.Printf("slab: pool table full (%d entries), cannot register %q", r.capacity, className)
		return nil
	}
	arena, err := newArena(className, blockSize, numBlocks)
	if err != nil {
		return err
	}
	r.arenas = append(r.arenas, arena)
	r.byName[className] = arena
	return nil
}

// Alloc returns a zeroed block from className's arena, or nil if the
// class has no arena or its arena is exhausted — either way the caller
// falls back to a regular heap allocation.
func (r *Registry) Alloc(className string) []byte {
	r.mu.Lock()
	arena := r.byName[className]
	r.mu.Unlock()
	if arena == nil {
		return nil
	}
	return arena.alloc()
}

// Free returns ptr to whichever arena's address range contains it. It
// reports false (and does nothing) if ptr doesn't belong to any
// registered arena, the same contract as __objc_pool_free: the caller is
// then responsible for a regular heap free instead.
func (r *Registry) Free(ptr []byte) bool {
	r.mu.Lock()
	arenas := append([]*Arena(nil), r.arenas...)
	r.mu.Unlock()
	for _, a := range arenas {
		if a.owns(ptr) {
			a.freeBlock(ptr)
			return true
		}
	}
	return false
}

// Close releases every arena's backing storage (a no-op on the generic
// fallback, an munmap on unix targets).
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.arenas {
		if a.release != nil {
			a.release()
		}
	}
}
