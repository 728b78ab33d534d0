// Package dtable implements the per-class dispatch cache (§4.4),
// grounded on original_source/objc/src/dtable.c. Every class gets its own
// fixed-size, power-of-two open-addressed table mapping a selector to the
// IMP the hash table most recently resolved for it; a miss here always
// falls back to pkg/methodhash, which is slower but authoritative.
//
// Two build-tag-selected implementations exist, mirroring the teacher's
// cgo/purego split in pkg/swift/engine.go and engine_purego.go:
//
//   - cache_lockfree.go (default): readers take no lock at all, using
//     atomic.Pointer to publish whole, immutable cache-entry nodes.
//   - cache_mutex.go (build tag objzrt_mutex_dtable): a plain
//     sync.RWMutex guards every slot. Slower, but avoids depending on the
//     atomic.Pointer generic and is easier to reason about on exotic
//     GOARCH targets this runtime might be cross-compiled for.
//
// original_source allocates dtables from a small static pool with heap
// fallback (tiered allocator, CONFIG_OBJZ_DISPATCH_CACHE_STATIC_COUNT);
// Go's garbage-collected heap makes that tiering unnecessary, so both
// variants allocate a class's Cache lazily, on first Insert, same as the
// original's *trigger* (first miss resolved) without needing its static
// pool machinery. This is documented as a deliberate simplification, not
// a dropped feature — lazy allocation itself is kept.
package dtable

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
