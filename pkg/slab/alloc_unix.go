//go:build unix

package slab

import "golang.org/x/sys/unix"

// newBuffer maps size bytes anonymously and privately, giving every arena
// its own page-backed, contiguous address range — the property owns()
// relies on. The returned release func unmaps it.
func newBuffer(size int) ([]byte, func(), error) {
	if size <= 0 {
		return nil, func() {}, nil
	}
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		_ = unix.Munmap(buf)
	}
	return buf, release, nil
}
