package objzrt

import "errors"

// Sentinel errors, wrapped with fmt.Errorf at the call site — mirrors the
// teacher's ErrObjcSectionNotFound pattern (objc.go).
var (
	ErrDescriptorVersion = errors.New("objzrt: unsupported load descriptor version")
	ErrUnknownSelector   = errors.New("objzrt: cannot send message, selector not found")
	ErrPoolUnderflow     = errors.New("objzrt: autorelease pool popped out of order")
	ErrWeakUnsupported   = errors.New("objzrt: weak references are not supported by this runtime")
)
