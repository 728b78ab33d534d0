// Package objzrt implements a minimal Objective-C-style object runtime
// core: metadata loading, class/category/protocol registries,
// non-fragile ivar resolution, a global method hash table backed by a
// per-class dispatch cache, message dispatch (including +initialize),
// atomic reference counting with autorelease pools, static per-class
// slab allocators, and a block/closure runtime.
//
// Runtime ties the leaf packages together in the dependency order their
// own doc comments describe: abi (pure data shapes) is depended on by
// pkg/classtab, pkg/methodhash, pkg/dtable, pkg/slab and pkg/blockrt
// (each otherwise independent of the others), which this package wires
// into one façade — mirroring the teacher's root-package *File type
// composing types/objc, pkg/codesign and pkg/fixupchains.
package objzrt

import (
	"errors"
	"fmt"

	"github.com/appsworld/objzrt/abi"
	"github.com/appsworld/objzrt/pkg/blockrt"
	"github.com/appsworld/objzrt/pkg/classtab"
	"github.com/appsworld/objzrt/pkg/dtable"
	"github.com/appsworld/objzrt/pkg/methodhash"
	"github.com/appsworld/objzrt/pkg/slab"
)

// Runtime is the assembled object runtime: one instance owns one set of
// class/method/dispatch/pool/slab tables. Nothing here is a process-wide
// global — tests build as many independent Runtimes as they need.
type Runtime struct {
	cfg Config
	log abi.Logger

	classes *classtab.Registry
	hash    *methodhash.Table
	caches  *dtable.Registry
	pools   *autoreleaseStack
	slabs   *slab.Registry
	blocks  *blockrt.Runtime

	dispatchedEver bool // gates the one-time category load, §4.5
}

// New builds a Runtime. constantStringClassName names the class
// constant-string literals' isa gets patched to at load time (§4.1); pass
// "" if the embedding application defines no constant-string class. A
// nil logger falls back to abi.DefaultLogger().
func New(cfg Config, constantStringClassName string, logger abi.Logger) *Runtime {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = abi.DefaultLogger()
	}
	rt := &Runtime{cfg: cfg, log: logger}
	rt.classes = classtab.New(cfg.ClassTableSize, cfg.CategoryTableSize, cfg.ProtocolTableSize, constantStringClassName, logger)
	rt.hash = methodhash.New(cfg.MethodHashSize)
	rt.caches = dtable.NewRegistry(cfg.DispatchTableSize)
	rt.pools = newAutoreleaseStack(cfg.PoolCapacity)
	if cfg.Features&FeatureStaticPools != 0 {
		rt.slabs = slab.NewRegistry(cfg.PoolTableSize, logger)
	}
	if cfg.Features&FeatureBlocks != 0 {
		rt.blocks = blockrt.New(rt.dispatchForBlocks)
	}
	return rt
}

// Load registers every class, category, protocol, alias and constant
// string in desc (§4.1). Safe to call with multiple descriptors, e.g.
// one per translation unit; each is independently idempotent. A
// descriptor with an unsupported version is rejected with an error
// wrapping ErrDescriptorVersion.
func (rt *Runtime) Load(desc *abi.LoadDescriptor) error {
	err := rt.classes.Load(desc)
	if errors.Is(err, classtab.ErrDescriptorVersion) {
		return fmt.Errorf("%w: %v", ErrDescriptorVersion, err)
	}
	return err
}

// registerMethodList is the classtab.MethodRegisterFunc callback: every
// class resolution and every applied category routes its method lists
// through here to land in the global hash table. The chain is registered
// back to front, so where two lists in it define the same selector the one
// nearer the head (a prepended category) is written last and wins. A
// method the full table cannot take is logged and dropped.
func (rt *Runtime) registerMethodList(id abi.ClassID, cls *classtab.Class, ml *abi.MethodListRO) {
	var methods []abi.MethodRO
	ml.Walk(func(m abi.MethodRO) { methods = append(methods, m) })
	for i := len(methods) - 1; i >= 0; i-- {
		m := methods[i]
		if !rt.hash.Register(id, cls.Name, cls.Flags.IsMeta(), m.Sel, m.Imp) {
			rt.log.Printf("objzrt: method hash table full, dropping %q on %q", m.Sel.Name(), cls.Name)
		}
	}
}

// ensureCategoriesLoaded applies every queued category exactly once,
// flushing every class's dispatch cache afterward if any category was
// grafted onto a class — a category can only
// ever make previously-cached lookups stale, never the reverse
// (original_source/objc/src/message.c: objc_msg_lookup calls
// __objc_category_load() before its first-ever dispatch).
func (rt *Runtime) ensureCategoriesLoaded() {
	if rt.dispatchedEver {
		return
	}
	rt.dispatchedEver = true
	affected := rt.classes.ApplyCategories(rt.registerMethodList)
	if len(affected) > 0 {
		rt.caches.FlushAll()
	}
}

// dispatchForBlocks adapts LookupIMP + a direct call into the
// blockrt.Dispatcher shape blocks use to retain/release their captured
// objects through message dispatch rather than a direct refcount call.
func (rt *Runtime) dispatchForBlocks(receiver any, sel abi.Selector) {
	obj, ok := receiver.(*Object)
	if !ok || obj == nil {
		return
	}
	if imp := rt.LookupIMP(obj.isa, sel); imp != nil {
		imp(obj, sel)
	}
}

// AllocObject allocates an instance of class id: its static slab first
// (if registered and not exhausted), falling back to a plain heap
// allocation, per §4.7.
func (rt *Runtime) AllocObject(id abi.ClassID) *Object {
	cls := rt.classes.Class(id)
	if cls == nil {
		return nil
	}
	size := cls.InstanceSize
	var ivars []byte
	if rt.slabs != nil {
		if block := rt.slabs.Alloc(cls.Name); block != nil {
			ivars = block[:size]
		}
	}
	if ivars == nil {
		ivars = make([]byte, size)
	}
	return &Object{isa: id, refcount: 1, Ivars: ivars}
}

func (rt *Runtime) dealloc(obj *Object) {
	if obj == nil {
		return
	}
	deallocSel := abi.MakeSelector("dealloc", "")
	if imp := rt.LookupIMP(obj.isa, deallocSel); imp != nil {
		imp(obj, deallocSel)
	}
	if cls := rt.classes.Class(obj.isa); cls != nil && cls.CxxDestruct != nil {
		cls.CxxDestruct(obj.Ivars)
	}
	if rt.slabs != nil && rt.slabs.Free(obj.Ivars) {
		return
	}
	// Heap-allocated ivar storage is reclaimed by the garbage collector;
	// nothing further to do.
}
