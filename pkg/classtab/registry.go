// Package classtab implements the metadata loader and the class, category,
// protocol and constant-string registries (spec §4.1, §4.2), plus the
// non-fragile ivar fixup / instance-size resolver.
//
// Classes, categories and protocols are kept in append-only arenas indexed
// by abi.ClassID / abi.ProtocolID (Design Notes: "Class as cyclic graph" —
// every pointer in the original ABI becomes an arena index here; the arena
// never shrinks, so an entry's ID is valid for the process lifetime).
package classtab

import (
	"errors"
	"fmt"
	"sync"

	"github.com/appsworld/objzrt/abi"
)

// ErrDescriptorVersion is returned by Load when a descriptor's version
// doesn't match abi.CurrentDescriptorVersion. The root package wraps this
// into its own exported sentinel rather than classtab depending on it.
var ErrDescriptorVersion = errors.New("classtab: unsupported load descriptor version")

// PointerWidth and HeaderSize model the embedded target's pointer size and
// refcounted-object header size respectively, used by the ivar fixup
// (§4.2) to align offsets and to seed immortal classes' starting offset.
const (
	PointerWidth = 8
	HeaderSize   = 8
)

// Class is the runtime-resolved class record (the "RW" counterpart to
// abi.ClassRO, mirroring the teacher's ClassRO/Class split in
// types/objc/class.go). Super and Meta are arena indices, not pointers.
type Class struct {
	Name          string
	SuperName     string
	Super         abi.ClassID
	Meta          abi.ClassID
	Methods       *abi.MethodListRO
	Ivars         []abi.IvarRO
	Properties    []abi.PropertyRO
	ProtocolNames []string
	ProtocolIDs   []abi.ProtocolID
	InstanceSize  int64
	Flags         abi.ClassFlags
	CxxConstruct  func(ivars []byte)
	CxxDestruct   func(ivars []byte)
}

// Category is held in the registry until ApplyCategories grafts its method
// lists onto the target class; its methods then live as long as the class
// does (forever) — the Category record itself is never consulted again.
type Category struct {
	Name            string
	TargetClassName string
	InstanceMethods *abi.MethodListRO
	ClassMethods    *abi.MethodListRO
	ProtocolNames   []string
}

// Protocol is the runtime-resolved protocol record.
type Protocol struct {
	Name                    string
	Adopted                 []abi.ProtocolID
	RequiredInstanceMethods []abi.Selector
	RequiredClassMethods    []abi.Selector
	OptionalInstanceMethods []abi.Selector
	OptionalClassMethods    []abi.Selector

	// populated distinguishes a real registration from a stub created
	// only because some other protocol or class named it in an
	// adopted-protocol list before its own ProtocolRO arrived.
	populated bool
}

// MethodRegisterFunc is called by Resolve and ApplyCategories whenever a
// method list needs to be grafted into the global method hash table.
// Taking this as a callback (rather than classtab importing
// pkg/methodhash directly) avoids a dependency cycle, the same structural
// choice original_source/objc/src/refcount.c makes for its
// autorelease-pool callback.
type MethodRegisterFunc func(id abi.ClassID, cls *Class, ml *abi.MethodListRO)

// Registry holds the class/category/protocol/constant-string tables. All
// mutation happens under mu, matching §4.2's "resolver runs under the
// process-wide registry lock" and §5's "Method hash insertions happen
// under the process-wide registry lock held during class resolution."
type Registry struct {
	mu sync.Mutex

	classes []*Class
	byName  map[string]abi.ClassID

	categories        []*Category
	categoriesApplied bool

	protocols   []*Protocol
	protoByName map[string]abi.ProtocolID

	strings                 []*abi.ConstantStringRO
	constantStringClassName string

	capClasses, capCategories, capProtocols int

	log abi.Logger
}

// New constructs an empty registry. constantStringClassName names the
// class §4.1's load-time isa patch targets (the embedding application's
// constant-string class, e.g. "OZString"). Capacities are used as given;
// a capacity of zero makes that table refuse every registration.
func New(capClasses, capCategories, capProtocols int, constantStringClassName string, logger abi.Logger) *Registry {
	if logger == nil {
		logger = abi.DefaultLogger()
	}
	return &Registry{
		byName:                  make(map[string]abi.ClassID),
		protoByName:             make(map[string]abi.ProtocolID),
		capClasses:              capClasses,
		capCategories:           capCategories,
		capProtocols:            capProtocols,
		constantStringClassName: constantStringClassName,
		log:                     logger,
	}
}

// Load registers every class, category, protocol, class alias and constant
// string in desc. It is idempotent: a descriptor already marked with
// abi.LoadedSentinelVersion is skipped without error.
func (r *Registry) Load(desc *abi.LoadDescriptor) error {
	if desc == nil {
		return nil
	}
	if desc.Version == abi.LoadedSentinelVersion {
		return nil
	}
	if desc.Version != abi.CurrentDescriptorVersion {
		r.log.Printf("load: descriptor version %d not recognised, rejecting", desc.Version)
		return fmt.Errorf("%w: got %d, want %d", ErrDescriptorVersion, desc.Version, abi.CurrentDescriptorVersion)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sel := range desc.Selectors {
		abi.InternSelectorName(sel.Name())
	}
	for _, cls := range desc.Classes {
		r.registerClassLocked(cls)
	}
	for _, cat := range desc.Categories {
		r.registerCategoryLocked(cat)
	}
	for _, proto := range desc.Protocols {
		r.registerProtocolLocked(proto)
	}
	for _, alias := range desc.Aliases {
		r.registerAliasLocked(alias)
	}
	if sid, ok := r.byName[r.constantStringClassName]; ok {
		for _, s := range desc.Strings {
			if s.Class == abi.NoClassID {
				s.Class = sid
			}
			r.strings = append(r.strings, s)
		}
	} else {
		r.strings = append(r.strings, desc.Strings...)
	}

	desc.Version = abi.LoadedSentinelVersion
	return nil
}
