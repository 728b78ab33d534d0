package classtab

import "github.com/appsworld/objzrt/abi"

// registerCategoryLocked queues a category for ApplyCategories. Duplicate
// categories (same name targeting the same class) are kept in full —
// original_source/objc/src/category.c applies every registered category
// in table order without deduplicating, so repeated category
// declarations all take effect.
func (r *Registry) registerCategoryLocked(ro *abi.CategoryRO) {
	if ro == nil {
		return
	}
	if len(r.categories) >= r.capCategories {
		r.log.Printf("classtab: category table full (%d entries), dropping %q on %q", r.capCategories, ro.Name, ro.TargetClassName)
		return
	}
	r.categories = append(r.categories, &Category{
		Name:            ro.Name,
		TargetClassName: ro.TargetClassName,
		InstanceMethods: ro.InstanceMethods,
		ClassMethods:    ro.ClassMethods,
		ProtocolNames:   append([]string(nil), ro.ProtocolNames...),
	})
}

// ApplyCategories grafts every queued category's method lists onto its
// target class (instance methods) and target metaclass (class methods),
// prepending so category methods shadow the class's own (§4.1,
// original_source/objc/src/category.c: __objc_category_load_category).
// It runs exactly once; subsequent calls are no-ops, matching
// __objc_category_load's one-shot static guard. registerMethods is called
// once per grafted list so the caller can insert the new methods into the
// method hash table (idempotent: a later full class Resolve walking the
// same spliced chain just overwrites the same hash slots).
func (r *Registry) ApplyCategories(registerMethods MethodRegisterFunc) []abi.ClassID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.categoriesApplied {
		return nil
	}
	r.categoriesApplied = true

	var affected []abi.ClassID
	for _, cat := range r.categories {
		id, ok := r.byName[cat.TargetClassName]
		if !ok {
			r.log.Printf("classtab: category %q targets unknown class %q, skipping", cat.Name, cat.TargetClassName)
			continue
		}
		cls := r.classes[id]

		if cat.InstanceMethods != nil {
			prependMethodList(&cls.Methods, cat.InstanceMethods)
			if registerMethods != nil {
				registerMethods(id, cls, cat.InstanceMethods)
			}
			affected = append(affected, id)
		}
		if cat.ClassMethods != nil && cls.Meta != abi.NoClassID {
			metaCls := r.classes[cls.Meta]
			prependMethodList(&metaCls.Methods, cat.ClassMethods)
			if registerMethods != nil {
				registerMethods(cls.Meta, metaCls, cat.ClassMethods)
			}
			affected = append(affected, cls.Meta)
		}
		if len(cat.ProtocolNames) > 0 {
			cls.ProtocolNames = append(cls.ProtocolNames, cat.ProtocolNames...)
		}
	}
	return affected
}

// prependMethodList splices add onto the front of the chain rooted at
// *head, leaving add's own internal chain intact.
func prependMethodList(head **abi.MethodListRO, add *abi.MethodListRO) {
	tail := add
	for tail.Next != nil {
		tail = tail.Next
	}
	tail.Next = *head
	*head = add
}

// CategoriesApplied reports whether ApplyCategories has already run.
func (r *Registry) CategoriesApplied() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.categoriesApplied
}
