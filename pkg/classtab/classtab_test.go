package classtab

import (
	"testing"

	"github.com/appsworld/objzrt/abi"
)

type logBuf struct{ lines []string }

func (l *logBuf) Printf(format string, args ...any) {
	l.lines = append(l.lines, format)
}

func rootClassRO(name string, ivars ...abi.IvarRO) *abi.ClassRO {
	return &abi.ClassRO{
		Name:         name,
		InstanceSize: -1,
		Ivars:        &abi.IvarListRO{Ivars: ivars},
		Meta:         &abi.ClassRO{InstanceSize: 64},
	}
}

func subClassRO(name, super string, ivars ...abi.IvarRO) *abi.ClassRO {
	ro := rootClassRO(name, ivars...)
	ro.SuperName = super
	return ro
}

func TestLoadRegistersClassAndMetaclass(t *testing.T) {
	r := New(8, 8, 8, "OZConstantString", &logBuf{})
	desc := &abi.LoadDescriptor{
		Version: abi.CurrentDescriptorVersion,
		Classes: []*abi.ClassRO{rootClassRO("Object")},
	}
	if err := r.Load(desc); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if desc.Version != abi.LoadedSentinelVersion {
		t.Fatalf("descriptor not marked loaded: %d", desc.Version)
	}
	id, ok := r.LookupClassID("Object")
	if !ok {
		t.Fatalf("Object not registered")
	}
	cls := r.Class(id)
	if cls.Flags.IsMeta() {
		t.Fatalf("instance class registered as meta")
	}
	if cls.Meta == abi.NoClassID {
		t.Fatalf("metaclass not linked")
	}
	meta := r.Class(cls.Meta)
	if !meta.Flags.IsMeta() {
		t.Fatalf("metaclass missing meta flag")
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	r := New(8, 8, 8, "", &logBuf{})
	desc := &abi.LoadDescriptor{
		Version: abi.CurrentDescriptorVersion,
		Classes: []*abi.ClassRO{rootClassRO("Object")},
	}
	if err := r.Load(desc); err != nil {
		t.Fatalf("first Load: %v", err)
	}
	before := r.NumClasses()
	if err := r.Load(desc); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if after := r.NumClasses(); after != before {
		t.Fatalf("second load mutated registry: %d -> %d", before, after)
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	r := New(8, 8, 8, "", &logBuf{})
	desc := &abi.LoadDescriptor{Version: 1}
	if err := r.Load(desc); err == nil {
		t.Fatalf("expected error for unrecognised version")
	}
}

func TestFixupIvarOffsetsAlignAndAccumulate(t *testing.T) {
	r := New(8, 8, 8, "", &logBuf{})
	off1, off2, off3 := new(int64), new(int64), new(int64)
	desc := &abi.LoadDescriptor{
		Version: abi.CurrentDescriptorVersion,
		Classes: []*abi.ClassRO{
			rootClassRO("Object"),
			subClassRO("Shape", "Object",
				abi.IvarRO{Name: "flag", Size: 1, Offset: off1},
				abi.IvarRO{Name: "width", Size: 8, Offset: off2},
				abi.IvarRO{Name: "tag", Size: 2, Offset: off3},
			),
		},
	}
	if err := r.Load(desc); err != nil {
		t.Fatalf("Load: %v", err)
	}
	id, _ := r.LookupClassID("Shape")
	r.Resolve(id, nil)

	if *off1 != HeaderSize {
		t.Fatalf("flag offset = %d, want %d", *off1, HeaderSize)
	}
	if *off2 != HeaderSize+8 {
		t.Fatalf("width offset = %d, want %d", *off2, HeaderSize+8)
	}
	if *off3 != HeaderSize+16 {
		t.Fatalf("tag offset = %d, want %d", *off3, HeaderSize+16)
	}
	cls := r.Class(id)
	if cls.InstanceSize != HeaderSize+18 {
		t.Fatalf("instance size = %d, want %d", cls.InstanceSize, HeaderSize+18)
	}
}

func TestResolveLinksMetaclassSuperclass(t *testing.T) {
	r := New(8, 8, 8, "", &logBuf{})
	desc := &abi.LoadDescriptor{
		Version: abi.CurrentDescriptorVersion,
		Classes: []*abi.ClassRO{
			rootClassRO("Object"),
			subClassRO("Shape", "Object"),
		},
	}
	if err := r.Load(desc); err != nil {
		t.Fatalf("Load: %v", err)
	}
	shapeID, _ := r.LookupClassID("Shape")
	objectID, _ := r.LookupClassID("Object")
	r.Resolve(shapeID, nil)

	shape := r.Class(shapeID)
	object := r.Class(objectID)
	shapeMeta := r.Class(shape.Meta)
	if shapeMeta.Super != object.Meta {
		t.Fatalf("Shape's metaclass super = %v, want Object's metaclass %v", shapeMeta.Super, object.Meta)
	}
}

func TestApplyCategoriesPrependsAndFlagsAffectedClasses(t *testing.T) {
	r := New(8, 8, 8, "", &logBuf{})
	orig := &abi.MethodListRO{Methods: []abi.MethodRO{{Sel: abi.MakeSelector("area", "")}}}
	desc := &abi.LoadDescriptor{
		Version: abi.CurrentDescriptorVersion,
		Classes: []*abi.ClassRO{
			func() *abi.ClassRO { c := rootClassRO("Shape"); c.Methods = orig; return c }(),
		},
		Categories: []*abi.CategoryRO{
			{
				Name:            "Override",
				TargetClassName: "Shape",
				InstanceMethods: &abi.MethodListRO{Methods: []abi.MethodRO{{Sel: abi.MakeSelector("area", "")}}},
			},
		},
	}
	if err := r.Load(desc); err != nil {
		t.Fatalf("Load: %v", err)
	}
	var grafted []*abi.MethodListRO
	affected := r.ApplyCategories(func(id abi.ClassID, cls *Class, ml *abi.MethodListRO) {
		grafted = append(grafted, ml)
	})
	if len(affected) != 1 {
		t.Fatalf("affected = %v, want 1 entry", affected)
	}
	if len(grafted) != 1 {
		t.Fatalf("expected exactly one grafted method list")
	}
	shapeID, _ := r.LookupClassID("Shape")
	shape := r.Class(shapeID)
	if shape.Methods == orig {
		t.Fatalf("category methods were not prepended ahead of the original list")
	}
	if shape.Methods.Next != orig {
		t.Fatalf("original method list not preserved in the chain")
	}

	if again := r.ApplyCategories(nil); again != nil {
		t.Fatalf("ApplyCategories ran twice: %v", again)
	}
}

func TestProtocolConformanceIsTransitive(t *testing.T) {
	r := New(8, 8, 8, "", &logBuf{})
	desc := &abi.LoadDescriptor{
		Version: abi.CurrentDescriptorVersion,
		Protocols: []*abi.ProtocolRO{
			{Name: "Drawable", AdoptedNames: []string{"Sizable"}},
			{Name: "Sizable"},
		},
	}
	if err := r.Load(desc); err != nil {
		t.Fatalf("Load: %v", err)
	}
	drawable, _ := r.LookupProtocolID("Drawable")
	sizable, _ := r.LookupProtocolID("Sizable")
	if !r.ProtocolConformsTo(drawable, sizable) {
		t.Fatalf("Drawable should transitively conform to Sizable")
	}
	if r.ProtocolConformsTo(sizable, drawable) {
		t.Fatalf("Sizable should not conform to Drawable")
	}
}

func TestClassAliasResolvesToSameID(t *testing.T) {
	r := New(8, 8, 8, "", &logBuf{})
	desc := &abi.LoadDescriptor{
		Version: abi.CurrentDescriptorVersion,
		Classes: []*abi.ClassRO{rootClassRO("OZString")},
		Aliases: []abi.ClassAliasRO{{AliasName: "NSString", TargetName: "OZString"}},
	}
	if err := r.Load(desc); err != nil {
		t.Fatalf("Load: %v", err)
	}
	want, _ := r.LookupClassID("OZString")
	got, ok := r.LookupClassID("NSString")
	if !ok || got != want {
		t.Fatalf("alias NSString -> %v, ok=%v, want %v", got, ok, want)
	}
}

func TestIsKindOfWalksSuperclassChain(t *testing.T) {
	r := New(8, 8, 8, "", &logBuf{})
	desc := &abi.LoadDescriptor{
		Version: abi.CurrentDescriptorVersion,
		Classes: []*abi.ClassRO{
			rootClassRO("Object"),
			subClassRO("Shape", "Object"),
			subClassRO("Circle", "Shape"),
		},
	}
	if err := r.Load(desc); err != nil {
		t.Fatalf("Load: %v", err)
	}
	circleID, _ := r.LookupClassID("Circle")
	objectID, _ := r.LookupClassID("Object")
	r.Resolve(circleID, nil)
	if !r.IsKindOf(circleID, objectID) {
		t.Fatalf("Circle should be a kind of Object")
	}
}
