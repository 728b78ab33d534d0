package objzrt

import (
	"bytes"
	"fmt"

	"github.com/appsworld/objzrt/abi"
)

// logBuf is a minimal abi.Logger that records every line, used across this
// package's tests to assert on (or simply silence) diagnostic output.
type logBuf struct{ buf bytes.Buffer }

func (l *logBuf) Printf(format string, args ...any) { fmt.Fprintf(&l.buf, format+"\n", args...) }

// classBuilder assembles an abi.ClassRO (plus its metaclass) for test
// fixtures, filling in the bits every test needs without repeating
// boilerplate.
type classBuilder struct {
	ro     *abi.ClassRO
	meta   *abi.ClassRO
	ivars  []abi.IvarRO
	offset map[string]*int64
}

func newTestClass(name, superName string) *classBuilder {
	meta := &abi.ClassRO{Name: name, Flags: abi.ClassFlagMeta}
	ro := &abi.ClassRO{Name: name, SuperName: superName, Meta: meta}
	return &classBuilder{ro: ro, meta: meta, offset: map[string]*int64{}}
}

func (b *classBuilder) withIvar(name, typ string, size int64) *classBuilder {
	off := new(int64)
	b.offset[name] = off
	b.ivars = append(b.ivars, abi.IvarRO{Name: name, Type: typ, Offset: off, Size: size})
	b.ro.Ivars = &abi.IvarListRO{Ivars: b.ivars}
	return b
}

func (b *classBuilder) withInstanceMethod(name string, imp abi.IMP) *classBuilder {
	ml := &abi.MethodListRO{Methods: []abi.MethodRO{{Sel: abi.MakeSelector(name, ""), Imp: imp}}, Next: b.ro.Methods}
	b.ro.Methods = ml
	return b
}

func (b *classBuilder) withClassMethod(name string, imp abi.IMP) *classBuilder {
	ml := &abi.MethodListRO{Methods: []abi.MethodRO{{Sel: abi.MakeSelector(name, ""), Imp: imp}}, Next: b.meta.Methods}
	b.meta.Methods = ml
	return b
}

func (b *classBuilder) withProtocols(names ...string) *classBuilder {
	b.ro.ProtocolNames = append(b.ro.ProtocolNames, names...)
	return b
}

func (b *classBuilder) ivarOffset(name string) int64 { return *b.offset[name] }

func newTestRuntime(logger abi.Logger) *Runtime {
	if logger == nil {
		logger = &logBuf{}
	}
	return New(Config{}, "OZConstantString", logger)
}
