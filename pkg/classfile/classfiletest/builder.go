// Package classfiletest assembles compiled JVM class files and jar archives
// for tests.
//
//	b := classfiletest.New("com/example/App", "java/lang/Object")
//	b.Method("run", "(Lcom/lib/Service;)V")
//	data := b.Bytes()
package classfiletest

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// MethodHandle reference kinds.
const (
	RefGetField      = 1
	RefInvokeVirtual = 5
	RefInvokeStatic  = 6
)

// Attr is a raw attribute; build it with the Builder's attribute helpers.
type Attr struct {
	Name string
	Data []byte
}

type member struct {
	access     uint16
	name, desc string
	attrs      []Attr
}

type bootstrap struct {
	handle uint16
	args   []uint16
}

// Builder accumulates one class file. Pool entries are deduplicated.
type Builder struct {
	name, super string
	interfaces  []string

	Major  uint16
	Access uint16

	pool  bytes.Buffer
	next  uint16
	cache map[string]uint16

	fields, methods []member
	attrs           []Attr
	bootstraps      []bootstrap
}

// New starts a class named name. An empty super omits the superclass entry,
// as java/lang/Object itself does.
func New(name, super string, interfaces ...string) *Builder {
	return &Builder{
		name:       name,
		super:      super,
		interfaces: interfaces,
		Major:      61,
		Access:     0x0021,
		next:       1,
		cache:      make(map[string]uint16),
	}
}

func (b *Builder) entry(key string, size uint16, write func(w *bytes.Buffer)) uint16 {
	if idx, ok := b.cache[key]; ok {
		return idx
	}
	idx := b.next
	write(&b.pool)
	b.next += size
	b.cache[key] = idx
	return idx
}

func (b *Builder) Utf8(s string) uint16 {
	return b.entry("utf8:"+s, 1, func(w *bytes.Buffer) {
		w.WriteByte(1)
		u2(w, uint16(len(s)))
		w.WriteString(s)
	})
}

func (b *Builder) Class(name string) uint16 {
	n := b.Utf8(name)
	return b.entry("class:"+name, 1, func(w *bytes.Buffer) {
		w.WriteByte(7)
		u2(w, n)
	})
}

func (b *Builder) String(s string) uint16 {
	n := b.Utf8(s)
	return b.entry("string:"+s, 1, func(w *bytes.Buffer) {
		w.WriteByte(8)
		u2(w, n)
	})
}

// Long adds a two-slot constant.
func (b *Builder) Long(v int64) uint16 {
	return b.entry(fmt.Sprintf("long:%d", v), 2, func(w *bytes.Buffer) {
		w.WriteByte(5)
		_ = binary.Write(w, binary.BigEndian, v)
	})
}

func (b *Builder) NameAndType(name, desc string) uint16 {
	n, d := b.Utf8(name), b.Utf8(desc)
	return b.entry("nat:"+name+":"+desc, 1, func(w *bytes.Buffer) {
		w.WriteByte(12)
		u2(w, n)
		u2(w, d)
	})
}

func (b *Builder) memberRef(tag byte, owner, name, desc string) uint16 {
	c, nt := b.Class(owner), b.NameAndType(name, desc)
	return b.entry(fmt.Sprintf("ref%d:%s.%s:%s", tag, owner, name, desc), 1, func(w *bytes.Buffer) {
		w.WriteByte(tag)
		u2(w, c)
		u2(w, nt)
	})
}

func (b *Builder) Fieldref(owner, name, desc string) uint16 {
	return b.memberRef(9, owner, name, desc)
}

func (b *Builder) Methodref(owner, name, desc string) uint16 {
	return b.memberRef(10, owner, name, desc)
}

func (b *Builder) InterfaceMethodref(owner, name, desc string) uint16 {
	return b.memberRef(11, owner, name, desc)
}

// MethodHandle adds a handle to a method (or, for RefGetField, a field) of owner.
func (b *Builder) MethodHandle(kind uint8, owner, name, desc string) uint16 {
	var ref uint16
	if kind <= 4 {
		ref = b.Fieldref(owner, name, desc)
	} else {
		ref = b.Methodref(owner, name, desc)
	}
	return b.entry(fmt.Sprintf("mh:%d:%d", kind, ref), 1, func(w *bytes.Buffer) {
		w.WriteByte(15)
		w.WriteByte(kind)
		u2(w, ref)
	})
}

func (b *Builder) MethodType(desc string) uint16 {
	d := b.Utf8(desc)
	return b.entry("mt:"+desc, 1, func(w *bytes.Buffer) {
		w.WriteByte(16)
		u2(w, d)
	})
}

// Bootstrap registers a bootstrap method and returns its index.
func (b *Builder) Bootstrap(handle uint16, args ...uint16) uint16 {
	b.bootstraps = append(b.bootstraps, bootstrap{handle: handle, args: args})
	return uint16(len(b.bootstraps) - 1)
}

// InvokeDynamic adds a dynamic call site bound to bootstrap method bsm.
func (b *Builder) InvokeDynamic(bsm uint16, name, desc string) uint16 {
	nt := b.NameAndType(name, desc)
	return b.entry(fmt.Sprintf("indy:%d:%d", bsm, nt), 1, func(w *bytes.Buffer) {
		w.WriteByte(18)
		u2(w, bsm)
		u2(w, nt)
	})
}

func (b *Builder) Field(name, desc string, attrs ...Attr) {
	b.fields = append(b.fields, member{access: 0x0002, name: name, desc: desc, attrs: attrs})
}

func (b *Builder) Method(name, desc string, attrs ...Attr) {
	b.methods = append(b.methods, member{access: 0x0001, name: name, desc: desc, attrs: attrs})
}

// Attr adds class-level attributes.
func (b *Builder) Attr(attrs ...Attr) {
	b.attrs = append(b.attrs, attrs...)
}

// Bytes serializes the class.
func (b *Builder) Bytes() []byte {
	var body bytes.Buffer
	u2(&body, b.Access)
	u2(&body, b.Class(b.name))
	if b.super == "" {
		u2(&body, 0)
	} else {
		u2(&body, b.Class(b.super))
	}
	u2(&body, uint16(len(b.interfaces)))
	for _, i := range b.interfaces {
		u2(&body, b.Class(i))
	}
	b.writeMembers(&body, b.fields)
	b.writeMembers(&body, b.methods)

	attrs := b.attrs
	if len(b.bootstraps) > 0 {
		var data bytes.Buffer
		u2(&data, uint16(len(b.bootstraps)))
		for _, bs := range b.bootstraps {
			u2(&data, bs.handle)
			u2(&data, uint16(len(bs.args)))
			for _, a := range bs.args {
				u2(&data, a)
			}
		}
		attrs = append(attrs[:len(attrs):len(attrs)], Attr{Name: "BootstrapMethods", Data: data.Bytes()})
	}
	b.writeAttrs(&body, attrs)

	var out bytes.Buffer
	_ = binary.Write(&out, binary.BigEndian, uint32(0xCAFEBABE))
	u2(&out, 0)
	u2(&out, b.Major)
	u2(&out, b.next)
	out.Write(b.pool.Bytes())
	out.Write(body.Bytes())
	return out.Bytes()
}

func (b *Builder) writeMembers(w *bytes.Buffer, members []member) {
	u2(w, uint16(len(members)))
	for _, m := range members {
		u2(w, m.access)
		u2(w, b.Utf8(m.name))
		u2(w, b.Utf8(m.desc))
		b.writeAttrs(w, m.attrs)
	}
}

func (b *Builder) writeAttrs(w *bytes.Buffer, attrs []Attr) {
	u2(w, uint16(len(attrs)))
	for _, a := range attrs {
		u2(w, b.Utf8(a.Name))
		_ = binary.Write(w, binary.BigEndian, uint32(len(a.Data)))
		w.Write(a.Data)
	}
}

func u2(w *bytes.Buffer, v uint16) {
	w.WriteByte(byte(v >> 8))
	w.WriteByte(byte(v))
}

// WriteJar writes a zip archive with the given entries to path.
func WriteJar(path string, entries map[string][]byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(f)
	for name, data := range entries {
		w, err := zw.Create(name)
		if err != nil {
			f.Close()
			return err
		}
		if _, err := w.Write(data); err != nil {
			f.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
