package classfile

import (
	"strconv"
	"unicode/utf16"
)

// Constant pool tags.
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

var tagNames = map[uint8]string{
	tagUtf8:               "Utf8",
	tagInteger:            "Integer",
	tagFloat:              "Float",
	tagLong:               "Long",
	tagDouble:             "Double",
	tagClass:              "Class",
	tagString:             "String",
	tagFieldref:           "Fieldref",
	tagMethodref:          "Methodref",
	tagInterfaceMethodref: "InterfaceMethodref",
	tagNameAndType:        "NameAndType",
	tagMethodHandle:       "MethodHandle",
	tagMethodType:         "MethodType",
	tagDynamic:            "Dynamic",
	tagInvokeDynamic:      "InvokeDynamic",
	tagModule:             "Module",
	tagPackage:            "Package",
}

// constant is one decoded pool slot. The meaning of a and b depends on tag:
// Class/String/MethodType/Module/Package use a as a Utf8 index; member
// references use a as class index and b as NameAndType index; NameAndType
// uses a as name and b as descriptor; MethodHandle uses a as the reference
// index; Dynamic and InvokeDynamic use a as bootstrap method index and b as
// NameAndType index.
type constant struct {
	tag  uint8
	kind uint8 // MethodHandle reference kind
	a, b uint16
	text string // Utf8 only
}

// constantPool is indexed from 1; slot 0 and the slot following each Long or
// Double are unusable and have tag 0.
type constantPool []constant

func readConstantPool(r *reader) constantPool {
	count := r.u2()
	if r.err != nil {
		return nil
	}
	if count == 0 {
		r.fail("constant pool count is zero")
		return nil
	}
	pool := make(constantPool, count)
	for i := 1; i < int(count) && r.err == nil; i++ {
		tag := r.u1()
		c := constant{tag: tag}
		switch tag {
		case tagUtf8:
			start := r.pos()
			raw := r.next(int(r.u2()))
			if r.err != nil {
				break
			}
			text, ok := decodeModifiedUTF8(raw)
			if !ok {
				r.err = &DecodeError{Offset: start, Reason: "invalid modified UTF-8 in constant " + strconv.Itoa(i)}
			}
			c.text = text
		case tagInteger, tagFloat:
			r.skip(4)
		case tagLong, tagDouble:
			r.skip(8)
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			c.a = r.u2()
		case tagFieldref, tagMethodref, tagInterfaceMethodref, tagNameAndType, tagDynamic, tagInvokeDynamic:
			c.a = r.u2()
			c.b = r.u2()
		case tagMethodHandle:
			c.kind = r.u1()
			c.a = r.u2()
		default:
			r.fail("unknown constant pool tag %d at index %d", tag, i)
		}
		pool[i] = c
		if tag == tagLong || tag == tagDouble {
			i++
		}
	}
	return pool
}

func (p constantPool) get(i uint16, tag uint8) (constant, error) {
	if i == 0 || int(i) >= len(p) {
		return constant{}, malformed("constant pool index %d out of range", i)
	}
	if c := p[i]; c.tag != tag {
		return constant{}, malformed("constant pool index %d is %s, want %s", i, tagName(c.tag), tagName(tag))
	}
	return p[i], nil
}

func (p constantPool) utf8(i uint16) (string, error) {
	c, err := p.get(i, tagUtf8)
	return c.text, err
}

func (p constantPool) className(i uint16) (string, error) {
	c, err := p.get(i, tagClass)
	if err != nil {
		return "", err
	}
	return p.utf8(c.a)
}

func (p constantPool) nameAndType(i uint16) (name, desc string, err error) {
	c, err := p.get(i, tagNameAndType)
	if err != nil {
		return "", "", err
	}
	if name, err = p.utf8(c.a); err != nil {
		return "", "", err
	}
	desc, err = p.utf8(c.b)
	return name, desc, err
}

// memberRef resolves a Fieldref, Methodref or InterfaceMethodref to its owner
// class and member descriptor.
func (p constantPool) memberRef(i uint16) (owner, desc string, err error) {
	if i == 0 || int(i) >= len(p) {
		return "", "", malformed("constant pool index %d out of range", i)
	}
	c := p[i]
	switch c.tag {
	case tagFieldref, tagMethodref, tagInterfaceMethodref:
	default:
		return "", "", malformed("constant pool index %d is %s, want a member reference", i, tagName(c.tag))
	}
	if owner, err = p.className(c.a); err != nil {
		return "", "", err
	}
	_, desc, err = p.nameAndType(c.b)
	return owner, desc, err
}

func (p constantPool) methodHandle(i uint16) (owner, desc string, err error) {
	c, err := p.get(i, tagMethodHandle)
	if err != nil {
		return "", "", err
	}
	return p.memberRef(c.a)
}

func tagName(tag uint8) string {
	if n, ok := tagNames[tag]; ok {
		return n
	}
	if tag == 0 {
		return "unusable slot"
	}
	return "tag " + strconv.Itoa(int(tag))
}

// decodeModifiedUTF8 decodes the JVM's modified UTF-8: NUL is encoded in two
// bytes and supplementary characters as surrogate pairs of three bytes each.
func decodeModifiedUTF8(b []byte) (string, bool) {
	ascii := true
	for _, c := range b {
		if c == 0 || c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b), true
	}

	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == 0:
			return "", false
		case c < 0x80:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", false
			}
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0:
			if i+2 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
				return "", false
			}
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			return "", false
		}
	}
	return string(utf16.Decode(units)), true
}
