package classfile

const (
	magic      = 0xCAFEBABE
	objectType = "java/lang/Object"
)

// ClassFile is the structural view of one compiled unit.
// Names are internal (slash-delimited) names.
type ClassFile struct {
	Minor, Major uint16
	Access       uint16
	Name         string
	Super        string // empty for java/lang/Object and module-info
	Interfaces   []string
	Fields       []Member
	Methods      []Member
	Attributes   []Attribute

	pool       constantPool
	thisIndex  uint16
	superIndex uint16
}

// Member is a field or method declaration.
type Member struct {
	Access     uint16
	Name       string
	Descriptor string
	Attributes []Attribute
}

// Attribute is an undecoded attribute. Offset is the absolute position of
// Data within the class file.
type Attribute struct {
	Name   string
	Data   []byte
	Offset int
}

// Decode parses the structure of one compiled unit. Trailing bytes after the
// last attribute are rejected.
func Decode(data []byte) (*ClassFile, error) {
	r := newReader(data, 0)
	if m := r.u4(); r.err == nil && m != magic {
		return nil, &DecodeError{Offset: 0, Reason: "bad magic number"}
	}

	cf := &ClassFile{}
	cf.Minor = r.u2()
	cf.Major = r.u2()
	cf.pool = readConstantPool(r)
	if r.err != nil {
		return nil, r.err
	}

	cf.Access = r.u2()
	cf.thisIndex = r.u2()
	cf.superIndex = r.u2()
	if r.err != nil {
		return nil, r.err
	}
	var err error
	if cf.Name, err = cf.pool.className(cf.thisIndex); err != nil {
		return nil, err
	}
	if cf.superIndex != 0 {
		if cf.Super, err = cf.pool.className(cf.superIndex); err != nil {
			return nil, err
		}
	}

	n := int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		name, err := cf.pool.className(r.u2())
		r.setErr(err)
		cf.Interfaces = append(cf.Interfaces, name)
	}

	cf.Fields = readMembers(r, cf.pool)
	cf.Methods = readMembers(r, cf.pool)
	cf.Attributes = readAttributes(r, cf.pool)
	if r.err != nil {
		return nil, r.err
	}
	if r.remaining() != 0 {
		return nil, &DecodeError{Offset: r.pos(), Reason: "trailing bytes after class structure"}
	}
	return cf, nil
}

func readMembers(r *reader, pool constantPool) []Member {
	n := int(r.u2())
	if r.err != nil {
		return nil
	}
	members := make([]Member, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		m := Member{Access: r.u2()}
		nameIdx, descIdx := r.u2(), r.u2()
		if r.err != nil {
			break
		}
		var err error
		if m.Name, err = pool.utf8(nameIdx); err != nil {
			r.setErr(err)
			break
		}
		if m.Descriptor, err = pool.utf8(descIdx); err != nil {
			r.setErr(err)
			break
		}
		m.Attributes = readAttributes(r, pool)
		members = append(members, m)
	}
	return members
}

func readAttributes(r *reader, pool constantPool) []Attribute {
	n := int(r.u2())
	if r.err != nil {
		return nil
	}
	attrs := make([]Attribute, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		nameIdx := r.u2()
		length := r.u4()
		off := r.pos()
		if uint64(length) > uint64(r.remaining()) {
			r.fail("attribute length %d exceeds remaining %d bytes", length, r.remaining())
			break
		}
		data := r.next(int(length))
		name, err := pool.utf8(nameIdx)
		if err != nil {
			r.setErr(err)
			break
		}
		attrs = append(attrs, Attribute{Name: name, Data: data, Offset: off})
	}
	return attrs
}
