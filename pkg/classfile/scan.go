package classfile

// Kind identifies the site a reference was found at.
type Kind uint8

const (
	KindSuperclass Kind = iota
	KindInterface
	KindDescriptor
	KindException
	KindAnnotation
	KindSignature
	KindBootstrap
	KindConstant
)

var kindNames = [...]string{
	KindSuperclass: "superclass",
	KindInterface:  "interface",
	KindDescriptor: "descriptor",
	KindException:  "exception",
	KindAnnotation: "annotation",
	KindSignature:  "signature",
	KindBootstrap:  "bootstrap",
	KindConstant:   "constant",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Ref is one type reference event.
type Ref struct {
	Kind Kind
	Name string
}

// Scan decodes data and returns every type reference in the order it was
// found. Names may repeat.
func Scan(data []byte) ([]Ref, error) {
	cf, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return cf.Refs()
}

// Extract returns the set of types referenced by one compiled unit, without
// the unit's own name.
func Extract(data []byte) (TypeSet, error) {
	cf, err := Decode(data)
	if err != nil {
		return nil, err
	}
	refs, err := cf.Refs()
	if err != nil {
		return nil, err
	}
	set := make(TypeSet, len(refs))
	for _, ref := range refs {
		if ref.Name != cf.Name {
			set.Add(ref.Name)
		}
	}
	return set, nil
}

// Refs walks the decoded unit and returns its type reference events.
func (cf *ClassFile) Refs() ([]Ref, error) {
	s := &scanner{cf: cf}
	s.run()
	if s.err != nil {
		return nil, s.err
	}
	return s.refs, nil
}

type scanner struct {
	cf   *ClassFile
	refs []Ref
	err  error
}

func (s *scanner) setErr(err error) {
	if s.err == nil && err != nil {
		s.err = err
	}
}

func (s *scanner) emitter(kind Kind) func(string) {
	return func(name string) {
		s.refs = append(s.refs, Ref{Kind: kind, Name: name})
	}
}

func (s *scanner) descriptor(kind Kind, desc string) {
	s.setErr(scanDescriptor(desc, s.emitter(kind)))
}

func (s *scanner) className(kind Kind, name string) {
	s.setErr(scanClassName(name, s.emitter(kind)))
}

func (s *scanner) utf8(i uint16) string {
	v, err := s.cf.pool.utf8(i)
	s.setErr(err)
	return v
}

func (s *scanner) run() {
	cf := s.cf
	if cf.Super != "" && cf.Super != objectType {
		s.refs = append(s.refs, Ref{Kind: KindSuperclass, Name: cf.Super})
	}
	for _, iface := range cf.Interfaces {
		s.refs = append(s.refs, Ref{Kind: KindInterface, Name: iface})
	}
	s.attributes(cf.Attributes)
	for _, f := range cf.Fields {
		s.descriptor(KindDescriptor, f.Descriptor)
		s.attributes(f.Attributes)
	}
	for _, m := range cf.Methods {
		s.descriptor(KindDescriptor, m.Descriptor)
		s.attributes(m.Attributes)
	}
	s.callSites()
	s.constants()
}

func (s *scanner) attributes(attrs []Attribute) {
	for _, a := range attrs {
		if s.err != nil {
			return
		}
		r := newReader(a.Data, a.Offset)
		switch a.Name {
		case "Signature":
			sig := s.utf8(r.u2())
			if r.err == nil && s.err == nil {
				s.setErr(scanSignature(sig, s.emitter(KindSignature)))
			}
		case "Exceptions":
			n := int(r.u2())
			for i := 0; i < n && r.err == nil && s.err == nil; i++ {
				name, err := s.cf.pool.className(r.u2())
				if r.err != nil {
					break
				}
				s.setErr(err)
				s.className(KindException, name)
			}
		case "RuntimeVisibleAnnotations", "RuntimeInvisibleAnnotations":
			s.walkAnnotations(r, frame{remaining: int(r.u2()), kind: frameAnnotation})
		case "RuntimeVisibleParameterAnnotations", "RuntimeInvisibleParameterAnnotations":
			params := int(r.u1())
			for i := 0; i < params && r.err == nil && s.err == nil; i++ {
				s.walkAnnotations(r, frame{remaining: int(r.u2()), kind: frameAnnotation})
			}
		case "AnnotationDefault":
			s.walkAnnotations(r, frame{remaining: 1, kind: frameValue})
		default:
			continue
		}
		s.setErr(r.err)
	}
}

type frameKind uint8

const (
	frameAnnotation frameKind = iota // annotation structures
	framePair                        // element_value_pairs of one annotation
	frameValue                       // element values of an array
)

type frame struct {
	remaining int
	kind      frameKind
}

// walkAnnotations consumes the annotation data described by root with an
// explicit stack of pending counts.
func (s *scanner) walkAnnotations(r *reader, root frame) {
	stack := []frame{root}
	for len(stack) > 0 && r.err == nil && s.err == nil {
		top := &stack[len(stack)-1]
		if top.remaining <= 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		top.remaining--
		switch top.kind {
		case frameAnnotation:
			stack = s.annotation(r, stack)
		case framePair:
			r.u2() // element_name_index
			stack = s.elementValue(r, stack)
		case frameValue:
			stack = s.elementValue(r, stack)
		}
	}
}

func (s *scanner) annotation(r *reader, stack []frame) []frame {
	typ := s.utf8(r.u2())
	pairs := int(r.u2())
	if r.err != nil || s.err != nil {
		return stack
	}
	s.descriptor(KindAnnotation, typ)
	return append(stack, frame{remaining: pairs, kind: framePair})
}

func (s *scanner) elementValue(r *reader, stack []frame) []frame {
	tag := r.u1()
	if r.err != nil {
		return stack
	}
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		r.u2()
	case 'e':
		typ := s.utf8(r.u2())
		r.u2() // const_name_index
		if r.err == nil && s.err == nil {
			s.descriptor(KindAnnotation, typ)
		}
	case 'c':
		// Return descriptors such as "V" are legal class literals.
		typ := s.utf8(r.u2())
		if r.err == nil && s.err == nil {
			s.descriptor(KindAnnotation, typ)
		}
	case '@':
		return s.annotation(r, stack)
	case '[':
		n := int(r.u2())
		return append(stack, frame{remaining: n, kind: frameValue})
	default:
		r.fail("unknown element value tag %q", tag)
	}
	return stack
}

type bootstrapMethod struct {
	ref  uint16
	args []uint16
}

func (s *scanner) bootstrapMethods() []bootstrapMethod {
	for _, a := range s.cf.Attributes {
		if a.Name != "BootstrapMethods" {
			continue
		}
		r := newReader(a.Data, a.Offset)
		n := int(r.u2())
		methods := make([]bootstrapMethod, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			m := bootstrapMethod{ref: r.u2()}
			argc := int(r.u2())
			for j := 0; j < argc && r.err == nil; j++ {
				m.args = append(m.args, r.u2())
			}
			methods = append(methods, m)
		}
		s.setErr(r.err)
		return methods
	}
	return nil
}

// callSites scans invokedynamic call sites: the call-site descriptor, the
// bootstrap method handle and its static arguments.
func (s *scanner) callSites() {
	pool := s.cf.pool
	var methods []bootstrapMethod
	loaded := false
	for _, c := range pool {
		if s.err != nil {
			return
		}
		if c.tag != tagInvokeDynamic {
			continue
		}
		if !loaded {
			methods, loaded = s.bootstrapMethods(), true
			if s.err != nil {
				return
			}
		}
		_, desc, err := pool.nameAndType(c.b)
		if err != nil {
			s.setErr(err)
			return
		}
		s.descriptor(KindBootstrap, desc)
		if int(c.a) >= len(methods) {
			s.setErr(malformed("bootstrap method index %d out of range", c.a))
			return
		}
		bsm := methods[c.a]
		owner, hdesc, err := pool.methodHandle(bsm.ref)
		if err != nil {
			s.setErr(err)
			return
		}
		s.className(KindBootstrap, owner)
		s.descriptor(KindBootstrap, hdesc)
		for _, arg := range bsm.args {
			s.bootstrapArg(arg)
		}
	}
}

func (s *scanner) bootstrapArg(i uint16) {
	pool := s.cf.pool
	if i == 0 || int(i) >= len(pool) {
		s.setErr(malformed("bootstrap argument index %d out of range", i))
		return
	}
	switch c := pool[i]; c.tag {
	case tagClass:
		s.className(KindBootstrap, s.utf8(c.a))
	case tagMethodType:
		s.descriptor(KindBootstrap, s.utf8(c.a))
	case tagMethodHandle:
		owner, desc, err := pool.memberRef(c.a)
		if err != nil {
			s.setErr(err)
			return
		}
		s.className(KindBootstrap, owner)
		s.descriptor(KindBootstrap, desc)
	}
}

// constants scans the pool entries method bodies refer to. The unit's own
// Class entry and a java/lang/Object superclass entry are skipped.
func (s *scanner) constants() {
	cf := s.cf
	for i, c := range cf.pool {
		if s.err != nil {
			return
		}
		switch c.tag {
		case tagClass:
			idx := uint16(i)
			if idx == cf.thisIndex || (idx == cf.superIndex && cf.Super == objectType) {
				continue
			}
			s.className(KindConstant, s.utf8(c.a))
		case tagFieldref, tagMethodref, tagInterfaceMethodref:
			_, desc, err := cf.pool.nameAndType(c.b)
			if err != nil {
				s.setErr(err)
				return
			}
			s.descriptor(KindConstant, desc)
		case tagMethodType:
			s.descriptor(KindConstant, s.utf8(c.a))
		}
	}
}
