package classfiletest

import "bytes"

// Annotation is one annotation structure; Type is a field descriptor.
type Annotation struct {
	Type  string
	Pairs []Pair
}

type Pair struct {
	Name  string
	Value Value
}

// Value is an annotation element value. Use the constructors.
type Value struct {
	tag    byte
	text   string
	enum   string
	nested *Annotation
	elems  []Value
}

func StringValue(s string) Value { return Value{tag: 's', text: s} }
func ClassValue(desc string) Value { return Value{tag: 'c', text: desc} }
func EnumValue(typ, name string) Value { return Value{tag: 'e', text: typ, enum: name} }
func NestedValue(a Annotation) Value { return Value{tag: '@', nested: &a} }
func ArrayValue(elems ...Value) Value { return Value{tag: '[', elems: elems} }
func IntValue() Value { return Value{tag: 'I'} }

func (b *Builder) Signature(sig string) Attr {
	var w bytes.Buffer
	u2(&w, b.Utf8(sig))
	return Attr{Name: "Signature", Data: w.Bytes()}
}

func (b *Builder) Exceptions(classes ...string) Attr {
	var w bytes.Buffer
	u2(&w, uint16(len(classes)))
	for _, c := range classes {
		u2(&w, b.Class(c))
	}
	return Attr{Name: "Exceptions", Data: w.Bytes()}
}

func (b *Builder) Annotations(visible bool, anns ...Annotation) Attr {
	name := "RuntimeInvisibleAnnotations"
	if visible {
		name = "RuntimeVisibleAnnotations"
	}
	var w bytes.Buffer
	u2(&w, uint16(len(anns)))
	for _, a := range anns {
		b.writeAnnotation(&w, a)
	}
	return Attr{Name: name, Data: w.Bytes()}
}

// ParameterAnnotations builds a parameter annotation table, one slice per
// parameter.
func (b *Builder) ParameterAnnotations(visible bool, params ...[]Annotation) Attr {
	name := "RuntimeInvisibleParameterAnnotations"
	if visible {
		name = "RuntimeVisibleParameterAnnotations"
	}
	var w bytes.Buffer
	w.WriteByte(byte(len(params)))
	for _, anns := range params {
		u2(&w, uint16(len(anns)))
		for _, a := range anns {
			b.writeAnnotation(&w, a)
		}
	}
	return Attr{Name: name, Data: w.Bytes()}
}

func (b *Builder) AnnotationDefault(v Value) Attr {
	var w bytes.Buffer
	b.writeValue(&w, v)
	return Attr{Name: "AnnotationDefault", Data: w.Bytes()}
}

func (b *Builder) writeAnnotation(w *bytes.Buffer, a Annotation) {
	u2(w, b.Utf8(a.Type))
	u2(w, uint16(len(a.Pairs)))
	for _, p := range a.Pairs {
		u2(w, b.Utf8(p.Name))
		b.writeValue(w, p.Value)
	}
}

func (b *Builder) writeValue(w *bytes.Buffer, v Value) {
	w.WriteByte(v.tag)
	switch v.tag {
	case 's':
		u2(w, b.Utf8(v.text))
	case 'I':
		u2(w, b.entry("int:0", 1, func(w *bytes.Buffer) {
			w.Write([]byte{3, 0, 0, 0, 0})
		}))
	case 'c':
		u2(w, b.Utf8(v.text))
	case 'e':
		u2(w, b.Utf8(v.text))
		u2(w, b.Utf8(v.enum))
	case '@':
		b.writeAnnotation(w, *v.nested)
	case '[':
		u2(w, uint16(len(v.elems)))
		for _, e := range v.elems {
			b.writeValue(w, e)
		}
	}
}
