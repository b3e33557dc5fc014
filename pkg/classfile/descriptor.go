package classfile

import "strings"

// scanDescriptor calls emit for every object type named by a field or method
// descriptor, array element types included.
func scanDescriptor(desc string, emit func(string)) error {
	for i := 0; i < len(desc); {
		switch desc[i] {
		case 'L':
			end := strings.IndexByte(desc[i:], ';')
			if end < 2 {
				return malformed("bad object type in descriptor %q", desc)
			}
			emit(desc[i+1 : i+end])
			i += end + 1
		case '[', '(', ')', 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 'V':
			i++
		default:
			return malformed("unexpected %q in descriptor %q", desc[i], desc)
		}
	}
	return nil
}

// scanClassName handles a Class constant, which holds either an internal
// name or, for array classes, a field descriptor.
func scanClassName(name string, emit func(string)) error {
	if strings.HasPrefix(name, "[") {
		return scanDescriptor(name, emit)
	}
	if name == "" {
		return malformed("empty class name")
	}
	emit(name)
	return nil
}

type sigState uint8

const (
	sigType      sigState = iota // any type signature
	sigClassTail                 // after a class name: '<', '.', or ';'
	sigTypeArgs                  // inside '<...>' until '>'
)

// sigScanner walks a class, field or method signature. Only the outermost
// name of each class type is emitted; inner class suffixes after '.' are
// consumed without emitting.
type sigScanner struct {
	s    string
	i    int
	emit func(string)
}

func scanSignature(sig string, emit func(string)) error {
	p := &sigScanner{s: sig, emit: emit}
	if p.i < len(p.s) && p.s[p.i] == '<' {
		if err := p.formalParams(); err != nil {
			return err
		}
	}
	for p.i < len(p.s) {
		switch p.s[p.i] {
		case '(', ')', '^':
			p.i++
		default:
			if err := p.typeSig(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *sigScanner) malformed(reason string) error {
	return malformed("%s at %d in signature %q", reason, p.i, p.s)
}

// formalParams consumes <T:bound:bound U::bound> and scans each bound.
func (p *sigScanner) formalParams() error {
	p.i++
	for {
		if p.i >= len(p.s) {
			return p.malformed("unterminated type parameters")
		}
		if p.s[p.i] == '>' {
			p.i++
			return nil
		}
		colon := strings.IndexByte(p.s[p.i:], ':')
		if colon <= 0 {
			return p.malformed("bad type parameter")
		}
		p.i += colon
		for p.i < len(p.s) && p.s[p.i] == ':' {
			p.i++
			if p.i < len(p.s) && strings.IndexByte("LT[", p.s[p.i]) >= 0 {
				if err := p.typeSig(); err != nil {
					return err
				}
			}
		}
	}
}

// typeSig consumes exactly one type signature.
func (p *sigScanner) typeSig() error {
	stack := []sigState{sigType}
	for len(stack) > 0 {
		st := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.i >= len(p.s) {
			return p.malformed("unexpected end")
		}
		c := p.s[p.i]
		switch st {
		case sigType:
			switch c {
			case '[':
				p.i++
				stack = append(stack, sigType)
			case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 'V':
				p.i++
			case 'T':
				end := strings.IndexByte(p.s[p.i:], ';')
				if end < 2 {
					return p.malformed("bad type variable")
				}
				p.i += end + 1
			case 'L':
				p.i++
				name := p.ident()
				if name == "" {
					return p.malformed("empty class name")
				}
				p.emit(name)
				stack = append(stack, sigClassTail)
			default:
				return p.malformed("unexpected " + string(c))
			}
		case sigClassTail:
			switch c {
			case '<':
				p.i++
				stack = append(stack, sigClassTail, sigTypeArgs)
			case '.':
				p.i++
				if p.ident() == "" {
					return p.malformed("empty inner class name")
				}
				stack = append(stack, sigClassTail)
			case ';':
				p.i++
			default:
				return p.malformed("unexpected " + string(c))
			}
		case sigTypeArgs:
			switch c {
			case '>':
				p.i++
			case '*':
				p.i++
				stack = append(stack, sigTypeArgs)
			case '+', '-':
				p.i++
				stack = append(stack, sigTypeArgs, sigType)
			default:
				stack = append(stack, sigTypeArgs, sigType)
			}
		}
	}
	return nil
}

func (p *sigScanner) ident() string {
	start := p.i
	for p.i < len(p.s) && strings.IndexByte("<.;", p.s[p.i]) < 0 {
		p.i++
	}
	return p.s[start:p.i]
}
