package classfile

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformed is matched by every [*DecodeError].
var ErrMalformed = errors.New("malformed class file")

// DecodeError reports malformed class file bytes.
// Offset is the absolute byte offset where decoding failed, or -1 when the
// failure was detected while resolving constant pool references.
type DecodeError struct {
	Offset int
	Reason string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Offset < 0 {
		return "classfile: " + e.Reason
	}
	return fmt.Sprintf("classfile: offset %d: %s", e.Offset, e.Reason)
}

// Is makes errors.Is(err, ErrMalformed) true for any DecodeError.
func (e *DecodeError) Is(target error) bool { return target == ErrMalformed }

func malformed(format string, args ...any) *DecodeError {
	return &DecodeError{Offset: -1, Reason: fmt.Sprintf(format, args...)}
}

// reader is a big-endian cursor over a byte slice with a sticky error.
// After the first failure every read returns zero values, so callers check
// err once per logical record instead of after every field.
type reader struct {
	buf  []byte
	off  int
	base int // absolute offset of buf[0] within the class file
	err  error
}

func newReader(buf []byte, base int) *reader {
	return &reader{buf: buf, base: base}
}

func (r *reader) pos() int { return r.base + r.off }

func (r *reader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = &DecodeError{Offset: r.pos(), Reason: fmt.Sprintf(format, args...)}
	}
}

func (r *reader) setErr(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || len(r.buf)-r.off < n {
		r.fail("unexpected end of data: need %d bytes, have %d", n, len(r.buf)-r.off)
		return false
	}
	return true
}

func (r *reader) u1() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.buf[r.off]
	r.off++
	return v
}

func (r *reader) u2() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v
}

func (r *reader) u4() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v
}

func (r *reader) next(n int) []byte {
	if !r.need(n) {
		return nil
	}
	b := r.buf[r.off : r.off+n : r.off+n]
	r.off += n
	return b
}

func (r *reader) skip(n int) {
	if r.need(n) {
		r.off += n
	}
}

func (r *reader) remaining() int { return len(r.buf) - r.off }
