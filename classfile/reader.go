package classfile

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrBadMagic    = errors.New("not a class file")
	ErrTruncated   = errors.New("truncated class file")
	ErrBadConstant = errors.New("bad constant pool reference")
)

// reader decodes big-endian class file data. The first failure sticks;
// later reads return zero values.
type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, r.pos, len(r.data)-r.pos)
		return false
	}
	return true
}

func (r *reader) readU1() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *reader) readU2() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) readU4() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) readBytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) skip(n int) {
	if r.need(n) {
		r.pos += n
	}
}
