// Package classtest assembles minimal class files for tests.
package classtest

import (
	"bytes"
	"encoding/binary"
)

const (
	tagUtf8      = 1
	tagLong      = 5
	tagClass     = 7
	tagMethodref = 10
)

type Member struct {
	Name, Descriptor, Signature string
}

// Builder accumulates a constant pool. Utf8 entries are deduplicated by
// their decoded value.
type Builder struct {
	pool  bytes.Buffer
	count uint16
	utf8  map[string]uint16
}

func New() *Builder {
	return &Builder{count: 1, utf8: map[string]uint16{}}
}

func u2(buf *bytes.Buffer, v uint16) {
	binary.Write(buf, binary.BigEndian, v)
}

func u4(buf *bytes.Buffer, v uint32) {
	binary.Write(buf, binary.BigEndian, v)
}

func (b *Builder) Utf8(s string) uint16 {
	return b.RawUtf8([]byte(s), s)
}

// RawUtf8 adds an entry with the given encoded bytes, registered under key.
func (b *Builder) RawUtf8(raw []byte, key string) uint16 {
	if idx, ok := b.utf8[key]; ok {
		return idx
	}
	b.pool.WriteByte(tagUtf8)
	u2(&b.pool, uint16(len(raw)))
	b.pool.Write(raw)
	idx := b.count
	b.count++
	b.utf8[key] = idx
	return idx
}

// Alias makes later lookups of s resolve to idx, which need not exist.
func (b *Builder) Alias(s string, idx uint16) {
	b.utf8[s] = idx
}

// Raw appends an arbitrary constant occupying one slot.
func (b *Builder) Raw(tag byte, payload ...byte) {
	b.pool.WriteByte(tag)
	b.pool.Write(payload)
	b.count++
}

func (b *Builder) Class(name string) uint16 {
	nameIdx := b.Utf8(name)
	b.pool.WriteByte(tagClass)
	u2(&b.pool, nameIdx)
	idx := b.count
	b.count++
	return idx
}

func (b *Builder) Long(v uint64) uint16 {
	b.pool.WriteByte(tagLong)
	binary.Write(&b.pool, binary.BigEndian, v)
	idx := b.count
	b.count += 2
	return idx
}

func (b *Builder) MethodRef() {
	b.Raw(tagMethodref, 0, 1, 0, 1)
}

// Build lays out a public final class implementing java/lang/Runnable.
// Every member and the class itself also get a Deprecated attribute
// that readers must skip.
func (b *Builder) Build(name, super, signature string, fields, methods []Member) []byte {
	this := b.Class(name)
	superIdx := uint16(0)
	if super != "" {
		superIdx = b.Class(super)
	}
	iface := b.Class("java/lang/Runnable")
	sigName := b.Utf8("Signature")
	other := b.Utf8("Deprecated")

	attrs := func(buf *bytes.Buffer, signature string) {
		n := uint16(1)
		if signature != "" {
			n++
		}
		u2(buf, n)
		u2(buf, other)
		u4(buf, 3)
		buf.Write([]byte{0xCA, 0xFE, 0x00})
		if signature != "" {
			u2(buf, sigName)
			u4(buf, 2)
			u2(buf, b.Utf8(signature))
		}
	}

	var body bytes.Buffer
	u2(&body, 0x0001|0x0010)
	u2(&body, this)
	u2(&body, superIdx)
	u2(&body, 1)
	u2(&body, iface)
	for _, group := range [][]Member{fields, methods} {
		u2(&body, uint16(len(group)))
		for _, m := range group {
			u2(&body, 0x0001)
			u2(&body, b.Utf8(m.Name))
			u2(&body, b.Utf8(m.Descriptor))
			attrs(&body, m.Signature)
		}
	}
	attrs(&body, signature)

	var out bytes.Buffer
	u4(&out, 0xCAFEBABE)
	u2(&out, 0)
	u2(&out, 65)
	u2(&out, b.count)
	out.Write(b.pool.Bytes())
	out.Write(body.Bytes())
	return out.Bytes()
}
