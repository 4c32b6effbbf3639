package classfile

import "fmt"

type constant struct {
	tag   ConstantTag
	utf8  string // ConstantUtf8
	index uint16 // name index of ConstantClass
}

// ConstantPool is indexed like the class file: entry 0 and the slot after
// every long or double are unused.
type ConstantPool []constant

func readConstantPool(r *reader) (ConstantPool, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("read constant pool count: %w", r.err)
	}
	cp := make(ConstantPool, count)
	for i := 1; i < int(count); i++ {
		tag := ConstantTag(r.readU1())
		switch tag {
		case ConstantUtf8:
			n := r.readU2()
			cp[i] = constant{tag: tag, utf8: decodeModifiedUTF8(r.readBytes(int(n)))}
		case ConstantClass:
			cp[i] = constant{tag: tag, index: r.readU2()}
		default:
			size, ok := payloadSize[tag]
			if !ok && r.err == nil {
				return nil, fmt.Errorf("read constant pool entry %d: unknown tag %d", i, tag)
			}
			r.skip(size)
			cp[i] = constant{tag: tag}
			if tag == ConstantLong || tag == ConstantDouble {
				i++
			}
		}
		if r.err != nil {
			return nil, fmt.Errorf("read constant pool entry %d: %w", i, r.err)
		}
	}
	return cp, nil
}

func (cp ConstantPool) entry(index uint16, tag ConstantTag) (constant, error) {
	if index == 0 || int(index) >= len(cp) {
		return constant{}, fmt.Errorf("%w: index %d out of range", ErrBadConstant, index)
	}
	c := cp[index]
	if c.tag != tag {
		return constant{}, fmt.Errorf("%w: index %d has tag %d, want %d", ErrBadConstant, index, c.tag, tag)
	}
	return c, nil
}

func (cp ConstantPool) Utf8(index uint16) (string, error) {
	c, err := cp.entry(index, ConstantUtf8)
	if err != nil {
		return "", err
	}
	return c.utf8, nil
}

// ClassName resolves a ConstantClass entry to its internal name.
func (cp ConstantPool) ClassName(index uint16) (string, error) {
	c, err := cp.entry(index, ConstantClass)
	if err != nil {
		return "", err
	}
	return cp.Utf8(c.index)
}
