// Package classfile reads just enough of a JVM class file to recover every
// generic signature it carries: the class name, the constant pool strings,
// and the Signature attributes of the class, its fields and its methods.
// Bytecode and all other attributes are skipped.
package classfile

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dhamidi/sigkit/sig"
)

type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	AccessFlags  AccessFlags
	Name         string
	SuperName    string
	Interfaces   []string
	// Signature is empty when the class has no Signature attribute.
	Signature string
	Fields    []Member
	Methods   []Member
}

type Member struct {
	AccessFlags AccessFlags
	Name        string
	Descriptor  string
	Signature   string
}

// Signature is one Signature attribute found in a class file.
type Signature struct {
	Class string
	// Member is empty for the class signature.
	Member     string
	Descriptor string
	Kind       sig.Kind
	Text       string
}

func (s Signature) String() string {
	if s.Member == "" {
		return fmt.Sprintf("%s %s %s", s.Kind, s.Class, s.Text)
	}
	return fmt.Sprintf("%s %s.%s%s %s", s.Kind, s.Class, s.Member, s.Descriptor, s.Text)
}

func (cf *ClassFile) IsInterface() bool {
	return cf.AccessFlags.IsInterface() && !cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsModule() bool {
	return cf.AccessFlags.IsModule()
}

// Declaration names what the class file declares: "module", "annotation",
// "interface", "enum", "abstract class" or "class".
func (cf *ClassFile) Declaration() string {
	switch f := cf.AccessFlags; {
	case cf.IsModule():
		return "module"
	case f.IsAnnotation():
		return "annotation"
	case cf.IsInterface():
		return "interface"
	case f.IsEnum():
		return "enum"
	case f.IsAbstract():
		return "abstract class"
	}
	return "class"
}

func (m Member) HasSignature() bool {
	return m.Signature != ""
}

// Signatures lists the class signature first, then fields, then methods,
// in class file order. Members without a Signature attribute are omitted.
func (cf *ClassFile) Signatures() []Signature {
	var out []Signature
	if cf.Signature != "" {
		out = append(out, Signature{Class: cf.Name, Kind: sig.KindClass, Text: cf.Signature})
	}
	for _, f := range cf.Fields {
		if f.HasSignature() {
			out = append(out, Signature{Class: cf.Name, Member: f.Name, Descriptor: f.Descriptor, Kind: sig.KindField, Text: f.Signature})
		}
	}
	for _, m := range cf.Methods {
		if m.HasSignature() {
			out = append(out, Signature{Class: cf.Name, Member: m.Name, Descriptor: m.Descriptor, Kind: sig.KindMethod, Text: m.Signature})
		}
	}
	return out
}

func ParseFile(path string) (*ClassFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read class file: %w", err)
	}
	cf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cf, nil
}

func ParseReader(rd io.Reader) (*ClassFile, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rd); err != nil {
		return nil, fmt.Errorf("failed to read class file: %w", err)
	}
	return Parse(buf.Bytes())
}

// Parse never retains data after it returns.
func Parse(data []byte) (*ClassFile, error) {
	r := &reader{data: data}

	magic := r.readU4()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", r.err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: magic 0x%X", ErrBadMagic, magic)
	}

	cf := &ClassFile{
		MinorVersion: r.readU2(),
		MajorVersion: r.readU2(),
	}
	if r.err != nil {
		return nil, fmt.Errorf("failed to read version: %w", r.err)
	}

	cp, err := readConstantPool(r)
	if err != nil {
		return nil, err
	}

	cf.AccessFlags = AccessFlags(r.readU2())
	thisClass := r.readU2()
	superClass := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read class header: %w", r.err)
	}
	if cf.Name, err = cp.ClassName(thisClass); err != nil {
		return nil, fmt.Errorf("this_class: %w", err)
	}
	if superClass != 0 {
		if cf.SuperName, err = cp.ClassName(superClass); err != nil {
			return nil, fmt.Errorf("super_class: %w", err)
		}
	}

	interfacesCount := r.readU2()
	for i := 0; i < int(interfacesCount) && r.err == nil; i++ {
		name, err := cp.ClassName(r.readU2())
		if r.err != nil {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("interface %d: %w", i, err)
		}
		cf.Interfaces = append(cf.Interfaces, name)
	}
	if r.err != nil {
		return nil, fmt.Errorf("failed to read interfaces: %w", r.err)
	}

	if cf.Fields, err = readMembers(r, cp, "field"); err != nil {
		return nil, err
	}
	if cf.Methods, err = readMembers(r, cp, "method"); err != nil {
		return nil, err
	}
	if cf.Signature, err = readAttributes(r, cp); err != nil {
		return nil, fmt.Errorf("class attributes: %w", err)
	}
	return cf, nil
}

func readMembers(r *reader, cp ConstantPool, what string) ([]Member, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read %s count: %w", what, r.err)
	}
	members := make([]Member, 0, count)
	for i := 0; i < int(count); i++ {
		flags := AccessFlags(r.readU2())
		nameIndex := r.readU2()
		descIndex := r.readU2()
		if r.err != nil {
			return nil, fmt.Errorf("failed to read %s %d: %w", what, i, r.err)
		}
		m := Member{AccessFlags: flags}
		var err error
		if m.Name, err = cp.Utf8(nameIndex); err != nil {
			return nil, fmt.Errorf("%s %d name: %w", what, i, err)
		}
		if m.Descriptor, err = cp.Utf8(descIndex); err != nil {
			return nil, fmt.Errorf("%s %s descriptor: %w", what, m.Name, err)
		}
		if m.Signature, err = readAttributes(r, cp); err != nil {
			return nil, fmt.Errorf("%s %s attributes: %w", what, m.Name, err)
		}
		members = append(members, m)
	}
	return members, nil
}

// readAttributes consumes an attribute table and returns the value of its
// Signature attribute, if any.
func readAttributes(r *reader, cp ConstantPool) (string, error) {
	count := r.readU2()
	var signature string
	for i := 0; i < int(count) && r.err == nil; i++ {
		nameIndex := r.readU2()
		length := r.readU4()
		if r.err != nil {
			break
		}
		name, err := cp.Utf8(nameIndex)
		if err != nil {
			return "", fmt.Errorf("attribute %d name: %w", i, err)
		}
		if name != attrSignature {
			r.skip(int(length))
			continue
		}
		if length != 2 {
			return "", fmt.Errorf("signature attribute has length %d, want 2", length)
		}
		if signature, err = cp.Utf8(r.readU2()); err != nil && r.err == nil {
			return "", fmt.Errorf("signature attribute: %w", err)
		}
	}
	if r.err != nil {
		return "", r.err
	}
	return signature, nil
}
