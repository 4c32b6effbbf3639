// Package sig models, parses and writes the generic signatures stored in
// the Signature attribute of class files.
//
// A signature is parsed against one of three entry points (class, field or
// method) into an immutable tree of nodes. Writing a parsed tree reproduces
// the original string byte for byte:
//
//	ms, err := sig.ParseMethod("<T:Ljava/lang/Object;>(TT;)V")
//	if err != nil { ... }
//	ms.String() // "<T:Ljava/lang/Object;>(TT;)V"
//
// Parsing and writing are pure and safe for concurrent use.
package sig

import "strings"

// Kind selects the grammar entry point of a signature.
type Kind int

const (
	KindClass Kind = iota
	KindField
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindField:
		return "field"
	case KindMethod:
		return "method"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "class":
		return KindClass, true
	case "field":
		return KindField, true
	case "method":
		return KindMethod, true
	}
	return 0, false
}

// Node is the root of a parsed signature.
type Node interface {
	Kind() Kind
	String() string
}

// TypeSignature is one of Primitive, *ClassType, TypeVariable or *ArrayType.
type TypeSignature interface {
	String() string
	isTypeSignature()
	isReturnType()
}

// ReferenceType is a TypeSignature that is not a primitive.
type ReferenceType interface {
	TypeSignature
	isReferenceType()
}

// ReturnType is a TypeSignature or Void.
type ReturnType interface {
	String() string
	isReturnType()
}

// ThrownType is a *ClassType or a TypeVariable.
type ThrownType interface {
	ReferenceType
	isThrownType()
}

type PrimitiveKind byte

const (
	Byte    PrimitiveKind = 'B'
	Char    PrimitiveKind = 'C'
	Double  PrimitiveKind = 'D'
	Float   PrimitiveKind = 'F'
	Int     PrimitiveKind = 'I'
	Long    PrimitiveKind = 'J'
	Short   PrimitiveKind = 'S'
	Boolean PrimitiveKind = 'Z'
)

var primitiveNames = map[PrimitiveKind]string{
	Byte:    "byte",
	Char:    "char",
	Double:  "double",
	Float:   "float",
	Int:     "int",
	Long:    "long",
	Short:   "short",
	Boolean: "boolean",
}

// Name returns the Java keyword for k, or "" if k is not a primitive kind.
func (k PrimitiveKind) Name() string {
	return primitiveNames[k]
}

// Descriptor returns the one-character descriptor of k.
func (k PrimitiveKind) Descriptor() string {
	return string(rune(k))
}

// PrimitiveByName maps a Java keyword such as "int" to its kind.
func PrimitiveByName(name string) (PrimitiveKind, bool) {
	for k, n := range primitiveNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

func isPrimitive(c int) bool {
	if c < 0 || c > 0xff {
		return false
	}
	_, ok := primitiveNames[PrimitiveKind(c)]
	return ok
}

type Primitive struct {
	Kind PrimitiveKind
}

// Void is the return type of a method that returns nothing. It is not a
// TypeSignature.
type Void struct{}

type TypeVariable struct {
	Name string
}

type ArrayType struct {
	Elem TypeSignature
}

// Dimensions counts the nested array levels starting at a.
func (a *ArrayType) Dimensions() int {
	n := 0
	var t TypeSignature = a
	for {
		at, ok := t.(*ArrayType)
		if !ok || at == nil {
			return n
		}
		n++
		t = at.Elem
	}
}

// Component returns the innermost non-array element type.
func (a *ArrayType) Component() TypeSignature {
	t := a.Elem
	for {
		at, ok := t.(*ArrayType)
		if !ok || at == nil {
			return t
		}
		t = at.Elem
	}
}

// ClassType is a possibly generic class reference. Classes holds the
// outermost class first, followed by each inner class of the
// Outer<T>.Inner<U> chain.
type ClassType struct {
	Package string
	Classes []SimpleClassType
}

type SimpleClassType struct {
	Name string
	Args []TypeArg
}

// Name returns the internal name of the outermost class, e.g.
// "java/util/Map" for Ljava/util/Map<TK;TV;>.Entry;.
func (c *ClassType) Name() string {
	if len(c.Classes) == 0 {
		return c.Package
	}
	if c.Package == "" {
		return c.Classes[0].Name
	}
	return c.Package + "/" + c.Classes[0].Name
}

// BinaryName returns the internal binary name with inner classes joined
// by '$', e.g. "java/util/Map$Entry".
func (c *ClassType) BinaryName() string {
	var sb strings.Builder
	sb.WriteString(c.Name())
	for i := 1; i < len(c.Classes); i++ {
		sb.WriteByte('$')
		sb.WriteString(c.Classes[i].Name)
	}
	return sb.String()
}

// Innermost returns the last segment of the inner class chain.
func (c *ClassType) Innermost() SimpleClassType {
	if len(c.Classes) == 0 {
		return SimpleClassType{}
	}
	return c.Classes[len(c.Classes)-1]
}

type WildcardKind int

const (
	Exact WildcardKind = iota
	Unbounded
	Extends
	Super
)

func (w WildcardKind) String() string {
	switch w {
	case Exact:
		return "exact"
	case Unbounded:
		return "unbounded"
	case Extends:
		return "extends"
	case Super:
		return "super"
	default:
		return "unknown"
	}
}

// TypeArg is one entry of a type argument list. Type is nil for Unbounded.
type TypeArg struct {
	Wildcard WildcardKind
	Type     TypeSignature
}

// TypeParameter is a type parameter declaration. ClassBound is nil when
// the declaration has only interface bounds (T::Ljava/lang/Runnable;).
type TypeParameter struct {
	Name            string
	ClassBound      ReferenceType
	InterfaceBounds []ReferenceType
}

type ClassSignature struct {
	TypeParams []TypeParameter
	SuperClass *ClassType
	Interfaces []*ClassType
}

type MethodSignature struct {
	TypeParams []TypeParameter
	Params     []TypeSignature
	Return     ReturnType
	Throws     []ThrownType
}

type FieldSignature struct {
	Type ReferenceType
}

func (*ClassSignature) Kind() Kind  { return KindClass }
func (*FieldSignature) Kind() Kind  { return KindField }
func (*MethodSignature) Kind() Kind { return KindMethod }

func (Primitive) isTypeSignature()    {}
func (*ClassType) isTypeSignature()   {}
func (TypeVariable) isTypeSignature() {}
func (*ArrayType) isTypeSignature()   {}

func (*ClassType) isReferenceType()   {}
func (TypeVariable) isReferenceType() {}
func (*ArrayType) isReferenceType()   {}

func (Primitive) isReturnType()    {}
func (*ClassType) isReturnType()   {}
func (TypeVariable) isReturnType() {}
func (*ArrayType) isReturnType()   {}
func (Void) isReturnType()         {}

func (*ClassType) isThrownType()   {}
func (TypeVariable) isThrownType() {}

func (s *ClassSignature) String() string  { return Write(s) }
func (s *FieldSignature) String() string  { return Write(s) }
func (s *MethodSignature) String() string { return Write(s) }
func (p Primitive) String() string        { return p.Kind.Descriptor() }
func (Void) String() string               { return "V" }
func (v TypeVariable) String() string     { return WriteType(v) }
func (a *ArrayType) String() string       { return WriteType(a) }
func (c *ClassType) String() string       { return WriteType(c) }
func (a TypeArg) String() string {
	var w writer
	w.typeArg(a)
	return w.String()
}
func (p TypeParameter) String() string {
	var w writer
	w.typeParam(p)
	return w.String()
}

// Class builds a class type from a package in internal form and its class
// chain.
func Class(pkg string, classes ...SimpleClassType) *ClassType {
	return &ClassType{Package: pkg, Classes: classes}
}

// ObjectType builds a non-generic class type from an internal name such
// as "java/lang/String".
func ObjectType(internalName string) *ClassType {
	pkg, name := "", internalName
	if i := strings.LastIndexByte(internalName, '/'); i >= 0 {
		pkg, name = internalName[:i], internalName[i+1:]
	}
	return &ClassType{Package: pkg, Classes: []SimpleClassType{{Name: name}}}
}

func Simple(name string, args ...TypeArg) SimpleClassType {
	return SimpleClassType{Name: name, Args: args}
}

func TypeVar(name string) TypeVariable {
	return TypeVariable{Name: name}
}

func Array(elem TypeSignature) *ArrayType {
	return &ArrayType{Elem: elem}
}

// ArrayOf wraps elem in dims array levels.
func ArrayOf(elem TypeSignature, dims int) TypeSignature {
	t := elem
	for i := 0; i < dims; i++ {
		t = &ArrayType{Elem: t}
	}
	return t
}

func ExactArg(t TypeSignature) TypeArg   { return TypeArg{Wildcard: Exact, Type: t} }
func WildcardArg() TypeArg               { return TypeArg{Wildcard: Unbounded} }
func ExtendsArg(t TypeSignature) TypeArg { return TypeArg{Wildcard: Extends, Type: t} }
func SuperArg(t TypeSignature) TypeArg   { return TypeArg{Wildcard: Super, Type: t} }
