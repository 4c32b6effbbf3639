package sig

import (
	"fmt"
	"unicode/utf8"
)

// DefaultMaxDepth bounds the nesting of array types and type argument
// lists accepted by the parser.
const DefaultMaxDepth = 256

const eof = -1

type Option func(*parser)

// WithMaxDepth sets the nesting limit. Values below one leave the default.
func WithMaxDepth(n int) Option {
	return func(p *parser) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

type parser struct {
	input    string
	pos      int
	depth    int
	maxDepth int
	err      *MalformedSignatureError
}

func newParser(s string, opts []Option) *parser {
	p := &parser{input: s, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses s as a signature of kind k.
func Parse(s string, k Kind, opts ...Option) (Node, error) {
	p := newParser(s, opts)
	var n Node
	switch k {
	case KindClass:
		n = p.classSignature()
	case KindField:
		n = &FieldSignature{Type: p.referenceType()}
	case KindMethod:
		n = p.methodSignature()
	default:
		return nil, fmt.Errorf("parse signature: unknown kind %d", int(k))
	}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return n, nil
}

func ParseClass(s string, opts ...Option) (*ClassSignature, error) {
	p := newParser(s, opts)
	cs := p.classSignature()
	if err := p.finish(); err != nil {
		return nil, err
	}
	return cs, nil
}

func ParseField(s string, opts ...Option) (*FieldSignature, error) {
	p := newParser(s, opts)
	fs := &FieldSignature{Type: p.referenceType()}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return fs, nil
}

func ParseMethod(s string, opts ...Option) (*MethodSignature, error) {
	p := newParser(s, opts)
	ms := p.methodSignature()
	if err := p.finish(); err != nil {
		return nil, err
	}
	return ms, nil
}

// ParseType parses a single type signature, primitives included.
func ParseType(s string, opts ...Option) (TypeSignature, error) {
	p := newParser(s, opts)
	t := p.typeSignature()
	if err := p.finish(); err != nil {
		return nil, err
	}
	return t, nil
}

// finish reports the first error, or trailing input after a complete parse.
func (p *parser) finish() error {
	if p.err == nil && p.pos < len(p.input) {
		p.fail("end of input")
	}
	if p.err != nil {
		return p.err
	}
	return nil
}

// peek returns the next unconsumed byte, or eof when the input is
// exhausted or an error has been recorded.
func (p *parser) peek() int {
	if p.err != nil || p.pos >= len(p.input) {
		return eof
	}
	return int(p.input[p.pos])
}

func (p *parser) next() {
	if p.err == nil && p.pos < len(p.input) {
		p.pos++
	}
}

func (p *parser) expect(c byte) {
	if p.peek() != int(c) {
		p.fail(fmt.Sprintf("%q", rune(c)))
		return
	}
	p.pos++
}

func (p *parser) fail(expected string) {
	if p.err != nil {
		return
	}
	e := &MalformedSignatureError{
		Signature: p.input,
		Offset:    p.pos,
		Expected:  expected,
	}
	if p.pos >= len(p.input) {
		e.EOF = true
	} else {
		e.Char, _ = utf8.DecodeRuneInString(p.input[p.pos:])
	}
	p.err = e
}

func (p *parser) enter() bool {
	p.depth++
	if p.depth > p.maxDepth {
		p.fail(fmt.Sprintf("nesting depth of at most %d", p.maxDepth))
		return false
	}
	return true
}

func (p *parser) leave() {
	p.depth--
}

func isDelimiter(c byte) bool {
	switch c {
	case '.', ';', '/', '<', ':':
		return true
	}
	return false
}

func (p *parser) identifier() string {
	if p.err != nil {
		return ""
	}
	start := p.pos
	for p.pos < len(p.input) && !isDelimiter(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		p.fail("identifier")
		return ""
	}
	return p.input[start:p.pos]
}

// ClassSignature := [TypeParams] ClassType ClassType*
func (p *parser) classSignature() *ClassSignature {
	cs := &ClassSignature{}
	if p.peek() == '<' {
		cs.TypeParams = p.typeParams()
	}
	cs.SuperClass = p.classType()
	for p.peek() == 'L' {
		cs.Interfaces = append(cs.Interfaces, p.classType())
	}
	return cs
}

// MethodSignature := [TypeParams] '(' TypeSig* ')' (TypeSig|'V') ('^' ThrownType)*
func (p *parser) methodSignature() *MethodSignature {
	ms := &MethodSignature{}
	if p.peek() == '<' {
		ms.TypeParams = p.typeParams()
	}
	p.expect('(')
	for p.err == nil && p.peek() != ')' {
		ms.Params = append(ms.Params, p.typeSignature())
	}
	p.expect(')')
	if p.peek() == 'V' {
		p.next()
		ms.Return = Void{}
	} else {
		ms.Return = p.typeSignature()
	}
	for p.peek() == '^' {
		p.next()
		ms.Throws = append(ms.Throws, p.thrownType())
	}
	return ms
}

// TypeParams := '<' TypeParam+ '>'
func (p *parser) typeParams() []TypeParameter {
	p.expect('<')
	var params []TypeParameter
	for p.err == nil {
		params = append(params, p.typeParam())
		if p.peek() == '>' {
			break
		}
	}
	p.expect('>')
	return params
}

// TypeParam := Identifier ':' [ReferenceType] (':' ReferenceType)*
func (p *parser) typeParam() TypeParameter {
	tp := TypeParameter{Name: p.identifier()}
	p.expect(':')
	switch p.peek() {
	case 'L', 'T', '[':
		tp.ClassBound = p.referenceType()
	}
	for p.peek() == ':' {
		p.next()
		tp.InterfaceBounds = append(tp.InterfaceBounds, p.referenceType())
	}
	return tp
}

// TypeSig := Primitive | ClassType | TypeVar | ArrayType
func (p *parser) typeSignature() TypeSignature {
	c := p.peek()
	if isPrimitive(c) {
		p.next()
		return Primitive{Kind: PrimitiveKind(c)}
	}
	switch c {
	case 'L', 'T', '[':
		return p.referenceType()
	}
	p.fail("type signature")
	return nil
}

func (p *parser) referenceType() ReferenceType {
	switch p.peek() {
	case 'L':
		return p.classType()
	case 'T':
		return p.typeVariable()
	case '[':
		return p.arrayType()
	}
	p.fail("class type, type variable or array type")
	return nil
}

func (p *parser) thrownType() ThrownType {
	switch p.peek() {
	case 'L':
		return p.classType()
	case 'T':
		return p.typeVariable()
	}
	p.fail("class type or type variable")
	return nil
}

// ArrayType := '[' TypeSig
func (p *parser) arrayType() *ArrayType {
	p.expect('[')
	if !p.enter() {
		return nil
	}
	defer p.leave()
	return &ArrayType{Elem: p.typeSignature()}
}

// TypeVar := 'T' Identifier ';'
func (p *parser) typeVariable() TypeVariable {
	p.expect('T')
	tv := TypeVariable{Name: p.identifier()}
	p.expect(';')
	return tv
}

// ClassType := 'L' Identifier ('/' Identifier)* [TypeArgs] ('.' Identifier [TypeArgs])* ';'
func (p *parser) classType() *ClassType {
	p.expect('L')
	ct := &ClassType{}
	start := p.pos
	name := p.identifier()
	for p.peek() == '/' {
		p.next()
		name = p.identifier()
	}
	if end := p.pos - len(name) - 1; end > start {
		ct.Package = p.input[start:end]
	}
	ct.Classes = append(ct.Classes, SimpleClassType{Name: name, Args: p.typeArgs()})
	for p.peek() == '.' {
		p.next()
		name := p.identifier()
		ct.Classes = append(ct.Classes, SimpleClassType{Name: name, Args: p.typeArgs()})
	}
	p.expect(';')
	return ct
}

// typeArgs parses an optional '<' TypeArg+ '>' list.
func (p *parser) typeArgs() []TypeArg {
	if p.peek() != '<' {
		return nil
	}
	p.next()
	if !p.enter() {
		return nil
	}
	defer p.leave()
	var args []TypeArg
	for p.err == nil {
		args = append(args, p.typeArg())
		if p.peek() == '>' {
			break
		}
	}
	p.expect('>')
	return args
}

// TypeArg := '*' | '+' TypeSig | '-' TypeSig | TypeSig
func (p *parser) typeArg() TypeArg {
	switch p.peek() {
	case '*':
		p.next()
		return TypeArg{Wildcard: Unbounded}
	case '+':
		p.next()
		return TypeArg{Wildcard: Extends, Type: p.typeSignature()}
	case '-':
		p.next()
		return TypeArg{Wildcard: Super, Type: p.typeSignature()}
	}
	c := p.peek()
	if c == eof || c == '>' {
		p.fail("type argument")
		return TypeArg{}
	}
	return TypeArg{Wildcard: Exact, Type: p.typeSignature()}
}
