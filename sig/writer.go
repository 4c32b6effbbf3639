package sig

// Write returns the canonical signature string of n.
//
// Write does not validate its input. A tree built by the parser always
// writes back to the string it was parsed from; trees built by hand should
// be checked with Validate first. Nil children are skipped.
func Write(n Node) string {
	var w writer
	w.node(n)
	return w.String()
}

// WriteType returns the canonical form of a single type signature.
func WriteType(t TypeSignature) string {
	var w writer
	w.typeSignature(t)
	return w.String()
}

// AppendTo appends the canonical form of n to b.
func AppendTo(b []byte, n Node) []byte {
	w := writer{buf: b}
	w.node(n)
	return w.buf
}

type writer struct {
	buf []byte
}

func (w *writer) String() string {
	return string(w.buf)
}

func (w *writer) writeByte(c byte) {
	w.buf = append(w.buf, c)
}

func (w *writer) writeString(s string) {
	w.buf = append(w.buf, s...)
}

func (w *writer) node(n Node) {
	switch n := n.(type) {
	case *ClassSignature:
		if n != nil {
			w.classSignature(n)
		}
	case *FieldSignature:
		if n != nil {
			w.typeSignature(n.Type)
		}
	case *MethodSignature:
		if n != nil {
			w.methodSignature(n)
		}
	}
}

func (w *writer) classSignature(cs *ClassSignature) {
	w.typeParams(cs.TypeParams)
	w.classType(cs.SuperClass)
	for _, i := range cs.Interfaces {
		w.classType(i)
	}
}

func (w *writer) methodSignature(ms *MethodSignature) {
	w.typeParams(ms.TypeParams)
	w.writeByte('(')
	for _, p := range ms.Params {
		w.typeSignature(p)
	}
	w.writeByte(')')
	switch r := ms.Return.(type) {
	case Void:
		w.writeByte('V')
	case TypeSignature:
		w.typeSignature(r)
	}
	for _, t := range ms.Throws {
		w.writeByte('^')
		w.typeSignature(t)
	}
}

func (w *writer) typeParams(params []TypeParameter) {
	if len(params) == 0 {
		return
	}
	w.writeByte('<')
	for _, p := range params {
		w.typeParam(p)
	}
	w.writeByte('>')
}

func (w *writer) typeParam(p TypeParameter) {
	w.writeString(p.Name)
	w.writeByte(':')
	if p.ClassBound != nil {
		w.typeSignature(p.ClassBound)
	}
	for _, b := range p.InterfaceBounds {
		w.writeByte(':')
		w.typeSignature(b)
	}
}

func (w *writer) typeSignature(t TypeSignature) {
	switch t := t.(type) {
	case Primitive:
		w.writeByte(byte(t.Kind))
	case TypeVariable:
		w.writeByte('T')
		w.writeString(t.Name)
		w.writeByte(';')
	case *ArrayType:
		for t != nil {
			w.writeByte('[')
			next, ok := t.Elem.(*ArrayType)
			if !ok {
				w.typeSignature(t.Elem)
				return
			}
			t = next
		}
	case *ClassType:
		w.classType(t)
	}
}

func (w *writer) classType(c *ClassType) {
	if c == nil {
		return
	}
	w.writeByte('L')
	if c.Package != "" {
		w.writeString(c.Package)
		w.writeByte('/')
	}
	for i, s := range c.Classes {
		if i > 0 {
			w.writeByte('.')
		}
		w.writeString(s.Name)
		if len(s.Args) > 0 {
			w.writeByte('<')
			for _, a := range s.Args {
				w.typeArg(a)
			}
			w.writeByte('>')
		}
	}
	w.writeByte(';')
}

func (w *writer) typeArg(a TypeArg) {
	switch a.Wildcard {
	case Unbounded:
		w.writeByte('*')
		return
	case Extends:
		w.writeByte('+')
	case Super:
		w.writeByte('-')
	}
	w.typeSignature(a.Type)
}
