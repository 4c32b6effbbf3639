package sig

// Equal reports whether a and b are structurally equal signatures.
func Equal(a, b Node) bool {
	switch a := a.(type) {
	case *ClassSignature:
		b, ok := b.(*ClassSignature)
		return ok && a.Equal(b)
	case *FieldSignature:
		b, ok := b.(*FieldSignature)
		return ok && a.Equal(b)
	case *MethodSignature:
		b, ok := b.(*MethodSignature)
		return ok && a.Equal(b)
	}
	return a == nil && b == nil
}

func (s *ClassSignature) Equal(o *ClassSignature) bool {
	if s == nil || o == nil {
		return s == o
	}
	if !typeParamsEqual(s.TypeParams, o.TypeParams) || !s.SuperClass.Equal(o.SuperClass) {
		return false
	}
	if len(s.Interfaces) != len(o.Interfaces) {
		return false
	}
	for i := range s.Interfaces {
		if !s.Interfaces[i].Equal(o.Interfaces[i]) {
			return false
		}
	}
	return true
}

func (s *FieldSignature) Equal(o *FieldSignature) bool {
	if s == nil || o == nil {
		return s == o
	}
	return TypeEqual(s.Type, o.Type)
}

func (s *MethodSignature) Equal(o *MethodSignature) bool {
	if s == nil || o == nil {
		return s == o
	}
	if !typeParamsEqual(s.TypeParams, o.TypeParams) || !returnEqual(s.Return, o.Return) {
		return false
	}
	if len(s.Params) != len(o.Params) || len(s.Throws) != len(o.Throws) {
		return false
	}
	for i := range s.Params {
		if !TypeEqual(s.Params[i], o.Params[i]) {
			return false
		}
	}
	for i := range s.Throws {
		if !TypeEqual(s.Throws[i], o.Throws[i]) {
			return false
		}
	}
	return true
}

// TypeEqual reports whether a and b are structurally equal type
// signatures. Type variables compare by name only.
func TypeEqual(a, b TypeSignature) bool {
	switch a := a.(type) {
	case Primitive:
		b, ok := b.(Primitive)
		return ok && a == b
	case TypeVariable:
		b, ok := b.(TypeVariable)
		return ok && a == b
	case *ArrayType:
		b, ok := b.(*ArrayType)
		return ok && a.Equal(b)
	case *ClassType:
		b, ok := b.(*ClassType)
		return ok && a.Equal(b)
	}
	return a == nil && b == nil
}

func (a *ArrayType) Equal(o *ArrayType) bool {
	if a == nil || o == nil {
		return a == o
	}
	return TypeEqual(a.Elem, o.Elem)
}

func (c *ClassType) Equal(o *ClassType) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Package != o.Package || len(c.Classes) != len(o.Classes) {
		return false
	}
	for i := range c.Classes {
		if !c.Classes[i].Equal(o.Classes[i]) {
			return false
		}
	}
	return true
}

func (s SimpleClassType) Equal(o SimpleClassType) bool {
	if s.Name != o.Name || len(s.Args) != len(o.Args) {
		return false
	}
	for i := range s.Args {
		if !s.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

func (a TypeArg) Equal(o TypeArg) bool {
	return a.Wildcard == o.Wildcard && TypeEqual(a.Type, o.Type)
}

func (p TypeParameter) Equal(o TypeParameter) bool {
	if p.Name != o.Name || !TypeEqual(p.ClassBound, o.ClassBound) {
		return false
	}
	if len(p.InterfaceBounds) != len(o.InterfaceBounds) {
		return false
	}
	for i := range p.InterfaceBounds {
		if !TypeEqual(p.InterfaceBounds[i], o.InterfaceBounds[i]) {
			return false
		}
	}
	return true
}

func typeParamsEqual(a, b []TypeParameter) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func returnEqual(a, b ReturnType) bool {
	if _, ok := a.(Void); ok {
		_, ok := b.(Void)
		return ok
	}
	at, _ := a.(TypeSignature)
	bt, _ := b.(TypeSignature)
	if _, ok := b.(Void); ok {
		return false
	}
	return TypeEqual(at, bt)
}
