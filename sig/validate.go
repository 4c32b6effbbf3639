package sig

import (
	"fmt"
	"strings"
)

// Validate checks that n can be written as a signature that parses back to
// an equal tree. It returns an *InvalidASTError for the first problem.
func Validate(n Node) error {
	var v validator
	switch n := n.(type) {
	case *ClassSignature:
		if n == nil {
			return &InvalidASTError{Reason: "nil class signature"}
		}
		v.typeParams("typeParams", n.TypeParams)
		if n.SuperClass == nil {
			v.fail("superClass", "missing super class")
		}
		v.classType("superClass", n.SuperClass)
		for i, c := range n.Interfaces {
			path := fmt.Sprintf("interfaces[%d]", i)
			if c == nil {
				v.fail(path, "nil interface")
			}
			v.classType(path, c)
		}
	case *FieldSignature:
		if n == nil {
			return &InvalidASTError{Reason: "nil field signature"}
		}
		v.reference("type", n.Type)
	case *MethodSignature:
		if n == nil {
			return &InvalidASTError{Reason: "nil method signature"}
		}
		v.typeParams("typeParams", n.TypeParams)
		for i, p := range n.Params {
			v.typeSignature(fmt.Sprintf("params[%d]", i), p)
		}
		switch r := n.Return.(type) {
		case nil:
			v.fail("return", "missing return type")
		case Void:
		case TypeSignature:
			v.typeSignature("return", r)
		}
		for i, t := range n.Throws {
			v.reference(fmt.Sprintf("throws[%d]", i), t)
		}
	default:
		return &InvalidASTError{Reason: fmt.Sprintf("unsupported node %T", n)}
	}
	if v.err != nil {
		return v.err
	}
	return nil
}

type validator struct {
	err *InvalidASTError
}

func (v *validator) fail(path, reason string) {
	if v.err == nil {
		v.err = &InvalidASTError{Path: path, Reason: reason}
	}
}

func (v *validator) name(path, name string) {
	if name == "" {
		v.fail(path, "empty name")
	} else if strings.ContainsAny(name, ".;/<:") {
		v.fail(path, fmt.Sprintf("name %q contains a reserved character", name))
	}
}

func (v *validator) typeParams(path string, params []TypeParameter) {
	for i, p := range params {
		pp := fmt.Sprintf("%s[%d]", path, i)
		v.name(pp+".name", p.Name)
		if p.ClassBound != nil {
			v.reference(pp+".classBound", p.ClassBound)
		}
		for j, b := range p.InterfaceBounds {
			v.reference(fmt.Sprintf("%s.interfaceBounds[%d]", pp, j), b)
		}
	}
}

func (v *validator) reference(path string, t TypeSignature) {
	if _, ok := t.(Primitive); ok {
		v.fail(path, "primitive type where a reference type is required")
		return
	}
	v.typeSignature(path, t)
}

func (v *validator) typeSignature(path string, t TypeSignature) {
	switch t := t.(type) {
	case nil:
		v.fail(path, "missing type")
	case Primitive:
		if t.Kind.Name() == "" {
			v.fail(path, fmt.Sprintf("unknown primitive kind %q", rune(t.Kind)))
		}
	case TypeVariable:
		v.name(path+".name", t.Name)
	case *ArrayType:
		if t == nil {
			v.fail(path, "nil array type")
			return
		}
		v.typeSignature(path+".elem", t.Elem)
	case *ClassType:
		if t == nil {
			v.fail(path, "nil class type")
			return
		}
		v.classType(path, t)
	}
}

func (v *validator) classType(path string, c *ClassType) {
	if c == nil {
		return
	}
	if len(c.Classes) == 0 {
		v.fail(path, "empty class chain")
		return
	}
	if c.Package != "" {
		for i, seg := range strings.Split(c.Package, "/") {
			v.name(fmt.Sprintf("%s.package[%d]", path, i), seg)
		}
	}
	for i, s := range c.Classes {
		sp := fmt.Sprintf("%s.classes[%d]", path, i)
		v.name(sp+".name", s.Name)
		for j, a := range s.Args {
			ap := fmt.Sprintf("%s.args[%d]", sp, j)
			switch a.Wildcard {
			case Unbounded:
				if a.Type != nil {
					v.fail(ap, "unbounded wildcard with a type")
				}
			case Exact, Extends, Super:
				v.typeSignature(ap+".type", a.Type)
			default:
				v.fail(ap, fmt.Sprintf("unknown wildcard kind %d", int(a.Wildcard)))
			}
		}
	}
}
