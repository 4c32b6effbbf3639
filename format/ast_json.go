package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dhamidi/sigkit/sig"
)

// SignatureJSONEncoder writes signature trees as indented JSON objects.
type SignatureJSONEncoder struct {
	w io.Writer
}

func NewSignatureJSONEncoder(w io.Writer) *SignatureJSONEncoder {
	return &SignatureJSONEncoder{w: w}
}

func (e *SignatureJSONEncoder) Encode(node sig.Node) error {
	text, err := e.MarshalText(node)
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

func (e *SignatureJSONEncoder) MarshalText(node sig.Node) ([]byte, error) {
	if node == nil {
		return nil, fmt.Errorf("encode signature: nil node")
	}
	return json.MarshalIndent(signatureToJSON(node), "", "  ")
}

type jsonSignature struct {
	Kind      string `json:"kind"`
	Signature string `json:"signature,omitempty"`

	TypeParams []jsonTypeParam `json:"typeParams,omitempty"`
	SuperClass *jsonType       `json:"superClass,omitempty"`
	Interfaces []*jsonType     `json:"interfaces,omitempty"`
	Params     []*jsonType     `json:"params,omitempty"`
	Return     *jsonType       `json:"return,omitempty"`
	Throws     []*jsonType     `json:"throws,omitempty"`
	Type       *jsonType       `json:"type,omitempty"`
}

type jsonTypeParam struct {
	Name            string      `json:"name"`
	ClassBound      *jsonType   `json:"classBound,omitempty"`
	InterfaceBounds []*jsonType `json:"interfaceBounds,omitempty"`
}

type jsonType struct {
	Type    string            `json:"type"`
	Name    string            `json:"name,omitempty"`
	Package string            `json:"package,omitempty"`
	Classes []jsonSimpleClass `json:"classes,omitempty"`
	Elem    *jsonType         `json:"elem,omitempty"`
}

type jsonSimpleClass struct {
	Name string        `json:"name"`
	Args []jsonTypeArg `json:"args,omitempty"`
}

type jsonTypeArg struct {
	Wildcard string    `json:"wildcard"`
	Type     *jsonType `json:"type,omitempty"`
}

const (
	typePrimitive    = "primitive"
	typeClass        = "class"
	typeTypeVariable = "typeVariable"
	typeArray        = "array"
	typeVoid         = "void"
)

func signatureToJSON(n sig.Node) *jsonSignature {
	js := &jsonSignature{Kind: n.Kind().String(), Signature: sig.Write(n)}
	switch n := n.(type) {
	case *sig.ClassSignature:
		js.TypeParams = typeParamsToJSON(n.TypeParams)
		if n.SuperClass != nil {
			js.SuperClass = typeToJSON(n.SuperClass)
		}
		for _, i := range n.Interfaces {
			js.Interfaces = append(js.Interfaces, typeToJSON(i))
		}
	case *sig.MethodSignature:
		js.TypeParams = typeParamsToJSON(n.TypeParams)
		for _, p := range n.Params {
			js.Params = append(js.Params, typeToJSON(p))
		}
		js.Return = returnToJSON(n.Return)
		for _, t := range n.Throws {
			js.Throws = append(js.Throws, typeToJSON(t))
		}
	case *sig.FieldSignature:
		js.Type = typeToJSON(n.Type)
	}
	return js
}

func typeParamsToJSON(params []sig.TypeParameter) []jsonTypeParam {
	var out []jsonTypeParam
	for _, p := range params {
		jp := jsonTypeParam{Name: p.Name}
		if p.ClassBound != nil {
			jp.ClassBound = typeToJSON(p.ClassBound)
		}
		for _, b := range p.InterfaceBounds {
			jp.InterfaceBounds = append(jp.InterfaceBounds, typeToJSON(b))
		}
		out = append(out, jp)
	}
	return out
}

func returnToJSON(r sig.ReturnType) *jsonType {
	switch r := r.(type) {
	case nil:
		return nil
	case sig.Void:
		return &jsonType{Type: typeVoid}
	case sig.TypeSignature:
		return typeToJSON(r)
	}
	return nil
}

func typeToJSON(t sig.TypeSignature) *jsonType {
	switch t := t.(type) {
	case sig.Primitive:
		return &jsonType{Type: typePrimitive, Name: t.Kind.Name()}
	case sig.TypeVariable:
		return &jsonType{Type: typeTypeVariable, Name: t.Name}
	case *sig.ArrayType:
		if t == nil {
			return nil
		}
		return &jsonType{Type: typeArray, Elem: typeToJSON(t.Elem)}
	case *sig.ClassType:
		if t == nil {
			return nil
		}
		jt := &jsonType{Type: typeClass, Package: t.Package}
		for _, c := range t.Classes {
			jc := jsonSimpleClass{Name: c.Name}
			for _, a := range c.Args {
				ja := jsonTypeArg{Wildcard: a.Wildcard.String()}
				if a.Type != nil {
					ja.Type = typeToJSON(a.Type)
				}
				jc.Args = append(jc.Args, ja)
			}
			jt.Classes = append(jt.Classes, jc)
		}
		return jt
	}
	return nil
}

// DecodeSignatureJSON reads the object form written by
// SignatureJSONEncoder. The "signature" member is ignored; the tree is
// rebuilt from the structured members and validated.
func DecodeSignatureJSON(data []byte) (sig.Node, error) {
	var js jsonSignature
	if err := json.Unmarshal(data, &js); err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	n, err := js.node()
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	if err := sig.Validate(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (js *jsonSignature) node() (sig.Node, error) {
	kind, ok := sig.ParseKind(js.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", js.Kind)
	}
	switch kind {
	case sig.KindClass:
		cs := &sig.ClassSignature{}
		var err error
		if cs.TypeParams, err = typeParamsFromJSON(js.TypeParams); err != nil {
			return nil, err
		}
		if cs.SuperClass, err = classFromJSON(js.SuperClass, "superClass"); err != nil {
			return nil, err
		}
		for i, jt := range js.Interfaces {
			ct, err := classFromJSON(jt, fmt.Sprintf("interfaces[%d]", i))
			if err != nil {
				return nil, err
			}
			cs.Interfaces = append(cs.Interfaces, ct)
		}
		return cs, nil
	case sig.KindMethod:
		ms := &sig.MethodSignature{}
		var err error
		if ms.TypeParams, err = typeParamsFromJSON(js.TypeParams); err != nil {
			return nil, err
		}
		for i, jt := range js.Params {
			t, err := typeFromJSON(jt, fmt.Sprintf("params[%d]", i))
			if err != nil {
				return nil, err
			}
			ms.Params = append(ms.Params, t)
		}
		if js.Return != nil && js.Return.Type == typeVoid {
			ms.Return = sig.Void{}
		} else if js.Return != nil {
			t, err := typeFromJSON(js.Return, "return")
			if err != nil {
				return nil, err
			}
			ms.Return = t
		}
		for i, jt := range js.Throws {
			t, err := typeFromJSON(jt, fmt.Sprintf("throws[%d]", i))
			if err != nil {
				return nil, err
			}
			thrown, ok := t.(sig.ThrownType)
			if !ok {
				return nil, fmt.Errorf("throws[%d]: %s cannot be thrown", i, jt.Type)
			}
			ms.Throws = append(ms.Throws, thrown)
		}
		return ms, nil
	default:
		t, err := referenceFromJSON(js.Type, "type")
		if err != nil {
			return nil, err
		}
		return &sig.FieldSignature{Type: t}, nil
	}
}

func typeParamsFromJSON(params []jsonTypeParam) ([]sig.TypeParameter, error) {
	var out []sig.TypeParameter
	for i, jp := range params {
		p := sig.TypeParameter{Name: jp.Name}
		path := fmt.Sprintf("typeParams[%d]", i)
		if jp.ClassBound != nil {
			b, err := referenceFromJSON(jp.ClassBound, path+".classBound")
			if err != nil {
				return nil, err
			}
			p.ClassBound = b
		}
		for j, jb := range jp.InterfaceBounds {
			b, err := referenceFromJSON(jb, fmt.Sprintf("%s.interfaceBounds[%d]", path, j))
			if err != nil {
				return nil, err
			}
			p.InterfaceBounds = append(p.InterfaceBounds, b)
		}
		out = append(out, p)
	}
	return out, nil
}

func classFromJSON(jt *jsonType, path string) (*sig.ClassType, error) {
	if jt == nil {
		return nil, nil
	}
	t, err := typeFromJSON(jt, path)
	if err != nil {
		return nil, err
	}
	ct, ok := t.(*sig.ClassType)
	if !ok {
		return nil, fmt.Errorf("%s: want a class type, got %s", path, jt.Type)
	}
	return ct, nil
}

func referenceFromJSON(jt *jsonType, path string) (sig.ReferenceType, error) {
	if jt == nil {
		return nil, nil
	}
	t, err := typeFromJSON(jt, path)
	if err != nil {
		return nil, err
	}
	ref, ok := t.(sig.ReferenceType)
	if !ok {
		return nil, fmt.Errorf("%s: want a reference type, got %s", path, jt.Type)
	}
	return ref, nil
}

var wildcards = map[string]sig.WildcardKind{
	sig.Exact.String():     sig.Exact,
	sig.Unbounded.String(): sig.Unbounded,
	sig.Extends.String():   sig.Extends,
	sig.Super.String():     sig.Super,
}

func typeFromJSON(jt *jsonType, path string) (sig.TypeSignature, error) {
	if jt == nil {
		return nil, fmt.Errorf("%s: missing type", path)
	}
	switch jt.Type {
	case typePrimitive:
		k, ok := sig.PrimitiveByName(jt.Name)
		if !ok {
			return nil, fmt.Errorf("%s: unknown primitive %q", path, jt.Name)
		}
		return sig.Primitive{Kind: k}, nil
	case typeTypeVariable:
		return sig.TypeVar(jt.Name), nil
	case typeArray:
		elem, err := typeFromJSON(jt.Elem, path+".elem")
		if err != nil {
			return nil, err
		}
		return sig.Array(elem), nil
	case typeClass:
		ct := &sig.ClassType{Package: jt.Package}
		for i, jc := range jt.Classes {
			sc := sig.SimpleClassType{Name: jc.Name}
			for j, ja := range jc.Args {
				argPath := fmt.Sprintf("%s.classes[%d].args[%d]", path, i, j)
				w, ok := wildcards[ja.Wildcard]
				if !ok {
					return nil, fmt.Errorf("%s: unknown wildcard %q", argPath, ja.Wildcard)
				}
				arg := sig.TypeArg{Wildcard: w}
				if ja.Type != nil {
					t, err := typeFromJSON(ja.Type, argPath+".type")
					if err != nil {
						return nil, err
					}
					arg.Type = t
				}
				sc.Args = append(sc.Args, arg)
			}
			ct.Classes = append(ct.Classes, sc)
		}
		return ct, nil
	case typeVoid:
		return nil, fmt.Errorf("%s: void is only valid as a return type", path)
	}
	return nil, fmt.Errorf("%s: unknown type %q", path, jt.Type)
}
