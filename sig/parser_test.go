package sig

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

var roundTripTests = []struct {
	kind  Kind
	input string
}{
	{KindClass, "<E:Ljava/lang/Object;>Ljava/util/AbstractList<TE;>;Ljava/util/List<TE;>;Ljava/util/RandomAccess;Ljava/lang/Cloneable;Ljava/io/Serializable;"},
	{KindClass, "<K:Ljava/lang/Object;V:Ljava/lang/Object;>Ljava/util/AbstractMap<TK;TV;>;Ljava/util/Map<TK;TV;>;Ljava/lang/Cloneable;Ljava/io/Serializable;"},
	{KindClass, "<E:Ljava/lang/Enum<TE;>;>Ljava/lang/Object;Ljava/lang/constant/Constable;Ljava/lang/Comparable<TE;>;Ljava/io/Serializable;"},
	{KindClass, "<T:Ljava/lang/Object;>Ljava/lang/Object;"},
	{KindClass, "Ljava/lang/Object;Ljava/io/Serializable;Ljava/lang/Comparable<Ljava/lang/String;>;Ljava/lang/CharSequence;"},
	{KindClass, "<K:Ljava/lang/Object;V:Ljava/lang/Object;>Ljava/lang/Object;Ljava/util/Map$Entry<TK;TV;>;"},
	{KindClass, "<T::Ljava/lang/Comparable<-TT;>;>Ljava/lang/Object;"},
	{KindClass, "<T:Ljava/lang/Object;U:TT;>LBase<TU;>;"},
	{KindClass, "<T:>Ljava/lang/Object;"},
	{KindField, "Ljava/util/List<Ljava/lang/String;>;"},
	{KindField, "[Ljava/util/Map$Entry<TK;TV;>;"},
	{KindField, "TE;"},
	{KindField, "[TE;"},
	{KindField, "Lpkg/Outer<Ljava/lang/String;>.Inner;"},
	{KindField, "Lpkg/Outer<TT;>.Inner<TU;>.Deeper;"},
	{KindField, "LNoPackage<*>;"},
	{KindField, "Ljava/lang/Class<[I>;"},
	{KindField, "Ljava/util/Map<*+Ljava/lang/Object;-Ljava/lang/Object;Ljava/lang/String;>;"},
	{KindField, "Ljava/util/concurrent/atomic/AtomicReferenceFieldUpdater<Ljava/util/concurrent/CompletableFuture;Ljava/lang/Object;>;"},
	{KindField, "[[Ljava/util/List<+[Ljava/lang/Number;>;"},
	{KindMethod, "<T:Ljava/lang/Object;>([TT;)Ljava/util/List<TT;>;"},
	{KindMethod, "(Ljava/util/Collection<+TE;>;)Z"},
	{KindMethod, "<T:Ljava/lang/Object;>(Ljava/util/List<-TT;>;TT;)V"},
	{KindMethod, "<T:Ljava/lang/Object;:Ljava/lang/Comparable<-TT;>;>(Ljava/util/Collection<+TT;>;)TT;"},
	{KindMethod, "<X:Ljava/lang/Throwable;>(Ljava/util/function/Supplier<+TX;>;)TT;^TX;"},
	{KindMethod, "()Ljava/lang/Class<*>;"},
	{KindMethod, "(Ljava/lang/String;[Ljava/lang/Class<*>;)Ljava/lang/reflect/Method;^Ljava/lang/NoSuchMethodException;^Ljava/lang/SecurityException;"},
	{KindMethod, "<U:Ljava/lang/Object;>(Ljava/lang/Class<TU;>;)Ljava/lang/Class<+TU;>;"},
	{KindMethod, "<T:Ljava/lang/Exception;>(TT;)V^TT;"},
	{KindMethod, "(BCDFIJSZ)[[I"},
	{KindMethod, "()V"},
	{KindMethod, "(Ljava/util/Map<TK;TV;>.Entry;)V"},
	{KindMethod, "(Lcafé/über<TT;>;)V"},
	{KindField, "TA>B;"},
	{KindField, "LA[B;"},
	{KindField, "Ljava/util/List<TA>B;>;"},
	{KindClass, "<A>B:Ljava/lang/Object;>LC[D<TA>B;>;"},
}

// A parsed non-void return is a plain TypeSignature.
var _ ReturnType = TypeSignature(nil)

func TestRoundTrip(t *testing.T) {
	for _, tt := range roundTripTests {
		t.Run(tt.kind.String()+"/"+tt.input, func(t *testing.T) {
			n, err := Parse(tt.input, tt.kind)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			if n.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", n.Kind(), tt.kind)
			}
			if got := Write(n); got != tt.input {
				t.Errorf("Write() = %q, want %q", got, tt.input)
			}
			if got := n.String(); got != tt.input {
				t.Errorf("String() = %q, want %q", got, tt.input)
			}
			again, err := Parse(Write(n), tt.kind)
			if err != nil {
				t.Fatalf("reparse error: %v", err)
			}
			if !Equal(n, again) {
				t.Errorf("reparsed tree differs from original")
			}
		})
	}
}

func TestParseNestedClass(t *testing.T) {
	fs, err := ParseField("Lpkg/Outer<Ljava/lang/String;>.Inner;")
	if err != nil {
		t.Fatalf("ParseField error: %v", err)
	}
	ct, ok := fs.Type.(*ClassType)
	if !ok {
		t.Fatalf("Type = %T, want *ClassType", fs.Type)
	}
	if ct.Package != "pkg" {
		t.Errorf("Package = %q, want %q", ct.Package, "pkg")
	}
	if len(ct.Classes) != 2 {
		t.Fatalf("len(Classes) = %d, want 2", len(ct.Classes))
	}
	if ct.Classes[0].Name != "Outer" || ct.Classes[1].Name != "Inner" {
		t.Errorf("Classes = %q, %q, want Outer, Inner", ct.Classes[0].Name, ct.Classes[1].Name)
	}
	if len(ct.Classes[0].Args) != 1 || !TypeEqual(ct.Classes[0].Args[0].Type, ObjectType("java/lang/String")) {
		t.Errorf("Outer args = %v, want [Ljava/lang/String;]", ct.Classes[0].Args)
	}
	if len(ct.Classes[1].Args) != 0 {
		t.Errorf("Inner args = %v, want none", ct.Classes[1].Args)
	}
	if got := ct.BinaryName(); got != "pkg/Outer$Inner" {
		t.Errorf("BinaryName() = %q, want %q", got, "pkg/Outer$Inner")
	}
}

func TestParseWildcards(t *testing.T) {
	fs, err := ParseField("Ljava/util/Map<*+Ljava/lang/Object;-Ljava/lang/Object;Ljava/lang/String;>;")
	if err != nil {
		t.Fatalf("ParseField error: %v", err)
	}
	args := fs.Type.(*ClassType).Classes[0].Args
	want := []TypeArg{
		WildcardArg(),
		ExtendsArg(ObjectType("java/lang/Object")),
		SuperArg(ObjectType("java/lang/Object")),
		ExactArg(ObjectType("java/lang/String")),
	}
	if len(args) != len(want) {
		t.Fatalf("len(args) = %d, want %d", len(args), len(want))
	}
	for i := range want {
		if args[i].Wildcard != want[i].Wildcard {
			t.Errorf("args[%d].Wildcard = %v, want %v", i, args[i].Wildcard, want[i].Wildcard)
		}
		if !args[i].Equal(want[i]) {
			t.Errorf("args[%d] = %s, want %s", i, args[i], want[i])
		}
	}
}

func TestParseMethodWithThrows(t *testing.T) {
	ms, err := ParseMethod("<T:Ljava/lang/Exception;>(TT;)V^TT;")
	if err != nil {
		t.Fatalf("ParseMethod error: %v", err)
	}
	want := &MethodSignature{
		TypeParams: []TypeParameter{{Name: "T", ClassBound: ObjectType("java/lang/Exception")}},
		Params:     []TypeSignature{TypeVar("T")},
		Return:     Void{},
		Throws:     []ThrownType{TypeVar("T")},
	}
	if !ms.Equal(want) {
		t.Errorf("ParseMethod() = %s, want %s", ms, want)
	}
	if _, ok := ms.Return.(Void); !ok {
		t.Errorf("Return = %T, want Void", ms.Return)
	}
}

func TestParseMethodReturnTypes(t *testing.T) {
	tests := []struct {
		input string
		want  ReturnType
	}{
		{"()V", Void{}},
		{"()I", Primitive{Kind: Int}},
		{"()TT;", TypeVar("T")},
		{"()[J", Array(Primitive{Kind: Long})},
		{"()Ljava/lang/String;", ObjectType("java/lang/String")},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ms, err := ParseMethod(tt.input)
			if err != nil {
				t.Fatalf("ParseMethod error: %v", err)
			}
			if ms.Return.String() != tt.want.String() {
				t.Errorf("Return = %s, want %s", ms.Return, tt.want)
			}
			if _, void := tt.want.(Void); !void {
				if ts, ok := ms.Return.(TypeSignature); !ok || !TypeEqual(ts, tt.want.(TypeSignature)) {
					t.Errorf("Return = %#v, want %#v", ms.Return, tt.want)
				}
			}
		})
	}
}

func TestParseArrays(t *testing.T) {
	tests := []struct {
		input     string
		dims      int
		component TypeSignature
	}{
		{"[[I", 2, Primitive{Kind: Int}},
		{"[Ljava/lang/String;", 1, ObjectType("java/lang/String")},
		{"[[[TT;", 3, TypeVar("T")},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ts, err := ParseType(tt.input)
			if err != nil {
				t.Fatalf("ParseType error: %v", err)
			}
			at, ok := ts.(*ArrayType)
			if !ok {
				t.Fatalf("ParseType() = %T, want *ArrayType", ts)
			}
			if got := at.Dimensions(); got != tt.dims {
				t.Errorf("Dimensions() = %d, want %d", got, tt.dims)
			}
			if !TypeEqual(at.Component(), tt.component) {
				t.Errorf("Component() = %s, want %s", at.Component(), tt.component)
			}
			if !TypeEqual(ts, ArrayOf(tt.component, tt.dims)) {
				t.Errorf("ParseType() = %s, want ArrayOf(%s, %d)", ts, tt.component, tt.dims)
			}
			if got := WriteType(ts); got != tt.input {
				t.Errorf("WriteType() = %q, want %q", got, tt.input)
			}
		})
	}
}

func TestParseTypeParameterBounds(t *testing.T) {
	cs, err := ParseClass("<T::Ljava/lang/Runnable;:Ljava/io/Closeable;U:TT;>Ljava/lang/Object;")
	if err != nil {
		t.Fatalf("ParseClass error: %v", err)
	}
	if len(cs.TypeParams) != 2 {
		t.Fatalf("len(TypeParams) = %d, want 2", len(cs.TypeParams))
	}
	tp := cs.TypeParams[0]
	if tp.ClassBound != nil {
		t.Errorf("T.ClassBound = %s, want nil", tp.ClassBound)
	}
	if len(tp.InterfaceBounds) != 2 {
		t.Fatalf("len(T.InterfaceBounds) = %d, want 2", len(tp.InterfaceBounds))
	}
	if got := tp.InterfaceBounds[1].String(); got != "Ljava/io/Closeable;" {
		t.Errorf("T.InterfaceBounds[1] = %q, want %q", got, "Ljava/io/Closeable;")
	}
	if !TypeEqual(cs.TypeParams[1].ClassBound, TypeVar("T")) {
		t.Errorf("U.ClassBound = %v, want TT;", cs.TypeParams[1].ClassBound)
	}
	if len(cs.Interfaces) != 0 {
		t.Errorf("len(Interfaces) = %d, want 0", len(cs.Interfaces))
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		kind     Kind
		input    string
		offset   int
		char     rune
		eof      bool
		expected string
	}{
		{KindField, "Ljava/lang/String", 17, 0, true, "';'"},
		{KindField, "X", 0, 'X', false, "class type, type variable or array type"},
		{KindField, "I", 0, 'I', false, "class type, type variable or array type"},
		{KindField, "", 0, 0, true, "class type, type variable or array type"},
		{KindField, "+Ljava/lang/Object;", 0, '+', false, "class type, type variable or array type"},
		{KindField, "Ljava/util/List<>;", 16, '>', false, "type argument"},
		{KindField, "Ljava/util/List<TT;", 19, 0, true, "type argument"},
		{KindField, "TT", 2, 0, true, "';'"},
		{KindField, "T;", 1, ';', false, "identifier"},
		{KindField, "L;", 1, ';', false, "identifier"},
		{KindField, "Ljava//String;", 6, '/', false, "identifier"},
		{KindField, "Lfoo.;", 5, ';', false, "identifier"},
		{KindField, "[X", 1, 'X', false, "type signature"},
		{KindField, "Ljava/util/List<X>;", 16, 'X', false, "type signature"},
		{KindField, "TT;TU;", 3, 'T', false, "end of input"},
		{KindClass, "Ljava/lang/Object;X", 18, 'X', false, "end of input"},
		{KindClass, "<>Ljava/lang/Object;", 7, '/', false, "':'"},
		{KindClass, "<T>Ljava/lang/Object;", 7, '/', false, "':'"},
		{KindClass, "<:Ljava/lang/Object;>Ljava/lang/Object;", 1, ':', false, "identifier"},
		{KindClass, "<T:Ljava/lang/Object;", 21, 0, true, "identifier"},
		{KindClass, "TT;", 0, 'T', false, "'L'"},
		{KindMethod, "(I", 2, 0, true, "type signature"},
		{KindMethod, "()", 2, 0, true, "type signature"},
		{KindMethod, "()VX", 3, 'X', false, "end of input"},
		{KindMethod, "()V^I", 4, 'I', false, "class type or type variable"},
		{KindMethod, "()V^[Ljava/lang/Exception;", 4, '[', false, "class type or type variable"},
		{KindMethod, "I)V", 0, 'I', false, "'('"},
		{KindMethod, "(V)V", 1, 'V', false, "type signature"},
		{KindMethod, "()V^", 4, 0, true, "class type or type variable"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.input, func(t *testing.T) {
			n, err := Parse(tt.input, tt.kind)
			if err == nil {
				t.Fatalf("Parse(%q) = %s, want error", tt.input, n)
			}
			if n != nil {
				t.Errorf("Parse(%q) returned a partial tree", tt.input)
			}
			if !errors.Is(err, ErrMalformedSignature) {
				t.Errorf("errors.Is(err, ErrMalformedSignature) = false for %v", err)
			}
			var me *MalformedSignatureError
			if !errors.As(err, &me) {
				t.Fatalf("error %T is not *MalformedSignatureError", err)
			}
			if me.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d", me.Offset, tt.offset)
			}
			if me.EOF != tt.eof {
				t.Errorf("EOF = %v, want %v", me.EOF, tt.eof)
			}
			if !tt.eof && me.Char != tt.char {
				t.Errorf("Char = %q, want %q", me.Char, tt.char)
			}
			if me.Expected != tt.expected {
				t.Errorf("Expected = %q, want %q", me.Expected, tt.expected)
			}
		})
	}
}

func TestParseTypedEntryPointsReturnNilOnError(t *testing.T) {
	if cs, err := ParseClass("Ljava/lang/Object"); err == nil || cs != nil {
		t.Errorf("ParseClass() = %v, %v, want nil, error", cs, err)
	}
	if fs, err := ParseField("Ljava/lang/Object"); err == nil || fs != nil {
		t.Errorf("ParseField() = %v, %v, want nil, error", fs, err)
	}
	if ms, err := ParseMethod("(Ljava/lang/Object"); err == nil || ms != nil {
		t.Errorf("ParseMethod() = %v, %v, want nil, error", ms, err)
	}
	if ts, err := ParseType("Q"); err == nil || ts != nil {
		t.Errorf("ParseType() = %v, %v, want nil, error", ts, err)
	}
	if _, err := Parse("()V", Kind(42)); err == nil {
		t.Error("Parse with unknown kind succeeded")
	}
}

func TestParseMaxDepth(t *testing.T) {
	deep := strings.Repeat("[", 10) + "I"
	if _, err := ParseField(deep, WithMaxDepth(10)); err != nil {
		t.Errorf("depth 10 with limit 10: %v", err)
	}
	_, err := ParseField(deep, WithMaxDepth(9))
	if !errors.Is(err, ErrMalformedSignature) {
		t.Fatalf("depth 10 with limit 9: err = %v, want malformed signature", err)
	}
	if !strings.Contains(err.Error(), "nesting depth of at most 9") {
		t.Errorf("error %q does not mention the depth limit", err)
	}

	nested := strings.Repeat("Ljava/util/List<", 5) + "TT;" + strings.Repeat(">;", 5)
	if _, err := ParseField(nested, WithMaxDepth(4)); err == nil {
		t.Error("5 nested type argument lists accepted with limit 4")
	}
	if _, err := ParseField(nested, WithMaxDepth(5)); err != nil {
		t.Errorf("5 nested type argument lists with limit 5: %v", err)
	}

	huge := strings.Repeat("[", DefaultMaxDepth+1) + "I"
	if _, err := ParseField(huge); err == nil {
		t.Error("default depth limit not enforced")
	}
}

func TestParseConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan string, len(roundTripTests)*8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, tt := range roundTripTests {
				n, err := Parse(tt.input, tt.kind)
				if err != nil || Write(n) != tt.input {
					errs <- tt.input
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for s := range errs {
		t.Errorf("concurrent round trip failed for %q", s)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindClass, KindField, KindMethod} {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v, want %v, true", k.String(), got, ok, k)
		}
	}
	if _, ok := ParseKind("module"); ok {
		t.Error(`ParseKind("module") succeeded`)
	}
}
