package typemap

import (
	"testing"

	"calyx/compiler-go/pkg/descriptors"
	"calyx/compiler-go/pkg/names"
)

func (f *fixture) constructor(owner descriptors.ClassID, params ...descriptors.ValueParam) descriptors.CallableID {
	id := f.g.AddCallable(descriptors.Callable{
		Name:       "<init>",
		Kind:       descriptors.Constructor,
		Owner:      descriptors.ClassOwner{Class: owner},
		Visibility: descriptors.Public,
		Params:     params,
	})
	cls := f.g.Class(owner)
	cls.Constructors = append(cls.Constructors, id)
	return id
}

func kinds(params []names.Param) []names.ParamKind {
	out := make([]names.ParamKind, len(params))
	for i, p := range params {
		out[i] = p.Kind
	}
	return out
}

func TestPlainConstructorSignature(t *testing.T) {
	f := newFixture(t)
	textClass := f.builtin("calyx.lang.Text")
	cls := f.class("Greeting", descriptors.KindClass)
	ctor := f.constructor(cls, descriptors.ValueParam{Name: "text", Type: descriptors.ClassType(textClass)})

	sig, err := f.m.ConstructorSignature(ctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.String() != "<init>(Lcvm/lang/Text;)V" {
		t.Fatalf("signature = %q", sig)
	}
}

func TestConstructorSyntheticParameterOrder(t *testing.T) {
	f := newFixture(t)
	intClass := f.builtin("calyx.lang.Int")
	textClass := f.builtin("calyx.lang.Text")

	outer := f.class("Outer", descriptors.KindClass)
	recv := f.class("Recv", descriptors.KindClass)
	local := f.g.AddCallable(descriptors.Callable{
		Name:  "helper",
		Kind:  descriptors.Function,
		Owner: descriptors.CallableOwner{Callable: 0},
	})
	if err := f.g.RecordLocalFunctionClassName(local, "demo/Outer$helper$1"); err != nil {
		t.Fatalf("record local fn: %v", err)
	}

	closureClass := f.g.AddClass(descriptors.Class{
		Name:  "Closure",
		Kind:  descriptors.KindClass,
		Owner: descriptors.ClassOwner{Class: outer},
	})
	ctor := f.constructor(closureClass, descriptors.ValueParam{Name: "label", Type: descriptors.ClassType(textClass)})
	if err := f.g.RecordClosure(closureClass, descriptors.Closure{
		CapturedOuter:    outer,
		CapturedReceiver: recv,
		Captures: []descriptors.Capture{
			{Kind: descriptors.CaptureBoxed, Name: "count", Type: descriptors.ClassType(intClass)},
			{Kind: descriptors.CaptureValue, Name: "seed", Type: descriptors.ClassType(intClass)},
			{Kind: descriptors.CaptureLocalFunction, Name: "helper", Function: local},
		},
	}); err != nil {
		t.Fatalf("record closure: %v", err)
	}

	sig, err := f.m.ConstructorSignature(ctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantDesc := "(Ldemo/Outer;Ldemo/Recv;Lcvm/run/Int32Ref;ILdemo/Outer$helper$1;Lcvm/lang/Text;)V"
	if sig.Desc != wantDesc {
		t.Fatalf("descriptor = %q, want %q", sig.Desc, wantDesc)
	}
	wantKinds := []names.ParamKind{
		names.ParamOuter,
		names.ParamReceiver,
		names.ParamSharedVar,
		names.ParamSharedVar,
		names.ParamSharedVar,
		names.ParamValue,
	}
	got := kinds(sig.Params)
	for i, k := range wantKinds {
		if got[i] != k {
			t.Fatalf("param %d kind = %v, want %v (all: %v)", i, got[i], k, got)
		}
	}
}

func TestEnumConstructorGetsNameAndOrdinal(t *testing.T) {
	f := newFixture(t)
	intClass := f.builtin("calyx.lang.Int")
	enum := f.class("Color", descriptors.KindEnum)
	ctor := f.constructor(enum, descriptors.ValueParam{Name: "rgb", Type: descriptors.ClassType(intClass)})

	sig, err := f.m.ConstructorSignature(ctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Desc != "(Lcvm/lang/Text;II)V" {
		t.Fatalf("descriptor = %q", sig.Desc)
	}
	got := kinds(sig.Params)
	if got[0] != names.ParamEnumName || got[1] != names.ParamEnumOrdinal || got[2] != names.ParamValue {
		t.Fatalf("param kinds = %v", got)
	}
}

func TestAnonymousClassEchoesSuperConstructorArguments(t *testing.T) {
	f := newFixture(t)
	intClass := f.builtin("calyx.lang.Int")
	base := f.class("Base", descriptors.KindClass)
	baseCtor := f.constructor(base, descriptors.ValueParam{Name: "limit", Type: descriptors.ClassType(intClass)})

	outer := f.class("Outer", descriptors.KindClass)
	anon := f.g.AddClass(descriptors.Class{
		Name:      "Outer$1",
		Kind:      descriptors.KindClass,
		Owner:     descriptors.ClassOwner{Class: outer},
		Anonymous: true,
	})
	if err := f.g.RecordAnonymousClassName(anon, "demo/Outer$1"); err != nil {
		t.Fatalf("record name: %v", err)
	}
	ctor := f.constructor(anon)
	if err := f.g.RecordClosure(anon, descriptors.Closure{
		CapturedOuter:    outer,
		CapturedReceiver: descriptors.NoClass,
		SuperCall:        &descriptors.SuperCall{Constructor: baseCtor},
	}); err != nil {
		t.Fatalf("record closure: %v", err)
	}

	sig, err := f.m.ConstructorSignature(ctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Desc != "(Ldemo/Outer;I)V" {
		t.Fatalf("descriptor = %q", sig.Desc)
	}
	got := kinds(sig.Params)
	if got[0] != names.ParamOuter || got[1] != names.ParamSuperCall {
		t.Fatalf("param kinds = %v", got)
	}
}

func TestNamedClassIgnoresSuperCallEcho(t *testing.T) {
	f := newFixture(t)
	intClass := f.builtin("calyx.lang.Int")
	base := f.class("Base", descriptors.KindClass)
	baseCtor := f.constructor(base, descriptors.ValueParam{Name: "limit", Type: descriptors.ClassType(intClass)})

	named := f.class("Derived", descriptors.KindClass)
	ctor := f.constructor(named)
	if err := f.g.RecordClosure(named, descriptors.Closure{
		CapturedOuter:    descriptors.NoClass,
		CapturedReceiver: descriptors.NoClass,
		SuperCall:        &descriptors.SuperCall{Constructor: baseCtor},
	}); err != nil {
		t.Fatalf("record closure: %v", err)
	}

	sig, err := f.m.ConstructorSignature(ctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Desc != "()V" {
		t.Fatalf("named classes pass super arguments explicitly, got %q", sig.Desc)
	}
}

func TestConstructorInvocationRecipe(t *testing.T) {
	f := newFixture(t)
	cls := f.class("Widget", descriptors.KindClass)
	ctor := f.constructor(cls)

	recipe, err := f.m.MapToConstructorInvocation(ctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recipe.Owner.Internal() != "demo/Widget" {
		t.Fatalf("owner = %q", recipe.Owner.Internal())
	}
	if recipe.Dispatch != DispatchSpecial {
		t.Fatalf("dispatch = %s", recipe.Dispatch)
	}
	if recipe.Signature.String() != "<init>()V" {
		t.Fatalf("signature = %q", recipe.Signature)
	}
}

func TestResolveInvocationRoutesConstructors(t *testing.T) {
	f := newFixture(t)
	cls := f.class("Widget", descriptors.KindClass)
	ctor := f.constructor(cls)

	recipe, err := f.m.ResolveInvocation(ctor, false, false, true, OwnerImplementation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recipe.Dispatch != DispatchSpecial || recipe.Owner.Internal() != "demo/Widget" {
		t.Fatalf("recipe = %+v", recipe)
	}
}

func TestScriptConstructorSignature(t *testing.T) {
	f := newFixture(t)
	intClass := f.builtin("calyx.lang.Int")
	first := f.g.AddScript(descriptors.Script{Name: "first.cx"})
	second := f.g.AddScript(descriptors.Script{Name: "second.cx"})

	sig, err := f.m.MapScriptSignature(
		[]descriptors.ScriptID{first, second},
		[]descriptors.ValueParam{{Name: "times", Type: descriptors.ClassType(intClass)}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Desc != "(Lscripts/First;Lscripts/Second;I)V" {
		t.Fatalf("descriptor = %q", sig.Desc)
	}
}
