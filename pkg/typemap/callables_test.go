package typemap

import (
	"testing"

	"calyx/compiler-go/pkg/descriptors"
	"calyx/compiler-go/pkg/names"
)

func (f *fixture) unitReturn() *descriptors.SemanticType {
	unit := f.g.EnsureBuiltinClass("calyx.lang.Unit", descriptors.KindObject)
	t := descriptors.ClassType(unit)
	return &t
}

func (f *fixture) method(owner descriptors.ClassID, name string, vis descriptors.Visibility) descriptors.CallableID {
	id := f.g.AddCallable(descriptors.Callable{
		Name:       name,
		Kind:       descriptors.Function,
		Owner:      descriptors.ClassOwner{Class: owner},
		Visibility: vis,
		Return:     f.unitReturn(),
	})
	cls := f.g.Class(owner)
	cls.Members = append(cls.Members, id)
	return id
}

func TestNamespaceFunctionResolvesStatic(t *testing.T) {
	f := newFixture(t)
	intClass := f.builtin("calyx.lang.Int")
	ret := descriptors.ClassType(intClass)
	fn := f.g.AddCallable(descriptors.Callable{
		Name:       "answer",
		Kind:       descriptors.Function,
		Owner:      descriptors.NamespaceOwner{Namespace: f.ns},
		Visibility: descriptors.Public,
		Return:     &ret,
	})

	recipe, err := f.m.ResolveInvocation(fn, false, false, false, OwnerImplementation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recipe.Dispatch != DispatchStatic {
		t.Fatalf("dispatch = %s", recipe.Dispatch)
	}
	if recipe.Owner.Internal() != "demo/DemoFacade" {
		t.Fatalf("owner = %q", recipe.Owner.Internal())
	}
	if recipe.Signature.String() != "answer()I" {
		t.Fatalf("signature = %q", recipe.Signature)
	}
	if recipe.ThisClass != nil {
		t.Fatalf("static calls carry no this class")
	}
}

func TestSuperCallToNamespaceFunctionFaults(t *testing.T) {
	f := newFixture(t)
	fn := f.g.AddCallable(descriptors.Callable{
		Name:   "free",
		Kind:   descriptors.Function,
		Owner:  descriptors.NamespaceOwner{Namespace: f.ns},
		Return: f.unitReturn(),
	})
	if _, err := f.m.ResolveInvocation(fn, true, false, true, OwnerImplementation); err == nil {
		t.Fatalf("expected fault for namespace super-call")
	}
}

func TestInterfaceMemberDispatch(t *testing.T) {
	f := newFixture(t)
	iface := f.class("Greeter", descriptors.KindInterface)
	greet := f.method(iface, "greet", descriptors.Public)

	plain, err := f.m.ResolveInvocation(greet, false, false, true, OwnerImplementation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plain.Dispatch != DispatchInterface {
		t.Fatalf("plain dispatch = %s", plain.Dispatch)
	}
	if plain.Owner.Internal() != "demo/Greeter" {
		t.Fatalf("plain owner = %q", plain.Owner.Internal())
	}

	super, err := f.m.ResolveInvocation(greet, true, false, true, OwnerImplementation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if super.Dispatch != DispatchStatic {
		t.Fatalf("super dispatch = %s", super.Dispatch)
	}
	if super.Owner.Internal() != "demo/Greeter$Defaults" {
		t.Fatalf("super owner = %q", super.Owner.Internal())
	}
	// the default body takes the instance as an explicit first parameter
	if len(super.Signature.Params) != 1 || super.Signature.Params[0].Kind != names.ParamThis {
		t.Fatalf("super params = %#v", super.Signature.Params)
	}
	if super.Signature.Params[0].Type.Descriptor() != "Ldemo/Greeter;" {
		t.Fatalf("this param type = %v", super.Signature.Params[0].Type)
	}
	if super.Signature.Generic != "" {
		t.Fatalf("default-holder signatures are never generic, got %q", super.Signature.Generic)
	}
}

func TestInheritedInterfaceMemberDispatchesOnIntroducer(t *testing.T) {
	f := newFixture(t)
	base := f.class("Base", descriptors.KindClass)
	show := f.method(base, "show", descriptors.Public)
	iface := f.class("Visible", descriptors.KindInterface)
	override := f.method(iface, "show", descriptors.Public)
	f.g.Callable(override).Overridden = []descriptors.CallableID{show}

	recipe, err := f.m.ResolveInvocation(override, false, false, true, OwnerImplementation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recipe.Dispatch != DispatchVirtual {
		t.Fatalf("dispatch = %s", recipe.Dispatch)
	}
	if recipe.Owner.Internal() != "demo/Base" {
		t.Fatalf("owner = %q", recipe.Owner.Internal())
	}
	if recipe.OwnerForDefaultParam.Internal() != "demo/Base" {
		t.Fatalf("default-param owner = %q", recipe.OwnerForDefaultParam.Internal())
	}
}

func TestOverrideRootPrefersClassIntroducer(t *testing.T) {
	f := newFixture(t)
	iface := f.class("Marker", descriptors.KindInterface)
	fromIface := f.method(iface, "run", descriptors.Public)
	base := f.class("Base", descriptors.KindClass)
	fromBase := f.method(base, "run", descriptors.Public)
	sub := f.class("Sub", descriptors.KindClass)
	both := f.method(sub, "run", descriptors.Public)
	f.g.Callable(both).Overridden = []descriptors.CallableID{fromIface, fromBase}

	recipe, err := f.m.ResolveInvocation(both, false, false, true, OwnerImplementation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recipe.OwnerForDefaultParam.Internal() != "demo/Base" {
		t.Fatalf("default-param owner = %q, want the class-kind introducer", recipe.OwnerForDefaultParam.Internal())
	}
}

func TestPrivateCallInsideClassUsesSpecialDispatch(t *testing.T) {
	f := newFixture(t)
	cls := f.class("Secretive", descriptors.KindClass)
	hidden := f.method(cls, "hidden", descriptors.Private)

	inside, err := f.m.ResolveInvocation(hidden, false, true, true, OwnerImplementation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inside.Dispatch != DispatchSpecial {
		t.Fatalf("inside dispatch = %s", inside.Dispatch)
	}

	outside, err := f.m.ResolveInvocation(hidden, false, false, true, OwnerImplementation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outside.Dispatch != DispatchVirtual {
		t.Fatalf("outside dispatch = %s", outside.Dispatch)
	}
}

func TestSyntheticAccessorResolvesStaticWithInstanceParam(t *testing.T) {
	f := newFixture(t)
	cls := f.class("Holder", descriptors.KindClass)
	target := f.method(cls, "secret", descriptors.Private)
	accessor := f.g.AddCallable(descriptors.Callable{
		Name:              "access$secret",
		Kind:              descriptors.Function,
		Owner:             descriptors.ClassOwner{Class: cls},
		Visibility:        descriptors.Internal,
		SyntheticAccessor: true,
		Return:            f.unitReturn(),
	})
	_ = target

	recipe, err := f.m.ResolveInvocation(accessor, false, false, true, OwnerImplementation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recipe.Dispatch != DispatchStatic {
		t.Fatalf("dispatch = %s", recipe.Dispatch)
	}
	if len(recipe.Signature.Params) != 1 || recipe.Signature.Params[0].Kind != names.ParamThis {
		t.Fatalf("accessor params = %#v", recipe.Signature.Params)
	}
}

func TestAccessorNaming(t *testing.T) {
	f := newFixture(t)
	intClass := f.builtin("calyx.lang.Int")
	ret := descriptors.ClassType(intClass)
	cls := f.class("Config", descriptors.KindClass)
	getter := f.g.AddCallable(descriptors.Callable{
		Name:     "size",
		Kind:     descriptors.Getter,
		Owner:    descriptors.ClassOwner{Class: cls},
		Property: "size",
		Return:   &ret,
	})
	setter := f.g.AddCallable(descriptors.Callable{
		Name:     "size",
		Kind:     descriptors.Setter,
		Owner:    descriptors.ClassOwner{Class: cls},
		Property: "size",
		Params:   []descriptors.ValueParam{{Name: "value", Type: descriptors.ClassType(intClass)}},
		Return:   f.unitReturn(),
	})

	getSig, err := f.m.MapSignature(getter, true, OwnerImplementation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if getSig.String() != "getSize()I" {
		t.Fatalf("getter = %q", getSig)
	}
	setSig, err := f.m.MapSignature(setter, true, OwnerImplementation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if setSig.String() != "setSize(I)V" {
		t.Fatalf("setter = %q", setSig)
	}

	annotation := f.class("Meta", descriptors.KindAnnotation)
	bare := f.g.AddCallable(descriptors.Callable{
		Name:     "value",
		Kind:     descriptors.Getter,
		Owner:    descriptors.ClassOwner{Class: annotation},
		Property: "value",
		Return:   &ret,
	})
	bareSig, err := f.m.MapSignature(bare, true, OwnerImplementation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bareSig.String() != "value()I" {
		t.Fatalf("annotation accessor = %q", bareSig)
	}
}

func TestReceiverParameterComesBeforeValues(t *testing.T) {
	f := newFixture(t)
	textClass := f.builtin("calyx.lang.Text")
	intClass := f.builtin("calyx.lang.Int")
	recv := descriptors.ClassType(textClass)
	fn := f.g.AddCallable(descriptors.Callable{
		Name:     "padTo",
		Kind:     descriptors.Function,
		Owner:    descriptors.NamespaceOwner{Namespace: f.ns},
		Receiver: &recv,
		Params:   []descriptors.ValueParam{{Name: "width", Type: descriptors.ClassType(intClass)}},
		Return:   &recv,
	})

	recipe, err := f.m.ResolveInvocation(fn, false, false, false, OwnerImplementation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sig := recipe.Signature
	if sig.Desc != "(Lcvm/lang/Text;I)Lcvm/lang/Text;" {
		t.Fatalf("descriptor = %q", sig.Desc)
	}
	if sig.Params[0].Kind != names.ParamReceiver || sig.Params[1].Kind != names.ParamValue {
		t.Fatalf("param kinds = %#v", sig.Params)
	}
	if recipe.ReceiverType == nil || recipe.ReceiverType.Descriptor() != "Lcvm/lang/Text;" {
		t.Fatalf("receiver type = %v", recipe.ReceiverType)
	}
}

func TestGenericFunctionSignature(t *testing.T) {
	f := newFixture(t)
	p := f.g.AddTypeParam(descriptors.TypeParam{Name: "T"})
	ret := descriptors.ParamType(p)
	fn := f.g.AddCallable(descriptors.Callable{
		Name:       "identity",
		Kind:       descriptors.Function,
		Owner:      descriptors.NamespaceOwner{Namespace: f.ns},
		TypeParams: []descriptors.TypeParamID{p},
		Params:     []descriptors.ValueParam{{Name: "value", Type: descriptors.ParamType(p)}},
		Return:     &ret,
	})
	f.g.TypeParam(p).Owner = descriptors.CallableOwner{Callable: fn}

	sig, err := f.m.MapSignature(fn, true, OwnerImplementation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Desc != "(Lcvm/lang/Object;)Lcvm/lang/Object;" {
		t.Fatalf("descriptor = %q", sig.Desc)
	}
	if sig.Generic != "<T:Lcvm/lang/Object;>(TT;)TT;" {
		t.Fatalf("generic = %q", sig.Generic)
	}
}

func TestClosureInvokeRecipe(t *testing.T) {
	f := newFixture(t)
	textClass := f.builtin("calyx.lang.Text")
	recv := descriptors.ClassType(textClass)
	fn := f.g.AddCallable(descriptors.Callable{
		Name:     "transform",
		Kind:     descriptors.Function,
		Owner:    descriptors.CallableOwner{Callable: 0},
		Receiver: &recv,
		Params:   []descriptors.ValueParam{{Name: "x", Type: descriptors.ClassType(textClass)}},
		Return:   &recv,
	})

	recipe, err := f.m.MapToClosureInvoke(fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recipe.Owner.Internal() != "cvm/lang/Function2" {
		t.Fatalf("owner = %q", recipe.Owner.Internal())
	}
	if recipe.Dispatch != DispatchInterface {
		t.Fatalf("dispatch = %s", recipe.Dispatch)
	}
	if recipe.Signature.String() != "invoke(Lcvm/lang/Object;Lcvm/lang/Object;)Lcvm/lang/Object;" {
		t.Fatalf("signature = %q", recipe.Signature)
	}
}

func TestOwnerForObjectMemberUsesImplementation(t *testing.T) {
	f := newFixture(t)
	obj := f.class("Registry", descriptors.KindObject)
	member := f.method(obj, "lookup", descriptors.Public)

	name, err := f.m.Owner(member, OwnerDefaultHolder, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name.Internal() != "demo/Registry" {
		t.Fatalf("owner = %q, object members never live in a default holder", name.Internal())
	}
}

func TestFieldSignature(t *testing.T) {
	f := newFixture(t)
	intClass := f.builtin("calyx.lang.Int")
	p := f.g.AddTypeParam(descriptors.TypeParam{Name: "T"})
	box := f.class("Box", descriptors.KindClass, p)

	plain, err := f.m.MapFieldSignature(descriptors.ClassType(intClass))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plain != "" {
		t.Fatalf("plain field must need no signature, got %q", plain)
	}

	generic, err := f.m.MapFieldSignature(descriptors.ClassType(box, descriptors.Invariantly(descriptors.ParamType(p))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if generic != "Ldemo/Box<TT;>;" {
		t.Fatalf("generic field = %q", generic)
	}
}
