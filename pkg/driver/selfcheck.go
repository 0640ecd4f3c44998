package driver

import (
	"fmt"
	"strings"

	"calyx/compiler-go/pkg/descriptors"
	"calyx/compiler-go/pkg/foreign"
	"calyx/compiler-go/pkg/typemap"
)

// Selfcheck lowers a small built-in sample program through the whole
// backend and renders the resolved ABI, one decision per line. It gives a
// quick end-to-end signal that the mapper, the resolvers, and the foreign
// synthesizer agree with each other.
func Selfcheck() (string, error) {
	g := descriptors.NewGraph()

	intClass := g.EnsureBuiltinClass("calyx.lang.Int", descriptors.KindClass)
	textClass := g.EnsureBuiltinClass("calyx.lang.Text", descriptors.KindClass)
	unitClass := g.EnsureBuiltinClass("calyx.lang.Unit", descriptors.KindObject)

	demo := g.AddNamespace(descriptors.Namespace{Name: "demo", Source: true})
	file := g.AddFile(descriptors.File{Name: "sample.cx"})

	boxParamOwnerFixup := func(class descriptors.ClassID, param descriptors.TypeParamID) {
		g.TypeParam(param).Owner = descriptors.ClassOwner{Class: class}
	}

	boxT := g.AddTypeParam(descriptors.TypeParam{Name: "T", Variance: descriptors.Invariant})
	box := g.AddClass(descriptors.Class{
		Name:       "Box",
		Kind:       descriptors.KindClass,
		Owner:      descriptors.NamespaceOwner{Namespace: demo},
		Visibility: descriptors.Public,
		TypeParams: []descriptors.TypeParamID{boxT},
		File:       file,
	})
	boxParamOwnerFixup(box, boxT)
	get := g.AddCallable(descriptors.Callable{
		Name:       "get",
		Kind:       descriptors.Function,
		Owner:      descriptors.ClassOwner{Class: box},
		Visibility: descriptors.Public,
		Return:     retType(descriptors.ParamType(boxT)),
		File:       file,
	})
	g.Class(box).Members = []descriptors.CallableID{get}

	greeter := g.AddClass(descriptors.Class{
		Name:       "Greeter",
		Kind:       descriptors.KindInterface,
		Owner:      descriptors.NamespaceOwner{Namespace: demo},
		Visibility: descriptors.Public,
		File:       file,
	})
	greet := g.AddCallable(descriptors.Callable{
		Name:       "greet",
		Kind:       descriptors.Function,
		Owner:      descriptors.ClassOwner{Class: greeter},
		Visibility: descriptors.Public,
		Params: []descriptors.ValueParam{
			{Name: "name", Type: descriptors.ClassType(textClass)},
		},
		Return: retType(descriptors.ClassType(unitClass)),
		File:   file,
	})
	g.Class(greeter).Members = []descriptors.CallableID{greet}

	length := g.AddCallable(descriptors.Callable{
		Name:       "length",
		Kind:       descriptors.Function,
		Owner:      descriptors.NamespaceOwner{Namespace: demo},
		Visibility: descriptors.Public,
		Params: []descriptors.ValueParam{
			{Name: "text", Type: descriptors.ClassType(textClass)},
		},
		Return: retType(descriptors.ClassType(intClass)),
		File:   file,
	})

	legacy := g.AddClass(descriptors.Class{
		Name:       "Legacy",
		Kind:       descriptors.KindClass,
		Owner:      descriptors.NamespaceOwner{Namespace: demo},
		Visibility: descriptors.ProtectedStatic,
		Foreign:    true,
	})

	mapper := typemap.New(g, typemap.DefaultPlatform(), typemap.Config{MapBuiltins: true})
	synth := foreign.New(g)

	var b strings.Builder

	boxedInt := descriptors.SemanticType{
		Ref:  descriptors.ClassRef{Class: box},
		Args: []descriptors.TypeProjection{descriptors.Invariantly(descriptors.ClassType(intClass))},
	}
	pt, err := mapper.MapType(boxedInt, nil, typemap.ValueMode, descriptors.Invariant, false)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "type %s -> %s\n", g.TypeName(boxedInt), pt.Descriptor())

	for _, probe := range []struct {
		label string
		id    descriptors.CallableID
		super bool
	}{
		{"demo.length", length, false},
		{"Box.get", get, false},
		{"Greeter.greet", greet, false},
		{"super Greeter.greet", greet, true},
	} {
		recipe, err := mapper.ResolveInvocation(probe.id, probe.super, false, true, typemap.OwnerImplementation)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "call %s -> %s.%s [%s]\n", probe.label, recipe.Owner, recipe.Signature, recipe.Dispatch)
	}

	ctors, err := synth.ConstructorsFor(legacy)
	if err != nil {
		return "", err
	}
	for _, ctor := range ctors {
		sig, err := mapper.ConstructorSignature(ctor)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "foreign demo.Legacy ctor %s visibility %s\n", sig, g.Callable(ctor).Visibility)
	}

	return b.String(), nil
}

func retType(t descriptors.SemanticType) *descriptors.SemanticType {
	return &t
}
