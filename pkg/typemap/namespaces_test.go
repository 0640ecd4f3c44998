package typemap

import (
	"errors"
	"strings"
	"testing"

	"calyx/compiler-go/pkg/descriptors"
)

func TestNamespaceSeparatorsFollowSegmentOrigin(t *testing.T) {
	f := newFixture(t)
	a := f.g.AddNamespace(descriptors.Namespace{Name: "a", Source: true})
	b := f.g.AddNamespace(descriptors.Namespace{Name: "b", Parent: a, ForeignStatics: true})
	c := f.g.AddNamespace(descriptors.Namespace{Name: "c", Parent: b, Source: true})

	prefix, err := f.m.namespacePrefix(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prefix != "a$b/c" {
		t.Fatalf("prefix = %q, want a$b/c", prefix)
	}
}

func TestForeignStaticsNamespaceNamesItself(t *testing.T) {
	f := newFixture(t)
	a := f.g.AddNamespace(descriptors.Namespace{Name: "a", Source: true})
	b := f.g.AddNamespace(descriptors.Namespace{Name: "Widget", Parent: a, ForeignStatics: true})

	name, err := f.m.ClassNameForNamespace(b, descriptors.NoCallable, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name.Internal() != "a$Widget" {
		t.Fatalf("static-mirror namespace = %q", name.Internal())
	}
}

func TestSourceNamespaceFacade(t *testing.T) {
	f := newFixture(t)
	name, err := f.m.ClassNameForNamespace(f.ns, descriptors.NoCallable, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name.Internal() != "demo/DemoFacade" {
		t.Fatalf("facade = %q", name.Internal())
	}
}

func TestSourceNamespaceFilePartInsideModule(t *testing.T) {
	f := newFixture(t)
	file := f.g.AddFile(descriptors.File{Name: "src/util.cx"})
	fn := f.g.AddCallable(descriptors.Callable{
		Name:  "helper",
		Kind:  descriptors.Function,
		Owner: descriptors.NamespaceOwner{Namespace: f.ns},
		File:  file,
	})

	inside, err := f.m.ClassNameForNamespace(f.ns, fn, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inside.Internal() != "demo/DemoFacade$util" {
		t.Fatalf("file part = %q", inside.Internal())
	}

	// the same target referenced from outside the module uses the facade
	outside, err := f.m.ClassNameForNamespace(f.ns, fn, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outside.Internal() != "demo/DemoFacade" {
		t.Fatalf("outside view = %q", outside.Internal())
	}
}

func TestConflictingNamespaceOriginFaults(t *testing.T) {
	f := newFixture(t)
	bad := f.g.AddNamespace(descriptors.Namespace{Name: "both", Source: true, ForeignStatics: true})
	_, err := f.m.namespacePrefix(bad)
	if err == nil || !strings.Contains(err.Error(), "conflicting") {
		t.Fatalf("expected conflicting-origin fault, got %v", err)
	}

	missing := f.g.AddNamespace(descriptors.Namespace{Name: "neither"})
	if _, err := f.m.namespacePrefix(missing); err == nil || !errors.Is(err, descriptors.ErrInternal) {
		t.Fatalf("expected unknown-origin fault, got %v", err)
	}
}

func TestClassNameForNoNamespaceFaults(t *testing.T) {
	f := newFixture(t)
	_, err := f.m.ClassNameForNamespace(descriptors.NoNamespace, descriptors.NoCallable, false)
	if err == nil || !errors.Is(err, descriptors.ErrInternal) {
		t.Fatalf("expected fault for missing namespace, got %v", err)
	}
}

func TestScriptClassNameIsMemoized(t *testing.T) {
	f := newFixture(t)
	script := f.g.AddScript(descriptors.Script{Name: "tools/build.cx"})
	first, err := f.m.ClassNameForScript(script)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Internal() != "scripts/Build" {
		t.Fatalf("script class = %q", first.Internal())
	}
	second, err := f.m.ClassNameForScript(script)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("script name must be stable: %q vs %q", first.Internal(), second.Internal())
	}
}

func TestNestedClassPhysicalName(t *testing.T) {
	f := newFixture(t)
	outer := f.class("Outer", descriptors.KindClass)
	inner := f.g.AddClass(descriptors.Class{
		Name:  "Inner",
		Kind:  descriptors.KindClass,
		Owner: descriptors.ClassOwner{Class: outer},
	})
	name, err := f.m.classPhysicalName(inner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name.Internal() != "demo/Outer$Inner" {
		t.Fatalf("nested class = %q", name.Internal())
	}
}

func TestClassInsideStaticMirrorNestsWithDollar(t *testing.T) {
	f := newFixture(t)
	a := f.g.AddNamespace(descriptors.Namespace{Name: "a", Source: true})
	mirror := f.g.AddNamespace(descriptors.Namespace{Name: "Widget", Parent: a, ForeignStatics: true})
	member := f.g.AddClass(descriptors.Class{
		Name:  "Style",
		Kind:  descriptors.KindClass,
		Owner: descriptors.NamespaceOwner{Namespace: mirror},
	})
	name, err := f.m.classPhysicalName(member)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name.Internal() != "a$Widget$Style" {
		t.Fatalf("mirror member = %q", name.Internal())
	}
}

func TestAnonymousClassNameComesFromBindings(t *testing.T) {
	f := newFixture(t)
	outer := f.class("Outer", descriptors.KindClass)
	anon := f.g.AddClass(descriptors.Class{
		Name:      "Outer$1",
		Kind:      descriptors.KindClass,
		Owner:     descriptors.ClassOwner{Class: outer},
		Anonymous: true,
	})
	if _, err := f.m.classPhysicalName(anon); err == nil {
		t.Fatalf("unnamed anonymous class must fault")
	}
	if err := f.g.RecordAnonymousClassName(anon, "demo/Outer$1"); err != nil {
		t.Fatalf("record: %v", err)
	}
	name, err := f.m.classPhysicalName(anon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name.Internal() != "demo/Outer$1" {
		t.Fatalf("anonymous class = %q", name.Internal())
	}
}
