package typemap

import (
	"path"
	"strings"
	"unicode"

	"calyx/compiler-go/pkg/descriptors"
	"calyx/compiler-go/pkg/names"
)

// namespacePrefix renders the physical path of a namespace chain. Each
// segment chooses its own separator: a foreign-statics mirror nests with
// '$' into whatever precedes it, a source namespace opens a new '/'
// package level. NoNamespace yields the empty prefix.
func (m *Mapper) namespacePrefix(id descriptors.NamespaceID) (string, error) {
	var chain []descriptors.NamespaceID
	for ns := id; ns != descriptors.NoNamespace; ns = m.graph.Namespace(ns).Parent {
		chain = append(chain, ns)
	}
	var b strings.Builder
	for i := len(chain) - 1; i >= 0; i-- {
		ns := m.graph.Namespace(chain[i])
		switch {
		case ns.Source && ns.ForeignStatics:
			return "", descriptors.Internalf("namespace %s has conflicting origins", ns.Name)
		case !ns.Source && !ns.ForeignStatics:
			return "", descriptors.Internalf("namespace %s has unknown origin", ns.Name)
		}
		if b.Len() > 0 {
			if ns.ForeignStatics {
				b.WriteString("$")
			} else {
				b.WriteString("/")
			}
		}
		b.WriteString(ns.Name)
	}
	return b.String(), nil
}

// ClassNameForNamespace names the class holding a namespace's top-level
// members. A foreign-statics mirror is that class itself; a source
// namespace gets a synthesized facade class. When the target callable is
// known to live in a file of the module being compiled, the per-file
// facade part is named instead of the whole facade.
func (m *Mapper) ClassNameForNamespace(id descriptors.NamespaceID, target descriptors.CallableID, insideModule bool) (names.ClassName, error) {
	if id == descriptors.NoNamespace {
		return names.ClassName{}, descriptors.Internalf("no namespace to name")
	}
	prefix, err := m.namespacePrefix(id)
	if err != nil {
		return names.ClassName{}, err
	}
	ns := m.graph.Namespace(id)
	if ns.ForeignStatics {
		return names.ByInternalName(prefix), nil
	}
	facade := facadeClassName(ns.Name)
	simple := facade
	if insideModule && target != descriptors.NoCallable {
		if file := m.graph.Callable(target).File; file != descriptors.NoFile {
			simple = facade + "$" + fileStem(m.graph.File(file).Name)
		}
	}
	return names.ByInternalName(prefix + "/" + simple), nil
}

// ClassNameForScript names the synthesized instance class of a script.
// The name is derived once and memoized so every caller agrees.
func (m *Mapper) ClassNameForScript(id descriptors.ScriptID) (names.ClassName, error) {
	if internal, ok := m.graph.ScriptClassName(id); ok {
		return names.ByInternalName(internal), nil
	}
	stem := fileStem(m.graph.Script(id).Name)
	internal := "scripts/" + capitalize(stem)
	if err := m.graph.RecordScriptClassName(id, internal); err != nil {
		return names.ClassName{}, err
	}
	return names.ByInternalName(internal), nil
}

// classPhysicalName names a classifier's implementation class: nested
// classes join their owner with '$', top-level classes join their
// namespace path, anonymous and local classes carry a synthesized name
// recorded during closure analysis.
func (m *Mapper) classPhysicalName(id descriptors.ClassID) (names.ClassName, error) {
	cls := m.graph.Class(id)
	if cls.Anonymous {
		internal, ok := m.graph.AnonymousClassName(id)
		if !ok {
			return names.ClassName{}, descriptors.Internalf("anonymous class %s has no synthesized name", cls.FQName)
		}
		return names.ByInternalName(internal), nil
	}
	switch owner := cls.Owner.(type) {
	case descriptors.ClassOwner:
		parent, err := m.classPhysicalName(owner.Class)
		if err != nil {
			return names.ClassName{}, err
		}
		return parent.WithSuffix("$" + cls.Name), nil
	case descriptors.NamespaceOwner:
		if owner.Namespace == descriptors.NoNamespace {
			return names.ByInternalName(cls.Name), nil
		}
		prefix, err := m.namespacePrefix(owner.Namespace)
		if err != nil {
			return names.ClassName{}, err
		}
		sep := "/"
		if m.graph.Namespace(owner.Namespace).ForeignStatics {
			sep = "$"
		}
		return names.ByInternalName(prefix + sep + cls.Name), nil
	case descriptors.CallableOwner:
		internal, ok := m.graph.AnonymousClassName(id)
		if !ok {
			return names.ClassName{}, descriptors.Internalf("local class %s has no synthesized name", cls.FQName)
		}
		return names.ByInternalName(internal), nil
	case descriptors.ScriptOwner:
		script, err := m.ClassNameForScript(owner.Script)
		if err != nil {
			return names.ClassName{}, err
		}
		return script.WithSuffix("$" + cls.Name), nil
	default:
		return names.ClassName{}, descriptors.Internalf("class %s has an unnameable owner", cls.FQName)
	}
}

func facadeClassName(name string) string {
	return capitalize(sanitizeIdent(name)) + "Facade"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// fileStem reduces a source file path to an identifier-shaped stem.
func fileStem(name string) string {
	base := path.Base(name)
	if ext := path.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	return sanitizeIdent(base)
}

func sanitizeIdent(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
