package descriptors

import "strings"

type (
	ClassID     int
	TypeParamID int
	NamespaceID int
	ScriptID    int
	CallableID  int
	FileID      int
)

const (
	NoClass    ClassID    = -1
	NoCallable CallableID = -1
	// NoNamespace and NoFile are index 0 so that zero-valued descriptors
	// mean "none"; NewGraph reserves both slots. A namespace literal that
	// omits Parent therefore sits at the root instead of aliasing a real
	// arena entry.
	NoNamespace NamespaceID = 0
	NoFile      FileID      = 0
)

// Owner names the declaration that contains another declaration. The closed
// variant set mirrors the places the source language allows declarations.
type Owner interface {
	owner()
}

// NamespaceOwner marks a top-level declaration inside a namespace.
type NamespaceOwner struct {
	Namespace NamespaceID
}

func (NamespaceOwner) owner() {}

// ClassOwner marks a member of a class or interface.
type ClassOwner struct {
	Class ClassID
}

func (ClassOwner) owner() {}

// ScriptOwner marks a script top-level declaration.
type ScriptOwner struct {
	Script ScriptID
}

func (ScriptOwner) owner() {}

// CallableOwner marks a local declaration nested inside a callable body.
type CallableOwner struct {
	Callable CallableID
}

func (CallableOwner) owner() {}

// Namespace is one segment of a namespace chain. Source and ForeignStatics
// record where the namespace came from; exactly one must be set.
type Namespace struct {
	Name           string
	Parent         NamespaceID
	Source         bool
	ForeignStatics bool
}

// File identifies a source file; multi-file namespaces fragment their
// top-level members per file.
type File struct {
	Name string
}

// Script is a compiled script; its top-level declarations live on a
// synthesized instance class.
type Script struct {
	Name string
}

// Class describes a class-like classifier.
type Class struct {
	Name         string
	FQName       string
	Kind         ClassKind
	Owner        Owner
	Visibility   Visibility
	TypeParams   []TypeParamID
	Supertypes   []SemanticType
	Members      []CallableID
	Constructors []CallableID
	Foreign      bool
	Anonymous    bool
	File         FileID
}

// TypeParam describes a declared type parameter.
type TypeParam struct {
	Name     string
	Variance Variance
	Bounds   []SemanticType
	Reified  bool
	Index    int
	Owner    Owner
}

// ValueParam is one declared value parameter of a callable.
type ValueParam struct {
	Name       string
	Type       SemanticType
	HasDefault bool
	Vararg     *SemanticType
}

// Callable describes a function, constructor, or property accessor.
// Original is a self-reference for declarations and points at the overridden
// ancestor for synthetic or overriding members; Overridden holds the direct
// override edges used to locate the introducing declaration.
type Callable struct {
	Name              string
	Kind              CallableKind
	Owner             Owner
	Visibility        Visibility
	TypeParams        []TypeParamID
	Receiver          *SemanticType
	Params            []ValueParam
	Return            *SemanticType
	Original          CallableID
	Overridden        []CallableID
	Abstract          bool
	SyntheticAccessor bool
	Property          string
	DefaultValue      bool
	File              FileID
}

// Graph is the arena owning every descriptor of one compilation. Edges are
// IDs into the arena, never pointers, so the override and containment
// back-references cannot form ownership cycles.
type Graph struct {
	classes    []Class
	params     []TypeParam
	namespaces []Namespace
	scripts    []Script
	callables  []Callable
	files      []File

	builtins map[string]ClassID
	bindings *Bindings
}

func NewGraph() *Graph {
	return &Graph{
		namespaces: []Namespace{{}}, // slot 0 is NoNamespace
		files:      []File{{}},      // slot 0 is NoFile
		builtins:   make(map[string]ClassID),
		bindings:   NewBindings(),
	}
}

// Bindings exposes the shared write-once fact store.
func (g *Graph) Bindings() *Bindings { return g.bindings }

func (g *Graph) AddNamespace(ns Namespace) NamespaceID {
	g.namespaces = append(g.namespaces, ns)
	return NamespaceID(len(g.namespaces) - 1)
}

func (g *Graph) AddFile(f File) FileID {
	g.files = append(g.files, f)
	return FileID(len(g.files) - 1)
}

func (g *Graph) AddScript(s Script) ScriptID {
	g.scripts = append(g.scripts, s)
	return ScriptID(len(g.scripts) - 1)
}

func (g *Graph) AddTypeParam(p TypeParam) TypeParamID {
	g.params = append(g.params, p)
	return TypeParamID(len(g.params) - 1)
}

// AddClass registers a class. An empty FQName is derived from the owner
// chain, which is what every source-declared class wants.
func (g *Graph) AddClass(c Class) ClassID {
	if c.FQName == "" {
		c.FQName = g.fqFor(c.Owner, c.Name)
	}
	g.classes = append(g.classes, c)
	return ClassID(len(g.classes) - 1)
}

// AddCallable registers a callable as a declaration: Original becomes a
// self-reference. Builders wiring synthetic or overriding members point
// Original elsewhere afterwards via the returned ID.
func (g *Graph) AddCallable(c Callable) CallableID {
	id := CallableID(len(g.callables))
	c.Original = id
	g.callables = append(g.callables, c)
	return id
}

func (g *Graph) Class(id ClassID) *Class             { return &g.classes[id] }
func (g *Graph) TypeParam(id TypeParamID) *TypeParam { return &g.params[id] }
func (g *Graph) Namespace(id NamespaceID) *Namespace { return &g.namespaces[id] }
func (g *Graph) Script(id ScriptID) *Script          { return &g.scripts[id] }
func (g *Graph) Callable(id CallableID) *Callable    { return &g.callables[id] }
func (g *Graph) File(id FileID) *File                { return &g.files[id] }

// Original follows the original link until it reaches a declaration.
func (g *Graph) Original(id CallableID) CallableID {
	for {
		c := g.Callable(id)
		if c.Original == id {
			return id
		}
		id = c.Original
	}
}

// DefaultType builds the type a classifier stands for when mentioned bare:
// its own parameters applied invariantly.
func (g *Graph) DefaultType(id ClassID) SemanticType {
	cls := g.Class(id)
	args := make([]TypeProjection, len(cls.TypeParams))
	for i, p := range cls.TypeParams {
		args[i] = Invariantly(ParamType(p))
	}
	return SemanticType{Ref: ClassRef{Class: id}, Args: args}
}

// EnsureBuiltinClass returns the classifier for a builtin fully qualified
// name, creating it (and its namespace chain) on first use. Repeated calls
// return the same ID, so lazily synthesized references stay deterministic.
func (g *Graph) EnsureBuiltinClass(fq string, kind ClassKind) ClassID {
	if id, ok := g.builtins[fq]; ok {
		return id
	}
	segments := strings.Split(fq, ".")
	ns := NoNamespace
	for _, seg := range segments[:len(segments)-1] {
		ns = g.ensureNamespace(ns, seg)
	}
	id := g.AddClass(Class{
		Name:       segments[len(segments)-1],
		FQName:     fq,
		Kind:       kind,
		Owner:      NamespaceOwner{Namespace: ns},
		Visibility: Public,
	})
	g.builtins[fq] = id
	return id
}

func (g *Graph) ensureNamespace(parent NamespaceID, name string) NamespaceID {
	for i, ns := range g.namespaces {
		if NamespaceID(i) != NoNamespace && ns.Name == name && ns.Parent == parent {
			return NamespaceID(i)
		}
	}
	return g.AddNamespace(Namespace{Name: name, Parent: parent, Source: true})
}

func (g *Graph) fqFor(owner Owner, name string) string {
	switch o := owner.(type) {
	case NamespaceOwner:
		var segments []string
		ns := o.Namespace
		for ns != NoNamespace {
			segments = append([]string{g.Namespace(ns).Name}, segments...)
			ns = g.Namespace(ns).Parent
		}
		if len(segments) == 0 {
			return name
		}
		return strings.Join(segments, ".") + "." + name
	case ClassOwner:
		return g.Class(o.Class).FQName + "." + name
	default:
		return name
	}
}

// TypeName renders a type for diagnostics.
func (g *Graph) TypeName(t SemanticType) string {
	var b strings.Builder
	g.writeTypeName(&b, t)
	return b.String()
}

func (g *Graph) writeTypeName(b *strings.Builder, t SemanticType) {
	switch ref := t.Ref.(type) {
	case ClassRef:
		b.WriteString(g.Class(ref.Class).FQName)
	case ParamRef:
		b.WriteString(g.TypeParam(ref.Param).Name)
	case IntersectionRef:
		for i, member := range ref.Members {
			if i > 0 {
				b.WriteString(" & ")
			}
			g.writeTypeName(b, member)
		}
	case ErrorRef:
		b.WriteString("<error:" + ref.Presentation + ">")
	default:
		b.WriteString("<unknown>")
	}
	if len(t.Args) > 0 {
		b.WriteString("<")
		for i, arg := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			if arg.Variance != Invariant {
				b.WriteString(arg.Variance.String())
				b.WriteString(" ")
			}
			g.writeTypeName(b, arg.Type)
		}
		b.WriteString(">")
	}
	if t.Nullable {
		b.WriteString("?")
	}
}

// CommonSupertype resolves an intersection to the closest classifier shared
// by every member, applied with the first member's arguments dropped (the
// approximation is only used for physical mapping).
func (g *Graph) CommonSupertype(members []SemanticType) (SemanticType, error) {
	if len(members) == 0 {
		return SemanticType{}, Internalf("empty intersection type")
	}
	if len(members) == 1 {
		return members[0], nil
	}
	depths := make([]map[ClassID]int, 0, len(members))
	for _, member := range members {
		ref, ok := member.Ref.(ClassRef)
		if !ok {
			return SemanticType{}, Internalf("intersection member %s is not a class type", g.TypeName(member))
		}
		seen := make(map[ClassID]int)
		g.collectAncestors(ref.Class, 0, seen)
		depths = append(depths, seen)
	}
	best := NoClass
	bestDepth := -1
	for id, depth := range depths[0] {
		shared := true
		worst := depth
		for _, other := range depths[1:] {
			d, ok := other[id]
			if !ok {
				shared = false
				break
			}
			if d > worst {
				worst = d
			}
		}
		if !shared {
			continue
		}
		if best == NoClass || worst < bestDepth || (worst == bestDepth && id < best) {
			best = id
			bestDepth = worst
		}
	}
	if best == NoClass {
		return SemanticType{}, Internalf("intersection %s has no common supertype", g.TypeName(SemanticType{Ref: IntersectionRef{Members: members}}))
	}
	return g.DefaultType(best), nil
}

func (g *Graph) collectAncestors(id ClassID, depth int, seen map[ClassID]int) {
	if prev, ok := seen[id]; ok && prev <= depth {
		return
	}
	seen[id] = depth
	for _, super := range g.Class(id).Supertypes {
		if ref, ok := super.Ref.(ClassRef); ok {
			g.collectAncestors(ref.Class, depth+1, seen)
		}
	}
}
