package typemap

import (
	"strings"

	"calyx/compiler-go/pkg/descriptors"
	"calyx/compiler-go/pkg/names"
)

// Mode selects how a semantic type is lowered. Value positions keep
// primitives, bound positions box them, and the two owner modes pick the
// class standing in for a classifier when a member is dispatched on it.
type Mode uint8

const (
	// ValueMode maps a type as it appears in a value position: builtin
	// value classifiers become primitives when non-nullable.
	ValueMode Mode = iota
	// BoundMode maps a type as a type argument or bound: primitives box.
	BoundMode
	// DefaultImplMode maps a classifier to its default-body holder class.
	DefaultImplMode
	// ImplementationMode maps a classifier to its implementation class.
	ImplementationMode
)

func (m Mode) String() string {
	switch m {
	case ValueMode:
		return "value"
	case BoundMode:
		return "bound"
	case DefaultImplMode:
		return "default-impl"
	case ImplementationMode:
		return "implementation"
	}
	return "mode?"
}

// Config carries the per-compilation switches of the mapper.
type Config struct {
	// MapBuiltins enables the builtin alias table. It is off only when
	// compiling the builtin library itself, which must see its own
	// classifiers as ordinary classes.
	MapBuiltins bool
	// SignaturesOnly relaxes error-type handling: unresolved types map to
	// a placeholder instead of faulting, so signatures can be produced
	// for diagnostics even from broken input.
	SignaturesOnly bool
}

// Mapper lowers semantic types, callables, and constructors to physical
// names and signatures. It only reads the graph, so one mapper may serve
// concurrent emitters as long as graph construction has finished.
type Mapper struct {
	graph    *descriptors.Graph
	platform *Platform
	cfg      Config
}

func New(graph *descriptors.Graph, platform *Platform, cfg Config) *Mapper {
	return &Mapper{graph: graph, platform: platform, cfg: cfg}
}

func (m *Mapper) Graph() *descriptors.Graph { return m.graph }

// MapType lowers one semantic type. The physical result is returned and,
// when w is non-nil, also written into the signature being built. use is
// the use-site variance of the position being written and arrayElement
// marks mapping inside an array element slot.
func (m *Mapper) MapType(t descriptors.SemanticType, w *names.SignatureWriter, mode Mode, use descriptors.Variance, arrayElement bool) (names.PhysicalType, error) {
	if m.cfg.MapBuiltins {
		if ref, ok := t.Ref.(descriptors.ClassRef); ok {
			if known, aliased := m.platform.Alias(m.graph.Class(ref.Class).FQName); aliased {
				switch mode {
				case ValueMode, ImplementationMode:
					if t.Nullable {
						known = names.Boxed(known)
					}
					return m.writeKnownType(t, known, w, use, false)
				case BoundMode:
					return m.writeKnownType(t, names.Boxed(known), w, use, arrayElement)
				case DefaultImplMode:
					return names.PhysicalType{}, descriptors.Internalf("builtin %s has no default-impl form", m.graph.TypeName(t))
				default:
					return names.PhysicalType{}, descriptors.Internalf("unknown mapping mode %d for %s", mode, m.graph.TypeName(t))
				}
			}
		}
	}

	if inter, ok := t.Ref.(descriptors.IntersectionRef); ok {
		common, err := m.graph.CommonSupertype(inter.Members)
		if err != nil {
			return names.PhysicalType{}, err
		}
		common.Nullable = common.Nullable || t.Nullable
		t = common
	}

	switch ref := t.Ref.(type) {
	case descriptors.ErrorRef:
		if !m.cfg.SignaturesOnly {
			return names.PhysicalType{}, descriptors.Internalf("unresolved type %s reached the mapper", m.graph.TypeName(t))
		}
		if w != nil {
			w.WriteType(names.UnresolvedType, t.Nullable)
		}
		return names.UnresolvedType, nil

	case descriptors.ClassRef:
		cls := m.graph.Class(ref.Class)
		if m.cfg.MapBuiltins && cls.FQName == builtinArrayFQ {
			return m.mapArrayType(t, w, mode)
		}
		name, err := m.classPhysicalName(ref.Class)
		if err != nil {
			return names.PhysicalType{}, err
		}
		if mode == DefaultImplMode {
			name = name.WithSuffix(names.DefaultsSuffix)
		}
		pt := name.Type()
		if err := m.writeGenericType(w, pt, t, use); err != nil {
			return names.PhysicalType{}, err
		}
		return pt, m.checkValid(pt, t)

	case descriptors.ParamRef:
		param := m.graph.TypeParam(ref.Param)
		erased, err := m.erasedBound(param, mode)
		if err != nil {
			return names.PhysicalType{}, err
		}
		if w != nil {
			w.WriteTypeVariable(param.Name, erased, t.Nullable)
		}
		return erased, m.checkValid(erased, t)

	default:
		return names.PhysicalType{}, descriptors.Internalf("unknown type constructor in %s", m.graph.TypeName(t))
	}
}

// erasedBound picks the erasure of a type parameter: its first class-kind
// upper bound, or the root object type when every bound is an interface.
func (m *Mapper) erasedBound(param *descriptors.TypeParam, mode Mode) (names.PhysicalType, error) {
	for _, bound := range param.Bounds {
		ref, ok := bound.Ref.(descriptors.ClassRef)
		if !ok {
			continue
		}
		if m.graph.Class(ref.Class).Kind == descriptors.KindInterface {
			continue
		}
		return m.MapType(bound, nil, mode, descriptors.Invariant, false)
	}
	return names.RootObjectType, nil
}

// writeKnownType emits a builtin alias. A contravariant array element is
// widened to the root object type in the generic view, matching how the
// target reads such positions.
func (m *Mapper) writeKnownType(t descriptors.SemanticType, known names.PhysicalType, w *names.SignatureWriter, use descriptors.Variance, arrayElement bool) (names.PhysicalType, error) {
	if w != nil {
		if len(t.Args) == 0 {
			written := known
			if arrayElement && use == descriptors.In {
				written = names.RootObjectType
			}
			w.WriteType(written, t.Nullable)
		} else if err := m.writeGenericType(w, known, t, use); err != nil {
			return names.PhysicalType{}, err
		}
	}
	return known, m.checkValid(known, t)
}

// mapArrayType lowers the builtin array classifier. An element that is a
// bare type parameter degrades the whole array to the generic object
// array; otherwise the element maps in bound mode and boxes.
func (m *Mapper) mapArrayType(t descriptors.SemanticType, w *names.SignatureWriter, mode Mode) (names.PhysicalType, error) {
	if len(t.Args) != 1 {
		return names.PhysicalType{}, descriptors.Internalf("array type %s must have exactly one argument", m.graph.TypeName(t))
	}
	elem := t.Args[0]
	var erased names.PhysicalType
	if _, isParam := elem.Type.Ref.(descriptors.ParamRef); isParam {
		erased = names.GenericArrayType
	} else {
		mapped, err := m.MapType(elem.Type, nil, mode, descriptors.Invariant, false)
		if err != nil {
			return names.PhysicalType{}, err
		}
		erased = names.ArrayOf(names.Boxed(mapped))
	}
	if w != nil {
		w.BeginArray(erased, t.Nullable)
		if _, err := m.MapType(elem.Type, w, BoundMode, elem.Variance, true); err != nil {
			return names.PhysicalType{}, err
		}
		w.EndArray()
	}
	return erased, m.checkValid(erased, t)
}

// writeGenericType writes a class type and its arguments into the
// signature. Each argument position combines the classifier's declared
// variance, the argument's use-site projection, and the variance of the
// surrounding position into one effective wildcard.
func (m *Mapper) writeGenericType(w *names.SignatureWriter, pt names.PhysicalType, t descriptors.SemanticType, use descriptors.Variance) error {
	if w == nil {
		return nil
	}
	if len(t.Args) == 0 {
		w.WriteType(pt, t.Nullable)
		return nil
	}
	ref, ok := t.Ref.(descriptors.ClassRef)
	if !ok {
		return descriptors.Internalf("type arguments on non-class type %s", m.graph.TypeName(t))
	}
	declared := m.graph.Class(ref.Class).TypeParams
	if len(t.Args) != len(declared) {
		return descriptors.Internalf("type %s applies %d arguments to %d parameters", m.graph.TypeName(t), len(t.Args), len(declared))
	}
	w.BeginClass(pt, t.Nullable)
	for _, pid := range declared {
		param := m.graph.TypeParam(pid)
		if param.Index < 0 || param.Index >= len(t.Args) {
			return descriptors.Internalf("type parameter %s of %s has out-of-range index %d", param.Name, m.graph.TypeName(t), param.Index)
		}
		arg := t.Args[param.Index]
		eff := EffectiveVariance(param.Variance, arg.Variance, use)
		w.BeginTypeArgument(wildcardFor(eff))
		if _, err := m.MapType(arg.Type, w, BoundMode, descriptors.Invariant, false); err != nil {
			return err
		}
		w.EndTypeArgument()
	}
	w.EndClass()
	return nil
}

// MapReturnType lowers a return type. Unit returns become void, Nothing
// becomes void, and nullable Nothing becomes the root object type; every
// other return maps as a covariant value.
func (m *Mapper) MapReturnType(t descriptors.SemanticType, w *names.SignatureWriter) (names.PhysicalType, error) {
	if ref, ok := t.Ref.(descriptors.ClassRef); ok && len(t.Args) == 0 {
		switch m.graph.Class(ref.Class).FQName {
		case builtinUnitFQ:
			if !t.Nullable {
				if w != nil {
					w.WriteType(names.VoidType, false)
				}
				return names.VoidType, nil
			}
		case builtinNothingFQ:
			if t.Nullable {
				if w != nil {
					w.WriteType(names.RootObjectType, true)
				}
				return names.RootObjectType, nil
			}
			if w != nil {
				w.WriteType(names.VoidType, false)
			}
			return names.VoidType, nil
		}
	}
	return m.MapType(t, w, ValueMode, descriptors.Out, false)
}

// checkValid rejects physical references into the runtime's namespace
// when the builtin library itself is being compiled: at that point no
// runtime alias may leak into output except the root object type.
func (m *Mapper) checkValid(pt names.PhysicalType, t descriptors.SemanticType) error {
	if m.cfg.MapBuiltins {
		return nil
	}
	desc := pt.Descriptor()
	if desc == names.RootObjectType.Descriptor() {
		return nil
	}
	if strings.HasPrefix(desc, "Lcvm/") {
		return descriptors.Internalf("builtin compilation mapped %s to runtime class %s", m.graph.TypeName(t), desc)
	}
	return nil
}
