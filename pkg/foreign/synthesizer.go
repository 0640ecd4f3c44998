package foreign

import (
	"fmt"
	"reflect"

	"calyx/compiler-go/pkg/descriptors"
)

// Synthesizer produces constructor descriptors for foreign classes:
// pre-compiled classes whose declarations carry no source representation.
// Results are memoized per class in the shared binding store, so repeated
// requests from interleaved call sites agree.
type Synthesizer struct {
	graph *descriptors.Graph
}

func New(graph *descriptors.Graph) *Synthesizer {
	return &Synthesizer{graph: graph}
}

// ConstructorsFor returns the usable constructors of a foreign class,
// synthesizing them on first request.
func (s *Synthesizer) ConstructorsFor(id descriptors.ClassID) ([]descriptors.CallableID, error) {
	if ctors, ok := s.graph.ForeignConstructors(id); ok {
		return ctors, nil
	}
	cls := s.graph.Class(id)
	if !cls.Foreign {
		return nil, descriptors.Internalf("constructor synthesis requested for source class %s", cls.FQName)
	}
	ctors, err := s.synthesize(id)
	if err != nil {
		return nil, err
	}
	if err := s.graph.RecordForeignConstructors(id, ctors); err != nil {
		return nil, err
	}
	return ctors, nil
}

func (s *Synthesizer) synthesize(id descriptors.ClassID) ([]descriptors.CallableID, error) {
	cls := s.graph.Class(id)
	switch {
	case cls.Kind == descriptors.KindObject:
		// A value-like singleton gets exactly one way to exist.
		return []descriptors.CallableID{s.addConstructor(id, descriptors.Public, nil)}, nil

	case cls.Kind == descriptors.KindAnnotation:
		ctor, err := s.annotationConstructor(id)
		if err != nil {
			return nil, err
		}
		return []descriptors.CallableID{ctor}, nil

	case len(cls.Constructors) == 0:
		if cls.Kind == descriptors.KindInterface {
			return nil, nil
		}
		return []descriptors.CallableID{s.addConstructor(id, defaultVisibility(cls.Visibility), nil)}, nil

	default:
		out := make([]descriptors.CallableID, 0, len(cls.Constructors))
		for _, declared := range cls.Constructors {
			out = append(out, declared)
			adapter, ok, err := s.samAdapter(id, declared)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, adapter)
			}
		}
		return out, nil
	}
}

// defaultVisibility substitutes visibilities the target cannot express: a
// protected-static foreign class opens its default constructor to
// protected-and-same-package.
func defaultVisibility(v descriptors.Visibility) descriptors.Visibility {
	if v == descriptors.ProtectedStatic {
		return descriptors.ProtectedAndPackage
	}
	return v
}

// annotationConstructor mirrors an annotation container's abstract
// members as constructor parameters, in declared order. The last member
// alone may become variadic, and only when array-typed; the position
// carries the meaning, not the array-ness.
func (s *Synthesizer) annotationConstructor(id descriptors.ClassID) (descriptors.CallableID, error) {
	cls := s.graph.Class(id)
	var params []descriptors.ValueParam
	var abstract []descriptors.CallableID
	for _, member := range cls.Members {
		if s.graph.Callable(member).Abstract {
			abstract = append(abstract, member)
		}
	}
	for i, member := range abstract {
		m := s.graph.Callable(member)
		if m.Return == nil {
			return descriptors.NoCallable, descriptors.Internalf("annotation member %s.%s has no type", cls.FQName, m.Name)
		}
		param := descriptors.ValueParam{Name: m.Name, Type: *m.Return}
		if i == len(abstract)-1 {
			if elem, ok := s.arrayElement(*m.Return); ok {
				param.Vararg = &elem
			}
		}
		params = append(params, param)
	}
	return s.addConstructor(id, descriptors.Public, params), nil
}

func (s *Synthesizer) arrayElement(t descriptors.SemanticType) (descriptors.SemanticType, bool) {
	ref, ok := t.Ref.(descriptors.ClassRef)
	if !ok || len(t.Args) != 1 {
		return descriptors.SemanticType{}, false
	}
	if s.graph.Class(ref.Class).FQName != "calyx.lang.Array" {
		return descriptors.SemanticType{}, false
	}
	return t.Args[0].Type, true
}

// samAdapter synthesizes a bridging constructor that accepts plain
// function values where a declared constructor takes single-abstract-
// method interfaces. The adapter is registered only when it replaces at
// least one parameter and no declared constructor already has the
// resulting parameter list.
func (s *Synthesizer) samAdapter(id descriptors.ClassID, ctorID descriptors.CallableID) (descriptors.CallableID, bool, error) {
	ctor := s.graph.Callable(ctorID)
	params := make([]descriptors.ValueParam, len(ctor.Params))
	replaced := false
	for i, p := range ctor.Params {
		params[i] = p
		fn, ok := s.functionTypeFor(p.Type)
		if !ok {
			continue
		}
		params[i].Type = fn
		replaced = true
	}
	if !replaced {
		return descriptors.NoCallable, false, nil
	}
	if s.hasConstructorWithParams(id, params) {
		return descriptors.NoCallable, false, nil
	}
	adapterID := s.addConstructor(id, ctor.Visibility, params)
	if err := s.graph.RecordSAMAdapter(ctorID, adapterID); err != nil {
		return descriptors.NoCallable, false, err
	}
	return adapterID, true, nil
}

// functionTypeFor reports the function type standing in for a
// single-abstract-method interface, if the parameter's type is one a
// function value may legally bridge to.
func (s *Synthesizer) functionTypeFor(t descriptors.SemanticType) (descriptors.SemanticType, bool) {
	ref, ok := t.Ref.(descriptors.ClassRef)
	if !ok {
		return descriptors.SemanticType{}, false
	}
	iface := s.graph.Class(ref.Class)
	if !iface.Foreign || iface.Kind != descriptors.KindInterface || len(iface.TypeParams) != 0 {
		return descriptors.SemanticType{}, false
	}
	sam, ok := s.singleAbstractMember(ref.Class)
	if !ok {
		return descriptors.SemanticType{}, false
	}
	member := s.graph.Callable(sam)
	if len(member.TypeParams) != 0 || member.Return == nil {
		return descriptors.SemanticType{}, false
	}

	fqName := fmt.Sprintf("calyx.lang.Function%d", len(member.Params))
	fnClass := s.graph.EnsureBuiltinClass(fqName, descriptors.KindInterface)
	s.ensureFunctionTypeParams(fnClass, len(member.Params)+1)
	args := make([]descriptors.TypeProjection, 0, len(member.Params)+1)
	for _, p := range member.Params {
		args = append(args, descriptors.Invariantly(p.Type))
	}
	args = append(args, descriptors.Invariantly(*member.Return))
	fn := descriptors.SemanticType{Ref: descriptors.ClassRef{Class: fnClass}, Args: args, Nullable: t.Nullable}
	return fn, true
}

// ensureFunctionTypeParams gives a lazily created function classifier one
// type parameter per argument slot plus one for the result, so an applied
// function type survives signature mapping. count includes the result slot.
func (s *Synthesizer) ensureFunctionTypeParams(id descriptors.ClassID, count int) {
	cls := s.graph.Class(id)
	if len(cls.TypeParams) != 0 {
		return
	}
	params := make([]descriptors.TypeParamID, count)
	for i := range params {
		name := fmt.Sprintf("P%d", i+1)
		if i == count-1 {
			name = "R"
		}
		params[i] = s.graph.AddTypeParam(descriptors.TypeParam{
			Name:     name,
			Variance: descriptors.Invariant,
			Index:    i,
			Owner:    descriptors.ClassOwner{Class: id},
		})
	}
	cls.TypeParams = params
}

func (s *Synthesizer) singleAbstractMember(id descriptors.ClassID) (descriptors.CallableID, bool) {
	found := descriptors.NoCallable
	for _, member := range s.graph.Class(id).Members {
		if !s.graph.Callable(member).Abstract {
			continue
		}
		if found != descriptors.NoCallable {
			return descriptors.NoCallable, false
		}
		found = member
	}
	return found, found != descriptors.NoCallable
}

func (s *Synthesizer) hasConstructorWithParams(id descriptors.ClassID, params []descriptors.ValueParam) bool {
	for _, existing := range s.graph.Class(id).Constructors {
		declared := s.graph.Callable(existing).Params
		if len(declared) != len(params) {
			continue
		}
		same := true
		for i := range declared {
			if !reflect.DeepEqual(declared[i].Type, params[i].Type) {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

func (s *Synthesizer) addConstructor(id descriptors.ClassID, vis descriptors.Visibility, params []descriptors.ValueParam) descriptors.CallableID {
	return s.graph.AddCallable(descriptors.Callable{
		Name:       "<init>",
		Kind:       descriptors.Constructor,
		Owner:      descriptors.ClassOwner{Class: id},
		Visibility: vis,
		Params:     params,
	})
}
