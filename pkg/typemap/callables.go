package typemap

import (
	"calyx/compiler-go/pkg/descriptors"
	"calyx/compiler-go/pkg/names"
)

// OwnerKind says which class a member is being generated into, which in
// turn decides the mapping mode for the owner type.
type OwnerKind uint8

const (
	// OwnerImplementation generates into the classifier's own class.
	OwnerImplementation OwnerKind = iota
	// OwnerDefaultHolder generates into an interface's default-body
	// holder class.
	OwnerDefaultHolder
	// OwnerNamespaceFacade generates into a namespace facade class.
	OwnerNamespaceFacade
	// OwnerStaticDelegate generates a static delegate of an instance
	// member.
	OwnerStaticDelegate
)

func (k OwnerKind) String() string {
	switch k {
	case OwnerImplementation:
		return "implementation"
	case OwnerDefaultHolder:
		return "default holder"
	case OwnerNamespaceFacade:
		return "namespace facade"
	case OwnerStaticDelegate:
		return "static delegate"
	}
	return "owner?"
}

func ownerKindMode(k OwnerKind) (Mode, error) {
	switch k {
	case OwnerImplementation, OwnerNamespaceFacade, OwnerStaticDelegate:
		return ImplementationMode, nil
	case OwnerDefaultHolder:
		return DefaultImplMode, nil
	default:
		return 0, descriptors.Internalf("unknown owner kind %d", k)
	}
}

// DispatchKind is the call instruction family a resolved invocation uses.
type DispatchKind uint8

const (
	DispatchStatic DispatchKind = iota
	DispatchSpecial
	DispatchVirtual
	DispatchInterface
)

func (k DispatchKind) String() string {
	switch k {
	case DispatchStatic:
		return "static"
	case DispatchSpecial:
		return "special"
	case DispatchVirtual:
		return "virtual"
	case DispatchInterface:
		return "interface"
	}
	return "dispatch?"
}

// InvocationRecipe is everything a call site needs: the class to name in
// the instruction, the signature, the dispatch kind, and the owners used
// when redirecting to default-parameter or default-body variants.
type InvocationRecipe struct {
	Owner                names.ClassName
	OwnerForDefaultParam names.ClassName
	OwnerForDefaultImpl  names.ClassName
	Signature            names.MethodSignature
	Dispatch             DispatchKind
	ThisClass            *names.ClassName
	ReceiverType         *names.PhysicalType
}

// ResolveInvocation resolves a call to a callable. superCall marks an
// explicit super-qualified call, insideClass marks a call site lexically
// inside the owner class, insideModule marks a target within the module
// being compiled, and kind names the class the call site is generated
// into.
func (m *Mapper) ResolveInvocation(id descriptors.CallableID, superCall, insideClass, insideModule bool, kind OwnerKind) (InvocationRecipe, error) {
	declID := m.graph.Original(id)
	decl := m.graph.Callable(declID)

	if decl.Kind == descriptors.Constructor {
		return m.MapToConstructorInvocation(declID)
	}

	sig, err := m.MapSignature(declID, true, kind)
	if err != nil {
		return InvocationRecipe{}, err
	}

	switch owner := decl.Owner.(type) {
	case descriptors.NamespaceOwner:
		if superCall {
			return InvocationRecipe{}, descriptors.Internalf("super-call to namespace member %s", decl.Name)
		}
		name, err := m.ClassNameForNamespace(owner.Namespace, declID, insideModule)
		if err != nil {
			return InvocationRecipe{}, err
		}
		recipe := InvocationRecipe{
			Owner:                name,
			OwnerForDefaultParam: name,
			OwnerForDefaultImpl:  name,
			Signature:            sig,
			Dispatch:             DispatchStatic,
		}
		return m.withReceiver(recipe, decl)

	case descriptors.ScriptOwner:
		name, err := m.ClassNameForScript(owner.Script)
		if err != nil {
			return InvocationRecipe{}, err
		}
		recipe := InvocationRecipe{
			Owner:                name,
			OwnerForDefaultParam: name,
			OwnerForDefaultImpl:  name,
			Signature:            sig,
			Dispatch:             DispatchVirtual,
			ThisClass:            &name,
		}
		return m.withReceiver(recipe, decl)

	case descriptors.ClassOwner:
		return m.resolveClassMember(declID, decl, owner.Class, sig, superCall, insideClass)

	case descriptors.CallableOwner:
		return InvocationRecipe{}, descriptors.Internalf("direct call to local function %s must go through its closure class", decl.Name)

	default:
		return InvocationRecipe{}, descriptors.Internalf("callable %s has an unresolvable owner", decl.Name)
	}
}

func (m *Mapper) resolveClassMember(declID descriptors.CallableID, decl *descriptors.Callable, ownerClass descriptors.ClassID, sig names.MethodSignature, superCall, insideClass bool) (InvocationRecipe, error) {
	rootID := m.overrideRoot(declID)
	rootOwner, ok := m.ownerClassOf(rootID)
	if !ok {
		return InvocationRecipe{}, descriptors.Internalf("override root of %s is not a class member", decl.Name)
	}

	currentIsInterface := m.graph.Class(ownerClass).Kind == descriptors.KindInterface
	rootIsInterface := m.graph.Class(rootOwner).Kind == descriptors.KindInterface

	// An inherited interface member called through a class dispatches on
	// the introducing class, not the interface the override chain passed
	// through.
	receiverClass := ownerClass
	if currentIsInterface && !rootIsInterface {
		receiverClass = rootOwner
	}
	isInterfaceCall := currentIsInterface && rootIsInterface

	ownerPT, err := m.MapType(m.graph.DefaultType(receiverClass), nil, BoundMode, descriptors.Invariant, false)
	if err != nil {
		return InvocationRecipe{}, err
	}
	ownerName, err := objectClassName(ownerPT, "dispatch owner")
	if err != nil {
		return InvocationRecipe{}, err
	}

	rootPT, err := m.MapType(m.graph.DefaultType(rootOwner), nil, BoundMode, descriptors.Invariant, false)
	if err != nil {
		return InvocationRecipe{}, err
	}
	ownerForDefaultParam, err := objectClassName(rootPT, "default-parameter owner")
	if err != nil {
		return InvocationRecipe{}, err
	}
	ownerForDefaultImpl := ownerForDefaultParam
	if rootIsInterface {
		ownerForDefaultImpl = ownerForDefaultParam.WithSuffix(names.DefaultsSuffix)
	}

	var dispatch DispatchKind
	switch {
	case isInterfaceCall && superCall:
		dispatch = DispatchStatic
	case isInterfaceCall:
		dispatch = DispatchInterface
	case decl.SyntheticAccessor:
		dispatch = DispatchStatic
	case superCall || (insideClass && decl.Visibility == descriptors.Private):
		dispatch = DispatchSpecial
	default:
		dispatch = DispatchVirtual
	}

	if isInterfaceCall && superCall {
		// A super-qualified interface call lands on the static default
		// body, which takes the instance as an explicit first parameter.
		sig, err = m.MapSignature(declID, false, OwnerDefaultHolder)
		if err != nil {
			return InvocationRecipe{}, err
		}
		ownerName = ownerName.WithSuffix(names.DefaultsSuffix)
	}

	thisPT, err := m.MapType(m.graph.DefaultType(receiverClass), nil, ValueMode, descriptors.Invariant, false)
	if err != nil {
		return InvocationRecipe{}, err
	}
	thisName, err := objectClassName(thisPT, "this class")
	if err != nil {
		return InvocationRecipe{}, err
	}

	recipe := InvocationRecipe{
		Owner:                ownerName,
		OwnerForDefaultParam: ownerForDefaultParam,
		OwnerForDefaultImpl:  ownerForDefaultImpl,
		Signature:            sig,
		Dispatch:             dispatch,
		ThisClass:            &thisName,
	}
	return m.withReceiver(recipe, decl)
}

func (m *Mapper) withReceiver(recipe InvocationRecipe, decl *descriptors.Callable) (InvocationRecipe, error) {
	if decl.Receiver == nil {
		return recipe, nil
	}
	pt, err := m.MapType(*decl.Receiver, nil, ValueMode, descriptors.Invariant, false)
	if err != nil {
		return InvocationRecipe{}, err
	}
	recipe.ReceiverType = &pt
	return recipe, nil
}

// overrideRoot follows override edges to the member that introduced the
// signature. When several direct ancestors exist, a class-kind introducer
// is preferred over an interface-kind one; ties fall to declaration
// order.
func (m *Mapper) overrideRoot(id descriptors.CallableID) descriptors.CallableID {
	for {
		overridden := m.graph.Callable(id).Overridden
		if len(overridden) == 0 {
			return id
		}
		next := overridden[0]
		for _, cand := range overridden {
			owner, ok := m.ownerClassOf(cand)
			if ok && m.graph.Class(owner).Kind != descriptors.KindInterface {
				next = cand
				break
			}
		}
		id = next
	}
}

func (m *Mapper) ownerClassOf(id descriptors.CallableID) (descriptors.ClassID, bool) {
	owner, ok := m.graph.Callable(id).Owner.(descriptors.ClassOwner)
	if !ok {
		return descriptors.NoClass, false
	}
	return owner.Class, true
}

func objectClassName(pt names.PhysicalType, what string) (names.ClassName, error) {
	name, err := names.ByType(pt)
	if err != nil {
		return names.ClassName{}, descriptors.Internalf("%s mapped to non-object type %s", what, pt.Descriptor())
	}
	return name, nil
}

// MapSignature builds the physical signature of a function or accessor.
// needGeneric requests the rich signature; generating into a default
// holder always suppresses it, because the extra instance parameter has
// no generic-side counterpart.
func (m *Mapper) MapSignature(id descriptors.CallableID, needGeneric bool, kind OwnerKind) (names.MethodSignature, error) {
	f := m.graph.Callable(id)
	if f.Kind == descriptors.Constructor {
		return m.ConstructorSignature(id)
	}
	if kind == OwnerDefaultHolder {
		needGeneric = false
	}

	w := names.NewMethodWriter(needGeneric)
	if err := m.writeFormalTypeParams(f.TypeParams, w); err != nil {
		return names.MethodSignature{}, err
	}
	w.BeginParams()
	if err := m.writeDispatchThis(f, kind, w); err != nil {
		return names.MethodSignature{}, err
	}
	if f.Receiver != nil {
		w.BeginParam(names.ParamReceiver)
		if _, err := m.MapType(*f.Receiver, w, ValueMode, descriptors.Invariant, false); err != nil {
			return names.MethodSignature{}, err
		}
		w.EndParam()
	}
	for _, p := range f.Params {
		w.BeginParam(names.ParamValue)
		if _, err := m.MapType(p.Type, w, ValueMode, descriptors.Invariant, false); err != nil {
			return names.MethodSignature{}, err
		}
		w.EndParam()
	}
	w.EndParams()

	if f.Return == nil {
		return names.MethodSignature{}, descriptors.Internalf("callable %s has no return type", f.Name)
	}
	w.BeginReturn()
	if _, err := m.MapReturnType(*f.Return, w); err != nil {
		return names.MethodSignature{}, err
	}
	w.EndReturn()

	return w.Finish(m.physicalMethodName(f))
}

// writeDispatchThis adds the explicit instance parameter for signatures
// hoisted out of their instance context: default-holder bodies and
// synthetic accessors both take the owner instance first.
func (m *Mapper) writeDispatchThis(f *descriptors.Callable, kind OwnerKind, w *names.SignatureWriter) error {
	needsThis := kind == OwnerDefaultHolder || f.SyntheticAccessor
	if !needsThis {
		return nil
	}
	owner, ok := f.Owner.(descriptors.ClassOwner)
	if !ok {
		return descriptors.Internalf("callable %s needs an instance parameter but is not a class member", f.Name)
	}
	w.BeginParam(names.ParamThis)
	if _, err := m.MapType(m.graph.DefaultType(owner.Class), w, ValueMode, descriptors.Invariant, false); err != nil {
		return err
	}
	w.EndParam()
	return nil
}

// physicalMethodName names a callable in the output: accessors get the
// get/set prefix, except on annotation classes where the member keeps the
// property's bare name.
func (m *Mapper) physicalMethodName(f *descriptors.Callable) string {
	if f.Kind != descriptors.Getter && f.Kind != descriptors.Setter {
		return f.Name
	}
	property := f.Property
	if property == "" {
		property = f.Name
	}
	if owner, ok := f.Owner.(descriptors.ClassOwner); ok {
		if m.graph.Class(owner.Class).Kind == descriptors.KindAnnotation {
			return property
		}
	}
	if f.Kind == descriptors.Getter {
		return "get" + capitalize(property)
	}
	return "set" + capitalize(property)
}

// MapFieldSignature renders the generic field signature for a property's
// backing field, or "" when the erased descriptor says it all.
func (m *Mapper) MapFieldSignature(t descriptors.SemanticType) (string, error) {
	w := names.NewTypeWriter(true)
	if _, err := m.MapType(t, w, ValueMode, descriptors.Invariant, false); err != nil {
		return "", err
	}
	return w.FinishField()
}

// Owner names the class a member is generated into for the given kind.
func (m *Mapper) Owner(id descriptors.CallableID, kind OwnerKind, insideModule bool) (names.ClassName, error) {
	mode, err := ownerKindMode(kind)
	if err != nil {
		return names.ClassName{}, err
	}
	f := m.graph.Callable(id)
	switch owner := f.Owner.(type) {
	case descriptors.NamespaceOwner:
		return m.ClassNameForNamespace(owner.Namespace, id, insideModule)
	case descriptors.ScriptOwner:
		return m.ClassNameForScript(owner.Script)
	case descriptors.ClassOwner:
		if m.graph.Class(owner.Class).Kind == descriptors.KindObject {
			mode = ImplementationMode
		}
		pt, err := m.MapType(m.graph.DefaultType(owner.Class), nil, mode, descriptors.Invariant, false)
		if err != nil {
			return names.ClassName{}, err
		}
		return objectClassName(pt, "member owner")
	default:
		return names.ClassName{}, descriptors.Internalf("no owner class for %s", f.Name)
	}
}

// MapToClosureInvoke resolves the erased invoke call on a function
// value: the owner is the arity's function interface and every slot is
// the root object type.
func (m *Mapper) MapToClosureInvoke(id descriptors.CallableID) (InvocationRecipe, error) {
	f := m.graph.Callable(m.graph.Original(id))
	arity := len(f.Params)
	if f.Receiver != nil {
		arity++
	}
	owner := names.FunctionClass(arity)

	w := names.NewMethodWriter(false)
	w.BeginParams()
	for i := 0; i < arity; i++ {
		w.BeginParam(names.ParamValue)
		w.WriteType(names.RootObjectType, false)
		w.EndParam()
	}
	w.EndParams()
	w.BeginReturn()
	w.WriteType(names.RootObjectType, true)
	w.EndReturn()
	sig, err := w.Finish("invoke")
	if err != nil {
		return InvocationRecipe{}, err
	}

	recipe := InvocationRecipe{
		Owner:     owner,
		Signature: sig,
		Dispatch:  DispatchInterface,
		ThisClass: &owner,
	}
	return m.withReceiver(recipe, f)
}
