package typemap

import (
	"calyx/compiler-go/pkg/descriptors"
	"calyx/compiler-go/pkg/names"
)

// ConstructorSignature builds a constructor's physical signature using
// the closure recorded for its class, if any.
func (m *Mapper) ConstructorSignature(id descriptors.CallableID) (names.MethodSignature, error) {
	ctorID := m.graph.Original(id)
	ctor := m.graph.Callable(ctorID)
	owner, ok := ctor.Owner.(descriptors.ClassOwner)
	if !ok {
		return names.MethodSignature{}, descriptors.Internalf("constructor %s is not owned by a class", ctor.Name)
	}
	var closure *descriptors.Closure
	if c, recorded := m.graph.Closure(owner.Class); recorded {
		closure = &c
	}
	return m.MapConstructorSignature(ctorID, closure)
}

// MapConstructorSignature lowers a constructor. Synthetic parameters come
// first in a fixed order: captured outer instance, captured receiver,
// enum name and ordinal, captured variables and local functions, echoed
// super-call arguments for anonymous subclasses; declared parameters
// follow.
func (m *Mapper) MapConstructorSignature(id descriptors.CallableID, closure *descriptors.Closure) (names.MethodSignature, error) {
	ctor := m.graph.Callable(m.graph.Original(id))
	if ctor.Kind != descriptors.Constructor {
		return names.MethodSignature{}, descriptors.Internalf("%s is not a constructor", ctor.Name)
	}
	owner, ok := ctor.Owner.(descriptors.ClassOwner)
	if !ok {
		return names.MethodSignature{}, descriptors.Internalf("constructor %s is not owned by a class", ctor.Name)
	}
	cls := m.graph.Class(owner.Class)

	w := names.NewMethodWriter(true)
	w.BeginParams()

	if closure != nil && closure.CapturedOuter != descriptors.NoClass {
		w.BeginParam(names.ParamOuter)
		if _, err := m.MapType(m.graph.DefaultType(closure.CapturedOuter), w, ValueMode, descriptors.Invariant, false); err != nil {
			return names.MethodSignature{}, err
		}
		w.EndParam()
	}
	if closure != nil && closure.CapturedReceiver != descriptors.NoClass {
		w.BeginParam(names.ParamReceiver)
		if _, err := m.MapType(m.graph.DefaultType(closure.CapturedReceiver), w, ValueMode, descriptors.Invariant, false); err != nil {
			return names.MethodSignature{}, err
		}
		w.EndParam()
	}

	if cls.Kind == descriptors.KindEnum || cls.Kind == descriptors.KindEnumEntry {
		w.BeginParam(names.ParamEnumName)
		w.WriteType(names.TextType, false)
		w.EndParam()
		w.BeginParam(names.ParamEnumOrdinal)
		w.WriteType(names.Int32Type, false)
		w.EndParam()
	}

	if closure != nil {
		for _, capture := range closure.Captures {
			pt, err := m.captureType(capture)
			if err != nil {
				return names.MethodSignature{}, err
			}
			w.BeginParam(names.ParamSharedVar)
			w.WriteType(pt, false)
			w.EndParam()
		}
		if closure.SuperCall != nil && cls.Anonymous {
			superSig, err := m.ConstructorSignature(closure.SuperCall.Constructor)
			if err != nil {
				return names.MethodSignature{}, err
			}
			for _, p := range superSig.Params {
				w.BeginParam(names.ParamSuperCall)
				w.WriteType(p.Type, false)
				w.EndParam()
			}
		}
	}

	for _, p := range ctor.Params {
		w.BeginParam(names.ParamValue)
		if _, err := m.MapType(p.Type, w, ValueMode, descriptors.Invariant, false); err != nil {
			return names.MethodSignature{}, err
		}
		w.EndParam()
	}
	w.EndParams()
	w.WriteVoidReturn()

	return w.Finish("<init>")
}

// captureType is the physical slot type of one closure capture: values
// keep their own type, boxed variables ride in the matching shared ref,
// local functions pass as their synthesized class.
func (m *Mapper) captureType(capture descriptors.Capture) (names.PhysicalType, error) {
	switch capture.Kind {
	case descriptors.CaptureValue:
		return m.MapType(capture.Type, nil, ValueMode, descriptors.Invariant, false)
	case descriptors.CaptureBoxed:
		base, err := m.MapType(capture.Type, nil, ValueMode, descriptors.Invariant, false)
		if err != nil {
			return names.PhysicalType{}, err
		}
		return names.SharedRefType(base), nil
	case descriptors.CaptureLocalFunction:
		internal, ok := m.graph.LocalFunctionClassName(capture.Function)
		if !ok {
			return names.PhysicalType{}, descriptors.Internalf("captured local function %s has no synthesized class", capture.Name)
		}
		return names.ObjectType(internal), nil
	default:
		return names.PhysicalType{}, descriptors.Internalf("unknown capture kind for %s", capture.Name)
	}
}

// MapToConstructorInvocation resolves a constructor call.
func (m *Mapper) MapToConstructorInvocation(id descriptors.CallableID) (InvocationRecipe, error) {
	ctorID := m.graph.Original(id)
	ctor := m.graph.Callable(ctorID)
	owner, ok := ctor.Owner.(descriptors.ClassOwner)
	if !ok {
		return InvocationRecipe{}, descriptors.Internalf("constructor %s is not owned by a class", ctor.Name)
	}
	sig, err := m.ConstructorSignature(ctorID)
	if err != nil {
		return InvocationRecipe{}, err
	}
	pt, err := m.MapType(m.graph.DefaultType(owner.Class), nil, ImplementationMode, descriptors.Invariant, false)
	if err != nil {
		return InvocationRecipe{}, err
	}
	name, err := objectClassName(pt, "constructed class")
	if err != nil {
		return InvocationRecipe{}, err
	}
	return InvocationRecipe{
		Owner:                name,
		OwnerForDefaultParam: name,
		OwnerForDefaultImpl:  name,
		Signature:            sig,
		Dispatch:             DispatchSpecial,
	}, nil
}

// MapScriptSignature builds the constructor of a script's instance
// class: one parameter per imported script instance, then the script's
// declared parameters.
func (m *Mapper) MapScriptSignature(imports []descriptors.ScriptID, params []descriptors.ValueParam) (names.MethodSignature, error) {
	w := names.NewMethodWriter(false)
	w.BeginParams()
	for _, imported := range imports {
		name, err := m.ClassNameForScript(imported)
		if err != nil {
			return names.MethodSignature{}, err
		}
		w.BeginParam(names.ParamValue)
		w.WriteType(name.Type(), false)
		w.EndParam()
	}
	for _, p := range params {
		w.BeginParam(names.ParamValue)
		if _, err := m.MapType(p.Type, w, ValueMode, descriptors.Invariant, false); err != nil {
			return names.MethodSignature{}, err
		}
		w.EndParam()
	}
	w.EndParams()
	w.WriteVoidReturn()
	return w.Finish("<init>")
}
