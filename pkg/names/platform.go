package names

import "fmt"

// Fixed platform names the backend emits. These are part of the emitted ABI
// and must never drift between compilations.

const (
	// DefaultsSuffix marks the side class holding an interface's default
	// method bodies.
	DefaultsSuffix = "$Defaults"

	rootObjectInternal = "cvm/lang/Object"
	textInternal       = "cvm/lang/Text"
	unresolvedInternal = "error/Unresolved"
)

var (
	// RootObjectType is the platform's root reference type.
	RootObjectType = ObjectType(rootObjectInternal)
	// TextType is the platform string class.
	TextType = ObjectType(textInternal)
	// GenericArrayType is the degraded representation of an array whose
	// element type is a type parameter.
	GenericArrayType = ArrayOf(RootObjectType)
	// UnresolvedType is the placeholder emitted for error types in
	// signatures-only mode.
	UnresolvedType = ObjectType(unresolvedInternal)
)

var boxedTypes = map[Sort]PhysicalType{
	SortVoid:    ObjectType("cvm/lang/Unit"),
	SortBool:    ObjectType("cvm/lang/Bool"),
	SortChar:    ObjectType("cvm/lang/Char"),
	SortInt8:    ObjectType("cvm/lang/Int8"),
	SortInt16:   ObjectType("cvm/lang/Int16"),
	SortInt32:   ObjectType("cvm/lang/Int32"),
	SortInt64:   ObjectType("cvm/lang/Int64"),
	SortFloat32: ObjectType("cvm/lang/Float32"),
	SortFloat64: ObjectType("cvm/lang/Float64"),
}

// Boxed returns the reference type standing in for a primitive in generic
// positions; reference types pass through unchanged.
func Boxed(t PhysicalType) PhysicalType {
	if boxed, ok := boxedTypes[t.sort]; ok {
		return boxed
	}
	return t
}

var sharedRefTypes = map[Sort]PhysicalType{
	SortBool:    ObjectType("cvm/run/BoolRef"),
	SortChar:    ObjectType("cvm/run/CharRef"),
	SortInt8:    ObjectType("cvm/run/Int8Ref"),
	SortInt16:   ObjectType("cvm/run/Int16Ref"),
	SortInt32:   ObjectType("cvm/run/Int32Ref"),
	SortInt64:   ObjectType("cvm/run/Int64Ref"),
	SortFloat32: ObjectType("cvm/run/Float32Ref"),
	SortFloat64: ObjectType("cvm/run/Float64Ref"),
}

// SharedRefType returns the reference-cell class used to share a mutably
// captured variable of the given type.
func SharedRefType(t PhysicalType) PhysicalType {
	if ref, ok := sharedRefTypes[t.sort]; ok {
		return ref
	}
	return ObjectType("cvm/run/ObjectRef")
}

// FunctionClass names the platform interface implemented by function values
// of the given arity.
func FunctionClass(arity int) ClassName {
	return ByInternalName(fmt.Sprintf("cvm/lang/Function%d", arity))
}
