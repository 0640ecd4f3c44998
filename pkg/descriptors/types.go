package descriptors

// TypeRef identifies the constructor of a semantic type. The variants are a
// closed set; resolvers type-switch over them and treat anything else as an
// internal fault.
type TypeRef interface {
	typeRef()
}

// ClassRef points at a class or interface in the graph.
type ClassRef struct {
	Class ClassID
}

func (ClassRef) typeRef() {}

// ParamRef points at a type parameter.
type ParamRef struct {
	Param TypeParamID
}

func (ParamRef) typeRef() {}

// IntersectionRef holds the supertypes of an intersection type. Mapping
// resolves it to the common supertype of its members first.
type IntersectionRef struct {
	Members []SemanticType
}

func (IntersectionRef) typeRef() {}

// ErrorRef marks an unresolved or erroneous type surviving from earlier
// stages. Only the signatures-only diagnostic mode tolerates it.
type ErrorRef struct {
	Presentation string
}

func (ErrorRef) typeRef() {}

// TypeProjection is one use-site type argument.
type TypeProjection struct {
	Variance Variance
	Type     SemanticType
}

// SemanticType is a fully resolved source-language type: a constructor
// reference, a nullability flag, and ordered type-argument projections.
// Values are immutable once built.
type SemanticType struct {
	Ref      TypeRef
	Nullable bool
	Args     []TypeProjection
}

// ClassType builds a non-nullable applied class type.
func ClassType(id ClassID, args ...TypeProjection) SemanticType {
	return SemanticType{Ref: ClassRef{Class: id}, Args: args}
}

// ParamType builds a reference to a type parameter.
func ParamType(id TypeParamID) SemanticType {
	return SemanticType{Ref: ParamRef{Param: id}}
}

// Nullable returns a nullable copy of t.
func Nullable(t SemanticType) SemanticType {
	t.Nullable = true
	return t
}

// Invariantly wraps a type as an invariant projection.
func Invariantly(t SemanticType) TypeProjection {
	return TypeProjection{Variance: Invariant, Type: t}
}

// Projected wraps a type as a projection with explicit use-site variance.
func Projected(v Variance, t SemanticType) TypeProjection {
	return TypeProjection{Variance: v, Type: t}
}
