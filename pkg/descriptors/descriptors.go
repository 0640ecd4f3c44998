package descriptors

// Variance describes declaration-site or use-site variance of a type position.
type Variance uint8

const (
	Invariant Variance = iota
	In
	Out
)

func (v Variance) String() string {
	switch v {
	case Invariant:
		return "invariant"
	case In:
		return "in"
	case Out:
		return "out"
	}
	return "variance?"
}

// ClassKind distinguishes the classifier flavours the backend cares about.
type ClassKind uint8

const (
	KindClass ClassKind = iota
	KindInterface
	KindObject
	KindEnum
	KindAnnotation
	KindEnumEntry
)

func (k ClassKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindObject:
		return "object"
	case KindEnum:
		return "enum"
	case KindAnnotation:
		return "annotation"
	case KindEnumEntry:
		return "enum entry"
	}
	return "class kind?"
}

// CallableKind distinguishes callable declarations.
type CallableKind uint8

const (
	Function CallableKind = iota
	Constructor
	Getter
	Setter
)

func (k CallableKind) String() string {
	switch k {
	case Function:
		return "function"
	case Constructor:
		return "constructor"
	case Getter:
		return "getter"
	case Setter:
		return "setter"
	}
	return "callable kind?"
}

// Visibility carries the source-level visibility of a declaration. The two
// protected flavours exist because foreign declarations can arrive with a
// platform visibility the source language cannot spell.
type Visibility uint8

const (
	Public Visibility = iota
	Internal
	Protected
	ProtectedStatic
	ProtectedAndPackage
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Internal:
		return "internal"
	case Protected:
		return "protected"
	case ProtectedStatic:
		return "protected-static"
	case ProtectedAndPackage:
		return "protected-and-package"
	case Private:
		return "private"
	}
	return "visibility?"
}
