package names

import "fmt"

// ClassName is a fully qualified physical class name. The internal form uses
// `/` between packages and `$` before nested or synthetic parts; descriptor
// and object-type views are derived.
type ClassName struct {
	internal string
}

// ByInternalName wraps an internal name.
func ByInternalName(internal string) ClassName {
	return ClassName{internal: internal}
}

// ByType converts an object physical type back into a class name.
func ByType(t PhysicalType) (ClassName, error) {
	if t.sort != SortObject {
		return ClassName{}, fmt.Errorf("names: %s is not an object type", t.desc)
	}
	return ClassName{internal: t.InternalName()}, nil
}

func (n ClassName) Internal() string   { return n.internal }
func (n ClassName) Descriptor() string { return "L" + n.internal + ";" }
func (n ClassName) Type() PhysicalType { return ObjectType(n.internal) }
func (n ClassName) String() string     { return n.internal }

// WithSuffix appends a synthetic-part suffix to the internal name.
func (n ClassName) WithSuffix(suffix string) ClassName {
	return ClassName{internal: n.internal + suffix}
}
