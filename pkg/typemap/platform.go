package typemap

import "calyx/compiler-go/pkg/names"

// Fully qualified names of the builtin classifiers the mapper treats
// specially. They are the semantic-side names; the platform decides what
// they become physically.
const (
	builtinArrayFQ   = "calyx.lang.Array"
	builtinUnitFQ    = "calyx.lang.Unit"
	builtinNothingFQ = "calyx.lang.Nothing"
)

// Platform is the immutable table of builtin classifier aliases: which
// source-language builtins lower to which physical types. It is safe for
// concurrent use once built.
type Platform struct {
	aliases map[string]names.PhysicalType
}

// NewPlatform builds a platform from an alias table keyed by fully
// qualified builtin name.
func NewPlatform(aliases map[string]names.PhysicalType) *Platform {
	copied := make(map[string]names.PhysicalType, len(aliases))
	for fq, t := range aliases {
		copied[fq] = t
	}
	return &Platform{aliases: copied}
}

// Alias reports the physical type a builtin classifier lowers to, if any.
func (p *Platform) Alias(fq string) (names.PhysicalType, bool) {
	t, ok := p.aliases[fq]
	return t, ok
}

// DefaultPlatform is the stock alias table for the CVM target: value
// builtins lower to primitives, Text and the root type to their runtime
// classes. Array is intentionally absent; arrays are handled structurally.
func DefaultPlatform() *Platform {
	return NewPlatform(map[string]names.PhysicalType{
		"calyx.lang.Any":     names.RootObjectType,
		"calyx.lang.Unit":    names.ObjectType("cvm/lang/Unit"),
		"calyx.lang.Nothing": names.ObjectType("cvm/lang/Nothing"),
		"calyx.lang.Bool":    names.BoolType,
		"calyx.lang.Char":    names.CharType,
		"calyx.lang.Int8":    names.Int8Type,
		"calyx.lang.Int16":   names.Int16Type,
		"calyx.lang.Int":     names.Int32Type,
		"calyx.lang.Int64":   names.Int64Type,
		"calyx.lang.Float32": names.Float32Type,
		"calyx.lang.Float":   names.Float64Type,
		"calyx.lang.Text":    names.TextType,
	})
}
