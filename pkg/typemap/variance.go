package typemap

import (
	"calyx/compiler-go/pkg/descriptors"
	"calyx/compiler-go/pkg/names"
)

// EffectiveVariance combines a classifier's declared variance, a use-site
// projection, and the variance of the surrounding position into the
// variance actually written for one type argument:
//
//	declared/projection agree    -> that variance
//	exactly one is invariant     -> the other one
//	declared and projection clash -> Out
//
// An Out surrounding position wins outright: the projection is written
// as-is, because a covariant slot already erases the distinction.
func EffectiveVariance(declared, projection, use descriptors.Variance) descriptors.Variance {
	if use == descriptors.Out {
		return projection
	}
	if declared == projection {
		return declared
	}
	if projection == descriptors.Invariant {
		return declared
	}
	if declared == descriptors.Invariant {
		return projection
	}
	return descriptors.Out
}

func wildcardFor(v descriptors.Variance) names.Wildcard {
	switch v {
	case descriptors.Out:
		return names.Extends
	case descriptors.In:
		return names.Super
	default:
		return names.NoWildcard
	}
}
