package names

import "calyx/compiler-go/pkg/descriptors"

// internalf raises the shared internal-fault error so callers can test all
// backend invariant violations against descriptors.ErrInternal.
func internalf(format string, args ...any) error {
	return descriptors.Internalf(format, args...)
}
