package typemap

import (
	"calyx/compiler-go/pkg/descriptors"
	"calyx/compiler-go/pkg/names"
)

// writeFormalTypeParams renders declared type parameters and their
// bounds. The first class-kind bound becomes the class bound; interface
// bounds and type-variable bounds follow as interface bounds, matching
// how the target grammar splits them.
func (m *Mapper) writeFormalTypeParams(params []descriptors.TypeParamID, w *names.SignatureWriter) error {
	w.BeginFormalParams()
	for _, pid := range params {
		p := m.graph.TypeParam(pid)
		w.BeginFormalParam(p.Name)

		wroteClassBound := false
		w.BeginClassBound()
		for _, bound := range p.Bounds {
			if !m.isClassKindBound(bound) {
				continue
			}
			if _, err := m.MapType(bound, w, BoundMode, descriptors.Invariant, false); err != nil {
				return err
			}
			wroteClassBound = true
			break
		}
		if !wroteClassBound && len(p.Bounds) == 0 {
			w.WriteType(names.RootObjectType, false)
		}
		w.EndClassBound()

		for _, bound := range p.Bounds {
			if m.isClassKindBound(bound) {
				continue
			}
			w.BeginInterfaceBound()
			if _, err := m.MapType(bound, w, BoundMode, descriptors.Invariant, false); err != nil {
				return err
			}
			w.EndInterfaceBound()
		}
		w.EndFormalParam()
	}
	w.EndFormalParams()
	return nil
}

func (m *Mapper) isClassKindBound(bound descriptors.SemanticType) bool {
	ref, ok := bound.Ref.(descriptors.ClassRef)
	if !ok {
		return false
	}
	kind := m.graph.Class(ref.Class).Kind
	return kind != descriptors.KindInterface && kind != descriptors.KindAnnotation
}
