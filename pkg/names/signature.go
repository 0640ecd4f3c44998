package names

import "strings"

// ParamKind tags the role of a physical method parameter. Synthetic
// parameters (outer instance, captured receiver, enum name/ordinal, shared
// variables, echoed super-call arguments) are distinguished so downstream
// emission can treat them specially.
type ParamKind uint8

const (
	ParamValue ParamKind = iota
	ParamThis
	ParamReceiver
	ParamOuter
	ParamEnumName
	ParamEnumOrdinal
	ParamSharedVar
	ParamSuperCall
)

// Param is one physical parameter of a method signature.
type Param struct {
	Kind ParamKind
	Type PhysicalType
}

// MethodSignature is the complete physical signature of a method: erased
// descriptor, optional generic signature, and the parameter layout.
type MethodSignature struct {
	Name    string
	Desc    string
	Generic string
	Params  []Param
	Return  PhysicalType
}

func (s MethodSignature) String() string { return s.Name + s.Desc }

// Wildcard is a use-site wildcard marker in the generic signature grammar.
type Wildcard uint8

const (
	NoWildcard Wildcard = iota
	Extends
	Super
)

type scopeTok uint8

const (
	scFormals scopeTok = iota
	scFormal
	scClassBound
	scIfaceBound
	scParams
	scParam
	scReturn
	scClass
	scArg
	scArray
	scField
)

func (s scopeTok) String() string {
	switch s {
	case scFormals:
		return "formal type parameters"
	case scFormal:
		return "formal type parameter"
	case scClassBound:
		return "class bound"
	case scIfaceBound:
		return "interface bound"
	case scParams:
		return "parameters"
	case scParam:
		return "parameter"
	case scReturn:
		return "return type"
	case scClass:
		return "class type"
	case scArg:
		return "type argument"
	case scArray:
		return "array type"
	case scField:
		return "field type"
	}
	return "scope?"
}

const (
	phaseStart = iota
	phaseFormals
	phaseAfterFormals
	phaseParams
	phaseAfterParams
	phaseDone
)

// SignatureWriter emits an erased method descriptor and, when enabled, the
// rich generic signature in lockstep. Calls must follow the fixed scope
// order (formal type parameters, then parameters, then return type) with
// balanced begin/end markers; any violation is recorded as a sticky
// internal fault and surfaced by Finish. Misuse is a compiler bug, never a
// user-facing diagnostic.
type SignatureWriter struct {
	generic bool
	field   bool

	desc strings.Builder
	sig  strings.Builder

	scopes      []scopeTok
	classAngles []bool
	depth       int
	phase       int

	params      []Param
	pendingKind ParamKind
	slotOpen    bool
	ret         PhysicalType
	retSet      bool

	wroteFormal bool
	hasGenerics bool
	fault       error
}

// NewMethodWriter returns a writer for a method signature. When generic is
// false the rich signature output is suppressed entirely.
func NewMethodWriter(generic bool) *SignatureWriter {
	return &SignatureWriter{generic: generic}
}

// NewTypeWriter returns a writer accepting a single type, used for field
// signatures.
func NewTypeWriter(generic bool) *SignatureWriter {
	w := &SignatureWriter{generic: generic, field: true}
	w.scopes = append(w.scopes, scField)
	return w
}

func (w *SignatureWriter) failf(format string, args ...any) {
	if w.fault == nil {
		w.fault = internalf(format, args...)
	}
}

func (w *SignatureWriter) push(s scopeTok) {
	w.scopes = append(w.scopes, s)
}

func (w *SignatureWriter) pop(expected scopeTok) bool {
	if w.fault != nil {
		return false
	}
	if len(w.scopes) == 0 {
		w.failf("closing %s with no open scope", expected)
		return false
	}
	top := w.scopes[len(w.scopes)-1]
	if top != expected {
		w.failf("closing %s while inside %s", expected, top)
		return false
	}
	w.scopes = w.scopes[:len(w.scopes)-1]
	return true
}

func (w *SignatureWriter) top() (scopeTok, bool) {
	if len(w.scopes) == 0 {
		return 0, false
	}
	return w.scopes[len(w.scopes)-1], true
}

func (w *SignatureWriter) requireTop(expected scopeTok, op string) bool {
	if w.fault != nil {
		return false
	}
	top, ok := w.top()
	if !ok || top != expected {
		w.failf("%s outside %s", op, expected)
		return false
	}
	return true
}

// recordErased routes a top-level type write into the erased descriptor and
// the parameter/return bookkeeping. Writes nested inside type arguments,
// array elements, or bounds never reach the erased output.
func (w *SignatureWriter) recordErased(t PhysicalType) {
	if w.fault != nil || w.depth > 0 {
		return
	}
	top, ok := w.top()
	if !ok {
		w.failf("type written with no open scope")
		return
	}
	switch top {
	case scParam:
		if !w.slotOpen {
			w.failf("second top-level type in one parameter")
			return
		}
		w.desc.WriteString(t.Descriptor())
		w.params = append(w.params, Param{Kind: w.pendingKind, Type: t})
		w.slotOpen = false
	case scReturn:
		if w.retSet {
			w.failf("second top-level return type")
			return
		}
		w.desc.WriteString(t.Descriptor())
		w.ret = t
		w.retSet = true
	case scField:
		if w.retSet {
			w.failf("second top-level field type")
			return
		}
		w.ret = t
		w.retSet = true
	}
}

// BeginFormalParams opens the formal-type-parameter section. The `<...>`
// wrapper is only emitted if at least one formal parameter is written.
func (w *SignatureWriter) BeginFormalParams() {
	if w.fault != nil {
		return
	}
	if w.field || w.phase != phaseStart {
		w.failf("formal type parameters out of order")
		return
	}
	w.phase = phaseFormals
	w.push(scFormals)
}

func (w *SignatureWriter) EndFormalParams() {
	if !w.pop(scFormals) {
		return
	}
	if w.wroteFormal {
		w.sig.WriteString(">")
	}
	w.phase = phaseAfterFormals
}

func (w *SignatureWriter) BeginFormalParam(name string) {
	if !w.requireTop(scFormals, "formal type parameter") {
		return
	}
	if !w.wroteFormal {
		w.sig.WriteString("<")
		w.wroteFormal = true
	}
	w.sig.WriteString(name)
	w.hasGenerics = true
	w.push(scFormal)
}

func (w *SignatureWriter) EndFormalParam() {
	w.pop(scFormal)
}

func (w *SignatureWriter) BeginClassBound() {
	if !w.requireTop(scFormal, "class bound") {
		return
	}
	w.sig.WriteString(":")
	w.push(scClassBound)
}

func (w *SignatureWriter) EndClassBound() {
	w.pop(scClassBound)
}

func (w *SignatureWriter) BeginInterfaceBound() {
	if !w.requireTop(scFormal, "interface bound") {
		return
	}
	w.sig.WriteString(":")
	w.push(scIfaceBound)
}

func (w *SignatureWriter) EndInterfaceBound() {
	w.pop(scIfaceBound)
}

// BeginParams opens the value-parameter list.
func (w *SignatureWriter) BeginParams() {
	if w.fault != nil {
		return
	}
	if w.field || (w.phase != phaseStart && w.phase != phaseAfterFormals) {
		w.failf("parameter list out of order")
		return
	}
	w.phase = phaseParams
	w.desc.WriteString("(")
	w.sig.WriteString("(")
	w.push(scParams)
}

func (w *SignatureWriter) EndParams() {
	if !w.pop(scParams) {
		return
	}
	w.desc.WriteString(")")
	w.sig.WriteString(")")
	w.phase = phaseAfterParams
}

func (w *SignatureWriter) BeginParam(kind ParamKind) {
	if !w.requireTop(scParams, "parameter") {
		return
	}
	w.pendingKind = kind
	w.slotOpen = true
	w.push(scParam)
}

func (w *SignatureWriter) EndParam() {
	if w.fault == nil && w.slotOpen {
		w.failf("parameter ended without a type")
		return
	}
	w.pop(scParam)
}

// BeginReturn opens the return-type section.
func (w *SignatureWriter) BeginReturn() {
	if w.fault != nil {
		return
	}
	if w.field || w.phase != phaseAfterParams {
		w.failf("return type out of order")
		return
	}
	w.push(scReturn)
}

func (w *SignatureWriter) EndReturn() {
	if w.fault == nil && !w.retSet {
		w.failf("return type section ended without a type")
		return
	}
	if !w.pop(scReturn) {
		return
	}
	w.phase = phaseDone
}

// WriteVoidReturn emits a void return type.
func (w *SignatureWriter) WriteVoidReturn() {
	w.BeginReturn()
	w.WriteType(VoidType, false)
	w.EndReturn()
}

// WriteType writes a complete type with no generic arguments. The
// nullability flag is accepted for interface symmetry with the semantic
// side; the target grammar has no marker for it.
func (w *SignatureWriter) WriteType(t PhysicalType, nullable bool) {
	if w.fault != nil {
		return
	}
	_ = nullable
	w.recordErased(t)
	w.sig.WriteString(t.Descriptor())
}

// BeginClass opens a class type that will carry type arguments. The erased
// view records t as-is; the generic view stays open until EndClass.
func (w *SignatureWriter) BeginClass(t PhysicalType, nullable bool) {
	if w.fault != nil {
		return
	}
	_ = nullable
	if t.Sort() != SortObject {
		w.failf("class scope opened for non-object type %s", t.Descriptor())
		return
	}
	w.recordErased(t)
	w.sig.WriteString("L" + t.InternalName())
	w.push(scClass)
	w.classAngles = append(w.classAngles, false)
}

func (w *SignatureWriter) openAngle() {
	if !w.classAngles[len(w.classAngles)-1] {
		w.sig.WriteString("<")
		w.classAngles[len(w.classAngles)-1] = true
	}
}

// BeginTypeArgument opens one type argument of the enclosing class type.
func (w *SignatureWriter) BeginTypeArgument(wc Wildcard) {
	if !w.requireTop(scClass, "type argument") {
		return
	}
	w.openAngle()
	switch wc {
	case Extends:
		w.sig.WriteString("+")
	case Super:
		w.sig.WriteString("-")
	}
	w.hasGenerics = true
	w.push(scArg)
	w.depth++
}

func (w *SignatureWriter) EndTypeArgument() {
	if w.pop(scArg) {
		w.depth--
	}
}

// WriteStarProjection writes an unbounded wildcard argument.
func (w *SignatureWriter) WriteStarProjection() {
	if !w.requireTop(scClass, "star projection") {
		return
	}
	w.openAngle()
	w.sig.WriteString("*")
	w.hasGenerics = true
}

func (w *SignatureWriter) EndClass() {
	if len(w.classAngles) == 0 {
		w.failf("closing class type with no open class scope")
		return
	}
	if !w.pop(scClass) {
		return
	}
	if w.classAngles[len(w.classAngles)-1] {
		w.sig.WriteString(">")
	}
	w.classAngles = w.classAngles[:len(w.classAngles)-1]
	w.sig.WriteString(";")
}

// BeginArray opens an array type; t is the complete erased array type, the
// element is written by the caller between Begin and End. Nullability and
// the element projection are semantic-side facts with no marker in the
// target grammar.
func (w *SignatureWriter) BeginArray(t PhysicalType, nullable bool) {
	if w.fault != nil {
		return
	}
	_ = nullable
	if t.Sort() != SortArray {
		w.failf("array scope opened for non-array type %s", t.Descriptor())
		return
	}
	w.recordErased(t)
	w.sig.WriteString("[")
	w.push(scArray)
	w.depth++
}

func (w *SignatureWriter) EndArray() {
	if w.pop(scArray) {
		w.depth--
	}
}

// WriteTypeVariable writes a reference to a formal type parameter; the
// erased view records the parameter's physical bound.
func (w *SignatureWriter) WriteTypeVariable(name string, erased PhysicalType, nullable bool) {
	if w.fault != nil {
		return
	}
	_ = nullable
	w.recordErased(erased)
	w.sig.WriteString("T" + name + ";")
	w.hasGenerics = true
}

// Finish validates scope balance and assembles the method signature. The
// generic signature is present only when the writer was generic-enabled and
// something non-trivial was written.
func (w *SignatureWriter) Finish(name string) (MethodSignature, error) {
	if w.fault != nil {
		return MethodSignature{}, w.fault
	}
	if w.field {
		return MethodSignature{}, internalf("Finish called on a field-type writer")
	}
	if w.phase != phaseDone {
		return MethodSignature{}, internalf("signature for %s finished before the return type", name)
	}
	if len(w.scopes) != 0 {
		top, _ := w.top()
		return MethodSignature{}, internalf("signature for %s finished with unclosed %s", name, top)
	}
	generic := ""
	if w.generic && w.hasGenerics {
		generic = w.sig.String()
	}
	return MethodSignature{
		Name:    name,
		Desc:    w.desc.String(),
		Generic: generic,
		Params:  w.params,
		Return:  w.ret,
	}, nil
}

// FinishField validates a field-type writer and returns the generic field
// signature, or the empty string if none is needed.
func (w *SignatureWriter) FinishField() (string, error) {
	if w.fault != nil {
		return "", w.fault
	}
	if !w.field {
		return "", internalf("FinishField called on a method writer")
	}
	if len(w.scopes) != 1 || w.scopes[0] != scField {
		top, _ := w.top()
		return "", internalf("field signature finished with unclosed %s", top)
	}
	if !w.retSet {
		return "", internalf("field signature finished without a type")
	}
	if w.generic && w.hasGenerics {
		return w.sig.String(), nil
	}
	return "", nil
}
