package descriptors

// CaptureKind distinguishes how a synthetic class holds a captured value.
type CaptureKind uint8

const (
	// CaptureValue copies an immutable local into a field.
	CaptureValue CaptureKind = iota
	// CaptureBoxed shares a mutable local through a reference cell.
	CaptureBoxed
	// CaptureLocalFunction stores a locally declared function as an instance
	// of its own synthetic class.
	CaptureLocalFunction
)

// Capture is one captured free variable of a synthetic class, in capture
// order.
type Capture struct {
	Kind     CaptureKind
	Name     string
	Type     SemanticType
	Function CallableID
}

// SuperCall records the superclass-constructor call of an anonymous class
// whose arguments must be echoed into the synthetic constructor.
type SuperCall struct {
	Constructor CallableID
}

// Closure is the capture record of one synthetic (local or anonymous)
// class. It is computed once and stored write-once; a second computation
// producing a different value is an internal-consistency fault surfaced by
// the bindings store.
type Closure struct {
	CapturedOuter    ClassID
	CapturedReceiver ClassID
	Captures         []Capture
	SuperCall        *SuperCall
}
