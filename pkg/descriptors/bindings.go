package descriptors

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrInternal tags violated invariants of this layer. Such failures abort
// the compilation; they indicate a bug in an earlier stage, not bad input.
var ErrInternal = errors.New("internal consistency fault")

// Internalf builds an internal fault with descriptor context attached.
func Internalf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInternal, fmt.Sprintf(format, args...))
}

// Fact enumerates the memoized fact kinds the backend records.
type Fact uint8

const (
	FactClosure Fact = iota
	FactAnonymousClass
	FactLocalFunctionClass
	FactScriptClass
	FactForeignConstructors
	FactSAMAdapter
)

func (f Fact) String() string {
	switch f {
	case FactClosure:
		return "closure"
	case FactAnonymousClass:
		return "anonymous class name"
	case FactLocalFunctionClass:
		return "local function class name"
	case FactScriptClass:
		return "script class name"
	case FactForeignConstructors:
		return "foreign constructors"
	case FactSAMAdapter:
		return "sam adapter"
	}
	return "fact?"
}

type bindingKey struct {
	fact Fact
	id   int
}

// Bindings is the write-once-per-key fact store shared across one
// compilation. Writing an equal value again is a no-op; writing a different
// value for the same key is an internal fault, which catches
// non-determinism bugs at the first divergence. Reads never block: the
// reader drives any missing computation itself.
type Bindings struct {
	mu      sync.Mutex
	entries map[bindingKey]any
}

func NewBindings() *Bindings {
	return &Bindings{entries: make(map[bindingKey]any)}
}

// Record stores value under (fact, id) with write-once-or-equal semantics.
func (b *Bindings) Record(fact Fact, id int, value any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := bindingKey{fact: fact, id: id}
	if existing, ok := b.entries[key]; ok {
		if reflect.DeepEqual(existing, value) {
			return nil
		}
		return Internalf("conflicting %s for #%d: had %v, got %v", fact, id, existing, value)
	}
	b.entries[key] = value
	return nil
}

// Lookup returns the recorded value, if any.
func (b *Bindings) Lookup(fact Fact, id int) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	value, ok := b.entries[bindingKey{fact: fact, id: id}]
	return value, ok
}

// Typed wrappers: the rest of the backend goes through these so key spaces
// and value types stay consistent.

func (g *Graph) RecordClosure(class ClassID, closure Closure) error {
	return g.bindings.Record(FactClosure, int(class), closure)
}

func (g *Graph) Closure(class ClassID) (Closure, bool) {
	value, ok := g.bindings.Lookup(FactClosure, int(class))
	if !ok {
		return Closure{}, false
	}
	return value.(Closure), true
}

func (g *Graph) RecordAnonymousClassName(class ClassID, internal string) error {
	return g.bindings.Record(FactAnonymousClass, int(class), internal)
}

func (g *Graph) AnonymousClassName(class ClassID) (string, bool) {
	value, ok := g.bindings.Lookup(FactAnonymousClass, int(class))
	if !ok {
		return "", false
	}
	return value.(string), true
}

func (g *Graph) RecordLocalFunctionClassName(fn CallableID, internal string) error {
	return g.bindings.Record(FactLocalFunctionClass, int(fn), internal)
}

func (g *Graph) LocalFunctionClassName(fn CallableID) (string, bool) {
	value, ok := g.bindings.Lookup(FactLocalFunctionClass, int(fn))
	if !ok {
		return "", false
	}
	return value.(string), true
}

func (g *Graph) RecordScriptClassName(script ScriptID, internal string) error {
	return g.bindings.Record(FactScriptClass, int(script), internal)
}

func (g *Graph) ScriptClassName(script ScriptID) (string, bool) {
	value, ok := g.bindings.Lookup(FactScriptClass, int(script))
	if !ok {
		return "", false
	}
	return value.(string), true
}

func (g *Graph) RecordForeignConstructors(class ClassID, ctors []CallableID) error {
	return g.bindings.Record(FactForeignConstructors, int(class), ctors)
}

func (g *Graph) ForeignConstructors(class ClassID) ([]CallableID, bool) {
	value, ok := g.bindings.Lookup(FactForeignConstructors, int(class))
	if !ok {
		return nil, false
	}
	return value.([]CallableID), true
}

func (g *Graph) RecordSAMAdapter(ctor CallableID, adapter CallableID) error {
	return g.bindings.Record(FactSAMAdapter, int(ctor), adapter)
}

func (g *Graph) SAMAdapter(ctor CallableID) (CallableID, bool) {
	value, ok := g.bindings.Lookup(FactSAMAdapter, int(ctor))
	if !ok {
		return NoCallable, false
	}
	return value.(CallableID), true
}
