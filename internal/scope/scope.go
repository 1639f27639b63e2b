// Package scope implements the Scope Table from spec.md §3: a mapping
// (scope_id, name) -> NativeType whose scope ids form an outward-walking
// stack (module, function, method, nested-function).
//
// A scope id is identified by the AST node that introduces it (a
// FunctionDef, Lambda, ClassDef, or comprehension expression), rather than
// a sequentially allocated counter. This lets every backend component
// (Type Inferrer, Usage Analyzer, Class Registry, Signature Generator,
// Emitter) independently derive the same scope id for the same AST node
// without needing to walk the tree in lockstep with one another.
package scope

import (
	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/cwbudde/pycc/internal/srcast"
)

// ID identifies one lexical scope.
type ID struct {
	node srcast.Node
}

// Module is the single module-level scope id (the zero value).
var Module = ID{}

// Of derives the scope id a given scope-introducing AST node owns.
func Of(node srcast.Node) ID { return ID{node: node} }

// Table is the scope stack used throughout inference and analysis. It is
// append-mostly: entries are only ever widened, never deleted, matching
// the Codegen State lifecycle described in spec.md §3.
type Table struct {
	parent map[ID]ID
	vars   map[ID]map[string]nativetype.NativeType
}

// New creates a table containing only the module scope.
func New() *Table {
	return &Table{
		parent: map[ID]ID{Module: Module},
		vars:   map[ID]map[string]nativetype.NativeType{Module: {}},
	}
}

// Child registers (if not already registered) the scope that node
// introduces as a child of parent, and returns its id. Calling Child more
// than once for the same node is safe and idempotent.
func (t *Table) Child(parent ID, node srcast.Node) ID {
	id := Of(node)
	if _, ok := t.parent[id]; !ok {
		t.parent[id] = parent
	}
	if t.vars[id] == nil {
		t.vars[id] = map[string]nativetype.NativeType{}
	}
	return id
}

// Declare binds name in scope to typ if it is not already bound there,
// widening with any existing binding otherwise. Returns the resulting
// (possibly widened) type.
func (t *Table) Declare(s ID, name string, typ nativetype.NativeType) nativetype.NativeType {
	t.ensure(s)
	existing, ok := t.vars[s][name]
	if !ok {
		t.vars[s][name] = typ
		return typ
	}
	widened := nativetype.Widen(existing, typ)
	t.vars[s][name] = widened
	return widened
}

// Lookup walks outward from s through parents until name is found,
// returning its type and true, or (zero value, false) if never bound.
func (t *Table) Lookup(s ID, name string) (nativetype.NativeType, bool) {
	cur := s
	for {
		if typ, ok := t.vars[cur][name]; ok {
			return typ, true
		}
		if cur == Module {
			return nativetype.TUnknown, false
		}
		cur = t.parent[cur]
	}
}

// LookupScope walks outward from s like Lookup, but returns the id of the
// scope that actually owns the binding rather than its type. The Class
// Registry & Capture Planner (component C) uses this to decide whether a
// name a closure references is a capture (owned by a strict ancestor
// scope) or a local (owned by the closure's own scope).
func (t *Table) LookupScope(s ID, name string) (ID, bool) {
	cur := s
	for {
		if _, ok := t.vars[cur][name]; ok {
			return cur, true
		}
		if cur == Module {
			return ID{}, false
		}
		cur = t.parent[cur]
	}
}

// LookupLocal reports only whether name is bound directly in s, without
// walking to parents; used by the Usage Analyzer to distinguish a
// shadowing declaration from a reference to an enclosing binding.
func (t *Table) LookupLocal(s ID, name string) (nativetype.NativeType, bool) {
	typ, ok := t.vars[s][name]
	return typ, ok
}

// Names returns the names declared directly in s, for capture-set and
// emission-ordering purposes.
func (t *Table) Names(s ID) []string {
	names := make([]string, 0, len(t.vars[s]))
	for n := range t.vars[s] {
		names = append(names, n)
	}
	return names
}

// Parent returns the enclosing scope id, or Module if s is Module.
func (t *Table) Parent(s ID) ID {
	return t.parent[s]
}

func (t *Table) ensure(s ID) {
	if t.vars[s] == nil {
		t.vars[s] = map[string]nativetype.NativeType{}
	}
	if _, ok := t.parent[s]; !ok {
		t.parent[s] = Module
	}
}
