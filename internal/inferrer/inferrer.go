// Package inferrer implements the Type Inferrer (spec.md §4.A, component
// A): a two-pass algorithm that computes a NativeType for every
// expression, variable, function return, and class field, widening across
// assignments, branches, and call-site argument sets.
//
// Grounded on the teacher's bottom-up expression-type-checking style in
// internal/semantic/analyze_expressions.go and analyze_operators.go,
// generalized from "check against a declared type" to "infer and widen".
package inferrer

import (
	"github.com/cwbudde/pycc/internal/importreg"
	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/cwbudde/pycc/internal/scope"
	"github.com/cwbudde/pycc/internal/srcast"
)

// ClassFields is the per-class field/method type map spec.md §4.A's
// contract requires: class_fields[class].fields and .methods.
type ClassFields struct {
	Fields  map[string]nativetype.NativeType
	Methods map[string]nativetype.NativeType
}

// maxFixpointPasses bounds the re-scan in case a pathological program
// would otherwise never stabilize; ordinary programs converge in 2-3
// passes. Inference itself never fails (spec.md §4.A "Failure semantics"),
// this is only a backstop.
const maxFixpointPasses = 8

// Result is the full output of one Infer call.
type Result struct {
	Scopes *scope.Table

	// FuncReturnTypes maps each function/method definition to its
	// inferred return type.
	FuncReturnTypes map[*srcast.FunctionDef]nativetype.NativeType

	// FuncCallArgs maps each function/method definition to the widened
	// type observed at each parameter position across every call site
	// seen anywhere in the module.
	FuncCallArgs map[*srcast.FunctionDef][]nativetype.NativeType

	// ClassFieldsOf maps each class definition to its field/method type
	// tables.
	ClassFieldsOf map[*srcast.ClassDef]*ClassFields

	// ExprTypes caches the type computed for every expression node
	// visited, so downstream components (emitter, siggen) never need to
	// re-run inference.
	ExprTypes map[srcast.Expression]nativetype.NativeType
}

// Inferrer runs the two-pass algorithm over one module.
type Inferrer struct {
	result         *Result
	importRegistry importreg.Registry
	// imports maps a local alias (`import numpy as np` -> "np") to the
	// module name it resolves to, populated while walking Import/
	// ImportFrom statements.
	imports       map[string]string
	funcsByName   map[string]*srcast.FunctionDef
	classesByName map[string]*srcast.ClassDef
	// currentClass supports `self.attr` field-type inference while walking
	// a method body; currentFunc is the FunctionDef whose Return statements
	// should widen FuncReturnTypes.
	currentClass *srcast.ClassDef
	currentFunc  *srcast.FunctionDef
}

// New creates an Inferrer that shares scopes with the rest of the
// backend's Codegen State (spec.md §3's shared-table lifecycle).
func New(scopes *scope.Table, imports importreg.Registry) *Inferrer {
	return &Inferrer{
		result: &Result{
			Scopes:          scopes,
			FuncReturnTypes: make(map[*srcast.FunctionDef]nativetype.NativeType),
			FuncCallArgs:    make(map[*srcast.FunctionDef][]nativetype.NativeType),
			ClassFieldsOf:   make(map[*srcast.ClassDef]*ClassFields),
			ExprTypes:       make(map[srcast.Expression]nativetype.NativeType),
		},
		importRegistry: imports,
		imports:        make(map[string]string),
		funcsByName:    make(map[string]*srcast.FunctionDef),
		classesByName:  make(map[string]*srcast.ClassDef),
	}
}

// Infer runs structural inference followed by fixpoint widening and
// returns the populated Result.
func (inf *Inferrer) Infer(mod *srcast.Module) *Result {
	inf.collectDecls(mod.Body)
	for _, cls := range inf.classesByName {
		inf.ensureClassFields(cls)
	}

	// Structural pass: one bottom-up walk establishes initial types.
	inf.inferBody(scope.Module, mod.Body)

	// Fixpoint widening pass: re-scan until no table entry changes, or the
	// safety bound is reached.
	for i := 0; i < maxFixpointPasses; i++ {
		changed := inf.rescan(mod.Body)
		if !changed {
			break
		}
	}

	return inf.result
}

// collectDecls performs the pre-pass that registers every function and
// class name before bodies are inferred, so forward/sibling references
// resolve even before the fixpoint pass runs.
func (inf *Inferrer) collectDecls(body []srcast.Statement) {
	for _, stmt := range body {
		switch n := stmt.(type) {
		case *srcast.FunctionDef:
			inf.funcsByName[n.Name] = n
			inf.result.FuncReturnTypes[n] = nativetype.TUnknown
			inf.result.FuncCallArgs[n] = paramSlots(n)
		case *srcast.ClassDef:
			inf.classesByName[n.Name] = n
			for _, m := range n.Methods() {
				inf.funcsByName[n.Name+"."+m.Name] = m
				inf.result.FuncReturnTypes[m] = nativetype.TUnknown
				inf.result.FuncCallArgs[m] = paramSlots(m)
			}
			for _, nested := range n.NestedClasses() {
				inf.classesByName[nested.Name] = nested
			}
		}
	}
}

func paramSlots(fn *srcast.FunctionDef) []nativetype.NativeType {
	if fn.Params == nil {
		return nil
	}
	return make([]nativetype.NativeType, len(fn.Params.Args))
}

func (inf *Inferrer) ensureClassFields(cls *srcast.ClassDef) *ClassFields {
	if cf, ok := inf.result.ClassFieldsOf[cls]; ok {
		return cf
	}
	cf := &ClassFields{
		Fields:  make(map[string]nativetype.NativeType),
		Methods: make(map[string]nativetype.NativeType),
	}
	inf.result.ClassFieldsOf[cls] = cf
	return cf
}

// rescan re-walks every statement, widening stored types with freshly
// observed RHS types, and reports whether anything changed this pass.
func (inf *Inferrer) rescan(body []srcast.Statement) bool {
	before := inf.snapshot()
	inf.inferBody(scope.Module, body)
	after := inf.snapshot()
	return !before.equal(after)
}

// snapshot captures a cheap fingerprint of the mutable tables used to
// detect fixpoint convergence.
type tableSnapshot struct {
	returns map[*srcast.FunctionDef]string
	fields  map[string]string
}

func (inf *Inferrer) snapshot() tableSnapshot {
	s := tableSnapshot{
		returns: make(map[*srcast.FunctionDef]string, len(inf.result.FuncReturnTypes)),
		fields:  make(map[string]string),
	}
	for fn, t := range inf.result.FuncReturnTypes {
		s.returns[fn] = t.String()
	}
	for cls, cf := range inf.result.ClassFieldsOf {
		for name, t := range cf.Fields {
			s.fields[cls.Name+"#"+name] = t.String()
		}
	}
	return s
}

func (a tableSnapshot) equal(b tableSnapshot) bool {
	if len(a.returns) != len(b.returns) || len(a.fields) != len(b.fields) {
		return false
	}
	for k, v := range a.returns {
		if b.returns[k] != v {
			return false
		}
	}
	for k, v := range a.fields {
		if b.fields[k] != v {
			return false
		}
	}
	return true
}

// TypeOf returns the cached inferred type for an already-visited
// expression, or Unknown if it was never visited (should not happen for
// any expression reachable from the module body).
func (r *Result) TypeOf(e srcast.Expression) nativetype.NativeType {
	if t, ok := r.ExprTypes[e]; ok {
		return t
	}
	return nativetype.TUnknown
}
