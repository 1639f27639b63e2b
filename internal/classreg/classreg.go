// Package classreg implements the Class Registry & Capture Planner
// (spec.md §4.C, component C): it records every class's field/method
// shape, computes the method-resolution order super() dispatch needs, and
// is the authoritative source for which names a nested closure (a lambda
// or a function/class defined inside another function) must capture.
//
// Grounded on the teacher's internal/interp/types.ClassRegistry
// (case-insensitive registration, parent-chain walk, IsDescendantOf,
// FindDescendants) generalized from DWScript's single-inheritance model to
// carry the field/method maps the Type Inferrer already computed, plus a
// capture-discovery pass that has no teacher analogue and is grounded
// directly on spec.md §4.C's "state machine: class emission" description.
package classreg

import (
	"strings"

	"github.com/google/uuid"

	"github.com/cwbudde/pycc/internal/inferrer"
	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/cwbudde/pycc/internal/scope"
	"github.com/cwbudde/pycc/internal/srcast"
)

// FieldKind distinguishes a class-level (static/shared) field from a
// per-instance one, the classification spec.md §4.C needs to decide
// whether a field becomes a Zig struct member or a module-level constant.
type FieldKind int

const (
	InstanceField FieldKind = iota
	StaticField
)

// ClassInfo is the per-class record spec.md §3's data model names.
type ClassInfo struct {
	Def    *srcast.ClassDef
	Name   string
	Bases  []string
	Fields map[string]nativetype.NativeType
	// StaticFieldNames holds the subset of Fields that were populated from
	// a class-level assignment rather than a `self.x = ...` inside a
	// method; FieldKindOf uses it to answer the static-vs-instance
	// question spec.md §4.C requires.
	StaticFieldNames map[string]bool
	Methods          map[string]*srcast.FunctionDef
	MethodReturns    map[string]nativetype.NativeType
	// MRO is this class's linearized method-resolution order, Name itself
	// first, used by super() dispatch.
	MRO []string
}

// FieldKindOf classifies name within ci.
func (ci *ClassInfo) FieldKindOf(name string) FieldKind {
	if ci.StaticFieldNames[name] {
		return StaticField
	}
	return InstanceField
}

// CaptureSet is the ordered, typed list of enclosing-scope bindings a
// closure (lambda, nested function, or nested class) reads or writes.
type CaptureSet struct {
	Names []string
	Types map[string]nativetype.NativeType
}

// Registry owns every ClassInfo and CaptureSet discovered for one module
// compilation; it is one of the tables the shared Codegen State carries
// (spec.md §3).
type Registry struct {
	classes  map[string]*ClassInfo
	order    []string
	captures map[srcast.Node]*CaptureSet
	// closureIDs assigns a stable synthetic struct-type name to every
	// closure boundary node, generated once and memoized.
	closureIDs map[srcast.Node]string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		classes:    make(map[string]*ClassInfo),
		captures:   make(map[srcast.Node]*CaptureSet),
		closureIDs: make(map[srcast.Node]string),
	}
}

// RegisterClass builds a ClassInfo from def and the Type Inferrer's
// per-class field/method tables, and records it under def.Name.
func (r *Registry) RegisterClass(def *srcast.ClassDef, inferred *inferrer.ClassFields) *ClassInfo {
	ci := &ClassInfo{
		Def:              def,
		Name:             def.Name,
		Bases:            def.Bases,
		Fields:           make(map[string]nativetype.NativeType),
		StaticFieldNames: make(map[string]bool),
		Methods:          make(map[string]*srcast.FunctionDef),
		MethodReturns:    make(map[string]nativetype.NativeType),
	}

	if inferred != nil {
		for name, t := range inferred.Fields {
			ci.Fields[name] = t
		}
		for name, t := range inferred.Methods {
			ci.MethodReturns[name] = t
		}
	}

	classAssignNames := make(map[string]bool)
	for _, a := range def.ClassLevelAssigns() {
		for _, target := range a.Targets {
			if name, ok := target.(*srcast.Name); ok {
				classAssignNames[name.Ident] = true
			}
		}
	}
	for name := range classAssignNames {
		ci.StaticFieldNames[name] = true
	}

	for _, m := range def.Methods() {
		ci.Methods[m.Name] = m
	}

	r.classes[def.Name] = ci
	r.order = append(r.order, def.Name)
	return ci
}

// Lookup returns the ClassInfo for name.
func (r *Registry) Lookup(name string) (*ClassInfo, bool) {
	ci, ok := r.classes[name]
	return ci, ok
}

// Order returns class names in registration (source) order, for
// deterministic emission.
func (r *Registry) Order() []string {
	return append([]string(nil), r.order...)
}

// MRO computes name's linearized method-resolution order: the class
// itself, then its bases depth-first left-to-right with duplicates
// collapsed to their first occurrence (the classic "old-style" MRO; a full
// C3 linearization is unnecessary because the source language's
// multiple-inheritance diamond case is explicitly out of scope, see
// spec.md Non-goals).
func (r *Registry) MRO(name string) []string {
	var order []string
	seen := make(map[string]bool)
	var walk func(string)
	walk = func(n string) {
		if seen[n] {
			return
		}
		seen[n] = true
		order = append(order, n)
		ci, ok := r.classes[n]
		if !ok {
			return
		}
		for _, base := range ci.Bases {
			walk(base)
		}
	}
	walk(name)
	return order
}

// IsDescendantOf reports whether descendant inherits from ancestor
// (directly, indirectly, or descendant == ancestor).
func (r *Registry) IsDescendantOf(descendant, ancestor string) bool {
	if descendant == ancestor {
		return true
	}
	for _, cls := range r.MRO(descendant) {
		if cls == ancestor {
			return true
		}
	}
	return false
}

// ResolveMethod walks className's MRO looking for methodName, returning
// the defining FunctionDef and the name of the class that defines it (the
// information super() dispatch and inherited-method re-emission both need).
func (r *Registry) ResolveMethod(className, methodName string) (*srcast.FunctionDef, string, bool) {
	for _, cls := range r.MRO(className) {
		ci, ok := r.classes[cls]
		if !ok {
			continue
		}
		if m, ok := ci.Methods[methodName]; ok {
			return m, cls, true
		}
	}
	return nil, "", false
}

// FindDescendants returns every registered class that inherits from
// ancestor, excluding ancestor itself.
func (r *Registry) FindDescendants(ancestor string) []string {
	var out []string
	for _, name := range r.order {
		if name == ancestor {
			continue
		}
		if r.IsDescendantOf(name, ancestor) {
			out = append(out, name)
		}
	}
	return out
}

// PlanCaptures computes the authoritative CaptureSet for the closure whose
// body introduces the scope `boundary` (a Lambda, a nested FunctionDef, or
// a nested ClassDef), memoizing the result under node.
//
// A name is a capture when it resolves to a binding owned by a scope that
// is neither the closure's own scope nor the module scope: module-level
// functions, classes, and globals stay directly addressable and never need
// struct-field capture.
func (r *Registry) PlanCaptures(node srcast.Node, scopes *scope.Table, boundary scope.ID, body []srcast.Statement) *CaptureSet {
	if cs, ok := r.captures[node]; ok {
		return cs
	}

	cs := &CaptureSet{Types: make(map[string]nativetype.NativeType)}
	seen := make(map[string]bool)

	for _, stmt := range body {
		srcast.Inspect(stmt, func(n srcast.Node) bool {
			name, ok := n.(*srcast.Name)
			if !ok {
				return true
			}
			if seen[name.Ident] {
				return true
			}
			seen[name.Ident] = true

			owner, found := scopes.LookupScope(boundary, name.Ident)
			if !found || owner == boundary || owner == scope.Module {
				return true
			}
			t, _ := scopes.Lookup(boundary, name.Ident)
			cs.Names = append(cs.Names, name.Ident)
			cs.Types[name.Ident] = t
			return true
		})
	}

	r.captures[node] = cs
	return cs
}

// CapturesOf returns the previously computed CaptureSet for node, or nil
// if PlanCaptures was never called for it (a closure with no free
// variables still gets an empty, non-nil CaptureSet once planned).
func (r *Registry) CapturesOf(node srcast.Node) (*CaptureSet, bool) {
	cs, ok := r.captures[node]
	return cs, ok
}

// ClosureID returns a stable synthetic struct-type name for a closure
// boundary node, generating one on first use via google/uuid (so two
// anonymous lambdas never collide even though neither has a source name).
func (r *Registry) ClosureID(node srcast.Node, hint string) string {
	if id, ok := r.closureIDs[node]; ok {
		return id
	}
	if hint == "" {
		hint = "anon"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	id := "Closure_" + hint + "_" + suffix
	r.closureIDs[node] = id
	return id
}
