// Package importreg defines the import registry interface the backend
// consults for cross-module facts (spec.md §6 "Inputs"): return-type
// hints, allocator requirements, and void-ness for symbols imported from
// other modules, plus the set of modules known to resolve to None at the
// source level (so `@skipIf(module is None, …)` can be honored
// statically).
package importreg

import "github.com/cwbudde/pycc/internal/nativetype"

// FunctionMeta describes an imported function or method symbol.
type FunctionMeta struct {
	ReturnType   nativetype.NativeType
	NeedsAlloc   bool
	ReturnsError bool
	IsVoid       bool
}

// ModuleMeta describes an imported module as a whole (used when the
// import registry only has coarse facts about it, e.g. a module whose
// public surface is not individually typed).
type ModuleMeta struct {
	Name string
}

// Meta is the FunctionMeta | ModuleMeta sum spec.md §6 describes.
type Meta struct {
	Function *FunctionMeta
	Module   *ModuleMeta
}

// Registry is the backend's view of cross-module information. A single
// module compilation never mutates its registry; the registry is owned
// and populated by the driver the spec places out of scope.
type Registry interface {
	// Lookup resolves (module, symbol) to a Meta, or reports ok=false when
	// the registry has no information (the backend then treats the symbol
	// as untyped, per spec.md §9 Open Question 3).
	Lookup(module, symbol string) (Meta, bool)

	// IsSkipped reports whether module is known to resolve to None at the
	// source level, letting the emitter statically fold
	// `@skipIf(module is None, …)`.
	IsSkipped(module string) bool
}

// StaticRegistry is a map-backed Registry used by tests and by the CLI,
// loaded from a JSON sidecar file describing the modules a compilation
// unit imports.
type StaticRegistry struct {
	entries map[string]Meta
	skipped map[string]bool
}

// NewStaticRegistry builds an empty registry ready for Add calls.
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{
		entries: make(map[string]Meta),
		skipped: make(map[string]bool),
	}
}

func key(module, symbol string) string { return module + "." + symbol }

// AddFunction registers a function/method symbol's metadata.
func (r *StaticRegistry) AddFunction(module, symbol string, meta FunctionMeta) {
	r.entries[key(module, symbol)] = Meta{Function: &meta}
}

// AddModule registers coarse module-level metadata.
func (r *StaticRegistry) AddModule(module string, meta ModuleMeta) {
	r.entries[key(module, "")] = Meta{Module: &meta}
}

// MarkSkipped records that module resolves to None.
func (r *StaticRegistry) MarkSkipped(module string) {
	r.skipped[module] = true
}

func (r *StaticRegistry) Lookup(module, symbol string) (Meta, bool) {
	m, ok := r.entries[key(module, symbol)]
	return m, ok
}

func (r *StaticRegistry) IsSkipped(module string) bool {
	return r.skipped[module]
}
