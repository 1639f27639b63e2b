// Package codegen is the backend's single entry point (spec.md §3
// "Codegen State"): it runs the Type Inferrer, Usage & Mutation Analyzer,
// Class Registry & Capture Planner, and Signature Generator over one
// module in the order their data dependencies require, then hands their
// combined results to the Statement/Expression Emitter.
//
// Grounded on the teacher's two-stage shape: internal/semantic.Analyzer
// collects every table a single Analyze call needs before validation
// runs, and internal/bytecode.Compiler resets its own state then
// delegates to one Compile entry point. Backend plays both roles here,
// since the backend's "validation" and "lowering" stages are each other's
// only consumer within one compilation.
package codegen

import (
	"fmt"

	"github.com/cwbudde/pycc/internal/classreg"
	"github.com/cwbudde/pycc/internal/emitter"
	"github.com/cwbudde/pycc/internal/errors"
	"github.com/cwbudde/pycc/internal/importreg"
	"github.com/cwbudde/pycc/internal/inferrer"
	"github.com/cwbudde/pycc/internal/rename"
	"github.com/cwbudde/pycc/internal/scope"
	"github.com/cwbudde/pycc/internal/siggen"
	"github.com/cwbudde/pycc/internal/srcast"
	"github.com/cwbudde/pycc/internal/usage"
)

// Backend runs every upstream analysis pass over a module and renders it
// to Zig source text. One Backend is reusable across modules; each Emit
// call is independent (spec.md §3: "one Codegen State per module").
type Backend struct {
	imports importreg.Registry
}

// New builds a Backend that resolves cross-module symbols through
// imports. A nil imports registry treats every imported symbol as
// untyped, per spec.md §9 Open Question 3.
func New(imports importreg.Registry) *Backend {
	if imports == nil {
		imports = importreg.NewStaticRegistry()
	}
	return &Backend{imports: imports}
}

// Analysis is every table components A-D produce for one module, short of
// emission itself. Emit consumes it to drive component E; cmd/pycc's
// inspect subcommand consumes it directly to print a debugging report,
// since none of these tables are otherwise observable from outside this
// package.
type Analysis struct {
	Infer   *inferrer.Result
	Usage   *usage.Result
	Classes *classreg.Registry
	Traits  map[*srcast.FunctionDef]*siggen.FunctionTraits
	Renames *rename.Map

	TopFuncs   []*srcast.FunctionDef
	TopClasses []*srcast.ClassDef
}

// Analyze runs components A-D over mod: inference, class registration and
// capture planning, usage analysis, and signature generation, in the
// order their data dependencies require.
func (b *Backend) Analyze(mod *srcast.Module) *Analysis {
	scopes := scope.New()

	inf := inferrer.New(scopes, b.imports)
	inferResult := inf.Infer(mod)

	classes := classreg.New()
	topFuncs, topClasses := topLevelDecls(mod)

	for _, cls := range topClasses {
		classes.RegisterClass(cls, inferResult.ClassFieldsOf[cls])
	}
	for _, nested := range nestedClasses(topClasses) {
		classes.RegisterClass(nested, inferResult.ClassFieldsOf[nested])
	}

	renames := rename.New()
	reserveTopLevelNames(renames, topFuncs, topClasses)

	planCaptures(classes, inferResult.Scopes, mod, topFuncs, topClasses)

	moduleFuncNames, importedNames := moduleBindings(mod, topFuncs)
	usageAnalyzer := usage.NewAnalyzer(moduleFuncNames, importedNames)
	usageResult := usageAnalyzer.Analyze(mod)

	allFuncs := allFunctions(topFuncs, topClasses)
	resolve := funcResolver(topFuncs, topClasses)
	raises := siggen.ComputeErrorUnions(allFuncs, resolve)

	sig := siggen.New(renames)
	traits := make(map[*srcast.FunctionDef]*siggen.FunctionTraits, len(allFuncs))
	for _, fn := range topFuncs {
		traits[fn] = sig.Traits(fn, nil, inferResult, inferResult.FuncCallArgs[fn], raises[fn])
	}
	for _, cls := range topClasses {
		for _, m := range cls.Methods() {
			traits[m] = sig.Traits(m, cls, inferResult, inferResult.FuncCallArgs[m], raises[m])
		}
	}

	return &Analysis{
		Infer: inferResult, Usage: usageResult, Classes: classes, Traits: traits, Renames: renames,
		TopFuncs: topFuncs, TopClasses: topClasses,
	}
}

// Emit compiles mod end to end: Analyze, then statement/expression
// emission over the result. file names mod in diagnostics.
func (b *Backend) Emit(mod *srcast.Module, file string) (string, error) {
	a := b.Analyze(mod)

	state := emitter.New(a.Infer, a.Usage, a.Classes, a.Traits, a.Renames, b.imports)
	out, err := state.EmitModule(mod)
	if err != nil {
		if ce, ok := err.(*errors.CompilerError); ok {
			ce.File = file
			return "", ce
		}
		return "", fmt.Errorf("%s: %w", file, err)
	}
	return out, nil
}

// topLevelDecls splits mod's top-level statements into its functions and
// classes, in source order; every other top-level statement (imports,
// plain assignments, expression statements) is emitted but never feeds
// the registries built here.
func topLevelDecls(mod *srcast.Module) ([]*srcast.FunctionDef, []*srcast.ClassDef) {
	var funcs []*srcast.FunctionDef
	var classes []*srcast.ClassDef
	for _, stmt := range mod.Body {
		switch n := stmt.(type) {
		case *srcast.FunctionDef:
			funcs = append(funcs, n)
		case *srcast.ClassDef:
			classes = append(classes, n)
		}
	}
	return funcs, classes
}

// nestedClasses collects every class nested inside one of tops, at any
// depth, so the registry knows about them before capture planning runs.
func nestedClasses(tops []*srcast.ClassDef) []*srcast.ClassDef {
	var out []*srcast.ClassDef
	var walk func(*srcast.ClassDef)
	walk = func(cls *srcast.ClassDef) {
		for _, child := range cls.NestedClasses() {
			out = append(out, child)
			walk(child)
		}
	}
	for _, cls := range tops {
		walk(cls)
	}
	return out
}

// reserveTopLevelNames claims every top-level function and class's
// target identifier before any function body is emitted. Function bodies
// are emitted one at a time; without this pre-pass, a local variable in
// an earlier function could claim a sibling function or class's name
// before that sibling's own Traits/emission runs, since rename.Map is
// shared for the whole module (spec.md §5's one-shot rename guarantee
// only holds if collisions are resolved in declaration order, not
// emission order).
func reserveTopLevelNames(renames *rename.Map, funcs []*srcast.FunctionDef, classes []*srcast.ClassDef) {
	// "main" is claimed by the emitter's synthesized entry point
	// (internal/emitter/state.go's emitMain) whenever the module has any
	// top-level imperative statement or TestCase class; reserved
	// unconditionally so a source-level top-level `def main():` always
	// disambiguates instead of colliding with it.
	renames.Reserve("main")
	for _, fn := range funcs {
		renames.Resolve(fn.Name, fn.Name+"_fn")
	}
	for _, cls := range classes {
		// Class names are emitted literally (internal/emitter/class.go),
		// never through renames.Resolve; Reserve only blocks a later local
		// from colliding with the literal text already committed to.
		renames.Reserve(cls.Name)
		for attr := range classFieldNames(cls) {
			renames.Reserve(cls.Name + "_" + attr)
		}
	}
}

// classFieldNames reports the class-level assignment targets of cls,
// mirroring the static-field storage slots internal/emitter/augmented.go
// renders as "<Class>_<field>".
func classFieldNames(cls *srcast.ClassDef) map[string]bool {
	names := make(map[string]bool)
	for _, assign := range cls.ClassLevelAssigns() {
		for _, target := range assign.Targets {
			if n, ok := target.(*srcast.Name); ok {
				names[n.Ident] = true
			}
		}
	}
	return names
}

// planCaptures runs the Class Registry & Capture Planner over every
// closure boundary in mod: nested classes, nested functions, and
// lambdas. It must run against scopes, the inferrer's own table (the
// only one with Declare'd types) rather than any table usage.Analyzer
// builds for itself.
func planCaptures(classes *classreg.Registry, scopes *scope.Table, mod *srcast.Module, topFuncs []*srcast.FunctionDef, topClasses []*srcast.ClassDef) {
	plan := func(node srcast.Node, body []srcast.Statement) {
		classes.PlanCaptures(node, scopes, scope.Of(node), body)
	}

	var walkClass func(*srcast.ClassDef)
	var walkFunc func(*srcast.FunctionDef)

	walkClass = func(cls *srcast.ClassDef) {
		plan(cls, cls.Body)
		for _, m := range cls.Methods() {
			walkFunc(m)
		}
		for _, nested := range cls.NestedClasses() {
			walkClass(nested)
		}
	}

	// walkFunc plans captures for fn itself (as a closure boundary for
	// any lambda or nested function/class inside it) and recurses into
	// every nested FunctionDef/ClassDef/Lambda found in its body. It uses
	// a synthetic Module wrapper purely as an InspectShallow root; that
	// wrapper is never registered or emitted.
	walkFunc = func(fn *srcast.FunctionDef) {
		plan(fn, fn.Body)
		srcast.InspectShallow(&srcast.Module{Body: fn.Body}, func(n srcast.Node) bool {
			switch child := n.(type) {
			case *srcast.Lambda:
				plan(child, lambdaBody(child))
				return false
			case *srcast.FunctionDef:
				if child != fn {
					walkFunc(child)
					return false
				}
			case *srcast.ClassDef:
				walkClass(child)
				return false
			}
			return true
		})
	}

	for _, fn := range topFuncs {
		walkFunc(fn)
	}
	for _, cls := range topClasses {
		walkClass(cls)
	}
}

// lambdaBody wraps a Lambda's single expression body in a synthetic
// Return statement so it fits PlanCaptures's []Statement contract; the
// wrapper is never emitted, only walked for Name references.
func lambdaBody(l *srcast.Lambda) []srcast.Statement {
	return []srcast.Statement{&srcast.Return{Value: l.Body, PosV: l.PosV}}
}

// moduleBindings builds the two name sets usage.NewAnalyzer needs: every
// top-level function name (so a reference to one is never mistaken for a
// captured closure variable) and every name an import statement binds at
// module scope.
func moduleBindings(mod *srcast.Module, topFuncs []*srcast.FunctionDef) (moduleFuncs, imports map[string]bool) {
	moduleFuncs = make(map[string]bool, len(topFuncs))
	for _, fn := range topFuncs {
		moduleFuncs[fn.Name] = true
	}

	imports = make(map[string]bool)
	for _, stmt := range mod.Body {
		switch n := stmt.(type) {
		case *srcast.Import:
			if n.Alias != "" {
				imports[n.Alias] = true
			} else {
				imports[n.Module] = true
			}
		case *srcast.ImportFrom:
			for _, sym := range n.Names {
				if alias, ok := n.Aliases[sym]; ok {
					imports[alias] = true
				} else {
					imports[sym] = true
				}
			}
		}
	}
	return moduleFuncs, imports
}

// allFunctions flattens every module-level function and method into one
// slice, the unit siggen.ComputeErrorUnions's fixpoint iterates over.
func allFunctions(topFuncs []*srcast.FunctionDef, topClasses []*srcast.ClassDef) []*srcast.FunctionDef {
	all := make([]*srcast.FunctionDef, 0, len(topFuncs))
	all = append(all, topFuncs...)
	for _, cls := range topClasses {
		all = append(all, cls.Methods()...)
	}
	return all
}

// funcResolver builds the name->FunctionDef lookup siggen's error-union
// propagation needs to follow a call site back to its callee: module
// functions first, then every class's own methods (a call to "update"
// resolves ambiguously across classes, but that only matters for
// same-class calls, which is the only case a plain identifier call can
// mean).
func funcResolver(topFuncs []*srcast.FunctionDef, topClasses []*srcast.ClassDef) func(string) (*srcast.FunctionDef, bool) {
	byName := make(map[string]*srcast.FunctionDef, len(topFuncs))
	for _, fn := range topFuncs {
		byName[fn.Name] = fn
	}
	methodsByClass := make(map[string]map[string]*srcast.FunctionDef, len(topClasses))
	for _, cls := range topClasses {
		m := make(map[string]*srcast.FunctionDef, len(cls.Methods()))
		for _, fn := range cls.Methods() {
			m[fn.Name] = fn
		}
		methodsByClass[cls.Name] = m
	}

	return func(name string) (*srcast.FunctionDef, bool) {
		if fn, ok := byName[name]; ok {
			return fn, true
		}
		for _, methods := range methodsByClass {
			if fn, ok := methods[name]; ok {
				return fn, true
			}
		}
		return nil, false
	}
}
