// Package siggen implements the Signature Generator (spec.md §4.D,
// component D): for every function and method it decides the Zig
// parameter list, the self-parameter's mutability, whether an allocator
// parameter is needed, the return type, and whether the return type must
// be wrapped in an error union.
//
// Grounded on the teacher's internal/bytecode/compiler_functions.go (the
// per-function compilation entry point that inspects parameters and
// builds a callable's shape) generalized from "emit bytecode for this
// function" to "decide this function's target-language signature".
package siggen

import (
	"github.com/cwbudde/pycc/internal/inferrer"
	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/cwbudde/pycc/internal/rename"
	"github.com/cwbudde/pycc/internal/scope"
	"github.com/cwbudde/pycc/internal/srcast"
)

// ParamSig is one resolved parameter.
type ParamSig struct {
	SourceName string
	TargetName string
	Type       nativetype.NativeType
}

// FunctionTraits is the full decision set spec.md §4.D's contract
// requires for one function or method.
type FunctionTraits struct {
	SourceName string
	TargetName string

	IsMethod      bool
	IsStatic      bool // @staticmethod: no self parameter at all
	IsClassMethod bool // @classmethod: first parameter is the class, not an instance
	IsAsync       bool

	// IsInit is true for a class's __init__: it takes no self parameter at
	// all (the emitter declares `self` as a local `Self` value instead),
	// always needs an allocator, and always returns Self rather than void.
	IsInit bool

	// SelfMutable is true when the method's own body writes to a self
	// field, so the self parameter is emitted as *Self rather than Self.
	// Writes made only by other methods it calls are not considered.
	SelfMutable bool

	// NeedsAllocator is true when the function is an __init__, its body
	// builds a growable container (a list/set/dict literal, comprehension,
	// or list()/set()/dict() call), or it returns a list, dict, set or
	// class instance, requiring a std.mem.Allocator parameter. A class
	// instantiation that is not returned, an f-string, or a string
	// concatenation does not set it.
	NeedsAllocator bool

	Params []ParamSig
	Vararg *ParamSig
	KwOnly []ParamSig
	Kwarg  *ParamSig

	ReturnType   nativetype.NativeType
	ReturnsError bool
	IsVoid       bool
}

// Generator computes FunctionTraits for every function/method in a
// module, sharing the Type Inferrer's and Class Registry's results.
type Generator struct {
	renames *rename.Map
}

// New creates a Generator bound to the module compilation's rename map.
func New(renames *rename.Map) *Generator {
	return &Generator{renames: renames}
}

// Traits computes the full signature decision for fn. class is nil for a
// module-level function. callArgTypes is the per-position widened
// argument type inferrer.Result.FuncCallArgs recorded for fn.
func (g *Generator) Traits(fn *srcast.FunctionDef, class *srcast.ClassDef, result *inferrer.Result, callArgTypes []nativetype.NativeType, raisesError bool) *FunctionTraits {
	t := &FunctionTraits{
		SourceName:    fn.Name,
		TargetName:    g.targetName(fn, class),
		IsMethod:      class != nil,
		IsStatic:      fn.HasDecorator("staticmethod"),
		IsClassMethod: fn.HasDecorator("classmethod"),
		IsAsync:       fn.IsAsync,
		IsInit:        class != nil && fn.Name == "__init__",
	}

	g.resolveParams(t, fn, class, callArgTypes)
	t.SelfMutable = t.IsMethod && !t.IsStatic && !t.IsInit && methodMutatesSelf(fn)

	inferredReturn := nativetype.TUnknown
	if result != nil {
		inferredReturn = result.FuncReturnTypes[fn]
	}
	if t.IsInit {
		t.ReturnType = nativetype.TClassInstance(class.Name)
		t.IsVoid = false
	} else {
		t.ReturnType = ResolveReturnType(fn, class, inferredReturn)
		t.IsVoid = !hasValueReturn(fn.Body) && magicReturn(fn.Name) == nil
	}
	// needsAllocator reads t.ReturnType, so it runs once that is resolved.
	t.NeedsAllocator = t.IsInit || needsAllocator(fn, t)
	t.ReturnsError = raisesError

	return t
}

// targetName resolves fn's Zig identifier. A class's __init__ is the one
// dunder with a caller-visible naming convention outside the operator
// tables (internal/emitter's dunderForBinOp/dunderForAugOp/dunderForCompare):
// emitter.emitNameCall always calls a constructor as ClassName.init(...), so
// __init__ must resolve to "init" rather than through the generic rename
// table.
func (g *Generator) targetName(fn *srcast.FunctionDef, class *srcast.ClassDef) string {
	if class != nil && fn.Name == "__init__" {
		g.renames.Reserve("init")
		return "init"
	}
	return g.renames.Resolve(fn.Name, fn.Name+"_fn")
}

func (g *Generator) resolveParams(t *FunctionTraits, fn *srcast.FunctionDef, class *srcast.ClassDef, callArgTypes []nativetype.NativeType) {
	if fn.Params == nil {
		return
	}

	start := 0
	if t.IsMethod && !t.IsStatic && len(fn.Params.Args) > 0 {
		// self (or cls for a classmethod) is handled structurally by the
		// emitter, not listed among ordinary ParamSigs.
		start = 1
	}

	for i := start; i < len(fn.Params.Args); i++ {
		p := fn.Params.Args[i]
		pt := nativetype.TUnknown
		if i < len(callArgTypes) {
			pt = callArgTypes[i]
		}
		if hint, ok := annotationHint(p.Annotation); ok {
			pt = hint
		}
		t.Params = append(t.Params, ParamSig{
			SourceName: p.Name,
			TargetName: g.renames.ResolveLocal(scope.Of(fn), p.Name, p.Name+"_p"),
			Type:       pt,
		})
	}

	if fn.Params.Vararg != nil {
		t.Vararg = &ParamSig{
			SourceName: fn.Params.Vararg.Name,
			TargetName: g.renames.ResolveLocal(scope.Of(fn), fn.Params.Vararg.Name, fn.Params.Vararg.Name+"_va"),
			Type:       nativetype.TTuple(),
		}
	}
	for _, p := range fn.Params.KwOnly {
		t.KwOnly = append(t.KwOnly, ParamSig{
			SourceName: p.Name,
			TargetName: g.renames.ResolveLocal(scope.Of(fn), p.Name, p.Name+"_kw"),
			Type:       nativetype.TPyValue,
		})
	}
	if fn.Params.Kwarg != nil {
		t.Kwarg = &ParamSig{
			SourceName: fn.Params.Kwarg.Name,
			TargetName: g.renames.ResolveLocal(scope.Of(fn), fn.Params.Kwarg.Name, fn.Params.Kwarg.Name+"_kwargs"),
			Type:       nativetype.TDict(nativetype.TStringRuntime(), nativetype.TPyValue),
		}
	}
}

func annotationHint(annotation string) (nativetype.NativeType, bool) {
	switch annotation {
	case "int":
		return nativetype.TInt(), true
	case "float":
		return nativetype.TFloat, true
	case "bool":
		return nativetype.TBool, true
	case "str":
		return nativetype.TStringRuntime(), true
	default:
		return nativetype.NativeType{}, false
	}
}

// needsAllocator reports whether fn's body can be seen, without running
// the emitter, to require a std.mem.Allocator parameter: its return type
// is a list, dict, set or class instance, or its own body (not nested
// scopes) constructs a growable container. Class instantiation that is not
// returned and runtime string building are not detected.
func needsAllocator(fn *srcast.FunctionDef, t *FunctionTraits) bool {
	if t.ReturnType.Kind == nativetype.List || t.ReturnType.Kind == nativetype.Dict ||
		t.ReturnType.Kind == nativetype.Set || t.ReturnType.Kind == nativetype.ClassInstance {
		return true
	}
	needs := false
	for _, stmt := range fn.Body {
		srcast.InspectShallow(stmt, func(n srcast.Node) bool {
			switch e := n.(type) {
			case *srcast.ListLit, *srcast.SetLit, *srcast.DictLit, *srcast.ListComp, *srcast.SetComp, *srcast.DictComp:
				needs = true
			case *srcast.Call:
				if name, ok := e.Func.(*srcast.Name); ok {
					switch name.Ident {
					case "list", "set", "dict":
						needs = true
					}
				}
			}
			return true
		})
	}
	return needs
}

// methodMutatesSelf scans fn's own body (not nested closures) for a write
// through `self.attr`.
func methodMutatesSelf(fn *srcast.FunctionDef) bool {
	mutates := false
	for _, stmt := range fn.Body {
		srcast.InspectShallow(stmt, func(n srcast.Node) bool {
			switch s := n.(type) {
			case *srcast.Assign:
				for _, target := range s.Targets {
					if isSelfAttribute(target) {
						mutates = true
					}
				}
			case *srcast.AugAssign:
				if isSelfAttribute(s.Target) {
					mutates = true
				}
			}
			return true
		})
	}
	return mutates
}

func isSelfAttribute(e srcast.Expression) bool {
	attr, ok := e.(*srcast.Attribute)
	if !ok {
		return false
	}
	name, ok := attr.Value.(*srcast.Name)
	return ok && name.Ident == "self"
}

// hasValueReturn reports whether body contains any `return <expr>`
// statement (a bare `return` does not count, per spec.md §4.B).
func hasValueReturn(body []srcast.Statement) bool {
	found := false
	for _, stmt := range body {
		srcast.InspectShallow(stmt, func(n srcast.Node) bool {
			if r, ok := n.(*srcast.Return); ok && r.Value != nil {
				found = true
			}
			return true
		})
	}
	return found
}
