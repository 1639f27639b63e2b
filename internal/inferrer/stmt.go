package inferrer

import (
	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/cwbudde/pycc/internal/scope"
	"github.com/cwbudde/pycc/internal/srcast"
)

func (inf *Inferrer) inferBody(s scope.ID, body []srcast.Statement) {
	for _, stmt := range body {
		inf.inferStmt(s, stmt)
	}
}

func (inf *Inferrer) inferStmt(s scope.ID, stmt srcast.Statement) {
	switch n := stmt.(type) {
	case *srcast.Assign:
		t := inf.inferExpr(s, n.Value)
		for _, target := range n.Targets {
			inf.assignTo(s, target, t)
		}

	case *srcast.AugAssign:
		old := inf.inferExpr(s, n.Target)
		rhs := inf.inferExpr(s, n.Value)
		op := n.Op
		if len(op) > 1 && op[len(op)-1] == '=' {
			op = op[:len(op)-1]
		}
		widened := inf.binOpType(op, old, rhs, n.Value)
		inf.assignTo(s, n.Target, widened)

	case *srcast.AnnAssign:
		var t nativetype.NativeType
		if n.Value != nil {
			t = inf.inferExpr(s, n.Value)
		}
		if hint, ok := annotationHint(n.Annotation); ok {
			// Explicit annotation wins over the inferred type when the two
			// disagree, per spec.md §7 kind 4.
			t = hint
		}
		inf.assignTo(s, n.Target, t)

	case *srcast.ExprStmt:
		inf.inferExpr(s, n.Value)

	case *srcast.Return:
		if n.Value == nil {
			return
		}
		t := inf.inferExpr(s, n.Value)
		if inf.currentFunc != nil {
			existing := inf.result.FuncReturnTypes[inf.currentFunc]
			inf.result.FuncReturnTypes[inf.currentFunc] = nativetype.Widen(existing, t)
		}

	case *srcast.If:
		inf.inferExpr(s, n.Test)
		inf.inferBody(s, n.Body)
		inf.inferBody(s, n.Orelse)

	case *srcast.While:
		inf.inferExpr(s, n.Test)
		inf.inferBody(s, n.Body)
		inf.inferBody(s, n.Orelse)

	case *srcast.For:
		iterType := inf.inferExpr(s, n.Iter)
		inf.assignTo(s, n.Target, elemOf(iterType))
		inf.inferBody(s, n.Body)
		inf.inferBody(s, n.Orelse)

	case *srcast.Try:
		inf.inferBody(s, n.Body)
		for _, h := range n.Handlers {
			if h.Type != nil {
				inf.inferExpr(s, h.Type)
			}
			if h.Name != "" {
				inf.result.Scopes.Declare(s, h.Name, nativetype.TPyValue)
			}
			inf.inferBody(s, h.Body)
		}
		inf.inferBody(s, n.Orelse)
		inf.inferBody(s, n.Finalbody)

	case *srcast.With:
		for _, item := range n.Items {
			ctxType := inf.inferExpr(s, item.ContextExpr)
			if item.OptionalVars != nil {
				inf.assignTo(s, item.OptionalVars, ctxType)
			}
		}
		inf.inferBody(s, n.Body)

	case *srcast.FunctionDef:
		inf.inferFunctionDef(s, n, inf.currentClass)

	case *srcast.ClassDef:
		inf.inferClassDef(s, n)

	case *srcast.Raise:
		if n.Exc != nil {
			inf.inferExpr(s, n.Exc)
		}
		if n.Cause != nil {
			inf.inferExpr(s, n.Cause)
		}

	case *srcast.Assert:
		inf.inferExpr(s, n.Test)
		if n.Msg != nil {
			inf.inferExpr(s, n.Msg)
		}

	case *srcast.Delete:
		for _, target := range n.Targets {
			inf.inferExpr(s, target)
		}

	case *srcast.Import:
		alias := n.Alias
		if alias == "" {
			alias = n.Module
		}
		inf.imports[alias] = n.Module

	case *srcast.ImportFrom:
		// `from module import symbol` records each local name under the
		// namespace "module.symbol"; only `symbol.attr` reads and calls
		// consult the import registry through it. A bare `symbol(...)` call
		// is not looked up there and infers Unknown.
		for _, name := range n.Names {
			local := name
			if alias, ok := n.Aliases[name]; ok {
				local = alias
			}
			inf.imports[local] = n.Module + "." + name
		}

	case *srcast.Pass, *srcast.Break, *srcast.Continue, *srcast.Global, *srcast.Nonlocal:
		// No type information to gather.
	}
}

func (inf *Inferrer) inferFunctionDef(s scope.ID, fn *srcast.FunctionDef, class *srcast.ClassDef) {
	child := inf.result.Scopes.Child(s, fn)

	prevFunc, prevClass := inf.currentFunc, inf.currentClass
	inf.currentFunc, inf.currentClass = fn, class
	defer func() { inf.currentFunc, inf.currentClass = prevFunc, prevClass }()

	if fn.Params != nil {
		callArgs := inf.result.FuncCallArgs[fn]
		for i, p := range fn.Params.Args {
			t := nativetype.TUnknown
			if i < len(callArgs) {
				t = callArgs[i]
			}
			if p.Default != nil {
				t = nativetype.Widen(t, inf.inferExpr(s, p.Default))
			}
			if class != nil && i == 0 && p.Name == "self" && !fn.HasDecorator("staticmethod") {
				t = nativetype.TClassInstance(class.Name)
			}
			if hint, ok := annotationHint(p.Annotation); ok {
				t = hint
			}
			inf.result.Scopes.Declare(child, p.Name, t)
		}
		if fn.Params.Vararg != nil {
			inf.result.Scopes.Declare(child, fn.Params.Vararg.Name, nativetype.TTuple())
		}
		for _, p := range fn.Params.KwOnly {
			t := nativetype.TUnknown
			if p.Default != nil {
				t = inf.inferExpr(s, p.Default)
			}
			inf.result.Scopes.Declare(child, p.Name, t)
		}
		if fn.Params.Kwarg != nil {
			inf.result.Scopes.Declare(child, fn.Params.Kwarg.Name, nativetype.TDict(nativetype.TStringRuntime(), nativetype.TPyValue))
		}
	}

	inf.inferBody(child, fn.Body)

	if class != nil {
		cf := inf.ensureClassFields(class)
		cf.Methods[fn.Name] = inf.result.FuncReturnTypes[fn]
	}
}

func (inf *Inferrer) inferClassDef(s scope.ID, cls *srcast.ClassDef) {
	cf := inf.ensureClassFields(cls)

	// Class-level assignments (class variables) seed the field table before
	// methods run, so a method reading a class variable through self sees a
	// type immediately rather than only after a fixpoint pass.
	classScope := inf.result.Scopes.Child(s, cls)
	for _, a := range cls.ClassLevelAssigns() {
		t := inf.inferExpr(classScope, a.Value)
		for _, target := range a.Targets {
			if name, ok := target.(*srcast.Name); ok {
				cf.Fields[name.Ident] = nativetype.Widen(cf.Fields[name.Ident], t)
			}
		}
	}

	for _, m := range cls.Methods() {
		inf.inferFunctionDef(s, m, cls)
	}
	for _, nested := range cls.NestedClasses() {
		inf.inferClassDef(s, nested)
	}
}

// assignTo binds target's type, recursing through tuple/list-unpack
// targets so each bound name gets its own element type.
func (inf *Inferrer) assignTo(s scope.ID, target srcast.Expression, t nativetype.NativeType) {
	switch tgt := target.(type) {
	case *srcast.Name:
		inf.result.Scopes.Declare(s, tgt.Ident, t)

	case *srcast.TupleLit:
		inf.unpackInto(s, tgt.Elems, t)
	case *srcast.ListLit:
		inf.unpackInto(s, tgt.Elems, t)

	case *srcast.Starred:
		inf.assignTo(s, tgt.Value, nativetype.TList(elemOf(t)))

	case *srcast.Attribute:
		if name, ok := tgt.Value.(*srcast.Name); ok && name.Ident == "self" && inf.currentClass != nil {
			cf := inf.ensureClassFields(inf.currentClass)
			cf.Fields[tgt.Attr] = nativetype.Widen(cf.Fields[tgt.Attr], t)
			return
		}
		inf.inferExpr(s, tgt.Value)

	case *srcast.Subscript:
		inf.inferExpr(s, tgt.Value)
		inf.inferExpr(s, tgt.Index)
	}
}

func (inf *Inferrer) unpackInto(s scope.ID, targets []srcast.Expression, rhs nativetype.NativeType) {
	if rhs.Kind == nativetype.Tuple && len(rhs.Elems) == len(targets) {
		for i, target := range targets {
			inf.assignTo(s, target, rhs.Elems[i])
		}
		return
	}
	elem := elemOf(rhs)
	for _, target := range targets {
		inf.assignTo(s, target, elem)
	}
}

// elemOf returns the element type of any iterable NativeType, or Unknown
// for an iterable whose element shape is not tracked (e.g. a bare Unknown
// being iterated before its type is known).
func elemOf(t nativetype.NativeType) nativetype.NativeType {
	switch t.Kind {
	case nativetype.List, nativetype.Array, nativetype.Set, nativetype.Deque:
		if t.Elem != nil {
			return *t.Elem
		}
	case nativetype.Dict, nativetype.Defaultdict:
		if t.Key != nil {
			return *t.Key
		}
	case nativetype.String:
		return nativetype.TStringRuntime()
	case nativetype.Tuple:
		return nativetype.WidenAll(t.Elems)
	}
	return nativetype.TUnknown
}

// annotationHint maps a handful of explicit source-level annotation
// spellings to a NativeType; anything else is left for ordinary inference
// (spec.md §9 Open Question territory: full annotation parsing is out of
// scope, only the common scalar/container spellings are honored).
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
	case "bytes":
		return nativetype.TBytes, true
	case "None":
		return nativetype.TNone, true
	default:
		return nativetype.NativeType{}, false
	}
}
