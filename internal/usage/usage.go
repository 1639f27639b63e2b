// Package usage implements the Usage & Mutation Analyzer (spec.md §4.B,
// component B): a single recursive traversal that classifies every name in
// every scope with boolean traits. The Statement/Expression Emitter reads
// them to choose const-vs-mutable bindings, iterator bindings, and whether
// a binding is unused; the Signature Generator does not read them (it
// decides self-parameter mutability from its own scan of a method body).
//
// Grounded on the teacher's single-pass analyzer style
// (function_pointer_analyzer.go, lambda_analyzer.go): one traversal,
// booleans flipped in place, no backtracking.
package usage

import (
	"github.com/cwbudde/pycc/internal/scope"
	"github.com/cwbudde/pycc/internal/srcast"
)

// Key identifies one name within one scope.
type Key struct {
	Scope scope.ID
	Name  string
}

// Info holds the boolean traits spec.md §4.B enumerates for one name.
type Info struct {
	UsedDirectly            bool
	Captured                bool
	Mutated                 bool
	UsedAsCallable          bool
	UsedAsIterator          bool
	UsedInTypeCheck         bool
	ComparedToStringLiteral bool
	ShadowsModuleFunc       bool
	ShadowsImport           bool
	ShadowsClassMethod      bool

	// bound records that this Key has been written at least once; the
	// second write is what flips Mutated (spec.md §4.B: "written after
	// first binding").
	bound bool
}

// Result is the full table produced by one Analyze call, plus the scope
// table used to build it (the Class Registry, Signature Generator, and
// Emitter all need the same scope ids to look entries up).
type Result struct {
	Scopes *scope.Table
	Info   map[Key]*Info
}

func (r *Result) get(s scope.ID, name string) *Info {
	k := Key{s, name}
	info, ok := r.Info[k]
	if !ok {
		info = &Info{}
		r.Info[k] = info
	}
	return info
}

// Analyzer runs the single traversal. moduleFuncs and imports are the
// names already known to be module-level function definitions and
// imported symbols respectively, used for the shadow-detection traits.
type Analyzer struct {
	result      *Result
	moduleFuncs map[string]bool
	imports     map[string]bool
	// boundary marks scopes entered by crossing into a nested ClassDef or
	// Lambda body, the information capture detection needs.
	boundary map[scope.ID]bool
}

func NewAnalyzer(moduleFuncs, imports map[string]bool) *Analyzer {
	return &Analyzer{
		result: &Result{
			Scopes: scope.New(),
			Info:   make(map[Key]*Info),
		},
		moduleFuncs: moduleFuncs,
		imports:     imports,
		boundary:    make(map[scope.ID]bool),
	}
}

// Analyze classifies every name in mod and returns the populated Result.
func (a *Analyzer) Analyze(mod *srcast.Module) *Result {
	a.analyzeBody(scope.Module, mod.Body, nil)
	return a.result
}

// classCtx carries the sibling-method-name set used for
// ShadowsClassMethod while walking a class body. classScope is the class
// body's own scope id, so a method's or field's name binding there (the
// method/field declarations themselves) is never mistaken for a local
// shadowing one of its siblings.
type classCtx struct {
	siblingMethods map[string]bool
	classScope     scope.ID
}

func (a *Analyzer) bind(s scope.ID, name string, cc *classCtx) {
	info := a.result.get(s, name)
	if info.bound {
		info.Mutated = true
	}
	info.bound = true
	if a.moduleFuncs[name] && s != scope.Module {
		info.ShadowsModuleFunc = true
	}
	if a.imports[name] && s != scope.Module {
		info.ShadowsImport = true
	}
	if cc != nil && cc.siblingMethods[name] && s != cc.classScope {
		info.ShadowsClassMethod = true
	}
}

func (a *Analyzer) markUsed(s scope.ID, name string) {
	defScope, found := a.findDefiningScope(s, name)
	target := s
	if found {
		target = defScope
	}
	info := a.result.get(target, name)
	info.UsedDirectly = true
	if found && a.crossesBoundary(s, defScope) {
		info.Captured = true
	}
}

// findDefiningScope walks outward from s looking for the nearest scope
// that has bound name, mirroring scope.Table.Lookup's walk but returning
// the scope id rather than the type.
func (a *Analyzer) findDefiningScope(s scope.ID, name string) (scope.ID, bool) {
	cur := s
	for {
		if info, ok := a.result.Info[Key{cur, name}]; ok && info.bound {
			return cur, true
		}
		if cur == scope.Module {
			return scope.Module, false
		}
		cur = a.result.Scopes.Parent(cur)
	}
}

// crossesBoundary reports whether climbing from s to (and excluding) def
// passes through any scope entered via a nested class/lambda body.
func (a *Analyzer) crossesBoundary(s, def scope.ID) bool {
	if s == def {
		return false
	}
	cur := s
	for cur != def {
		if a.boundary[cur] {
			return true
		}
		if cur == scope.Module {
			return false
		}
		cur = a.result.Scopes.Parent(cur)
	}
	return false
}

func (a *Analyzer) analyzeBody(s scope.ID, body []srcast.Statement, cc *classCtx) {
	for _, stmt := range body {
		a.analyzeStmt(s, stmt, cc)
	}
}

func (a *Analyzer) analyzeStmt(s scope.ID, stmt srcast.Statement, cc *classCtx) {
	switch n := stmt.(type) {
	case *srcast.Assign:
		a.analyzeExprRValue(s, n.Value)
		for _, target := range n.Targets {
			a.analyzeAssignTarget(s, target, cc)
		}
	case *srcast.AugAssign:
		// x[i] += v marks the container, not the index, as mutated
		// (spec.md §4.B edge case).
		if sub, ok := n.Target.(*srcast.Subscript); ok {
			if name, ok := sub.Value.(*srcast.Name); ok {
				a.bind(s, name.Ident, cc)
				a.result.get(s, name.Ident).Mutated = true
			} else {
				a.analyzeExprRValue(s, sub.Value)
			}
			a.analyzeExprRValue(s, sub.Index)
		} else if attr, ok := n.Target.(*srcast.Attribute); ok {
			a.analyzeExprRValue(s, attr.Value)
		} else if name, ok := n.Target.(*srcast.Name); ok {
			a.bind(s, name.Ident, cc)
			a.result.get(s, name.Ident).Mutated = true
		}
		a.analyzeExprRValue(s, n.Value)
	case *srcast.AnnAssign:
		if n.Value != nil {
			a.analyzeExprRValue(s, n.Value)
		}
		a.analyzeAssignTarget(s, n.Target, cc)
	case *srcast.ExprStmt:
		a.analyzeExprRValue(s, n.Value)
	case *srcast.Return:
		if n.Value != nil {
			a.analyzeExprRValue(s, n.Value)
		}
	case *srcast.Raise:
		a.analyzeExprRValue(s, n.Exc)
		a.analyzeExprRValue(s, n.Cause)
	case *srcast.Delete:
		for _, t := range n.Targets {
			a.analyzeExprRValue(s, t)
		}
	case *srcast.Assert:
		a.analyzeExprRValue(s, n.Test)
		a.analyzeExprRValue(s, n.Msg)
	case *srcast.If:
		a.analyzeExprRValue(s, n.Test)
		a.analyzeBody(s, n.Body, cc)
		a.analyzeBody(s, n.Orelse, cc)
	case *srcast.While:
		a.analyzeExprRValue(s, n.Test)
		a.analyzeBody(s, n.Body, cc)
		a.analyzeBody(s, n.Orelse, cc)
	case *srcast.For:
		a.analyzeExprRValue(s, n.Iter)
		if name, ok := n.Iter.(*srcast.Name); ok {
			a.result.get(s, name.Ident).UsedAsIterator = true
		}
		a.analyzeAssignTarget(s, n.Target, cc)
		a.analyzeBody(s, n.Body, cc)
		a.analyzeBody(s, n.Orelse, cc)
	case *srcast.Try:
		a.analyzeBody(s, n.Body, cc)
		for _, h := range n.Handlers {
			if h.Type != nil {
				a.analyzeExprRValue(s, h.Type)
			}
			if h.Name != "" {
				a.bind(s, h.Name, cc)
			}
			a.analyzeBody(s, h.Body, cc)
		}
		a.analyzeBody(s, n.Orelse, cc)
		a.analyzeBody(s, n.Finalbody, cc)
	case *srcast.With:
		for _, item := range n.Items {
			a.analyzeExprRValue(s, item.ContextExpr)
			if item.OptionalVars != nil {
				a.analyzeAssignTarget(s, item.OptionalVars, cc)
			}
		}
		a.analyzeBody(s, n.Body, cc)
	case *srcast.FunctionDef:
		// Sibling method names are collected once up front when entering
		// the class body (below), not here: a function def nested inside
		// a method is a local helper, not a sibling method, and must not
		// be added to cc.siblingMethods.
		a.bind(s, n.Name, cc)
		child := a.result.Scopes.Child(s, n)
		if n.Params != nil {
			for _, p := range n.Params.Args {
				a.bind(child, p.Name, cc)
				if p.Default != nil {
					a.analyzeExprRValue(s, p.Default)
				}
			}
			if n.Params.Vararg != nil {
				a.bind(child, n.Params.Vararg.Name, cc)
			}
			for _, p := range n.Params.KwOnly {
				a.bind(child, p.Name, cc)
			}
			if n.Params.Kwarg != nil {
				a.bind(child, n.Params.Kwarg.Name, cc)
			}
		}
		// cc carries forward into the body: a local binding nested
		// inside a method (including in a further-nested function) can
		// still shadow one of its class's sibling method names.
		a.analyzeBody(child, n.Body, cc)
	case *srcast.ClassDef:
		a.bind(s, n.Name, cc)
		child := a.result.Scopes.Child(s, n)
		a.boundary[child] = true
		innerCC := &classCtx{siblingMethods: make(map[string]bool), classScope: child}
		for _, stmt := range n.Body {
			if fn, ok := stmt.(*srcast.FunctionDef); ok {
				innerCC.siblingMethods[fn.Name] = true
			}
		}
		a.analyzeBody(child, n.Body, innerCC)
	}
}

// analyzeAssignTarget handles a single assignment-target expression,
// recursing into tuple/list targets for unpack assignments.
func (a *Analyzer) analyzeAssignTarget(s scope.ID, target srcast.Expression, cc *classCtx) {
	switch t := target.(type) {
	case *srcast.Name:
		a.bind(s, t.Ident, cc)
	case *srcast.TupleLit:
		for _, e := range t.Elems {
			a.analyzeAssignTarget(s, e, cc)
		}
	case *srcast.ListLit:
		for _, e := range t.Elems {
			a.analyzeAssignTarget(s, e, cc)
		}
	case *srcast.Starred:
		a.analyzeAssignTarget(s, t.Value, cc)
	case *srcast.Attribute:
		a.analyzeExprRValue(s, t.Value)
	case *srcast.Subscript:
		a.analyzeExprRValue(s, t.Value)
		a.analyzeExprRValue(s, t.Index)
	}
}

// analyzeExprRValue visits expr in value-reading position, the context
// spec.md §4.B's is_used_directly trait is defined over.
func (a *Analyzer) analyzeExprRValue(s scope.ID, expr srcast.Expression) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *srcast.Name:
		a.markUsed(s, e.Ident)
	case *srcast.Attribute:
		a.analyzeExprRValue(s, e.Value)
	case *srcast.Subscript:
		a.analyzeExprRValue(s, e.Value)
		a.analyzeExprRValue(s, e.Index)
	case *srcast.Slice:
		a.analyzeExprRValue(s, e.Lower)
		a.analyzeExprRValue(s, e.Upper)
		a.analyzeExprRValue(s, e.Step)
	case *srcast.Call:
		a.analyzeCall(s, e)
	case *srcast.BinOp:
		a.analyzeExprRValue(s, e.Left)
		a.analyzeExprRValue(s, e.Right)
	case *srcast.UnaryOp:
		a.analyzeExprRValue(s, e.Operand)
	case *srcast.BoolOp:
		for _, v := range e.Values {
			a.analyzeExprRValue(s, v)
		}
	case *srcast.Compare:
		a.analyzeCompare(s, e)
	case *srcast.Lambda:
		child := a.result.Scopes.Child(s, e)
		a.boundary[child] = true
		if e.Params != nil {
			for _, p := range e.Params.Args {
				a.bind(child, p.Name, nil)
			}
		}
		a.analyzeExprRValue(child, e.Body)
	case *srcast.IfExp:
		a.analyzeExprRValue(s, e.Test)
		a.analyzeExprRValue(s, e.Body)
		a.analyzeExprRValue(s, e.Orelse)
	case *srcast.ListLit:
		for _, el := range e.Elems {
			a.analyzeExprRValue(s, el)
		}
	case *srcast.TupleLit:
		for _, el := range e.Elems {
			a.analyzeExprRValue(s, el)
		}
	case *srcast.SetLit:
		for _, el := range e.Elems {
			a.analyzeExprRValue(s, el)
		}
	case *srcast.DictLit:
		for _, k := range e.Keys {
			a.analyzeExprRValue(s, k)
		}
		for _, v := range e.Values {
			a.analyzeExprRValue(s, v)
		}
	case *srcast.ListComp:
		a.analyzeComprehension(s, e, e.Gens, e.Elt)
	case *srcast.SetComp:
		a.analyzeComprehension(s, e, e.Gens, e.Elt)
	case *srcast.DictComp:
		child := a.comprehensionScope(s, e, e.Gens)
		a.analyzeExprRValue(child, e.Key)
		a.analyzeExprRValue(child, e.Value)
	case *srcast.GeneratorExp:
		a.analyzeComprehension(s, e, e.Gens, e.Elt)
	case *srcast.JoinedStr:
		for _, p := range e.Parts {
			a.analyzeExprRValue(s, p)
		}
	case *srcast.Starred:
		a.analyzeExprRValue(s, e.Value)
	case *srcast.Yield:
		a.analyzeExprRValue(s, e.Value)
	case *srcast.YieldFrom:
		a.analyzeExprRValue(s, e.Value)
	case *srcast.Await:
		a.analyzeExprRValue(s, e.Value)
	}
}

func (a *Analyzer) analyzeCompare(s scope.ID, e *srcast.Compare) {
	a.analyzeExprRValue(s, e.Left)
	for _, c := range e.Comparators {
		a.analyzeExprRValue(s, c)
		if _, isStr := c.(*srcast.StringLit); isStr {
			if name, ok := e.Left.(*srcast.Name); ok {
				a.result.get(s, name.Ident).ComparedToStringLiteral = true
			}
		}
	}
}

// analyzeCall handles the UsedAsCallable trait and the isinstance/type
// type-check recognition.
func (a *Analyzer) analyzeCall(s scope.ID, call *srcast.Call) {
	if name, ok := call.Func.(*srcast.Name); ok {
		a.markUsed(s, name.Ident)
		a.result.get(s, name.Ident).UsedAsCallable = true

		if (name.Ident == "isinstance" || name.Ident == "type") && len(call.Args) > 0 {
			if target, ok := call.Args[0].(*srcast.Name); ok {
				a.result.get(s, target.Ident).UsedInTypeCheck = true
			}
		}
	} else {
		a.analyzeExprRValue(s, call.Func)
	}
	for _, arg := range call.Args {
		a.analyzeExprRValue(s, arg)
	}
	for _, kw := range call.Keywords {
		a.analyzeExprRValue(s, kw.Value)
	}
}

func (a *Analyzer) analyzeComprehension(s scope.ID, node srcast.Node, gens []*srcast.Comprehension, elt srcast.Expression) {
	child := a.comprehensionScope(s, node, gens)
	a.analyzeExprRValue(child, elt)
}

// comprehensionScope creates the comprehension's own scope (Python-3
// semantics: comprehension variables do not leak) and binds its targets.
func (a *Analyzer) comprehensionScope(s scope.ID, node srcast.Node, gens []*srcast.Comprehension) scope.ID {
	child := a.result.Scopes.Child(s, node)
	for _, g := range gens {
		a.analyzeExprRValue(s, g.Iter)
		a.analyzeAssignTarget(child, g.Target, nil)
		for _, cond := range g.Ifs {
			a.analyzeExprRValue(child, cond)
		}
	}
	return child
}
