package srcast

// Inspect traverses node depth-first, calling fn(node) before descending
// into its children. If fn returns false, Inspect does not descend into
// that node's children (mirroring go/ast.Inspect, which the backend's
// capture-discovery and usage-analysis algorithms both rely on for a
// single recursive traversal per spec.md §4.B/§4.C).
//
// Inspect always descends into nested FunctionDef and ClassDef bodies,
// which callers that need to see everything (e.g. capture discovery, which
// must distinguish the class's own scope from enclosing function scopes)
// rely on; InspectShallow is the variant that stops at those boundaries.
func Inspect(node Node, fn func(Node) bool) {
	inspect(node, fn, true)
}

// InspectShallow behaves like Inspect but stops at nested function and
// class boundaries, which is what per-scope traversals (inference, usage
// analysis within one function) want: each scope is walked on its own.
func InspectShallow(node Node, fn func(Node) bool) {
	inspect(node, fn, false)
}

func inspect(node Node, fn func(Node) bool, intoNested bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}

	walkStmts := func(stmts []Statement) {
		for _, s := range stmts {
			inspect(s, fn, intoNested)
		}
	}
	walkExprs := func(exprs []Expression) {
		for _, e := range exprs {
			inspect(e, fn, intoNested)
		}
	}

	switch n := node.(type) {
	case *Module:
		walkStmts(n.Body)
	case *FunctionDef:
		if !intoNested {
			return
		}
		if n.Params != nil {
			for _, p := range n.Params.Args {
				inspect(p.Default, fn, intoNested)
			}
			for _, p := range n.Params.KwOnly {
				inspect(p.Default, fn, intoNested)
			}
		}
		walkStmts(n.Body)
	case *ClassDef:
		if !intoNested {
			return
		}
		walkStmts(n.Body)
	case *Assign:
		walkExprs(n.Targets)
		inspect(n.Value, fn, intoNested)
	case *AugAssign:
		inspect(n.Target, fn, intoNested)
		inspect(n.Value, fn, intoNested)
	case *AnnAssign:
		inspect(n.Target, fn, intoNested)
		inspect(n.Value, fn, intoNested)
	case *ExprStmt:
		inspect(n.Value, fn, intoNested)
	case *Return:
		inspect(n.Value, fn, intoNested)
	case *Raise:
		inspect(n.Exc, fn, intoNested)
		inspect(n.Cause, fn, intoNested)
	case *Delete:
		walkExprs(n.Targets)
	case *Assert:
		inspect(n.Test, fn, intoNested)
		inspect(n.Msg, fn, intoNested)
	case *If:
		inspect(n.Test, fn, intoNested)
		walkStmts(n.Body)
		walkStmts(n.Orelse)
	case *While:
		inspect(n.Test, fn, intoNested)
		walkStmts(n.Body)
		walkStmts(n.Orelse)
	case *For:
		inspect(n.Target, fn, intoNested)
		inspect(n.Iter, fn, intoNested)
		walkStmts(n.Body)
		walkStmts(n.Orelse)
	case *Try:
		walkStmts(n.Body)
		for _, h := range n.Handlers {
			inspect(h.Type, fn, intoNested)
			walkStmts(h.Body)
		}
		walkStmts(n.Orelse)
		walkStmts(n.Finalbody)
	case *With:
		for _, item := range n.Items {
			inspect(item.ContextExpr, fn, intoNested)
			inspect(item.OptionalVars, fn, intoNested)
		}
		walkStmts(n.Body)
	case *Attribute:
		inspect(n.Value, fn, intoNested)
	case *Subscript:
		inspect(n.Value, fn, intoNested)
		inspect(n.Index, fn, intoNested)
	case *Slice:
		inspect(n.Lower, fn, intoNested)
		inspect(n.Upper, fn, intoNested)
		inspect(n.Step, fn, intoNested)
	case *Call:
		inspect(n.Func, fn, intoNested)
		walkExprs(n.Args)
		for _, kw := range n.Keywords {
			inspect(kw, fn, intoNested)
		}
	case *Keyword:
		inspect(n.Value, fn, intoNested)
	case *BinOp:
		inspect(n.Left, fn, intoNested)
		inspect(n.Right, fn, intoNested)
	case *UnaryOp:
		inspect(n.Operand, fn, intoNested)
	case *BoolOp:
		walkExprs(n.Values)
	case *Compare:
		inspect(n.Left, fn, intoNested)
		walkExprs(n.Comparators)
	case *Lambda:
		if n.Params != nil {
			for _, p := range n.Params.Args {
				inspect(p.Default, fn, intoNested)
			}
		}
		inspect(n.Body, fn, intoNested)
	case *IfExp:
		inspect(n.Test, fn, intoNested)
		inspect(n.Body, fn, intoNested)
		inspect(n.Orelse, fn, intoNested)
	case *ListLit:
		walkExprs(n.Elems)
	case *TupleLit:
		walkExprs(n.Elems)
	case *SetLit:
		walkExprs(n.Elems)
	case *DictLit:
		walkExprs(n.Keys)
		walkExprs(n.Values)
	case *ListComp:
		walkComprehensions(n.Gens, fn, intoNested)
		inspect(n.Elt, fn, intoNested)
	case *SetComp:
		walkComprehensions(n.Gens, fn, intoNested)
		inspect(n.Elt, fn, intoNested)
	case *DictComp:
		walkComprehensions(n.Gens, fn, intoNested)
		inspect(n.Key, fn, intoNested)
		inspect(n.Value, fn, intoNested)
	case *GeneratorExp:
		walkComprehensions(n.Gens, fn, intoNested)
		inspect(n.Elt, fn, intoNested)
	case *JoinedStr:
		walkExprs(n.Parts)
	case *Starred:
		inspect(n.Value, fn, intoNested)
	case *Yield:
		inspect(n.Value, fn, intoNested)
	case *YieldFrom:
		inspect(n.Value, fn, intoNested)
	case *Await:
		inspect(n.Value, fn, intoNested)
	}
}

func walkComprehensions(gens []*Comprehension, fn func(Node) bool, intoNested bool) {
	for _, g := range gens {
		inspect(g.Iter, fn, intoNested)
		inspect(g.Target, fn, intoNested)
		for _, cond := range g.Ifs {
			inspect(cond, fn, intoNested)
		}
	}
}
