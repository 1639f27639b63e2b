package inferrer

import (
	"strconv"

	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/cwbudde/pycc/internal/scope"
	"github.com/cwbudde/pycc/internal/srcast"
)

// inferExpr computes (and caches in ExprTypes) the NativeType of e within
// scope s, recursing into sub-expressions bottom-up.
func (inf *Inferrer) inferExpr(s scope.ID, e srcast.Expression) nativetype.NativeType {
	if e == nil {
		return nativetype.TUnknown
	}
	t := inf.inferExprUncached(s, e)
	inf.result.ExprTypes[e] = t
	return t
}

func (inf *Inferrer) inferExprUncached(s scope.ID, e srcast.Expression) nativetype.NativeType {
	switch n := e.(type) {
	case *srcast.NumberLit:
		switch {
		case n.IsBigInt:
			return nativetype.TIntUnbounded()
		case n.IsFloat:
			return nativetype.TFloat
		default:
			return nativetype.TInt()
		}

	case *srcast.StringLit:
		return nativetype.TStringLiteral()
	case *srcast.BytesLit:
		return nativetype.TBytes
	case *srcast.BoolLit:
		return nativetype.TBool
	case *srcast.NoneLit:
		return nativetype.TNone

	case *srcast.Name:
		if n.Ident == "self" && inf.currentClass != nil {
			return nativetype.TClassInstance(inf.currentClass.Name)
		}
		if t, ok := inf.result.Scopes.Lookup(s, n.Ident); ok {
			return t
		}
		return nativetype.TUnknown

	case *srcast.Attribute:
		return inf.inferAttribute(s, n)

	case *srcast.Subscript:
		valueType := inf.inferExpr(s, n.Value)
		inf.inferExpr(s, n.Index)
		if valueType.Kind == nativetype.Tuple {
			if lit, ok := n.Index.(*srcast.NumberLit); ok {
				if idx, err := strconv.Atoi(lit.Raw); err == nil && idx >= 0 && idx < len(valueType.Elems) {
					return valueType.Elems[idx]
				}
			}
			return nativetype.WidenAll(valueType.Elems)
		}
		return elemOf(valueType)

	case *srcast.Slice:
		if n.Lower != nil {
			inf.inferExpr(s, n.Lower)
		}
		if n.Upper != nil {
			inf.inferExpr(s, n.Upper)
		}
		if n.Step != nil {
			inf.inferExpr(s, n.Step)
		}
		return nativetype.TUnknown

	case *srcast.Keyword:
		return inf.inferExpr(s, n.Value)

	case *srcast.Call:
		return inf.inferCall(s, n)

	case *srcast.BinOp:
		left := inf.inferExpr(s, n.Left)
		right := inf.inferExpr(s, n.Right)
		return inf.binOpType(n.Op, left, right, n.Right)

	case *srcast.UnaryOp:
		operand := inf.inferExpr(s, n.Operand)
		if n.Op == "not" {
			return nativetype.TBool
		}
		return operand

	case *srcast.BoolOp:
		var acc nativetype.NativeType
		for _, v := range n.Values {
			acc = nativetype.Widen(acc, inf.inferExpr(s, v))
		}
		return acc

	case *srcast.Compare:
		inf.inferExpr(s, n.Left)
		for _, c := range n.Comparators {
			inf.inferExpr(s, c)
		}
		return nativetype.TBool

	case *srcast.Lambda:
		child := inf.result.Scopes.Child(s, n)
		if n.Params != nil {
			for _, p := range n.Params.Args {
				t := nativetype.TUnknown
				if p.Default != nil {
					t = inf.inferExpr(s, p.Default)
				}
				inf.result.Scopes.Declare(child, p.Name, t)
			}
		}
		inf.inferExpr(child, n.Body)
		return nativetype.TCallable()

	case *srcast.IfExp:
		inf.inferExpr(s, n.Test)
		body := inf.inferExpr(s, n.Body)
		orelse := inf.inferExpr(s, n.Orelse)
		return nativetype.Widen(body, orelse)

	case *srcast.ListLit:
		return nativetype.TList(inf.inferExprList(s, n.Elems))
	case *srcast.TupleLit:
		return nativetype.TTuple(inf.inferExprSlice(s, n.Elems)...)
	case *srcast.SetLit:
		return nativetype.TSet(inf.inferExprList(s, n.Elems))

	case *srcast.DictLit:
		keys := inf.inferExprList(s, n.Keys)
		vals := inf.inferExprList(s, n.Values)
		return nativetype.TDict(keys, vals)

	case *srcast.ListComp:
		inner := inf.comprehensionScope(s, n, n.Gens)
		elt := inf.inferExpr(inner, n.Elt)
		return nativetype.TList(elt)

	case *srcast.SetComp:
		inner := inf.comprehensionScope(s, n, n.Gens)
		elt := inf.inferExpr(inner, n.Elt)
		return nativetype.TSet(elt)

	case *srcast.DictComp:
		inner := inf.comprehensionScope(s, n, n.Gens)
		key := inf.inferExpr(inner, n.Key)
		val := inf.inferExpr(inner, n.Value)
		return nativetype.TDict(key, val)

	case *srcast.GeneratorExp:
		// Treated as an eager sequence (SPEC_FULL.md Supplemented Features).
		inner := inf.comprehensionScope(s, n, n.Gens)
		elt := inf.inferExpr(inner, n.Elt)
		return nativetype.TList(elt)

	case *srcast.JoinedStr:
		for _, part := range n.Parts {
			inf.inferExpr(s, part)
		}
		return nativetype.TStringRuntime()

	case *srcast.Starred:
		return inf.inferExpr(s, n.Value)

	case *srcast.Yield:
		if n.Value != nil {
			inf.inferExpr(s, n.Value)
		}
		return nativetype.TUnknown

	case *srcast.YieldFrom:
		inf.inferExpr(s, n.Value)
		return nativetype.TUnknown

	case *srcast.Await:
		return inf.inferExpr(s, n.Value)
	}

	return nativetype.TUnknown
}

func (inf *Inferrer) inferExprList(s scope.ID, exprs []srcast.Expression) nativetype.NativeType {
	return nativetype.WidenAll(inf.inferExprSlice(s, exprs))
}

func (inf *Inferrer) inferExprSlice(s scope.ID, exprs []srcast.Expression) []nativetype.NativeType {
	out := make([]nativetype.NativeType, len(exprs))
	for i, e := range exprs {
		out[i] = inf.inferExpr(s, e)
	}
	return out
}

func (inf *Inferrer) comprehensionScope(s scope.ID, node srcast.Node, gens []*srcast.Comprehension) scope.ID {
	inner := inf.result.Scopes.Child(s, node)
	for _, g := range gens {
		iterType := inf.inferExpr(inner, g.Iter)
		inf.assignTo(inner, g.Target, elemOf(iterType))
		for _, cond := range g.Ifs {
			inf.inferExpr(inner, cond)
		}
	}
	return inner
}

func (inf *Inferrer) inferAttribute(s scope.ID, n *srcast.Attribute) nativetype.NativeType {
	if recv, ok := n.Value.(*srcast.Name); ok {
		if recv.Ident == "self" && inf.currentClass != nil {
			cf := inf.ensureClassFields(inf.currentClass)
			if t, ok := cf.Fields[n.Attr]; ok {
				return t
			}
			if t, ok := cf.Methods[n.Attr]; ok {
				return t
			}
			return nativetype.TUnknown
		}
		if module, ok := inf.imports[recv.Ident]; ok {
			if meta, ok := inf.lookupImport(module, n.Attr); ok {
				return meta
			}
		}
	}
	inf.inferExpr(s, n.Value)
	return nativetype.TUnknown
}

func (inf *Inferrer) lookupImport(module, symbol string) (nativetype.NativeType, bool) {
	if inf.importRegistry == nil {
		return nativetype.TUnknown, false
	}
	meta, ok := inf.importRegistry.Lookup(module, symbol)
	if !ok || meta.Function == nil {
		return nativetype.TUnknown, false
	}
	return meta.Function.ReturnType, true
}

// binOpType implements the numeric-promotion table spec.md §4.A describes:
// int+int stays int unless either side is unbounded, mixing in a float
// promotes to float (even against a big integer), otherwise anything
// touching a big integer promotes to bigint, and an operand pairing with no common numeric refinement falls back to
// the left operand's type.
func (inf *Inferrer) binOpType(op string, left, right nativetype.NativeType, rightExpr srcast.Expression) nativetype.NativeType {
	if op == "+" && left.Kind == nativetype.String && right.Kind == nativetype.String {
		return nativetype.TStringRuntime()
	}
	if op == "+" && (left.Kind == nativetype.List || left.Kind == nativetype.Tuple) && left.Kind == right.Kind {
		return nativetype.Widen(left, right)
	}
	if op == "*" && (left.Kind == nativetype.List || left.Kind == nativetype.String) && isNumericKind(right.Kind) {
		return left
	}

	ln, rn := normalizeNumeric(left), normalizeNumeric(right)
	if !isNumericKind(ln.Kind) || !isNumericKind(rn.Kind) {
		return left
	}

	switch op {
	case "/":
		return nativetype.TFloat
	case "**":
		if isLargeConstant(rightExpr) {
			return nativetype.TBigInt
		}
	}

	switch {
	case ln.Kind == nativetype.Float || rn.Kind == nativetype.Float:
		return nativetype.TFloat
	case ln.Kind == nativetype.BigInt || rn.Kind == nativetype.BigInt:
		return nativetype.TBigInt
	case ln.Kind == nativetype.Int && rn.Kind == nativetype.Int:
		if ln.IntKind == nativetype.IntUnbounded || rn.IntKind == nativetype.IntUnbounded {
			return nativetype.TIntUnbounded()
		}
		return nativetype.TInt()
	}
	return left
}

func normalizeNumeric(t nativetype.NativeType) nativetype.NativeType {
	if t.Kind == nativetype.Bool {
		return nativetype.TInt()
	}
	return t
}

func isNumericKind(k nativetype.Kind) bool {
	return k == nativetype.Int || k == nativetype.Float || k == nativetype.BigInt
}

// isLargeConstant reports whether e is an integer NumberLit exponent of 20
// or more (or one too large to parse as an int64), the heuristic spec.md
// §4.A uses to decide whether `**` promotes its result to bigint ahead of
// runtime evaluation.
func isLargeConstant(e srcast.Expression) bool {
	lit, ok := e.(*srcast.NumberLit)
	if !ok || lit.IsFloat {
		return false
	}
	if lit.IsBigInt {
		return true
	}
	v, err := strconv.ParseInt(lit.Raw, 10, 64)
	if err != nil {
		return true
	}
	return v >= 20
}
