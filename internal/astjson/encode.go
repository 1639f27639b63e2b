// Package astjson bridges srcast's polymorphic Statement/Expression AST to
// JSON so cmd/pycc's compile and inspect subcommands can accept a tree
// built outside this module (the lexer/parser are external collaborators
// per spec.md §1). Marshal is the inverse of Unmarshal; neither subcommand
// writes an AST back out.
//
// encoding/json has no notion of a Go interface field; every node here is
// tagged with a "kind" field naming its concrete srcast type, and decode
// dispatches on that tag the way a hand-rolled discriminated union would
// in any language. No example repo in the retrieval pack serializes a
// polymorphic AST to JSON (grep turned up no json.RawMessage or
// UnmarshalJSON use for this purpose anywhere in the pack), so this
// package is necessarily stdlib-only; see DESIGN.md.
package astjson

import (
	"encoding/json"
	"fmt"

	"github.com/cwbudde/pycc/internal/srcast"
)

// Marshal renders module as a tagged JSON tree.
func Marshal(module *srcast.Module) ([]byte, error) {
	return json.Marshal(encodeModule(module))
}

func encodeModule(m *srcast.Module) map[string]any {
	if m == nil {
		return nil
	}
	return map[string]any{
		"kind": "Module",
		"name": m.Name,
		"body": encodeStmts(m.Body),
		"pos":  encodePos(m.PosV),
	}
}

func encodePos(p srcast.Pos) map[string]any {
	return map[string]any{"line": p.Line, "column": p.Column}
}

func encodeStmts(stmts []srcast.Statement) []any {
	out := make([]any, len(stmts))
	for i, s := range stmts {
		out[i] = encodeStmt(s)
	}
	return out
}

func encodeExprs(exprs []srcast.Expression) []any {
	out := make([]any, len(exprs))
	for i, e := range exprs {
		out[i] = encodeExpr(e)
	}
	return out
}

func encodeExprOpt(e srcast.Expression) any {
	if e == nil {
		return nil
	}
	return encodeExpr(e)
}

func encodeParam(p *srcast.Param) any {
	if p == nil {
		return nil
	}
	return map[string]any{
		"name":       p.Name,
		"annotation": p.Annotation,
		"default":    encodeExprOpt(p.Default),
		"pos":        encodePos(p.PosV),
	}
}

func encodeParams(p *srcast.Params) map[string]any {
	if p == nil {
		return nil
	}
	args := make([]any, len(p.Args))
	for i, a := range p.Args {
		args[i] = encodeParam(a)
	}
	kwOnly := make([]any, len(p.KwOnly))
	for i, a := range p.KwOnly {
		kwOnly[i] = encodeParam(a)
	}
	return map[string]any{
		"args":   args,
		"vararg": encodeParam(p.Vararg),
		"kwonly": kwOnly,
		"kwarg":  encodeParam(p.Kwarg),
	}
}

func encodeComprehensions(gens []*srcast.Comprehension) []any {
	out := make([]any, len(gens))
	for i, g := range gens {
		out[i] = map[string]any{
			"target":  encodeExpr(g.Target),
			"iter":    encodeExpr(g.Iter),
			"ifs":     encodeExprs(g.Ifs),
			"isAsync": g.IsAsync,
		}
	}
	return out
}

func encodeExceptHandlers(hs []*srcast.ExceptHandler) []any {
	out := make([]any, len(hs))
	for i, h := range hs {
		out[i] = map[string]any{
			"type": encodeExprOpt(h.Type),
			"name": h.Name,
			"body": encodeStmts(h.Body),
			"pos":  encodePos(h.PosV),
		}
	}
	return out
}

func encodeWithItems(items []*srcast.WithItem) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = map[string]any{
			"contextExpr":  encodeExpr(it.ContextExpr),
			"optionalVars": encodeExprOpt(it.OptionalVars),
		}
	}
	return out
}

func encodeKeywords(ks []*srcast.Keyword) []any {
	out := make([]any, len(ks))
	for i, k := range ks {
		out[i] = encodeExpr(k)
	}
	return out
}

func encodeStmt(s srcast.Statement) map[string]any {
	switch n := s.(type) {
	case *srcast.ClassDef:
		return map[string]any{
			"kind": "ClassDef", "name": n.Name, "bases": n.Bases,
			"decorators": n.Decorators, "body": encodeStmts(n.Body), "pos": encodePos(n.PosV),
		}
	case *srcast.FunctionDef:
		return map[string]any{
			"kind": "FunctionDef", "name": n.Name, "params": encodeParams(n.Params),
			"body": encodeStmts(n.Body), "decorators": n.Decorators,
			"returns": n.Returns, "isAsync": n.IsAsync, "pos": encodePos(n.PosV),
		}
	case *srcast.If:
		return map[string]any{
			"kind": "If", "test": encodeExpr(n.Test), "body": encodeStmts(n.Body),
			"orelse": encodeStmts(n.Orelse), "pos": encodePos(n.PosV),
		}
	case *srcast.While:
		return map[string]any{
			"kind": "While", "test": encodeExpr(n.Test), "body": encodeStmts(n.Body),
			"orelse": encodeStmts(n.Orelse), "pos": encodePos(n.PosV),
		}
	case *srcast.For:
		return map[string]any{
			"kind": "For", "target": encodeExpr(n.Target), "iter": encodeExpr(n.Iter),
			"body": encodeStmts(n.Body), "orelse": encodeStmts(n.Orelse),
			"isAsync": n.IsAsync, "pos": encodePos(n.PosV),
		}
	case *srcast.Try:
		return map[string]any{
			"kind": "Try", "body": encodeStmts(n.Body), "handlers": encodeExceptHandlers(n.Handlers),
			"orelse": encodeStmts(n.Orelse), "finalbody": encodeStmts(n.Finalbody), "pos": encodePos(n.PosV),
		}
	case *srcast.With:
		return map[string]any{
			"kind": "With", "items": encodeWithItems(n.Items), "body": encodeStmts(n.Body),
			"isAsync": n.IsAsync, "pos": encodePos(n.PosV),
		}
	case *srcast.Assign:
		return map[string]any{
			"kind": "Assign", "targets": encodeExprs(n.Targets), "value": encodeExpr(n.Value), "pos": encodePos(n.PosV),
		}
	case *srcast.AugAssign:
		return map[string]any{
			"kind": "AugAssign", "target": encodeExpr(n.Target), "op": n.Op,
			"value": encodeExpr(n.Value), "pos": encodePos(n.PosV),
		}
	case *srcast.AnnAssign:
		return map[string]any{
			"kind": "AnnAssign", "target": encodeExpr(n.Target), "annotation": n.Annotation,
			"value": encodeExprOpt(n.Value), "pos": encodePos(n.PosV),
		}
	case *srcast.ExprStmt:
		return map[string]any{"kind": "ExprStmt", "value": encodeExpr(n.Value), "pos": encodePos(n.PosV)}
	case *srcast.Return:
		return map[string]any{"kind": "Return", "value": encodeExprOpt(n.Value), "pos": encodePos(n.PosV)}
	case *srcast.Pass:
		return map[string]any{"kind": "Pass", "pos": encodePos(n.PosV)}
	case *srcast.Break:
		return map[string]any{"kind": "Break", "pos": encodePos(n.PosV)}
	case *srcast.Continue:
		return map[string]any{"kind": "Continue", "pos": encodePos(n.PosV)}
	case *srcast.Raise:
		return map[string]any{
			"kind": "Raise", "exc": encodeExprOpt(n.Exc), "cause": encodeExprOpt(n.Cause), "pos": encodePos(n.PosV),
		}
	case *srcast.Global:
		return map[string]any{"kind": "Global", "names": n.Names, "pos": encodePos(n.PosV)}
	case *srcast.Nonlocal:
		return map[string]any{"kind": "Nonlocal", "names": n.Names, "pos": encodePos(n.PosV)}
	case *srcast.Import:
		return map[string]any{"kind": "Import", "module": n.Module, "alias": n.Alias, "pos": encodePos(n.PosV)}
	case *srcast.ImportFrom:
		return map[string]any{
			"kind": "ImportFrom", "module": n.Module, "names": n.Names,
			"aliases": n.Aliases, "pos": encodePos(n.PosV),
		}
	case *srcast.Delete:
		return map[string]any{"kind": "Delete", "targets": encodeExprs(n.Targets), "pos": encodePos(n.PosV)}
	case *srcast.Assert:
		return map[string]any{
			"kind": "Assert", "test": encodeExpr(n.Test), "msg": encodeExprOpt(n.Msg), "pos": encodePos(n.PosV),
		}
	default:
		panic(fmt.Sprintf("astjson: unhandled statement type %T", s))
	}
}

func encodeExpr(e srcast.Expression) map[string]any {
	switch n := e.(type) {
	case *srcast.NumberLit:
		return map[string]any{
			"kind": "NumberLit", "raw": n.Raw, "isFloat": n.IsFloat, "isBigInt": n.IsBigInt, "pos": encodePos(n.PosV),
		}
	case *srcast.StringLit:
		return map[string]any{"kind": "StringLit", "value": n.Value, "pos": encodePos(n.PosV)}
	case *srcast.BytesLit:
		return map[string]any{"kind": "BytesLit", "value": n.Value, "pos": encodePos(n.PosV)}
	case *srcast.BoolLit:
		return map[string]any{"kind": "BoolLit", "value": n.Value, "pos": encodePos(n.PosV)}
	case *srcast.NoneLit:
		return map[string]any{"kind": "NoneLit", "pos": encodePos(n.PosV)}
	case *srcast.Name:
		return map[string]any{"kind": "Name", "ident": n.Ident, "pos": encodePos(n.PosV)}
	case *srcast.Attribute:
		return map[string]any{
			"kind": "Attribute", "value": encodeExpr(n.Value), "attr": n.Attr, "pos": encodePos(n.PosV),
		}
	case *srcast.Subscript:
		return map[string]any{
			"kind": "Subscript", "value": encodeExpr(n.Value), "index": encodeExpr(n.Index), "pos": encodePos(n.PosV),
		}
	case *srcast.Slice:
		return map[string]any{
			"kind": "Slice", "lower": encodeExprOpt(n.Lower), "upper": encodeExprOpt(n.Upper),
			"step": encodeExprOpt(n.Step), "pos": encodePos(n.PosV),
		}
	case *srcast.Keyword:
		return map[string]any{
			"kind": "Keyword", "name": n.Name, "value": encodeExpr(n.Value), "pos": encodePos(n.PosV),
		}
	case *srcast.Call:
		return map[string]any{
			"kind": "Call", "func": encodeExpr(n.Func), "args": encodeExprs(n.Args),
			"keywords": encodeKeywords(n.Keywords), "pos": encodePos(n.PosV),
		}
	case *srcast.BinOp:
		return map[string]any{
			"kind": "BinOp", "left": encodeExpr(n.Left), "op": n.Op, "right": encodeExpr(n.Right), "pos": encodePos(n.PosV),
		}
	case *srcast.UnaryOp:
		return map[string]any{
			"kind": "UnaryOp", "op": n.Op, "operand": encodeExpr(n.Operand), "pos": encodePos(n.PosV),
		}
	case *srcast.BoolOp:
		return map[string]any{
			"kind": "BoolOp", "op": n.Op, "values": encodeExprs(n.Values), "pos": encodePos(n.PosV),
		}
	case *srcast.Compare:
		return map[string]any{
			"kind": "Compare", "left": encodeExpr(n.Left), "ops": n.Ops,
			"comparators": encodeExprs(n.Comparators), "pos": encodePos(n.PosV),
		}
	case *srcast.Lambda:
		return map[string]any{
			"kind": "Lambda", "params": encodeParams(n.Params), "body": encodeExpr(n.Body), "pos": encodePos(n.PosV),
		}
	case *srcast.IfExp:
		return map[string]any{
			"kind": "IfExp", "test": encodeExpr(n.Test), "body": encodeExpr(n.Body),
			"orelse": encodeExpr(n.Orelse), "pos": encodePos(n.PosV),
		}
	case *srcast.ListLit:
		return map[string]any{"kind": "ListLit", "elems": encodeExprs(n.Elems), "pos": encodePos(n.PosV)}
	case *srcast.TupleLit:
		return map[string]any{"kind": "TupleLit", "elems": encodeExprs(n.Elems), "pos": encodePos(n.PosV)}
	case *srcast.SetLit:
		return map[string]any{"kind": "SetLit", "elems": encodeExprs(n.Elems), "pos": encodePos(n.PosV)}
	case *srcast.DictLit:
		return map[string]any{
			"kind": "DictLit", "keys": encodeExprs(n.Keys), "values": encodeExprs(n.Values), "pos": encodePos(n.PosV),
		}
	case *srcast.ListComp:
		return map[string]any{
			"kind": "ListComp", "elt": encodeExpr(n.Elt), "gens": encodeComprehensions(n.Gens), "pos": encodePos(n.PosV),
		}
	case *srcast.SetComp:
		return map[string]any{
			"kind": "SetComp", "elt": encodeExpr(n.Elt), "gens": encodeComprehensions(n.Gens), "pos": encodePos(n.PosV),
		}
	case *srcast.DictComp:
		return map[string]any{
			"kind": "DictComp", "key": encodeExpr(n.Key), "value": encodeExpr(n.Value),
			"gens": encodeComprehensions(n.Gens), "pos": encodePos(n.PosV),
		}
	case *srcast.GeneratorExp:
		return map[string]any{
			"kind": "GeneratorExp", "elt": encodeExpr(n.Elt), "gens": encodeComprehensions(n.Gens), "pos": encodePos(n.PosV),
		}
	case *srcast.JoinedStr:
		return map[string]any{"kind": "JoinedStr", "parts": encodeExprs(n.Parts), "pos": encodePos(n.PosV)}
	case *srcast.Starred:
		return map[string]any{"kind": "Starred", "value": encodeExpr(n.Value), "pos": encodePos(n.PosV)}
	case *srcast.Yield:
		return map[string]any{"kind": "Yield", "value": encodeExprOpt(n.Value), "pos": encodePos(n.PosV)}
	case *srcast.YieldFrom:
		return map[string]any{"kind": "YieldFrom", "value": encodeExpr(n.Value), "pos": encodePos(n.PosV)}
	case *srcast.Await:
		return map[string]any{"kind": "Await", "value": encodeExpr(n.Value), "pos": encodePos(n.PosV)}
	default:
		panic(fmt.Sprintf("astjson: unhandled expression type %T", e))
	}
}
