package astjson

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/cwbudde/pycc/internal/srcast"
)

// Unmarshal parses data (the shape Marshal produces) back into a Module.
func Unmarshal(data []byte) (*srcast.Module, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("astjson: %w", err)
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("astjson: root value must be a JSON object")
	}
	return decodeModule(m)
}

func decodeModule(m map[string]any) (*srcast.Module, error) {
	if k := kindOf(m); k != "" && k != "Module" {
		return nil, fmt.Errorf("astjson: root kind %q, want %q", k, "Module")
	}
	body, err := decodeStmtsField(m, "body")
	if err != nil {
		return nil, err
	}
	return &srcast.Module{Name: strField(m, "name"), Body: body, PosV: posField(m)}, nil
}

func kindOf(m map[string]any) string { return strField(m, "kind") }

func strField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func boolField(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}

func strSliceField(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, len(raw))
	for i, r := range raw {
		out[i], _ = r.(string)
	}
	return out
}

func strMapField(m map[string]any, key string) map[string]string {
	raw, ok := m[key].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k], _ = v.(string)
	}
	return out
}

// bytesField decodes the base64 text json.Marshal produces for a []byte
// field (Marshal never hand-encodes BytesLit.Value, it relies on
// encoding/json's default []byte handling, so decode must mirror that).
func bytesField(m map[string]any, key string) ([]byte, error) {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("astjson: field %q is not valid base64: %w", key, err)
	}
	return data, nil
}

func posField(m map[string]any) srcast.Pos {
	p, ok := m["pos"].(map[string]any)
	if !ok {
		return srcast.Pos{}
	}
	line, _ := p["line"].(float64)
	col, _ := p["column"].(float64)
	return srcast.Pos{Line: int(line), Column: int(col)}
}

func asObject(v any, what string) (map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("astjson: %s must be a JSON object", what)
	}
	return m, nil
}

func decodeExprField(m map[string]any, key string) (srcast.Expression, error) {
	sub, err := asObject(m[key], fmt.Sprintf("field %q", key))
	if err != nil || sub == nil {
		return nil, err
	}
	return decodeExpr(sub)
}

func decodeExprsField(m map[string]any, key string) ([]srcast.Expression, error) {
	raw, _ := m[key].([]any)
	out := make([]srcast.Expression, len(raw))
	for i, r := range raw {
		sub, err := asObject(r, fmt.Sprintf("element %d of %q", i, key))
		if err != nil {
			return nil, err
		}
		e, err := decodeExpr(sub)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func decodeStmtsField(m map[string]any, key string) ([]srcast.Statement, error) {
	raw, _ := m[key].([]any)
	out := make([]srcast.Statement, len(raw))
	for i, r := range raw {
		sub, err := asObject(r, fmt.Sprintf("element %d of %q", i, key))
		if err != nil {
			return nil, err
		}
		s, err := decodeStmt(sub)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func decodeParam(v any) (*srcast.Param, error) {
	m, err := asObject(v, "param")
	if err != nil || m == nil {
		return nil, err
	}
	def, err := decodeExprField(m, "default")
	if err != nil {
		return nil, err
	}
	return &srcast.Param{
		Name:       strField(m, "name"),
		Annotation: strField(m, "annotation"),
		Default:    def,
		PosV:       posField(m),
	}, nil
}

func decodeParamSlice(v any) ([]*srcast.Param, error) {
	raw, _ := v.([]any)
	out := make([]*srcast.Param, len(raw))
	for i, r := range raw {
		p, err := decodeParam(r)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func decodeParams(v any) (*srcast.Params, error) {
	m, err := asObject(v, "params")
	if err != nil || m == nil {
		return nil, err
	}
	args, err := decodeParamSlice(m["args"])
	if err != nil {
		return nil, err
	}
	kwOnly, err := decodeParamSlice(m["kwonly"])
	if err != nil {
		return nil, err
	}
	vararg, err := decodeParam(m["vararg"])
	if err != nil {
		return nil, err
	}
	kwarg, err := decodeParam(m["kwarg"])
	if err != nil {
		return nil, err
	}
	return &srcast.Params{Args: args, Vararg: vararg, KwOnly: kwOnly, Kwarg: kwarg}, nil
}

func decodeComprehensions(v any) ([]*srcast.Comprehension, error) {
	raw, _ := v.([]any)
	out := make([]*srcast.Comprehension, len(raw))
	for i, r := range raw {
		m, err := asObject(r, "comprehension")
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, fmt.Errorf("astjson: comprehension element %d is null", i)
		}
		target, err := decodeExprField(m, "target")
		if err != nil {
			return nil, err
		}
		iter, err := decodeExprField(m, "iter")
		if err != nil {
			return nil, err
		}
		ifs, err := decodeExprsField(m, "ifs")
		if err != nil {
			return nil, err
		}
		out[i] = &srcast.Comprehension{Target: target, Iter: iter, Ifs: ifs, IsAsync: boolField(m, "isAsync")}
	}
	return out, nil
}

func decodeExceptHandlers(v any) ([]*srcast.ExceptHandler, error) {
	raw, _ := v.([]any)
	out := make([]*srcast.ExceptHandler, len(raw))
	for i, r := range raw {
		m, err := asObject(r, "except handler")
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, fmt.Errorf("astjson: except handler element %d is null", i)
		}
		typ, err := decodeExprField(m, "type")
		if err != nil {
			return nil, err
		}
		body, err := decodeStmtsField(m, "body")
		if err != nil {
			return nil, err
		}
		out[i] = &srcast.ExceptHandler{Type: typ, Name: strField(m, "name"), Body: body, PosV: posField(m)}
	}
	return out, nil
}

func decodeWithItems(v any) ([]*srcast.WithItem, error) {
	raw, _ := v.([]any)
	out := make([]*srcast.WithItem, len(raw))
	for i, r := range raw {
		m, err := asObject(r, "with item")
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, fmt.Errorf("astjson: with item element %d is null", i)
		}
		ctx, err := decodeExprField(m, "contextExpr")
		if err != nil {
			return nil, err
		}
		opt, err := decodeExprField(m, "optionalVars")
		if err != nil {
			return nil, err
		}
		out[i] = &srcast.WithItem{ContextExpr: ctx, OptionalVars: opt}
	}
	return out, nil
}

func decodeKeywords(v any) ([]*srcast.Keyword, error) {
	raw, _ := v.([]any)
	out := make([]*srcast.Keyword, len(raw))
	for i, r := range raw {
		m, err := asObject(r, "keyword")
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, fmt.Errorf("astjson: keyword element %d is null", i)
		}
		e, err := decodeExpr(m)
		if err != nil {
			return nil, err
		}
		kw, ok := e.(*srcast.Keyword)
		if !ok {
			return nil, fmt.Errorf("astjson: keyword element %d has kind %q, want Keyword", i, kindOf(m))
		}
		out[i] = kw
	}
	return out, nil
}

func decodeStmt(m map[string]any) (srcast.Statement, error) {
	switch kindOf(m) {
	case "ClassDef":
		body, err := decodeStmtsField(m, "body")
		if err != nil {
			return nil, err
		}
		return &srcast.ClassDef{
			Name: strField(m, "name"), Bases: strSliceField(m, "bases"),
			Decorators: strSliceField(m, "decorators"), Body: body, PosV: posField(m),
		}, nil
	case "FunctionDef":
		params, err := decodeParams(m["params"])
		if err != nil {
			return nil, err
		}
		body, err := decodeStmtsField(m, "body")
		if err != nil {
			return nil, err
		}
		return &srcast.FunctionDef{
			Name: strField(m, "name"), Params: params, Body: body,
			Decorators: strSliceField(m, "decorators"), Returns: strField(m, "returns"),
			IsAsync: boolField(m, "isAsync"), PosV: posField(m),
		}, nil
	case "If":
		test, err := decodeExprField(m, "test")
		if err != nil {
			return nil, err
		}
		body, err := decodeStmtsField(m, "body")
		if err != nil {
			return nil, err
		}
		orelse, err := decodeStmtsField(m, "orelse")
		if err != nil {
			return nil, err
		}
		return &srcast.If{Test: test, Body: body, Orelse: orelse, PosV: posField(m)}, nil
	case "While":
		test, err := decodeExprField(m, "test")
		if err != nil {
			return nil, err
		}
		body, err := decodeStmtsField(m, "body")
		if err != nil {
			return nil, err
		}
		orelse, err := decodeStmtsField(m, "orelse")
		if err != nil {
			return nil, err
		}
		return &srcast.While{Test: test, Body: body, Orelse: orelse, PosV: posField(m)}, nil
	case "For":
		target, err := decodeExprField(m, "target")
		if err != nil {
			return nil, err
		}
		iter, err := decodeExprField(m, "iter")
		if err != nil {
			return nil, err
		}
		body, err := decodeStmtsField(m, "body")
		if err != nil {
			return nil, err
		}
		orelse, err := decodeStmtsField(m, "orelse")
		if err != nil {
			return nil, err
		}
		return &srcast.For{
			Target: target, Iter: iter, Body: body, Orelse: orelse,
			IsAsync: boolField(m, "isAsync"), PosV: posField(m),
		}, nil
	case "Try":
		body, err := decodeStmtsField(m, "body")
		if err != nil {
			return nil, err
		}
		handlers, err := decodeExceptHandlers(m["handlers"])
		if err != nil {
			return nil, err
		}
		orelse, err := decodeStmtsField(m, "orelse")
		if err != nil {
			return nil, err
		}
		finalbody, err := decodeStmtsField(m, "finalbody")
		if err != nil {
			return nil, err
		}
		return &srcast.Try{Body: body, Handlers: handlers, Orelse: orelse, Finalbody: finalbody, PosV: posField(m)}, nil
	case "With":
		items, err := decodeWithItems(m["items"])
		if err != nil {
			return nil, err
		}
		body, err := decodeStmtsField(m, "body")
		if err != nil {
			return nil, err
		}
		return &srcast.With{Items: items, Body: body, IsAsync: boolField(m, "isAsync"), PosV: posField(m)}, nil
	case "Assign":
		targets, err := decodeExprsField(m, "targets")
		if err != nil {
			return nil, err
		}
		value, err := decodeExprField(m, "value")
		if err != nil {
			return nil, err
		}
		return &srcast.Assign{Targets: targets, Value: value, PosV: posField(m)}, nil
	case "AugAssign":
		target, err := decodeExprField(m, "target")
		if err != nil {
			return nil, err
		}
		value, err := decodeExprField(m, "value")
		if err != nil {
			return nil, err
		}
		return &srcast.AugAssign{Target: target, Op: strField(m, "op"), Value: value, PosV: posField(m)}, nil
	case "AnnAssign":
		target, err := decodeExprField(m, "target")
		if err != nil {
			return nil, err
		}
		value, err := decodeExprField(m, "value")
		if err != nil {
			return nil, err
		}
		return &srcast.AnnAssign{Target: target, Annotation: strField(m, "annotation"), Value: value, PosV: posField(m)}, nil
	case "ExprStmt":
		value, err := decodeExprField(m, "value")
		if err != nil {
			return nil, err
		}
		return &srcast.ExprStmt{Value: value, PosV: posField(m)}, nil
	case "Return":
		value, err := decodeExprField(m, "value")
		if err != nil {
			return nil, err
		}
		return &srcast.Return{Value: value, PosV: posField(m)}, nil
	case "Pass":
		return &srcast.Pass{PosV: posField(m)}, nil
	case "Break":
		return &srcast.Break{PosV: posField(m)}, nil
	case "Continue":
		return &srcast.Continue{PosV: posField(m)}, nil
	case "Raise":
		exc, err := decodeExprField(m, "exc")
		if err != nil {
			return nil, err
		}
		cause, err := decodeExprField(m, "cause")
		if err != nil {
			return nil, err
		}
		return &srcast.Raise{Exc: exc, Cause: cause, PosV: posField(m)}, nil
	case "Global":
		return &srcast.Global{Names: strSliceField(m, "names"), PosV: posField(m)}, nil
	case "Nonlocal":
		return &srcast.Nonlocal{Names: strSliceField(m, "names"), PosV: posField(m)}, nil
	case "Import":
		return &srcast.Import{Module: strField(m, "module"), Alias: strField(m, "alias"), PosV: posField(m)}, nil
	case "ImportFrom":
		return &srcast.ImportFrom{
			Module: strField(m, "module"), Names: strSliceField(m, "names"),
			Aliases: strMapField(m, "aliases"), PosV: posField(m),
		}, nil
	case "Delete":
		targets, err := decodeExprsField(m, "targets")
		if err != nil {
			return nil, err
		}
		return &srcast.Delete{Targets: targets, PosV: posField(m)}, nil
	case "Assert":
		test, err := decodeExprField(m, "test")
		if err != nil {
			return nil, err
		}
		msg, err := decodeExprField(m, "msg")
		if err != nil {
			return nil, err
		}
		return &srcast.Assert{Test: test, Msg: msg, PosV: posField(m)}, nil
	default:
		return nil, fmt.Errorf("astjson: unknown statement kind %q", kindOf(m))
	}
}

func decodeExpr(m map[string]any) (srcast.Expression, error) {
	switch kindOf(m) {
	case "NumberLit":
		return &srcast.NumberLit{
			Raw: strField(m, "raw"), IsFloat: boolField(m, "isFloat"),
			IsBigInt: boolField(m, "isBigInt"), PosV: posField(m),
		}, nil
	case "StringLit":
		return &srcast.StringLit{Value: strField(m, "value"), PosV: posField(m)}, nil
	case "BytesLit":
		val, err := bytesField(m, "value")
		if err != nil {
			return nil, err
		}
		return &srcast.BytesLit{Value: val, PosV: posField(m)}, nil
	case "BoolLit":
		return &srcast.BoolLit{Value: boolField(m, "value"), PosV: posField(m)}, nil
	case "NoneLit":
		return &srcast.NoneLit{PosV: posField(m)}, nil
	case "Name":
		return &srcast.Name{Ident: strField(m, "ident"), PosV: posField(m)}, nil
	case "Attribute":
		value, err := decodeExprField(m, "value")
		if err != nil {
			return nil, err
		}
		return &srcast.Attribute{Value: value, Attr: strField(m, "attr"), PosV: posField(m)}, nil
	case "Subscript":
		value, err := decodeExprField(m, "value")
		if err != nil {
			return nil, err
		}
		index, err := decodeExprField(m, "index")
		if err != nil {
			return nil, err
		}
		return &srcast.Subscript{Value: value, Index: index, PosV: posField(m)}, nil
	case "Slice":
		lower, err := decodeExprField(m, "lower")
		if err != nil {
			return nil, err
		}
		upper, err := decodeExprField(m, "upper")
		if err != nil {
			return nil, err
		}
		step, err := decodeExprField(m, "step")
		if err != nil {
			return nil, err
		}
		return &srcast.Slice{Lower: lower, Upper: upper, Step: step, PosV: posField(m)}, nil
	case "Keyword":
		value, err := decodeExprField(m, "value")
		if err != nil {
			return nil, err
		}
		return &srcast.Keyword{Name: strField(m, "name"), Value: value, PosV: posField(m)}, nil
	case "Call":
		fn, err := decodeExprField(m, "func")
		if err != nil {
			return nil, err
		}
		args, err := decodeExprsField(m, "args")
		if err != nil {
			return nil, err
		}
		keywords, err := decodeKeywords(m["keywords"])
		if err != nil {
			return nil, err
		}
		return &srcast.Call{Func: fn, Args: args, Keywords: keywords, PosV: posField(m)}, nil
	case "BinOp":
		left, err := decodeExprField(m, "left")
		if err != nil {
			return nil, err
		}
		right, err := decodeExprField(m, "right")
		if err != nil {
			return nil, err
		}
		return &srcast.BinOp{Left: left, Op: strField(m, "op"), Right: right, PosV: posField(m)}, nil
	case "UnaryOp":
		operand, err := decodeExprField(m, "operand")
		if err != nil {
			return nil, err
		}
		return &srcast.UnaryOp{Op: strField(m, "op"), Operand: operand, PosV: posField(m)}, nil
	case "BoolOp":
		values, err := decodeExprsField(m, "values")
		if err != nil {
			return nil, err
		}
		return &srcast.BoolOp{Op: strField(m, "op"), Values: values, PosV: posField(m)}, nil
	case "Compare":
		left, err := decodeExprField(m, "left")
		if err != nil {
			return nil, err
		}
		comparators, err := decodeExprsField(m, "comparators")
		if err != nil {
			return nil, err
		}
		return &srcast.Compare{Left: left, Ops: strSliceField(m, "ops"), Comparators: comparators, PosV: posField(m)}, nil
	case "Lambda":
		params, err := decodeParams(m["params"])
		if err != nil {
			return nil, err
		}
		body, err := decodeExprField(m, "body")
		if err != nil {
			return nil, err
		}
		return &srcast.Lambda{Params: params, Body: body, PosV: posField(m)}, nil
	case "IfExp":
		test, err := decodeExprField(m, "test")
		if err != nil {
			return nil, err
		}
		body, err := decodeExprField(m, "body")
		if err != nil {
			return nil, err
		}
		orelse, err := decodeExprField(m, "orelse")
		if err != nil {
			return nil, err
		}
		return &srcast.IfExp{Test: test, Body: body, Orelse: orelse, PosV: posField(m)}, nil
	case "ListLit":
		elems, err := decodeExprsField(m, "elems")
		if err != nil {
			return nil, err
		}
		return &srcast.ListLit{Elems: elems, PosV: posField(m)}, nil
	case "TupleLit":
		elems, err := decodeExprsField(m, "elems")
		if err != nil {
			return nil, err
		}
		return &srcast.TupleLit{Elems: elems, PosV: posField(m)}, nil
	case "SetLit":
		elems, err := decodeExprsField(m, "elems")
		if err != nil {
			return nil, err
		}
		return &srcast.SetLit{Elems: elems, PosV: posField(m)}, nil
	case "DictLit":
		keys, err := decodeExprsField(m, "keys")
		if err != nil {
			return nil, err
		}
		values, err := decodeExprsField(m, "values")
		if err != nil {
			return nil, err
		}
		return &srcast.DictLit{Keys: keys, Values: values, PosV: posField(m)}, nil
	case "ListComp":
		elt, err := decodeExprField(m, "elt")
		if err != nil {
			return nil, err
		}
		gens, err := decodeComprehensions(m["gens"])
		if err != nil {
			return nil, err
		}
		return &srcast.ListComp{Elt: elt, Gens: gens, PosV: posField(m)}, nil
	case "SetComp":
		elt, err := decodeExprField(m, "elt")
		if err != nil {
			return nil, err
		}
		gens, err := decodeComprehensions(m["gens"])
		if err != nil {
			return nil, err
		}
		return &srcast.SetComp{Elt: elt, Gens: gens, PosV: posField(m)}, nil
	case "DictComp":
		key, err := decodeExprField(m, "key")
		if err != nil {
			return nil, err
		}
		value, err := decodeExprField(m, "value")
		if err != nil {
			return nil, err
		}
		gens, err := decodeComprehensions(m["gens"])
		if err != nil {
			return nil, err
		}
		return &srcast.DictComp{Key: key, Value: value, Gens: gens, PosV: posField(m)}, nil
	case "GeneratorExp":
		elt, err := decodeExprField(m, "elt")
		if err != nil {
			return nil, err
		}
		gens, err := decodeComprehensions(m["gens"])
		if err != nil {
			return nil, err
		}
		return &srcast.GeneratorExp{Elt: elt, Gens: gens, PosV: posField(m)}, nil
	case "JoinedStr":
		parts, err := decodeExprsField(m, "parts")
		if err != nil {
			return nil, err
		}
		return &srcast.JoinedStr{Parts: parts, PosV: posField(m)}, nil
	case "Starred":
		value, err := decodeExprField(m, "value")
		if err != nil {
			return nil, err
		}
		return &srcast.Starred{Value: value, PosV: posField(m)}, nil
	case "Yield":
		value, err := decodeExprField(m, "value")
		if err != nil {
			return nil, err
		}
		return &srcast.Yield{Value: value, PosV: posField(m)}, nil
	case "YieldFrom":
		value, err := decodeExprField(m, "value")
		if err != nil {
			return nil, err
		}
		return &srcast.YieldFrom{Value: value, PosV: posField(m)}, nil
	case "Await":
		value, err := decodeExprField(m, "value")
		if err != nil {
			return nil, err
		}
		return &srcast.Await{Value: value, PosV: posField(m)}, nil
	default:
		return nil, fmt.Errorf("astjson: unknown expression kind %q", kindOf(m))
	}
}
