package emitter

import (
	"fmt"
	"strings"

	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/cwbudde/pycc/internal/runtimejson"
	"github.com/cwbudde/pycc/internal/srcast"
)

// renderExpr renders expr as a Zig expression fragment. This is the
// workhorse the statement-level emit* methods splice into their own
// output lines; it never itself writes a trailing `;` or newline.
func (s *State) renderExpr(expr srcast.Expression) string {
	switch e := expr.(type) {
	case *srcast.NumberLit:
		return s.renderNumberLit(e)
	case *srcast.StringLit:
		return fmt.Sprintf("%q", e.Value)
	case *srcast.BytesLit:
		return fmt.Sprintf("%q", string(e.Value))
	case *srcast.BoolLit:
		if e.Value {
			return "true"
		}
		return "false"
	case *srcast.NoneLit:
		return "{}"
	case *srcast.Name:
		return s.nameRef(e.Ident)
	case *srcast.Attribute:
		return s.renderAttribute(e)
	case *srcast.Subscript:
		return s.renderSubscript(e)
	case *srcast.Call:
		return s.renderCall(e)
	case *srcast.BinOp:
		return s.renderBinOp(e)
	case *srcast.UnaryOp:
		return s.renderUnaryOp(e)
	case *srcast.BoolOp:
		return s.renderBoolOp(e)
	case *srcast.Compare:
		return s.renderCompare(e)
	case *srcast.IfExp:
		return fmt.Sprintf("if (%s) %s else %s", s.renderExpr(e.Test), s.renderExpr(e.Body), s.renderExpr(e.Orelse))
	case *srcast.ListLit:
		return s.renderSeqLit(e.Elems, "&.{", "}")
	case *srcast.TupleLit:
		return s.renderSeqLit(e.Elems, ".{", "}")
	case *srcast.SetLit:
		return s.renderSeqLit(e.Elems, "&.{", "}")
	case *srcast.DictLit:
		return s.renderDictLit(e)
	case *srcast.Lambda:
		return s.renderLambda(e)
	case *srcast.Starred:
		return s.renderExpr(e.Value)
	case *srcast.JoinedStr:
		return s.renderJoinedStr(e)
	case *srcast.Yield:
		if e.Value == nil {
			return "{}"
		}
		return s.renderExpr(e.Value)
	case *srcast.YieldFrom:
		return s.renderExpr(e.Value)
	case *srcast.Await:
		return s.renderExpr(e.Value)
	case *srcast.ListComp:
		return s.renderComprehension(e.Elt, e.Gens, comprehensionList)
	case *srcast.SetComp:
		return s.renderComprehension(e.Elt, e.Gens, comprehensionSet)
	case *srcast.GeneratorExp:
		return s.renderComprehension(e.Elt, e.Gens, comprehensionList)
	case *srcast.DictComp:
		return s.renderDictComprehension(e)
	default:
		return fmt.Sprintf("/* unsupported expr %T */", expr)
	}
}

func (s *State) renderNumberLit(n *srcast.NumberLit) string {
	if n.IsBigInt {
		return fmt.Sprintf("BigInt.fromLiteral(%q)", n.Raw)
	}
	return n.Raw
}

// nameRef resolves a bare name reference to its target identifier. A
// local binding (checked first, scoped to the enclosing function) always
// wins over a module-level function/class of the same spelling, matching
// ordinary lexical shadowing; module-level names whose source spelling
// is already their Zig name are left untouched (reserved up front by the
// rename map, not renamed through it).
func (s *State) nameRef(name string) string {
	if target, ok := s.renames.LookupLocal(s.currentScope(), name); ok {
		return target
	}
	if target, ok := s.renames.Lookup(name); ok {
		return target
	}
	return name
}

func (s *State) renderAttribute(a *srcast.Attribute) string {
	return s.renderExpr(a.Value) + "." + a.Attr
}

func (s *State) renderSubscript(sub *srcast.Subscript) string {
	valType := s.typeOf(sub.Value)
	base := s.renderExpr(sub.Value)
	if sl, ok := sub.Index.(*srcast.Slice); ok {
		return s.renderSlice(base, valType, sl)
	}
	switch valType.Kind {
	case nativetype.List, nativetype.Array:
		return fmt.Sprintf("%s.items[@intCast(%s)]", base, s.renderExpr(sub.Index))
	case nativetype.Dict:
		return fmt.Sprintf("%s.get(%s).?", base, s.renderExpr(sub.Index))
	case nativetype.Tuple:
		if lit, ok := sub.Index.(*srcast.NumberLit); ok {
			return fmt.Sprintf("%s.f%s", base, lit.Raw)
		}
	}
	return fmt.Sprintf("%s[%s]", base, s.renderExpr(sub.Index))
}

func (s *State) renderSlice(base string, baseType nativetype.NativeType, sl *srcast.Slice) string {
	lower := "0"
	if sl.Lower != nil {
		lower = s.renderExpr(sl.Lower)
	}
	upper := fmt.Sprintf("%s.items.len", base)
	if baseType.Kind == nativetype.String || baseType.Kind == nativetype.Bytes {
		upper = fmt.Sprintf("%s.len", base)
	}
	if sl.Upper != nil {
		upper = s.renderExpr(sl.Upper)
	}
	target := base
	if baseType.Kind == nativetype.List || baseType.Kind == nativetype.Array {
		target += ".items"
	}
	return fmt.Sprintf("%s[@intCast(%s)..@intCast(%s)]", target, lower, upper)
}

func (s *State) renderCall(call *srcast.Call) string {
	if v, ok := runtimejson.FoldLoadsCall(call); ok {
		return runtimejson.ZigLiteral(v)
	}
	if text, ok := runtimejson.FoldDumpsCall(call, s.foldArgValue); ok {
		return fmt.Sprintf("%q", text)
	}
	return s.emitCallable(call)
}

// foldArgValue lets internal/runtimejson resolve a nested json.loads(...)
// expression without importing internal/srcast itself.
func (s *State) foldArgValue(expr srcast.Expression) (*runtimejson.Value, bool) {
	call, ok := expr.(*srcast.Call)
	if !ok {
		return nil, false
	}
	return runtimejson.FoldLoadsCall(call)
}

func (s *State) renderBinOp(b *srcast.BinOp) string {
	left := s.renderExpr(b.Left)
	right := s.renderExpr(b.Right)
	leftType := s.typeOf(b.Left)

	if leftType.Kind == nativetype.ClassInstance {
		if method, ok := dunderForBinOp(b.Op); ok {
			return fmt.Sprintf("%s.%s(%s)", left, method, right)
		}
	}

	switch b.Op {
	case "//":
		return fmt.Sprintf("floorDiv(%s, %s)", left, right)
	case "**":
		return fmt.Sprintf("powInt(%s, %s)", left, right)
	case "%":
		return fmt.Sprintf("pyMod(%s, %s)", left, right)
	case "/":
		return fmt.Sprintf("trueDiv(%s, %s)", left, right)
	case "<<":
		return fmt.Sprintf("%s << @as(u6, @intCast(%s))", left, right)
	case ">>":
		return fmt.Sprintf("%s >> @as(u6, @intCast(%s))", left, right)
	default:
		return fmt.Sprintf("(%s %s %s)", left, b.Op, right)
	}
}

// dunderForBinOp maps a source binary operator to the magic-method name
// a class-instance operand dispatches to (spec.md §4.E generalized, per
// SPEC_FULL.md, to the full operator table beyond __add__/__iadd__).
func dunderForBinOp(op string) (string, bool) {
	table := map[string]string{
		"+": "__add__", "-": "__sub__", "*": "__mul__", "/": "__truediv__",
		"//": "__floordiv__", "%": "__mod__", "**": "__pow__", "@": "__matmul__",
		"&": "__and__", "|": "__or__", "^": "__xor__",
		"<<": "__lshift__", ">>": "__rshift__",
	}
	m, ok := table[op]
	return m, ok
}

// dunderForCompare maps a comparison operator to its magic-method name.
func dunderForCompare(op string) (string, bool) {
	table := map[string]string{
		"==": "__eq__", "!=": "__ne__", "<": "__lt__", "<=": "__le__",
		">": "__gt__", ">=": "__ge__",
	}
	m, ok := table[op]
	return m, ok
}

func (s *State) renderUnaryOp(u *srcast.UnaryOp) string {
	operand := s.renderExpr(u.Operand)
	switch u.Op {
	case "not":
		return fmt.Sprintf("!(%s)", operand)
	case "-":
		return fmt.Sprintf("-(%s)", operand)
	case "+":
		return operand
	case "~":
		return fmt.Sprintf("~(%s)", operand)
	default:
		return operand
	}
}

func (s *State) renderBoolOp(b *srcast.BoolOp) string {
	join := " and "
	if b.Op == "or" {
		join = " or "
	}
	parts := make([]string, len(b.Values))
	for i, v := range b.Values {
		parts[i] = "(" + s.renderExpr(v) + ")"
	}
	return strings.Join(parts, join)
}

func (s *State) renderCompare(c *srcast.Compare) string {
	left := s.renderExpr(c.Left)
	leftType := s.typeOf(c.Left)
	var parts []string
	cur := left
	for i, op := range c.Ops {
		right := s.renderExpr(c.Comparators[i])
		if leftType.Kind == nativetype.ClassInstance {
			if method, ok := dunderForCompare(op); ok {
				parts = append(parts, fmt.Sprintf("%s.%s(%s)", cur, method, right))
				cur = right
				continue
			}
		}
		if leftType.Kind == nativetype.String && (op == "==" || op == "!=") {
			eq := fmt.Sprintf("std.mem.eql(u8, %s, %s)", cur, right)
			if op == "!=" {
				eq = "!" + eq
			}
			parts = append(parts, eq)
		} else {
			parts = append(parts, fmt.Sprintf("(%s %s %s)", cur, op, right))
		}
		cur = right
	}
	return strings.Join(parts, " and ")
}

func (s *State) renderSeqLit(elems []srcast.Expression, open, close string) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = s.renderExpr(e)
	}
	return open + strings.Join(parts, ", ") + close
}

func (s *State) renderDictLit(d *srcast.DictLit) string {
	var b strings.Builder
	b.WriteString("blk: {\n")
	tmp := s.nextTemp()
	fmt.Fprintf(&b, "    var %s = %s.init(allocator);\n", tmp, dictType(s.typeOf(d)))
	for i := range d.Keys {
		fmt.Fprintf(&b, "    %s.put(%s, %s) catch unreachable;\n", tmp, s.renderExpr(d.Keys[i]), s.renderExpr(d.Values[i]))
	}
	fmt.Fprintf(&b, "    break :blk %s;\n}", tmp)
	return b.String()
}

func (s *State) renderLambda(l *srcast.Lambda) string {
	id := s.classes.ClosureID(l, "lambda")
	return fmt.Sprintf("%s.init(allocator)", id)
}

func (s *State) renderJoinedStr(j *srcast.JoinedStr) string {
	var fmtParts []string
	var args []string
	for _, p := range j.Parts {
		if str, ok := p.(*srcast.StringLit); ok {
			fmtParts = append(fmtParts, escapeFmt(str.Value))
			continue
		}
		fmtParts = append(fmtParts, "{}")
		args = append(args, s.renderExpr(p))
	}
	return fmt.Sprintf("std.fmt.allocPrint(allocator, %q, .{%s}) catch unreachable", strings.Join(fmtParts, ""), strings.Join(args, ", "))
}

func escapeFmt(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "{", "{{"), "}", "}}")
}

type comprehensionKind int

const (
	comprehensionList comprehensionKind = iota
	comprehensionSet
)

// renderComprehension lowers a list/set/generator comprehension to an
// eager builder-loop block per spec.md §4.E's control-flow rule
// ("comprehensions lower to eager builder loops appending into growable
// containers").
func (s *State) renderComprehension(elt srcast.Expression, gens []*srcast.Comprehension, kind comprehensionKind) string {
	elemType := s.typeOf(elt)
	tmp := s.nextTemp()
	var b strings.Builder
	b.WriteString("blk: {\n")
	switch kind {
	case comprehensionSet:
		fmt.Fprintf(&b, "    var %s = std.AutoHashMap(%s, void).init(allocator);\n", tmp, zigType(elemType))
	default:
		fmt.Fprintf(&b, "    var %s = std.ArrayList(%s).init(allocator);\n", tmp, zigType(elemType))
	}

	depth := 0
	for _, g := range gens {
		fmt.Fprintf(&b, "    for (%s) |%s| {\n", s.renderExpr(g.Iter), s.renderExpr(g.Target))
		depth++
		for _, cond := range g.Ifs {
			fmt.Fprintf(&b, "    if (!(%s)) continue;\n", s.renderExpr(cond))
		}
	}
	switch kind {
	case comprehensionSet:
		fmt.Fprintf(&b, "    %s.put(%s, {}) catch unreachable;\n", tmp, s.renderExpr(elt))
	default:
		fmt.Fprintf(&b, "    %s.append(%s) catch unreachable;\n", tmp, s.renderExpr(elt))
	}
	for i := 0; i < depth; i++ {
		b.WriteString("    }\n")
	}
	fmt.Fprintf(&b, "    break :blk %s;\n}", tmp)
	return b.String()
}

func (s *State) renderDictComprehension(d *srcast.DictComp) string {
	tmp := s.nextTemp()
	var b strings.Builder
	b.WriteString("blk: {\n")
	fmt.Fprintf(&b, "    var %s = %s.init(allocator);\n", tmp, dictType(s.typeOf(d.Value)))
	depth := 0
	for _, g := range d.Gens {
		fmt.Fprintf(&b, "    for (%s) |%s| {\n", s.renderExpr(g.Iter), s.renderExpr(g.Target))
		depth++
		for _, cond := range g.Ifs {
			fmt.Fprintf(&b, "    if (!(%s)) continue;\n", s.renderExpr(cond))
		}
	}
	fmt.Fprintf(&b, "    %s.put(%s, %s) catch unreachable;\n", tmp, s.renderExpr(d.Key), s.renderExpr(d.Value))
	for i := 0; i < depth; i++ {
		b.WriteString("    }\n")
	}
	fmt.Fprintf(&b, "    break :blk %s;\n}", tmp)
	return b.String()
}
