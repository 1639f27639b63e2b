package emitter

import (
	cerrors "github.com/cwbudde/pycc/internal/errors"
	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/cwbudde/pycc/internal/srcast"
)

// emitStmt dispatches one statement to its emission method, the
// per-statement-kind switch spec.md §5 describes, grounded on the
// teacher's compiler_statements.go dispatch shape.
func (s *State) emitStmt(stmt srcast.Statement) error {
	switch n := stmt.(type) {
	case *srcast.Assign:
		return s.emitAssign(n)
	case *srcast.AugAssign:
		return s.emitAugAssign(n)
	case *srcast.AnnAssign:
		return s.emitAnnAssign(n)
	case *srcast.ExprStmt:
		return s.emitExprStmt(n)
	case *srcast.Return:
		return s.emitReturn(n)
	case *srcast.Pass:
		return nil
	case *srcast.Break:
		s.line("break;")
		return nil
	case *srcast.Continue:
		s.line("continue;")
		return nil
	case *srcast.Raise:
		return s.emitRaise(n)
	case *srcast.Global, *srcast.Nonlocal:
		// Purely a scoping declaration already resolved by the Usage
		// Analyzer; nothing to emit.
		return nil
	case *srcast.Import, *srcast.ImportFrom:
		return nil
	case *srcast.Delete:
		return s.emitDelete(n)
	case *srcast.Assert:
		return s.emitAssert(n)
	case *srcast.If:
		return s.emitIf(n)
	case *srcast.While:
		return s.emitWhile(n)
	case *srcast.For:
		return s.emitFor(n)
	case *srcast.Try:
		return s.emitTry(n)
	case *srcast.With:
		return s.emitWith(n)
	case *srcast.FunctionDef:
		// A def nested inside a function body is a plain nested function,
		// never itself a method, regardless of whether the enclosing
		// function is a method.
		return s.emitFunction(n, nil)
	case *srcast.ClassDef:
		return s.emitClass(n)
	default:
		return cerrors.New(cerrors.UnsupportedConstruct, stmt.Pos(), "<module>", "unsupported statement %T", stmt)
	}
}

func (s *State) emitBody(body []srcast.Statement) error {
	for _, stmt := range body {
		if err := s.emitStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *State) emitExprStmt(e *srcast.ExprStmt) error {
	if call, ok := e.Value.(*srcast.Call); ok {
		if s.emitAssertionStmt(call) {
			return nil
		}
	}
	text := s.renderExpr(e.Value)
	if s.needsDiscard(e) {
		s.line("_ = %s;", text)
	} else {
		s.line("%s;", text)
	}
	return nil
}

func (s *State) emitReturn(r *srcast.Return) error {
	if r.Value == nil {
		if s.currentFunc != nil && s.currentFunc.Name == "__init__" && s.currentClass != nil {
			s.line("return self;")
			return nil
		}
		s.line("return;")
		return nil
	}
	s.line("return %s;", s.renderExpr(r.Value))
	return nil
}

func (s *State) emitRaise(r *srcast.Raise) error {
	if r.Exc == nil {
		s.line("return error.Reraise;")
		return nil
	}
	if call, ok := r.Exc.(*srcast.Call); ok {
		if name, ok := call.Func.(*srcast.Name); ok {
			s.line("return error.%s;", name.Ident)
			return nil
		}
	}
	s.line("return error.RuntimeError;")
	return nil
}

func (s *State) emitDelete(d *srcast.Delete) error {
	for _, t := range d.Targets {
		switch tg := t.(type) {
		case *srcast.Subscript:
			valType := s.typeOf(tg.Value)
			if valType.Kind == nativetype.Dict {
				s.line("_ = %s.remove(%s);", s.renderExpr(tg.Value), s.renderExpr(tg.Index))
			} else {
				s.line("_ = %s.orderedRemove(@intCast(%s));", s.renderExpr(tg.Value), s.renderExpr(tg.Index))
			}
		case *srcast.Attribute:
			s.line("%s.delAttr(%q);", s.renderExpr(tg.Value), tg.Attr)
		case *srcast.Name:
			s.line("_ = %s;", s.nameRef(tg.Ident))
		}
	}
	return nil
}

func (s *State) emitAssert(a *srcast.Assert) error {
	if a.Msg != nil {
		s.line("if (!(%s)) @panic(%s);", s.renderExpr(a.Test), s.renderExpr(a.Msg))
		return nil
	}
	s.line("if (!(%s)) unreachable;", s.renderExpr(a.Test))
	return nil
}

func (s *State) emitIf(n *srcast.If) error {
	s.line("if (%s) {", s.renderExpr(n.Test))
	s.indent++
	if err := s.emitBody(n.Body); err != nil {
		return err
	}
	s.indent--
	if len(n.Orelse) > 0 {
		s.line("} else {")
		s.indent++
		if err := s.emitBody(n.Orelse); err != nil {
			return err
		}
		s.indent--
	}
	s.line("}")
	return nil
}

func (s *State) emitWhile(n *srcast.While) error {
	s.line("while (%s) {", s.renderExpr(n.Test))
	s.indent++
	if err := s.emitBody(n.Body); err != nil {
		return err
	}
	s.indent--
	s.line("}")
	if len(n.Orelse) > 0 {
		return s.emitBody(n.Orelse)
	}
	return nil
}

// emitFor dispatches on the iterator's inferred shape per spec.md §4.E
// "Control flow": a range() call lowers to a counted loop, a container
// iterates its elements directly, and a generator expression (already
// lowered eagerly, see renderComprehension) iterates by index like any
// other growable container.
func (s *State) emitFor(n *srcast.For) error {
	if call, ok := n.Iter.(*srcast.Call); ok {
		if name, ok := call.Func.(*srcast.Name); ok && name.Ident == "range" {
			return s.emitForRange(n, call)
		}
	}

	iterType := s.typeOf(n.Iter)
	iterText := s.renderExpr(n.Iter)
	if iterType.Kind == nativetype.List || iterType.Kind == nativetype.Array || iterType.Kind == nativetype.Set {
		iterText += ".items"
		if iterType.Kind == nativetype.Set {
			iterText = s.renderExpr(n.Iter) + ".keyIterator()"
		}
	}

	targetName, ok := n.Target.(*srcast.Name)
	if !ok {
		return s.emitForUnpack(n, iterText)
	}

	s.line("for (%s) |%s| {", iterText, s.targetName(targetName.Ident))
	s.indent++
	if err := s.emitBody(n.Body); err != nil {
		return err
	}
	s.indent--
	s.line("}")
	return nil
}

func (s *State) emitForRange(n *srcast.For, call *srcast.Call) error {
	var start, stop, step string
	switch len(call.Args) {
	case 1:
		start, stop, step = "0", s.renderExpr(call.Args[0]), "1"
	case 2:
		start, stop, step = s.renderExpr(call.Args[0]), s.renderExpr(call.Args[1]), "1"
	default:
		start, stop, step = s.renderExpr(call.Args[0]), s.renderExpr(call.Args[1]), s.renderExpr(call.Args[2])
	}
	name, ok := n.Target.(*srcast.Name)
	if !ok {
		return cerrors.New(cerrors.UnsupportedConstruct, n.Pos(), "<module>", "range() loop target must be a simple name")
	}
	ident := s.targetName(name.Ident)
	s.line("var %s: i64 = %s;", ident, start)
	s.line("while (%s < %s) : (%s += %s) {", ident, stop, ident, step)
	s.indent++
	if err := s.emitBody(n.Body); err != nil {
		return err
	}
	s.indent--
	s.line("}")
	return nil
}

func (s *State) emitForUnpack(n *srcast.For, iterText string) error {
	tmp := s.nextTemp()
	s.line("for (%s) |%s| {", iterText, tmp)
	s.indent++
	elems, ok := tupleOrListElems(n.Target)
	if !ok {
		s.indent--
		s.line("}")
		return cerrors.New(cerrors.UnsupportedConstruct, n.Pos(), "<module>", "unsupported for-loop unpack target %T", n.Target)
	}
	for i, el := range elems {
		member := tmp
		if name, ok := el.(*srcast.Name); ok && (name.Ident == "_" || s.isUnused(name.Ident)) {
			s.line("_ = %s.f%d;", tmp, i)
			continue
		}
		if nt, ok := el.(*srcast.Name); ok {
			s.line("const %s = %s.f%d;", s.targetName(nt.Ident), member, i)
		}
	}
	if err := s.emitBody(n.Body); err != nil {
		return err
	}
	s.indent--
	s.line("}")
	return nil
}

func tupleOrListElems(target srcast.Expression) ([]srcast.Expression, bool) {
	switch t := target.(type) {
	case *srcast.TupleLit:
		return t.Elems, true
	case *srcast.ListLit:
		return t.Elems, true
	default:
		return nil, false
	}
}

// emitTry lowers `try: Body except T as n: Handlers ... finally:
// Finalbody` to a nested wrapper function plus a `catch |err|` error-set
// dispatch: Zig has no statement-level exception matching, so the body
// is hoisted into a locally-defined function (taking self/allocator
// explicitly, since Zig closures cannot capture locals) and invoked
// immediately, with each handler becoming one arm of an if/else-if chain
// over the returned error value.
func (s *State) emitTry(n *srcast.Try) error {
	if len(n.Handlers) == 0 {
		if err := s.emitBody(n.Body); err != nil {
			return err
		}
		if err := s.emitBody(n.Orelse); err != nil {
			return err
		}
		return s.emitBody(n.Finalbody)
	}

	wrapper := s.nextName("__TryBody")
	selfParam, selfArg := "", ""
	if s.currentClass != nil {
		selfParam, selfArg = "self: Self, ", "self, "
	}

	s.line("const %s = struct {", wrapper)
	s.indent++
	s.line("fn run(%sallocator: std.mem.Allocator) !void {", selfParam)
	s.indent++
	if err := s.emitBody(n.Body); err != nil {
		return err
	}
	s.indent--
	s.line("}")
	s.indent--
	s.line("}.run;")

	s.line("%s(%sallocator) catch |err| {", wrapper, selfArg)
	s.indent++
	for i, h := range n.Handlers {
		kw := "if"
		if i > 0 {
			kw = "else if"
		}
		if h.Type == nil {
			if i == 0 {
				s.line("{")
			} else {
				s.line("else {")
			}
		} else if name, ok := h.Type.(*srcast.Name); ok {
			s.line("%s (err == error.%s) {", kw, name.Ident)
		} else {
			s.line("%s (true) {", kw)
		}
		s.indent++
		if h.Name != "" {
			s.line("const %s = err;", s.targetName(h.Name))
		}
		if err := s.emitBody(h.Body); err != nil {
			return err
		}
		s.indent--
		s.line("}")
	}
	s.line("else return err;")
	s.indent--
	s.line("};")

	if err := s.emitBody(n.Orelse); err != nil {
		return err
	}
	return s.emitBody(n.Finalbody)
}

// emitWith lowers `with ctx as v: body` to a defer-guarded
// __enter__/__exit__ pair (SPEC_FULL.md Supplemented Features, grounded
// on other_examples' RangelReale-gotopython xcompiler.go addDefers
// pattern): __enter__ runs immediately, __exit__ is deferred so it still
// runs on an early return or raise out of body.
func (s *State) emitWith(n *srcast.With) error {
	for _, item := range n.Items {
		ctxVar := s.nextTemp()
		s.line("const %s = %s;", ctxVar, s.renderExpr(item.ContextExpr))
		enter := ctxVar + ".__enter__()"
		if item.OptionalVars != nil {
			if name, ok := item.OptionalVars.(*srcast.Name); ok {
				s.line("const %s = %s;", s.targetName(name.Ident), enter)
			} else {
				s.line("_ = %s;", enter)
			}
		} else {
			s.line("_ = %s;", enter)
		}
		s.line("defer _ = %s.__exit__();", ctxVar)
	}
	return s.emitBody(n.Body)
}
