package siggen

import "github.com/cwbudde/pycc/internal/srcast"

// maxErrorUnionPasses bounds the fixpoint that propagates ReturnsError
// through the call graph; real programs converge in 2-3 passes (the
// longest call chain depth).
const maxErrorUnionPasses = 16

// ComputeErrorUnions decides, for every function in funcs, whether it must
// return a Zig error union: directly, because its body raises and no
// enclosing try/except in the same function catches it, or transitively,
// because it calls (outside of a caught try block) another function that
// does. resolve maps a bare call-target name to the FunctionDef it refers
// to, when known (built by the codegen orchestrator from both module-level
// functions and the current class's own methods).
func ComputeErrorUnions(funcs []*srcast.FunctionDef, resolve func(name string) (*srcast.FunctionDef, bool)) map[*srcast.FunctionDef]bool {
	raises := make(map[*srcast.FunctionDef]bool, len(funcs))
	for _, fn := range funcs {
		raises[fn] = directlyRaises(fn)
	}

	for i := 0; i < maxErrorUnionPasses; i++ {
		changed := false
		for _, fn := range funcs {
			if raises[fn] {
				continue
			}
			if callsRaisingFunction(fn, raises, resolve) {
				raises[fn] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return raises
}

// directlyRaises reports whether fn has a `raise` statement reachable
// without crossing a try block that has at least one except handler (a
// simplification of exception-type matching: any handler is treated as
// catching everything the corresponding try body can raise, which spec.md
// §9 accepts as the backend does not model exception type hierarchies).
func directlyRaises(fn *srcast.FunctionDef) bool {
	return bodyRaises(fn.Body)
}

func bodyRaises(body []srcast.Statement) bool {
	for _, stmt := range body {
		if stmtRaises(stmt) {
			return true
		}
	}
	return false
}

func stmtRaises(stmt srcast.Statement) bool {
	switch n := stmt.(type) {
	case *srcast.Raise:
		return true
	case *srcast.If:
		return bodyRaises(n.Body) || bodyRaises(n.Orelse)
	case *srcast.While:
		return bodyRaises(n.Body) || bodyRaises(n.Orelse)
	case *srcast.For:
		return bodyRaises(n.Body) || bodyRaises(n.Orelse)
	case *srcast.With:
		return bodyRaises(n.Body)
	case *srcast.Try:
		if len(n.Handlers) > 0 {
			// The try body's raises are caught here; only the handlers,
			// else-clause, and finally-clause can still escape.
			escapes := false
			for _, h := range n.Handlers {
				escapes = escapes || bodyRaises(h.Body)
			}
			return escapes || bodyRaises(n.Orelse) || bodyRaises(n.Finalbody)
		}
		return bodyRaises(n.Body) || bodyRaises(n.Orelse) || bodyRaises(n.Finalbody)
	}
	return false
}

// callsRaisingFunction reports whether fn calls, outside of a caught try
// block, any function that raises[target] already marks true.
func callsRaisingFunction(fn *srcast.FunctionDef, raises map[*srcast.FunctionDef]bool, resolve func(string) (*srcast.FunctionDef, bool)) bool {
	return bodyCalls(fn.Body, raises, resolve)
}

func bodyCalls(body []srcast.Statement, raises map[*srcast.FunctionDef]bool, resolve func(string) (*srcast.FunctionDef, bool)) bool {
	for _, stmt := range body {
		if stmtCalls(stmt, raises, resolve) {
			return true
		}
	}
	return false
}

func stmtCalls(stmt srcast.Statement, raises map[*srcast.FunctionDef]bool, resolve func(string) (*srcast.FunctionDef, bool)) bool {
	switch n := stmt.(type) {
	case *srcast.Try:
		if len(n.Handlers) > 0 {
			found := false
			for _, h := range n.Handlers {
				found = found || bodyCalls(h.Body, raises, resolve)
			}
			return found || bodyCalls(n.Orelse, raises, resolve) || bodyCalls(n.Finalbody, raises, resolve)
		}
		return bodyCalls(n.Body, raises, resolve) || bodyCalls(n.Orelse, raises, resolve) || bodyCalls(n.Finalbody, raises, resolve)
	case *srcast.If:
		return bodyCalls(n.Body, raises, resolve) || bodyCalls(n.Orelse, raises, resolve)
	case *srcast.While:
		return bodyCalls(n.Body, raises, resolve) || bodyCalls(n.Orelse, raises, resolve)
	case *srcast.For:
		return bodyCalls(n.Body, raises, resolve)
	case *srcast.With:
		return bodyCalls(n.Body, raises, resolve)
	}

	found := false
	srcast.InspectShallow(stmt, func(node srcast.Node) bool {
		call, ok := node.(*srcast.Call)
		if !ok {
			return true
		}
		name, ok := call.Func.(*srcast.Name)
		if !ok {
			return true
		}
		target, ok := resolve(name.Ident)
		if ok && raises[target] {
			found = true
		}
		return true
	})
	return found
}
