package emitter

import (
	"strings"

	cerrors "github.com/cwbudde/pycc/internal/errors"
	"github.com/cwbudde/pycc/internal/siggen"
	"github.com/cwbudde/pycc/internal/srcast"
)

// emitFunction renders fn's signature and body. class is nil for a
// module-level function or a function nested inside another function
// (never itself a method). The signature decision itself (params, self
// mutability, allocator, return type, error union) was already computed
// by the Signature Generator (component D) and is keyed by fn alone, so
// class is not consulted here; emitClass still passes it through so a
// future per-class rendering hook (e.g. property accessor naming) has
// somewhere to attach without changing every call site.
func (s *State) emitFunction(fn *srcast.FunctionDef, class *srcast.ClassDef) error {
	traits := s.traitsOf(fn)
	if traits == nil {
		return cerrors.New(cerrors.InvariantBreach, fn.Pos(), "<module>", "no FunctionTraits recorded for %s", fn.Name)
	}

	s.line("pub fn %s(%s) %s {", traits.TargetName, s.paramList(traits), returnTypeText(traits))
	s.indent++

	if traits.IsInit {
		s.line("var self: Self = undefined;")
	}

	prevFunc := s.currentFunc
	s.currentFunc = fn
	for _, stmt := range fn.Body {
		if err := s.emitStmt(stmt); err != nil {
			s.currentFunc = prevFunc
			return err
		}
	}
	s.currentFunc = prevFunc

	if traits.IsInit && !endsInReturn(fn.Body) {
		s.line("return self;")
	}

	s.indent--
	s.line("}")
	s.raw("\n")
	return nil
}

// endsInReturn reports whether body's last statement is already a return,
// so emitFunction's synthesized `return self;` epilogue for __init__ isn't
// appended after an unconditional return (unreachable code is a Zig
// compile error, not just dead code).
func endsInReturn(body []srcast.Statement) bool {
	if len(body) == 0 {
		return false
	}
	_, ok := body[len(body)-1].(*srcast.Return)
	return ok
}

func (s *State) paramList(t *siggen.FunctionTraits) string {
	var parts []string

	if t.IsMethod && !t.IsStatic && !t.IsInit {
		selfType := "Self"
		if t.SelfMutable {
			selfType = "*Self"
		}
		parts = append(parts, "self: "+selfType)
	}
	if t.NeedsAllocator {
		parts = append(parts, "allocator: std.mem.Allocator")
	}
	for _, p := range t.Params {
		parts = append(parts, p.TargetName+": "+zigType(p.Type))
	}
	if t.Vararg != nil {
		parts = append(parts, t.Vararg.TargetName+": []const pyvalue.Value")
	}
	for _, p := range t.KwOnly {
		parts = append(parts, p.TargetName+": "+zigType(p.Type))
	}
	if t.Kwarg != nil {
		parts = append(parts, t.Kwarg.TargetName+": "+zigType(t.Kwarg.Type))
	}
	return strings.Join(parts, ", ")
}

func returnTypeText(t *siggen.FunctionTraits) string {
	base := "void"
	switch {
	case t.IsInit:
		base = "Self"
	case !t.IsVoid:
		base = zigType(t.ReturnType)
	}
	if t.ReturnsError {
		return "!" + base
	}
	return base
}
