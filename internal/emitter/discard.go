package emitter

import (
	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/cwbudde/pycc/internal/srcast"
)

// needsDiscard implements spec.md §4.E's expression-statement discard
// policy: a call or class-instance binary-operator dispatch whose
// result has a known, non-void type leaves an unused Zig value behind
// and needs a `_ = ` prefix. Bare labeled/anonymous/comptime blocks the
// emitter itself generates for comprehensions and dict literals are
// never prefixed — their `break :blk` value is already consumed by the
// surrounding binding, never left as a bare statement.
func (s *State) needsDiscard(e *srcast.ExprStmt) bool {
	switch v := e.Value.(type) {
	case *srcast.Call:
		return s.callReturnsValue(v)
	case *srcast.BinOp:
		t := s.typeOf(v.Left)
		return t.Kind == nativetype.ClassInstance && s.binOpReturnsValue(v)
	default:
		return false
	}
}

func (s *State) callReturnsValue(call *srcast.Call) bool {
	t := s.typeOf(call)
	return t.Kind != nativetype.None && t.Kind != nativetype.Unknown
}

func (s *State) binOpReturnsValue(b *srcast.BinOp) bool {
	t := s.typeOf(b)
	return t.Kind != nativetype.None && t.Kind != nativetype.Unknown
}
