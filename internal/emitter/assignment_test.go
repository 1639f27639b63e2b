package emitter

import (
	"strings"
	"testing"

	"github.com/cwbudde/pycc/internal/classreg"
	"github.com/cwbudde/pycc/internal/inferrer"
	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/cwbudde/pycc/internal/rename"
	"github.com/cwbudde/pycc/internal/scope"
	"github.com/cwbudde/pycc/internal/srcast"
	"github.com/cwbudde/pycc/internal/usage"
	"github.com/stretchr/testify/require"
)

// emptyInferResult builds a minimal inferrer.Result with only the
// ExprTypes map populated, enough for tests that plant a handful of
// expression types directly rather than running full inference.
func emptyInferResult() *inferrer.Result {
	return &inferrer.Result{ExprTypes: make(map[srcast.Expression]nativetype.NativeType)}
}

// newTestState builds a State with empty upstream tables, suitable for
// exercising one emitter responsibility at a time without a full
// inferrer/usage/classreg pipeline run.
func newTestState() *State {
	return &State{
		usageRes: &usage.Result{Info: make(map[usage.Key]*usage.Info)},
		classes:  classreg.New(),
		renames:  rename.New(),
	}
}

func (s *State) setUsage(name string, info usage.Info) {
	s.usageRes.Info[usage.Key{Scope: scope.Module, Name: name}] = &info
}

func num(raw string) *srcast.NumberLit { return &srcast.NumberLit{Raw: raw} }
func name(id string) *srcast.Name      { return &srcast.Name{Ident: id} }

// TestEmitBindingSingleWriteIsConst covers P2: a name written exactly once
// and never escalated by P4 binds with `const`.
func TestEmitBindingSingleWriteIsConst(t *testing.T) {
	s := newTestState()
	s.setUsage("x", usage.Info{UsedDirectly: true})
	s.emitBinding("x", nativetype.TInt(), "1")
	require.Contains(t, s.out.String(), "const x: i64 = 1;")
}

// TestEmitBindingMutatedBecomesVar covers P4: a name the Usage Analyzer
// flagged Mutated escalates its binding to `var` even though the emitter
// itself only ever sees the single declaring assignment.
func TestEmitBindingMutatedBecomesVar(t *testing.T) {
	s := newTestState()
	s.setUsage("x", usage.Info{UsedDirectly: true, Mutated: true})
	s.emitBinding("x", nativetype.TInt(), "1")
	require.Contains(t, s.out.String(), "var x: i64 = 1;")
}

// TestEmitBindingIteratorEscalates covers the is_used_as_iterator
// escalation path distinct from Mutated: a loop variable rebound in place
// by a `for` still needs `var`.
func TestEmitBindingIteratorEscalates(t *testing.T) {
	s := newTestState()
	s.setUsage("it", usage.Info{UsedDirectly: true, UsedAsIterator: true})
	s.emitBinding("it", nativetype.TInt(), "0")
	require.Contains(t, s.out.String(), "var it: i64 = 0;")
}

// TestEmitBindingGrowableAlwaysVar covers the is_arraylist rule: a
// List-typed binding is always `var` regardless of mutation traits,
// because appending to it requires a mutable receiver even if the
// variable itself is never reassigned.
func TestEmitBindingGrowableAlwaysVar(t *testing.T) {
	s := newTestState()
	s.setUsage("xs", usage.Info{UsedDirectly: true})
	s.emitBinding("xs", nativetype.TList(nativetype.TInt()), "&.{}")
	require.Contains(t, s.out.String(), "var xs = &.{};")
}

// TestEmitBindingOmitsAnnotationForList covers the annotation-omission
// rule: list/tuple/closure/counter bindings let the target infer the type
// from the initializer rather than spelling it out.
func TestEmitBindingOmitsAnnotationForList(t *testing.T) {
	s := newTestState()
	s.setUsage("xs", usage.Info{UsedDirectly: true})
	s.emitBinding("xs", nativetype.TList(nativetype.TInt()), "&.{1}")
	got := s.out.String()
	require.NotContains(t, got, ": std.ArrayList")
}

// TestEmitBindingBigIntNeedsAnnotation covers the one exception to the
// omission rule: a BigInt-backed binding always spells out its type since
// the target's own literal-type inference would otherwise mis-type it.
func TestEmitBindingBigIntNeedsAnnotation(t *testing.T) {
	s := newTestState()
	s.setUsage("n", usage.Info{UsedDirectly: true})
	s.emitBinding("n", nativetype.NativeType{Kind: nativetype.BigInt}, `BigInt.fromLiteral("123456789012345678901234")`)
	require.Contains(t, s.out.String(), ": BigInt =")
}

// TestEmitUnpackAssignListShaped covers P3 over a List-shaped RHS: each
// target reads `.items[i]`.
func TestEmitUnpackAssignListShaped(t *testing.T) {
	s := newTestState()
	s.infer = emptyInferResult()
	pairVal := &srcast.Name{Ident: "pair"}
	s.infer.ExprTypes[pairVal] = nativetype.TList(nativetype.TInt())
	s.setUsage("a", usage.Info{UsedDirectly: true})
	s.setUsage("b", usage.Info{UsedDirectly: true})

	err := s.emitUnpackAssign([]srcast.Expression{name("a"), name("b")}, pairVal)
	require.NoError(t, err)
	got := s.out.String()
	require.Contains(t, got, ".items[0]")
	require.Contains(t, got, ".items[1]")
}

// TestEmitUnpackAssignTupleShaped covers P3 over a Tuple-shaped RHS: each
// target reads the positional `.fN` field instead of `.items[i]`.
func TestEmitUnpackAssignTupleShaped(t *testing.T) {
	s := newTestState()
	s.infer = emptyInferResult()
	rhs := &srcast.Name{Ident: "pair"}
	s.infer.ExprTypes[rhs] = nativetype.TTuple(nativetype.TInt(), nativetype.TStringRuntime())
	s.setUsage("a", usage.Info{UsedDirectly: true})
	s.setUsage("b", usage.Info{UsedDirectly: true})

	err := s.emitUnpackAssign([]srcast.Expression{name("a"), name("b")}, rhs)
	require.NoError(t, err)
	got := s.out.String()
	require.Contains(t, got, ".f0")
	require.Contains(t, got, ".f1")
	require.NotContains(t, got, ".items[")
}

// TestEmitUnpackAssignDiscardsUnderscore covers the `_`/unused-target
// discard form: an underscore target is never bound, only discarded.
func TestEmitUnpackAssignDiscardsUnderscore(t *testing.T) {
	s := newTestState()
	s.infer = emptyInferResult()
	rhs := &srcast.Name{Ident: "pair"}
	s.infer.ExprTypes[rhs] = nativetype.TTuple(nativetype.TInt(), nativetype.TInt())
	s.setUsage("a", usage.Info{UsedDirectly: true})

	err := s.emitUnpackAssign([]srcast.Expression{name("a"), name("_")}, rhs)
	require.NoError(t, err)
	got := s.out.String()
	require.True(t, strings.Contains(got, "_ = ") && strings.Contains(got, ".f1;"))
}

// TestEmitAnnAssignBareDeclaresUndefined covers a bare `name: T` with no
// value: Zig has no uninitialized-const, so this must become a `var`
// bound to `undefined`.
func TestEmitAnnAssignBareDeclaresUndefined(t *testing.T) {
	s := newTestState()
	s.infer = emptyInferResult()
	target := name("x")
	s.infer.ExprTypes[target] = nativetype.TInt()
	err := s.emitAnnAssign(&srcast.AnnAssign{Target: target, Annotation: "int"})
	require.NoError(t, err)
	require.Contains(t, s.out.String(), "var x: i64 = undefined;")
}
