package emitter

import (
	"testing"

	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/cwbudde/pycc/internal/srcast"
	"github.com/stretchr/testify/require"
)

// TestEmitAugNameDirectOp covers the plain-operator path: `x += 1` on an
// Int-typed name lowers to a direct infix expression.
func TestEmitAugNameDirectOp(t *testing.T) {
	s := newTestState()
	s.infer = emptyInferResult()
	target := name("x")
	s.infer.ExprTypes[target] = nativetype.TInt()

	err := s.emitAugAssign(&srcast.AugAssign{Target: target, Op: "+=", Value: num("1")})
	require.NoError(t, err)
	require.Contains(t, s.out.String(), "x = (x + 1);")
}

// TestEmitAugNameFloorDivUsesHelper covers P6's helper-dispatch path:
// `x //= 2` has no single Zig infix operator, so it routes through the
// floorDiv runtime helper instead.
func TestEmitAugNameFloorDivUsesHelper(t *testing.T) {
	s := newTestState()
	s.infer = emptyInferResult()
	target := name("x")
	s.infer.ExprTypes[target] = nativetype.TInt()

	err := s.emitAugAssign(&srcast.AugAssign{Target: target, Op: "//=", Value: num("2")})
	require.NoError(t, err)
	require.Contains(t, s.out.String(), "x = floorDiv(x, 2);")
}

// TestEmitAugNameClassInstanceUsesDunder covers P6's class-instance
// dispatch: `acc += delta` where acc is a user-class instance routes
// through its __iadd__ dunder method rather than a Zig infix operator.
func TestEmitAugNameClassInstanceUsesDunder(t *testing.T) {
	s := newTestState()
	s.infer = emptyInferResult()
	target := name("acc")
	s.infer.ExprTypes[target] = nativetype.TClassInstance("Vector")

	err := s.emitAugAssign(&srcast.AugAssign{Target: target, Op: "+=", Value: name("delta")})
	require.NoError(t, err)
	require.Contains(t, s.out.String(), "acc = acc.__iadd__(delta);")
}

// TestEmitAugNameClassInstanceFallsBackToBinOpDunder covers the fallback
// path: an operator with no __i*__ counterpart (e.g. `**=` has one, but a
// hypothetical op without one) falls back to the non-augmented dunder.
// `@=` has no entry in dunderForAugOp, so `m @= other` must fall back to
// `__matmul__`.
func TestEmitAugNameClassInstanceFallsBackToBinOpDunder(t *testing.T) {
	s := newTestState()
	s.infer = emptyInferResult()
	target := name("m")
	s.infer.ExprTypes[target] = nativetype.TClassInstance("Matrix")

	err := s.emitAugAssign(&srcast.AugAssign{Target: target, Op: "@=", Value: name("other")})
	require.NoError(t, err)
	// "@=" has no dunderForAugOp entry; dunderFallbackForAugOp("@=") strips
	// it to "@", which dunderForBinOp maps to __matmul__.
	require.Contains(t, s.out.String(), "m = m.__matmul__(other);")
}

// TestEmitAugSubscriptDict covers dict-subscript augmented assignment:
// the current value is read via `.get(key).?` since Zig hash maps have no
// in-place augmented-store operator.
func TestEmitAugSubscriptDict(t *testing.T) {
	s := newTestState()
	s.infer = emptyInferResult()
	container := name("d")
	target := &srcast.Subscript{Value: container, Index: name("k")}
	s.infer.ExprTypes[container] = nativetype.TDict(nativetype.TStringRuntime(), nativetype.TInt())

	err := s.emitAugAssign(&srcast.AugAssign{Target: target, Op: "+=", Value: num("1")})
	require.NoError(t, err)
	require.Contains(t, s.out.String(), "d.put(k, (d.get(k).? + 1)) catch unreachable;")
}

// TestEmitAugSubscriptList covers list-subscript augmented assignment.
func TestEmitAugSubscriptList(t *testing.T) {
	s := newTestState()
	s.infer = emptyInferResult()
	container := name("xs")
	target := &srcast.Subscript{Value: container, Index: name("i")}
	s.infer.ExprTypes[container] = nativetype.TList(nativetype.TInt())

	err := s.emitAugAssign(&srcast.AugAssign{Target: target, Op: "+=", Value: num("1")})
	require.NoError(t, err)
	got := s.out.String()
	require.Contains(t, got, "xs.items[@intCast(i)] = (xs.items[@intCast(i)] + 1);")
}

// TestEmitAugSubscriptSliceRejectsUnsupportedOp covers the invariant that
// slice-augmented assignment only ever supports += and *=.
func TestEmitAugSubscriptSliceRejectsUnsupportedOp(t *testing.T) {
	s := newTestState()
	s.infer = emptyInferResult()
	container := name("xs")
	target := &srcast.Subscript{Value: container, Index: &srcast.Slice{}}

	err := s.emitAugAssign(&srcast.AugAssign{Target: target, Op: "-=", Value: name("other")})
	require.Error(t, err)
}

// TestEmitAugSubscriptSliceAcceptsPlusEquals covers the permitted slice
// form, which routes through the sliceAug runtime helper.
func TestEmitAugSubscriptSliceAcceptsPlusEquals(t *testing.T) {
	s := newTestState()
	s.infer = emptyInferResult()
	container := name("xs")
	target := &srcast.Subscript{Value: container, Index: &srcast.Slice{}}

	err := s.emitAugAssign(&srcast.AugAssign{Target: target, Op: "+=", Value: name("other")})
	require.NoError(t, err)
	require.Contains(t, s.out.String(), "sliceAug(")
}

// TestEmitAugAttributeStaticField covers the static-field branch: a
// class-level (shared) field updates through its module-scope storage
// slot rather than a struct member.
func TestEmitAugAttributeStaticField(t *testing.T) {
	s := newTestState()
	s.infer = emptyInferResult()
	cls := &srcast.ClassDef{Name: "Counter"}
	ci := s.classes.RegisterClass(cls, nil)
	ci.StaticFieldNames["count"] = true

	s.currentClass = cls
	target := &srcast.Attribute{Value: name("self"), Attr: "count"}
	s.infer.ExprTypes[target] = nativetype.TInt()

	err := s.emitAugAssign(&srcast.AugAssign{Target: target, Op: "+=", Value: num("1")})
	require.NoError(t, err)
	require.Contains(t, s.out.String(), "Counter_count = (Counter_count + 1);")
}

// TestRenderAugExprShiftCastsToU6 covers the shift-operator special case:
// Zig's shift-amount operand must be a u6, so the RHS is cast rather than
// used as a bare infix operand.
func TestRenderAugExprShiftCastsToU6(t *testing.T) {
	s := newTestState()
	got := s.renderAugExpr("<<=", "x", "n")
	require.Contains(t, got, "@as(u6, @intCast(n))")
}
