package nativetype_test

import (
	"testing"

	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/stretchr/testify/require"
)

// TestWidenCommutative covers P1: widen(A,B) = widen(B,A).
func TestWidenCommutative(t *testing.T) {
	pairs := []struct{ a, b nativetype.NativeType }{
		{nativetype.TInt(), nativetype.TFloat},
		{nativetype.TInt(), nativetype.TBigInt},
		{nativetype.TList(nativetype.TInt()), nativetype.TList(nativetype.TFloat)},
		{nativetype.TClassInstance("Dog"), nativetype.TClassInstance("Cat")},
		{nativetype.TStringLiteral(), nativetype.TStringRuntime()},
		{nativetype.TUnknown, nativetype.TInt()},
	}
	for _, p := range pairs {
		require.Truef(t, nativetype.Widen(p.a, p.b).Equal(nativetype.Widen(p.b, p.a)),
			"widen(%s,%s) != widen(%s,%s)", p.a, p.b, p.b, p.a)
	}
}

// TestWidenIdempotent covers P1: widen(A,A) = A.
func TestWidenIdempotent(t *testing.T) {
	types := []nativetype.NativeType{
		nativetype.TInt(),
		nativetype.TFloat,
		nativetype.TBool,
		nativetype.TStringLiteral(),
		nativetype.TList(nativetype.TInt()),
		nativetype.TDict(nativetype.TStringRuntime(), nativetype.TInt()),
		nativetype.TClassInstance("Widget"),
		nativetype.TPyValue,
	}
	for _, ty := range types {
		require.True(t, nativetype.Widen(ty, ty).Equal(ty), "widen(%s,%s) != %s", ty, ty, ty)
	}
}

// TestWidenAssociative covers P1:
// widen(A, widen(B,C)) = widen(widen(A,B), C).
func TestWidenAssociative(t *testing.T) {
	triples := [][3]nativetype.NativeType{
		{nativetype.TInt(), nativetype.TFloat, nativetype.TBigInt},
		{nativetype.TInt(), nativetype.TBool, nativetype.TFloat},
		{nativetype.TClassInstance("A"), nativetype.TClassInstance("B"), nativetype.TInt()},
		{nativetype.TUnknown, nativetype.TInt(), nativetype.TFloat},
	}
	for _, tr := range triples {
		a, b, c := tr[0], tr[1], tr[2]
		left := nativetype.Widen(a, nativetype.Widen(b, c))
		right := nativetype.Widen(nativetype.Widen(a, b), c)
		require.Truef(t, left.Equal(right), "associativity failed for %s,%s,%s: %s != %s", a, b, c, left, right)
	}
}

// TestWidenUnknownIdentity covers P1: widening any T with unknown yields T.
func TestWidenUnknownIdentity(t *testing.T) {
	types := []nativetype.NativeType{
		nativetype.TInt(),
		nativetype.TFloat,
		nativetype.TList(nativetype.TInt()),
		nativetype.TClassInstance("Widget"),
	}
	for _, ty := range types {
		require.True(t, nativetype.Widen(ty, nativetype.TUnknown).Equal(ty))
		require.True(t, nativetype.Widen(nativetype.TUnknown, ty).Equal(ty))
	}
}

func TestWidenNumericPromotion(t *testing.T) {
	require.Equal(t, nativetype.Float, nativetype.Widen(nativetype.TInt(), nativetype.TFloat).Kind)
	require.Equal(t, nativetype.BigInt, nativetype.Widen(nativetype.TInt(), nativetype.TBigInt).Kind)
	require.Equal(t, nativetype.BigInt, nativetype.Widen(nativetype.TFloat, nativetype.TBigInt).Kind)
}

func TestWidenDisjointClassInstancesErraseToPyValue(t *testing.T) {
	got := nativetype.Widen(nativetype.TClassInstance("Dog"), nativetype.TClassInstance("Cat"))
	require.Equal(t, nativetype.PyValue, got.Kind)
}

func TestWidenAllFoldsLeftToRight(t *testing.T) {
	got := nativetype.WidenAll([]nativetype.NativeType{
		nativetype.TInt(), nativetype.TInt(), nativetype.TFloat,
	})
	require.Equal(t, nativetype.Float, got.Kind)
}
