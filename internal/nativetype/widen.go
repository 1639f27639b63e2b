package nativetype

// Widen computes the least-upper-bound of two observed types, as used by
// the Type Inferrer's fixpoint pass (spec component A) whenever a binding
// or container element is observed with more than one concrete shape.
//
// Widen(A,B) = Widen(B,A) (commutative)
// Widen(A,A) = A          (idempotent)
// Widen(A, Widen(B,C)) = Widen(Widen(A,B), C) (associative)
// Widen(A, unknown) = A
func Widen(a, b NativeType) NativeType {
	if a.IsUnknown() {
		return b
	}
	if b.IsUnknown() {
		return a
	}
	if a.Equal(b) {
		return a
	}

	// Canonicalize ordering so the numeric-promotion table below only
	// needs to handle each pair once; Kind is a stable total order.
	if b.Kind < a.Kind || (b.Kind == a.Kind && widenRank(b) < widenRank(a)) {
		a, b = b, a
	}

	switch {
	case a.Kind == Int && b.Kind == Int:
		// bounded widened with unbounded promotes to unbounded.
		return TIntUnbounded()
	case a.Kind == Int && b.Kind == Float:
		return TFloat
	case a.Kind == Int && b.Kind == BigInt:
		return TBigInt
	case a.Kind == Float && b.Kind == BigInt:
		return TBigInt
	case a.Kind == Int && b.Kind == Bool:
		// bool is an int subtype at the value level in the source
		// language; widen toward int.
		return a
	case a.Kind == Float && b.Kind == Bool:
		// bool widens like int against the other numeric kinds.
		return TFloat
	case a.Kind == Bool && b.Kind == BigInt:
		return TBigInt
	case a.Kind == String && b.Kind == String:
		// literal widened with runtime produces runtime (loses the
		// compile-time-known refinement).
		return TStringRuntime()
	case a.Kind == List && b.Kind == List:
		return TList(Widen(*a.Elem, *b.Elem))
	case a.Kind == Array && b.Kind == Array:
		if a.ArrayLen != b.ArrayLen {
			return TList(Widen(*a.Elem, *b.Elem))
		}
		return TArray(Widen(*a.Elem, *b.Elem), a.ArrayLen)
	case a.Kind == List && b.Kind == Array:
		return TList(Widen(*a.Elem, *b.Elem))
	case a.Kind == Set && b.Kind == Set:
		return TSet(Widen(*a.Elem, *b.Elem))
	case a.Kind == Deque && b.Kind == Deque:
		return TDeque(Widen(*a.Elem, *b.Elem))
	case a.Kind == Dict && b.Kind == Dict:
		return TDict(Widen(*a.Key, *b.Key), Widen(*a.Elem, *b.Elem))
	case a.Kind == Dict && b.Kind == Defaultdict:
		return TDict(Widen(*a.Key, *b.Key), Widen(*a.Elem, *b.Elem))
	case a.Kind == Defaultdict && b.Kind == Defaultdict:
		return TDefaultdict(Widen(*a.Key, *b.Key), Widen(*a.Elem, *b.Elem))
	case a.Kind == Tuple && b.Kind == Tuple && len(a.Elems) == len(b.Elems):
		out := make([]NativeType, len(a.Elems))
		for i := range a.Elems {
			out[i] = Widen(a.Elems[i], b.Elems[i])
		}
		return TTuple(out...)
	case a.Kind == ClassInstance && b.Kind == ClassInstance:
		// Two disjoint class-instance types have no common refinement.
		return TPyValue
	case a.Kind == Closure && b.Kind == Closure:
		if a.ClosureID == b.ClosureID {
			return a
		}
		return TCallable()
	}

	// No common refinement: erase to the dynamic value shape.
	return TPyValue
}

// widenRank breaks kind-equal ties deterministically (e.g. two Int values
// with different IntKind) so the canonicalization swap above is total.
func widenRank(t NativeType) int {
	switch t.Kind {
	case Int:
		return int(t.IntKind)
	case String:
		return int(t.StringKind)
	default:
		return 0
	}
}

// WidenAll folds Widen across a slice, used when a parameter is observed
// at N call sites (spec §4.A) or a container literal collects several
// elements.
func WidenAll(ts []NativeType) NativeType {
	result := TUnknown
	for _, t := range ts {
		result = Widen(result, t)
	}
	return result
}
