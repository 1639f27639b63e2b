package emitter

import (
	"fmt"
	"strings"

	"github.com/cwbudde/pycc/internal/nativetype"
)

// zigType renders t as the target-language type-name text a binding,
// parameter, or struct field declares. Grounded on the teacher's
// typeFromAnnotation/type-rendering helpers in internal/bytecode
// (`types.go`), generalized from DWScript's closed type set to
// nativetype.Kind's lattice.
func zigType(t nativetype.NativeType) string {
	switch t.Kind {
	case nativetype.Unknown:
		return "anytype"
	case nativetype.Int:
		if t.IntKind == nativetype.IntUnbounded {
			return "BigInt"
		}
		return "i64"
	case nativetype.Float:
		return "f64"
	case nativetype.Bool:
		return "bool"
	case nativetype.None:
		return "void"
	case nativetype.String:
		return "[]const u8"
	case nativetype.Bytes:
		return "[]const u8"
	case nativetype.List, nativetype.Array:
		return fmt.Sprintf("std.ArrayList(%s)", zigType(elemOrUnknown(t.Elem)))
	case nativetype.Tuple:
		return tupleStructType(t.Elems)
	case nativetype.Set:
		return fmt.Sprintf("std.AutoHashMap(%s, void)", zigType(elemOrUnknown(t.Elem)))
	case nativetype.Dict:
		return dictType(t)
	case nativetype.Counter:
		return "Counter(i64)"
	case nativetype.Defaultdict:
		return fmt.Sprintf("Defaultdict(%s, %s)", zigType(elemOrUnknown(t.Key)), zigType(elemOrUnknown(t.Elem)))
	case nativetype.Deque:
		return fmt.Sprintf("Deque(%s)", zigType(elemOrUnknown(t.Elem)))
	case nativetype.ClassInstance:
		return t.ClassName
	case nativetype.Function:
		return "Callable"
	case nativetype.Closure:
		return t.ClosureID
	case nativetype.Callable:
		return "Callable"
	case nativetype.PyValue:
		return "pyvalue.Value"
	case nativetype.BigInt:
		return "BigInt"
	default:
		return "anytype"
	}
}

func elemOrUnknown(t *nativetype.NativeType) nativetype.NativeType {
	if t == nil {
		return nativetype.TUnknown
	}
	return *t
}

func dictType(t nativetype.NativeType) string {
	key := elemOrUnknown(t.Key)
	if key.Kind == nativetype.String {
		return fmt.Sprintf("std.StringHashMap(%s)", zigType(elemOrUnknown(t.Elem)))
	}
	return fmt.Sprintf("std.AutoHashMap(%s, %s)", zigType(key), zigType(elemOrUnknown(t.Elem)))
}

func tupleStructType(elems []nativetype.NativeType) string {
	var b strings.Builder
	b.WriteString("struct { ")
	for i, e := range elems {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "f%d: %s", i, zigType(e))
	}
	b.WriteString(" }")
	return b.String()
}

// needsExplicitAnnotation reports whether a `const`/`var` binding whose
// initializer is a small literal needs an explicit `: T` annotation to
// avoid the target's own literal-type inference mis-typing it — true only
// for big-integer-backed values (spec.md §4.E "Simple" assignment rule).
func needsExplicitAnnotation(t nativetype.NativeType) bool {
	return t.Kind == nativetype.BigInt || (t.Kind == nativetype.Int && t.IntKind == nativetype.IntUnbounded)
}

// omitsAnnotation reports the shapes spec.md §4.E says let the target
// infer the binding's type from its initializer instead of spelling it
// out: lists, tuples, closures, and counters.
func omitsAnnotation(t nativetype.NativeType) bool {
	switch t.Kind {
	case nativetype.List, nativetype.Tuple, nativetype.Closure, nativetype.Counter:
		return true
	default:
		return false
	}
}
