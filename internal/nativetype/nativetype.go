// Package nativetype defines NativeType, the tagged union of static shapes
// the backend can infer for a source-language expression, variable, return
// value, or container element, and the widening lattice used to unify
// types observed at more than one program point.
package nativetype

import "fmt"

// Kind tags the variant carried by a NativeType.
type Kind int

const (
	Unknown Kind = iota
	Int
	Float
	Bool
	None
	String
	Bytes
	List
	Array
	Tuple
	Set
	Dict
	Counter
	Defaultdict
	Deque
	ClassInstance
	Function
	Closure
	Callable
	PyValue
	BigInt
)

// IntKind distinguishes a machine-width integer from one that must be
// stored as an arbitrary-precision value.
type IntKind int

const (
	IntBounded IntKind = iota
	IntUnbounded
)

// StringKind distinguishes a compile-time-known string literal from one
// whose contents are only known at runtime.
type StringKind int

const (
	StringRuntime StringKind = iota
	StringLiteral
)

// NativeType is an immutable value describing the inferred static shape of
// a source-language value. Zero value is Unknown.
type NativeType struct {
	Kind Kind

	IntKind    IntKind
	StringKind StringKind

	// Elem is the element type for List, Array, Set, Deque, Closure-free
	// container shapes, and the value type for Counter/Defaultdict.
	Elem *NativeType
	// Key is the key type for Dict/Defaultdict.
	Key *NativeType
	// Tuple elements, positional.
	Elems []NativeType
	// ArrayLen is the fixed length for Array, or -1 when unbounded (a
	// growable slice rather than a fixed-size array).
	ArrayLen int

	// ClassName names the class for ClassInstance.
	ClassName string
	// ClosureID is a stable synthetic identifier for a Closure's generated
	// struct type.
	ClosureID string
	// Sig, when Kind == Function, is a human-readable signature summary
	// used only for diagnostics; actual signatures live in internal/siggen.
	Sig string
}

func Prim(k Kind) NativeType { return NativeType{Kind: k} }

var (
	TUnknown = NativeType{Kind: Unknown}
	TBool    = NativeType{Kind: Bool}
	TFloat   = NativeType{Kind: Float}
	TNone    = NativeType{Kind: None}
	TBytes   = NativeType{Kind: Bytes}
	TPyValue = NativeType{Kind: PyValue}
	TBigInt  = NativeType{Kind: BigInt}
	TCounter = NativeType{Kind: Counter}
)

// TInt returns the canonical bounded-integer type.
func TInt() NativeType { return NativeType{Kind: Int, IntKind: IntBounded} }

// TIntUnbounded returns the big-integer-backed integer type.
func TIntUnbounded() NativeType { return NativeType{Kind: Int, IntKind: IntUnbounded} }

// TStringLiteral/TStringRuntime construct the two string variants.
func TStringLiteral() NativeType { return NativeType{Kind: String, StringKind: StringLiteral} }
func TStringRuntime() NativeType { return NativeType{Kind: String, StringKind: StringRuntime} }

func TList(elem NativeType) NativeType { return NativeType{Kind: List, Elem: &elem} }
func TArray(elem NativeType, n int) NativeType {
	return NativeType{Kind: Array, Elem: &elem, ArrayLen: n}
}
func TSet(elem NativeType) NativeType       { return NativeType{Kind: Set, Elem: &elem} }
func TDeque(elem NativeType) NativeType     { return NativeType{Kind: Deque, Elem: &elem} }
func TTuple(elems ...NativeType) NativeType { return NativeType{Kind: Tuple, Elems: elems} }
func TDict(key, val NativeType) NativeType {
	return NativeType{Kind: Dict, Key: &key, Elem: &val}
}
func TDefaultdict(key, val NativeType) NativeType {
	return NativeType{Kind: Defaultdict, Key: &key, Elem: &val}
}
func TClassInstance(name string) NativeType { return NativeType{Kind: ClassInstance, ClassName: name} }
func TClosure(id string) NativeType         { return NativeType{Kind: Closure, ClosureID: id} }
func TFunction(sig string) NativeType       { return NativeType{Kind: Function, Sig: sig} }
func TCallable() NativeType                 { return NativeType{Kind: Callable} }

// IsUnknown reports whether t carries no information yet.
func (t NativeType) IsUnknown() bool { return t.Kind == Unknown }

// Equal reports structural equality, the precision Widen relies on to
// detect "no change" during fixpoint iteration.
func (t NativeType) Equal(o NativeType) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case Int:
		return t.IntKind == o.IntKind
	case String:
		return t.StringKind == o.StringKind
	case List, Array, Set, Deque:
		if t.Kind == Array && t.ArrayLen != o.ArrayLen {
			return false
		}
		return elemEqual(t.Elem, o.Elem)
	case Dict, Counter, Defaultdict:
		return elemEqual(t.Key, o.Key) && elemEqual(t.Elem, o.Elem)
	case Tuple:
		if len(t.Elems) != len(o.Elems) {
			return false
		}
		for i := range t.Elems {
			if !t.Elems[i].Equal(o.Elems[i]) {
				return false
			}
		}
		return true
	case ClassInstance:
		return t.ClassName == o.ClassName
	case Closure:
		return t.ClosureID == o.ClosureID
	default:
		return true
	}
}

func elemEqual(a, b *NativeType) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (t NativeType) String() string {
	switch t.Kind {
	case Unknown:
		return "unknown"
	case Int:
		if t.IntKind == IntUnbounded {
			return "int(unbounded)"
		}
		return "int(bounded)"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case None:
		return "none"
	case String:
		if t.StringKind == StringLiteral {
			return "string(literal)"
		}
		return "string(runtime)"
	case Bytes:
		return "bytes"
	case List:
		return fmt.Sprintf("list(%s)", elemString(t.Elem))
	case Array:
		return fmt.Sprintf("array(%s,%d)", elemString(t.Elem), t.ArrayLen)
	case Tuple:
		return fmt.Sprintf("tuple(%d elems)", len(t.Elems))
	case Set:
		return fmt.Sprintf("set(%s)", elemString(t.Elem))
	case Dict:
		return fmt.Sprintf("dict(%s,%s)", elemString(t.Key), elemString(t.Elem))
	case Counter:
		return "counter"
	case Defaultdict:
		return fmt.Sprintf("defaultdict(%s,%s)", elemString(t.Key), elemString(t.Elem))
	case Deque:
		return fmt.Sprintf("deque(%s)", elemString(t.Elem))
	case ClassInstance:
		return "class_instance(" + t.ClassName + ")"
	case Function:
		return "function(" + t.Sig + ")"
	case Closure:
		return "closure(" + t.ClosureID + ")"
	case Callable:
		return "callable"
	case PyValue:
		return "pyvalue"
	case BigInt:
		return "bigint"
	default:
		return "?"
	}
}

func elemString(t *NativeType) string {
	if t == nil {
		return "?"
	}
	return t.String()
}
