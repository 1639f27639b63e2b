package runtimejson

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/pycc/internal/srcast"
)

// FoldLoadsCall recognizes a compile-time-foldable `json.loads(<string
// literal>)` call and returns the parsed Value. The Statement/Expression
// Emitter calls this before falling back to emitting a runtime pyvalue
// parse call; on success it can skip the runtime call entirely and emit a
// literal pyvalue construction instead (spec.md §8.6).
func FoldLoadsCall(call *srcast.Call) (*Value, bool) {
	if !isDottedCall(call, "json", "loads") {
		return nil, false
	}
	if len(call.Args) != 1 {
		return nil, false
	}
	lit, ok := call.Args[0].(*srcast.StringLit)
	if !ok {
		return nil, false
	}
	v, err := Parse([]byte(lit.Value))
	if err != nil {
		return nil, false
	}
	return v, true
}

// FoldDumpsCall recognizes `json.dumps(<expr>)` where expr folds (directly
// or through a nested FoldLoadsCall) to a known Value, and returns the
// rendered JSON text it would print.
func FoldDumpsCall(call *srcast.Call, argValue func(srcast.Expression) (*Value, bool)) (string, bool) {
	if !isDottedCall(call, "json", "dumps") || len(call.Args) != 1 {
		return "", false
	}
	v, ok := argValue(call.Args[0])
	if !ok {
		return "", false
	}
	text, err := Marshal(v)
	if err != nil {
		return "", false
	}
	return string(text), true
}

func isDottedCall(call *srcast.Call, module, fn string) bool {
	attr, ok := call.Func.(*srcast.Attribute)
	if !ok || attr.Attr != fn {
		return false
	}
	name, ok := attr.Value.(*srcast.Name)
	return ok && name.Ident == module
}

// ZigLiteral renders v as a pyvalue-construction Zig expression, the form
// the emitter splices in when a json round-trip (or any PyValue-typed
// literal) folds to a known Value at compile time. It calls into the
// bundled `pyvalue` runtime module's constructors rather than synthesizing
// a parser call, mirroring how the teacher's jsonvalue.Value is consumed
// by hand-written, not generated, call sites.
func ZigLiteral(v *Value) string {
	var b strings.Builder
	writeZigLiteral(&b, v)
	return b.String()
}

func writeZigLiteral(b *strings.Builder, v *Value) {
	switch v.Kind() {
	case KindNull:
		b.WriteString("pyvalue.null()")
	case KindBool:
		fmt.Fprintf(b, "pyvalue.fromBool(%s)", strconv.FormatBool(v.BoolValue()))
	case KindInt:
		fmt.Fprintf(b, "pyvalue.fromInt(%d)", v.IntValue())
	case KindFloat:
		fmt.Fprintf(b, "pyvalue.fromFloat(%s)", strconv.FormatFloat(v.FloatValue(), 'g', -1, 64))
	case KindString:
		fmt.Fprintf(b, "pyvalue.fromString(%q)", v.StringValue())
	case KindArray:
		b.WriteString("pyvalue.newArray(&.{")
		for i, elem := range v.ArrayElements() {
			if i > 0 {
				b.WriteString(", ")
			}
			writeZigLiteral(b, elem)
		}
		b.WriteString("})")
	case KindObject:
		b.WriteString("pyvalue.newObject(&.{")
		for i, key := range v.ObjectKeys() {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, ".{%q, ", key)
			writeZigLiteral(b, v.ObjectGet(key))
			b.WriteString("}")
		}
		b.WriteString("})")
	default:
		b.WriteString("pyvalue.null()")
	}
}
