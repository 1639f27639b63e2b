package emitter

import (
	"fmt"
	"strings"

	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/cwbudde/pycc/internal/srcast"
)

// builtinMethods lists the runtime-dispatch-table method names recognized
// directly on a builtin-typed receiver (str/list/dict/set methods),
// rendered as a plain Zig method call on the receiver's runtime helper
// type rather than through emitCallable's general attribute-call path.
var builtinMethods = map[string]bool{
	"append": true, "pop": true, "get": true, "keys": true, "values": true,
	"items": true, "join": true, "split": true, "upper": true, "lower": true,
	"strip": true, "format": true, "sort": true, "reverse": true, "add": true,
	"remove": true, "update": true, "count": true, "index": true,
}

// namedBuiltins are global functions with a dedicated runtime helper
// instead of a general call (spec.md §4.E callable dispatch, case
// "named builtin").
var namedBuiltins = map[string]string{
	"int": "pyvalue.toInt", "float": "pyvalue.toFloat", "bool": "pyvalue.toBool",
	"next": "iterNext", "round": "pyRound", "format": "pyFormat",
	"len": "pyLen", "abs": "pyAbs", "print": "pyPrint", "str": "pyStr",
	"repr": "pyRepr", "sorted": "pySorted", "reversed": "pyReversed",
	"enumerate": "pyEnumerate", "range": "pyRange", "zip": "pyZip",
	"isinstance": "pyIsInstance",
}

// emitCallable renders call by the shape of its callee. An Attribute callee
// (module attribute, self method, builtin-type method, or an attribute on
// a call result) is rendered by emitAttributeCall as a direct dotted call;
// a Name callee is rendered by emitNameCall as a named builtin, a
// known-callable variable's `.call`, a class constructor, or a plain call;
// any other callee (a lambda, or a call result called directly) is bound
// in a labeled block and invoked through `.call`. Shared by renderCall and
// assertion emission; decorators are not applied through it.
func (s *State) emitCallable(call *srcast.Call) string {
	args := make([]string, len(call.Args))
	for i, a := range call.Args {
		args[i] = s.renderExpr(a)
	}
	argsText := strings.Join(args, ", ")

	switch fn := call.Func.(type) {
	case *srcast.Attribute:
		return s.emitAttributeCall(fn, args, argsText)
	case *srcast.Name:
		return s.emitNameCall(fn, argsText)
	default:
		// A lambda or any other callee that is neither a Name nor an
		// Attribute: bind it to a labeled block, then invoke the result.
		tmp := s.nextTemp()
		return fmt.Sprintf("blk: { const %s = %s; break :blk %s.call(.{%s}); }", tmp, s.renderExpr(call.Func), tmp, argsText)
	}
}

func (s *State) emitAttributeCall(fn *srcast.Attribute, args []string, argsText string) string {
	recvType := s.typeOf(fn.Value)

	if name, ok := fn.Value.(*srcast.Name); ok && name.Ident == "self" {
		return fmt.Sprintf("self.%s(%s)", fn.Attr, argsText)
	}

	if recvType.Kind == nativetype.ClassInstance {
		return fmt.Sprintf("%s.%s(%s)", s.renderExpr(fn.Value), fn.Attr, argsText)
	}

	if builtinMethods[fn.Attr] {
		return fmt.Sprintf("%s.%s(%s)", s.renderExpr(fn.Value), fn.Attr, argsText)
	}

	// Module-attribute call: resolved through the import registry at the
	// codegen layer; the emitter only needs the dotted call text, since
	// import aliasing was already folded into fn.Value's rendered name.
	return fmt.Sprintf("%s.%s(%s)", s.renderExpr(fn.Value), fn.Attr, argsText)
}

func (s *State) emitNameCall(fn *srcast.Name, argsText string) string {
	if helper, ok := namedBuiltins[fn.Ident]; ok {
		return fmt.Sprintf("%s(%s)", helper, argsText)
	}

	t := s.typeOf(fn)
	if t.Kind == nativetype.Closure || t.Kind == nativetype.Callable {
		return fmt.Sprintf("%s.call(.{%s})", s.nameRef(fn.Ident), argsText)
	}

	if s.classes != nil {
		if _, ok := s.classes.Lookup(fn.Ident); ok {
			return fmt.Sprintf("%s.init(allocator, %s)", fn.Ident, argsText)
		}
	}

	return fmt.Sprintf("%s(%s)", s.nameRef(fn.Ident), argsText)
}
