package inferrer

import (
	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/cwbudde/pycc/internal/scope"
	"github.com/cwbudde/pycc/internal/srcast"
)

// mutatingMethods names the container methods whose single argument's type
// widens the receiver's element type in place (spec.md §4.A: "an empty
// container literal takes its type from its first subsequent append").
var mutatingMethods = map[string]bool{
	"append": true, "add": true, "appendleft": true, "push": true,
}

func (inf *Inferrer) inferCall(s scope.ID, c *srcast.Call) nativetype.NativeType {
	argTypes := inf.inferExprSlice(s, c.Args)
	for _, kw := range c.Keywords {
		inf.inferExpr(s, kw.Value)
	}

	switch fn := c.Func.(type) {
	case *srcast.Name:
		if t, ok := builtinCallType(fn.Ident, c.Args, argTypes); ok {
			return t
		}
		if cls, ok := inf.classesByName[fn.Ident]; ok {
			if init := findMethod(cls, "__init__"); init != nil {
				inf.dispatchBoundCall(init, argTypes)
			}
			return nativetype.TClassInstance(cls.Name)
		}
		if target, ok := inf.funcsByName[fn.Ident]; ok {
			return inf.dispatchUserCall(target, argTypes)
		}
		return nativetype.TUnknown

	case *srcast.Attribute:
		return inf.inferMethodCall(s, fn, argTypes)
	}

	inf.inferExpr(s, c.Func)
	return nativetype.TUnknown
}

// dispatchUserCall widens fn's recorded per-position argument types with
// this call site's observed types and returns fn's current (possibly
// still-Unknown, refined on a later fixpoint pass) return type.
func (inf *Inferrer) dispatchUserCall(fn *srcast.FunctionDef, argTypes []nativetype.NativeType) nativetype.NativeType {
	inf.widenCallArgs(fn, argTypes, 0)
	return inf.result.FuncReturnTypes[fn]
}

// dispatchBoundCall is dispatchUserCall for a call site that omits the
// receiver argument (self.method(...), ClassName(...) dispatching to
// __init__): fn's own slot 0 belongs to self, so the observed argTypes
// widen starting at slot 1.
func (inf *Inferrer) dispatchBoundCall(fn *srcast.FunctionDef, argTypes []nativetype.NativeType) nativetype.NativeType {
	inf.widenCallArgs(fn, argTypes, 1)
	return inf.result.FuncReturnTypes[fn]
}

func (inf *Inferrer) widenCallArgs(fn *srcast.FunctionDef, argTypes []nativetype.NativeType, offset int) {
	slots := inf.result.FuncCallArgs[fn]
	for i, t := range argTypes {
		slot := i + offset
		if slot >= len(slots) {
			break
		}
		slots[slot] = nativetype.Widen(slots[slot], t)
	}
	inf.result.FuncCallArgs[fn] = slots
}

func (inf *Inferrer) inferMethodCall(s scope.ID, attr *srcast.Attribute, argTypes []nativetype.NativeType) nativetype.NativeType {
	recvName, recvIsName := attr.Value.(*srcast.Name)

	// self.method(...): dispatch to the class's own method table.
	if recvIsName && recvName.Ident == "self" && inf.currentClass != nil {
		if method := findMethod(inf.currentClass, attr.Attr); method != nil {
			return inf.dispatchBoundCall(method, argTypes)
		}
		return nativetype.TUnknown
	}

	// name.append(x) / name.add(x) / ...: widen the receiver's element type
	// and leave the binding re-declared with the widened container type.
	if recvIsName && mutatingMethods[attr.Attr] && len(argTypes) == 1 {
		if recvType, ok := inf.result.Scopes.Lookup(s, recvName.Ident); ok {
			widened := widenContainerElem(recvType, argTypes[0])
			inf.result.Scopes.Declare(s, recvName.Ident, widened)
		}
		return nativetype.TNone
	}

	// imported_module.function(...): resolve through the import registry.
	if recvIsName {
		if module, ok := inf.imports[recvName.Ident]; ok {
			if meta, ok := inf.lookupImport(module, attr.Attr); ok {
				return meta
			}
		}
	}

	recvType := inf.inferExpr(s, attr.Value)
	return builtinMethodCallType(recvType, attr.Attr, argTypes)
}

func findMethod(cls *srcast.ClassDef, name string) *srcast.FunctionDef {
	for _, m := range cls.Methods() {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// widenContainerElem widens a List/Set/Deque/Array's element type in
// place (functionally: returns a new NativeType of the same container
// kind with the widened element).
func widenContainerElem(container, added nativetype.NativeType) nativetype.NativeType {
	switch container.Kind {
	case nativetype.List:
		return nativetype.TList(nativetype.Widen(elemOf(container), added))
	case nativetype.Set:
		return nativetype.TSet(nativetype.Widen(elemOf(container), added))
	case nativetype.Deque:
		return nativetype.TDeque(nativetype.Widen(elemOf(container), added))
	case nativetype.Array:
		return nativetype.TList(nativetype.Widen(elemOf(container), added))
	default:
		return container
	}
}

// builtinCallType covers the common free-function builtins spec.md's
// emitter is expected to special-case (len, str conversions, sorted,
// container constructors, isinstance-family predicates). Anything not
// listed here falls through to ordinary user-function resolution.
func builtinCallType(name string, args []srcast.Expression, argTypes []nativetype.NativeType) (nativetype.NativeType, bool) {
	switch name {
	case "len":
		return nativetype.TInt(), true
	case "str", "repr", "format", "hex", "oct", "bin", "chr":
		return nativetype.TStringRuntime(), true
	case "int", "ord":
		return nativetype.TInt(), true
	case "float":
		return nativetype.TFloat, true
	case "bool", "isinstance", "issubclass", "callable", "hasattr":
		return nativetype.TBool, true
	case "print":
		return nativetype.TNone, true
	case "list":
		if len(argTypes) == 1 {
			return nativetype.TList(elemOf(argTypes[0])), true
		}
		return nativetype.TList(nativetype.TUnknown), true
	case "set":
		if len(argTypes) == 1 {
			return nativetype.TSet(elemOf(argTypes[0])), true
		}
		return nativetype.TSet(nativetype.TUnknown), true
	case "tuple":
		return nativetype.TTuple(argTypes...), true
	case "dict":
		return nativetype.TDict(nativetype.TStringRuntime(), nativetype.TPyValue), true
	case "sorted", "reversed":
		if len(argTypes) >= 1 {
			return nativetype.TList(elemOf(argTypes[0])), true
		}
		return nativetype.TList(nativetype.TUnknown), true
	case "range":
		// range() is only ever iterated in practice; modeled as a
		// list-of-int so elemOf() resolves for-loop targets correctly.
		return nativetype.TList(nativetype.TInt()), true
	case "enumerate":
		if len(argTypes) == 1 {
			return nativetype.TList(nativetype.TTuple(nativetype.TInt(), elemOf(argTypes[0]))), true
		}
		return nativetype.TUnknown, true
	case "zip":
		elems := make([]nativetype.NativeType, len(argTypes))
		for i, t := range argTypes {
			elems[i] = elemOf(t)
		}
		return nativetype.TList(nativetype.TTuple(elems...)), true
	case "abs", "round":
		if len(argTypes) >= 1 {
			return argTypes[0], true
		}
		return nativetype.TUnknown, true
	case "min", "max":
		return nativetype.WidenAll(argTypes), true
	case "sum":
		if len(argTypes) >= 1 {
			return elemOf(argTypes[0]), true
		}
		return nativetype.TInt(), true
	}
	return nativetype.TUnknown, false
}

// builtinMethodCallType covers the container/string method surface the
// emitter must lower to Zig stdlib or runtime-shim calls.
func builtinMethodCallType(recv nativetype.NativeType, method string, argTypes []nativetype.NativeType) nativetype.NativeType {
	switch recv.Kind {
	case nativetype.String:
		switch method {
		case "split":
			return nativetype.TList(nativetype.TStringRuntime())
		case "join":
			return nativetype.TStringRuntime()
		case "strip", "lstrip", "rstrip", "upper", "lower", "replace", "format", "capitalize", "title":
			return nativetype.TStringRuntime()
		case "startswith", "endswith", "isdigit", "isalpha", "isspace":
			return nativetype.TBool
		case "find", "index", "count":
			return nativetype.TInt()
		}
	case nativetype.List, nativetype.Array, nativetype.Deque:
		switch method {
		case "pop":
			return elemOf(recv)
		case "count", "index":
			return nativetype.TInt()
		case "copy":
			return recv
		case "sort", "reverse", "extend", "insert", "remove", "clear":
			return nativetype.TNone
		}
	case nativetype.Dict, nativetype.Defaultdict:
		switch method {
		case "get":
			if recv.Elem != nil {
				return *recv.Elem
			}
			return nativetype.TPyValue
		case "keys":
			if recv.Key != nil {
				return nativetype.TList(*recv.Key)
			}
		case "values":
			if recv.Elem != nil {
				return nativetype.TList(*recv.Elem)
			}
		case "items":
			key, val := nativetype.TPyValue, nativetype.TPyValue
			if recv.Key != nil {
				key = *recv.Key
			}
			if recv.Elem != nil {
				val = *recv.Elem
			}
			return nativetype.TList(nativetype.TTuple(key, val))
		case "pop", "setdefault":
			if recv.Elem != nil {
				return *recv.Elem
			}
		case "update", "clear":
			return nativetype.TNone
		}
	case nativetype.Set:
		switch method {
		case "union", "intersection", "difference", "copy":
			return recv
		case "pop":
			return elemOf(recv)
		case "add", "remove", "discard", "clear", "update":
			return nativetype.TNone
		}
	}
	return nativetype.TUnknown
}
