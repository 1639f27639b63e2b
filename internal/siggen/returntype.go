package siggen

import (
	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/cwbudde/pycc/internal/srcast"
)

// magicReturns fixes the return type for Python dunder methods whose Zig
// counterpart has a contractually fixed shape regardless of what the
// method body infers (spec.md §4.D return-type priority list, rule 1).
var magicReturns = map[string]nativetype.NativeType{
	"__str__":      nativetype.TStringRuntime(),
	"__repr__":     nativetype.TStringRuntime(),
	"__len__":      nativetype.TInt(),
	"__bool__":     nativetype.TBool,
	"__eq__":       nativetype.TBool,
	"__ne__":       nativetype.TBool,
	"__lt__":       nativetype.TBool,
	"__le__":       nativetype.TBool,
	"__gt__":       nativetype.TBool,
	"__ge__":       nativetype.TBool,
	"__hash__":     nativetype.TInt(),
	"__contains__": nativetype.TBool,
}

func magicReturn(name string) *nativetype.NativeType {
	if t, ok := magicReturns[name]; ok {
		return &t
	}
	return nil
}

// ResolveReturnType applies spec.md §4.D's return-type priority list:
//  1. a fixed magic-method return type
//  2. an explicit `-> T` annotation
//  3. the method returns `self`
//  4. the function returns a nested function (a closure)
//  5. the function returns `ClassName(...)`: its own class's constructor,
//     or any callee whose name looks like a class name (capitalized)
//  6. the Type Inferrer's inferred return type
//  7. fallback: int
func ResolveReturnType(fn *srcast.FunctionDef, class *srcast.ClassDef, inferred nativetype.NativeType) nativetype.NativeType {
	if t := magicReturn(fn.Name); t != nil {
		return *t
	}
	if hint, ok := annotationHint(fn.Returns); ok {
		return hint
	}
	if class != nil && returnsSelf(fn.Body) {
		return nativetype.TClassInstance(class.Name)
	}
	if name, ok := returnsNestedFunction(fn.Body); ok {
		return nativetype.TClosure(name)
	}
	if className, ok := returnsOwnConstructor(fn.Body, class); ok {
		return nativetype.TClassInstance(className)
	}
	if !inferred.IsUnknown() {
		return inferred
	}
	return nativetype.TInt()
}

func returnsSelf(body []srcast.Statement) bool {
	found := false
	for _, stmt := range body {
		srcast.InspectShallow(stmt, func(n srcast.Node) bool {
			r, ok := n.(*srcast.Return)
			if !ok || r.Value == nil {
				return true
			}
			if name, ok := r.Value.(*srcast.Name); ok && name.Ident == "self" {
				found = true
			}
			return true
		})
	}
	return found
}

// returnsNestedFunction reports whether any return statement in body
// returns a Name bound to a function defined directly in the same body
// (the closure-factory pattern), and which name the last such return
// yields. Other value-returning statements do not affect the result.
func returnsNestedFunction(body []srcast.Statement) (string, bool) {
	nested := make(map[string]bool)
	for _, stmt := range body {
		if def, ok := stmt.(*srcast.FunctionDef); ok {
			nested[def.Name] = true
		}
	}
	result := ""
	found := false
	for _, stmt := range body {
		srcast.InspectShallow(stmt, func(n srcast.Node) bool {
			r, ok := n.(*srcast.Return)
			if !ok || r.Value == nil {
				return true
			}
			if name, ok := r.Value.(*srcast.Name); ok && nested[name.Ident] {
				result = name.Ident
				found = true
			}
			return true
		})
	}
	return result, found
}

func returnsOwnConstructor(body []srcast.Statement, class *srcast.ClassDef) (string, bool) {
	result := ""
	found := false
	for _, stmt := range body {
		srcast.InspectShallow(stmt, func(n srcast.Node) bool {
			r, ok := n.(*srcast.Return)
			if !ok || r.Value == nil {
				return true
			}
			call, ok := r.Value.(*srcast.Call)
			if !ok {
				return true
			}
			name, ok := call.Func.(*srcast.Name)
			if !ok {
				return true
			}
			if class != nil && name.Ident == class.Name {
				result, found = name.Ident, true
				return true
			}
			// A factory function returning some other class's
			// constructor is still a class-instance type, even when it
			// is not a method of that class.
			if looksLikeClassName(name.Ident) {
				result, found = name.Ident, true
			}
			return true
		})
	}
	return result, found
}

func looksLikeClassName(s string) bool {
	return len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z'
}
