package emitter

import (
	"fmt"

	cerrors "github.com/cwbudde/pycc/internal/errors"
	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/cwbudde/pycc/internal/scope"
	"github.com/cwbudde/pycc/internal/srcast"
	"github.com/cwbudde/pycc/internal/usage"
)

// currentScope returns the scope id of the function the emitter is
// currently inside, or the module scope at top level. Because scope.ID
// is a pure function of the introducing AST node's identity (see
// internal/scope's package doc), this always agrees with whatever scope
// id internal/usage used to classify the same name, with no need to
// replicate usage's own scope-nesting walk.
func (s *State) currentScope() scope.ID {
	if s.currentFunc != nil {
		return scope.Of(s.currentFunc)
	}
	return scope.Module
}

func (s *State) usageInfo(name string) *usage.Info {
	if s.usageRes == nil {
		return nil
	}
	return s.usageRes.Info[usage.Key{Scope: s.currentScope(), Name: name}]
}

// isMutated reports whether name is written more than once within its
// own declaring scope (spec.md §4.E's is_mutated test).
func (s *State) isMutated(name string) bool {
	info := s.usageInfo(name)
	return info != nil && info.Mutated
}

func (s *State) usedAsIterator(name string) bool {
	info := s.usageInfo(name)
	return info != nil && info.UsedAsIterator
}

func (s *State) isUnused(name string) bool {
	info := s.usageInfo(name)
	return info == nil || !info.UsedDirectly
}

// isGrowable reports the container shapes spec.md §4.E's
// "is_arraylist" test covers: anything backed by a runtime-growable Zig
// container, which always needs `var` regardless of mutation traits.
func isGrowable(t nativetype.NativeType) bool {
	switch t.Kind {
	case nativetype.List, nativetype.Set, nativetype.Dict, nativetype.Counter, nativetype.Defaultdict, nativetype.Deque:
		return true
	default:
		return false
	}
}

// bindingAnnotation decides whether a `const`/`var` binding needs an
// explicit `: T` and what text to use, per spec.md §4.E: big-integer
// types always need it spelled out; lists/tuples/closures/counters let
// the target infer it from the initializer; everything else is
// annotated for clarity.
func bindingAnnotation(t nativetype.NativeType) (bool, string) {
	if t.Kind == nativetype.Unknown {
		return false, ""
	}
	if omitsAnnotation(t) && !needsExplicitAnnotation(t) {
		return false, ""
	}
	return true, zigType(t)
}

// targetName resolves a local binding's Zig identifier, scoped to the
// enclosing function (or the module/main scope at top level) so that a
// local reusing a module-level function's name is checked against that
// reservation fresh in its own scope, instead of reusing whatever target
// some unrelated scope already cached for the same spelling.
func (s *State) targetName(name string) string {
	return s.renames.ResolveLocal(s.currentScope(), name, name+"_")
}

// emitBinding writes one `const`/`var name[: T] = value;` line, applying
// the mutable/growable escalation rule uniformly for simple assignment,
// unpack targets, and for-loop targets alike.
func (s *State) emitBinding(sourceName string, t nativetype.NativeType, valueText string) {
	kw := "const"
	if s.isMutated(sourceName) || s.usedAsIterator(sourceName) || isGrowable(t) {
		kw = "var"
	}
	target := s.targetName(sourceName)
	if include, text := bindingAnnotation(t); include {
		s.line("%s %s: %s = %s;", kw, target, text, valueText)
	} else {
		s.line("%s %s = %s;", kw, target, valueText)
	}
}

func (s *State) emitAssign(a *srcast.Assign) error {
	if len(a.Targets) > 1 {
		return s.emitChainedAssign(a)
	}
	return s.emitAssignTarget(a.Targets[0], a.Value)
}

func (s *State) emitAssignTarget(target srcast.Expression, value srcast.Expression) error {
	switch t := target.(type) {
	case *srcast.TupleLit:
		return s.emitUnpackAssign(t.Elems, value)
	case *srcast.ListLit:
		return s.emitUnpackAssign(t.Elems, value)
	case *srcast.Name:
		s.emitBinding(t.Ident, s.typeOf(value), s.renderExpr(value))
		return nil
	case *srcast.Attribute:
		return s.emitAttributeAssign(t, value)
	case *srcast.Subscript:
		return s.emitSubscriptAssign(t, value)
	default:
		return cerrors.New(cerrors.UnsupportedConstruct, target.Pos(), "<module>", "unsupported assignment target %T", target)
	}
}

// emitChainedAssign lowers `a = b = value` by binding the RHS once to a
// temp and assigning each target from it, so the value expression (which
// may itself allocate) is only evaluated once.
func (s *State) emitChainedAssign(a *srcast.Assign) error {
	tmp := s.nextTemp()
	valType := s.typeOf(a.Value)
	if include, text := bindingAnnotation(valType); include {
		s.line("const %s: %s = %s;", tmp, text, s.renderExpr(a.Value))
	} else {
		s.line("const %s = %s;", tmp, s.renderExpr(a.Value))
	}
	for _, target := range a.Targets {
		if err := s.emitAssignFromRendered(target, valType, tmp); err != nil {
			return err
		}
	}
	return nil
}

// emitAssignFromRendered assigns a target from an already-rendered value
// expression text (used by emitChainedAssign and emitUnpackAssign, where
// the RHS is a temp reference rather than a fresh srcast.Expression).
func (s *State) emitAssignFromRendered(target srcast.Expression, t nativetype.NativeType, valueText string) error {
	switch tg := target.(type) {
	case *srcast.Name:
		s.emitBinding(tg.Ident, t, valueText)
		return nil
	case *srcast.Attribute:
		s.line("%s.%s = %s;", s.renderExpr(tg.Value), tg.Attr, valueText)
		return nil
	case *srcast.Subscript:
		s.line("%s = %s;", s.renderSubscript(tg), valueText)
		return nil
	default:
		return cerrors.New(cerrors.UnsupportedConstruct, target.Pos(), "<module>", "unsupported chained assignment target %T", target)
	}
}

// emitUnpackAssign lowers `a, b = rhs` / `[a, b] = rhs`: the RHS is
// evaluated once into a temp, then each target reads its slot — `.items[i]`
// for a list-shaped RHS, `.f<i>` positional field access for a
// tuple-shaped one — discarding via `_ = tmp.member;` when a target is
// `_` or is declared but never read (spec.md §4.E "Tuple/list unpack").
func (s *State) emitUnpackAssign(targets []srcast.Expression, value srcast.Expression) error {
	rhsType := s.typeOf(value)
	tmp := s.nextTemp()
	if include, text := bindingAnnotation(rhsType); include {
		s.line("const %s: %s = %s;", tmp, text, s.renderExpr(value))
	} else {
		s.line("const %s = %s;", tmp, s.renderExpr(value))
	}

	listShaped := rhsType.Kind == nativetype.List || rhsType.Kind == nativetype.Array

	for i, target := range targets {
		var member string
		var elemType nativetype.NativeType
		if listShaped {
			member = fmt.Sprintf("%s.items[%d]", tmp, i)
			elemType = elemOrUnknown(rhsType.Elem)
		} else {
			member = fmt.Sprintf("%s.f%d", tmp, i)
			if i < len(rhsType.Elems) {
				elemType = rhsType.Elems[i]
			}
		}

		name, isName := target.(*srcast.Name)
		if target == nil {
			continue
		}
		if isName && (name.Ident == "_" || s.isUnused(name.Ident)) {
			s.line("_ = %s;", member)
			continue
		}
		if err := s.emitAssignFromRendered(target, elemType, member); err != nil {
			return err
		}
	}
	return nil
}

func (s *State) emitAnnAssign(a *srcast.AnnAssign) error {
	if a.Value == nil {
		// Bare `name: Annotation` declares without binding; Zig has no
		// uninitialized-`const`, so this becomes `var name: T = undefined;`.
		if name, ok := a.Target.(*srcast.Name); ok {
			t := s.typeOf(a.Target)
			s.line("var %s: %s = undefined;", s.targetName(name.Ident), zigType(t))
			return nil
		}
		return nil
	}
	return s.emitAssignTarget(a.Target, a.Value)
}
