package emitter

import (
	"fmt"

	cerrors "github.com/cwbudde/pycc/internal/errors"
	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/cwbudde/pycc/internal/srcast"
)

// emitAttributeAssign renders `target.Attr = value`, branching
// static-field (a class-level variable, updated through its module-scope
// storage slot) vs instance-field (an ordinary struct member) per
// spec.md §4.E.
func (s *State) emitAttributeAssign(target *srcast.Attribute, value srcast.Expression) error {
	if dest, ok := s.staticFieldRef(target); ok {
		s.line("%s = %s;", dest, s.renderExpr(value))
		return nil
	}
	if s.isDynamicAttribute(target) {
		s.line("%s.setAttr(%q, %s) catch unreachable;", s.renderExpr(target.Value), target.Attr, s.renderExpr(value))
		return nil
	}
	s.line("%s.%s = %s;", s.renderExpr(target.Value), target.Attr, s.renderExpr(value))
	return nil
}

// staticFieldRef reports the module-scope storage slot for a
// `self.attr`/`ClassName.attr` reference when attr is a class-level
// (shared) field, per classreg.ClassInfo.StaticFieldNames.
func (s *State) staticFieldRef(target *srcast.Attribute) (string, bool) {
	if s.currentClass == nil || s.classes == nil {
		return "", false
	}
	ci, ok := s.classes.Lookup(s.currentClass.Name)
	if !ok || !ci.StaticFieldNames[target.Attr] {
		return "", false
	}
	if name, ok := target.Value.(*srcast.Name); ok && (name.Ident == "self" || name.Ident == s.currentClass.Name) {
		return fmt.Sprintf("%s_%s", s.currentClass.Name, target.Attr), true
	}
	return "", false
}

// isDynamicAttribute reports whether target.Attr was never registered as
// a known field on the receiver's class (a `self.x = v` the Class
// Registry never saw at construction time, or an attribute set on a
// PyValue-typed instance) and must go through the runtime instance-dict
// fallback instead of a struct member access.
func (s *State) isDynamicAttribute(target *srcast.Attribute) bool {
	recvType := s.typeOf(target.Value)
	if recvType.Kind != nativetype.ClassInstance || s.classes == nil {
		return false
	}
	ci, ok := s.classes.Lookup(recvType.ClassName)
	if !ok {
		return true
	}
	_, known := ci.Fields[target.Attr]
	return !known
}

func (s *State) emitSubscriptAssign(target *srcast.Subscript, value srcast.Expression) error {
	if _, ok := target.Index.(*srcast.Slice); ok {
		return cerrors.New(cerrors.UnsupportedConstruct, target.Pos(), "<module>", "slice assignment is not supported outside of slice-augmented forms")
	}
	valType := s.typeOf(target.Value)
	switch valType.Kind {
	case nativetype.Dict:
		s.line("%s.put(%s, %s) catch unreachable;", s.renderExpr(target.Value), s.renderExpr(target.Index), s.renderExpr(value))
	case nativetype.List, nativetype.Array:
		s.line("%s.items[@intCast(%s)] = %s;", s.renderExpr(target.Value), s.renderExpr(target.Index), s.renderExpr(value))
	default:
		s.line("%s = %s;", s.renderSubscript(target), s.renderExpr(value))
	}
	return nil
}

// augOpKind classifies how an augmented-assignment operator is rendered.
type augOpKind int

const (
	augDirect augOpKind = iota
	augHelper
	augDunder
)

func classifyAugOp(op string) (augOpKind, string) {
	switch op {
	case "//":
		return augHelper, "floorDiv"
	case "**":
		return augHelper, "powInt"
	case "%":
		return augHelper, "pyMod"
	case "/":
		return augHelper, "trueDiv"
	default:
		return augDirect, op
	}
}

func dunderForAugOp(op string) (string, bool) {
	table := map[string]string{
		"+=": "__iadd__", "-=": "__isub__", "*=": "__imul__", "/=": "__itruediv__",
		"//=": "__ifloordiv__", "%=": "__imod__", "**=": "__ipow__",
		"&=": "__iand__", "|=": "__ior__", "^=": "__ixor__",
	}
	m, ok := table[op]
	return m, ok
}

func dunderFallbackForAugOp(op string) (string, bool) {
	base := op
	if len(base) > 0 && base[len(base)-1] == '=' {
		base = base[:len(base)-1]
	}
	return dunderForBinOp(base)
}

// emitAugAssign renders `target Op= value`, dispatching on target kind
// per spec.md §4.E: self.attr class-instance-dunder, then static-field
// slot, otherwise a direct member update (no dynamic instance-dict path is
// taken for an augmented attribute target);
// subscript dict-vs-array-vs-slice (only `*=`/`+=` valid on a slice);
// bare name direct-op-vs-helper-vs-dunder.
func (s *State) emitAugAssign(a *srcast.AugAssign) error {
	switch t := a.Target.(type) {
	case *srcast.Attribute:
		return s.emitAugAttribute(t, a.Op, a.Value)
	case *srcast.Subscript:
		return s.emitAugSubscript(t, a.Op, a.Value)
	case *srcast.Name:
		return s.emitAugName(t, a.Op, a.Value)
	default:
		return cerrors.New(cerrors.UnsupportedConstruct, a.Pos(), "<module>", "unsupported augmented-assignment target %T", a.Target)
	}
}

func (s *State) emitAugAttribute(target *srcast.Attribute, op string, value srcast.Expression) error {
	fieldType := s.typeOf(target)
	rhs := s.renderExpr(value)

	if fieldType.Kind == nativetype.ClassInstance {
		recv := s.renderExpr(target)
		if method, ok := dunderForAugOp(op); ok {
			s.line("%s = %s.%s(%s);", recv, recv, method, rhs)
			return nil
		}
		if method, ok := dunderFallbackForAugOp(op); ok {
			s.line("%s = %s.%s(%s);", recv, recv, method, rhs)
			return nil
		}
	}

	if dest, ok := s.staticFieldRef(target); ok {
		s.line("%s = %s;", dest, s.renderAugExpr(op, dest, rhs))
		return nil
	}

	recv := s.renderExpr(target)
	s.line("%s = %s;", recv, s.renderAugExpr(op, recv, rhs))
	return nil
}

func (s *State) emitAugSubscript(target *srcast.Subscript, op string, value srcast.Expression) error {
	rhs := s.renderExpr(value)

	if _, ok := target.Index.(*srcast.Slice); ok {
		if op != "+=" && op != "*=" {
			return cerrors.New(cerrors.UnsupportedConstruct, target.Pos(), "<module>", "slice-augmented assignment only supports += and *=, got %s", op)
		}
		s.line("%s = sliceAug(%s, %q, %s, allocator);", s.renderSubscript(target), s.renderSubscript(target), op, rhs)
		return nil
	}

	valType := s.typeOf(target.Value)
	switch valType.Kind {
	case nativetype.Dict:
		container := s.renderExpr(target.Value)
		key := s.renderExpr(target.Index)
		cur := fmt.Sprintf("%s.get(%s).?", container, key)
		s.line("%s.put(%s, %s) catch unreachable;", container, key, s.renderAugExpr(op, cur, rhs))
	case nativetype.List, nativetype.Array:
		idx := fmt.Sprintf("@intCast(%s)", s.renderExpr(target.Index))
		slot := fmt.Sprintf("%s.items[%s]", s.renderExpr(target.Value), idx)
		s.line("%s = %s;", slot, s.renderAugExpr(op, slot, rhs))
	default:
		slot := s.renderSubscript(target)
		s.line("%s = %s;", slot, s.renderAugExpr(op, slot, rhs))
	}
	return nil
}

func (s *State) emitAugName(target *srcast.Name, op string, value srcast.Expression) error {
	t := s.typeOf(target)
	name := s.nameRef(target.Ident)
	rhs := s.renderExpr(value)

	if t.Kind == nativetype.ClassInstance {
		if method, ok := dunderForAugOp(op); ok {
			s.line("%s = %s.%s(%s);", name, name, method, rhs)
			return nil
		}
		if method, ok := dunderFallbackForAugOp(op); ok {
			s.line("%s = %s.%s(%s);", name, name, method, rhs)
			return nil
		}
	}

	s.line("%s = %s;", name, s.renderAugExpr(op, name, rhs))
	return nil
}

// renderAugExpr renders `cur Op rhs` for the direct and helper-dispatch
// cases shared by every augmented-assignment target kind.
func (s *State) renderAugExpr(op, cur, rhs string) string {
	bareOp := op
	if len(bareOp) > 0 && bareOp[len(bareOp)-1] == '=' {
		bareOp = bareOp[:len(bareOp)-1]
	}
	kind, text := classifyAugOp(bareOp)
	switch kind {
	case augHelper:
		return fmt.Sprintf("%s(%s, %s)", text, cur, rhs)
	case augDunder:
		return fmt.Sprintf("%s.%s(%s)", cur, text, rhs)
	default:
		switch bareOp {
		case "<<":
			return fmt.Sprintf("%s << @as(u6, @intCast(%s))", cur, rhs)
		case ">>":
			return fmt.Sprintf("%s >> @as(u6, @intCast(%s))", cur, rhs)
		default:
			return fmt.Sprintf("(%s %s %s)", cur, bareOp, rhs)
		}
	}
}
