package emitter

import (
	"sort"

	cerrors "github.com/cwbudde/pycc/internal/errors"
	"github.com/cwbudde/pycc/internal/srcast"
)

// emitClass renders cls as a Zig struct: fields, then hidden capture
// fields (if cls is nested and the Class Registry planned captures for
// it), then methods. Inherited methods are not rendered: they are neither
// copied into the struct text nor re-dispatched to the base class
// (classreg.ResolveMethod can find them, but no emission path calls it).
func (s *State) emitClass(cls *srcast.ClassDef) error {
	ci, ok := s.classes.Lookup(cls.Name)
	if !ok {
		return cerrors.New(cerrors.InvariantBreach, cls.Pos(), "<module>", "class %q was not registered with the class registry", cls.Name)
	}

	s.emitStaticFields(cls)

	s.line("pub const %s = struct {", cls.Name)
	s.indent++
	s.line("const Self = @This();")
	s.raw("\n")

	instanceFields := make([]string, 0, len(ci.Fields))
	for _, name := range sortedKeys(ci.Fields) {
		if !ci.StaticFieldNames[name] {
			instanceFields = append(instanceFields, name)
		}
	}
	for _, name := range instanceFields {
		s.line("%s: %s,", s.renames.Resolve(name, name+"_f"), zigType(ci.Fields[name]))
	}

	if cs, ok := s.classes.CapturesOf(cls); ok {
		for _, name := range cs.Names {
			s.line("__captured_%s: %s,", name, zigType(cs.Types[name]))
		}
	}

	if len(instanceFields) > 0 || s.hasCaptures(cls) {
		s.raw("\n")
	}

	prevClass := s.currentClass
	s.currentClass = cls
	if !hasInit(cls) {
		s.emitDefaultInit()
	}
	for _, m := range cls.Methods() {
		if err := s.emitFunction(m, cls); err != nil {
			s.currentClass = prevClass
			return err
		}
	}
	s.currentClass = prevClass

	s.indent--
	s.line("};")
	s.raw("\n")
	return nil
}

// hasInit reports whether cls defines its own __init__, per spec.md §4.C's
// "fields -> default_init_or_user_init -> methods" ordering.
func hasInit(cls *srcast.ClassDef) bool {
	for _, m := range cls.Methods() {
		if m.Name == "__init__" {
			return true
		}
	}
	return false
}

// emitDefaultInit synthesizes the Zig constructor for a class with no
// Python __init__: every field stays `undefined`, matching this codebase's
// existing uninitialized-binding idiom (see assignment.go's AnnAssign case).
func (s *State) emitDefaultInit() {
	s.line("pub fn init(allocator: std.mem.Allocator) Self {")
	s.indent++
	s.line("_ = allocator;")
	s.line("var self: Self = undefined;")
	s.line("return self;")
	s.indent--
	s.line("}")
	s.raw("\n")
}

func (s *State) hasCaptures(cls *srcast.ClassDef) bool {
	cs, ok := s.classes.CapturesOf(cls)
	return ok && len(cs.Names) > 0
}

// emitStaticFields renders class-level (shared) variables as
// module-scope `var` declarations namespaced by class name, the
// conventional Zig stand-in for a Python class attribute shared across
// instances.
func (s *State) emitStaticFields(cls *srcast.ClassDef) {
	info, ok := s.classes.Lookup(cls.Name)
	if !ok {
		return
	}
	any := false
	for _, name := range sortedKeys(info.Fields) {
		if info.StaticFieldNames[name] {
			any = true
			s.line("var %s_%s: %s = undefined;", cls.Name, name, zigType(info.Fields[name]))
		}
	}
	if any {
		s.raw("\n")
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
