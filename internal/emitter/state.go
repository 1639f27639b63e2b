// Package emitter implements the Statement/Expression Emitter (spec.md
// §4.E, component E): it walks the AST and produces target-language
// (Zig) source text, honoring the assignment const/mutable rules,
// tuple/list unpack, augmented-assignment dispatch, the expression-
// statement discard policy, control-flow/comprehension lowering, and the
// unittest scaffolding described there.
//
// Grounded on the teacher's pkg/printer (stream-AST-back-to-source
// responsibility, one render method per node kind) combined with
// internal/bytecode/compiler_statements.go and compiler_expressions.go's
// per-statement/per-expression-kind switch dispatch, generalized from
// "emit bytecode" to "emit Zig text". The with-statement defer lowering
// additionally follows other_examples' RangelReale-gotopython
// xcompiler.go `addDefers` pattern.
package emitter

import (
	"fmt"
	"strings"

	"github.com/cwbudde/pycc/internal/classreg"
	"github.com/cwbudde/pycc/internal/importreg"
	"github.com/cwbudde/pycc/internal/inferrer"
	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/cwbudde/pycc/internal/rename"
	"github.com/cwbudde/pycc/internal/siggen"
	"github.com/cwbudde/pycc/internal/srcast"
	"github.com/cwbudde/pycc/internal/usage"
)

// State is the Statement/Expression Emitter's own working set: the
// output buffer plus read-only access to every upstream table (A-D) it
// was handed by the codegen orchestrator. One State is used for exactly
// one module compilation, matching spec.md §3's Codegen State lifecycle.
type State struct {
	out    strings.Builder
	indent int

	infer    *inferrer.Result
	usageRes *usage.Result
	classes  *classreg.Registry
	traits   map[*srcast.FunctionDef]*siggen.FunctionTraits
	renames  *rename.Map
	imports  importreg.Registry

	// currentClass/currentFunc track the node the emitter is inside, for
	// self-field-vs-dynamic-dict dispatch and capture lookups.
	currentClass *srcast.ClassDef
	currentFunc  *srcast.FunctionDef

	tmpCounter int
}

// New creates an Emitter State sharing the upstream components' results.
// imports is consulted to statically honor a test method's
// `@skipIf(<module> is None, …)` decorator (spec.md §6 "Inputs"); a nil
// registry means every such decorator is treated as not skipped.
func New(infer *inferrer.Result, usageRes *usage.Result, classes *classreg.Registry, traits map[*srcast.FunctionDef]*siggen.FunctionTraits, renames *rename.Map, imports importreg.Registry) *State {
	return &State{
		infer:    infer,
		usageRes: usageRes,
		classes:  classes,
		traits:   traits,
		renames:  renames,
		imports:  imports,
	}
}

func (s *State) line(format string, args ...interface{}) {
	s.out.WriteString(strings.Repeat("    ", s.indent))
	fmt.Fprintf(&s.out, format, args...)
	s.out.WriteByte('\n')
}

func (s *State) raw(text string) {
	s.out.WriteString(text)
}

func (s *State) nextTemp() string {
	return s.nextName("__unpack_tmp")
}

// nextName mints a fresh, monotonically-numbered identifier under
// prefix, shared by every emit* helper that needs a synthetic local
// (unpack temps, try-block wrapper functions, comprehension builders).
func (s *State) nextName(prefix string) string {
	s.tmpCounter++
	return fmt.Sprintf("%s_%d", prefix, s.tmpCounter)
}

// EmitModule walks mod's top-level statements and returns the rendered
// Zig source text. Zig has no executable top-level statements (only
// declarations are legal at file scope), so module-level imperative code
// — anything that isn't a ClassDef/FunctionDef/Import — is collected and
// wrapped in a synthesized `pub fn main`, the idiomatic Zig entry point,
// with its own heap allocator for any constructor/container call the
// module-level code makes.
func (s *State) EmitModule(mod *srcast.Module) (string, error) {
	s.line("const std = @import(\"std\");")
	s.line("const pyvalue = @import(\"pyvalue.zig\");")
	s.line("usingnamespace pyvalue;")
	s.raw("\n")

	if s.moduleHasTests(mod) {
		s.line("pub const TestSummary = struct { total: u32 = 0, failed: u32 = 0 };")
		s.raw("\n")
	}

	var topLevelStmts []srcast.Statement
	var testClasses []*srcast.ClassDef
	for _, stmt := range mod.Body {
		switch n := stmt.(type) {
		case *srcast.ClassDef, *srcast.FunctionDef, *srcast.Import, *srcast.ImportFrom:
			if err := s.emitTopLevel(stmt); err != nil {
				return "", err
			}
			if cls, ok := n.(*srcast.ClassDef); ok && s.isTestCase(cls) {
				testClasses = append(testClasses, cls)
			}
		default:
			topLevelStmts = append(topLevelStmts, stmt)
		}
	}

	if len(topLevelStmts) > 0 || len(testClasses) > 0 {
		if err := s.emitMain(topLevelStmts, testClasses); err != nil {
			return "", err
		}
	}
	return s.out.String(), nil
}

// emitMain renders the synthesized entry point that hosts every module-level
// imperative statement, the ones Zig itself cannot place at file scope, then
// runs every TestCase subclass's generated runner and exits non-zero if any
// test failed (this is the caller emitTestRunner's doc comment names as
// deciding the process exit code from TestSummary).
func (s *State) emitMain(stmts []srcast.Statement, testClasses []*srcast.ClassDef) error {
	s.line("pub fn main() !void {")
	s.indent++
	s.line("var gpa = std.heap.GeneralPurposeAllocator(.{}){};")
	s.line("defer _ = gpa.deinit();")
	s.line("const allocator = gpa.allocator();")
	s.line("_ = allocator;")
	for _, stmt := range stmts {
		if err := s.emitStmt(stmt); err != nil {
			return err
		}
	}
	if len(testClasses) > 0 {
		s.line("var failed: u32 = 0;")
		for _, cls := range testClasses {
			s.line("failed += run_%s_tests(allocator).failed;", cls.Name)
		}
		s.line("if (failed > 0) std.process.exit(1);")
	}
	s.indent--
	s.line("}")
	s.raw("\n")
	return nil
}

// moduleHasTests reports whether mod declares at least one TestCase
// subclass, deciding whether the TestSummary scaffolding type is needed
// at all.
func (s *State) moduleHasTests(mod *srcast.Module) bool {
	for _, stmt := range mod.Body {
		if cls, ok := stmt.(*srcast.ClassDef); ok && s.isTestCase(cls) {
			return true
		}
	}
	return false
}

func (s *State) emitTopLevel(stmt srcast.Statement) error {
	switch n := stmt.(type) {
	case *srcast.ClassDef:
		if err := s.emitClass(n); err != nil {
			return err
		}
		if s.isTestCase(n) {
			return s.emitTestRunner(n)
		}
		return nil
	case *srcast.FunctionDef:
		return s.emitFunction(n, nil)
	case *srcast.Import, *srcast.ImportFrom:
		return nil // resolved through the import registry, not re-emitted
	default:
		return s.emitStmt(stmt)
	}
}

// typeOf looks up the inferred type for expr, falling back to Unknown.
func (s *State) typeOf(expr srcast.Expression) nativetype.NativeType {
	if s.infer == nil {
		return nativetype.TUnknown
	}
	if t, ok := s.infer.ExprTypes[expr]; ok {
		return t
	}
	return nativetype.TUnknown
}

// traitsOf returns the precomputed FunctionTraits for fn, or nil.
func (s *State) traitsOf(fn *srcast.FunctionDef) *siggen.FunctionTraits {
	if s.traits == nil {
		return nil
	}
	return s.traits[fn]
}
