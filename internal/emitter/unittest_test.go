package emitter

import (
	"testing"

	"github.com/cwbudde/pycc/internal/srcast"
	"github.com/stretchr/testify/require"
)

func selfAttrCall(method string, args ...srcast.Expression) *srcast.Call {
	return &srcast.Call{
		Func: &srcast.Attribute{Value: name("self"), Attr: method},
		Args: args,
	}
}

// TestIsTestCase covers the P8 trigger condition: a class only gets the
// unittest scaffolding when one of its bases is literally "TestCase".
func TestIsTestCase(t *testing.T) {
	s := newTestState()
	require.True(t, s.isTestCase(&srcast.ClassDef{Name: "MyTest", Bases: []string{"TestCase"}}))
	require.False(t, s.isTestCase(&srcast.ClassDef{Name: "Plain", Bases: []string{"object"}}))
}

// TestTestMethodNamesFiltersPrefix covers the test-method discovery rule:
// only methods named test* are collected, in source order.
func TestTestMethodNamesFiltersPrefix(t *testing.T) {
	cls := &srcast.ClassDef{
		Name: "MyTest",
		Body: []srcast.Statement{
			&srcast.FunctionDef{Name: "setUp"},
			&srcast.FunctionDef{Name: "test_one"},
			&srcast.FunctionDef{Name: "helper"},
			&srcast.FunctionDef{Name: "test_two"},
		},
	}
	s := newTestState()
	ci := s.classes.RegisterClass(cls, nil)
	got := testMethodNames(ci)
	require.Equal(t, []string{"test_one", "test_two"}, got)
}

// TestEmitAssertionStmtSimpleHelper covers the simple boolean/equality
// assertion dispatch: assertEqual routes through the pyEqual runtime
// helper and fails the test by returning error.AssertionError.
func TestEmitAssertionStmtSimpleHelper(t *testing.T) {
	s := newTestState()
	call := selfAttrCall("assertEqual", name("got"), name("want"))
	handled := s.emitAssertionStmt(call)
	require.True(t, handled)
	require.Contains(t, s.out.String(), "if (!pyEqual(got, want)) return error.AssertionError;")
}

// TestEmitAssertionStmtIsAndIsNot covers the two inline-expanded identity
// assertions, checked here together since an earlier draft of this dunder
// pair collapsed them to the same comparison by mistake.
func TestEmitAssertionStmtIsAndIsNot(t *testing.T) {
	s := newTestState()
	require.True(t, s.emitAssertionStmt(selfAttrCall("assertIs", name("a"), name("b"))))
	require.Contains(t, s.out.String(), "if (a != b) return error.AssertionError;")

	s2 := newTestState()
	require.True(t, s2.emitAssertionStmt(selfAttrCall("assertIsNot", name("a"), name("b"))))
	require.Contains(t, s2.out.String(), "if (a == b) return error.AssertionError;")
}

// TestEmitAssertionStmtNotAnAssertion covers the fall-through contract:
// a self-method call that isn't assert-prefixed must report unhandled so
// the caller falls back to ordinary expression-statement emission.
func TestEmitAssertionStmtNotAnAssertion(t *testing.T) {
	s := newTestState()
	call := selfAttrCall("doSomething")
	require.False(t, s.emitAssertionStmt(call))
	require.Empty(t, s.out.String())
}

// TestEmitAssertRaisesBuildsInvocation covers assertRaises(Exc, callable,
// *args): the callable is actually invoked (through emitCallable) and its
// error union is asserted to be exactly the named error.
func TestEmitAssertRaisesBuildsInvocation(t *testing.T) {
	s := newTestState()
	call := selfAttrCall("assertRaises", name("ValueError"), name("doit"), num("1"))
	handled := s.emitAssertionStmt(call)
	require.True(t, handled)
	got := s.out.String()
	require.Contains(t, got, "error.ValueError")
	require.Contains(t, got, "doit(1)")
}

// TestEmitAssertRaisesAsContextManagerIsNoOp covers the
// `with self.assertRaises(Exc):` form: called with only the exception
// argument, assertRaises has nothing to assert on its own (the With
// lowering wraps the body instead), so it must emit nothing.
func TestEmitAssertRaisesAsContextManagerIsNoOp(t *testing.T) {
	s := newTestState()
	call := selfAttrCall("assertRaises", name("ValueError"))
	handled := s.emitAssertionStmt(call)
	require.True(t, handled)
	require.Empty(t, s.out.String())
}

// TestEmitAssertRaisesRegexSkipsRegexArg covers the regex-narrowed form:
// the regex argument itself must never reach the callable invocation
// (only the (exc, callable, *args) parts matter for the error-kind
// check), and this must not panic on a short argument list.
func TestEmitAssertRaisesRegexSkipsRegexArg(t *testing.T) {
	s := newTestState()
	call := selfAttrCall("assertRaisesRegex", name("ValueError"), name("doit"), &srcast.StringLit{Value: "bad .*"}, num("1"))
	handled := s.emitAssertionStmt(call)
	require.True(t, handled)
	got := s.out.String()
	require.Contains(t, got, "doit(1)")
	require.NotContains(t, got, "bad .*")

	// Too few args for the (exc, callable) pair plus the regex itself: must
	// not panic, and has nothing useful to assert.
	s2 := newTestState()
	short := selfAttrCall("assertRaisesRegex", name("ValueError"), name("doit"))
	require.True(t, s2.emitAssertionStmt(short))
}

// TestEmitTestRunnerShape covers the overall P8 runner shape: one block
// per test* method, a summary returned at the end.
func TestEmitTestRunnerShape(t *testing.T) {
	cls := &srcast.ClassDef{
		Name:  "MathTest",
		Bases: []string{"TestCase"},
		Body: []srcast.Statement{
			&srcast.FunctionDef{Name: "setUp"},
			&srcast.FunctionDef{Name: "test_add"},
		},
	}
	s := newTestState()
	s.classes.RegisterClass(cls, nil)

	err := s.emitTestRunner(cls)
	require.NoError(t, err)
	got := s.out.String()
	require.Contains(t, got, "pub fn run_MathTest_tests(allocator: std.mem.Allocator) TestSummary {")
	require.Contains(t, got, "instance.setUp();")
	require.Contains(t, got, "instance.test_add()")
	require.Contains(t, got, "return summary;")
}
