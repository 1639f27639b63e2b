package cmd

import (
	"testing"

	"github.com/cwbudde/pycc/internal/astjson"
	"github.com/cwbudde/pycc/internal/config"
	"github.com/cwbudde/pycc/internal/importreg"
	"github.com/cwbudde/pycc/internal/srcast"
	"github.com/cwbudde/pycc/pkg/pycc"
	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
)

// The tests in this file cover the six concrete scenarios the backend's
// contract walks through end to end: a module is round-tripped through
// the same JSON AST wire format `pycc compile` reads (internal/astjson),
// compiled, and the resulting Zig source is pinned with a go-snaps
// snapshot, the way the teacher's internal/interp/fixture_test.go pins
// its own interpreter output. Since this repository only emits Zig text
// and never runs it, "prints 55" is checked as "the emitted source calls
// pyPrint on the expected expression", not as an executed program.

func name(id string) *srcast.Name      { return &srcast.Name{Ident: id} }
func num(raw string) *srcast.NumberLit { return &srcast.NumberLit{Raw: raw} }
func str(v string) *srcast.StringLit   { return &srcast.StringLit{Value: v} }

func compileModule(t *testing.T, mod *srcast.Module) string {
	t.Helper()

	wire, err := astjson.Marshal(mod)
	require.NoError(t, err)

	roundTripped, err := astjson.Unmarshal(wire)
	require.NoError(t, err)

	out, errs := pycc.Compile(roundTripped, importreg.NewStaticRegistry(), config.Default())
	require.Empty(t, errs)
	return out
}

// TestEndToEndFibonacciRecursionPrints covers scenario 1: a recursive
// fib(10), printed.
func TestEndToEndFibonacciRecursionPrints(t *testing.T) {
	fib := &srcast.FunctionDef{
		Name:   "fib",
		Params: &srcast.Params{Args: []*srcast.Param{{Name: "n"}}},
		Body: []srcast.Statement{
			&srcast.If{
				Test: &srcast.Compare{Left: name("n"), Ops: []string{"<"}, Comparators: []srcast.Expression{num("2")}},
				Body: []srcast.Statement{&srcast.Return{Value: name("n")}},
			},
			&srcast.Return{Value: &srcast.BinOp{
				Left: &srcast.Call{Func: name("fib"), Args: []srcast.Expression{
					&srcast.BinOp{Left: name("n"), Op: "-", Right: num("1")},
				}},
				Op: "+",
				Right: &srcast.Call{Func: name("fib"), Args: []srcast.Expression{
					&srcast.BinOp{Left: name("n"), Op: "-", Right: num("2")},
				}},
			}},
		},
	}
	mod := &srcast.Module{
		Name: "fib_demo",
		Body: []srcast.Statement{
			fib,
			&srcast.ExprStmt{Value: &srcast.Call{
				Func: name("print"),
				Args: []srcast.Expression{&srcast.Call{Func: name("fib"), Args: []srcast.Expression{num("10")}}},
			}},
		},
	}

	out := compileModule(t, mod)
	require.Contains(t, out, "fn fib(")
	require.Contains(t, out, "fib((n - 1)) + fib((n - 2))")
	require.Contains(t, out, "pyPrint(fib(10))")
	snaps.MatchSnapshot(t, "fib_recursion", out)
}

// TestEndToEndTupleUnpackMixedTypes covers scenario 2: `a, b = 1, "x"`
// followed by printing each unpacked name.
func TestEndToEndTupleUnpackMixedTypes(t *testing.T) {
	mod := &srcast.Module{
		Name: "unpack_demo",
		Body: []srcast.Statement{
			&srcast.Assign{
				Targets: []srcast.Expression{&srcast.TupleLit{Elems: []srcast.Expression{name("a"), name("b")}}},
				Value:   &srcast.TupleLit{Elems: []srcast.Expression{num("1"), str("x")}},
			},
			&srcast.ExprStmt{Value: &srcast.Call{Func: name("print"), Args: []srcast.Expression{name("a")}}},
			&srcast.ExprStmt{Value: &srcast.Call{Func: name("print"), Args: []srcast.Expression{name("b")}}},
		},
	}

	out := compileModule(t, mod)
	require.Contains(t, out, "pyPrint(a)")
	require.Contains(t, out, "pyPrint(b)")
	snaps.MatchSnapshot(t, "tuple_unpack", out)
}

// TestEndToEndUnittestPassFailRunner covers scenario 3: a TestCase
// subclass with one passing and one failing assertEqual test gets a
// generated run_<Class>_tests runner.
func TestEndToEndUnittestPassFailRunner(t *testing.T) {
	selfAttrCall := func(method string, args ...srcast.Expression) *srcast.Call {
		return &srcast.Call{Func: &srcast.Attribute{Value: name("self"), Attr: method}, Args: args}
	}
	testPass := &srcast.FunctionDef{
		Name:   "test_pass",
		Params: &srcast.Params{Args: []*srcast.Param{{Name: "self"}}},
		Body: []srcast.Statement{
			&srcast.ExprStmt{Value: selfAttrCall("assertEqual",
				&srcast.BinOp{Left: num("2"), Op: "+", Right: num("2")}, num("4"))},
		},
	}
	testFail := &srcast.FunctionDef{
		Name:   "test_fail",
		Params: &srcast.Params{Args: []*srcast.Param{{Name: "self"}}},
		Body: []srcast.Statement{
			&srcast.ExprStmt{Value: selfAttrCall("assertEqual", num("2"), num("3"))},
		},
	}
	cls := &srcast.ClassDef{
		Name:  "MathTest",
		Bases: []string{"TestCase"},
		Body:  []srcast.Statement{testPass, testFail},
	}
	mod := &srcast.Module{Name: "unittest_demo", Body: []srcast.Statement{cls}}

	out := compileModule(t, mod)
	require.Contains(t, out, "pub fn run_MathTest_tests(allocator: std.mem.Allocator) TestSummary {")
	require.Contains(t, out, "MathTest.test_pass")
	require.Contains(t, out, "MathTest.test_fail")
	require.Contains(t, out, "return summary;")
	snaps.MatchSnapshot(t, "unittest_runner", out)
}

// TestEndToEndOperatorOverloadAugAssignDispatch covers scenario 4: a
// class with __add__ and __iadd__, where `v += Vector(2)` dispatches to
// the in-place dunder.
func TestEndToEndOperatorOverloadAugAssignDispatch(t *testing.T) {
	initMethod := &srcast.FunctionDef{
		Name:   "__init__",
		Params: &srcast.Params{Args: []*srcast.Param{{Name: "self"}, {Name: "x"}}},
		Body: []srcast.Statement{
			&srcast.Assign{
				Targets: []srcast.Expression{&srcast.Attribute{Value: name("self"), Attr: "x"}},
				Value:   name("x"),
			},
		},
	}
	addMethod := &srcast.FunctionDef{
		Name:   "__add__",
		Params: &srcast.Params{Args: []*srcast.Param{{Name: "self"}, {Name: "other"}}},
		Body: []srcast.Statement{
			&srcast.Return{Value: &srcast.Call{Func: name("Vector"), Args: []srcast.Expression{
				&srcast.BinOp{
					Left:  &srcast.Attribute{Value: name("self"), Attr: "x"},
					Op:    "+",
					Right: &srcast.Attribute{Value: name("other"), Attr: "x"},
				},
			}}},
		},
	}
	iaddMethod := &srcast.FunctionDef{
		Name:   "__iadd__",
		Params: &srcast.Params{Args: []*srcast.Param{{Name: "self"}, {Name: "other"}}},
		Body: []srcast.Statement{
			&srcast.AugAssign{
				Target: &srcast.Attribute{Value: name("self"), Attr: "x"},
				Op:     "+=",
				Value:  &srcast.Attribute{Value: name("other"), Attr: "x"},
			},
			&srcast.Return{Value: name("self")},
		},
	}
	cls := &srcast.ClassDef{Name: "Vector", Body: []srcast.Statement{initMethod, addMethod, iaddMethod}}
	mod := &srcast.Module{
		Name: "operator_overload_demo",
		Body: []srcast.Statement{
			cls,
			&srcast.Assign{
				Targets: []srcast.Expression{name("v")},
				Value:   &srcast.Call{Func: name("Vector"), Args: []srcast.Expression{num("1")}},
			},
			&srcast.AugAssign{
				Target: name("v"),
				Op:     "+=",
				Value:  &srcast.Call{Func: name("Vector"), Args: []srcast.Expression{num("2")}},
			},
		},
	}

	out := compileModule(t, mod)
	require.Contains(t, out, "fn __add__(")
	require.Contains(t, out, "fn __iadd__(")
	require.Contains(t, out, "v = v.__iadd__(Vector.init(allocator, 2));")
	snaps.MatchSnapshot(t, "operator_overload_aug_assign", out)
}

// TestEndToEndNestedClassCapturesOuterVariable covers scenario 5: a class
// defined inside a function body captures a name bound in the enclosing
// function as a `__captured_<name>` field.
func TestEndToEndNestedClassCapturesOuterVariable(t *testing.T) {
	addMethod := &srcast.FunctionDef{
		Name:   "add",
		Params: &srcast.Params{Args: []*srcast.Param{{Name: "self"}, {Name: "x"}}},
		Body: []srcast.Statement{
			&srcast.Return{Value: &srcast.BinOp{Left: name("x"), Op: "+", Right: name("step")}},
		},
	}
	nestedClass := &srcast.ClassDef{Name: "Adder", Body: []srcast.Statement{addMethod}}
	outerFn := &srcast.FunctionDef{
		Name:   "make_adder",
		Params: &srcast.Params{Args: []*srcast.Param{{Name: "step"}}},
		Body: []srcast.Statement{
			nestedClass,
			&srcast.Return{Value: &srcast.Call{Func: name("Adder")}},
		},
	}
	mod := &srcast.Module{Name: "capture_demo", Body: []srcast.Statement{outerFn}}

	out := compileModule(t, mod)
	require.Contains(t, out, "__captured_step")
	snaps.MatchSnapshot(t, "nested_class_capture", out)
}

// TestEndToEndJSONRoundTrip covers scenario 6: json.dumps(json.loads(...))
// preserves structure. Both calls are constant-folded at compile time
// (internal/runtimejson), so the emitted source is the rendered JSON text
// itself rather than a runtime parse/re-serialize call pair.
func TestEndToEndJSONRoundTrip(t *testing.T) {
	mod := &srcast.Module{
		Name: "json_roundtrip_demo",
		Body: []srcast.Statement{
			&srcast.Import{Module: "json"},
			&srcast.ExprStmt{Value: &srcast.Call{
				Func: name("print"),
				Args: []srcast.Expression{&srcast.Call{
					Func: &srcast.Attribute{Value: name("json"), Attr: "dumps"},
					Args: []srcast.Expression{&srcast.Call{
						Func: &srcast.Attribute{Value: name("json"), Attr: "loads"},
						Args: []srcast.Expression{str(`{"x":[1,2,3]}`)},
					}},
				}},
			}},
		},
	}

	out := compileModule(t, mod)
	// renderCall %q-escapes the folded JSON text, so the literal in the
	// emitted source carries backslash-escaped quotes.
	require.Contains(t, out, `\"x\":[1,2,3]`)
	snaps.MatchSnapshot(t, "json_roundtrip", out)
}
