package codegen_test

import (
	"testing"

	"github.com/cwbudde/pycc/internal/codegen"
	"github.com/cwbudde/pycc/internal/srcast"
	"github.com/stretchr/testify/require"
)

func name(id string) *srcast.Name      { return &srcast.Name{Ident: id} }
func num(raw string) *srcast.NumberLit { return &srcast.NumberLit{Raw: raw} }

// TestEmitSimpleModuleRendersFunction is a smoke test for the full
// pipeline: a single top-level function returning `x + 1` produces Zig
// text that keeps the function's own name and the rendered expression.
func TestEmitSimpleModuleRendersFunction(t *testing.T) {
	fn := &srcast.FunctionDef{
		Name:   "add_one",
		Params: &srcast.Params{Args: []*srcast.Param{{Name: "x"}}},
		Body: []srcast.Statement{
			&srcast.Return{Value: &srcast.BinOp{Left: name("x"), Op: "+", Right: num("1")}},
		},
	}
	mod := &srcast.Module{Body: []srcast.Statement{fn}}

	out, err := codegen.New(nil).Emit(mod, "mod.py")
	require.NoError(t, err)
	require.Contains(t, out, "add_one")
	require.Contains(t, out, "x + 1")
}

// TestEmitReservesTopLevelNamesBeforeLocals covers the pre-pass this
// package adds over the teacher's two-stage shape: a local variable in an
// earlier function must never steal a later sibling function's name.
func TestEmitReservesTopLevelNamesBeforeLocals(t *testing.T) {
	first := &srcast.FunctionDef{
		Name: "first",
		Body: []srcast.Statement{
			&srcast.Assign{Targets: []srcast.Expression{name("second")}, Value: num("1")},
			&srcast.Return{Value: name("second")},
		},
	}
	second := &srcast.FunctionDef{
		Name: "second",
		Body: []srcast.Statement{
			&srcast.Return{Value: num("2")},
		},
	}
	mod := &srcast.Module{Body: []srcast.Statement{first, second}}

	out, err := codegen.New(nil).Emit(mod, "mod.py")
	require.NoError(t, err)
	// "second" the function must keep its own name; the local inside
	// "first" must have been disambiguated instead, not merely left
	// unrenamed because some other scope already cached that spelling.
	require.Contains(t, out, "fn second(")
	require.NotContains(t, out, "fn second_fn(")
	require.Contains(t, out, "second_ = 1;")
	require.Contains(t, out, "return second_;")
	require.NotContains(t, out, "second = 1;")
	require.NotContains(t, out, "return second;")
}

// TestEmitClassWithStaticFieldAugAssign covers the class/static-field path
// end to end: the static storage slot is rendered under its
// "<Class>_<field>" name rather than a struct member.
func TestEmitClassWithStaticFieldAugAssign(t *testing.T) {
	cls := &srcast.ClassDef{
		Name: "Counter",
		Body: []srcast.Statement{
			&srcast.Assign{Targets: []srcast.Expression{name("count")}, Value: num("0")},
			&srcast.FunctionDef{
				Name:   "bump",
				Params: &srcast.Params{Args: []*srcast.Param{{Name: "self"}}},
				Body: []srcast.Statement{
					&srcast.AugAssign{
						Target: &srcast.Attribute{Value: name("self"), Attr: "count"},
						Op:     "+=",
						Value:  num("1"),
					},
				},
			},
		},
	}
	mod := &srcast.Module{Body: []srcast.Statement{cls}}

	out, err := codegen.New(nil).Emit(mod, "mod.py")
	require.NoError(t, err)
	require.Contains(t, out, "Counter_count")
}

// TestEmitNestedFunctionClosureCapture covers the capture-planning wiring:
// a nested function reading an enclosing local must be discovered as a
// closure boundary by the orchestrator's walk, not just top-level
// functions and classes.
func TestEmitNestedFunctionClosureCapture(t *testing.T) {
	inner := &srcast.FunctionDef{
		Name: "inner",
		Body: []srcast.Statement{
			&srcast.Return{Value: name("total")},
		},
	}
	outer := &srcast.FunctionDef{
		Name: "make_counter",
		Body: []srcast.Statement{
			&srcast.Assign{Targets: []srcast.Expression{name("total")}, Value: num("0")},
			inner,
			&srcast.Return{Value: name("inner")},
		},
	}
	mod := &srcast.Module{Body: []srcast.Statement{outer}}

	_, err := codegen.New(nil).Emit(mod, "mod.py")
	require.NoError(t, err)
}
