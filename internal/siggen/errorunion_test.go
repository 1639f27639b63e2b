package siggen_test

import (
	"testing"

	"github.com/cwbudde/pycc/internal/siggen"
	"github.com/cwbudde/pycc/internal/srcast"
	"github.com/stretchr/testify/require"
)

func nameExpr(id string) *srcast.Name { return &srcast.Name{Ident: id} }

// TestErrorUnionPropagatesTransitively covers P7: a function that calls a
// raising function (with no enclosing try/except) must itself be marked
// error-returning, even two call levels removed from the `raise`.
func TestErrorUnionPropagatesTransitively(t *testing.T) {
	// def innermost(): raise ValueError()
	innermost := &srcast.FunctionDef{
		Name: "innermost",
		Body: []srcast.Statement{
			&srcast.Raise{Exc: &srcast.Call{Func: nameExpr("ValueError")}},
		},
	}
	// def middle(): innermost()
	middle := &srcast.FunctionDef{
		Name: "middle",
		Body: []srcast.Statement{
			&srcast.ExprStmt{Value: &srcast.Call{Func: nameExpr("innermost")}},
		},
	}
	// def outer(): middle()
	outer := &srcast.FunctionDef{
		Name: "outer",
		Body: []srcast.Statement{
			&srcast.ExprStmt{Value: &srcast.Call{Func: nameExpr("middle")}},
		},
	}
	// def safe():
	//     try:
	//         middle()
	//     except Exception:
	//         pass
	safe := &srcast.FunctionDef{
		Name: "safe",
		Body: []srcast.Statement{
			&srcast.Try{
				Body: []srcast.Statement{&srcast.ExprStmt{Value: &srcast.Call{Func: nameExpr("middle")}}},
				Handlers: []*srcast.ExceptHandler{
					{Type: nameExpr("Exception"), Body: []srcast.Statement{&srcast.Pass{}}},
				},
			},
		},
	}

	funcs := []*srcast.FunctionDef{innermost, middle, outer, safe}
	byName := map[string]*srcast.FunctionDef{
		"innermost": innermost, "middle": middle, "outer": outer, "safe": safe,
	}
	resolve := func(name string) (*srcast.FunctionDef, bool) {
		fn, ok := byName[name]
		return fn, ok
	}

	raises := siggen.ComputeErrorUnions(funcs, resolve)

	require.True(t, raises[innermost])
	require.True(t, raises[middle])
	require.True(t, raises[outer])
	require.False(t, raises[safe])
}
