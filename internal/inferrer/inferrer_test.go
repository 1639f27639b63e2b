package inferrer_test

import (
	"testing"

	"github.com/cwbudde/pycc/internal/inferrer"
	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/cwbudde/pycc/internal/scope"
	"github.com/cwbudde/pycc/internal/srcast"
	"github.com/stretchr/testify/require"
)

func name(id string) *srcast.Name      { return &srcast.Name{Ident: id} }
func num(raw string) *srcast.NumberLit { return &srcast.NumberLit{Raw: raw} }
func flt(raw string) *srcast.NumberLit { return &srcast.NumberLit{Raw: raw, IsFloat: true} }

// TestEmptyListWidensFromAppend covers the "empty container literal takes
// its type from its first append" rule.
func TestEmptyListWidensFromAppend(t *testing.T) {
	mod := &srcast.Module{Body: []srcast.Statement{
		&srcast.Assign{Targets: []srcast.Expression{name("xs")}, Value: &srcast.ListLit{}},
		&srcast.ExprStmt{Value: &srcast.Call{
			Func: &srcast.Attribute{Value: name("xs"), Attr: "append"},
			Args: []srcast.Expression{num("1")},
		}},
	}}

	result := inferrer.New(scope.New(), nil).Infer(mod)
	xs, ok := result.Scopes.Lookup(scope.Module, "xs")
	require.True(t, ok)
	require.Equal(t, nativetype.TList(nativetype.TInt()).String(), xs.String())
}

// TestFunctionReturnTypeInfersFromReturnStatements covers the return-type
// half of component A's contract.
func TestFunctionReturnTypeInfersFromReturnStatements(t *testing.T) {
	fn := &srcast.FunctionDef{
		Name:   "identity",
		Params: &srcast.Params{Args: []*srcast.Param{{Name: "x"}}},
		Body: []srcast.Statement{
			&srcast.Return{Value: name("x")},
		},
	}
	call := &srcast.Call{Func: name("identity"), Args: []srcast.Expression{num("1")}}
	mod := &srcast.Module{Body: []srcast.Statement{
		fn,
		&srcast.Assign{Targets: []srcast.Expression{name("y")}, Value: call},
	}}

	result := inferrer.New(scope.New(), nil).Infer(mod)
	require.Equal(t, nativetype.TInt().String(), result.FuncReturnTypes[fn].String())
}

// TestNumericPromotionInBinOp covers int/float mixing per the promotion
// table (consistent with nativetype.Widen's P1 lattice).
func TestNumericPromotionInBinOp(t *testing.T) {
	mod := &srcast.Module{Body: []srcast.Statement{
		&srcast.Assign{Targets: []srcast.Expression{name("z")}, Value: &srcast.BinOp{
			Left: num("1"), Op: "+", Right: flt("2.0"),
		}},
	}}
	result := inferrer.New(scope.New(), nil).Infer(mod)
	z, ok := result.Scopes.Lookup(scope.Module, "z")
	require.True(t, ok)
	require.Equal(t, nativetype.TFloat.String(), z.String())
}

// TestSelfFieldAssignmentPopulatesClassFields covers class-field
// collection through `self.attr = ...` inside a method body.
func TestSelfFieldAssignmentPopulatesClassFields(t *testing.T) {
	initFn := &srcast.FunctionDef{
		Name:   "__init__",
		Params: &srcast.Params{Args: []*srcast.Param{{Name: "self"}}},
		Body: []srcast.Statement{
			&srcast.Assign{
				Targets: []srcast.Expression{&srcast.Attribute{Value: name("self"), Attr: "count"}},
				Value:   num("0"),
			},
		},
	}
	cls := &srcast.ClassDef{Name: "Counter", Body: []srcast.Statement{initFn}}
	mod := &srcast.Module{Body: []srcast.Statement{cls}}

	result := inferrer.New(scope.New(), nil).Infer(mod)
	cf := result.ClassFieldsOf[cls]
	require.NotNil(t, cf)
	require.Equal(t, nativetype.TInt().String(), cf.Fields["count"].String())
}
