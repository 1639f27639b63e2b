package astjson_test

import (
	"testing"

	"github.com/cwbudde/pycc/internal/astjson"
	"github.com/cwbudde/pycc/internal/srcast"
	"github.com/stretchr/testify/require"
)

func TestRoundTripSimpleFunction(t *testing.T) {
	mod := &srcast.Module{
		Name: "greet",
		Body: []srcast.Statement{
			&srcast.FunctionDef{
				Name: "greet",
				Params: &srcast.Params{
					Args: []*srcast.Param{{Name: "name", Annotation: "str"}},
				},
				Body: []srcast.Statement{
					&srcast.Return{Value: &srcast.BinOp{
						Left:  &srcast.StringLit{Value: "hi "},
						Op:    "+",
						Right: &srcast.Name{Ident: "name"},
					}},
				},
			},
		},
	}

	data, err := astjson.Marshal(mod)
	require.NoError(t, err)

	got, err := astjson.Unmarshal(data)
	require.NoError(t, err)

	require.Equal(t, "greet", got.Name)
	require.Len(t, got.Body, 1)
	fn, ok := got.Body[0].(*srcast.FunctionDef)
	require.True(t, ok)
	require.Equal(t, "greet", fn.Name)
	require.Len(t, fn.Params.Args, 1)
	require.Equal(t, "name", fn.Params.Args[0].Name)
	require.Equal(t, "str", fn.Params.Args[0].Annotation)

	ret, ok := fn.Body[0].(*srcast.Return)
	require.True(t, ok)
	bin, ok := ret.Value.(*srcast.BinOp)
	require.True(t, ok)
	require.Equal(t, "+", bin.Op)
	left, ok := bin.Left.(*srcast.StringLit)
	require.True(t, ok)
	require.Equal(t, "hi ", left.Value)
	right, ok := bin.Right.(*srcast.Name)
	require.True(t, ok)
	require.Equal(t, "name", right.Ident)
}

func TestRoundTripClassWithControlFlowAndComprehension(t *testing.T) {
	mod := &srcast.Module{
		Name: "m",
		Body: []srcast.Statement{
			&srcast.ClassDef{
				Name:  "Counter",
				Bases: []string{"object"},
				Body: []srcast.Statement{
					&srcast.Assign{
						Targets: []srcast.Expression{&srcast.Name{Ident: "total"}},
						Value:   &srcast.NumberLit{Raw: "0"},
					},
					&srcast.FunctionDef{
						Name: "bump",
						Params: &srcast.Params{
							Args: []*srcast.Param{{Name: "self"}, {Name: "n", Default: &srcast.NumberLit{Raw: "1"}}},
						},
						Body: []srcast.Statement{
							&srcast.If{
								Test: &srcast.Compare{
									Left:        &srcast.Name{Ident: "n"},
									Ops:         []string{">"},
									Comparators: []srcast.Expression{&srcast.NumberLit{Raw: "0"}},
								},
								Body: []srcast.Statement{
									&srcast.AugAssign{
										Target: &srcast.Attribute{Value: &srcast.Name{Ident: "self"}, Attr: "total"},
										Op:     "+=",
										Value:  &srcast.Name{Ident: "n"},
									},
								},
							},
							&srcast.Return{Value: &srcast.ListComp{
								Elt: &srcast.Name{Ident: "x"},
								Gens: []*srcast.Comprehension{{
									Target: &srcast.Name{Ident: "x"},
									Iter:   &srcast.Call{Func: &srcast.Name{Ident: "range"}, Args: []srcast.Expression{&srcast.Name{Ident: "n"}}},
								}},
							}},
						},
					},
				},
			},
		},
	}

	data, err := astjson.Marshal(mod)
	require.NoError(t, err)
	got, err := astjson.Unmarshal(data)
	require.NoError(t, err)

	cls, ok := got.Body[0].(*srcast.ClassDef)
	require.True(t, ok)
	require.Equal(t, "Counter", cls.Name)
	require.Equal(t, []string{"object"}, cls.Bases)
	require.Len(t, cls.Methods(), 1)

	bump := cls.Methods()[0]
	require.Len(t, bump.Params.Args, 2)
	require.NotNil(t, bump.Params.Args[1].Default)

	ifStmt, ok := bump.Body[0].(*srcast.If)
	require.True(t, ok)
	require.Len(t, ifStmt.Body, 1)
	_, ok = ifStmt.Body[0].(*srcast.AugAssign)
	require.True(t, ok)

	ret, ok := bump.Body[1].(*srcast.Return)
	require.True(t, ok)
	comp, ok := ret.Value.(*srcast.ListComp)
	require.True(t, ok)
	require.Len(t, comp.Gens, 1)
	require.Equal(t, "x", comp.Gens[0].Target.(*srcast.Name).Ident)
}

func TestUnmarshalRejectsUnknownKind(t *testing.T) {
	_, err := astjson.Unmarshal([]byte(`{"kind":"Module","name":"m","body":[{"kind":"Frobnicate"}]}`))
	require.Error(t, err)
}
