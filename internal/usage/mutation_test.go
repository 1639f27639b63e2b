package usage_test

import (
	"testing"

	"github.com/cwbudde/pycc/internal/scope"
	"github.com/cwbudde/pycc/internal/srcast"
	"github.com/cwbudde/pycc/internal/usage"
	"github.com/stretchr/testify/require"
)

func name(id string) *srcast.Name      { return &srcast.Name{Ident: id} }
func num(raw string) *srcast.NumberLit { return &srcast.NumberLit{Raw: raw} }

// TestMutationClassification covers P4: a variable written exactly once is
// not flagged mutated; a variable written twice is.
func TestMutationClassification(t *testing.T) {
	mod := &srcast.Module{Body: []srcast.Statement{
		&srcast.Assign{Targets: []srcast.Expression{name("once")}, Value: num("1")},
		&srcast.Assign{Targets: []srcast.Expression{name("twice")}, Value: num("1")},
		&srcast.Assign{Targets: []srcast.Expression{name("twice")}, Value: num("2")},
	}}

	a := usage.NewAnalyzer(nil, nil)
	result := a.Analyze(mod)

	once := result.Info[usage.Key{Scope: scope.Module, Name: "once"}]
	twice := result.Info[usage.Key{Scope: scope.Module, Name: "twice"}]

	require.NotNil(t, once)
	require.False(t, once.Mutated)

	require.NotNil(t, twice)
	require.True(t, twice.Mutated)
}

func TestAugAssignMarksContainerNotIndex(t *testing.T) {
	mod := &srcast.Module{Body: []srcast.Statement{
		&srcast.Assign{Targets: []srcast.Expression{name("xs")}, Value: &srcast.ListLit{}},
		&srcast.Assign{Targets: []srcast.Expression{name("i")}, Value: num("0")},
		&srcast.AugAssign{
			Target: &srcast.Subscript{Value: name("xs"), Index: name("i")},
			Op:     "+=",
			Value:  num("1"),
		},
	}}

	a := usage.NewAnalyzer(nil, nil)
	result := a.Analyze(mod)

	xs := result.Info[usage.Key{Scope: scope.Module, Name: "xs"}]
	idx := result.Info[usage.Key{Scope: scope.Module, Name: "i"}]

	require.True(t, xs.Mutated)
	require.False(t, idx.Mutated)
}

func TestUsedAsCallable(t *testing.T) {
	mod := &srcast.Module{Body: []srcast.Statement{
		&srcast.Assign{Targets: []srcast.Expression{name("f")}, Value: name("builtin_fn")},
		&srcast.ExprStmt{Value: &srcast.Call{Func: name("f")}},
	}}
	a := usage.NewAnalyzer(nil, nil)
	result := a.Analyze(mod)
	f := result.Info[usage.Key{Scope: scope.Module, Name: "f"}]
	require.True(t, f.UsedAsCallable)
}

// TestShadowsClassMethod covers P4's sibling-method trait: a method-body
// local whose name matches a sibling method on the same class is flagged,
// but the method declarations themselves and an unrelated local are not.
func TestShadowsClassMethod(t *testing.T) {
	run := &srcast.FunctionDef{
		Name: "run",
		Body: []srcast.Statement{
			&srcast.Assign{Targets: []srcast.Expression{name("helper")}, Value: num("1")},
			&srcast.Assign{Targets: []srcast.Expression{name("other")}, Value: num("2")},
		},
	}
	helper := &srcast.FunctionDef{Name: "helper"}
	cls := &srcast.ClassDef{Name: "Worker", Body: []srcast.Statement{run, helper}}
	mod := &srcast.Module{Body: []srcast.Statement{cls}}

	a := usage.NewAnalyzer(nil, nil)
	result := a.Analyze(mod)

	classScope := result.Scopes.Child(scope.Module, cls)
	runScope := result.Scopes.Child(classScope, run)

	local := result.Info[usage.Key{Scope: runScope, Name: "helper"}]
	require.NotNil(t, local)
	require.True(t, local.ShadowsClassMethod)

	unrelated := result.Info[usage.Key{Scope: runScope, Name: "other"}]
	require.NotNil(t, unrelated)
	require.False(t, unrelated.ShadowsClassMethod)

	method := result.Info[usage.Key{Scope: classScope, Name: "helper"}]
	require.NotNil(t, method)
	require.False(t, method.ShadowsClassMethod)
}

func TestComparedToStringLiteral(t *testing.T) {
	mod := &srcast.Module{Body: []srcast.Statement{
		&srcast.Assign{Targets: []srcast.Expression{name("kind")}, Value: &srcast.StringLit{Value: "a"}},
		&srcast.If{Test: &srcast.Compare{
			Left:        name("kind"),
			Ops:         []string{"=="},
			Comparators: []srcast.Expression{&srcast.StringLit{Value: "a"}},
		}},
	}}
	a := usage.NewAnalyzer(nil, nil)
	result := a.Analyze(mod)
	kind := result.Info[usage.Key{Scope: scope.Module, Name: "kind"}]
	require.True(t, kind.ComparedToStringLiteral)
}
