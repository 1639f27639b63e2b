package classreg_test

import (
	"testing"

	"github.com/cwbudde/pycc/internal/classreg"
	"github.com/cwbudde/pycc/internal/inferrer"
	"github.com/cwbudde/pycc/internal/scope"
	"github.com/cwbudde/pycc/internal/srcast"
	"github.com/stretchr/testify/require"
)

func name(id string) *srcast.Name      { return &srcast.Name{Ident: id} }
func num(raw string) *srcast.NumberLit { return &srcast.NumberLit{Raw: raw} }

// TestNestedClassCapturesEnclosingLocal covers P5: a class defined inside
// a function body, whose method reads a name bound in the enclosing
// function, must list that name in its CaptureSet — and must NOT list a
// module-level name it also references.
func TestNestedClassCapturesEnclosingLocal(t *testing.T) {
	// def make_adder(step):
	//     class Adder:
	//         def add(self, x):
	//             return x + step + GLOBAL_BIAS
	//     return Adder()
	addMethod := &srcast.FunctionDef{
		Name: "add",
		Params: &srcast.Params{Args: []*srcast.Param{
			{Name: "self"}, {Name: "x"},
		}},
		Body: []srcast.Statement{
			&srcast.Return{Value: &srcast.BinOp{
				Left:  &srcast.BinOp{Left: name("x"), Op: "+", Right: name("step")},
				Op:    "+",
				Right: name("GLOBAL_BIAS"),
			}},
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
	mod := &srcast.Module{Body: []srcast.Statement{
		&srcast.Assign{Targets: []srcast.Expression{name("GLOBAL_BIAS")}, Value: num("1")},
		outerFn,
	}}

	scopes := scope.New()
	inf := inferrer.New(scopes, nil)
	inf.Infer(mod)

	reg := classreg.New()
	boundary := scopes.Child(scope.Module, nestedClass)
	cs := reg.PlanCaptures(nestedClass, scopes, boundary, nestedClass.Body)

	require.Contains(t, cs.Names, "step")
	require.NotContains(t, cs.Names, "GLOBAL_BIAS")
	require.NotContains(t, cs.Names, "self")
	require.NotContains(t, cs.Names, "x")
}

func TestMROWalksBasesDepthFirst(t *testing.T) {
	base := &srcast.ClassDef{Name: "Animal"}
	mid := &srcast.ClassDef{Name: "Mammal", Bases: []string{"Animal"}}
	leaf := &srcast.ClassDef{Name: "Dog", Bases: []string{"Mammal"}}

	reg := classreg.New()
	reg.RegisterClass(base, nil)
	reg.RegisterClass(mid, nil)
	reg.RegisterClass(leaf, nil)

	require.Equal(t, []string{"Dog", "Mammal", "Animal"}, reg.MRO("Dog"))
	require.True(t, reg.IsDescendantOf("Dog", "Animal"))
	require.False(t, reg.IsDescendantOf("Animal", "Dog"))
}

func TestResolveMethodFindsInheritedImplementation(t *testing.T) {
	speak := &srcast.FunctionDef{Name: "speak"}
	base := &srcast.ClassDef{Name: "Animal", Body: []srcast.Statement{speak}}
	leaf := &srcast.ClassDef{Name: "Dog", Bases: []string{"Animal"}}

	reg := classreg.New()
	reg.RegisterClass(base, nil)
	reg.RegisterClass(leaf, nil)

	m, owner, ok := reg.ResolveMethod("Dog", "speak")
	require.True(t, ok)
	require.Equal(t, "Animal", owner)
	require.Same(t, speak, m)
}
