package pycc_test

import (
	"testing"

	"github.com/cwbudde/pycc/internal/config"
	"github.com/cwbudde/pycc/internal/errors"
	"github.com/cwbudde/pycc/internal/srcast"
	"github.com/cwbudde/pycc/pkg/pycc"
	"github.com/stretchr/testify/require"
)

func TestCompileSimpleModuleSucceeds(t *testing.T) {
	mod := &srcast.Module{
		Name: "greet",
		Body: []srcast.Statement{
			&srcast.FunctionDef{
				Name: "greet",
				Body: []srcast.Statement{
					&srcast.Return{Value: &srcast.StringLit{Value: "hi"}},
				},
			},
		},
	}

	out, errs := pycc.Compile(mod, nil, config.Default())
	require.Empty(t, errs)
	require.Contains(t, out, "greet")
}

func TestCompileUnsupportedConstructReportsOneError(t *testing.T) {
	// `for (a, b) in range(5): ...` has no simple-name loop target, which
	// the range()-loop lowering cannot express.
	mod := &srcast.Module{
		Name: "bad",
		Body: []srcast.Statement{
			&srcast.For{
				Target: &srcast.TupleLit{Elems: []srcast.Expression{
					&srcast.Name{Ident: "a"}, &srcast.Name{Ident: "b"},
				}},
				Iter: &srcast.Call{
					Func: &srcast.Name{Ident: "range"},
					Args: []srcast.Expression{&srcast.NumberLit{Raw: "5"}},
				},
			},
		},
	}

	out, errs := pycc.Compile(mod, nil, config.Default())
	require.Empty(t, out)
	require.Len(t, errs, 1)
	require.Equal(t, errors.UnsupportedConstruct, errs[0].Kind)
}
