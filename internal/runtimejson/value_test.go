package runtimejson

import (
	"testing"

	"github.com/cwbudde/pycc/internal/srcast"
	"github.com/stretchr/testify/require"
)

func TestParseMarshalPreservesKeyOrder(t *testing.T) {
	text := `{"x":[1,2,3]}`

	v, err := Parse([]byte(text))
	require.NoError(t, err)
	require.Equal(t, KindObject, v.Kind())
	require.Equal(t, []string{"x"}, v.ObjectKeys())

	arr := v.ObjectGet("x")
	require.Equal(t, KindArray, arr.Kind())
	require.Equal(t, 3, arr.ArrayLen())

	out, err := Marshal(v)
	require.NoError(t, err)
	require.JSONEq(t, text, string(out))
}

// TestFoldLoadsDumpsRoundTrip covers spec.md §8.6: json.dumps(json.loads(...))
// on a literal string argument must fold, at compile time, to text that
// reproduces the original structure (key/value preserved, array length 3).
func TestFoldLoadsDumpsRoundTrip(t *testing.T) {
	loadsCall := &srcast.Call{
		Func: &srcast.Attribute{Value: &srcast.Name{Ident: "json"}, Attr: "loads"},
		Args: []srcast.Expression{&srcast.StringLit{Value: `{"x":[1,2,3]}`}},
	}

	loaded, ok := FoldLoadsCall(loadsCall)
	require.True(t, ok)
	require.Equal(t, 3, loaded.ObjectGet("x").ArrayLen())

	dumpsCall := &srcast.Call{
		Func: &srcast.Attribute{Value: &srcast.Name{Ident: "json"}, Attr: "dumps"},
		Args: []srcast.Expression{loadsCall},
	}
	argValue := func(e srcast.Expression) (*Value, bool) {
		if c, ok := e.(*srcast.Call); ok {
			return FoldLoadsCall(c)
		}
		return nil, false
	}

	text, ok := FoldDumpsCall(dumpsCall, argValue)
	require.True(t, ok)
	require.JSONEq(t, `{"x":[1,2,3]}`, text)

	reparsed, err := Parse([]byte(text))
	require.NoError(t, err)
	require.True(t, reparsed.Equal(loaded))
}

func TestZigLiteralRendersPyvalueConstructors(t *testing.T) {
	obj := NewObject()
	obj.ObjectSet("x", NewInt(1))

	got := ZigLiteral(obj)
	require.Equal(t, `pyvalue.newObject(&.{.{"x", pyvalue.fromInt(1)}})`, got)
}

func TestFoldLoadsRejectsNonLiteralArgument(t *testing.T) {
	call := &srcast.Call{
		Func: &srcast.Attribute{Value: &srcast.Name{Ident: "json"}, Attr: "loads"},
		Args: []srcast.Expression{&srcast.Name{Ident: "raw_text"}},
	}
	_, ok := FoldLoadsCall(call)
	require.False(t, ok)
}
