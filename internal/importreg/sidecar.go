package importreg

import (
	"encoding/json"
	"fmt"

	"github.com/cwbudde/pycc/internal/nativetype"
)

// sidecarFile is the on-disk shape of the JSON import registry file
// cmd/pycc's compile subcommand loads with --imports. It only expresses
// the coarse, scalar-first subset of NativeType a cross-module hint
// realistically carries (spec.md §6 calls import-registry facts "coarse");
// a hint needing a richer shape (nested containers, closures) can still
// name "pyvalue" and let the Type Inferrer fall back to its untyped path.
type sidecarFile struct {
	Functions []sidecarFunction `json:"functions"`
	Modules   []sidecarModule   `json:"modules"`
	Skipped   []string          `json:"skipped"`
}

type sidecarFunction struct {
	Module       string `json:"module"`
	Symbol       string `json:"symbol"`
	ReturnType   string `json:"returnType"`
	NeedsAlloc   bool   `json:"needsAlloc"`
	ReturnsError bool   `json:"returnsError"`
	IsVoid       bool   `json:"isVoid"`
}

type sidecarModule struct {
	Module string `json:"module"`
	Name   string `json:"name"`
}

// LoadStatic parses a JSON sidecar file into a StaticRegistry.
func LoadStatic(data []byte) (*StaticRegistry, error) {
	var file sidecarFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("importreg: %w", err)
	}

	reg := NewStaticRegistry()
	for _, fn := range file.Functions {
		rt, err := parseScalarType(fn.ReturnType)
		if err != nil {
			return nil, fmt.Errorf("importreg: %s.%s: %w", fn.Module, fn.Symbol, err)
		}
		reg.AddFunction(fn.Module, fn.Symbol, FunctionMeta{
			ReturnType:   rt,
			NeedsAlloc:   fn.NeedsAlloc,
			ReturnsError: fn.ReturnsError,
			IsVoid:       fn.IsVoid,
		})
	}
	for _, mod := range file.Modules {
		reg.AddModule(mod.Module, ModuleMeta{Name: mod.Name})
	}
	for _, name := range file.Skipped {
		reg.MarkSkipped(name)
	}
	return reg, nil
}

// parseScalarType recognizes the scalar NativeType kinds a sidecar file
// can name directly; an empty name or "unknown" resolves to Unknown, the
// Type Inferrer's untyped fallback (spec.md §9 Open Question 3), and any
// other unrecognized name is an error.
func parseScalarType(name string) (nativetype.NativeType, error) {
	switch name {
	case "", "unknown":
		return nativetype.NativeType{Kind: nativetype.Unknown}, nil
	case "int":
		return nativetype.NativeType{Kind: nativetype.Int}, nil
	case "bigint":
		return nativetype.NativeType{Kind: nativetype.BigInt}, nil
	case "float":
		return nativetype.NativeType{Kind: nativetype.Float}, nil
	case "bool":
		return nativetype.NativeType{Kind: nativetype.Bool}, nil
	case "none":
		return nativetype.NativeType{Kind: nativetype.None}, nil
	case "str":
		return nativetype.NativeType{Kind: nativetype.String}, nil
	case "bytes":
		return nativetype.NativeType{Kind: nativetype.Bytes}, nil
	case "pyvalue":
		return nativetype.NativeType{Kind: nativetype.PyValue}, nil
	default:
		return nativetype.NativeType{}, fmt.Errorf("unrecognized sidecar return type %q", name)
	}
}
