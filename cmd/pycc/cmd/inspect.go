package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/cwbudde/pycc/internal/astjson"
	"github.com/cwbudde/pycc/internal/codegen"
	"github.com/cwbudde/pycc/internal/nativetype"
	"github.com/cwbudde/pycc/internal/siggen"
	"github.com/cwbudde/pycc/internal/srcast"
	"github.com/cwbudde/pycc/internal/usage"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Dump inferred types and usage traits for a module",
	Long: `Inspect runs type inference, usage analysis, class/capture
planning, and signature generation over a JSON AST and prints the
resulting tables, the way the teacher's --dump-ast flag surfaces its
parsed tree for debugging. It never emits Zig source.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&importsSidecar, "imports", "", "path to a JSON import-registry sidecar file")
}

func runInspect(_ *cobra.Command, args []string) error {
	filename := args[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	module, err := astjson.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("failed to parse AST in %s: %w", filename, err)
	}

	imports, err := loadImports(importsSidecar)
	if err != nil {
		return err
	}

	backend := codegen.New(imports)
	analysis := backend.Analyze(module)

	var sb strings.Builder
	writeFunctionReturns(&sb, analysis)
	writeClassFields(&sb, analysis)
	writeSignatures(&sb, analysis)
	writeUsage(&sb, analysis)

	fmt.Print(sb.String())
	return nil
}

func writeFunctionReturns(sb *strings.Builder, a *codegen.Analysis) {
	sb.WriteString("== inferred return types ==\n")
	for _, fn := range allFuncs(a) {
		rt := a.Infer.FuncReturnTypes[fn]
		fmt.Fprintf(sb, "  %s -> %s\n", fn.Name, rt.String())
	}
	sb.WriteString("\n")
}

func writeClassFields(sb *strings.Builder, a *codegen.Analysis) {
	sb.WriteString("== class fields ==\n")
	for _, cls := range a.TopClasses {
		fmt.Fprintf(sb, "  class %s\n", cls.Name)
		fields := a.Infer.ClassFieldsOf[cls]
		if fields == nil {
			continue
		}
		for _, name := range sortedKeys(fields.Fields) {
			fmt.Fprintf(sb, "    %s: %s\n", name, fields.Fields[name].String())
		}
	}
	sb.WriteString("\n")
}

func writeSignatures(sb *strings.Builder, a *codegen.Analysis) {
	sb.WriteString("== signatures ==\n")
	for _, fn := range allFuncs(a) {
		t := a.Traits[fn]
		if t == nil {
			continue
		}
		fmt.Fprintf(sb, "  %s -> %s(%s) %s\n", t.SourceName, t.TargetName, formatParams(t), formatReturn(t))
	}
	sb.WriteString("\n")
}

func formatParams(t *siggen.FunctionTraits) string {
	parts := make([]string, 0, len(t.Params))
	for _, p := range t.Params {
		parts = append(parts, fmt.Sprintf("%s: %s", p.TargetName, p.Type.String()))
	}
	if t.Vararg != nil {
		parts = append(parts, fmt.Sprintf("*%s: %s", t.Vararg.TargetName, t.Vararg.Type.String()))
	}
	if t.Kwarg != nil {
		parts = append(parts, fmt.Sprintf("**%s: %s", t.Kwarg.TargetName, t.Kwarg.Type.String()))
	}
	return strings.Join(parts, ", ")
}

func formatReturn(t *siggen.FunctionTraits) string {
	if t.IsVoid {
		if t.ReturnsError {
			return "!void"
		}
		return "void"
	}
	if t.ReturnsError {
		return "!" + t.ReturnType.String()
	}
	return t.ReturnType.String()
}

func writeUsage(sb *strings.Builder, a *codegen.Analysis) {
	sb.WriteString("== usage traits ==\n")
	keys := make([]usage.Key, 0, len(a.Usage.Info))
	for k := range a.Usage.Info {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })
	for _, k := range keys {
		fmt.Fprintf(sb, "  %s: %s\n", k.Name, formatUsageInfo(a.Usage.Info[k]))
	}
}

func formatUsageInfo(info *usage.Info) string {
	var traits []string
	add := func(name string, on bool) {
		if on {
			traits = append(traits, name)
		}
	}
	add("captured", info.Captured)
	add("mutated", info.Mutated)
	add("used-as-callable", info.UsedAsCallable)
	add("used-as-iterator", info.UsedAsIterator)
	add("used-in-type-check", info.UsedInTypeCheck)
	add("compared-to-string-literal", info.ComparedToStringLiteral)
	add("shadows-module-func", info.ShadowsModuleFunc)
	add("shadows-import", info.ShadowsImport)
	add("shadows-class-method", info.ShadowsClassMethod)
	if len(traits) == 0 {
		return "(none)"
	}
	return strings.Join(traits, ", ")
}

func allFuncs(a *codegen.Analysis) []*srcast.FunctionDef {
	all := make([]*srcast.FunctionDef, 0, len(a.TopFuncs))
	all = append(all, a.TopFuncs...)
	for _, cls := range a.TopClasses {
		all = append(all, cls.Methods()...)
	}
	return all
}

func sortedKeys(m map[string]nativetype.NativeType) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
