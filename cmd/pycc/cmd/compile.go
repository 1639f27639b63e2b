package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/pycc/internal/astjson"
	"github.com/cwbudde/pycc/internal/errors"
	"github.com/cwbudde/pycc/internal/importreg"
	"github.com/cwbudde/pycc/pkg/pycc"
	"github.com/spf13/cobra"
)

var (
	outputFile     string
	importsSidecar string
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a JSON AST to Zig source",
	Long: `Compile reads a JSON-serialized module AST and emits Zig source text.

The AST is produced by an external, out-of-repo parser for the source
language; this command only performs the translation, not lexing or
parsing.

Examples:
  # Compile an AST file to Zig, writing <input>.zig
  pycc compile module.json

  # Compile with cross-module type hints
  pycc compile module.json --imports hints.json -o module.zig`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: <input>.zig)")
	compileCmd.Flags().StringVar(&importsSidecar, "imports", "", "path to a JSON import-registry sidecar file")
}

func runCompile(cmd *cobra.Command, args []string) error {
	filename := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

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

	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", filename)
	}

	source, errs := pycc.Compile(module, imports, cfg)
	if len(errs) > 0 {
		fmt.Fprint(os.Stderr, errors.FormatErrors(errs, true))
		return fmt.Errorf("compilation failed with %d error(s)", len(errs))
	}

	outFile := outputFile
	if outFile == "" {
		outFile = defaultOutputName(filename)
	}

	if err := os.WriteFile(outFile, []byte(source), 0o644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outFile, err)
	}

	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "Zig source written to %s (%d bytes)\n", outFile, len(source))
	} else {
		fmt.Printf("Compiled %s -> %s\n", filename, outFile)
	}
	return nil
}

func defaultOutputName(filename string) string {
	ext := filepath.Ext(filename)
	if ext != "" {
		return strings.TrimSuffix(filename, ext) + ".zig"
	}
	return filename + ".zig"
}

func loadImports(path string) (importreg.Registry, error) {
	if path == "" {
		return importreg.NewStaticRegistry(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import registry %s: %w", path, err)
	}
	reg, err := importreg.LoadStatic(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse import registry %s: %w", path, err)
	}
	return reg, nil
}
