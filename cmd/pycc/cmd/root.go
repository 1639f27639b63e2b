package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configPath      string
	zigTarget       string
	bigIntPromotion bool
	debugComments   bool
	verbose         bool
)

var rootCmd = &cobra.Command{
	Use:   "pycc",
	Short: "Ahead-of-time compiler from a Python-shaped AST to Zig",
	Long: `pycc translates a dynamically-typed, Python-shaped source AST into
Zig source text.

It does not lex or parse: compile reads an already-parsed module as a JSON
AST (produced by an external, out-of-repo parser) and emits the Zig
translation that type inference, usage analysis, class/capture planning,
and signature generation together determine is sound.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a pycc.yaml project config file")
	rootCmd.PersistentFlags().StringVar(&zigTarget, "zig-target", "", "target Zig version tag (default: 0.13.0)")
	rootCmd.PersistentFlags().BoolVar(&bigIntPromotion, "big-int-promotion", true, "widen overflowing integer literals to a big-integer type")
	rootCmd.PersistentFlags().BoolVar(&debugComments, "debug-comments", false, "annotate emitted code with inference-decision comments")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
