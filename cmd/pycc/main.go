// Command pycc compiles a Python-shaped AST to Zig source text.
package main

import (
	"os"

	"github.com/cwbudde/pycc/cmd/pycc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
