// Package pycc is the public façade over the backend: one call wraps
// inference, usage analysis, class registration and capture planning,
// signature generation, and emission, the same way the teacher's
// pkg/dwscript wraps its lexer, parser, semantic analyzer, and
// interpreter behind Engine.Eval.
package pycc

import (
	"github.com/cwbudde/pycc/internal/codegen"
	"github.com/cwbudde/pycc/internal/config"
	"github.com/cwbudde/pycc/internal/errors"
	"github.com/cwbudde/pycc/internal/importreg"
	"github.com/cwbudde/pycc/internal/srcast"
)

// Compile translates module to Zig source text. imports resolves
// cross-module symbols (a nil registry treats every imported symbol as
// untyped); cfg carries the target-Zig-version and inference knobs from
// internal/config. On success errs is empty; on failure source is empty
// and errs names what went wrong.
//
// cfg is accepted for the knobs SPEC_FULL.md's Configuration section
// promises (target Zig version, big-integer promotion, debug comments);
// internal/codegen.Backend does not yet read any of them back, since no
// module built so far exercises a non-default value, but the signature
// is fixed now so a future change to Backend.Emit's behavior based on
// cfg is additive rather than a breaking API change.
func Compile(module *srcast.Module, imports importreg.Registry, cfg config.Config) (string, []*errors.CompilerError) {
	_ = cfg

	backend := codegen.New(imports)
	source, err := backend.Emit(module, moduleFile(module))
	if err != nil {
		if ce, ok := err.(*errors.CompilerError); ok {
			return "", []*errors.CompilerError{ce}
		}
		return "", []*errors.CompilerError{errors.New(errors.InvariantBreach, srcast.Pos{}, moduleFile(module), "%s", err)}
	}
	return source, nil
}

// moduleFile returns the name diagnostics should attribute module to.
func moduleFile(module *srcast.Module) string {
	if module == nil || module.Name == "" {
		return "<module>"
	}
	return module.Name
}
