// Package errors formats the four categories of backend error defined in
// spec.md §7, in the teacher's style: a CompilerError carries source
// position and a short message, and FormatErrors renders each diagnostic
// as a single header line (position, kind, message) for the CLI; the
// source line is not echoed and no caret is drawn.
package errors

import (
	"fmt"
	"strings"

	"github.com/cwbudde/pycc/internal/srcast"
	"github.com/fatih/color"
)

// Kind tags which of spec.md §7's four error categories a CompilerError
// belongs to.
type Kind int

const (
	// InvariantBreach is category 1: a table inconsistency or unexpected
	// AST shape. Fatal; aborts emission of the module.
	InvariantBreach Kind = iota
	// UnsupportedConstruct is category 2: a construct this backend cannot
	// produce sound target code for. No fallback is inlined: the emitter
	// returns the first one it meets and emission of the module stops, as
	// for the other kinds.
	UnsupportedConstruct
	// RenameCollision is category 3: two names forced to the same target
	// identifier, resolved by appending a disambiguator.
	RenameCollision
	// TypeAnnotationConflict is category 4: an explicit annotation
	// contradicts the inferred type. The annotation wins in the Type
	// Inferrer; no diagnostic of this kind is produced and no warning is
	// written into the generated code.
	TypeAnnotationConflict
)

func (k Kind) String() string {
	switch k {
	case InvariantBreach:
		return "invariant breach"
	case UnsupportedConstruct:
		return "unsupported construct"
	case RenameCollision:
		return "rename collision"
	case TypeAnnotationConflict:
		return "type annotation conflict"
	default:
		return "error"
	}
}

// Fatal reports whether errors of this kind are classed as fatal:
// everything except UnsupportedConstruct. The emitter itself stops at the
// first error of any kind.
func (k Kind) Fatal() bool { return k != UnsupportedConstruct }

// CompilerError is a single backend diagnostic.
type CompilerError struct {
	Kind    Kind
	Message string
	Pos     srcast.Pos
	File    string
}

// New constructs a CompilerError.
func New(kind Kind, pos srcast.Pos, file, format string, args ...interface{}) *CompilerError {
	return &CompilerError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
		File:    file,
	}
}

func (e *CompilerError) Error() string {
	return e.Format(false)
}

// Format renders the error with file:line:column context. When color is
// true, the kind label and header are rendered with fatih/color (in place
// of the teacher's hand-rolled ANSI escape sequences).
func (e *CompilerError) Format(useColor bool) string {
	var sb strings.Builder

	header := fmt.Sprintf("%s:%d:%d: %s", e.File, e.Pos.Line, e.Pos.Column, e.Kind)
	if useColor {
		bold := color.New(color.Bold)
		red := color.New(color.FgRed, color.Bold)
		if e.Kind.Fatal() {
			sb.WriteString(red.Sprint(header))
		} else {
			bold.Fprint(&sb, header)
		}
	} else {
		sb.WriteString(header)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	return sb.String()
}

// FormatErrors renders a list of diagnostics, one per line, matching the
// teacher's FormatErrors entry point shape.
func FormatErrors(errs []*CompilerError, useColor bool) string {
	var sb strings.Builder
	for _, e := range errs {
		sb.WriteString(e.Format(useColor))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// HasFatal reports whether any error in errs is fatal per Kind.Fatal.
func HasFatal(errs []*CompilerError) bool {
	for _, e := range errs {
		if e.Kind.Fatal() {
			return true
		}
	}
	return false
}
