// Package srcast defines the Abstract Syntax Tree node types for the
// dynamically-typed source language consumed by the translation backend.
//
// The backend's contract (spec.md §1) treats the lexer, parser, and AST
// shape as external collaborators; this package exists only so the
// backend's components have a concrete Go type to switch on and so tests
// can build trees directly, the way the teacher's own semantic/codegen
// tests build ast.* trees by hand rather than through its parser.
package srcast

// Pos is a source position, used only for diagnostics.
type Pos struct {
	Line   int
	Column int
}

// Node is the base interface implemented by every AST node.
type Node interface {
	Pos() Pos
	String() string
}

// Expression is any node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node that performs an action without itself producing a
// value (though spec.md §4.E's discard policy governs expression
// statements whose underlying expression is non-void).
type Statement interface {
	Node
	statementNode()
}

// Module is the root node: the AST of one source-language module, the
// backend's top-level unit of compilation (spec.md §1).
type Module struct {
	Name string
	Body []Statement
	PosV Pos
}

func (m *Module) Pos() Pos       { return m.PosV }
func (m *Module) String() string { return "<module " + m.Name + ">" }
