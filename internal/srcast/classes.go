package srcast

func (*ClassDef) statementNode() {}

// ClassDef is a `class`, top-level or nested inside a function body (in
// which case it is a capture candidate for component C, the Class
// Registry & Capture Planner).
type ClassDef struct {
	Name       string
	Bases      []string
	Decorators []string
	Body       []Statement
	PosV       Pos
}

func (c *ClassDef) Pos() Pos       { return c.PosV }
func (c *ClassDef) String() string { return "class " + c.Name }

// Methods returns the FunctionDef children of the class body, in source
// order, matching the order the Class Registry & Capture Planner walks
// them (spec.md §4.C "state machine: class emission").
func (c *ClassDef) Methods() []*FunctionDef {
	var out []*FunctionDef
	for _, stmt := range c.Body {
		if fn, ok := stmt.(*FunctionDef); ok {
			out = append(out, fn)
		}
	}
	return out
}

// NestedClasses returns the ClassDef children of the class body, in
// source order.
func (c *ClassDef) NestedClasses() []*ClassDef {
	var out []*ClassDef
	for _, stmt := range c.Body {
		if cd, ok := stmt.(*ClassDef); ok {
			out = append(out, cd)
		}
	}
	return out
}

// ClassLevelAssigns returns the direct class-body assignments used for
// class-variable (as opposed to instance-field) field promotion.
func (c *ClassDef) ClassLevelAssigns() []*Assign {
	var out []*Assign
	for _, stmt := range c.Body {
		if a, ok := stmt.(*Assign); ok {
			out = append(out, a)
		}
	}
	return out
}
