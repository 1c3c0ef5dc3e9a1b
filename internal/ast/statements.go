package ast

import "github.com/kindahl/es2c/internal/token"

// EmptyStatement is a bare `;`.
type EmptyStatement struct{ SemiPos token.Position }

func (e *EmptyStatement) Pos() token.Position { return e.SemiPos }
func (e *EmptyStatement) statementNode()      {}

// ExpressionStatement is an expression used as a statement.
type ExpressionStatement struct {
	Expr Expression
}

func (e *ExpressionStatement) Pos() token.Position { return e.Expr.Pos() }
func (e *ExpressionStatement) statementNode()      {}

// DebuggerStatement is the `debugger;` statement.
type DebuggerStatement struct{ KwPos token.Position }

func (d *DebuggerStatement) Pos() token.Position { return d.KwPos }
func (d *DebuggerStatement) statementNode()      {}

// BlockStatement is `{ ... }`, optionally carrying the labels attached to
// it (spec §3 "block (labeled)").
type BlockStatement struct {
	LBrace token.Position
	Body   []Statement
	Labels []string
}

func (b *BlockStatement) Pos() token.Position { return b.LBrace }
func (b *BlockStatement) statementNode()      {}

// VarDeclarator is one `name` or `name = init` entry of a `var` statement.
type VarDeclarator struct {
	NamePos token.Position
	Name    string
	Init    Expression // nil if no initializer
}

// VarStatement is a `var` declaration statement.
type VarStatement struct {
	VarPos token.Position
	Decls  []VarDeclarator
}

func (v *VarStatement) Pos() token.Position { return v.VarPos }
func (v *VarStatement) statementNode()      {}

// FunctionDeclStatement wraps a FunctionLiteral appearing directly in a
// statement position: ordinary top-level function declarations, and (as a
// de facto, feature-gated extension, spec §6) nested function declarations
// inside a block in non-strict mode.
type FunctionDeclStatement struct {
	Fn *FunctionLiteral
}

func (f *FunctionDeclStatement) Pos() token.Position { return f.Fn.Pos() }
func (f *FunctionDeclStatement) statementNode()      {}

// IfStatement is `if (cond) then [else else]`.
type IfStatement struct {
	IfPos     token.Position
	Condition Expression
	Then      Statement
	Else      Statement // nil if absent
}

func (i *IfStatement) Pos() token.Position { return i.IfPos }
func (i *IfStatement) statementNode()      {}

// DoWhileStatement is `do body while (cond);`.
type DoWhileStatement struct {
	DoPos     token.Position
	Body      Statement
	Condition Expression
}

func (d *DoWhileStatement) Pos() token.Position { return d.DoPos }
func (d *DoWhileStatement) statementNode()      {}

// WhileStatement is `while (cond) body`.
type WhileStatement struct {
	WhilePos  token.Position
	Condition Expression
	Body      Statement
}

func (w *WhileStatement) Pos() token.Position { return w.WhilePos }
func (w *WhileStatement) statementNode()      {}

// ForStatement is the C-style `for (init; cond; update) body`. Init may be
// a *VarStatement or an Expression wrapped in ExpressionStatement, or nil.
type ForStatement struct {
	ForPos    token.Position
	Init      Statement // *VarStatement, *ExpressionStatement, or nil
	Condition Expression
	Update    Expression
	Body      Statement
}

func (f *ForStatement) Pos() token.Position { return f.ForPos }
func (f *ForStatement) statementNode()      {}

// ForInStatement is `for (lhs in obj) body`. Target is either a
// *VarStatement with exactly one declarator, or a left-hand-side
// Expression.
type ForInStatement struct {
	ForPos token.Position
	Target Node // *VarStatement or Expression
	Object Expression
	Body   Statement
}

func (f *ForInStatement) Pos() token.Position { return f.ForPos }
func (f *ForInStatement) statementNode()      {}

// ContinueStatement is `continue [label];`.
type ContinueStatement struct {
	KwPos token.Position
	Label string // empty if absent
}

func (c *ContinueStatement) Pos() token.Position { return c.KwPos }
func (c *ContinueStatement) statementNode()      {}

// BreakStatement is `break [label];`.
type BreakStatement struct {
	KwPos token.Position
	Label string // empty if absent
}

func (b *BreakStatement) Pos() token.Position { return b.KwPos }
func (b *BreakStatement) statementNode()      {}

// ReturnStatement is `return [expr];`.
type ReturnStatement struct {
	KwPos token.Position
	Value Expression // nil if absent
}

func (r *ReturnStatement) Pos() token.Position { return r.KwPos }
func (r *ReturnStatement) statementNode()      {}

// WithStatement is `with (object) body`.
type WithStatement struct {
	WithPos token.Position
	Object  Expression
	Body    Statement
}

func (w *WithStatement) Pos() token.Position { return w.WithPos }
func (w *WithStatement) statementNode()      {}

// SwitchCase is one `case expr:` (or, when Test == nil, the single `default:`)
// clause, with its consequent statements.
type SwitchCase struct {
	CasePos token.Position
	Test    Expression // nil for the default clause
	Body    []Statement
}

// SwitchStatement is `switch (disc) { case ... default: ... }`. At most one
// clause in Cases has Test == nil (the default).
type SwitchStatement struct {
	SwitchPos  token.Position
	Discriminant Expression
	Cases      []SwitchCase
}

func (s *SwitchStatement) Pos() token.Position { return s.SwitchPos }
func (s *SwitchStatement) statementNode()      {}

// ThrowStatement is `throw expr;`.
type ThrowStatement struct {
	KwPos token.Position
	Value Expression
}

func (t *ThrowStatement) Pos() token.Position { return t.KwPos }
func (t *ThrowStatement) statementNode()      {}

// TryStatement is `try {...} [catch (id) {...}] [finally {...}]`; at least
// one of Catch/Finally is non-nil.
type TryStatement struct {
	TryPos  token.Position
	Block   *BlockStatement
	CatchID string // empty if no catch clause
	Catch   *BlockStatement
	Finally *BlockStatement
}

func (t *TryStatement) Pos() token.Position { return t.TryPos }
func (t *TryStatement) statementNode()      {}

// LabeledStatement attaches exactly one label to a statement. Adjacent
// labels (`a: b: stmt`) become nested LabeledStatements, one per label;
// a single node does not carry a list of labels.
type LabeledStatement struct {
	Label string
	LabelPos token.Position
	Body  Statement
}

func (l *LabeledStatement) Pos() token.Position { return l.LabelPos }
func (l *LabeledStatement) statementNode()      {}
