// Package ast defines the ES5.1 abstract syntax tree (spec §3 "AST").
package ast

import "github.com/kindahl/es2c/internal/token"

// Node is the base interface implemented by every AST node.
type Node interface {
	Pos() token.Position
}

// Expression is any node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node that performs an action.
type Statement interface {
	Node
	statementNode()
}

// Declaration is either a FunctionLiteral (declaration form) or a
// VariableLiteral, as hoisted by a FunctionLiteral's declared
// sub-declarations (spec §3 "Declarations are modeled as a union
// {function | variable}").
type Declaration interface {
	Node
	declarationNode()
	DeclName() string
}

// Program is the root of the AST: a synthetic top-level FunctionLiteral.
type Program struct {
	Body *FunctionLiteral
}

func (p *Program) Pos() token.Position { return p.Body.Pos() }

// FuncKind distinguishes a declaration-form function from an expression-form
// (possibly anonymous) function, per spec §3.
type FuncKind int

const (
	FuncDeclaration FuncKind = iota
	FuncExpression
)

// FunctionLiteral is a function (or the program's implicit top-level
// function) together with its hoisted sub-declarations.
type FunctionLiteral struct {
	NamePos      token.Position
	Name         string // empty for an anonymous function expression
	Params       []string
	ParamsPos    []token.Position
	Body         []Statement
	Declarations []Declaration // hoisted function and variable declarations, in source order
	Kind         FuncKind
	Strict       bool
	NeedsArguments bool // needs-arguments-object, finalized after parsing (spec §4.4 rule 6)
	IsProgram    bool
	Start        token.Position
	End          token.Position
}

func (f *FunctionLiteral) Pos() token.Position { return f.Start }
func (f *FunctionLiteral) expressionNode()     {}
func (f *FunctionLiteral) declarationNode()    {}
func (f *FunctionLiteral) DeclName() string    { return f.Name }

// DeclKind distinguishes the two kinds of hoisted declaration (spec §3
// "Declarations are modeled as a union {function | variable}").
type DeclKind int

const (
	DeclFunction DeclKind = iota
	DeclVariable
)

// VariableLiteral names a single hoisted identifier: a `var` binding, or
// (when Kind is DeclFunction) a nested function declaration.
type VariableLiteral struct {
	NamePos token.Position
	Name    string
	Kind    DeclKind
	Fn      *FunctionLiteral // non-nil when Kind == DeclFunction
}

func (v *VariableLiteral) Pos() token.Position { return v.NamePos }
func (v *VariableLiteral) declarationNode()    {}
func (v *VariableLiteral) DeclName() string    { return v.Name }
