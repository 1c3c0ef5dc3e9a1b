// Package parser implements a recursive-descent parser for ECMA-262 5.1,
// producing the internal/ast tree consumed by internal/sema and
// internal/irbuild.
package parser

import (
	"fmt"

	"github.com/kindahl/es2c/internal/ast"
	"github.com/kindahl/es2c/internal/diag"
	"github.com/kindahl/es2c/internal/lexer"
	"github.com/kindahl/es2c/internal/token"
)

// Parser holds the mutable state of a single parse. A Parser is not
// reusable across sources; construct a fresh one per Parse call.
type Parser struct {
	lex    *lexer.Lexer
	file   string
	source string
	errs   *diag.List

	cur     token.Token
	curMark lexer.State
	peek    token.Token
	peekMark lexer.State

	strict bool // strictness of the function currently being parsed

	funcDepth   int
	iterDepth   int
	switchDepth int
	labels      map[string]bool // active labels in the current function, cleared per function
}

// Option configures a Parser constructed by New.
type Option func(*Parser)

// WithOctalEscapes enables legacy octal escape sequences in string literals
// (rejected outright in strict mode regardless of this option).
func WithOctalEscapes(enabled bool) Option {
	return func(p *Parser) {
		if enabled {
			p.lex = lexer.New([]byte(p.source), lexer.WithOctalEscapes(true))
		}
	}
}

// New constructs a Parser over source, attributing diagnostics to file.
func New(file string, source []byte, opts ...Option) *Parser {
	p := &Parser{
		file:   file,
		source: string(source),
		errs:   &diag.List{},
		labels: make(map[string]bool),
	}
	p.lex = lexer.New(source)
	for _, opt := range opts {
		opt(p)
	}
	p.primeTokens()
	return p
}

func (p *Parser) primeTokens() {
	p.curMark = p.lex.Mark()
	p.cur = p.lex.NextToken()
	p.peekMark = p.lex.Mark()
	p.peek = p.lex.NextToken()
}

// Parse runs a full parse and returns the resulting Program, or the
// accumulated diagnostics as an error if any statement failed to parse.
func Parse(file string, source []byte, opts ...Option) (*ast.Program, error) {
	p := New(file, source, opts...)
	prog := p.parseProgram()
	for _, le := range p.lex.Errors() {
		p.errs.Add(p.file, p.source, le.Pos, "%s", le.Message)
	}
	if p.errs.HasErrors() {
		return nil, p.errs
	}
	return prog, nil
}

func (p *Parser) addError(pos token.Position, format string, args ...interface{}) {
	p.errs.Add(p.file, p.source, pos, format, args...)
}

// advance discards the current token and pulls the next one from the
// lexer, keeping one token of lookahead in p.peek.
func (p *Parser) advance() {
	p.cur, p.curMark = p.peek, p.peekMark
	p.peekMark = p.lex.Mark()
	p.peek = p.lex.NextToken()
}

// relexRegex is called when a primary expression position holds a DIV or
// ASSIGN_DIV token that should instead have been lexed as a regex literal
// (spec §4.3: "regex re-lexing"). It rewinds the lexer to just before the
// misidentified token and rescans in regex-aware mode.
func (p *Parser) relexRegex() {
	p.lex.Reset(p.curMark)
	p.cur = p.lex.NextTokenRegexAware()
	p.peekMark = p.lex.Mark()
	p.peek = p.lex.NextToken()
}

func (p *Parser) at(k token.Kind) bool  { return p.cur.Kind == k }
func (p *Parser) peekAt(k token.Kind) bool { return p.peek.Kind == k }

// expect verifies the current token has kind k, reports an error
// otherwise, and always advances past it (error recovery: treat the
// missing token as present to keep the parse moving).
func (p *Parser) expect(k token.Kind) token.Token {
	tok := p.cur
	if tok.Kind != k {
		p.addError(tok.Pos, "expected %s, got %s", k, describe(tok))
	}
	p.advance()
	return tok
}

func describe(t token.Token) string {
	if t.Kind == token.IDENT || t.Kind == token.NUMBER || t.Kind == token.STRING {
		return fmt.Sprintf("%s %q", t.Kind, t.Literal)
	}
	return t.Kind.String()
}

// consumeSemicolon implements automatic semicolon insertion (ECMA-262 5.1
// §7.9): a semicolon is inserted before a token that violates the grammar
// if that token is preceded by a line terminator, is '}', or is EOF.
func (p *Parser) consumeSemicolon() {
	if p.at(token.SEMI) {
		p.advance()
		return
	}
	if p.at(token.RBRACE) || p.at(token.EOF) || p.cur.PrecededByLineTerminator {
		return
	}
	p.addError(p.cur.Pos, "expected ';', got %s", describe(p.cur))
}

// isIdentifierName reports whether tok can appear as an IdentifierName
// (property name after '.', label, object literal key): any IDENT or any
// keyword spelling, reserved or not. token.Kind's keyword range already
// spans ordinary, future-reserved, and future-strict-reserved words.
func isIdentifierName(tok token.Token) bool {
	return tok.Kind == token.IDENT || tok.IsKeyword()
}

func isFutureReserved(k token.Kind) bool {
	return k >= token.CLASS && k <= token.SUPER
}

// bindingName parses an identifier usable as a binding (variable name,
// function name, parameter, catch identifier, label): IDENT, or an
// unescaped future-strict-reserved spelling outside strict mode. Future-
// reserved words and "eval"/"arguments" in strict-mode-restricted
// positions are rejected by the caller, since the restriction differs by
// position (sema also re-validates catch/parameter duplicates).
func (p *Parser) bindingName() (string, token.Position, bool) {
	tok := p.cur
	switch {
	case tok.Kind == token.IDENT:
		p.advance()
		return tok.Literal, tok.Pos, true
	case token.FutureStrictReserved(tok.Kind):
		if p.strict {
			p.addError(tok.Pos, "'%s' is a reserved word in strict mode", tok.Literal)
		}
		p.advance()
		return tok.Literal, tok.Pos, true
	case isFutureReserved(tok.Kind):
		p.addError(tok.Pos, "'%s' is a reserved word", tok.Literal)
		p.advance()
		return tok.Literal, tok.Pos, false
	case tok.IsKeyword():
		p.addError(tok.Pos, "'%s' is a reserved word", tok.Literal)
		p.advance()
		return tok.Literal, tok.Pos, false
	default:
		p.addError(tok.Pos, "expected identifier, got %s", describe(tok))
		return "", tok.Pos, false
	}
}

// checkStrictBindingName re-validates a binding name already accepted by
// bindingName against the strict-mode restrictions on "eval" and
// "arguments" (ECMA-262 5.1 §10.1.1 / §11.1.5 / §13.1): they may be used
// loosely but never bound to (var, function/parameter name, catch id) in
// strict mode.
func (p *Parser) checkStrictBindingName(name string, pos token.Position) {
	if p.strict && (name == "eval" || name == "arguments") {
		p.addError(pos, "'%s' cannot be bound in strict mode", name)
	}
}
