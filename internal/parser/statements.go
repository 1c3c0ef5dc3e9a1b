package parser

import (
	"github.com/kindahl/es2c/internal/ast"
	"github.com/kindahl/es2c/internal/token"
)

// parseProgram parses an entire source file as the implicit top-level
// function (spec §3 "Program is... a synthetic top-level FunctionLiteral").
func (p *Parser) parseProgram() *ast.Program {
	fn := &ast.FunctionLiteral{Start: p.cur.Pos, Kind: ast.FuncDeclaration, IsProgram: true}
	p.funcDepth++
	savedLabels := p.labels
	p.labels = make(map[string]bool)
	fn.Body = p.parseStatementListWithDirectives(&fn.Strict, token.EOF)
	fn.End = p.cur.Pos
	collectHoistedDeclarations(fn)
	fn.NeedsArguments = usesArguments(fn.Body) && !shadowsArguments(fn)
	p.labels = savedLabels
	p.funcDepth--
	p.expect(token.EOF)
	return &ast.Program{Body: fn}
}

// parseStatementListWithDirectives parses statements up to (but not
// consuming) a token of kind stop, recognizing the leading directive
// prologue and setting *strict if a "use strict" directive is found
// there (spec §4.1 and §4.4 strict-mode detection).
func (p *Parser) parseStatementListWithDirectives(strict *bool, stop token.Kind) []ast.Statement {
	var body []ast.Statement
	inPrologue := true
	savedStrict := p.strict
	if savedStrict {
		// A function nested in strict-mode code is strict regardless of its
		// own directive prologue.
		*strict = true
	}
	for !p.at(stop) && !p.at(token.EOF) {
		if inPrologue && p.at(token.STRING) {
			lit := p.cur
			stmt := p.parseStatement()
			body = append(body, stmt)
			if es, ok := stmt.(*ast.ExpressionStatement); ok {
				if sl, ok := es.Expr.(*ast.StringLiteral); ok && sl.LitPos == lit.Pos {
					if sl.Value == "use strict" && !lit.ContainsEscape {
						*strict = true
						p.strict = true
					}
					continue
				}
			}
			inPrologue = false
			continue
		}
		inPrologue = false
		body = append(body, p.parseStatement())
	}
	p.strict = savedStrict
	return body
}

// parseStatement parses a single Statement.
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Kind {
	case token.LBRACE:
		return p.parseBlockStatement(nil)
	case token.VAR:
		return p.parseVarStatement()
	case token.SEMI:
		pos := p.cur.Pos
		p.advance()
		return &ast.EmptyStatement{SemiPos: pos}
	case token.IF:
		return p.parseIfStatement()
	case token.DO:
		return p.parseDoWhileStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.CONTINUE:
		return p.parseContinueStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.WITH:
		return p.parseWithStatement()
	case token.SWITCH:
		return p.parseSwitchStatement()
	case token.THROW:
		return p.parseThrowStatement()
	case token.TRY:
		return p.parseTryStatement()
	case token.DEBUGGER:
		pos := p.cur.Pos
		p.advance()
		p.consumeSemicolon()
		return &ast.DebuggerStatement{KwPos: pos}
	case token.FUNCTION:
		if p.strict {
			p.addError(p.cur.Pos, "function declarations are not allowed here in strict mode")
		}
		fn := p.parseFunction(ast.FuncDeclaration)
		return &ast.FunctionDeclStatement{Fn: fn}
	case token.IDENT:
		if p.peekAt(token.COLON) {
			return p.parseLabeledStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	expr := p.parseExpression(false)
	p.consumeSemicolon()
	return &ast.ExpressionStatement{Expr: expr}
}

func (p *Parser) parseBlockStatement(labels []string) *ast.BlockStatement {
	pos := p.cur.Pos
	p.expect(token.LBRACE)
	var body []ast.Statement
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		body = append(body, p.parseStatement())
	}
	p.expect(token.RBRACE)
	return &ast.BlockStatement{LBrace: pos, Body: body, Labels: labels}
}

func (p *Parser) parseVarStatement() ast.Statement {
	pos := p.cur.Pos
	p.advance()
	stmt := &ast.VarStatement{VarPos: pos}
	stmt.Decls = p.parseVarDeclaratorList(false)
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseVarDeclaratorList(noIn bool) []ast.VarDeclarator {
	var decls []ast.VarDeclarator
	for {
		name, namePos, ok := p.bindingName()
		if ok {
			p.checkStrictBindingName(name, namePos)
		}
		var init ast.Expression
		if p.at(token.ASSIGN) {
			p.advance()
			init = p.parseAssignmentExpression(noIn)
		}
		decls = append(decls, ast.VarDeclarator{Name: name, NamePos: namePos, Init: init})
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return decls
}

func (p *Parser) parseIfStatement() ast.Statement {
	pos := p.cur.Pos
	p.advance()
	p.expect(token.LPAREN)
	cond := p.parseExpression(false)
	p.expect(token.RPAREN)
	then := p.parseStatement()
	var elseStmt ast.Statement
	if p.at(token.ELSE) {
		p.advance()
		elseStmt = p.parseStatement()
	}
	return &ast.IfStatement{IfPos: pos, Condition: cond, Then: then, Else: elseStmt}
}

func (p *Parser) parseDoWhileStatement() ast.Statement {
	pos := p.cur.Pos
	p.advance()
	p.iterDepth++
	body := p.parseStatement()
	p.iterDepth--
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpression(false)
	p.expect(token.RPAREN)
	if p.at(token.SEMI) {
		p.advance()
	}
	return &ast.DoWhileStatement{DoPos: pos, Body: body, Condition: cond}
}

func (p *Parser) parseWhileStatement() ast.Statement {
	pos := p.cur.Pos
	p.advance()
	p.expect(token.LPAREN)
	cond := p.parseExpression(false)
	p.expect(token.RPAREN)
	p.iterDepth++
	body := p.parseStatement()
	p.iterDepth--
	return &ast.WhileStatement{WhilePos: pos, Condition: cond, Body: body}
}

// parseForStatement disambiguates the four for-head shapes: classic
// for(init;cond;update), for(var ... in obj), for(lhs in obj), and a bare
// for(;;) (spec §4.4 "for-head disambiguation").
func (p *Parser) parseForStatement() ast.Statement {
	pos := p.cur.Pos
	p.advance()
	p.expect(token.LPAREN)

	if p.at(token.VAR) {
		varPos := p.cur.Pos
		p.advance()
		first := p.parseVarDeclaratorList(true)
		if p.at(token.IN) && len(first) == 1 && first[0].Init == nil {
			p.advance()
			obj := p.parseExpression(false)
			p.expect(token.RPAREN)
			p.iterDepth++
			body := p.parseStatement()
			p.iterDepth--
			target := &ast.VarStatement{VarPos: varPos, Decls: first}
			return &ast.ForInStatement{ForPos: pos, Target: target, Object: obj, Body: body}
		}
		// Not for-in: there may be further comma-separated declarators that
		// parseVarDeclaratorList already consumed only the noIn-safe prefix
		// of when it stopped at "in"; reparse is unnecessary since "in" is
		// suppressed throughout a noIn declarator list.
		init := &ast.VarStatement{VarPos: varPos, Decls: first}
		return p.finishClassicFor(pos, init)
	}

	if p.at(token.SEMI) {
		return p.finishClassicFor(pos, nil)
	}

	expr := p.parseExpression(true)
	if p.at(token.IN) && isLHS(expr) {
		p.advance()
		obj := p.parseExpression(false)
		p.expect(token.RPAREN)
		p.iterDepth++
		body := p.parseStatement()
		p.iterDepth--
		return &ast.ForInStatement{ForPos: pos, Target: expr, Object: obj, Body: body}
	}
	init := &ast.ExpressionStatement{Expr: expr}
	return p.finishClassicFor(pos, init)
}

func (p *Parser) finishClassicFor(pos token.Position, init ast.Statement) ast.Statement {
	p.expect(token.SEMI)
	var cond ast.Expression
	if !p.at(token.SEMI) {
		cond = p.parseExpression(false)
	}
	p.expect(token.SEMI)
	var update ast.Expression
	if !p.at(token.RPAREN) {
		update = p.parseExpression(false)
	}
	p.expect(token.RPAREN)
	p.iterDepth++
	body := p.parseStatement()
	p.iterDepth--
	return &ast.ForStatement{ForPos: pos, Init: init, Condition: cond, Update: update, Body: body}
}

func (p *Parser) parseContinueStatement() ast.Statement {
	pos := p.cur.Pos
	p.advance()
	stmt := &ast.ContinueStatement{KwPos: pos}
	if p.cur.Kind == token.IDENT && !p.cur.PrecededByLineTerminator {
		stmt.Label = p.cur.Literal
		if !p.labels[stmt.Label] {
			p.addError(p.cur.Pos, "undefined label %q", stmt.Label)
		}
		p.advance()
	} else if p.iterDepth == 0 {
		p.addError(pos, "'continue' outside of an iteration statement")
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseBreakStatement() ast.Statement {
	pos := p.cur.Pos
	p.advance()
	stmt := &ast.BreakStatement{KwPos: pos}
	if p.cur.Kind == token.IDENT && !p.cur.PrecededByLineTerminator {
		stmt.Label = p.cur.Literal
		if !p.labels[stmt.Label] {
			p.addError(p.cur.Pos, "undefined label %q", stmt.Label)
		}
		p.advance()
	} else if p.iterDepth == 0 && p.switchDepth == 0 {
		p.addError(pos, "'break' outside of an iteration or switch statement")
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	pos := p.cur.Pos
	p.advance()
	if p.funcDepth == 0 {
		p.addError(pos, "'return' outside of a function")
	}
	stmt := &ast.ReturnStatement{KwPos: pos}
	if !p.at(token.SEMI) && !p.at(token.RBRACE) && !p.at(token.EOF) && !p.cur.PrecededByLineTerminator {
		stmt.Value = p.parseExpression(false)
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseWithStatement() ast.Statement {
	pos := p.cur.Pos
	if p.strict {
		p.addError(pos, "'with' statements are not allowed in strict mode")
	}
	p.advance()
	p.expect(token.LPAREN)
	obj := p.parseExpression(false)
	p.expect(token.RPAREN)
	body := p.parseStatement()
	return &ast.WithStatement{WithPos: pos, Object: obj, Body: body}
}

func (p *Parser) parseSwitchStatement() ast.Statement {
	pos := p.cur.Pos
	p.advance()
	p.expect(token.LPAREN)
	disc := p.parseExpression(false)
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)

	p.switchDepth++
	var cases []ast.SwitchCase
	seenDefault := false
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		casePos := p.cur.Pos
		var test ast.Expression
		if p.at(token.CASE) {
			p.advance()
			test = p.parseExpression(false)
		} else {
			p.expect(token.DEFAULT)
			if seenDefault {
				p.addError(casePos, "a switch statement may have at most one default clause")
			}
			seenDefault = true
		}
		p.expect(token.COLON)
		var body []ast.Statement
		for !p.at(token.CASE) && !p.at(token.DEFAULT) && !p.at(token.RBRACE) && !p.at(token.EOF) {
			body = append(body, p.parseStatement())
		}
		cases = append(cases, ast.SwitchCase{CasePos: casePos, Test: test, Body: body})
	}
	p.switchDepth--
	p.expect(token.RBRACE)
	return &ast.SwitchStatement{SwitchPos: pos, Discriminant: disc, Cases: cases}
}

func (p *Parser) parseThrowStatement() ast.Statement {
	pos := p.cur.Pos
	p.advance()
	if p.cur.PrecededByLineTerminator {
		p.addError(pos, "no line break is allowed between 'throw' and its expression")
	}
	value := p.parseExpression(false)
	p.consumeSemicolon()
	return &ast.ThrowStatement{KwPos: pos, Value: value}
}

func (p *Parser) parseTryStatement() ast.Statement {
	pos := p.cur.Pos
	p.advance()
	block := p.parseBlockStatement(nil)
	stmt := &ast.TryStatement{TryPos: pos, Block: block}
	if p.at(token.CATCH) {
		p.advance()
		p.expect(token.LPAREN)
		name, namePos, ok := p.bindingName()
		if ok {
			p.checkStrictBindingName(name, namePos)
		}
		p.expect(token.RPAREN)
		stmt.CatchID = name
		stmt.Catch = p.parseBlockStatement(nil)
	}
	if p.at(token.FINALLY) {
		p.advance()
		stmt.Finally = p.parseBlockStatement(nil)
	}
	if stmt.Catch == nil && stmt.Finally == nil {
		p.addError(pos, "missing catch or finally after try")
	}
	return stmt
}

// parseLabeledStatement handles "Identifier ':' Statement", wrapping the
// statement in one LabeledStatement for this label (adjacent labels nest
// rather than accumulate onto one node), and threading the label into
// p.labels so nested break/continue can validate against it.
func (p *Parser) parseLabeledStatement() ast.Statement {
	label := p.cur.Literal
	labelPos := p.cur.Pos
	if p.labels[label] {
		p.addError(labelPos, "label %q has already been declared", label)
	}
	p.advance() // identifier
	p.advance() // ':'
	p.labels[label] = true
	body := p.parseStatement()
	delete(p.labels, label)
	return &ast.LabeledStatement{Label: label, LabelPos: labelPos, Body: body}
}
