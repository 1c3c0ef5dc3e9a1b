package parser

import (
	"github.com/kindahl/es2c/internal/ast"
	"github.com/kindahl/es2c/internal/token"
)

// parseFunction parses "function Identifier? ( FormalParameterList? ) {
// FunctionBody }". kind distinguishes a declaration (name mandatory) from
// an expression (name optional).
func (p *Parser) parseFunction(kind ast.FuncKind) *ast.FunctionLiteral {
	start := p.cur.Pos
	p.advance() // 'function'

	fn := &ast.FunctionLiteral{Start: start, Kind: kind}
	if kind == ast.FuncDeclaration || p.cur.Kind == token.IDENT || token.FutureStrictReserved(p.cur.Kind) {
		if p.cur.Kind != token.LPAREN {
			name, namePos, ok := p.bindingName()
			if ok {
				fn.Name = name
				fn.NamePos = namePos
				p.checkStrictBindingName(name, namePos)
			}
		}
	}

	p.parseParameterList(fn)
	p.parseFunctionBody(fn)
	return fn
}

func (p *Parser) parseParameterList(fn *ast.FunctionLiteral) {
	p.expect(token.LPAREN)
	seen := map[string]bool{}
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		name, pos, ok := p.bindingName()
		if ok {
			p.checkStrictBindingName(name, pos)
			if seen[name] && p.strict {
				p.addError(pos, "duplicate parameter name %q is not allowed in strict mode", name)
			}
			seen[name] = true
			fn.Params = append(fn.Params, name)
			fn.ParamsPos = append(fn.ParamsPos, pos)
		}
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
}

// parseFunctionBody parses "{ SourceElements? }", enters a fresh label
// scope and iteration/switch nesting counters (labels and break/continue
// targets do not cross function boundaries), and finalizes the
// needs-arguments-object flag (spec §4.4 rule 6: cleared when the name
// "arguments" is shadowed by a parameter or declaration).
func (p *Parser) parseFunctionBody(fn *ast.FunctionLiteral) {
	p.expect(token.LBRACE)

	savedLabels := p.labels
	savedIter := p.iterDepth
	savedSwitch := p.switchDepth
	p.labels = make(map[string]bool)
	p.iterDepth = 0
	p.switchDepth = 0
	p.funcDepth++

	fn.Body = p.parseStatementListWithDirectives(&fn.Strict, token.RBRACE)

	p.funcDepth--
	p.labels = savedLabels
	p.iterDepth = savedIter
	p.switchDepth = savedSwitch

	fn.End = p.cur.Pos
	p.expect(token.RBRACE)

	collectHoistedDeclarations(fn)
	fn.NeedsArguments = usesArguments(fn.Body) && !shadowsArguments(fn)
}

// collectHoistedDeclarations walks fn's own statement list (not nested
// function bodies) gathering every var and nested function declaration
// into fn.Declarations, in source order, as spec §3's Declaration union
// requires. Var declarators without an initializer still contribute a
// declaration entry; those with one are hoisted as a name only (the
// initializer is left in place as an assignment in the statement list).
func collectHoistedDeclarations(fn *ast.FunctionLiteral) {
	var decls []ast.Declaration
	var walk func(stmts []ast.Statement)
	walk = func(stmts []ast.Statement) {
		for _, s := range stmts {
			switch n := s.(type) {
			case *ast.VarStatement:
				for _, d := range n.Decls {
					decls = append(decls, &ast.VariableLiteral{NamePos: d.NamePos, Name: d.Name, Kind: ast.DeclVariable})
				}
			case *ast.FunctionDeclStatement:
				decls = append(decls, &ast.VariableLiteral{NamePos: n.Fn.NamePos, Name: n.Fn.Name, Kind: ast.DeclFunction, Fn: n.Fn})
			case *ast.BlockStatement:
				walk(n.Body)
			case *ast.IfStatement:
				walk([]ast.Statement{n.Then})
				if n.Else != nil {
					walk([]ast.Statement{n.Else})
				}
			case *ast.WhileStatement:
				walk([]ast.Statement{n.Body})
			case *ast.DoWhileStatement:
				walk([]ast.Statement{n.Body})
			case *ast.ForStatement:
				if n.Init != nil {
					walk([]ast.Statement{n.Init})
				}
				walk([]ast.Statement{n.Body})
			case *ast.ForInStatement:
				if vs, ok := n.Target.(*ast.VarStatement); ok {
					walk([]ast.Statement{vs})
				}
				walk([]ast.Statement{n.Body})
			case *ast.WithStatement:
				walk([]ast.Statement{n.Body})
			case *ast.LabeledStatement:
				walk([]ast.Statement{n.Body})
			case *ast.TryStatement:
				walk(n.Block.Body)
				if n.Catch != nil {
					walk(n.Catch.Body)
				}
				if n.Finally != nil {
					walk(n.Finally.Body)
				}
			case *ast.SwitchStatement:
				for _, c := range n.Cases {
					walk(c.Body)
				}
			}
		}
	}
	walk(fn.Body)
	fn.Declarations = decls
}

// usesArguments reports whether fn's own body (excluding nested function
// bodies, which have their own "arguments" binding) references the
// identifier "arguments".
func usesArguments(stmts []ast.Statement) bool {
	found := false
	var visitExpr func(e ast.Expression)
	var visitStmt func(s ast.Statement)

	visitExpr = func(e ast.Expression) {
		if found || e == nil {
			return
		}
		switch n := e.(type) {
		case *ast.Identifier:
			if n.Name == "arguments" {
				found = true
			}
		case *ast.Binary:
			visitExpr(n.Left)
			visitExpr(n.Right)
		case *ast.Unary:
			visitExpr(n.Operand)
		case *ast.Assignment:
			visitExpr(n.Target)
			visitExpr(n.Value)
		case *ast.Conditional:
			visitExpr(n.Condition)
			visitExpr(n.Then)
			visitExpr(n.Else)
		case *ast.PropertyExpr:
			visitExpr(n.Object)
			if n.Computed {
				visitExpr(n.Key)
			}
		case *ast.Call:
			visitExpr(n.Callee)
			for _, a := range n.Args {
				visitExpr(a)
			}
		case *ast.CallNew:
			visitExpr(n.Callee)
			for _, a := range n.Args {
				visitExpr(a)
			}
		case *ast.ArrayLiteral:
			for _, el := range n.Elements {
				visitExpr(el)
			}
		case *ast.ObjectLiteral:
			for _, pr := range n.Properties {
				visitExpr(pr.Value)
			}
		}
		// FunctionLiteral (nested function expression) is intentionally not
		// descended into: it has its own "arguments" binding.
	}

	visitStmt = func(s ast.Statement) {
		if found || s == nil {
			return
		}
		switch n := s.(type) {
		case *ast.ExpressionStatement:
			visitExpr(n.Expr)
		case *ast.BlockStatement:
			for _, b := range n.Body {
				visitStmt(b)
			}
		case *ast.VarStatement:
			for _, d := range n.Decls {
				visitExpr(d.Init)
			}
		case *ast.IfStatement:
			visitExpr(n.Condition)
			visitStmt(n.Then)
			visitStmt(n.Else)
		case *ast.WhileStatement:
			visitExpr(n.Condition)
			visitStmt(n.Body)
		case *ast.DoWhileStatement:
			visitStmt(n.Body)
			visitExpr(n.Condition)
		case *ast.ForStatement:
			visitStmt(n.Init)
			visitExpr(n.Condition)
			visitExpr(n.Update)
			visitStmt(n.Body)
		case *ast.ForInStatement:
			if expr, ok := n.Target.(ast.Expression); ok {
				visitExpr(expr)
			}
			visitExpr(n.Object)
			visitStmt(n.Body)
		case *ast.ReturnStatement:
			visitExpr(n.Value)
		case *ast.WithStatement:
			visitExpr(n.Object)
			visitStmt(n.Body)
		case *ast.SwitchStatement:
			visitExpr(n.Discriminant)
			for _, c := range n.Cases {
				visitExpr(c.Test)
				for _, b := range c.Body {
					visitStmt(b)
				}
			}
		case *ast.ThrowStatement:
			visitExpr(n.Value)
		case *ast.TryStatement:
			for _, b := range n.Block.Body {
				visitStmt(b)
			}
			if n.Catch != nil {
				for _, b := range n.Catch.Body {
					visitStmt(b)
				}
			}
			if n.Finally != nil {
				for _, b := range n.Finally.Body {
					visitStmt(b)
				}
			}
		case *ast.LabeledStatement:
			visitStmt(n.Body)
		}
	}

	for _, s := range stmts {
		visitStmt(s)
		if found {
			return true
		}
	}
	return found
}

// shadowsArguments reports whether fn declares "arguments" as a parameter
// or a hoisted function declaration name, which removes the need to
// synthesize an arguments object since the binding is already supplied. A
// hoisted var named "arguments" does not clear the flag (spec §4.4 rule 6).
func shadowsArguments(fn *ast.FunctionLiteral) bool {
	for _, param := range fn.Params {
		if param == "arguments" {
			return true
		}
	}
	for _, d := range fn.Declarations {
		if vl := d.(*ast.VariableLiteral); vl.Kind == ast.DeclFunction && vl.Name == "arguments" {
			return true
		}
	}
	return false
}
