package sema

import "github.com/kindahl/es2c/internal/ast"

// analyzeFunction implements spec §4.5 steps 1-5 for a single
// FunctionLiteral (the program's synthetic top-level function included).
func (a *analyzer) analyzeFunction(node *ast.FunctionLiteral, parent *Function) *Function {
	fn := newFunction(node, parent)
	a.info.Functions[node] = fn

	paramStorage := Unallocated
	if node.NeedsArguments {
		paramStorage = LocalExtra
	}
	for i, name := range node.Params {
		fn.define(&Binding{Name: name, Kind: ParamBinding, ParamIndex: i, Storage: paramStorage})
	}

	if node.Kind == ast.FuncExpression && node.Name != "" {
		fn.define(&Binding{Name: node.Name, Kind: CalleeNameBinding, Storage: Unallocated})
	}

	for _, d := range node.Declarations {
		if d.(*ast.VariableLiteral).Kind == ast.DeclVariable {
			fn.define(&Binding{Name: d.DeclName(), Kind: DeclBinding, DeclKind: ast.DeclVariable, Storage: Unallocated})
		}
	}
	for _, d := range node.Declarations {
		vl := d.(*ast.VariableLiteral)
		if vl.Kind == ast.DeclFunction {
			fn.define(&Binding{Name: d.DeclName(), Kind: DeclBinding, DeclKind: ast.DeclFunction, Storage: Unallocated})
		}
	}

	if parent != nil {
		parent.Children = append(parent.Children, fn)
	}

	a.stack = append(a.stack, frame{kind: frameDeclarative, fn: fn})

	for _, d := range node.Declarations {
		vl := d.(*ast.VariableLiteral)
		if vl.Kind == ast.DeclFunction {
			a.analyzeFunction(vl.Fn, fn)
		}
	}
	a.visitStatements(node.Body)

	a.stack = a.stack[:len(a.stack)-1]
	return fn
}

func (a *analyzer) currentFunction() *Function {
	for i := len(a.stack) - 1; i >= 0; i-- {
		if a.stack[i].kind == frameDeclarative {
			return a.stack[i].fn
		}
	}
	return nil
}

func (a *analyzer) isCatchShadowed(name string) bool {
	for i := len(a.catchNames) - 1; i >= 0; i-- {
		if a.catchNames[i] == name {
			return true
		}
	}
	return false
}

// resolveIdentifier implements spec §4.5's "visit identifier" rule.
func (a *analyzer) resolveIdentifier(name string) {
	if a.isCatchShadowed(name) {
		// The catch clause's own binding is always context-allocated via a
		// dedicated environment record (the "enter-catch" IR op); it never
		// participates in ordinary storage classification.
		return
	}

	if name == "eval" {
		for _, fr := range a.stack {
			if fr.kind == frameDeclarative {
				fr.fn.EvalTainted = true
			}
		}
	}

	usingFn := a.currentFunction()
	foundObjectEnv := false
	hops := 0
	for i := len(a.stack) - 1; i >= 0; i-- {
		fr := a.stack[i]
		if fr.kind == frameObject {
			foundObjectEnv = true
			continue
		}
		declFn := fr.fn
		if b, ok := declFn.Binding(name); ok {
			switch {
			case foundObjectEnv:
				b.Storage = Context
			case declFn == usingFn:
				if b.Storage == Unallocated {
					b.Storage = Local
				}
			default:
				if b.Storage != Context {
					b.Storage = LocalExtra
				}
				usingFn.ReferencedScopes[hops] = true
			}
			return
		}
		hops++
	}
	// Unresolved: an implicit global (never declared with var/function) or
	// a dynamically-scoped name only reachable through "with"/eval. Left
	// for the runtime's global-object fallback; no storage to classify.
}

func (a *analyzer) withObjectEnv(body func()) {
	a.stack = append(a.stack, frame{kind: frameObject})
	body()
	a.stack = a.stack[:len(a.stack)-1]
}

func (a *analyzer) withCatchName(name string, body func()) {
	a.catchNames = append(a.catchNames, name)
	body()
	a.catchNames = a.catchNames[:len(a.catchNames)-1]
}

func (a *analyzer) visitStatements(stmts []ast.Statement) {
	for _, s := range stmts {
		a.visitStatement(s)
	}
}

func (a *analyzer) visitStatement(s ast.Statement) {
	switch n := s.(type) {
	case nil:
	case *ast.ExpressionStatement:
		a.visitExpr(n.Expr)
	case *ast.BlockStatement:
		a.visitStatements(n.Body)
	case *ast.VarStatement:
		for _, d := range n.Decls {
			if d.Init != nil {
				a.visitExpr(d.Init)
			}
		}
	case *ast.FunctionDeclStatement:
		// Already analyzed as a nested function by analyzeFunction's
		// declaration-order recursion; nothing further to visit here.
	case *ast.IfStatement:
		a.visitExpr(n.Condition)
		a.visitStatement(n.Then)
		a.visitStatement(n.Else)
	case *ast.WhileStatement:
		a.visitExpr(n.Condition)
		a.visitStatement(n.Body)
	case *ast.DoWhileStatement:
		a.visitStatement(n.Body)
		a.visitExpr(n.Condition)
	case *ast.ForStatement:
		a.visitStatement(n.Init)
		a.visitExpr(n.Condition)
		a.visitExpr(n.Update)
		a.visitStatement(n.Body)
	case *ast.ForInStatement:
		switch t := n.Target.(type) {
		case *ast.VarStatement:
			a.visitStatement(t)
		case ast.Expression:
			a.visitExpr(t)
		}
		a.visitExpr(n.Object)
		a.visitStatement(n.Body)
	case *ast.ReturnStatement:
		a.visitExpr(n.Value)
	case *ast.WithStatement:
		a.visitExpr(n.Object)
		a.withObjectEnv(func() { a.visitStatement(n.Body) })
	case *ast.SwitchStatement:
		a.visitExpr(n.Discriminant)
		for _, c := range n.Cases {
			a.visitExpr(c.Test)
			a.visitStatements(c.Body)
		}
	case *ast.ThrowStatement:
		a.visitExpr(n.Value)
	case *ast.TryStatement:
		a.visitStatements(n.Block.Body)
		if n.Catch != nil {
			a.withCatchName(n.CatchID, func() { a.visitStatements(n.Catch.Body) })
		}
		if n.Finally != nil {
			a.visitStatements(n.Finally.Body)
		}
	case *ast.LabeledStatement:
		a.visitStatement(n.Body)
	case *ast.EmptyStatement, *ast.DebuggerStatement, *ast.ContinueStatement, *ast.BreakStatement:
		// No sub-expressions to visit.
	}
}

func (a *analyzer) visitExpr(e ast.Expression) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.Identifier:
		a.resolveIdentifier(n.Name)
	case *ast.Binary:
		a.visitExpr(n.Left)
		a.visitExpr(n.Right)
	case *ast.Unary:
		a.visitExpr(n.Operand)
	case *ast.Assignment:
		a.visitExpr(n.Target)
		a.visitExpr(n.Value)
	case *ast.Conditional:
		a.visitExpr(n.Condition)
		a.visitExpr(n.Then)
		a.visitExpr(n.Else)
	case *ast.PropertyExpr:
		a.visitExpr(n.Object)
		if n.Computed {
			a.visitExpr(n.Key)
		}
	case *ast.Call:
		a.visitExpr(n.Callee)
		for _, arg := range n.Args {
			a.visitExpr(arg)
		}
	case *ast.CallNew:
		a.visitExpr(n.Callee)
		for _, arg := range n.Args {
			a.visitExpr(arg)
		}
	case *ast.ArrayLiteral:
		for _, el := range n.Elements {
			a.visitExpr(el)
		}
	case *ast.ObjectLiteral:
		for _, p := range n.Properties {
			a.visitExpr(p.Value)
		}
	case *ast.FunctionLiteral:
		a.analyzeFunction(n, a.currentFunction())
	case *ast.ThisLiteral, *ast.NullLiteral, *ast.NothingLiteral, *ast.BoolLiteral,
		*ast.NumberLiteral, *ast.StringLiteral, *ast.RegExpLiteral:
		// Leaves, nothing to resolve.
	}
}
