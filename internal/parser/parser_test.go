package parser

import (
	"testing"

	"github.com/kindahl/es2c/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse("test.js", []byte(src))
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return prog
}

func TestParserVarAndExpressionStatements(t *testing.T) {
	prog := mustParse(t, "var x = 1, y;\nx + y;\n")
	if len(prog.Body.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Body.Body))
	}
	v, ok := prog.Body.Body[0].(*ast.VarStatement)
	if !ok {
		t.Fatalf("statement 0: got %T", prog.Body.Body[0])
	}
	if len(v.Decls) != 2 || v.Decls[0].Name != "x" || v.Decls[1].Name != "y" {
		t.Fatalf("unexpected decls: %+v", v.Decls)
	}
}

func TestParserASINoSemicolonAtEOF(t *testing.T) {
	mustParse(t, "var x = 1")
}

func TestParserASIBeforeRestrictedReturn(t *testing.T) {
	// ASI forces "return" to have no value here: a line terminator sits
	// between "return" and the following expression.
	prog := mustParse(t, "function f() {\n  return\n  1;\n}\n")
	decl := prog.Body.Body[0].(*ast.FunctionDeclStatement)
	ret := decl.Fn.Body[0].(*ast.ReturnStatement)
	if ret.Value != nil {
		t.Fatalf("expected bare return, got value %#v", ret.Value)
	}
}

func TestParserFunctionDeclarationHoisted(t *testing.T) {
	prog := mustParse(t, "function f(a, b) { return a + b; }\n")
	if len(prog.Body.Declarations) != 1 {
		t.Fatalf("expected 1 hoisted declaration, got %d", len(prog.Body.Declarations))
	}
	if prog.Body.Declarations[0].DeclName() != "f" {
		t.Fatalf("unexpected hoisted name %q", prog.Body.Declarations[0].DeclName())
	}
}

func TestParserArgumentsObjectDetection(t *testing.T) {
	prog := mustParse(t, "function f() { return arguments[0]; }\n")
	fn := prog.Body.Body[0].(*ast.FunctionDeclStatement).Fn
	if !fn.NeedsArguments {
		t.Fatalf("expected NeedsArguments true")
	}
}

func TestParserArgumentsShadowedByParameter(t *testing.T) {
	prog := mustParse(t, "function f(arguments) { return arguments[0]; }\n")
	fn := prog.Body.Body[0].(*ast.FunctionDeclStatement).Fn
	if fn.NeedsArguments {
		t.Fatalf("expected NeedsArguments false when shadowed by parameter")
	}
}

func TestParserStrictModeDirectivePrologue(t *testing.T) {
	prog := mustParse(t, "\"use strict\";\nvar x = 1;\n")
	if !prog.Body.Strict {
		t.Fatalf("expected Strict true")
	}
}

func TestParserStrictModeRejectsOctalLiteral(t *testing.T) {
	_, err := Parse("test.js", []byte("\"use strict\";\nvar x = 010;\n"))
	if err == nil {
		t.Fatalf("expected error for octal literal in strict mode")
	}
}

func TestParserForInDisambiguation(t *testing.T) {
	prog := mustParse(t, "for (var k in obj) { k; }\n")
	_, ok := prog.Body.Body[0].(*ast.ForInStatement)
	if !ok {
		t.Fatalf("expected ForInStatement, got %T", prog.Body.Body[0])
	}
}

func TestParserClassicForWithNoIn(t *testing.T) {
	prog := mustParse(t, "for (var i = 0; i < 10; i++) { i; }\n")
	_, ok := prog.Body.Body[0].(*ast.ForStatement)
	if !ok {
		t.Fatalf("expected ForStatement, got %T", prog.Body.Body[0])
	}
}

func TestParserNewMemberCallPrecedence(t *testing.T) {
	// new Foo().bar() should parse as (new Foo()).bar(), a Call whose
	// Callee is a PropertyExpr on a CallNew.
	prog := mustParse(t, "new Foo().bar();\n")
	es := prog.Body.Body[0].(*ast.ExpressionStatement)
	call, ok := es.Expr.(*ast.Call)
	if !ok {
		t.Fatalf("expected Call, got %T", es.Expr)
	}
	prop, ok := call.Callee.(*ast.PropertyExpr)
	if !ok {
		t.Fatalf("expected PropertyExpr callee, got %T", call.Callee)
	}
	if _, ok := prop.Object.(*ast.CallNew); !ok {
		t.Fatalf("expected CallNew object, got %T", prop.Object)
	}
}

func TestParserNewWithMemberCalleeConsumesArgsAsConstructor(t *testing.T) {
	// new Foo.Bar() should parse as new (Foo.Bar)(): the CallNew's callee
	// is the PropertyExpr, and the parens become the constructor's args.
	prog := mustParse(t, "new Foo.Bar();\n")
	es := prog.Body.Body[0].(*ast.ExpressionStatement)
	cn, ok := es.Expr.(*ast.CallNew)
	if !ok {
		t.Fatalf("expected CallNew, got %T", es.Expr)
	}
	if _, ok := cn.Callee.(*ast.PropertyExpr); !ok {
		t.Fatalf("expected PropertyExpr callee, got %T", cn.Callee)
	}
}

func TestParserRegexLiteralInExpressionPosition(t *testing.T) {
	prog := mustParse(t, "var re = /abc\\/d/gi;\n")
	v := prog.Body.Body[0].(*ast.VarStatement)
	if _, ok := v.Decls[0].Init.(*ast.RegExpLiteral); !ok {
		t.Fatalf("expected RegExpLiteral, got %T", v.Decls[0].Init)
	}
}

func TestParserDivisionNotMisreadAsRegex(t *testing.T) {
	prog := mustParse(t, "var x = a / b / c;\n")
	v := prog.Body.Body[0].(*ast.VarStatement)
	if _, ok := v.Decls[0].Init.(*ast.Binary); !ok {
		t.Fatalf("expected Binary division chain, got %T", v.Decls[0].Init)
	}
}

func TestParserOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 should group as 1 + (2 * 3).
	prog := mustParse(t, "1 + 2 * 3;\n")
	es := prog.Body.Body[0].(*ast.ExpressionStatement)
	bin := es.Expr.(*ast.Binary)
	if bin.Op != ast.OpAdd {
		t.Fatalf("expected top-level '+', got %v", bin.Op)
	}
	if _, ok := bin.Right.(*ast.Binary); !ok {
		t.Fatalf("expected right side to be the '*' subexpression, got %T", bin.Right)
	}
}

func TestParserConditionalAndAssignmentAreRightAssociative(t *testing.T) {
	prog := mustParse(t, "x = y = 1;\n")
	es := prog.Body.Body[0].(*ast.ExpressionStatement)
	outer := es.Expr.(*ast.Assignment)
	if _, ok := outer.Value.(*ast.Assignment); !ok {
		t.Fatalf("expected nested Assignment, got %T", outer.Value)
	}
}

func TestParserLabeledStatementAndBreak(t *testing.T) {
	mustParse(t, "outer: for (;;) { break outer; }\n")
}

func TestParserUndefinedLabelIsError(t *testing.T) {
	_, err := Parse("test.js", []byte("for (;;) { break nope; }\n"))
	if err == nil {
		t.Fatalf("expected error for undefined label")
	}
}

func TestParserTryCatchFinally(t *testing.T) {
	prog := mustParse(t, "try { f(); } catch (e) { g(); } finally { h(); }\n")
	ts := prog.Body.Body[0].(*ast.TryStatement)
	if ts.CatchID != "e" || ts.Catch == nil || ts.Finally == nil {
		t.Fatalf("unexpected try statement: %+v", ts)
	}
}

func TestParserObjectLiteralWithGetterSetter(t *testing.T) {
	prog := mustParse(t, "var o = { get x() { return 1; }, set x(v) { y = v; }, z: 2 };\n")
	v := prog.Body.Body[0].(*ast.VarStatement)
	obj := v.Decls[0].Init.(*ast.ObjectLiteral)
	if len(obj.Properties) != 3 {
		t.Fatalf("expected 3 properties, got %d", len(obj.Properties))
	}
	if obj.Properties[0].Kind != ast.PropertyGetter || obj.Properties[1].Kind != ast.PropertySetter {
		t.Fatalf("unexpected property kinds: %+v", obj.Properties)
	}
}

func TestParserElidedArrayElements(t *testing.T) {
	prog := mustParse(t, "var a = [1, , 3];\n")
	v := prog.Body.Body[0].(*ast.VarStatement)
	arr := v.Decls[0].Init.(*ast.ArrayLiteral)
	if len(arr.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(arr.Elements))
	}
	if _, ok := arr.Elements[1].(*ast.NothingLiteral); !ok {
		t.Fatalf("expected elided middle element, got %T", arr.Elements[1])
	}
}

func TestParserNestedFunctionInNonStrictBlockIsExtension(t *testing.T) {
	mustParse(t, "if (true) { function f() { return 1; } }\n")
}

func TestParserWithStatementRejectedInStrictMode(t *testing.T) {
	_, err := Parse("test.js", []byte("\"use strict\";\nwith (obj) { x; }\n"))
	if err == nil {
		t.Fatalf("expected error for 'with' in strict mode")
	}
}

func TestParserFutureStrictReservedWordAsIdentifierOutsideStrict(t *testing.T) {
	mustParse(t, "var let = 1;\n")
}

func TestParserFutureStrictReservedWordRejectedInStrictMode(t *testing.T) {
	_, err := Parse("test.js", []byte("\"use strict\";\nvar let = 1;\n"))
	if err == nil {
		t.Fatalf("expected error for 'let' binding in strict mode")
	}
}
