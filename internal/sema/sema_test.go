package sema

import (
	"testing"

	"github.com/kindahl/es2c/internal/ast"
	"github.com/kindahl/es2c/internal/parser"
)

func analyzeSource(t *testing.T, src string) (*ast.Program, *Info) {
	t.Helper()
	prog, err := parser.Parse("test.js", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return prog, Analyze(prog)
}

func TestSemaSimpleLocalVariable(t *testing.T) {
	prog, info := analyzeSource(t, "function f() { var x = 1; return x; }\n")
	fn := info.Functions[prog.Body.Declarations[0].(*ast.VariableLiteral).Fn]
	b, ok := fn.Binding("x")
	if !ok {
		t.Fatalf("binding x not found")
	}
	if b.Storage != Local {
		t.Fatalf("expected Local, got %v", b.Storage)
	}
}

func TestSemaCapturedVariableBecomesLocalExtra(t *testing.T) {
	prog, info := analyzeSource(t, `
function outer() {
  var x = 1;
  function inner() { return x; }
  return inner;
}
`)
	outerFn := info.Functions[prog.Body.Declarations[0].(*ast.VariableLiteral).Fn]
	b, ok := outerFn.Binding("x")
	if !ok {
		t.Fatalf("binding x not found")
	}
	if b.Storage != LocalExtra {
		t.Fatalf("expected LocalExtra, got %v", b.Storage)
	}

	var innerFn *Function
	for _, fn := range info.Functions {
		if fn.Node.Name == "inner" {
			innerFn = fn
		}
	}
	if innerFn == nil {
		t.Fatalf("inner function not analyzed")
	}
	if len(innerFn.ReferencedScopes) == 0 {
		t.Fatalf("expected inner to record a referenced outer scope")
	}
}

func TestSemaWithForcesContext(t *testing.T) {
	prog, info := analyzeSource(t, `
function f(o) {
  var x = 1;
  with (o) {
    x;
  }
}
`)
	fn := info.Functions[prog.Body.Declarations[0].(*ast.VariableLiteral).Fn]
	b, _ := fn.Binding("x")
	if b.Storage != Context {
		t.Fatalf("expected Context, got %v", b.Storage)
	}
}

func TestSemaEvalTaintsEnclosingFunctions(t *testing.T) {
	prog, info := analyzeSource(t, `
function outer() {
  var x = 1;
  function inner() { eval("x"); }
  return inner;
}
`)
	outerFn := info.Functions[prog.Body.Declarations[0].(*ast.VariableLiteral).Fn]
	if !outerFn.EvalTainted {
		t.Fatalf("expected outer function to be eval-tainted")
	}
	b, _ := outerFn.Binding("x")
	if b.Storage != Context {
		t.Fatalf("expected eval-tainted function's binding to be Context, got %v", b.Storage)
	}
}

func TestSemaProgramScopeUnreferencedPromotedToContext(t *testing.T) {
	prog, info := analyzeSource(t, "var unused;\n")
	b, ok := info.Program.Binding("unused")
	if !ok {
		t.Fatalf("binding not found")
	}
	if b.Storage != Context {
		t.Fatalf("expected program-scope binding promoted to Context, got %v", b.Storage)
	}
	_ = prog
}

func TestSemaParameterStorageWithArgumentsObject(t *testing.T) {
	prog, info := analyzeSource(t, "function f(a) { return arguments[0] + a; }\n")
	fn := info.Functions[prog.Body.Declarations[0].(*ast.VariableLiteral).Fn]
	b, ok := fn.Binding("a")
	if !ok {
		t.Fatalf("binding a not found")
	}
	if b.Storage != LocalExtra {
		t.Fatalf("expected parameter storage LocalExtra when arguments object is needed, got %v", b.Storage)
	}
}

func TestSemaCatchBindingNotResolvedAgainstOuterScope(t *testing.T) {
	// The catch identifier "e" must not resolve against any outer "e"
	// binding; it is always context-allocated via enter-catch.
	prog, info := analyzeSource(t, `
function f() {
  var e = 1;
  try {
    g();
  } catch (e) {
    e;
  }
  return e;
}
`)
	fn := info.Functions[prog.Body.Declarations[0].(*ast.VariableLiteral).Fn]
	b, ok := fn.Binding("e")
	if !ok {
		t.Fatalf("binding e not found")
	}
	if b.Storage != Local {
		t.Fatalf("expected outer 'e' to remain Local (unaffected by catch shadow), got %v", b.Storage)
	}
}
