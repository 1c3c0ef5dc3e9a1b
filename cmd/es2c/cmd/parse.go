package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/kindahl/es2c/internal/ast"
	"github.com/kindahl/es2c/internal/parser"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse source code and display the AST",
	Long: `Parse ECMAScript 5.1 source code and display its Abstract Syntax Tree.

If no file is provided, reads from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	var src []byte
	filename := "<stdin>"

	switch {
	case len(args) > 0:
		filename = args[0]
		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("in: %s: %w", filename, err)
		}
		src = data
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("error reading stdin: %w", err)
		}
		src = data
	}

	prog, err := parser.Parse(filename, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "in: %s: %s\n", filename, err)
		return fmt.Errorf("parsing failed")
	}

	dumpFunction(prog.Body, 0)
	return nil
}

func indent(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += "  "
	}
	return s
}

func dumpFunction(fn *ast.FunctionLiteral, depth int) {
	name := fn.Name
	if name == "" {
		name = "<anonymous>"
	}
	fmt.Printf("%sFunction %s(%v) strict=%v needsArguments=%v\n", indent(depth), name, fn.Params, fn.Strict, fn.NeedsArguments)
	for _, stmt := range fn.Body {
		dumpStatement(stmt, depth+1)
	}
}

func dumpStatement(stmt ast.Statement, depth int) {
	pad := indent(depth)
	switch s := stmt.(type) {
	case *ast.VarStatement:
		fmt.Printf("%sVarStatement\n", pad)
		for _, d := range s.Decls {
			fmt.Printf("%s  %s\n", pad, d.Name)
			if d.Init != nil {
				dumpExpression(d.Init, depth+2)
			}
		}
	case *ast.ExpressionStatement:
		fmt.Printf("%sExpressionStatement\n", pad)
		dumpExpression(s.Expr, depth+1)
	case *ast.BlockStatement:
		fmt.Printf("%sBlockStatement (%d statement(s))\n", pad, len(s.Body))
		for _, inner := range s.Body {
			dumpStatement(inner, depth+1)
		}
	case *ast.IfStatement:
		fmt.Printf("%sIfStatement\n", pad)
		dumpExpression(s.Condition, depth+1)
		dumpStatement(s.Then, depth+1)
		if s.Else != nil {
			dumpStatement(s.Else, depth+1)
		}
	case *ast.WhileStatement:
		fmt.Printf("%sWhileStatement\n", pad)
		dumpExpression(s.Condition, depth+1)
		dumpStatement(s.Body, depth+1)
	case *ast.DoWhileStatement:
		fmt.Printf("%sDoWhileStatement\n", pad)
		dumpStatement(s.Body, depth+1)
		dumpExpression(s.Condition, depth+1)
	case *ast.ForStatement:
		fmt.Printf("%sForStatement\n", pad)
		dumpStatement(s.Body, depth+1)
	case *ast.ReturnStatement:
		fmt.Printf("%sReturnStatement\n", pad)
		if s.Value != nil {
			dumpExpression(s.Value, depth+1)
		}
	case *ast.FunctionDeclStatement:
		dumpFunction(s.Fn, depth)
	default:
		fmt.Printf("%s%T\n", pad, stmt)
	}
}

func dumpExpression(expr ast.Expression, depth int) {
	pad := indent(depth)
	switch e := expr.(type) {
	case *ast.Identifier:
		fmt.Printf("%sIdentifier: %s\n", pad, e.Name)
	case *ast.NumberLiteral:
		fmt.Printf("%sNumberLiteral: %g\n", pad, e.Value)
	case *ast.StringLiteral:
		fmt.Printf("%sStringLiteral: %q\n", pad, e.Value)
	case *ast.BoolLiteral:
		fmt.Printf("%sBoolLiteral: %v\n", pad, e.Value)
	case *ast.NullLiteral:
		fmt.Printf("%sNullLiteral\n", pad)
	case *ast.Binary:
		fmt.Printf("%sBinary (op %d)\n", pad, e.Op)
		dumpExpression(e.Left, depth+1)
		dumpExpression(e.Right, depth+1)
	case *ast.Unary:
		fmt.Printf("%sUnary (op %d, postfix=%v)\n", pad, e.Op, e.IsPostfix)
		dumpExpression(e.Operand, depth+1)
	case *ast.Assignment:
		fmt.Printf("%sAssignment (op %d)\n", pad, e.Op)
		dumpExpression(e.Target, depth+1)
		dumpExpression(e.Value, depth+1)
	case *ast.Call:
		fmt.Printf("%sCall (%d arg(s))\n", pad, len(e.Args))
		dumpExpression(e.Callee, depth+1)
		for _, a := range e.Args {
			dumpExpression(a, depth+1)
		}
	case *ast.FunctionLiteral:
		dumpFunction(e, depth)
	default:
		fmt.Printf("%s%T\n", pad, expr)
	}
}
