package cmd

import (
	"fmt"
	"os"

	"github.com/kindahl/es2c/internal/lexer"
	"github.com/kindahl/es2c/internal/token"
	"github.com/spf13/cobra"
)

var (
	evalExpr    string
	showPos     bool
	showKind    bool
	onlyIllegal bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a source file or expression",
	Long: `Tokenize a source file or expression and print the resulting tokens.

This command is useful for inspecting the lexer's handling of escape
sequences and illegal characters.

Examples:
  # Tokenize a file
  es2c lex prog.js

  # Tokenize an inline expression
  es2c lex -e "var x = 1;"

  # Show token kinds and positions
  es2c lex --show-kind --show-pos prog.js`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "tokenize inline source instead of reading from a file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showKind, "show-kind", false, "show token kind names")
	lexCmd.Flags().BoolVar(&onlyIllegal, "only-illegal", false, "show only illegal tokens")
}

func runLex(cmd *cobra.Command, args []string) error {
	var src []byte
	var filename string

	switch {
	case evalExpr != "":
		src = []byte(evalExpr)
		filename = "<eval>"
	case len(args) == 1:
		filename = args[0]
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("in: %s: %w", filename, err)
		}
		src = content
	default:
		return fmt.Errorf("either provide a file path or use -e for inline source")
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Fprintf(os.Stderr, "tokenizing %s (%d bytes)\n", filename, len(src))
	}

	l := lexer.New(src)
	count, illegal := 0, 0
	for {
		tok := l.NextToken()
		isIllegal := tok.Kind == token.ILLEGAL
		if !onlyIllegal || isIllegal {
			printToken(tok)
		}
		count++
		if isIllegal {
			illegal++
		}
		if tok.Kind == token.EOF {
			break
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "%d token(s), %d illegal\n", count, illegal)
	}
	if illegal > 0 {
		return fmt.Errorf("in: %s: found %d illegal token(s)", filename, illegal)
	}
	return nil
}

func printToken(tok token.Token) {
	var sb []byte
	if showKind {
		sb = fmt.Appendf(sb, "[%-12s]", tok.Kind)
	}
	switch {
	case tok.Kind == token.EOF:
		sb = fmt.Append(sb, " EOF")
	case tok.Literal == "":
		sb = fmt.Appendf(sb, " %s", tok.Kind)
	default:
		sb = fmt.Appendf(sb, " %q", tok.Literal)
	}
	if showPos {
		sb = fmt.Appendf(sb, " @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	fmt.Println(string(sb))
}
