package cmd

import "testing"

func TestRunLexReportsIllegalTokensAsError(t *testing.T) {
	evalExpr = "1 @ 2"
	onlyIllegal = false
	defer func() { evalExpr = "" }()

	if err := runLex(lexCmd, nil); err == nil {
		t.Fatalf("expected an error for source containing an illegal character")
	}
}

func TestRunLexSucceedsOnWellFormedSource(t *testing.T) {
	evalExpr = "var x = 1;"
	defer func() { evalExpr = "" }()

	if err := runLex(lexCmd, nil); err != nil {
		t.Fatalf("runLex: %v", err)
	}
}

func TestRunLexRequiresFileOrEvalFlag(t *testing.T) {
	evalExpr = ""
	if err := runLex(lexCmd, nil); err == nil {
		t.Fatalf("expected an error when neither a file nor -e is given")
	}
}
