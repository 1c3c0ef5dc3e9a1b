package lexer

import (
	"testing"

	"github.com/kindahl/es2c/internal/token"
)

func allTokens(t *testing.T, src string) []token.Token {
	t.Helper()
	l := New([]byte(src))
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks
}

func TestLexerPunctuatorsAndKeywords(t *testing.T) {
	toks := allTokens(t, "var x = 1 + 2;")
	want := []token.Kind{token.VAR, token.IDENT, token.ASSIGN, token.NUMBER, token.ADD, token.NUMBER, token.SEMI, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestLexerLineTerminatorFlag(t *testing.T) {
	toks := allTokens(t, "1\n2")
	if toks[0].PrecededByLineTerminator {
		t.Errorf("first token should not be preceded by a line terminator")
	}
	if !toks[1].PrecededByLineTerminator {
		t.Errorf("second token should be preceded by a line terminator")
	}
}

func TestLexerBlockCommentCarriesLineTerminator(t *testing.T) {
	toks := allTokens(t, "1 /* a\nb */ 2")
	if !toks[1].PrecededByLineTerminator {
		t.Errorf("token after a multi-line block comment must report a line terminator")
	}
}

func TestLexerStringEscapes(t *testing.T) {
	toks := allTokens(t, `"a\tbA\x42"`)
	if toks[0].Literal != "a\tbAB" {
		t.Errorf("got %q, want %q", toks[0].Literal, "a\tbAB")
	}
	if !toks[0].ContainsEscape {
		t.Errorf("expected ContainsEscape to be set")
	}
}

func TestLexerStringNoEscapeUsedByUseStrictDetection(t *testing.T) {
	toks := allTokens(t, `"use strict"`)
	if toks[0].ContainsEscape {
		t.Errorf("plain string literal must not report ContainsEscape")
	}
}

func TestLexerEscapedIdentifierNeverReserved(t *testing.T) {
	src := "\\u0076ar" // "var" spelled with a \u escape in the first character
	toks := allTokens(t, src)
	if toks[0].Kind != token.IDENT {
		t.Errorf("escaped reserved word must lex as IDENT, got %v", toks[0].Kind)
	}
	if toks[0].Literal != "var" {
		t.Errorf("got literal %q, want %q", toks[0].Literal, "var")
	}
}

func TestLexerOctalNumberFlag(t *testing.T) {
	toks := allTokens(t, "0755")
	if !toks[0].ContainsEscape {
		t.Errorf("legacy octal literal must set the octal flag")
	}
	v, err := ParseNumericLiteral(toks[0].Literal)
	if err != nil || v != 493 {
		t.Errorf("ParseNumericLiteral(0755) = %v, %v, want 493", v, err)
	}
}

func TestLexerHexNumber(t *testing.T) {
	toks := allTokens(t, "0xFF")
	v, err := ParseNumericLiteral(toks[0].Literal)
	if err != nil || v != 255 {
		t.Errorf("ParseNumericLiteral(0xFF) = %v, %v, want 255", v, err)
	}
}

func TestLexerRegexReLex(t *testing.T) {
	l := New([]byte(`/abc\/d[e/]/gi`))
	tok := l.NextTokenRegexAware()
	if tok.Kind != token.REGEXP {
		t.Fatalf("got %v, want REGEXP", tok.Kind)
	}
	if tok.Literal != `abc\/d[e/]/gi` {
		t.Errorf("got %q", tok.Literal)
	}
}

func TestLexerSlashWithoutRegexContextIsDivide(t *testing.T) {
	toks := allTokens(t, "a / b")
	if toks[1].Kind != token.DIV {
		t.Errorf("got %v, want DIV", toks[1].Kind)
	}
}

func TestLexerIllegalCharacter(t *testing.T) {
	l := New([]byte("@"))
	tok := l.NextToken()
	if tok.Kind != token.ILLEGAL {
		t.Fatalf("got %v, want ILLEGAL", tok.Kind)
	}
	if len(l.Errors()) != 1 {
		t.Errorf("expected one lexer error, got %d", len(l.Errors()))
	}
}

func TestLexerRoundTripTokenSequence(t *testing.T) {
	src := "function f(a, b) { return a + b; }"
	first := allTokens(t, src)
	second := allTokens(t, src)
	if len(first) != len(second) {
		t.Fatalf("lexing the same source twice produced different token counts")
	}
	for i := range first {
		if first[i].Kind != second[i].Kind || first[i].Literal != second[i].Literal {
			t.Errorf("token %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
