// Package lexer tokenizes ECMAScript 5.1 source text (spec §4.3).
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/kindahl/es2c/internal/source"
	"github.com/kindahl/es2c/internal/token"
)

const (
	lineSeparator      = rune(0x2028)
	paragraphSeparator = rune(0x2029)
	zeroWidthNonJoiner = rune(0x200C)
	zeroWidthJoiner    = rune(0x200D)
)

// LexError reports an illegal character or malformed literal at a position.
// The parser is responsible for turning these into syntax errors; the lexer
// itself never aborts, it just reports ILLEGAL tokens.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string { return e.Message }

// Option configures a Lexer at construction time.
type Option func(*Lexer)

// WithOctalEscapes enables the legacy octal escape sequence in string
// literals (spec §4.3 "optional octal escape (feature-gated)").
func WithOctalEscapes(enabled bool) Option {
	return func(l *Lexer) { l.octalEscapes = enabled }
}

// Lexer scans ES5.1 tokens from a decoded source.Stream.
type Lexer struct {
	src    *source.Stream
	errors []LexError

	line, col int
	offset    int // next byte-equivalent offset, tracked as a rune count

	prevLineTerm bool // line terminator seen since the last returned token
	octalEscapes bool
}

// New creates a Lexer over raw source bytes, sniffing the encoding and BOM
// per spec §4.2.
func New(src []byte, opts ...Option) *Lexer {
	l := &Lexer{
		src:  source.New(src),
		line: 1,
		col:  1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State is a snapshot of the lexer's cursor, suitable for backtracking
// during speculative parses; the parser uses it to re-lex a `/` or `/=`
// token as a regular expression literal.
type State struct {
	streamPos  int
	line, col  int
	offset     int
	errorCount int
}

// Mark captures the current lexer position.
func (l *Lexer) Mark() State {
	return State{streamPos: l.src.Position(), line: l.line, col: l.col, offset: l.offset, errorCount: len(l.errors)}
}

// Reset rewinds the lexer to a previously captured State, discarding any
// errors recorded since that mark.
func (l *Lexer) Reset(s State) {
	l.src.SetPosition(s.streamPos)
	l.line, l.col, l.offset = s.line, s.col, s.offset
	l.errors = l.errors[:s.errorCount]
}

func (l *Lexer) Errors() []LexError { return l.errors }

func (l *Lexer) addError(pos token.Position, format string, args ...any) {
	l.errors = append(l.errors, LexError{Pos: pos, Message: sprintf(format, args...)})
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// curPos returns a zero-width position at the current cursor.
func (l *Lexer) curPos() token.Position {
	return token.Position{Begin: l.offset, End: l.offset, Line: l.line, Column: l.col}
}

// advance reads and returns the next code point, updating line/column
// bookkeeping. Line terminators recognized: LF, CR (not followed by LF),
// LS (U+2028), PS (U+2029).
func (l *Lexer) advance() rune {
	c := l.src.Next()
	l.offset++
	if isLineTerminator(c) {
		l.line++
		l.col = 1
	} else if c != source.EOF {
		l.col++
	}
	return c
}

func isLineTerminator(c rune) bool {
	return c == '\n' || c == '\r' || c == lineSeparator || c == paragraphSeparator
}

func isWhitespace(c rune) bool {
	switch c {
	case ' ', '\t', '\v', '\f', 0xFEFF:
		return true
	}
	return c != source.EOF && unicode.Is(unicode.Zs, c)
}

func isIdentStart(c rune) bool {
	return c == '$' || c == '_' || unicode.IsLetter(c)
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || unicode.IsDigit(c) || c == zeroWidthNonJoiner || c == zeroWidthJoiner
}

// skipWhitespaceAndComments consumes whitespace and comments, setting
// prevLineTerm when a line terminator (or a block comment spanning one) was
// seen. It returns on the first token-relevant character.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		c := l.src.Peek(0)
		switch {
		case isLineTerminator(c):
			l.prevLineTerm = true
			l.advance()
		case isWhitespace(c):
			l.advance()
		case c == '/' && l.src.Peek(1) == '/':
			for {
				c = l.src.Peek(0)
				if c == source.EOF || isLineTerminator(c) {
					break
				}
				l.advance()
			}
		case c == '/' && l.src.Peek(1) == '*':
			l.advance()
			l.advance()
			for {
				c = l.src.Peek(0)
				if c == source.EOF {
					l.addError(l.curPos(), "unterminated block comment")
					return
				}
				if isLineTerminator(c) {
					l.prevLineTerm = true
				}
				if c == '*' && l.src.Peek(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return
		}
	}
}

// NextToken returns the next token in the normal (non-regex) lexical
// grammar: a leading "/" or "/=" always lexes as a division punctuator.
func (l *Lexer) NextToken() token.Token {
	return l.scan(false)
}

// NextTokenRegexAware is the entry point the parser must use whenever a
// primary expression is grammatically expected (spec §4.3 "Regex re-lex"):
// a leading "/" is scanned as a RegularExpressionLiteral instead of the
// division operator. Calling NextToken immediately afterward resumes the
// normal token grammar.
func (l *Lexer) NextTokenRegexAware() token.Token {
	return l.scan(true)
}

func (l *Lexer) scan(regexContext bool) token.Token {
	l.prevLineTerm = false
	l.skipWhitespaceAndComments()

	begin := l.offset
	beginLine, beginCol := l.line, l.col
	ltm := l.prevLineTerm

	c := l.src.Peek(0)
	if c == source.EOF {
		return l.finish(token.EOF, "", begin, beginLine, beginCol, ltm, false)
	}

	switch {
	case isIdentStart(c) || c == '\\':
		return l.scanIdentOrKeyword(begin, beginLine, beginCol, ltm)
	case unicode.IsDigit(c):
		return l.scanNumber(begin, beginLine, beginCol, ltm)
	case c == '.' && unicode.IsDigit(l.src.Peek(1)):
		return l.scanNumber(begin, beginLine, beginCol, ltm)
	case c == '\'' || c == '"':
		return l.scanString(begin, beginLine, beginCol, ltm)
	case c == '/' && regexContext:
		return l.scanRegex(begin, beginLine, beginCol, ltm)
	}

	return l.scanPunctuator(begin, beginLine, beginCol, ltm)
}

func (l *Lexer) finish(kind token.Kind, literal string, begin, line, col int, ltm, esc bool) token.Token {
	return token.Token{
		Kind:    kind,
		Literal: literal,
		Pos:     token.Position{Begin: begin, End: l.offset, Line: line, Column: col},
		PrecededByLineTerminator: ltm,
		ContainsEscape:           esc,
	}
}

func (l *Lexer) scanIdentOrKeyword(begin, line, col int, ltm bool) token.Token {
	var sb strings.Builder
	escaped := false

	for {
		c := l.src.Peek(0)
		if c == '\\' && l.src.Peek(1) == 'u' {
			escaped = true
			l.advance()
			l.advance()
			r, ok := l.scanHex4()
			if !ok {
				l.addError(l.curPos(), "invalid unicode escape in identifier")
				break
			}
			sb.WriteRune(r)
			continue
		}
		if sb.Len() == 0 {
			if !isIdentStart(c) {
				break
			}
		} else if !isIdentPart(c) {
			break
		}
		sb.WriteRune(c)
		l.advance()
	}

	text := sb.String()
	kind := token.IDENT
	if !escaped {
		if kw, ok := token.Lookup(text); ok {
			kind = kw
		}
	}
	return l.finish(kind, text, begin, line, col, ltm, escaped)
}

func (l *Lexer) scanHex4() (rune, bool) {
	var v rune
	for i := 0; i < 4; i++ {
		c := l.src.Peek(0)
		d, ok := hexDigit(c)
		if !ok {
			return 0, false
		}
		v = v<<4 | rune(d)
		l.advance()
	}
	return v, true
}

func hexDigit(c rune) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

func (l *Lexer) scanNumber(begin, line, col int, ltm bool) token.Token {
	var sb strings.Builder
	isOctal := false

	if l.src.Peek(0) == '0' && (l.src.Peek(1) == 'x' || l.src.Peek(1) == 'X') {
		sb.WriteRune(l.advance())
		sb.WriteRune(l.advance())
		for isHexDigit(l.src.Peek(0)) {
			sb.WriteRune(l.advance())
		}
		return l.finishNumber(sb.String(), begin, line, col, ltm, false)
	}

	if l.src.Peek(0) == '0' && isOctalDigit(l.src.Peek(1)) {
		isOctal = true
		sb.WriteRune(l.advance())
		for isOctalDigit(l.src.Peek(0)) {
			sb.WriteRune(l.advance())
		}
		return l.finishNumber(sb.String(), begin, line, col, ltm, isOctal)
	}

	for unicode.IsDigit(l.src.Peek(0)) {
		sb.WriteRune(l.advance())
	}
	if l.src.Peek(0) == '.' {
		sb.WriteRune(l.advance())
		for unicode.IsDigit(l.src.Peek(0)) {
			sb.WriteRune(l.advance())
		}
	}
	if l.src.Peek(0) == 'e' || l.src.Peek(0) == 'E' {
		sb.WriteRune(l.advance())
		if l.src.Peek(0) == '+' || l.src.Peek(0) == '-' {
			sb.WriteRune(l.advance())
		}
		for unicode.IsDigit(l.src.Peek(0)) {
			sb.WriteRune(l.advance())
		}
	}
	return l.finishNumber(sb.String(), begin, line, col, ltm, false)
}

func (l *Lexer) finishNumber(text string, begin, line, col int, ltm, octal bool) token.Token {
	tok := l.finish(token.NUMBER, text, begin, line, col, ltm, false)
	tok.ContainsEscape = octal // repurposed: NUMBER tokens use this bit to flag legacy octal
	return tok
}

func isHexDigit(c rune) bool {
	_, ok := hexDigit(c)
	return ok
}

func isOctalDigit(c rune) bool {
	return c >= '0' && c <= '7'
}

// scanString scans a single- or double-quoted string literal, including
// \xNN, \uNNNN, optional octal escapes, and line continuations. The
// returned Literal is the unescaped string value; ContainsEscape is set
// whenever any escape or line continuation was present (spec §4.3).
func (l *Lexer) scanString(begin, line, col int, ltm bool) token.Token {
	quote := l.advance()
	var sb strings.Builder
	escaped := false

	for {
		c := l.src.Peek(0)
		if c == source.EOF || isLineTerminator(c) {
			l.addError(l.curPos(), "unterminated string literal")
			break
		}
		if c == quote {
			l.advance()
			break
		}
		if c == '\\' {
			escaped = true
			l.advance()
			l.scanStringEscape(&sb)
			continue
		}
		sb.WriteRune(c)
		l.advance()
	}

	return l.finish(token.STRING, sb.String(), begin, line, col, ltm, escaped)
}

func (l *Lexer) scanStringEscape(sb *strings.Builder) {
	c := l.src.Peek(0)
	switch c {
	case source.EOF:
		return
	case '\n', lineSeparator, paragraphSeparator:
		l.advance() // line continuation: contributes no character
		return
	case '\r':
		l.advance()
		if l.src.Peek(0) == '\n' {
			l.advance()
		}
		return
	case 'n':
		sb.WriteByte('\n')
		l.advance()
	case 't':
		sb.WriteByte('\t')
		l.advance()
	case 'r':
		sb.WriteByte('\r')
		l.advance()
	case 'b':
		sb.WriteByte('\b')
		l.advance()
	case 'f':
		sb.WriteByte('\f')
		l.advance()
	case 'v':
		sb.WriteByte('\v')
		l.advance()
	case 'x':
		l.advance()
		var v rune
		ok := true
		for i := 0; i < 2; i++ {
			d, good := hexDigit(l.src.Peek(0))
			if !good {
				ok = false
				break
			}
			v = v<<4 | rune(d)
			l.advance()
		}
		if ok {
			sb.WriteRune(v)
		}
	case 'u':
		l.advance()
		if r, ok := l.scanHex4(); ok {
			sb.WriteRune(r)
		}
	case '0', '1', '2', '3', '4', '5', '6', '7':
		if l.octalEscapes {
			v := rune(0)
			for i := 0; i < 3 && isOctalDigit(l.src.Peek(0)); i++ {
				d, _ := hexDigit(l.src.Peek(0))
				v = v*8 + rune(d)
				l.advance()
			}
			sb.WriteRune(v)
		} else {
			sb.WriteRune(l.advance())
		}
	default:
		sb.WriteRune(l.advance())
	}
}

// scanPunctuator scans a punctuator token, using maximal munch.
func (l *Lexer) scanPunctuator(begin, line, col int, ltm bool) token.Token {
	c := l.advance()
	two := func(next rune, k2 token.Kind, k1 token.Kind) token.Token {
		if l.src.Peek(0) == next {
			l.advance()
			return l.finish(k2, "", begin, line, col, ltm, false)
		}
		return l.finish(k1, "", begin, line, col, ltm, false)
	}

	switch c {
	case '{':
		return l.finish(token.LBRACE, "", begin, line, col, ltm, false)
	case '}':
		return l.finish(token.RBRACE, "", begin, line, col, ltm, false)
	case '(':
		return l.finish(token.LPAREN, "", begin, line, col, ltm, false)
	case ')':
		return l.finish(token.RPAREN, "", begin, line, col, ltm, false)
	case '[':
		return l.finish(token.LBRACK, "", begin, line, col, ltm, false)
	case ']':
		return l.finish(token.RBRACK, "", begin, line, col, ltm, false)
	case ';':
		return l.finish(token.SEMI, "", begin, line, col, ltm, false)
	case ',':
		return l.finish(token.COMMA, "", begin, line, col, ltm, false)
	case '?':
		return l.finish(token.COND, "", begin, line, col, ltm, false)
	case ':':
		return l.finish(token.COLON, "", begin, line, col, ltm, false)
	case '~':
		return l.finish(token.BIT_NOT, "", begin, line, col, ltm, false)
	case '.':
		return l.finish(token.DOT, "", begin, line, col, ltm, false)
	case '+':
		if l.src.Peek(0) == '+' {
			l.advance()
			return l.finish(token.INC, "", begin, line, col, ltm, false)
		}
		return two('=', token.ASSIGN_ADD, token.ADD)
	case '-':
		if l.src.Peek(0) == '-' {
			l.advance()
			return l.finish(token.DEC, "", begin, line, col, ltm, false)
		}
		return two('=', token.ASSIGN_SUB, token.SUB)
	case '*':
		return two('=', token.ASSIGN_MUL, token.MUL)
	case '%':
		return two('=', token.ASSIGN_MOD, token.MOD)
	case '/':
		return two('=', token.ASSIGN_DIV, token.DIV)
	case '^':
		return two('=', token.ASSIGN_BIT_XOR, token.BIT_XOR)
	case '&':
		if l.src.Peek(0) == '&' {
			l.advance()
			return l.finish(token.AND, "", begin, line, col, ltm, false)
		}
		return two('=', token.ASSIGN_BIT_AND, token.BIT_AND)
	case '|':
		if l.src.Peek(0) == '|' {
			l.advance()
			return l.finish(token.OR, "", begin, line, col, ltm, false)
		}
		return two('=', token.ASSIGN_BIT_OR, token.BIT_OR)
	case '!':
		if l.src.Peek(0) == '=' {
			l.advance()
			if l.src.Peek(0) == '=' {
				l.advance()
				return l.finish(token.STRICT_NEQ, "", begin, line, col, ltm, false)
			}
			return l.finish(token.NEQ, "", begin, line, col, ltm, false)
		}
		return l.finish(token.NOT, "", begin, line, col, ltm, false)
	case '=':
		if l.src.Peek(0) == '=' {
			l.advance()
			if l.src.Peek(0) == '=' {
				l.advance()
				return l.finish(token.STRICT_EQ, "", begin, line, col, ltm, false)
			}
			return l.finish(token.EQ, "", begin, line, col, ltm, false)
		}
		return l.finish(token.ASSIGN, "", begin, line, col, ltm, false)
	case '<':
		if l.src.Peek(0) == '<' {
			l.advance()
			return two('=', token.ASSIGN_SHL, token.SHL)
		}
		return two('=', token.LTE, token.LT)
	case '>':
		if l.src.Peek(0) == '>' {
			l.advance()
			if l.src.Peek(0) == '>' {
				l.advance()
				return two('=', token.ASSIGN_SHR, token.SHR)
			}
			return two('=', token.ASSIGN_SAR, token.SAR)
		}
		return two('=', token.GTE, token.GT)
	}

	l.addError(token.Position{Begin: begin, End: l.offset, Line: line, Column: col}, "unexpected character %q", c)
	return l.finish(token.ILLEGAL, string(c), begin, line, col, ltm, false)
}

// scanRegex scans a RegularExpressionLiteral body starting at the leading
// "/" (spec §4.3 "Regex re-lex"): the body runs between "/" and the next
// unescaped "/" outside a "[...]" character class, followed by identifier
// continue characters (the flags).
func (l *Lexer) scanRegex(begin, line, col int, ltm bool) token.Token {
	l.advance() // leading "/"

	var sb strings.Builder
	inClass := false
	for {
		c := l.src.Peek(0)
		if c == source.EOF || isLineTerminator(c) {
			l.addError(l.curPos(), "unterminated regular expression literal")
			break
		}
		if c == '\\' {
			sb.WriteRune(l.advance())
			if l.src.Peek(0) != source.EOF {
				sb.WriteRune(l.advance())
			}
			continue
		}
		if c == '[' {
			inClass = true
		} else if c == ']' {
			inClass = false
		} else if c == '/' && !inClass {
			sb.WriteRune(l.advance())
			break
		}
		sb.WriteRune(c)
		l.advance()
	}

	for isIdentPart(l.src.Peek(0)) {
		sb.WriteRune(l.advance())
	}

	return l.finish(token.REGEXP, sb.String(), begin, line, col, ltm, false)
}

// ParseNumericLiteral converts a NUMBER token's literal text into a float64,
// honoring hex (0x/0X) and legacy octal prefixes, both detected from the
// literal text itself.
func ParseNumericLiteral(literal string) (float64, error) {
	if len(literal) > 1 && (literal[1] == 'x' || literal[1] == 'X') {
		v, err := strconv.ParseUint(literal[2:], 16, 64)
		return float64(v), err
	}
	if len(literal) > 1 && literal[0] == '0' && isAllOctal(literal[1:]) {
		v, err := strconv.ParseUint(literal[1:], 8, 64)
		return float64(v), err
	}
	return strconv.ParseFloat(literal, 64)
}

func isAllOctal(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !isOctalDigit(c) {
			return false
		}
	}
	return true
}
