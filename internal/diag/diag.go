// Package diag formats compiler diagnostics with source context and a caret
// pointing at the offending column, in the style carried through every
// stage of the pipeline (lexer, parser, sema, irbuild).
package diag

import (
	"fmt"
	"strings"

	"github.com/kindahl/es2c/internal/token"
)

// Severity distinguishes a hard error from an advisory warning.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Error is a single diagnostic: a message tied to a source position, plus
// enough of the surrounding source text to render a caret.
type Error struct {
	File     string
	Source   string
	Pos      token.Position
	Message  string
	Severity Severity
}

// New builds an Error with SeverityError.
func New(file, source string, pos token.Position, format string, args ...interface{}) *Error {
	return &Error{File: file, Source: source, Pos: pos, Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}

// NewWarning builds an Error with SeverityWarning.
func NewWarning(file, source string, pos token.Position, format string, args ...interface{}) *Error {
	return &Error{File: file, Source: source, Pos: pos, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning}
}

// Error implements the error interface as a compact one-liner with the
// standard file:line:col prefix. The CLI wraps this in its own
// "in: <file>: ..." framing (spec §6) rather than reusing this format
// directly.
func (e *Error) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%d:%d: %s: %s", e.Pos.Line, e.Pos.Column, e.Severity, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", e.File, e.Pos.Line, e.Pos.Column, e.Severity, e.Message)
}

// Format renders the full multi-line diagnostic: a header, the offending
// source line, and a caret under the reported column.
func (e *Error) Format() string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "%s:%d:%d: %s: %s\n", e.File, e.Pos.Line, e.Pos.Column, e.Severity, e.Message)
	} else {
		fmt.Fprintf(&sb, "%d:%d: %s: %s\n", e.Pos.Line, e.Pos.Column, e.Severity, e.Message)
	}

	line := sourceLine(e.Source, e.Pos.Line)
	if line == "" {
		return sb.String()
	}

	gutter := fmt.Sprintf("%5d | ", e.Pos.Line)
	sb.WriteString(gutter)
	sb.WriteString(line)
	sb.WriteString("\n")

	col := e.Pos.Column
	if col < 1 {
		col = 1
	}
	sb.WriteString(strings.Repeat(" ", len(gutter)+col-1))
	sb.WriteString("^\n")

	return sb.String()
}

func sourceLine(source string, n int) string {
	if source == "" || n < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// List is an ordered collection of diagnostics accumulated during a single
// compilation phase. A List is also an error, so a phase can return it
// directly once non-empty.
type List struct {
	Errors []*Error
}

// Add appends an error-severity diagnostic.
func (l *List) Add(file, source string, pos token.Position, format string, args ...interface{}) {
	l.Errors = append(l.Errors, New(file, source, pos, format, args...))
}

// AddWarning appends a warning-severity diagnostic.
func (l *List) AddWarning(file, source string, pos token.Position, format string, args ...interface{}) {
	l.Errors = append(l.Errors, NewWarning(file, source, pos, format, args...))
}

// HasErrors reports whether any diagnostic at SeverityError was recorded.
func (l *List) HasErrors() bool {
	for _, e := range l.Errors {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (l *List) Error() string {
	var sb strings.Builder
	for i, e := range l.Errors {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(e.Format())
	}
	return sb.String()
}
