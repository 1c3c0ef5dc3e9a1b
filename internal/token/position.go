// Package token defines the ES5.1 token kinds and the Token value itself.
package token

import "fmt"

// Position is a half-open source range, plus the line/column of its start
// for diagnostics. Offsets count decoded code points from the start of the
// source, not bytes; Line and Column are rune-based (1-indexed).
type Position struct {
	Begin  int
	End    int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Contains reports whether the code-point offset off falls within [Begin, End).
func (p Position) Contains(off int) bool {
	return off >= p.Begin && off < p.End
}
