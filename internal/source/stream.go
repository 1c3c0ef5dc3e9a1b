// Package source decodes raw source bytes (UTF-8, UTF-16LE, UTF-16BE, with
// or without a byte-order mark) into a push-backable stream of Unicode code
// points for the lexer.
package source

import (
	"unicode/utf16"
	"unicode/utf8"

	xunicode "golang.org/x/text/encoding/unicode"
)

// EOF is the sentinel code point returned once the stream is exhausted.
const EOF = rune(-1)

// Stream is a push-backable cursor over the Unicode code points of a source
// file. Construction sniffs the byte-order mark to pick a decoding; the
// decoded text is held as a single []rune buffer (the "buffered window").
// Push-back steps the cursor back one slot and writes the pushed rune
// there; push-back at the start of the buffer is ignored.
type Stream struct {
	runes []rune
	pos   int // index of the next rune to be returned by next()
}

// New decodes src according to its detected encoding and returns a fresh
// Stream positioned at the first code point.
//
// Detection: "EF BB BF" -> UTF-8; "FE FF" -> UTF-16BE; "FF FE" -> UTF-16LE;
// otherwise UTF-8 without a BOM.
func New(src []byte) *Stream {
	runes := decode(src)
	return &Stream{runes: runes}
}

func decode(src []byte) []rune {
	switch {
	case len(src) >= 3 && src[0] == 0xEF && src[1] == 0xBB && src[2] == 0xBF:
		return decodeUTF8(src[3:])
	case len(src) >= 2 && src[0] == 0xFE && src[1] == 0xFF:
		return decodeUTF16(src[2:], xunicode.BigEndian)
	case len(src) >= 2 && src[0] == 0xFF && src[1] == 0xFE:
		return decodeUTF16(src[2:], xunicode.LittleEndian)
	default:
		return decodeUTF8(src)
	}
}

func decodeUTF8(src []byte) []rune {
	out := make([]rune, 0, len(src))
	for len(src) > 0 {
		r, size := utf8.DecodeRune(src)
		out = append(out, r)
		src = src[size:]
	}
	return out
}

// decodeUTF16 decodes src as UTF-16 code units in the given byte order and
// combines surrogate pairs into single runes, matching how the runtime
// golang.org/x/text/encoding/unicode codecs report byte order internally.
func decodeUTF16(src []byte, order xunicode.Endianness) []rune {
	units := make([]uint16, 0, len(src)/2)
	for i := 0; i+1 < len(src); i += 2 {
		if order == xunicode.BigEndian {
			units = append(units, uint16(src[i])<<8|uint16(src[i+1]))
		} else {
			units = append(units, uint16(src[i+1])<<8|uint16(src[i]))
		}
	}
	return utf16.Decode(units)
}

// Next returns the next code point and advances the cursor, or EOF if the
// stream is exhausted.
func (s *Stream) Next() rune {
	if s.pos >= len(s.runes) {
		s.pos++
		return EOF
	}
	r := s.runes[s.pos]
	s.pos++
	return r
}

// Push pushes a single code point back onto the stream so the next call to
// Next returns it again. Push after EOF merely decrements the position
// without storing a character (the position was already clamped past the
// buffer's end).
func (s *Stream) Push(c rune) {
	if s.pos <= 0 {
		return
	}
	s.pos--
	if s.pos < len(s.runes) {
		s.runes[s.pos] = c
	}
}

// Skip advances the cursor by n code points, clamping to the end of the
// stream.
func (s *Stream) Skip(n int) {
	s.pos += n
	if s.pos > len(s.runes) {
		s.pos = len(s.runes)
	}
}

// Position returns the number of code points consumed so far.
func (s *Stream) Position() int {
	return s.pos
}

// Peek returns the code point n positions ahead (Peek(0) is the same as the
// next call to Next would return) without consuming anything.
func (s *Stream) Peek(n int) rune {
	idx := s.pos + n
	if idx < 0 || idx >= len(s.runes) {
		return EOF
	}
	return s.runes[idx]
}

// SetPosition seeks the cursor directly to a previously observed Position
// value (used for backtracking to a saved parse state).
func (s *Stream) SetPosition(pos int) {
	s.pos = pos
}
