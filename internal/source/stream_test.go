package source

import "testing"

func TestNewDecodesPlainUTF8(t *testing.T) {
	s := New([]byte("ab"))
	if r := s.Next(); r != 'a' {
		t.Fatalf("Next() = %q, want 'a'", r)
	}
	if r := s.Next(); r != 'b' {
		t.Fatalf("Next() = %q, want 'b'", r)
	}
	if r := s.Next(); r != EOF {
		t.Fatalf("Next() = %q, want EOF", r)
	}
}

func TestNewStripsUTF8BOM(t *testing.T) {
	src := append([]byte{0xEF, 0xBB, 0xBF}, "x"...)
	s := New(src)
	if r := s.Next(); r != 'x' {
		t.Fatalf("Next() = %q, want 'x' (BOM must be stripped)", r)
	}
}

func TestNewDecodesUTF16LE(t *testing.T) {
	// "A" (U+0041) then "B" (U+0042), little-endian, with a BOM.
	src := []byte{0xFF, 0xFE, 0x41, 0x00, 0x42, 0x00}
	s := New(src)
	if r := s.Next(); r != 'A' {
		t.Fatalf("Next() = %q, want 'A'", r)
	}
	if r := s.Next(); r != 'B' {
		t.Fatalf("Next() = %q, want 'B'", r)
	}
}

func TestNewDecodesUTF16BE(t *testing.T) {
	src := []byte{0xFE, 0xFF, 0x00, 0x41, 0x00, 0x42}
	s := New(src)
	if r := s.Next(); r != 'A' {
		t.Fatalf("Next() = %q, want 'A'", r)
	}
	if r := s.Next(); r != 'B' {
		t.Fatalf("Next() = %q, want 'B'", r)
	}
}

func TestPushMakesNextReturnTheSameRuneAgain(t *testing.T) {
	s := New([]byte("ab"))
	s.Next() // 'a'
	s.Push('x')
	if r := s.Next(); r != 'x' {
		t.Fatalf("Next() after Push('x') = %q, want 'x'", r)
	}
	if r := s.Next(); r != 'b' {
		t.Fatalf("Next() = %q, want 'b'", r)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	s := New([]byte("abc"))
	if r := s.Peek(1); r != 'b' {
		t.Fatalf("Peek(1) = %q, want 'b'", r)
	}
	if r := s.Next(); r != 'a' {
		t.Fatalf("Next() after Peek = %q, want 'a' (Peek must not consume)", r)
	}
}

func TestPeekPastEndReturnsEOF(t *testing.T) {
	s := New([]byte("a"))
	if r := s.Peek(5); r != EOF {
		t.Fatalf("Peek(5) = %q, want EOF", r)
	}
}

func TestSkipAdvancesAndClampsAtEnd(t *testing.T) {
	s := New([]byte("abc"))
	s.Skip(2)
	if r := s.Next(); r != 'c' {
		t.Fatalf("Next() after Skip(2) = %q, want 'c'", r)
	}
	s.Skip(100)
	if r := s.Next(); r != EOF {
		t.Fatalf("Next() after over-skip = %q, want EOF", r)
	}
}

func TestPositionAndSetPositionRoundTrip(t *testing.T) {
	s := New([]byte("abcd"))
	s.Next()
	s.Next()
	mark := s.Position()
	s.Next()
	s.Next()

	s.SetPosition(mark)
	if r := s.Next(); r != 'c' {
		t.Fatalf("Next() after SetPosition(mark) = %q, want 'c'", r)
	}
}
