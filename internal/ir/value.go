package ir

import "fmt"

// Value is anything an Instr can take as an operand: a Const or an Instr
// whose own result is used by another instruction (spec §3 "IR value" —
// "one of: a constant ... or an instruction whose result value is the
// instruction itself"). The Persistent bit disables short liveness and
// forces the register allocator to hand out a full-lifetime slot; it is
// set for values that must survive across block boundaries the liveness
// walk can't see through, e.g. a bnd_extra_init pointer held open for the
// life of the function.
type Value interface {
	Type() Type
	Persistent() bool
	String() string
}

// ConstKind distinguishes the constant shapes the builder and emitter
// need a literal IR operand for.
type ConstKind int

const (
	ConstArrayElement ConstKind = iota
	ConstFramePointer
	ConstValuePointer
	ConstTypedNull
	ConstBool
	ConstDouble
	ConstStringifiedDouble
	ConstString
	ConstTaggedValue
)

// Const is a literal IR operand. Only the fields meaningful for Kind are
// populated; the rest are zero.
type Const struct {
	Kind  ConstKind
	Typ   Type
	Bool  bool
	Num   float64
	Str   string // meaningful for ConstStringifiedDouble, ConstString
	StrID int    // interned-string pool id, meaningful for ConstString, ConstTaggedValue
}

func (c *Const) Type() Type       { return c.Typ }
func (c *Const) Persistent() bool { return false }

func (c *Const) String() string {
	switch c.Kind {
	case ConstArrayElement:
		return "<array-elem>"
	case ConstFramePointer:
		return "fp"
	case ConstValuePointer:
		return "vp"
	case ConstTypedNull:
		return fmt.Sprintf("null:%s", c.Typ)
	case ConstBool:
		if c.Bool {
			return "true"
		}
		return "false"
	case ConstDouble:
		return fmt.Sprintf("%g", c.Num)
	case ConstStringifiedDouble:
		return c.Str
	case ConstString:
		return fmt.Sprintf("str#%d(%q)", c.StrID, c.Str)
	case ConstTaggedValue:
		return fmt.Sprintf("tagged-str#%d", c.StrID)
	default:
		return "<const>"
	}
}

// PropertyKey is an immediate property-key operand for the fast-path
// get/put/delete instructions. At the ABI boundary (internal/emit) this
// becomes a 64-bit value with the high bit marking named-vs-indexed; here
// it stays a small tagged struct.
type PropertyKey struct {
	Named bool
	StrID int    // meaningful when Named
	Index uint32 // meaningful when !Named
}

func (k PropertyKey) String() string {
	if k.Named {
		return fmt.Sprintf("#%d", k.StrID)
	}
	return fmt.Sprintf("[%d]", k.Index)
}
