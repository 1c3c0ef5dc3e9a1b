package ir

import (
	"fmt"

	"github.com/kindahl/es2c/internal/ast"
	"github.com/kindahl/es2c/internal/sema"
)

// Instr is the IR's single instruction representation: a discriminated
// union over Op, carrying only the operand fields meaningful for that Op.
// An Instr whose Op.HasResult() is true also implements Value: its result
// is the instruction itself.
type Instr struct {
	Op   Op
	Typ  Type
	Args []Value // operand values, in opcode-defined order

	BinKind   ast.BinaryOp // meaningful for OpBinRaw, OpBinES
	UnaryKind ast.UnaryOp  // meaningful for OpUnaryNeg, OpUnaryBitNot, OpUnaryLogNot

	Key PropertyKey // meaningful for the *Imm-keyed prp_* ops

	Str   string // raw payload: new_regex source, context/link binding name
	StrID int    // interned-string id, meaningful for several ops
	Int   int64  // generic integer immediate: stk_alloc/stk_free count, bnd_extra_ptr hop count, vp/fp index, cache id
	Bool_ bool   // generic boolean immediate: OpReturn's completion flag, OpCtxSetStrict's strict flag

	Targets []*Block // successor blocks, meaningful for terminators

	persistent bool

	block      *Block
	prev, next *Instr
}

func (i *Instr) Type() Type       { return i.Typ }
func (i *Instr) Persistent() bool { return i.persistent }

// MarkPersistent forces a full-lifetime register slot for i, per spec's
// "persistent bit" on IR values (e.g. a bnd_extra_init pointer, or any
// value reachable from an exception-unwind path).
func (i *Instr) MarkPersistent() { i.persistent = true }

// Block returns the Block i currently belongs to, or nil if detached.
func (i *Instr) Block() *Block { return i.block }

func (i *Instr) String() string {
	s := i.Op.String()
	if len(i.Args) == 0 {
		return s
	}
	for j, a := range i.Args {
		if j == 0 {
			s += " " + a.String()
		} else {
			s += ", " + a.String()
		}
	}
	return s
}

// IsTerminator reports whether i is the terminating instruction of its
// block.
func (i *Instr) IsTerminator() bool { return i.Op.IsTerminator() }

// Block owns an ordered instruction sequence and the set of terminators
// that target it (spec §3 "referrers"). Blocks are linked intrusively into
// a per-function doubly-linked list with sentinel head/tail so Next/Prev
// reflect emission order without an index renumbering pass.
type Block struct {
	Function  *Function
	Label     string // optional, printer-only
	Instrs    []*Instr
	Referrers []*Instr // terminators elsewhere whose Targets include this block

	prev, next *Block
}

// Append adds instr to the end of b's instruction list.
func (b *Block) Append(instr *Instr) {
	instr.block = b
	b.Instrs = append(b.Instrs, instr)
	if instr.IsTerminator() {
		for _, t := range instr.Targets {
			t.addReferrer(instr)
		}
	}
}

func (b *Block) addReferrer(term *Instr) {
	b.Referrers = append(b.Referrers, term)
}

// RemoveReferrer drops term from b's referrer set; used by the optimizer
// when a block's sole referring terminator is rewritten or eliminated.
func (b *Block) RemoveReferrer(term *Instr) {
	out := b.Referrers[:0]
	for _, r := range b.Referrers {
		if r != term {
			out = append(out, r)
		}
	}
	b.Referrers = out
}

// Terminator returns b's last instruction if it is a terminator, else nil.
func (b *Block) Terminator() *Instr {
	if len(b.Instrs) == 0 {
		return nil
	}
	last := b.Instrs[len(b.Instrs)-1]
	if last.IsTerminator() {
		return last
	}
	return nil
}

// Next returns b's sibling in emission order, or nil at the tail.
func (b *Block) Next() *Block { return b.next }

// Prev returns b's sibling preceding it in emission order, or nil at the
// head.
func (b *Block) Prev() *Block { return b.prev }

// VarStorage is the IR-builder-facing record of one function-local
// binding's resolved storage, carried on Function per spec §3's
// "variable-storage map".
type VarStorage struct {
	Name    string
	Storage sema.StorageClass
}

// Function is one IR function: its intrusive block list, parsed-source
// metadata, and the resolved storage of every binding it owns.
type Function struct {
	Name     string
	IsGlobal bool

	File    string
	Pos     int // source-byte offset of the function literal
	Storage []VarStorage

	head, tail *Block
}

// NewBlock creates a fresh block and appends it to fn's block list.
func (fn *Function) NewBlock(label string) *Block {
	b := &Block{Function: fn, Label: label}
	if fn.tail == nil {
		fn.head, fn.tail = b, b
	} else {
		b.prev = fn.tail
		fn.tail.next = b
		fn.tail = b
	}
	return b
}

// Blocks returns fn's blocks in emission order.
func (fn *Function) Blocks() []*Block {
	out := make([]*Block, 0)
	for b := fn.head; b != nil; b = b.next {
		out = append(out, b)
	}
	return out
}

// RemoveBlock detaches b from fn's intrusive list. Callers must have
// already cleared b's referrers and retargeted anything that branched to
// it; used by internal/optimize's dead-block pass.
func (fn *Function) RemoveBlock(b *Block) {
	if b.prev != nil {
		b.prev.next = b.next
	} else {
		fn.head = b.next
	}
	if b.next != nil {
		b.next.prev = b.prev
	} else {
		fn.tail = b.prev
	}
	b.prev, b.next = nil, nil
}

// Module is an ordered compilation unit: every function, plus the ordered
// set of interned strings the runtime must register during __es_data.
type Module struct {
	Functions []*Function
	Strings   []InternedString
}

// InternedString is one string-pool entry the emitter registers at
// runtime init.
type InternedString struct {
	ID    int
	Value string
}

// Verify checks the structural invariants spec.md requires at the end of
// IR build (items 1 and 2 of its seven; the stack-balance, context-balance,
// storage-reclassification, eval-taint and string-id invariants are
// maintained by internal/irbuild's construction discipline itself rather
// than re-derivable from the finished graph).
func Verify(fn *Function) error {
	for _, b := range fn.Blocks() {
		if len(b.Instrs) == 0 {
			return fmt.Errorf("function %s: block %q is empty", fn.Name, b.Label)
		}
		if b.Terminator() == nil {
			return fmt.Errorf("function %s: block %q does not end in a terminator", fn.Name, b.Label)
		}
		for _, instr := range b.Instrs[:len(b.Instrs)-1] {
			if instr.IsTerminator() {
				return fmt.Errorf("function %s: block %q has a terminator before its end", fn.Name, b.Label)
			}
		}
		term := b.Terminator()
		for _, target := range term.Targets {
			found := false
			for _, r := range target.Referrers {
				if r == term {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("function %s: block %q targets a block that doesn't list it as a referrer", fn.Name, b.Label)
			}
		}
	}
	return nil
}
