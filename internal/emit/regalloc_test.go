package emit

import (
	"testing"

	"github.com/kindahl/es2c/internal/ir"
)

func TestAllocateReusesSlotAfterLastUse(t *testing.T) {
	fn := &ir.Function{Name: "f"}
	entry := fn.NewBlock("entry")
	c := &ir.Const{Kind: ir.ConstDouble, Typ: ir.DoubleType(), Num: 1}

	a := &ir.Instr{Op: ir.OpBinRaw, Typ: ir.DoubleType(), Args: []ir.Value{c, c}}
	entry.Append(a)
	// Effect-only consumer of a: no result of its own, so a's slot frees
	// without any same-instruction aliasing question.
	entry.Append(&ir.Instr{Op: ir.OpMemStore, Typ: ir.VoidType(), Args: []ir.Value{c, a}})
	b := &ir.Instr{Op: ir.OpBinRaw, Typ: ir.DoubleType(), Args: []ir.Value{c, c}}
	entry.Append(b)
	entry.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})

	slots := Allocate(fn)
	if slots.Of(a) != slots.Of(b) {
		t.Fatalf("expected b to reuse a's slot once a's last use has passed: a=%d b=%d", slots.Of(a), slots.Of(b))
	}
	if slots.Count() != 1 {
		t.Fatalf("expected exactly 1 slot to be needed, got %d", slots.Count())
	}
}

func TestAllocateGivesPersistentValuesUniqueFunctionLifetimeSlots(t *testing.T) {
	fn := &ir.Function{Name: "f"}
	entry := fn.NewBlock("entry")
	c := &ir.Const{Kind: ir.ConstDouble, Typ: ir.DoubleType(), Num: 1}

	p := &ir.Instr{Op: ir.OpBinRaw, Typ: ir.DoubleType(), Args: []ir.Value{c, c}}
	p.MarkPersistent()
	entry.Append(p)
	usesP := &ir.Instr{Op: ir.OpBinRaw, Typ: ir.DoubleType(), Args: []ir.Value{p, c}}
	entry.Append(usesP)
	other := &ir.Instr{Op: ir.OpBinRaw, Typ: ir.DoubleType(), Args: []ir.Value{c, c}}
	entry.Append(other)
	entry.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})

	slots := Allocate(fn)
	if slots.Of(p) == slots.Of(other) {
		t.Fatalf("a persistent value must never share its slot with a reused one")
	}
	if slots.Of(usesP) == slots.Of(p) {
		t.Fatalf("the consumer of a persistent value must not collide with it")
	}
}

func TestAllocateSkipsInstructionsWithoutAResult(t *testing.T) {
	fn := &ir.Function{Name: "f"}
	entry := fn.NewBlock("entry")
	store := &ir.Instr{Op: ir.OpMemStore, Typ: ir.VoidType()}
	entry.Append(store)
	entry.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})

	slots := Allocate(fn)
	if slots.Count() != 0 {
		t.Fatalf("a function with no result-producing instruction needs no slots, got %d", slots.Count())
	}
}
