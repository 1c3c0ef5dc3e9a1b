package optimize

import (
	"testing"

	"github.com/kindahl/es2c/internal/ir"
)

// buildChainWithOrphan constructs a function with a linear entry -> a -> b chain, all
// terminated by jumps, plus an orphan block with no referrers.
func buildChainWithOrphan() *ir.Function {
	fn := &ir.Function{Name: "f"}
	entry := fn.NewBlock("entry")
	a := fn.NewBlock("a")
	b := fn.NewBlock("b")
	orphan := fn.NewBlock("orphan")

	entry.Append(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{a}})
	a.Append(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{b}})
	b.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})
	orphan.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: false})

	return fn
}

func TestRemoveDeadBlocksDropsOrphan(t *testing.T) {
	fn := buildChainWithOrphan()
	if len(fn.Blocks()) != 4 {
		t.Fatalf("expected 4 blocks before optimization, got %d", len(fn.Blocks()))
	}

	changed := removeDeadBlocks(nil, fn)
	if !changed {
		t.Fatalf("expected removeDeadBlocks to report a change")
	}

	blocks := fn.Blocks()
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks after dropping the orphan, got %d", len(blocks))
	}
	for _, b := range blocks {
		if b.Label == "orphan" {
			t.Fatalf("orphan block should have been removed")
		}
	}
}

func TestRemoveDeadBlocksKeepsEntryEvenWithoutReferrers(t *testing.T) {
	fn := &ir.Function{Name: "f"}
	entry := fn.NewBlock("entry")
	entry.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})

	changed := removeDeadBlocks(nil, fn)
	if changed {
		t.Fatalf("a lone entry block should never be dropped")
	}
	if len(fn.Blocks()) != 1 {
		t.Fatalf("expected entry block to survive, got %d blocks", len(fn.Blocks()))
	}
}

func TestRemoveDeadBlocksCascades(t *testing.T) {
	// entry -> a -> b, plus c that only b referred to; removing b (once it
	// becomes unreferenced) should also make c unreferenced on a later pass.
	fn := &ir.Function{Name: "f"}
	entry := fn.NewBlock("entry")
	a := fn.NewBlock("a")
	b := fn.NewBlock("b")
	c := fn.NewBlock("c")

	entry.Append(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{a}})
	a.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})
	b.Append(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{c}})
	c.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: false})
	// b starts with zero referrers; c is referred to only by b.

	m := &ir.Module{Functions: []*ir.Function{fn}}
	Run(m)

	for _, blk := range fn.Blocks() {
		if blk.Label == "b" || blk.Label == "c" {
			t.Fatalf("block %s should have been removed by Run once b was dropped", blk.Label)
		}
	}
}

func TestWithPassDisablesDeadBlockRemoval(t *testing.T) {
	fn := buildChainWithOrphan()
	m := &ir.Module{Functions: []*ir.Function{fn}}

	Run(m, WithPass(PassDeadBlocks, false))

	if len(fn.Blocks()) != 4 {
		t.Fatalf("expected orphan to survive with PassDeadBlocks disabled, got %d blocks", len(fn.Blocks()))
	}
}

func TestNoOpPassesReportNoChange(t *testing.T) {
	fn := buildChainWithOrphan()
	if constFold(nil, fn) {
		t.Fatalf("constFold is a no-op in this revision")
	}
	if peephole(nil, fn) {
		t.Fatalf("peephole is a no-op in this revision")
	}
	if cacheCoalesce(nil, fn) {
		t.Fatalf("cacheCoalesce is a no-op in this revision")
	}
}
