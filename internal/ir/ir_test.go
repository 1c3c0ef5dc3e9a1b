package ir

import (
	"testing"

	"github.com/kindahl/es2c/internal/ast"
)

func TestBlockLinkingAndReferrers(t *testing.T) {
	fn := &Function{Name: "f"}
	entry := fn.NewBlock("entry")
	body := fn.NewBlock("body")
	exit := fn.NewBlock("exit")

	entry.Append(&Instr{Op: OpJump, Typ: VoidType(), Targets: []*Block{body}})
	body.Append(&Instr{Op: OpReturn, Typ: VoidType(), Bool_: true})
	exit.Append(&Instr{Op: OpReturn, Typ: VoidType(), Bool_: false})

	if len(body.Referrers) != 1 {
		t.Fatalf("expected body to have 1 referrer, got %d", len(body.Referrers))
	}
	if entry.Next() != body || body.Next() != exit {
		t.Fatalf("unexpected block ordering")
	}
	if exit.Next() != nil {
		t.Fatalf("expected exit to be the tail")
	}
}

func TestVerifyRejectsMissingTerminator(t *testing.T) {
	fn := &Function{Name: "f"}
	b := fn.NewBlock("entry")
	b.Append(&Instr{Op: OpStkAlloc, Typ: VoidType(), Int: 2})

	if err := Verify(fn); err == nil {
		t.Fatalf("expected Verify to reject a block without a terminator")
	}
}

func TestVerifyRejectsDanglingReferrer(t *testing.T) {
	fn := &Function{Name: "f"}
	entry := fn.NewBlock("entry")
	target := fn.NewBlock("target")
	term := &Instr{Op: OpJump, Typ: VoidType(), Targets: []*Block{target}}
	entry.Append(term)
	target.Append(&Instr{Op: OpReturn, Typ: VoidType(), Bool_: true})

	target.RemoveReferrer(term)
	if err := Verify(fn); err == nil {
		t.Fatalf("expected Verify to reject a target missing its referrer")
	}
}

func TestBinRawCarriesOperatorKind(t *testing.T) {
	lhs := &Const{Kind: ConstDouble, Typ: DoubleType(), Num: 1}
	rhs := &Const{Kind: ConstDouble, Typ: DoubleType(), Num: 2}
	add := &Instr{Op: OpBinRaw, Typ: DoubleType(), BinKind: ast.OpAdd, Args: []Value{lhs, rhs}}
	if add.BinKind != ast.OpAdd {
		t.Fatalf("expected OpAdd, got %v", add.BinKind)
	}
	if add.String() != "bin_raw 1, 2" {
		t.Fatalf("unexpected disassembly: %q", add.String())
	}
}

func TestPersistentBit(t *testing.T) {
	instr := &Instr{Op: OpBndExtraInit, Typ: PointerTypeTo(ValueType())}
	if instr.Persistent() {
		t.Fatalf("expected not persistent by default")
	}
	instr.MarkPersistent()
	if !instr.Persistent() {
		t.Fatalf("expected persistent after MarkPersistent")
	}
}

func TestOpHasResultExcludesEffectOnlyOps(t *testing.T) {
	for _, op := range []Op{OpStkAlloc, OpMemStore, OpCtxLeave, OpBranch, OpJump, OpReturn} {
		if op.HasResult() {
			t.Fatalf("expected %v to have no result", op)
		}
	}
	for _, op := range []Op{OpBinRaw, OpCall, OpNewObject, OpMetaCtxLoad} {
		if !op.HasResult() {
			t.Fatalf("expected %v to have a result", op)
		}
	}
}
