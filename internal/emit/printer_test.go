package emit

import (
	"strings"
	"testing"

	"github.com/kindahl/es2c/internal/ir"
)

// buildBranchFunction constructs entry -> (then, join), then -> join, a
// layout chosen so join has two referrers (printed label) and then has
// exactly one (still printed: the printer labels every block with at
// least one referrer).
func buildBranchFunction() *ir.Function {
	fn := &ir.Function{Name: "f"}
	entry := fn.NewBlock("entry")
	join := fn.NewBlock("")
	then := fn.NewBlock("")

	cond := &ir.Const{Kind: ir.ConstBool, Typ: ir.BoolType(), Bool: true}
	entry.Append(&ir.Instr{Op: ir.OpBranch, Typ: ir.VoidType(), Args: []ir.Value{cond}, Targets: []*ir.Block{then, join}})
	then.Append(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{join}})
	join.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})

	return fn
}

func TestPrintLabelsOnlyReferencedBlocks(t *testing.T) {
	fn := buildBranchFunction()
	out := Print(&ir.Module{Functions: []*ir.Function{fn}})

	if strings.Contains(out, "entry:\n") {
		t.Fatalf("entry has no referrers and should not print a label line; got:\n%s", out)
	}
	if strings.Count(out, "L1:") != 1 {
		t.Fatalf("expected exactly one label line for the twice-referenced join block, got:\n%s", out)
	}
	if strings.Count(out, "L2:") != 1 {
		t.Fatalf("expected exactly one label line for the once-referenced then block, got:\n%s", out)
	}
}

func TestPrintAssignsStableRegisterNumbers(t *testing.T) {
	fn := &ir.Function{Name: "f"}
	entry := fn.NewBlock("entry")
	lhs := &ir.Const{Kind: ir.ConstDouble, Typ: ir.DoubleType(), Num: 1}
	rhs := &ir.Const{Kind: ir.ConstDouble, Typ: ir.DoubleType(), Num: 2}
	sum := &ir.Instr{Op: ir.OpBinRaw, Typ: ir.DoubleType(), Args: []ir.Value{lhs, rhs}}
	entry.Append(sum)
	doubled := &ir.Instr{Op: ir.OpBinRaw, Typ: ir.DoubleType(), Args: []ir.Value{sum, sum}}
	entry.Append(doubled)
	entry.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})

	out := Print(&ir.Module{Functions: []*ir.Function{fn}})
	if !strings.Contains(out, "%0 = bin_raw") {
		t.Fatalf("expected first result-producing instruction numbered %%0, got:\n%s", out)
	}
	if !strings.Contains(out, "%1 = bin_raw %0 %0") {
		t.Fatalf("expected the second instruction to reuse %%0 as both operands, got:\n%s", out)
	}
}

func TestPrintIsByteStableAcrossRuns(t *testing.T) {
	build := buildBranchFunction
	a := Print(&ir.Module{Functions: []*ir.Function{build()}})
	b := Print(&ir.Module{Functions: []*ir.Function{build()}})
	if a != b {
		t.Fatalf("expected identical output across independently-built but structurally equal modules:\n%s\n---\n%s", a, b)
	}
}

func TestPrintFormatsDoubleSentinels(t *testing.T) {
	fn := &ir.Function{Name: "f"}
	entry := fn.NewBlock("entry")
	nan := &ir.Const{Kind: ir.ConstDouble, Typ: ir.DoubleType(), Num: nan()}
	entry.Append(&ir.Instr{Op: ir.OpUnaryNeg, Typ: ir.DoubleType(), Args: []ir.Value{nan}})
	entry.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})

	out := Print(&ir.Module{Functions: []*ir.Function{fn}})
	if !strings.Contains(out, "NaN") {
		t.Fatalf("expected NaN sentinel in output, got:\n%s", out)
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestPrintShowsStkAllocCount(t *testing.T) {
	fn := &ir.Function{Name: "f"}
	entry := fn.NewBlock("entry")
	entry.Append(&ir.Instr{Op: ir.OpStkAlloc, Typ: ir.VoidType(), Int: 1})
	entry.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})

	out := Print(&ir.Module{Functions: []*ir.Function{fn}})
	if !strings.Contains(out, "stk_alloc 1") {
		t.Fatalf("expected stk_alloc's count immediate in the listing, got:\n%s", out)
	}
}

func TestPrintOmitsIntForOpsThatDoNotCarryOne(t *testing.T) {
	fn := &ir.Function{Name: "f"}
	entry := fn.NewBlock("entry")
	c := &ir.Const{Kind: ir.ConstDouble, Typ: ir.DoubleType(), Num: 1}
	entry.Append(&ir.Instr{Op: ir.OpBinRaw, Typ: ir.DoubleType(), Args: []ir.Value{c, c}})
	entry.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})

	out := Print(&ir.Module{Functions: []*ir.Function{fn}})
	if strings.Contains(out, "bin_raw 0") {
		t.Fatalf("bin_raw does not carry an Int immediate and should not print one, got:\n%s", out)
	}
}

func TestPrintListsInternedStrings(t *testing.T) {
	m := &ir.Module{
		Functions: []*ir.Function{{Name: "f", Storage: nil}},
		Strings:   []ir.InternedString{{ID: 0, Value: "hello"}},
	}
	m.Functions[0].NewBlock("entry").Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})

	out := Print(m)
	if !strings.Contains(out, `str #0 = "hello"`) {
		t.Fatalf("expected interned string header line, got:\n%s", out)
	}
}
