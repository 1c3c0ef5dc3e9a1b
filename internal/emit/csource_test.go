package emit

import (
	"strconv"
	"strings"
	"testing"

	"github.com/kindahl/es2c/internal/ir"
)

func TestEmitSourceJumpToImmediateSuccessorIsElided(t *testing.T) {
	fn := &ir.Function{Name: "f"}
	entry := fn.NewBlock("entry")
	next := fn.NewBlock("")
	entry.Append(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{next}})
	next.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})

	out := EmitSource(&ir.Module{Functions: []*ir.Function{fn}})
	if strings.Contains(out.Source, "goto") {
		t.Fatalf("jump to the immediate successor should be elided entirely, got:\n%s", out.Source)
	}
}

func TestEmitSourceBranchCompressesToSingleGoto(t *testing.T) {
	fn := &ir.Function{Name: "f"}
	entry := fn.NewBlock("entry")
	thenB := fn.NewBlock("")
	elseB := fn.NewBlock("")
	cond := &ir.Const{Kind: ir.ConstBool, Typ: ir.BoolType(), Bool: true}
	entry.Append(&ir.Instr{Op: ir.OpBranch, Typ: ir.VoidType(), Args: []ir.Value{cond}, Targets: []*ir.Block{thenB, elseB}})
	thenB.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})
	elseB.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: false})

	out := EmitSource(&ir.Module{Functions: []*ir.Function{fn}})
	if !strings.Contains(out.Source, "if (!true) goto") {
		t.Fatalf("expected a single negated goto to the non-fallthrough block, got:\n%s", out.Source)
	}
	if strings.Contains(out.Source, "else goto") {
		t.Fatalf("a branch whose true target is the fallthrough should never need the two-goto form, got:\n%s", out.Source)
	}
}

func TestEmitSourceBranchNeedsBothGotosWhenNeitherIsFallthrough(t *testing.T) {
	// Block order is entry, after, thenB, elseB so entry's immediate
	// successor (after) is neither branch target: the two-goto form.
	fn := &ir.Function{Name: "f"}
	entry := fn.NewBlock("entry")
	after := fn.NewBlock("")
	thenB := fn.NewBlock("")
	elseB := fn.NewBlock("")
	cond := &ir.Const{Kind: ir.ConstBool, Typ: ir.BoolType(), Bool: true}
	entry.Append(&ir.Instr{Op: ir.OpBranch, Typ: ir.VoidType(), Args: []ir.Value{cond}, Targets: []*ir.Block{thenB, elseB}})
	after.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})
	thenB.Append(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{after}})
	elseB.Append(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{after}})

	out := EmitSource(&ir.Module{Functions: []*ir.Function{fn}})
	if !strings.Contains(out.Source, "else goto") {
		t.Fatalf("neither branch target is the fallthrough block (after is), expected the two-goto form, got:\n%s", out.Source)
	}
}

func TestEmitSourceReturnWritesVpMinusOne(t *testing.T) {
	fn := &ir.Function{Name: "f"}
	entry := fn.NewBlock("entry")
	v := &ir.Const{Kind: ir.ConstDouble, Typ: ir.DoubleType(), Num: 1}
	entry.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Args: []ir.Value{v}, Bool_: true})

	out := EmitSource(&ir.Module{Functions: []*ir.Function{fn}})
	if !strings.Contains(out.Source, "vp[-1] = ") {
		t.Fatalf("expected a completion-value store before the return, got:\n%s", out.Source)
	}
	if !strings.Contains(out.Source, "return true;") {
		t.Fatalf("expected the completion flag as the C return value, got:\n%s", out.Source)
	}
}

func TestEmitSourceIntrinsicCallGetsResultSlot(t *testing.T) {
	fn := &ir.Function{Name: "f"}
	entry := fn.NewBlock("entry")
	obj := &ir.Const{Kind: ir.ConstValuePointer, Typ: ir.ValueType()}
	dst := &ir.Instr{Op: ir.OpPrpGetSlow, Typ: ir.BoolType(), Args: []ir.Value{obj, obj, obj}}
	entry.Append(dst)
	entry.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})

	out := EmitSource(&ir.Module{Functions: []*ir.Function{fn}})
	if !strings.Contains(out.Source, "v0 = esa_prp_get_slow(vp, vp, vp);") {
		t.Fatalf("expected the prp_get_slow call assigned to its result slot, got:\n%s", out.Source)
	}
}

func TestEmitSourceKeyedPropertyGetEncodesKey(t *testing.T) {
	fn := &ir.Function{Name: "f"}
	entry := fn.NewBlock("entry")
	obj := &ir.Const{Kind: ir.ConstValuePointer, Typ: ir.ValueType()}
	dst := &ir.Instr{Op: ir.OpPrpGet, Typ: ir.BoolType(), Key: ir.PropertyKey{Named: true, StrID: 3}, Args: []ir.Value{obj, obj}}
	entry.Append(dst)
	entry.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})

	out := EmitSource(&ir.Module{Functions: []*ir.Function{fn}})
	want := EncodePropertyKey(ir.PropertyKey{Named: true, StrID: 3})
	if !strings.Contains(out.Source, "esa_prp_get(vp, vp, "+strconv.FormatUint(want, 10)+")") {
		t.Fatalf("expected the keyed get call, got:\n%s", out.Source)
	}
	if want&namedKeyBit == 0 {
		t.Fatalf("sanity check: expected the named-key bit to be set")
	}
}

func TestEmitSourceDeclFunResultIsBranchable(t *testing.T) {
	// A context-storage function declaration's "ok" result is consumed by
	// a later branch, exactly as internal/irbuild's checkedVoid does.
	fn := &ir.Function{Name: "f"}
	entry := fn.NewBlock("entry")
	cont := fn.NewBlock("")
	exc := fn.NewBlock("")
	val := &ir.Const{Kind: ir.ConstValuePointer, Typ: ir.ValueType()}
	ok := &ir.Instr{Op: ir.OpDeclFun, Typ: ir.BoolType(), Str: "f", Args: []ir.Value{val}}
	entry.Append(ok)
	entry.Append(&ir.Instr{Op: ir.OpBranch, Typ: ir.VoidType(), Args: []ir.Value{ok}, Targets: []*ir.Block{cont, exc}})
	cont.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})
	exc.Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: false})

	if !ir.OpDeclFun.HasResult() {
		t.Fatalf("OpDeclFun must report a result: its value is consumed as a branch condition")
	}
	out := EmitSource(&ir.Module{Functions: []*ir.Function{fn}})
	if !strings.Contains(out.Source, "v0 = esa_decl_fun(vp, ") {
		t.Fatalf("expected decl_fun assigned to a slot, got:\n%s", out.Source)
	}
	if !strings.Contains(out.Source, "if (!v0) goto") {
		t.Fatalf("expected the branch to read back the assigned slot, got:\n%s", out.Source)
	}
}

func TestEmitSourceStringLiteralUsesCodePointLength(t *testing.T) {
	out := cStringLiteral("hi")
	if !strings.Contains(out, `esa_new_str(U"hi", 2)`) {
		t.Fatalf("expected a 2-code-point length for an ASCII string, got %q", out)
	}
}

func TestEmitSourceStringLiteralLengthMatchesU32ElementCountForAstralChars(t *testing.T) {
	// U+1F600, a single code point outside the BMP, would count as 2
	// UTF-16 code units but is exactly 1 char32_t element in U"…".
	out := cStringLiteral("\U0001F600")
	if !strings.Contains(out, ", 1)") {
		t.Fatalf("expected length 1 (one char32_t element) for a single astral code point, got %q", out)
	}
}

func TestEmitSourceHeaderDeclaresEveryFunction(t *testing.T) {
	fn := &ir.Function{Name: "g"}
	fn.NewBlock("entry").Append(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})

	out := EmitSource(&ir.Module{Functions: []*ir.Function{fn}})
	if !strings.Contains(out.Header, "static bool g(es_value_t *vp, es_value_t *fp);") {
		t.Fatalf("expected a forward declaration for g, got:\n%s", out.Header)
	}
}
