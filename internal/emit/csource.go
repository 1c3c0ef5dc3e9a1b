package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kindahl/es2c/internal/ir"
)

// Output is the pair of text streams the target-source emitter produces:
// Header holds forward declarations, Source holds definitions. Both link
// against the runtime ABI named in abi.go.
type Output struct {
	Header string
	Source string
}

// EmitSource lowers m to portable C-targeting source (spec §4.8 "emits
// two streams (declarations and definitions) that together invoke the
// runtime API").
func EmitSource(m *ir.Module) Output {
	var header, source strings.Builder

	header.WriteString("#include <es_runtime.h>\n\n")
	for _, fn := range m.Functions {
		fmt.Fprintf(&header, "static %s %s(%s *vp, %s *fp);\n", BoolType, fn.Name, ValueType, ValueType)
	}

	source.WriteString("#include <es_runtime.h>\n\n")
	fmt.Fprintf(&source, "void %s(void) {\n", SymDataInit)
	for _, s := range m.Strings {
		fmt.Fprintf(&source, "  esa_register_str(%d, %s);\n", s.ID, cStringLiteral(s.Value))
	}
	source.WriteString("}\n\n")

	for _, fn := range m.Functions {
		emitFunction(&source, fn)
		source.WriteByte('\n')
	}

	return Output{Header: header.String(), Source: source.String()}
}

func emitFunction(sb *strings.Builder, fn *ir.Function) {
	slots := Allocate(fn)
	fmt.Fprintf(sb, "static %s %s(%s *vp, %s *fp) {\n", BoolType, fn.Name, ValueType, ValueType)
	if n := slots.Count(); n > 0 {
		names := make([]string, n)
		for i := range names {
			names[i] = fmt.Sprintf("v%d", i)
		}
		fmt.Fprintf(sb, "  %s %s;\n", ValueType, strings.Join(names, ", "))
	}

	needed := neededLabels(fn)
	blocks := fn.Blocks()
	for i, b := range blocks {
		if needed[b] {
			fmt.Fprintf(sb, "%s:\n", fallbackLabel(b))
		}
		var next *ir.Block
		if i+1 < len(blocks) {
			next = blocks[i+1]
		}
		for _, instr := range b.Instrs {
			if instr.IsTerminator() {
				emitTerminator(sb, instr, next, slots)
				continue
			}
			emitInstr(sb, instr, slots)
		}
	}
	sb.WriteString("}\n")
}

// fallbackLabel names a block deterministically from its position in its
// function rather than its address (matters for byte-stable emission,
// spec §8 property 9), unless irbuild already gave it a stable name
// (only "entry" does today).
func fallbackLabel(b *ir.Block) string {
	if b.Label != "" {
		return b.Label
	}
	fn := b.Function
	for i, other := range fn.Blocks() {
		if other == b {
			return fmt.Sprintf("L%d", i)
		}
	}
	return "Lunknown"
}

// neededLabels returns the set of blocks that still require an emitted
// label after branch/jump compression: a jump to the immediate successor
// is elided entirely, and a branch whose true (or false) target is the
// immediate successor only needs a label for the other target (spec
// §4.8).
func neededLabels(fn *ir.Function) map[*ir.Block]bool {
	blocks := fn.Blocks()
	next := make(map[*ir.Block]*ir.Block, len(blocks))
	for i, b := range blocks {
		if i+1 < len(blocks) {
			next[b] = blocks[i+1]
		}
	}

	needed := make(map[*ir.Block]bool)
	for _, b := range blocks {
		term := b.Terminator()
		if term == nil {
			continue
		}
		switch term.Op {
		case ir.OpJump:
			if term.Targets[0] != next[b] {
				needed[term.Targets[0]] = true
			}
		case ir.OpBranch:
			t, f := term.Targets[0], term.Targets[1]
			switch {
			case t == next[b]:
				needed[f] = true
			case f == next[b]:
				needed[t] = true
			default:
				needed[t] = true
				needed[f] = true
			}
		}
	}
	return needed
}

func emitTerminator(sb *strings.Builder, term *ir.Instr, next *ir.Block, slots *Slots) {
	switch term.Op {
	case ir.OpJump:
		if term.Targets[0] == next {
			return
		}
		fmt.Fprintf(sb, "  goto %s;\n", fallbackLabel(term.Targets[0]))
	case ir.OpBranch:
		cond := operand(term.Args[0], slots)
		t, f := term.Targets[0], term.Targets[1]
		switch {
		case t == next:
			fmt.Fprintf(sb, "  if (!%s) goto %s;\n", cond, fallbackLabel(f))
		case f == next:
			fmt.Fprintf(sb, "  if (%s) goto %s;\n", cond, fallbackLabel(t))
		default:
			fmt.Fprintf(sb, "  if (%s) goto %s; else goto %s;\n", cond, fallbackLabel(t), fallbackLabel(f))
		}
	case ir.OpReturn:
		if len(term.Args) == 1 {
			fmt.Fprintf(sb, "  vp[-1] = %s;\n", operand(term.Args[0], slots))
		}
		fmt.Fprintf(sb, "  return %s;\n", boolLiteral(term.Bool_))
	}
}

func emitInstr(sb *strings.Builder, i *ir.Instr, slots *Slots) {
	name, ok := Intrinsic(i.Op)
	if !ok {
		emitPlainInstr(sb, i, slots)
		return
	}
	args := operandsFor(i, slots)
	call := fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
	if i.Op.HasResult() {
		fmt.Fprintf(sb, "  v%d = %s;\n", slots.Of(i), call)
		return
	}
	fmt.Fprintf(sb, "  %s;\n", call)
}

// emitPlainInstr handles the ops with no runtime call: memory and
// element-pointer access, which compile directly to C assignment and
// pointer arithmetic instead of an esa_* call.
func emitPlainInstr(sb *strings.Builder, i *ir.Instr, slots *Slots) {
	switch i.Op {
	case ir.OpMemStore:
		fmt.Fprintf(sb, "  %s = %s;\n", operand(i.Args[0], slots), operand(i.Args[1], slots))
	case ir.OpElemPtr:
		fmt.Fprintf(sb, "  v%d = &%s[%d];\n", slots.Of(i), operand(i.Args[0], slots), i.Int)
	default:
		fmt.Fprintf(sb, "  /* unhandled op %s */\n", i.Op)
	}
}

// operandsFor builds the full C argument list for an esa_* call: the
// Value operands in Args order, followed by whichever immediate fields
// are meaningful for this Op (mirrors the "only fields meaningful for Op
// are populated" comment on ir.Instr).
func operandsFor(i *ir.Instr, slots *Slots) []string {
	args := make([]string, 0, len(i.Args)+2)
	for _, a := range i.Args {
		args = append(args, operand(a, slots))
	}

	switch i.Op {
	case ir.OpPrpGet, ir.OpPrpPut, ir.OpPrpDel, ir.OpPrpDefData, ir.OpPrpDefAccessor, ir.OpCallKeyedImm:
		args = append(args, strconv.FormatUint(EncodePropertyKey(i.Key), 10))
	}

	switch i.Op {
	case ir.OpCtxGet, ir.OpCtxPut, ir.OpCtxDel, ir.OpDeclFun, ir.OpDeclVar,
		ir.OpLinkFun, ir.OpLinkVar, ir.OpCallNamed:
		args = append(args, cStringLiteral(i.Str))
	case ir.OpNewRegex:
		args = append(args, cStringLiteral(i.Str))
	case ir.OpDeclPrm, ir.OpLinkPrm:
		args = append(args, cStringLiteral(i.Str), strconv.FormatInt(i.Int, 10))
	}

	switch i.Op {
	case ir.OpStkAlloc, ir.OpStkFree, ir.OpStkPush, ir.OpBndExtraPtr, ir.OpNewArray:
		args = append(args, strconv.FormatInt(i.Int, 10))
	case ir.OpCtxGet, ir.OpCtxPut:
		args = append(args, strconv.FormatInt(i.Int, 10))
	}

	switch i.Op {
	case ir.OpPrpDefAccessor:
		args = append(args, boolLiteral(i.Bool_))
	case ir.OpCtxSetStrict:
		args = append(args, boolLiteral(i.Bool_))
	}

	switch i.Op {
	case ir.OpBinRaw, ir.OpBinES:
		args = append(args, strconv.Itoa(int(i.BinKind)))
	}

	return args
}

func operand(v ir.Value, slots *Slots) string {
	switch val := v.(type) {
	case *ir.Instr:
		if val.Op.HasResult() {
			return fmt.Sprintf("v%d", slots.Of(val))
		}
		return val.Op.String()
	case *ir.Const:
		return cConstLiteral(val)
	default:
		return v.String()
	}
}

func boolLiteral(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func cConstLiteral(c *ir.Const) string {
	switch c.Kind {
	case ir.ConstTypedNull:
		return "esa_undefined()"
	case ir.ConstBool:
		return boolLiteral(c.Bool)
	case ir.ConstDouble:
		return cDoubleLiteral(c.Num)
	case ir.ConstStringifiedDouble:
		return cStringLiteral(c.Str)
	case ir.ConstString:
		return cStringLiteral(c.Str)
	case ir.ConstTaggedValue:
		return fmt.Sprintf("esa_tagged_str(%d)", c.StrID)
	case ir.ConstFramePointer:
		return "fp"
	case ir.ConstValuePointer:
		return "vp"
	default:
		return c.String()
	}
}

func cDoubleLiteral(n float64) string {
	s := strconv.FormatFloat(n, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// cStringLiteral renders s as esa_new_str(U"…escaped…", length) (spec §4.8).
// U"…" is a C11 UTF-32 string literal: one char32_t element per Unicode
// code point, so length must be the code-point count, not a UTF-16
// code-unit count — those diverge for any character outside the BMP.
func cStringLiteral(s string) string {
	return fmt.Sprintf("esa_new_str(U%s, %d)", cQuote(s), len([]rune(s)))
}

func cQuote(s string) string {
	return strconv.Quote(s)
}
