package emit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kindahl/es2c/internal/ir"
)

// Print renders m as the human-readable IR listing spec §4.8 calls the IR
// printer's job ("prints one human-readable listing per module"). Output
// is byte-stable across runs for the same module (spec §8 property 9):
// register numbers are assigned by a single deterministic left-to-right
// walk reset at the start of every function, with no process-global
// counter involved.
func Print(m *ir.Module) string {
	var sb strings.Builder
	for _, s := range m.Strings {
		fmt.Fprintf(&sb, "str #%d = %s\n", s.ID, quoteString(s.Value))
	}
	if len(m.Strings) > 0 {
		sb.WriteByte('\n')
	}
	for i, fn := range m.Functions {
		if i > 0 {
			sb.WriteByte('\n')
		}
		printFunction(&sb, fn)
	}
	return sb.String()
}

func printFunction(sb *strings.Builder, fn *ir.Function) {
	fmt.Fprintf(sb, "function %s {\n", fn.Name)
	regs := assignPrinterRegs(fn)
	labels := assignBlockLabels(fn)
	for _, b := range fn.Blocks() {
		if len(b.Referrers) > 0 {
			fmt.Fprintf(sb, "%s:\n", labels[b])
		}
		for _, instr := range b.Instrs {
			printInstr(sb, instr, regs, labels)
		}
	}
	sb.WriteString("}\n")
}

// assignBlockLabels numbers blocks in function order; this is the
// deterministic alternative to printing a Go pointer value, which would
// make the listing vary run to run (spec §8 property 9).
func assignBlockLabels(fn *ir.Function) map[*ir.Block]string {
	labels := make(map[*ir.Block]string)
	for i, b := range fn.Blocks() {
		if b.Label != "" {
			labels[b] = b.Label
			continue
		}
		labels[b] = fmt.Sprintf("L%d", i)
	}
	return labels
}

func printInstr(sb *strings.Builder, i *ir.Instr, regs map[*ir.Instr]int, labels map[*ir.Block]string) {
	sb.WriteString("  ")
	if i.Op.HasResult() {
		fmt.Fprintf(sb, "%%%d = ", regs[i])
	}
	sb.WriteString(i.Op.String())
	for _, a := range i.Args {
		sb.WriteByte(' ')
		sb.WriteString(valueText(a, regs))
	}
	if printsInt(i.Op) {
		fmt.Fprintf(sb, " %d", i.Int)
	}
	if len(i.Targets) > 0 {
		names := make([]string, len(i.Targets))
		for j, t := range i.Targets {
			names[j] = labels[t]
		}
		sb.WriteString(" -> ")
		sb.WriteString(strings.Join(names, ", "))
	}
	if i.Str != "" {
		fmt.Fprintf(sb, " %q", i.Str)
	}
	sb.WriteByte('\n')
}

// printsInt reports whether op carries a meaningful Int immediate the
// listing must show (spec §8's end-to-end example for a simple local
// variable explicitly checks for the text "stk_alloc 1"). Ops where Int
// is instead an index into Args-addressed storage, or otherwise implicit
// in the surrounding context, are left out.
func printsInt(op ir.Op) bool {
	switch op {
	case ir.OpStkAlloc, ir.OpStkFree, ir.OpStkPush, ir.OpBndExtraPtr,
		ir.OpNewArray, ir.OpArrPut, ir.OpDeclPrm, ir.OpLinkPrm,
		ir.OpCtxGet, ir.OpCtxPut, ir.OpPrpGet, ir.OpPrpGetSlow,
		ir.OpPrpPut, ir.OpPrpPutSlow:
		return true
	default:
		return false
	}
}

func valueText(v ir.Value, regs map[*ir.Instr]int) string {
	switch val := v.(type) {
	case *ir.Instr:
		if val.Op.HasResult() {
			return fmt.Sprintf("%%%d", regs[val])
		}
		return val.Op.String()
	case *ir.Const:
		return constText(val)
	default:
		return v.String()
	}
}

func constText(c *ir.Const) string {
	switch c.Kind {
	case ir.ConstArrayElement:
		return "<array-elem>"
	case ir.ConstFramePointer:
		return "fp"
	case ir.ConstValuePointer:
		return "vp"
	case ir.ConstTypedNull:
		return "null"
	case ir.ConstBool:
		if c.Bool {
			return "true"
		}
		return "false"
	case ir.ConstDouble:
		return formatDouble(c.Num)
	case ir.ConstStringifiedDouble:
		return c.Str
	case ir.ConstString:
		return fmt.Sprintf("str#%d", c.StrID)
	case ir.ConstTaggedValue:
		return fmt.Sprintf("tagged#%d", c.StrID)
	default:
		return "<const>"
	}
}

// formatDouble renders n the way the printer spec requires: scientific
// notation at 16-digit precision, with sentinel tokens for the two
// non-finite cases double arithmetic can produce.
func formatDouble(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	default:
		return strconv.FormatFloat(n, 'e', 16, 64)
	}
}

func quoteString(s string) string {
	return strconv.Quote(s)
}

// assignPrinterRegs numbers every result-producing instruction in
// function order, one counter per function. Unlike the register
// allocator (regalloc.go), slots are never reused: the printer favors
// readability (every value keeps one name for its whole lifetime) over
// matching the emitted C locals' numbering.
func assignPrinterRegs(fn *ir.Function) map[*ir.Instr]int {
	regs := make(map[*ir.Instr]int)
	n := 0
	for _, b := range fn.Blocks() {
		for _, i := range b.Instrs {
			if i.Op.HasResult() {
				regs[i] = n
				n++
			}
		}
	}
	return regs
}
