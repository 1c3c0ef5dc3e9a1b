package irbuild

import "github.com/kindahl/es2c/internal/ir"

// template is an exception-action: what to emit into the current
// exception block when a checked operation fails. Templates compose via
// multiTemplate so nested try/with/catch/finally scopes unwind correctly
// (spec §4.6 "Exception handling plumbing").
type template interface {
	inflate(b *builder)
}

// returnFalseTemplate is the function-level default: propagate the
// exception to the caller.
type returnFalseTemplate struct{}

func (returnFalseTemplate) inflate(b *builder) {
	b.emit(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: false})
}

// jumpTemplate unconditionally jumps to target; used for try-blocks (jump
// to the block that runs the catch clause).
type jumpTemplate struct{ target *ir.Block }

func (t jumpTemplate) inflate(b *builder) {
	b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{t.target}})
}

// leaveContextTemplate emits ctx_leave and falls through; it never
// terminates its block on its own; it is used as one step of a
// multiTemplate and as the with-statement scope epilogue.
type leaveContextTemplate struct{}

func (leaveContextTemplate) inflate(b *builder) {
	b.emit(&ir.Instr{Op: ir.OpCtxLeave, Typ: ir.VoidType()})
}

// finallyTemplate re-lowers a finally block's statements into the
// exception path (sandwiched between ex_save_state/ex_load_state so the
// pending exception survives the finally body), then chains to prev.
type finallyTemplate struct {
	lower func(b *builder) // re-lowers the finally block's statements
	prev  template
}

func (t finallyTemplate) inflate(b *builder) {
	b.emit(&ir.Instr{Op: ir.OpExSaveState, Typ: ir.VoidType()})
	var outer template = returnFalseTemplate{}
	if t.prev != nil {
		outer = t.prev
	}
	b.pushTemplate(outer)
	t.lower(b)
	b.popTemplate()
	b.emit(&ir.Instr{Op: ir.OpExLoadState, Typ: ir.VoidType()})
	if t.prev != nil {
		t.prev.inflate(b)
	}
}

// multiTemplate inflates each of its templates in order; only the last
// one need terminate the block.
type multiTemplate struct{ templates []template }

func (t multiTemplate) inflate(b *builder) {
	for _, inner := range t.templates {
		inner.inflate(b)
	}
}

func (b *builder) pushTemplate(t template) { b.templates = append(b.templates, t) }

func (b *builder) popTemplate() { b.templates = b.templates[:len(b.templates)-1] }

func (b *builder) currentTemplate() template {
	if len(b.templates) == 0 {
		return returnFalseTemplate{}
	}
	return b.templates[len(b.templates)-1]
}

// inflateCurrentTemplate emits the active exception-action into b.block.
// Callers are responsible for having positioned b.block at the exception
// block first. No "in-epilogue" guard is kept: finallyTemplate lowers its
// body under its prev template, so a template never re-enters itself.
func (b *builder) inflateCurrentTemplate() {
	b.currentTemplate().inflate(b)
}
