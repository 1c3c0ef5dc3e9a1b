package irbuild

import (
	"github.com/kindahl/es2c/internal/ast"
	"github.com/kindahl/es2c/internal/ir"
)

// scopeEntry is one active break/continue target or unwind epilogue on
// the scope stack. Loop/switch entries are break (and, for loops, continue)
// targets; epilogue-only entries (with, try-finally) carry cleanup that
// must run when a break/continue/return crosses them without an exception
// (spec §4.6 "Unrolling").
type scopeEntry struct {
	isLoop, isSwitch bool
	breakBlock       *ir.Block
	continueBlock    *ir.Block
	labels           []string
	epilogue         template // non-nil for with/try-finally cleanup markers
}

// blockTemplate re-lowers a fixed statement list in place; used for the
// try-finally scope epilogue that a break/continue/return crossing the
// try runs on its way out. Wrapped in ex_save_state/ex_load_state like
// every other finally re-lowering (spec §4.6): a pending exception from
// an outer try may already be in flight when this epilogue runs.
type blockTemplate struct{ body []ast.Statement }

func (t blockTemplate) inflate(b *builder) { b.lowerFinallyBody(t.body) }

// lowerFinallyBody re-lowers a finally block's statements sandwiched
// between ex_save_state and ex_load_state. Every re-lowering of a finally
// block, on every exit path (normal fall-through, break/continue/return
// unwind, or the exception path), goes through this same sequence so the
// in-flight exception state survives the finally body intact.
func (b *builder) lowerFinallyBody(body []ast.Statement) {
	b.emit(&ir.Instr{Op: ir.OpExSaveState, Typ: ir.VoidType()})
	b.lowerStatements(body)
	b.emit(&ir.Instr{Op: ir.OpExLoadState, Typ: ir.VoidType()})
}

func (b *builder) pushScope(e scopeEntry) { b.scopes = append(b.scopes, e) }
func (b *builder) popScope()              { b.scopes = b.scopes[:len(b.scopes)-1] }

// unwindTo inflates the epilogues of every scope entry above (but not
// including) idx, innermost first, into the current block.
func (b *builder) unwindTo(idx int) {
	for i := len(b.scopes) - 1; i > idx; i-- {
		if b.scopes[i].epilogue != nil {
			b.scopes[i].epilogue.inflate(b)
		}
	}
}

func (b *builder) findBreakTarget(label string) int {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		e := b.scopes[i]
		if !e.isLoop && !e.isSwitch {
			continue
		}
		if label == "" {
			return i
		}
		for _, l := range e.labels {
			if l == label {
				return i
			}
		}
	}
	return -1
}

func (b *builder) findContinueTarget(label string) int {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		e := b.scopes[i]
		if !e.isLoop {
			continue
		}
		if label == "" {
			return i
		}
		for _, l := range e.labels {
			if l == label {
				return i
			}
		}
	}
	return -1
}

// lowerStatements lowers stmts in order, stopping early once the current
// block has been terminated (anything after a return/break/continue/throw
// is unreachable and is dropped rather than lowered into a dangling
// unterminated block).
func (b *builder) lowerStatements(stmts []ast.Statement) {
	for _, s := range stmts {
		b.lowerStatement(s)
		if b.block.Terminator() != nil {
			return
		}
	}
}

func (b *builder) lowerStatement(s ast.Statement) {
	switch n := s.(type) {
	case nil, *ast.EmptyStatement, *ast.DebuggerStatement:
	case *ast.ExpressionStatement:
		b.lowerValue(n.Expr)
	case *ast.VarStatement:
		for _, d := range n.Decls {
			if d.Init == nil {
				continue
			}
			target := b.lowerIdentifierRef(d.Name)
			val := b.lowerValue(d.Init)
			b.expandPut(target, val)
		}
	case *ast.FunctionDeclStatement:
		// Already lowered by lowerFunction's declaration-order pass.
	case *ast.BlockStatement:
		b.lowerStatements(n.Body)
	case *ast.IfStatement:
		b.lowerIf(n)
	case *ast.WhileStatement:
		b.lowerWhile(n, nil)
	case *ast.DoWhileStatement:
		b.lowerDoWhile(n, nil)
	case *ast.ForStatement:
		b.lowerFor(n, nil)
	case *ast.ForInStatement:
		b.lowerForIn(n, nil)
	case *ast.ReturnStatement:
		b.lowerReturn(n)
	case *ast.BreakStatement:
		b.lowerBreak(n.Label)
	case *ast.ContinueStatement:
		b.lowerContinue(n.Label)
	case *ast.WithStatement:
		b.lowerWith(n)
	case *ast.SwitchStatement:
		b.lowerSwitch(n)
	case *ast.ThrowStatement:
		val := b.lowerValue(n.Value)
		b.emit(&ir.Instr{Op: ir.OpExSet, Typ: ir.VoidType(), Args: []ir.Value{val}})
		b.inflateCurrentTemplate()
	case *ast.TryStatement:
		b.lowerTry(n)
	case *ast.LabeledStatement:
		b.lowerLabeled(n)
	default:
		panic("irbuild: unhandled statement type")
	}
}

func (b *builder) lowerIf(n *ast.IfStatement) {
	cond := b.lowerValue(n.Condition)
	truthy := b.emit(&ir.Instr{Op: ir.OpValToBool, Typ: ir.BoolType(), Args: []ir.Value{cond}})

	thenBlock := b.newBlock("")
	elseBlock := b.newBlock("")
	b.emit(&ir.Instr{Op: ir.OpBranch, Typ: ir.VoidType(), Args: []ir.Value{truthy}, Targets: []*ir.Block{thenBlock, elseBlock}})

	b.block = thenBlock
	b.lowerStatement(n.Then)
	thenFallsThrough := b.block.Terminator() == nil
	thenEnd := b.block

	b.block = elseBlock
	if n.Else != nil {
		b.lowerStatement(n.Else)
	}
	elseFallsThrough := b.block.Terminator() == nil
	elseEnd := b.block

	if !thenFallsThrough && !elseFallsThrough {
		return
	}
	join := b.newBlock("")
	if thenFallsThrough {
		b.block = thenEnd
		b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{join}})
	}
	if elseFallsThrough {
		b.block = elseEnd
		b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{join}})
	}
	b.block = join
}

func (b *builder) lowerWhile(n *ast.WhileStatement, labels []string) {
	head := b.newBlock("")
	body := b.newBlock("")
	done := b.newBlock("")

	b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{head}})
	b.block = head
	cond := b.lowerValue(n.Condition)
	truthy := b.emit(&ir.Instr{Op: ir.OpValToBool, Typ: ir.BoolType(), Args: []ir.Value{cond}})
	b.emit(&ir.Instr{Op: ir.OpBranch, Typ: ir.VoidType(), Args: []ir.Value{truthy}, Targets: []*ir.Block{body, done}})

	b.pushScope(scopeEntry{isLoop: true, breakBlock: done, continueBlock: head, labels: labels})
	b.block = body
	b.lowerStatement(n.Body)
	if b.block.Terminator() == nil {
		b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{head}})
	}
	b.popScope()

	b.block = done
}

func (b *builder) lowerDoWhile(n *ast.DoWhileStatement, labels []string) {
	body := b.newBlock("")
	cond := b.newBlock("")
	done := b.newBlock("")

	b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{body}})

	b.pushScope(scopeEntry{isLoop: true, breakBlock: done, continueBlock: cond, labels: labels})
	b.block = body
	b.lowerStatement(n.Body)
	if b.block.Terminator() == nil {
		b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{cond}})
	}
	b.popScope()

	b.block = cond
	cv := b.lowerValue(n.Condition)
	truthy := b.emit(&ir.Instr{Op: ir.OpValToBool, Typ: ir.BoolType(), Args: []ir.Value{cv}})
	b.emit(&ir.Instr{Op: ir.OpBranch, Typ: ir.VoidType(), Args: []ir.Value{truthy}, Targets: []*ir.Block{body, done}})

	b.block = done
}

func (b *builder) lowerFor(n *ast.ForStatement, labels []string) {
	if n.Init != nil {
		b.lowerStatement(n.Init)
	}
	head := b.newBlock("")
	body := b.newBlock("")
	update := b.newBlock("")
	done := b.newBlock("")

	b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{head}})
	b.block = head
	if n.Condition != nil {
		cv := b.lowerValue(n.Condition)
		truthy := b.emit(&ir.Instr{Op: ir.OpValToBool, Typ: ir.BoolType(), Args: []ir.Value{cv}})
		b.emit(&ir.Instr{Op: ir.OpBranch, Typ: ir.VoidType(), Args: []ir.Value{truthy}, Targets: []*ir.Block{body, done}})
	} else {
		b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{body}})
	}

	b.pushScope(scopeEntry{isLoop: true, breakBlock: done, continueBlock: update, labels: labels})
	b.block = body
	b.lowerStatement(n.Body)
	if b.block.Terminator() == nil {
		b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{update}})
	}
	b.popScope()

	b.block = update
	if n.Update != nil {
		b.lowerValue(n.Update)
	}
	b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{head}})

	b.block = done
}

// lowerForIn: short-circuit to done if the object is null/undefined;
// otherwise prp_it_new and loop with prp_it_next writing the key into a
// value slot, then written into the declared target via expand_ref_put.
func (b *builder) lowerForIn(n *ast.ForInStatement, labels []string) {
	obj := b.lowerValue(n.Object)
	isUndef := b.emit(&ir.Instr{Op: ir.OpValIsUndefined, Typ: ir.BoolType(), Args: []ir.Value{obj}})

	iterSetup := b.newBlock("")
	done := b.newBlock("")
	b.emit(&ir.Instr{Op: ir.OpBranch, Typ: ir.VoidType(), Args: []ir.Value{isUndef}, Targets: []*ir.Block{done, iterSetup}})

	b.block = iterSetup
	iter := b.emit(&ir.Instr{Op: ir.OpPrpItNew, Typ: ir.OpaqueType("iterator"), Args: []ir.Value{obj}})

	head := b.newBlock("")
	body := b.newBlock("")
	b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{head}})

	b.block = head
	keySlot := b.allocTemp(ir.ValueType())
	hasNext := b.emit(&ir.Instr{Op: ir.OpPrpItNext, Typ: ir.BoolType(), Args: []ir.Value{iter, keySlot}})
	b.emit(&ir.Instr{Op: ir.OpBranch, Typ: ir.VoidType(), Args: []ir.Value{hasNext}, Targets: []*ir.Block{body, done}})

	b.pushScope(scopeEntry{isLoop: true, breakBlock: done, continueBlock: head, labels: labels})
	b.block = body
	var target ref
	switch t := n.Target.(type) {
	case *ast.VarStatement:
		target = b.lowerIdentifierRef(t.Decls[0].Name)
	case ast.Expression:
		target = b.lowerExpression(t)
	}
	b.expandPut(target, keySlot)
	b.lowerStatement(n.Body)
	if b.block.Terminator() == nil {
		b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{head}})
	}
	b.popScope()

	b.block = done
}

func (b *builder) lowerReturn(n *ast.ReturnStatement) {
	idx := -1
	b.unwindTo(idx)
	if n.Value != nil {
		val := b.lowerValue(n.Value)
		b.emit(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true, Args: []ir.Value{val}})
		return
	}
	b.emit(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})
}

func (b *builder) lowerBreak(label string) {
	idx := b.findBreakTarget(label)
	if idx < 0 {
		return // parser already rejects this; defensive no-op
	}
	target := b.scopes[idx].breakBlock
	b.unwindTo(idx)
	b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{target}})
}

func (b *builder) lowerContinue(label string) {
	idx := b.findContinueTarget(label)
	if idx < 0 {
		return
	}
	target := b.scopes[idx].continueBlock
	b.unwindTo(idx)
	b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{target}})
}

// lowerWith: ctx_enter_with (checked), lower the body under a template
// that leaves the context before chaining to the outer action, and a
// scope epilogue so break/continue/return crossing the with also leaves
// the context, then ctx_leave on the normal path.
func (b *builder) lowerWith(n *ast.WithStatement) {
	obj := b.lowerValue(n.Object)
	ok := b.emit(&ir.Instr{Op: ir.OpCtxEnterWith, Typ: ir.BoolType(), Args: []ir.Value{obj}})
	b.checkedVoid(ok)

	b.pushTemplate(multiTemplate{templates: []template{leaveContextTemplate{}, b.currentTemplate()}})
	b.pushScope(scopeEntry{epilogue: leaveContextTemplate{}})
	b.lowerStatement(n.Body)
	b.popScope()
	b.popTemplate()

	if b.block.Terminator() == nil {
		b.emit(&ir.Instr{Op: ir.OpCtxLeave, Typ: ir.VoidType()})
	}
}

// lowerSwitch: a linear chain of strict-equality dispatch tests falls
// into sequentially laid-out case bodies (so ordinary fallthrough is just
// block order); an unmatched discriminant jumps straight to the default
// body if present.
func (b *builder) lowerSwitch(n *ast.SwitchStatement) {
	disc := b.lowerValue(n.Discriminant)

	bodyBlocks := make([]*ir.Block, len(n.Cases))
	for i := range n.Cases {
		bodyBlocks[i] = b.newBlock("")
	}
	join := b.newBlock("")

	defaultIdx := -1
	for i, c := range n.Cases {
		if c.Test == nil {
			defaultIdx = i
			continue
		}
		testVal := b.lowerValue(c.Test)
		eq := b.emitBinES(ast.OpStrictEq, disc, testVal)
		truthy := b.emit(&ir.Instr{Op: ir.OpValToBool, Typ: ir.BoolType(), Args: []ir.Value{eq}})
		next := b.newBlock("")
		b.emit(&ir.Instr{Op: ir.OpBranch, Typ: ir.VoidType(), Args: []ir.Value{truthy}, Targets: []*ir.Block{bodyBlocks[i], next}})
		b.block = next
	}
	if defaultIdx >= 0 {
		b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{bodyBlocks[defaultIdx]}})
	} else {
		b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{join}})
	}

	b.pushScope(scopeEntry{isSwitch: true, breakBlock: join})
	for i, c := range n.Cases {
		b.block = bodyBlocks[i]
		b.lowerStatements(c.Body)
		if b.block.Terminator() == nil {
			var next *ir.Block
			if i+1 < len(bodyBlocks) {
				next = bodyBlocks[i+1]
			} else {
				next = join
			}
			b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{next}})
		}
	}
	b.popScope()

	b.block = join
}

func (b *builder) lowerTry(n *ast.TryStatement) {
	outerTemplate := b.currentTemplate()

	var finallyExcTmpl template = outerTemplate
	if n.Finally != nil {
		finallyExcTmpl = finallyTemplate{
			lower: func(bb *builder) { bb.lowerStatements(n.Finally.Body) },
			prev:  outerTemplate,
		}
	}

	failSite := b.newBlock("")
	join := b.newBlock("")

	b.pushTemplate(jumpTemplate{target: failSite})
	if n.Finally != nil {
		b.pushScope(scopeEntry{epilogue: blockTemplate{body: n.Finally.Body}})
	}
	b.lowerStatements(n.Block.Body)
	if n.Finally != nil {
		b.popScope()
	}
	b.popTemplate()
	if b.block.Terminator() == nil {
		if n.Finally != nil {
			b.lowerFinallyBody(n.Finally.Body)
		}
		if b.block.Terminator() == nil {
			b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{join}})
		}
	}

	b.block = failSite
	if n.Catch != nil {
		ok := b.emit(&ir.Instr{Op: ir.OpCtxEnterCatch, Typ: ir.BoolType(), Str: n.CatchID})
		b.checkedVoid(ok)
		b.pushTemplate(multiTemplate{templates: []template{leaveContextTemplate{}, finallyExcTmpl}})
		b.lowerStatements(n.Catch.Body)
		b.popTemplate()
		if b.block.Terminator() == nil {
			b.emit(&ir.Instr{Op: ir.OpCtxLeave, Typ: ir.VoidType()})
			if n.Finally != nil {
				b.lowerFinallyBody(n.Finally.Body)
			}
			if b.block.Terminator() == nil {
				b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{join}})
			}
		}
	} else {
		finallyExcTmpl.inflate(b)
	}

	b.block = join
}

func (b *builder) lowerLabeled(n *ast.LabeledStatement) {
	switch body := n.Body.(type) {
	case *ast.WhileStatement:
		b.lowerWhile(body, []string{n.Label})
	case *ast.DoWhileStatement:
		b.lowerDoWhile(body, []string{n.Label})
	case *ast.ForStatement:
		b.lowerFor(body, []string{n.Label})
	case *ast.ForInStatement:
		b.lowerForIn(body, []string{n.Label})
	default:
		// A label on a non-iteration statement is only a break target:
		// wrap it in a single-entry scope whose break block is the join
		// point after the statement.
		join := b.newBlock("")
		b.pushScope(scopeEntry{isSwitch: true, breakBlock: join, labels: []string{n.Label}})
		b.lowerStatement(n.Body)
		b.popScope()
		if b.block.Terminator() == nil {
			b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{join}})
		}
		b.block = join
	}
}
