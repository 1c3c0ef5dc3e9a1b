// Package irbuild lowers an analyzed AST (internal/ast + internal/sema)
// into the typed CFG internal/ir consumes (spec §4.6).
package irbuild

import (
	"fmt"
	"sort"

	"github.com/kindahl/es2c/internal/ast"
	"github.com/kindahl/es2c/internal/ir"
	"github.com/kindahl/es2c/internal/sema"
)

// Build lowers a fully parsed and analyzed program into an ir.Module: one
// ir.Function per analyzed function (program included), plus the ordered
// interned-string table the emitter registers at init.
func Build(prog *ast.Program, info *sema.Info) *ir.Module {
	b := &builder{info: info, module: &ir.Module{}, strings: make(map[string]int)}
	b.lowerFunction(info.Program, true)
	return b.module
}

// slot is a function-local value-area cell: a parameter (fp[i]), a
// declaration or temporary (vp[i]), or a captured-scope extra. It is the
// concrete Value identifiers and intermediate results resolve to.
type slot struct {
	label      string
	typ        ir.Type
	persistent bool
}

func (s *slot) Type() ir.Type       { return s.typ }
func (s *slot) Persistent() bool    { return s.persistent }
func (s *slot) String() string      { return s.label }
func newSlot(label string, typ ir.Type, persistent bool) *slot {
	return &slot{label: label, typ: typ, persistent: persistent}
}

// builder holds all state transient during the lowering of one ir.Module.
type builder struct {
	info   *sema.Info
	module *ir.Module

	strings    map[string]int
	nextStrID  int

	fn     *ir.Function
	semaFn *sema.Function
	block  *ir.Block

	tempCount     int
	stkAllocInstr *ir.Instr

	locals map[string]ir.Value // name -> concrete Value for local/local-extra bindings
	vpNext int

	templates []template // exception-action stack, innermost last
	scopes    []scopeEntry

	ctxCache int // per-function context-cache id counter (spec §4.6 "property-cache ids")
}

func (b *builder) newBlock(label string) *ir.Block { return b.fn.NewBlock(label) }

func (b *builder) emit(i *ir.Instr) *ir.Instr {
	b.block.Append(i)
	return i
}

func (b *builder) internString(s string) int {
	if id, ok := b.strings[s]; ok {
		return id
	}
	// Compiler-assigned ids count down from a high watermark so they never
	// collide with runtime-generated ids (spec invariant 7).
	id := 0x7fffffff - b.nextStrID
	b.nextStrID++
	b.strings[s] = id
	b.module.Strings = append(b.module.Strings, ir.InternedString{ID: id, Value: s})
	return id
}

func slotTypeFor(storage sema.StorageClass) ir.Type {
	if storage == sema.Context {
		return ir.ReferenceType()
	}
	return ir.ValueType()
}

// lowerFunction implements spec §4.6 steps 1-10 for one analyzed function.
// isProgram controls the top-level IsGlobal flag and skips argument-object
// setup a synthetic program function never needs.
func (b *builder) lowerFunction(sfn *sema.Function, isProgram bool) *ir.Function {
	node := sfn.Node
	outer := saveBuilderState(b)

	fn := &ir.Function{Name: functionName(node, len(b.module.Functions)), IsGlobal: isProgram}
	b.module.Functions = append(b.module.Functions, fn)

	b.fn = fn
	b.semaFn = sfn
	b.tempCount = 0
	b.vpNext = 0
	b.locals = make(map[string]ir.Value)
	b.templates = nil
	b.scopes = nil
	b.ctxCache = 0

	entry := b.newBlock("entry")
	b.block = entry

	// Step 1: open scope with the top-level exception action: propagate to
	// caller via `return false`.
	b.pushTemplate(returnFalseTemplate{})

	// Step 2: reserve the stack-size promise, committed at the end once the
	// final temporary count is known.
	b.stkAllocInstr = b.emit(&ir.Instr{Op: ir.OpStkAlloc, Typ: ir.VoidType()})

	// Step 3: captured-scope extras.
	hasExtras := false
	for _, bind := range sfn.Bindings() {
		if bind.Storage == sema.LocalExtra {
			hasExtras = true
			break
		}
	}
	var extrasPtr ir.Value
	if hasExtras {
		extrasInstr := b.emit(&ir.Instr{Op: ir.OpBndExtraInit, Typ: ir.PointerTypeTo(ir.ValueType())})
		extrasInstr.MarkPersistent()
		extrasPtr = extrasInstr
	}
	hopsList := make([]int, 0, len(sfn.ReferencedScopes))
	for hops := range sfn.ReferencedScopes {
		hopsList = append(hopsList, hops)
	}
	sort.Ints(hopsList)
	for _, hops := range hopsList {
		ptr := b.emit(&ir.Instr{Op: ir.OpBndExtraPtr, Typ: ir.PointerTypeTo(ir.ValueType()), Int: int64(hops)})
		ptr.MarkPersistent()
	}

	// Step 4: parameters, per storage class.
	for _, bind := range sfn.Bindings() {
		if bind.Kind != sema.ParamBinding {
			continue
		}
		fp := newSlot(fmt.Sprintf("fp[%d]", bind.ParamIndex), ir.ValueType(), false)
		switch bind.Storage {
		case sema.Local:
			b.locals[bind.Name] = fp
			if sfn.EvalTainted || bind.Name == "arguments" {
				b.emit(&ir.Instr{Op: ir.OpLinkPrm, Typ: ir.VoidType(), Str: bind.Name, Args: []ir.Value{fp}})
			}
		case sema.LocalExtra:
			extra := newSlot(fmt.Sprintf("extra[%d]", bind.ParamIndex), ir.ValueType(), true)
			b.emit(&ir.Instr{Op: ir.OpMemStore, Typ: ir.VoidType(), Args: []ir.Value{extra, fp}})
			b.locals[bind.Name] = extra
		case sema.Context:
			ok := b.emit(&ir.Instr{Op: ir.OpDeclPrm, Typ: ir.BoolType(), Str: bind.Name, Int: int64(bind.ParamIndex), Args: []ir.Value{fp}})
			b.checkedVoid(ok)
		}
		fn.Storage = append(fn.Storage, ir.VarStorage{Name: bind.Name, Storage: bind.Storage})
	}

	// Step 5: arguments object.
	if node.NeedsArguments {
		b.emit(&ir.Instr{Op: ir.OpInitArgs, Typ: ir.VoidType(), Args: []ir.Value{extrasPtr}})
		argsObj := b.emit(&ir.Instr{Op: ir.OpArgsObjInit, Typ: ir.ValueType(), Args: []ir.Value{extrasPtr}})
		argsObj.MarkPersistent()
		b.locals["arguments"] = argsObj
	}

	// Step 6: callee-name binding and vp[i] allocation for declarations.
	for _, bind := range sfn.Bindings() {
		switch bind.Kind {
		case sema.CalleeNameBinding:
			b.locals[bind.Name] = newSlot("vp[-3]", ir.ValueType(), false)
		case sema.DeclBinding:
			if bind.Storage == sema.Context {
				continue
			}
			idx := b.vpNext
			b.vpNext++
			typ := slotTypeFor(bind.Storage)
			vp := newSlot(fmt.Sprintf("vp[%d]", idx), typ, bind.Storage == sema.LocalExtra)
			b.locals[bind.Name] = vp
			fn.Storage = append(fn.Storage, ir.VarStorage{Name: bind.Name, Storage: bind.Storage})
		}
	}

	// Step 7: nested function declarations, then variable declarations.
	for _, d := range node.Declarations {
		vl := d.(*ast.VariableLiteral)
		if vl.Kind != ast.DeclFunction {
			continue
		}
		b.lowerNestedFunctionDeclaration(vl)
	}
	for _, d := range node.Declarations {
		vl := d.(*ast.VariableLiteral)
		if vl.Kind != ast.DeclVariable {
			continue
		}
		if bind, ok := sfn.Binding(vl.Name); ok && bind.Storage == sema.Context {
			ok := b.emit(&ir.Instr{Op: ir.OpDeclVar, Typ: ir.BoolType(), Str: vl.Name})
			b.checkedVoid(ok)
		}
	}

	// Step 8.
	b.lowerStatements(node.Body)

	// Step 9.
	if b.block.Terminator() == nil {
		b.emit(&ir.Instr{Op: ir.OpReturn, Typ: ir.VoidType(), Bool_: true})
	}

	// Step 10.
	b.stkAllocInstr.Int = int64(b.vpNext + b.tempCount)

	restoreBuilderState(b, outer)
	return fn
}

func (b *builder) lowerNestedFunctionDeclaration(vl *ast.VariableLiteral) {
	sfn := b.info.Functions[vl.Fn]
	nested := b.lowerFunction(sfn, false)
	bind, ok := b.semaFn.Binding(vl.Name)
	if !ok {
		return
	}
	val := b.emit(&ir.Instr{Op: ir.OpNewFunctionDecl, Typ: ir.ValueType(), Str: nested.Name})
	if bind.Storage == sema.Context {
		declOK := b.emit(&ir.Instr{Op: ir.OpDeclFun, Typ: ir.BoolType(), Str: vl.Name, Args: []ir.Value{val}})
		b.checkedVoid(declOK)
		return
	}
	// local / local-extra: the slot was already reserved in step 6; just
	// initialize it.
	b.emit(&ir.Instr{Op: ir.OpMemStore, Typ: ir.VoidType(), Args: []ir.Value{b.locals[vl.Name], val}})
}

func functionName(node *ast.FunctionLiteral, idx int) string {
	if node.IsProgram {
		return "__es_main"
	}
	if node.Name != "" {
		return fmt.Sprintf("fn_%s_%d", node.Name, idx)
	}
	return fmt.Sprintf("fn_anon_%d", idx)
}

// builderState is the subset of builder fields that must nest across a
// recursive lowerFunction call (one per nested function declaration or
// function expression encountered while lowering an enclosing function).
type builderState struct {
	fn            *ir.Function
	semaFn        *sema.Function
	block         *ir.Block
	tempCount     int
	stkAllocInstr *ir.Instr
	locals        map[string]ir.Value
	vpNext        int
	templates     []template
	scopes        []scopeEntry
	ctxCache      int
}

func saveBuilderState(b *builder) builderState {
	return builderState{
		fn: b.fn, semaFn: b.semaFn, block: b.block,
		tempCount: b.tempCount, stkAllocInstr: b.stkAllocInstr,
		locals: b.locals, vpNext: b.vpNext,
		templates: b.templates, scopes: b.scopes, ctxCache: b.ctxCache,
	}
}

func restoreBuilderState(b *builder, s builderState) {
	b.fn, b.semaFn, b.block = s.fn, s.semaFn, s.block
	b.tempCount, b.stkAllocInstr = s.tempCount, s.stkAllocInstr
	b.locals, b.vpNext = s.locals, s.vpNext
	b.templates, b.scopes, b.ctxCache = s.templates, s.scopes, s.ctxCache
}

// allocTemp reserves a fresh temporary value-area slot for an intermediate
// result that needs an addressable out-parameter destination (the
// ES-semantic binary/unary ops, increment/decrement read-modify-write).
func (b *builder) allocTemp(typ ir.Type) *slot {
	idx := b.tempCount
	b.tempCount++
	return newSlot(fmt.Sprintf("t%d", idx), typ, false)
}

func (b *builder) nextCacheID() int64 {
	id := b.ctxCache
	b.ctxCache = (b.ctxCache + 1) % 0xffff
	return int64(id)
}

// checkedVoid branches to the current exception action if ok is false;
// otherwise continues in a fresh block. Used for effect-only operations
// whose only result is the success flag (decl_*, link_*-adjacent failure
// paths the builder must still route to the exception template).
func (b *builder) checkedVoid(ok ir.Value) {
	cont := b.newBlock("")
	exc := b.newBlock("")
	b.emit(&ir.Instr{Op: ir.OpBranch, Typ: ir.VoidType(), Args: []ir.Value{ok}, Targets: []*ir.Block{cont, exc}})
	b.block = exc
	b.inflateCurrentTemplate()
	b.block = cont
}

// checkedValue is like checkedVoid but the caller already has the
// destination value (dst) it wants in scope on the success path.
func (b *builder) checkedValue(ok ir.Value, dst ir.Value) ir.Value {
	b.checkedVoid(ok)
	return dst
}
