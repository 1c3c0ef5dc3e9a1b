package irbuild

import (
	"fmt"

	"github.com/kindahl/es2c/internal/ast"
	"github.com/kindahl/es2c/internal/ir"
)

// refKind distinguishes the three shapes a lowered reference can take
// (spec §4.6 "Expression lowering" — "a ValueHandle carrying either a
// concrete IR value ... or a placeholder reference").
type refKind int

const (
	refValue refKind = iota
	refMetaCtx
	refMetaProp
)

// ref is this builder's ValueHandle: either a concrete Value, or a deferred
// get/put site recorded for expand_ref_get/expand_ref_put to resolve.
type ref struct {
	kind refKind
	val  ir.Value // meaningful when kind == refValue

	ctxName string // meaningful when kind == refMetaCtx

	object ir.Value   // meaningful when kind == refMetaProp
	immKey *ir.PropertyKey
	keyVal ir.Value // meaningful when immKey == nil
}

func valueRef(v ir.Value) ref { return ref{kind: refValue, val: v} }

// lowerExpression lowers e and returns its ValueHandle.
func (b *builder) lowerExpression(e ast.Expression) ref {
	switch n := e.(type) {
	case *ast.Identifier:
		return b.lowerIdentifierRef(n.Name)
	case *ast.ThisLiteral:
		return valueRef(newSlot("this", ir.ValueType(), false))
	case *ast.NullLiteral:
		return valueRef(&ir.Const{Kind: ir.ConstTypedNull, Typ: ir.ValueType()})
	case *ast.NothingLiteral:
		return valueRef(&ir.Const{Kind: ir.ConstTypedNull, Typ: ir.ValueType()})
	case *ast.BoolLiteral:
		return valueRef(&ir.Const{Kind: ir.ConstBool, Typ: ir.BoolType(), Bool: n.Value})
	case *ast.NumberLiteral:
		return valueRef(&ir.Const{Kind: ir.ConstDouble, Typ: ir.DoubleType(), Num: n.Value})
	case *ast.StringLiteral:
		id := b.internString(n.Value)
		return valueRef(&ir.Const{Kind: ir.ConstString, Typ: ir.StringType(), Str: n.Value, StrID: id})
	case *ast.RegExpLiteral:
		v := b.emit(&ir.Instr{Op: ir.OpNewRegex, Typ: ir.ValueType(), Str: n.Body})
		return valueRef(v)
	case *ast.ArrayLiteral:
		return valueRef(b.lowerArrayLiteral(n))
	case *ast.ObjectLiteral:
		return valueRef(b.lowerObjectLiteral(n))
	case *ast.FunctionLiteral:
		sfn := b.info.Functions[n]
		nested := b.lowerFunction(sfn, false)
		return valueRef(b.emit(&ir.Instr{Op: ir.OpNewFunctionExpr, Typ: ir.ValueType(), Str: nested.Name}))
	case *ast.Binary:
		return valueRef(b.lowerBinary(n))
	case *ast.Unary:
		return valueRef(b.lowerUnary(n))
	case *ast.Assignment:
		return valueRef(b.lowerAssignment(n))
	case *ast.Conditional:
		return valueRef(b.lowerConditional(n))
	case *ast.PropertyExpr:
		return b.lowerPropertyRef(n)
	case *ast.Call:
		return valueRef(b.lowerCall(n))
	case *ast.CallNew:
		return valueRef(b.lowerCallNew(n))
	default:
		panic(fmt.Sprintf("irbuild: unhandled expression type %T", e))
	}
}

// lowerValue lowers e and forces a concrete Value, resolving any meta
// reference through expand_ref_get.
func (b *builder) lowerValue(e ast.Expression) ir.Value {
	return b.expandGet(b.lowerExpression(e))
}

func (b *builder) lowerIdentifierRef(name string) ref {
	if v, ok := b.locals[name]; ok {
		return valueRef(v)
	}
	return ref{kind: refMetaCtx, ctxName: name}
}

func (b *builder) lowerPropertyRef(n *ast.PropertyExpr) ref {
	obj := b.lowerValue(n.Object)
	if !n.Computed {
		id := b.internString(n.Key.(*ast.Identifier).Name)
		key := ir.PropertyKey{Named: true, StrID: id}
		return ref{kind: refMetaProp, object: obj, immKey: &key}
	}
	if lit, ok := n.Key.(*ast.StringLiteral); ok {
		id := b.internString(lit.Value)
		key := ir.PropertyKey{Named: true, StrID: id}
		return ref{kind: refMetaProp, object: obj, immKey: &key}
	}
	if lit, ok := n.Key.(*ast.NumberLiteral); ok && lit.Value >= 0 {
		key := ir.PropertyKey{Named: false, Index: uint32(lit.Value)}
		return ref{kind: refMetaProp, object: obj, immKey: &key}
	}
	keyVal := b.lowerValue(n.Key)
	return ref{kind: refMetaProp, object: obj, keyVal: keyVal}
}

// expandGet implements expand_ref_get: dispatches on the meta kind,
// emitting prp_get/prp_get_slow/ctx_get into a fresh destination and
// branching to the exception path on failure.
func (b *builder) expandGet(r ref) ir.Value {
	switch r.kind {
	case refValue:
		return r.val
	case refMetaCtx:
		dst := b.allocTemp(ir.ValueType())
		ok := b.emit(&ir.Instr{Op: ir.OpCtxGet, Typ: ir.BoolType(), Str: r.ctxName, Int: b.nextCacheID(), Args: []ir.Value{dst}})
		return b.checkedValue(ok, dst)
	case refMetaProp:
		dst := b.allocTemp(ir.ValueType())
		if r.immKey != nil {
			ok := b.emit(&ir.Instr{Op: ir.OpPrpGet, Typ: ir.BoolType(), Key: *r.immKey, Int: b.nextCacheID(), Args: []ir.Value{r.object, dst}})
			return b.checkedValue(ok, dst)
		}
		ok := b.emit(&ir.Instr{Op: ir.OpPrpGetSlow, Typ: ir.BoolType(), Args: []ir.Value{r.object, r.keyVal, dst}})
		return b.checkedValue(ok, dst)
	default:
		panic("irbuild: invalid ref kind")
	}
}

// expandPut implements expand_ref_put: emits prp_put/prp_put_slow/ctx_put,
// or a plain mem_store for a non-reference (local) target.
func (b *builder) expandPut(r ref, val ir.Value) {
	switch r.kind {
	case refValue:
		b.emit(&ir.Instr{Op: ir.OpMemStore, Typ: ir.VoidType(), Args: []ir.Value{r.val, val}})
	case refMetaCtx:
		ok := b.emit(&ir.Instr{Op: ir.OpCtxPut, Typ: ir.BoolType(), Str: r.ctxName, Int: b.nextCacheID(), Args: []ir.Value{val}})
		b.checkedVoid(ok)
	case refMetaProp:
		if r.immKey != nil {
			ok := b.emit(&ir.Instr{Op: ir.OpPrpPut, Typ: ir.BoolType(), Key: *r.immKey, Int: b.nextCacheID(), Args: []ir.Value{r.object, val}})
			b.checkedVoid(ok)
			return
		}
		ok := b.emit(&ir.Instr{Op: ir.OpPrpPutSlow, Typ: ir.BoolType(), Args: []ir.Value{r.object, r.keyVal, val}})
		b.checkedVoid(ok)
	default:
		panic("irbuild: invalid ref kind")
	}
}

func (b *builder) lowerBinary(n *ast.Binary) ir.Value {
	switch n.Op {
	case ast.OpAnd:
		return b.lowerLogical(n, false)
	case ast.OpOr:
		return b.lowerLogical(n, true)
	case ast.OpComma:
		b.lowerValue(n.Left)
		return b.lowerValue(n.Right)
	default:
		lhs := b.lowerValue(n.Left)
		rhs := b.lowerValue(n.Right)
		return b.emitBinES(n.Op, lhs, rhs)
	}
}

func (b *builder) emitBinES(op ast.BinaryOp, lhs, rhs ir.Value) ir.Value {
	dst := b.allocTemp(ir.ValueType())
	ok := b.emit(&ir.Instr{Op: ir.OpBinES, Typ: ir.BoolType(), BinKind: op, Args: []ir.Value{lhs, rhs, dst}})
	return b.checkedValue(ok, dst)
}

// lowerLogical short-circuits && and || via two blocks, materializing the
// result in a shared temp (spec §4.6 "Per-node lowering rules").
func (b *builder) lowerLogical(n *ast.Binary, isOr bool) ir.Value {
	lhs := b.lowerValue(n.Left)
	dst := b.allocTemp(ir.ValueType())
	b.emit(&ir.Instr{Op: ir.OpMemStore, Typ: ir.VoidType(), Args: []ir.Value{dst, lhs}})

	cond := b.emit(&ir.Instr{Op: ir.OpValToBool, Typ: ir.BoolType(), Args: []ir.Value{lhs}})

	rhsBlock := b.newBlock("")
	doneBlock := b.newBlock("")
	if isOr {
		b.emit(&ir.Instr{Op: ir.OpBranch, Typ: ir.VoidType(), Args: []ir.Value{cond}, Targets: []*ir.Block{doneBlock, rhsBlock}})
	} else {
		b.emit(&ir.Instr{Op: ir.OpBranch, Typ: ir.VoidType(), Args: []ir.Value{cond}, Targets: []*ir.Block{rhsBlock, doneBlock}})
	}

	b.block = rhsBlock
	rhs := b.lowerValue(n.Right)
	b.emit(&ir.Instr{Op: ir.OpMemStore, Typ: ir.VoidType(), Args: []ir.Value{dst, rhs}})
	b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{doneBlock}})

	b.block = doneBlock
	return dst
}

func (b *builder) lowerUnary(n *ast.Unary) ir.Value {
	switch n.Op {
	case ast.OpDelete:
		return b.lowerDelete(n.Operand)
	case ast.OpTypeof:
		return b.lowerTypeof(n.Operand)
	case ast.OpVoid:
		b.lowerValue(n.Operand)
		return &ir.Const{Kind: ir.ConstTypedNull, Typ: ir.ValueType()}
	case ast.OpPreInc, ast.OpPreDec, ast.OpPostInc, ast.OpPostDec:
		return b.lowerIncDec(n)
	case ast.OpPlus:
		v := b.lowerValue(n.Operand)
		return b.emit(&ir.Instr{Op: ir.OpValToDouble, Typ: ir.DoubleType(), Args: []ir.Value{v}})
	case ast.OpNeg:
		v := b.lowerValue(n.Operand)
		d := b.emit(&ir.Instr{Op: ir.OpValToDouble, Typ: ir.DoubleType(), Args: []ir.Value{v}})
		return b.emit(&ir.Instr{Op: ir.OpUnaryNeg, Typ: ir.DoubleType(), Args: []ir.Value{d}})
	case ast.OpNot:
		v := b.lowerValue(n.Operand)
		return b.emit(&ir.Instr{Op: ir.OpUnaryLogNot, Typ: ir.BoolType(), Args: []ir.Value{v}})
	case ast.OpBitNot:
		v := b.lowerValue(n.Operand)
		return b.emit(&ir.Instr{Op: ir.OpUnaryBitNot, Typ: ir.DoubleType(), Args: []ir.Value{v}})
	default:
		panic("irbuild: unhandled unary operator")
	}
}

// lowerDelete: deleting a property emits prp_del/prp_del_slow; deleting a
// bare identifier that resolves to a local statically returns false
// (declarative bindings are non-configurable, ES5.1); any other identifier
// goes through ctx_del.
func (b *builder) lowerDelete(operand ast.Expression) ir.Value {
	if id, ok := operand.(*ast.Identifier); ok {
		if _, isLocal := b.locals[id.Name]; isLocal {
			return &ir.Const{Kind: ir.ConstBool, Typ: ir.BoolType(), Bool: false}
		}
		dst := b.allocTemp(ir.BoolType())
		ok := b.emit(&ir.Instr{Op: ir.OpCtxDel, Typ: ir.BoolType(), Str: id.Name, Args: []ir.Value{dst}})
		return b.checkedValue(ok, dst)
	}
	r := b.lowerExpression(operand)
	if r.kind != refMetaProp {
		return &ir.Const{Kind: ir.ConstBool, Typ: ir.BoolType(), Bool: true}
	}
	dst := b.allocTemp(ir.BoolType())
	if r.immKey != nil {
		ok := b.emit(&ir.Instr{Op: ir.OpPrpDel, Typ: ir.BoolType(), Key: *r.immKey, Args: []ir.Value{r.object, dst}})
		return b.checkedValue(ok, dst)
	}
	ok := b.emit(&ir.Instr{Op: ir.OpPrpDelSlow, Typ: ir.BoolType(), Args: []ir.Value{r.object, r.keyVal, dst}})
	return b.checkedValue(ok, dst)
}

// lowerTypeof reads with an exception-catching path that clears the
// exception and substitutes undefined when the target is an unresolved
// context reference.
func (b *builder) lowerTypeof(operand ast.Expression) ir.Value {
	r := b.lowerExpression(operand)
	if r.kind != refMetaCtx {
		v := b.expandGet(r)
		return b.emit(&ir.Instr{Op: ir.OpUnaryTypeof, Typ: ir.StringType(), Args: []ir.Value{v}})
	}
	dst := b.allocTemp(ir.ValueType())
	ok := b.emit(&ir.Instr{Op: ir.OpCtxGet, Typ: ir.BoolType(), Str: r.ctxName, Int: b.nextCacheID(), Args: []ir.Value{dst}})
	undef := b.newBlock("")
	found := b.newBlock("")
	done := b.newBlock("")
	b.emit(&ir.Instr{Op: ir.OpBranch, Typ: ir.VoidType(), Args: []ir.Value{ok}, Targets: []*ir.Block{found, undef}})

	result := b.allocTemp(ir.StringType())
	b.block = undef
	b.emit(&ir.Instr{Op: ir.OpExClear, Typ: ir.VoidType()})
	undefStr := &ir.Const{Kind: ir.ConstString, Typ: ir.StringType(), Str: "undefined", StrID: b.internString("undefined")}
	b.emit(&ir.Instr{Op: ir.OpMemStore, Typ: ir.VoidType(), Args: []ir.Value{result, undefStr}})
	b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{done}})

	b.block = found
	typeofResult := b.emit(&ir.Instr{Op: ir.OpUnaryTypeof, Typ: ir.StringType(), Args: []ir.Value{dst}})
	b.emit(&ir.Instr{Op: ir.OpMemStore, Typ: ir.VoidType(), Args: []ir.Value{result, typeofResult}})
	b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{done}})

	b.block = done
	return result
}

// lowerIncDec: read, ToDouble, add/sub 1.0, write back; post-forms return
// the pre-write value.
func (b *builder) lowerIncDec(n *ast.Unary) ir.Value {
	r := b.lowerExpression(n.Operand)
	old := b.expandGet(r)
	num := b.emit(&ir.Instr{Op: ir.OpValToDouble, Typ: ir.DoubleType(), Args: []ir.Value{old}})

	one := &ir.Const{Kind: ir.ConstDouble, Typ: ir.DoubleType(), Num: 1}
	op := ast.OpAdd
	if n.Op == ast.OpPreDec || n.Op == ast.OpPostDec {
		op = ast.OpSub
	}
	updated := b.emit(&ir.Instr{Op: ir.OpBinRaw, Typ: ir.DoubleType(), BinKind: op, Args: []ir.Value{num, one}})
	b.expandPut(r, updated)

	if n.Op == ast.OpPreInc || n.Op == ast.OpPreDec {
		return updated
	}
	return num
}

func (b *builder) lowerAssignment(n *ast.Assignment) ir.Value {
	target := b.lowerExpression(n.Target)
	if n.Op == ast.AssignPlain {
		val := b.lowerValue(n.Value)
		b.expandPut(target, val)
		return val
	}
	old := b.expandGet(target)
	rhs := b.lowerValue(n.Value)
	result := b.emitBinES(compoundToBinary(n.Op), old, rhs)
	b.expandPut(target, result)
	return result
}

func compoundToBinary(op ast.AssignOp) ast.BinaryOp {
	switch op {
	case ast.AssignAdd:
		return ast.OpAdd
	case ast.AssignSub:
		return ast.OpSub
	case ast.AssignMul:
		return ast.OpMul
	case ast.AssignDiv:
		return ast.OpDiv
	case ast.AssignMod:
		return ast.OpMod
	case ast.AssignShl:
		return ast.OpShl
	case ast.AssignSar:
		return ast.OpSar
	case ast.AssignShr:
		return ast.OpShr
	case ast.AssignBitAnd:
		return ast.OpBitAnd
	case ast.AssignBitOr:
		return ast.OpBitOr
	case ast.AssignBitXor:
		return ast.OpBitXor
	default:
		panic("irbuild: unhandled compound assignment operator")
	}
}

func (b *builder) lowerConditional(n *ast.Conditional) ir.Value {
	cond := b.lowerValue(n.Condition)
	truthy := b.emit(&ir.Instr{Op: ir.OpValToBool, Typ: ir.BoolType(), Args: []ir.Value{cond}})

	thenBlock := b.newBlock("")
	elseBlock := b.newBlock("")
	doneBlock := b.newBlock("")
	b.emit(&ir.Instr{Op: ir.OpBranch, Typ: ir.VoidType(), Args: []ir.Value{truthy}, Targets: []*ir.Block{thenBlock, elseBlock}})

	dst := b.allocTemp(ir.ValueType())

	b.block = thenBlock
	thenVal := b.lowerValue(n.Then)
	b.emit(&ir.Instr{Op: ir.OpMemStore, Typ: ir.VoidType(), Args: []ir.Value{dst, thenVal}})
	b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{doneBlock}})

	b.block = elseBlock
	elseVal := b.lowerValue(n.Else)
	b.emit(&ir.Instr{Op: ir.OpMemStore, Typ: ir.VoidType(), Args: []ir.Value{dst, elseVal}})
	b.emit(&ir.Instr{Op: ir.OpJump, Typ: ir.VoidType(), Targets: []*ir.Block{doneBlock}})

	b.block = doneBlock
	return dst
}

func (b *builder) lowerArrayLiteral(n *ast.ArrayLiteral) ir.Value {
	arr := b.emit(&ir.Instr{Op: ir.OpNewArray, Typ: ir.ValueType(), Int: int64(len(n.Elements))})
	for i, el := range n.Elements {
		if _, elided := el.(*ast.NothingLiteral); elided {
			continue
		}
		v := b.lowerValue(el)
		b.emit(&ir.Instr{Op: ir.OpArrPut, Typ: ir.VoidType(), Int: int64(i), Args: []ir.Value{arr, v}})
	}
	return arr
}

func (b *builder) lowerObjectLiteral(n *ast.ObjectLiteral) ir.Value {
	obj := b.emit(&ir.Instr{Op: ir.OpNewObject, Typ: ir.ValueType()})
	for _, p := range n.Properties {
		id := b.internString(p.Key)
		key := ir.PropertyKey{Named: true, StrID: id}
		switch p.Kind {
		case ast.PropertyData:
			v := b.lowerValue(p.Value)
			b.emit(&ir.Instr{Op: ir.OpPrpDefData, Typ: ir.VoidType(), Key: key, Args: []ir.Value{obj, v}})
		case ast.PropertyGetter, ast.PropertySetter:
			fnVal := b.lowerValue(p.Value)
			b.emit(&ir.Instr{Op: ir.OpPrpDefAccessor, Typ: ir.VoidType(), Key: key, Bool_: p.Kind == ast.PropertyGetter, Args: []ir.Value{obj, fnVal}})
		}
	}
	return obj
}

func (b *builder) lowerCall(n *ast.Call) ir.Value {
	args := b.lowerArgs(n.Args)
	if prop, ok := n.Callee.(*ast.PropertyExpr); ok {
		r := b.lowerPropertyRef(prop)
		if r.immKey != nil {
			dst := b.allocTemp(ir.ValueType())
			ok := b.emit(&ir.Instr{Op: ir.OpCallKeyedImm, Typ: ir.BoolType(), Key: *r.immKey, Args: append([]ir.Value{r.object, dst}, args...)})
			return b.checkedValue(ok, dst)
		}
		dst := b.allocTemp(ir.ValueType())
		ok := b.emit(&ir.Instr{Op: ir.OpCallKeyedSlow, Typ: ir.BoolType(), Args: append([]ir.Value{r.object, r.keyVal, dst}, args...)})
		return b.checkedValue(ok, dst)
	}
	if id, ok := n.Callee.(*ast.Identifier); ok {
		if _, isLocal := b.locals[id.Name]; !isLocal {
			dst := b.allocTemp(ir.ValueType())
			ok := b.emit(&ir.Instr{Op: ir.OpCallNamed, Typ: ir.BoolType(), Str: id.Name, Args: append([]ir.Value{dst}, args...)})
			return b.checkedValue(ok, dst)
		}
	}
	callee := b.lowerValue(n.Callee)
	dst := b.allocTemp(ir.ValueType())
	ok := b.emit(&ir.Instr{Op: ir.OpCall, Typ: ir.BoolType(), Args: append([]ir.Value{callee, dst}, args...)})
	return b.checkedValue(ok, dst)
}

func (b *builder) lowerCallNew(n *ast.CallNew) ir.Value {
	callee := b.lowerValue(n.Callee)
	args := b.lowerArgs(n.Args)
	dst := b.allocTemp(ir.ValueType())
	ok := b.emit(&ir.Instr{Op: ir.OpCallNew, Typ: ir.BoolType(), Args: append([]ir.Value{callee, dst}, args...)})
	return b.checkedValue(ok, dst)
}

func (b *builder) lowerArgs(args []ast.Expression) []ir.Value {
	out := make([]ir.Value, len(args))
	for i, a := range args {
		out[i] = b.lowerValue(a)
	}
	return out
}
