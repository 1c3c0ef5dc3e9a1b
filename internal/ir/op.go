package ir

// Op is an IR instruction opcode. The set below mirrors the ~70 opcodes
// called for by the data model: most are simple effect or value
// instructions, a handful are parameterized by a BinKind/UnaryKind operand
// carried on the owning Instr rather than split into one opcode per
// operator (the same approach internal/ast takes for its own Binary/Unary
// operator enums).
type Op int

const (
	// ========================================
	// Arguments object (2 opcodes)
	// ========================================

	// OpArgsObjInit builds the arguments object from the extras slots
	// already populated by OpInitArgs.
	OpArgsObjInit Op = iota
	// OpInitArgs copies fp[i] parameters into their extras slots ahead of
	// OpArgsObjInit.
	OpInitArgs

	// ========================================
	// Array element access (2 opcodes)
	// ========================================

	OpArrGet
	OpArrPut

	// ========================================
	// Binary/relational/equality/bitwise/shift/logical (2 opcodes)
	// ========================================

	// OpBinRaw computes Kind over Args[0], Args[1] directly, producing Typ.
	OpBinRaw
	// OpBinES computes Kind with full ES semantic coercion, writing the
	// result into Args[2] (the out-parameter) and yielding Typ == Bool:
	// true on success, false if an exception was raised and the caller
	// must branch to its exception block.
	OpBinES

	// ========================================
	// Unary (4 opcodes)
	// ========================================

	OpUnaryTypeof
	OpUnaryNeg
	OpUnaryBitNot
	OpUnaryLogNot

	// ========================================
	// Calls (5 opcodes)
	// ========================================

	OpCall          // normal call
	OpCallNew       // constructor call
	OpCallKeyedImm  // method call via an immediate property key
	OpCallKeyedSlow // method call via a computed property key
	OpCallNamed     // call resolved through a context binding

	// ========================================
	// Value coercion / interrogation (5 opcodes)
	// ========================================

	OpValToDouble
	OpValToString
	OpValToBool
	OpValToObject
	OpValIsUndefined

	// ========================================
	// Control flow (3 opcodes)
	// ========================================

	// OpBranch is a terminator with Targets == [trueBlock, falseBlock].
	OpBranch
	// OpJump is a terminator with Targets == [target].
	OpJump
	// OpReturn is a terminator; Args[0] (if present) is the return value,
	// Bool records the ES5.1 "normal completion" flag used by the
	// template-unwind machinery (a bare OpReturn with Bool == false is the
	// "exception propagates to caller" terminator every function scope
	// opens with).
	OpReturn

	// ========================================
	// Memory (2 opcodes)
	// ========================================

	OpMemStore
	OpElemPtr

	// ========================================
	// Stack (3 opcodes)
	// ========================================

	// OpStkAlloc reserves Int temporary slots; Int is a promise filled in
	// by the builder once the function's final slot count is known.
	OpStkAlloc
	OpStkFree
	OpStkPush

	// ========================================
	// Property definition (2 opcodes)
	// ========================================

	OpPrpDefData
	OpPrpDefAccessor

	// ========================================
	// Property iteration (2 opcodes)
	// ========================================

	OpPrpItNew
	OpPrpItNext

	// ========================================
	// Property get/put/delete (6 opcodes)
	// ========================================

	OpPrpGet     // fast keyed, immediate key
	OpPrpGetSlow // slow keyed, computed key
	OpPrpPut
	OpPrpPutSlow
	OpPrpDel
	OpPrpDelSlow

	// ========================================
	// Context (7 opcodes)
	// ========================================

	OpCtxEnterCatch
	OpCtxEnterWith
	OpCtxLeave
	OpCtxGet
	OpCtxPut
	OpCtxDel
	OpCtxSetStrict

	// ========================================
	// Exception state (4 opcodes)
	// ========================================

	OpExSaveState
	OpExLoadState
	OpExSet
	OpExClear

	// ========================================
	// Declaration (3 opcodes)
	// ========================================

	OpDeclFun
	OpDeclVar
	OpDeclPrm

	// ========================================
	// Link: reifies a local into the current environment record
	// (3 opcodes)
	// ========================================

	OpLinkFun
	OpLinkVar
	OpLinkPrm

	// ========================================
	// Captured-scope extras (2 opcodes)
	// ========================================

	// OpBndExtraInit allocates the n heap extras slots for this function's
	// local-extra bindings; its result is persistent.
	OpBndExtraInit
	// OpBndExtraPtr materializes the extras pointer of an outer scope Int
	// hops away, for a referenced-outer-scope capture.
	OpBndExtraPtr

	// ========================================
	// Construction (5 opcodes)
	// ========================================

	OpNewArray
	OpNewFunctionDecl
	OpNewFunctionExpr
	OpNewObject
	OpNewRegex

	// ========================================
	// Meta: deferred reference resolution (2 opcodes)
	// ========================================

	// OpMetaCtxLoad is a placeholder produced by reference lowering for an
	// identifier that doesn't resolve to a local; expand_ref_get/put later
	// rewrites its use into a concrete OpCtxGet/OpCtxPut.
	OpMetaCtxLoad
	// OpMetaPrpLoad is the property-expression analogue of OpMetaCtxLoad.
	OpMetaPrpLoad
)

func (op Op) String() string {
	switch op {
	case OpArgsObjInit:
		return "args_obj_init"
	case OpInitArgs:
		return "init_args"
	case OpArrGet:
		return "arr_get"
	case OpArrPut:
		return "arr_put"
	case OpBinRaw:
		return "bin_raw"
	case OpBinES:
		return "bin_es"
	case OpUnaryTypeof:
		return "typeof"
	case OpUnaryNeg:
		return "neg"
	case OpUnaryBitNot:
		return "bit_not"
	case OpUnaryLogNot:
		return "log_not"
	case OpCall:
		return "call"
	case OpCallNew:
		return "call_new"
	case OpCallKeyedImm:
		return "call_keyed"
	case OpCallKeyedSlow:
		return "call_keyed_slow"
	case OpCallNamed:
		return "call_named"
	case OpValToDouble:
		return "val_to_double"
	case OpValToString:
		return "val_to_string"
	case OpValToBool:
		return "val_to_bool"
	case OpValToObject:
		return "val_to_object"
	case OpValIsUndefined:
		return "val_is_undefined"
	case OpBranch:
		return "branch"
	case OpJump:
		return "jump"
	case OpReturn:
		return "return"
	case OpMemStore:
		return "mem_store"
	case OpElemPtr:
		return "elem_ptr"
	case OpStkAlloc:
		return "stk_alloc"
	case OpStkFree:
		return "stk_free"
	case OpStkPush:
		return "stk_push"
	case OpPrpDefData:
		return "prp_def_data"
	case OpPrpDefAccessor:
		return "prp_def_accessor"
	case OpPrpItNew:
		return "prp_it_new"
	case OpPrpItNext:
		return "prp_it_next"
	case OpPrpGet:
		return "prp_get"
	case OpPrpGetSlow:
		return "prp_get_slow"
	case OpPrpPut:
		return "prp_put"
	case OpPrpPutSlow:
		return "prp_put_slow"
	case OpPrpDel:
		return "prp_del"
	case OpPrpDelSlow:
		return "prp_del_slow"
	case OpCtxEnterCatch:
		return "ctx_enter_catch"
	case OpCtxEnterWith:
		return "ctx_enter_with"
	case OpCtxLeave:
		return "ctx_leave"
	case OpCtxGet:
		return "ctx_get"
	case OpCtxPut:
		return "ctx_put"
	case OpCtxDel:
		return "ctx_del"
	case OpCtxSetStrict:
		return "ctx_set_strict"
	case OpExSaveState:
		return "ex_save_state"
	case OpExLoadState:
		return "ex_load_state"
	case OpExSet:
		return "ex_set"
	case OpExClear:
		return "ex_clear"
	case OpDeclFun:
		return "decl_fun"
	case OpDeclVar:
		return "decl_var"
	case OpDeclPrm:
		return "decl_prm"
	case OpLinkFun:
		return "link_fun"
	case OpLinkVar:
		return "link_var"
	case OpLinkPrm:
		return "link_prm"
	case OpBndExtraInit:
		return "bnd_extra_init"
	case OpBndExtraPtr:
		return "bnd_extra_ptr"
	case OpNewArray:
		return "new_array"
	case OpNewFunctionDecl:
		return "new_function_decl"
	case OpNewFunctionExpr:
		return "new_function_expr"
	case OpNewObject:
		return "new_object"
	case OpNewRegex:
		return "new_regex"
	case OpMetaCtxLoad:
		return "meta_ctx_load"
	case OpMetaPrpLoad:
		return "meta_prp_load"
	default:
		return "invalid_op"
	}
}

// IsTerminator reports whether op ends a Block.
func (op Op) IsTerminator() bool {
	return op == OpBranch || op == OpJump || op == OpReturn
}

// HasResult reports whether op produces a value other instructions may
// reference as an operand. Effect-only instructions (stores, frees,
// context mutation, terminators) return false.
func (op Op) HasResult() bool {
	switch op {
	case OpArrPut, OpMemStore, OpStkAlloc, OpStkFree, OpStkPush,
		OpPrpDefData, OpPrpDefAccessor,
		OpCtxLeave, OpCtxSetStrict,
		OpExSaveState, OpExSet, OpExClear,
		OpLinkFun, OpLinkVar, OpLinkPrm,
		OpBranch, OpJump, OpReturn,
		OpInitArgs:
		return false
	default:
		return true
	}
}
