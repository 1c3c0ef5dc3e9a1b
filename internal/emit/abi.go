// Package emit lowers an optimized ir.Module to its two textual artifacts:
// a human-readable IR dump (printer.go) and portable C-targeting source
// that drives the runtime ABI (csource.go), per spec §4.8. abi.go is the
// only file allowed to name a runtime symbol; the rest of the package
// refers to these constants rather than inventing call names inline.
package emit

import "github.com/kindahl/es2c/internal/ir"

// Well-known runtime entry points (spec §6 "Runtime ABI consumed by
// emitted code").
const (
	// SymDataInit is run once at process init to intern strings and
	// register global bindings.
	SymDataInit = "__es_data"
	// SymMain is the compiled root (program) function.
	SymMain = "__es_main"
	// SymRuntimeInit and SymRuntimeRun are invoked by a hand-written main
	// that links against the runtime; this compiler never emits a
	// definition for either, only the call sites a driver-provided main
	// would make.
	SymRuntimeInit = "esr_init"
	SymRuntimeRun  = "esr_run"
)

// ValueType is the C type name used for every es-value-typed slot and
// function parameter in emitted source.
const ValueType = "es_value_t"

// BoolType is the C type used for the boolean "did this succeed" result
// every checked instruction yields.
const BoolType = "bool"

// opIntrinsic maps an Op to the esa_*/es_* runtime entry point the
// emitter calls for it. Not every Op has one: pure control-flow
// (OpBranch/OpJump/OpReturn) and pure memory (OpMemStore/OpElemPtr)
// compile to plain C statements instead, handled directly in csource.go.
// Stack bookkeeping (OpStkAlloc/OpStkFree/OpStkPush) has no entry either
// and no plain-C lowering: csource.go writes it out as an
// `/* unhandled op ... */` comment.
var opIntrinsic = map[ir.Op]string{
	ir.OpArgsObjInit: "esa_args_obj_init",
	ir.OpInitArgs:    "esa_init_args",

	ir.OpArrGet: "esa_arr_get",
	ir.OpArrPut: "esa_arr_put",

	ir.OpBinRaw: "esa_bin_raw",
	ir.OpBinES:  "esa_bin_es",

	ir.OpUnaryTypeof:  "esa_typeof",
	ir.OpUnaryNeg:     "esa_neg",
	ir.OpUnaryBitNot:  "esa_bit_not",
	ir.OpUnaryLogNot:  "esa_log_not",

	ir.OpCall:          "esa_call",
	ir.OpCallNew:       "esa_call_new",
	ir.OpCallKeyedImm:  "esa_call_keyed",
	ir.OpCallKeyedSlow: "esa_call_keyed_slow",
	ir.OpCallNamed:     "esa_call_named",

	ir.OpValToDouble:    "esa_val_to_double",
	ir.OpValToString:    "esa_val_to_string",
	ir.OpValToBool:      "esa_val_to_bool",
	ir.OpValToObject:    "esa_val_to_object",
	ir.OpValIsUndefined: "esa_val_is_undefined",

	ir.OpPrpDefData:     "esa_prp_def_data",
	ir.OpPrpDefAccessor: "esa_prp_def_accessor",
	ir.OpPrpItNew:       "esa_prp_it_new",
	ir.OpPrpItNext:      "esa_prp_it_next",
	ir.OpPrpGet:         "esa_prp_get",
	ir.OpPrpGetSlow:     "esa_prp_get_slow",
	ir.OpPrpPut:         "esa_prp_put",
	ir.OpPrpPutSlow:     "esa_prp_put_slow",
	ir.OpPrpDel:         "esa_prp_del",
	ir.OpPrpDelSlow:     "esa_prp_del_slow",

	ir.OpCtxEnterCatch: "esa_ctx_enter_catch",
	ir.OpCtxEnterWith:  "esa_ctx_enter_with",
	ir.OpCtxLeave:      "esa_ctx_leave",
	ir.OpCtxGet:        "esa_ctx_get",
	ir.OpCtxPut:        "esa_ctx_put",
	ir.OpCtxDel:        "esa_ctx_del",
	ir.OpCtxSetStrict:  "esa_ctx_set_strict",

	ir.OpExSaveState: "esa_ex_save_state",
	ir.OpExLoadState: "esa_ex_load_state",
	ir.OpExSet:       "esa_ex_set",
	ir.OpExClear:     "esa_ex_clear",

	ir.OpDeclFun: "esa_decl_fun",
	ir.OpDeclVar: "esa_decl_var",
	ir.OpDeclPrm: "esa_decl_prm",

	ir.OpLinkFun: "esa_link_fun",
	ir.OpLinkVar: "esa_link_var",
	ir.OpLinkPrm: "esa_link_prm",

	ir.OpBndExtraInit: "esa_bnd_extra_init",
	ir.OpBndExtraPtr:  "esa_bnd_extra_ptr",

	ir.OpNewArray:         "esa_new_array",
	ir.OpNewFunctionDecl:  "esa_new_function_decl",
	ir.OpNewFunctionExpr:  "esa_new_function_expr",
	ir.OpNewObject:        "esa_new_object",
	ir.OpNewRegex:         "esa_new_regex",
}

// Intrinsic returns the runtime call name for op, and whether one exists.
func Intrinsic(op ir.Op) (string, bool) {
	name, ok := opIntrinsic[op]
	return name, ok
}

// namedKeyBit is the high bit of a 64-bit property key that distinguishes
// a named key (string id in the low bits) from an indexed key (array
// index in the low 32 bits, unchanged).
const namedKeyBit = uint64(1) << 63

// EncodePropertyKey packs k into the 64-bit wire representation the ABI
// expects: the high bit set and the interned string id in the remaining
// bits for a named key, or the plain 32-bit index for an indexed key.
func EncodePropertyKey(k ir.PropertyKey) uint64 {
	if k.Named {
		return namedKeyBit | uint64(uint32(k.StrID))
	}
	return uint64(k.Index)
}
