package ir

// FunctionBuilder is the typed, frontend-facing façade over a Function's
// DataFlowGraph, Layout, and SsaBuilder — one method per instruction shape
// plus the variable-based SSA operations (spec.md §4.4, grounded on
// original_source/crates/codegen/src/ir/builder/func_builder.rs).
type FunctionBuilder struct {
	Func *Function
	loc  CursorLocation
}

// NewFunctionBuilder starts building a fresh body for sig.
func NewFunctionBuilder(ctx *ModuleCtx, sig Signature) *FunctionBuilder {
	return &FunctionBuilder{Func: NewFunction(ctx, sig)}
}

// CreateBlock allocates a new, unattached block.
func (b *FunctionBuilder) CreateBlock() Block {
	return b.Func.MakeBlock()
}

// AppendBlock allocates a new block and appends it to the function's
// block ordering in one step — the common case for straight-line code.
func (b *FunctionBuilder) AppendBlock() Block {
	blk := b.Func.MakeBlock()
	b.Func.Layout.AppendBlock(blk)
	return blk
}

// SwitchToBlock moves the insertion cursor to the bottom of block.
func (b *FunctionBuilder) SwitchToBlock(block Block) {
	b.loc = CursorLocation{Kind: CursorAtBlockBottom, Block: block}
}

// CurrentBlock returns the block the cursor currently inserts into.
func (b *FunctionBuilder) CurrentBlock() (Block, bool) {
	if b.loc.Kind == CursorNowhere {
		return 0, false
	}
	return b.loc.Block, true
}

func (b *FunctionBuilder) currentBlock() Block {
	blk, ok := b.CurrentBlock()
	if !ok {
		panicContract("no current block selected — call SwitchToBlock first")
	}
	return blk
}

func (b *FunctionBuilder) insertInsn(insn Insn, isTerminator bool) {
	if err := b.Func.Layout.AppendInsn(b.currentBlock(), insn, isTerminator); err != nil {
		panic(err)
	}
}

func (b *FunctionBuilder) insertWithResult(data InsnData) Value {
	insn := b.Func.DFG.MakeInsn(data)
	b.insertInsn(insn, false)
	v, ok := b.Func.DFG.CreateResultValue(insn)
	if !ok {
		panicContract("instruction opcode expected to produce a result did not")
	}
	return v
}

// Args returns the function's argument Values.
func (b *FunctionBuilder) Args() []Value { return b.Func.Args() }

// Arithmetic, comparison, and bitwise instructions (spec.md §4.2).
func (b *FunctionBuilder) Add(lhs, rhs Value) Value  { return b.insertWithResult(NewBinaryInsn(OpAdd, lhs, rhs)) }
func (b *FunctionBuilder) Sub(lhs, rhs Value) Value  { return b.insertWithResult(NewBinaryInsn(OpSub, lhs, rhs)) }
func (b *FunctionBuilder) Mul(lhs, rhs Value) Value  { return b.insertWithResult(NewBinaryInsn(OpMul, lhs, rhs)) }
func (b *FunctionBuilder) Udiv(lhs, rhs Value) Value { return b.insertWithResult(NewBinaryInsn(OpUdiv, lhs, rhs)) }
func (b *FunctionBuilder) Sdiv(lhs, rhs Value) Value { return b.insertWithResult(NewBinaryInsn(OpSdiv, lhs, rhs)) }
func (b *FunctionBuilder) Lt(lhs, rhs Value) Value   { return b.insertWithResult(NewBinaryInsn(OpLt, lhs, rhs)) }
func (b *FunctionBuilder) Gt(lhs, rhs Value) Value   { return b.insertWithResult(NewBinaryInsn(OpGt, lhs, rhs)) }
func (b *FunctionBuilder) Slt(lhs, rhs Value) Value  { return b.insertWithResult(NewBinaryInsn(OpSlt, lhs, rhs)) }
func (b *FunctionBuilder) Sgt(lhs, rhs Value) Value  { return b.insertWithResult(NewBinaryInsn(OpSgt, lhs, rhs)) }
func (b *FunctionBuilder) Le(lhs, rhs Value) Value   { return b.insertWithResult(NewBinaryInsn(OpLe, lhs, rhs)) }
func (b *FunctionBuilder) Ge(lhs, rhs Value) Value   { return b.insertWithResult(NewBinaryInsn(OpGe, lhs, rhs)) }
func (b *FunctionBuilder) Sle(lhs, rhs Value) Value  { return b.insertWithResult(NewBinaryInsn(OpSle, lhs, rhs)) }
func (b *FunctionBuilder) Sge(lhs, rhs Value) Value  { return b.insertWithResult(NewBinaryInsn(OpSge, lhs, rhs)) }
func (b *FunctionBuilder) Eq(lhs, rhs Value) Value   { return b.insertWithResult(NewBinaryInsn(OpEq, lhs, rhs)) }
func (b *FunctionBuilder) Ne(lhs, rhs Value) Value   { return b.insertWithResult(NewBinaryInsn(OpNe, lhs, rhs)) }
func (b *FunctionBuilder) And(lhs, rhs Value) Value  { return b.insertWithResult(NewBinaryInsn(OpAnd, lhs, rhs)) }
func (b *FunctionBuilder) Or(lhs, rhs Value) Value   { return b.insertWithResult(NewBinaryInsn(OpOr, lhs, rhs)) }
func (b *FunctionBuilder) Not(arg Value) Value       { return b.insertWithResult(NewUnaryInsn(OpNot, arg)) }
func (b *FunctionBuilder) Neg(arg Value) Value       { return b.insertWithResult(NewUnaryInsn(OpNeg, arg)) }

// Casts.
func (b *FunctionBuilder) Sext(arg Value, ty Type) Value  { return b.insertWithResult(NewCastInsn(OpSext, arg, ty)) }
func (b *FunctionBuilder) Zext(arg Value, ty Type) Value  { return b.insertWithResult(NewCastInsn(OpZext, arg, ty)) }
func (b *FunctionBuilder) Trunc(arg Value, ty Type) Value { return b.insertWithResult(NewCastInsn(OpTrunc, arg, ty)) }

// Memory and storage access (spec.md glossary "Storage vs. memory").
func (b *FunctionBuilder) MemoryLoad(addr Value, ty Type) Value {
	return b.insertWithResult(NewLoadInsn(addr, ty, LocationMemory))
}
func (b *FunctionBuilder) MemoryStore(addr, data Value) {
	insn := b.Func.DFG.MakeInsn(NewStoreInsn(addr, data, LocationMemory))
	b.insertInsn(insn, false)
}
func (b *FunctionBuilder) StorageLoad(addr Value, ty Type) Value {
	return b.insertWithResult(NewLoadInsn(addr, ty, LocationStorage))
}
func (b *FunctionBuilder) StorageStore(addr, data Value) {
	insn := b.Func.DFG.MakeInsn(NewStoreInsn(addr, data, LocationStorage))
	b.insertInsn(insn, false)
}

// Alloca allocates ty-sized storage on the function's local frame,
// yielding a pointer.
func (b *FunctionBuilder) Alloca(ty Type) Value {
	return b.insertWithResult(NewAllocaInsn(ty))
}

// Jump terminates the current block unconditionally.
func (b *FunctionBuilder) Jump(dest Block) {
	b.Func.Ssa.AppendPred(dest, b.currentBlock())
	insn := b.Func.DFG.MakeInsn(NewJumpInsn(dest))
	b.insertInsn(insn, true)
}

// Br terminates the current block with a two-way conditional branch.
func (b *FunctionBuilder) Br(cond Value, thenBlk, elseBlk Block) {
	b.Func.Ssa.AppendPred(thenBlk, b.currentBlock())
	b.Func.Ssa.AppendPred(elseBlk, b.currentBlock())
	insn := b.Func.DFG.MakeInsn(NewBranchInsn(cond, thenBlk, elseBlk))
	b.insertInsn(insn, true)
}

// BrTableCase is one scrutinee/destination pair of a BrTable.
type BrTableCase struct {
	Value Value
	Block Block
}

// BrTable terminates the current block with a multi-way branch.
func (b *FunctionBuilder) BrTable(cond Value, cases []BrTableCase, defaultDest Block, hasDefault bool) {
	cur := b.currentBlock()
	for _, c := range cases {
		b.Func.Ssa.AppendPred(c.Block, cur)
	}
	if hasDefault {
		b.Func.Ssa.AppendPred(defaultDest, cur)
	}
	raw := make([]struct {
		Value Value
		Block Block
	}, len(cases))
	for i, c := range cases {
		raw[i] = struct {
			Value Value
			Block Block
		}{c.Value, c.Block}
	}
	insn := b.Func.DFG.MakeInsn(NewBrTableInsn(cond, raw, defaultDest, hasDefault))
	b.insertInsn(insn, true)
}

// Ret terminates the current block, optionally returning a value.
func (b *FunctionBuilder) Ret(arg *Value) {
	insn := b.Func.DFG.MakeInsn(NewReturnInsn(arg))
	b.insertInsn(insn, true)
}

// Call invokes a declared function.
func (b *FunctionBuilder) Call(callee FuncRef, args []Value) (Value, bool) {
	insn := b.Func.DFG.MakeInsn(NewCallInsn(callee, args))
	b.insertInsn(insn, false)
	return b.Func.DFG.CreateResultValue(insn)
}

// Phi inserts an explicit φ-instruction with the given entries at the
// current cursor position, for frontends that build SSA form directly
// rather than through the variable-based DeclareVar/UseVar/DefVar API.
func (b *FunctionBuilder) Phi(ty Type, entries []struct {
	Value Value
	Block Block
}) Value {
	return b.insertWithResult(NewPhiInsn(ty, entries))
}

// AppendPhiArg grows an existing φ with one more (value, pred) entry.
func (b *FunctionBuilder) AppendPhiArg(phi Insn, value Value, block Block) {
	b.Func.DFG.AppendPhiArg(phi, value, block)
}

// Variable-based SSA construction (spec.md §4.5), delegated to the
// function's SsaBuilder.
func (b *FunctionBuilder) DeclareVar(ty Type) Variable {
	return b.Func.Ssa.DeclareVar(ty)
}

func (b *FunctionBuilder) DefVar(v Variable, value Value) {
	b.Func.Ssa.DefVar(v, value, b.currentBlock(), b.Func.DFG)
}

func (b *FunctionBuilder) UseVar(v Variable) Value {
	return b.Func.Ssa.UseVar(b.Func, v, b.currentBlock())
}

// SealBlock declares that every predecessor of block is now known.
func (b *FunctionBuilder) SealBlock(block Block) {
	b.Func.Ssa.SealBlock(b.Func, block)
}

// SealAll seals every block appended to the layout so far.
func (b *FunctionBuilder) SealAll() {
	b.Func.Ssa.SealAll(b.Func)
}

// Target-width convenience accessors (spec.md §6 "polymorphic over
// target").
func (b *FunctionBuilder) PointerType() Type { return b.Func.DFG.Ctx.Isa.TypeLayout().PointerType() }
func (b *FunctionBuilder) AddressType() Type { return b.Func.DFG.Ctx.Isa.TypeLayout().AddressType() }
func (b *FunctionBuilder) BalanceType() Type { return b.Func.DFG.Ctx.Isa.TypeLayout().BalanceType() }
func (b *FunctionBuilder) GasType() Type     { return b.Func.DFG.Ctx.Isa.TypeLayout().GasType() }

// Imm interns a scalar immediate.
func (b *FunctionBuilder) Imm(imm Immediate) Value { return b.Func.DFG.MakeImmValue(imm) }

// GlobalValue materializes a pointer to a declared global variable.
func (b *FunctionBuilder) GlobalValue(gv GlobalVariable) Value {
	return b.Func.DFG.MakeGlobalValue(gv)
}

// Build finishes construction, sealing any blocks the caller forgot, and
// returns the finished Function.
func (b *FunctionBuilder) Build() *Function {
	b.Func.Ssa.SealAll(b.Func)
	return b.Func
}
