package ir

import "sort"

// DataFlowGraph owns a function's four parallel arenas (blocks, values,
// instructions, instruction→result) plus the user-set map and the
// immediate-intern map (spec.md §4.2). Ported from
// original_source/crates/ir/src/dfg.rs into the teacher's pool[T] arena
// idiom.
type DataFlowGraph struct {
	Ctx *ModuleCtx

	blockData pool[struct{}]

	values pool[ValueData]

	insns       pool[InsnData]
	insnResults map[Insn]Value

	immediates map[string]Value

	users map[Value]map[Insn]struct{}
}

// NewDataFlowGraph returns an empty DFG bound to a module context.
func NewDataFlowGraph(ctx *ModuleCtx) *DataFlowGraph {
	return &DataFlowGraph{
		Ctx:         ctx,
		blockData:   newPool[struct{}](),
		values:      newPool[ValueData](),
		insns:       newPool[InsnData](),
		insnResults: make(map[Insn]Value),
		immediates:  make(map[string]Value),
		users:       make(map[Value]map[Insn]struct{}),
	}
}

// MakeBlock allocates an unattached block.
func (dfg *DataFlowGraph) MakeBlock() Block {
	_, idx := dfg.blockData.allocate()
	return Block(idx)
}

// makeValue allocates a new Value from its data.
func (dfg *DataFlowGraph) makeValue(data ValueData) Value {
	slot, idx := dfg.values.allocate()
	*slot = data
	return Value(idx)
}

// MakeImmValue interns imm, returning the existing Value if one was
// already created for an equal immediate (spec.md §3: "each immediate is
// interned exactly once per DFG").
func (dfg *DataFlowGraph) MakeImmValue(imm Immediate) Value {
	key := imm.internKey()
	if v, ok := dfg.immediates[key]; ok {
		return v
	}
	v := dfg.makeValue(ValueData{Kind: ValueKindImmediate, Ty: dfg.Ctx.Types.MakeInt(imm.Width), Imm: imm})
	dfg.immediates[key] = v
	return v
}

// MakeGlobalValue creates a (non-interned) pointer-to-global-variable
// value.
func (dfg *DataFlowGraph) MakeGlobalValue(gv GlobalVariable) Value {
	gvTy := dfg.Ctx.Globals.Type(gv)
	ty := dfg.Ctx.Types.MakePtr(gvTy)
	return dfg.makeValue(ValueData{Kind: ValueKindGlobal, Ty: ty, GV: gv})
}

// makeArgValue creates the ValueData for function argument idx; the
// caller (Function) is responsible for inserting it into the arena.
func (dfg *DataFlowGraph) makeArgValue(ty Type, idx int) ValueData {
	return ValueData{Kind: ValueKindArg, Ty: ty, ArgIdx: idx}
}

func (dfg *DataFlowGraph) pushArgValue(data ValueData) Value {
	return dfg.makeValue(data)
}

// MakeInsn allocates insn and records it as a user of each of its
// operands.
func (dfg *DataFlowGraph) MakeInsn(data InsnData) Insn {
	slot, idx := dfg.insns.allocate()
	*slot = data
	insn := Insn(idx)
	dfg.attachUser(insn)
	return insn
}

func (dfg *DataFlowGraph) insnData(insn Insn) *InsnData {
	return dfg.insns.view(int(insn))
}

// attachUser records insn as a user of each of its current operands.
func (dfg *DataFlowGraph) attachUser(insn Insn) {
	data := dfg.insnData(insn)
	for _, arg := range data.Args() {
		dfg.addUser(arg, insn)
	}
}

func (dfg *DataFlowGraph) addUser(v Value, insn Insn) {
	set, ok := dfg.users[v]
	if !ok {
		set = make(map[Insn]struct{})
		dfg.users[v] = set
	}
	set[insn] = struct{}{}
}

// RemoveUser removes insn from value's user set.
func (dfg *DataFlowGraph) RemoveUser(value Value, insn Insn) {
	set, ok := dfg.users[value]
	if !ok {
		return
	}
	delete(set, insn)
}

// MakeResult computes the result ValueData for insn, if it produces one.
func (dfg *DataFlowGraph) MakeResult(insn Insn) (ValueData, bool) {
	ty, ok := dfg.resultType(insn)
	if !ok {
		return ValueData{}, false
	}
	return ValueData{Kind: ValueKindResult, Ty: ty, Insn: insn}, true
}

// AttachResult records value (allocated by the caller from MakeResult's
// ValueData via dfg.makeValue) as insn's unique result.
func (dfg *DataFlowGraph) AttachResult(insn Insn, value Value) {
	if _, ok := dfg.insnResults[insn]; ok {
		panicContract("insn already has a result attached")
	}
	dfg.insnResults[insn] = value
}

// CreateResultValue is a convenience combining MakeResult+makeValue+
// AttachResult, mirroring the cursor's insert_insn flow in
// original_source/crates/codegen/src/ir/builder/func_builder.rs.
func (dfg *DataFlowGraph) CreateResultValue(insn Insn) (Value, bool) {
	data, ok := dfg.MakeResult(insn)
	if !ok {
		return 0, false
	}
	v := dfg.makeValue(data)
	dfg.AttachResult(insn, v)
	return v, true
}

// ReplaceInsn overwrites insn's data in place: operand→insn user edges
// for the old operands are dropped, new ones installed. The result Value
// (if any) keeps its identity — the caller is responsible for type
// compatibility (spec.md §4.2 replace_insn).
func (dfg *DataFlowGraph) ReplaceInsn(insn Insn, data InsnData) {
	old := dfg.insnData(insn)
	for _, arg := range old.Args() {
		dfg.RemoveUser(arg, insn)
	}
	*dfg.insnData(insn) = data
	dfg.attachUser(insn)
}

// ChangeToAlias redirects every use of `value` to `alias` (spec.md §4.2).
// Used by trivial-φ elimination.
func (dfg *DataFlowGraph) ChangeToAlias(value, alias Value) {
	users := dfg.users[value]
	delete(dfg.users, value)
	if len(users) == 0 {
		return
	}
	for insn := range users {
		data := dfg.insnData(insn)
		for i, arg := range data.ArgsMut() {
			if arg == value {
				data.ArgsMut()[i] = alias
			}
		}
		dfg.addUser(alias, insn)
	}
}

// InsnResult returns insn's result Value, if any.
func (dfg *DataFlowGraph) InsnResult(insn Insn) (Value, bool) {
	v, ok := dfg.insnResults[insn]
	return v, ok
}

// ValueData returns the data behind a Value handle.
func (dfg *DataFlowGraph) ValueData(v Value) ValueData {
	return *dfg.values.view(int(v))
}

// ValueTy returns the type of v.
func (dfg *DataFlowGraph) ValueTy(v Value) Type {
	return dfg.ValueData(v).Ty
}

// InsnResultTy returns the type of insn's result, if it has one.
func (dfg *DataFlowGraph) InsnResultTy(insn Insn) (Type, bool) {
	v, ok := dfg.InsnResult(insn)
	if !ok {
		return TypeInvalid, false
	}
	return dfg.ValueTy(v), true
}

// ValueImm returns the interned Immediate behind v: either a literal
// Immediate value, or — restoring original_source/crates/ir/src/dfg.rs's
// value_imm behavior — a Global value whose GlobalVariable is declared
// const with a scalar initializer.
func (dfg *DataFlowGraph) ValueImm(v Value) (Immediate, bool) {
	data := dfg.ValueData(v)
	switch data.Kind {
	case ValueKindImmediate:
		return data.Imm, true
	case ValueKindGlobal:
		return dfg.Ctx.Globals.ConstImm(data.GV)
	default:
		return Immediate{}, false
	}
}

// ValueGV returns the GlobalVariable behind a Global value.
func (dfg *DataFlowGraph) ValueGV(v Value) (GlobalVariable, bool) {
	data := dfg.ValueData(v)
	if data.Kind != ValueKindGlobal {
		return 0, false
	}
	return data.GV, true
}

// IsImm reports whether v resolves to an immediate (literal or constant
// global).
func (dfg *DataFlowGraph) IsImm(v Value) bool {
	_, ok := dfg.ValueImm(v)
	return ok
}

// IsArg reports whether v is a function argument.
func (dfg *DataFlowGraph) IsArg(v Value) bool {
	return dfg.ValueData(v).Kind == ValueKindArg
}

// HasSideEffect reports whether insn has a side effect.
func (dfg *DataFlowGraph) HasSideEffect(insn Insn) bool {
	return dfg.insnData(insn).HasSideEffect()
}

// MayTrap reports whether insn can fault at runtime.
func (dfg *DataFlowGraph) MayTrap(insn Insn) bool {
	return dfg.insnData(insn).MayTrap()
}

// Users returns, in ascending-handle order (for determinism), every
// instruction currently using v.
func (dfg *DataFlowGraph) Users(v Value) []Insn {
	set := dfg.users[v]
	out := make([]Insn, 0, len(set))
	for insn := range set {
		out = append(out, insn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// UsersNum returns the number of instructions currently using v.
func (dfg *DataFlowGraph) UsersNum(v Value) int {
	return len(dfg.users[v])
}

// InsnArgs returns insn's operand Values.
func (dfg *DataFlowGraph) InsnArgs(insn Insn) []Value {
	return dfg.insnData(insn).Args()
}

// InsnArgsNum returns the number of operands insn has.
func (dfg *DataFlowGraph) InsnArgsNum(insn Insn) int {
	return len(dfg.InsnArgs(insn))
}

// InsnArg returns insn's idx-th operand.
func (dfg *DataFlowGraph) InsnArg(insn Insn, idx int) Value {
	return dfg.InsnArgs(insn)[idx]
}

// ReplaceInsnArg substitutes insn's idx-th operand with newArg, returning
// the old operand. The old operand's user edge is removed only if it no
// longer appears anywhere else in insn's operand list (multi-occurrence
// safe, spec.md §4.2).
func (dfg *DataFlowGraph) ReplaceInsnArg(insn Insn, idx int, newArg Value) Value {
	data := dfg.insnData(insn)
	args := data.ArgsMut()
	oldArg := args[idx]
	args[idx] = newArg
	dfg.addUser(newArg, insn)

	stillPresent := false
	for _, a := range args {
		if a == oldArg {
			stillPresent = true
			break
		}
	}
	if !stillPresent {
		dfg.RemoveUser(oldArg, insn)
	}
	return oldArg
}

// AnalyzeBranch returns insn's destination list.
func (dfg *DataFlowGraph) AnalyzeBranch(insn Insn) BranchInfo {
	return dfg.insnData(insn).AnalyzeBranch()
}

// RemoveBranchDest edits insn (a terminator) so that dest is no longer a
// target (spec.md §4.2 remove_branch_dest — all four cases kept exactly,
// including the Jump panic and the BrTable/Branch reduction-to-Jump
// rules).
func (dfg *DataFlowGraph) RemoveBranchDest(insn Insn, dest Block) {
	data := dfg.insnData(insn)
	switch data.Opcode {
	case OpJump:
		panic("can't remove destination from `Jump` insn")

	case OpBranch:
		var remain Block
		switch {
		case data.dests[0] == dest:
			remain = data.dests[1]
		case data.dests[1] == dest:
			remain = data.dests[0]
		default:
			panic("no dests found in the branch destination")
		}
		dfg.RemoveUser(data.args[0], insn)
		*data = NewJumpInsn(remain)

	case OpBrTable:
		if data.hasDefault && data.defaultDest == dest {
			data.hasDefault = false
		} else {
			newArgs := make([]Value, 0, len(data.args))
			newTable := make([]Block, 0, len(data.table))
			newArgs = append(newArgs, data.args[0])
			for i, b := range data.table {
				if b == dest {
					dfg.RemoveUser(data.args[i+1], insn)
					continue
				}
				newArgs = append(newArgs, data.args[i+1])
				newTable = append(newTable, b)
			}
			data.args = newArgs
			data.table = newTable
		}

		info := data.AnalyzeBranch()
		if info.DestsNum() == 1 {
			for _, v := range data.Args() {
				dfg.RemoveUser(v, insn)
			}
			*data = NewJumpInsn(info.Dests()[0])
		}

	default:
		panic("not a branch")
	}
}

// RewriteBranchDest renames a destination without touching operands or
// users.
func (dfg *DataFlowGraph) RewriteBranchDest(insn Insn, from, to Block) {
	dfg.insnData(insn).RewriteBranchDest(from, to)
}

func (dfg *DataFlowGraph) IsPhi(insn Insn) bool    { return dfg.insnData(insn).IsPhi() }
func (dfg *DataFlowGraph) IsReturn(insn Insn) bool { return dfg.insnData(insn).IsReturn() }
func (dfg *DataFlowGraph) IsBranch(insn Insn) bool { return dfg.insnData(insn).IsBranch() }

// PhiBlocks returns a Phi's predecessor blocks, parallel to InsnArgs.
func (dfg *DataFlowGraph) PhiBlocks(insn Insn) []Block {
	return dfg.insnData(insn).PhiBlocks()
}

// AppendPhiArg appends a (value, block) entry to a Phi, keeping the
// user-set consistent.
func (dfg *DataFlowGraph) AppendPhiArg(insn Insn, value Value, block Block) {
	dfg.insnData(insn).AppendPhiArg(value, block)
	dfg.addUser(value, insn)
}

// RemovePhiArg removes the entry flowing through `from` and returns the
// removed Value, keeping the user-set consistent.
func (dfg *DataFlowGraph) RemovePhiArg(insn Insn, from Block) Value {
	removed := dfg.insnData(insn).RemovePhiArg(from)
	dfg.RemoveUser(removed, insn)
	return removed
}

// resultType computes the result type of insn per its opcode and operand
// types (spec.md §4.2). Returns false for insns with no result (Store and
// the terminators); Alloca does have a result, a pointer to its type.
func (dfg *DataFlowGraph) resultType(insn Insn) (Type, bool) {
	data := dfg.insnData(insn)
	switch {
	case data.Opcode == OpNot || data.Opcode == OpNeg:
		return dfg.ValueTy(data.args[0]), true

	case data.Opcode.isArithOrBitwise():
		lhs, rhs := dfg.ValueTy(data.args[0]), dfg.ValueTy(data.args[1])
		if lhs != rhs {
			panicContract("arithmetic/bitwise operand types must match")
		}
		return lhs, true

	case data.Opcode.isComparison():
		return dfg.Ctx.Types.MakeInt(1), true

	case data.Opcode == OpSext || data.Opcode == OpZext || data.Opcode == OpTrunc:
		return data.ty, true

	case data.Opcode == OpLoad:
		return data.ty, true

	case data.Opcode == OpStore:
		return TypeInvalid, false

	case data.Opcode == OpAlloca:
		return dfg.Ctx.Types.MakePtr(data.ty), true

	case data.Opcode == OpJump, data.Opcode == OpBranch, data.Opcode == OpBrTable, data.Opcode == OpReturn:
		return TypeInvalid, false

	case data.Opcode == OpPhi:
		return data.ty, true

	case data.Opcode == OpCall:
		ret, hasRet := dfg.Ctx.FuncSigReturnType(data.callee)
		if !hasRet {
			return TypeInvalid, false
		}
		return ret, true

	default:
		panicContract("unhandled opcode in resultType")
	}
}
