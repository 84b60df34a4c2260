package ir

// Insn is a handle into a function's DataFlowGraph instruction arena.
type Insn uint32

// Block is a handle into a function's DataFlowGraph block arena. It has
// no payload of its own — ordering lives in Layout (spec.md §3).
type Block uint32

// Opcode enumerates every instruction shape the core DFG supports
// (spec.md §4.2). Frontends targeting an InstSetBase that denies some of
// these still go through the same DFG — InstSetBase.DeniedOpcodes is
// advisory for a verifier collaborator, not enforced by the DFG itself.
type Opcode uint8

const (
	OpNot Opcode = iota + 1
	OpNeg

	OpAdd
	OpSub
	OpMul
	OpUdiv
	OpSdiv
	OpLt
	OpGt
	OpSlt
	OpSgt
	OpLe
	OpGe
	OpSle
	OpSge
	OpEq
	OpNe
	OpAnd
	OpOr

	OpSext
	OpZext
	OpTrunc

	OpLoad
	OpStore
	OpAlloca

	OpJump
	OpBranch
	OpBrTable
	OpReturn

	OpPhi
	OpCall
)

func (op Opcode) String() string {
	switch op {
	case OpNot:
		return "not"
	case OpNeg:
		return "neg"
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpUdiv:
		return "udiv"
	case OpSdiv:
		return "sdiv"
	case OpLt:
		return "lt"
	case OpGt:
		return "gt"
	case OpSlt:
		return "slt"
	case OpSgt:
		return "sgt"
	case OpLe:
		return "le"
	case OpGe:
		return "ge"
	case OpSle:
		return "sle"
	case OpSge:
		return "sge"
	case OpEq:
		return "eq"
	case OpNe:
		return "ne"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpSext:
		return "sext"
	case OpZext:
		return "zext"
	case OpTrunc:
		return "trunc"
	case OpLoad:
		return "load"
	case OpStore:
		return "store"
	case OpAlloca:
		return "alloca"
	case OpJump:
		return "jump"
	case OpBranch:
		return "br"
	case OpBrTable:
		return "br_table"
	case OpReturn:
		return "return"
	case OpPhi:
		return "phi"
	case OpCall:
		return "call"
	default:
		return "<invalid opcode>"
	}
}

func (op Opcode) isComparison() bool {
	switch op {
	case OpLt, OpGt, OpSlt, OpSgt, OpLe, OpGe, OpSle, OpSge, OpEq, OpNe:
		return true
	}
	return false
}

func (op Opcode) isArithOrBitwise() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpUdiv, OpSdiv, OpAnd, OpOr:
		return true
	}
	return false
}

// DataLocationKind distinguishes the two address spaces a Load/Store can
// target (spec.md glossary "Storage vs. memory").
type DataLocationKind uint8

const (
	LocationMemory DataLocationKind = iota + 1
	LocationStorage
)

func (l DataLocationKind) String() string {
	if l == LocationStorage {
		return "storage"
	}
	return "memory"
}

// InsnData is the variant-tagged payload of an Insn. Go has no tagged
// union, so — matching the teacher's own flattened Instruction struct in
// instructions.go — every variant's fields live side by side and only the
// ones Opcode calls for are meaningful. `args` is the single generic
// operand list every DFG mutator (attach_user, replace_insn_arg,
// change_to_alias) walks without needing a type switch.
type InsnData struct {
	Opcode Opcode

	args []Value

	// Cast / Load / Alloca / Phi result type.
	ty Type

	// Load / Store.
	loc DataLocationKind

	// Jump.
	dest Block

	// Branch.
	dests [2]Block

	// BrTable: args[0] is the scrutinee, args[1:] parallels table.
	table       []Block
	defaultDest Block
	hasDefault  bool

	// Phi: args parallels phiBlocks.
	phiBlocks []Block

	// Return.
	hasArg bool

	// Call.
	callee FuncRef
}

// Args returns the operand Values of insn, in a variant-specific order
// documented per constructor below.
func (d *InsnData) Args() []Value { return d.args }

// ArgsMut returns a mutable view of the operand Values, used by
// DataFlowGraph.ChangeToAlias and ReplaceInsnArg.
func (d *InsnData) ArgsMut() []Value { return d.args }

// NewUnaryInsn builds a Not/Neg instruction.
func NewUnaryInsn(op Opcode, arg Value) InsnData {
	return InsnData{Opcode: op, args: []Value{arg}}
}

// NewBinaryInsn builds an arithmetic/comparison/bitwise instruction.
func NewBinaryInsn(op Opcode, lhs, rhs Value) InsnData {
	return InsnData{Opcode: op, args: []Value{lhs, rhs}}
}

// NewCastInsn builds a Sext/Zext/Trunc instruction.
func NewCastInsn(op Opcode, arg Value, ty Type) InsnData {
	return InsnData{Opcode: op, args: []Value{arg}, ty: ty}
}

// NewLoadInsn builds a Load instruction from the given address space.
func NewLoadInsn(addr Value, ty Type, loc DataLocationKind) InsnData {
	return InsnData{Opcode: OpLoad, args: []Value{addr}, ty: ty, loc: loc}
}

// NewStoreInsn builds a Store instruction.
func NewStoreInsn(addr, data Value, loc DataLocationKind) InsnData {
	return InsnData{Opcode: OpStore, args: []Value{addr, data}, loc: loc}
}

// NewAllocaInsn builds an Alloca instruction.
func NewAllocaInsn(ty Type) InsnData {
	return InsnData{Opcode: OpAlloca, ty: ty}
}

// NewJumpInsn builds a Jump terminator.
func NewJumpInsn(dest Block) InsnData {
	return InsnData{Opcode: OpJump, dest: dest}
}

// NewBranchInsn builds a conditional Branch terminator.
func NewBranchInsn(cond Value, thenBlk, elseBlk Block) InsnData {
	return InsnData{Opcode: OpBranch, args: []Value{cond}, dests: [2]Block{thenBlk, elseBlk}}
}

// NewBrTableInsn builds a BrTable terminator. cases are matched in order;
// defaultDest is optional (hasDefault=false means falling off the table is
// undefined behavior for the caller to guard against elsewhere).
func NewBrTableInsn(cond Value, cases []struct {
	Value Value
	Block Block
}, defaultDest Block, hasDefault bool) InsnData {
	args := make([]Value, 0, len(cases)+1)
	args = append(args, cond)
	table := make([]Block, 0, len(cases))
	for _, c := range cases {
		args = append(args, c.Value)
		table = append(table, c.Block)
	}
	return InsnData{Opcode: OpBrTable, args: args, table: table, defaultDest: defaultDest, hasDefault: hasDefault}
}

// NewReturnInsn builds a Return terminator; arg is absent for a void
// return.
func NewReturnInsn(arg *Value) InsnData {
	if arg == nil {
		return InsnData{Opcode: OpReturn}
	}
	return InsnData{Opcode: OpReturn, args: []Value{*arg}, hasArg: true}
}

// NewPhiInsn builds a Phi instruction. entries may be empty (an
// "incomplete" phi later grown via AppendPhiArg, spec.md §4.5).
func NewPhiInsn(ty Type, entries []struct {
	Value Value
	Block Block
}) InsnData {
	args := make([]Value, 0, len(entries))
	blocks := make([]Block, 0, len(entries))
	for _, e := range entries {
		args = append(args, e.Value)
		blocks = append(blocks, e.Block)
	}
	return InsnData{Opcode: OpPhi, args: args, ty: ty, phiBlocks: blocks}
}

// NewCallInsn builds a Call instruction.
func NewCallInsn(callee FuncRef, args []Value) InsnData {
	return InsnData{Opcode: OpCall, args: append([]Value(nil), args...), callee: callee}
}

// HasSideEffect reports whether insn must not be reordered/removed freely
// (spec.md §4.2 "side-effect classification").
func (d *InsnData) HasSideEffect() bool {
	switch d.Opcode {
	case OpStore, OpAlloca, OpCall, OpJump, OpBranch, OpBrTable, OpReturn:
		return true
	default:
		return false
	}
}

// MayTrap reports whether insn can fault at runtime.
func (d *InsnData) MayTrap() bool {
	switch d.Opcode {
	case OpUdiv, OpSdiv, OpLoad, OpStore:
		return true
	default:
		return false
	}
}

func (d *InsnData) IsPhi() bool    { return d.Opcode == OpPhi }
func (d *InsnData) IsReturn() bool { return d.Opcode == OpReturn }
func (d *InsnData) IsBranch() bool {
	switch d.Opcode {
	case OpJump, OpBranch, OpBrTable:
		return true
	default:
		return false
	}
}

// BranchInfo summarizes a terminator's destination set for optimization
// collaborators (spec.md §4.2 analyze_branch).
type BranchInfo struct {
	dests []Block
}

func (b BranchInfo) DestsNum() int      { return len(b.dests) }
func (b BranchInfo) Dests() []Block     { return b.dests }
func (b BranchInfo) IterDests() []Block { return b.dests }

// AnalyzeBranch computes the destination list of a terminator.
func (d *InsnData) AnalyzeBranch() BranchInfo {
	switch d.Opcode {
	case OpJump:
		return BranchInfo{dests: []Block{d.dest}}
	case OpBranch:
		return BranchInfo{dests: []Block{d.dests[0], d.dests[1]}}
	case OpBrTable:
		dests := append([]Block(nil), d.table...)
		if d.hasDefault {
			dests = append(dests, d.defaultDest)
		}
		return BranchInfo{dests: dests}
	default:
		panic("not a branch")
	}
}

// PhiBlocks returns the predecessor blocks of a Phi, parallel to Args().
func (d *InsnData) PhiBlocks() []Block { return d.phiBlocks }

// AppendPhiArg appends a (value, block) entry to a Phi in place.
func (d *InsnData) AppendPhiArg(value Value, block Block) {
	d.args = append(d.args, value)
	d.phiBlocks = append(d.phiBlocks, block)
}

// RemovePhiArg removes the entry flowing through `from` and returns the
// removed Value. Panics if insn is not a Phi or has no entry for `from`.
func (d *InsnData) RemovePhiArg(from Block) Value {
	for i, b := range d.phiBlocks {
		if b == from {
			removed := d.args[i]
			d.args = append(d.args[:i], d.args[i+1:]...)
			d.phiBlocks = append(d.phiBlocks[:i], d.phiBlocks[i+1:]...)
			return removed
		}
	}
	panic("no phi argument flowing through the given block")
}

// RewriteBranchDest renames a destination in place without touching
// operands/users (spec.md §4.2 rewrite_branch_dest).
func (d *InsnData) RewriteBranchDest(from, to Block) {
	switch d.Opcode {
	case OpJump:
		if d.dest == from {
			d.dest = to
		}
	case OpBranch:
		for i := range d.dests {
			if d.dests[i] == from {
				d.dests[i] = to
			}
		}
	case OpBrTable:
		for i := range d.table {
			if d.table[i] == from {
				d.table[i] = to
			}
		}
		if d.hasDefault && d.defaultDest == from {
			d.defaultDest = to
		}
	default:
		panic("not a branch")
	}
}
