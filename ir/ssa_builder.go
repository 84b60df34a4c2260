package ir

import "go.uber.org/zap"

// blockVar is the (Block, Variable) pair key used by the current-def and
// incomplete-phi tables.
type blockVar struct {
	block Block
	v     Variable
}

// SsaBuilder implements Braun et al.'s "Simple and Efficient Construction
// of SSA Form" with sealing (spec.md §4.5), ported from the teacher's
// builder.findValue/Seal but using explicit Phi instructions (classic
// φ-nodes) instead of wazero's "block argument" variant — see DESIGN.md.
type SsaBuilder struct {
	varTy   map[Variable]Type
	nextVar Variable

	defs           map[blockVar]Value
	preds          map[Block][]Block
	sealed         map[Block]bool
	incompletePhis map[blockVar]Insn

	log *zap.Logger
}

// NewSsaBuilder returns a fresh SsaBuilder for one function build.
func NewSsaBuilder(log *zap.Logger) *SsaBuilder {
	if log == nil {
		log = zap.NewNop()
	}
	return &SsaBuilder{
		varTy:          make(map[Variable]Type),
		defs:           make(map[blockVar]Value),
		preds:          make(map[Block][]Block),
		sealed:         make(map[Block]bool),
		incompletePhis: make(map[blockVar]Insn),
		log:            log,
	}
}

// DeclareVar allocates a fresh Variable of the given type.
func (b *SsaBuilder) DeclareVar(ty Type) Variable {
	v := b.nextVar
	b.nextVar++
	b.varTy[v] = ty
	return v
}

// VarTy returns the declared type of v.
func (b *SsaBuilder) VarTy(v Variable) Type {
	ty, ok := b.varTy[v]
	if !ok {
		panicContract("use of an undeclared variable")
	}
	return ty
}

// DefVar records value as var's current definition in block.
func (b *SsaBuilder) DefVar(v Variable, value Value, block Block, dfg *DataFlowGraph) {
	if dfg.ValueTy(value) != b.VarTy(v) {
		panicContract("def_var type mismatch with the declared variable type")
	}
	b.defs[blockVar{block, v}] = value
}

// AppendPred records `pred` as a predecessor of `block`, called by the
// function builder before it inserts a jump/br/br_table terminator
// (spec.md §4.4 "Terminator predecessor recording").
func (b *SsaBuilder) AppendPred(block, pred Block) {
	if b.sealed[block] {
		panicContract("trying to add a predecessor to an already-sealed block")
	}
	b.preds[block] = append(b.preds[block], pred)
}

// IsSealed reports whether block has been sealed.
func (b *SsaBuilder) IsSealed(block Block) bool {
	return b.sealed[block]
}

// UseVar resolves the current definition of var as observed from block,
// inserting φ-instructions as needed (spec.md §4.5 read_variable).
func (b *SsaBuilder) UseVar(f *Function, v Variable, block Block) Value {
	return b.readVariable(f, v, block)
}

func (b *SsaBuilder) readVariable(f *Function, v Variable, block Block) Value {
	if val, ok := b.defs[blockVar{block, v}]; ok {
		return val
	}

	ty := b.VarTy(v)

	if !b.sealed[block] {
		// Incomplete CFG: speculatively insert an empty φ, to be
		// completed when block is sealed. φs always go at the top of
		// the block, ahead of whatever has already been built there.
		phi := f.DFG.MakeInsn(NewPhiInsn(ty, nil))
		if err := f.Layout.PrependInsn(block, phi); err != nil {
			panic(err)
		}
		value, _ := f.DFG.CreateResultValue(phi)
		b.incompletePhis[blockVar{block, v}] = phi
		b.defs[blockVar{block, v}] = value
		b.log.Debug("inserted speculative phi for unsealed block",
			zap.Uint32("block", uint32(block)), zap.Uint32("variable", uint32(v)))
		return value
	}

	preds := b.preds[block]
	if len(preds) == 1 {
		val := b.readVariable(f, v, preds[0])
		b.defs[blockVar{block, v}] = val
		return val
	}

	// Break possible cycles by writing a placeholder phi into defs
	// before recursing into predecessors.
	phi := f.DFG.MakeInsn(NewPhiInsn(ty, nil))
	if err := f.Layout.PrependInsn(block, phi); err != nil {
		panic(err)
	}
	phiValue, _ := f.DFG.CreateResultValue(phi)
	b.defs[blockVar{block, v}] = phiValue

	b.addPhiOperands(f, v, phi)
	result := b.tryRemoveTrivialPhi(f, phi)
	b.defs[blockVar{block, v}] = result
	return result
}

// addPhiOperands appends one (value, pred) entry per predecessor of the
// block phi lives in, in pred-registration order (spec.md §4.5 and the
// Ordering guarantees of §5).
func (b *SsaBuilder) addPhiOperands(f *Function, v Variable, phi Insn) {
	block, ok := f.Layout.InsnBlock(phi)
	if !ok {
		panicContract("phi is not attached to any block")
	}
	for _, pred := range b.preds[block] {
		val := b.readVariable(f, v, pred)
		f.DFG.AppendPhiArg(phi, val, pred)
	}
}

// tryRemoveTrivialPhi eliminates phi if it is trivial (spec.md §4.5 and
// §8 "No trivial φ after seal_all()"): all its operands are either
// itself or a single other value u. Returns phi's result Value, or u if
// the φ was eliminated.
func (b *SsaBuilder) tryRemoveTrivialPhi(f *Function, phi Insn) Value {
	phiValue, hasResult := f.DFG.InsnResult(phi)
	if !hasResult {
		panicContract("phi must have a result")
	}

	var same Value
	hasSame := false
	trivial := true
	for _, arg := range f.DFG.InsnArgs(phi) {
		if arg == phiValue {
			continue // self-reference: ignore.
		}
		if hasSame && arg != same {
			trivial = false
			break
		}
		same, hasSame = arg, true
	}
	if !trivial || !hasSame {
		// Not trivial, or no operands at all (e.g. an unreachable
		// block with no predecessors) — nothing to alias to.
		return phiValue
	}

	// Gather phi users among phi's own users before ChangeToAlias wipes
	// the user-set, so we can recheck their triviality afterward.
	var otherPhis []Insn
	for _, user := range f.DFG.Users(phiValue) {
		if user != phi && f.DFG.IsPhi(user) {
			otherPhis = append(otherPhis, user)
		}
	}

	f.DFG.ChangeToAlias(phiValue, same)
	f.Layout.DetachInsn(phi)
	b.log.Debug("eliminated trivial phi", zap.Uint32("insn", uint32(phi)))

	for _, other := range otherPhis {
		b.tryRemoveTrivialPhi(f, other)
	}

	return same
}

// SealBlock declares that all predecessors of block are now known,
// completing any pending incomplete φs (spec.md §4.5).
func (b *SsaBuilder) SealBlock(f *Function, block Block) {
	if b.sealed[block] {
		panicContract("trying to seal an already-sealed block: " + blockName(block))
	}
	for key, phi := range b.incompletePhis {
		if key.block != block {
			continue
		}
		phiValue, _ := f.DFG.InsnResult(phi)
		b.addPhiOperands(f, key.v, phi)
		result := b.tryRemoveTrivialPhi(f, phi)
		// Only substitute the alias if the φ is still the block's current
		// definition; a later DefVar in the block must not be overwritten.
		if b.defs[key] == phiValue {
			b.defs[key] = result
		}
		delete(b.incompletePhis, key)
	}
	b.sealed[block] = true
	b.log.Debug("sealed block", zap.Uint32("block", uint32(block)))
}

// SealAll seals every block appended to the layout so far; blocks that
// were created but never appended are not sealed. Order among unsealed
// blocks does not matter (spec.md §4.5).
func (b *SsaBuilder) SealAll(f *Function) {
	for _, block := range f.Layout.Blocks() {
		if !b.sealed[block] {
			b.SealBlock(f, block)
		}
	}
}

func blockName(b Block) string {
	return "block" + itoa(int(b))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
