package ir

import "github.com/pkg/errors"

// Layout maintains two intrusive doubly-linked orderings — blocks within
// a function, and instructions within each block — kept separate from the
// DataFlowGraph per spec.md §3 ("ordering lives in Layout"). The contract
// is trivial by design (spec.md §2 component budget: ~implementation
// trivial); the one non-trivial rule it enforces is "a block has at most
// one terminator and it is its last instruction" (§3 invariant).
type Layout struct {
	blocks map[Block]*blockNode
	insns  map[Insn]*insnNode

	firstBlock, lastBlock Block
	hasBlocks             bool
}

type blockNode struct {
	prev, next           Block
	hasPrev, hasNext     bool
	firstInsn, lastInsn  Insn
	hasInsns             bool
	terminator           Insn
	hasTerminator        bool
}

type insnNode struct {
	prev, next       Insn
	hasPrev, hasNext bool
	block            Block
	attached         bool
}

// NewLayout returns an empty Layout.
func NewLayout() *Layout {
	return &Layout{
		blocks: make(map[Block]*blockNode),
		insns:  make(map[Insn]*insnNode),
	}
}

// MakeBlock registers a freshly allocated, unattached block with the
// layout (it is not yet part of the block ordering until AppendBlock).
func (l *Layout) MakeBlock(b Block) {
	l.blocks[b] = &blockNode{}
}

// AppendBlock appends b to the tail of the function's block ordering.
func (l *Layout) AppendBlock(b Block) {
	node := l.blocks[b]
	if !l.hasBlocks {
		l.firstBlock, l.lastBlock = b, b
		l.hasBlocks = true
		return
	}
	tail := l.blocks[l.lastBlock]
	tail.next, tail.hasNext = b, true
	node.prev, node.hasPrev = l.lastBlock, true
	l.lastBlock = b
}

// FirstBlock returns the entry block, if any.
func (l *Layout) FirstBlock() (Block, bool) { return l.firstBlock, l.hasBlocks }

// NextBlock returns the block following b in layout order.
func (l *Layout) NextBlock(b Block) (Block, bool) {
	node := l.blocks[b]
	return node.next, node.hasNext
}

// Blocks returns every block in layout order.
func (l *Layout) Blocks() []Block {
	var out []Block
	for b, ok := l.FirstBlock(); ok; b, ok = l.NextBlock(b) {
		out = append(out, b)
	}
	return out
}

// FirstInsn returns the first instruction of block b.
func (l *Layout) FirstInsn(b Block) (Insn, bool) {
	node := l.blocks[b]
	return node.firstInsn, node.hasInsns
}

// LastInsn returns the last instruction of block b (its terminator, once
// the block is fully built).
func (l *Layout) LastInsn(b Block) (Insn, bool) {
	node := l.blocks[b]
	return node.lastInsn, node.hasInsns
}

// NextInsn returns the instruction following insn within its block.
func (l *Layout) NextInsn(insn Insn) (Insn, bool) {
	node := l.insns[insn]
	return node.next, node.hasNext
}

// PrevInsn returns the instruction preceding insn within its block.
func (l *Layout) PrevInsn(insn Insn) (Insn, bool) {
	node := l.insns[insn]
	return node.prev, node.hasPrev
}

// InsnBlock returns the block an attached instruction belongs to.
func (l *Layout) InsnBlock(insn Insn) (Block, bool) {
	node, ok := l.insns[insn]
	if !ok || !node.attached {
		return 0, false
	}
	return node.block, true
}

// Insns returns every instruction of block b in layout order.
func (l *Layout) Insns(b Block) []Insn {
	var out []Insn
	for i, ok := l.FirstInsn(b); ok; i, ok = l.NextInsn(i) {
		out = append(out, i)
	}
	return out
}

// AppendInsn appends insn to the tail of block b's instruction list.
// isTerminator must reflect whether insn's opcode is a terminator
// (Jump/Branch/BrTable/Return) — Layout itself stays agnostic of InsnData
// shapes, matching its "trivial" contract.
func (l *Layout) AppendInsn(b Block, insn Insn, isTerminator bool) error {
	bnode := l.blocks[b]
	if bnode.hasTerminator {
		return errors.Errorf("cannot append instruction after block %d's terminator", b)
	}
	inode := &insnNode{block: b, attached: true}
	l.insns[insn] = inode

	if !bnode.hasInsns {
		bnode.firstInsn, bnode.lastInsn = insn, insn
		bnode.hasInsns = true
	} else {
		tail := l.insns[bnode.lastInsn]
		tail.next, tail.hasNext = insn, true
		inode.prev, inode.hasPrev = bnode.lastInsn, true
		bnode.lastInsn = insn
	}
	if isTerminator {
		bnode.terminator, bnode.hasTerminator = insn, true
	}
	return nil
}

// PrependInsn inserts insn at the head of block b's instruction list —
// used to place φ-instructions before any other instruction in a block,
// regardless of how much of the block has already been built (spec.md
// §4.5: φs live at the top of the block they were inserted into).
func (l *Layout) PrependInsn(b Block, insn Insn) error {
	bnode := l.blocks[b]
	inode := &insnNode{block: b, attached: true}
	l.insns[insn] = inode

	if !bnode.hasInsns {
		bnode.firstInsn, bnode.lastInsn = insn, insn
		bnode.hasInsns = true
		return nil
	}
	head := l.insns[bnode.firstInsn]
	head.prev, head.hasPrev = insn, true
	inode.next, inode.hasNext = bnode.firstInsn, true
	bnode.firstInsn = insn
	return nil
}

// InsertInsnAfter inserts insn immediately after `after` in the same
// block. Returns an error if `after` is already the block's terminator.
func (l *Layout) InsertInsnAfter(after, insn Insn, isTerminator bool) error {
	afterNode := l.insns[after]
	b := afterNode.block
	bnode := l.blocks[b]
	if bnode.hasTerminator && bnode.terminator == after && !isTerminator {
		return errors.Errorf("cannot insert a non-terminator after block %d's terminator", b)
	}
	if bnode.hasTerminator && bnode.terminator == after {
		return errors.Errorf("cannot insert after block %d's terminator", b)
	}

	inode := &insnNode{block: b, attached: true}
	l.insns[insn] = inode

	inode.prev, inode.hasPrev = after, true
	if afterNode.hasNext {
		nextNode := l.insns[afterNode.next]
		nextNode.prev = insn
		inode.next, inode.hasNext = afterNode.next, true
	} else {
		bnode.lastInsn = insn
	}
	afterNode.next, afterNode.hasNext = insn, true

	if isTerminator {
		bnode.terminator, bnode.hasTerminator = insn, true
	}
	return nil
}

// DetachInsn removes insn from its block's instruction list. The
// instruction's arena slot is untouched (spec.md §9: the DFG never
// garbage-collects detached instructions).
func (l *Layout) DetachInsn(insn Insn) {
	inode, ok := l.insns[insn]
	if !ok || !inode.attached {
		return
	}
	bnode := l.blocks[inode.block]

	if inode.hasPrev {
		prevNode := l.insns[inode.prev]
		prevNode.next, prevNode.hasNext = inode.next, inode.hasNext
	} else {
		bnode.firstInsn, bnode.hasInsns = inode.next, inode.hasNext
	}
	if inode.hasNext {
		nextNode := l.insns[inode.next]
		nextNode.prev, nextNode.hasPrev = inode.prev, inode.hasPrev
	} else {
		if inode.hasPrev {
			bnode.lastInsn = inode.prev
		} else {
			bnode.hasInsns = false
		}
	}
	if bnode.hasTerminator && bnode.terminator == insn {
		bnode.hasTerminator = false
	}
	inode.attached = false
}
