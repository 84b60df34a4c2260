package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestTrivialPhiEliminationViaUseVar mirrors Braun et al.'s canonical
// example: a variable assigned the same value on both sides of an if/else
// must resolve to that single value at the merge block, with no φ left
// behind once seal_all runs (spec.md §8 "no trivial φ after seal_all()").
func TestTrivialPhiEliminationViaUseVar(t *testing.T) {
	ctx := newTestCtx(t)
	sig := NewSignature("trivial_phi", []Type{i64ty(ctx)}, i64ty(ctx), LinkageInternal)
	b := NewFunctionBuilder(ctx, sig)

	entry := b.AppendBlock()
	thenBlk := b.AppendBlock()
	elseBlk := b.AppendBlock()
	merge := b.AppendBlock()

	x := b.DeclareVar(i64ty(ctx))

	b.SwitchToBlock(entry)
	arg0 := b.Args()[0]
	b.Br(arg0, thenBlk, elseBlk)

	b.SwitchToBlock(thenBlk)
	b.DefVar(x, arg0)
	b.Jump(merge)

	b.SwitchToBlock(elseBlk)
	b.DefVar(x, arg0)
	b.Jump(merge)

	b.SwitchToBlock(merge)
	b.SealBlock(thenBlk)
	b.SealBlock(elseBlk)
	b.SealBlock(entry)
	b.SealBlock(merge)
	got := b.UseVar(x)
	b.Ret(&got)

	f := b.Build()

	require.Equal(t, arg0, got, "the merged variable should resolve directly to arg0, no φ surviving")
	require.Empty(t, f.Ssa.incompletePhis)
}

// TestLoopWithBackEdge builds a single-block loop (header jumps to itself
// conditionally) whose induction variable is read before the header is
// sealed, so read_variable inserts an incomplete φ that is completed when
// the header is sealed, and whose φ survives sealing because the initial
// and incremented values differ.
func TestLoopWithBackEdge(t *testing.T) {
	ctx := newTestCtx(t)
	sig := NewVoidSignature("count_loop", nil, LinkageInternal)
	b := NewFunctionBuilder(ctx, sig)

	entry := b.AppendBlock()
	header := b.AppendBlock()
	exit := b.AppendBlock()

	i := b.DeclareVar(i64ty(ctx))

	b.SwitchToBlock(entry)
	zero := b.Imm(NewImmediateFromInt64(0, 64))
	b.DefVar(i, zero)
	b.Jump(header)
	b.SealBlock(entry)

	b.SwitchToBlock(header)
	// header has two predecessors: entry and header's own back edge.
	cur := b.UseVar(i)
	one := b.Imm(NewImmediateFromInt64(1, 64))
	next := b.Add(cur, one)
	b.DefVar(i, next)
	ten := b.Imm(NewImmediateFromInt64(10, 64))
	cond := b.Lt(next, ten)
	b.Br(cond, header, exit)
	b.SealBlock(header)

	b.SwitchToBlock(exit)
	b.Ret(nil)
	b.SealBlock(exit)

	f := b.Build()

	require.NotEqual(t, cur, next, "the value read at the header must differ from the incremented value")
	headerInsns := f.Layout.Insns(header)
	require.NotEmpty(t, headerInsns)
	require.True(t, f.DFG.IsPhi(headerInsns[0]), "the φ for the induction variable must sit at the top of the header block")
}
