package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// TestImmediateInterning checks that two immediates with the same width
// and bit pattern intern to the same Value (spec.md §3).
func TestImmediateInterning(t *testing.T) {
	ctx := newTestCtx(t)
	dfg := NewDataFlowGraph(ctx)

	a := dfg.MakeImmValue(NewImmediateFromInt64(42, 64))
	b := dfg.MakeImmValue(NewImmediateFromInt64(42, 64))
	c := dfg.MakeImmValue(NewImmediateFromInt64(42, 32))

	require.Equal(t, a, b, "equal width and bit pattern must intern to the same Value")
	require.NotEqual(t, a, c, "different widths must not collide despite the same numeric value")
}

// TestUserSetConsistency checks the central rewrite invariant: users(v)
// always matches the operands actually referencing v, across MakeInsn,
// ReplaceInsnArg, and ChangeToAlias (spec.md §3 "central rewrite
// invariant").
func TestUserSetConsistency(t *testing.T) {
	ctx := newTestCtx(t)
	dfg := NewDataFlowGraph(ctx)

	a := dfg.MakeImmValue(NewImmediateFromInt64(1, 64))
	c := dfg.MakeImmValue(NewImmediateFromInt64(2, 64))

	insn := dfg.MakeInsn(NewBinaryInsn(OpAdd, a, a))
	require.Equal(t, 1, dfg.UsersNum(a), "a single insn referencing a value twice is still one user")

	dfg.ReplaceInsnArg(insn, 0, c)
	require.Equal(t, 1, dfg.UsersNum(a), "a still appears as the second operand")
	require.Equal(t, 1, dfg.UsersNum(c))

	dfg.ReplaceInsnArg(insn, 1, c)
	require.Equal(t, 0, dfg.UsersNum(a), "a no longer appears anywhere in insn's operands")
	require.Equal(t, []Insn{insn}, dfg.Users(c))

	result, _ := dfg.CreateResultValue(insn)
	other := dfg.MakeInsn(NewUnaryInsn(OpNot, result))
	require.Equal(t, []Insn{other}, dfg.Users(result))

	dfg.ChangeToAlias(result, c)
	require.Empty(t, dfg.Users(result))
	require.ElementsMatch(t, []Insn{insn, other}, dfg.Users(c))
}

// TestRemoveBranchDestCollapsesToJump exercises remove_branch_dest's
// Branch→Jump collapse rule (spec.md §4.2).
func TestRemoveBranchDestCollapsesToJump(t *testing.T) {
	ctx := newTestCtx(t)
	dfg := NewDataFlowGraph(ctx)

	cond := dfg.MakeImmValue(NewImmediateFromInt64(1, 1))
	thenBlk, elseBlk := dfg.MakeBlock(), dfg.MakeBlock()
	insn := dfg.MakeInsn(NewBranchInsn(cond, thenBlk, elseBlk))

	dfg.RemoveBranchDest(insn, elseBlk)

	require.True(t, dfg.IsBranch(insn))
	info := dfg.AnalyzeBranch(insn)
	require.Equal(t, []Block{thenBlk}, info.Dests())
	require.Equal(t, 0, dfg.UsersNum(cond), "the condition is no longer read once the branch collapses to a Jump")
}

func TestStructTypeDataRoundTrip(t *testing.T) {
	ctx := newTestCtx(t)
	i32 := i32ty(ctx)
	st := ctx.Types.MakeStruct("Account", []Type{i32, i32}, false)
	dup := ctx.Types.MakeStruct("Account", []Type{i32}, true)
	require.Equal(t, st, dup, "redeclaring a struct by name returns the original handle, ignoring new fields")

	got := ctx.Types.Data(st)
	want := TypeData{Kind: TypeKindStruct, Name: "Account", Fields: []Type{i32, i32}, Packed: false}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("struct type data mismatch (-want +got):\n%s", diff)
	}
}
