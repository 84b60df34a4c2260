package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestCtx(t *testing.T) *ModuleCtx {
	t.Helper()
	types := NewTypeStore()
	isa := NewEVMIsa(types)
	return &ModuleCtx{
		Types:   types,
		Globals: NewGlobalVariableStore(),
		Funcs:   NewFuncStore(),
		Isa:     isa,
	}
}

func i8ty(ctx *ModuleCtx) Type  { return ctx.Types.MakeInt(8) }
func i32ty(ctx *ModuleCtx) Type { return ctx.Types.MakeInt(32) }
func i64ty(ctx *ModuleCtx) Type { return ctx.Types.MakeInt(64) }

// entry_block: a straight-line block with two immediates, an add, a sub,
// and a void return. Expected text ported verbatim from
// original_source/crates/codegen/src/ir/builder/func_builder.rs.
func TestDumpEntryBlock(t *testing.T) {
	ctx := newTestCtx(t)
	sig := NewVoidSignature("test_func", nil, LinkageInternal)
	b := NewFunctionBuilder(ctx, sig)

	b0 := b.AppendBlock()
	b.SwitchToBlock(b0)
	v0 := b.Imm(NewImmediateFromInt64(1, 8))
	v1 := b.Imm(NewImmediateFromInt64(2, 8))
	v2 := b.Add(v0, v1)
	b.Sub(v2, v0)
	b.Ret(nil)
	b.SealAll()

	f := b.Build()
	want := "func %test_func():\n" +
		"    block0:\n" +
		"        v2.i8 = add 1.i8 2.i8;\n" +
		"        v3.i8 = sub v2 1.i8;\n" +
		"        return;\n" +
		"\n"
	require.Equal(t, want, Dump(f, ctx.Types))
}

func TestDumpEntryBlockWithArgs(t *testing.T) {
	ctx := newTestCtx(t)
	sig := NewVoidSignature("test_func", []Type{i32ty(ctx), i64ty(ctx)}, LinkageInternal)
	b := NewFunctionBuilder(ctx, sig)

	entry := b.AppendBlock()
	b.SwitchToBlock(entry)
	args := b.Args()
	v2 := b.Sext(args[0], i64ty(ctx))
	b.Mul(v2, args[1])
	b.Ret(nil)
	b.SealAll()

	f := b.Build()
	want := "func %test_func(v0.i32, v1.i64):\n" +
		"    block0:\n" +
		"        v2.i64 = sext v0;\n" +
		"        v3.i64 = mul v2 v1;\n" +
		"        return;\n" +
		"\n"
	require.Equal(t, want, Dump(f, ctx.Types))
}

func TestDumpEntryBlockWithReturn(t *testing.T) {
	ctx := newTestCtx(t)
	sig := NewSignature("test_func", nil, i32ty(ctx), LinkageInternal)
	b := NewFunctionBuilder(ctx, sig)

	entry := b.AppendBlock()
	b.SwitchToBlock(entry)
	v0 := b.Imm(NewImmediateFromInt64(1, 32))
	b.Ret(&v0)
	b.SealAll()

	f := b.Build()
	want := "func %test_func() -> i32:\n" +
		"    block0:\n" +
		"        return 1.i32;\n" +
		"\n"
	require.Equal(t, want, Dump(f, ctx.Types))
}

func TestDumpThenElseMergeBlock(t *testing.T) {
	ctx := newTestCtx(t)
	sig := NewVoidSignature("test_func", []Type{i64ty(ctx)}, LinkageInternal)
	b := NewFunctionBuilder(ctx, sig)

	entry := b.AppendBlock()
	thenBlk := b.AppendBlock()
	elseBlk := b.AppendBlock()
	merge := b.AppendBlock()

	arg0 := b.Args()[0]

	b.SwitchToBlock(entry)
	b.Br(arg0, thenBlk, elseBlk)

	b.SwitchToBlock(thenBlk)
	v1 := b.Imm(NewImmediateFromInt64(1, 64))
	b.Jump(merge)

	b.SwitchToBlock(elseBlk)
	v2 := b.Imm(NewImmediateFromInt64(2, 64))
	b.Jump(merge)

	b.SwitchToBlock(merge)
	v3 := b.Phi(i64ty(ctx), []struct {
		Value Value
		Block Block
	}{{v1, thenBlk}, {v2, elseBlk}})
	b.Add(v3, arg0)
	b.Ret(nil)
	b.SealAll()

	f := b.Build()
	want := "func %test_func(v0.i64):\n" +
		"    block0:\n" +
		"        br v0 block1 block2;\n" +
		"\n" +
		"    block1:\n" +
		"        jump block3;\n" +
		"\n" +
		"    block2:\n" +
		"        jump block3;\n" +
		"\n" +
		"    block3:\n" +
		"        v3.i64 = phi (1.i64 block1) (2.i64 block2);\n" +
		"        v4.i64 = add v3 v0;\n" +
		"        return;\n" +
		"\n"
	require.Equal(t, want, Dump(f, ctx.Types))
}
