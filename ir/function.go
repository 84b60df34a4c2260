package ir

// Function bundles everything needed to build and hold one function's
// body: its DataFlowGraph, its Layout, the SSA construction state, and
// its argument Values (spec.md §4.4, grounded on
// original_source/crates/codegen/src/ir/builder/func_builder.rs's Func).
type Function struct {
	Sig    Signature
	DFG    *DataFlowGraph
	Layout *Layout
	Ssa    *SsaBuilder

	args []Value
}

// NewFunction allocates an empty function body for sig, with one Value
// per declared argument already pushed into the DFG's value arena.
func NewFunction(ctx *ModuleCtx, sig Signature) *Function {
	dfg := NewDataFlowGraph(ctx)
	f := &Function{
		Sig:    sig,
		DFG:    dfg,
		Layout: NewLayout(),
		Ssa:    NewSsaBuilder(ctx.Logger),
	}
	f.args = make([]Value, len(sig.Args))
	for i, ty := range sig.Args {
		f.args[i] = dfg.pushArgValue(dfg.makeArgValue(ty, i))
	}
	return f
}

// Args returns the function's argument Values, in declaration order.
func (f *Function) Args() []Value {
	return f.args
}

// MakeBlock allocates a fresh, unattached block and registers it with the
// function's layout.
func (f *Function) MakeBlock() Block {
	b := f.DFG.MakeBlock()
	f.Layout.MakeBlock(b)
	return b
}
