package ir

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FuncRef is a handle into the module-wide FuncStore.
type FuncRef uint32

// FuncStore owns every function signature declared in a module, and the
// body of every function that has been built (spec.md §4.3, grounded on
// original_source/crates/ir/src/module.rs's FuncStore). Reader-parallel,
// writer-exclusive for declaration; ParForEach fans out across functions
// with golang.org/x/sync/errgroup (SPEC_FULL.md DOMAIN STACK), mirroring
// the original's DashMap-backed par_for_each without needing a
// concurrent-map dependency — see DESIGN.md.
type FuncStore struct {
	mu     sync.RWMutex
	sigs   []Signature
	bodies map[FuncRef]*Function
	byName map[string]FuncRef
}

// NewFuncStore returns an empty FuncStore.
func NewFuncStore() *FuncStore {
	return &FuncStore{
		sigs:   []Signature{{}}, // index 0 reserved/invalid
		bodies: make(map[FuncRef]*Function),
		byName: make(map[string]FuncRef),
	}
}

// Declare registers sig, returning the existing FuncRef if a function of
// the same name was already declared — declare_function is idempotent by
// design (spec.md §9.1 Open Question decision, recorded in DESIGN.md).
func (s *FuncStore) Declare(sig Signature) FuncRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ref, ok := s.byName[sig.Name]; ok {
		return ref
	}
	ref := FuncRef(len(s.sigs))
	s.sigs = append(s.sigs, sig)
	s.byName[sig.Name] = ref
	return ref
}

// ByName looks up a previously declared function by name.
func (s *FuncStore) ByName(name string) (FuncRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref, ok := s.byName[name]
	return ref, ok
}

// Signature returns the declared signature of ref.
func (s *FuncStore) Signature(ref FuncRef) Signature {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sigs[ref]
}

// DefineBody attaches a built Function body to an already-declared
// signature.
func (s *FuncStore) DefineBody(ref FuncRef, f *Function) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[ref] = f
}

// Body returns the built Function behind ref, if one has been defined.
func (s *FuncStore) Body(ref FuncRef) (*Function, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.bodies[ref]
	return f, ok
}

// Refs returns every declared FuncRef, in declaration order.
func (s *FuncStore) Refs() []FuncRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]FuncRef, 0, len(s.sigs)-1)
	for i := 1; i < len(s.sigs); i++ {
		out = append(out, FuncRef(i))
	}
	return out
}

// ParForEach runs fn once per defined function body, in parallel, via an
// errgroup. Every fn runs to completion (no cancellation); the first
// non-nil error is returned to the caller and later ones are dropped
// (spec.md §5 "par_for_each").
func (s *FuncStore) ParForEach(fn func(FuncRef, *Function) error) error {
	refs := s.Refs()
	var g errgroup.Group
	for _, ref := range refs {
		ref := ref
		body, ok := s.Body(ref)
		if !ok {
			continue
		}
		g.Go(func() error {
			return fn(ref, body)
		})
	}
	return g.Wait()
}

// ModuleCtxOption configures a ModuleCtx (spec.md SPEC_FULL.md ambient
// stack: functional options in place of an on-disk config format, per the
// teacher's own flag/option idiom).
type ModuleCtxOption func(*ModuleCtx)

// WithLogger attaches a zap logger for debug-level SSA construction
// tracing (speculative φ insertion, trivial-φ elimination, sealing).
func WithLogger(logger *zap.Logger) ModuleCtxOption {
	return func(c *ModuleCtx) { c.Logger = logger }
}

// ModuleCtx is the process-shared handle every component of a module
// holds: the type store, the global-variable store, the function store,
// the target ISA, and the logger (spec.md §4.3, grounded on
// original_source/crates/ir/src/module.rs's ModuleCtx).
type ModuleCtx struct {
	Types   *TypeStore
	Globals *GlobalVariableStore
	Funcs   *FuncStore
	Isa     TargetIsa
	Logger  *zap.Logger
}

// NewModuleCtx builds a ModuleCtx around the given target.
func NewModuleCtx(isa TargetIsa, opts ...ModuleCtxOption) *ModuleCtx {
	ctx := &ModuleCtx{
		Types:   NewTypeStore(),
		Globals: NewGlobalVariableStore(),
		Funcs:   NewFuncStore(),
		Isa:     isa,
		Logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ctx)
	}
	return ctx
}

// SizeOf delegates to the target's TypeLayout.
func (c *ModuleCtx) SizeOf(ty Type) (int, error) {
	return c.Isa.TypeLayout().SizeOf(ty, c)
}

// AlignOf delegates to the target's TypeLayout.
func (c *ModuleCtx) AlignOf(ty Type) (int, error) {
	return c.Isa.TypeLayout().AlignOf(ty, c)
}

// FuncSigReturnType returns the declared return type of ref, if it has
// one (used by DataFlowGraph.resultType for Call instructions).
func (c *ModuleCtx) FuncSigReturnType(ref FuncRef) (Type, bool) {
	sig := c.Funcs.Signature(ref)
	if !sig.HasRet {
		return TypeInvalid, false
	}
	return sig.Ret, true
}

// FuncPointerType returns the function-pointer type for ref's signature —
// restoring original_source/crates/ir/src/module.rs's FuncRef::as_ptr_ty
// (SPEC_FULL.md supplemented feature #5).
func (c *ModuleCtx) FuncPointerType(ref FuncRef) Type {
	sig := c.Funcs.Signature(ref)
	fnTy := c.Types.MakeFunc(sig.Args, sig.Ret, sig.HasRet)
	return c.Types.MakePtr(fnTy)
}

// Module is a fully built compilation unit: a ModuleCtx plus every
// function body defined against it.
type Module struct {
	Ctx *ModuleCtx
}

// ModuleBuilder is the façade frontends use to declare module-level
// entities before building individual function bodies (spec.md §4.4,
// grounded on original_source/crates/ir/src/builder/module_builder.rs).
type ModuleBuilder struct {
	Ctx *ModuleCtx
}

// NewModuleBuilder returns a builder over a fresh ModuleCtx for the given
// target.
func NewModuleBuilder(isa TargetIsa, opts ...ModuleCtxOption) *ModuleBuilder {
	return &ModuleBuilder{Ctx: NewModuleCtx(isa, opts...)}
}

// DeclareFunction declares (or re-resolves) a function signature.
func (b *ModuleBuilder) DeclareFunction(sig Signature) FuncRef {
	return b.Ctx.Funcs.Declare(sig)
}

// DeclareGlobalVariable declares (or re-resolves) a module-level storage
// slot.
func (b *ModuleBuilder) DeclareGlobalVariable(data GlobalVariableData) GlobalVariable {
	return b.Ctx.Globals.Declare(data)
}

// DeclareStructType interns a named struct type (SPEC_FULL.md
// supplemented feature #2a).
func (b *ModuleBuilder) DeclareStructType(name string, fields []Type, packed bool) Type {
	return b.Ctx.Types.MakeStruct(name, fields, packed)
}

// DeclareArrayType interns a fixed-length array type.
func (b *ModuleBuilder) DeclareArrayType(elem Type, length int) Type {
	return b.Ctx.Types.MakeArray(elem, length)
}

// DeclareFuncType interns a function type (used for function-pointer
// values, not for declaring callable functions — see DeclareFunction).
func (b *ModuleBuilder) DeclareFuncType(args []Type, ret Type, hasRet bool) Type {
	return b.Ctx.Types.MakeFunc(args, ret, hasRet)
}

// PtrType interns a pointer-to-elem type.
func (b *ModuleBuilder) PtrType(elem Type) Type {
	return b.Ctx.Types.MakePtr(elem)
}

// Build finalizes the module. Function bodies are attached separately via
// FuncStore.DefineBody as each FunctionBuilder finishes.
func (b *ModuleBuilder) Build() *Module {
	return &Module{Ctx: b.Ctx}
}
