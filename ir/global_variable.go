package ir

import "sync"

// GlobalVariable is a handle into the module-wide GlobalVariableStore.
type GlobalVariable uint32

// GlobalVariableData is the declared shape of a module-level storage slot
// (spec.md §4.3, grounded on original_source/crates/ir/src/module.rs's
// GlobalVariableData).
type GlobalVariableData struct {
	Name    string
	Ty      Type
	Linkage Linkage
	// IsConst marks a slot whose initializer never changes; ValueImm
	// resolves a Global value of it to its scalar initializer.
	IsConst bool
	// ConstInit is the scalar initializer, present only when IsConst and
	// the initializer is itself a scalar (not an aggregate).
	ConstInit   Immediate
	HasConstInit bool
}

// GlobalVariableStore owns every global variable declared in a module.
// Reader-parallel, writer-exclusive (spec.md §5).
type GlobalVariableStore struct {
	mu   sync.RWMutex
	data []GlobalVariableData
	byName map[string]GlobalVariable
}

// NewGlobalVariableStore returns an empty store.
func NewGlobalVariableStore() *GlobalVariableStore {
	return &GlobalVariableStore{
		data:   []GlobalVariableData{{}}, // index 0 reserved/invalid
		byName: make(map[string]GlobalVariable),
	}
}

// Declare registers a new global variable, or returns the existing handle
// if one with the same name was already declared (idempotent, matching
// declare_function's duplicate-name behavior — spec.md §9.1).
func (s *GlobalVariableStore) Declare(data GlobalVariableData) GlobalVariable {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gv, ok := s.byName[data.Name]; ok {
		return gv
	}
	gv := GlobalVariable(len(s.data))
	s.data = append(s.data, data)
	s.byName[data.Name] = gv
	return gv
}

// ByName looks up a previously declared global variable by name.
func (s *GlobalVariableStore) ByName(name string) (GlobalVariable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gv, ok := s.byName[name]
	return gv, ok
}

// Data returns the declared data behind gv.
func (s *GlobalVariableStore) Data(gv GlobalVariable) GlobalVariableData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[gv]
}

// Type returns the declared type of gv's storage slot (not a pointer to
// it — DataFlowGraph.MakeGlobalValue wraps it in Types.MakePtr itself).
func (s *GlobalVariableStore) Type(gv GlobalVariable) Type {
	return s.Data(gv).Ty
}

// ConstImm returns gv's scalar constant initializer, if it has one
// (restoring original_source/crates/ir/src/dfg.rs's value_imm behavior
// for global values — spec.md SPEC_FULL.md supplemented feature #1).
func (s *GlobalVariableStore) ConstImm(gv GlobalVariable) (Immediate, bool) {
	d := s.Data(gv)
	if !d.IsConst || !d.HasConstInit {
		return Immediate{}, false
	}
	return d.ConstInit, true
}
