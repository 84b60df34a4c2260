package ir

import (
	"fmt"

	"github.com/pkg/errors"
)

// Endian is the byte order of the target.
type Endian uint8

const (
	LittleEndian Endian = iota
	BigEndian
)

// TypeLayoutErrorKind discriminates why size_of/align_of could not be
// computed (spec.md §4.1).
type TypeLayoutErrorKind uint8

const (
	// Unsized means the type has no well-defined size on this target
	// (e.g. a function type used as a value).
	Unsized TypeLayoutErrorKind = iota + 1
	// RecursiveType means the type's layout computation recursed back
	// into itself (a struct field cycle).
	RecursiveType
)

// TypeLayoutError is returned by TypeLayout.SizeOf/AlignOf.
type TypeLayoutError struct {
	Kind TypeLayoutErrorKind
	Type Type
}

func (e *TypeLayoutError) Error() string {
	switch e.Kind {
	case Unsized:
		return fmt.Sprintf("type %d has no defined size on this target", e.Type)
	case RecursiveType:
		return fmt.Sprintf("type %d layout is recursive", e.Type)
	default:
		return "type layout error"
	}
}

func newTypeLayoutError(kind TypeLayoutErrorKind, ty Type) error {
	return errors.WithStack(&TypeLayoutError{Kind: kind, Type: ty})
}

// TypeLayout answers size/alignment/endianness/target-width queries. It is
// an external collaborator per spec.md §6 — the core never hardcodes a
// target.
type TypeLayout interface {
	SizeOf(ty Type, ctx *ModuleCtx) (int, error)
	AlignOf(ty Type, ctx *ModuleCtx) (int, error)
	Endian() Endian

	// PointerType is the integer width used to represent a pointer value.
	PointerType() Type
	// AddressType is the integer width used for contract-address values.
	AddressType() Type
	// BalanceType is the integer width used for native-token balances.
	BalanceType() Type
	// GasType is the integer width used for gas/fuel accounting.
	GasType() Type
}

// InstSetBase describes the instruction set a frontend may target.
// spec.md §9 "instruction set extensibility": the fixed InsnData variant
// list in ir/insn.go is the minimum every InstSetBase must support; a
// target is free to reject instructions it cannot lower (DeniedOpcodes)
// without the DFG core changing.
type InstSetBase interface {
	Name() string
	// DeniedOpcodes lists opcodes this target does not support, so a
	// verifier collaborator can reject a function before codegen.
	DeniedOpcodes() []Opcode
}

// TargetIsa bundles everything target-specific the core delegates to
// (spec.md §6, §9 "polymorphic over target").
type TargetIsa interface {
	Triple() string
	InstSet() InstSetBase
	TypeLayout() TypeLayout
}
