package ir

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Value is a handle into a function's DataFlowGraph value arena.
type Value uint32

// ValueKind discriminates the four ways a Value can be defined (spec.md
// §3).
type ValueKind uint8

const (
	// ValueKindResult is the result of an Insn.
	ValueKindResult ValueKind = iota + 1
	// ValueKindArg is a function argument.
	ValueKindArg
	// ValueKindImmediate is an interned constant.
	ValueKindImmediate
	// ValueKindGlobal is a pointer-to-global-variable value.
	ValueKindGlobal
)

// ValueData is the payload behind a Value handle.
type ValueData struct {
	Kind ValueKind
	Ty   Type

	Insn Insn // ValueKindResult

	ArgIdx int // ValueKindArg

	Imm Immediate // ValueKindImmediate

	GV GlobalVariable // ValueKindGlobal
}

// Immediate is an interned scalar integer constant, up to 256 bits,
// signed or unsigned depending on how the caller reads it back
// (spec.md §3: "scalar integer (signed/unsigned widths up to 256 bits)").
// Storage is backed by github.com/holiman/uint256 so bit widths up to
// i256 round-trip exactly; see SPEC_FULL.md DOMAIN STACK.
type Immediate struct {
	Width uint16
	Bits  uint256.Int
}

// internKey renders the immediate as a stable map key: two immediates
// with the same width and the same bit pattern intern to the same Value
// (spec.md §3 "each immediate is interned exactly once per DFG").
func (im Immediate) internKey() string {
	return fmt.Sprintf("%d:%s", im.Width, im.Bits.Hex())
}

// NewImmediateFromInt64 builds an Immediate from a signed Go integer,
// truncated (two's complement) to width bits.
func NewImmediateFromInt64(v int64, width uint16) Immediate {
	var u uint256.Int
	if v < 0 {
		u.SetUint64(uint64(-v))
		u.Neg(&u)
	} else {
		u.SetUint64(uint64(v))
	}
	return Immediate{Width: width, Bits: maskTo(u, width)}
}

// NewImmediateFromUint64 builds an Immediate from an unsigned Go integer.
func NewImmediateFromUint64(v uint64, width uint16) Immediate {
	var u uint256.Int
	u.SetUint64(v)
	return Immediate{Width: width, Bits: maskTo(u, width)}
}

// NewImmediateFromUint256 builds an Immediate from an arbitrary-precision
// two's-complement bit pattern, truncated to width bits.
func NewImmediateFromUint256(v uint256.Int, width uint16) Immediate {
	return Immediate{Width: width, Bits: maskTo(v, width)}
}

func maskTo(v uint256.Int, width uint16) uint256.Int {
	if width >= 256 {
		return v
	}
	var mask uint256.Int
	mask.Lsh(uint256.NewInt(1), uint(width))
	mask.SubUint64(&mask, 1)
	var out uint256.Int
	out.And(&v, &mask)
	return out
}

// Uint64 returns the immediate's value as an unsigned 64-bit integer,
// truncating if the immediate is wider.
func (im Immediate) Uint64() uint64 {
	return im.Bits.Uint64()
}

// SignedBig returns the immediate's value interpreted as a two's
// complement signed integer of its declared width.
func (im Immediate) SignedBig() *uint256.Int {
	if im.Width == 0 || im.Width >= 256 {
		ret := im.Bits
		return &ret
	}
	signBit := uint256.NewInt(1)
	signBit.Lsh(signBit, uint(im.Width-1))
	if im.Bits.Lt(signBit) {
		ret := im.Bits
		return &ret
	}
	// Negative: value - 2^width.
	var mod uint256.Int
	mod.Lsh(uint256.NewInt(1), uint(im.Width))
	ret := im.Bits
	ret.Sub(&ret, &mod)
	return &ret
}

// String renders the immediate as "<literal>" (no type suffix; dump.go
// appends ".<ty>" per the §6/§8 text format).
func (im Immediate) String() string {
	return im.Bits.Dec()
}

// ValueDef classifies where a Value ultimately comes from, mirroring
// original_source/crates/ir/src/dfg.rs's `ValueDef`.
type ValueDef uint8

const (
	ValueDefInsn ValueDef = iota + 1
	ValueDefArg
	ValueDefImmediate
	ValueDefGlobal
)

// Def returns which of the four ValueData variants backs v.
func (d ValueData) Def() ValueDef {
	switch d.Kind {
	case ValueKindResult:
		return ValueDefInsn
	case ValueKindArg:
		return ValueDefArg
	case ValueKindImmediate:
		return ValueDefImmediate
	case ValueKindGlobal:
		return ValueDefGlobal
	default:
		panic("invalid ValueData")
	}
}
