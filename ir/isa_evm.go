package ir

import "math/bits"

// EVMIsa is a concrete TargetIsa for a storage/memory, balance/gas
// contract-execution target (spec.md glossary: "Storage vs. memory").
// It is the one TargetIsa this library ships so the package is usable out
// of the box and so the §8 scenario tests exercise a real target rather
// than a bespoke stub.
type EVMIsa struct {
	triple string
	layout *evmTypeLayout
	instSet *evmInstSet
}

// NewEVMIsa returns the default EVM-flavored target: 32-bit memory
// pointers, 160-bit addresses, 256-bit balances, 64-bit gas, little-endian
// (the IR's own in-memory byte order, not the big-endian wire format of
// real EVM words — this target is a compilation back end, not a bytecode
// re-encoder).
func NewEVMIsa(types *TypeStore) *EVMIsa {
	isa := &EVMIsa{triple: "evm-sonatina-contract"}
	isa.layout = &evmTypeLayout{
		types:       types,
		pointerType: types.MakeInt(32),
		addressType: types.MakeInt(160),
		balanceType: types.MakeInt(256),
		gasType:     types.MakeInt(64),
	}
	isa.instSet = &evmInstSet{}
	return isa
}

func (isa *EVMIsa) Triple() string        { return isa.triple }
func (isa *EVMIsa) InstSet() InstSetBase  { return isa.instSet }
func (isa *EVMIsa) TypeLayout() TypeLayout { return isa.layout }

type evmInstSet struct{}

func (evmInstSet) Name() string { return "evm" }

// DeniedOpcodes: this target supports every opcode the core defines.
func (evmInstSet) DeniedOpcodes() []Opcode { return nil }

type evmTypeLayout struct {
	types       *TypeStore
	pointerType Type
	addressType Type
	balanceType Type
	gasType     Type
}

func (l *evmTypeLayout) Endian() Endian   { return LittleEndian }
func (l *evmTypeLayout) PointerType() Type { return l.pointerType }
func (l *evmTypeLayout) AddressType() Type { return l.addressType }
func (l *evmTypeLayout) BalanceType() Type { return l.balanceType }
func (l *evmTypeLayout) GasType() Type     { return l.gasType }

// SizeOf returns the size, in bytes, of ty. Struct layout respects
// `packed` (alignment 1, contiguous) vs. natural alignment (each field
// padded to its own alignment, whole struct padded to its alignment) per
// spec.md §4.1.
func (l *evmTypeLayout) SizeOf(ty Type, ctx *ModuleCtx) (int, error) {
	return l.layout(ty, ctx, nil, false)
}

// AlignOf returns the alignment, in bytes, of ty.
func (l *evmTypeLayout) AlignOf(ty Type, ctx *ModuleCtx) (int, error) {
	return l.layout(ty, ctx, nil, true)
}

func (l *evmTypeLayout) layout(ty Type, ctx *ModuleCtx, visiting []Type, wantAlign bool) (int, error) {
	for _, v := range visiting {
		if v == ty {
			return 0, newTypeLayoutError(RecursiveType, ty)
		}
	}
	visiting = append(visiting, ty)

	d := l.types.Data(ty)
	switch d.Kind {
	case TypeKindInt:
		size := (int(d.Width) + 7) / 8
		if wantAlign {
			return alignForSize(size), nil
		}
		return size, nil
	case TypeKindPointer:
		size, _ := l.SizeOf(l.pointerType, ctx)
		return size, nil
	case TypeKindArray:
		elemSize, err := l.SizeOf(d.Elem, ctx)
		if err != nil {
			return 0, err
		}
		if wantAlign {
			return l.AlignOf(d.Elem, ctx)
		}
		return elemSize * d.Len, nil
	case TypeKindStruct:
		return l.structLayout(d, ctx, visiting, wantAlign)
	case TypeKindFunc:
		return 0, newTypeLayoutError(Unsized, ty)
	default:
		return 0, newTypeLayoutError(Unsized, ty)
	}
}

func (l *evmTypeLayout) structLayout(d TypeData, ctx *ModuleCtx, visiting []Type, wantAlign bool) (int, error) {
	if d.Packed {
		if wantAlign {
			return 1, nil
		}
		total := 0
		for _, f := range d.Fields {
			size, err := l.layout(f, ctx, visiting, false)
			if err != nil {
				return 0, err
			}
			total += size
		}
		return total, nil
	}

	offset := 0
	struAlign := 1
	for _, f := range d.Fields {
		fSize, err := l.layout(f, ctx, visiting, false)
		if err != nil {
			return 0, err
		}
		fAlign, err := l.layout(f, ctx, visiting, true)
		if err != nil {
			return 0, err
		}
		if fAlign > struAlign {
			struAlign = fAlign
		}
		offset = roundUp(offset, fAlign) + fSize
	}
	size := roundUp(offset, struAlign)
	if wantAlign {
		return struAlign, nil
	}
	return size, nil
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}

// alignForSize picks a natural alignment for a scalar of the given byte
// size: the next power of two up to 32 (a 256-bit word).
func alignForSize(size int) int {
	if size <= 1 {
		return 1
	}
	n := bits.Len(uint(size - 1))
	align := 1 << n
	if align > 32 {
		align = 32
	}
	return align
}
