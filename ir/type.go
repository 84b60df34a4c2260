package ir

import (
	"fmt"
	"strings"
	"sync"
)

// Type is a handle into the module-wide TypeStore. Identity is numeric
// equality: two Types are the same structural type iff they compare equal.
type Type uint32

// TypeInvalid is returned where no type is applicable (e.g. a void
// function's absent return type).
const TypeInvalid Type = 0

// TypeKind discriminates the shape of a TypeData.
type TypeKind uint8

const (
	// TypeKindInt is a plain integer of some bit width (1 to 256).
	TypeKindInt TypeKind = iota + 1
	// TypeKindPointer is a pointer to another Type.
	TypeKindPointer
	// TypeKindArray is a fixed-length array of another Type.
	TypeKindArray
	// TypeKindStruct is a named aggregate, unique by name.
	TypeKindStruct
	// TypeKindFunc is a function type (used for function-pointer values).
	TypeKindFunc
)

// TypeData is the structural payload behind a Type handle.
type TypeData struct {
	Kind TypeKind

	// Int
	Width uint16

	// Pointer / Array
	Elem Type
	Len  int

	// Struct
	Name   string
	Fields []Type
	Packed bool

	// Func
	Args   []Type
	Ret    Type
	HasRet bool
}

func (d *TypeData) key() string {
	var b strings.Builder
	switch d.Kind {
	case TypeKindInt:
		fmt.Fprintf(&b, "i%d", d.Width)
	case TypeKindPointer:
		fmt.Fprintf(&b, "ptr(%d)", d.Elem)
	case TypeKindArray:
		fmt.Fprintf(&b, "arr(%d,%d)", d.Elem, d.Len)
	case TypeKindStruct:
		fmt.Fprintf(&b, "struct#%s", d.Name)
	case TypeKindFunc:
		fmt.Fprintf(&b, "func(")
		for i, a := range d.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%d", a)
		}
		b.WriteByte(')')
		if d.HasRet {
			fmt.Fprintf(&b, "->%d", d.Ret)
		}
	}
	return b.String()
}

// TypeStore interns structural types by value. Reader-parallel,
// writer-exclusive: see spec.md §5.
type TypeStore struct {
	mu            sync.RWMutex
	types         []TypeData
	intern        map[string]Type
	structsByName map[string]Type
}

// NewTypeStore returns an empty TypeStore.
func NewTypeStore() *TypeStore {
	return &TypeStore{
		// index 0 is reserved for TypeInvalid.
		types:         []TypeData{{}},
		intern:        make(map[string]Type),
		structsByName: make(map[string]Type),
	}
}

func (s *TypeStore) internLocked(d TypeData) Type {
	key := d.key()
	if t, ok := s.intern[key]; ok {
		return t
	}
	t := Type(len(s.types))
	s.types = append(s.types, d)
	s.intern[key] = t
	return t
}

// MakeInt interns an integer type of the given bit width.
func (s *TypeStore) MakeInt(width uint16) Type {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.internLocked(TypeData{Kind: TypeKindInt, Width: width})
}

// MakePtr interns a pointer-to-elem type.
func (s *TypeStore) MakePtr(elem Type) Type {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.internLocked(TypeData{Kind: TypeKindPointer, Elem: elem})
}

// MakeArray interns a fixed-length array type.
func (s *TypeStore) MakeArray(elem Type, length int) Type {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.internLocked(TypeData{Kind: TypeKindArray, Elem: elem, Len: length})
}

// MakeStruct interns a named struct type. A second call with the same
// name returns the existing handle, ignoring the new fields/packed
// argument (spec.md §4.1).
func (s *TypeStore) MakeStruct(name string, fields []Type, packed bool) Type {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.structsByName[name]; ok {
		return t
	}
	fieldsCopy := append([]Type(nil), fields...)
	t := s.internLocked(TypeData{Kind: TypeKindStruct, Name: name, Fields: fieldsCopy, Packed: packed})
	s.structsByName[name] = t
	return t
}

// MakeFunc interns a function type.
func (s *TypeStore) MakeFunc(args []Type, ret Type, hasRet bool) Type {
	s.mu.Lock()
	defer s.mu.Unlock()
	argsCopy := append([]Type(nil), args...)
	return s.internLocked(TypeData{Kind: TypeKindFunc, Args: argsCopy, Ret: ret, HasRet: hasRet})
}

// StructByName looks up a previously declared struct type by name.
func (s *TypeStore) StructByName(name string) (Type, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.structsByName[name]
	return t, ok
}

// Data returns the structural payload for t.
func (s *TypeStore) Data(t Type) TypeData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.types[t]
}

// IsInt reports whether t is an integer type, and if so its width.
func (s *TypeStore) IsInt(t Type) (uint16, bool) {
	d := s.Data(t)
	if d.Kind != TypeKindInt {
		return 0, false
	}
	return d.Width, true
}

// String renders a Type for debugging/dumping purposes.
func (s *TypeStore) String(t Type) string {
	d := s.Data(t)
	switch d.Kind {
	case TypeKindInt:
		return fmt.Sprintf("i%d", d.Width)
	case TypeKindPointer:
		return fmt.Sprintf("*%s", s.String(d.Elem))
	case TypeKindArray:
		return fmt.Sprintf("[%s;%d]", s.String(d.Elem), d.Len)
	case TypeKindStruct:
		return d.Name
	case TypeKindFunc:
		var b strings.Builder
		b.WriteString("fn(")
		for i, a := range d.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(s.String(a))
		}
		b.WriteByte(')')
		if d.HasRet {
			b.WriteString(" -> ")
			b.WriteString(s.String(d.Ret))
		}
		return b.String()
	default:
		return "<invalid>"
	}
}
