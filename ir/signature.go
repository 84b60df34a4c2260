package ir

import "strings"

// Signature is a declared function's interface: its argument types, its
// optional return type, and its linkage (spec.md §4.3).
type Signature struct {
	Name    string
	Args    []Type
	Ret     Type
	HasRet  bool
	Linkage Linkage
}

// NewSignature builds a Signature for a function returning ret.
func NewSignature(name string, args []Type, ret Type, linkage Linkage) Signature {
	return Signature{Name: name, Args: append([]Type(nil), args...), Ret: ret, HasRet: true, Linkage: linkage}
}

// NewVoidSignature builds a Signature for a function with no return value.
func NewVoidSignature(name string, args []Type, linkage Linkage) Signature {
	return Signature{Name: name, Args: append([]Type(nil), args...), Linkage: linkage}
}

// ArgsNum returns the number of declared arguments.
func (s *Signature) ArgsNum() int { return len(s.Args) }

// String renders the signature, e.g. "foo(i32, i64) -> i1".
func (s *Signature) String(types *TypeStore) string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteByte('(')
	for i, a := range s.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(types.String(a))
	}
	b.WriteByte(')')
	if s.HasRet {
		b.WriteString(" -> ")
		b.WriteString(types.String(s.Ret))
	}
	return b.String()
}
