package ir

import "fmt"

// Variable is a frontend-level, pre-SSA variable: a handle the SSA
// builder resolves to the right Value at each use site (spec.md §3).
// Scoped to a single function build.
type Variable uint32

func (v Variable) String() string {
	return fmt.Sprintf("var%d", v)
}
