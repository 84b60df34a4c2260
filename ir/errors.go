package ir

import "github.com/pkg/errors"

// ContractError is the class of error a miscompiled or malformed function
// body can trigger — a broken invariant the builder or an optimization
// pass failed to uphold (spec.md §7 "three classes of error": contract
// violations panic with a stack trace attached via pkg/errors, since they
// indicate a bug in the compiler itself rather than bad input).
type ContractError struct {
	Msg string
}

func (e *ContractError) Error() string { return e.Msg }

// panicContract panics with a ContractError wrapped in a stack trace, for
// violations of an internal invariant (spec.md §7, first error class).
// Ordinary user-facing errors (e.g. TypeLayoutError) are returned, not
// panicked — see isa.go.
func panicContract(msg string) {
	panic(errors.WithStack(&ContractError{Msg: msg}))
}
