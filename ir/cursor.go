package ir

// CursorLocationKind discriminates where a FunctionBuilder is currently
// inserting instructions (spec.md §4.4).
type CursorLocationKind uint8

const (
	// CursorNowhere means no block has been selected yet.
	CursorNowhere CursorLocationKind = iota
	// CursorAtBlockBottom appends new instructions after the last
	// instruction currently in the block (the common case while
	// building a block left to right).
	CursorAtBlockBottom
)

// CursorLocation is a FunctionBuilder's current insertion point.
type CursorLocation struct {
	Kind  CursorLocationKind
	Block Block
}
