package ir

// BasicBlockData is the payload of one basic block: its declared
// parameters and the set of branch/jump instructions targeting it.
// Instruction order lives in the function's Layout, not here.
type BasicBlockData struct {
	// Name is the display name including its sigil, empty for unnamed
	// blocks.
	Name string
	// Params are the block's declared parameters, each a BlockArgRef
	// value a predecessor must supply an argument for.
	Params []Value
	// UsedBy is the set of branch/jump values targeting this block.
	UsedBy map[Value]struct{}
}
