package ir

// Handles are opaque, copyable identifiers into an arena. They carry no
// payload; equality is identity. Values additionally record whether they
// live in the program's global pool or in a function's data flow graph.
type (
	// Value identifies an instruction or constant.
	Value uint32
	// BasicBlock identifies a basic block inside one function.
	BasicBlock uint32
	// Function identifies a function in a program.
	Function uint32
)

const (
	NoValue Value      = 0
	NoBB    BasicBlock = 0
	NoFunc  Function   = 0
)

// globalBit tags value handles allocated in the program's global pool.
const globalBit Value = 1 << 31

func (v Value) IsValid() bool      { return v != NoValue }
func (b BasicBlock) IsValid() bool { return b != NoBB }
func (f Function) IsValid() bool   { return f != NoFunc }

// IsGlobal reports whether the value lives in the program's global pool.
func (v Value) IsGlobal() bool { return v&globalBit != 0 }
