package ir

import "crest/internal/types"

// Param describes one function parameter at creation time. Name is
// optional and carries a sigil when present.
type Param struct {
	Name string
	Type types.TypeID
}

// FunctionData is one function's body: its signature plus an owned DFG
// and Layout. A function with an empty layout is a declaration.
type FunctionData struct {
	name       string
	ty         types.TypeID // fn type
	ret        types.TypeID
	params     []Value // FuncArgRef values; nil for declarations
	paramTypes []types.TypeID

	dfg    *DataFlowGraph
	layout *Layout
}

// Name returns the function's symbol name, sigil included.
func (f *FunctionData) Name() string { return f.name }

// Type returns the function's fn TypeID.
func (f *FunctionData) Type() types.TypeID { return f.ty }

// RetType returns the function's return TypeID.
func (f *FunctionData) RetType() types.TypeID { return f.ret }

// Params returns the FuncArgRef values of a definition, in order.
// Declarations have type-only parameters and return nil.
func (f *FunctionData) Params() []Value { return f.params }

// ParamTypes returns the parameter types in order.
func (f *FunctionData) ParamTypes() []types.TypeID { return f.paramTypes }

// DFG returns the function's data flow graph.
func (f *FunctionData) DFG() *DataFlowGraph { return f.dfg }

// Layout returns the function's layout.
func (f *FunctionData) Layout() *Layout { return f.layout }

// IsDecl reports whether the function is a declaration (no entry block).
func (f *FunctionData) IsDecl() bool {
	_, ok := f.layout.EntryBB()
	return !ok
}
