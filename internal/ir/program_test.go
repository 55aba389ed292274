package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crest/internal/ir"
	"crest/internal/types"
)

func TestProgram_FuncNames(t *testing.T) {
	p := ir.NewProgram()
	i32 := p.Types().Builtins().Int32

	f, err := p.NewFunc("@main", nil, i32)
	require.NoError(t, err)
	assert.Equal(t, "@main", p.MustFuncData(f).Name())

	_, err = p.NewFunc("@main", nil, i32)
	assert.ErrorIs(t, err, ir.ErrNameTaken)

	_, err = p.NewFunc("main", nil, i32)
	assert.ErrorIs(t, err, ir.ErrBadName)

	got, ok := p.FuncByName("@main")
	require.True(t, ok)
	assert.Equal(t, f, got)

	require.NoError(t, p.SetFuncName(f, "@entry"))
	_, ok = p.FuncByName("@main")
	assert.False(t, ok)
	_, ok = p.FuncByName("@entry")
	assert.True(t, ok)

	// The released name is free again.
	_, err = p.NewFunc("@main", nil, i32)
	require.NoError(t, err)
}

func TestProgram_RemoveFunc(t *testing.T) {
	p := ir.NewProgram()
	i32 := p.Types().Builtins().Int32

	callee, err := p.NewDecl("@getint", nil, i32)
	require.NoError(t, err)
	caller, err := p.NewFunc("@main", nil, i32)
	require.NoError(t, err)

	call, err := p.MustFuncData(caller).DFG().NewValue().Call(callee, nil)
	require.NoError(t, err)

	err = p.RemoveFunc(callee)
	assert.ErrorIs(t, err, ir.ErrInUse)

	require.NoError(t, p.MustFuncData(caller).DFG().RemoveValue(call))
	require.NoError(t, p.RemoveFunc(callee))
	_, ok := p.FuncData(callee)
	assert.False(t, ok)
	assert.Equal(t, []ir.Function{caller}, p.Funcs())
}

func TestProgram_RemoveFuncSelfRecursion(t *testing.T) {
	p := ir.NewProgram()
	i32 := p.Types().Builtins().Int32

	f, err := p.NewFunc("@loop", nil, i32)
	require.NoError(t, err)
	_, err = p.MustFuncData(f).DFG().NewValue().Call(f, nil)
	require.NoError(t, err)

	// A function calling itself does not keep itself alive.
	require.NoError(t, p.RemoveFunc(f))
}

func TestProgram_Globals(t *testing.T) {
	p := ir.NewProgram()
	i32 := p.Types().Builtins().Int32

	init, err := p.NewValue().Integer(7)
	require.NoError(t, err)
	cell, err := p.NewValue().GlobalAlloc(init)
	require.NoError(t, err)
	require.NoError(t, p.SetValueName(cell, "@x"))

	assert.Equal(t, []ir.Value{init, cell}, p.Globals())
	assert.True(t, cell.IsGlobal())
	assert.Equal(t, "@x", p.MustValueData(cell).Name)

	// The initializer is referenced by the allocation.
	err = p.RemoveValue(init)
	assert.ErrorIs(t, err, ir.ErrInUse)

	require.NoError(t, p.RemoveValue(cell))
	require.NoError(t, p.RemoveValue(init))
	assert.Empty(t, p.Globals())

	// Dedicated pointee type survives through the pointer type.
	_, err = p.NewValue().ZeroInit(p.Types().Array(i32, 8))
	require.NoError(t, err)
}

func TestProgram_GlobalUsedByFunction(t *testing.T) {
	p := ir.NewProgram()
	i32 := p.Types().Builtins().Int32

	gz, err := p.NewValue().ZeroInit(i32)
	require.NoError(t, err)
	cell, err := p.NewValue().GlobalAlloc(gz)
	require.NoError(t, err)

	f, err := p.NewFunc("@main", nil, i32)
	require.NoError(t, err)
	dfg := p.MustFuncData(f).DFG()
	ld, err := dfg.NewValue().Load(cell)
	require.NoError(t, err)

	err = p.RemoveValue(cell)
	assert.ErrorIs(t, err, ir.ErrInUse)

	require.NoError(t, dfg.RemoveValue(ld))
	require.NoError(t, p.RemoveValue(cell))
}

func TestProgram_RemoveFuncReleasesGlobals(t *testing.T) {
	p := ir.NewProgram()
	i32 := p.Types().Builtins().Int32

	gz, err := p.NewValue().ZeroInit(i32)
	require.NoError(t, err)
	cell, err := p.NewValue().GlobalAlloc(gz)
	require.NoError(t, err)

	f, err := p.NewFunc("@main", nil, i32)
	require.NoError(t, err)
	dfg := p.MustFuncData(f).DFG()
	_, err = dfg.NewValue().Load(cell)
	require.NoError(t, err)

	// Erasing the whole function drops its uses of the global.
	require.NoError(t, p.RemoveFunc(f))
	assert.Empty(t, p.MustValueData(cell).UsedBy)
	require.NoError(t, p.RemoveValue(cell))
	require.NoError(t, p.RemoveValue(gz))
}

func TestProgram_BorrowConflicts(t *testing.T) {
	p := ir.NewProgram()

	release := p.BorrowGlobalsMut()
	assert.Panics(t, func() { p.Globals() }, "shared borrow while writer holds the pool")
	release()

	r1 := p.BorrowGlobals()
	r2 := p.BorrowGlobals()
	assert.Panics(t, func() { p.BorrowGlobalsMut() }, "exclusive borrow while readers hold the pool")
	r1()
	r2()

	// All released: both modes work again.
	p.BorrowGlobalsMut()()
	p.BorrowGlobals()()
}

func TestProgram_DeclShape(t *testing.T) {
	p := ir.NewProgram()
	bt := p.Types().Builtins()

	d, err := p.NewDecl("@putch", []types.TypeID{bt.Int32}, bt.Unit)
	require.NoError(t, err)

	fd := p.MustFuncData(d)
	assert.True(t, fd.IsDecl())
	assert.Empty(t, fd.Params(), "declarations carry types only, no param values")
	assert.Equal(t, []types.TypeID{bt.Int32}, fd.ParamTypes())
	assert.Equal(t, bt.Unit, fd.RetType())
	assert.Equal(t, "(i32)", p.Types().Format(fd.Type()))
}
