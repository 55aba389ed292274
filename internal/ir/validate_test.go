package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crest/internal/ir"
)

func TestValidate_CleanProgram(t *testing.T) {
	p := buildSumProgram(t)
	assert.NoError(t, ir.Validate(p))
	assert.NoError(t, ir.Validate(nil))
}

func TestValidate_UnterminatedBlock(t *testing.T) {
	p, fd := newTestFunc(t, "@main")
	dfg, lay := fd.DFG(), fd.Layout()

	bb, err := dfg.NewBB().BasicBlock("%entry")
	require.NoError(t, err)
	require.NoError(t, lay.PushBBBack(bb))

	err = ir.Validate(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated")

	// Ending with a non-terminator is just as broken.
	v, err := dfg.NewValue().Integer(1)
	require.NoError(t, err)
	require.NoError(t, lay.PushInstBack(bb, v))
	err = ir.Validate(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated")
}

func TestValidate_TerminatorNotLast(t *testing.T) {
	p, fd := newTestFunc(t, "@main")
	dfg, lay := fd.DFG(), fd.Layout()

	bb, err := dfg.NewBB().BasicBlock("%entry")
	require.NoError(t, err)
	require.NoError(t, lay.PushBBBack(bb))

	one, err := dfg.NewValue().Integer(1)
	require.NoError(t, err)
	ret, err := dfg.NewValue().Ret(one)
	require.NoError(t, err)
	ret2, err := dfg.NewValue().Ret(one)
	require.NoError(t, err)

	// The layout itself does not police terminator position.
	require.NoError(t, lay.PushInstBack(bb, ret))
	require.NoError(t, lay.PushInstBack(bb, ret2))

	err = ir.Validate(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not the last instruction")
}

func TestValidate_UnplacedTarget(t *testing.T) {
	p, fd := newTestFunc(t, "@main")
	dfg, lay := fd.DFG(), fd.Layout()

	entry, err := dfg.NewBB().BasicBlock("%entry")
	require.NoError(t, err)
	require.NoError(t, lay.PushBBBack(entry))

	// The target block exists in the DFG but never entered the layout.
	orphan, err := dfg.NewBB().BasicBlock("%orphan")
	require.NoError(t, err)
	jmp, err := dfg.NewValue().Jump(orphan)
	require.NoError(t, err)
	require.NoError(t, lay.PushInstBack(entry, jmp))

	err = ir.Validate(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not placed")
}

func TestValidate_DeclIsAlwaysClean(t *testing.T) {
	p := ir.NewProgram()
	_, err := p.NewDecl("@getint", nil, p.Types().Builtins().Int32)
	require.NoError(t, err)
	assert.NoError(t, ir.Validate(p))
}
