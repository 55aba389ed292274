package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crest/internal/ir"
	"crest/internal/keylist"
)

func TestLayout_BlockOrder(t *testing.T) {
	_, fd := newTestFunc(t, "@main")
	dfg, lay := fd.DFG(), fd.Layout()

	_, ok := lay.EntryBB()
	assert.False(t, ok, "empty layout has no entry")

	mk := func(name string) ir.BasicBlock {
		bb, err := dfg.NewBB().BasicBlock(name)
		require.NoError(t, err)
		return bb
	}
	a, b, c, d := mk("%a"), mk("%b"), mk("%c"), mk("%d")

	require.NoError(t, lay.PushBBBack(b))
	require.NoError(t, lay.PushBBFront(a))
	require.NoError(t, lay.InsertBBAfter(d, b))
	require.NoError(t, lay.InsertBBBefore(c, d))
	assert.Equal(t, []ir.BasicBlock{a, b, c, d}, lay.BBs())

	entry, ok := lay.EntryBB()
	require.True(t, ok)
	assert.Equal(t, a, entry)

	// Placing twice is rejected.
	err := lay.PushBBBack(a)
	assert.ErrorIs(t, err, keylist.ErrDuplicate)

	require.NoError(t, lay.RemoveBB(a))
	entry, ok = lay.EntryBB()
	require.True(t, ok)
	assert.Equal(t, b, entry)
}

func TestLayout_InstOrder(t *testing.T) {
	_, fd := newTestFunc(t, "@main")
	dfg, lay := fd.DFG(), fd.Layout()

	bb, err := dfg.NewBB().BasicBlock("%entry")
	require.NoError(t, err)
	require.NoError(t, lay.PushBBBack(bb))

	mk := func(n int32) ir.Value {
		v, err := dfg.NewValue().Integer(n)
		require.NoError(t, err)
		return v
	}
	v1, v2, v3 := mk(1), mk(2), mk(3)

	require.NoError(t, lay.PushInstBack(bb, v2))
	require.NoError(t, lay.PushInstFront(bb, v1))
	require.NoError(t, lay.InsertInstAfter(v3, v2))
	assert.Equal(t, []ir.Value{v1, v2, v3}, lay.Insts(bb))

	last, ok := lay.LastInst(bb)
	require.True(t, ok)
	assert.Equal(t, v3, last)

	parent, ok := lay.ParentBB(v2)
	require.True(t, ok)
	assert.Equal(t, bb, parent)

	require.NoError(t, lay.RemoveInst(v2))
	assert.Equal(t, []ir.Value{v1, v3}, lay.Insts(bb))
	_, ok = lay.ParentBB(v2)
	assert.False(t, ok)

	// Already placed elsewhere is rejected.
	other, err := dfg.NewBB().BasicBlock("%other")
	require.NoError(t, err)
	require.NoError(t, lay.PushBBBack(other))
	err = lay.PushInstBack(other, v1)
	assert.ErrorIs(t, err, ir.ErrInLayout)
}

func TestLayout_InsertByRef(t *testing.T) {
	_, fd := newTestFunc(t, "@main")
	dfg, lay := fd.DFG(), fd.Layout()

	bb, err := dfg.NewBB().BasicBlock("%entry")
	require.NoError(t, err)
	require.NoError(t, lay.PushBBBack(bb))

	ref, err := dfg.NewValue().Integer(0)
	require.NoError(t, err)
	require.NoError(t, lay.PushInstBack(bb, ref))

	before, err := dfg.NewValue().Integer(1)
	require.NoError(t, err)
	// The block is inferred from the reference's parent.
	require.NoError(t, lay.InsertInstBefore(before, ref))
	assert.Equal(t, []ir.Value{before, ref}, lay.Insts(bb))

	// An unplaced reference cannot anchor an insertion.
	loose, err := dfg.NewValue().Integer(2)
	require.NoError(t, err)
	other, err := dfg.NewValue().Integer(3)
	require.NoError(t, err)
	err = lay.InsertInstBefore(other, loose)
	assert.ErrorIs(t, err, ir.ErrNotFound)
}

func TestLayout_RemoveBBClearsParents(t *testing.T) {
	_, fd := newTestFunc(t, "@main")
	dfg, lay := fd.DFG(), fd.Layout()

	bb, err := dfg.NewBB().BasicBlock("%entry")
	require.NoError(t, err)
	require.NoError(t, lay.PushBBBack(bb))
	v, err := dfg.NewValue().Integer(1)
	require.NoError(t, err)
	require.NoError(t, lay.PushInstBack(bb, v))

	require.NoError(t, lay.RemoveBB(bb))
	_, ok := lay.ParentBB(v)
	assert.False(t, ok)
	assert.Empty(t, lay.BBs())
}
