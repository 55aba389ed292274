package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crest/internal/ir"
)

// Lowering `return 5; return 4; return 3;`: the front end emits the
// first return, then sees the cursor standing in an unreachable block
// and drops the rest. Finalize routes the leftover open block to the
// shared end block, which returns 0.
func TestCursor_TrailingReturns(t *testing.T) {
	p, fd := newTestFunc(t, "@main")
	dfg := fd.DFG()
	cur := ir.NewCursor(fd)

	entry, err := cur.Block("%entry")
	require.NoError(t, err)
	assert.False(t, cur.Unreachable())

	five, err := dfg.NewValue().Integer(5)
	require.NoError(t, err)
	ret, err := dfg.NewValue().Ret(five)
	require.NoError(t, err)
	require.NoError(t, cur.Insert(ret))

	// The terminator closed %entry; everything after it is dead code.
	assert.True(t, cur.Unreachable())
	assert.NotEqual(t, entry, cur.Current())

	// return 4; return 3; — skipped by the front end.

	require.NoError(t, cur.Finalize())
	require.NoError(t, ir.Validate(p))

	blocks := fd.Layout().BBs()
	require.Len(t, blocks, 3)
	assert.Equal(t, entry, blocks[0])

	// %entry: ret 5
	insts := fd.Layout().Insts(entry)
	require.Len(t, insts, 1)
	assert.Equal(t, ret, insts[0])

	// unreachable block: jump %end
	dead := fd.Layout().Insts(blocks[1])
	require.Len(t, dead, 1)
	jd := dfg.MustValueData(dead[0])
	require.Equal(t, ir.KindJump, jd.Kind)
	assert.Equal(t, blocks[2], jd.Jump.Target)

	// %end: ret 0
	assert.Equal(t, "%end", dfg.MustBBData(blocks[2]).Name)
	endInsts := fd.Layout().Insts(blocks[2])
	require.Len(t, endInsts, 1)
	rd := dfg.MustValueData(endInsts[0])
	require.Equal(t, ir.KindReturn, rd.Kind)
	zero := dfg.MustValueData(rd.Return.Value)
	require.Equal(t, ir.KindInteger, zero.Kind)
	assert.Equal(t, int32(0), zero.Integer.Value)
}

func TestCursor_UnitFallthrough(t *testing.T) {
	p := ir.NewProgram()
	f, err := p.NewFunc("@init", nil, p.Types().Builtins().Unit)
	require.NoError(t, err)
	fd := p.MustFuncData(f)
	cur := ir.NewCursor(fd)

	entry, err := cur.Block("%entry")
	require.NoError(t, err)
	require.NoError(t, cur.Finalize())
	require.NoError(t, ir.Validate(p))

	// %entry falls through to %end, which gets a bare ret.
	blocks := fd.Layout().BBs()
	require.Len(t, blocks, 2)
	insts := fd.Layout().Insts(entry)
	require.Len(t, insts, 1)
	assert.Equal(t, ir.KindJump, fd.DFG().MustValueData(insts[0]).Kind)

	end := fd.Layout().Insts(blocks[1])
	require.Len(t, end, 1)
	rd := fd.DFG().MustValueData(end[0])
	require.Equal(t, ir.KindReturn, rd.Kind)
	assert.False(t, rd.Return.Value.IsValid())
}

func TestCursor_FullyTerminated(t *testing.T) {
	p, fd := newTestFunc(t, "@main")
	dfg := fd.DFG()
	cur := ir.NewCursor(fd)

	_, err := cur.Block("%entry")
	require.NoError(t, err)
	one, err := dfg.NewValue().Integer(1)
	require.NoError(t, err)
	ret, err := dfg.NewValue().Ret(one)
	require.NoError(t, err)
	require.NoError(t, cur.Insert(ret))

	// The anonymous trailing block is still open; after Finalize a
	// second Finalize is a no-op.
	require.NoError(t, cur.Finalize())
	n := len(fd.Layout().BBs())
	require.NoError(t, cur.Finalize())
	assert.Len(t, fd.Layout().BBs(), n)
	require.NoError(t, ir.Validate(p))
}

func TestCursor_NoCurrentBlock(t *testing.T) {
	_, fd := newTestFunc(t, "@main")
	cur := ir.NewCursor(fd)

	v, err := fd.DFG().NewValue().Integer(1)
	require.NoError(t, err)
	err = cur.Insert(v)
	assert.ErrorIs(t, err, ir.ErrNotFound)
}

func TestCursor_AtReopensBlock(t *testing.T) {
	_, fd := newTestFunc(t, "@main")
	dfg := fd.DFG()
	cur := ir.NewCursor(fd)

	entry, err := cur.Block("%entry")
	require.NoError(t, err)
	body, err := cur.Block("%body")
	require.NoError(t, err)

	require.NoError(t, cur.At(entry))
	assert.Equal(t, entry, cur.Current())
	assert.False(t, cur.Unreachable())

	jmp, err := dfg.NewValue().Jump(body)
	require.NoError(t, err)
	require.NoError(t, cur.Insert(jmp))

	err = cur.At(ir.BasicBlock(999))
	assert.ErrorIs(t, err, ir.ErrNotFound)
}
