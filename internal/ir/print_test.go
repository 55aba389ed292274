package ir_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crest/internal/ir"
)

func TestDump_GlobalConstInline(t *testing.T) {
	p := ir.NewProgram()
	i32 := p.Types().Builtins().Int32

	gz, err := p.NewValue().ZeroInit(i32)
	require.NoError(t, err)
	cell, err := p.NewValue().GlobalAlloc(gz)
	require.NoError(t, err)
	require.NoError(t, p.SetValueName(cell, "@x"))
	seven, err := p.NewValue().Integer(7)
	require.NoError(t, err)

	f, err := p.NewFunc("@main", nil, i32)
	require.NoError(t, err)
	fd := p.MustFuncData(f)
	dfg := fd.DFG()
	cur := ir.NewCursor(fd)
	_, err = cur.Block("%entry")
	require.NoError(t, err)

	st, err := dfg.NewValue().Store(seven, cell)
	require.NoError(t, err)
	require.NoError(t, cur.Insert(st))
	ld, err := dfg.NewValue().Load(cell)
	require.NoError(t, err)
	require.NoError(t, cur.Insert(ld))
	two, err := dfg.NewValue().Integer(2)
	require.NoError(t, err)
	sum, err := dfg.NewValue().Binary(ir.OpAdd, ld, two)
	require.NoError(t, err)
	require.NoError(t, cur.Insert(sum))
	ret, err := dfg.NewValue().Ret(sum)
	require.NoError(t, err)
	require.NoError(t, cur.Insert(ret))

	var sb strings.Builder
	require.NoError(t, ir.Dump(&sb, p))
	want := `global @x = alloc i32, zeroinit

fun @main(): i32 {
%entry:
  store 7, @x
  %0 = load @x
  %1 = add %0, 2
  ret %1
}
`
	assert.Equal(t, want, sb.String())
}

func TestDump_Decl(t *testing.T) {
	p := ir.NewProgram()
	bt := p.Types().Builtins()

	_, err := p.NewDecl("@getint", nil, bt.Int32)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, ir.Dump(&sb, p))
	assert.Equal(t, "decl @getint(): i32\n", sb.String())
}

func TestDump_BlockParams(t *testing.T) {
	p := ir.NewProgram()
	i32 := p.Types().Builtins().Int32

	f, err := p.NewFunc("@abs", []ir.Param{{Name: "%x", Type: i32}}, i32)
	require.NoError(t, err)
	fd := p.MustFuncData(f)
	dfg := fd.DFG()
	x := fd.Params()[0]

	entry, err := dfg.NewBB().BasicBlock("%entry")
	require.NoError(t, err)
	neg, err := dfg.NewBB().BasicBlock("%neg")
	require.NoError(t, err)
	end, err := dfg.NewBB().BasicBlockWithParams("%end", []ir.Param{{Name: "%r", Type: i32}})
	require.NoError(t, err)
	r := dfg.MustBBData(end).Params[0]

	lay := fd.Layout()
	require.NoError(t, lay.PushBBBack(entry))
	require.NoError(t, lay.PushBBBack(neg))
	require.NoError(t, lay.PushBBBack(end))

	zero, err := dfg.NewValue().Integer(0)
	require.NoError(t, err)
	isNeg, err := dfg.NewValue().Binary(ir.OpLt, x, zero)
	require.NoError(t, err)
	br, err := dfg.NewValue().BranchWithArgs(isNeg, neg, end, nil, []ir.Value{x})
	require.NoError(t, err)
	require.NoError(t, lay.PushInstBack(entry, isNeg))
	require.NoError(t, lay.PushInstBack(entry, br))

	negated, err := dfg.NewValue().Binary(ir.OpSub, zero, x)
	require.NoError(t, err)
	jmp, err := dfg.NewValue().JumpWithArgs(end, []ir.Value{negated})
	require.NoError(t, err)
	require.NoError(t, lay.PushInstBack(neg, negated))
	require.NoError(t, lay.PushInstBack(neg, jmp))

	ret, err := dfg.NewValue().Ret(r)
	require.NoError(t, err)
	require.NoError(t, lay.PushInstBack(end, ret))

	require.NoError(t, ir.Validate(p))

	var sb strings.Builder
	require.NoError(t, ir.DumpFunc(&sb, p, f))
	want := `fun @abs(%x: i32): i32 {
%entry:
  %0 = lt %x, 0
  br %0, %neg, %end(%x)
%neg:
  %1 = sub 0, %x
  jump %end(%1)
%end(%r: i32):
  ret %r
}
`
	assert.Equal(t, want, sb.String())
}

func TestDump_AggregateGlobal(t *testing.T) {
	p := ir.NewProgram()

	one, err := p.NewValue().Integer(1)
	require.NoError(t, err)
	two, err := p.NewValue().Integer(2)
	require.NoError(t, err)
	agg, err := p.NewValue().Aggregate([]ir.Value{one, two})
	require.NoError(t, err)
	cell, err := p.NewValue().GlobalAlloc(agg)
	require.NoError(t, err)
	require.NoError(t, p.SetValueName(cell, "@arr"))

	var sb strings.Builder
	require.NoError(t, ir.Dump(&sb, p))
	assert.Equal(t, "global @arr = alloc [i32, 2], {1, 2}\n", sb.String())
}
