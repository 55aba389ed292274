package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterner_Dedup(t *testing.T) {
	in := NewInterner()
	bt := in.Builtins()

	p1 := in.Pointer(bt.Int32)
	p2 := in.Pointer(bt.Int32)
	assert.Equal(t, p1, p2)

	a1 := in.Array(bt.Int32, 4)
	a2 := in.Array(bt.Int32, 4)
	a3 := in.Array(bt.Int32, 8)
	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, a3)
}

func TestInterner_Fn(t *testing.T) {
	in := NewInterner()
	bt := in.Builtins()

	f1 := in.RegisterFn([]TypeID{bt.Int32, bt.Int32}, bt.Int32)
	f2 := in.RegisterFn([]TypeID{bt.Int32, bt.Int32}, bt.Int32)
	f3 := in.RegisterFn([]TypeID{bt.Int32}, bt.Int32)
	assert.Equal(t, f1, f2)
	assert.NotEqual(t, f1, f3)

	info, ok := in.FnInfo(f1)
	require.True(t, ok)
	assert.Equal(t, []TypeID{bt.Int32, bt.Int32}, info.Params)
	assert.Equal(t, bt.Int32, info.Result)

	_, ok = in.FnInfo(bt.Int32)
	assert.False(t, ok)
}

func TestInterner_Lookup(t *testing.T) {
	in := NewInterner()
	bt := in.Builtins()

	tt, ok := in.Lookup(bt.Int32)
	require.True(t, ok)
	assert.Equal(t, KindInt32, tt.Kind)

	_, ok = in.Lookup(NoTypeID)
	assert.False(t, ok)

	assert.Panics(t, func() { in.MustLookup(TypeID(9999)) })
}

func TestInterner_Format(t *testing.T) {
	in := NewInterner()
	bt := in.Builtins()

	tests := []struct {
		name string
		id   TypeID
		want string
	}{
		{"unit", bt.Unit, "unit"},
		{"int", bt.Int32, "i32"},
		{"pointer", in.Pointer(bt.Int32), "*i32"},
		{"array", in.Array(bt.Int32, 3), "[i32, 3]"},
		{"pointer_to_array", in.Pointer(in.Array(bt.Int32, 3)), "*[i32, 3]"},
		{"fn", in.RegisterFn([]TypeID{bt.Int32, bt.Int32}, bt.Int32), "(i32, i32): i32"},
		{"fn_unit", in.RegisterFn(nil, bt.Unit), "()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, in.Format(tt.id))
		})
	}
}
