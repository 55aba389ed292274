package keylist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_PushAndOrder(t *testing.T) {
	l := New[int]()
	require.NoError(t, l.PushBack(2))
	require.NoError(t, l.PushBack(3))
	require.NoError(t, l.PushFront(1))

	assert.Equal(t, []int{1, 2, 3}, l.Keys())
	assert.Equal(t, 3, l.Len())

	front, ok := l.Front()
	require.True(t, ok)
	assert.Equal(t, 1, front)

	back, ok := l.Back()
	require.True(t, ok)
	assert.Equal(t, 3, back)
}

func TestList_InsertBeforeAfter(t *testing.T) {
	l := New[string]()
	require.NoError(t, l.PushBack("a"))
	require.NoError(t, l.PushBack("d"))
	require.NoError(t, l.InsertAfter("b", "a"))
	require.NoError(t, l.InsertBefore("c", "d"))

	assert.Equal(t, []string{"a", "b", "c", "d"}, l.Keys())

	next, ok := l.Next("b")
	require.True(t, ok)
	assert.Equal(t, "c", next)

	prev, ok := l.Prev("b")
	require.True(t, ok)
	assert.Equal(t, "a", prev)
}

func TestList_Remove(t *testing.T) {
	l := New[int]()
	for i := 1; i <= 4; i++ {
		require.NoError(t, l.PushBack(i))
	}

	require.NoError(t, l.Remove(1)) // head
	require.NoError(t, l.Remove(4)) // tail
	assert.Equal(t, []int{2, 3}, l.Keys())

	require.NoError(t, l.Remove(2))
	require.NoError(t, l.Remove(3))
	assert.Empty(t, l.Keys())

	_, ok := l.Front()
	assert.False(t, ok)

	assert.ErrorIs(t, l.Remove(1), ErrMissing)
}

func TestList_Duplicates(t *testing.T) {
	l := New[int]()
	require.NoError(t, l.PushBack(1))

	assert.ErrorIs(t, l.PushBack(1), ErrDuplicate)
	assert.ErrorIs(t, l.PushFront(1), ErrDuplicate)
	assert.ErrorIs(t, l.InsertAfter(1, 1), ErrDuplicate)

	assert.ErrorIs(t, l.InsertBefore(2, 99), ErrMissing)
	assert.Equal(t, []int{1}, l.Keys())
}

func TestList_Do(t *testing.T) {
	l := New[int]()
	for i := 1; i <= 5; i++ {
		require.NoError(t, l.PushBack(i))
	}

	var seen []int
	l.Do(func(k int) bool {
		seen = append(seen, k)
		return k < 3
	})
	assert.Equal(t, []int{1, 2, 3}, seen)
}
