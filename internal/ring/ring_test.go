package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingPushWithinCapacity(t *testing.T) {
	r := New[int](4)
	for i := 1; i <= 3; i++ {
		_, evicted := r.Push(i)
		assert.False(t, evicted)
	}

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 4, r.Cap())
	assert.Equal(t, []int{1, 2, 3}, r.Items())
}

func TestRingEvictsOldest(t *testing.T) {
	r := New[string](3)
	r.Push("a")
	r.Push("b")
	r.Push("c")

	old, evicted := r.Push("d")
	require.True(t, evicted)
	assert.Equal(t, "a", old)

	old, evicted = r.Push("e")
	require.True(t, evicted)
	assert.Equal(t, "b", old)

	assert.Equal(t, []string{"c", "d", "e"}, r.Items())
	assert.Equal(t, 3, r.Len())
}

func TestRingReset(t *testing.T) {
	r := New[int](2)
	r.Push(1)
	r.Push(2)
	r.Push(3)
	r.Reset()

	assert.Zero(t, r.Len())
	assert.Empty(t, r.Items())

	r.Push(9)
	assert.Equal(t, []int{9}, r.Items())
}

func TestRingMinimumCapacity(t *testing.T) {
	r := New[int](0)
	assert.Equal(t, 1, r.Cap())

	r.Push(1)
	old, evicted := r.Push(2)
	assert.True(t, evicted)
	assert.Equal(t, 1, old)
}
