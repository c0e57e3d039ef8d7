package list_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/csstree/pkg/list"
)

func TestListBasics(t *testing.T) {
	t.Parallel()

	lst := list.New[string]()
	assert.True(t, lst.IsEmpty())
	assert.Equal(t, 0, lst.Len())

	lst.Push("b")
	lst.Unshift("a")
	lst.Append("c")

	assert.Equal(t, []string{"a", "b", "c"}, lst.ToSlice())
	assert.Equal(t, 3, lst.Len())

	first, ok := lst.First()
	require.True(t, ok)
	assert.Equal(t, "a", first)

	last, ok := lst.Last()
	require.True(t, ok)
	assert.Equal(t, "c", last)

	popped, ok := lst.Pop()
	require.True(t, ok)
	assert.Equal(t, "c", popped)

	shifted, ok := lst.Shift()
	require.True(t, ok)
	assert.Equal(t, "a", shifted)

	assert.Equal(t, []string{"b"}, lst.ToSlice())
}

func TestListInsertAndRemove(t *testing.T) {
	t.Parallel()

	lst := list.FromSlice([]int{1, 3})
	three := lst.Tail()

	two, err := lst.Insert(2, three)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, lst.ToSlice())

	zero, err := lst.Insert(0, lst.Head())
	require.NoError(t, err)
	assert.Equal(t, zero, lst.Head())

	data, err := lst.Remove(two)
	require.NoError(t, err)
	assert.Equal(t, 2, data)
	assert.Equal(t, []int{0, 1, 3}, lst.ToSlice())

	_, err = lst.Remove(two)
	require.ErrorIs(t, err, list.ErrNotInList)

	_, err = lst.Insert(9, two)
	require.ErrorIs(t, err, list.ErrNotInList)
}

func TestListReplace(t *testing.T) {
	t.Parallel()

	lst := list.FromSlice([]string{"a", "x", "d"})
	middle := lst.Next(lst.Head())

	_, err := lst.Replace(middle, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "d"}, lst.ToSlice())

	middle = lst.Next(lst.Head())
	other := list.FromSlice([]string{"b", "c"})

	require.NoError(t, lst.ReplaceWithList(middle, other))
	assert.Equal(t, []string{"a", "b", "c", "d"}, lst.ToSlice())
	assert.True(t, other.IsEmpty())
}

func TestListForEachToleratesRemovingCurrent(t *testing.T) {
	t.Parallel()

	lst := list.FromSlice([]int{1, 2, 3, 4, 5})

	var seen []int

	lst.ForEach(func(data int, handle list.Handle) {
		seen = append(seen, data)

		if data%2 == 0 {
			_, err := lst.Remove(handle)
			require.NoError(t, err)
		}
	})

	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
	assert.Equal(t, []int{1, 3, 5}, lst.ToSlice())
}

func TestListForEachVisitsInsertedAfterCurrent(t *testing.T) {
	t.Parallel()

	lst := list.FromSlice([]string{"a", "c"})

	var seen []string

	lst.ForEach(func(data string, handle list.Handle) {
		seen = append(seen, data)

		if data == "a" {
			_, err := lst.Insert("b", lst.Next(handle))
			require.NoError(t, err)
		}
	})

	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestListForEachReplaceCurrentWithList(t *testing.T) {
	t.Parallel()

	lst := list.FromSlice([]string{"a", "raw", "z"})

	var seen []string

	lst.ForEach(func(data string, handle list.Handle) {
		seen = append(seen, data)

		if data == "raw" {
			require.NoError(t, lst.ReplaceWithList(handle, list.FromSlice([]string{"x", "y"})))
		}
	})

	assert.Equal(t, []string{"a", "raw", "z"}, seen)
	assert.Equal(t, []string{"a", "x", "y", "z"}, lst.ToSlice())
}

func TestListForEachRightRemovesNeighbour(t *testing.T) {
	t.Parallel()

	lst := list.FromSlice([]int{1, 2, 3, 4})

	var seen []int

	lst.ForEachRight(func(data int, handle list.Handle) {
		seen = append(seen, data)

		if data == 4 {
			_, err := lst.Remove(lst.Prev(handle))
			require.NoError(t, err)
		}
	})

	assert.Equal(t, []int{4, 2, 1}, seen)
	assert.Equal(t, []int{1, 2, 4}, lst.ToSlice())
}

func TestListHandlesAreNotReusedDuringIteration(t *testing.T) {
	t.Parallel()

	lst := list.FromSlice([]int{1, 2, 3})

	var seen []int

	lst.ForEach(func(data int, handle list.Handle) {
		seen = append(seen, data)

		if data == 1 {
			_, err := lst.Remove(handle)
			require.NoError(t, err)

			fresh := lst.Append(10)
			assert.NotEqual(t, handle, fresh)
		}
	})

	assert.Equal(t, []int{1, 2, 3, 10}, seen)
	assert.Equal(t, []int{2, 3, 10}, lst.ToSlice())
}

func TestListUntil(t *testing.T) {
	t.Parallel()

	lst := list.FromSlice([]int{1, 2, 3, 4})

	var forward []int

	lst.NextUntil(lst.Next(lst.Head()), func(data int, _ list.Handle) bool {
		forward = append(forward, data)

		return data == 3
	})

	var backward []int

	lst.PrevUntil(lst.Tail(), func(data int, _ list.Handle) bool {
		backward = append(backward, data)

		return false
	})

	assert.Equal(t, []int{2, 3}, forward)
	assert.Equal(t, []int{4, 3, 2, 1}, backward)
}

func TestListFunctional(t *testing.T) {
	t.Parallel()

	lst := list.FromSlice([]int{1, 2, 3, 4})

	doubled := list.Map(lst, func(v int) int { return v * 2 })
	assert.Equal(t, []int{2, 4, 6, 8}, doubled.ToSlice())

	even := lst.Filter(func(v int) bool { return v%2 == 0 })
	assert.Equal(t, []int{2, 4}, even.ToSlice())

	assert.True(t, lst.Some(func(v int) bool { return v == 3 }))
	assert.False(t, lst.Some(func(v int) bool { return v == 7 }))

	sum := list.Reduce(lst, func(acc, v int) int { return acc*10 + v }, 0)
	assert.Equal(t, 1234, sum)

	reversed := list.ReduceRight(lst, func(acc, v int) int { return acc*10 + v }, 0)
	assert.Equal(t, 4321, reversed)

	var backward []int
	for v := range lst.Backward() {
		backward = append(backward, v)
	}

	assert.Equal(t, []int{4, 3, 2, 1}, backward)

	clone := lst.Copy()
	clone.Push(5)
	assert.Equal(t, 4, lst.Len())
	assert.Equal(t, 5, clone.Len())
}

func TestListAppendPrependList(t *testing.T) {
	t.Parallel()

	lst := list.FromSlice([]int{3})
	lst.PrependList(list.FromSlice([]int{1, 2}))
	lst.AppendList(list.FromSlice([]int{4}))

	assert.Equal(t, []int{1, 2, 3, 4}, lst.ToSlice())

	lst.Clear()
	assert.True(t, lst.IsEmpty())
	assert.Empty(t, lst.ToSlice())
}
