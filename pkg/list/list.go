// Package list implements the ordered child container of the CSS AST: a
// doubly linked list whose items live in an arena and are addressed by
// stable handles. Iteration tolerates removal and insertion around the
// current item, so parsers and walkers can mutate a list while walking it.
package list

import (
	"errors"
	"iter"
)

// ErrNotInList is returned when a handle does not address a live item.
var ErrNotInList = errors.New("item doesn't belong to list")

// Handle addresses an item of a List. The zero Handle addresses nothing.
type Handle int32

// Nil is the handle of no item.
const Nil Handle = 0

type entry[T any] struct {
	data T
	prev Handle
	next Handle
	live bool
}

// List is a doubly linked list of T. The zero value is an empty list.
type List[T any] struct {
	entries     []entry[T]
	free        []Handle
	pendingFree []Handle
	head        Handle
	tail        Handle
	length      int
	iterating   int
}

// New returns an empty list.
func New[T any]() *List[T] {
	return &List[T]{}
}

// FromSlice returns a list holding items in order.
func FromSlice[T any](items []T) *List[T] {
	lst := New[T]()

	for _, item := range items {
		lst.Append(item)
	}

	return lst
}

// Single returns a list with one item.
func Single[T any](item T) *List[T] {
	lst := New[T]()
	lst.Append(item)

	return lst
}

func (lst *List[T]) alloc(data T) Handle {
	if len(lst.entries) == 0 {
		// Slot 0 backs Nil.
		lst.entries = append(lst.entries, entry[T]{})
	}

	if n := len(lst.free); n > 0 {
		handle := lst.free[n-1]
		lst.free = lst.free[:n-1]
		lst.entries[handle] = entry[T]{data: data, live: true}

		return handle
	}

	lst.entries = append(lst.entries, entry[T]{data: data, live: true})

	return Handle(len(lst.entries) - 1) //nolint:gosec // arena size is bounded by memory.
}

func (lst *List[T]) release(handle Handle) {
	if lst.iterating > 0 {
		lst.pendingFree = append(lst.pendingFree, handle)

		return
	}

	var zero T

	lst.entries[handle].data = zero
	lst.free = append(lst.free, handle)
}

func (lst *List[T]) beginIteration() {
	lst.iterating++
}

func (lst *List[T]) endIteration() {
	lst.iterating--

	if lst.iterating == 0 && len(lst.pendingFree) > 0 {
		pending := lst.pendingFree
		lst.pendingFree = nil

		for _, handle := range pending {
			lst.release(handle)
		}
	}
}

// Contains reports whether handle addresses a live item of the list.
func (lst *List[T]) Contains(handle Handle) bool {
	return handle > 0 && int(handle) < len(lst.entries) && lst.entries[handle].live
}

// Len returns the number of items.
func (lst *List[T]) Len() int {
	if lst == nil {
		return 0
	}

	return lst.length
}

// IsEmpty reports whether the list has no items.
func (lst *List[T]) IsEmpty() bool {
	return lst == nil || lst.head == Nil
}

// Head returns the handle of the first item.
func (lst *List[T]) Head() Handle {
	return lst.head
}

// Tail returns the handle of the last item.
func (lst *List[T]) Tail() Handle {
	return lst.tail
}

// Next returns the handle after handle.
func (lst *List[T]) Next(handle Handle) Handle {
	if !lst.Contains(handle) {
		return Nil
	}

	return lst.entries[handle].next
}

// Prev returns the handle before handle.
func (lst *List[T]) Prev(handle Handle) Handle {
	if !lst.Contains(handle) {
		return Nil
	}

	return lst.entries[handle].prev
}

// Get returns the data of the item at handle.
func (lst *List[T]) Get(handle Handle) T {
	if !lst.Contains(handle) {
		var zero T

		return zero
	}

	return lst.entries[handle].data
}

// Set replaces the data of the item at handle.
func (lst *List[T]) Set(handle Handle, data T) error {
	if !lst.Contains(handle) {
		return ErrNotInList
	}

	lst.entries[handle].data = data

	return nil
}

// First returns the first item.
func (lst *List[T]) First() (T, bool) {
	if lst.IsEmpty() {
		var zero T

		return zero, false
	}

	return lst.entries[lst.head].data, true
}

// Last returns the last item.
func (lst *List[T]) Last() (T, bool) {
	if lst.IsEmpty() {
		var zero T

		return zero, false
	}

	return lst.entries[lst.tail].data, true
}

// Append adds data at the end and returns its handle.
func (lst *List[T]) Append(data T) Handle {
	handle := lst.alloc(data)
	lst.link(handle, Nil)

	return handle
}

// Push is Append without the handle.
func (lst *List[T]) Push(data T) {
	lst.Append(data)
}

// Prepend adds data at the front and returns its handle.
func (lst *List[T]) Prepend(data T) Handle {
	handle := lst.alloc(data)
	lst.link(handle, lst.head)

	return handle
}

// Unshift is Prepend without the handle.
func (lst *List[T]) Unshift(data T) {
	lst.Prepend(data)
}

// Insert adds data before the item at before; Nil appends.
func (lst *List[T]) Insert(data T, before Handle) (Handle, error) {
	if before != Nil && !lst.Contains(before) {
		return Nil, ErrNotInList
	}

	handle := lst.alloc(data)
	lst.link(handle, before)

	return handle, nil
}

// link wires a fresh handle in front of before (Nil means at the end).
func (lst *List[T]) link(handle, before Handle) {
	item := &lst.entries[handle]

	if before == Nil {
		item.prev = lst.tail
		item.next = Nil

		if lst.tail != Nil {
			lst.entries[lst.tail].next = handle
		} else {
			lst.head = handle
		}

		lst.tail = handle
	} else {
		prev := lst.entries[before].prev
		item.prev = prev
		item.next = before
		lst.entries[before].prev = handle

		if prev != Nil {
			lst.entries[prev].next = handle
		} else {
			lst.head = handle
		}
	}

	lst.length++
}

// Remove unlinks the item at handle and returns its data.
func (lst *List[T]) Remove(handle Handle) (T, error) {
	if !lst.Contains(handle) {
		var zero T

		return zero, ErrNotInList
	}

	item := &lst.entries[handle]

	if item.prev != Nil {
		lst.entries[item.prev].next = item.next
	} else {
		lst.head = item.next
	}

	if item.next != Nil {
		lst.entries[item.next].prev = item.prev
	} else {
		lst.tail = item.prev
	}

	// prev/next stay in place so running iterations can find their way back.
	item.live = false
	data := item.data
	lst.length--
	lst.release(handle)

	return data, nil
}

// Pop removes and returns the last item.
func (lst *List[T]) Pop() (T, bool) {
	if lst.IsEmpty() {
		var zero T

		return zero, false
	}

	data, _ := lst.Remove(lst.tail)

	return data, true
}

// Shift removes and returns the first item.
func (lst *List[T]) Shift() (T, bool) {
	if lst.IsEmpty() {
		var zero T

		return zero, false
	}

	data, _ := lst.Remove(lst.head)

	return data, true
}

// InsertList moves every item of other before the item at before (Nil
// appends). other is left empty.
func (lst *List[T]) InsertList(other *List[T], before Handle) error {
	if before != Nil && !lst.Contains(before) {
		return ErrNotInList
	}

	if other == nil || other == lst {
		return nil
	}

	for handle := other.head; handle != Nil; handle = other.entries[handle].next {
		lst.link(lst.alloc(other.entries[handle].data), before)
	}

	other.Clear()

	return nil
}

// AppendList moves every item of other to the end.
func (lst *List[T]) AppendList(other *List[T]) {
	_ = lst.InsertList(other, Nil)
}

// PrependList moves every item of other to the front.
func (lst *List[T]) PrependList(other *List[T]) {
	_ = lst.InsertList(other, lst.head)
}

// Replace substitutes the item at old with data.
func (lst *List[T]) Replace(old Handle, data T) (Handle, error) {
	handle, err := lst.Insert(data, old)
	if err != nil {
		return Nil, err
	}

	_, err = lst.Remove(old)

	return handle, err
}

// ReplaceWithList substitutes the item at old with the items of other.
func (lst *List[T]) ReplaceWithList(old Handle, other *List[T]) error {
	err := lst.InsertList(other, old)
	if err != nil {
		return err
	}

	_, err = lst.Remove(old)

	return err
}

// Clear removes every item.
func (lst *List[T]) Clear() {
	if lst.iterating > 0 {
		for lst.head != Nil {
			_, _ = lst.Remove(lst.head)
		}

		return
	}

	lst.entries = nil
	lst.free = nil
	lst.pendingFree = nil
	lst.head = Nil
	lst.tail = Nil
	lst.length = 0
}

// after returns the item following handle, which may have been removed
// meanwhile: removed items lead back to their nearest live predecessor.
func (lst *List[T]) after(handle Handle) Handle {
	for handle != Nil && !lst.entries[handle].live {
		handle = lst.entries[handle].prev
	}

	if handle == Nil {
		return lst.head
	}

	return lst.entries[handle].next
}

// before mirrors after for reverse iteration.
func (lst *List[T]) before(handle Handle) Handle {
	for handle != Nil && !lst.entries[handle].live {
		handle = lst.entries[handle].next
	}

	if handle == Nil {
		return lst.tail
	}

	return lst.entries[handle].prev
}

// ForEach calls fn for each item from head to tail. fn may remove the
// current item or insert items after it; inserted items are visited.
func (lst *List[T]) ForEach(fn func(data T, handle Handle)) {
	if lst.IsEmpty() {
		return
	}

	lst.beginIteration()
	defer lst.endIteration()

	for handle := lst.head; handle != Nil; handle = lst.after(handle) {
		fn(lst.entries[handle].data, handle)
	}
}

// ForEachRight calls fn for each item from tail to head.
func (lst *List[T]) ForEachRight(fn func(data T, handle Handle)) {
	if lst.IsEmpty() {
		return
	}

	lst.beginIteration()
	defer lst.endIteration()

	for handle := lst.tail; handle != Nil; handle = lst.before(handle) {
		fn(lst.entries[handle].data, handle)
	}
}

// NextUntil walks forward from start until fn returns true.
func (lst *List[T]) NextUntil(start Handle, fn func(data T, handle Handle) bool) {
	if !lst.Contains(start) {
		return
	}

	lst.beginIteration()
	defer lst.endIteration()

	for handle := start; handle != Nil; handle = lst.after(handle) {
		if fn(lst.entries[handle].data, handle) {
			return
		}
	}
}

// PrevUntil walks backward from start until fn returns true.
func (lst *List[T]) PrevUntil(start Handle, fn func(data T, handle Handle) bool) {
	if !lst.Contains(start) {
		return
	}

	lst.beginIteration()
	defer lst.endIteration()

	for handle := start; handle != Nil; handle = lst.before(handle) {
		if fn(lst.entries[handle].data, handle) {
			return
		}
	}
}

// Some reports whether fn returns true for any item.
func (lst *List[T]) Some(fn func(data T) bool) bool {
	if lst == nil {
		return false
	}

	for handle := lst.head; handle != Nil; handle = lst.entries[handle].next {
		if fn(lst.entries[handle].data) {
			return true
		}
	}

	return false
}

// Filter returns a new list with the items for which keep returns true.
func (lst *List[T]) Filter(keep func(data T) bool) *List[T] {
	result := New[T]()

	for data := range lst.All() {
		if keep(data) {
			result.Append(data)
		}
	}

	return result
}

// Copy returns a shallow copy of the list.
func (lst *List[T]) Copy() *List[T] {
	return lst.Filter(func(T) bool { return true })
}

// ToSlice returns the items in order.
func (lst *List[T]) ToSlice() []T {
	items := make([]T, 0, lst.Len())

	for data := range lst.All() {
		items = append(items, data)
	}

	return items
}

// All iterates the items from head to tail.
func (lst *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		if lst.IsEmpty() {
			return
		}

		lst.beginIteration()
		defer lst.endIteration()

		for handle := lst.head; handle != Nil; handle = lst.after(handle) {
			if !yield(lst.entries[handle].data) {
				return
			}
		}
	}
}

// Backward iterates the items from tail to head.
func (lst *List[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		if lst.IsEmpty() {
			return
		}

		lst.beginIteration()
		defer lst.endIteration()

		for handle := lst.tail; handle != Nil; handle = lst.before(handle) {
			if !yield(lst.entries[handle].data) {
				return
			}
		}
	}
}

// Map returns a new list with fn applied to every item.
func Map[T, U any](lst *List[T], fn func(data T) U) *List[U] {
	result := New[U]()

	for data := range lst.All() {
		result.Append(fn(data))
	}

	return result
}

// Reduce folds the items from head to tail.
func Reduce[T, A any](lst *List[T], fn func(acc A, data T) A, initial A) A {
	acc := initial

	lst.ForEach(func(data T, _ Handle) {
		acc = fn(acc, data)
	})

	return acc
}

// ReduceRight folds the items from tail to head.
func ReduceRight[T, A any](lst *List[T], fn func(acc A, data T) A, initial A) A {
	acc := initial

	lst.ForEachRight(func(data T, _ Handle) {
		acc = fn(acc, data)
	})

	return acc
}
