package models

import "errors"

// ErrNoAnchorFound is returned by anchored insertion when none of the
// anchors is present in the list.
var ErrNoAnchorFound = errors.New("no anchor found")

// OrderedList is a sequence supporting insertion relative to the earliest or
// latest of a set of anchor elements.
type OrderedList[T comparable] struct {
	items []T
}

// Append adds value at the end of the list.
func (l *OrderedList[T]) Append(value T) {
	l.items = append(l.items, value)
}

// Insert places value at pos, shifting later elements right.
// pos is clamped to [0, Len()].
func (l *OrderedList[T]) Insert(pos int, value T) {
	if pos < 0 {
		pos = 0
	}
	if pos >= len(l.items) {
		l.items = append(l.items, value)
		return
	}
	var zero T
	l.items = append(l.items, zero)
	copy(l.items[pos+1:], l.items[pos:])
	l.items[pos] = value
}

// InsertBefore inserts value immediately before the anchor present at the
// smallest position.
func (l *OrderedList[T]) InsertBefore(value T, anchors ...T) error {
	first, _, ok := l.anchorBounds(anchors)
	if !ok {
		return ErrNoAnchorFound
	}
	l.Insert(first, value)
	return nil
}

// InsertAfter inserts value immediately after the anchor present at the
// largest position.
func (l *OrderedList[T]) InsertAfter(value T, anchors ...T) error {
	_, last, ok := l.anchorBounds(anchors)
	if !ok {
		return ErrNoAnchorFound
	}
	l.Insert(last+1, value)
	return nil
}

// anchorBounds finds the first and last positions holding any of anchors in
// one pass over the list.
func (l *OrderedList[T]) anchorBounds(anchors []T) (first, last int, ok bool) {
	if len(anchors) == 0 {
		return 0, 0, false
	}
	set := make(map[T]struct{}, len(anchors))
	for _, a := range anchors {
		set[a] = struct{}{}
	}
	first, last = -1, -1
	for i, item := range l.items {
		if _, hit := set[item]; !hit {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	return first, last, first >= 0
}

// IndexOf returns the position of value, or -1.
func (l *OrderedList[T]) IndexOf(value T) int {
	for i, item := range l.items {
		if item == value {
			return i
		}
	}
	return -1
}

// Len returns the number of elements.
func (l *OrderedList[T]) Len() int {
	return len(l.items)
}

// Items returns a copy of the elements in order.
func (l *OrderedList[T]) Items() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}
