// Package merge implements a K-way merge over sorted sources as a balanced
// binary tree of two-way merge nodes, so that per-output work is O(log K)
// comparisons and memory is O(K) peek slots.
package merge

// Source is a forward iterator of sorted T values. (T, bool) == (zero, false)
// signals end of stream, matching the (value, ok) idiom used when draining a
// channel.
type Source[T any] func() (T, bool)

// Comparator reports whether a sorts before or at b (a <= b).
type Comparator[T any] func(a, b T) bool

// Iterator is a merged view over one or more sorted Sources.
type Iterator[T any] struct {
	next func() (T, bool)
}

// Next returns the next value in merged order, or (zero, false) when every
// source is exhausted.
func (it *Iterator[T]) Next() (T, bool) {
	return it.next()
}

// Build constructs a balanced merge tree over sources using cmp as the
// merge comparator. With zero sources, the result is immediately exhausted.
func Build[T any](sources []Source[T], cmp Comparator[T]) *Iterator[T] {
	nodes := make([]Source[T], len(sources))
	copy(nodes, sources)
	return &Iterator[T]{next: mergeAll(nodes, cmp)}
}

// BuildOrdered is Build using the natural order of T (a <= b).
func BuildOrdered[T Ordered](sources []Source[T]) *Iterator[T] {
	return Build(sources, func(a, b T) bool { return a <= b })
}

// Ordered is the set of types with a natural total order via <=.
type Ordered interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~string
}

func emptySource[T any]() (T, bool) {
	var zero T
	return zero, false
}

// mergeAll recursively halves nodes into a balanced tree of two-way merges.
// A half holding a single node uses that node directly, which behaves the
// same as pairing it with an empty source.
func mergeAll[T any](nodes []Source[T], cmp Comparator[T]) func() (T, bool) {
	switch len(nodes) {
	case 0:
		return emptySource[T]
	case 1:
		return nodes[0]
	case 2:
		return twoWay(nodes[0], nodes[1], cmp)
	default:
		mid := len(nodes) / 2
		left := mergeAll(nodes[:mid], cmp)
		right := mergeAll(nodes[mid:], cmp)
		return twoWay(left, right, cmp)
	}
}

// twoWay merges two sorted sources, ties favoring left (stability with
// respect to the original leaf ordering of the tree).
func twoWay[T any](left, right Source[T], cmp Comparator[T]) func() (T, bool) {
	var (
		leftPeeked, rightPeeked T
		leftFilled, rightFilled bool
	)

	return func() (T, bool) {
		if !leftFilled {
			leftPeeked, leftFilled = left()
		}
		if !rightFilled {
			rightPeeked, rightFilled = right()
		}

		switch {
		case !leftFilled && !rightFilled:
			var zero T
			return zero, false
		case leftFilled && !rightFilled:
			leftFilled = false
			return leftPeeked, true
		case !leftFilled && rightFilled:
			rightFilled = false
			return rightPeeked, true
		default:
			if cmp(leftPeeked, rightPeeked) {
				leftFilled = false
				return leftPeeked, true
			}
			rightFilled = false
			return rightPeeked, true
		}
	}
}
