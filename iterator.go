package nnrtree

import (
	"iter"

	"github.com/tidwall/tinyqueue"
)

// NearestIterator yields the items of an RTree in ascending order of distance
// from a query point. Subtrees are only expanded once every closer candidate
// has been produced, so stopping early costs nothing for the rest of the
// tree. An iterator can't be restarted; create a new one to search again.
//
// The tree must not be modified while an iterator over it is in use.
type NearestIterator[S Scalar, T Object[S]] struct {
	tree  *RTree[S, T]
	query Point[S]
	queue *tinyqueue.Queue
}

// NearestIter creates an iterator over the items in the tree, closest to q
// first.
func (t *RTree[S, T]) NearestIter(q Point[S]) *NearestIterator[S, T] {
	t.checkDims(len(q))
	it := &NearestIterator[S, T]{
		tree:  t,
		query: append(Point[S](nil), q...),
		queue: tinyqueue.New(nil),
	}
	if len(t.Nodes) != 0 {
		t.pushEntries(it.queue, t.RootIndex, it.query)
	}
	return it
}

// Next gives the next closest item along with its squared distance from the
// query point. Once every item has been produced, ok is false.
func (it *NearestIterator[S, T]) Next() (item T, distSq S, ok bool) {
	for it.queue.Len() > 0 {
		c := it.queue.Pop().(*candidate[S])
		if c.isItem {
			return it.tree.Items[c.index], c.dist, true
		}
		it.tree.pushEntries(it.queue, c.index, it.query)
	}
	return item, distSq, false
}

// All yields the remaining items with their squared distances. Breaking out
// of the loop leaves the iterator positioned after the last yielded item.
func (it *NearestIterator[S, T]) All() iter.Seq2[T, S] {
	return func(yield func(T, S) bool) {
		for {
			item, d, ok := it.Next()
			if !ok || !yield(item, d) {
				return
			}
		}
	}
}

// Objects yields the remaining items without their distances.
func (it *NearestIterator[S, T]) Objects() iter.Seq[T] {
	return func(yield func(T) bool) {
		for item := range it.All() {
			if !yield(item) {
				return
			}
		}
	}
}

// NearestNeighbors yields every item in the tree with its squared distance
// from q, closest first. Each range over the sequence starts a new search.
func (t *RTree[S, T]) NearestNeighbors(q Point[S]) iter.Seq2[T, S] {
	return func(yield func(T, S) bool) {
		t.NearestIter(q).All()(yield)
	}
}

// NearestObjects is like NearestNeighbors, but without the distances.
func (t *RTree[S, T]) NearestObjects(q Point[S]) iter.Seq[T] {
	return func(yield func(T) bool) {
		t.NearestIter(q).Objects()(yield)
	}
}

// KNearest gives the k items closest to q, closest first. Fewer than k items
// are returned if the tree doesn't hold that many.
func (t *RTree[S, T]) KNearest(q Point[S], k int) []T {
	if k <= 0 {
		return nil
	}
	items := make([]T, 0, min(k, t.Len()))
	for item := range t.NearestObjects(q) {
		items = append(items, item)
		if len(items) == k {
			break
		}
	}
	return items
}

// NearestWithin gives every item whose squared distance from q is at most
// maxDistSq, closest first.
func (t *RTree[S, T]) NearestWithin(q Point[S], maxDistSq S) []T {
	var items []T
	for item, d := range t.NearestNeighbors(q) {
		if d > maxDistSq {
			break
		}
		items = append(items, item)
	}
	return items
}
