// Package nnrtree is an in-memory R-Tree with nearest neighbour search.
//
// Items are found either one at a time with Nearest (a depth-first branch and
// bound search), or lazily in ascending distance order with NearestIter (a
// best-first search that can be stopped and resumed at any point). Searches
// never modify the tree, so any number of them may run concurrently as long
// as nothing is inserted at the same time.
package nnrtree

import "log/slog"

// Object is anything that can be stored in an RTree. BBox must give the
// smallest box that contains the object, and DistanceSq the squared distance
// from the object to a point. DistanceSq must never be smaller than the
// BBox's DistanceSq for the same point.
type Object[S Scalar] interface {
	BBox() BBox[S]
	DistanceSq(Point[S]) S
}

// ThresholdDistancer may optionally be implemented by objects that can stop
// computing a distance early once it's known to exceed a threshold. The
// boolean result is false if the distance is greater than threshold.
type ThresholdDistancer[S Scalar] interface {
	DistanceSqIfAtMost(p Point[S], threshold S) (S, bool)
}

// Node is a node in an R-Tree. Nodes can either be leaf nodes holding entries
// for terminal items, or intermediate nodes holding entries for more nodes.
type Node[S Scalar] struct {
	IsLeaf  bool
	Entries []Entry[S]
	Parent  int
}

// Entry is an entry under a node, leading either to terminal items, or more
// nodes. For leaf nodes, Index refers to RTree.Items. Otherwise it refers to
// RTree.Nodes.
type Entry[S Scalar] struct {
	BBox  BBox[S]
	Index int
}

// RTree is an in-memory R-Tree data structure.
type RTree[S Scalar, T Object[S]] struct {
	RootIndex int
	Nodes     []Node[S]
	Items     []T

	dims   int
	policy insertionPolicy
	logger *slog.Logger
}

// Option configures an RTree.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for tree maintenance events. If nil is
// passed, logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		o.logger = l
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New creates an empty RTree. Nodes are split when they have more than
// maxChildren entries, and a split never leaves fewer than minChildren
// entries in a node.
func New[S Scalar, T Object[S]](minChildren, maxChildren int, opts ...Option) (*RTree[S, T], error) {
	policy, err := newInsertionPolicy(minChildren, maxChildren)
	if err != nil {
		return nil, err
	}
	o := applyOptions(opts)
	return &RTree[S, T]{policy: policy, logger: o.logger}, nil
}

// Len gives the number of items in the tree.
func (t *RTree[S, T]) Len() int {
	return len(t.Items)
}

// Dims gives the dimensionality of the items in the tree, or 0 if the tree
// is empty.
func (t *RTree[S, T]) Dims() int {
	return t.dims
}

// Extent gives the smallest box containing every item in the tree. If the
// tree is empty, then false is returned.
func (t *RTree[S, T]) Extent() (BBox[S], bool) {
	if len(t.Nodes) == 0 || len(t.Nodes[t.RootIndex].Entries) == 0 {
		return BBox[S]{}, false
	}
	return t.calculateBound(t.RootIndex), true
}

// Search looks for any items in the tree that overlap with the given
// bounding box. The callback is called for each found item, and the search
// stops early if it returns false.
func (t *RTree[S, T]) Search(bb BBox[S], callback func(item T) bool) {
	if len(t.Nodes) == 0 {
		return
	}
	t.checkDims(len(bb.Min))
	t.checkDims(len(bb.Max))
	var recurse func(*Node[S]) bool
	recurse = func(n *Node[S]) bool {
		for _, entry := range n.Entries {
			if !overlap(entry.BBox, bb) {
				continue
			}
			if n.IsLeaf {
				if !callback(t.Items[entry.Index]) {
					return false
				}
			} else if !recurse(&t.Nodes[entry.Index]) {
				return false
			}
		}
		return true
	}
	recurse(&t.Nodes[t.RootIndex])
}

// checkDims panics if a query doesn't match the dimensionality of a
// non-empty tree.
func (t *RTree[S, T]) checkDims(dims int) {
	if err := t.validateDims(dims); err != nil {
		panic(err)
	}
}

func (t *RTree[S, T]) validateDims(dims int) error {
	if t.dims != 0 && dims != t.dims {
		return &DimensionMismatchError{Expected: t.dims, Actual: dims}
	}
	return nil
}

// calculateBound calculates the smallest bounding box that fits a node.
func (t *RTree[S, T]) calculateBound(n int) BBox[S] {
	bb := t.Nodes[n].Entries[0].BBox
	for _, entry := range t.Nodes[n].Entries[1:] {
		bb = combine(bb, entry.BBox)
	}
	return bb
}
