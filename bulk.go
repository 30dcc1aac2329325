package nnrtree

import (
	"fmt"
	"sort"
)

// BulkLoad bulk loads multiple items into a new R-Tree. The bulk load
// operation is optimised for creating R-Trees with minimal node overlap. This
// allows for fast searching. Leaf nodes hold at most maxChildren items, and
// the same limit is used if more items are inserted later.
func BulkLoad[S Scalar, T Object[S]](items []T, maxChildren int, opts ...Option) (*RTree[S, T], error) {
	policy, err := newInsertionPolicy(max(1, maxChildren/2), maxChildren)
	if err != nil {
		return nil, err
	}
	o := applyOptions(opts)
	tr := &RTree[S, T]{policy: policy, logger: o.logger}
	if len(items) == 0 {
		return tr, nil
	}

	inserts := make([]Entry[S], len(items))
	for i, item := range items {
		bb := item.BBox()
		if !bb.valid() {
			return nil, fmt.Errorf("item %d: %w: %v", i, ErrInvalidBBox, bb)
		}
		if i == 0 {
			tr.dims = bb.Dims()
		}
		if err := tr.validateDims(bb.Dims()); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		inserts[i] = Entry[S]{BBox: bb, Index: i}
	}
	tr.Items = append([]T(nil), items...)

	tr.RootIndex = tr.bulkInsert(inserts)
	tr.Nodes[tr.RootIndex].Parent = -1
	tr.logger.Debug("rtree bulk loaded", "items", len(tr.Items), "nodes", len(tr.Nodes), "dims", tr.dims)
	return tr, nil
}

func (t *RTree[S, T]) bulkInsert(items []Entry[S]) int {
	if len(items) <= t.policy.maxChildren {
		node := Node[S]{IsLeaf: true, Parent: -1}
		node.Entries = append(node.Entries, items...)
		t.Nodes = append(t.Nodes, node)
		return len(t.Nodes) - 1
	}

	bbox := items[0].BBox
	for _, item := range items[1:] {
		bbox = combine(bbox, item.BBox)
	}

	// Split along the axis with the greatest spread, comparing centres by
	// their doubled value (Min+Max) to stay in the scalar domain.
	axis := 0
	for i := 1; i < len(bbox.Min); i++ {
		if bbox.Max[i]-bbox.Min[i] > bbox.Max[axis]-bbox.Min[axis] {
			axis = i
		}
	}
	sort.Slice(items, func(i, j int) bool {
		bi := items[i].BBox
		bj := items[j].BBox
		return bi.Min[axis]+bi.Max[axis] < bj.Min[axis]+bj.Max[axis]
	})

	split := len(items) / 2
	n1 := t.bulkInsert(items[:split])
	n2 := t.bulkInsert(items[split:])

	parent := Node[S]{IsLeaf: false, Parent: -1, Entries: []Entry[S]{
		{BBox: t.calculateBound(n1), Index: n1},
		{BBox: t.calculateBound(n2), Index: n2},
	}}
	t.Nodes = append(t.Nodes, parent)
	t.Nodes[n1].Parent = len(t.Nodes) - 1
	t.Nodes[n2].Parent = len(t.Nodes) - 1
	return len(t.Nodes) - 1
}
