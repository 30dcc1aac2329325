package nnrtree

import "github.com/tidwall/tinyqueue"

// candidate is a pending entry in a best-first search, keyed by a lower bound
// on the distance to anything reachable through it. For items, the key is the
// exact distance.
type candidate[S Scalar] struct {
	dist   S
	index  int  // into RTree.Items if isItem, otherwise into RTree.Nodes
	isItem bool
}

// Less orders candidates for a min-queue, so the closest candidate is popped
// first.
func (c *candidate[S]) Less(other tinyqueue.Item) bool {
	return c.dist < other.(*candidate[S]).dist
}

// pushEntries queues every entry of node n, keyed against q.
func (t *RTree[S, T]) pushEntries(queue *tinyqueue.Queue, n int, q Point[S]) {
	node := &t.Nodes[n]
	for _, entry := range node.Entries {
		c := &candidate[S]{index: entry.Index, isItem: node.IsLeaf}
		if node.IsLeaf {
			c.dist = checkDistance(t.Items[entry.Index].DistanceSq(q))
		} else {
			c.dist = checkDistance(entry.BBox.DistanceSq(q))
		}
		queue.Push(c)
	}
}
