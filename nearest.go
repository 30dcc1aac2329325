package nnrtree

import "sort"

// nearestState is the running best answer of a branch and bound search.
type nearestState[S Scalar] struct {
	query  Point[S]
	limit  S
	best   S
	item   int
	found  bool
	scored []scoredEntry[S]
}

type scoredEntry[S Scalar] struct {
	entry Entry[S]
	dist  S
}

// Nearest gives the item in the tree closest to q. If the tree is empty, then
// false is returned. When several items are equally close, any one of them
// may be returned.
func (t *RTree[S, T]) Nearest(q Point[S]) (T, bool) {
	item, _, ok := t.NearestWithDistance(q)
	return item, ok
}

// NearestWithDistance is like Nearest, but also gives the squared distance
// between q and the returned item.
func (t *RTree[S, T]) NearestWithDistance(q Point[S]) (T, S, bool) {
	var zero T
	if len(t.Nodes) == 0 {
		return zero, 0, false
	}
	t.checkDims(len(q))
	limit := maxScalar[S]()
	state := nearestState[S]{query: q, limit: limit, best: limit}
	t.nearest(t.RootIndex, &state)
	if !state.found {
		return zero, 0, false
	}
	return t.Items[state.item], state.best, true
}

func (t *RTree[S, T]) nearest(n int, state *nearestState[S]) {
	node := &t.Nodes[n]

	// Every entry is guaranteed to hold something no farther away than its
	// min-max distance, so the smallest of these caps the nearest distance.
	ceiling := state.limit
	for _, entry := range node.Entries {
		ceiling = minScalar(ceiling, checkDistance(entry.BBox.minMaxDistanceSq(state.query, state.limit)))
	}
	if state.found {
		ceiling = minScalar(ceiling, state.best)
	}

	// Entries are scored into a shared scratch buffer, with each level of the
	// recursion owning the tail it appended.
	base := len(state.scored)
	for _, entry := range node.Entries {
		d := checkDistance(entry.BBox.DistanceSq(state.query))
		if d <= ceiling {
			state.scored = append(state.scored, scoredEntry[S]{entry, d})
		}
	}
	pending := state.scored[base:]
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].dist < pending[j].dist
	})

	for i := base; i < len(state.scored); i++ {
		se := state.scored[i]
		if state.found && se.dist > state.best {
			break
		}
		if node.IsLeaf {
			t.visitItem(se.entry.Index, state)
		} else {
			t.nearest(se.entry.Index, state)
		}
	}
	state.scored = state.scored[:base]
}

func (t *RTree[S, T]) visitItem(idx int, state *nearestState[S]) {
	item := t.Items[idx]
	var d S
	if td, ok := any(item).(ThresholdDistancer[S]); ok && state.found {
		var within bool
		d, within = td.DistanceSqIfAtMost(state.query, state.best)
		if !within {
			return
		}
	} else {
		d = item.DistanceSq(state.query)
	}
	d = checkDistance(d)
	if !state.found || d < state.best {
		state.best = d
		state.item = idx
		state.found = true
	}
}
