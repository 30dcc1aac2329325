package nnrtree

// Point is a location in D-dimensional space. A Point is also an Object, so
// it can be stored in an RTree directly.
type Point[S Scalar] []S

// BBox gives the degenerate box containing only p.
func (p Point[S]) BBox() BBox[S] {
	return BBox[S]{Min: p, Max: p}
}

// DistanceSq gives the squared Euclidean distance between p and q.
func (p Point[S]) DistanceSq(q Point[S]) S {
	var sum S
	for i := range p {
		d := absDiff(p[i], q[i])
		sum += d * d
	}
	return sum
}

// DistanceSqIfAtMost gives the squared distance between p and q, but gives up
// as soon as the partial sum exceeds threshold.
func (p Point[S]) DistanceSqIfAtMost(q Point[S], threshold S) (S, bool) {
	var sum S
	for i := range p {
		d := absDiff(p[i], q[i])
		sum += d * d
		if sum > threshold {
			return 0, false
		}
	}
	return sum, true
}

// BBox is an axis-aligned bounding box. Min and Max must have the same
// length, and Min[i] <= Max[i] for every axis.
type BBox[S Scalar] struct {
	Min, Max Point[S]
}

// BBox gives bb itself, so that a box can be stored in an RTree as a filled
// rectangle.
func (bb BBox[S]) BBox() BBox[S] {
	return bb
}

// Dims gives the number of dimensions of the box.
func (bb BBox[S]) Dims() int {
	return len(bb.Min)
}

// DistanceSq gives the squared distance from p to the nearest point of the
// box. It's zero if p is inside the box. No object enclosed by the box can be
// closer to p than this.
func (bb BBox[S]) DistanceSq(p Point[S]) S {
	var sum S
	for i := range bb.Min {
		var d S
		switch {
		case p[i] < bb.Min[i]:
			d = bb.Min[i] - p[i]
		case p[i] > bb.Max[i]:
			d = p[i] - bb.Max[i]
		}
		sum += d * d
	}
	return sum
}

// MinMaxDistanceSq gives an upper bound on the squared distance from p to the
// nearest object inside the box. Each face of a tight bounding box touches at
// least one enclosed object, so for every axis k there's an object no farther
// away than the near face on axis k combined with the far faces on every
// other axis. The bound is the smallest such value over all axes. In two
// dimensions this is the same as taking the far face on one axis and the
// near face on the other.
//
// For integer scalars the bound saturates at the largest value of S rather
// than wrapping.
func (bb BBox[S]) MinMaxDistanceSq(p Point[S]) S {
	return bb.minMaxDistanceSq(p, maxScalar[S]())
}

func (bb BBox[S]) minMaxDistanceSq(p Point[S], limit S) S {
	dims := len(bb.Min)
	var near, far [8]S
	nearSq, farSq := near[:0], far[:0]
	for i := 0; i < dims; i++ {
		lo := saturatingSq(absDiff(p[i], bb.Min[i]), limit)
		hi := saturatingSq(absDiff(p[i], bb.Max[i]), limit)
		if lo < hi {
			nearSq = append(nearSq, lo)
			farSq = append(farSq, hi)
		} else {
			nearSq = append(nearSq, hi)
			farSq = append(farSq, lo)
		}
	}

	var result S
	for k := 0; k < dims; k++ {
		var sum S
		for j := 0; j < dims; j++ {
			if j == k {
				sum = saturatingAdd(sum, nearSq[j], limit)
			} else {
				sum = saturatingAdd(sum, farSq[j], limit)
			}
		}
		if k == 0 || sum < result {
			result = sum
		}
	}
	return result
}

func (bb BBox[S]) valid() bool {
	if len(bb.Min) != len(bb.Max) || len(bb.Min) == 0 {
		return false
	}
	for i := range bb.Min {
		if !(bb.Min[i] <= bb.Max[i]) {
			return false
		}
	}
	return true
}

// combine gives the smallest bounding box containing both bbox1 and bbox2.
func combine[S Scalar](bbox1, bbox2 BBox[S]) BBox[S] {
	out := BBox[S]{
		Min: make(Point[S], len(bbox1.Min)),
		Max: make(Point[S], len(bbox1.Max)),
	}
	for i := range out.Min {
		out.Min[i] = minScalar(bbox1.Min[i], bbox2.Min[i])
		out.Max[i] = bbox1.Max[i]
		if bbox2.Max[i] > out.Max[i] {
			out.Max[i] = bbox2.Max[i]
		}
	}
	return out
}

// enlargement returns how much additional area the existing BBox would have
// to enlarge by to accommodate the additional BBox.
func enlargement[S Scalar](existing, additional BBox[S]) float64 {
	return area(combine(existing, additional)) - area(existing)
}

// area gives the hypervolume of the box. It's computed in float64 so that
// integer coordinates can't overflow.
func area[S Scalar](bb BBox[S]) float64 {
	a := 1.0
	for i := range bb.Min {
		a *= float64(bb.Max[i] - bb.Min[i])
	}
	return a
}

func overlap[S Scalar](bbox1, bbox2 BBox[S]) bool {
	for i := range bbox1.Min {
		if bbox1.Min[i] > bbox2.Max[i] || bbox1.Max[i] < bbox2.Min[i] {
			return false
		}
	}
	return true
}
