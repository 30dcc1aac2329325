package nnrtree

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Neighbor is the answer to a single query of a batch.
type Neighbor[S Scalar, T Object[S]] struct {
	Item   T
	DistSq S
	Found  bool
}

// NearestBatch finds the nearest item for each query, running up to limit
// searches concurrently (GOMAXPROCS if limit <= 0). The result at index i
// answers queries[i]. An error is returned if a query has the wrong number of
// dimensions or a NaN coordinate, if an item gives a NaN distance, or if ctx
// is cancelled before every query has been answered.
func (t *RTree[S, T]) NearestBatch(ctx context.Context, queries []Point[S], limit int) ([]Neighbor[S, T], error) {
	for i, q := range queries {
		if err := t.validateQuery(q); err != nil {
			t.logger.WarnContext(ctx, "rtree batch rejected", "query", i, "error", err)
			return nil, &QueryError{Query: i, cause: err}
		}
	}
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]Neighbor[S, T], len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, q := range queries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, err := t.nearestNeighbor(q)
			if err != nil {
				return &QueryError{Query: i, cause: err}
			}
			results[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.logger.WarnContext(ctx, "rtree batch aborted", "queries", len(queries), "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		t.logger.WarnContext(ctx, "rtree batch cancelled", "queries", len(queries), "error", err)
		return nil, err
	}
	return results, nil
}

func (t *RTree[S, T]) validateQuery(q Point[S]) error {
	if err := t.validateDims(len(q)); err != nil {
		return err
	}
	for i, x := range q {
		if x != x {
			return fmt.Errorf("%w: coordinate %d is %v", ErrUnorderedDistance, i, x)
		}
	}
	return nil
}

// nearestNeighbor runs a single search, turning an unordered distance panic
// into an error.
func (t *RTree[S, T]) nearestNeighbor(q Point[S]) (n Neighbor[S, T], err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok && errors.Is(rerr, ErrUnorderedDistance) {
				err = rerr
				return
			}
			panic(r)
		}
	}()
	item, d, ok := t.NearestWithDistance(q)
	return Neighbor[S, T]{Item: item, DistSq: d, Found: ok}, nil
}
