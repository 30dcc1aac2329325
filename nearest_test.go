package nnrtree

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestEmpty(t *testing.T) {
	rt, err := New[float64, Point[float64]](2, 4)
	require.NoError(t, err)
	_, ok := rt.Nearest(Point[float64]{0, 213})
	assert.False(t, ok)

	bulk, err := BulkLoad[float64]([]Point[float64](nil), 4)
	require.NoError(t, err)
	_, ok = bulk.Nearest(Point[float64]{0, 213})
	assert.False(t, ok)
}

func TestNearestSingle(t *testing.T) {
	rt, err := New[float64, Point[float64]](1, 2)
	require.NoError(t, err)
	only := Point[float64]{0.25, -3}
	require.NoError(t, rt.Insert(only))

	rnd := rand.New(rand.NewSource(5))
	for _, q := range randomPoints(rnd, 20, 2) {
		got, d, ok := rt.NearestWithDistance(q)
		require.True(t, ok)
		assert.Equal(t, only, got)
		assert.Equal(t, only.DistanceSq(q), d)
	}
}

func TestNearestScenario(t *testing.T) {
	rt, err := New[float64, Point[float64]](1, 2)
	require.NoError(t, err)
	for _, p := range []Point[float64]{{0, 0}, {5, 5}, {1, 1}} {
		require.NoError(t, rt.Insert(p))
	}
	got, d, ok := rt.NearestWithDistance(Point[float64]{0, 0})
	require.True(t, ok)
	assert.Equal(t, Point[float64]{0, 0}, got)
	assert.Equal(t, 0.0, d)

	var ranked []Point[float64]
	for p := range rt.NearestObjects(Point[float64]{0, 0}) {
		ranked = append(ranked, p)
	}
	assert.Equal(t, []Point[float64]{{0, 0}, {1, 1}, {5, 5}}, ranked)
}

func TestNearestBruteForce(t *testing.T) {
	for _, dims := range []int{1, 2, 3, 5} {
		for _, n := range []int{1, 2, 10, 100, 1000} {
			t.Run(fmt.Sprintf("dims_%d_n_%d", dims, n), func(t *testing.T) {
				rnd := rand.New(rand.NewSource(int64(dims*10000 + n)))
				points := randomPoints(rnd, n, dims)
				rt, err := New[float64, Point[float64]](2, 6)
				require.NoError(t, err)
				for _, p := range points {
					require.NoError(t, rt.Insert(p))
				}

				for _, q := range randomPoints(rnd, 100, dims) {
					want, wantDist := bruteForceNearest(points, q)
					got, gotDist, ok := rt.NearestWithDistance(q)
					require.True(t, ok)
					assert.Equal(t, wantDist, gotDist)
					assert.Equal(t, points[want], got)

					first, _, ok := rt.NearestIter(q).Next()
					require.True(t, ok)
					assert.Equal(t, got, first, "eager and lazy searches disagree")
				}
			})
		}
	}
}

func TestNearestIntegerScalars(t *testing.T) {
	rnd := rand.New(rand.NewSource(6))
	t.Run("int", func(t *testing.T) {
		rt, err := New[int, Point[int]](2, 5)
		require.NoError(t, err)
		var points []Point[int]
		for i := 0; i < 300; i++ {
			p := Point[int]{rnd.Intn(2001) - 1000, rnd.Intn(2001) - 1000}
			points = append(points, p)
			require.NoError(t, rt.Insert(p))
		}
		for i := 0; i < 100; i++ {
			q := Point[int]{rnd.Intn(3001) - 1500, rnd.Intn(3001) - 1500}
			want := math.MaxInt
			for _, p := range points {
				want = min(want, p.DistanceSq(q))
			}
			_, got, ok := rt.NearestWithDistance(q)
			require.True(t, ok)
			assert.Equal(t, want, got)
		}
	})
	t.Run("uint32", func(t *testing.T) {
		var points []Point[uint32]
		for i := 0; i < 300; i++ {
			points = append(points, Point[uint32]{uint32(rnd.Intn(1000)), uint32(rnd.Intn(1000)), uint32(rnd.Intn(1000))})
		}
		rt, err := BulkLoad[uint32](points, 4)
		require.NoError(t, err)
		for i := 0; i < 100; i++ {
			q := Point[uint32]{uint32(rnd.Intn(1200)), uint32(rnd.Intn(1200)), uint32(rnd.Intn(1200))}
			want := uint32(math.MaxUint32)
			for _, p := range points {
				want = min(want, p.DistanceSq(q))
			}
			_, got, ok := rt.NearestWithDistance(q)
			require.True(t, ok)
			assert.Equal(t, want, got)

			_, first, ok := rt.NearestIter(q).Next()
			require.True(t, ok)
			assert.Equal(t, want, first)
		}
	})
}

func TestNearestBoxes(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	boxes := make([]BBox[float64], 200)
	for i := range boxes {
		boxes[i] = randomBox(rnd, 0.9, 0.1)
	}
	rt, err := BulkLoad[float64](boxes, 5)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		q := Point[float64]{rnd.Float64()*1.4 - 0.2, rnd.Float64()*1.4 - 0.2}
		want := math.Inf(+1)
		for _, bb := range boxes {
			want = math.Min(want, bb.DistanceSq(q))
		}
		got, d, ok := rt.NearestWithDistance(q)
		require.True(t, ok)
		assert.Equal(t, want, d)
		assert.Equal(t, got.DistanceSq(q), d)
	}
}

// countingPoint records how often the early-exit distance is used.
type countingPoint struct {
	Point[float64]
	shortCircuits *int
}

func (p countingPoint) DistanceSqIfAtMost(q Point[float64], threshold float64) (float64, bool) {
	*p.shortCircuits++
	return p.Point.DistanceSqIfAtMost(q, threshold)
}

func TestNearestThresholdDistancer(t *testing.T) {
	rnd := rand.New(rand.NewSource(8))
	var shortCircuits int
	points := randomPoints(rnd, 500, 3)
	items := make([]countingPoint, len(points))
	for i, p := range points {
		items[i] = countingPoint{Point: p, shortCircuits: &shortCircuits}
	}
	rt, err := BulkLoad[float64](items, 8)
	require.NoError(t, err)

	for _, q := range randomPoints(rnd, 50, 3) {
		want, wantDist := bruteForceNearest(points, q)
		got, d, ok := rt.NearestWithDistance(q)
		require.True(t, ok)
		assert.Equal(t, points[want], got.Point)
		assert.Equal(t, wantDist, d)
	}
	assert.Positive(t, shortCircuits)
}

func TestNearestNaNPanics(t *testing.T) {
	rt, err := BulkLoad[float64](randomPoints(rand.New(rand.NewSource(9)), 50, 2), 4)
	require.NoError(t, err)
	q := Point[float64]{math.NaN(), 0}

	requireUnorderedPanic(t, func() { rt.Nearest(q) })
	requireUnorderedPanic(t, func() { rt.NearestIter(q).Next() })
}

func TestNearestDimensionMismatchPanics(t *testing.T) {
	rt, err := BulkLoad[float64](randomPoints(rand.New(rand.NewSource(10)), 10, 2), 4)
	require.NoError(t, err)
	r := catchPanic(func() { rt.Nearest(Point[float64]{1, 2, 3}) })
	err, ok := r.(error)
	require.True(t, ok, "expected an error, got %v", r)
	var dimErr *DimensionMismatchError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 2, dimErr.Expected)
}

func bruteForceNearest(points []Point[float64], q Point[float64]) (int, float64) {
	best, bestDist := -1, math.Inf(+1)
	for i, p := range points {
		var d float64
		for j := range p {
			d += (p[j] - q[j]) * (p[j] - q[j])
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

func catchPanic(fn func()) (r any) {
	defer func() {
		r = recover()
	}()
	fn()
	return nil
}

func requireUnorderedPanic(t *testing.T, fn func()) {
	t.Helper()
	r := catchPanic(fn)
	require.NotNil(t, r, "expected a panic")
	err, ok := r.(error)
	require.True(t, ok, "expected an error, got %v", r)
	require.True(t, errors.Is(err, ErrUnorderedDistance), "unexpected panic: %v", err)
}

func TestNearestIntegerBoundsNearTypeLimit(t *testing.T) {
	t.Run("int32", func(t *testing.T) {
		points := []Point[int32]{
			{40000, 0, 0}, {0, 40000, 0}, {0, 0, 40000},
			{40000, 1, 0}, {0, 40000, 1}, {1, 0, 40000},
		}
		checkIntegerNearest(t, points, Point[int32]{0, 0, 0})
		checkIntegerNearest(t, points, Point[int32]{1, 1, 1})
	})
	t.Run("uint16", func(t *testing.T) {
		points := []Point[uint16]{
			{255, 0, 0}, {0, 255, 0}, {0, 0, 255},
			{255, 1, 0}, {0, 255, 1}, {1, 0, 255},
		}
		checkIntegerNearest(t, points, Point[uint16]{0, 0, 0})
		checkIntegerNearest(t, points, Point[uint16]{1, 1, 1})
	})
}

func checkIntegerNearest[S Scalar](t *testing.T, points []Point[S], q Point[S]) {
	t.Helper()
	want := maxScalar[S]()
	for _, p := range points {
		want = min(want, p.DistanceSq(q))
	}
	for _, maxChildren := range []int{2, 3, 8} {
		rt, err := BulkLoad[S](points, maxChildren)
		require.NoError(t, err)

		got, d, ok := rt.NearestWithDistance(q)
		require.True(t, ok, "max children %d", maxChildren)
		assert.Equal(t, want, d)
		assert.Equal(t, got.DistanceSq(q), d)

		_, first, ok := rt.NearestIter(q).Next()
		require.True(t, ok)
		assert.Equal(t, d, first, "eager and lazy searches disagree")
	}
}
