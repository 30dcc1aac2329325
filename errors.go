package nnrtree

import (
	"errors"
	"fmt"
)

var (
	// ErrUnorderedDistance is the cause of the panic raised when a distance
	// computation produces a value that cannot be ordered (i.e. NaN).
	ErrUnorderedDistance = errors.New("distance is not an ordered number")

	// ErrInvalidNodeCapacity is returned when the min/max children of a node
	// are out of range.
	ErrInvalidNodeCapacity = errors.New("invalid node capacity")

	// ErrInvalidBBox is returned when an item's bounding box has a lower
	// bound greater than its upper bound, or mismatched Min/Max lengths.
	ErrInvalidBBox = errors.New("invalid bounding box")
)

// DimensionMismatchError indicates that a point or item doesn't have the
// same dimensionality as the tree.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// QueryError wraps an error for a single query within a batch.
type QueryError struct {
	Query int
	cause error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %d: %v", e.Query, e.cause)
}

func (e *QueryError) Unwrap() error { return e.cause }
