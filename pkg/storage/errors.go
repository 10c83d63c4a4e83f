package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors for vector store operations.
var (
	// ErrDuplicateID is returned when an insert loses a uniqueness race:
	// a row with the given identifier already exists.
	ErrDuplicateID = errors.New("identifier already exists")

	// ErrInvalidK is returned when a search is requested with k < 0.
	ErrInvalidK = errors.New("k must not be negative")

	// ErrMetricMismatch is returned at startup when the persisted index
	// metadata disagrees with the configured dimension or metric. Querying
	// an index built for a different vector space silently returns wrong
	// rankings, so the store refuses to open instead.
	ErrMetricMismatch = errors.New("index metric or dimension differs from configuration")
)

// DimensionError indicates an embedding whose length does not match the
// dimensionality fixed at index creation.
type DimensionError struct {
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// CheckDimension validates vec against the expected dimensionality.
func CheckDimension(vec []float32, expected int) error {
	if len(vec) != expected {
		return &DimensionError{Expected: expected, Actual: len(vec)}
	}
	return nil
}
