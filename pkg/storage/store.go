package storage

import "context"

// Metric identifies the distance function an index ranks by. It is fixed
// per index instance and persisted alongside the index so a configuration
// change cannot silently re-rank an existing corpus.
type Metric string

const (
	// MetricCosine is cosine distance (1 - cosine similarity).
	MetricCosine Metric = "cosine"
)

// Match is a single nearest-neighbor result.
type Match struct {
	ID       string
	Distance float64
}

// VectorStore is the durable embedding index: a table of
// (identifier, vector, created_at) rows with a nearest-neighbor index.
//
// Search results are ordered by non-decreasing distance; equal distances
// are broken by identifier ascending so rankings are reproducible.
type VectorStore interface {
	// Insert adds a row. The identifier is always caller-supplied; a row
	// with the same identifier already present yields ErrDuplicateID, and
	// an embedding of the wrong length yields a *DimensionError. Neither
	// failure alters the store.
	Insert(ctx context.Context, id string, embedding []float32) error

	// Search returns up to k matches nearest to the query embedding.
	// k == 0 returns an empty result, not an error; k < 0 is ErrInvalidK.
	Search(ctx context.Context, embedding []float32, k int) ([]Match, error)

	// Count returns the number of committed rows.
	Count(ctx context.Context) (int64, error)

	// HealthCheck verifies the backing store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases held resources.
	Close() error
}
