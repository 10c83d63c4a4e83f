// Package memory provides an in-memory VectorStore with exact brute-force
// search. Rows are lost when the process restarts. It backs tests and
// small single-instance deployments where approximate indexing buys nothing.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/lookalike-dev/lookalike/pkg/storage"
)

// row holds a stored embedding and its metadata.
type row struct {
	embedding []float32
	createdAt time.Time
}

// Store is an in-memory VectorStore using exact cosine distance.
type Store struct {
	mu   sync.RWMutex
	rows map[string]row
	dim  int
}

// Ensure Store implements storage.VectorStore at compile time.
var _ storage.VectorStore = (*Store)(nil)

// New creates an empty store for embeddings of the given dimensionality.
func New(dimension int) *Store {
	return &Store{
		rows: make(map[string]row),
		dim:  dimension,
	}
}

// Insert adds a row, rejecting wrong-length embeddings and duplicate
// identifiers without modifying the store.
func (s *Store) Insert(ctx context.Context, id string, embedding []float32) error {
	if err := storage.CheckDimension(embedding, s.dim); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rows[id]; exists {
		return storage.ErrDuplicateID
	}

	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	s.rows[id] = row{embedding: vec, createdAt: time.Now()}
	return nil
}

// Search scans all rows and returns the k nearest by cosine distance,
// ties broken by identifier ascending.
func (s *Store) Search(ctx context.Context, embedding []float32, k int) ([]storage.Match, error) {
	if k < 0 {
		return nil, storage.ErrInvalidK
	}
	if err := storage.CheckDimension(embedding, s.dim); err != nil {
		return nil, err
	}
	if k == 0 {
		return []storage.Match{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]storage.Match, 0, len(s.rows))
	for id, r := range s.rows {
		matches = append(matches, storage.Match{
			ID:       id,
			Distance: cosineDistance(embedding, r.embedding),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].ID < matches[j].ID
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.rows)), nil
}

// HealthCheck always succeeds for the in-memory store.
func (s *Store) HealthCheck(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// cosineDistance computes 1 - cosine similarity. A zero-norm vector has
// undefined direction; it is treated as maximally distant.
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
