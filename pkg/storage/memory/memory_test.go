package memory

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/lookalike-dev/lookalike/pkg/storage"
)

func TestInsertAndSearch_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New(2)

	if err := store.Insert(ctx, "img-a", []float32{1, 0}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	matches, err := store.Search(ctx, []float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].ID != "img-a" {
		t.Errorf("expected img-a, got %s", matches[0].ID)
	}
	if math.Abs(matches[0].Distance) > 1e-6 {
		t.Errorf("expected distance ~0 for identical vector, got %f", matches[0].Distance)
	}
}

func TestSearch_Ordering(t *testing.T) {
	ctx := context.Background()
	store := New(2)

	// Toy 2-D space: img-1 is the query itself, img-3 is close, img-2 is
	// orthogonal.
	inserts := map[string][]float32{
		"img-1": {1, 0},
		"img-2": {0, 1},
		"img-3": {0.9, 0.1},
	}
	for id, vec := range inserts {
		if err := store.Insert(ctx, id, vec); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	matches, err := store.Search(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != "img-1" || matches[1].ID != "img-3" {
		t.Errorf("expected [img-1 img-3], got [%s %s]", matches[0].ID, matches[1].ID)
	}
	if matches[0].Distance > matches[1].Distance {
		t.Errorf("distances not non-decreasing: %f > %f", matches[0].Distance, matches[1].Distance)
	}
}

func TestSearch_TieBreakByID(t *testing.T) {
	ctx := context.Background()
	store := New(2)

	// Identical vectors: equal distance, so ordering must fall back to
	// identifier ascending.
	for _, id := range []string{"img-c", "img-a", "img-b"} {
		if err := store.Insert(ctx, id, []float32{1, 1}); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	matches, err := store.Search(ctx, []float32{1, 1}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := []string{"img-a", "img-b", "img-c"}
	for i, id := range want {
		if matches[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, matches[i].ID)
		}
	}
}

func TestSearch_BoundedResults(t *testing.T) {
	ctx := context.Background()
	store := New(2)

	if err := store.Insert(ctx, "img-a", []float32{1, 0}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	matches, err := store.Search(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("expected 1 match (store size), got %d", len(matches))
	}
}

func TestSearch_EmptyStore(t *testing.T) {
	ctx := context.Background()
	store := New(2)

	matches, err := store.Search(ctx, []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("search on empty store: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected empty result, got %d matches", len(matches))
	}
}

func TestSearch_KZero(t *testing.T) {
	ctx := context.Background()
	store := New(2)

	if err := store.Insert(ctx, "img-a", []float32{1, 0}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	matches, err := store.Search(ctx, []float32{1, 0}, 0)
	if err != nil {
		t.Fatalf("k=0 should not be an error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("k=0 should return empty result, got %d matches", len(matches))
	}
}

func TestSearch_NegativeK(t *testing.T) {
	ctx := context.Background()
	store := New(2)

	_, err := store.Search(ctx, []float32{1, 0}, -1)
	if !errors.Is(err, storage.ErrInvalidK) {
		t.Errorf("expected ErrInvalidK, got %v", err)
	}
}

func TestInsert_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	store := New(2)

	err := store.Insert(ctx, "img-a", []float32{1, 0, 0})
	var dimErr *storage.DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
	if dimErr.Expected != 2 || dimErr.Actual != 3 {
		t.Errorf("expected 2/3, got %d/%d", dimErr.Expected, dimErr.Actual)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("failed insert must not alter count, got %d", count)
	}
}

func TestInsert_Duplicate(t *testing.T) {
	ctx := context.Background()
	store := New(2)

	if err := store.Insert(ctx, "img-a", []float32{1, 0}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := store.Insert(ctx, "img-a", []float32{0, 1})
	if !errors.Is(err, storage.ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}

	count, _ := store.Count(ctx)
	if count != 1 {
		t.Errorf("duplicate insert must not alter count, got %d", count)
	}
}

func TestCount(t *testing.T) {
	ctx := context.Background()
	store := New(3)

	for i, id := range []string{"a", "b", "c"} {
		vec := []float32{float32(i), 1, 0}
		if err := store.Insert(ctx, id, vec); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3, got %d", count)
	}
}
