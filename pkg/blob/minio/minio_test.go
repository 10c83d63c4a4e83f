package minio

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lookalike-dev/lookalike/pkg/blob"
)

// TestStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_TEST_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}

	store, err := New(Config{
		Endpoint:  endpoint,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "lookalike-test",
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	// Check if MinIO is reachable.
	if _, err := store.client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	require.NoError(t, store.EnsureBucket(ctx))
	// Provisioning twice must be a no-op.
	require.NoError(t, store.EnsureBucket(ctx))

	data := []byte("fake jpeg bytes")
	require.NoError(t, store.Put(ctx, "test-image.jpg", data))

	got, err := store.Get(ctx, "test-image.jpg")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	exists, err := store.Exists(ctx, "test-image.jpg")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(ctx, "never-uploaded.jpg")
	require.NoError(t, err)
	assert.False(t, exists)

	names, err := store.List(ctx, "test-")
	require.NoError(t, err)
	assert.Contains(t, names, "test-image.jpg")

	// Overwrite must be retry-safe.
	updated := []byte("replacement bytes")
	require.NoError(t, store.Put(ctx, "test-image.jpg", updated))
	got, err = store.Get(ctx, "test-image.jpg")
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = store.Get(ctx, "never-uploaded.jpg")
	assert.True(t, errors.Is(err, blob.ErrNotFound), "expected ErrNotFound, got %v", err)
}

func TestNew_StripsScheme(t *testing.T) {
	store, err := New(Config{
		Endpoint:  "http://localhost:9000",
		AccessKey: "a",
		SecretKey: "b",
		Bucket:    "c",
	})
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", store.client.EndpointURL().Host)
}
