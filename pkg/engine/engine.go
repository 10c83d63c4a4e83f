package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/lookalike-dev/lookalike/pkg/api"
	"github.com/lookalike-dev/lookalike/pkg/blob"
	"github.com/lookalike-dev/lookalike/pkg/embedding"
	"github.com/lookalike-dev/lookalike/pkg/observability"
	"github.com/lookalike-dev/lookalike/pkg/storage"
)

// Config holds engine behavior settings.
type Config struct {
	// EmbedTimeout bounds a single feature-extraction call (default: 30s).
	EmbedTimeout time.Duration

	// StoreTimeout bounds a single blob or vector store call (default: 10s).
	StoreTimeout time.Duration

	// DefaultLimit is the result count used when a query does not name one
	// (default: 5).
	DefaultLimit int

	// IndexKind and StorageKind label the backing stores in /stats output.
	IndexKind   string
	StorageKind string
}

// defaults applies default values for unset configuration fields.
func (c *Config) defaults() {
	if c.EmbedTimeout == 0 {
		c.EmbedTimeout = 30 * time.Second
	}
	if c.StoreTimeout == 0 {
		c.StoreTimeout = 10 * time.Second
	}
	if c.DefaultLimit == 0 {
		c.DefaultLimit = 5
	}
}

// Engine is the similarity engine. It holds no mutable state of its own;
// concurrent requests share only the pooled connections inside the stores.
type Engine struct {
	embedder embedding.Embedder
	blobs    blob.Store
	vectors  storage.VectorStore
	cfg      Config
	logger   *slog.Logger
}

// New creates an engine over the given embedder and stores.
func New(embedder embedding.Embedder, blobs blob.Store, vectors storage.VectorStore, cfg Config) (*Engine, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if blobs == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if vectors == nil {
		return nil, fmt.Errorf("vector store is required")
	}
	cfg.defaults()

	return &Engine{
		embedder: embedder,
		blobs:    blobs,
		vectors:  vectors,
		cfg:      cfg,
		logger:   slog.Default(),
	}, nil
}

// DefaultLimit returns the result count used when a query does not name one.
func (e *Engine) DefaultLimit() int {
	return e.cfg.DefaultLimit
}

// Ingest runs the ingestion state machine for one uploaded image:
// decode → embed → persist blob → commit vector row.
//
// A blob failure aborts the whole ingestion with no vector row written.
// An index failure after the blob write leaves an orphaned blob, which is
// invisible to queries and therefore tolerated. Caller cancellation is
// honored at stage boundaries only; once the blob is durable, the vector
// commit still runs so the paid-for blob does not dangle needlessly.
func (e *Engine) Ingest(ctx context.Context, data []byte) (*api.IngestResult, error) {
	img, err := embedding.Decode(data)
	if err != nil {
		observability.IngestsTotal.WithLabelValues("decode_failed").Inc()
		return nil, api.NewDecodeError(err.Error())
	}

	vec, apiErr := e.embed(ctx, img)
	if apiErr != nil {
		observability.IngestsTotal.WithLabelValues("embed_failed").Inc()
		return nil, apiErr
	}

	// The caller's context ending here is the caller's doing, not a backend
	// overrun, so it is not reported as upstream_timeout.
	if err := ctx.Err(); err != nil {
		observability.IngestsTotal.WithLabelValues("canceled").Inc()
		return nil, api.NewInvalidRequestError(fmt.Sprintf("request ended before blob write: %v", err))
	}

	id := api.NewImageID()
	name := api.ObjectName(id)

	putCtx, cancel := context.WithTimeout(ctx, e.cfg.StoreTimeout)
	err = e.timedBlobOp("put", func() error {
		return e.blobs.Put(putCtx, name, data)
	})
	cancel()
	if err != nil {
		observability.IngestsTotal.WithLabelValues("blob_failed").Inc()
		if isTimeout(err) {
			// Outcome of the write is unknown; abort without touching the
			// index. Put is idempotent, so the caller can retry safely.
			return nil, api.NewTimeoutError("blob store exceeded deadline")
		}
		return nil, api.NewStorageError(fmt.Sprintf("persisting blob: %v", err))
	}

	// The blob is durable; run the commit even if the caller has gone away,
	// otherwise the blob dangles for no reason.
	insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.StoreTimeout)
	err = e.timedVectorOp("insert", func() error {
		return e.vectors.Insert(insertCtx, id, vec)
	})
	cancel()
	if err != nil {
		observability.IngestsTotal.WithLabelValues("index_failed").Inc()
		e.logger.Warn("orphaned blob after index failure",
			"object", name, "error", err)
		return nil, indexError(err)
	}

	observability.IngestsTotal.WithLabelValues("committed").Inc()
	return &api.IngestResult{ID: id, ObjectName: name}, nil
}

// Search embeds the query image and returns up to k committed records
// ranked by distance ascending. Blob bytes are never fetched here; results
// carry derived object names only.
func (e *Engine) Search(ctx context.Context, data []byte, k int) ([]api.SearchResult, error) {
	if k < 0 {
		return nil, api.NewInvalidRequestError(fmt.Sprintf("k must not be negative, got %d", k))
	}

	img, err := embedding.Decode(data)
	if err != nil {
		observability.SearchesTotal.WithLabelValues("decode_failed").Inc()
		return nil, api.NewDecodeError(err.Error())
	}

	vec, apiErr := e.embed(ctx, img)
	if apiErr != nil {
		observability.SearchesTotal.WithLabelValues("embed_failed").Inc()
		return nil, apiErr
	}

	searchCtx, cancel := context.WithTimeout(ctx, e.cfg.StoreTimeout)
	defer cancel()

	var matches []storage.Match
	err = e.timedVectorOp("search", func() error {
		var serr error
		matches, serr = e.vectors.Search(searchCtx, vec, k)
		return serr
	})
	if err != nil {
		observability.SearchesTotal.WithLabelValues("index_failed").Inc()
		if isTimeout(err) {
			return nil, api.NewTimeoutError("vector store exceeded deadline")
		}
		return nil, indexError(err)
	}

	results := make([]api.SearchResult, len(matches))
	for i, m := range matches {
		results[i] = api.SearchResult{
			ID:         m.ID,
			Distance:   m.Distance,
			ObjectName: api.ObjectName(m.ID),
		}
	}

	observability.SearchesTotal.WithLabelValues("ok").Inc()
	return results, nil
}

// Fetch is the read-through blob retrieval used by the presentation layer.
func (e *Engine) Fetch(ctx context.Context, name string) ([]byte, error) {
	getCtx, cancel := context.WithTimeout(ctx, e.cfg.StoreTimeout)
	defer cancel()

	var data []byte
	err := e.timedBlobOp("get", func() error {
		var gerr error
		data, gerr = e.blobs.Get(getCtx, name)
		return gerr
	})
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, api.NewNotFoundError(fmt.Sprintf("no blob %q", name))
		}
		if isTimeout(err) {
			return nil, api.NewTimeoutError("blob store exceeded deadline")
		}
		return nil, api.NewStorageError(fmt.Sprintf("fetching blob: %v", err))
	}
	return data, nil
}

// Stats reports the committed row count and backing store kinds.
func (e *Engine) Stats(ctx context.Context) (api.Stats, error) {
	countCtx, cancel := context.WithTimeout(ctx, e.cfg.StoreTimeout)
	defer cancel()

	count, err := e.vectors.Count(countCtx)
	if err != nil {
		return api.Stats{}, api.NewIndexError("", fmt.Sprintf("counting rows: %v", err))
	}

	observability.IndexSize.Set(float64(count))
	return api.Stats{
		Count:   count,
		Index:   e.cfg.IndexKind,
		Storage: e.cfg.StorageKind,
	}, nil
}

// embed runs feature extraction with its own deadline and classifies
// failures.
func (e *Engine) embed(ctx context.Context, img image.Image) ([]float32, *api.Error) {
	embedCtx, cancel := context.WithTimeout(ctx, e.cfg.EmbedTimeout)
	defer cancel()

	start := time.Now()
	vec, err := e.embedder.Embed(embedCtx, img)
	observability.EmbedLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		if isTimeout(err) || errors.Is(embedCtx.Err(), context.DeadlineExceeded) {
			return nil, api.NewTimeoutError("embedding backend exceeded deadline")
		}
		return nil, api.NewEmbeddingError(err.Error())
	}
	return vec, nil
}

// timedBlobOp records blob store latency around op.
func (e *Engine) timedBlobOp(name string, op func() error) error {
	start := time.Now()
	err := op()
	observability.StoreOpLatency.WithLabelValues("blob", name).Observe(time.Since(start).Seconds())
	return err
}

// timedVectorOp records vector store latency around op.
func (e *Engine) timedVectorOp(name string, op func() error) error {
	start := time.Now()
	err := op()
	observability.StoreOpLatency.WithLabelValues("vector", name).Observe(time.Since(start).Seconds())
	return err
}

// indexError classifies a vector store failure into the typed taxonomy.
func indexError(err error) *api.Error {
	var dimErr *storage.DimensionError
	if errors.As(err, &dimErr) {
		return api.NewIndexError(api.CodeDimensionMismatch, dimErr.Error())
	}
	if errors.Is(err, storage.ErrDuplicateID) {
		return api.NewIndexError(api.CodeDuplicateIdentifier, err.Error())
	}
	if isTimeout(err) {
		return api.NewTimeoutError("vector store exceeded deadline")
	}
	return api.NewIndexError("", err.Error())
}

// isTimeout reports whether err stems from a deadline overrun.
func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
