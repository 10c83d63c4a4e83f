// Command server runs the lookalike image similarity service.
//
// Configuration is layered: built-in defaults, then a YAML config file
// (-config flag, LOOKALIKE_CONFIG env, ./config.yaml, or
// /etc/lookalike/config.yaml), then environment variable overrides:
//
//	LOOKALIKE_EMBEDDER_URL  - feature extraction backend URL (required)
//	LOOKALIKE_PORT          - listen port (default: 8080)
//	LOOKALIKE_STORAGE       - vector index: "memory" or "postgres"
//	LOOKALIKE_DATABASE_URL  - PostgreSQL DSN for the pgvector index
//	LOOKALIKE_BLOB          - blob store: "memory" or "minio"
//	LOOKALIKE_S3_ENDPOINT   - MinIO endpoint (host:port)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lookalike-dev/lookalike/pkg/blob"
	minioblob "github.com/lookalike-dev/lookalike/pkg/blob/minio"
	"github.com/lookalike-dev/lookalike/pkg/config"
	"github.com/lookalike-dev/lookalike/pkg/embedding"
	"github.com/lookalike-dev/lookalike/pkg/engine"
	"github.com/lookalike-dev/lookalike/pkg/storage"
	"github.com/lookalike-dev/lookalike/pkg/storage/memory"
	"github.com/lookalike-dev/lookalike/pkg/storage/postgres"
	"github.com/lookalike-dev/lookalike/pkg/transport"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Dependencies must be reachable before the listener opens. A service
	// that cannot persist or index is not worth starting.
	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	embedder := embedding.NewClient(cfg.Embedder.URL, cfg.Embedder.Model, cfg.Embedder.Timeout)

	blobs, err := newBlobStore(startupCtx, cfg)
	if err != nil {
		return fmt.Errorf("initializing blob store: %w", err)
	}

	vectors, err := newVectorStore(startupCtx, cfg)
	if err != nil {
		return fmt.Errorf("initializing vector store: %w", err)
	}
	defer vectors.Close()

	eng, err := engine.New(embedder, blobs, vectors, engine.Config{
		EmbedTimeout: cfg.Embedder.Timeout,
		StoreTimeout: cfg.Engine.StoreTimeout,
		DefaultLimit: cfg.Engine.DefaultLimit,
		IndexKind:    cfg.Storage.Type,
		StorageKind:  cfg.Blob.Type,
	})
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	adapter := transport.NewAdapter(eng, transport.Config{
		MaxBodySize: cfg.Server.MaxBodySize,
	})

	mux := http.NewServeMux()
	mux.Handle("/", adapter.Handler())
	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
	}

	slog.Info("service configured",
		"storage", cfg.Storage.Type,
		"blob", cfg.Blob.Type,
		"dimension", cfg.Storage.Dimension,
		"embedder", cfg.Embedder.URL)

	srv := transport.NewServer(mux, transport.ServerConfig{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})
	return srv.ListenAndServe()
}

// newBlobStore builds the configured blob backend. For MinIO the bucket is
// created up front so the first upload does not race bucket creation.
func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.Blob.Type {
	case "minio":
		store, err := minioblob.New(minioblob.Config{
			Endpoint:  cfg.Blob.Endpoint,
			AccessKey: cfg.Blob.AccessKey,
			SecretKey: cfg.Blob.SecretKey,
			Bucket:    cfg.Blob.Bucket,
			UseSSL:    cfg.Blob.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensuring bucket %q: %w", cfg.Blob.Bucket, err)
		}
		return store, nil
	default:
		slog.Warn("using in-memory blob store, uploads will not survive restart")
		return blob.NewMemoryStore(), nil
	}
}

// newVectorStore builds the configured vector index backend. The Postgres
// constructor pings the database and verifies the persisted index metadata,
// so a dimension or metric mismatch fails here rather than on first insert.
func newVectorStore(ctx context.Context, cfg *config.Config) (storage.VectorStore, error) {
	switch cfg.Storage.Type {
	case "postgres":
		return postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			Dimension:      cfg.Storage.Dimension,
			Metric:         storage.Metric(cfg.Storage.Metric),
			Lists:          cfg.Storage.Postgres.Lists,
			Probes:         cfg.Storage.Postgres.Probes,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
	default:
		slog.Warn("using in-memory vector index, entries will not survive restart")
		return memory.New(cfg.Storage.Dimension), nil
	}
}
