// Package postgres provides a PostgreSQL implementation of storage.VectorStore
// backed by the pgvector extension. It uses pgx/v5 for connection pooling and
// an ivfflat index for approximate nearest-neighbor search.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/lookalike-dev/lookalike/pkg/storage"
)

// Store is a PostgreSQL-backed VectorStore.
type Store struct {
	pool   *pgxpool.Pool
	dim    int
	metric storage.Metric
	probes int
}

// Ensure Store implements storage.VectorStore at compile time.
var _ storage.VectorStore = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
// The persisted index metadata is verified against the configured dimension
// and metric; a mismatch fails with storage.ErrMetricMismatch rather than
// serving silently wrong rankings.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("dimension must be > 0, got %d", cfg.Dimension)
	}
	if cfg.Metric != storage.MetricCosine {
		return nil, fmt.Errorf("unsupported metric %q", cfg.Metric)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{
		pool:   pool,
		dim:    cfg.Dimension,
		metric: cfg.Metric,
		probes: cfg.Probes,
	}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	if err := s.verifyMeta(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Insert adds a row. Wrong-length embeddings fail with *storage.DimensionError
// and duplicate identifiers with storage.ErrDuplicateID; neither writes.
func (s *Store) Insert(ctx context.Context, id string, embedding []float32) error {
	if err := storage.CheckDimension(embedding, s.dim); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx,
		"INSERT INTO images (id, embedding) VALUES ($1, $2)",
		id, pgvector.NewVector(embedding),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrDuplicateID
		}
		return fmt.Errorf("inserting image: %w", err)
	}

	return nil
}

// Search returns up to k matches ordered by cosine distance ascending, ties
// broken by identifier. The secondary sort key forces exact ordering within
// the candidate set the ivfflat index returns; recall is tuned via Probes.
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

	query := `
		SELECT id, embedding <=> $1 AS distance
		FROM images
		ORDER BY distance, id
		LIMIT $2
	`
	vec := pgvector.NewVector(embedding)

	var rows pgx.Rows
	var err error
	if s.probes > 0 {
		// SET LOCAL is transaction-scoped, so the probes override needs an
		// explicit transaction around the query.
		rows, err = s.searchWithProbes(ctx, query, vec, k)
	} else {
		rows, err = s.pool.Query(ctx, query, vec, k)
	}
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	matches := make([]storage.Match, 0, k)
	for rows.Next() {
		var m storage.Match
		if err := rows.Scan(&m.ID, &m.Distance); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading matches: %w", err)
	}

	return matches, nil
}

// searchWithProbes runs the search inside a transaction with the ivfflat
// probe count raised for this query only.
func (s *Store) searchWithProbes(ctx context.Context, query string, vec pgvector.Vector, k int) (pgx.Rows, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL ivfflat.probes = %d", s.probes)); err != nil {
		tx.Rollback(ctx)
		return nil, fmt.Errorf("setting probes: %w", err)
	}

	rows, err := tx.Query(ctx, query, vec, k)
	if err != nil {
		tx.Rollback(ctx)
		return nil, err
	}

	// The read-only transaction is committed once the rows are drained.
	return &txRows{Rows: rows, tx: tx, ctx: ctx}, nil
}

// txRows commits the wrapping transaction when the row set is closed.
type txRows struct {
	pgx.Rows
	tx  pgx.Tx
	ctx context.Context
}

func (r *txRows) Close() {
	r.Rows.Close()
	r.tx.Commit(r.ctx)
}

// Count returns the number of committed rows.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM images").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting images: %w", err)
	}
	return count, nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// verifyMeta checks the persisted (dimension, metric) pair against the
// configuration. A fresh index records the configured pair; an existing
// index with a different pair refuses to open.
func (s *Store) verifyMeta(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO index_meta (id, dimension, metric) VALUES (1, $1, $2)
		ON CONFLICT (id) DO NOTHING
	`, s.dim, string(s.metric))
	if err != nil {
		return fmt.Errorf("recording index metadata: %w", err)
	}

	var dim int
	var metric string
	err = s.pool.QueryRow(ctx,
		"SELECT dimension, metric FROM index_meta WHERE id = 1",
	).Scan(&dim, &metric)
	if err != nil {
		return fmt.Errorf("reading index metadata: %w", err)
	}

	if dim != s.dim || metric != string(s.metric) {
		return fmt.Errorf("%w: index has (%d, %s), configured (%d, %s)",
			storage.ErrMetricMismatch, dim, metric, s.dim, s.metric)
	}

	return nil
}

// isDuplicateKey checks if the error is a PostgreSQL unique violation (23505).
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
