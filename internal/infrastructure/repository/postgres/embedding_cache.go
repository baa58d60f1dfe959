package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// EmbeddingCache persists document vectors keyed by document id and
// content hash. A row with a different hash is a miss: the document
// changed and its vector must be recomputed.
type EmbeddingCache struct {
	db *sql.DB
}

func NewEmbeddingCache(db *sql.DB) *EmbeddingCache {
	return &EmbeddingCache{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *EmbeddingCache) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082701)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS document_embeddings (
	document_id TEXT PRIMARY KEY,
	content_hash TEXT NOT NULL,
	vector JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS conversation_exchanges (
	id TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	sources JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_exchanges_conversation ON conversation_exchanges(conversation_id, created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *EmbeddingCache) Get(ctx context.Context, documentID, contentHash string) ([]float32, bool, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT vector
FROM document_embeddings
WHERE document_id = $1 AND content_hash = $2
`, documentID, contentHash)

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("scan embedding: %w", err)
	}

	var vector []float32
	if err := json.Unmarshal(raw, &vector); err != nil {
		return nil, false, fmt.Errorf("unmarshal embedding: %w", err)
	}
	return vector, true, nil
}

func (r *EmbeddingCache) Put(ctx context.Context, documentID, contentHash string, vector []float32) error {
	raw, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO document_embeddings (document_id, content_hash, vector, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (document_id) DO UPDATE
SET content_hash = EXCLUDED.content_hash, vector = EXCLUDED.vector, updated_at = EXCLUDED.updated_at
`, documentID, contentHash, raw, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}
	return nil
}
