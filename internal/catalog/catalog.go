// Package catalog records which documents have been indexed in an
// optional PostgreSQL table. The catalog is bookkeeping for operators;
// the index itself lives entirely in the key-value store, and a nil
// catalog disables all recording.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/searchkit/termindex/pkg/postgres"
)

const (
	StatusIndexed = "INDEXED"
	StatusFailed  = "FAILED"
)

// Catalog tracks per-document index status in PostgreSQL.
type Catalog struct {
	client *postgres.Client
	logger *slog.Logger
}

// New creates a Catalog backed by the given client.
func New(client *postgres.Client) *Catalog {
	return &Catalog{
		client: client,
		logger: slog.Default().With("component", "catalog"),
	}
}

// EnsureSchema creates the documents table and its status index if
// they do not exist yet.
func (c *Catalog) EnsureSchema(ctx context.Context) error {
	return c.client.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS documents (
				id         TEXT PRIMARY KEY,
				status     TEXT NOT NULL,
				indexed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`); err != nil {
			return fmt.Errorf("creating documents table: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			CREATE INDEX IF NOT EXISTS documents_status_idx
			ON documents (status)`); err != nil {
			return fmt.Errorf("creating status index: %w", err)
		}
		return nil
	})
}

// Record upserts the document's status. Errors are logged, not
// returned: catalog bookkeeping must never fail an already-committed
// index transaction.
func (c *Catalog) Record(ctx context.Context, docID, status string) {
	if c == nil {
		return
	}
	_, err := c.client.DB.ExecContext(ctx, `
		INSERT INTO documents (id, status, indexed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status, indexed_at = EXCLUDED.indexed_at`,
		docID, status,
	)
	if err != nil {
		c.logger.Error("failed to record document status",
			"doc_id", docID,
			"status", status,
			"error", err,
		)
	}
}
