package db

import (
	"context"
	"database/sql"

	"github.com/rsclarke/citybus/internal/models"
)

// Ledger records fetches for the client.
type Ledger struct {
	db *sql.DB
}

// NewLedger creates a Ledger with the given database connection.
func NewLedger(database *sql.DB) *Ledger {
	return &Ledger{db: database}
}

// RecordFetch stores a downloaded archive and returns its ID.
func (l *Ledger) RecordFetch(_ context.Context, f *models.Fetch) (int64, error) {
	return CreateFetch(l.db, f)
}

// RecordExtraction stores the extraction outcome of a fetch.
func (l *Ledger) RecordExtraction(_ context.Context, id int64, extractErr error) error {
	return FinishExtraction(l.db, id, extractErr)
}
