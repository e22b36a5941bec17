package storage

import (
	"context"

	"github.com/poiesic/issuegraph/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// RecordReader is the read side of the corpus used by search and graph synthesis.
type RecordReader interface {
	// ListRecords returns every record of the given kind, most recently updated first.
	ListRecords(ctx context.Context, kind core.RecordKind) ([]*core.Record, error)
}

// RecordRepository provides operations for managing the record corpus.
type RecordRepository interface {
	Repository
	RecordReader

	// AddRecords upserts one or more records.
	// Records with ID=0 get a content ID derived from kind, repository and number.
	// Sets UpdatedAt to CreatedAt when it is not already set.
	// Returns the records with IDs populated.
	AddRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error)

	// DeleteRecords removes records by their IDs.
	// Also removes associated indices.
	// Returns ErrNotFound if any record doesn't exist.
	DeleteRecords(ctx context.Context, ids ...core.ID) error

	// GetRecord retrieves a single record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetRecord(ctx context.Context, id core.ID) (*core.Record, error)

	// GetRecords retrieves multiple records by their IDs.
	// Returns only the records that exist (no error for missing records).
	GetRecords(ctx context.Context, ids ...core.ID) ([]*core.Record, error)

	// CountRecords returns the number of stored records of the given kind.
	CountRecords(ctx context.Context, kind core.RecordKind) (int, error)
}
