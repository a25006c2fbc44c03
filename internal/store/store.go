package store

import (
	"context"
	"errors"

	"philately/catalog/internal/domain"
)

// ErrStorageUnavailable means the host has no usable persistent storage at
// all (open failed). Callers fall back to the in-memory store.
var ErrStorageUnavailable = errors.New("persistent storage unavailable")

// ErrNotFound is returned by GetByID for an absent record id.
var ErrNotFound = errors.New("stamp not found")

// Store is the durable record store behind the catalog views. Rows are
// upserted by id and read back in stable insertion order, so offset-based
// pagination over a fixed corpus is deterministic.
//
// Any operation may fail with a transient storage error; callers treat that
// as "fall back to remote fetch / seed data", never as fatal.
type Store interface {
	// BulkInsert upserts records by id. Safe to call repeatedly with
	// overlapping batches.
	BulkInsert(ctx context.Context, records []domain.StampRecord) error
	// GetPage returns up to limit rows starting at offset, in insertion
	// order. hasMore is true iff rows remain past this page.
	GetPage(ctx context.Context, offset, limit int) (records []domain.StampRecord, hasMore bool, err error)
	// GetAll performs a full scan. Used only when search or grouping needs
	// full-corpus accuracy.
	GetAll(ctx context.Context) ([]domain.StampRecord, error)
	// GetByID returns one record, or ErrNotFound when the id is absent.
	GetByID(ctx context.Context, id string) (domain.StampRecord, error)
	Count(ctx context.Context) (int, error)
	IsEmpty(ctx context.Context) (bool, error)
	// Clear deletes all rows, keeping the schema.
	Clear(ctx context.Context) error
	// Recreate drops and rebuilds the schema. Recovery path for corruption,
	// distinct from Clear.
	Recreate(ctx context.Context) error
	Close() error
}
