package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/domain"
)

// CollectionStore defines the interface for managing word collections.
type CollectionStore interface {
	// Create saves a new collection.
	Create(ctx context.Context, collection *domain.Collection) error

	// GetForUser retrieves a collection by ID, scoped to its owner.
	// Returns ErrCollectionNotFound if the collection does not exist or
	// belongs to another user; ownership failures are indistinguishable
	// from absence by design.
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Collection, error)

	// ListByUser returns all of a user's collections, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Collection, error)

	// AddWordCount adjusts the denormalized word counter by delta.
	AddWordCount(ctx context.Context, id uuid.UUID, delta int) error

	// WithTx returns a CollectionStore that runs on the provided transaction.
	WithTx(tx *sql.Tx) CollectionStore
}
