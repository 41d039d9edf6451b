package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/domain"
)

// ItemWithWord pairs a learning item with the word it tracks. Most read
// paths need both, so stores return them joined in one query.
type ItemWithWord struct {
	Item *domain.LearningItem
	Word *domain.Word
}

// ItemStore defines the interface for managing learning item persistence.
type ItemStore interface {
	// Create saves a new learning item to the store.
	Create(ctx context.Context, item *domain.LearningItem) error

	// CreateMultiple saves a batch of learning items.
	CreateMultiple(ctx context.Context, items []*domain.LearningItem) error

	// GetByID retrieves a learning item by its unique ID.
	// Returns ErrItemNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningItem, error)

	// GetWithWord retrieves a learning item joined with its word.
	// Returns ErrItemNotFound if the item does not exist.
	GetWithWord(ctx context.Context, id uuid.UUID) (*ItemWithWord, error)

	// Update persists the item's status, counters and review timestamps.
	// Returns ErrItemNotFound if the item does not exist.
	Update(ctx context.Context, item *domain.LearningItem) error

	// ListWithWords returns all of a user's items in a collection whose
	// status is one of the given values, each joined with its word.
	ListWithWords(
		ctx context.Context,
		userID, collectionID uuid.UUID,
		statuses []domain.ItemStatus,
	) ([]ItemWithWord, error)

	// ListWithWordsByIDs returns the items with the given IDs joined with
	// their words. Missing IDs are silently omitted.
	ListWithWordsByIDs(ctx context.Context, ids []uuid.UUID) ([]ItemWithWord, error)

	// CountBelowStatus counts a user's items in a collection whose status is
	// strictly below the given value.
	CountBelowStatus(
		ctx context.Context,
		userID, collectionID uuid.UUID,
		status domain.ItemStatus,
	) (int, error)

	// ExistingWordIDs returns the subset of wordIDs that already have a
	// learning item in the given collection.
	ExistingWordIDs(
		ctx context.Context,
		collectionID uuid.UUID,
		wordIDs []uuid.UUID,
	) ([]uuid.UUID, error)

	// WithTx returns an ItemStore that runs on the provided transaction.
	WithTx(tx *sql.Tx) ItemStore
}
