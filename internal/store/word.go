package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/domain"
)

// WordStore defines the interface for managing the shared word bank.
type WordStore interface {
	// Create saves a new word. Returns ErrWordExists if the surface form
	// is already taken.
	Create(ctx context.Context, word *domain.Word) error

	// GetByID retrieves a word by its unique ID.
	// Returns ErrWordNotFound if the word does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Word, error)

	// ListByTexts returns the words whose normalized surface form is in
	// texts. Unknown surface forms are silently omitted.
	ListByTexts(ctx context.Context, texts []string) ([]*domain.Word, error)

	// WithTx returns a WordStore that runs on the provided transaction.
	WithTx(tx *sql.Tx) WordStore
}
