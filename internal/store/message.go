package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/domain"
)

// MessageStore defines the interface for the in-app notification inbox.
type MessageStore interface {
	// Create saves a new message.
	Create(ctx context.Context, message *domain.Message) error

	// ListByUser returns a page of the user's messages, newest first,
	// along with the total count.
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*domain.Message, int, error)

	// MarkRead marks a message as read, scoped to its owner.
	// Returns ErrMessageNotFound if the message does not exist or belongs
	// to another user.
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
}
