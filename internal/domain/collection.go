package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Collection validation errors.
var (
	ErrCollectionIDEmpty     = errors.New("collection ID cannot be empty")
	ErrCollectionUserIDEmpty = errors.New("collection user ID cannot be empty")
	ErrCollectionNameEmpty   = errors.New("collection name cannot be empty")
)

// Collection is a user-owned word book grouping learning items.
type Collection struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	WordCount   int       `json:"word_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCollection creates an empty collection for the given user.
func NewCollection(userID uuid.UUID, name, description string) (*Collection, error) {
	collection := &Collection{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := collection.Validate(); err != nil {
		return nil, err
	}

	return collection, nil
}

// Validate checks the collection's identity fields and name.
func (c *Collection) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCollectionIDEmpty
	}
	if c.UserID == uuid.Nil {
		return ErrCollectionUserIDEmpty
	}
	if c.Name == "" {
		return ErrCollectionNameEmpty
	}
	return nil
}
