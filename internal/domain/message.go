package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Message validation errors.
var (
	ErrMessageIDEmpty     = errors.New("message ID cannot be empty")
	ErrMessageUserIDEmpty = errors.New("message user ID cannot be empty")
	ErrMessageTitleEmpty  = errors.New("message title cannot be empty")
)

// Message is an in-app notification delivered to a user's inbox.
// Generation and grading outcomes arrive here rather than through the
// request/response cycle that started them.
type Message struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates an unread message for the given user.
func NewMessage(userID uuid.UUID, title, body string) (*Message, error) {
	msg := &Message{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}

	if err := msg.Validate(); err != nil {
		return nil, err
	}

	return msg, nil
}

// Validate checks the message's identity fields and title.
func (m *Message) Validate() error {
	if m.ID == uuid.Nil {
		return ErrMessageIDEmpty
	}
	if m.UserID == uuid.Nil {
		return ErrMessageUserIDEmpty
	}
	if m.Title == "" {
		return ErrMessageTitleEmpty
	}
	return nil
}
