package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ItemStatus represents a learning item's position in the memorization
// pipeline. The values are stored as integers and must stay stable.
type ItemStatus int

// Learning item statuses, in pipeline order.
const (
	StatusNew           ItemStatus = 0 // not memorized, or sent back after a failure
	StatusPendingCheck  ItemStatus = 1 // matched once, awaiting a second independent pass
	StatusPendingReview ItemStatus = 2 // passed the double check, waiting for a review exam
	StatusReviewPassed  ItemStatus = 3 // passed immediate review
	StatusMastered      ItemStatus = 4 // passed the complete review, terminal
)

// Valid reports whether the status is one of the five defined values.
func (s ItemStatus) Valid() bool {
	return s >= StatusNew && s <= StatusMastered
}

// String returns a human-readable label for the status.
func (s ItemStatus) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusPendingCheck:
		return "pending_check"
	case StatusPendingReview:
		return "pending_review"
	case StatusReviewPassed:
		return "review_passed"
	case StatusMastered:
		return "mastered"
	default:
		return "unknown"
	}
}

// Learning item validation errors.
var (
	ErrItemIDEmpty           = errors.New("learning item ID cannot be empty")
	ErrItemUserIDEmpty       = errors.New("learning item user ID cannot be empty")
	ErrItemCollectionIDEmpty = errors.New("learning item collection ID cannot be empty")
	ErrItemWordIDEmpty       = errors.New("learning item word ID cannot be empty")
	ErrItemNegativeCounter   = errors.New("learning item counters cannot be negative")
)

// LearningItem is one user's tracked instance of one word within one
// collection. It carries the progress state machine: Status moves through
// the pipeline while the counters only ever grow.
type LearningItem struct {
	ID             uuid.UUID  `json:"id"`
	CollectionID   uuid.UUID  `json:"collection_id"`
	UserID         uuid.UUID  `json:"user_id"`
	WordID         uuid.UUID  `json:"word_id"`
	Status         ItemStatus `json:"status"`
	ReviewCount    int        `json:"review_count"`
	FailCount      int        `json:"fail_count"`
	MatchCount     int        `json:"match_count"`
	StudyCount     int        `json:"study_count"`
	LastReviewTime *time.Time `json:"last_review_time,omitempty"`
	NextReviewDue  *time.Time `json:"next_review_due,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewLearningItem creates a learning item at StatusNew for the given user,
// collection and word. Items always start their life as new words.
func NewLearningItem(userID, collectionID, wordID uuid.UUID) (*LearningItem, error) {
	item := &LearningItem{
		ID:           uuid.New(),
		CollectionID: collectionID,
		UserID:       userID,
		WordID:       wordID,
		Status:       StatusNew,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks the item's identity fields, status range and counters.
func (i *LearningItem) Validate() error {
	if i.ID == uuid.Nil {
		return ErrItemIDEmpty
	}
	if i.UserID == uuid.Nil {
		return ErrItemUserIDEmpty
	}
	if i.CollectionID == uuid.Nil {
		return ErrItemCollectionIDEmpty
	}
	if i.WordID == uuid.Nil {
		return ErrItemWordIDEmpty
	}
	if !i.Status.Valid() {
		return ErrInvalidItemStatus
	}
	if i.ReviewCount < 0 || i.FailCount < 0 || i.MatchCount < 0 || i.StudyCount < 0 {
		return ErrItemNegativeCounter
	}
	return nil
}
