package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ExamMode distinguishes the three review-exam flavors.
type ExamMode string

// Exam modes. Immediate and random draw from the pending-review pool,
// complete draws from the review-passed pool.
const (
	ExamModeImmediate ExamMode = "immediate"
	ExamModeRandom    ExamMode = "random"
	ExamModeComplete  ExamMode = "complete"
)

// Valid reports whether the mode is one of the defined exam modes.
func (m ExamMode) Valid() bool {
	switch m {
	case ExamModeImmediate, ExamModeRandom, ExamModeComplete:
		return true
	default:
		return false
	}
}

// ExamStatus represents the lifecycle state of an exam.
type ExamStatus string

// Exam lifecycle states. The only legal moves are
// pending -> generated -> grading -> completed, plus pending/generated -> failed.
const (
	ExamStatusPending   ExamStatus = "pending"
	ExamStatusGenerated ExamStatus = "generated"
	ExamStatusGrading   ExamStatus = "grading"
	ExamStatusCompleted ExamStatus = "completed"
	ExamStatusFailed    ExamStatus = "failed"
)

// Valid reports whether the status is one of the defined exam statuses.
func (s ExamStatus) Valid() bool {
	switch s {
	case ExamStatusPending, ExamStatusGenerated, ExamStatusGrading,
		ExamStatusCompleted, ExamStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether the exam can no longer change state.
// Only terminal exams may be deleted.
func (s ExamStatus) Terminal() bool {
	return s == ExamStatusCompleted || s == ExamStatusFailed
}

// CanTransitionTo reports whether moving from s to next follows the
// forward-only exam lifecycle.
func (s ExamStatus) CanTransitionTo(next ExamStatus) bool {
	switch s {
	case ExamStatusPending:
		return next == ExamStatusGenerated || next == ExamStatusFailed
	case ExamStatusGenerated:
		return next == ExamStatusGrading || next == ExamStatusFailed
	case ExamStatusGrading:
		return next == ExamStatusCompleted
	default:
		return false
	}
}

// Exam validation errors.
var (
	ErrExamIDEmpty           = errors.New("exam ID cannot be empty")
	ErrExamUserIDEmpty       = errors.New("exam user ID cannot be empty")
	ErrExamCollectionIDEmpty = errors.New("exam collection ID cannot be empty")
)

// Exam is one graded assessment instance over a set of learning items.
type Exam struct {
	ID                        uuid.UUID  `json:"id"`
	UserID                    uuid.UUID  `json:"user_id"`
	CollectionID              uuid.UUID  `json:"collection_id"`
	Mode                      ExamMode   `json:"mode"`
	Status                    ExamStatus `json:"exam_status"`
	TotalWords                int        `json:"total_words"`
	SpellingWordsCount        int        `json:"spelling_words_count"`
	TranslationSentencesCount int        `json:"translation_sentences_count"`
	GenerationError           string     `json:"generation_error,omitempty"`
	CreatedAt                 time.Time  `json:"created_at"`
	CompletedAt               *time.Time `json:"completed_at,omitempty"`
}

// NewExam creates a pending exam shell for the given user and collection.
// Counts are provisional until generation persists the actual sections.
func NewExam(userID, collectionID uuid.UUID, mode ExamMode, totalWords int) (*Exam, error) {
	exam := &Exam{
		ID:                 uuid.New(),
		UserID:             userID,
		CollectionID:       collectionID,
		Mode:               mode,
		Status:             ExamStatusPending,
		TotalWords:         totalWords,
		SpellingWordsCount: totalWords,
		CreatedAt:          time.Now().UTC(),
	}

	if err := exam.Validate(); err != nil {
		return nil, err
	}

	return exam, nil
}

// Validate checks the exam's identity fields, mode and status.
func (e *Exam) Validate() error {
	if e.ID == uuid.Nil {
		return ErrExamIDEmpty
	}
	if e.UserID == uuid.Nil {
		return ErrExamUserIDEmpty
	}
	if e.CollectionID == uuid.Nil {
		return ErrExamCollectionIDEmpty
	}
	if !e.Mode.Valid() {
		return ErrInvalidExamMode
	}
	if !e.Status.Valid() {
		return ErrInvalidExamStatus
	}
	return nil
}

// ExamSpellingEntry is one spelling question: the user sees the meaning and
// must produce the word's surface form. The set of spelling entries defines
// which learning items an in-flight exam owns.
type ExamSpellingEntry struct {
	ID        uuid.UUID `json:"id"`
	ExamID    uuid.UUID `json:"exam_id"`
	WordID    uuid.UUID `json:"word_id"`
	ItemID    uuid.UUID `json:"item_id"`
	Meaning   string    `json:"meaning"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// NewExamSpellingEntry creates a spelling entry for the given exam.
func NewExamSpellingEntry(examID, wordID, itemID uuid.UUID, meaning, answer string) *ExamSpellingEntry {
	return &ExamSpellingEntry{
		ID:        uuid.New(),
		ExamID:    examID,
		WordID:    wordID,
		ItemID:    itemID,
		Meaning:   meaning,
		Answer:    answer,
		CreatedAt: time.Now().UTC(),
	}
}

// ExamTranslationEntry is one translation question: a generated sentence in
// the source language plus the learning items whose mastery it exercises.
type ExamTranslationEntry struct {
	ID            uuid.UUID   `json:"id"`
	ExamID        uuid.UUID   `json:"exam_id"`
	SentenceID    string      `json:"sentence_id"`
	Sentence      string      `json:"sentence"`
	WordsInvolved []uuid.UUID `json:"words_involved"`
	CreatedAt     time.Time   `json:"created_at"`
}

// NewExamTranslationEntry creates a translation entry for the given exam.
func NewExamTranslationEntry(examID uuid.UUID, sentenceID, sentence string, wordsInvolved []uuid.UUID) *ExamTranslationEntry {
	return &ExamTranslationEntry{
		ID:            uuid.New(),
		ExamID:        examID,
		SentenceID:    sentenceID,
		Sentence:      sentence,
		WordsInvolved: wordsInvolved,
		CreatedAt:     time.Now().UTC(),
	}
}
