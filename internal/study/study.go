// Package study builds ordered study queues over a collection's learning
// items and applies study outcomes back to item state.
package study

import (
	"errors"

	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/domain"
)

// Mode selects which item pool a study session draws from.
type Mode string

// Study session modes.
const (
	// ModeNew studies new words, interleaved with items awaiting re-check.
	ModeNew Mode = "new"
	// ModeReview studies items waiting for a review exam.
	ModeReview Mode = "review"
	// ModeRandom studies a small random slice of review-passed items.
	ModeRandom Mode = "random"
	// ModeFinal studies a large slice of review-passed items.
	ModeFinal Mode = "final"
)

// Valid reports whether the mode is one of the defined study modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeNew, ModeReview, ModeRandom, ModeFinal:
		return true
	default:
		return false
	}
}

// Sample caps per mode. Pool B of the new-word session (pending-check
// items) is intentionally uncapped.
const (
	newSampleSize    = 20
	reviewSampleSize = 50
	randomSampleSize = 20
	finalSampleSize  = 100
)

// Outcome is the result the learner reports for one studied item.
type Outcome string

// Study outcomes.
const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
	OutcomeSkip      Outcome = "skip"
)

// Valid reports whether the outcome is one of the defined values.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeCorrect, OutcomeIncorrect, OutcomeSkip:
		return true
	default:
		return false
	}
}

// ErrInvalidMode is returned for an unknown study mode.
var ErrInvalidMode = errors.New("invalid study mode")

// ErrInvalidOutcome is returned for an unknown study outcome.
var ErrInvalidOutcome = errors.New("invalid study outcome")

// Entry is one position in a study queue, carrying everything the client
// needs to render the card.
type Entry struct {
	ItemID       uuid.UUID         `json:"item_id"`
	WordID       uuid.UUID         `json:"word_id"`
	Word         string            `json:"word"`
	Meaning      string            `json:"meaning"`
	Phonetic     string            `json:"phonetic,omitempty"`
	PartOfSpeech string            `json:"part_of_speech,omitempty"`
	Sentences    []string          `json:"sentences,omitempty"`
	AudioPath    string            `json:"audio_path"`
	Status       domain.ItemStatus `json:"status"`
	IsRecheck    bool              `json:"is_recheck"`
}

// Result reports the effect of one study submission.
type Result struct {
	ItemID     uuid.UUID         `json:"item_id"`
	Status     domain.ItemStatus `json:"status"`
	StudyCount int               `json:"study_count"`
	Message    string            `json:"message"`
}
