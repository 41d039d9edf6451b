package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Word validation errors.
var (
	ErrWordIDEmpty   = errors.New("word ID cannot be empty")
	ErrWordTextEmpty = errors.New("word text cannot be empty")
)

// WordContent holds the dictionary payload for a word. It is stored as a
// JSONB column so the shape can grow without migrations.
type WordContent struct {
	Meaning      string   `json:"meaning"`
	Phonetic     string   `json:"phonetic,omitempty"`
	PartOfSpeech string   `json:"part_of_speech,omitempty"`
	Sentences    []string `json:"sentences,omitempty"`
}

// Word is a globally shared vocabulary entry. The surface form is unique;
// users reference words through their own learning items and never own the
// word row itself.
type Word struct {
	ID        uuid.UUID   `json:"id"`
	Text      string      `json:"word"`
	Content   WordContent `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewWord creates a word with a normalized (lowercased, trimmed) surface form.
func NewWord(text string, content WordContent) (*Word, error) {
	word := &Word{
		ID:        uuid.New(),
		Text:      NormalizeWord(text),
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := word.Validate(); err != nil {
		return nil, err
	}

	return word, nil
}

// Validate checks the word's identity and surface form.
func (w *Word) Validate() error {
	if w.ID == uuid.Nil {
		return ErrWordIDEmpty
	}
	if w.Text == "" {
		return ErrWordTextEmpty
	}
	return nil
}

// AudioPath returns the audio-resource reference for the word, by the
// /audio/{word} convention.
func (w *Word) AudioPath() string {
	return "/audio/" + w.Text
}

// NormalizeWord lowercases and trims a surface form so that comparisons and
// dedup are case- and whitespace-insensitive.
func NormalizeWord(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
