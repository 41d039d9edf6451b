// Package wordimport turns raw word lists into collections of learning
// items. The expensive part, translating unknown words, runs as a
// background task so the import request returns immediately.
package wordimport

import (
	"errors"

	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/domain"
)

// DefaultBatchSize bounds how many words go to the model in one
// translation call when no batch size is configured.
const DefaultBatchSize = 20

// ErrNoWords indicates an import request contained no usable words after
// normalization.
var ErrNoWords = errors.New("no words to import")

// ImportPayload carries a word import request through the task queue.
type ImportPayload struct {
	UserID       uuid.UUID `json:"user_id"`
	CollectionID uuid.UUID `json:"collection_id"`
	Words        []string  `json:"words"`
}

// normalizeWords lowercases, trims and deduplicates the raw input while
// preserving first-seen order. Blank entries are dropped.
func normalizeWords(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, w := range raw {
		normalized := domain.NormalizeWord(w)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, normalized)
	}
	return out
}
