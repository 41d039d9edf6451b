// Package exam orchestrates the review-exam lifecycle: availability
// checks, pool selection and partitioning, asynchronous content generation
// through the language model, and submission grading that reconciles
// results back into learning-item state.
package exam

import (
	"errors"

	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/domain"
)

// MinExamWords is the smallest eligible pool an exam may be generated from.
const MinExamWords = 10

// DefaultTargetCount is the selection size used when the caller does not
// specify one.
const DefaultTargetCount = 20

// sentenceCandidateMax caps how many selected words are offered to the
// model as sentence-generation candidates.
const sentenceCandidateMax = 10

// Exam orchestration errors.
var (
	// ErrInsufficientWords indicates the eligible pool is below MinExamWords.
	ErrInsufficientWords = errors.New("not enough eligible words for an exam")

	// ErrExamNotTerminal indicates a deletion attempt on an exam that is
	// still in flight.
	ErrExamNotTerminal = errors.New("exam is not in a terminal state")

	// ErrExamNotSubmittable indicates a submission for an exam that is not
	// in the generated state.
	ErrExamNotSubmittable = errors.New("exam is not awaiting submission")
)

// Submission carries one exam attempt. Spelling correctness is judged
// client-side, so the client reports only the item IDs it marked wrong;
// translation answers are graded server-side by the language model.
type Submission struct {
	WrongSpellingItemIDs []uuid.UUID         `json:"wrong_spelling_item_ids"`
	Translations         []TranslationAnswer `json:"translations"`
}

// TranslationAnswer is the learner's translation for one generated sentence.
type TranslationAnswer struct {
	SentenceID string `json:"sentence_id"`
	Answer     string `json:"answer"`
}

// Detail is an exam together with its question sections.
type Detail struct {
	Exam        *domain.Exam                   `json:"exam"`
	Spelling    []*domain.ExamSpellingEntry    `json:"spelling"`
	Translation []*domain.ExamTranslationEntry `json:"translation"`
}

// GenerationPayload is the background-task payload for exam generation.
// ItemIDs is non-empty only on the complete-mode partitioning path, where
// the item set was fixed up front.
type GenerationPayload struct {
	ExamID      uuid.UUID   `json:"exam_id"`
	TargetCount int         `json:"target_count"`
	ItemIDs     []uuid.UUID `json:"item_ids,omitempty"`
}

// GradingPayload is the background-task payload for exam grading.
type GradingPayload struct {
	ExamID     uuid.UUID  `json:"exam_id"`
	Submission Submission `json:"submission"`
}

// PartitionCount picks how many exams a complete-review pool of size n is
// split into. Larger mastery pools get more, smaller exams.
func PartitionCount(n int) int {
	switch {
	case n < 50:
		return 1
	case n < 150:
		return 2
	case n < 300:
		return 5
	default:
		return 10
	}
}

// Partition splits ids into k round-robin groups, so group sizes differ by
// at most one and every id lands in exactly one group.
func Partition(ids []uuid.UUID, k int) [][]uuid.UUID {
	if k < 1 {
		k = 1
	}
	groups := make([][]uuid.UUID, k)
	for i, id := range ids {
		groups[i%k] = append(groups[i%k], id)
	}
	return groups
}

// sentenceCountFor derives the requested sentence count from the number of
// candidate words: half the candidates, clamped to [3, 5].
func sentenceCountFor(candidates int) int {
	n := candidates / 2
	if n < 3 {
		return 3
	}
	if n > 5 {
		return 5
	}
	return n
}

// eligibleStatuses maps an exam mode to the item statuses its pool draws
// from.
func eligibleStatuses(mode domain.ExamMode) []domain.ItemStatus {
	switch mode {
	case domain.ExamModeImmediate:
		return []domain.ItemStatus{domain.StatusPendingReview}
	case domain.ExamModeRandom:
		return []domain.ItemStatus{domain.StatusPendingReview, domain.StatusMastered}
	case domain.ExamModeComplete:
		return []domain.ItemStatus{domain.StatusReviewPassed}
	default:
		return nil
	}
}
