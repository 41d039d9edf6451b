package study

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/wordpath/wordpath-api/internal/domain"
	"github.com/wordpath/wordpath-api/internal/domain/progress"
	"github.com/wordpath/wordpath-api/internal/platform/logger"
	"github.com/wordpath/wordpath-api/internal/store"
)

// Service builds study sessions and records study outcomes.
type Service struct {
	collections store.CollectionStore
	items       store.ItemStore
	logger      *slog.Logger
}

// NewService creates a study service.
func NewService(collections store.CollectionStore, items store.ItemStore, logger *slog.Logger) *Service {
	if collections == nil {
		panic("collection store cannot be nil")
	}
	if items == nil {
		panic("item store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		collections: collections,
		items:       items,
		logger:      logger.With(slog.String("component", "study_service")),
	}
}

// BuildSession composes the ordered study queue for one pass over the
// collection. Returns store.ErrCollectionNotFound if the collection does
// not exist or belongs to another user.
func (s *Service) BuildSession(
	ctx context.Context,
	userID, collectionID uuid.UUID,
	mode Mode,
) ([]Entry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !mode.Valid() {
		return nil, ErrInvalidMode
	}

	if _, err := s.collections.GetForUser(ctx, collectionID, userID); err != nil {
		return nil, err
	}

	var entries []Entry
	var err error
	switch mode {
	case ModeNew:
		entries, err = s.buildNewSession(ctx, userID, collectionID)
	case ModeReview:
		entries, err = s.buildSampledSession(ctx, userID, collectionID, domain.StatusPendingReview, reviewSampleSize)
	case ModeRandom:
		entries, err = s.buildSampledSession(ctx, userID, collectionID, domain.StatusReviewPassed, randomSampleSize)
	case ModeFinal:
		entries, err = s.buildSampledSession(ctx, userID, collectionID, domain.StatusReviewPassed, finalSampleSize)
	}
	if err != nil {
		return nil, err
	}

	log.Info("study session built",
		slog.String("collection_id", collectionID.String()),
		slog.String("mode", string(mode)),
		slog.Int("entry_count", len(entries)))
	return entries, nil
}

// buildSampledSession covers the three single-pool modes: fetch, sample to
// the cap, randomize order.
func (s *Service) buildSampledSession(
	ctx context.Context,
	userID, collectionID uuid.UUID,
	status domain.ItemStatus,
	sampleSize int,
) ([]Entry, error) {
	pairs, err := s.items.ListWithWords(ctx, userID, collectionID, []domain.ItemStatus{status})
	if err != nil {
		return nil, fmt.Errorf("failed to load study pool: %w", err)
	}

	sampled := lo.Samples(pairs, sampleSize)
	return toEntries(sampled, false), nil
}

// buildNewSession interleaves a capped random sample of new items (pool A)
// with the full pending-check pool (pool B).
func (s *Service) buildNewSession(ctx context.Context, userID, collectionID uuid.UUID) ([]Entry, error) {
	newPairs, err := s.items.ListWithWords(ctx, userID, collectionID, []domain.ItemStatus{domain.StatusNew})
	if err != nil {
		return nil, fmt.Errorf("failed to load new items: %w", err)
	}

	recheckPairs, err := s.items.ListWithWords(ctx, userID, collectionID, []domain.ItemStatus{domain.StatusPendingCheck})
	if err != nil {
		return nil, fmt.Errorf("failed to load pending-check items: %w", err)
	}

	poolA := toEntries(lo.Samples(newPairs, newSampleSize), false)
	poolB := toEntries(lo.Shuffle(recheckPairs), true)

	return Interleave(poolA, poolB), nil
}

// Interleave merges the new-item queue A with the pending-check queue B:
//
//  1. If A has fewer than 3 items, all of A is emitted, then all of B.
//  2. Else if B has 1 or 2 items, B is emitted as one block right after the
//     3rd item of A.
//  3. Otherwise up to 3 B items are emitted after every 3rd A item and
//     after the final A item.
//
// Re-check items thereby surface spread through the batch rather than
// bunched at either end.
func Interleave(a, b []Entry) []Entry {
	out := make([]Entry, 0, len(a)+len(b))

	if len(a) < 3 {
		out = append(out, a...)
		out = append(out, b...)
		return out
	}

	if len(b) > 0 && len(b) < 3 {
		for i, entry := range a {
			out = append(out, entry)
			if i == 2 {
				out = append(out, b...)
			}
		}
		return out
	}

	bi := 0
	for i, entry := range a {
		out = append(out, entry)
		if (i+1)%3 == 0 || i == len(a)-1 {
			for n := 0; n < 3 && bi < len(b); n++ {
				out = append(out, b[bi])
				bi++
			}
		}
	}
	// B items beyond what the insertion points could absorb go at the end.
	out = append(out, b[bi:]...)

	return out
}

func toEntries(pairs []store.ItemWithWord, isRecheck bool) []Entry {
	entries := make([]Entry, len(pairs))
	for i, pair := range pairs {
		entries[i] = Entry{
			ItemID:       pair.Item.ID,
			WordID:       pair.Word.ID,
			Word:         pair.Word.Text,
			Meaning:      pair.Word.Content.Meaning,
			Phonetic:     pair.Word.Content.Phonetic,
			PartOfSpeech: pair.Word.Content.PartOfSpeech,
			Sentences:    pair.Word.Content.Sentences,
			AudioPath:    pair.Word.AudioPath(),
			Status:       pair.Item.Status,
			IsRecheck:    isRecheck,
		}
	}
	return entries
}

// SubmitOutcome applies one study result to the item and persists it.
// Returns domain.ErrUnauthorized if the item belongs to another user.
func (s *Service) SubmitOutcome(
	ctx context.Context,
	userID, itemID uuid.UUID,
	outcome Outcome,
) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !outcome.Valid() {
		return nil, ErrInvalidOutcome
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	var message string
	switch outcome {
	case OutcomeSkip:
		progress.ResetToNew(item, true)
		message = progress.MsgSkipped
	case OutcomeCorrect:
		message = progress.ApplyStudyOutcome(item, true, time.Now().UTC())
	case OutcomeIncorrect:
		message = progress.ApplyStudyOutcome(item, false, time.Now().UTC())
	}

	if err := s.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to persist study outcome: %w", err)
	}

	log.Debug("study outcome applied",
		slog.String("item_id", itemID.String()),
		slog.String("outcome", string(outcome)),
		slog.String("status", item.Status.String()))

	return &Result{
		ItemID:     item.ID,
		Status:     item.Status,
		StudyCount: item.StudyCount,
		Message:    message,
	}, nil
}
