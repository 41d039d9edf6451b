package exam

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/wordpath/wordpath-api/internal/domain"
	"github.com/wordpath/wordpath-api/internal/platform/logger"
	"github.com/wordpath/wordpath-api/internal/store"
)

// RunGeneration executes the background generation work for one pending
// exam: select the item set, persist the spelling section, ask the model
// for translation sentences, persist that section, and flip the exam to
// generated. Failures are written to the exam row and notified, never
// propagated; the returned error only reports infrastructure problems the
// task runner should record.
func (s *Service) RunGeneration(ctx context.Context, payload GenerationPayload) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("exam_id", payload.ExamID.String()))

	exam, err := s.exams.GetByID(ctx, payload.ExamID)
	if err != nil {
		return fmt.Errorf("failed to load exam for generation: %w", err)
	}

	// At-least-once delivery means a retry can see an exam that already
	// made it past pending. Re-running generation then must be a no-op.
	if exam.Status != domain.ExamStatusPending {
		log.Info("skipping generation for non-pending exam",
			slog.String("status", string(exam.Status)))
		return nil
	}

	selected, err := s.selectItems(ctx, exam, payload)
	if err != nil {
		s.failExam(ctx, exam, fmt.Sprintf("selection failed: %v", err))
		return nil
	}
	if len(selected) == 0 {
		s.failExam(ctx, exam, "no eligible words could be selected")
		return nil
	}

	spelling := make([]*domain.ExamSpellingEntry, len(selected))
	for i, pair := range selected {
		spelling[i] = domain.NewExamSpellingEntry(
			exam.ID, pair.Word.ID, pair.Item.ID,
			pair.Word.Content.Meaning, pair.Word.Text,
		)
	}
	if err := s.exams.CreateSpellingEntries(ctx, spelling); err != nil {
		s.failExam(ctx, exam, fmt.Sprintf("failed to persist spelling section: %v", err))
		return nil
	}

	translation, err := s.generateTranslationSection(ctx, exam, selected)
	if err != nil {
		s.failExam(ctx, exam, fmt.Sprintf("sentence generation failed: %v", err))
		return nil
	}
	if err := s.exams.CreateTranslationEntries(ctx, translation); err != nil {
		s.failExam(ctx, exam, fmt.Sprintf("failed to persist translation section: %v", err))
		return nil
	}

	if err := s.exams.MarkGenerated(ctx, exam.ID, len(spelling), len(translation)); err != nil {
		return fmt.Errorf("failed to mark exam generated: %w", err)
	}

	s.notifier.Notify(ctx, exam.UserID, "Exam ready",
		fmt.Sprintf("Your %s review exam is ready: %d spelling words and %d translation sentences.",
			exam.Mode, len(spelling), len(translation)))

	log.Info("exam generated",
		slog.Int("spelling_count", len(spelling)),
		slog.Int("translation_count", len(translation)))
	return nil
}

// selectItems derives the exam's item set. A payload with explicit item
// IDs (the complete-mode partitioning path) bypasses the mode predicate;
// otherwise the pool is re-derived, claimed items are excluded, and the
// mode's ordering rule is applied.
func (s *Service) selectItems(
	ctx context.Context,
	exam *domain.Exam,
	payload GenerationPayload,
) ([]store.ItemWithWord, error) {
	if len(payload.ItemIDs) > 0 {
		return s.items.ListWithWordsByIDs(ctx, payload.ItemIDs)
	}

	pool, err := s.items.ListWithWords(ctx, exam.UserID, exam.CollectionID, eligibleStatuses(exam.Mode))
	if err != nil {
		return nil, fmt.Errorf("failed to load eligible pool: %w", err)
	}

	claimed, err := s.claimedForSelection(ctx, exam.UserID, exam.Mode, exam.ID)
	if err != nil {
		return nil, err
	}

	eligible := pool[:0:0]
	for _, pair := range pool {
		if !claimed[pair.Item.ID] {
			eligible = append(eligible, pair)
		}
	}

	target := payload.TargetCount
	if target <= 0 {
		target = DefaultTargetCount
	}

	if exam.Mode == domain.ExamModeImmediate {
		// Most recently studied first. Items that were never reviewed
		// sort last.
		sort.SliceStable(eligible, func(i, j int) bool {
			ti, tj := eligible[i].Item.LastReviewTime, eligible[j].Item.LastReviewTime
			switch {
			case ti == nil:
				return false
			case tj == nil:
				return true
			default:
				return ti.After(*tj)
			}
		})
		if len(eligible) > target {
			eligible = eligible[:target]
		}
		return eligible, nil
	}

	return lo.Samples(eligible, target), nil
}

// generateTranslationSection asks the model for exam sentences over a
// random subset of the selected words and resolves each sentence's words
// back to the learning items chosen for this exam.
func (s *Service) generateTranslationSection(
	ctx context.Context,
	exam *domain.Exam,
	selected []store.ItemWithWord,
) ([]*domain.ExamTranslationEntry, error) {
	candidates := lo.Samples(selected, sentenceCandidateMax)
	words := make([]string, len(candidates))
	for i, pair := range candidates {
		words[i] = pair.Word.Text
	}

	sentences, err := s.generator.GenerateExamSentences(ctx, words, sentenceCountFor(len(candidates)))
	if err != nil {
		return nil, err
	}

	// Case-insensitive surface form to item ID, first match wins.
	itemByWord := make(map[string]uuid.UUID, len(selected))
	for _, pair := range selected {
		key := strings.ToLower(pair.Word.Text)
		if _, exists := itemByWord[key]; !exists {
			itemByWord[key] = pair.Item.ID
		}
	}

	entries := make([]*domain.ExamTranslationEntry, 0, len(sentences))
	for i, sentence := range sentences {
		involved := make([]uuid.UUID, 0, len(sentence.WordsInvolved))
		for _, w := range sentence.WordsInvolved {
			if itemID, ok := itemByWord[strings.ToLower(strings.TrimSpace(w))]; ok {
				involved = append(involved, itemID)
			}
		}

		sentenceID := fmt.Sprintf("sent_%s_%d", exam.ID, i+1)
		entries = append(entries, domain.NewExamTranslationEntry(
			exam.ID, sentenceID, sentence.Sentence, involved,
		))
	}

	return entries, nil
}

// failExam records a generation failure on the exam row and notifies the
// owner. The background task has no caller left to report to.
func (s *Service) failExam(ctx context.Context, exam *domain.Exam, reason string) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Error("exam generation failed",
		slog.String("exam_id", exam.ID.String()),
		slog.String("reason", reason))

	if err := s.exams.UpdateStatus(ctx, exam.ID, domain.ExamStatusFailed, reason); err != nil {
		log.Error("failed to mark exam failed",
			slog.String("error", err.Error()),
			slog.String("exam_id", exam.ID.String()))
	}

	s.notifier.Notify(ctx, exam.UserID, "Exam generation failed",
		fmt.Sprintf("Your %s review exam could not be generated: %s", exam.Mode, reason))
}
