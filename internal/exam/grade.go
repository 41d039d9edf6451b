package exam

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/domain"
	"github.com/wordpath/wordpath-api/internal/domain/progress"
	"github.com/wordpath/wordpath-api/internal/llm"
	"github.com/wordpath/wordpath-api/internal/platform/logger"
)

// gradingUnavailableFeedback is used when the model cannot judge an
// answer. Grading degrades to an incorrect verdict instead of failing the
// whole submission.
const gradingUnavailableFeedback = "The grading service was unavailable; this answer was marked incorrect."

// RunGrading executes the background grading work for one submitted exam:
// grade the translation answers, combine them with the client-judged
// spelling results, reconcile every exam item's status through the
// progress rules, and complete the exam. Per-sentence grading failures
// degrade to incorrect verdicts rather than aborting.
func (s *Service) RunGrading(ctx context.Context, payload GradingPayload) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("exam_id", payload.ExamID.String()))

	exam, err := s.exams.GetByID(ctx, payload.ExamID)
	if err != nil {
		return fmt.Errorf("failed to load exam for grading: %w", err)
	}

	// A retried delivery can arrive after grading already completed.
	if exam.Status != domain.ExamStatusGrading {
		log.Info("skipping grading for exam not in grading state",
			slog.String("status", string(exam.Status)))
		return nil
	}

	spelling, err := s.exams.ListSpellingEntries(ctx, exam.ID)
	if err != nil {
		return fmt.Errorf("failed to load spelling entries: %w", err)
	}
	translation, err := s.exams.ListTranslationEntries(ctx, exam.ID)
	if err != nil {
		return fmt.Errorf("failed to load translation entries: %w", err)
	}

	examItems := make(map[uuid.UUID]bool, len(spelling))
	for _, entry := range spelling {
		examItems[entry.ItemID] = true
	}

	failed := map[uuid.UUID]bool{}
	for _, id := range payload.Submission.WrongSpellingItemIDs {
		if examItems[id] {
			failed[id] = true
		}
	}

	verdicts := s.gradeTranslations(ctx, translation, payload.Submission.Translations)
	var feedback []string
	for _, v := range verdicts {
		mark := "correct"
		if !v.result.Correct {
			mark = "incorrect"
			for _, itemID := range v.entry.WordsInvolved {
				if examItems[itemID] {
					failed[itemID] = true
				}
			}
		}
		feedback = append(feedback,
			fmt.Sprintf("%q: %s. %s", v.entry.Sentence, mark, v.result.Feedback))
	}

	passed := make([]uuid.UUID, 0, len(examItems))
	failedIDs := make([]uuid.UUID, 0, len(failed))
	for id := range examItems {
		if failed[id] {
			failedIDs = append(failedIDs, id)
		} else {
			passed = append(passed, id)
		}
	}

	s.applyResults(ctx, exam, passed, failedIDs)

	if err := s.exams.MarkCompleted(ctx, exam.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark exam completed: %w", err)
	}

	body := fmt.Sprintf("Your %s review exam is graded: %d words, %d passed, %d failed.",
		exam.Mode, len(examItems), len(passed), len(failedIDs))
	if len(feedback) > 0 {
		body += "\n" + strings.Join(feedback, "\n")
	}
	s.notifier.Notify(ctx, exam.UserID, "Exam results", body)

	log.Info("exam graded",
		slog.Int("passed", len(passed)),
		slog.Int("failed", len(failedIDs)))
	return nil
}

// translationVerdict pairs a stored sentence with its grading result.
type translationVerdict struct {
	entry  *domain.ExamTranslationEntry
	result llm.GradeResult
}

// gradeTranslations grades the submitted answers against their stored
// sentences. Answers for unknown sentence IDs are ignored; answers the
// model failed to judge get the degraded incorrect verdict.
func (s *Service) gradeTranslations(
	ctx context.Context,
	entries []*domain.ExamTranslationEntry,
	answers []TranslationAnswer,
) []translationVerdict {
	log := logger.FromContextOrDefault(ctx, s.logger)

	entryByID := make(map[string]*domain.ExamTranslationEntry, len(entries))
	for _, entry := range entries {
		entryByID[entry.SentenceID] = entry
	}

	var submitted []*domain.ExamTranslationEntry
	answerByID := make(map[string]string, len(answers))
	for _, answer := range answers {
		entry, ok := entryByID[answer.SentenceID]
		if !ok {
			log.Warn("ignoring answer for unknown sentence",
				slog.String("sentence_id", answer.SentenceID))
			continue
		}
		submitted = append(submitted, entry)
		answerByID[entry.SentenceID] = answer.Answer
	}

	if len(submitted) == 0 {
		return nil
	}

	wordByItem := s.resolveInvolvedWords(ctx, submitted)

	submissions := make([]llm.TranslationSubmission, len(submitted))
	for i, entry := range submitted {
		required := make([]string, 0, len(entry.WordsInvolved))
		for _, itemID := range entry.WordsInvolved {
			if word, ok := wordByItem[itemID]; ok {
				required = append(required, word)
			}
		}
		submissions[i] = llm.TranslationSubmission{
			SentenceID:    entry.SentenceID,
			Sentence:      entry.Sentence,
			Answer:        answerByID[entry.SentenceID],
			RequiredWords: required,
		}
	}

	resultByID := map[string]llm.GradeResult{}
	results, err := s.grader.GradeTranslation(ctx, submissions)
	if err != nil {
		log.Warn("translation grading degraded to incorrect verdicts",
			slog.String("error", err.Error()))
	} else {
		for _, r := range results {
			resultByID[r.SentenceID] = r
		}
	}

	verdicts := make([]translationVerdict, 0, len(submitted))
	for _, entry := range submitted {
		result, ok := resultByID[entry.SentenceID]
		if !ok {
			result = llm.GradeResult{
				SentenceID: entry.SentenceID,
				Correct:    false,
				Feedback:   gradingUnavailableFeedback,
			}
		}
		verdicts = append(verdicts, translationVerdict{entry: entry, result: result})
	}

	return verdicts
}

// resolveInvolvedWords maps each involved item to its word's surface form,
// fetched in one batch. A lookup failure degrades to grading without the
// required words rather than failing the submission.
func (s *Service) resolveInvolvedWords(
	ctx context.Context,
	entries []*domain.ExamTranslationEntry,
) map[uuid.UUID]string {
	log := logger.FromContextOrDefault(ctx, s.logger)

	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, entry := range entries {
		for _, itemID := range entry.WordsInvolved {
			if !seen[itemID] {
				seen[itemID] = true
				ids = append(ids, itemID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	pairs, err := s.items.ListWithWordsByIDs(ctx, ids)
	if err != nil {
		log.Warn("failed to resolve involved words for grading",
			slog.String("error", err.Error()))
		return nil
	}

	words := make(map[uuid.UUID]string, len(pairs))
	for _, pair := range pairs {
		words[pair.Item.ID] = pair.Word.Text
	}
	return words
}

// applyResults reconciles every exam item's status: failed items are
// forced back to New, passed items advance per the exam mode. Individual
// item failures are logged and skipped so one bad row cannot hold the
// whole exam open.
func (s *Service) applyResults(ctx context.Context, exam *domain.Exam, passed, failed []uuid.UUID) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := time.Now().UTC()

	all := append(append([]uuid.UUID{}, passed...), failed...)
	pairs, err := s.items.ListWithWordsByIDs(ctx, all)
	if err != nil {
		log.Error("failed to load exam items for reconciliation",
			slog.String("error", err.Error()),
			slog.String("exam_id", exam.ID.String()))
		return
	}

	failedSet := make(map[uuid.UUID]bool, len(failed))
	for _, id := range failed {
		failedSet[id] = true
	}

	for _, pair := range pairs {
		item := pair.Item
		if item.UserID != exam.UserID {
			log.Warn("skipping item not owned by exam user",
				slog.String("item_id", item.ID.String()),
				slog.String("exam_id", exam.ID.String()))
			continue
		}

		if failedSet[item.ID] {
			progress.ApplyExamFailure(item, now)
		} else {
			progress.ApplyExamSuccess(item, exam.Mode, now)
		}

		if err := s.items.Update(ctx, item); err != nil {
			log.Error("failed to persist exam result for item",
				slog.String("error", err.Error()),
				slog.String("item_id", item.ID.String()))
		}
	}
}
