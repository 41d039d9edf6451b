package exam

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/wordpath/wordpath-api/internal/domain"
	"github.com/wordpath/wordpath-api/internal/events"
	"github.com/wordpath/wordpath-api/internal/llm"
	"github.com/wordpath/wordpath-api/internal/notify"
	"github.com/wordpath/wordpath-api/internal/platform/logger"
	"github.com/wordpath/wordpath-api/internal/store"
)

// Exam statuses that claim items. A pending complete-mode exam already owns
// its partitioned item set, so its claims count before generation runs.
var (
	activeStatuses         = []domain.ExamStatus{domain.ExamStatusGenerated, domain.ExamStatusGrading}
	completeActiveStatuses = []domain.ExamStatus{domain.ExamStatusPending, domain.ExamStatusGenerated, domain.ExamStatusGrading}
)

// Service orchestrates the exam lifecycle. Synchronous entry points create
// and inspect exams; RunGeneration and RunGrading execute as background
// tasks dispatched through the event emitter.
type Service struct {
	exams       store.ExamStore
	items       store.ItemStore
	collections store.CollectionStore
	generator   llm.ExamGenerator
	grader      llm.Grader
	notifier    notify.Notifier
	emitter     events.EventEmitter
	logger      *slog.Logger
}

// NewService creates an exam service.
func NewService(
	exams store.ExamStore,
	items store.ItemStore,
	collections store.CollectionStore,
	generator llm.ExamGenerator,
	grader llm.Grader,
	notifier notify.Notifier,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *Service {
	if exams == nil || items == nil || collections == nil {
		panic("stores cannot be nil")
	}
	if generator == nil || grader == nil {
		panic("llm collaborators cannot be nil")
	}
	if notifier == nil {
		panic("notifier cannot be nil")
	}
	if emitter == nil {
		panic("event emitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		exams:       exams,
		items:       items,
		collections: collections,
		generator:   generator,
		grader:      grader,
		notifier:    notifier,
		emitter:     emitter,
		logger:      logger.With(slog.String("component", "exam_service")),
	}
}

// CheckAvailability reports how many items are currently eligible for a
// prospective exam in the given mode, after removing items claimed by the
// user's in-flight exams. Complete mode is additionally gated: one
// non-terminal complete exam per user at a time, and the whole collection
// must have reached review-passed.
func (s *Service) CheckAvailability(
	ctx context.Context,
	userID, collectionID uuid.UUID,
	mode domain.ExamMode,
) (int, error) {
	if !mode.Valid() {
		return 0, domain.ErrInvalidExamMode
	}

	if _, err := s.collections.GetForUser(ctx, collectionID, userID); err != nil {
		return 0, err
	}

	if mode == domain.ExamModeComplete {
		active, err := s.exams.HasActive(ctx, userID, domain.ExamModeComplete, completeActiveStatuses)
		if err != nil {
			return 0, fmt.Errorf("failed to check active complete exams: %w", err)
		}
		if active {
			return 0, nil
		}

		behind, err := s.items.CountBelowStatus(ctx, userID, collectionID, domain.StatusReviewPassed)
		if err != nil {
			return 0, fmt.Errorf("failed to count unfinished items: %w", err)
		}
		if behind > 0 {
			return 0, nil
		}
	}

	pool, err := s.items.ListWithWords(ctx, userID, collectionID, eligibleStatuses(mode))
	if err != nil {
		return 0, fmt.Errorf("failed to load eligible pool: %w", err)
	}

	claimed, err := s.claimedForAvailability(ctx, userID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, pair := range pool {
		if !claimed[pair.Item.ID] {
			count++
		}
	}
	return count, nil
}

// claimedForAvailability collects the item IDs owned by any of the user's
// in-flight exams, regardless of mode.
func (s *Service) claimedForAvailability(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	claimed := map[uuid.UUID]bool{}

	reviewClaims, err := s.exams.ListClaimedItemIDs(
		ctx, userID,
		[]domain.ExamMode{domain.ExamModeImmediate, domain.ExamModeRandom},
		activeStatuses, uuid.Nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list claimed items: %w", err)
	}
	for _, id := range reviewClaims {
		claimed[id] = true
	}

	completeClaims, err := s.exams.ListClaimedItemIDs(
		ctx, userID,
		[]domain.ExamMode{domain.ExamModeComplete},
		completeActiveStatuses, uuid.Nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list claimed items: %w", err)
	}
	for _, id := range completeClaims {
		claimed[id] = true
	}

	return claimed, nil
}

// claimedForSelection collects the item IDs the generation task must avoid.
// Immediate exams dodge claims from both immediate and random exams;
// random and complete exams only dodge their own mode. Complete mode's
// cross-mode safety comes from its single-flight gate instead.
func (s *Service) claimedForSelection(
	ctx context.Context,
	userID uuid.UUID,
	mode domain.ExamMode,
	excludeExamID uuid.UUID,
) (map[uuid.UUID]bool, error) {
	var modes []domain.ExamMode
	statuses := activeStatuses
	switch mode {
	case domain.ExamModeImmediate:
		modes = []domain.ExamMode{domain.ExamModeImmediate, domain.ExamModeRandom}
	case domain.ExamModeRandom:
		modes = []domain.ExamMode{domain.ExamModeRandom}
	case domain.ExamModeComplete:
		modes = []domain.ExamMode{domain.ExamModeComplete}
		statuses = completeActiveStatuses
	}

	ids, err := s.exams.ListClaimedItemIDs(ctx, userID, modes, statuses, excludeExamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claimed items: %w", err)
	}

	claimed := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		claimed[id] = true
	}
	return claimed, nil
}

// Generate creates the pending exam rows for the request and dispatches
// content generation to the background. Complete mode partitions the whole
// eligible pool into several exams; the other modes create exactly one.
// Returns ErrInsufficientWords when fewer than MinExamWords are eligible.
func (s *Service) Generate(
	ctx context.Context,
	userID, collectionID uuid.UUID,
	mode domain.ExamMode,
	targetCount int,
) ([]*domain.Exam, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !mode.Valid() {
		return nil, domain.ErrInvalidExamMode
	}
	if targetCount <= 0 {
		targetCount = DefaultTargetCount
	}

	available, err := s.CheckAvailability(ctx, userID, collectionID, mode)
	if err != nil {
		return nil, err
	}
	if available < MinExamWords {
		return nil, fmt.Errorf("%w: %d eligible, need at least %d",
			ErrInsufficientWords, available, MinExamWords)
	}

	if mode == domain.ExamModeComplete {
		return s.prepareCompleteExams(ctx, userID, collectionID)
	}

	exam, err := domain.NewExam(userID, collectionID, mode, targetCount)
	if err != nil {
		return nil, err
	}
	if err := s.exams.Create(ctx, exam); err != nil {
		return nil, err
	}

	if err := s.dispatchGeneration(ctx, exam, targetCount, nil); err != nil {
		return nil, err
	}

	log.Info("exam accepted for generation",
		slog.String("exam_id", exam.ID.String()),
		slog.String("mode", string(mode)))
	return []*domain.Exam{exam}, nil
}

// prepareCompleteExams partitions the full review-passed pool into
// near-equal pending exams, each carrying its explicit item set.
func (s *Service) prepareCompleteExams(
	ctx context.Context,
	userID, collectionID uuid.UUID,
) ([]*domain.Exam, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	pool, err := s.items.ListWithWords(ctx, userID, collectionID,
		[]domain.ItemStatus{domain.StatusReviewPassed})
	if err != nil {
		return nil, fmt.Errorf("failed to load complete-review pool: %w", err)
	}

	claimed, err := s.claimedForSelection(ctx, userID, domain.ExamModeComplete, uuid.Nil)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(pool))
	for _, pair := range pool {
		if !claimed[pair.Item.ID] {
			ids = append(ids, pair.Item.ID)
		}
	}
	if len(ids) < MinExamWords {
		return nil, fmt.Errorf("%w: %d eligible, need at least %d",
			ErrInsufficientWords, len(ids), MinExamWords)
	}

	ids = lo.Shuffle(ids)
	groups := Partition(ids, PartitionCount(len(ids)))

	exams := make([]*domain.Exam, 0, len(groups))
	for _, group := range groups {
		exam, err := domain.NewExam(userID, collectionID, domain.ExamModeComplete, len(group))
		if err != nil {
			return nil, err
		}
		if err := s.exams.Create(ctx, exam); err != nil {
			return nil, err
		}
		if err := s.dispatchGeneration(ctx, exam, len(group), group); err != nil {
			return nil, err
		}
		exams = append(exams, exam)
	}

	log.Info("complete review partitioned",
		slog.Int("pool_size", len(ids)),
		slog.Int("exam_count", len(exams)))
	return exams, nil
}

// dispatchGeneration emits the background generation event for a pending
// exam. If the event cannot be emitted the exam is marked failed so it
// never lingers as silently pending.
func (s *Service) dispatchGeneration(
	ctx context.Context,
	exam *domain.Exam,
	targetCount int,
	itemIDs []uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewTaskRequestEvent(events.TaskTypeExamGeneration, GenerationPayload{
		ExamID:      exam.ID,
		TargetCount: targetCount,
		ItemIDs:     itemIDs,
	})
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		log.Error("failed to dispatch exam generation",
			slog.String("error", err.Error()),
			slog.String("exam_id", exam.ID.String()))
		if markErr := s.exams.UpdateStatus(ctx, exam.ID, domain.ExamStatusFailed,
			"failed to schedule generation"); markErr != nil {
			log.Error("failed to mark undispatched exam failed",
				slog.String("error", markErr.Error()),
				slog.String("exam_id", exam.ID.String()))
		}
		return fmt.Errorf("failed to schedule exam generation: %w", err)
	}

	return nil
}

// Get returns an exam with its question sections, scoped to its owner.
func (s *Service) Get(ctx context.Context, userID, examID uuid.UUID) (*Detail, error) {
	exam, err := s.getOwned(ctx, userID, examID)
	if err != nil {
		return nil, err
	}

	spelling, err := s.exams.ListSpellingEntries(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to load spelling entries: %w", err)
	}
	translation, err := s.exams.ListTranslationEntries(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to load translation entries: %w", err)
	}

	return &Detail{Exam: exam, Spelling: spelling, Translation: translation}, nil
}

// List returns a page of the user's exams, optionally filtered by mode.
func (s *Service) List(
	ctx context.Context,
	userID uuid.UUID,
	mode *domain.ExamMode,
	offset, limit int,
) ([]*domain.Exam, int, error) {
	if mode != nil && !mode.Valid() {
		return nil, 0, domain.ErrInvalidExamMode
	}
	return s.exams.List(ctx, userID, mode, offset, limit)
}

// Submit accepts an exam attempt, marks the exam grading synchronously so
// concurrent reads see the in-progress state, and dispatches grading to
// the background.
func (s *Service) Submit(ctx context.Context, userID, examID uuid.UUID, sub Submission) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	exam, err := s.getOwned(ctx, userID, examID)
	if err != nil {
		return err
	}
	if !exam.Status.CanTransitionTo(domain.ExamStatusGrading) {
		return fmt.Errorf("%w: exam is %s", ErrExamNotSubmittable, exam.Status)
	}

	if err := s.exams.UpdateStatus(ctx, examID, domain.ExamStatusGrading, ""); err != nil {
		return fmt.Errorf("failed to mark exam grading: %w", err)
	}

	event, err := events.NewTaskRequestEvent(events.TaskTypeExamGrading, GradingPayload{
		ExamID:     examID,
		Submission: sub,
	})
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		log.Error("failed to dispatch exam grading",
			slog.String("error", err.Error()),
			slog.String("exam_id", examID.String()))
		// Put the exam back so the user can resubmit.
		if revertErr := s.exams.UpdateStatus(ctx, examID, domain.ExamStatusGenerated, ""); revertErr != nil {
			log.Error("failed to revert exam to generated",
				slog.String("error", revertErr.Error()),
				slog.String("exam_id", examID.String()))
		}
		return fmt.Errorf("failed to schedule exam grading: %w", err)
	}

	log.Info("exam submitted for grading", slog.String("exam_id", examID.String()))
	return nil
}

// Delete removes a terminal exam and its sections. In-flight exams cannot
// be deleted.
func (s *Service) Delete(ctx context.Context, userID, examID uuid.UUID) error {
	exam, err := s.getOwned(ctx, userID, examID)
	if err != nil {
		return err
	}
	if !exam.Status.Terminal() {
		return fmt.Errorf("%w: exam is %s", ErrExamNotTerminal, exam.Status)
	}

	return s.exams.Delete(ctx, examID)
}

// getOwned loads an exam scoped to its owner. Another user's exam is
// indistinguishable from a missing one.
func (s *Service) getOwned(ctx context.Context, userID, examID uuid.UUID) (*domain.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.UserID != userID {
		return nil, store.ErrExamNotFound
	}
	return exam, nil
}
