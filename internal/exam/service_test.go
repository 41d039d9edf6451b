package exam

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordpath/wordpath-api/internal/domain"
	"github.com/wordpath/wordpath-api/internal/events"
	"github.com/wordpath/wordpath-api/internal/llm"
	"github.com/wordpath/wordpath-api/internal/store"
)

// The fakes embed the store interfaces so only the methods a test exercises
// need implementations; an unexpected call panics and fails the test.

type fakeCollectionStore struct {
	store.CollectionStore
	collections map[uuid.UUID]*domain.Collection
}

func (f *fakeCollectionStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Collection, error) {
	c, ok := f.collections[id]
	if !ok || c.UserID != userID {
		return nil, store.ErrCollectionNotFound
	}
	return c, nil
}

type fakeItemStore struct {
	store.ItemStore
	pairs   []store.ItemWithWord
	updated map[uuid.UUID]*domain.LearningItem
}

func (f *fakeItemStore) ListWithWords(
	ctx context.Context,
	userID, collectionID uuid.UUID,
	statuses []domain.ItemStatus,
) ([]store.ItemWithWord, error) {
	wanted := map[domain.ItemStatus]bool{}
	for _, st := range statuses {
		wanted[st] = true
	}
	out := []store.ItemWithWord{}
	for _, pair := range f.pairs {
		if pair.Item.UserID == userID && pair.Item.CollectionID == collectionID && wanted[pair.Item.Status] {
			out = append(out, pair)
		}
	}
	return out, nil
}

func (f *fakeItemStore) ListWithWordsByIDs(ctx context.Context, ids []uuid.UUID) ([]store.ItemWithWord, error) {
	wanted := map[uuid.UUID]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	out := []store.ItemWithWord{}
	for _, pair := range f.pairs {
		if wanted[pair.Item.ID] {
			out = append(out, pair)
		}
	}
	return out, nil
}

func (f *fakeItemStore) CountBelowStatus(
	ctx context.Context,
	userID, collectionID uuid.UUID,
	status domain.ItemStatus,
) (int, error) {
	count := 0
	for _, pair := range f.pairs {
		if pair.Item.UserID == userID && pair.Item.CollectionID == collectionID && pair.Item.Status < status {
			count++
		}
	}
	return count, nil
}

func (f *fakeItemStore) Update(ctx context.Context, item *domain.LearningItem) error {
	if f.updated == nil {
		f.updated = map[uuid.UUID]*domain.LearningItem{}
	}
	f.updated[item.ID] = item
	return nil
}

type fakeExamStore struct {
	store.ExamStore
	exams       map[uuid.UUID]*domain.Exam
	spelling    map[uuid.UUID][]*domain.ExamSpellingEntry
	translation map[uuid.UUID][]*domain.ExamTranslationEntry
	active      bool
	claimed     []uuid.UUID
}

func newFakeExamStore() *fakeExamStore {
	return &fakeExamStore{
		exams:       map[uuid.UUID]*domain.Exam{},
		spelling:    map[uuid.UUID][]*domain.ExamSpellingEntry{},
		translation: map[uuid.UUID][]*domain.ExamTranslationEntry{},
	}
}

func (f *fakeExamStore) Create(ctx context.Context, exam *domain.Exam) error {
	f.exams[exam.ID] = exam
	return nil
}

func (f *fakeExamStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Exam, error) {
	exam, ok := f.exams[id]
	if !ok {
		return nil, store.ErrExamNotFound
	}
	copied := *exam
	return &copied, nil
}

func (f *fakeExamStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ExamStatus, generationError string) error {
	exam, ok := f.exams[id]
	if !ok {
		return store.ErrExamNotFound
	}
	exam.Status = status
	exam.GenerationError = generationError
	return nil
}

func (f *fakeExamStore) MarkGenerated(ctx context.Context, id uuid.UUID, spellingCount, translationCount int) error {
	exam, ok := f.exams[id]
	if !ok {
		return store.ErrExamNotFound
	}
	exam.Status = domain.ExamStatusGenerated
	exam.SpellingWordsCount = spellingCount
	exam.TranslationSentencesCount = translationCount
	return nil
}

func (f *fakeExamStore) MarkCompleted(ctx context.Context, id uuid.UUID, completedAt time.Time) error {
	exam, ok := f.exams[id]
	if !ok {
		return store.ErrExamNotFound
	}
	exam.Status = domain.ExamStatusCompleted
	exam.CompletedAt = &completedAt
	return nil
}

func (f *fakeExamStore) CreateSpellingEntries(ctx context.Context, entries []*domain.ExamSpellingEntry) error {
	for _, entry := range entries {
		f.spelling[entry.ExamID] = append(f.spelling[entry.ExamID], entry)
	}
	return nil
}

func (f *fakeExamStore) CreateTranslationEntries(ctx context.Context, entries []*domain.ExamTranslationEntry) error {
	for _, entry := range entries {
		f.translation[entry.ExamID] = append(f.translation[entry.ExamID], entry)
	}
	return nil
}

func (f *fakeExamStore) ListSpellingEntries(ctx context.Context, examID uuid.UUID) ([]*domain.ExamSpellingEntry, error) {
	return f.spelling[examID], nil
}

func (f *fakeExamStore) ListTranslationEntries(ctx context.Context, examID uuid.UUID) ([]*domain.ExamTranslationEntry, error) {
	return f.translation[examID], nil
}

func (f *fakeExamStore) HasActive(ctx context.Context, userID uuid.UUID, mode domain.ExamMode, statuses []domain.ExamStatus) (bool, error) {
	return f.active, nil
}

func (f *fakeExamStore) ListClaimedItemIDs(
	ctx context.Context,
	userID uuid.UUID,
	modes []domain.ExamMode,
	statuses []domain.ExamStatus,
	excludeExamID uuid.UUID,
) ([]uuid.UUID, error) {
	return f.claimed, nil
}

type fakeGenerator struct {
	sentences []llm.ExamSentence
	err       error
}

func (f *fakeGenerator) GenerateExamSentences(ctx context.Context, words []string, sentenceCount int) ([]llm.ExamSentence, error) {
	return f.sentences, f.err
}

type fakeGrader struct {
	results     []llm.GradeResult
	err         error
	submissions []llm.TranslationSubmission
}

func (f *fakeGrader) GradeTranslation(ctx context.Context, submissions []llm.TranslationSubmission) ([]llm.GradeResult, error) {
	f.submissions = append(f.submissions, submissions...)
	return f.results, f.err
}

type fakeNotifier struct {
	titles []string
}

func (f *fakeNotifier) Notify(ctx context.Context, userID uuid.UUID, title, body string) {
	f.titles = append(f.titles, title)
}

type fakeEmitter struct {
	events []*events.TaskRequestEvent
}

func (f *fakeEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fixture struct {
	service     *Service
	collections *fakeCollectionStore
	items       *fakeItemStore
	exams       *fakeExamStore
	generator   *fakeGenerator
	grader      *fakeGrader
	notifier    *fakeNotifier
	emitter     *fakeEmitter
	userID      uuid.UUID
	collection  *domain.Collection
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	userID := uuid.New()
	collection, err := domain.NewCollection(userID, "cet-4", "")
	require.NoError(t, err)

	f := &fixture{
		collections: &fakeCollectionStore{collections: map[uuid.UUID]*domain.Collection{collection.ID: collection}},
		items:       &fakeItemStore{},
		exams:       newFakeExamStore(),
		generator:   &fakeGenerator{},
		grader:      &fakeGrader{},
		notifier:    &fakeNotifier{},
		emitter:     &fakeEmitter{},
		userID:      userID,
		collection:  collection,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = NewService(
		f.exams, f.items, f.collections,
		f.generator, f.grader, f.notifier, f.emitter, logger,
	)
	return f
}

func (f *fixture) addItems(t *testing.T, n int, status domain.ItemStatus) []store.ItemWithWord {
	t.Helper()

	added := make([]store.ItemWithWord, 0, n)
	for i := 0; i < n; i++ {
		word, err := domain.NewWord(uuid.NewString(), domain.WordContent{Meaning: "meaning"})
		require.NoError(t, err)
		item, err := domain.NewLearningItem(f.userID, f.collection.ID, word.ID)
		require.NoError(t, err)
		item.Status = status
		pair := store.ItemWithWord{Item: item, Word: word}
		f.items.pairs = append(f.items.pairs, pair)
		added = append(added, pair)
	}
	return added
}

func TestCheckAvailabilityCompleteRequiresWholeCollection(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addItems(t, 12, domain.StatusReviewPassed)
	f.addItems(t, 1, domain.StatusNew)

	count, err := f.service.CheckAvailability(
		context.Background(), f.userID, f.collection.ID, domain.ExamModeComplete)
	require.NoError(t, err)
	assert.Zero(t, count, "one unfinished item must gate complete review")
}

func TestCheckAvailabilityCompleteSingleFlight(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addItems(t, 12, domain.StatusReviewPassed)
	f.exams.active = true

	count, err := f.service.CheckAvailability(
		context.Background(), f.userID, f.collection.ID, domain.ExamModeComplete)
	require.NoError(t, err)
	assert.Zero(t, count, "an in-flight complete exam must gate further ones")
}

func TestCheckAvailabilityExcludesClaimedItems(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	pairs := f.addItems(t, 12, domain.StatusPendingReview)
	f.exams.claimed = []uuid.UUID{pairs[0].Item.ID, pairs[1].Item.ID}

	count, err := f.service.CheckAvailability(
		context.Background(), f.userID, f.collection.ID, domain.ExamModeImmediate)
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestGenerateRejectsSmallPool(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addItems(t, 9, domain.StatusPendingReview)

	_, err := f.service.Generate(
		context.Background(), f.userID, f.collection.ID, domain.ExamModeImmediate, 20)
	assert.ErrorIs(t, err, ErrInsufficientWords)
	assert.Empty(t, f.emitter.events, "no task may be dispatched for a rejected exam")
}

func TestGenerateDispatchesPendingExam(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addItems(t, 15, domain.StatusPendingReview)

	exams, err := f.service.Generate(
		context.Background(), f.userID, f.collection.ID, domain.ExamModeImmediate, 20)
	require.NoError(t, err)
	require.Len(t, exams, 1)

	assert.Equal(t, domain.ExamStatusPending, exams[0].Status)
	require.Len(t, f.emitter.events, 1)
	assert.Equal(t, events.TaskTypeExamGeneration, f.emitter.events[0].Type)
}

func TestRunGenerationCapsSelectionToPool(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addItems(t, 12, domain.StatusPendingReview)
	f.generator.sentences = []llm.ExamSentence{
		{Sentence: "An example sentence.", WordsInvolved: nil},
	}

	exam, err := domain.NewExam(f.userID, f.collection.ID, domain.ExamModeImmediate, 20)
	require.NoError(t, err)
	require.NoError(t, f.exams.Create(context.Background(), exam))

	err = f.service.RunGeneration(context.Background(), GenerationPayload{
		ExamID:      exam.ID,
		TargetCount: 20,
	})
	require.NoError(t, err)

	stored := f.exams.exams[exam.ID]
	assert.Equal(t, domain.ExamStatusGenerated, stored.Status)
	assert.Equal(t, 12, stored.SpellingWordsCount, "selection is capped by the pool, not the target")
	assert.Len(t, f.exams.spelling[exam.ID], 12)
	assert.Contains(t, f.notifier.titles, "Exam ready")
}

func TestRunGenerationIsNoOpForNonPendingExam(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	exam, err := domain.NewExam(f.userID, f.collection.ID, domain.ExamModeImmediate, 20)
	require.NoError(t, err)
	exam.Status = domain.ExamStatusGenerated
	require.NoError(t, f.exams.Create(context.Background(), exam))

	err = f.service.RunGeneration(context.Background(), GenerationPayload{ExamID: exam.ID})
	require.NoError(t, err)

	assert.Empty(t, f.exams.spelling[exam.ID], "re-running generation must not create entries")
	assert.Empty(t, f.notifier.titles)
}

func TestRunGenerationFailsExamWhenModelFails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addItems(t, 12, domain.StatusPendingReview)
	f.generator.err = llm.ErrUnavailable

	exam, err := domain.NewExam(f.userID, f.collection.ID, domain.ExamModeImmediate, 20)
	require.NoError(t, err)
	require.NoError(t, f.exams.Create(context.Background(), exam))

	err = f.service.RunGeneration(context.Background(), GenerationPayload{ExamID: exam.ID})
	require.NoError(t, err, "model failures are recorded, not propagated")

	stored := f.exams.exams[exam.ID]
	assert.Equal(t, domain.ExamStatusFailed, stored.Status)
	assert.NotEmpty(t, stored.GenerationError)
	assert.Contains(t, f.notifier.titles, "Exam generation failed")
}

func TestRunGradingPartitionsPassedAndFailed(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	pairs := f.addItems(t, 5, domain.StatusPendingReview)

	exam, err := domain.NewExam(f.userID, f.collection.ID, domain.ExamModeImmediate, 5)
	require.NoError(t, err)
	exam.Status = domain.ExamStatusGrading
	require.NoError(t, f.exams.Create(context.Background(), exam))

	spelling := make([]*domain.ExamSpellingEntry, len(pairs))
	for i, pair := range pairs {
		spelling[i] = domain.NewExamSpellingEntry(
			exam.ID, pair.Word.ID, pair.Item.ID, pair.Word.Content.Meaning, pair.Word.Text)
	}
	require.NoError(t, f.exams.CreateSpellingEntries(context.Background(), spelling))

	// One sentence involving the 5th item, graded incorrect.
	entry := domain.NewExamTranslationEntry(
		exam.ID, "sent_1", "A sentence.", []uuid.UUID{pairs[4].Item.ID})
	require.NoError(t, f.exams.CreateTranslationEntries(
		context.Background(), []*domain.ExamTranslationEntry{entry}))
	f.grader.results = []llm.GradeResult{
		{SentenceID: "sent_1", Correct: false, Feedback: "missing the key word"},
	}

	err = f.service.RunGrading(context.Background(), GradingPayload{
		ExamID: exam.ID,
		Submission: Submission{
			WrongSpellingItemIDs: []uuid.UUID{pairs[0].Item.ID, pairs[1].Item.ID},
			Translations:         []TranslationAnswer{{SentenceID: "sent_1", Answer: "某个句子"}},
		},
	})
	require.NoError(t, err)

	stored := f.exams.exams[exam.ID]
	assert.Equal(t, domain.ExamStatusCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)

	// Items 0, 1 and 4 failed; items 2 and 3 passed.
	for _, i := range []int{0, 1, 4} {
		item := f.items.updated[pairs[i].Item.ID]
		require.NotNil(t, item, "failed item %d must be persisted", i)
		assert.Equal(t, domain.StatusNew, item.Status)
		assert.Equal(t, 1, item.FailCount)
	}
	for _, i := range []int{2, 3} {
		item := f.items.updated[pairs[i].Item.ID]
		require.NotNil(t, item, "passed item %d must be persisted", i)
		assert.Equal(t, domain.StatusReviewPassed, item.Status)
	}
	assert.Contains(t, f.notifier.titles, "Exam results")
}

func TestRunGradingSendsRequiredWordsToGrader(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	pairs := f.addItems(t, 2, domain.StatusPendingReview)

	exam, err := domain.NewExam(f.userID, f.collection.ID, domain.ExamModeImmediate, 2)
	require.NoError(t, err)
	exam.Status = domain.ExamStatusGrading
	require.NoError(t, f.exams.Create(context.Background(), exam))

	entry := domain.NewExamTranslationEntry(
		exam.ID, "sent_1", "A sentence.",
		[]uuid.UUID{pairs[0].Item.ID, pairs[1].Item.ID})
	require.NoError(t, f.exams.CreateTranslationEntries(
		context.Background(), []*domain.ExamTranslationEntry{entry}))
	f.grader.results = []llm.GradeResult{
		{SentenceID: "sent_1", Correct: true, Feedback: "很好"},
	}

	err = f.service.RunGrading(context.Background(), GradingPayload{
		ExamID: exam.ID,
		Submission: Submission{
			Translations: []TranslationAnswer{{SentenceID: "sent_1", Answer: "某个句子"}},
		},
	})
	require.NoError(t, err)

	require.Len(t, f.grader.submissions, 1)
	sub := f.grader.submissions[0]
	assert.Equal(t, "A sentence.", sub.Sentence)
	assert.ElementsMatch(t,
		[]string{pairs[0].Word.Text, pairs[1].Word.Text},
		sub.RequiredWords,
		"the grader must see the surface forms of every involved word")
}

func TestRunGradingDegradesWhenGraderFails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	pairs := f.addItems(t, 5, domain.StatusPendingReview)

	exam, err := domain.NewExam(f.userID, f.collection.ID, domain.ExamModeImmediate, 5)
	require.NoError(t, err)
	exam.Status = domain.ExamStatusGrading
	require.NoError(t, f.exams.Create(context.Background(), exam))

	spelling := make([]*domain.ExamSpellingEntry, len(pairs))
	for i, pair := range pairs {
		spelling[i] = domain.NewExamSpellingEntry(
			exam.ID, pair.Word.ID, pair.Item.ID, pair.Word.Content.Meaning, pair.Word.Text)
	}
	require.NoError(t, f.exams.CreateSpellingEntries(context.Background(), spelling))

	entry := domain.NewExamTranslationEntry(
		exam.ID, "sent_1", "A sentence.", []uuid.UUID{pairs[0].Item.ID})
	require.NoError(t, f.exams.CreateTranslationEntries(
		context.Background(), []*domain.ExamTranslationEntry{entry}))
	f.grader.err = llm.ErrUnavailable

	err = f.service.RunGrading(context.Background(), GradingPayload{
		ExamID: exam.ID,
		Submission: Submission{
			Translations: []TranslationAnswer{{SentenceID: "sent_1", Answer: "某个句子"}},
		},
	})
	require.NoError(t, err, "grading failures degrade instead of aborting")

	assert.Equal(t, domain.ExamStatusCompleted, f.exams.exams[exam.ID].Status)
	item := f.items.updated[pairs[0].Item.ID]
	require.NotNil(t, item)
	assert.Equal(t, domain.StatusNew, item.Status, "ungradeable answers count as incorrect")
}

func TestDeleteRequiresTerminalState(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	exam, err := domain.NewExam(f.userID, f.collection.ID, domain.ExamModeImmediate, 5)
	require.NoError(t, err)
	exam.Status = domain.ExamStatusGenerated
	require.NoError(t, f.exams.Create(context.Background(), exam))

	err = f.service.Delete(context.Background(), f.userID, exam.ID)
	assert.ErrorIs(t, err, ErrExamNotTerminal)
}

func TestSubmitRejectsWrongOwner(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	exam, err := domain.NewExam(f.userID, f.collection.ID, domain.ExamModeImmediate, 5)
	require.NoError(t, err)
	exam.Status = domain.ExamStatusGenerated
	require.NoError(t, f.exams.Create(context.Background(), exam))

	err = f.service.Submit(context.Background(), uuid.New(), exam.ID, Submission{})
	assert.ErrorIs(t, err, store.ErrExamNotFound)
}
