package wordimport

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/domain"
	"github.com/wordpath/wordpath-api/internal/events"
	"github.com/wordpath/wordpath-api/internal/llm"
	"github.com/wordpath/wordpath-api/internal/notify"
	"github.com/wordpath/wordpath-api/internal/platform/logger"
	"github.com/wordpath/wordpath-api/internal/store"
)

// Service owns collection management and the word import pipeline.
type Service struct {
	db          *sql.DB
	words       store.WordStore
	items       store.ItemStore
	collections store.CollectionStore
	translator  llm.Translator
	notifier    notify.Notifier
	emitter     events.EventEmitter
	batchSize   int
	logger      *slog.Logger
}

// NewService creates a word import service. Panics if any dependency is nil.
func NewService(
	db *sql.DB,
	words store.WordStore,
	items store.ItemStore,
	collections store.CollectionStore,
	translator llm.Translator,
	notifier notify.Notifier,
	emitter events.EventEmitter,
	batchSize int,
	log *slog.Logger,
) *Service {
	if db == nil {
		panic("db cannot be nil")
	}
	if words == nil {
		panic("words cannot be nil")
	}
	if items == nil {
		panic("items cannot be nil")
	}
	if collections == nil {
		panic("collections cannot be nil")
	}
	if translator == nil {
		panic("translator cannot be nil")
	}
	if notifier == nil {
		panic("notifier cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &Service{
		db:          db,
		words:       words,
		items:       items,
		collections: collections,
		translator:  translator,
		notifier:    notifier,
		emitter:     emitter,
		batchSize:   batchSize,
		logger:      log.With(slog.String("component", "wordimport_service")),
	}
}

// CreateCollection creates an empty word collection for the user.
func (s *Service) CreateCollection(
	ctx context.Context,
	userID uuid.UUID,
	name, description string,
) (*domain.Collection, error) {
	collection, err := domain.NewCollection(userID, name, description)
	if err != nil {
		return nil, err
	}

	if err := s.collections.Create(ctx, collection); err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	return collection, nil
}

// ListCollections returns all of the user's collections, newest first.
func (s *Service) ListCollections(ctx context.Context, userID uuid.UUID) ([]*domain.Collection, error) {
	return s.collections.ListByUser(ctx, userID)
}

// GetCollection returns one of the user's collections.
func (s *Service) GetCollection(ctx context.Context, userID, collectionID uuid.UUID) (*domain.Collection, error) {
	return s.collections.GetForUser(ctx, collectionID, userID)
}

// StartImport validates the request and schedules the import as a
// background task. Translation happens off the request path.
func (s *Service) StartImport(
	ctx context.Context,
	userID, collectionID uuid.UUID,
	rawWords []string,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.collections.GetForUser(ctx, collectionID, userID); err != nil {
		return 0, err
	}

	normalized := normalizeWords(rawWords)
	if len(normalized) == 0 {
		return 0, ErrNoWords
	}

	event, err := events.NewTaskRequestEvent(events.TaskTypeWordImport, ImportPayload{
		UserID:       userID,
		CollectionID: collectionID,
		Words:        normalized,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create import event: %w", err)
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		return 0, fmt.Errorf("failed to schedule import: %w", err)
	}

	log.Info("word import scheduled",
		slog.String("collection_id", collectionID.String()),
		slog.Int("word_count", len(normalized)))

	return len(normalized), nil
}

// RunImport executes the background import work: resolve each word
// against the shared word bank, translate the unknown ones, create
// learning items for words not yet in the collection, and notify the
// owner with the outcome. Words the model cannot translate are skipped,
// never fatal.
func (s *Service) RunImport(ctx context.Context, payload ImportPayload) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("collection_id", payload.CollectionID.String()))

	texts := normalizeWords(payload.Words)
	if len(texts) == 0 {
		log.Warn("import payload contained no words")
		return nil
	}

	resolved, skipped, err := s.resolveWords(ctx, texts)
	if err != nil {
		return err
	}

	created, reused, err := s.createItems(ctx, payload.UserID, payload.CollectionID, resolved)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Imported %d new words into your collection.", created)
	if reused > 0 {
		body += fmt.Sprintf(" %d words were already in it.", reused)
	}
	if len(skipped) > 0 {
		body += fmt.Sprintf(" %d words could not be translated: %v.", len(skipped), skipped)
	}
	s.notifier.Notify(ctx, payload.UserID, "Word import finished", body)

	log.Info("word import finished",
		slog.Int("created", created),
		slog.Int("reused", reused),
		slog.Int("skipped", len(skipped)))
	return nil
}

// resolveWords maps every input surface form to a word row, creating rows
// for words the bank has never seen. Returns the resolved words and the
// surface forms that could not be translated.
func (s *Service) resolveWords(ctx context.Context, texts []string) ([]*domain.Word, []string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	existing, err := s.words.ListByTexts(ctx, texts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up existing words: %w", err)
	}

	byText := make(map[string]*domain.Word, len(existing))
	for _, word := range existing {
		byText[word.Text] = word
	}

	var missing []string
	for _, text := range texts {
		if _, ok := byText[text]; !ok {
			missing = append(missing, text)
		}
	}

	translations := s.translateAll(ctx, missing)

	var skipped []string
	for _, text := range missing {
		translation, ok := translations[text]
		if !ok {
			skipped = append(skipped, text)
			continue
		}

		word, err := s.createWord(ctx, text, translation)
		if err != nil {
			log.Warn("skipping word that could not be saved",
				slog.String("word", text),
				slog.String("error", err.Error()))
			skipped = append(skipped, text)
			continue
		}
		byText[text] = word
	}

	resolved := make([]*domain.Word, 0, len(byText))
	for _, text := range texts {
		if word, ok := byText[text]; ok {
			resolved = append(resolved, word)
		}
	}
	return resolved, skipped, nil
}

// translateAll translates the given surface forms in batches. Words the
// batch response omits get one individual retry before being given up on.
func (s *Service) translateAll(ctx context.Context, texts []string) map[string]llm.Translation {
	log := logger.FromContextOrDefault(ctx, s.logger)
	out := make(map[string]llm.Translation, len(texts))

	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		translations, err := s.translator.TranslateWords(ctx, batch)
		if err != nil {
			log.Warn("batch translation failed, retrying words individually",
				slog.Int("batch_size", len(batch)),
				slog.String("error", err.Error()))
			translations = nil
		}
		for _, t := range translations {
			out[domain.NormalizeWord(t.Word)] = t
		}

		for _, text := range batch {
			if _, ok := out[text]; ok {
				continue
			}
			single, err := s.translator.TranslateWords(ctx, []string{text})
			if err != nil || len(single) == 0 {
				log.Warn("word could not be translated",
					slog.String("word", text))
				continue
			}
			out[text] = single[0]
		}
	}

	return out
}

// createWord saves a newly translated word. A concurrent import can win
// the unique-constraint race, in which case the existing row is used.
func (s *Service) createWord(ctx context.Context, text string, t llm.Translation) (*domain.Word, error) {
	word, err := domain.NewWord(text, domain.WordContent{
		Meaning:      t.Meaning,
		Phonetic:     t.Phonetic,
		PartOfSpeech: t.PartOfSpeech,
		Sentences:    t.Sentences,
	})
	if err != nil {
		return nil, err
	}

	err = s.words.Create(ctx, word)
	if err == nil {
		return word, nil
	}
	if !errors.Is(err, store.ErrWordExists) {
		return nil, err
	}

	rows, err := s.words.ListByTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrWordNotFound
	}
	return rows[0], nil
}

// createItems adds learning items for the resolved words that are not
// already tracked in the collection. Item creation and the collection's
// word counter move together in one transaction.
func (s *Service) createItems(
	ctx context.Context,
	userID, collectionID uuid.UUID,
	words []*domain.Word,
) (created, reused int, err error) {
	wordIDs := make([]uuid.UUID, len(words))
	for i, word := range words {
		wordIDs[i] = word.ID
	}

	existingIDs, err := s.items.ExistingWordIDs(ctx, collectionID, wordIDs)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to check for existing items: %w", err)
	}
	existing := make(map[uuid.UUID]bool, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = true
	}

	items := make([]*domain.LearningItem, 0, len(words))
	for _, word := range words {
		if existing[word.ID] {
			reused++
			continue
		}
		item, err := domain.NewLearningItem(userID, collectionID, word.ID)
		if err != nil {
			return 0, 0, err
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return 0, reused, nil
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.items.WithTx(tx).CreateMultiple(ctx, items); err != nil {
			return fmt.Errorf("failed to create learning items: %w", err)
		}
		if err := s.collections.WithTx(tx).AddWordCount(ctx, collectionID, len(items)); err != nil {
			return fmt.Errorf("failed to update collection word count: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return len(items), reused, nil
}
