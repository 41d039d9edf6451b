package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/domain"
	"github.com/wordpath/wordpath-api/internal/platform/logger"
	"github.com/wordpath/wordpath-api/internal/store"
)

// PostgresItemStore implements the store.ItemStore interface
// using a PostgreSQL database as the storage backend.
type PostgresItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresItemStore creates a new PostgreSQL implementation of the
// ItemStore interface.
func NewPostgresItemStore(db store.DBTX, logger *slog.Logger) *PostgresItemStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "item_store")),
	}
}

// Ensure PostgresItemStore implements store.ItemStore interface
var _ store.ItemStore = (*PostgresItemStore)(nil)

// WithTx implements store.ItemStore.WithTx.
func (s *PostgresItemStore) WithTx(tx *sql.Tx) store.ItemStore {
	return &PostgresItemStore{db: tx, logger: s.logger}
}

const itemColumns = `
	id, collection_id, user_id, word_id, status,
	review_count, fail_count, match_count, study_count,
	last_review_time, next_review_due, created_at, updated_at`

// Create implements store.ItemStore.Create.
func (s *PostgresItemStore) Create(ctx context.Context, item *domain.LearningItem) error {
	return s.CreateMultiple(ctx, []*domain.LearningItem{item})
}

// CreateMultiple implements store.ItemStore.CreateMultiple. The batch is
// inserted row by row; callers wrap imports in a transaction so the batch
// commits or rolls back as a unit.
func (s *PostgresItemStore) CreateMultiple(ctx context.Context, items []*domain.LearningItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO learning_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	for _, item := range items {
		if err := item.Validate(); err != nil {
			log.Warn("learning item validation failed during create",
				slog.String("error", err.Error()),
				slog.String("item_id", item.ID.String()))
			return err
		}

		_, err := s.db.ExecContext(
			ctx,
			query,
			item.ID,
			item.CollectionID,
			item.UserID,
			item.WordID,
			int(item.Status),
			item.ReviewCount,
			item.FailCount,
			item.MatchCount,
			item.StudyCount,
			item.LastReviewTime,
			item.NextReviewDue,
			item.CreatedAt,
			item.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to create learning item",
				slog.String("error", err.Error()),
				slog.String("item_id", item.ID.String()))
			return MapError(err)
		}
	}

	log.Debug("learning items created", slog.Int("count", len(items)))
	return nil
}

// GetByID implements store.ItemStore.GetByID.
// Returns store.ErrItemNotFound if the item does not exist.
func (s *PostgresItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + itemColumns + ` FROM learning_items WHERE id = $1`

	item, err := scanItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrItemNotFound
		}
		log.Error("failed to get learning item by ID",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return nil, MapError(err)
	}

	return item, nil
}

// GetWithWord implements store.ItemStore.GetWithWord.
// Returns store.ErrItemNotFound if the item does not exist.
func (s *PostgresItemStore) GetWithWord(ctx context.Context, id uuid.UUID) (*store.ItemWithWord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := itemWithWordSelect + ` WHERE i.id = $1`

	pair, err := scanItemWithWord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrItemNotFound
		}
		log.Error("failed to get learning item with word",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return nil, MapError(err)
	}

	return pair, nil
}

// Update implements store.ItemStore.Update.
// Returns store.ErrItemNotFound if the item does not exist.
func (s *PostgresItemStore) Update(ctx context.Context, item *domain.LearningItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("learning item validation failed during update",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return err
	}

	item.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE learning_items
		SET status = $1, review_count = $2, fail_count = $3, match_count = $4,
		    study_count = $5, last_review_time = $6, next_review_due = $7,
		    updated_at = $8
		WHERE id = $9
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		int(item.Status),
		item.ReviewCount,
		item.FailCount,
		item.MatchCount,
		item.StudyCount,
		item.LastReviewTime,
		item.NextReviewDue,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		log.Error("failed to update learning item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrItemNotFound)
}

const itemWithWordSelect = `
	SELECT i.id, i.collection_id, i.user_id, i.word_id, i.status,
	       i.review_count, i.fail_count, i.match_count, i.study_count,
	       i.last_review_time, i.next_review_due, i.created_at, i.updated_at,
	       w.id, w.word, w.content, w.created_at
	FROM learning_items i
	JOIN words w ON w.id = i.word_id`

// ListWithWords implements store.ItemStore.ListWithWords.
func (s *PostgresItemStore) ListWithWords(
	ctx context.Context,
	userID, collectionID uuid.UUID,
	statuses []domain.ItemStatus,
) ([]store.ItemWithWord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(statuses) == 0 {
		return []store.ItemWithWord{}, nil
	}

	query := fmt.Sprintf(`%s
		WHERE i.user_id = $1 AND i.collection_id = $2 AND i.status IN (%s)
		ORDER BY i.created_at`,
		itemWithWordSelect, placeholders(3, len(statuses)))

	args := []any{userID, collectionID}
	for _, st := range statuses {
		args = append(args, int(st))
	}

	return s.queryItemsWithWords(ctx, log, query, args...)
}

// ListWithWordsByIDs implements store.ItemStore.ListWithWordsByIDs.
func (s *PostgresItemStore) ListWithWordsByIDs(ctx context.Context, ids []uuid.UUID) ([]store.ItemWithWord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return []store.ItemWithWord{}, nil
	}

	query := fmt.Sprintf(`%s WHERE i.id IN (%s)`,
		itemWithWordSelect, placeholders(1, len(ids)))

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	return s.queryItemsWithWords(ctx, log, query, args...)
}

func (s *PostgresItemStore) queryItemsWithWords(
	ctx context.Context,
	log *slog.Logger,
	query string,
	args ...any,
) ([]store.ItemWithWord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query learning items with words",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	pairs := []store.ItemWithWord{}
	for rows.Next() {
		pair, err := scanItemWithWord(rows)
		if err != nil {
			log.Error("failed to scan item row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		pairs = append(pairs, *pair)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return pairs, nil
}

// CountBelowStatus implements store.ItemStore.CountBelowStatus.
func (s *PostgresItemStore) CountBelowStatus(
	ctx context.Context,
	userID, collectionID uuid.UUID,
	status domain.ItemStatus,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT COUNT(*)
		FROM learning_items
		WHERE user_id = $1 AND collection_id = $2 AND status < $3
	`

	var count int
	err := s.db.QueryRowContext(ctx, query, userID, collectionID, int(status)).Scan(&count)
	if err != nil {
		log.Error("failed to count learning items below status",
			slog.String("error", err.Error()),
			slog.String("collection_id", collectionID.String()))
		return 0, MapError(err)
	}

	return count, nil
}

// ExistingWordIDs implements store.ItemStore.ExistingWordIDs.
func (s *PostgresItemStore) ExistingWordIDs(
	ctx context.Context,
	collectionID uuid.UUID,
	wordIDs []uuid.UUID,
) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(wordIDs) == 0 {
		return []uuid.UUID{}, nil
	}

	query := fmt.Sprintf(`
		SELECT word_id
		FROM learning_items
		WHERE collection_id = $1 AND word_id IN (%s)
	`, placeholders(2, len(wordIDs)))

	args := []any{collectionID}
	for _, id := range wordIDs {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query existing word IDs",
			slog.String("error", err.Error()),
			slog.String("collection_id", collectionID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	existing := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		existing = append(existing, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return existing, nil
}

func scanItem(row rowScanner) (*domain.LearningItem, error) {
	var item domain.LearningItem
	var status int

	err := row.Scan(
		&item.ID,
		&item.CollectionID,
		&item.UserID,
		&item.WordID,
		&status,
		&item.ReviewCount,
		&item.FailCount,
		&item.MatchCount,
		&item.StudyCount,
		&item.LastReviewTime,
		&item.NextReviewDue,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Status = domain.ItemStatus(status)
	return &item, nil
}

func scanItemWithWord(row rowScanner) (*store.ItemWithWord, error) {
	var item domain.LearningItem
	var word domain.Word
	var status int
	var contentJSON []byte

	err := row.Scan(
		&item.ID,
		&item.CollectionID,
		&item.UserID,
		&item.WordID,
		&status,
		&item.ReviewCount,
		&item.FailCount,
		&item.MatchCount,
		&item.StudyCount,
		&item.LastReviewTime,
		&item.NextReviewDue,
		&item.CreatedAt,
		&item.UpdatedAt,
		&word.ID,
		&word.Text,
		&contentJSON,
		&word.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Status = domain.ItemStatus(status)
	if err := json.Unmarshal(contentJSON, &word.Content); err != nil {
		return nil, fmt.Errorf("failed to unmarshal word content: %w", err)
	}

	return &store.ItemWithWord{Item: &item, Word: &word}, nil
}
