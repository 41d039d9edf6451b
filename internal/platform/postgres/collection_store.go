package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/domain"
	"github.com/wordpath/wordpath-api/internal/platform/logger"
	"github.com/wordpath/wordpath-api/internal/store"
)

// PostgresCollectionStore implements the store.CollectionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCollectionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCollectionStore creates a new PostgreSQL implementation of the
// CollectionStore interface.
func NewPostgresCollectionStore(db store.DBTX, logger *slog.Logger) *PostgresCollectionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCollectionStore{
		db:     db,
		logger: logger.With(slog.String("component", "collection_store")),
	}
}

// Ensure PostgresCollectionStore implements store.CollectionStore interface
var _ store.CollectionStore = (*PostgresCollectionStore)(nil)

// WithTx implements store.CollectionStore.WithTx.
func (s *PostgresCollectionStore) WithTx(tx *sql.Tx) store.CollectionStore {
	return &PostgresCollectionStore{db: tx, logger: s.logger}
}

// Create implements store.CollectionStore.Create.
func (s *PostgresCollectionStore) Create(ctx context.Context, collection *domain.Collection) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := collection.Validate(); err != nil {
		log.Warn("collection validation failed during create",
			slog.String("error", err.Error()),
			slog.String("collection_id", collection.ID.String()))
		return err
	}

	query := `
		INSERT INTO word_collections (id, user_id, name, description, word_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		collection.ID,
		collection.UserID,
		collection.Name,
		collection.Description,
		collection.WordCount,
		collection.CreatedAt,
		collection.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create collection",
			slog.String("error", err.Error()),
			slog.String("collection_id", collection.ID.String()),
			slog.String("user_id", collection.UserID.String()))
		return MapError(err)
	}

	log.Info("collection created successfully",
		slog.String("collection_id", collection.ID.String()),
		slog.String("user_id", collection.UserID.String()))
	return nil
}

// GetForUser implements store.CollectionStore.GetForUser. Ownership is part
// of the WHERE clause so another user's collection looks like a missing one.
func (s *PostgresCollectionStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Collection, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, description, word_count, created_at, updated_at
		FROM word_collections
		WHERE id = $1 AND user_id = $2
	`

	var collection domain.Collection
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&collection.ID,
		&collection.UserID,
		&collection.Name,
		&collection.Description,
		&collection.WordCount,
		&collection.CreatedAt,
		&collection.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCollectionNotFound
		}
		log.Error("failed to get collection",
			slog.String("error", err.Error()),
			slog.String("collection_id", id.String()))
		return nil, MapError(err)
	}

	return &collection, nil
}

// ListByUser implements store.CollectionStore.ListByUser.
func (s *PostgresCollectionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Collection, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, description, word_count, created_at, updated_at
		FROM word_collections
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list collections",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	collections := []*domain.Collection{}
	for rows.Next() {
		var collection domain.Collection
		err := rows.Scan(
			&collection.ID,
			&collection.UserID,
			&collection.Name,
			&collection.Description,
			&collection.WordCount,
			&collection.CreatedAt,
			&collection.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan collection row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		collections = append(collections, &collection)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return collections, nil
}

// AddWordCount implements store.CollectionStore.AddWordCount.
func (s *PostgresCollectionStore) AddWordCount(ctx context.Context, id uuid.UUID, delta int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE word_collections
		SET word_count = word_count + $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, delta, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to adjust collection word count",
			slog.String("error", err.Error()),
			slog.String("collection_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrCollectionNotFound)
}
