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

// PostgresExamStore implements the store.ExamStore interface
// using a PostgreSQL database as the storage backend. Translation entries
// keep their involved word IDs in a JSONB column.
type PostgresExamStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresExamStore creates a new PostgreSQL implementation of the
// ExamStore interface.
func NewPostgresExamStore(db store.DBTX, logger *slog.Logger) *PostgresExamStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresExamStore{
		db:     db,
		logger: logger.With(slog.String("component", "exam_store")),
	}
}

// Ensure PostgresExamStore implements store.ExamStore interface
var _ store.ExamStore = (*PostgresExamStore)(nil)

// WithTx implements store.ExamStore.WithTx.
func (s *PostgresExamStore) WithTx(tx *sql.Tx) store.ExamStore {
	return &PostgresExamStore{db: tx, logger: s.logger}
}

const examColumns = `
	id, user_id, collection_id, mode, exam_status, total_words,
	spelling_words_count, translation_sentences_count, generation_error,
	created_at, completed_at`

// Create implements store.ExamStore.Create.
func (s *PostgresExamStore) Create(ctx context.Context, exam *domain.Exam) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := exam.Validate(); err != nil {
		log.Warn("exam validation failed during create",
			slog.String("error", err.Error()),
			slog.String("exam_id", exam.ID.String()))
		return err
	}

	query := `
		INSERT INTO exams (` + examColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		exam.ID,
		exam.UserID,
		exam.CollectionID,
		string(exam.Mode),
		string(exam.Status),
		exam.TotalWords,
		exam.SpellingWordsCount,
		exam.TranslationSentencesCount,
		exam.GenerationError,
		exam.CreatedAt,
		exam.CompletedAt,
	)
	if err != nil {
		log.Error("failed to create exam",
			slog.String("error", err.Error()),
			slog.String("exam_id", exam.ID.String()))
		return MapError(err)
	}

	log.Info("exam created successfully",
		slog.String("exam_id", exam.ID.String()),
		slog.String("mode", string(exam.Mode)))
	return nil
}

// GetByID implements store.ExamStore.GetByID.
// Returns store.ErrExamNotFound if the exam does not exist.
func (s *PostgresExamStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Exam, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + examColumns + ` FROM exams WHERE id = $1`

	exam, err := scanExam(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrExamNotFound
		}
		log.Error("failed to get exam by ID",
			slog.String("error", err.Error()),
			slog.String("exam_id", id.String()))
		return nil, MapError(err)
	}

	return exam, nil
}

// List implements store.ExamStore.List.
func (s *PostgresExamStore) List(
	ctx context.Context,
	userID uuid.UUID,
	mode *domain.ExamMode,
	offset, limit int,
) ([]*domain.Exam, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	where := `WHERE user_id = $1`
	args := []any{userID}
	if mode != nil {
		where += ` AND mode = $2`
		args = append(args, string(*mode))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM exams ` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count exams", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	query := fmt.Sprintf(`SELECT %s FROM exams %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		examColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list exams", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	exams := []*domain.Exam{}
	for rows.Next() {
		exam, err := scanExam(rows)
		if err != nil {
			log.Error("failed to scan exam row", slog.String("error", err.Error()))
			return nil, 0, MapError(err)
		}
		exams = append(exams, exam)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}

	return exams, total, nil
}

// UpdateStatus implements store.ExamStore.UpdateStatus.
func (s *PostgresExamStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.ExamStatus,
	generationError string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.Valid() {
		return domain.ErrInvalidExamStatus
	}

	query := `
		UPDATE exams
		SET exam_status = $1, generation_error = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, string(status), generationError, id)
	if err != nil {
		log.Error("failed to update exam status",
			slog.String("error", err.Error()),
			slog.String("exam_id", id.String()),
			slog.String("status", string(status)))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrExamNotFound)
}

// MarkGenerated implements store.ExamStore.MarkGenerated.
func (s *PostgresExamStore) MarkGenerated(
	ctx context.Context,
	id uuid.UUID,
	spellingCount, translationCount int,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE exams
		SET exam_status = $1, spelling_words_count = $2,
		    translation_sentences_count = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		string(domain.ExamStatusGenerated),
		spellingCount,
		translationCount,
		id,
	)
	if err != nil {
		log.Error("failed to mark exam generated",
			slog.String("error", err.Error()),
			slog.String("exam_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrExamNotFound)
}

// MarkCompleted implements store.ExamStore.MarkCompleted.
func (s *PostgresExamStore) MarkCompleted(ctx context.Context, id uuid.UUID, completedAt time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE exams
		SET exam_status = $1, completed_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, string(domain.ExamStatusCompleted), completedAt, id)
	if err != nil {
		log.Error("failed to mark exam completed",
			slog.String("error", err.Error()),
			slog.String("exam_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrExamNotFound)
}

// Delete implements store.ExamStore.Delete. Section entries cascade via
// their foreign keys.
func (s *PostgresExamStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete exam",
			slog.String("error", err.Error()),
			slog.String("exam_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrExamNotFound)
}

// CreateSpellingEntries implements store.ExamStore.CreateSpellingEntries.
func (s *PostgresExamStore) CreateSpellingEntries(ctx context.Context, entries []*domain.ExamSpellingEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO exam_spelling_entries (id, exam_id, word_id, item_id, meaning, answer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, entry := range entries {
		_, err := s.db.ExecContext(
			ctx,
			query,
			entry.ID,
			entry.ExamID,
			entry.WordID,
			entry.ItemID,
			entry.Meaning,
			entry.Answer,
			entry.CreatedAt,
		)
		if err != nil {
			log.Error("failed to create spelling entry",
				slog.String("error", err.Error()),
				slog.String("exam_id", entry.ExamID.String()))
			return MapError(err)
		}
	}

	return nil
}

// CreateTranslationEntries implements store.ExamStore.CreateTranslationEntries.
func (s *PostgresExamStore) CreateTranslationEntries(ctx context.Context, entries []*domain.ExamTranslationEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO exam_translation_entries (id, exam_id, sentence_id, sentence, words_involved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, entry := range entries {
		wordsJSON, err := json.Marshal(entry.WordsInvolved)
		if err != nil {
			return fmt.Errorf("failed to marshal words involved: %w", err)
		}

		_, err = s.db.ExecContext(
			ctx,
			query,
			entry.ID,
			entry.ExamID,
			entry.SentenceID,
			entry.Sentence,
			wordsJSON,
			entry.CreatedAt,
		)
		if err != nil {
			log.Error("failed to create translation entry",
				slog.String("error", err.Error()),
				slog.String("exam_id", entry.ExamID.String()))
			return MapError(err)
		}
	}

	return nil
}

// ListSpellingEntries implements store.ExamStore.ListSpellingEntries.
func (s *PostgresExamStore) ListSpellingEntries(ctx context.Context, examID uuid.UUID) ([]*domain.ExamSpellingEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, exam_id, word_id, item_id, meaning, answer, created_at
		FROM exam_spelling_entries
		WHERE exam_id = $1
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, examID)
	if err != nil {
		log.Error("failed to list spelling entries",
			slog.String("error", err.Error()),
			slog.String("exam_id", examID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	entries := []*domain.ExamSpellingEntry{}
	for rows.Next() {
		var entry domain.ExamSpellingEntry
		err := rows.Scan(
			&entry.ID,
			&entry.ExamID,
			&entry.WordID,
			&entry.ItemID,
			&entry.Meaning,
			&entry.Answer,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return entries, nil
}

// ListTranslationEntries implements store.ExamStore.ListTranslationEntries.
func (s *PostgresExamStore) ListTranslationEntries(ctx context.Context, examID uuid.UUID) ([]*domain.ExamTranslationEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, exam_id, sentence_id, sentence, words_involved, created_at
		FROM exam_translation_entries
		WHERE exam_id = $1
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, examID)
	if err != nil {
		log.Error("failed to list translation entries",
			slog.String("error", err.Error()),
			slog.String("exam_id", examID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	entries := []*domain.ExamTranslationEntry{}
	for rows.Next() {
		var entry domain.ExamTranslationEntry
		var wordsJSON []byte
		err := rows.Scan(
			&entry.ID,
			&entry.ExamID,
			&entry.SentenceID,
			&entry.Sentence,
			&wordsJSON,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}
		if err := json.Unmarshal(wordsJSON, &entry.WordsInvolved); err != nil {
			return nil, fmt.Errorf("failed to unmarshal words involved: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return entries, nil
}

// HasActive implements store.ExamStore.HasActive.
func (s *PostgresExamStore) HasActive(
	ctx context.Context,
	userID uuid.UUID,
	mode domain.ExamMode,
	statuses []domain.ExamStatus,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(statuses) == 0 {
		return false, nil
	}

	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM exams
			WHERE user_id = $1 AND mode = $2 AND exam_status IN (%s)
		)
	`, placeholders(3, len(statuses)))

	args := []any{userID, string(mode)}
	for _, st := range statuses {
		args = append(args, string(st))
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		log.Error("failed to check active exams",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return false, MapError(err)
	}

	return exists, nil
}

// ListClaimedItemIDs implements store.ExamStore.ListClaimedItemIDs.
func (s *PostgresExamStore) ListClaimedItemIDs(
	ctx context.Context,
	userID uuid.UUID,
	modes []domain.ExamMode,
	statuses []domain.ExamStatus,
	excludeExamID uuid.UUID,
) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(modes) == 0 || len(statuses) == 0 {
		return []uuid.UUID{}, nil
	}

	args := []any{userID}
	modePh := placeholders(2, len(modes))
	for _, m := range modes {
		args = append(args, string(m))
	}
	statusPh := placeholders(2+len(modes), len(statuses))
	for _, st := range statuses {
		args = append(args, string(st))
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT se.item_id
		FROM exam_spelling_entries se
		JOIN exams e ON e.id = se.exam_id
		WHERE e.user_id = $1 AND e.mode IN (%s) AND e.exam_status IN (%s)
	`, modePh, statusPh)

	if excludeExamID != uuid.Nil {
		query += fmt.Sprintf(` AND e.id <> $%d`, len(args)+1)
		args = append(args, excludeExamID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list claimed item IDs",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return ids, nil
}

func scanExam(row rowScanner) (*domain.Exam, error) {
	var exam domain.Exam
	var mode, status string
	var completedAt sql.NullTime

	err := row.Scan(
		&exam.ID,
		&exam.UserID,
		&exam.CollectionID,
		&mode,
		&status,
		&exam.TotalWords,
		&exam.SpellingWordsCount,
		&exam.TranslationSentencesCount,
		&exam.GenerationError,
		&exam.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	exam.Mode = domain.ExamMode(mode)
	exam.Status = domain.ExamStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		exam.CompletedAt = &t
	}

	return &exam, nil
}
