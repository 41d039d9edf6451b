package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/domain"
)

// ExamStore defines the interface for managing exam persistence, including
// the spelling and translation sections created at generation time.
type ExamStore interface {
	// Create saves a new exam row.
	Create(ctx context.Context, exam *domain.Exam) error

	// GetByID retrieves an exam by its unique ID.
	// Returns ErrExamNotFound if the exam does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Exam, error)

	// List returns a page of the user's exams, newest first, optionally
	// filtered by mode, along with the total count for pagination.
	List(
		ctx context.Context,
		userID uuid.UUID,
		mode *domain.ExamMode,
		offset, limit int,
	) ([]*domain.Exam, int, error)

	// UpdateStatus moves an exam to the given status. A non-empty
	// generationError is recorded alongside a failed status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ExamStatus, generationError string) error

	// MarkGenerated moves an exam to generated and records the actual
	// persisted section counts.
	MarkGenerated(ctx context.Context, id uuid.UUID, spellingCount, translationCount int) error

	// MarkCompleted moves an exam to completed and stamps completion time.
	MarkCompleted(ctx context.Context, id uuid.UUID, completedAt time.Time) error

	// Delete removes an exam and its spelling/translation entries.
	// Returns ErrExamNotFound if the exam does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// CreateSpellingEntries saves the spelling section in one batch.
	CreateSpellingEntries(ctx context.Context, entries []*domain.ExamSpellingEntry) error

	// CreateTranslationEntries saves the translation section in one batch.
	CreateTranslationEntries(ctx context.Context, entries []*domain.ExamTranslationEntry) error

	// ListSpellingEntries returns an exam's spelling section.
	ListSpellingEntries(ctx context.Context, examID uuid.UUID) ([]*domain.ExamSpellingEntry, error)

	// ListTranslationEntries returns an exam's translation section.
	ListTranslationEntries(ctx context.Context, examID uuid.UUID) ([]*domain.ExamTranslationEntry, error)

	// HasActive reports whether the user has any exam in one of the given
	// statuses for the given mode.
	HasActive(ctx context.Context, userID uuid.UUID, mode domain.ExamMode, statuses []domain.ExamStatus) (bool, error)

	// ListClaimedItemIDs returns the learning item IDs referenced by the
	// spelling entries of the user's exams that are in one of the given
	// statuses and modes, excluding the exam with excludeExamID (pass
	// uuid.Nil to exclude nothing). This defines which items are owned by
	// in-flight exams.
	ListClaimedItemIDs(
		ctx context.Context,
		userID uuid.UUID,
		modes []domain.ExamMode,
		statuses []domain.ExamStatus,
		excludeExamID uuid.UUID,
	) ([]uuid.UUID, error)

	// WithTx returns an ExamStore that runs on the provided transaction.
	WithTx(tx *sql.Tx) ExamStore
}
