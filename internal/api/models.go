// Package api implements the HTTP handlers and routing for the service.
package api

import (
	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/domain"
	"github.com/wordpath/wordpath-api/internal/exam"
	"github.com/wordpath/wordpath-api/internal/study"
)

// RegisterRequest is the request for user registration.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the request for user login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is the response for successful authentication.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
}

// CreateCollectionRequest is the request for creating a collection.
type CreateCollectionRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// CollectionListResponse wraps a user's collections.
type CollectionListResponse struct {
	Collections []*domain.Collection `json:"collections"`
}

// ImportWordsRequest is the request for importing words into a collection.
type ImportWordsRequest struct {
	Words []string `json:"words" validate:"required,min=1,max=1000"`
}

// ImportWordsResponse reports how many words were scheduled for import.
type ImportWordsResponse struct {
	ScheduledWords int `json:"scheduled_words"`
}

// StudySessionResponse is an ordered study queue.
type StudySessionResponse struct {
	Mode    study.Mode    `json:"mode"`
	Entries []study.Entry `json:"entries"`
}

// SubmitOutcomeRequest reports the result of studying one item.
type SubmitOutcomeRequest struct {
	ItemID  uuid.UUID `json:"item_id" validate:"required"`
	Outcome string    `json:"outcome" validate:"required"`
}

// ExamAvailabilityResponse reports how many words an exam of the given
// mode could draw on right now.
type ExamAvailabilityResponse struct {
	Mode           domain.ExamMode `json:"mode"`
	AvailableWords int             `json:"available_words"`
}

// GenerateExamRequest is the request for creating one or more exams.
type GenerateExamRequest struct {
	Mode        string `json:"mode"         validate:"required"`
	TargetCount int    `json:"target_count" validate:"omitempty,min=1,max=100"`
}

// GenerateExamResponse lists the exams scheduled for generation.
type GenerateExamResponse struct {
	Exams []*domain.Exam `json:"exams"`
}

// ExamListResponse is a page of the user's exams.
type ExamListResponse struct {
	Exams  []*domain.Exam `json:"exams"`
	Total  int            `json:"total"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
}

// ExamDetailResponse is a full exam with both question sections.
type ExamDetailResponse struct {
	Exam        *domain.Exam                  `json:"exam"`
	Spelling    []*domain.ExamSpellingEntry   `json:"spelling"`
	Translation []*domain.ExamTranslationEntry `json:"translation"`
}

// TranslationAnswerRequest is one submitted translation answer.
type TranslationAnswerRequest struct {
	SentenceID string `json:"sentence_id" validate:"required"`
	Answer     string `json:"answer"`
}

// SubmitExamRequest carries the learner's answers for grading. Spelling
// is judged on the client, so only the missed item IDs come back.
type SubmitExamRequest struct {
	WrongSpellingItemIDs []uuid.UUID                `json:"wrong_spelling_item_ids"`
	Translations         []TranslationAnswerRequest `json:"translations" validate:"dive"`
}

// MessageListResponse is a page of the user's inbox.
type MessageListResponse struct {
	Messages []*domain.Message `json:"messages"`
	Total    int               `json:"total"`
	Offset   int               `json:"offset"`
	Limit    int               `json:"limit"`
}

// toSubmission converts the request DTO into the exam service submission.
func (r SubmitExamRequest) toSubmission() exam.Submission {
	answers := make([]exam.TranslationAnswer, len(r.Translations))
	for i, t := range r.Translations {
		answers[i] = exam.TranslationAnswer{
			SentenceID: t.SentenceID,
			Answer:     t.Answer,
		}
	}
	return exam.Submission{
		WrongSpellingItemIDs: r.WrongSpellingItemIDs,
		Translations:         answers,
	}
}
