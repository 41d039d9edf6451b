package api

import (
	"errors"
	"net/http"

	"github.com/wordpath/wordpath-api/internal/api/shared"
	"github.com/wordpath/wordpath-api/internal/auth"
	"github.com/wordpath/wordpath-api/internal/domain"
	"github.com/wordpath/wordpath-api/internal/exam"
	"github.com/wordpath/wordpath-api/internal/store"
	"github.com/wordpath/wordpath-api/internal/study"
	"github.com/wordpath/wordpath-api/internal/wordimport"
)

// respondServiceError maps service and store errors onto HTTP statuses
// with safe client messages. Anything unrecognized is a 500 and the raw
// error stays in the logs.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")

	case errors.Is(err, domain.ErrUnauthorized):
		shared.RespondWithError(w, r, http.StatusForbidden, "Operation not permitted")

	case store.IsNotFoundError(err):
		shared.RespondWithError(w, r, http.StatusNotFound, "Resource not found")

	case errors.Is(err, store.ErrEmailExists):
		shared.RespondWithError(w, r, http.StatusConflict, "Email already exists")

	case store.IsDuplicateError(err):
		shared.RespondWithError(w, r, http.StatusConflict, "Resource already exists")

	case errors.Is(err, exam.ErrInsufficientWords):
		shared.RespondWithError(w, r, http.StatusConflict,
			"Not enough eligible words for this exam mode")

	case errors.Is(err, exam.ErrExamNotSubmittable):
		shared.RespondWithError(w, r, http.StatusConflict,
			"Exam cannot accept a submission in its current state")

	case errors.Is(err, exam.ErrExamNotTerminal):
		shared.RespondWithError(w, r, http.StatusConflict,
			"Only completed or failed exams can be deleted")

	case errors.Is(err, domain.ErrInvalidExamMode):
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid exam mode")

	case errors.Is(err, study.ErrInvalidMode):
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid study mode")

	case errors.Is(err, study.ErrInvalidOutcome):
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid study outcome")

	case errors.Is(err, wordimport.ErrNoWords):
		shared.RespondWithError(w, r, http.StatusBadRequest, "No words to import")

	case errors.Is(err, auth.ErrPasswordTooShort):
		shared.RespondWithError(w, r, http.StatusBadRequest, "Password is too short")

	case errors.Is(err, domain.ErrInvalidEmail):
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid email format")

	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Internal server error", err)
	}
}
