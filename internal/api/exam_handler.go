package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/api/middleware"
	"github.com/wordpath/wordpath-api/internal/api/shared"
	"github.com/wordpath/wordpath-api/internal/domain"
	"github.com/wordpath/wordpath-api/internal/exam"
)

// Exam listing page size bounds.
const (
	defaultExamPageSize = 20
	maxExamPageSize     = 100
)

// ExamHandler handles exam lifecycle endpoints.
type ExamHandler struct {
	examService *exam.Service
}

// NewExamHandler creates an ExamHandler.
func NewExamHandler(examService *exam.Service) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// Availability handles GET /collections/{collectionID}/exams/availability?mode=random.
func (h *ExamHandler) Availability(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	collectionID, err := uuid.Parse(chi.URLParam(r, "collectionID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid collection ID")
		return
	}

	mode := domain.ExamMode(r.URL.Query().Get("mode"))
	available, err := h.examService.CheckAvailability(r.Context(), userID, collectionID, mode)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ExamAvailabilityResponse{
		Mode:           mode,
		AvailableWords: available,
	})
}

// Generate handles POST /collections/{collectionID}/exams.
func (h *ExamHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	collectionID, err := uuid.Parse(chi.URLParam(r, "collectionID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid collection ID")
		return
	}

	var req GenerateExamRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exams, err := h.examService.Generate(
		r.Context(), userID, collectionID, domain.ExamMode(req.Mode), req.TargetCount)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, GenerateExamResponse{Exams: exams})
}

// List handles GET /exams?mode=random&offset=0&limit=20.
func (h *ExamHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var mode *domain.ExamMode
	if raw := r.URL.Query().Get("mode"); raw != "" {
		m := domain.ExamMode(raw)
		mode = &m
	}

	offset := parseQueryInt(r, "offset", 0)
	limit := parseQueryInt(r, "limit", defaultExamPageSize)
	if limit <= 0 || limit > maxExamPageSize {
		limit = defaultExamPageSize
	}
	if offset < 0 {
		offset = 0
	}

	exams, total, err := h.examService.List(r.Context(), userID, mode, offset, limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ExamListResponse{
		Exams:  exams,
		Total:  total,
		Offset: offset,
		Limit:  limit,
	})
}

// Get handles GET /exams/{examID}.
func (h *ExamHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	examID, err := uuid.Parse(chi.URLParam(r, "examID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid exam ID")
		return
	}

	detail, err := h.examService.Get(r.Context(), userID, examID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ExamDetailResponse{
		Exam:        detail.Exam,
		Spelling:    detail.Spelling,
		Translation: detail.Translation,
	})
}

// Submit handles POST /exams/{examID}/submission.
func (h *ExamHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	examID, err := uuid.Parse(chi.URLParam(r, "examID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid exam ID")
		return
	}

	var req SubmitExamRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.examService.Submit(r.Context(), userID, examID, req.toSubmission()); err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, map[string]string{
		"status": "grading",
	})
}

// Delete handles DELETE /exams/{examID}.
func (h *ExamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	examID, err := uuid.Parse(chi.URLParam(r, "examID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid exam ID")
		return
	}

	if err := h.examService.Delete(r.Context(), userID, examID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseQueryInt reads an integer query parameter, falling back to def on
// absence or garbage.
func parseQueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
