package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/api/middleware"
	"github.com/wordpath/wordpath-api/internal/api/shared"
	"github.com/wordpath/wordpath-api/internal/study"
)

// StudyHandler handles study session endpoints.
type StudyHandler struct {
	studyService *study.Service
}

// NewStudyHandler creates a StudyHandler.
func NewStudyHandler(studyService *study.Service) *StudyHandler {
	return &StudyHandler{studyService: studyService}
}

// BuildSession handles GET /collections/{collectionID}/study?mode=new.
func (h *StudyHandler) BuildSession(w http.ResponseWriter, r *http.Request) {
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

	mode := study.Mode(r.URL.Query().Get("mode"))
	entries, err := h.studyService.BuildSession(r.Context(), userID, collectionID, mode)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, StudySessionResponse{
		Mode:    mode,
		Entries: entries,
	})
}

// SubmitOutcome handles POST /study/outcomes.
func (h *StudyHandler) SubmitOutcome(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SubmitOutcomeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	result, err := h.studyService.SubmitOutcome(r.Context(), userID, req.ItemID, study.Outcome(req.Outcome))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
