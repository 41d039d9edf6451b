package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/api/middleware"
	"github.com/wordpath/wordpath-api/internal/api/shared"
	"github.com/wordpath/wordpath-api/internal/wordimport"
)

// CollectionHandler handles collection management and word import.
type CollectionHandler struct {
	imports *wordimport.Service
}

// NewCollectionHandler creates a CollectionHandler.
func NewCollectionHandler(imports *wordimport.Service) *CollectionHandler {
	return &CollectionHandler{imports: imports}
}

// Create handles POST /collections.
func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateCollectionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	collection, err := h.imports.CreateCollection(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, collection)
}

// List handles GET /collections.
func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	collections, err := h.imports.ListCollections(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CollectionListResponse{Collections: collections})
}

// Get handles GET /collections/{collectionID}.
func (h *CollectionHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	collection, err := h.imports.GetCollection(r.Context(), userID, collectionID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, collection)
}

// ImportWords handles POST /collections/{collectionID}/words. The heavy
// translation work runs in the background; the response only confirms
// scheduling.
func (h *CollectionHandler) ImportWords(w http.ResponseWriter, r *http.Request) {
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

	var req ImportWordsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	scheduled, err := h.imports.StartImport(r.Context(), userID, collectionID, req.Words)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, ImportWordsResponse{
		ScheduledWords: scheduled,
	})
}
