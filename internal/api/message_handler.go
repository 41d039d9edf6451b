package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/api/middleware"
	"github.com/wordpath/wordpath-api/internal/api/shared"
	"github.com/wordpath/wordpath-api/internal/store"
)

// MessageHandler handles the in-app notification inbox.
type MessageHandler struct {
	messages store.MessageStore
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(messages store.MessageStore) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// List handles GET /messages?offset=0&limit=20.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	offset := parseQueryInt(r, "offset", 0)
	limit := parseQueryInt(r, "limit", defaultExamPageSize)
	if limit <= 0 || limit > maxExamPageSize {
		limit = defaultExamPageSize
	}
	if offset < 0 {
		offset = 0
	}

	messages, total, err := h.messages.ListByUser(r.Context(), userID, offset, limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageListResponse{
		Messages: messages,
		Total:    total,
		Offset:   offset,
		Limit:    limit,
	})
}

// MarkRead handles POST /messages/{messageID}/read.
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	messageID, err := uuid.Parse(chi.URLParam(r, "messageID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid message ID")
		return
	}

	if err := h.messages.MarkRead(r.Context(), messageID, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
