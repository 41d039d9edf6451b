package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/domain"
	"github.com/wordpath/wordpath-api/internal/platform/logger"
	"github.com/wordpath/wordpath-api/internal/store"
)

// InboxNotifier implements Notifier by writing messages to the user's
// in-app inbox.
type InboxNotifier struct {
	messages store.MessageStore
	logger   *slog.Logger
}

// NewInboxNotifier creates an inbox-backed notifier.
func NewInboxNotifier(messages store.MessageStore, logger *slog.Logger) *InboxNotifier {
	if messages == nil {
		panic("message store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &InboxNotifier{
		messages: messages,
		logger:   logger.With(slog.String("component", "inbox_notifier")),
	}
}

var _ Notifier = (*InboxNotifier)(nil)

// Notify writes one message to the user's inbox. Failures are logged and
// swallowed.
func (n *InboxNotifier) Notify(ctx context.Context, userID uuid.UUID, title, body string) {
	log := logger.FromContextOrDefault(ctx, n.logger)

	msg, err := domain.NewMessage(userID, title, body)
	if err != nil {
		log.Error("failed to build notification message",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return
	}

	if err := n.messages.Create(ctx, msg); err != nil {
		log.Error("failed to deliver notification",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("title", title))
		return
	}

	log.Debug("notification delivered",
		slog.String("user_id", userID.String()),
		slog.String("title", title))
}
