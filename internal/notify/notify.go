// Package notify delivers outcome notifications to users. Background jobs
// finish long after the request that started them, so results arrive through
// the user's in-app inbox instead of the response cycle.
package notify

import (
	"context"

	"github.com/google/uuid"
)

// Notifier sends a notification to a user. Delivery is best effort: a
// failed notification must never fail the operation that produced it, so
// implementations log errors instead of returning them.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, body string)
}
