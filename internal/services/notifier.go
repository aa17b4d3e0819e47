package services

import (
	"context"
	"log/slog"
	"sync"

	"gatherly/internal/domain"
)

type notifier struct {
	mu     sync.Mutex
	nextID int64
	byUser map[int64][]domain.Notification
	logger *slog.Logger
}

// NewNotifier creates an in-memory Notifier. Messages are kept per identity
// in delivery order with sequential IDs.
func NewNotifier(logger *slog.Logger) domain.Notifier {
	return &notifier{
		byUser: make(map[int64][]domain.Notification),
		logger: logger,
	}
}

func (n *notifier) Notify(ctx context.Context, identityIDs []int64, message string) {
	if len(identityIDs) == 0 {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, id := range identityIDs {
		n.nextID++
		n.byUser[id] = append(n.byUser[id], domain.Notification{
			ID:      n.nextID,
			UserID:  id,
			Message: message,
		})
	}
	n.logger.InfoContext(ctx, "notified attendees", "count", len(identityIDs), "message", message)
}

func (n *notifier) ListByUser(identityID int64) []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notification{}, n.byUser[identityID]...)
}
