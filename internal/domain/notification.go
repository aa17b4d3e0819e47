package domain

import "context"

// Notification is an in-app message for a single identity.
// swagger:model Notification
type Notification struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
}

// Notifier records per-identity notifications. Notifications live in memory
// only; they do not survive a restart.
type Notifier interface {
	// Notify records the message for each of the given identities.
	Notify(ctx context.Context, identityIDs []int64, message string)
	// ListByUser returns the identity's notifications in delivery order.
	ListByUser(identityID int64) []Notification
}

// Mailer sends an email with optional HTML and text bodies.
type Mailer interface {
	Send(to, subject, html, text string) error
}
