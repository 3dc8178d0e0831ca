package notification

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// Notifier persists a notification row and simulates the outgoing email.
// Failures are logged, never propagated: notifications must not break the
// operation that triggered them.
type Notifier struct {
	repo Repository
}

func NewNotifier(repo Repository) *Notifier { return &Notifier{repo: repo} }

func (n *Notifier) Notify(ctx context.Context, userID, email, typ, title, message string) {
	if n == nil || n.repo == nil {
		return
	}
	rec := &Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
	}
	if err := n.repo.Create(ctx, rec); err != nil {
		log.Printf("[notify] persist failed user=%s type=%s err=%v", userID, typ, err)
		return
	}
	sendEmail(email, title, message)
}

// sendEmail simulates delivery. A real deployment would plug an email
// service provider here.
func sendEmail(to, subject, body string) {
	if to == "" {
		return
	}
	log.Printf("[email] to=%s subject=%q body=%q", to, subject, body)
}
