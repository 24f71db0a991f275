package dto

import "campushub/internal/domain"

// NotificationMessage is the queue payload linking an outbox row to the
// registration whose change it announces. The consumer re-reads the store
// for fresh registration, event and user data before rendering the mail.
type NotificationMessage struct {
	OutboxID       string                  `json:"outbox_id"`
	Kind           domain.NotificationKind `json:"kind"`
	RegistrationID int64                   `json:"registration_id"`
}
