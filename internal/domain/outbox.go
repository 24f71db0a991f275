package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	KindConfirmation NotificationKind = "CONFIRMATION"
	KindStatusUpdate NotificationKind = "STATUS_UPDATE"
	KindCancellation NotificationKind = "CANCELLATION"
)

func (k NotificationKind) IsValid() bool {
	switch k {
	case KindConfirmation, KindStatusUpdate, KindCancellation:
		return true
	}
	return false
}

// Intent is a notification the state machine wants sent once the
// surrounding transaction commits.
type Intent struct {
	Kind           NotificationKind
	RegistrationID int64
}

type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "PENDING"
	OutboxPublished OutboxStatus = "PUBLISHED"
	OutboxFailed    OutboxStatus = "FAILED"
)

// OutboxMessage is a persisted notification intent. Rows are written in the
// same transaction as the registration change that produced them and
// published to the queue by a background worker, so mail transport failures
// can never roll back a registration.
type OutboxMessage struct {
	ID             string           `db:"id" json:"id"`
	Kind           NotificationKind `db:"kind" json:"kind"`
	RegistrationID int64            `db:"registration_id" json:"registration_id"`
	Status         OutboxStatus     `db:"status" json:"status"`
	RetryCount     int              `db:"retry_count" json:"retry_count"`
	MaxRetries     int              `db:"max_retries" json:"max_retries"`
	LastError      string           `db:"last_error" json:"last_error,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	PublishedAt    *time.Time       `db:"published_at" json:"published_at,omitempty"`
}

func NewOutboxMessage(intent Intent) *OutboxMessage {
	return &OutboxMessage{
		ID:             uuid.NewString(),
		Kind:           intent.Kind,
		RegistrationID: intent.RegistrationID,
		Status:         OutboxPending,
		MaxRetries:     5,
		CreatedAt:      time.Now(),
	}
}

func (m *OutboxMessage) CanRetry() bool {
	return m.RetryCount < m.MaxRetries
}

func (m *OutboxMessage) MarkPublished(now time.Time) {
	m.Status = OutboxPublished
	m.PublishedAt = &now
}

func (m *OutboxMessage) MarkFailed(errMsg string) {
	m.RetryCount++
	m.LastError = errMsg
	if m.CanRetry() {
		m.Status = OutboxPending
	} else {
		m.Status = OutboxFailed
	}
}
