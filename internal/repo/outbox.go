package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"campushub/internal/domain"
)

func insertOutboxTx(ctx context.Context, tx *sql.Tx, msg *domain.OutboxMessage) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO notification_outbox (id, kind, registration_id, status, retry_count, max_retries, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, msg.ID, msg.Kind, msg.RegistrationID, msg.Status, msg.RetryCount, msg.MaxRetries, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert outbox message: %w", err)
	}
	return nil
}

func (r *repository) FetchPendingOutbox(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, registration_id, status, retry_count, max_retries,
		       COALESCE(last_error, ''), created_at, published_at
		FROM notification_outbox
		WHERE status = 'PENDING'
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending outbox messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.OutboxMessage
	for rows.Next() {
		var msg domain.OutboxMessage
		var publishedAt sql.NullTime
		if err := rows.Scan(
			&msg.ID, &msg.Kind, &msg.RegistrationID, &msg.Status,
			&msg.RetryCount, &msg.MaxRetries, &msg.LastError,
			&msg.CreatedAt, &publishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		msg.PublishedAt = timePtr(publishedAt)
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *repository) MarkOutboxPublished(ctx context.Context, id string, publishedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notification_outbox
		SET status = 'PUBLISHED', published_at = $1
		WHERE id = $2
	`, publishedAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox message published: %w", err)
	}
	return nil
}

func (r *repository) MarkOutboxFailed(ctx context.Context, id string, retryCount int, status domain.OutboxStatus, lastError string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notification_outbox
		SET status = $1, retry_count = $2, last_error = $3
		WHERE id = $4
	`, status, retryCount, lastError, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox message failed: %w", err)
	}
	return nil
}
