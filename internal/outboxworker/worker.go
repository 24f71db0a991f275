// Package outboxworker moves committed notification intents from the
// outbox table onto the queue. Publishing is decoupled from the request
// path so a broker outage can never fail a registration.
package outboxworker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"campushub/internal/domain"
	"campushub/internal/dto"
)

type Store interface {
	FetchPendingOutbox(ctx context.Context, limit int) ([]domain.OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, id string, publishedAt time.Time) error
	MarkOutboxFailed(ctx context.Context, id string, retryCount int, status domain.OutboxStatus, lastError string) error
}

type Publisher interface {
	Publish(message []byte) error
}

type Worker struct {
	store     Store
	publisher Publisher
	log       *zerolog.Logger
	interval  time.Duration
	batchSize int
	done      chan struct{}
	cancel    context.CancelFunc
}

func New(store Store, publisher Publisher, log *zerolog.Logger, interval time.Duration, batchSize int) *Worker {
	return &Worker{
		store:     store,
		publisher: publisher,
		log:       log,
		interval:  interval,
		batchSize: batchSize,
		done:      make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.log.Info().Dur("interval", w.interval).Msg("outbox worker started")

	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-cctx.Done():
				w.log.Info().Msg("outbox worker stopped")
				return
			case <-ticker.C:
				if err := w.sweep(cctx); err != nil {
					w.log.Error().Err(err).Msg("outbox sweep failed")
				}
			}
		}
	}()
}

func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
}

func (w *Worker) sweep(ctx context.Context) error {
	msgs, err := w.store.FetchPendingOutbox(ctx, w.batchSize)
	if err != nil {
		return err
	}

	for i := range msgs {
		msg := &msgs[i]
		payload, err := json.Marshal(dto.NotificationMessage{
			OutboxID:       msg.ID,
			Kind:           msg.Kind,
			RegistrationID: msg.RegistrationID,
		})
		if err != nil {
			w.log.Error().Err(err).Str("outbox_id", msg.ID).Msg("failed to marshal notification message")
			continue
		}

		if err := w.publisher.Publish(payload); err != nil {
			msg.MarkFailed(err.Error())
			if markErr := w.store.MarkOutboxFailed(ctx, msg.ID, msg.RetryCount, msg.Status, msg.LastError); markErr != nil {
				w.log.Error().Err(markErr).Str("outbox_id", msg.ID).Msg("failed to record publish failure")
			}
			w.log.Warn().Err(err).
				Str("outbox_id", msg.ID).
				Int("retry_count", msg.RetryCount).
				Msg("failed to publish notification")
			continue
		}

		if err := w.store.MarkOutboxPublished(ctx, msg.ID, time.Now()); err != nil {
			w.log.Error().Err(err).Str("outbox_id", msg.ID).Msg("failed to mark outbox message published")
			continue
		}

		w.log.Debug().
			Str("outbox_id", msg.ID).
			Str("kind", string(msg.Kind)).
			Int64("registration_id", msg.RegistrationID).
			Msg("notification published")
	}

	return nil
}
