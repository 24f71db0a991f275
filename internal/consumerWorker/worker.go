// Package consumerWorker drains the notification queue and turns each
// message into an outbound email. Mail transport failures are logged and
// absorbed; they never propagate back to the registration flow.
package consumerWorker

import (
	"context"
	"encoding/json"

	"github.com/wb-go/wbf/zlog"

	"campushub/internal/dto"
	"campushub/internal/mailer"
	"campushub/internal/model"
)

type Store interface {
	GetRegistrationByID(ctx context.Context, id int64) (*model.Registration, error)
	GetEventByID(ctx context.Context, id int64) (*model.Event, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

type Sender interface {
	Send(recipient string, msg mailer.Message) error
}

type Consumer interface {
	Consume(handler func([]byte) error) error
}

type Reader struct {
	queue  Consumer
	store  Store
	sender Sender
	done   chan struct{}
	cancel context.CancelFunc
}

func NewReader(queue Consumer, store Store, sender Sender) *Reader {
	return &Reader{
		queue:  queue,
		store:  store,
		sender: sender,
		done:   make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	zlog.Logger.Info().Msg("notification reader started")

	go func() {
		defer close(r.done)

		if err := r.queue.Consume(r.makeHandler(cctx)); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to start consuming")
			return
		}

		<-cctx.Done()
		zlog.Logger.Info().Msg("notification reader stopped by context")
	}()
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}

// makeHandler builds the per-message handler. A nil return acks the
// message: malformed payloads, missing rows and mail failures are all
// dropped after logging, so a bad message can never wedge the queue.
func (r *Reader) makeHandler(ctx context.Context) func([]byte) error {
	return func(body []byte) error {
		var msg dto.NotificationMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			zlog.Logger.Error().Err(err).Msgf("failed to unmarshal message: %s", string(body))
			return nil
		}

		zlog.Logger.Info().
			Str("outbox_id", msg.OutboxID).
			Str("kind", string(msg.Kind)).
			Int64("registration_id", msg.RegistrationID).
			Msg("received notification message")

		reg, err := r.store.GetRegistrationByID(ctx, msg.RegistrationID)
		if err != nil {
			zlog.Logger.Error().Err(err).
				Int64("registration_id", msg.RegistrationID).
				Msg("failed to get registration for notification")
			return nil
		}

		event, err := r.store.GetEventByID(ctx, reg.EventID)
		if err != nil {
			zlog.Logger.Error().Err(err).
				Int64("event_id", reg.EventID).
				Msg("failed to get event for notification")
			return nil
		}

		user, err := r.store.GetUserByID(ctx, reg.UserID)
		if err != nil {
			zlog.Logger.Error().Err(err).
				Int64("user_id", reg.UserID).
				Msg("failed to get user for notification")
			return nil
		}

		rendered := mailer.Render(msg.Kind, reg, event, user)
		if err := r.sender.Send(user.Email, rendered); err != nil {
			zlog.Logger.Warn().Err(err).
				Str("email", user.Email).
				Str("kind", string(msg.Kind)).
				Msg("failed to send notification email")
			return nil
		}

		zlog.Logger.Info().
			Str("email", user.Email).
			Int64("registration_id", reg.ID).
			Msg("notification email sent")
		return nil
	}
}
