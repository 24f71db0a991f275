package consumerWorker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"

	"campushub/internal/domain"
	"campushub/internal/dto"
	"campushub/internal/mailer"
	"campushub/internal/model"
)

func TestMain(m *testing.M) {
	zlog.Init()
	os.Exit(m.Run())
}

type fakeStore struct {
	reg   *model.Registration
	event *model.Event
	user  *model.User
}

func (s *fakeStore) GetRegistrationByID(ctx context.Context, id int64) (*model.Registration, error) {
	if s.reg == nil || s.reg.ID != id {
		return nil, domain.ErrRegistrationNotFound
	}
	return s.reg, nil
}

func (s *fakeStore) GetEventByID(ctx context.Context, id int64) (*model.Event, error) {
	if s.event == nil {
		return nil, domain.ErrEventNotFound
	}
	return s.event, nil
}

func (s *fakeStore) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	if s.user == nil {
		return nil, domain.ErrUserNotFound
	}
	return s.user, nil
}

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(recipient string, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, recipient)
	return nil
}

type fakeQueue struct{}

func (fakeQueue) Consume(handler func([]byte) error) error { return nil }

func fixtures() *fakeStore {
	start := time.Now().Add(24 * time.Hour)
	return &fakeStore{
		reg: &model.Registration{
			ID: 7, EventID: 1, UserID: 42,
			Status:    model.StatusPending,
			QRCodeURL: "data:image/png;base64,abc",
		},
		event: &model.Event{ID: 1, Title: "Career Fair", StartDate: start, EndDate: start.Add(4 * time.Hour)},
		user:  &model.User{ID: 42, Email: "jo.lee@campus.edu", FirstName: "Jo"},
	}
}

func payload(t *testing.T, msg dto.NotificationMessage) []byte {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return body
}

func TestHandlerSendsEmail(t *testing.T) {
	store := fixtures()
	sender := &fakeSender{}
	reader := NewReader(fakeQueue{}, store, sender)

	handler := reader.makeHandler(context.Background())
	err := handler(payload(t, dto.NotificationMessage{
		OutboxID:       "o-1",
		Kind:           domain.KindConfirmation,
		RegistrationID: 7,
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"jo.lee@campus.edu"}, sender.sent)
}

func TestHandlerAbsorbsFailures(t *testing.T) {
	t.Run("malformed payload", func(t *testing.T) {
		sender := &fakeSender{}
		reader := NewReader(fakeQueue{}, fixtures(), sender)
		err := reader.makeHandler(context.Background())([]byte("not json"))
		assert.NoError(t, err, "poison messages must be acked, not requeued")
		assert.Empty(t, sender.sent)
	})

	t.Run("unknown registration", func(t *testing.T) {
		sender := &fakeSender{}
		reader := NewReader(fakeQueue{}, fixtures(), sender)
		err := reader.makeHandler(context.Background())(payload(t, dto.NotificationMessage{
			OutboxID: "o-2", Kind: domain.KindStatusUpdate, RegistrationID: 999,
		}))
		assert.NoError(t, err)
		assert.Empty(t, sender.sent)
	})

	t.Run("mail transport failure", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("smtp down")}
		reader := NewReader(fakeQueue{}, fixtures(), sender)
		err := reader.makeHandler(context.Background())(payload(t, dto.NotificationMessage{
			OutboxID: "o-3", Kind: domain.KindConfirmation, RegistrationID: 7,
		}))
		assert.NoError(t, err, "mail failure is logged and absorbed")
	})
}
