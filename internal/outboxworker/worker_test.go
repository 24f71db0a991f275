package outboxworker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campushub/internal/domain"
	"campushub/internal/dto"
)

type fakeStore struct {
	pending   []domain.OutboxMessage
	published []string
	failed    map[string]domain.OutboxStatus
}

func (s *fakeStore) FetchPendingOutbox(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	if limit < len(s.pending) {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *fakeStore) MarkOutboxPublished(ctx context.Context, id string, publishedAt time.Time) error {
	s.published = append(s.published, id)
	return nil
}

func (s *fakeStore) MarkOutboxFailed(ctx context.Context, id string, retryCount int, status domain.OutboxStatus, lastError string) error {
	if s.failed == nil {
		s.failed = map[string]domain.OutboxStatus{}
	}
	s.failed[id] = status
	return nil
}

type fakePublisher struct {
	messages [][]byte
	err      error
}

func (p *fakePublisher) Publish(message []byte) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, message)
	return nil
}

func newTestWorker(store Store, pub Publisher) *Worker {
	log := zerolog.Nop()
	return New(store, pub, &log, time.Second, 10)
}

func TestSweepPublishesPending(t *testing.T) {
	msg := domain.NewOutboxMessage(domain.Intent{Kind: domain.KindConfirmation, RegistrationID: 7})
	store := &fakeStore{pending: []domain.OutboxMessage{*msg}}
	pub := &fakePublisher{}

	w := newTestWorker(store, pub)
	require.NoError(t, w.sweep(context.Background()))

	require.Len(t, pub.messages, 1)
	var sent dto.NotificationMessage
	require.NoError(t, json.Unmarshal(pub.messages[0], &sent))
	assert.Equal(t, msg.ID, sent.OutboxID)
	assert.Equal(t, domain.KindConfirmation, sent.Kind)
	assert.Equal(t, int64(7), sent.RegistrationID)

	assert.Equal(t, []string{msg.ID}, store.published)
	assert.Empty(t, store.failed)
}

func TestSweepRecordsPublishFailure(t *testing.T) {
	msg := domain.NewOutboxMessage(domain.Intent{Kind: domain.KindCancellation, RegistrationID: 8})
	store := &fakeStore{pending: []domain.OutboxMessage{*msg}}
	pub := &fakePublisher{err: errors.New("broker unavailable")}

	w := newTestWorker(store, pub)
	require.NoError(t, w.sweep(context.Background()))

	assert.Empty(t, store.published)
	assert.Equal(t, domain.OutboxPending, store.failed[msg.ID], "first failure stays pending for retry")
}

func TestSweepGivesUpAfterMaxRetries(t *testing.T) {
	msg := domain.NewOutboxMessage(domain.Intent{Kind: domain.KindStatusUpdate, RegistrationID: 9})
	msg.RetryCount = msg.MaxRetries - 1
	store := &fakeStore{pending: []domain.OutboxMessage{*msg}}
	pub := &fakePublisher{err: errors.New("broker unavailable")}

	w := newTestWorker(store, pub)
	require.NoError(t, w.sweep(context.Background()))

	assert.Equal(t, domain.OutboxFailed, store.failed[msg.ID])
}

func TestStartStop(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	log := zerolog.Nop()
	w := New(store, pub, &log, 10*time.Millisecond, 10)

	w.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	w.Stop()
}
