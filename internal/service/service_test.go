package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"campushub/internal/auth"
	"campushub/internal/domain"
	"campushub/internal/model"
)

func nopLogger() *zerolog.Logger {
	log := zerolog.Nop()
	return &log
}

// fakeRepo is an in-memory Repository honouring the same transactional
// semantics as the Postgres implementation: capacity oracle inside
// RegisterTx, unconditional (event,user) uniqueness, outbox rows written
// together with the change.
type fakeRepo struct {
	users     map[int64]*model.User
	events    map[int64]*model.Event
	regs      map[int64]*model.Registration
	outbox    []domain.OutboxMessage
	nextRegID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:  map[int64]*model.User{},
		events: map[int64]*model.Event{},
		regs:   map[int64]*model.Registration{},
	}
}

func (f *fakeRepo) CreateUser(ctx context.Context, u *model.User) (int64, error) {
	id := int64(len(f.users) + 1)
	u.ID = id
	f.users[id] = u
	return id, nil
}

func (f *fakeRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeRepo) CreateEvent(ctx context.Context, e *model.Event) (int64, error) {
	id := int64(len(f.events) + 1)
	e.ID = id
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	f.events[id] = e
	return id, nil
}

func (f *fakeRepo) GetEventByID(ctx context.Context, id int64) (*model.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	copied := *e
	return &copied, nil
}

func (f *fakeRepo) GetAllEvents(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	for _, e := range f.events {
		events = append(events, *e)
	}
	return events, nil
}

func (f *fakeRepo) UpdateEvent(ctx context.Context, e *model.Event) error {
	if _, ok := f.events[e.ID]; !ok {
		return domain.ErrEventNotFound
	}
	copied := *e
	f.events[e.ID] = &copied
	return nil
}

func (f *fakeRepo) CountActiveRegistrations(ctx context.Context, eventID int64) (int, error) {
	count := 0
	for _, reg := range f.regs {
		if reg.EventID == eventID && reg.Status.OccupiesSeat() {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) RegisterTx(ctx context.Context, reg *model.Registration, now time.Time, issueQR func(int64) (string, error)) (*model.Registration, error) {
	event, ok := f.events[reg.EventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}

	occupied, _ := f.CountActiveRegistrations(ctx, reg.EventID)
	if err := domain.CanRegister(event, occupied, now); err != nil {
		return nil, err
	}

	for _, existing := range f.regs {
		if existing.EventID == reg.EventID && existing.UserID == reg.UserID {
			return nil, domain.ErrAlreadyRegistered
		}
	}

	f.nextRegID++
	reg.ID = f.nextRegID
	reg.RegistrationDate = now
	reg.UpdatedAt = now

	qrCodeURL, err := issueQR(reg.ID)
	if err != nil {
		return nil, err
	}
	reg.QRCodeURL = qrCodeURL

	copied := *reg
	f.regs[reg.ID] = &copied
	f.outbox = append(f.outbox, *domain.NewOutboxMessage(domain.Intent{
		Kind:           domain.KindForStatus(reg.Status),
		RegistrationID: reg.ID,
	}))
	return reg, nil
}

func (f *fakeRepo) GetRegistrationByID(ctx context.Context, id int64) (*model.Registration, error) {
	reg, ok := f.regs[id]
	if !ok {
		return nil, domain.ErrRegistrationNotFound
	}
	copied := *reg
	return &copied, nil
}

func (f *fakeRepo) GetRegistrationsByEventID(ctx context.Context, eventID int64) ([]model.Registration, error) {
	var regs []model.Registration
	for _, reg := range f.regs {
		if reg.EventID == eventID {
			regs = append(regs, *reg)
		}
	}
	return regs, nil
}

func (f *fakeRepo) UpdateRegistrationTx(ctx context.Context, registrationID int64, changes domain.Changes, intents []domain.Intent) error {
	reg, ok := f.regs[registrationID]
	if !ok {
		return domain.ErrRegistrationNotFound
	}
	if changes.Status != nil {
		reg.Status = *changes.Status
	}
	if changes.AttendanceStatus != nil {
		reg.AttendanceStatus = *changes.AttendanceStatus
	}
	if changes.CheckInTime != nil {
		reg.CheckInTime = changes.CheckInTime
	}
	if changes.CheckOutTime != nil {
		reg.CheckOutTime = changes.CheckOutTime
	}
	if changes.CancelledAt != nil {
		reg.CancelledAt = changes.CancelledAt
	}
	if changes.Notes != nil {
		reg.Notes = *changes.Notes
	}
	for _, intent := range intents {
		f.outbox = append(f.outbox, *domain.NewOutboxMessage(intent))
	}
	return nil
}

func (f *fakeRepo) FetchPendingOutbox(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	return f.outbox, nil
}

func (f *fakeRepo) MarkOutboxPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return nil
}

func (f *fakeRepo) MarkOutboxFailed(ctx context.Context, id string, retryCount int, status domain.OutboxStatus, lastError string) error {
	return nil
}

func (f *fakeRepo) MigrateUp(migrationsDir string) error   { return nil }
func (f *fakeRepo) MigrateDown(migrationsDir string) error { return nil }

func (f *fakeRepo) outboxKinds() []domain.NotificationKind {
	kinds := make([]domain.NotificationKind, 0, len(f.outbox))
	for _, msg := range f.outbox {
		kinds = append(kinds, msg.Kind)
	}
	return kinds
}

type fakeCounter struct {
	counts map[string]int
	err    error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int{}}
}

func (c *fakeCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.counts[key]++
	return c.counts[key], nil
}

func (c *fakeCounter) Reset(ctx context.Context, key string) error {
	delete(c.counts, key)
	return nil
}

// fixture builders shared by the service tests

type fixture struct {
	svc       *Service
	repo      *fakeRepo
	counter   *fakeCounter
	student   auth.Actor
	student2  auth.Actor
	organizer auth.Actor
	admin     auth.Actor
	eventID   int64
}

func newFixture(mutateEvent func(*model.Event)) *fixture {
	repo := newFakeRepo()
	counter := newFakeCounter()
	log := nopLogger()
	svc := New(repo, counter, auth.NewTokenIssuer("test-secret", time.Hour), log, Config{})

	ctx := context.Background()
	mkUser := func(i int, role model.Role) auth.Actor {
		hash, _ := auth.HashPassword("password123")
		id, _ := repo.CreateUser(ctx, &model.User{
			Email:        fmt.Sprintf("user%d@campus.edu", i),
			PasswordHash: hash,
			FirstName:    fmt.Sprintf("User%d", i),
			Role:         role,
		})
		return auth.Actor{UserID: id, Role: role}
	}

	student := mkUser(1, model.RoleStudent)
	student2 := mkUser(2, model.RoleStudent)
	organizer := mkUser(3, model.RoleOrganizer)
	admin := mkUser(4, model.RoleAdmin)

	now := time.Now()
	max := 10
	event := &model.Event{
		Title:                "Guest Lecture",
		Location:             "Main Auditorium",
		StartDate:            now.Add(48 * time.Hour),
		EndDate:              now.Add(52 * time.Hour),
		RegistrationDeadline: now.Add(24 * time.Hour),
		MaxAttendees:         &max,
		IsActive:             true,
		CreatorID:            organizer.UserID,
	}
	if mutateEvent != nil {
		mutateEvent(event)
	}
	eventID, _ := repo.CreateEvent(ctx, event)

	return &fixture{
		svc:       svc,
		repo:      repo,
		counter:   counter,
		student:   student,
		student2:  student2,
		organizer: organizer,
		admin:     admin,
		eventID:   eventID,
	}
}
