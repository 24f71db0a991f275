package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campushub/internal/domain"
	"campushub/internal/dto"
)

func validCreateEventRequest() dto.CreateEventRequest {
	now := time.Now()
	max := 30
	return dto.CreateEventRequest{
		Title:                "Robotics Workshop",
		Location:             "Lab 2",
		StartDate:            now.Add(72 * time.Hour),
		EndDate:              now.Add(76 * time.Hour),
		RegistrationDeadline: now.Add(48 * time.Hour),
		MaxAttendees:         &max,
	}
}

func TestCreateEventRequiresOrganizerRole(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	_, err := f.svc.CreateEvent(ctx, f.student, validCreateEventRequest())
	assert.ErrorIs(t, err, domain.ErrForbidden)

	event, err := f.svc.CreateEvent(ctx, f.organizer, validCreateEventRequest())
	require.NoError(t, err)
	assert.True(t, event.IsActive)
	assert.Equal(t, f.organizer.UserID, event.CreatorID)

	_, err = f.svc.CreateEvent(ctx, f.admin, validCreateEventRequest())
	assert.NoError(t, err)
}

func TestCreateEventRejectsInvertedDates(t *testing.T) {
	f := newFixture(nil)

	req := validCreateEventRequest()
	req.EndDate = req.StartDate.Add(-time.Hour)

	_, err := f.svc.CreateEvent(context.Background(), f.organizer, req)
	assert.ErrorIs(t, err, domain.ErrInvalidEventDates)
}

func TestUpdateEventOnlyByCreatorOrAdmin(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	title := "Renamed Lecture"
	_, err := f.svc.UpdateEvent(ctx, f.student, f.eventID, dto.UpdateEventRequest{Title: &title})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := f.svc.UpdateEvent(ctx, f.organizer, f.eventID, dto.UpdateEventRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	deactivate := false
	updated, err = f.svc.UpdateEvent(ctx, f.admin, f.eventID, dto.UpdateEventRequest{IsActive: &deactivate})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestUpdateEventRejectsInvertedDates(t *testing.T) {
	f := newFixture(nil)

	end := time.Now().Add(time.Hour)
	start := end.Add(time.Hour)
	_, err := f.svc.UpdateEvent(context.Background(), f.organizer, f.eventID, dto.UpdateEventRequest{
		StartDate: &start,
		EndDate:   &end,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEventDates)
}

func TestGetEventReportsOccupancy(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, f.student, f.eventID, dto.CreateRegistrationRequest{})
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, f.student2, f.eventID, dto.CreateRegistrationRequest{})
	require.NoError(t, err)

	event, count, err := f.svc.GetEvent(ctx, f.eventID)
	require.NoError(t, err)
	assert.Equal(t, f.eventID, event.ID)
	assert.Equal(t, 2, count)
}

func TestListEventsIncludesSeatAccounting(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, f.student, f.eventID, dto.CreateRegistrationRequest{})
	require.NoError(t, err)

	events, err := f.svc.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].RegisteredCount)
	require.NotNil(t, events[0].AvailableSeats)
	assert.Equal(t, 9, *events[0].AvailableSeats)
}
