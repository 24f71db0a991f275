package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"campushub/internal/model"
)

func testEvent(maxAttendees *int) *model.Event {
	now := time.Now()
	return &model.Event{
		ID:                   1,
		Title:                "Orientation Day",
		StartDate:            now.Add(48 * time.Hour),
		EndDate:              now.Add(52 * time.Hour),
		RegistrationDeadline: now.Add(24 * time.Hour),
		MaxAttendees:         maxAttendees,
		IsActive:             true,
	}
}

func intPtr(v int) *int { return &v }

func TestCanRegister(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		mutate   func(*model.Event)
		occupied int
		now      time.Time
		want     error
	}{
		{
			name:     "open event with free seats",
			mutate:   func(e *model.Event) {},
			occupied: 3,
			now:      now,
			want:     nil,
		},
		{
			name:     "inactive event",
			mutate:   func(e *model.Event) { e.IsActive = false },
			occupied: 0,
			now:      now,
			want:     ErrEventInactive,
		},
		{
			name:     "deadline passed",
			mutate:   func(e *model.Event) {},
			occupied: 0,
			now:      now.Add(25 * time.Hour),
			want:     ErrDeadlinePassed,
		},
		{
			name:     "at capacity",
			mutate:   func(e *model.Event) {},
			occupied: 10,
			now:      now,
			want:     ErrEventAtCapacity,
		},
		{
			name:     "over capacity",
			mutate:   func(e *model.Event) {},
			occupied: 11,
			now:      now,
			want:     ErrEventAtCapacity,
		},
		{
			name:     "unlimited capacity",
			mutate:   func(e *model.Event) { e.MaxAttendees = nil },
			occupied: 100000,
			now:      now,
			want:     nil,
		},
		{
			name: "inactive wins over deadline",
			mutate: func(e *model.Event) {
				e.IsActive = false
			},
			occupied: 10,
			now:      now.Add(25 * time.Hour),
			want:     ErrEventInactive,
		},
		{
			name:     "deadline wins over capacity",
			mutate:   func(e *model.Event) {},
			occupied: 10,
			now:      now.Add(25 * time.Hour),
			want:     ErrDeadlinePassed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := testEvent(intPtr(10))
			tt.mutate(event)
			err := CanRegister(event, tt.occupied, tt.now)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCanRegisterDeadlineBoundary(t *testing.T) {
	event := testEvent(nil)

	// Registration exactly at the deadline is still accepted.
	assert.NoError(t, CanRegister(event, 0, event.RegistrationDeadline))
	assert.ErrorIs(t, CanRegister(event, 0, event.RegistrationDeadline.Add(time.Second)), ErrDeadlinePassed)
}
