package domain

import (
	"time"

	"campushub/internal/model"
)

// CanRegister decides whether a new registration may be accepted for the
// event given the number of seats currently occupied. Checks run in order
// and short-circuit: active flag, registration deadline, capacity. A nil
// MaxAttendees means unlimited.
//
// The count must be taken inside the same transaction as the subsequent
// insert; this function is a pure decision and holds no lock itself.
func CanRegister(event *model.Event, occupied int, now time.Time) error {
	if !event.IsActive {
		return ErrEventInactive
	}
	if now.After(event.RegistrationDeadline) {
		return ErrDeadlinePassed
	}
	if event.MaxAttendees != nil && occupied >= *event.MaxAttendees {
		return ErrEventAtCapacity
	}
	return nil
}
