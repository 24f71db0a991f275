package domain

import (
	"time"

	"campushub/internal/model"
)

// Patch carries the caller-requested mutation of a registration. Nil fields
// are left untouched.
type Patch struct {
	Status           *model.RegistrationStatus
	AttendanceStatus *model.AttendanceStatus
	Notes            *string
}

// Changes is the resolved set of column updates a patch produced after the
// transition rules ran. Nil fields are not written.
type Changes struct {
	Status           *model.RegistrationStatus
	AttendanceStatus *model.AttendanceStatus
	CheckInTime      *time.Time
	CheckOutTime     *time.Time
	CancelledAt      *time.Time
	Notes            *string
}

func (c Changes) Empty() bool {
	return c.Status == nil && c.AttendanceStatus == nil && c.CheckInTime == nil &&
		c.CheckOutTime == nil && c.CancelledAt == nil && c.Notes == nil
}

type attendanceKey struct {
	requested  model.AttendanceStatus
	hasCheckIn bool
	afterStart bool
}

type attendanceOutcome struct {
	final       model.AttendanceStatus
	setCheckIn  bool
	setCheckOut bool
}

// attendanceTransitions is the declarative check-in/check-out rule table.
// A requested PRESENT after the event start with no prior check-in is
// coerced to LATE, overriding the caller-supplied value. Combinations not
// listed store the requested value with no timestamp changes.
var attendanceTransitions = map[attendanceKey]attendanceOutcome{
	{model.AttendancePresent, false, false}: {model.AttendancePresent, true, false},
	{model.AttendancePresent, false, true}:  {model.AttendanceLate, true, false},
	{model.AttendanceLate, false, false}:    {model.AttendanceLate, true, false},
	{model.AttendanceLate, false, true}:     {model.AttendanceLate, true, false},
	{model.AttendanceAbsent, true, false}:   {model.AttendanceAbsent, false, true},
	{model.AttendanceAbsent, true, true}:    {model.AttendanceAbsent, false, true},
}

// ApplyPatch runs the registration state machine over a requested patch and
// returns the column changes plus the notification intents the transition
// produced. It never touches the store: the caller persists the changes and
// the intents in one transaction and dispatches the intents after commit.
//
// Rules enforced here:
//   - moving to CANCELLED requires now to be at or before the event start;
//   - a status patch equal to the current status is a no-op and fires no
//     notification;
//   - attendance changes go through the transition table above.
func ApplyPatch(reg *model.Registration, event *model.Event, patch Patch, now time.Time) (Changes, []Intent, error) {
	var ch Changes
	var intents []Intent

	if patch.Status != nil && *patch.Status != reg.Status {
		next := *patch.Status
		if next == model.StatusCancelled {
			if now.After(event.StartDate) {
				return Changes{}, nil, ErrEventAlreadyStarted
			}
			cancelledAt := now
			ch.CancelledAt = &cancelledAt
		}
		ch.Status = &next
		intents = append(intents, Intent{Kind: KindForStatus(next), RegistrationID: reg.ID})
	}

	if patch.AttendanceStatus != nil && *patch.AttendanceStatus != reg.AttendanceStatus {
		key := attendanceKey{
			requested:  *patch.AttendanceStatus,
			hasCheckIn: reg.CheckInTime != nil,
			afterStart: now.After(event.StartDate),
		}
		out, ok := attendanceTransitions[key]
		if !ok {
			out = attendanceOutcome{final: key.requested}
		}
		final := out.final
		ch.AttendanceStatus = &final
		if out.setCheckIn {
			checkIn := now
			ch.CheckInTime = &checkIn
		}
		if out.setCheckOut {
			checkOut := now
			ch.CheckOutTime = &checkOut
		}
	}

	if patch.Notes != nil && *patch.Notes != reg.Notes {
		ch.Notes = patch.Notes
	}

	return ch, intents, nil
}

// Cancel resolves the soft-cancel transition. Cancelling an already
// cancelled registration is a no-op with no notification.
func Cancel(reg *model.Registration, event *model.Event, now time.Time) (Changes, []Intent, error) {
	if reg.Status == model.StatusCancelled {
		return Changes{}, nil, nil
	}
	if now.After(event.StartDate) {
		return Changes{}, nil, ErrEventAlreadyStarted
	}
	status := model.StatusCancelled
	cancelledAt := now
	ch := Changes{Status: &status, CancelledAt: &cancelledAt}
	return ch, []Intent{{Kind: KindCancellation, RegistrationID: reg.ID}}, nil
}

// KindForStatus maps a new registration status to the notification that
// announces it.
func KindForStatus(status model.RegistrationStatus) NotificationKind {
	switch status {
	case model.StatusPending, model.StatusConfirmed:
		return KindConfirmation
	case model.StatusCancelled:
		return KindCancellation
	default:
		return KindStatusUpdate
	}
}
