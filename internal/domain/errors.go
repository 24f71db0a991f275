package domain

import "errors"

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrForbidden            = errors.New("forbidden")
	ErrEventInactive        = errors.New("event is no longer active")
	ErrDeadlinePassed       = errors.New("registration deadline has passed")
	ErrEventAtCapacity      = errors.New("event is at capacity")
	ErrAlreadyRegistered    = errors.New("user is already registered for this event")
	ErrEventAlreadyStarted  = errors.New("event has already started")
	ErrInvalidEventDates    = errors.New("event end date must be after start date")
	ErrQRGenerationFailed   = errors.New("failed to generate QR code")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrTooManyAttempts      = errors.New("too many failed login attempts")
)
