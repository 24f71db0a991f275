package dto

import (
	"errors"
	"net/http"
	"time"

	"github.com/wb-go/wbf/ginext"

	"campushub/internal/domain"
	"campushub/internal/model"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

type CreateEventRequest struct {
	Title                string    `json:"title" validate:"required,max=255"`
	Description          string    `json:"description"`
	Location             string    `json:"location"`
	StartDate            time.Time `json:"start_date" validate:"required,future"`
	EndDate              time.Time `json:"end_date" validate:"required"`
	RegistrationDeadline time.Time `json:"registration_deadline" validate:"required"`
	MaxAttendees         *int      `json:"max_attendees" validate:"omitempty,positive"`
}

type UpdateEventRequest struct {
	Title                *string    `json:"title" validate:"omitempty,max=255"`
	Description          *string    `json:"description"`
	Location             *string    `json:"location"`
	StartDate            *time.Time `json:"start_date"`
	EndDate              *time.Time `json:"end_date"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	MaxAttendees         *int       `json:"max_attendees" validate:"omitempty,positive"`
	IsActive             *bool      `json:"is_active"`
}

type CreateRegistrationRequest struct {
	// UserID is optional: absent means self-registration; organizers and
	// admins may register someone else.
	UserID *int64  `json:"user_id"`
	Status *string `json:"status" validate:"omitempty,regstatus"`
	Notes  *string `json:"notes" validate:"omitempty,max=1000"`
}

type UpdateRegistrationRequest struct {
	Status           *string `json:"status" validate:"omitempty,regstatus"`
	AttendanceStatus *string `json:"attendance_status" validate:"omitempty,attstatus"`
	Notes            *string `json:"notes" validate:"omitempty,max=1000"`
}

type EventSummary struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Location  string    `json:"location,omitempty"`
}

type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RegistrationResponse struct {
	ID               int64        `json:"id"`
	Status           string       `json:"status"`
	AttendanceStatus string       `json:"attendance_status,omitempty"`
	RegistrationDate time.Time    `json:"registration_date"`
	CheckInTime      *time.Time   `json:"check_in_time,omitempty"`
	CheckOutTime     *time.Time   `json:"check_out_time,omitempty"`
	CancelledAt      *time.Time   `json:"cancelled_at,omitempty"`
	Notes            string       `json:"notes,omitempty"`
	QRCodeURL        string       `json:"qr_code_url,omitempty"`
	Event            EventSummary `json:"event"`
	User             UserSummary  `json:"user"`
}

type EventResponse struct {
	ID                   int64     `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description,omitempty"`
	Location             string    `json:"location,omitempty"`
	StartDate            time.Time `json:"start_date"`
	EndDate              time.Time `json:"end_date"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
	MaxAttendees         *int      `json:"max_attendees,omitempty"`
	IsActive             bool      `json:"is_active"`
	RegisteredCount      int       `json:"registered_count"`
	AvailableSeats       *int      `json:"available_seats,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func NewRegistrationResponse(reg *model.Registration, event *model.Event, user *model.User) RegistrationResponse {
	return RegistrationResponse{
		ID:               reg.ID,
		Status:           reg.Status.String(),
		AttendanceStatus: string(reg.AttendanceStatus),
		RegistrationDate: reg.RegistrationDate,
		CheckInTime:      reg.CheckInTime,
		CheckOutTime:     reg.CheckOutTime,
		CancelledAt:      reg.CancelledAt,
		Notes:            reg.Notes,
		QRCodeURL:        reg.QRCodeURL,
		Event: EventSummary{
			ID:        event.ID,
			Title:     event.Title,
			StartDate: event.StartDate,
			EndDate:   event.EndDate,
			Location:  event.Location,
		},
		User: UserSummary{
			ID:    user.ID,
			Name:  user.FullName(),
			Email: user.Email,
		},
	}
}

func NewEventResponse(event *model.Event, registeredCount int) EventResponse {
	resp := EventResponse{
		ID:                   event.ID,
		Title:                event.Title,
		Description:          event.Description,
		Location:             event.Location,
		StartDate:            event.StartDate,
		EndDate:              event.EndDate,
		RegistrationDeadline: event.RegistrationDeadline,
		MaxAttendees:         event.MaxAttendees,
		IsActive:             event.IsActive,
		RegisteredCount:      registeredCount,
		CreatedAt:            event.CreatedAt,
	}
	if event.MaxAttendees != nil {
		seats := *event.MaxAttendees - registeredCount
		if seats < 0 {
			seats = 0
		}
		resp.AvailableSeats = &seats
	}
	return resp
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func SuccessMessageResponse(c *ginext.Context, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

func BadRequestError(c *ginext.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Message: message})
}

func ValidationError(c *ginext.Context, verr error) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Message: "Validation failed",
		Errors:  []string{verr.Error()},
	})
}

func UnauthorizedError(c *ginext.Context) {
	c.JSON(http.StatusUnauthorized, Response{Success: false, Message: "Authentication required"})
}

func InternalServerError(c *ginext.Context) {
	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Message: "Service is currently unavailable. Please try again later.",
	})
}

// DomainError translates a service error into the envelope and status code
// from the error taxonomy. Unknown errors become an opaque 500.
func DomainError(c *ginext.Context, err error) {
	status := http.StatusInternalServerError
	message := "Service is currently unavailable. Please try again later."

	switch {
	case errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrRegistrationNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, domain.ErrEventInactive),
		errors.Is(err, domain.ErrDeadlinePassed),
		errors.Is(err, domain.ErrEventAtCapacity),
		errors.Is(err, domain.ErrAlreadyRegistered),
		errors.Is(err, domain.ErrEventAlreadyStarted),
		errors.Is(err, domain.ErrInvalidEventDates):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, domain.ErrQRGenerationFailed):
		status = http.StatusInternalServerError
		message = err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, domain.ErrTooManyAttempts):
		status = http.StatusTooManyRequests
		message = err.Error()
	}

	c.JSON(status, Response{Success: false, Message: message})
}
